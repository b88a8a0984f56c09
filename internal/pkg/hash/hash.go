package hash

// Hash hashes plaintext secrets and verifies candidates against stored
// hashes. Implementations decide the algorithm and encoding; callers
// must treat the output as opaque.
type Hash interface {
	// Hash returns the hash of the given plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the stored hash.
	Verify(hashed, plaintext string) bool
}
