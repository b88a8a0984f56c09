package mfa

// Encryptor seals and opens MFA secrets at rest.
type Encryptor interface {
	// Encrypt seals plaintext under the key selected by scope.
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Decrypt opens ciphertext previously sealed with the same scope.
	// Opening under a different scope fails authentication.
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider resolves the raw AES key for a scope. AES-256-GCM needs a
// 32-byte key. Implementations may hand out per-tenant or rotated keys;
// the static provider is enough for a single-key deploy.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
