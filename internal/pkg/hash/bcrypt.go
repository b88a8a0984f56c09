package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt implements Hash with bcrypt. It digests recovery codes, which
// are short and random, so a lower work factor than for passwords is
// acceptable when lookups scan many hashes.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt hasher with the given work factor. The
// pepper is appended to the plaintext on both hash and verify; it lives
// in configuration, never next to the digests.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	return &Bcrypt{cost: cost, pepper: pepper}
}

func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), h.cost)
}

func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+h.pepper)) == nil
}
