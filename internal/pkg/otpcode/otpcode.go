// Package otpcode generates short-lived numeric verification codes.
//
// Codes are decimal strings of a fixed length, drawn from crypto/rand.
// This is distinct from TOTP: these codes are random, issued server-side
// and verified against a stored digest, not derived from a shared clock.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// MinDigits is the shortest allowed code length.
	MinDigits = 4
	// MaxDigits is the longest allowed code length.
	MaxDigits = 10
	// DefaultDigits is the standard code length.
	DefaultDigits = 6
)

// Generator produces one-time numeric codes.
type Generator interface {
	// Generate returns a code of exactly the given number of digits.
	Generate(digits int) (string, error)
}

// Numeric implements Generator with an unbiased per-digit draw.
//
// Each digit is sampled independently and uniformly from 0-9, so no
// modulus bias exists at any length and leading zeros occur naturally
// (the result is always zero-padded to the requested width).
type Numeric struct{}

// NewNumeric returns a Numeric code generator.
func NewNumeric() *Numeric {
	return &Numeric{}
}

var ten = big.NewInt(10)

// Generate returns a code of exactly digits characters.
func (*Numeric) Generate(digits int) (string, error) {
	if digits < MinDigits || digits > MaxDigits {
		return "", fmt.Errorf("otpcode: digits must be between %d and %d, got %d", MinDigits, MaxDigits, digits)
	}

	var sb strings.Builder
	sb.Grow(digits)

	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("otpcode: read random source: %w", err)
		}
		sb.WriteByte('0' + byte(n.Int64()))
	}

	return sb.String(), nil
}
