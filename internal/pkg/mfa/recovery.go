package mfa

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RecoveryCodeGenerator mints one-time backup codes for accounts with an
// active second factor.
type RecoveryCodeGenerator interface {
	Generate() ([]string, error)
}

// codeAlphabet is the character set recovery codes draw from: digits and
// both letter cases, 62 symbols.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	codeCount  = 10
	codeLength = 12
)

// RecoveryCode produces codes in XXXX-XXXX-XXXX form, each symbol drawn
// uniformly from codeAlphabet via crypto/rand.
type RecoveryCode struct{}

func NewRecoveryCode() *RecoveryCode {
	return &RecoveryCode{}
}

// Generate returns codeCount unique codes. Callers are expected to hash
// them before storage and show the plaintext exactly once.
func (rc *RecoveryCode) Generate() ([]string, error) {
	out := make([]string, 0, codeCount)
	seen := make(map[string]struct{}, codeCount)

	for len(out) < codeCount {
		code, err := rc.mintCode()
		if err != nil {
			return nil, err
		}

		// a duplicate draw is vanishingly rare, retry if it happens
		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

func (rc *RecoveryCode) mintCode() (string, error) {
	var sb strings.Builder
	sb.Grow(codeLength + 2)

	for i := 0; i < codeLength; i++ {
		if i > 0 && i%4 == 0 {
			sb.WriteByte('-')
		}

		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[idx.Int64()])
	}

	return sb.String(), nil
}
