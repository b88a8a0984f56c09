package entity

import "time"

type User struct {
	ID        int64
	Email     string
	FullName  string
	Status    UserStatus
	MFAStatus MFAStatus
	UpdatedAt time.Time
}

type NewUser struct {
	ID       int64
	Email    string
	FullName string
	Status   UserStatus
}

// UserLoginInfo is the slice of a user row login needs: credentials,
// status and whether a second factor gate applies.
type UserLoginInfo struct {
	ID        int64
	Email     string
	Status    UserStatus
	Password  string // hashed
	MFAStatus MFAStatus
}

// UserMFAInfo carries the encrypted TOTP secret alongside the fields
// needed to validate a second factor.
type UserMFAInfo struct {
	ID        int64
	Email     string
	Status    UserStatus
	MFAStatus MFAStatus
	MFASecret []byte // AES-GCM ciphertext, absent when MFA is disabled
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string // HMAC digest, never the opaque token itself
	ExpiresAt time.Time
}

type RotateRefreshToken struct {
	NewID        int64
	OldID        int64
	UserID       int64
	NewToken     string
	NewExpiresAt time.Time
}

// UserRefreshToken is the refresh row joined with its owner, read in one
// round trip during rotation.
type UserRefreshToken struct {
	UserID                   int64
	UserEmail                string
	UserStatus               UserStatus
	RefreshID                int64
	RefreshRevoked           bool
	RefreshReplacedByTokenID *int64
	RefreshExpiresAt         time.Time
}

// LoginChallenge parks a password-verified login until the second
// factor arrives. Only the token digest is stored.
type LoginChallenge struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// LoginChallengeUser is the challenge joined with its owner.
type LoginChallengeUser struct {
	ChallengeID        int64
	ChallengeExpiresAt time.Time
	UserID             int64
	UserEmail          string
	UserStatus         UserStatus
	MFAStatus          MFAStatus
	MFASecret          []byte
}

type RecoveryCode struct {
	ID     int64
	UserID int64
	Code   string // bcrypt hash
}
