package mfa

// Purpose names what a sealed blob is for. It participates in the AEAD
// authentication, so a recovery key blob cannot be replayed as an OTP
// seed even for the same user.
type Purpose string

const (
	// PurposeOTPSeed covers TOTP secrets.
	PurposeOTPSeed Purpose = "otp_seed"
	// PurposeRecoveryKey covers recovery key material.
	PurposeRecoveryKey Purpose = "recovery_key"
)

// Scope binds a ciphertext to its owner and purpose. It is fed to
// AES-GCM as additional authenticated data, never stored.
type Scope struct {
	UserID  int64
	Purpose Purpose
}
