package entity

type UserStatus int16

const (
	// UserStatusUnknown is mean status is not known / not set.
	UserStatusUnknown UserStatus = 0

	// UserStatusPendingVerification mean user exists but has not proven
	// control of the registered email yet.
	UserStatusPendingVerification UserStatus = 1

	// UserStatusActive mean user is verified and allowed to use the app.
	UserStatusActive UserStatus = 2

	// UserStatusBanned mean user is blocked from using the app (policy/abuse/etc).
	UserStatusBanned UserStatus = 3

	// UserStatusInactive mean user is not currently active (e.g., deactivated, closed).
	UserStatusInactive UserStatus = 4
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusPendingVerification:
		return "PendingVerification"
	case UserStatusActive:
		return "Active"
	case UserStatusBanned:
		return "Banned"
	case UserStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

func (us UserStatus) IsUnknown() bool {
	switch us {
	case UserStatusPendingVerification, UserStatusActive, UserStatusBanned, UserStatusInactive:
		return false
	default:
		return true
	}
}

func (us UserStatus) Ensure() UserStatus {
	if us.IsUnknown() {
		return UserStatusUnknown
	}
	return us
}

type MFAStatus int16

const (
	// MFAStatusDisabled mean the account has no second factor.
	MFAStatusDisabled MFAStatus = 0

	// MFAStatusPending mean a TOTP secret was provisioned but the user
	// has not confirmed a code against it yet. Login ignores it.
	MFAStatusPending MFAStatus = 1

	// MFAStatusActive mean login requires a second factor.
	MFAStatusActive MFAStatus = 2
)

func (ms MFAStatus) String() string {
	switch ms {
	case MFAStatusPending:
		return "Pending"
	case MFAStatusActive:
		return "Active"
	default:
		return "Disabled"
	}
}

// ChallengeMethod names the second factor submitted against a login
// challenge.
type ChallengeMethod int16

const (
	ChallengeMethodUnknown      ChallengeMethod = 0
	ChallengeMethodTOTP         ChallengeMethod = 1
	ChallengeMethodRecoveryCode ChallengeMethod = 2
)

func ParseChallengeMethod(raw string) ChallengeMethod {
	switch raw {
	case "totp":
		return ChallengeMethodTOTP
	case "recovery_code":
		return ChallengeMethodRecoveryCode
	default:
		return ChallengeMethodUnknown
	}
}

func (cm ChallengeMethod) String() string {
	switch cm {
	case ChallengeMethodTOTP:
		return "totp"
	case ChallengeMethodRecoveryCode:
		return "recovery_code"
	default:
		return "unknown"
	}
}
