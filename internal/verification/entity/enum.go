package entity

type Channel int16

const (
	// ChannelUnknown is mean channel is not known / not set.
	ChannelUnknown Channel = 0

	// ChannelEmail mean the code travels to an email address.
	ChannelEmail Channel = 1

	// ChannelPhone mean the code travels to a phone number (SMS).
	ChannelPhone Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelPhone:
		return "phone"
	default:
		return "unknown"
	}
}

func (c Channel) IsUnknown() bool {
	switch c {
	case ChannelEmail, ChannelPhone:
		return false
	default:
		return true
	}
}

func ParseChannel(raw string) Channel {
	switch raw {
	case "email":
		return ChannelEmail
	case "phone":
		return ChannelPhone
	default:
		return ChannelUnknown
	}
}

type Purpose int16

const (
	// PurposeUnknown is mean purpose is not known / not set.
	PurposeUnknown Purpose = 0

	// PurposeAuth mean a code issued through the public OTP endpoints.
	PurposeAuth Purpose = 1

	// PurposeRegister mean a code proving a new account's email.
	PurposeRegister Purpose = 2

	// PurposePasswordReset mean a code authorizing a password reset.
	PurposePasswordReset Purpose = 3
)

func (p Purpose) String() string {
	switch p {
	case PurposeAuth:
		return "auth"
	case PurposeRegister:
		return "register"
	case PurposePasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}

func (p Purpose) IsUnknown() bool {
	switch p {
	case PurposeAuth, PurposeRegister, PurposePasswordReset:
		return false
	default:
		return true
	}
}

func ParsePurpose(raw string) Purpose {
	switch raw {
	case "auth":
		return PurposeAuth
	case "register":
		return PurposeRegister
	case "password_reset":
		return PurposePasswordReset
	default:
		return PurposeUnknown
	}
}

type AuditEvent int16

const (
	// AuditEventUnknown is mean event is not known / not set.
	AuditEventUnknown AuditEvent = 0

	// AuditEventCodeIssued mean a code entered the pending state.
	AuditEventCodeIssued AuditEvent = 1

	// AuditEventVerified mean a pending code was matched and consumed.
	AuditEventVerified AuditEvent = 2

	// AuditEventRejected mean a wrong code was submitted.
	AuditEventRejected AuditEvent = 3

	// AuditEventExhausted mean wrong attempts reached the cap and the
	// pending code was revoked.
	AuditEventExhausted AuditEvent = 4

	// AuditEventMissed mean a verify arrived with no live code
	// (never issued, expired, or already consumed).
	AuditEventMissed AuditEvent = 5
)

func (e AuditEvent) String() string {
	switch e {
	case AuditEventCodeIssued:
		return "code_issued"
	case AuditEventVerified:
		return "verified"
	case AuditEventRejected:
		return "rejected"
	case AuditEventExhausted:
		return "exhausted"
	case AuditEventMissed:
		return "missed"
	default:
		return "unknown"
	}
}
