package entity

import (
	"strings"
)

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelEmail   Channel = 1
	ChannelSMS     Channel = 2
)

// ChannelFromString maps an event channel name to a delivery channel.
// Verification events say "phone"; delivery-wise that is SMS.
func ChannelFromString(raw string) Channel {
	switch strings.TrimSpace(raw) {
	case "email":
		return ChannelEmail
	case "sms", "phone":
		return ChannelSMS
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	default:
		return "unknown"
	}
}

type TriggerKey string

const (
	TriggerKeyRegisterCode      TriggerKey = "register_code"
	TriggerKeyLoginCode         TriggerKey = "login_code"
	TriggerKeyPasswordResetCode TriggerKey = "password_reset_code"
	TriggerKeyUserWelcome       TriggerKey = "user_welcome"
)

func (tk TriggerKey) String() string {
	return string(tk)
}

// TriggerKeyForPurpose picks the template family for a verification
// purpose. Unknown purposes fall back to the login template.
func TriggerKeyForPurpose(purpose string) TriggerKey {
	switch purpose {
	case "register":
		return TriggerKeyRegisterCode
	case "password_reset":
		return TriggerKeyPasswordResetCode
	default:
		return TriggerKeyLoginCode
	}
}
