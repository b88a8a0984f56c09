package inbound

import (
	"encoding/json"
	"strings"

	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

// recipientField accepts either a plain email string or a phone object
// split into country code and national number. The channel falls out of
// which shape the caller sent.
// @swaggertype string
type recipientField struct {
	channel entity.Channel
	value   string
}

type phonePayload struct {
	CountryCode string `json:"country_code"`
	Number      string `json:"number"`
}

func (f *recipientField) UnmarshalJSON(data []byte) error {
	var email string
	if err := json.Unmarshal(data, &email); err == nil {
		f.channel = entity.ChannelEmail
		f.value = strings.ToLower(strings.TrimSpace(email))
		return nil
	}

	var phone phonePayload
	if err := json.Unmarshal(data, &phone); err != nil {
		return err
	}

	f.channel = entity.ChannelPhone
	f.value = normalizePhone(phone.CountryCode, phone.Number)
	return nil
}

// normalizePhone canonicalizes to +{country code}{national number} with
// the trunk zero dropped, so the same phone always maps to one record.
func normalizePhone(countryCode, number string) string {
	cc := strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	num := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	num = strings.TrimLeft(num, "0")

	return "+" + cc + num
}

type OTPSendRequest struct {
	Recipient recipientField `json:"recipient"`
}

type OTPVerifyRequest struct {
	Recipient recipientField `json:"recipient"`
	Code      string         `json:"code"`
}

type AuditExportResponse struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}
