package event

const VerificationCodeIssuedDestination string = "verification_code_issued"
const VerificationCodeIssuedConsumerNotifier string = "verification_code_issued_notifier"

// VerificationCodeIssuedMessage carries the plaintext code to the
// notifier. The code is never persisted anywhere else.
type VerificationCodeIssuedMessage struct {
	Channel    string `json:"channel"`
	Recipient  string `json:"recipient"`
	Code       string `json:"code"`
	Purpose    string `json:"purpose"`
	TTLSeconds int64  `json:"ttl_seconds"`
}
