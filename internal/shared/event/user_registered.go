package event

const UserRegisteredDestination string = "user_registered"
const UserRegisteredConsumerNotifier string = "user_registered_notifier"

type UserRegisteredMessage struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
