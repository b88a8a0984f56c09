package entity

// Template is a row of message_templates: the subject and body for one
// trigger key on one channel. SMS templates leave the subject empty.
type Template struct {
	ID         int64
	TriggerKey TriggerKey
	Channel    Channel
	Subject    string
	Body       string
}
