package conversation

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderAdversary Sender = "scammer"
	SenderAgent     Sender = "user"
)

// Message is a single turn in a honeypot conversation. Messages are
// immutable once appended to a session.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
