package conversation

import (
	"time"

	"github.com/teamyukt/honeynet/internal/model/intel"
)

// Session captures one adversary engagement: the ordered transcript,
// the intelligence ledger and the engagement state. Sessions are
// owned by the lifecycle manager and mutated by at most one in-flight
// turn at a time.
type Session struct {
	ID           string
	PersonaID    string
	Messages     []Message
	Ledger       *intel.Ledger
	State        *State
	ScamDetected bool
	ScamType     string
	Confidence   float64
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewSession returns an empty session for the given id.
func NewSession(id, personaID string, now time.Time) *Session {
	return &Session{
		ID:           id,
		PersonaID:    personaID,
		Messages:     make([]Message, 0, 16),
		Ledger:       intel.NewLedger(),
		State:        NewState(),
		ScamType:     "Unknown",
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Clone returns an independent copy of the session that can be read
// without holding the owner's turn lock.
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Ledger = s.Ledger.Clone()
	out.State = s.State.Clone()
	return &out
}

// Append records one immutable message and bumps the activity clock.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	if msg.Timestamp.After(s.LastActivity) {
		s.LastActivity = msg.Timestamp
	}
}

// AdversaryTexts returns the text of the last n adversary messages in
// order, for contextual re-extraction.
func (s *Session) AdversaryTexts(n int) []string {
	texts := make([]string, 0, n)
	for i := len(s.Messages) - 1; i >= 0 && len(texts) < n; i-- {
		if s.Messages[i].Sender == SenderAdversary {
			texts = append(texts, s.Messages[i].Text)
		}
	}
	// restore chronological order
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts
}

// Recent returns up to n trailing messages of the transcript.
func (s *Session) Recent(n int) []Message {
	if len(s.Messages) <= n {
		out := make([]Message, len(s.Messages))
		copy(out, s.Messages)
		return out
	}
	out := make([]Message, n)
	copy(out, s.Messages[len(s.Messages)-n:])
	return out
}

// Metrics derives the engagement metrics from the transcript.
func (s *Session) Metrics() intel.EngagementMetrics {
	if len(s.Messages) == 0 {
		return intel.EngagementMetrics{}
	}
	first := s.Messages[0].Timestamp
	last := s.Messages[len(s.Messages)-1].Timestamp
	return intel.MetricsFor(len(s.Messages), first, last)
}
