package conversation

// Stage is the ordered emotional register the honeypot persona
// projects. It only ever moves forward within a session.
type Stage int

const (
	StageWorried Stage = iota
	StageCautious
	StageQuestioning
	StageSkeptical
	StageDefensive
)

// String returns the persona register name used in prompts and logs.
func (s Stage) String() string {
	switch s {
	case StageWorried:
		return "worried"
	case StageCautious:
		return "cautious"
	case StageQuestioning:
		return "questioning"
	case StageSkeptical:
		return "skeptical"
	case StageDefensive:
		return "defensive"
	default:
		return "worried"
	}
}

// Priority is one remaining extraction goal on the session agenda.
type Priority string

const (
	PriorityContactChannel     Priority = "contact_channel"
	PriorityIdentity           Priority = "counterpart_identity"
	PriorityRoleOrg            Priority = "role_organization"
	PrioritySecondaryChannel   Priority = "secondary_channel"
	PriorityPaymentDestination Priority = "payment_destination"
)

// DefaultAgenda returns the ordered extraction agenda a fresh session
// starts with. The agenda only ever shrinks.
func DefaultAgenda() []Priority {
	return []Priority{
		PriorityContactChannel,
		PriorityIdentity,
		PriorityRoleOrg,
		PrioritySecondaryChannel,
		PriorityPaymentDestination,
	}
}

// AdversaryProfile holds attributes the adversary has disclosed about
// themselves. A field set once is never overwritten.
type AdversaryProfile struct {
	Name         string `json:"name,omitempty"`
	Role         string `json:"role,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// State is the per-session engagement state. TurnCount counts only
// scam-classified turns.
type State struct {
	TurnCount          int                 `json:"turnCount"`
	Stage              Stage               `json:"-"`
	RapportLevel       int                 `json:"rapportLevel"`
	Priorities         []Priority          `json:"extractionPriorities"`
	UsedResponseHashes map[string]struct{} `json:"-"`
	AskedTopics        map[string]struct{} `json:"-"`
	Adversary          AdversaryProfile    `json:"knownAdversaryAttributes"`
	Finalized          bool                `json:"finalized"`
}

// NewState returns the initial engagement state for a session.
func NewState() *State {
	return &State{
		Stage:              StageWorried,
		Priorities:         DefaultAgenda(),
		UsedResponseHashes: make(map[string]struct{}),
		AskedTopics:        make(map[string]struct{}),
	}
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	out := *s
	out.Priorities = append([]Priority(nil), s.Priorities...)
	out.UsedResponseHashes = make(map[string]struct{}, len(s.UsedResponseHashes))
	for h := range s.UsedResponseHashes {
		out.UsedResponseHashes[h] = struct{}{}
	}
	out.AskedTopics = make(map[string]struct{}, len(s.AskedTopics))
	for topic := range s.AskedTopics {
		out.AskedTopics[topic] = struct{}{}
	}
	return &out
}

// AdvanceStage raises the stage to the given value. Regression is
// ignored so the persona never softens mid-session.
func (s *State) AdvanceStage(next Stage) {
	if next > s.Stage {
		s.Stage = next
	}
}

// DropPriority removes a satisfied goal from the agenda. Dropped
// goals are never re-added.
func (s *State) DropPriority(p Priority) {
	for i, got := range s.Priorities {
		if got == p {
			s.Priorities = append(s.Priorities[:i], s.Priorities[i+1:]...)
			return
		}
	}
}

// HasPriority reports whether a goal is still on the agenda.
func (s *State) HasPriority(p Priority) bool {
	for _, got := range s.Priorities {
		if got == p {
			return true
		}
	}
	return false
}

// MarkUsed records the normalized hash of an outbound reply.
func (s *State) MarkUsed(hash string) {
	s.UsedResponseHashes[hash] = struct{}{}
}

// Used reports whether a normalized reply hash was already sent.
func (s *State) Used(hash string) bool {
	_, ok := s.UsedResponseHashes[hash]
	return ok
}
