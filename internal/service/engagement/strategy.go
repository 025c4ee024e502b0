// Package engagement decides how a session's persona evolves and what
// the next reply should try to extract. The selector is a pure
// function of its inputs so turns can be replayed in tests.
package engagement

import (
	"strings"

	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/conversation"
	"github.com/teamyukt/honeynet/internal/model/intel"
)

// Strategy is the extraction goal handed to the response generator.
type Strategy string

const (
	StrategyAskContact       Strategy = "ask_contact_channel"
	StrategyAskIdentity      Strategy = "ask_identity"
	StrategyAskRoleOrg       Strategy = "ask_role_organization"
	StrategyAskSecondContact Strategy = "ask_secondary_channel"
	StrategyAskPayment       Strategy = "ask_payment_destination"
	StrategyProbeProcess     Strategy = "probe_process"
	StrategyFinalExtract     Strategy = "final_extraction"
)

// RequestKind classifies what the adversary's latest message appears
// to be asking for.
type RequestKind string

const (
	RequestNone        RequestKind = "none"
	RequestMoney       RequestKind = "money"
	RequestCredentials RequestKind = "credentials"
	RequestAccount     RequestKind = "account"
	RequestClickLink   RequestKind = "click_link"
)

// ClassifyRequest inspects the adversary's message for what it wants
// from the victim.
func ClassifyRequest(text string) RequestKind {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "send money", "transfer", "pay ", "rupees", "deposit", "processing fee", "registration fee"):
		return RequestMoney
	case containsAny(lower, "otp", "cvv", "pin", "password", "verification code"):
		return RequestCredentials
	case containsAny(lower, "account number", "account no", "ifsc"):
		return RequestAccount
	case containsAny(lower, "click", "http://", "https://", "www."):
		return RequestClickLink
	default:
		return RequestNone
	}
}

// Selector maps turn counts to stages and priorities to strategies.
type Selector struct {
	cfg config.EngagementConfig
}

// NewSelector builds a selector from engagement configuration.
func NewSelector(cfg config.EngagementConfig) *Selector {
	return &Selector{cfg: cfg}
}

// StageFor maps a cumulative scam-turn count onto the persona stage.
// Callers advance state through State.AdvanceStage, which keeps the
// progression monotone even if a later message scores benign.
func (s *Selector) StageFor(turnCount int) conversation.Stage {
	switch {
	case turnCount > s.cfg.StageDefensiveAfter:
		return conversation.StageDefensive
	case turnCount > s.cfg.StageSkepticalAfter:
		return conversation.StageSkeptical
	case turnCount > s.cfg.StageQuestioningAfter:
		return conversation.StageQuestioning
	case turnCount > s.cfg.StageCautiousAfter:
		return conversation.StageCautious
	default:
		return conversation.StageWorried
	}
}

// Satisfied reports whether the ledger (or disclosed adversary
// attributes) already covers an extraction goal.
func Satisfied(p conversation.Priority, ledger *intel.Ledger, adversary conversation.AdversaryProfile) bool {
	switch p {
	case conversation.PriorityContactChannel:
		return ledger.Has(intel.TypePhone) || ledger.Has(intel.TypeEmail)
	case conversation.PriorityIdentity:
		return ledger.Has(intel.TypePersonName) || adversary.Name != ""
	case conversation.PriorityRoleOrg:
		return adversary.Role != "" || adversary.Organization != ""
	case conversation.PrioritySecondaryChannel:
		channels := 0
		for _, t := range []intel.EntityType{intel.TypePhone, intel.TypeEmail, intel.TypeURL} {
			if ledger.Has(t) {
				channels++
			}
		}
		return channels >= 2
	case conversation.PriorityPaymentDestination:
		return ledger.Has(intel.TypePaymentHandle) || ledger.Has(intel.TypeBankAccount) || ledger.Has(intel.TypeRoutingCode)
	default:
		return false
	}
}

// Prune permanently drops every agenda entry the ledger now covers.
func Prune(state *conversation.State, ledger *intel.Ledger) {
	remaining := state.Priorities[:0:0]
	for _, p := range state.Priorities {
		if !Satisfied(p, ledger, state.Adversary) {
			remaining = append(remaining, p)
		}
	}
	state.Priorities = remaining
}

// Earliest turn at which each goal becomes natural to pursue; asking
// for a payment destination on turn one would break the persona.
var priorityMinTurn = map[conversation.Priority]int{
	conversation.PriorityContactChannel:     1,
	conversation.PriorityIdentity:           1,
	conversation.PriorityRoleOrg:            3,
	conversation.PrioritySecondaryChannel:   4,
	conversation.PriorityPaymentDestination: 5,
}

// Select returns the strategy for the upcoming reply. It is pure:
// identical inputs always produce an identical result.
func (s *Selector) Select(turnCount int, ledger *intel.Ledger, priorities []conversation.Priority, req RequestKind) Strategy {
	if turnCount >= s.cfg.MaxScamTurns-1 {
		return StrategyFinalExtract
	}

	// an adversary already pushing for money invites the payment ask
	if req == RequestMoney && turnCount >= 3 {
		for _, p := range priorities {
			if p == conversation.PriorityPaymentDestination {
				return StrategyAskPayment
			}
		}
	}

	for _, p := range priorities {
		if turnCount >= priorityMinTurn[p] {
			return strategyFor(p)
		}
	}
	if len(priorities) > 0 {
		return strategyFor(priorities[0])
	}
	return StrategyProbeProcess
}

func strategyFor(p conversation.Priority) Strategy {
	switch p {
	case conversation.PriorityContactChannel:
		return StrategyAskContact
	case conversation.PriorityIdentity:
		return StrategyAskIdentity
	case conversation.PriorityRoleOrg:
		return StrategyAskRoleOrg
	case conversation.PrioritySecondaryChannel:
		return StrategyAskSecondContact
	case conversation.PriorityPaymentDestination:
		return StrategyAskPayment
	default:
		return StrategyProbeProcess
	}
}

// Instruction renders the prompt instruction for a strategy.
func Instruction(strategy Strategy) string {
	switch strategy {
	case StrategyAskContact:
		return "Ask for a phone number or official contact you could call back to verify."
	case StrategyAskIdentity:
		return "Ask for the caller's full name and employee or badge id."
	case StrategyAskRoleOrg:
		return "Ask which department, branch or company they are calling from."
	case StrategyAskSecondContact:
		return "Ask for a second way to reach them: an email address or official website."
	case StrategyAskPayment:
		return "Ask exactly where money would need to go: a UPI id or account number, to 'make sure it reaches the right place'."
	case StrategyProbeProcess:
		return "Ask them to walk through the whole process step by step, slowly."
	case StrategyFinalExtract:
		return "Stall one last time and ask them to repeat all their contact and payment details so you can 'write them down'."
	default:
		return "Keep them talking and ask a clarifying question."
	}
}

func containsAny(lower string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
