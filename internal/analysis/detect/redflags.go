package detect

import (
	"fmt"
	"strings"

	"github.com/teamyukt/honeynet/internal/model/conversation"
)

// Severity ranks how damning a red flag is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

func (s Severity) points() int {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// RedFlag is one suspicious behaviour observed in a message or across
// the conversation.
type RedFlag struct {
	Name        string   `json:"flag"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Matched     []string `json:"matchedPatterns,omitempty"`
}

// RiskAssessment aggregates red flags into a normalized risk score.
type RiskAssessment struct {
	Flags     []RedFlag `json:"redFlags"`
	RiskScore float64   `json:"riskScore"`
	RiskLevel Severity  `json:"riskLevel"`
}

var flagCatalogue = []struct {
	name        string
	severity    Severity
	description string
	patterns    []string
}{
	{"urgency_pressure", SeverityHigh,
		"Creates artificial urgency to prevent the victim from thinking",
		[]string{"urgent", "immediately", "now", "asap", "hurry", "quick", "today", "right now"}},
	{"threat_intimidation", SeverityHigh,
		"Uses threats to scare the victim into compliance",
		[]string{"blocked", "suspended", "freeze", "locked", "deactivate", "expire", "legal action", "arrest", "penalty"}},
	{"credential_request", SeverityCritical,
		"Requests credentials legitimate entities never ask for",
		[]string{"otp", "cvv", "pin", "password", "aadhar", "aadhaar", "pan", "account number"}},
	{"money_request", SeverityCritical,
		"Requests a money transfer, a clear scam indicator",
		[]string{"send money", "transfer", "pay", "deposit", "registration fee", "processing fee", "tax"}},
	{"suspicious_links", SeverityHigh,
		"Contains links that may lead to phishing sites",
		[]string{"http://", "https://", "bit.ly", "tinyurl", "click here"}},
	{"authority_impersonation", SeverityHigh,
		"Impersonates authority figures to gain trust",
		[]string{"bank officer", "police", "government", "tax department", "cyber cell", "rbi", "income tax"}},
	{"too_good_to_be_true", SeverityMedium,
		"Offers unrealistic rewards or benefits",
		[]string{"won", "winner", "prize", "lottery", "cashback", "refund", "free", "guaranteed"}},
	{"information_harvesting", SeverityMedium,
		"Attempts to harvest personal information",
		[]string{"verify your", "confirm your", "update your", "provide your", "share your"}},
	{"no_verification_offered", SeverityHigh,
		"Discourages verification through official channels",
		[]string{"don't call", "dont call", "don't visit", "only through this", "secret", "confidential"}},
}

// AssessMessage scans one message against the red-flag catalogue.
func AssessMessage(text string) RiskAssessment {
	lower := strings.ToLower(text)
	var flags []RedFlag
	points := 0

	for _, entry := range flagCatalogue {
		var matched []string
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				matched = append(matched, pattern)
			}
		}
		if len(matched) > 0 {
			flags = append(flags, RedFlag{
				Name:        entry.name,
				Severity:    entry.severity,
				Description: entry.description,
				Matched:     matched,
			})
			points += entry.severity.points()
		}
	}

	score := clamp01(float64(points) / 30.0)
	return RiskAssessment{Flags: flags, RiskScore: score, RiskLevel: riskLevel(score)}
}

// AssessConversation looks for patterns that only show up across
// turns: escalating pressure, persistent credential harvesting and a
// story that changes mid-stream.
func AssessConversation(history []conversation.Message) []RedFlag {
	var adversary []string
	for _, msg := range history {
		if msg.Sender == conversation.SenderAdversary {
			adversary = append(adversary, strings.ToLower(msg.Text))
		}
	}
	if len(adversary) < 2 {
		return nil
	}

	var flags []RedFlag

	urgencyHits := countMatching(adversary, []string{"urgent", "immediately", "now", "asap", "hurry"})
	if urgencyHits >= 2 {
		flags = append(flags, RedFlag{
			Name:        "escalating_pressure",
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("Adversary repeatedly emphasizes urgency (%d times)", urgencyHits),
		})
	}

	credentialHits := countMatching(adversary, []string{"otp", "password", "pin", "cvv", "account"})
	if credentialHits >= 2 {
		flags = append(flags, RedFlag{
			Name:        "persistent_credential_harvesting",
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("Multiple attempts to obtain credentials (%d times)", credentialHits),
		})
	}

	if len(adversary) >= 3 {
		topics := []string{"bank", "upi", "account", "kyc", "prize", "lottery", "job", "tax"}
		first := matchingTerms(adversary[0], topics)
		last := matchingTerms(adversary[len(adversary)-1], topics)
		if len(first) > 0 && len(last) > 0 && !overlaps(first, last) {
			flags = append(flags, RedFlag{
				Name:        "inconsistent_narrative",
				Severity:    SeverityHigh,
				Description: "Adversary's story changes during the conversation",
			})
		}
	}

	return flags
}

// Summary renders a short operator-facing line for agent notes.
func (a RiskAssessment) Summary() string {
	if len(a.Flags) == 0 {
		return ""
	}
	return fmt.Sprintf("Risk level %s (%.0f%%) across %d red flag(s).",
		a.RiskLevel, a.RiskScore*100, len(a.Flags))
}

func riskLevel(score float64) Severity {
	switch {
	case score >= 0.7:
		return SeverityCritical
	case score >= 0.5:
		return SeverityHigh
	case score >= 0.3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func countMatching(messages []string, terms []string) int {
	n := 0
	for _, msg := range messages {
		for _, term := range terms {
			if strings.Contains(msg, term) {
				n++
				break
			}
		}
	}
	return n
}

func matchingTerms(msg string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if strings.Contains(msg, term) {
			out = append(out, term)
		}
	}
	return out
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
