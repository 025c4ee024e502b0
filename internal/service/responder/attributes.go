package responder

import (
	"regexp"
	"strings"

	"github.com/teamyukt/honeynet/internal/model/conversation"
)

var (
	introNameRe = regexp.MustCompile(`(?i)(?:my name is|this is|i am|i'm)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	fromOrgRe   = regexp.MustCompile(`(?i)(?:from|calling from|with|on behalf of)\s+(?:the\s+)?([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*){0,3}\s*(?:Bank|Banking|Department|Team|Services|Lottery|Company|Ltd|Limited|Pvt|Office)?)`)
	roleTerms   = []string{"officer", "manager", "executive", "agent", "representative", "inspector", "supervisor", "official"}

	introStopwords = map[string]bool{
		"Calling": true, "Here": true, "Your": true, "The": true,
		"Sorry": true, "From": true, "Sir": true, "Madam": true,
	}
)

// ObserveAdversary scrapes self-disclosed identity details out of an
// adversary message into the profile. Fields are set once; a later
// contradicting claim never overwrites an earlier disclosure.
func ObserveAdversary(profile *conversation.AdversaryProfile, text string) {
	if profile.Name == "" {
		if m := introNameRe.FindStringSubmatch(text); m != nil {
			candidate := strings.TrimSpace(m[1])
			if !introStopwords[strings.Fields(candidate)[0]] {
				profile.Name = candidate
			}
		}
	}

	if profile.Role == "" {
		lower := strings.ToLower(text)
		for _, term := range roleTerms {
			if strings.Contains(lower, term) {
				profile.Role = term
				break
			}
		}
	}

	if profile.Organization == "" {
		if m := fromOrgRe.FindStringSubmatch(text); m != nil {
			org := strings.TrimSpace(m[1])
			if len(org) >= 3 {
				profile.Organization = org
			}
		}
	}
}
