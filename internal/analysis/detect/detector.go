// Package detect scores inbound messages against an ensemble of
// heuristic signals and decides whether the sender is running a scam.
// Everything here is pure: the same text always yields the same
// verdict, which the strategy tests rely on.
package detect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/teamyukt/honeynet/internal/config"
)

// Category is the scam taxonomy reported to operators and the sink.
type Category string

const (
	CategoryBanking      Category = "Banking/Financial Fraud"
	CategoryUPI          Category = "UPI/Payment Scam"
	CategoryCredential   Category = "Credential Phishing"
	CategoryPrize        Category = "Prize/Lottery Scam"
	CategoryKYC          Category = "KYC/Verification Scam"
	CategoryAuthority    Category = "Authority Impersonation"
	CategoryJob          Category = "Job/Employment Scam"
	CategoryPhishingLink Category = "Phishing Link Scam"
	CategoryGeneral      Category = "General"
)

// Verdict is the per-message classification result. It is produced
// fresh each turn; only the session keeps an aggregate.
type Verdict struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	Category   Category `json:"category"`
	Signals    []string `json:"signals,omitempty"`
}

// Detector runs the five-signal ensemble with configured weights.
type Detector struct {
	threshold float64
	weights   config.DetectionWeights
}

// New builds a detector from configuration.
func New(cfg config.DetectionConfig) *Detector {
	return &Detector{threshold: cfg.Threshold, weights: cfg.Weights}
}

// Weighted keyword table, grouped by signal class. Weights follow the
// original calibration: credential terms dominate, urgency and threat
// terms score high, generic financial vocabulary low.
var keywordWeights = map[string]float64{
	// urgency
	"urgent": 3, "immediately": 3, "now": 2, "asap": 3, "hurry": 2,
	// threat
	"blocked": 4, "suspended": 4, "freeze": 4, "frozen": 4, "locked": 4,
	"expire": 3, "penalty": 3, "arrest": 4,
	// credential request
	"otp": 5, "cvv": 5, "pin": 5, "password": 5, "verify": 2, "confirm": 2,
	// financial
	"account": 2, "bank": 2, "upi": 3, "payment": 2, "transfer": 2,
	"refund": 3, "cashback": 3,
	// authority / lure
	"winner": 4, "prize": 4, "lottery": 4, "won": 3, "claim": 3,
	"kyc": 3, "customs": 3,
}

const keywordNormalizer = 15.0

var (
	urgencyWords = []string{"urgent", "immediately", "now", "asap", "hurry", "right away"}
	threatWords  = []string{"blocked", "suspended", "freeze", "frozen", "locked", "expire", "deactivate", "legal action", "arrest", "penalty", "last chance"}
	actionWords  = []string{"verify", "click", "call", "send", "confirm", "update", "share", "transfer"}

	sensitiveTerms  = []string{"otp", "cvv", "pin", "password", "aadhaar", "aadhar", "pan number", "card number", "net banking password"}
	imperativeVerbs = []string{"share", "send", "provide", "give", "enter", "tell"}

	authorityTerms = []string{
		"bank", "police", "government", "rbi", "income tax", "tax department",
		"cyber cell", "customs", "customer care", "telecom", "sbi", "hdfc", "icici",
	}
)

var tacticPatterns = []struct {
	tag    string
	re     *regexp.Regexp
	weight float64
}{
	{"clickbait", regexp.MustCompile(`(?i)click\s+(?:here|the\s+link|below)`), 0.3},
	{"time-pressure", regexp.MustCompile(`(?i)(?:within|in\s+next|before)\s+\d+\s+(?:minutes?|hours?)|today\s+only|last\s+chance|act\s+now|expires?\s+(?:today|soon)`), 0.3},
	{"credential-request", regexp.MustCompile(`(?i)(?:share|send|provide|enter|tell|give)\s+(?:me\s+|us\s+)?(?:the\s+|your\s+)?(?:otp|cvv|pin|password|card\s+number)`), 0.4},
	{"account-threat", regexp.MustCompile(`(?i)account\s+(?:will\s+be|has\s+been|is)\s+(?:blocked|suspended|frozen|closed|deactivated)`), 0.4},
	{"prize", regexp.MustCompile(`(?i)you(?:'ve|\s+have)?\s+(?:won|been\s+selected)|congratulations|lucky\s+draw|lottery`), 0.3},
	{"money-promise", regexp.MustCompile(`(?i)(?:earn|receive|get)\s+(?:rs\.?|inr|₹)\s*[\d,]+|cashback|refund\s+of|double\s+your\s+money`), 0.3},
}

var (
	linkShapeRe  = regexp.MustCompile(`(?i)https?://|www\.`)
	phoneShapeRe = regexp.MustCompile(`\+?\d[\d\s-]{8,}`)
	officialRe   = regexp.MustCompile(`(?i)authorized|department\s+of|official\s+notice`)
)

// Detect classifies one message. Malformed or empty input degrades to
// a low-confidence general verdict; it never fails.
func (d *Detector) Detect(text string) Verdict {
	text = strings.TrimSpace(text)
	if text == "" || !utf8.ValidString(text) {
		return Verdict{IsScam: false, Confidence: 0.1, Category: CategoryGeneral}
	}

	lower := strings.ToLower(text)

	scores := map[string]float64{
		"keywords":      d.keywordScore(lower),
		"tactics":       d.tacticScore(text, lower),
		"composite":     d.compositeScore(lower),
		"credentials":   d.credentialScore(lower),
		"impersonation": d.impersonationScore(lower),
	}

	total := scores["keywords"]*d.weights.Keywords +
		scores["tactics"]*d.weights.Tactics +
		scores["composite"]*d.weights.Composite +
		scores["credentials"]*d.weights.Credentials +
		scores["impersonation"]*d.weights.Impersonation

	var signals []string
	for _, tag := range []string{"keywords", "tactics", "composite", "credentials", "impersonation"} {
		if scores[tag] > 0 {
			signals = append(signals, tag)
		}
	}

	return Verdict{
		IsScam:     total > d.threshold,
		Confidence: clamp01(total),
		Category:   categorize(lower),
		Signals:    signals,
	}
}

func (d *Detector) keywordScore(lower string) float64 {
	sum := 0.0
	for term, weight := range keywordWeights {
		if containsTerm(lower, term) {
			sum += weight
		}
	}
	return clamp01(sum / keywordNormalizer)
}

func (d *Detector) tacticScore(text, lower string) float64 {
	score := 0.0
	for _, p := range tacticPatterns {
		if p.re.MatchString(text) {
			score += p.weight
		}
	}
	if linkShapeRe.MatchString(lower) {
		score += 0.2
	}
	if phoneShapeRe.MatchString(text) {
		score += 0.2
	}
	return clamp01(score)
}

// compositeScore is categorical: the urgency+threat+action triad is
// the classic scam skeleton, and partial matches still count.
func (d *Detector) compositeScore(lower string) float64 {
	present := 0
	for _, class := range [][]string{urgencyWords, threatWords, actionWords} {
		if anyTerm(lower, class) {
			present++
		}
	}
	switch present {
	case 3:
		return 1.0
	case 2:
		return 0.7
	case 1:
		return 0.4
	default:
		return 0.0
	}
}

func (d *Detector) credentialScore(lower string) float64 {
	score := 0.0
	matched := false
	for _, term := range sensitiveTerms {
		if containsTerm(lower, term) {
			score += 0.3
			matched = true
		}
	}
	if matched && anyTerm(lower, imperativeVerbs) {
		score += 0.4
	}
	return clamp01(score)
}

func (d *Detector) impersonationScore(lower string) float64 {
	hits := 0
	for _, term := range authorityTerms {
		if containsTerm(lower, term) {
			hits++
		}
	}
	score := float64(hits) / 3.0
	if officialRe.MatchString(lower) {
		score += 0.2
	}
	return clamp01(score)
}

// categorize picks the scam category by first match over the topic
// lexicons. Order matters and mirrors the reporting taxonomy.
func categorize(lower string) Category {
	topics := []struct {
		cat   Category
		terms []string
	}{
		{CategoryBanking, []string{"bank", "account", "debit card", "credit card", "net banking"}},
		{CategoryUPI, []string{"upi", "paytm", "phonepe", "gpay", "bhim"}},
		{CategoryCredential, []string{"otp", "cvv", "pin", "password"}},
		{CategoryPrize, []string{"winner", "prize", "lottery", "won", "congratulations"}},
		{CategoryKYC, []string{"kyc", "aadhaar", "aadhar", "pan card", "document"}},
		{CategoryAuthority, []string{"police", "government", "rbi", "income tax", "customs", "cyber cell"}},
		{CategoryJob, []string{"job", "salary", "work from home", "hiring", "income"}},
		{CategoryPhishingLink, []string{"http", "www.", "click"}},
	}
	for _, topic := range topics {
		if anyTerm(lower, topic.terms) {
			return topic.cat
		}
	}
	return CategoryGeneral
}

func anyTerm(lower string, terms []string) bool {
	for _, term := range terms {
		if containsTerm(lower, term) {
			return true
		}
	}
	return false
}

// containsTerm matches a lowercase term on word boundaries, so "pin"
// does not fire inside "pinpoint".
func containsTerm(lower, term string) bool {
	from := 0
	for {
		idx := strings.Index(lower[from:], term)
		if idx < 0 {
			return false
		}
		idx += from
		end := idx + len(term)
		beforeOK := idx == 0 || !isWordByte(rune(lower[idx-1]))
		afterOK := end >= len(lower) || !isWordByte(rune(lower[end]))
		if beforeOK && afterOK {
			return true
		}
		from = idx + 1
	}
}

func isWordByte(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
