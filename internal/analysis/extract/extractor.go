// Package extract turns raw adversary text into normalized, typed,
// deduplicated entities. Extraction is idempotent: running it twice
// on the same text yields the same result set.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/intel"
)

// Extractor applies per-type candidate regexes, normalization rules
// and discriminating validity predicates.
type Extractor struct {
	cfg            config.ExtractionConfig
	phoneValidator PhoneValidator
	domainPathRe   *regexp.Regexp
	shortenerRes   []*regexp.Regexp
	providerSet    map[string]struct{}
}

// New builds an extractor. validator may be nil; the built-in phone
// heuristic then decides alone.
func New(cfg config.ExtractionConfig, validator PhoneValidator) *Extractor {
	e := &Extractor{
		cfg:            cfg,
		phoneValidator: validator,
		providerSet:    make(map[string]struct{}, len(cfg.ProviderSuffixes)),
	}
	for _, suffix := range cfg.ProviderSuffixes {
		e.providerSet[strings.ToLower(suffix)] = struct{}{}
	}

	tlds := append([]string(nil), cfg.LinkTLDs...)
	// longest first so "co.in" wins over "in" inside the alternation
	for i := 0; i < len(tlds); i++ {
		for j := i + 1; j < len(tlds); j++ {
			if len(tlds[j]) > len(tlds[i]) {
				tlds[i], tlds[j] = tlds[j], tlds[i]
			}
		}
	}
	quoted := make([]string, len(tlds))
	for i, tld := range tlds {
		quoted[i] = regexp.QuoteMeta(tld)
	}
	if len(quoted) > 0 {
		e.domainPathRe = regexp.MustCompile(`(?i)\b[a-zA-Z0-9-]{3,}\.(?:` + strings.Join(quoted, "|") + `)/[^\s]*`)
	}
	for _, domain := range cfg.ShortenerDomains {
		e.shortenerRes = append(e.shortenerRes,
			regexp.MustCompile(`(?i)`+regexp.QuoteMeta(domain)+`/[A-Za-z0-9]+`))
	}
	return e
}

var (
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\s?91[\s-]?\d{5}[\s-]?\d{5}`),
		regexp.MustCompile(`\+\s?91[\s-]?\d{10}`),
		regexp.MustCompile(`\b91[6-9]\d{9}\b`),
		regexp.MustCompile(`\b[6-9]\d{4}[\s-]?\d{5}\b`),
		regexp.MustCompile(`\b0[6-9]\d{9}\b`),
		regexp.MustCompile(`\(\d{5}\)[\s-]?\d{5}`),
	}

	atTokenRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+`)
	emailRe   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	digitRunRe    = regexp.MustCompile(`\b\d{9,18}\b`)
	longRunRe     = regexp.MustCompile(`\b\d{9,}\b`)
	groupedAcctRe = regexp.MustCompile(`\b\d{4}[\s-]\d{4}[\s-]\d{4}[\s-]\d{4}\b`)

	routingRe = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	schemeURLRe = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
	wwwURLRe    = regexp.MustCompile(`(?i)\bwww\.[a-zA-Z0-9-]+\.[a-zA-Z]{2,}[^\s]*`)

	aadhaarRe = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	panRe     = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)

	amountRe = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)\s?([\d,]+(?:\.\d{1,2})?)`)

	nameRe     = regexp.MustCompile(`(?:[Mm]y name is|[Tt]his is|[Ii] am|I'm)\s+([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)?)`)
	locationRe = regexp.MustCompile(`(?:from|at|in)\s+(?:the\s+)?([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)?)\s+(?:branch|office)`)

	nameStopwords = map[string]struct{}{
		"Urgent": {}, "Your": {}, "The": {}, "Bank": {}, "Calling": {}, "Sir": {}, "Madam": {},
	}
)

// Extract processes a single message.
func (e *Extractor) Extract(text string) intel.Extraction {
	out := make(intel.Extraction)
	cleaned := preprocess(text)
	if cleaned == "" {
		return out
	}

	e.extractPhones(cleaned, out)
	e.extractHandlesAndEmails(cleaned, out)
	e.extractAccountsAndRouting(cleaned, out)
	e.extractURLs(cleaned, out)
	e.extractHeuristics(cleaned, out)
	return out
}

// ExtractWithContext additionally re-processes a bounded window of
// prior turns and unions the results. Merging into a ledger remains
// the caller's job.
func (e *Extractor) ExtractWithContext(text string, history []string) intel.Extraction {
	out := e.Extract(text)
	window := e.cfg.ContextWindow
	if window <= 0 {
		window = 5
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	for _, prior := range history {
		out.Union(e.Extract(prior))
	}
	return out
}

// preprocess undoes common obfuscation and bounds the input. Control
// characters are stripped so malformed input cannot poison patterns.
func preprocess(text string) string {
	const maxLen = 5000
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	replacer := strings.NewReplacer(
		"[at]", "@", "(at)", "@",
		"[dot]", ".", "(dot)", ".",
		"___", "_", "--", "-",
	)
	text = replacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 32 || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func (e *Extractor) extractPhones(text string, out intel.Extraction) {
	for _, re := range phonePatterns {
		for _, match := range re.FindAllString(text, -1) {
			normalized, ok := normalizePhone(match)
			if !ok {
				continue
			}
			if e.phoneValidator != nil {
				if valid, err := e.phoneValidator.Valid(normalized); err == nil && !valid {
					continue
				}
				// validator errors fall back to the heuristic acceptance
			}
			out.Add(intel.TypePhone, normalized)
		}
	}
}

// extractHandlesAndEmails classifies every @-token exactly once: a
// dotted right-hand side is an email candidate, a dotless one a
// payment handle. The two predicates are complements, so no token can
// land in both buckets.
func (e *Extractor) extractHandlesAndEmails(text string, out intel.Extraction) {
	for _, token := range atTokenRe.FindAllString(text, -1) {
		token = strings.Trim(token, ".")
		if strings.Count(token, "@") != 1 {
			continue
		}
		rhs := token[strings.Index(token, "@")+1:]
		if strings.Contains(rhs, ".") {
			if emailRe.MatchString(token) {
				out.Add(intel.TypeEmail, strings.ToLower(token))
			}
			continue
		}
		if len(rhs) >= 3 {
			// a known provider suffix raises confidence but is not required
			out.Add(intel.TypePaymentHandle, strings.ToLower(token))
		}
	}
}

func (e *Extractor) extractAccountsAndRouting(text string, out intel.Extraction) {
	for _, match := range routingRe.FindAllString(text, -1) {
		out.Add(intel.TypeRoutingCode, match)
	}
	routingPresent := len(out[intel.TypeRoutingCode]) > 0

	accountRe := digitRunRe
	if routingPresent {
		// a co-occurring routing code relaxes the upper length bound
		accountRe = longRunRe
	}
	for _, match := range accountRe.FindAllString(text, -1) {
		if isPhoneShaped(match) {
			continue
		}
		out.Add(intel.TypeBankAccount, match)
	}
	for _, match := range groupedAcctRe.FindAllString(text, -1) {
		digits := digitsOnly(match)
		if len(digits) >= 9 && !isPhoneShaped(digits) {
			out.Add(intel.TypeBankAccount, digits)
		}
	}
}

// isPhoneShaped guards against cross-classifying a valid mobile
// number as a bank account.
func isPhoneShaped(digits string) bool {
	return validBody(digits)
}

func (e *Extractor) extractURLs(text string, out intel.Extraction) {
	candidates := make([]string, 0, 4)
	candidates = append(candidates, schemeURLRe.FindAllString(text, -1)...)
	for _, match := range wwwURLRe.FindAllString(text, -1) {
		candidates = append(candidates, "http://"+match)
	}
	if e.domainPathRe != nil {
		for _, match := range e.domainPathRe.FindAllString(text, -1) {
			candidates = append(candidates, "http://"+match)
		}
	}
	for _, re := range e.shortenerRes {
		for _, match := range re.FindAllString(text, -1) {
			candidates = append(candidates, "http://"+match)
		}
	}

	for _, candidate := range candidates {
		candidate = strings.TrimRight(candidate, ").,;:!?")
		parsed, err := url.Parse(candidate)
		if err != nil || parsed.Host == "" || len(parsed.Host) <= 3 {
			continue
		}
		out.Add(intel.TypeURL, candidate)
	}
}

// extractHeuristics covers the best-effort types: national ids,
// amounts, self-disclosed names and locations. High false-positive
// tolerance is accepted here.
func (e *Extractor) extractHeuristics(text string, out intel.Extraction) {
	for _, match := range aadhaarRe.FindAllString(text, -1) {
		digits := digitsOnly(match)
		if len(digits) == 12 && match != digits {
			// only grouped 4-4-4 shapes count; contiguous 12-digit runs
			// are already claimed by the account extractor
			out.Add(intel.TypeNationalID, digits)
		}
	}
	for _, match := range panRe.FindAllString(text, -1) {
		out.Add(intel.TypeNationalID, match)
	}

	for _, groups := range amountRe.FindAllStringSubmatch(text, -1) {
		amount := strings.ReplaceAll(groups[1], ",", "")
		if amount != "" {
			out.Add(intel.TypeMonetaryAmount, amount)
		}
	}

	for _, groups := range nameRe.FindAllStringSubmatch(text, -1) {
		name := groups[1]
		if _, stop := nameStopwords[strings.Fields(name)[0]]; !stop {
			out.Add(intel.TypePersonName, name)
		}
	}
	for _, groups := range locationRe.FindAllStringSubmatch(text, -1) {
		out.Add(intel.TypeLocation, groups[1])
	}
}
