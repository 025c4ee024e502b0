package extract

import "strings"

// PhoneValidator is the optional external phone-grammar collaborator.
// The extractor must work correctly without it; when the call errors
// the length/prefix heuristic below is used instead.
type PhoneValidator interface {
	Valid(digits string) (bool, error)
}

// normalizePhone reduces a candidate to its canonical 10-digit form.
// Accepted shapes: a bare 10-digit mobile starting 6-9, a 91-prefixed
// 12-digit string with a valid body, or an 11-digit string whose
// leading zero strips to a valid body.
func normalizePhone(raw string) (string, bool) {
	digits := digitsOnly(raw)
	switch len(digits) {
	case 10:
		if validBody(digits) {
			return digits, true
		}
	case 11:
		if digits[0] == '0' && validBody(digits[1:]) {
			return digits[1:], true
		}
	case 12:
		if strings.HasPrefix(digits, "91") && validBody(digits[2:]) {
			return digits[2:], true
		}
	}
	return "", false
}

func validBody(digits string) bool {
	return len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9'
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
