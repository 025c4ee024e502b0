package intel

import (
	"fmt"
	"strings"
	"time"
)

// EngagementMetrics summarize how long the adversary was kept busy.
type EngagementMetrics struct {
	TotalMessagesExchanged    int `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int `json:"engagementDurationSeconds"`
}

// MetricsFor derives engagement metrics from message timestamps.
func MetricsFor(total int, first, last time.Time) EngagementMetrics {
	duration := 0
	if total >= 2 && last.After(first) {
		duration = int(last.Sub(first).Seconds())
	}
	return EngagementMetrics{
		TotalMessagesExchanged:    total,
		EngagementDurationSeconds: duration,
	}
}

// Report is the one-way payload pushed to the reporting sink when a
// session finalizes.
type Report struct {
	SessionID              string                  `json:"sessionId"`
	ScamDetected           bool                    `json:"scamDetected"`
	ScamType               string                  `json:"scamType"`
	ConfidenceLevel        float64                 `json:"confidenceLevel"`
	TotalMessagesExchanged int                     `json:"totalMessagesExchanged"`
	ExtractedIntelligence  map[EntityType][]string `json:"extractedIntelligence"`
	EngagementMetrics      EngagementMetrics       `json:"engagementMetrics"`
	AgentNotes             string                  `json:"agentNotes"`
	FinalizedAt            time.Time               `json:"finalizedAt"`
}

// Notes builds the human-readable summary embedded in the report.
func Notes(scamDetected bool, scamType string, confidence float64, ledger *Ledger, metrics EngagementMetrics, riskSummary string) string {
	if !scamDetected {
		return "No scam pattern detected."
	}

	parts := []string{fmt.Sprintf(
		"Scam detected: %s with %.0f%% confidence and %d exchanges.",
		scamType, confidence*100, metrics.TotalMessagesExchanged,
	)}
	counts := []struct {
		t     EntityType
		label string
	}{
		{TypePhone, "phone number(s)"},
		{TypePaymentHandle, "payment handle(s)"},
		{TypeBankAccount, "bank account(s)"},
		{TypeURL, "suspicious link(s)"},
		{TypeEmail, "email address(es)"},
	}
	for _, c := range counts {
		if n := ledger.Count(c.t); n > 0 {
			parts = append(parts, fmt.Sprintf("Extracted %d %s.", n, c.label))
		}
	}
	if riskSummary != "" {
		parts = append(parts, riskSummary)
	}
	return strings.Join(parts, " ")
}
