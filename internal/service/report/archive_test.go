package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/teamyukt/honeynet/internal/model/intel"
)

func testReport(id string) *intel.Report {
	ledger := intel.NewLedger()
	ledger.Add(intel.TypePhone, "9876543210")
	return &intel.Report{
		SessionID:              id,
		ScamDetected:           true,
		ScamType:               "Banking/Financial Fraud",
		ConfidenceLevel:        0.8,
		TotalMessagesExchanged: 12,
		ExtractedIntelligence:  ledger.Snapshot(),
		EngagementMetrics:      intel.EngagementMetrics{TotalMessagesExchanged: 12, EngagementDurationSeconds: 300},
		AgentNotes:             "Scam detected.",
		FinalizedAt:            time.Now().UTC(),
	}
}

func TestArchiveSaveAndGet(t *testing.T) {
	archive, err := NewArchive(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()
	if err := archive.Save(ctx, testReport("sess-1"), true); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := archive.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected archived report")
	}
	if got.ScamType != "Banking/Financial Fraud" || got.TotalMessagesExchanged != 12 {
		t.Fatalf("payload mismatch: %+v", got)
	}
	if phones := got.ExtractedIntelligence[intel.TypePhone]; len(phones) != 1 {
		t.Fatalf("intelligence lost in round trip: %v", got.ExtractedIntelligence)
	}
}

func TestArchiveGetMissing(t *testing.T) {
	archive, err := NewArchive(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	got, err := archive.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown session")
	}
}

func TestArchiveUpsert(t *testing.T) {
	archive, err := NewArchive(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()
	first := testReport("sess-1")
	if err := archive.Save(ctx, first, false); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second := testReport("sess-1")
	second.AgentNotes = "updated"
	if err := archive.Save(ctx, second, true); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	reports, err := archive.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("upsert created duplicate rows: %d", len(reports))
	}
	if reports[0].AgentNotes != "updated" {
		t.Fatalf("row not refreshed: %q", reports[0].AgentNotes)
	}
}
