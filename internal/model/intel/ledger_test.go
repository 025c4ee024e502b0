package intel

import "testing"

func TestLedgerDeduplicates(t *testing.T) {
	l := NewLedger()

	if !l.Add(TypePhone, "9876543210") {
		t.Fatal("first add should report new")
	}
	if l.Add(TypePhone, "9876543210") {
		t.Fatal("second add of same value should report existing")
	}
	if l.Count(TypePhone) != 1 {
		t.Fatalf("expected one phone, got %d", l.Count(TypePhone))
	}
}

func TestLedgerMergeCountsOnlyNew(t *testing.T) {
	l := NewLedger()
	l.Add(TypeEmail, "a@b.com")

	ext := make(Extraction)
	ext.Add(TypeEmail, "a@b.com")
	ext.Add(TypeEmail, "c@d.com")
	ext.Add(TypePhone, "9876543210")

	if added := l.Merge(ext); added != 2 {
		t.Fatalf("expected 2 new entries, got %d", added)
	}
	if l.Total() != 3 {
		t.Fatalf("expected total 3, got %d", l.Total())
	}
}

func TestLedgerHighValue(t *testing.T) {
	l := NewLedger()
	l.Add(TypePersonName, "Rakesh")
	if l.HasHighValue() {
		t.Fatal("a bare person name is not high-value intelligence")
	}

	l.Add(TypePaymentHandle, "scammer@paytm")
	if !l.HasHighValue() {
		t.Fatal("payment handle should count as high-value")
	}
}

func TestLedgerSnapshotCoversAllTypes(t *testing.T) {
	l := NewLedger()
	l.Add(TypeURL, "http://bit.ly/x")

	snap := l.Snapshot()
	for _, typ := range AllTypes() {
		values, ok := snap[typ]
		if !ok {
			t.Fatalf("snapshot missing type %s", typ)
		}
		if values == nil {
			t.Fatalf("snapshot slice for %s must be non-nil", typ)
		}
	}
	if len(snap[TypeURL]) != 1 {
		t.Fatalf("expected one url in snapshot, got %v", snap[TypeURL])
	}
}

func TestLedgerPreservesInsertionOrder(t *testing.T) {
	l := NewLedger()
	l.Add(TypePhone, "9876543210")
	l.Add(TypePhone, "9123456789")

	got := l.Get(TypePhone)
	if len(got) != 2 || got[0] != "9876543210" || got[1] != "9123456789" {
		t.Fatalf("insertion order not preserved: %v", got)
	}
}
