package intel

// Ledger is the per-session, monotonically growing set of extracted
// entities. Entries are never removed and merging is an idempotent
// set union, so replaying the same extraction is harmless.
type Ledger struct {
	entries map[EntityType][]string
	seen    map[EntityType]map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[EntityType][]string),
		seen:    make(map[EntityType]map[string]struct{}),
	}
}

// Add records one normalized entity and reports whether it was new.
func (l *Ledger) Add(t EntityType, value string) bool {
	if value == "" {
		return false
	}
	set, ok := l.seen[t]
	if !ok {
		set = make(map[string]struct{})
		l.seen[t] = set
	}
	if _, dup := set[value]; dup {
		return false
	}
	set[value] = struct{}{}
	l.entries[t] = append(l.entries[t], value)
	return true
}

// Merge folds an extraction into the ledger and returns the number of
// entities that were new.
func (l *Ledger) Merge(ext Extraction) int {
	added := 0
	for _, t := range AllTypes() {
		for _, v := range ext[t] {
			if l.Add(t, v) {
				added++
			}
		}
	}
	return added
}

// Get returns the recorded entities of one type in insertion order.
func (l *Ledger) Get(t EntityType) []string {
	values := l.entries[t]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Has reports whether at least one entity of the type is recorded.
func (l *Ledger) Has(t EntityType) bool {
	return len(l.entries[t]) > 0
}

// Count returns the number of entities of one type.
func (l *Ledger) Count(t EntityType) int {
	return len(l.entries[t])
}

// Total returns the number of entities across all types.
func (l *Ledger) Total() int {
	n := 0
	for _, values := range l.entries {
		n += len(values)
	}
	return n
}

// HasHighValue reports whether the ledger holds at least one entity
// of a high-value type, one of the finalization conditions.
func (l *Ledger) HasHighValue() bool {
	for _, t := range AllTypes() {
		if t.HighValue() && l.Has(t) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := NewLedger()
	for t, values := range l.entries {
		for _, v := range values {
			out.Add(t, v)
		}
	}
	return out
}

// Snapshot returns a copy of the ledger contents keyed by type. Types
// with no entries map to empty (non-nil) slices so the report shape
// is stable.
func (l *Ledger) Snapshot() map[EntityType][]string {
	out := make(map[EntityType][]string, len(l.entries))
	for _, t := range AllTypes() {
		values := l.entries[t]
		copied := make([]string, len(values))
		copy(copied, values)
		out[t] = copied
	}
	return out
}
