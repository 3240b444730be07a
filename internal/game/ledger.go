package game

import (
	"sort"
	"time"
)

// SubmissionEntry is one accepted submission as seen in a snapshot.
type SubmissionEntry struct {
	PlayerID string
	Value    string
	At       time.Time
}

// SubmissionLedger collects at most one submission per player for the
// current phase. First submission wins; later ones from the same player
// are silently ignored. The ledger is not internally locked — the
// owning session serializes all access.
type SubmissionLedger struct {
	entries map[string]int
	order   []SubmissionEntry
	closed  bool
}

func NewSubmissionLedger() *SubmissionLedger {
	return &SubmissionLedger{entries: make(map[string]int)}
}

// Record accepts the player's submission unless the ledger is closed or
// the player already has an entry. Returns whether the entry was taken.
func (l *SubmissionLedger) Record(playerID, value string) bool {
	if l.closed {
		return false
	}
	if _, ok := l.entries[playerID]; ok {
		return false
	}
	l.entries[playerID] = len(l.order)
	l.order = append(l.order, SubmissionEntry{
		PlayerID: playerID,
		Value:    value,
		At:       time.Now(),
	})
	return true
}

func (l *SubmissionLedger) Has(playerID string) bool {
	_, ok := l.entries[playerID]
	return ok
}

func (l *SubmissionLedger) Len() int {
	return len(l.order)
}

// Close rejects all further submissions. Called when the phase timer
// fires, before evaluation begins.
func (l *SubmissionLedger) Close() {
	l.closed = true
}

func (l *SubmissionLedger) Closed() bool {
	return l.closed
}

// Snapshot returns a copy of the entries ordered by timestamp. Equal
// timestamps keep arrival order (stable sort over insertion order), so
// evaluation is deterministic even in that case. The ledger itself is
// never mutated by evaluation.
func (l *SubmissionLedger) Snapshot() []SubmissionEntry {
	out := make([]SubmissionEntry, len(l.order))
	copy(out, l.order)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}
