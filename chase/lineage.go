package chase

import (
	"sync"

	"github.com/datalogplus/pie"
)

// LineagePolicy selects how much provenance the chase records per
// derived atom, per spec.md §4.10's lineage axis.
type LineagePolicy int

const (
	// LineageNone records nothing; Record is a no-op.
	LineageNone LineagePolicy = iota
	// LineageSimple records one (rule, substitution) pair per atom — the
	// first derivation seen, not every alternative one.
	LineageSimple
	// LineageFederated keeps a list of (rule, substitution) pairs per
	// atom: Record appends on every call. The appliers call Record only
	// when an atom is first added, so a chase run files one pair per
	// created atom.
	LineageFederated
)

// LineageRecord is one derivation step: rule fired under sub produced the
// atom the record is filed under.
type LineageRecord struct {
	Rule pie.Rule
	Sub  pie.Substitution
}

// LineageTracker accumulates provenance for derived atoms across a chase
// run, guarded by a mutex so ParallelApplier/MultiThreadApplier can record
// concurrently.
type LineageTracker struct {
	Policy LineagePolicy

	mu   sync.Mutex
	byAtom map[string][]LineageRecord
}

// NewLineageTracker returns a tracker following policy.
func NewLineageTracker(policy LineagePolicy) *LineageTracker {
	return &LineageTracker{Policy: policy, byAtom: map[string][]LineageRecord{}}
}

// Record files one derivation of atom, respecting Policy.
func (l *LineageTracker) Record(atom pie.Atom, rule pie.Rule, sub pie.Substitution) {
	if l == nil || l.Policy == LineageNone {
		return
	}
	key := atom.String()
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.Policy {
	case LineageSimple:
		if _, ok := l.byAtom[key]; !ok {
			l.byAtom[key] = []LineageRecord{{Rule: rule, Sub: sub}}
		}
	case LineageFederated:
		l.byAtom[key] = append(l.byAtom[key], LineageRecord{Rule: rule, Sub: sub})
	}
}

// Lookup returns the recorded derivations for atom, if any.
func (l *LineageTracker) Lookup(atom pie.Atom) []LineageRecord {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LineageRecord(nil), l.byAtom[atom.String()]...)
}
