package fact

import (
	"fmt"
	"strings"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/errs"
	"github.com/spaolacci/murmur3"
)

func atomKey(a pie.Atom) string {
	var b strings.Builder
	b.WriteString(a.Predicate.String())
	for _, t := range a.Args {
		b.WriteByte('|')
		b.WriteString(t.String())
	}
	return b.String()
}

// posIndexKey identifies the (predicate, position, term) triple used for
// join probes (spec.md §4.2), hashed with murmur3 exactly as the teacher
// hashes subgoal keys in search.go.
type posIndexKey struct {
	predicate string
	position  int
	termHash  uint64
}

func hashTerm(t pie.Term) uint64 {
	return murmur3.Sum64([]byte(t.String()))
}

// FactBase is a mutable set of ground atoms indexed by predicate and by
// (predicate, position, term), per spec.md §4.2. It is not thread-safe
// (spec.md §5): callers sharing one across goroutines must synchronize
// externally.
type FactBase struct {
	byPredicate map[string]map[string]pie.Atom // predicate key -> atom key -> atom
	byPosition  map[posIndexKey]map[string]pie.Atom
	frozen      bool
}

// NewFactBase creates an empty, mutable fact base.
func NewFactBase() *FactBase {
	return &FactBase{
		byPredicate: map[string]map[string]pie.Atom{},
		byPosition:  map[posIndexKey]map[string]pie.Atom{},
	}
}

// NewFactBaseFromSeed creates a fact base pre-populated with seed, for
// the common "facts from a parsed program" construction path.
func NewFactBaseFromSeed(seed []pie.Atom) *FactBase {
	fb := NewFactBase()
	for _, a := range seed {
		_, _ = fb.AddAtom(a)
	}
	return fb
}

// Freeze forbids further mutation: AddAtom/RemoveAtom return an error
// afterwards, per spec.md §4.2's "frozen variant forbids mutation after
// construction."
func (fb *FactBase) Freeze() { fb.frozen = true }

// AddAtom adds a (ground) atom, idempotently. Returns whether it was new.
func (fb *FactBase) AddAtom(a pie.Atom) (bool, error) {
	if fb.frozen {
		return false, fmt.Errorf("pie/fact: fact base is frozen: %w", errs.ErrValidation)
	}
	if !a.IsGround() {
		return false, fmt.Errorf("pie/fact: cannot add non-ground atom %s: %w", a, errs.ErrValidation)
	}
	pk := a.Predicate.String()
	ak := atomKey(a)
	byAtom, ok := fb.byPredicate[pk]
	if !ok {
		byAtom = map[string]pie.Atom{}
		fb.byPredicate[pk] = byAtom
	}
	if _, exists := byAtom[ak]; exists {
		return false, nil
	}
	byAtom[ak] = a
	for pos, t := range a.Args {
		key := posIndexKey{predicate: pk, position: pos, termHash: hashTerm(t)}
		bucket, ok := fb.byPosition[key]
		if !ok {
			bucket = map[string]pie.Atom{}
			fb.byPosition[key] = bucket
		}
		bucket[ak] = a
	}
	return true, nil
}

// RemoveAtom removes an atom from every index. Returns whether it existed.
func (fb *FactBase) RemoveAtom(a pie.Atom) (bool, error) {
	if fb.frozen {
		return false, fmt.Errorf("pie/fact: fact base is frozen: %w", errs.ErrValidation)
	}
	pk := a.Predicate.String()
	ak := atomKey(a)
	byAtom, ok := fb.byPredicate[pk]
	if !ok {
		return false, nil
	}
	if _, exists := byAtom[ak]; !exists {
		return false, nil
	}
	delete(byAtom, ak)
	for pos, t := range a.Args {
		key := posIndexKey{predicate: pk, position: pos, termHash: hashTerm(t)}
		if bucket, ok := fb.byPosition[key]; ok {
			delete(bucket, ak)
		}
	}
	return true, nil
}

// Contains reports whether a is present.
func (fb *FactBase) Contains(a pie.Atom) bool {
	byAtom, ok := fb.byPredicate[a.Predicate.String()]
	if !ok {
		return false
	}
	_, ok = byAtom[atomKey(a)]
	return ok
}

// Len returns the total number of stored atoms.
func (fb *FactBase) Len() int {
	n := 0
	for _, byAtom := range fb.byPredicate {
		n += len(byAtom)
	}
	return n
}

// AllAtoms returns every stored atom, for snapshotting or chase delta
// computation.
func (fb *FactBase) AllAtoms() []pie.Atom {
	out := make([]pie.Atom, 0, fb.Len())
	for _, byAtom := range fb.byPredicate {
		for _, a := range byAtom {
			out = append(out, a)
		}
	}
	return out
}

// Enumerate implements MaterializedData: the full extension of a
// predicate.
func (fb *FactBase) Enumerate(p pie.Predicate) []pie.Atom {
	byAtom, ok := fb.byPredicate[p.String()]
	if !ok {
		return nil
	}
	out := make([]pie.Atom, 0, len(byAtom))
	for _, a := range byAtom {
		out = append(out, a)
	}
	return out
}

// Pattern implements ReadableData: a FactBase imposes no mandatory
// positions, since a linear/indexed scan can serve any combination of
// bound and unbound positions (spec.md §4.2's algorithm).
func (fb *FactBase) Pattern() AtomicPattern { return AtomicPattern{} }

// CanEvaluate always succeeds for a FactBase.
func (fb *FactBase) CanEvaluate(q BasicQuery) bool { return true }

// EstimateBound returns the size of the smallest bound-position index
// bucket that intersects q, or the predicate's full extent if q binds
// nothing.
func (fb *FactBase) EstimateBound(q BasicQuery, known pie.Substitution) (int, bool) {
	byAtom, ok := fb.byPredicate[q.Predicate.String()]
	if !ok {
		return 0, true
	}
	best := len(byAtom)
	for pos, t := range q.BoundPositions {
		key := posIndexKey{predicate: q.Predicate.String(), position: pos, termHash: hashTerm(t)}
		if bucket, ok := fb.byPosition[key]; ok {
			if len(bucket) < best {
				best = len(bucket)
			}
		} else {
			return 0, true
		}
	}
	return best, true
}

// Evaluate implements the algorithm in spec.md §4.2:
//  1. start with the atoms at q.Predicate
//  2. filter by each bound position using the position index
//  3. yield tuples built from q.AnswerPositions in key order
func (fb *FactBase) Evaluate(q BasicQuery) (TupleIterator, error) {
	candidates, err := fb.candidatesFor(q)
	if err != nil {
		return nil, err
	}
	answerPositions := sortedKeys(q.AnswerPositions)
	tuples := make([]Tuple, 0, len(candidates))
	for _, a := range candidates {
		if !matchesBound(a, q.BoundPositions) {
			continue
		}
		tuple := make(Tuple, len(answerPositions))
		for i, pos := range answerPositions {
			tuple[i] = a.Args[pos]
		}
		tuples = append(tuples, tuple)
	}
	return NewSliceIterator(tuples), nil
}

func (fb *FactBase) candidatesFor(q BasicQuery) ([]pie.Atom, error) {
	byAtom, ok := fb.byPredicate[q.Predicate.String()]
	if !ok {
		return nil, nil
	}
	// Use the smallest available bound-position bucket as the scan set,
	// falling back to the full predicate extension.
	var best map[string]pie.Atom
	for pos, t := range q.BoundPositions {
		key := posIndexKey{predicate: q.Predicate.String(), position: pos, termHash: hashTerm(t)}
		bucket, ok := fb.byPosition[key]
		if !ok {
			return nil, nil
		}
		if best == nil || len(bucket) < len(best) {
			best = bucket
		}
	}
	if best == nil {
		best = byAtom
	}
	out := make([]pie.Atom, 0, len(best))
	for _, a := range best {
		out = append(out, a)
	}
	return out, nil
}

func matchesBound(a pie.Atom, bound map[int]pie.Term) bool {
	for pos, t := range bound {
		if !a.Args[pos].Equal(t) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[int]pie.Variable) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// insertion sort is fine: answer lists are small (bounded by atom
	// arity).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
