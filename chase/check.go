package chase

import (
	"context"
	"sync"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// CheckContext carries what a TriggerChecker needs to decide whether a
// computed trigger still needs to fire, per spec.md §4.10 step 3.
type CheckContext struct {
	Ctx      context.Context
	Interner *pie.Interner
	Sources  homomorphism.SourceSet
	// Renamer is the chase's configured renamer, needed by
	// EquivalentChecker to compute the exact head image a firing would
	// produce (spec.md's "equivalent head image", as opposed to
	// RestrictedChecker's looser "any existing homomorphism").
	Renamer Renamer
	// Seen accumulates per-rule dedup state across the whole chase run,
	// for SemiObliviousChecker.
	Seen *SeenSet
}

// TriggerChecker decides whether a computed trigger still needs firing,
// per spec.md §4.10 step 3's five variants.
type TriggerChecker interface {
	NeedsFiring(cc CheckContext, t Trigger) (bool, error)
}

// SeenSet records which (rule, frontier substitution) pairs have already
// fired, for SemiObliviousChecker. Guarded by a mutex so it is safe to
// share across a ParallelApplier's goroutines.
type SeenSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet() *SeenSet { return &SeenSet{seen: map[string]bool{}} }

// CheckAndMark reports whether key was already present, then records it.
func (s *SeenSet) CheckAndMark(key string) (alreadySeen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return true
	}
	s.seen[key] = true
	return false
}

func frontierKey(r pie.Rule, sub pie.Substitution) string {
	return r.ID.String() + "#" + substKey(sub, pie.FrontierVariables(r))
}

// ObliviousChecker always fires.
type ObliviousChecker struct{}

func (ObliviousChecker) NeedsFiring(CheckContext, Trigger) (bool, error) { return true, nil }

// SemiObliviousChecker fires unless an equivalent trigger — same rule,
// same frontier-variable bindings — has already fired at any point in
// the run.
type SemiObliviousChecker struct{}

func (SemiObliviousChecker) NeedsFiring(cc CheckContext, t Trigger) (bool, error) {
	if cc.Seen == nil {
		return true, nil
	}
	return !cc.Seen.CheckAndMark(frontierKey(t.Rule, t.Sub)), nil
}

// headHomomorphismExists reports whether some extension of t.Sub maps
// the trigger's (first, per the forward-chase disjunction simplification
// documented on BreadthFirstApplier) head disjunct into the current
// facts.
func headHomomorphismExists(cc CheckContext, t Trigger) (bool, error) {
	disjunct := pie.HeadDisjuncts(t.Rule.Head)[0]
	atoms, err := pie.HeadConjunctionAtoms(disjunct)
	if err != nil {
		return false, err
	}
	search := homomorphism.NewSearch(cc.Sources, nil)
	it := search.Evaluate(cc.Ctx, atoms, t.Sub)
	defer it.Close()
	_, found := it.Next()
	if err := it.Err(); err != nil {
		return false, err
	}
	return found, nil
}

// RestrictedChecker fires unless the rule's head already has some
// homomorphism into the current facts extending σ, regardless of which
// witness values satisfy the existential positions.
type RestrictedChecker struct{}

func (RestrictedChecker) NeedsFiring(cc CheckContext, t Trigger) (bool, error) {
	exists, err := headHomomorphismExists(cc, t)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// EquivalentChecker fires unless the *exact* head image this trigger
// would produce (using the configured renamer's deterministic witnesses)
// is already present — a tighter check than RestrictedChecker, which
// tolerates a differently-witnessed image already satisfying σ.
type EquivalentChecker struct{}

func (EquivalentChecker) NeedsFiring(cc CheckContext, t Trigger) (bool, error) {
	renamer := cc.Renamer
	if renamer == nil {
		renamer = FreshRenamer{}
	}
	rename := renamer.Rename(cc.Interner, t.Rule, t.Sub)
	disjunct := pie.HeadDisjuncts(t.Rule.Head)[0]
	atoms, err := pie.HeadConjunctionAtoms(disjunct)
	if err != nil {
		return false, err
	}
	for _, a := range atoms {
		ground := rename.ApplyAtom(a)
		if !ground.IsGround() {
			return true, nil // can't check equivalence without a full image; fire to stay sound
		}
		src, ok := cc.Sources[ground.Predicate]
		if !ok || !src.CanEvaluate(fact.NewBasicQuery(ground.Predicate, ground.Args)) {
			continue
		}
		q := fact.NewBasicQuery(ground.Predicate, ground.Args)
		it, err := src.Evaluate(q)
		if err != nil {
			return false, err
		}
		_, found := it.Next()
		if err := it.Err(); err != nil {
			return false, err
		}
		if !found {
			return true, nil
		}
	}
	return false, nil
}

// MultiChecker fires only if every child checker says the trigger needs
// firing (spec.md §4.10 step 3, "multi: compose any of the above (AND)").
type MultiChecker struct {
	Checkers []TriggerChecker
}

func (m MultiChecker) NeedsFiring(cc CheckContext, t Trigger) (bool, error) {
	for _, c := range m.Checkers {
		ok, err := c.NeedsFiring(cc, t)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
