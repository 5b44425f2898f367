package chase

import (
	"context"
	"sync"

	uuid "github.com/satori/go.uuid"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

// FiringTrigger is a trigger together with the substitution the
// configured Renamer produced for it — the substitution actually used to
// ground a head disjunct (spec.md §4.10 step 4's output feeding step 5).
type FiringTrigger struct {
	Trigger Trigger
	Renamed pie.Substitution
}

// ApplyContext carries the destination an Applier writes new facts into.
type ApplyContext struct {
	Ctx     context.Context
	Target  fact.Writable
	Lineage *LineageTracker
}

// ApplyResult reports what a step's application actually produced.
type ApplyResult struct {
	Created       []pie.Atom
	FiredRuleIDs  map[uuid.UUID]bool
}

// Applier grounds a head disjunct per firing trigger and writes the
// result into the target (spec.md §4.10 step 5's four variants).
type Applier interface {
	Apply(ac ApplyContext, firings []FiringTrigger) (ApplyResult, error)
}

// groundHead grounds the trigger's rule's first head disjunct under sub —
// the forward chase's documented simplification of committing to a single
// disjunct rather than branching (spec.md §4.10 step 5's note: full
// disjunctive branching is out of scope for the forward chase; package
// unify/rewrite's backward UCQ rewriting is the intended path for
// reasoning under disjunction).
func groundHead(t Trigger, sub pie.Substitution) ([]pie.Atom, error) {
	disjunct := pie.HeadDisjuncts(t.Rule.Head)[0]
	atoms, err := pie.HeadConjunctionAtoms(disjunct)
	if err != nil {
		return nil, err
	}
	out := make([]pie.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = sub.ApplyAtom(a)
	}
	return out, nil
}

func applyOne(ac ApplyContext, f FiringTrigger) ([]pie.Atom, error) {
	atoms, err := groundHead(f.Trigger, f.Renamed)
	if err != nil {
		return nil, err
	}
	var created []pie.Atom
	for _, a := range atoms {
		isNew, err := ac.Target.AddAtom(a)
		if err != nil {
			return created, err
		}
		if isNew {
			created = append(created, a)
			if ac.Lineage != nil {
				ac.Lineage.Record(a, f.Trigger.Rule, f.Trigger.Sub)
			}
		}
	}
	return created, nil
}

// BreadthFirstApplier applies every firing sequentially, in the order
// given.
type BreadthFirstApplier struct{}

func (BreadthFirstApplier) Apply(ac ApplyContext, firings []FiringTrigger) (ApplyResult, error) {
	res := ApplyResult{FiredRuleIDs: map[uuid.UUID]bool{}}
	for _, f := range firings {
		created, err := applyOne(ac, f)
		if err != nil {
			return res, err
		}
		if len(created) > 0 {
			res.Created = append(res.Created, created...)
			res.FiredRuleIDs[f.Trigger.Rule.ID] = true
		}
	}
	return res, nil
}

// ParallelApplier applies every firing in its own goroutine, guarding the
// target and the result accumulation with a mutex — grounded on the
// teacher's database.go pattern of a goroutine per unit of work with a
// dedicated results mutex (clauseMutex/resultsMutex there).
type ParallelApplier struct{}

func (ParallelApplier) Apply(ac ApplyContext, firings []FiringTrigger) (ApplyResult, error) {
	res := ApplyResult{FiredRuleIDs: map[uuid.UUID]bool{}}
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	for _, f := range firings {
		wg.Add(1)
		go func(f FiringTrigger) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			created, err := applyOne(ac, f)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if len(created) > 0 {
				res.Created = append(res.Created, created...)
				res.FiredRuleIDs[f.Trigger.Rule.ID] = true
			}
		}(f)
	}
	wg.Wait()
	return res, firstErr
}

// MultiThreadApplier bounds ParallelApplier's unbounded goroutine fan-out
// to a fixed worker pool, for large firing batches.
type MultiThreadApplier struct {
	Workers int
}

func (m MultiThreadApplier) Apply(ac ApplyContext, firings []FiringTrigger) (ApplyResult, error) {
	workers := m.Workers
	if workers <= 0 {
		workers = 4
	}
	res := ApplyResult{FiredRuleIDs: map[uuid.UUID]bool{}}
	var mu sync.Mutex
	jobs := make(chan FiringTrigger)
	var wg sync.WaitGroup
	var firstErr error
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				created, err := applyOne(ac, f)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else if len(created) > 0 {
					res.Created = append(res.Created, created...)
					res.FiredRuleIDs[f.Trigger.Rule.ID] = true
				}
				mu.Unlock()
			}
		}()
	}
	for _, f := range firings {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
	return res, firstErr
}

// SourceDelegatedApplier lets a target that advertises fact.AtomAcceptance
// have final say over which atoms it accepts: a firing whose grounded head
// contains an atom the target rejects is dropped, and the remaining
// firings are applied through Inner. A target without AtomAcceptance gets
// every firing applied through Inner. fact.DatalogDelegable gets no
// special handling: rules are not handed to the target for evaluation.
type SourceDelegatedApplier struct {
	Inner Applier
}

func (s SourceDelegatedApplier) Apply(ac ApplyContext, firings []FiringTrigger) (ApplyResult, error) {
	accepter, hasAccepter := ac.Target.(fact.AtomAcceptance)
	if !hasAccepter {
		return s.Inner.Apply(ac, firings)
	}
	accepted := make([]FiringTrigger, 0, len(firings))
	for _, f := range firings {
		atoms, err := groundHead(f.Trigger, f.Renamed)
		if err != nil {
			return ApplyResult{}, err
		}
		ok := true
		for _, a := range atoms {
			if !accepter.Accepts(a) {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, f)
		}
	}
	return s.Inner.Apply(ac, accepted)
}
