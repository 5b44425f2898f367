package chase

import (
	uuid "github.com/satori/go.uuid"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/grd"
)

// ScheduleContext carries the information schedulers need to pick a set
// of candidate rules for the current step, per spec.md §4.10 step 1.
type ScheduleContext struct {
	Rules []pie.Rule
	// Graph backs the GRD-based scheduler; nil is fine for the other two.
	Graph *grd.Graph
	// Step is the current step number (0 for the first step); the
	// notion of "touched last step" is vacuous on step 0, so every
	// scheduler treats step 0 as "schedule everything".
	Step int
	// TouchedPredicates holds the head predicates of every atom created
	// in the previous step.
	TouchedPredicates map[pie.Predicate]bool
	// TouchedRules holds the ids of every rule that fired (had ≥1
	// applied trigger) in the previous step.
	TouchedRules map[uuid.UUID]bool
}

// Scheduler selects the candidate rule set for a step (spec.md §4.10
// step 1, §6's "scheduler" configuration axis).
type Scheduler interface {
	Schedule(sc ScheduleContext) []pie.Rule
}

// NaiveScheduler reschedules every rule on every step.
type NaiveScheduler struct{}

func (NaiveScheduler) Schedule(sc ScheduleContext) []pie.Rule { return sc.Rules }

// PredicateScheduler restricts a step (after the first) to rules whose
// body mentions a predicate touched by the previous step's new atoms.
type PredicateScheduler struct{}

func (PredicateScheduler) Schedule(sc ScheduleContext) []pie.Rule {
	if sc.Step == 0 {
		return sc.Rules
	}
	var out []pie.Rule
	for _, r := range sc.Rules {
		atoms, err := bodyPolarAtoms(r.Body)
		if err != nil {
			out = append(out, r) // can't decide; be conservative and include it
			continue
		}
		for _, a := range atoms {
			if sc.TouchedPredicates[a.Atom.Predicate] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// GRDScheduler restricts a step (after the first) to rules reachable in
// the GRD from a rule that fired in the previous step — a tighter bound
// than PredicateScheduler, since it also excludes rules that happen to
// share a predicate name but whose GRD edge was refined away (hybrid
// mode) or never existed (disjoint SCC).
type GRDScheduler struct{}

func (GRDScheduler) Schedule(sc ScheduleContext) []pie.Rule {
	if sc.Step == 0 || sc.Graph == nil {
		return sc.Rules
	}
	reachable := map[uuid.UUID]bool{}
	var mark func(r pie.Rule)
	mark = func(r pie.Rule) {
		if reachable[r.ID] {
			return
		}
		reachable[r.ID] = true
		for _, s := range sc.Graph.Successors(r) {
			mark(s)
		}
	}
	for _, r := range sc.Rules {
		if sc.TouchedRules[r.ID] {
			mark(r)
		}
	}
	var out []pie.Rule
	for _, r := range sc.Rules {
		if reachable[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
