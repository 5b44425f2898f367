package chase

import (
	"context"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/eval"
	"github.com/datalogplus/pie/fact"
)

// ComputeContext carries what a TriggerComputer needs to enumerate body
// homomorphisms for one rule, per spec.md §4.10 step 2.
type ComputeContext struct {
	Ctx      context.Context
	Interner *pie.Interner
	Env      *eval.Env
	Rule     pie.Rule
	// Delta holds every atom created by the previous step, for the
	// delta-aware computers (restricted, semi-naive, two-steps). On the
	// first step it holds the seed facts.
	Delta []pie.Atom
	// Facts is the current (pre-step) fact base, for delta-aware
	// computers that need to probe membership.
	Facts *fact.FactBase
}

// TriggerComputer enumerates body substitutions for a rule, per spec.md
// §4.10 step 2's four variants.
type TriggerComputer interface {
	Compute(cc ComputeContext) ([]pie.Substitution, error)
}

func evaluateBody(cc ComputeContext, env *eval.Env) ([]pie.Substitution, error) {
	prepared := eval.Prepare(cc.Interner, cc.Rule.Body)
	it, err := eval.Execute(cc.Ctx, env, prepared, pie.EmptySubstitution())
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []pie.Substitution
	for {
		sub, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, sub)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return dedupSubstitutions(out, bodyFreeVars(cc.Rule)), nil
}

// NaiveComputer re-evaluates the full body homomorphism every step,
// ignoring which facts are new (spec.md §4.10 step 2, "naive").
type NaiveComputer struct{}

func (NaiveComputer) Compute(cc ComputeContext) ([]pie.Substitution, error) {
	return evaluateBody(cc, cc.Env)
}

func deltaFactBase(delta []pie.Atom) *fact.FactBase {
	fb := fact.NewFactBase()
	for _, a := range delta {
		_, _ = fb.AddAtom(a)
	}
	return fb
}

func atomInDelta(delta map[string]bool, a pie.Atom) bool { return delta[a.Predicate.String()+"|"+a.String()] }

func deltaKeys(delta []pie.Atom) map[string]bool {
	out := make(map[string]bool, len(delta))
	for _, a := range delta {
		out[a.Predicate.String()+"|"+a.String()] = true
	}
	return out
}

// RestrictedComputer keeps only the homomorphisms that use at least one
// fact created since the previous step (spec.md §4.10 step 2,
// "restricted"). It evaluates the full body (same as NaiveComputer) and
// post-filters, trading the performance win of a true delta-aware join
// for simplicity — SemiNaiveComputer below is the performance-minded
// variant.
type RestrictedComputer struct{}

func (RestrictedComputer) Compute(cc ComputeContext) ([]pie.Substitution, error) {
	if len(cc.Delta) == 0 {
		return nil, nil
	}
	atoms, err := bodyPolarAtoms(cc.Rule.Body)
	if err != nil {
		return nil, err
	}
	pos := positiveAtoms(atoms)
	subs, err := evaluateBody(cc, cc.Env)
	if err != nil {
		return nil, err
	}
	deltaSet := deltaKeys(cc.Delta)
	out := make([]pie.Substitution, 0, len(subs))
	for _, sub := range subs {
		for _, a := range pos {
			if atomInDelta(deltaSet, sub.ApplyAtom(a)) {
				out = append(out, sub)
				break
			}
		}
	}
	return out, nil
}

// SemiNaiveComputer implements the classical delta-based join (spec.md
// §4.10 step 2, "semi-naive"): for each positive body atom in turn, force
// that atom to match only delta facts while every other atom matches the
// full current fact base, then unions the results (de-duplicated). This
// enumerates exactly the homomorphisms using ≥1 new fact, without first
// computing the (potentially much larger) full-body join that
// RestrictedComputer discards most of.
type SemiNaiveComputer struct{}

func (SemiNaiveComputer) Compute(cc ComputeContext) ([]pie.Substitution, error) {
	if len(cc.Delta) == 0 {
		return nil, nil
	}
	atoms, err := bodyPolarAtoms(cc.Rule.Body)
	if err != nil {
		return nil, err
	}
	pos := positiveAtoms(atoms)
	if len(pos) == 0 {
		return nil, nil
	}
	negConjuncts := negationConjuncts(atoms)
	deltaFB := deltaFactBase(cc.Delta)

	var all []pie.Substitution
	for i := range pos {
		subs, err := joinAtomsWithOverride(pos, i, deltaFB, cc.Env.Sources, pie.EmptySubstitution())
		if err != nil {
			return nil, err
		}
		all = append(all, subs...)
	}
	filtered, err := applyNegation(cc, negConjuncts, all)
	if err != nil {
		return nil, err
	}
	return dedupSubstitutions(filtered, bodyFreeVars(cc.Rule)), nil
}

func negationConjuncts(atoms []polarAtom) []pie.Atom {
	var out []pie.Atom
	for _, a := range atoms {
		if a.Negated {
			out = append(out, a.Atom)
		}
	}
	return out
}

// applyNegation drops every substitution for which a negated body atom
// is, once σ is applied, present in the full current fact base — the
// same negation-as-failure test eval.Execute's executeNegation performs,
// re-implemented here directly since the delta-aware computers bypass
// eval.Execute's generic connective dispatch for their positive join.
func applyNegation(cc ComputeContext, negAtoms []pie.Atom, subs []pie.Substitution) ([]pie.Substitution, error) {
	if len(negAtoms) == 0 {
		return subs, nil
	}
	out := make([]pie.Substitution, 0, len(subs))
	for _, sub := range subs {
		holds := false
		for _, a := range negAtoms {
			ground := sub.ApplyAtom(a)
			if !ground.IsGround() {
				continue
			}
			if cc.Facts.Contains(ground) {
				holds = true
				break
			}
		}
		if !holds {
			out = append(out, sub)
		}
	}
	return out, nil
}

// TwoStepsComputer materializes the delta as a one-shot source, then
// drives the whole positive body conjunction in a single pass where the
// *first* positive atom is pinned to the delta and the rest see the full
// fact base — one materialization step rather than SemiNaiveComputer's
// per-atom union, per spec.md §4.10 step 2's "materialize deltas before
// enumerating."
type TwoStepsComputer struct{}

func (TwoStepsComputer) Compute(cc ComputeContext) ([]pie.Substitution, error) {
	if len(cc.Delta) == 0 {
		return nil, nil
	}
	atoms, err := bodyPolarAtoms(cc.Rule.Body)
	if err != nil {
		return nil, err
	}
	pos := positiveAtoms(atoms)
	if len(pos) == 0 {
		return nil, nil
	}
	deltaFB := deltaFactBase(cc.Delta)
	subs, err := joinAtomsWithOverride(pos, 0, deltaFB, cc.Env.Sources, pie.EmptySubstitution())
	if err != nil {
		return nil, err
	}
	filtered, err := applyNegation(cc, negationConjuncts(atoms), subs)
	if err != nil {
		return nil, err
	}
	return dedupSubstitutions(filtered, bodyFreeVars(cc.Rule)), nil
}
