package rewrite

import (
	"context"
	"fmt"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// Subsumes reports whether general subsumes specific: there is a
// homomorphism from general's atoms into specific's atoms that maps
// general's i-th answer variable to specific's i-th answer variable, per
// spec.md §4.7's "homomorphism from it to an existing Q' ∈ O, respecting
// answer variables". The check freezes specific's variables into fresh
// constants and runs homomorphism search for general over the resulting
// ground fact base, grounded on package homomorphism's backtracking
// search (§4.3) rather than a bespoke matcher.
func Subsumes(in *pie.Interner, general, specific CQ) bool {
	if len(general.AnswerVars) != len(specific.AnswerVars) {
		return false
	}
	freeze := freezeSubstitution(in, specific)
	frozenAtoms := make([]pie.Atom, len(specific.Atoms))
	for i, a := range specific.Atoms {
		frozenAtoms[i] = freeze.ApplyAtom(a)
	}
	fb := fact.NewFactBase()
	for _, a := range frozenAtoms {
		if _, err := fb.AddAtom(a); err != nil {
			// Every arg was frozen to a constant above, so this should
			// never happen; treat as non-subsumption defensively.
			return false
		}
	}
	sources := homomorphism.SourceSet{}
	for _, a := range frozenAtoms {
		sources[a.Predicate] = fb
	}

	init := pie.EmptySubstitution()
	for i, v := range general.AnswerVars {
		target := freeze.Apply(specific.AnswerVars[i])
		var ok bool
		init, ok = init.ExtendConsistent(v, target)
		if !ok {
			return false
		}
	}

	search := homomorphism.NewSearch(sources, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	it := search.Evaluate(ctx, general.Atoms, init)
	defer it.Close()
	_, found := it.Next()
	return found
}

// freezeSubstitution maps every free variable of specific to a fresh
// constant, so a homomorphism into specific's (now ground) atoms can be
// found via ordinary homomorphism search.
func freezeSubstitution(in *pie.Interner, specific CQ) pie.Substitution {
	seen := map[int64]bool{}
	out := pie.EmptySubstitution()
	bind := func(v pie.Variable) {
		if seen[v.ID()] {
			return
		}
		seen[v.ID()] = true
		out = out.Bind(v, in.Constant(fmt.Sprintf("__frozen_%d", v.ID())))
	}
	for _, a := range specific.Atoms {
		for _, v := range a.FreeVariables() {
			bind(v)
		}
	}
	for _, v := range specific.AnswerVars {
		bind(v)
	}
	return out
}

// SubsumedByAny reports whether any member of pool subsumes cand.
func SubsumedByAny(in *pie.Interner, cand CQ, pool []CQ) bool {
	for _, existing := range pool {
		if Subsumes(in, existing, cand) {
			return true
		}
	}
	return false
}

// Minimize drops every CQ in cqs that is subsumed by another distinct
// member, enforcing spec.md §4.7's minimality property as a final pass.
func Minimize(in *pie.Interner, cqs []CQ) []CQ {
	keep := make([]bool, len(cqs))
	for i := range cqs {
		keep[i] = true
	}
	for i, a := range cqs {
		if !keep[i] {
			continue
		}
		for j, b := range cqs {
			if i == j || !keep[j] {
				continue
			}
			if Subsumes(in, a, b) {
				keep[j] = false
			}
		}
	}
	out := make([]CQ, 0, len(cqs))
	for i, c := range cqs {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}
