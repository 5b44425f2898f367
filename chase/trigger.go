// Package chase implements forward-chaining saturation of a fact base
// under a rule set (spec.md §4.10): a pluggable per-step lifecycle of
// scheduling, trigger computation, trigger checking, existential
// variable renaming, and rule application, plus stratified execution
// driven by package grd.
package chase

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// Trigger is a rule paired with a substitution over its body (the
// frontier and any other body-bound variables), per spec.md §4.10 step 2.
type Trigger struct {
	Rule pie.Rule
	Sub  pie.Substitution
}

// polarAtom is a body atom tagged with whether it sits under negation,
// grounded on grd/graph.go's identical fragment decomposition (both
// packages see the same plain-conjunctive-with-negation rule bodies that
// pie.IsExistentialRule validates).
type polarAtom struct {
	Atom    pie.Atom
	Negated bool
}

func bodyPolarAtoms(body pie.Formula) ([]polarAtom, error) {
	switch v := body.(type) {
	case pie.AtomFormula:
		return []polarAtom{{Atom: v.Atom}}, nil
	case pie.Negation:
		af, ok := v.Inner.(pie.AtomFormula)
		if !ok {
			return nil, errUnsupportedRuleBody
		}
		return []polarAtom{{Atom: af.Atom, Negated: true}}, nil
	case pie.Conjunction:
		out := make([]polarAtom, 0, len(v.Formulas))
		for _, c := range v.Formulas {
			switch cv := c.(type) {
			case pie.AtomFormula:
				out = append(out, polarAtom{Atom: cv.Atom})
			case pie.Negation:
				af, ok := cv.Inner.(pie.AtomFormula)
				if !ok {
					return nil, errUnsupportedRuleBody
				}
				out = append(out, polarAtom{Atom: af.Atom, Negated: true})
			default:
				return nil, errUnsupportedRuleBody
			}
		}
		return out, nil
	default:
		return nil, errUnsupportedRuleBody
	}
}

func positiveAtoms(atoms []polarAtom) []pie.Atom {
	out := make([]pie.Atom, 0, len(atoms))
	for _, a := range atoms {
		if !a.Negated {
			out = append(out, a.Atom)
		}
	}
	return out
}

// sourcesOver builds a SourceSet routing every predicate appearing in
// rules (head and body, across every disjunct) to fb, merged with extra
// (extra wins on key collision), for the common "query against this
// fact base plus some computed sources" construction the teacher's
// database.go performs implicitly by owning every predicate itself.
func sourcesOver(rules []pie.Rule, fb *fact.FactBase, extra homomorphism.SourceSet) homomorphism.SourceSet {
	out := make(homomorphism.SourceSet, len(extra)+8)
	addPredicate := func(p pie.Predicate) {
		if _, ok := out[p]; !ok {
			out[p] = fb
		}
	}
	for _, r := range rules {
		if atoms, err := bodyPolarAtoms(r.Body); err == nil {
			for _, pa := range atoms {
				addPredicate(pa.Atom.Predicate)
			}
		}
		for _, d := range pie.HeadDisjuncts(r.Head) {
			if atoms, err := pie.HeadConjunctionAtoms(d); err == nil {
				for _, a := range atoms {
					addPredicate(a.Predicate)
				}
			}
		}
	}
	for p, s := range extra {
		out[p] = s
	}
	return out
}

func bodyFreeVars(rule pie.Rule) []pie.Variable { return rule.Body.FreeVars() }

func dedupSubstitutions(subs []pie.Substitution, vars []pie.Variable) []pie.Substitution {
	seen := map[string]bool{}
	out := make([]pie.Substitution, 0, len(subs))
	for _, s := range subs {
		key := substKey(s, vars)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func substKey(s pie.Substitution, vars []pie.Variable) string {
	restricted := pie.RestrictTo(s, vars)
	var b []byte
	for _, v := range vars {
		t, _ := restricted.Lookup(v)
		b = append(b, []byte(t.String())...)
		b = append(b, '|')
	}
	return string(b)
}
