// Package eval implements the first-order query evaluator stack of
// spec.md §4.4: preparing a formula (normalizing equality/comparisons,
// rewriting evaluable function terms into computed atoms, decomposing by
// connective) and executing a PreparedQuery against a set of readable
// sources.
package eval

import "github.com/datalogplus/pie"

// RewriteEvaluableFunctions implements spec.md §4.4 step 2: every
// occurrence of an evaluable function term inside an atom is replaced by
// a fresh variable, and a computed atom is conjoined at the atom's
// enclosing scope. It is the single shared helper both the atomic and
// conjunctive evaluators call, so both rewrite identically.
func RewriteEvaluableFunctions(in *pie.Interner, f pie.Formula) pie.Formula {
	switch v := f.(type) {
	case pie.AtomFormula:
		newAtom, extra := rewriteAtom(in, v.Atom)
		if len(extra) == 0 {
			return pie.NewAtomFormula(newAtom)
		}
		conjuncts := make([]pie.Formula, 0, len(extra)+1)
		for _, a := range extra {
			conjuncts = append(conjuncts, pie.NewAtomFormula(a))
		}
		conjuncts = append(conjuncts, pie.NewAtomFormula(newAtom))
		return pie.NewConjunction(conjuncts...)
	case pie.Conjunction:
		out := make([]pie.Formula, 0, len(v.Formulas))
		for _, child := range v.Formulas {
			rewritten := RewriteEvaluableFunctions(in, child)
			if c, ok := rewritten.(pie.Conjunction); ok {
				out = append(out, c.Formulas...)
			} else {
				out = append(out, rewritten)
			}
		}
		return pie.NewConjunction(out...)
	case pie.Disjunction:
		out := make([]pie.Formula, len(v.Formulas))
		for i, child := range v.Formulas {
			out[i] = RewriteEvaluableFunctions(in, child)
		}
		return pie.NewDisjunction(out...)
	case pie.Negation:
		return pie.NewNegation(RewriteEvaluableFunctions(in, v.Inner))
	case pie.Existential:
		return pie.NewExistential(v.Vars, RewriteEvaluableFunctions(in, v.Inner))
	case pie.Universal:
		return pie.NewUniversal(v.Vars, RewriteEvaluableFunctions(in, v.Inner))
	default:
		return f
	}
}

func rewriteAtom(in *pie.Interner, a pie.Atom) (pie.Atom, []pie.Atom) {
	var extra []pie.Atom
	newArgs := make([]pie.Term, len(a.Args))
	for i, t := range a.Args {
		rewritten, childExtra := rewriteTerm(in, t)
		newArgs[i] = rewritten
		extra = append(extra, childExtra...)
	}
	return pie.Atom{Predicate: a.Predicate, Args: newArgs}, extra
}

func rewriteTerm(in *pie.Interner, t pie.Term) (pie.Term, []pie.Atom) {
	if !t.IsFunction() {
		return t, nil
	}
	var extra []pie.Atom
	newArgs := make([]pie.Term, len(t.Args()))
	for i, a := range t.Args() {
		rewritten, childExtra := rewriteTerm(in, a)
		newArgs[i] = rewritten
		extra = append(extra, childExtra...)
	}
	if !t.IsEvaluableFunction() {
		return in.LogicalFunctionTerm(in.FunctionName(t), newArgs...), extra
	}
	result := in.Fresh("computed")
	predicate := in.Predicate(in.FunctionName(t), len(newArgs)+1)
	extra = append(extra, pie.MustAtom(predicate, append(append([]pie.Term(nil), newArgs...), result)...))
	return result, extra
}
