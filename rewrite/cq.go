// Package rewrite implements the breadth-first UCQ rewriting of spec.md
// §4.7: expanding a conjunctive query into a union of conjunctive queries
// equivalent to it under a rule set, via package unify's piece unifiers.
package rewrite

import "github.com/datalogplus/pie"

// CQ is a conjunctive query: a set of atoms plus an ordered list of
// answer variables, the flattened shape UCQ rewriting operates on
// (spec.md §4.7 works over plain conjunctions, unlike the general
// Formula-bodied pie.FOQuery of §4.4).
type CQ struct {
	AnswerVars []pie.Variable
	Atoms      []pie.Atom
}

// FromFOQuery flattens a plain-conjunctive FOQuery's body into a CQ. It
// fails if the body is not a plain conjunction of atoms.
func FromFOQuery(q pie.FOQuery) (CQ, error) {
	atoms, err := bodyAtoms(q.Body)
	if err != nil {
		return CQ{}, err
	}
	return CQ{AnswerVars: append([]pie.Variable(nil), q.AnswerVars...), Atoms: atoms}, nil
}

func bodyAtoms(body pie.Formula) ([]pie.Atom, error) {
	switch b := body.(type) {
	case pie.AtomFormula:
		return []pie.Atom{b.Atom}, nil
	case pie.Conjunction:
		return pie.ConjunctionAtoms(b)
	default:
		return nil, errNotPlainCQ
	}
}
