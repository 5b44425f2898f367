package unify

import (
	"testing"

	"github.com/datalogplus/pie"
	"github.com/stretchr/testify/require"
)

func TestDisjunctivePieceUnifiers_RequiresEveryDisjunctMatched(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predQ := in.Predicate("q", 1)
	predR := in.Predicate("r", 1)
	x, y := in.Variable("X"), in.Variable("Y")
	// q(X) | r(Y), grounded on spec's disjunctive-UCQ-rewriting scenario.
	head := pie.NewDisjunction(
		pie.NewAtomFormula(pie.MustAtom(predQ, x)),
		pie.NewAtomFormula(pie.MustAtom(predR, y)),
	)

	a := in.Variable("A")
	query := []pie.Atom{pie.MustAtom(predQ, a)}

	// No r-atom in the query to satisfy the second disjunct, so the
	// disjunctive (joint) variant must yield no tuples.
	tuples, err := DisjunctivePieceUnifiers(head, query)
	req.NoError(err)
	req.Empty(tuples)
}

func TestDisjunctivePieceUnifiers_JointMatchAgreesOnFrontier(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predQ := in.Predicate("q", 1)
	predR := in.Predicate("r", 1)
	x, y := in.Variable("X"), in.Variable("Y")
	head := pie.NewDisjunction(
		pie.NewAtomFormula(pie.MustAtom(predQ, x)),
		pie.NewAtomFormula(pie.MustAtom(predR, y)),
	)

	a := in.Variable("A")
	query := []pie.Atom{pie.MustAtom(predQ, a), pie.MustAtom(predR, a)}

	tuples, err := DisjunctivePieceUnifiers(head, query)
	req.NoError(err)
	req.Len(tuples, 1)
	req.Len(tuples[0].Unifiers, 2)
	req.True(tuples[0].Partition.SameClass(x, a))
	req.True(tuples[0].Partition.SameClass(y, a))
}
