package unify

import (
	"testing"

	"github.com/datalogplus/pie"
	"github.com/stretchr/testify/require"
)

func TestPieceUnifiers_ExistentialLeakRejected(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)
	predQ := in.Predicate("q", 1)
	x, y := in.Variable("X"), in.Variable("Y")
	head := pie.NewExistential([]pie.Variable{y}, pie.NewAtomFormula(pie.MustAtom(predP, x, y)))

	a, b := in.Variable("A"), in.Variable("B")
	// q(B) shares B with p(A,B)'s second position, which unifies against
	// the existential Y; since q(B) sits outside the piece, Y leaks.
	query := []pie.Atom{pie.MustAtom(predP, a, b), pie.MustAtom(predQ, b)}

	unifiers, err := PieceUnifiers(head, query)
	req.NoError(err)
	req.Empty(unifiers, "existential isolation must reject every candidate that leaks Y to q(B)")
}

func TestPieceUnifiers_NoLeakWhenIsolated(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)
	x, y := in.Variable("X"), in.Variable("Y")
	head := pie.NewExistential([]pie.Variable{y}, pie.NewAtomFormula(pie.MustAtom(predP, x, y)))

	a, b := in.Variable("A"), in.Variable("B")
	query := []pie.Atom{pie.MustAtom(predP, a, b)}

	unifiers, err := PieceUnifiers(head, query)
	req.NoError(err)
	req.Len(unifiers, 1)
	req.True(unifiers[0].Partition.SameClass(x, a))
	req.True(unifiers[0].Partition.SameClass(y, b))
}

func TestPieceUnifiers_TwoAtomPieceSharesExistential(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)
	predQ := in.Predicate("q", 1)
	x, y := in.Variable("X"), in.Variable("Y")
	head := pie.NewExistential([]pie.Variable{y}, pie.NewConjunction(
		pie.NewAtomFormula(pie.MustAtom(predP, x, y)),
		pie.NewAtomFormula(pie.MustAtom(predQ, y)),
	))

	a, b := in.Variable("A"), in.Variable("B")
	query := []pie.Atom{pie.MustAtom(predP, a, b), pie.MustAtom(predQ, b)}

	unifiers, err := PieceUnifiers(head, query)
	req.NoError(err)

	var full *PieceUnifier
	for i := range unifiers {
		if len(unifiers[i].HeadAtoms) == 2 {
			full = &unifiers[i]
		}
	}
	req.NotNil(full, "expected a unifier matching both head atoms against both query atoms")
	req.True(full.Partition.SameClass(y, b))
}

func TestPieceUnifiers_PredicateMismatchYieldsNothing(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 1)
	predQ := in.Predicate("q", 1)
	x := in.Variable("X")
	head := pie.NewAtomFormula(pie.MustAtom(predP, x))

	a := in.Variable("A")
	query := []pie.Atom{pie.MustAtom(predQ, a)}

	unifiers, err := PieceUnifiers(head, query)
	req.NoError(err)
	req.Empty(unifiers)
}
