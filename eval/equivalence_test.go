package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// TestExecute_MatchesHomomorphismSearchOnPlainConjunction is spec.md §8
// invariant 6: the FO evaluator agrees with CQ homomorphism search on
// single-conjunction (pure-atom) queries.
func TestExecute_MatchesHomomorphismSearchOnPlainConjunction(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	q := in.Predicate("q", 1)
	a, b, c := in.Constant("a"), in.Constant("b"), in.Constant("c")

	fb := fact.NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, a, b),
		pie.MustAtom(p, b, c),
		pie.MustAtom(q, b),
	})
	sources := homomorphism.SourceSet{p: fb, q: fb}

	x, y := in.Variable("X"), in.Variable("Y")
	atoms := []pie.Atom{pie.MustAtom(p, x, y), pie.MustAtom(q, y)}
	formula := pie.NewConjunction(
		pie.NewAtomFormula(atoms[0]),
		pie.NewAtomFormula(atoms[1]),
	)

	env := &Env{Sources: sources}
	prepared := Prepare(in, formula)
	evalIt, err := Execute(context.Background(), env, prepared, pie.EmptySubstitution())
	req.NoError(err)
	defer evalIt.Close()
	evalSubs := drain(t, evalIt)

	search := homomorphism.NewSearch(sources, nil)
	searchIt := search.Evaluate(context.Background(), atoms, pie.EmptySubstitution())
	defer searchIt.Close()
	var searchSubs []pie.Substitution
	for {
		sub, ok := searchIt.Next()
		if !ok {
			break
		}
		searchSubs = append(searchSubs, sub)
	}
	req.NoError(searchIt.Err())

	req.Len(evalSubs, len(searchSubs))
	toSet := func(subs []pie.Substitution) map[[2]string]bool {
		out := map[[2]string]bool{}
		for _, s := range subs {
			xv, _ := s.Lookup(x)
			yv, _ := s.Lookup(y)
			out[[2]string{xv.String(), yv.String()}] = true
		}
		return out
	}
	req.Equal(toSet(searchSubs), toSet(evalSubs))
}
