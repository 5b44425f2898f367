package chase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/grd"
)

// TestStratifiedRun_S6 is spec's S6 end to end: r1: good(X):-person(X), not
// bad(X); r2: bad(X):-criminal(X). By-SCC stratification places r2 before
// r1, so bad/1 is fully saturated before good/1 is ever evaluated.
func TestStratifiedRun_S6(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predGood := in.Predicate("good", 1)
	predPerson := in.Predicate("person", 1)
	predBad := in.Predicate("bad", 1)
	predCriminal := in.Predicate("criminal", 1)

	x := in.Variable("X")
	body1 := pie.NewConjunction(
		pie.NewAtomFormula(pie.MustAtom(predPerson, x)),
		pie.NewNegation(pie.NewAtomFormula(pie.MustAtom(predBad, x))),
	)
	r1, err := pie.NewRule(body1, pie.NewAtomFormula(pie.MustAtom(predGood, x)))
	req.NoError(err)

	y := in.Variable("Y")
	r2, err := pie.NewRule(
		pie.NewAtomFormula(pie.MustAtom(predCriminal, y)),
		pie.NewAtomFormula(pie.MustAtom(predBad, y)),
	)
	req.NoError(err)

	rules := []pie.Rule{r1, r2}
	graph, err := grd.Build(rules, grd.EdgePredicate)
	req.NoError(err)

	facts := fact.NewFactBase()
	_, err = facts.AddAtom(pie.MustAtom(predPerson, in.Constant("a")))
	req.NoError(err)
	_, err = facts.AddAtom(pie.MustAtom(predPerson, in.Constant("b")))
	req.NoError(err)
	_, err = facts.AddAtom(pie.MustAtom(predCriminal, in.Constant("b")))
	req.NoError(err)

	cfg := Config{
		Scheduler: NaiveScheduler{},
		Computer:  NaiveComputer{},
		Checker:   SemiObliviousChecker{},
		Renamer:   FreshRenamer{},
		Applier:   BreadthFirstApplier{},
		MaxSteps:  10,
	}
	_, err = StratifiedRun(context.Background(), in, graph, grd.ByStratumSCC, facts, cfg)
	req.NoError(err)

	req.True(facts.Contains(pie.MustAtom(predGood, in.Constant("a"))))
	req.False(facts.Contains(pie.MustAtom(predGood, in.Constant("b"))))
}
