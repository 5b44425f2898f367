package chase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/errs"
	"github.com/datalogplus/pie/fact"
)

// TestRun_TransitiveClosure is spec's S1: p(X,Z) :- p(X,Y), p(Y,Z), seeded
// with a 3-hop chain, naive scheduler + semi-oblivious checker, no
// halting before saturation.
func TestRun_TransitiveClosure(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)

	x, y, z := in.Variable("X"), in.Variable("Y"), in.Variable("Z")
	body := pie.NewConjunction(
		pie.NewAtomFormula(pie.MustAtom(predP, x, y)),
		pie.NewAtomFormula(pie.MustAtom(predP, y, z)),
	)
	head := pie.NewAtomFormula(pie.MustAtom(predP, x, z))
	rule, err := pie.NewRule(body, head)
	req.NoError(err)

	a, b, c, d := in.Constant("a"), in.Constant("b"), in.Constant("c"), in.Constant("d")
	facts := fact.NewFactBase()
	_, err = facts.AddAtom(pie.MustAtom(predP, a, b))
	req.NoError(err)
	_, err = facts.AddAtom(pie.MustAtom(predP, b, c))
	req.NoError(err)
	_, err = facts.AddAtom(pie.MustAtom(predP, c, d))
	req.NoError(err)

	cfg := Config{
		Scheduler: NaiveScheduler{},
		Computer:  NaiveComputer{},
		Checker:   SemiObliviousChecker{},
		Renamer:   FreshRenamer{},
		Applier:   BreadthFirstApplier{},
		MaxSteps:  20,
	}
	res, err := Run(context.Background(), in, []pie.Rule{rule}, facts, cfg)
	req.NoError(err)
	req.Equal(errs.HaltNoNewFacts, res.Halt)

	req.True(facts.Contains(pie.MustAtom(predP, a, c)))
	req.True(facts.Contains(pie.MustAtom(predP, a, d)))
	req.True(facts.Contains(pie.MustAtom(predP, b, d)))
}

// TestRun_SemiNaiveMatchesNaive checks the semi-naive computer saturates
// the same transitive-closure instance to the same fixpoint as the naive
// computer, exercising the self-join-aware delta join in join.go against
// the S1 body's repeated predicate p(X,Y), p(Y,Z).
func TestRun_SemiNaiveMatchesNaive(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)

	x, y, z := in.Variable("X"), in.Variable("Y"), in.Variable("Z")
	body := pie.NewConjunction(
		pie.NewAtomFormula(pie.MustAtom(predP, x, y)),
		pie.NewAtomFormula(pie.MustAtom(predP, y, z)),
	)
	head := pie.NewAtomFormula(pie.MustAtom(predP, x, z))
	rule, err := pie.NewRule(body, head)
	req.NoError(err)

	a, b, c, d := in.Constant("a"), in.Constant("b"), in.Constant("c"), in.Constant("d")
	facts := fact.NewFactBase()
	_, err = facts.AddAtom(pie.MustAtom(predP, a, b))
	req.NoError(err)
	_, err = facts.AddAtom(pie.MustAtom(predP, b, c))
	req.NoError(err)
	_, err = facts.AddAtom(pie.MustAtom(predP, c, d))
	req.NoError(err)

	cfg := Config{
		Scheduler: NaiveScheduler{},
		Computer:  SemiNaiveComputer{},
		Checker:   SemiObliviousChecker{},
		Renamer:   FreshRenamer{},
		Applier:   BreadthFirstApplier{},
		MaxSteps:  20,
	}
	_, err = Run(context.Background(), in, []pie.Rule{rule}, facts, cfg)
	req.NoError(err)

	req.True(facts.Contains(pie.MustAtom(predP, a, c)))
	req.True(facts.Contains(pie.MustAtom(predP, a, d)))
	req.True(facts.Contains(pie.MustAtom(predP, b, d)))
}

// TestRun_StepLimitHalts checks the step-limit halting condition fires
// before a pathologically slow-converging rule saturates.
func TestRun_StepLimitHalts(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 1)
	predQ := in.Predicate("q", 1)

	x, y := in.Variable("X"), in.Variable("Y")
	// q(Y) :- p(X) exists Y; an every-step-fresh renamer never
	// converges on its own, so a step limit is the only thing that
	// halts this rule.
	body := pie.NewAtomFormula(pie.MustAtom(predP, x))
	head := pie.NewExistential([]pie.Variable{y}, pie.NewAtomFormula(pie.MustAtom(predQ, y)))
	rule, err := pie.NewRule(body, head)
	req.NoError(err)

	facts := fact.NewFactBase()
	_, err = facts.AddAtom(pie.MustAtom(predP, in.Constant("a")))
	req.NoError(err)

	cfg := Config{
		Scheduler: NaiveScheduler{},
		Computer:  NaiveComputer{},
		Checker:   ObliviousChecker{},
		Renamer:   FreshRenamer{},
		Applier:   BreadthFirstApplier{},
		MaxSteps:  5,
	}
	res, err := Run(context.Background(), in, []pie.Rule{rule}, facts, cfg)
	req.NoError(err)
	req.Equal(5, len(res.Steps))
}

// TestRun_RestrictedCheckerStopsExistentialGrowth checks that the
// restricted checker halts the same never-converging rule as soon as the
// head already has a homomorphism into the facts, instead of needing a
// step limit.
func TestRun_RestrictedCheckerStopsExistentialGrowth(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 1)
	predQ := in.Predicate("q", 1)

	x, y := in.Variable("X"), in.Variable("Y")
	body := pie.NewAtomFormula(pie.MustAtom(predP, x))
	head := pie.NewExistential([]pie.Variable{y}, pie.NewAtomFormula(pie.MustAtom(predQ, y)))
	rule, err := pie.NewRule(body, head)
	req.NoError(err)

	facts := fact.NewFactBase()
	_, err = facts.AddAtom(pie.MustAtom(predP, in.Constant("a")))
	req.NoError(err)

	cfg := Config{
		Scheduler: NaiveScheduler{},
		Computer:  NaiveComputer{},
		Checker:   RestrictedChecker{},
		Renamer:   FreshRenamer{},
		Applier:   BreadthFirstApplier{},
		MaxSteps:  20,
	}
	res, err := Run(context.Background(), in, []pie.Rule{rule}, facts, cfg)
	req.NoError(err)
	req.Equal(2, len(res.Steps))
	req.Equal(2, facts.Len(), "p(a) plus exactly one q witness")
}
