package chase

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

// buildConfluenceFixture constructs an identical rule set and seed fact
// base from a freshly-built interner, so that two independent calls with
// two independent interners allocate identical term ids in identical
// order.
func buildConfluenceFixture(in *pie.Interner) ([]pie.Rule, *fact.FactBase) {
	p := in.Predicate("p", 1)
	q := in.Predicate("q", 2)

	x, y := in.Variable("X"), in.Variable("Y")
	body := pie.NewAtomFormula(pie.MustAtom(p, x))
	head := pie.NewExistential([]pie.Variable{y}, pie.NewAtomFormula(pie.MustAtom(q, x, y)))
	rule, err := pie.NewRule(body, head)
	if err != nil {
		panic(err)
	}

	facts := fact.NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, in.Constant("a")),
		pie.MustAtom(p, in.Constant("b")),
	})
	return []pie.Rule{rule}, facts
}

// TestRun_ConfluenceForFixedRenamer is spec.md §8 invariant 9: two chase
// runs over the same rules and seed facts, with a fixed (sequential)
// renamer, produce the same set of atoms modulo the names of the
// existential witnesses. Which trigger fires first, and so which witness
// gets which name, depends on map iteration order, so every FreshRenamer
// witness is compared as "_sk".
func TestRun_ConfluenceForFixedRenamer(t *testing.T) {
	req := require.New(t)

	cfg := Config{
		Scheduler: NaiveScheduler{},
		Computer:  NaiveComputer{},
		Checker:   SemiObliviousChecker{},
		Renamer:   FreshRenamer{},
		Applier:   BreadthFirstApplier{},
		MaxSteps:  5,
	}

	in1 := pie.NewInterner()
	rules1, facts1 := buildConfluenceFixture(in1)
	_, err := Run(context.Background(), in1, rules1, facts1, cfg)
	req.NoError(err)

	in2 := pie.NewInterner()
	rules2, facts2 := buildConfluenceFixture(in2)
	_, err = Run(context.Background(), in2, rules2, facts2, cfg)
	req.NoError(err)

	toSortedStrings := func(in *pie.Interner, fb *fact.FactBase) []string {
		atoms := fb.AllAtoms()
		out := make([]string, len(atoms))
		for i, a := range atoms {
			args := make([]string, len(a.Args))
			for j, t := range a.Args {
				args[j] = in.ConstantName(t)
				if strings.HasPrefix(args[j], "_sk") {
					args[j] = "_sk"
				}
			}
			out[i] = a.Predicate.Name + "(" + strings.Join(args, ",") + ")"
		}
		sort.Strings(out)
		return out
	}

	req.Equal(toSortedStrings(in1, facts1), toSortedStrings(in2, facts2))
	req.True(facts1.Len() > 2, "the existential rule must have fired and added witness atoms")
}
