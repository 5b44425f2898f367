package grd

import (
	"testing"

	"github.com/datalogplus/pie"
	"github.com/stretchr/testify/require"
)

// stratifiedNegationRules builds spec's S6 pair: r1: good(X):-person(X),
// not bad(X); r2: bad(X):-criminal(X).
func stratifiedNegationRules(req *require.Assertions, in *pie.Interner) (r1, r2 pie.Rule) {
	predGood := in.Predicate("good", 1)
	predPerson := in.Predicate("person", 1)
	predBad := in.Predicate("bad", 1)
	predCriminal := in.Predicate("criminal", 1)

	x := in.Variable("X")
	body1 := pie.NewConjunction(
		pie.NewAtomFormula(pie.MustAtom(predPerson, x)),
		pie.NewNegation(pie.NewAtomFormula(pie.MustAtom(predBad, x))),
	)
	head1 := pie.NewAtomFormula(pie.MustAtom(predGood, x))
	r1, err := pie.NewRule(body1, head1)
	req.NoError(err)

	y := in.Variable("Y")
	body2 := pie.NewAtomFormula(pie.MustAtom(predCriminal, y))
	head2 := pie.NewAtomFormula(pie.MustAtom(predBad, y))
	r2, err = pie.NewRule(body2, head2)
	req.NoError(err)
	return r1, r2
}

func TestBuild_PredicateMode_NegativeEdgeMarked(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	r1, r2 := stratifiedNegationRules(req, in)

	g, err := Build([]pie.Rule{r1, r2}, EdgePredicate)
	req.NoError(err)
	req.True(g.HasEdge(r2, r1), "r2 produces bad/1, which r1 consumes negated")
	req.True(g.IsNegative(r2, r1))
	req.False(g.HasEdge(r1, r2))
}

func TestBuild_UnifierMode_MatchesPredicateMode(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	r1, r2 := stratifiedNegationRules(req, in)

	g, err := Build([]pie.Rule{r1, r2}, EdgeUnifier)
	req.NoError(err)
	req.True(g.HasEdge(r2, r1))
	req.True(g.IsNegative(r2, r1))
}

func TestBuild_SelfRecursiveRule_HasSelfLoop(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)
	x, y, z := in.Variable("X"), in.Variable("Y"), in.Variable("Z")
	body := pie.NewConjunction(
		pie.NewAtomFormula(pie.MustAtom(predP, x, y)),
		pie.NewAtomFormula(pie.MustAtom(predP, y, z)),
	)
	head := pie.NewAtomFormula(pie.MustAtom(predP, x, z))
	r, err := pie.NewRule(body, head)
	req.NoError(err)

	g, err := Build([]pie.Rule{r}, EdgePredicate)
	req.NoError(err)
	req.True(g.HasEdge(r, r), "transitive-closure rule must depend on itself")
	req.False(g.IsNegative(r, r))
}

func TestBuild_Hybrid_DropsSpuriousPredicateEdge(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 1)
	predS := in.Predicate("s", 1)

	// r3: p(a):-s(Y). r4: s(Z):-p(b). Predicate mode sees a 2-cycle
	// (p and s each produced and consumed by the other), but r3's head
	// constant a can never unify with r4's body constant b, so a real
	// piece unifier for r3→r4 does not exist: hybrid mode must drop it
	// while keeping r4→r3 (s(Z) vs s(Y) unifies freely).
	a := in.Constant("a")
	b := in.Constant("b")
	y := in.Variable("Y")
	r3, err := pie.NewRule(pie.NewAtomFormula(pie.MustAtom(predS, y)), pie.NewAtomFormula(pie.MustAtom(predP, a)))
	req.NoError(err)
	z := in.Variable("Z")
	r4, err := pie.NewRule(pie.NewAtomFormula(pie.MustAtom(predP, b)), pie.NewAtomFormula(pie.MustAtom(predS, z)))
	req.NoError(err)

	predG, err := Build([]pie.Rule{r3, r4}, EdgePredicate)
	req.NoError(err)
	req.True(predG.HasEdge(r3, r4), "predicate mode coarsely matches p/1 regardless of constants")
	req.True(predG.HasEdge(r4, r3))

	hybridG, err := Build([]pie.Rule{r3, r4}, EdgeHybrid)
	req.NoError(err)
	req.False(hybridG.HasEdge(r3, r4), "unifier refinement must reject a→b and drop the spurious edge")
	req.True(hybridG.HasEdge(r4, r3), "s(Z) vs s(Y) unifies freely and must survive refinement")
}
