package rewrite

import (
	"context"
	"testing"

	"github.com/datalogplus/pie"
	"github.com/stretchr/testify/require"
)

// TestUCQRewrite_DisjunctiveHead is spec's S5: rule q(X) | r(Y) :- p(X,Y),
// query ?(X) :- q(X), expected UCQ (modulo renaming/subsumption)
// { ?(X):-q(X) ; ?(X):-p(X,_Y) }.
func TestUCQRewrite_DisjunctiveHead(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)
	predQ := in.Predicate("q", 1)
	predR := in.Predicate("r", 1)

	rx, ry := in.Variable("X"), in.Variable("Y")
	body := pie.NewAtomFormula(pie.MustAtom(predP, rx, ry))
	head := pie.NewDisjunction(
		pie.NewAtomFormula(pie.MustAtom(predQ, rx)),
		pie.NewAtomFormula(pie.MustAtom(predR, ry)),
	)
	rule, err := pie.NewRule(body, head)
	req.NoError(err)

	qx := in.Variable("X")
	seed := CQ{AnswerVars: []pie.Variable{qx}, Atoms: []pie.Atom{pie.MustAtom(predQ, qx)}}

	ucq, err := UCQRewrite(context.Background(), in, []pie.Rule{rule}, seed, Options{StepLimit: 2})
	req.NoError(err)

	var sawQ, sawP bool
	for _, cq := range ucq {
		req.Len(cq.Atoms, 1)
		switch cq.Atoms[0].Predicate.Name {
		case "q":
			sawQ = true
		case "p":
			sawP = true
			req.True(cq.Atoms[0].Args[0].Equal(cq.AnswerVars[0]))
		}
	}
	req.True(sawQ, "seed CQ ?(X):-q(X) must survive rewriting")
	req.True(sawP, "rewriting through the first disjunct must produce ?(X):-p(X,_Y)")
}

func TestUCQRewrite_PlainExistentialRule(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	predP := in.Predicate("p", 2)
	predS := in.Predicate("s", 1)

	bx := in.Variable("X")
	by := in.Variable("Y")
	body := pie.NewAtomFormula(pie.MustAtom(predS, bx))
	head := pie.NewExistential([]pie.Variable{by}, pie.NewAtomFormula(pie.MustAtom(predP, bx, by)))
	rule, err := pie.NewRule(body, head)
	req.NoError(err)

	qx := in.Variable("X")
	qy := in.Variable("Y")
	seed := CQ{AnswerVars: []pie.Variable{qx}, Atoms: []pie.Atom{pie.MustAtom(predP, qx, qy)}}

	ucq, err := UCQRewrite(context.Background(), in, []pie.Rule{rule}, seed, Options{StepLimit: 2})
	req.NoError(err)

	var sawS bool
	for _, cq := range ucq {
		if len(cq.Atoms) == 1 && cq.Atoms[0].Predicate.Name == "s" {
			sawS = true
		}
	}
	req.True(sawS, "rewriting p(X,Y) through the existential rule must produce s(X)")
}
