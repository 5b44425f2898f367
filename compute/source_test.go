package compute

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

func TestFunctionSource_ForwardMode(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	src := NewFunctionSource(in, "fn_", Sum)

	a, b := in.Literal(intLit(2)), in.Literal(intLit(3))
	y := in.Variable("Y")
	q := fact.NewBasicQuery(src.Predicate(), []pie.Term{a, b, y})
	req.True(src.CanEvaluate(q))

	tuples, err := fact.Collect(mustEvaluate(t, src, q))
	req.NoError(err)
	req.Len(tuples, 1)
	req.Equal(floatLit(5), in.LiteralValueOf(tuples[0][0]))
}

func TestFunctionSource_ReversibleSolveMode(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	src := NewFunctionSource(in, "fn_", Sum)

	x := in.Variable("X")
	b := in.Literal(intLit(3))
	result := in.Literal(intLit(5))
	q := fact.NewBasicQuery(src.Predicate(), []pie.Term{x, b, result})
	req.True(src.CanEvaluate(q))

	tuples, err := fact.Collect(mustEvaluate(t, src, q))
	req.NoError(err)
	req.Len(tuples, 1)
	req.Equal(floatLit(2), in.LiteralValueOf(tuples[0][0]))
}

func TestFunctionSource_CheckMode(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	src := NewFunctionSource(in, "fn_", Sum)

	a, b, result := in.Literal(intLit(2)), in.Literal(intLit(3)), in.Literal(floatLit(5))
	q := fact.NewBasicQuery(src.Predicate(), []pie.Term{a, b, result})
	req.True(src.CanEvaluate(q))
	tuples, err := fact.Collect(mustEvaluate(t, src, q))
	req.NoError(err)
	req.Len(tuples, 1)
	req.Empty(tuples[0])

	wrong := in.Literal(floatLit(999))
	q2 := fact.NewBasicQuery(src.Predicate(), []pie.Term{a, b, wrong})
	tuples, err = fact.Collect(mustEvaluate(t, src, q2))
	req.NoError(err)
	req.Empty(tuples)
}

func TestFunctionSource_ForwardOnlyFunctionRejectsMissingInput(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	src := NewFunctionSource(in, "fn_", Min)

	a := in.Literal(intLit(2))
	y, result := in.Variable("Y"), in.Variable("R")
	q := fact.NewBasicQuery(src.Predicate(), []pie.Term{a, y, result})
	req.False(src.CanEvaluate(q))
}

func mustEvaluate(t *testing.T, src *FunctionSource, q fact.BasicQuery) fact.TupleIterator {
	t.Helper()
	it, err := src.Evaluate(q)
	require.NoError(t, err)
	return it
}

func TestNewBuiltinRegistry(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	reg := NewBuiltinRegistry(in, "fn_")

	sum, ok := reg.Lookup("sum")
	req.True(ok)
	req.Equal(Sum.Name(), sum.Name())

	_, ok = reg.Lookup("does_not_exist")
	req.False(ok)

	srcs := Sources(in, reg)
	req.Len(srcs, len(reg.Functions()))
}
