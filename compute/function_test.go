package compute

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
)

func intLit(n int64) pie.LiteralValue   { return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: n} }
func floatLit(f float64) pie.LiteralValue { return pie.LiteralValue{Datatype: pie.DatatypeFloat, Scalar: f} }
func strLit(s string) pie.LiteralValue  { return pie.LiteralValue{Datatype: pie.DatatypeString, Scalar: s} }

func TestSum_ForwardAndSolve(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	r, err := Sum.Forward(in, []pie.LiteralValue{intLit(2), intLit(3)})
	req.NoError(err)
	req.Equal(floatLit(5), r)

	solver := Sum.(Reversible)
	a, err := solver.Solve(in, map[int]pie.LiteralValue{1: intLit(3), 2: intLit(5)}, 0)
	req.NoError(err)
	req.Equal(floatLit(2), a)
}

func TestDivide_ByZero(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	_, err := Divide.Forward(in, []pie.LiteralValue{intLit(4), intLit(0)})
	req.Error(err)
}

func TestDivide_SolveDivisorFromZeroResult(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	solver := Divide.(Reversible)
	_, err := solver.Solve(in, map[int]pie.LiteralValue{0: intLit(4), 2: floatLit(0)}, 1)
	req.Error(err)
}

func TestProduct_SolveZeroFactor(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	solver := Product.(Reversible)
	_, err := solver.Solve(in, map[int]pie.LiteralValue{1: intLit(0), 2: floatLit(10)}, 0)
	req.Error(err)
}

func TestMinMax(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	min, err := Min.Forward(in, []pie.LiteralValue{intLit(7), intLit(3)})
	req.NoError(err)
	req.Equal(floatLit(3), min)

	max, err := Max.Forward(in, []pie.LiteralValue{intLit(7), intLit(3)})
	req.NoError(err)
	req.Equal(floatLit(7), max)
}

func TestPower(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	r, err := Power.Forward(in, []pie.LiteralValue{intLit(2), intLit(10)})
	req.NoError(err)
	req.Equal(floatLit(1024), r)

	_, err = Power.Forward(in, []pie.LiteralValue{intLit(2), intLit(-1)})
	req.Error(err)
}

func TestMedian(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	odd := pie.LiteralValue{Datatype: pie.DatatypeSet, Set: []pie.LiteralValue{intLit(5), intLit(1), intLit(3)}}
	r, err := Median.Forward(in, []pie.LiteralValue{odd})
	req.NoError(err)
	req.Equal(floatLit(3), r)

	even := pie.LiteralValue{Datatype: pie.DatatypeTuple, Tuple: []pie.LiteralValue{intLit(1), intLit(2), intLit(3), intLit(4)}}
	r, err = Median.Forward(in, []pie.LiteralValue{even})
	req.NoError(err)
	req.Equal(floatLit(2.5), r)

	empty := pie.LiteralValue{Datatype: pie.DatatypeSet}
	_, err = Median.Forward(in, []pie.LiteralValue{empty})
	req.Error(err)
}

func TestStringOps(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	r, err := Concat.Forward(in, []pie.LiteralValue{strLit("foo"), strLit("bar")})
	req.NoError(err)
	req.Equal(strLit("foobar"), r)

	r, err = Upper.Forward(in, []pie.LiteralValue{strLit("abc")})
	req.NoError(err)
	req.Equal(strLit("ABC"), r)

	r, err = Lower.Forward(in, []pie.LiteralValue{strLit("ABC")})
	req.NoError(err)
	req.Equal(strLit("abc"), r)

	r, err = Length.Forward(in, []pie.LiteralValue{strLit("hello")})
	req.NoError(err)
	req.Equal(intLit(5), r)
}

func TestContains(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	set := pie.LiteralValue{Datatype: pie.DatatypeSet, Set: []pie.LiteralValue{strLit("a"), strLit("b")}}
	r, err := Contains.Forward(in, []pie.LiteralValue{set, strLit("a")})
	req.NoError(err)
	req.Equal(pie.LiteralValue{Datatype: pie.DatatypeBoolean, Scalar: true}, r)

	r, err = Contains.Forward(in, []pie.LiteralValue{set, strLit("z")})
	req.NoError(err)
	req.Equal(pie.LiteralValue{Datatype: pie.DatatypeBoolean, Scalar: false}, r)
}

func TestDictGet(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	dict := pie.LiteralValue{Datatype: pie.DatatypeDict, Dict: map[string]pie.LiteralValue{"k": strLit("v")}}
	r, err := DictGet.Forward(in, []pie.LiteralValue{dict, strLit("k")})
	req.NoError(err)
	req.Equal(strLit("v"), r)

	_, err = DictGet.Forward(in, []pie.LiteralValue{dict, strLit("missing")})
	req.Error(err)
}

func TestConversions(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()

	r, err := ToInt.Forward(in, []pie.LiteralValue{strLit("42")})
	req.NoError(err)
	req.Equal(intLit(42), r)

	r, err = ToFloat.Forward(in, []pie.LiteralValue{intLit(3)})
	req.NoError(err)
	req.Equal(floatLit(3), r)

	r, err = ToString.Forward(in, []pie.LiteralValue{intLit(7)})
	req.NoError(err)
	req.Equal(strLit(intLit(7).String()), r)

	_, err = ToInt.Forward(in, []pie.LiteralValue{strLit("not-a-number")})
	req.Error(err)
}
