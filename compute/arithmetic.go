package compute

import (
	"fmt"

	"github.com/datalogplus/pie"
)

func numeric(v pie.LiteralValue) (float64, bool) {
	switch v.Datatype {
	case pie.DatatypeInteger:
		n, ok := v.Scalar.(int64)
		return float64(n), ok
	case pie.DatatypeFloat:
		f, ok := v.Scalar.(float64)
		return f, ok
	default:
		return 0, false
	}
}

func floatLiteral(f float64) pie.LiteralValue {
	return pie.LiteralValue{Datatype: pie.DatatypeFloat, Scalar: f}
}

func args2(args []pie.LiteralValue) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("pie/compute: expected 2 arguments, got %d", len(args))
	}
	a, ok := numeric(args[0])
	if !ok {
		return 0, 0, fmt.Errorf("pie/compute: non-numeric argument %v", args[0])
	}
	b, ok := numeric(args[1])
	if !ok {
		return 0, 0, fmt.Errorf("pie/compute: non-numeric argument %v", args[1])
	}
	return a, b, nil
}

// binary2 centralizes the "two ground inputs, one result" reversible
// arithmetic shape shared by Sum/Minus/Product/Divide/Average, per the
// teacher's habit (static_checks.go) of factoring repeated validation
// into one helper.
type binary2 struct {
	name    string
	forward func(a, b float64) (float64, error)
	// solve given two known positions among {0,1,2} (2 is the result)
	// and the missing one, returns the missing value.
	solve func(known map[int]float64, missing int) (float64, error)
}

func (f binary2) Name() string { return f.name }
func (f binary2) Arity() int   { return 2 }

func (f binary2) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	a, b, err := args2(args)
	if err != nil {
		return pie.LiteralValue{}, err
	}
	r, err := f.forward(a, b)
	if err != nil {
		return pie.LiteralValue{}, err
	}
	return floatLiteral(r), nil
}

func (f binary2) Solve(in *pie.Interner, known map[int]pie.LiteralValue, missingPos int) (pie.LiteralValue, error) {
	numKnown := make(map[int]float64, len(known))
	for pos, v := range known {
		n, ok := numeric(v)
		if !ok {
			return pie.LiteralValue{}, fmt.Errorf("pie/compute: %s: non-numeric argument at position %d", f.name, pos)
		}
		numKnown[pos] = n
	}
	r, err := f.solve(numKnown, missingPos)
	if err != nil {
		return pie.LiteralValue{}, err
	}
	return floatLiteral(r), nil
}

// Sum implements sum(a, b, result) = a + b, reversible on any position.
var Sum Function = binary2{
	name:    "sum",
	forward: func(a, b float64) (float64, error) { return a + b, nil },
	solve: func(k map[int]float64, missing int) (float64, error) {
		switch missing {
		case 0:
			return k[2] - k[1], nil
		case 1:
			return k[2] - k[0], nil
		default:
			return k[0] + k[1], nil
		}
	},
}

// Minus implements minus(a, b, result) = a - b.
var Minus Function = binary2{
	name:    "minus",
	forward: func(a, b float64) (float64, error) { return a - b, nil },
	solve: func(k map[int]float64, missing int) (float64, error) {
		switch missing {
		case 0:
			return k[2] + k[1], nil
		case 1:
			return k[0] - k[2], nil
		default:
			return k[0] - k[1], nil
		}
	},
}

// Product implements product(a, b, result) = a * b.
var Product Function = binary2{
	name:    "product",
	forward: func(a, b float64) (float64, error) { return a * b, nil },
	solve: func(k map[int]float64, missing int) (float64, error) {
		switch missing {
		case 0:
			if k[1] == 0 {
				return 0, fmt.Errorf("pie/compute: product: cannot solve for a zero factor")
			}
			return k[2] / k[1], nil
		case 1:
			if k[0] == 0 {
				return 0, fmt.Errorf("pie/compute: product: cannot solve for a zero factor")
			}
			return k[2] / k[0], nil
		default:
			return k[0] * k[1], nil
		}
	},
}

// Divide implements divide(a, b, result) = a / b.
var Divide Function = binary2{
	name: "divide",
	forward: func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("pie/compute: divide: division by zero")
		}
		return a / b, nil
	},
	solve: func(k map[int]float64, missing int) (float64, error) {
		switch missing {
		case 0:
			return k[2] * k[1], nil
		case 1:
			if k[2] == 0 {
				return 0, fmt.Errorf("pie/compute: divide: cannot solve divisor from zero result")
			}
			return k[0] / k[2], nil
		default:
			if k[1] == 0 {
				return 0, fmt.Errorf("pie/compute: divide: division by zero")
			}
			return k[0] / k[1], nil
		}
	},
}

// Average implements average(a, b, result) = (a + b) / 2.
var Average Function = binary2{
	name:    "average",
	forward: func(a, b float64) (float64, error) { return (a + b) / 2, nil },
	solve: func(k map[int]float64, missing int) (float64, error) {
		switch missing {
		case 0:
			return 2*k[2] - k[1], nil
		case 1:
			return 2*k[2] - k[0], nil
		default:
			return (k[0] + k[1]) / 2, nil
		}
	},
}

// variadicMinMax is shared by Min/Max: forward-only over exactly two
// ground inputs.
type variadicMinMax struct {
	name string
	pick func(a, b float64) float64
}

func (f variadicMinMax) Name() string { return f.name }
func (f variadicMinMax) Arity() int   { return 2 }

func (f variadicMinMax) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	a, b, err := args2(args)
	if err != nil {
		return pie.LiteralValue{}, err
	}
	return floatLiteral(f.pick(a, b)), nil
}

var Min Function = variadicMinMax{name: "min", pick: func(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}}

var Max Function = variadicMinMax{name: "max", pick: func(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}}

// Power implements power(base, exponent, result), forward-only.
type power struct{}

func (power) Name() string { return "power" }
func (power) Arity() int   { return 2 }
func (power) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	base, exp, err := args2(args)
	if err != nil {
		return pie.LiteralValue{}, err
	}
	r := 1.0
	if exp < 0 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: power: negative exponents are unsupported")
	}
	for i := 0; i < int(exp); i++ {
		r *= base
	}
	return floatLiteral(r), nil
}

var Power Function = power{}

// Median computes the median of a DatatypeSet or DatatypeTuple input,
// forward-only, unary.
type median struct{}

func (median) Name() string { return "median" }
func (median) Arity() int   { return 1 }
func (median) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 1 || (args[0].Datatype != pie.DatatypeSet && args[0].Datatype != pie.DatatypeTuple) {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: median: expected a collection argument")
	}
	elems := args[0].Set
	if args[0].Datatype == pie.DatatypeTuple {
		elems = args[0].Tuple
	}
	vals := make([]float64, 0, len(elems))
	for _, e := range elems {
		n, ok := numeric(e)
		if !ok {
			return pie.LiteralValue{}, fmt.Errorf("pie/compute: median: non-numeric element %v", e)
		}
		vals = append(vals, n)
	}
	if len(vals) == 0 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: median: empty collection")
	}
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return floatLiteral(vals[mid]), nil
	}
	return floatLiteral((vals[mid-1] + vals[mid]) / 2), nil
}

var Median Function = median{}
