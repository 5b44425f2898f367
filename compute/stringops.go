package compute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datalogplus/pie"
)

func stringOf(v pie.LiteralValue) (string, bool) {
	if v.Datatype != pie.DatatypeString {
		return "", false
	}
	s, ok := v.Scalar.(string)
	return s, ok
}

func stringLiteral(s string) pie.LiteralValue {
	return pie.LiteralValue{Datatype: pie.DatatypeString, Scalar: s}
}

// Concat implements concat(a, b, result), forward-only.
type concat struct{}

func (concat) Name() string { return "concat" }
func (concat) Arity() int   { return 2 }
func (concat) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 2 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: concat: expected 2 arguments")
	}
	a, aok := stringOf(args[0])
	b, bok := stringOf(args[1])
	if !aok || !bok {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: concat: expected string arguments")
	}
	return stringLiteral(a + b), nil
}

var Concat Function = concat{}

type caseFn struct {
	name string
	f    func(string) string
}

func (c caseFn) Name() string { return c.name }
func (c caseFn) Arity() int   { return 1 }
func (c caseFn) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 1 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: %s: expected 1 argument", c.name)
	}
	s, ok := stringOf(args[0])
	if !ok {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: %s: expected a string argument", c.name)
	}
	return stringLiteral(c.f(s)), nil
}

var Upper Function = caseFn{name: "upper", f: strings.ToUpper}
var Lower Function = caseFn{name: "lower", f: strings.ToLower}

// Length reports the size of a string or collection literal.
type length struct{}

func (length) Name() string { return "length" }
func (length) Arity() int   { return 1 }
func (length) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 1 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: length: expected 1 argument")
	}
	v := args[0]
	switch v.Datatype {
	case pie.DatatypeString:
		s, _ := stringOf(v)
		return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: int64(len(s))}, nil
	case pie.DatatypeTuple:
		return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: int64(len(v.Tuple))}, nil
	case pie.DatatypeSet:
		return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: int64(len(v.Set))}, nil
	case pie.DatatypeDict:
		return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: int64(len(v.Dict))}, nil
	default:
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: length: unsupported argument type %s", v.Datatype)
	}
}

var Length Function = length{}

// Contains reports whether a collection literal holds an element, as a
// boolean result, forward-only.
type contains struct{}

func (contains) Name() string { return "contains" }
func (contains) Arity() int   { return 2 }
func (contains) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 2 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: contains: expected 2 arguments")
	}
	coll, elem := args[0], args[1]
	var elems []pie.LiteralValue
	switch coll.Datatype {
	case pie.DatatypeTuple:
		elems = coll.Tuple
	case pie.DatatypeSet:
		elems = coll.Set
	default:
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: contains: expected a collection first argument")
	}
	for _, e := range elems {
		if e.Equal(elem) {
			return pie.LiteralValue{Datatype: pie.DatatypeBoolean, Scalar: true}, nil
		}
	}
	return pie.LiteralValue{Datatype: pie.DatatypeBoolean, Scalar: false}, nil
}

var Contains Function = contains{}

// DictGet retrieves dict[key], forward-only.
type dictGet struct{}

func (dictGet) Name() string { return "dict_get" }
func (dictGet) Arity() int   { return 2 }
func (dictGet) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 2 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: dict_get: expected 2 arguments")
	}
	d, key := args[0], args[1]
	if d.Datatype != pie.DatatypeDict {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: dict_get: expected a dict first argument")
	}
	k, ok := stringOf(key)
	if !ok {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: dict_get: expected a string key")
	}
	v, ok := d.Dict[k]
	if !ok {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: dict_get: key %q not present", k)
	}
	return v, nil
}

var DictGet Function = dictGet{}

// Conversions: to_string, to_int, to_float.
type toString struct{}

func (toString) Name() string { return "to_string" }
func (toString) Arity() int   { return 1 }
func (toString) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 1 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_string: expected 1 argument")
	}
	return stringLiteral(args[0].String()), nil
}

var ToString Function = toString{}

type toInt struct{}

func (toInt) Name() string { return "to_int" }
func (toInt) Arity() int   { return 1 }
func (toInt) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 1 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_int: expected 1 argument")
	}
	v := args[0]
	switch v.Datatype {
	case pie.DatatypeInteger:
		return v, nil
	case pie.DatatypeFloat:
		f, _ := v.Scalar.(float64)
		return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: int64(f)}, nil
	case pie.DatatypeString:
		s, _ := stringOf(v)
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_int: %w", err)
		}
		return pie.LiteralValue{Datatype: pie.DatatypeInteger, Scalar: n}, nil
	default:
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_int: unsupported argument type %s", v.Datatype)
	}
}

var ToInt Function = toInt{}

type toFloat struct{}

func (toFloat) Name() string { return "to_float" }
func (toFloat) Arity() int   { return 1 }
func (toFloat) Forward(in *pie.Interner, args []pie.LiteralValue) (pie.LiteralValue, error) {
	if len(args) != 1 {
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_float: expected 1 argument")
	}
	v := args[0]
	switch v.Datatype {
	case pie.DatatypeFloat:
		return v, nil
	case pie.DatatypeInteger:
		n, _ := v.Scalar.(int64)
		return floatLiteral(float64(n)), nil
	case pie.DatatypeString:
		s, _ := stringOf(v)
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_float: %w", err)
		}
		return floatLiteral(f), nil
	default:
		return pie.LiteralValue{}, fmt.Errorf("pie/compute: to_float: unsupported argument type %s", v.Datatype)
	}
}

var ToFloat Function = toFloat{}
