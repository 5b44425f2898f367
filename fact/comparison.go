package fact

import (
	"fmt"

	"github.com/datalogplus/pie"
)

// ComparisonSource evaluates the reserved comparison predicates
// (<, >, <=, >=, !=), per spec.md §3 ("Comparison ... evaluated through a
// dedicated readable source"). Both positions must be ground; the source
// yields the single empty tuple iff the comparison holds, otherwise no
// tuples — there is no answer position to report.
type ComparisonSource struct {
	in *pie.Interner
	op pie.ComparisonOp
}

// NewComparisonSource builds the source for one comparison operator.
func NewComparisonSource(in *pie.Interner, op pie.ComparisonOp) *ComparisonSource {
	return &ComparisonSource{in: in, op: op}
}

func (c *ComparisonSource) predicate() pie.Predicate { return c.in.Predicate(string(c.op), 2) }

func (c *ComparisonSource) Pattern() AtomicPattern {
	return AtomicPattern{
		Predicate: c.predicate(),
		Mandatory: map[int]bool{0: true, 1: true},
	}
}

func (c *ComparisonSource) CanEvaluate(q BasicQuery) bool {
	return DefaultCanEvaluate(c.Pattern(), q)
}

func (c *ComparisonSource) EstimateBound(q BasicQuery, known pie.Substitution) (int, bool) {
	if !c.CanEvaluate(q) {
		return 0, false
	}
	return 1, true
}

func (c *ComparisonSource) Evaluate(q BasicQuery) (TupleIterator, error) {
	if !c.CanEvaluate(q) {
		return NewSliceIterator(nil), nil
	}
	l, r := q.BoundPositions[0], q.BoundPositions[1]
	holds, err := CompareTerms(c.in, c.op, l, r)
	if err != nil {
		return nil, err
	}
	if !holds {
		return NewSliceIterator(nil), nil
	}
	return NewSliceIterator([]Tuple{{}}), nil
}

// CompareTerms evaluates op over two ground terms. Both must be numeric
// (integer/float) literals, string literals, or identical constants for
// "!=" /"=". Non-numeric/non-comparable operands to an ordering operator
// report a ComputedFunctionError-equivalent failure.
func CompareTerms(in *pie.Interner, op pie.ComparisonOp, l, r pie.Term) (bool, error) {
	if op == pie.OpNotEqual {
		return !l.Equal(r) && !literalsEqual(in, l, r), nil
	}
	lf, lok := numericValue(in, l)
	rf, rok := numericValue(in, r)
	if !lok || !rok {
		return false, fmt.Errorf("pie/fact: comparison %s requires numeric operands", op)
	}
	switch op {
	case pie.OpLess:
		return lf < rf, nil
	case pie.OpGreater:
		return lf > rf, nil
	case pie.OpLessEq:
		return lf <= rf, nil
	case pie.OpGreaterEq:
		return lf >= rf, nil
	default:
		return false, fmt.Errorf("pie/fact: unknown comparison operator %q", op)
	}
}

func literalsEqual(in *pie.Interner, l, r pie.Term) bool {
	if !l.IsLiteral() || !r.IsLiteral() {
		return l.Equal(r)
	}
	return in.LiteralValueOf(l).Equal(in.LiteralValueOf(r))
}

func numericValue(in *pie.Interner, t pie.Term) (float64, bool) {
	if !t.IsLiteral() {
		return 0, false
	}
	v := in.LiteralValueOf(t)
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

// EqualitySource evaluates the reserved "=" predicate. Unlike ordering
// comparisons it is reversible on a single unbound side (the usual
// Prolog-style binding-by-unification behaviour): if one side is bound
// and the other is a free answer variable, it yields a single tuple
// binding that variable to the bound value.
type EqualitySource struct {
	in *pie.Interner
}

func NewEqualitySource(in *pie.Interner) *EqualitySource { return &EqualitySource{in: in} }

func (e *EqualitySource) predicate() pie.Predicate { return e.in.Predicate(pie.PredicateEquality, 2) }

func (e *EqualitySource) Pattern() AtomicPattern {
	return AtomicPattern{Predicate: e.predicate()}
}

func (e *EqualitySource) CanEvaluate(q BasicQuery) bool {
	return len(q.BoundPositions) >= 1
}

func (e *EqualitySource) EstimateBound(q BasicQuery, known pie.Substitution) (int, bool) {
	if !e.CanEvaluate(q) {
		return 0, false
	}
	return 1, true
}

func (e *EqualitySource) Evaluate(q BasicQuery) (TupleIterator, error) {
	lBound, lok := q.BoundPositions[0]
	rBound, rok := q.BoundPositions[1]
	switch {
	case lok && rok:
		if literalsEqual(e.in, lBound, rBound) || lBound.Equal(rBound) {
			return NewSliceIterator([]Tuple{{}}), nil
		}
		return NewSliceIterator(nil), nil
	case lok && !rok:
		return e.bindSingle(q, 1, lBound)
	case !lok && rok:
		return e.bindSingle(q, 0, rBound)
	default:
		return nil, fmt.Errorf("pie/fact: equality requires at least one bound side")
	}
}

func (e *EqualitySource) bindSingle(q BasicQuery, pos int, value pie.Term) (TupleIterator, error) {
	answerPositions := sortedKeys(q.AnswerPositions)
	tuple := make(Tuple, len(answerPositions))
	for i, p := range answerPositions {
		if p == pos {
			tuple[i] = value
		}
	}
	return NewSliceIterator([]Tuple{tuple}), nil
}
