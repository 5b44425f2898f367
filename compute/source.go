package compute

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

// FunctionSource adapts one computed Function into the fact.ReadableData
// protocol, per spec.md §4.5. Its predicate has Arity()+1 positions: the
// function's inputs followed by the result.
type FunctionSource struct {
	in     *pie.Interner
	prefix string
	fn     Function
}

// NewFunctionSource builds the source for one registry entry.
func NewFunctionSource(in *pie.Interner, prefix string, fn Function) *FunctionSource {
	return &FunctionSource{in: in, prefix: prefix, fn: fn}
}

// Sources builds one FunctionSource per entry in a registry.
func Sources(in *pie.Interner, r *Registry) []*FunctionSource {
	out := make([]*FunctionSource, 0, len(r.functions))
	for _, fn := range r.Functions() {
		out = append(out, NewFunctionSource(in, r.Prefix, fn))
	}
	return out
}

func (s *FunctionSource) Predicate() pie.Predicate {
	return s.in.Predicate(s.prefix+s.fn.Name(), s.fn.Arity()+1)
}

// Pattern publishes the result position (the last one) as the only
// non-mandatory slot for forward-only functions; reversible functions
// publish no mandatory positions since any single position may be the
// unbound one (CanEvaluate applies the real rule).
func (s *FunctionSource) Pattern() fact.AtomicPattern {
	p := fact.AtomicPattern{Predicate: s.Predicate()}
	if _, reversible := s.fn.(Reversible); !reversible {
		p.Mandatory = map[int]bool{}
		for i := 0; i < s.fn.Arity(); i++ {
			p.Mandatory[i] = true
		}
	}
	return p
}

// CanEvaluate implements spec.md §4.5's two evaluation modes: forward-only
// functions need every input ground; reversible functions need at most one
// of the Arity()+1 positions unbound.
func (s *FunctionSource) CanEvaluate(q fact.BasicQuery) bool {
	total := s.fn.Arity() + 1
	unbound := total - len(q.BoundPositions)
	if _, reversible := s.fn.(Reversible); reversible {
		return unbound <= 1
	}
	for i := 0; i < s.fn.Arity(); i++ {
		if _, ok := q.BoundPositions[i]; !ok {
			return false
		}
	}
	return true
}

// EstimateBound returns 1 whenever the source is evaluable: every
// computed function is deterministic, so it never yields more than one
// tuple per call (spec.md §4.5's bound estimate rule).
func (s *FunctionSource) EstimateBound(q fact.BasicQuery, known pie.Substitution) (int, bool) {
	if !s.CanEvaluate(q) {
		return 0, false
	}
	return 1, true
}

// Evaluate implements spec.md §4.5: forward computation/check when every
// input is ground, or a reversible solve when exactly one position (input
// or result) is unbound. Solver failures are absorbed to an empty result,
// never an error, per the Error policy in spec.md §4.5.
func (s *FunctionSource) Evaluate(q fact.BasicQuery) (fact.TupleIterator, error) {
	if !s.CanEvaluate(q) {
		return fact.NewSliceIterator(nil), nil
	}
	resultPos := s.fn.Arity()
	known := map[int]pie.LiteralValue{}
	for pos, t := range q.BoundPositions {
		if !t.IsLiteral() {
			return fact.NewSliceIterator(nil), nil
		}
		known[pos] = s.in.LiteralValueOf(t)
	}

	if len(q.AnswerPositions) == 1 {
		missingPos := onlyKey(q.AnswerPositions)
		var value pie.LiteralValue
		var err error
		if missingPos == resultPos {
			inputs := make([]pie.LiteralValue, s.fn.Arity())
			for i := 0; i < s.fn.Arity(); i++ {
				inputs[i] = known[i]
			}
			value, err = s.fn.Forward(s.in, inputs)
		} else {
			rf, ok := s.fn.(Reversible)
			if !ok {
				return fact.NewSliceIterator(nil), nil
			}
			value, err = rf.Solve(s.in, known, missingPos)
		}
		if err != nil {
			return fact.NewSliceIterator(nil), nil
		}
		return fact.NewSliceIterator([]fact.Tuple{{s.in.Literal(value)}}), nil
	}

	// Check mode: every position, including the result, is bound.
	inputs := make([]pie.LiteralValue, s.fn.Arity())
	for i := 0; i < s.fn.Arity(); i++ {
		inputs[i] = known[i]
	}
	computed, err := s.fn.Forward(s.in, inputs)
	if err != nil {
		return fact.NewSliceIterator(nil), nil
	}
	if computed.Equal(known[resultPos]) {
		return fact.NewSliceIterator([]fact.Tuple{{}}), nil
	}
	return fact.NewSliceIterator(nil), nil
}

func onlyKey(m map[int]pie.Variable) int {
	for k := range m {
		return k
	}
	return -1
}
