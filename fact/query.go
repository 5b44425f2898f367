package fact

import "github.com/datalogplus/pie"

// BasicQuery is {predicate, bound_positions, answer_positions}, per
// spec.md §3. Bound positions must hold ground terms at evaluation time;
// answer_positions names the variable each returned tuple column binds.
type BasicQuery struct {
	Predicate       pie.Predicate
	BoundPositions  map[int]pie.Term
	AnswerPositions map[int]pie.Variable
}

// NewBasicQuery builds a BasicQuery from an atom: ground argument
// positions become bound_positions, and every variable position becomes
// an answer_position, repeated variables included (callers reconcile a
// repeated variable's columns when extending their substitution, per the
// teacher's comment in external_relation.go about "foo(A, B, A)").
func NewBasicQuery(p pie.Predicate, args []pie.Term) BasicQuery {
	q := BasicQuery{Predicate: p, BoundPositions: map[int]pie.Term{}, AnswerPositions: map[int]pie.Variable{}}
	for i, t := range args {
		if t.IsGround() {
			q.BoundPositions[i] = t
		} else if t.IsVariable() {
			q.AnswerPositions[i] = t
		}
	}
	return q
}

// BoundSet returns the set of positions this query already has ground
// terms for, for AtomicPattern.SatisfiedBy checks.
func (q BasicQuery) BoundSet() map[int]bool {
	out := make(map[int]bool, len(q.BoundPositions))
	for pos := range q.BoundPositions {
		out[pos] = true
	}
	return out
}

// Tuple is a row of terms returned by Evaluate, one per answer position
// in increasing key order.
type Tuple []pie.Term
