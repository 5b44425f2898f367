package fact

import "github.com/datalogplus/pie"

// ReadableData is the unifying data-source capability of spec.md §3: any
// backend (in-memory, computed predicates, comparisons, a federated
// store) implements it to participate in homomorphism search and FO
// query evaluation on equal footing.
type ReadableData interface {
	// Evaluate streams tuples matching q. Bound positions of q must
	// already hold ground terms; the returned tuple has one entry per
	// key in q.AnswerPositions, in increasing key order.
	Evaluate(q BasicQuery) (TupleIterator, error)

	// Pattern publishes this source's per-position constraints.
	Pattern() AtomicPattern

	// EstimateBound returns a cheap (no evaluation) upper bound on the
	// number of tuples Evaluate would return given which positions
	// known already binds, or ok=false if no bound can be estimated.
	EstimateBound(q BasicQuery, known pie.Substitution) (bound int, ok bool)

	// CanEvaluate reports whether q's bound positions satisfy this
	// source's mandatory positions.
	CanEvaluate(q BasicQuery) bool
}

// MaterializedData is a ReadableData that can enumerate its whole
// extension for a predicate — required by, e.g., the universal
// quantifier evaluator, which needs a finite domain to range over.
type MaterializedData interface {
	ReadableData
	Enumerate(p pie.Predicate) []pie.Atom
}

// Writable is a ReadableData whose extension can be mutated.
type Writable interface {
	ReadableData
	AddAtom(a pie.Atom) (isNew bool, err error)
	RemoveAtom(a pie.Atom) (existed bool, err error)
}

// AtomAcceptance reports which ground atoms a source is willing to store,
// independent of whether it currently holds them (used by the chase to
// validate rule heads against an external store before applying).
type AtomAcceptance interface {
	Accepts(a pie.Atom) bool
}

// DatalogDelegable is a source that can take over evaluation of a whole
// rule set or query itself (an external Datalog engine), rather than
// being probed atom-by-atom.
type DatalogDelegable interface {
	DelegateRules(rules []pie.Rule) bool
	DelegateQuery(q pie.FOQuery) bool
}

// DefaultCanEvaluate implements the common "every mandatory position is
// bound" rule from a source's published pattern; most ReadableData
// implementations delegate CanEvaluate to this helper.
func DefaultCanEvaluate(pattern AtomicPattern, q BasicQuery) bool {
	return pattern.SatisfiedBy(q.BoundSet())
}
