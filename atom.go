package pie

import (
	"fmt"
	"strings"
)

// Reserved predicate names for equality and comparisons, per spec.md §3
// ("represented as an atom with the reserved ... predicate").
const (
	PredicateEquality   = "="
	PredicateLess       = "<"
	PredicateGreater    = ">"
	PredicateLessEq     = "<="
	PredicateGreaterEq  = ">="
	PredicateNotEqual   = "!="
)

// ComparisonOps lists the reserved comparison predicate names.
var ComparisonOps = []string{PredicateLess, PredicateGreater, PredicateLessEq, PredicateGreaterEq, PredicateNotEqual}

// Predicate is {name, arity}, interned so equality is id equality.
type Predicate struct {
	Name  string
	Arity int
	id    int64
}

func (p Predicate) Equal(o Predicate) bool { return p.id == o.id }
func (p Predicate) String() string         { return fmt.Sprintf("%s/%d", p.Name, p.Arity) }

// IsReserved reports whether p is the equality predicate or a comparison
// predicate.
func (p Predicate) IsReserved() bool {
	if p.Name == PredicateEquality {
		return true
	}
	for _, op := range ComparisonOps {
		if p.Name == op {
			return true
		}
	}
	return false
}

// Atom is {predicate, args}, with len(args) == predicate.Arity.
type Atom struct {
	Predicate Predicate
	Args      []Term
}

// NewAtom validates arity and constructs an atom.
func NewAtom(p Predicate, args ...Term) (Atom, error) {
	if len(args) != p.Arity {
		return Atom{}, fmt.Errorf("pie: predicate %s expects %d args, got %d", p.Name, p.Arity, len(args))
	}
	return Atom{Predicate: p, Args: append([]Term(nil), args...)}, nil
}

// MustAtom is NewAtom but panics on arity mismatch; useful for
// programmatically-constructed internal atoms (reserved predicates,
// rewritten computed atoms) where the arity is known to be correct.
func MustAtom(p Predicate, args ...Term) Atom {
	a, err := NewAtom(p, args...)
	if err != nil {
		panic(err)
	}
	return a
}

// Equal reports whether two atoms are structurally equal (same predicate,
// pairwise-equal args).
func (a Atom) Equal(o Atom) bool {
	if !a.Predicate.Equal(o.Predicate) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// IsGround reports whether every argument of a is ground.
func (a Atom) IsGround() bool {
	for _, t := range a.Args {
		if !t.IsGround() {
			return false
		}
	}
	return true
}

// FreeVariables returns a's free variables in first-occurrence order.
func (a Atom) FreeVariables() []Variable {
	seen := map[int64]bool{}
	var out []Variable
	for _, t := range a.Args {
		for _, v := range t.FreeVariables() {
			if !seen[v.id] {
				seen[v.id] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func (a Atom) String() string {
	parts := make([]string, len(a.Args))
	for i, t := range a.Args {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", a.Predicate.Name, strings.Join(parts, ", "))
}

// NewEquality builds an Equality atom l = r over the reserved "="
// predicate, per spec.md §3.
func NewEquality(in *Interner, l, r Term) Atom {
	return MustAtom(in.Predicate(PredicateEquality, 2), l, r)
}

// ComparisonOp identifies a reserved comparison operator.
type ComparisonOp string

const (
	OpLess      ComparisonOp = PredicateLess
	OpGreater   ComparisonOp = PredicateGreater
	OpLessEq    ComparisonOp = PredicateLessEq
	OpGreaterEq ComparisonOp = PredicateGreaterEq
	OpNotEqual  ComparisonOp = PredicateNotEqual
)

// NewComparison builds a Comparison atom l op r over a reserved predicate.
func NewComparison(in *Interner, op ComparisonOp, l, r Term) Atom {
	return MustAtom(in.Predicate(string(op), 2), l, r)
}
