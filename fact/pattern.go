// Package fact implements ground fact storage, the ReadableData protocol
// that unifies every data source (stored facts, computed predicates,
// comparisons, external relations), and the indexed FactBase that backs
// homomorphism search and the chase.
package fact

import "github.com/datalogplus/pie"

// AllowedType constrains what a data source accepts at a given atom
// position, per spec.md §3's AtomicPattern.
type AllowedType int

const (
	// AllowedGround requires the position be bound to any ground term.
	AllowedGround AllowedType = iota
	// AllowedConstant requires a constant specifically.
	AllowedConstant
	// AllowedVariable requires the position stay unbound (a variable) —
	// used by sources whose result position must not be pre-bound.
	AllowedVariable
	// AllowedLiteral requires a typed literal.
	AllowedLiteral
	// AllowedAny imposes no constraint.
	AllowedAny
)

// AtomicPattern publishes a data source's per-position constraints, per
// spec.md §3. Evaluators must bind Mandatory positions before calling
// Evaluate.
type AtomicPattern struct {
	Predicate   pie.Predicate
	Mandatory   map[int]bool
	AllowedType map[int]AllowedType // default AllowedAny if absent
}

// TypeAt returns the allowed type for a position, defaulting to
// AllowedAny.
func (p AtomicPattern) TypeAt(pos int) AllowedType {
	if t, ok := p.AllowedType[pos]; ok {
		return t
	}
	return AllowedAny
}

// SatisfiedBy reports whether every mandatory position of p is present in
// bound (the set of positions currently ground in a query).
func (p AtomicPattern) SatisfiedBy(bound map[int]bool) bool {
	for pos := range p.Mandatory {
		if !bound[pos] {
			return false
		}
	}
	return true
}

// WildcardPattern returns a pattern with no mandatory positions and
// AllowedAny everywhere — the pattern a plain indexed FactBase publishes,
// since it can serve any combination of bound/unbound positions via a
// linear or indexed scan.
func WildcardPattern(p pie.Predicate) AtomicPattern {
	return AtomicPattern{Predicate: p, Mandatory: map[int]bool{}, AllowedType: map[int]AllowedType{}}
}
