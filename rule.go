package pie

import (
	uuid "github.com/satori/go.uuid"
)

// Rule is {body, head}. Free variables of head must be a subset of the
// free variables of body (existentially-bound head variables are already
// excluded from head.FreeVars() by the Existential formula's own
// bookkeeping, so that containment check directly realizes spec.md §3's
// invariant).
type Rule struct {
	ID   uuid.UUID
	Body Formula
	Head Formula
}

// NewRule validates and constructs a rule, assigning it a fresh id. Rule
// ids are satori/go.uuid values, the same identifier type the teacher uses
// to key clauses and proofs in database.go.
func NewRule(body, head Formula) (Rule, error) {
	bodyFree := map[int64]bool{}
	for _, v := range body.FreeVars() {
		bodyFree[v.id] = true
	}
	for _, v := range head.FreeVars() {
		if !bodyFree[v.id] {
			return Rule{}, errHeadVarNotInBody
		}
	}
	return Rule{ID: uuid.NewV4(), Body: body, Head: head}, nil
}

// ExistentialVariables returns the variables existentially bound directly
// at the head's root (possibly none, if the rule's head has no ∃
// quantifier — a plain Datalog rule).
func ExistentialVariables(head Formula) []Variable {
	switch h := head.(type) {
	case Existential:
		return h.Vars
	case Disjunction:
		var out []Variable
		seen := map[int64]bool{}
		for _, d := range h.Formulas {
			for _, v := range ExistentialVariables(d) {
				if !seen[v.id] {
					seen[v.id] = true
					out = append(out, v)
				}
			}
		}
		return out
	default:
		return nil
	}
}

// FrontierVariables returns the variables shared between a rule's body
// and head — the "frontier" that body-skolem and frontier-skolem chase
// renamers key witnesses on (spec.md §4.10).
func FrontierVariables(r Rule) []Variable {
	bodyFree := map[int64]bool{}
	for _, v := range r.Body.FreeVars() {
		bodyFree[v.id] = true
	}
	var out []Variable
	seen := map[int64]bool{}
	for _, v := range r.Head.FreeVars() {
		if bodyFree[v.id] && !seen[v.id] {
			seen[v.id] = true
			out = append(out, v)
		}
	}
	return out
}

// HeadDisjuncts returns the individual disjuncts of a (possibly
// disjunctive) rule head, unwrapping a top-level Disjunction. A
// non-disjunctive head is returned as a single-element slice.
func HeadDisjuncts(head Formula) []Formula {
	if d, ok := head.(Disjunction); ok {
		return d.Formulas
	}
	return []Formula{head}
}

// HeadConjunctionAtoms strips a possible Existential wrapper from a head
// disjunct and returns its atoms, for consumers (piece unifier, GRD edge
// computation) that only care about the disjunct's atom set.
func HeadConjunctionAtoms(disjunct Formula) ([]Atom, error) {
	inner := disjunct
	if ex, ok := inner.(Existential); ok {
		inner = ex.Inner
	}
	switch f := inner.(type) {
	case AtomFormula:
		return []Atom{f.Atom}, nil
	case Conjunction:
		return ConjunctionAtoms(f)
	default:
		return nil, errNotPlainConjunctive
	}
}
