package pie

import (
	"fmt"

	"github.com/datalogplus/pie/errs"
)

var (
	errNotPlainConjunctive = fmt.Errorf("pie: formula is not a plain conjunction of atoms: %w", errs.ErrValidation)
	errAnswerVarNotFree    = fmt.Errorf("pie: answer variable is not free in query body: %w", errs.ErrValidation)
	errHeadVarNotInBody    = fmt.Errorf("pie: rule head has a free variable not bound by the body or by its own existential quantifier: %w", errs.ErrValidation)
	errNegatedVarUnbound   = fmt.Errorf("pie: negated atom has a variable not bound by a positive atom: %w", errs.ErrValidation)
	errHeadNegated         = fmt.Errorf("pie: rule head cannot contain negation: %w", errs.ErrValidation)
)

// IsPlainConjunctiveRule reports whether r's body is a plain conjunction
// of atoms and negated atoms and its head a single conjunction of atoms
// (no quantifiers, no disjunction): the fragment
// amzuko-authalog's search engine natively supports.
func IsPlainConjunctiveRule(r Rule) bool {
	if !isPlainConjunctionOfAtoms(r.Body) {
		return false
	}
	_, err := HeadConjunctionAtoms(r.Head)
	return err == nil && ExistentialVariables(r.Head) == nil && len(HeadDisjuncts(r.Head)) == 1
}

// IsExistentialRule reports whether r's head may bind variables not
// appearing in the body, wrapped in a single Existential (no disjunction).
func IsExistentialRule(r Rule) bool {
	if !isPlainConjunctionOfAtoms(r.Body) {
		return false
	}
	return len(HeadDisjuncts(r.Head)) == 1
}

// IsDisjunctiveExistentialRule reports whether r's head is a disjunction
// of (possibly existential) conjunctive heads.
func IsDisjunctiveExistentialRule(r Rule) bool {
	if !isPlainConjunctionOfAtoms(r.Body) {
		return false
	}
	for _, d := range HeadDisjuncts(r.Head) {
		if _, err := HeadConjunctionAtoms(d); err != nil {
			return false
		}
	}
	return true
}

func isAtomOrNegatedAtom(f Formula) bool {
	switch v := f.(type) {
	case AtomFormula:
		return true
	case Negation:
		_, ok := v.Inner.(AtomFormula)
		return ok
	default:
		return false
	}
}

func isPlainConjunctionOfAtoms(f Formula) bool {
	switch v := f.(type) {
	case AtomFormula:
		return true
	case Conjunction:
		for _, c := range v.Formulas {
			if !isAtomOrNegatedAtom(c) {
				return false
			}
		}
		return true
	case Negation:
		_, ok := v.Inner.(AtomFormula)
		return ok
	default:
		return false
	}
}

// CheckSafeNegation validates that every variable appearing in a negated
// atom of body is bound by some positive atom of body — the "safe
// negation" fragment requirement, grounded on
// amzuko-authalog/static_checks.go's bodyNegativeVariables/
// bodyPositiveVariables split.
func CheckSafeNegation(body Formula) error {
	positive := map[int64]bool{}
	negative := map[int64]bool{}
	collectBodyVars(body, false, positive, negative)
	for v := range negative {
		if !positive[v] {
			return errNegatedVarUnbound
		}
	}
	return nil
}

func collectBodyVars(f Formula, underNegation bool, positive, negative map[int64]bool) {
	switch v := f.(type) {
	case AtomFormula:
		target := positive
		if underNegation {
			target = negative
		}
		for _, fv := range v.Atom.FreeVariables() {
			target[fv.id] = true
		}
	case Conjunction:
		for _, c := range v.Formulas {
			collectBodyVars(c, underNegation, positive, negative)
		}
	case Disjunction:
		for _, c := range v.Formulas {
			collectBodyVars(c, underNegation, positive, negative)
		}
	case Negation:
		collectBodyVars(v.Inner, !underNegation, positive, negative)
	case Existential:
		collectBodyVars(v.Inner, underNegation, positive, negative)
	case Universal:
		collectBodyVars(v.Inner, underNegation, positive, negative)
	}
}

// CheckRuleHeadNotNegated rejects a head containing Negation anywhere,
// per spec.md §3 ("Fragment validators ... are external check functions").
func CheckRuleHeadNotNegated(head Formula) error {
	switch v := head.(type) {
	case Negation:
		return errHeadNegated
	case Disjunction:
		for _, d := range v.Formulas {
			if err := CheckRuleHeadNotNegated(d); err != nil {
				return err
			}
		}
	case Conjunction:
		for _, c := range v.Formulas {
			if err := CheckRuleHeadNotNegated(c); err != nil {
				return err
			}
		}
	case Existential:
		return CheckRuleHeadNotNegated(v.Inner)
	}
	return nil
}

// IsConstraint reports whether r is a constraint: a rule whose head is the
// absurd/empty formula (modeled as a Disjunction with zero formulas is
// disallowed by our constructors, so constraints use a head atom over
// AbsurdPredicate, the reserved 0-ary "⊥" predicate, instead).
func IsConstraint(in *Interner, r Rule) bool {
	af, ok := r.Head.(AtomFormula)
	if !ok {
		return false
	}
	return af.Atom.Predicate.Equal(AbsurdPredicate(in))
}

// AbsurdPredicate interns the reserved nullary predicate used as the head
// of constraints (rules whose body must never be satisfiable).
func AbsurdPredicate(in *Interner) Predicate {
	return in.Predicate("⊥", 0)
}
