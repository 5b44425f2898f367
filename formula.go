package pie

import "strings"

// Formula is the tagged-variant sum type of spec.md §3: Atom,
// Conjunction, Disjunction, Negation, Existential and Universal. Go has no
// sum types, so pie uses the common idiom the design notes call for —
// an interface with an unexported marker method for compile-time
// exhaustiveness at the call sites that type-switch over it (the formula
// evaluator registry in package eval is the canonical example).
//
// Equality and Comparison atoms are not separate Formula variants: per
// spec.md §3 they are Atoms over a reserved predicate (see atom.go).
type Formula interface {
	isFormula()
	// FreeVars returns the formula's free variables, cached at
	// construction time.
	FreeVars() []Variable
	String() string
}

// AtomFormula wraps a single Atom as a Formula leaf.
type AtomFormula struct {
	Atom Atom
}

func (AtomFormula) isFormula()                 {}
func (f AtomFormula) FreeVars() []Variable      { return f.Atom.FreeVariables() }
func (f AtomFormula) String() string            { return f.Atom.String() }

// NewAtomFormula wraps an atom as a formula leaf.
func NewAtomFormula(a Atom) AtomFormula { return AtomFormula{Atom: a} }

func unionFreeVars(fs []Formula) []Variable {
	seen := map[int64]bool{}
	var out []Variable
	for _, f := range fs {
		for _, v := range f.FreeVars() {
			if !seen[v.id] {
				seen[v.id] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Conjunction is a non-empty, order-preserving (for scheduling hints)
// sequence of sub-formulas, semantically unordered.
type Conjunction struct {
	Formulas []Formula
	free     []Variable
}

func (Conjunction) isFormula()            {}
func (f Conjunction) FreeVars() []Variable { return f.free }
func (f Conjunction) String() string {
	parts := make([]string, len(f.Formulas))
	for i, x := range f.Formulas {
		parts[i] = x.String()
	}
	return strings.Join(parts, " AND ")
}

// NewConjunction builds a conjunction; panics if given zero formulas,
// since spec.md requires conjunctions be non-empty.
func NewConjunction(formulas ...Formula) Conjunction {
	if len(formulas) == 0 {
		panic("pie: conjunction must be non-empty")
	}
	return Conjunction{Formulas: append([]Formula(nil), formulas...), free: unionFreeVars(formulas)}
}

// Disjunction is a non-empty sequence of sub-formulas.
type Disjunction struct {
	Formulas []Formula
	free     []Variable
}

func (Disjunction) isFormula()            {}
func (f Disjunction) FreeVars() []Variable { return f.free }
func (f Disjunction) String() string {
	parts := make([]string, len(f.Formulas))
	for i, x := range f.Formulas {
		parts[i] = x.String()
	}
	return strings.Join(parts, " OR ")
}

// NewDisjunction builds a disjunction; panics if given zero formulas.
func NewDisjunction(formulas ...Formula) Disjunction {
	if len(formulas) == 0 {
		panic("pie: disjunction must be non-empty")
	}
	return Disjunction{Formulas: append([]Formula(nil), formulas...), free: unionFreeVars(formulas)}
}

// Negation is NOT(Inner).
type Negation struct {
	Inner Formula
}

func (Negation) isFormula()            {}
func (f Negation) FreeVars() []Variable { return f.Inner.FreeVars() }
func (f Negation) String() string       { return "NOT " + f.Inner.String() }

func NewNegation(inner Formula) Negation { return Negation{Inner: inner} }

// Existential is ∃Vars. Inner.
type Existential struct {
	Vars  []Variable
	Inner Formula
	free  []Variable
}

func (Existential) isFormula()            {}
func (f Existential) FreeVars() []Variable { return f.free }
func (f Existential) String() string {
	return "EXISTS " + varNames(f.Vars) + " . " + f.Inner.String()
}

func NewExistential(vars []Variable, inner Formula) Existential {
	bound := map[int64]bool{}
	for _, v := range vars {
		bound[v.id] = true
	}
	var free []Variable
	for _, v := range inner.FreeVars() {
		if !bound[v.id] {
			free = append(free, v)
		}
	}
	return Existential{Vars: append([]Variable(nil), vars...), Inner: inner, free: free}
}

// Universal is ∀Vars. Inner.
type Universal struct {
	Vars  []Variable
	Inner Formula
	free  []Variable
}

func (Universal) isFormula()            {}
func (f Universal) FreeVars() []Variable { return f.free }
func (f Universal) String() string {
	return "FORALL " + varNames(f.Vars) + " . " + f.Inner.String()
}

func NewUniversal(vars []Variable, inner Formula) Universal {
	bound := map[int64]bool{}
	for _, v := range vars {
		bound[v.id] = true
	}
	var free []Variable
	for _, v := range inner.FreeVars() {
		if !bound[v.id] {
			free = append(free, v)
		}
	}
	return Universal{Vars: append([]Variable(nil), vars...), Inner: inner, free: free}
}

func varNames(vs []Variable) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// ConjunctionAtoms flattens a conjunction of atoms into an []Atom. It
// returns an error if any child is not an AtomFormula.
func ConjunctionAtoms(c Conjunction) ([]Atom, error) {
	out := make([]Atom, 0, len(c.Formulas))
	for _, f := range c.Formulas {
		af, ok := f.(AtomFormula)
		if !ok {
			return nil, errNotPlainConjunctive
		}
		out = append(out, af.Atom)
	}
	return out, nil
}
