package pie

// substEnvFixedLength is the inline-array capacity of a Substitution,
// grounded on amzuko-authalog/environment.go's ENV_FIXED_LENGTH: most
// conjunctive queries bind a handful of variables, so a small inline
// array avoids a map allocation on the hot backtracking path; larger
// substitutions spill into the extension slice.
const substEnvFixedLength = 8

type binding struct {
	k int64
	v Term
}

// Substitution is a finite map Variable -> Term, per spec.md §3. It keeps
// the teacher's small-array-then-slice layout (environment's inline
// array + extension slice) as a direct performance-motivated reuse of
// that code, generalized from Literal-rewriting to the full Term algebra.
type Substitution struct {
	bindings  [substEnvFixedLength]binding
	extension []binding
	count     int
}

// EmptySubstitution returns the identity substitution.
func EmptySubstitution() Substitution { return Substitution{} }

// Lookup returns the term bound to v, if any.
func (s Substitution) Lookup(v Variable) (Term, bool) {
	for i := 0; i < s.count && i < substEnvFixedLength; i++ {
		if s.bindings[i].k == v.id {
			return s.bindings[i].v, true
		}
	}
	for _, b := range s.extension {
		if b.k == v.id {
			return b.v, true
		}
	}
	return Term{}, false
}

// Bind returns a new substitution extending s with v -> t. It does not
// check for an existing binding to v; callers that need "extend
// consistently, rejecting conflicts" (homomorphism search) should use
// ExtendConsistent.
func (s Substitution) Bind(v Variable, t Term) Substitution {
	if s.count < substEnvFixedLength {
		out := s
		out.bindings[s.count] = binding{v.id, t}
		out.count++
		return out
	}
	out := s
	out.extension = append(append([]binding(nil), s.extension...), binding{v.id, t})
	out.count++
	return out
}

// ExtendConsistent binds v -> t, failing if v is already bound to a
// different term. This is the core operation of homomorphism search's
// backtracking extension step (spec.md §4.3).
func (s Substitution) ExtendConsistent(v Variable, t Term) (Substitution, bool) {
	if existing, ok := s.Lookup(v); ok {
		return s, existing.Equal(t)
	}
	return s.Bind(v, t), true
}

// ForEach calls cb for every binding in s.
func (s Substitution) ForEach(cb func(v Variable, t Term)) {
	for i := 0; i < s.count && i < substEnvFixedLength; i++ {
		cb(Term{kind: kindVariable, id: s.bindings[i].k}, s.bindings[i].v)
	}
	for _, b := range s.extension {
		cb(Term{kind: kindVariable, id: b.k}, b.v)
	}
}

// Domain returns the variables bound by s.
func (s Substitution) Domain() []Variable {
	var out []Variable
	s.ForEach(func(v Variable, _ Term) { out = append(out, v) })
	return out
}

// Apply substitutes every variable in t per s, recursing into function
// term arguments.
func (s Substitution) Apply(t Term) Term {
	if t.kind == kindVariable {
		if bound, ok := s.Lookup(t); ok {
			return bound
		}
		return t
	}
	if len(t.args) == 0 {
		return t
	}
	newArgs := make([]Term, len(t.args))
	changed := false
	for i, a := range t.args {
		newArgs[i] = s.Apply(a)
		if !newArgs[i].Equal(a) {
			changed = true
		}
	}
	if !changed {
		return t
	}
	out := t
	out.args = newArgs
	return out
}

// ApplyAtom substitutes every argument of a.
func (s Substitution) ApplyAtom(a Atom) Atom {
	out := Atom{Predicate: a.Predicate, Args: make([]Term, len(a.Args))}
	for i, t := range a.Args {
		out.Args[i] = s.Apply(t)
	}
	return out
}

// Compose returns a substitution equivalent to applying right, then left
// (right acts first): Compose(left, right).Apply(x) == left.Apply(right.Apply(x)).
func Compose(left, right Substitution) Substitution {
	out := EmptySubstitution()
	right.ForEach(func(v Variable, t Term) {
		out = out.Bind(v, left.Apply(t))
	})
	left.ForEach(func(v Variable, t Term) {
		if _, ok := right.Lookup(v); !ok {
			out = out.Bind(v, t)
		}
	})
	return out
}

// Normalize closes s over variable-to-variable chains: if x->y and y->z
// are both present, x resolves to z. Iterates until stable, per spec.md §4.1.
func Normalize(s Substitution) Substitution {
	for {
		changed := false
		next := EmptySubstitution()
		s.ForEach(func(v Variable, t Term) {
			resolved := s.Apply(t)
			if !resolved.Equal(t) {
				changed = true
			}
			next = next.Bind(v, resolved)
		})
		s = next
		if !changed {
			return s
		}
	}
}

// RestrictTo returns the restriction of s to the given variables.
func RestrictTo(s Substitution, vars []Variable) Substitution {
	keep := map[int64]bool{}
	for _, v := range vars {
		keep[v.id] = true
	}
	out := EmptySubstitution()
	s.ForEach(func(v Variable, t Term) {
		if keep[v.id] {
			out = out.Bind(v, t)
		}
	})
	return out
}

// SafeRenaming produces a substitution mapping each v in vars to a fresh
// variable from in, for alpha-renaming a rule or query before use (e.g.
// before unifying it against a query so its variables can't collide),
// per spec.md §4.1.
func SafeRenaming(in *Interner, vars []Variable) Substitution {
	out := EmptySubstitution()
	for _, v := range vars {
		out = out.Bind(v, in.Fresh(in.VariableName(v)))
	}
	return out
}

// RenameFormula applies a renaming substitution to every atom inside a
// formula, preserving its shape (including Existential/Universal bound
// variable lists, which are renamed too).
func RenameFormula(s Substitution, f Formula) Formula {
	switch v := f.(type) {
	case AtomFormula:
		return AtomFormula{Atom: s.ApplyAtom(v.Atom)}
	case Conjunction:
		out := make([]Formula, len(v.Formulas))
		for i, c := range v.Formulas {
			out[i] = RenameFormula(s, c)
		}
		return NewConjunction(out...)
	case Disjunction:
		out := make([]Formula, len(v.Formulas))
		for i, c := range v.Formulas {
			out[i] = RenameFormula(s, c)
		}
		return NewDisjunction(out...)
	case Negation:
		return NewNegation(RenameFormula(s, v.Inner))
	case Existential:
		vars := make([]Variable, len(v.Vars))
		for i, bv := range v.Vars {
			vars[i] = s.Apply(bv)
		}
		return NewExistential(vars, RenameFormula(s, v.Inner))
	case Universal:
		vars := make([]Variable, len(v.Vars))
		for i, bv := range v.Vars {
			vars[i] = s.Apply(bv)
		}
		return NewUniversal(vars, RenameFormula(s, v.Inner))
	default:
		return f
	}
}

// RenameRule alpha-renames every variable of r to a fresh name, per the
// teacher's habit (database.go's "freshen all stored clauses, so that
// there are no name collisions between scopes") generalized from ground
// clauses to full rules.
func RenameRule(in *Interner, r Rule) Rule {
	allVars := append([]Variable(nil), r.Body.FreeVars()...)
	seen := map[int64]bool{}
	for _, v := range allVars {
		seen[v.id] = true
	}
	addVar := func(v Variable) {
		if !seen[v.id] {
			seen[v.id] = true
			allVars = append(allVars, v)
		}
	}
	for _, v := range r.Head.FreeVars() {
		addVar(v)
	}
	for _, v := range ExistentialVariables(r.Head) {
		addVar(v)
	}
	ren := SafeRenaming(in, allVars)
	renamed, err := NewRule(RenameFormula(ren, r.Body), RenameFormula(ren, r.Head))
	if err != nil {
		// RenameFormula preserves structure 1:1, so a renamed rule is
		// well-formed iff the original was.
		panic(err)
	}
	return renamed
}
