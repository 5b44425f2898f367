package eval

import (
	"context"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/errs"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// sliceIterator adapts an eagerly-computed slice of substitutions into a
// homomorphism.SubstitutionIterator, for the connectives (mixed
// conjunction, negation, universal) whose result set this package
// materializes up front rather than streaming lazily.
type sliceIterator struct {
	subs []pie.Substitution
	pos  int
}

func (s *sliceIterator) Next() (pie.Substitution, bool) {
	if s.pos >= len(s.subs) {
		return pie.Substitution{}, false
	}
	sub := s.subs[s.pos]
	s.pos++
	return sub, true
}
func (s *sliceIterator) Err() error { return nil }
func (s *sliceIterator) Close()     {}

// concatIterator implements disjunction: concatenate each disjunct's
// stream in order. Per spec.md §4.4, results may be duplicated —
// set-semantics deduplication is the caller's responsibility.
type concatIterator struct {
	its []homomorphism.SubstitutionIterator
	idx int
	err error
}

func (c *concatIterator) Next() (pie.Substitution, bool) {
	for c.idx < len(c.its) {
		sub, ok := c.its[c.idx].Next()
		if ok {
			return sub, true
		}
		if err := c.its[c.idx].Err(); err != nil {
			c.err = err
		}
		c.idx++
	}
	return pie.Substitution{}, false
}
func (c *concatIterator) Err() error { return c.err }
func (c *concatIterator) Close() {
	for _, it := range c.its {
		it.Close()
	}
}

// Execute implements spec.md §4.4's execute(σ) → iterator<Substitution>
// for every connective.
func Execute(ctx context.Context, env *Env, p *Prepared, sub pie.Substitution) (homomorphism.SubstitutionIterator, error) {
	switch {
	case p.atom != nil:
		search := homomorphism.NewSearch(env.Sources, nil)
		return search.Evaluate(ctx, []pie.Atom{*p.atom}, sub), nil
	case p.conj != nil:
		return executeConjunction(ctx, env, p.conj, sub)
	case p.disj != nil:
		return executeDisjunction(ctx, env, p.disj, sub)
	case p.neg != nil:
		return executeNegation(ctx, env, p.neg, sub)
	case p.exists != nil:
		// Existential evaluation is inner-evaluate-then-project (spec.md
		// §4.4): the projection itself happens at the consumer, via
		// pie.RestrictTo(σ, query answer vars) — the extra bindings this
		// stream carries for the bound variables are harmless.
		return Execute(ctx, env, p.exists.inner, sub)
	case p.forall != nil:
		return executeUniversal(ctx, env, p.forall, sub)
	default:
		return &sliceIterator{}, nil
	}
}

func atomsOnly(children []*Prepared) ([]pie.Atom, bool) {
	out := make([]pie.Atom, 0, len(children))
	for _, c := range children {
		if c.atom == nil {
			return nil, false
		}
		out = append(out, *c.atom)
	}
	return out, true
}

func executeConjunction(ctx context.Context, env *Env, children []*Prepared, sub pie.Substitution) (homomorphism.SubstitutionIterator, error) {
	if atoms, ok := atomsOnly(children); ok {
		search := homomorphism.NewSearch(env.Sources, nil)
		return search.Evaluate(ctx, atoms, sub), nil
	}
	results, err := joinChildren(ctx, env, children, sub)
	if err != nil {
		return nil, err
	}
	return &sliceIterator{subs: results}, nil
}

// joinChildren performs the general (mixed-connective) conjunction join by
// nested-loop recursion: prototype-scope simplification of spec.md §4.4's
// dynamic scheduler, which only applies fully within a pure atom
// conjunction (handled above via homomorphism.Search).
func joinChildren(ctx context.Context, env *Env, children []*Prepared, sub pie.Substitution) ([]pie.Substitution, error) {
	if len(children) == 0 {
		return []pie.Substitution{sub}, nil
	}
	head, tail := children[0], children[1:]
	it, err := Execute(ctx, env, head, sub)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []pie.Substitution
	for {
		extended, ok := it.Next()
		if !ok {
			break
		}
		rest, err := joinChildren(ctx, env, tail, extended)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func executeDisjunction(ctx context.Context, env *Env, children []*Prepared, sub pie.Substitution) (homomorphism.SubstitutionIterator, error) {
	its := make([]homomorphism.SubstitutionIterator, 0, len(children))
	for _, c := range children {
		it, err := Execute(ctx, env, c, sub)
		if err != nil {
			for _, opened := range its {
				opened.Close()
			}
			return nil, err
		}
		its = append(its, it)
	}
	return &concatIterator{its: its}, nil
}

// executeNegation implements spec.md §4.4: yield σ iff the inner child
// yields zero results under σ. An inner free variable unbound by σ is an
// unsafe witness position; a warning is emitted but evaluation proceeds
// as negation-as-failure over the currently unbound witnesses.
func executeNegation(ctx context.Context, env *Env, inner *Prepared, sub pie.Substitution) (homomorphism.SubstitutionIterator, error) {
	for _, v := range inner.FreeVars() {
		if _, bound := sub.Lookup(v); !bound {
			env.warn(errs.Warning{Kind: errs.UnsafeNegation, Message: "negated formula has an unbound free variable: " + v.String()})
			break
		}
	}
	it, err := Execute(ctx, env, inner, sub)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	_, hasResult := it.Next()
	if err := it.Err(); err != nil {
		return nil, err
	}
	if hasResult {
		return &sliceIterator{}, nil
	}
	return &sliceIterator{subs: []pie.Substitution{sub}}, nil
}

// executeUniversal implements spec.md §4.4: yield σ iff φ holds for every
// tuple of values of Vars drawn from env.Universe's ground terms. Without
// a MaterializedData universe the quantifier is unsupported, per the
// design decision recorded for spec.md §9's open question.
func executeUniversal(ctx context.Context, env *Env, u *universalNode, sub pie.Substitution) (homomorphism.SubstitutionIterator, error) {
	if env.Universe == nil {
		return nil, errs.ErrUnsupportedFeature
	}
	domain := groundTermDomain(env.Universe)
	ok, err := forallHolds(ctx, env, u.vars, u.inner, domain, 0, sub)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &sliceIterator{}, nil
	}
	return &sliceIterator{subs: []pie.Substitution{sub}}, nil
}

func forallHolds(ctx context.Context, env *Env, vars []pie.Variable, inner *Prepared, domain []pie.Term, i int, current pie.Substitution) (bool, error) {
	if i == len(vars) {
		it, err := Execute(ctx, env, inner, current)
		if err != nil {
			return false, err
		}
		defer it.Close()
		_, ok := it.Next()
		if err := it.Err(); err != nil {
			return false, err
		}
		return ok, nil
	}
	for _, value := range domain {
		extended, ok := current.ExtendConsistent(vars[i], value)
		if !ok {
			continue
		}
		holds, err := forallHolds(ctx, env, vars, inner, domain, i+1, extended)
		if err != nil {
			return false, err
		}
		if !holds {
			return false, nil
		}
	}
	return true, nil
}

func groundTermDomain(universe *fact.FactBase) []pie.Term {
	seen := map[string]bool{}
	var out []pie.Term
	for _, a := range universe.AllAtoms() {
		for _, t := range a.Args {
			key := t.String()
			if !seen[key] {
				seen[key] = true
				out = append(out, t)
			}
		}
	}
	return out
}
