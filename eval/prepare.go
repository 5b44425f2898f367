package eval

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/errs"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// unboundEstimate stands for the "∞" default of spec.md §4.4 when a source
// (or connective) cannot offer a cheap bound.
const unboundEstimate = int(^uint(0) >> 1)

// Env is the evaluation environment a PreparedQuery executes against: the
// data sources routed by predicate, an optional finite universe for the
// universal quantifier, and an optional sink for unsafe-evaluation
// warnings (spec.md §7's Warning channel).
type Env struct {
	Sources homomorphism.SourceSet
	// Universe backs the universal quantifier's finite domain (spec.md
	// §9's open-question resolution): without one, ∀ is unsupported.
	Universe *fact.FactBase
	Warnings func(errs.Warning)
}

func (e *Env) warn(w errs.Warning) {
	if e.Warnings != nil {
		e.Warnings(w)
	}
}

type existentialNode struct {
	vars  []pie.Variable
	inner *Prepared
}

type universalNode struct {
	vars  []pie.Variable
	inner *Prepared
}

// Prepared is a formula that has been rewritten and decomposed by
// connective, per spec.md §4.4 steps 2-3. Children are Prepared once at
// construction and cached in these fields, so backtracking inside a
// conjunction never re-rewrites or re-decomposes a sub-formula.
type Prepared struct {
	Formula pie.Formula
	free    []pie.Variable

	atom   *pie.Atom
	conj   []*Prepared
	disj   []*Prepared
	neg    *Prepared
	exists *existentialNode
	forall *universalNode
}

// FreeVars returns the prepared formula's free variables.
func (p *Prepared) FreeVars() []pie.Variable { return p.free }

// Prepare implements spec.md §4.4's prepare(query, data_sources): equality
// and comparisons are already represented as reserved-predicate atoms by
// construction (atom.go), so step 1 is a no-op here; step 2 rewrites
// evaluable function terms; step 3 decomposes by connective.
func Prepare(in *pie.Interner, f pie.Formula) *Prepared {
	return prepareNode(in, RewriteEvaluableFunctions(in, f))
}

func prepareNode(in *pie.Interner, f pie.Formula) *Prepared {
	p := &Prepared{Formula: f, free: f.FreeVars()}
	switch v := f.(type) {
	case pie.AtomFormula:
		a := v.Atom
		p.atom = &a
	case pie.Conjunction:
		p.conj = make([]*Prepared, len(v.Formulas))
		for i, c := range v.Formulas {
			p.conj[i] = prepareNode(in, c)
		}
	case pie.Disjunction:
		p.disj = make([]*Prepared, len(v.Formulas))
		for i, c := range v.Formulas {
			p.disj[i] = prepareNode(in, c)
		}
	case pie.Negation:
		p.neg = prepareNode(in, v.Inner)
	case pie.Existential:
		p.exists = &existentialNode{vars: v.Vars, inner: prepareNode(in, v.Inner)}
	case pie.Universal:
		p.forall = &universalNode{vars: v.Vars, inner: prepareNode(in, v.Inner)}
	}
	return p
}

// EstimateBound implements spec.md §4.4 step 4's defaults: atom bound is
// the source's estimate_bound (or unknown); conjunction is the min of its
// children; disjunction is their sum; negation is 1; ∃/∀ is the inner
// formula's bound.
func (p *Prepared) EstimateBound(env *Env, known pie.Substitution) (int, bool) {
	switch {
	case p.atom != nil:
		src, ok := env.Sources[p.atom.Predicate]
		if !ok {
			return 0, true
		}
		q := fact.NewBasicQuery(p.atom.Predicate, known.ApplyAtom(*p.atom).Args)
		return src.EstimateBound(q, known)
	case p.conj != nil:
		best, any := unboundEstimate, false
		for _, c := range p.conj {
			if b, ok := c.EstimateBound(env, known); ok && b < best {
				best, any = b, true
			}
		}
		return best, any
	case p.disj != nil:
		sum := 0
		for _, c := range p.disj {
			b, ok := c.EstimateBound(env, known)
			if !ok {
				return 0, false
			}
			sum += b
		}
		return sum, true
	case p.neg != nil:
		return 1, true
	case p.exists != nil:
		return p.exists.inner.EstimateBound(env, known)
	case p.forall != nil:
		return p.forall.inner.EstimateBound(env, known)
	default:
		return 0, false
	}
}
