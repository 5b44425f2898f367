// Package grd builds and stratifies the Graph of Rule Dependencies: a
// directed graph over rules where an edge r→s means r's head can trigger
// s's body. It underlies the GRD-based chase scheduler and the
// stratified chase.
package grd

import (
	"fmt"
	"sort"

	uuid "github.com/satori/go.uuid"
	"github.com/spaolacci/murmur3"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/unify"
)

// EdgeMode selects how GRD edges are computed (spec.md §4.8).
type EdgeMode int

const (
	// EdgePredicate is the coarse mode: edge iff a head predicate of the
	// producer equals a body predicate of the consumer.
	EdgePredicate EdgeMode = iota
	// EdgeUnifier is the precise (and expensive) mode: edge iff a piece
	// unifier exists between a one-atom query built from the consumer's
	// body and the producer's head.
	EdgeUnifier
	// EdgeHybrid computes predicate-mode SCCs first, then refines edges
	// within each SCC using unifier-mode.
	EdgeHybrid
)

func (m EdgeMode) String() string {
	switch m {
	case EdgePredicate:
		return "predicate"
	case EdgeUnifier:
		return "unifier"
	case EdgeHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("EdgeMode(%d)", int(m))
	}
}

// ruleNode is a gonum graph.Node wrapping one rule. Node ids are
// murmur3-folded rule UUIDs, mirroring how fact.FactBase folds terms to
// join keys and the teacher folds clause contents into subgoal/chain
// hashes in database.go.
type ruleNode struct {
	id   int64
	rule pie.Rule
}

func (n ruleNode) ID() int64 { return n.id }

func foldRuleID(id uuid.UUID) int64 {
	return int64(murmur3.Sum64(id.Bytes()))
}

// Graph is pie's Graph of Rule Dependencies.
type Graph struct {
	g        *simple.DirectedGraph
	nodeOf   map[uuid.UUID]ruleNode
	negative map[[2]int64]bool
}

// Build constructs the GRD for rules under the given edge mode.
func Build(rules []pie.Rule, mode EdgeMode) (*Graph, error) {
	gr := &Graph{
		g:        simple.NewDirectedGraph(),
		nodeOf:   make(map[uuid.UUID]ruleNode, len(rules)),
		negative: make(map[[2]int64]bool),
	}
	for _, r := range rules {
		n := ruleNode{id: foldRuleID(r.ID), rule: r}
		gr.nodeOf[r.ID] = n
		gr.g.AddNode(n)
	}

	var err error
	switch mode {
	case EdgePredicate:
		err = gr.addPredicateEdges(rules)
	case EdgeUnifier:
		err = gr.addUnifierEdges(rules, rules)
	case EdgeHybrid:
		err = gr.buildHybrid(rules)
	default:
		return nil, fmt.Errorf("pie/grd: unknown edge mode %v", mode)
	}
	if err != nil {
		return nil, err
	}
	return gr, nil
}

// Rules returns every rule in the GRD, ordered deterministically by rule
// id for reproducible iteration (gonum's node set is unordered).
func (gr *Graph) Rules() []pie.Rule {
	out := make([]pie.Rule, 0, len(gr.nodeOf))
	for _, n := range gr.nodeOf {
		out = append(out, n.rule)
	}
	sortRules(out)
	return out
}

// IsNegative reports whether the edge from→to is marked negative.
func (gr *Graph) IsNegative(from, to pie.Rule) bool {
	fn, ok1 := gr.nodeOf[from.ID]
	tn, ok2 := gr.nodeOf[to.ID]
	if !ok1 || !ok2 {
		return false
	}
	return gr.negative[[2]int64{fn.ID(), tn.ID()}]
}

// HasEdge reports whether the GRD has an edge from→to.
func (gr *Graph) HasEdge(from, to pie.Rule) bool {
	fn, ok1 := gr.nodeOf[from.ID]
	tn, ok2 := gr.nodeOf[to.ID]
	if !ok1 || !ok2 {
		return false
	}
	return gr.g.HasEdgeFromTo(fn.ID(), tn.ID())
}

// Successors returns every rule directly reachable from r via a GRD edge
// (r's head can trigger their bodies), ordered deterministically. Used by
// the GRD-based chase scheduler to restrict a step to rules reachable
// from the rules touched in the previous step.
func (gr *Graph) Successors(r pie.Rule) []pie.Rule {
	rn, ok := gr.nodeOf[r.ID]
	if !ok {
		return nil
	}
	it := gr.g.From(rn.ID())
	var out []pie.Rule
	for it.Next() {
		out = append(out, it.Node().(ruleNode).rule)
	}
	sortRules(out)
	return out
}

func sortRules(rs []pie.Rule) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID.String() < rs[j].ID.String() })
}

func (gr *Graph) addEdge(producer, consumer pie.Rule, negative bool) {
	pn, cn := gr.nodeOf[producer.ID], gr.nodeOf[consumer.ID]
	if !gr.g.HasEdgeFromTo(pn.ID(), cn.ID()) {
		gr.g.SetEdge(simple.Edge{F: pn, T: cn})
	}
	if negative {
		gr.negative[[2]int64{pn.ID(), cn.ID()}] = true
	}
}

func (gr *Graph) removeEdge(from, to pie.Rule) {
	fn, tn := gr.nodeOf[from.ID], gr.nodeOf[to.ID]
	gr.g.RemoveEdge(fn.ID(), tn.ID())
	delete(gr.negative, [2]int64{fn.ID(), tn.ID()})
}

// polarAtom is a body atom tagged with whether it sits under negation.
type polarAtom struct {
	Atom    pie.Atom
	Negated bool
}

func bodyPolarAtoms(body pie.Formula) ([]polarAtom, error) {
	switch v := body.(type) {
	case pie.AtomFormula:
		return []polarAtom{{Atom: v.Atom}}, nil
	case pie.Negation:
		af, ok := v.Inner.(pie.AtomFormula)
		if !ok {
			return nil, errUnsupportedRuleBody
		}
		return []polarAtom{{Atom: af.Atom, Negated: true}}, nil
	case pie.Conjunction:
		out := make([]polarAtom, 0, len(v.Formulas))
		for _, c := range v.Formulas {
			switch cv := c.(type) {
			case pie.AtomFormula:
				out = append(out, polarAtom{Atom: cv.Atom})
			case pie.Negation:
				af, ok := cv.Inner.(pie.AtomFormula)
				if !ok {
					return nil, errUnsupportedRuleBody
				}
				out = append(out, polarAtom{Atom: af.Atom, Negated: true})
			default:
				return nil, errUnsupportedRuleBody
			}
		}
		return out, nil
	default:
		return nil, errUnsupportedRuleBody
	}
}

// headPredicates returns the union of head predicates across every
// disjunct of r's head, per spec.md §4.8's "disjunctive heads: union of
// per-disjunct edges" rule.
func headPredicates(r pie.Rule) ([]pie.Predicate, error) {
	var out []pie.Predicate
	for _, d := range pie.HeadDisjuncts(r.Head) {
		atoms, err := pie.HeadConjunctionAtoms(d)
		if err != nil {
			return nil, err
		}
		for _, a := range atoms {
			dup := false
			for _, p := range out {
				if p.Equal(a.Predicate) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, a.Predicate)
			}
		}
	}
	return out, nil
}

func (gr *Graph) addPredicateEdges(rules []pie.Rule) error {
	heads := make([][]pie.Predicate, len(rules))
	bodies := make([][]polarAtom, len(rules))
	for i, r := range rules {
		h, err := headPredicates(r)
		if err != nil {
			return err
		}
		b, err := bodyPolarAtoms(r.Body)
		if err != nil {
			return err
		}
		heads[i], bodies[i] = h, b
	}
	for i, producer := range rules {
		for j, consumer := range rules {
			matched, negated := false, false
			for _, hp := range heads[i] {
				for _, ba := range bodies[j] {
					if hp.Equal(ba.Atom.Predicate) {
						matched = true
						if ba.Negated {
							negated = true
						}
					}
				}
			}
			if matched {
				gr.addEdge(producer, consumer, negated)
			}
		}
	}
	return nil
}

// addUnifierEdges computes precise (piece-unifier-backed) edges between
// every producer in producers and every consumer in consumers.
func (gr *Graph) addUnifierEdges(producers, consumers []pie.Rule) error {
	for _, producer := range producers {
		disjuncts := pie.HeadDisjuncts(producer.Head)
		for _, consumer := range consumers {
			bodyAtoms, err := bodyPolarAtoms(consumer.Body)
			if err != nil {
				return err
			}
			matched, negated := false, false
			for _, ba := range bodyAtoms {
				query := []pie.Atom{ba.Atom}
				for _, d := range disjuncts {
					us, err := unify.PieceUnifiers(d, query)
					if err != nil {
						return err
					}
					if len(us) > 0 {
						matched = true
						if ba.Negated {
							negated = true
						}
					}
				}
			}
			if matched {
				gr.addEdge(producer, consumer, negated)
			}
		}
	}
	return nil
}

// buildHybrid computes predicate-mode SCCs first, then refines every
// intra-SCC pair with unifier-mode edges, per spec.md §4.8's hybrid mode.
func (gr *Graph) buildHybrid(rules []pie.Rule) error {
	if err := gr.addPredicateEdges(rules); err != nil {
		return err
	}
	sccs := topo.TarjanSCC(gr.g)
	for _, comp := range sccs {
		members := make([]pie.Rule, len(comp))
		for i, n := range comp {
			members[i] = n.(ruleNode).rule
		}
		if err := gr.refineSCC(members); err != nil {
			return err
		}
	}
	return nil
}

func (gr *Graph) refineSCC(members []pie.Rule) error {
	for _, r := range members {
		for _, s := range members {
			if gr.HasEdge(r, s) {
				gr.removeEdge(r, s)
			}
		}
	}
	return gr.addUnifierEdges(members, members)
}

var _ graph.Node = ruleNode{}
