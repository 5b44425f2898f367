package grd

import (
	"fmt"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/errs"
)

// Strategy selects a stratification algorithm, per spec.md §4.9.
type Strategy int

const (
	// ByStratumSCC assigns one stratum per SCC of the GRD, in
	// topological order.
	ByStratumSCC Strategy = iota
	// Minimal assigns each SCC its minimum feasible level under edge
	// weights {0 for positive, 1 for negative}.
	Minimal
	// SingleEvaluation forces weight 1 on every inter-SCC edge so each
	// stratum is evaluable in a single pass of naive chase.
	SingleEvaluation
	// MinimalEvaluation groups independent SCCs into the lowest shared
	// level while preserving SingleEvaluation's separation guarantee.
	MinimalEvaluation
)

func (s Strategy) String() string {
	switch s {
	case ByStratumSCC:
		return "by-SCC"
	case Minimal:
		return "minimal"
	case SingleEvaluation:
		return "single-evaluation"
	case MinimalEvaluation:
		return "minimal-evaluation"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

type sccPair struct{ from, to int }

// sccCondensation is the SCC condensation of a GRD: always a DAG, since
// collapsing every SCC to a single node removes all cycles by
// construction.
type sccCondensation struct {
	members  [][]pie.Rule
	posEdges map[sccPair]bool
	negEdges map[sccPair]bool
}

type sccNode struct{ idx int64 }

func (n sccNode) ID() int64 { return n.idx }

// condensation builds the SCC condensation of gr, failing if any SCC
// contains a negative edge internally (an unstratifiable negative
// recursion, regardless of strategy).
func (gr *Graph) condensation() (*sccCondensation, error) {
	sccs := topo.TarjanSCC(gr.g)
	sccOf := make(map[int64]int, len(gr.nodeOf))
	members := make([][]pie.Rule, len(sccs))
	for idx, comp := range sccs {
		ms := make([]pie.Rule, len(comp))
		for i, n := range comp {
			rn := n.(ruleNode)
			sccOf[rn.ID()] = idx
			ms[i] = rn.rule
		}
		sortRules(ms)
		members[idx] = ms
	}

	c := &sccCondensation{
		members:  members,
		posEdges: make(map[sccPair]bool),
		negEdges: make(map[sccPair]bool),
	}

	edges := gr.g.Edges()
	for edges.Next() {
		e := edges.Edge()
		u, v := e.From().ID(), e.To().ID()
		su, sv := sccOf[u], sccOf[v]
		negative := gr.negative[[2]int64{u, v}]
		if su == sv {
			if negative {
				return nil, errs.ErrStratificationNegativeCycle
			}
			continue
		}
		p := sccPair{su, sv}
		if negative {
			c.negEdges[p] = true
		} else {
			c.posEdges[p] = true
		}
	}
	return c, nil
}

func (c *sccCondensation) allPairs() map[sccPair]bool {
	out := make(map[sccPair]bool, len(c.posEdges)+len(c.negEdges))
	for p := range c.posEdges {
		out[p] = true
	}
	for p := range c.negEdges {
		out[p] = true
	}
	return out
}

func (c *sccCondensation) plainGraph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for idx := range c.members {
		g.AddNode(sccNode{int64(idx)})
	}
	for p := range c.allPairs() {
		g.SetEdge(simple.Edge{F: sccNode{int64(p.from)}, T: sccNode{int64(p.to)}})
	}
	return g
}

// byscc returns one stratum per SCC, in the condensation's topological
// order.
func (c *sccCondensation) byscc() ([][]pie.Rule, error) {
	order, err := topo.Sort(c.plainGraph())
	if err != nil {
		return nil, fmt.Errorf("pie/grd: %w", err)
	}
	strata := make([][]pie.Rule, len(order))
	for i, n := range order {
		strata[i] = c.members[n.ID()]
	}
	return strata, nil
}

// weightedLevels assigns each SCC the longest-path level from a virtual
// root under the given edge-weight function, via Bellman-Ford on
// negated weights (BellmanFordFrom computes shortest paths; negating
// turns "shortest in the negated graph" into "longest in the original").
// The condensation is always a DAG, so a negative cycle can never
// actually occur here; the ok check is defensive.
func (c *sccCondensation) weightedLevels(weight func(negative bool) float64) (map[int]int, error) {
	wg := simple.NewWeightedDirectedGraph(0, 0)
	for idx := range c.members {
		wg.AddNode(sccNode{int64(idx)})
	}
	for p := range c.allPairs() {
		w := weight(c.negEdges[p])
		wg.SetWeightedEdge(simple.WeightedEdge{F: sccNode{int64(p.from)}, T: sccNode{int64(p.to)}, W: -w})
	}
	root := sccNode{int64(len(c.members))}
	wg.AddNode(root)
	for idx := range c.members {
		wg.SetWeightedEdge(simple.WeightedEdge{F: root, T: sccNode{int64(idx)}, W: 0})
	}

	paths, ok := path.BellmanFordFrom(root, wg)
	if !ok {
		return nil, errs.ErrStratificationNegativeCycle
	}

	levels := make(map[int]int, len(c.members))
	for idx := range c.members {
		d := paths.WeightTo(int64(idx))
		levels[idx] = int(-d + 0.5)
	}
	return levels, nil
}

func (c *sccCondensation) strataFromLevels(levels map[int]int) [][]pie.Rule {
	maxLevel := 0
	for _, l := range levels {
		if l > maxLevel {
			maxLevel = l
		}
	}
	buckets := make([][]pie.Rule, maxLevel+1)
	for idx := 0; idx < len(c.members); idx++ {
		buckets[levels[idx]] = append(buckets[levels[idx]], c.members[idx]...)
	}
	var out [][]pie.Rule
	for _, b := range buckets {
		if len(b) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func weightMinimal(negative bool) float64 {
	if negative {
		return 1
	}
	return 0
}

func weightEveryEdgeStrict(bool) float64 { return 1 }

// Stratify partitions rules into an ordered list of strata such that
// every negative edge points strictly backward (lower stratum), per
// spec.md §4.9.
func Stratify(gr *Graph, strategy Strategy) ([][]pie.Rule, error) {
	c, err := gr.condensation()
	if err != nil {
		return nil, err
	}
	switch strategy {
	case ByStratumSCC:
		return c.byscc()
	case Minimal:
		levels, err := c.weightedLevels(weightMinimal)
		if err != nil {
			return nil, err
		}
		return c.strataFromLevels(levels), nil
	case SingleEvaluation, MinimalEvaluation:
		// Longest-path-from-root (ASAP) level assignment already
		// assigns every SCC its minimum feasible level under the
		// weight-1-on-every-edge constraint, so minimal-evaluation's
		// "lowest shared level" goal coincides with single-evaluation's
		// level assignment here; both use the same weighting.
		levels, err := c.weightedLevels(weightEveryEdgeStrict)
		if err != nil {
			return nil, err
		}
		return c.strataFromLevels(levels), nil
	default:
		return nil, fmt.Errorf("pie/grd: unknown stratification strategy %v", strategy)
	}
}
