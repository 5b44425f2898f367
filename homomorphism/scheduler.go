package homomorphism

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

// Scheduler picks which unmatched atom homomorphism search should probe
// next, per spec.md §4.3.
type Scheduler interface {
	// Next chooses an index into atoms from remaining (in original-order),
	// returning ok=false if none of them can currently be evaluated.
	Next(atoms []pie.Atom, remaining []int, sub pie.Substitution, sources SourceSet) (chosen int, ok bool)
}

func buildQuery(sub pie.Substitution, atom pie.Atom) fact.BasicQuery {
	return fact.NewBasicQuery(atom.Predicate, sub.ApplyAtom(atom).Args)
}

func evaluable(atom pie.Atom, sub pie.Substitution, sources SourceSet) (fact.BasicQuery, bool) {
	q := buildQuery(sub, atom)
	src, ok := sources[atom.Predicate]
	if !ok {
		return q, false
	}
	return q, src.CanEvaluate(q)
}

// StaticScheduler orders atoms once, greedily maximizing shared-variable
// overlap with the atoms already placed — the "by-variable" scheduler of
// spec.md §4.3. It does not re-examine boundedness at each step; a chosen
// atom that turns out not to be evaluable simply fails that search branch.
type StaticScheduler struct {
	priority map[int]int // atom index -> rank, lower is earlier
}

// NewStaticScheduler precomputes the order for a fixed atom list.
func NewStaticScheduler(atoms []pie.Atom) *StaticScheduler {
	n := len(atoms)
	placed := make([]bool, n)
	order := make([]int, 0, n)
	boundVars := map[int64]bool{}
	for len(order) < n {
		best, bestScore := -1, -1
		for i, a := range atoms {
			if placed[i] {
				continue
			}
			score := 0
			for _, v := range a.FreeVariables() {
				if boundVars[v.ID()] {
					score++
				}
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		placed[best] = true
		order = append(order, best)
		for _, v := range atoms[best].FreeVariables() {
			boundVars[v.ID()] = true
		}
	}
	priority := make(map[int]int, n)
	for rank, idx := range order {
		priority[idx] = rank
	}
	return &StaticScheduler{priority: priority}
}

func (s *StaticScheduler) Next(atoms []pie.Atom, remaining []int, sub pie.Substitution, sources SourceSet) (int, bool) {
	best, bestRank := -1, -1
	for _, idx := range remaining {
		rank := s.priority[idx]
		if best == -1 || rank < bestRank {
			best, bestRank = idx, rank
		}
	}
	if best == -1 {
		return 0, false
	}
	if _, ok := evaluable(atoms[best], sub, sources); !ok {
		return 0, false
	}
	return best, true
}

// DynamicScheduler picks, at every step, the evaluable remaining atom with
// the smallest estimated result size, breaking ties by fewer free
// variables then by insertion order, per spec.md §4.3.
type DynamicScheduler struct{}

func (DynamicScheduler) Next(atoms []pie.Atom, remaining []int, sub pie.Substitution, sources SourceSet) (int, bool) {
	best := -1
	var bestBound int
	var bestFree int
	for _, idx := range remaining {
		atom := atoms[idx]
		q, ok := evaluable(atom, sub, sources)
		if !ok {
			continue
		}
		src := sources[atom.Predicate]
		bound, hasBound := src.EstimateBound(q, sub)
		if !hasBound {
			bound = int(^uint(0) >> 1) // treat "unknown" as unbounded, per spec.md §4.4 atom default
		}
		free := len(q.AnswerPositions)
		if best == -1 || bound < bestBound || (bound == bestBound && free < bestFree) {
			best, bestBound, bestFree = idx, bound, free
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
