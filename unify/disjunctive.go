package unify

import "github.com/datalogplus/pie"

// DisjunctivePieceUnifier is one tuple of piece unifiers (μ₁,…,μₖ), one per
// disjunct of a disjunctive rule head, plus their joined partition, per
// spec.md §4.6's disjunctive variant.
type DisjunctivePieceUnifier struct {
	Unifiers  []PieceUnifier
	Partition *pie.Partition
}

// DisjunctivePieceUnifiers enumerates every disjunctive piece unifier
// rewriting query using rule head's disjuncts jointly: one piece unifier
// per disjunct, covering disjoint pieces of query, whose partitions merge
// without conflict (spec.md §4.6: "whose partitions are compatible —
// their join yields no constant/existential conflict — and whose frontier
// instantiations agree on shared frontier variables"; shared-variable
// agreement is exactly what Partition.Merge enforces, since a variable
// bound inconsistently across two disjuncts' unifiers surfaces as a
// Union conflict on the merged partition).
func DisjunctivePieceUnifiers(head pie.Formula, query []pie.Atom) ([]DisjunctivePieceUnifier, error) {
	disjuncts := pie.HeadDisjuncts(head)
	perDisjunct := make([][]PieceUnifier, len(disjuncts))
	for i, d := range disjuncts {
		us, err := PieceUnifiers(d, query)
		if err != nil {
			return nil, err
		}
		perDisjunct[i] = us
	}

	var out []DisjunctivePieceUnifier
	usedQuery := make([]bool, len(query))
	chosen := make([]PieceUnifier, 0, len(disjuncts))

	var decide func(pos int, partition *pie.Partition)
	decide = func(pos int, partition *pie.Partition) {
		if pos == len(disjuncts) {
			tuple := append([]PieceUnifier(nil), chosen...)
			out = append(out, DisjunctivePieceUnifier{Unifiers: tuple, Partition: partition})
			return
		}
		for _, u := range perDisjunct[pos] {
			idxs, ok := markQueryAtoms(query, u.QueryAtoms, usedQuery)
			if !ok {
				continue
			}
			merged := partition.Clone()
			if err := merged.Merge(u.Partition); err == nil {
				chosen = append(chosen, u)
				decide(pos+1, merged)
				chosen = chosen[:len(chosen)-1]
			}
			unmarkQueryAtoms(usedQuery, idxs)
		}
	}
	decide(0, pie.NewPartition())
	return out, nil
}

// markQueryAtoms finds query's indices matching atoms (by identity of
// content, since a piece unifier's QueryAtoms are copies of elements of
// query) and marks them used, failing if any is already used by an
// earlier disjunct's chosen piece — disjunctive pieces must be disjoint.
func markQueryAtoms(query []pie.Atom, atoms []pie.Atom, used []bool) ([]int, bool) {
	var idxs []int
	for _, a := range atoms {
		found := -1
		for qi, q := range query {
			if used[qi] {
				continue
			}
			if q.Equal(a) {
				found = qi
				break
			}
		}
		if found == -1 {
			return nil, false
		}
		used[found] = true
		idxs = append(idxs, found)
	}
	return idxs, true
}

func unmarkQueryAtoms(used []bool, idxs []int) {
	for _, i := range idxs {
		used[i] = false
	}
}

