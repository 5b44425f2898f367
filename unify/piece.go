// Package unify implements the piece unifier algorithm of spec.md §4.6:
// given a conjunctive query and a rule, enumerate the most general piece
// unifiers used to rewrite the query backward through the rule, plus the
// disjunctive variant for rules with a disjunctive head.
package unify

import "github.com/datalogplus/pie"

// PieceUnifier is one most-general piece unifier: a non-empty subset of
// head atoms matched against a non-empty "piece" of the query, plus the
// term partition the matching induces.
type PieceUnifier struct {
	HeadAtoms  []pie.Atom
	QueryAtoms []pie.Atom
	Partition  *pie.Partition
}

// PieceUnifiers enumerates every most general piece unifier rewriting
// query using one disjunct of a rule's head, per spec.md §4.6. disjunct is
// one element of pie.HeadDisjuncts(rule.Head) — its Existential wrapper,
// if any, is what determines which variables must stay isolated from the
// rest of the query.
func PieceUnifiers(disjunct pie.Formula, query []pie.Atom) ([]PieceUnifier, error) {
	disjunctHead, err := pie.HeadConjunctionAtoms(disjunct)
	if err != nil {
		return nil, err
	}
	existentials := pie.ExistentialVariables(disjunct)
	var out []PieceUnifier
	usedQuery := make([]bool, len(query))
	var decide func(headPos int, chosenHead, chosenQuery []int)
	decide = func(headPos int, chosenHead, chosenQuery []int) {
		if headPos == len(disjunctHead) {
			if len(chosenHead) == 0 {
				return
			}
			if pu, ok := buildCandidate(existentials, disjunctHead, query, chosenHead, chosenQuery); ok {
				out = append(out, pu)
			}
			return
		}
		// Exclude this head atom from H'.
		decide(headPos+1, chosenHead, chosenQuery)
		// Try including it, paired with each unused query atom of the
		// same predicate.
		h := disjunctHead[headPos]
		for qi, q := range query {
			if usedQuery[qi] || !q.Predicate.Equal(h.Predicate) {
				continue
			}
			usedQuery[qi] = true
			decide(headPos+1, append(chosenHead, headPos), append(chosenQuery, qi))
			usedQuery[qi] = false
		}
	}
	decide(0, nil, nil)
	return out, nil
}

func buildCandidate(existentials []pie.Variable, head, query []pie.Atom, headIdx, queryIdx []int) (PieceUnifier, bool) {
	partition := pie.NewPartition()
	headAtoms := make([]pie.Atom, len(headIdx))
	queryAtoms := make([]pie.Atom, len(queryIdx))
	inPiece := make(map[int]bool, len(queryIdx))
	for i, hi := range headIdx {
		qi := queryIdx[i]
		headAtoms[i] = head[hi]
		queryAtoms[i] = query[qi]
		inPiece[qi] = true
		for pos := range head[hi].Args {
			if err := partition.Union(head[hi].Args[pos], query[qi].Args[pos]); err != nil {
				return PieceUnifier{}, false
			}
		}
	}
	if leaks(partition, existentials, query, inPiece) {
		return PieceUnifier{}, false
	}
	return PieceUnifier{HeadAtoms: headAtoms, QueryAtoms: queryAtoms, Partition: partition}, true
}

// leaks reports whether any existential variable's class reaches a query
// atom outside the piece, per spec.md §4.6's existential isolation clause.
func leaks(partition *pie.Partition, existentials []pie.Variable, query []pie.Atom, inPiece map[int]bool) bool {
	if len(existentials) == 0 {
		return false
	}
	for qi, q := range query {
		if inPiece[qi] {
			continue
		}
		for _, v := range q.FreeVariables() {
			for _, e := range existentials {
				if partition.SameClass(v, e) {
					return true
				}
			}
		}
	}
	return false
}
