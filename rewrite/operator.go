package rewrite

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/unify"
)

// RewriteWithUnifier implements spec.md §4.7 step 2's rewriting operator
// for one piece unifier against a single head disjunct: the matched piece
// of query is dropped and fresh's body is conjoined, both passed through
// u's partition. fresh must be the already freshened (RenameRule'd) copy
// of the rule u was computed against, so that the partition's variable
// ids line up with fresh.Body's.
func RewriteWithUnifier(fresh pie.Rule, query CQ, u unify.PieceUnifier) (CQ, error) {
	return rewriteWith(fresh, query, u.QueryAtoms, u.Partition)
}

// RewriteWithDisjunctiveUnifier is the disjunctive-head counterpart: every
// disjunct's matched piece is dropped together, and fresh's (single,
// shared) body is conjoined through the tuple's joined partition.
func RewriteWithDisjunctiveUnifier(fresh pie.Rule, query CQ, du unify.DisjunctivePieceUnifier) (CQ, error) {
	var matched []pie.Atom
	for _, u := range du.Unifiers {
		matched = append(matched, u.QueryAtoms...)
	}
	return rewriteWith(fresh, query, matched, du.Partition)
}

func rewriteWith(fresh pie.Rule, query CQ, matchedQueryAtoms []pie.Atom, partition *pie.Partition) (CQ, error) {
	bAtoms, err := bodyAtoms(fresh.Body)
	if err != nil {
		return CQ{}, err
	}
	remaining := subtractAtoms(query.Atoms, matchedQueryAtoms)

	newAtoms := make([]pie.Atom, 0, len(remaining)+len(bAtoms))
	for _, a := range remaining {
		newAtoms = append(newAtoms, applyPartitionAtom(partition, a))
	}
	for _, a := range bAtoms {
		newAtoms = append(newAtoms, applyPartitionAtom(partition, a))
	}

	newAnswerVars := make([]pie.Variable, len(query.AnswerVars))
	for i, v := range query.AnswerVars {
		newAnswerVars[i] = partition.Representative(v)
	}
	return CQ{AnswerVars: newAnswerVars, Atoms: dedupAtoms(newAtoms)}, nil
}

func applyPartitionAtom(p *pie.Partition, a pie.Atom) pie.Atom {
	out := pie.Atom{Predicate: a.Predicate, Args: make([]pie.Term, len(a.Args))}
	for i, t := range a.Args {
		out.Args[i] = p.Representative(t)
	}
	return out
}

// subtractAtoms removes one occurrence of each of remove from atoms,
// matching by structural equality; a piece unifier's QueryAtoms are
// copies of elements of atoms, so this just undoes that copy.
func subtractAtoms(atoms, remove []pie.Atom) []pie.Atom {
	used := make([]bool, len(atoms))
	for _, r := range remove {
		for i, a := range atoms {
			if used[i] || !a.Equal(r) {
				continue
			}
			used[i] = true
			break
		}
	}
	out := make([]pie.Atom, 0, len(atoms))
	for i, a := range atoms {
		if !used[i] {
			out = append(out, a)
		}
	}
	return out
}

func dedupAtoms(atoms []pie.Atom) []pie.Atom {
	seen := map[string]bool{}
	out := make([]pie.Atom, 0, len(atoms))
	for _, a := range atoms {
		key := a.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
