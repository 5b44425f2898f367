package chase

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/homomorphism"
)

// joinAtomsWithOverride evaluates atoms left to right, routing the
// occurrence at overrideIdx to overrideSrc and every other occurrence to
// sources[atom.Predicate] — needed because a SourceSet is keyed by
// predicate, so a self-join like p(X,Y), p(Y,Z) can't express "only the
// first occurrence reads the delta" by swapping sources[p] alone.
// Grounded on homomorphism/search.go's backtrack/extend, generalized
// with a per-atom-position source override for the semi-naive delta join.
func joinAtomsWithOverride(atoms []pie.Atom, overrideIdx int, overrideSrc fact.ReadableData, sources homomorphism.SourceSet, init pie.Substitution) ([]pie.Substitution, error) {
	var out []pie.Substitution
	var rec func(i int, sub pie.Substitution) error
	rec = func(i int, sub pie.Substitution) error {
		if i == len(atoms) {
			out = append(out, sub)
			return nil
		}
		atom := atoms[i]
		src := sources[atom.Predicate]
		if i == overrideIdx {
			src = overrideSrc
		}
		if src == nil {
			return nil
		}
		query := fact.NewBasicQuery(atom.Predicate, sub.ApplyAtom(atom).Args)
		it, err := src.Evaluate(query)
		if err != nil {
			return err
		}
		answerPositions := sortedPositions(query.AnswerPositions)
		for {
			tuple, ok := it.Next()
			if !ok {
				break
			}
			extended, consistent := extendWith(sub, atom, answerPositions, tuple)
			if !consistent {
				continue
			}
			if err := rec(i+1, extended); err != nil {
				return err
			}
		}
		return it.Err()
	}
	if err := rec(0, init); err != nil {
		return nil, err
	}
	return out, nil
}

func extendWith(sub pie.Substitution, atom pie.Atom, answerPositions []int, tuple fact.Tuple) (pie.Substitution, bool) {
	out := sub
	for i, pos := range answerPositions {
		v := atom.Args[pos]
		var ok bool
		out, ok = out.ExtendConsistent(v, tuple[i])
		if !ok {
			return sub, false
		}
	}
	return out, true
}

func sortedPositions(m map[int]pie.Variable) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
