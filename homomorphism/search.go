package homomorphism

import (
	"context"

	"github.com/datalogplus/pie"
)

// Search enumerates substitutions mapping a conjunction of atoms into a
// set of readable sources, per spec.md §4.3.
type Search struct {
	Sources   SourceSet
	Scheduler Scheduler
}

// NewSearch builds a search over sources using scheduler. Pass nil for
// scheduler to get the dynamic (bound-aware) default.
func NewSearch(sources SourceSet, scheduler Scheduler) *Search {
	if scheduler == nil {
		scheduler = DynamicScheduler{}
	}
	return &Search{Sources: sources, Scheduler: scheduler}
}

// Evaluate returns every σ ⊇ init such that σ(atoms) ⊆ the sources, as a
// lazily-produced SubstitutionIterator. The search runs in its own
// goroutine; callers that stop before exhausting the iterator must call
// Close to release it.
func (s *Search) Evaluate(ctx context.Context, atoms []pie.Atom, init pie.Substitution) SubstitutionIterator {
	stream := newSubstitutionStream(ctx)
	remaining := make([]int, len(atoms))
	for i := range atoms {
		remaining[i] = i
	}
	go func() {
		defer close(stream.ch)
		s.backtrack(stream, atoms, remaining, init)
	}()
	return stream
}

// backtrack returns false if the caller (via emit) has asked the search to
// stop early.
func (s *Search) backtrack(stream *substitutionStream, atoms []pie.Atom, remaining []int, sub pie.Substitution) bool {
	if len(remaining) == 0 {
		return stream.emit(sub)
	}
	chosen, ok := s.Scheduler.Next(atoms, remaining, sub, s.Sources)
	if !ok {
		return true // dead branch, not a stream failure
	}
	atom := atoms[chosen]
	src := s.Sources[atom.Predicate]
	query := buildQuery(sub, atom)
	rest := removeIndex(remaining, chosen)

	it, err := src.Evaluate(query)
	if err != nil {
		stream.fail(err)
		return false
	}
	answerPositions := sortedKeys(query.AnswerPositions)
	for {
		select {
		case <-stream.ctx.Done():
			return false
		default:
		}
		tuple, ok := it.Next()
		if !ok {
			break
		}
		extended, consistent := extend(sub, atom, answerPositions, tuple)
		if !consistent {
			continue
		}
		if !s.backtrack(stream, atoms, rest, extended) {
			return false
		}
	}
	if err := it.Err(); err != nil {
		stream.fail(err)
		return false
	}
	return true
}

func extend(sub pie.Substitution, atom pie.Atom, answerPositions []int, tuple []pie.Term) (pie.Substitution, bool) {
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

func removeIndex(xs []int, target int) []int {
	out := make([]int, 0, len(xs)-1)
	for _, x := range xs {
		if x != target {
			out = append(out, x)
		}
	}
	return out
}

func sortedKeys(m map[int]pie.Variable) []int {
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
