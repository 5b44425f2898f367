package homomorphism

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

func sourcesOf(p pie.Predicate, fb *fact.FactBase) SourceSet {
	return SourceSet{p: fb}
}

func collectSubs(it SubstitutionIterator) []pie.Substitution {
	var out []pie.Substitution
	for {
		sub, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, sub)
	}
	return out
}

func TestSearch_SingleAtom(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	a, b, c := in.Constant("a"), in.Constant("b"), in.Constant("c")

	fb := fact.NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, a, b),
		pie.MustAtom(p, a, c),
	})

	x, y := in.Variable("X"), in.Variable("Y")
	search := NewSearch(sourcesOf(p, fb), nil)
	it := search.Evaluate(context.Background(), []pie.Atom{pie.MustAtom(p, x, y)}, pie.EmptySubstitution())
	defer it.Close()

	subs := collectSubs(it)
	req.NoError(it.Err())
	req.Len(subs, 2)
}

func TestSearch_JoinTwoAtoms(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	a, b, c, d := in.Constant("a"), in.Constant("b"), in.Constant("c"), in.Constant("d")

	fb := fact.NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, a, b),
		pie.MustAtom(p, b, c),
		pie.MustAtom(p, c, d),
	})

	x, y, z := in.Variable("X"), in.Variable("Y"), in.Variable("Z")
	atoms := []pie.Atom{pie.MustAtom(p, x, y), pie.MustAtom(p, y, z)}

	search := NewSearch(sourcesOf(p, fb), nil)
	it := search.Evaluate(context.Background(), atoms, pie.EmptySubstitution())
	defer it.Close()

	subs := collectSubs(it)
	req.NoError(it.Err())
	req.Len(subs, 2)

	var pairs [][2]string
	for _, sub := range subs {
		xv, _ := sub.Lookup(x)
		zv, _ := sub.Lookup(z)
		pairs = append(pairs, [2]string{in.ConstantName(xv), in.ConstantName(zv)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	req.Equal([2]string{"a", "c"}, pairs[0])
	req.Equal([2]string{"b", "d"}, pairs[1])
}

func TestSearch_NoMatchYieldsEmpty(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	fb := fact.NewFactBase()
	x := in.Variable("X")

	search := NewSearch(sourcesOf(p, fb), nil)
	it := search.Evaluate(context.Background(), []pie.Atom{pie.MustAtom(p, x)}, pie.EmptySubstitution())
	defer it.Close()

	subs := collectSubs(it)
	req.NoError(it.Err())
	req.Empty(subs)
}

func TestSearch_UnknownPredicateNeverMatches(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	q := in.Predicate("q", 1)
	fb := fact.NewFactBaseFromSeed([]pie.Atom{pie.MustAtom(p, in.Constant("a"))})
	x := in.Variable("X")

	search := NewSearch(SourceSet{p: fb}, nil)
	it := search.Evaluate(context.Background(), []pie.Atom{pie.MustAtom(q, x)}, pie.EmptySubstitution())
	defer it.Close()

	subs := collectSubs(it)
	req.NoError(it.Err())
	req.Empty(subs)
}

func TestSearch_InitialSubstitutionConstrains(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	a, b, c := in.Constant("a"), in.Constant("b"), in.Constant("c")
	fb := fact.NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, a, b),
		pie.MustAtom(p, a, c),
	})

	x, y := in.Variable("X"), in.Variable("Y")
	init, ok := pie.EmptySubstitution().ExtendConsistent(x, a)
	req.True(ok)

	search := NewSearch(sourcesOf(p, fb), nil)
	it := search.Evaluate(context.Background(), []pie.Atom{pie.MustAtom(p, x, y)}, init)
	defer it.Close()

	subs := collectSubs(it)
	req.NoError(it.Err())
	req.Len(subs, 2)
	for _, sub := range subs {
		v, ok := sub.Lookup(x)
		req.True(ok)
		req.True(v.Equal(a))
	}
}

func TestDynamicScheduler_PicksSmallestEstimatedBound(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	q := in.Predicate("q", 1)

	fbP := fact.NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, in.Constant("a")),
		pie.MustAtom(p, in.Constant("b")),
		pie.MustAtom(p, in.Constant("c")),
	})
	fbQ := fact.NewFactBaseFromSeed([]pie.Atom{pie.MustAtom(q, in.Constant("a"))})

	x := in.Variable("X")
	atoms := []pie.Atom{pie.MustAtom(p, x), pie.MustAtom(q, x)}
	sources := SourceSet{p: fbP, q: fbQ}

	chosen, ok := DynamicScheduler{}.Next(atoms, []int{0, 1}, pie.EmptySubstitution(), sources)
	req.True(ok)
	req.Equal(1, chosen, "q has the smaller extension and should be probed first")
}

func TestStaticScheduler_OrdersByVariableOverlap(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	x, y, z := in.Variable("X"), in.Variable("Y"), in.Variable("Z")
	atoms := []pie.Atom{
		pie.MustAtom(p, x, y),
		pie.MustAtom(p, y, z),
	}
	sched := NewStaticScheduler(atoms)
	first, ok := sched.Next(atoms, []int{0, 1}, pie.EmptySubstitution(), SourceSet{p: fact.NewFactBase()})
	req.True(ok)
	req.Equal(0, first)
}
