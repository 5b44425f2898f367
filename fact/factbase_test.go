package fact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalogplus/pie"
)

func TestFactBase_AddContainsRemove(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	a, b := in.Constant("a"), in.Constant("b")
	atom := pie.MustAtom(p, a, b)

	fb := NewFactBase()
	req.False(fb.Contains(atom))

	added, err := fb.AddAtom(atom)
	req.NoError(err)
	req.True(added)
	req.True(fb.Contains(atom))
	req.Equal(1, fb.Len())

	added, err = fb.AddAtom(atom)
	req.NoError(err)
	req.False(added, "re-adding the same atom is a no-op")
	req.Equal(1, fb.Len())

	removed, err := fb.RemoveAtom(atom)
	req.NoError(err)
	req.True(removed)
	req.False(fb.Contains(atom))
	req.Equal(0, fb.Len())

	removed, err = fb.RemoveAtom(atom)
	req.NoError(err)
	req.False(removed)
}

func TestFactBase_RejectsNonGroundAtoms(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	fb := NewFactBase()
	_, err := fb.AddAtom(pie.MustAtom(p, in.Variable("X")))
	req.Error(err)
}

func TestFactBase_Freeze(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	atom := pie.MustAtom(p, in.Constant("a"))

	fb := NewFactBase()
	_, err := fb.AddAtom(atom)
	req.NoError(err)
	fb.Freeze()

	_, err = fb.AddAtom(pie.MustAtom(p, in.Constant("b")))
	req.Error(err)
	_, err = fb.RemoveAtom(atom)
	req.Error(err)
}

func TestFactBase_Evaluate(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 2)
	a, b, c := in.Constant("a"), in.Constant("b"), in.Constant("c")

	fb := NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, a, b),
		pie.MustAtom(p, a, c),
		pie.MustAtom(p, b, c),
	})
	req.Equal(3, fb.Len())

	y := in.Variable("Y")
	q := NewBasicQuery(p, []pie.Term{a, y})
	it, err := fb.Evaluate(q)
	req.NoError(err)
	tuples, err := Collect(it)
	req.NoError(err)
	req.Len(tuples, 2)

	got := map[string]bool{}
	for _, tup := range tuples {
		got[tup[0].String()] = true
	}
	req.True(got[b.String()])
	req.True(got[c.String()])
}

func TestFactBase_EvaluateUnknownPredicate(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	fb := NewFactBase()
	q := NewBasicQuery(p, []pie.Term{in.Variable("X")})
	it, err := fb.Evaluate(q)
	req.NoError(err)
	tuples, err := Collect(it)
	req.NoError(err)
	req.Empty(tuples)
}

func TestFactBase_EstimateBound(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	fb := NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, in.Constant("a")),
		pie.MustAtom(p, in.Constant("b")),
	})

	q := NewBasicQuery(p, []pie.Term{in.Variable("X")})
	n, ok := fb.EstimateBound(q, pie.EmptySubstitution())
	req.True(ok)
	req.Equal(2, n)

	q2 := NewBasicQuery(p, []pie.Term{in.Constant("a")})
	n, ok = fb.EstimateBound(q2, pie.EmptySubstitution())
	req.True(ok)
	req.Equal(1, n)
}

func TestFactBase_AllAtomsAndEnumerate(t *testing.T) {
	req := require.New(t)
	in := pie.NewInterner()
	p := in.Predicate("p", 1)
	q := in.Predicate("q", 1)
	fb := NewFactBaseFromSeed([]pie.Atom{
		pie.MustAtom(p, in.Constant("a")),
		pie.MustAtom(q, in.Constant("b")),
	})
	req.Len(fb.AllAtoms(), 2)
	req.Len(fb.Enumerate(p), 1)
	req.Len(fb.Enumerate(q), 1)
}
