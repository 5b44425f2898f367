package pie

import "github.com/datalogplus/pie/errs"

// Partition is a union-find over terms, per spec.md §3, used by the piece
// unifier (package unify) and equality handling. It is new code — the
// teacher has no analog — grounded on environment.chase's single-binding
// walk in environment.go, generalized to full union-find with path
// compression and a per-class "known non-variable" slot so two distinct
// constants/literals landing in the same class is caught as a conflict.
type Partition struct {
	parent map[termKey]termKey
	// anchor records, per class representative, a non-variable term
	// (constant or literal) known to be in that class, if any.
	anchor map[termKey]Term
}

// NewPartition returns an empty partition.
func NewPartition() *Partition {
	return &Partition{parent: map[termKey]termKey{}, anchor: map[termKey]Term{}}
}

func (p *Partition) ensure(t Term) termKey {
	k := t.key()
	if _, ok := p.parent[k]; !ok {
		p.parent[k] = k
		if t.kind == kindConstant || t.kind == kindLiteral {
			p.anchor[k] = t
		}
	}
	return k
}

// find returns the representative key for t's class, path-compressing
// along the way.
func (p *Partition) find(t Term) termKey {
	k := p.ensure(t)
	root := k
	for p.parent[root] != root {
		root = p.parent[root]
	}
	for p.parent[k] != root {
		p.parent[k], k = root, p.parent[k]
	}
	return root
}

// Representative returns some term known to be in t's class (t itself, if
// no other representative is available).
func (p *Partition) Representative(t Term) Term {
	root := p.find(t)
	if anchor, ok := p.anchor[root]; ok {
		return anchor
	}
	return termFromKey(root)
}

func termFromKey(k termKey) Term { return Term{kind: k.kind, id: k.id} }

// SameClass reports whether a and b are already unioned.
func (p *Partition) SameClass(a, b Term) bool {
	return p.find(a) == p.find(b)
}

// Union merges the classes of a and b. It fails with
// errs.ErrUnifierConflict if the merged class would contain two distinct
// constants or literals (spec.md §4.6: "each equivalence class contains
// at most one constant").
func (p *Partition) Union(a, b Term) error {
	ra, rb := p.find(a), p.find(b)
	if ra == rb {
		return nil
	}
	anchorA, hasA := p.anchor[ra]
	anchorB, hasB := p.anchor[rb]
	if hasA && hasB && !anchorA.Equal(anchorB) {
		return errs.ErrUnifierConflict
	}
	p.parent[rb] = ra
	if !hasA && hasB {
		p.anchor[ra] = anchorB
	}
	delete(p.anchor, rb)
	return nil
}

// Clone deep-copies the partition, used when the piece unifier algorithm
// wants to fork a candidate build without mutating the parent.
func (p *Partition) Clone() *Partition {
	out := &Partition{parent: make(map[termKey]termKey, len(p.parent)), anchor: make(map[termKey]Term, len(p.anchor))}
	for k, v := range p.parent {
		out.parent[k] = v
	}
	for k, v := range p.anchor {
		out.anchor[k] = v
	}
	return out
}

// Merge unions the classes of another partition into p, term by term,
// failing on the first conflict. Used to check that two disjunct
// unifiers' partitions are compatible (spec.md §4.6's disjunctive
// variant).
func (p *Partition) Merge(other *Partition) error {
	// Union every pair of terms that other's structure says are
	// equivalent: for each class in other, walk its members (recovered
	// via parent map) and union them all into p.
	classes := map[termKey][]termKey{}
	for k := range other.parent {
		r := other.find(termFromKey(k))
		classes[r] = append(classes[r], k)
	}
	for _, members := range classes {
		if len(members) < 2 {
			// still need to register any anchor
			if len(members) == 1 {
				if anchor, ok := other.anchor[other.find(termFromKey(members[0]))]; ok {
					p.ensure(anchor)
				}
			}
			continue
		}
		first := termFromKey(members[0])
		for _, m := range members[1:] {
			if err := p.Union(first, termFromKey(m)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Classes returns the current equivalence classes as slices of terms,
// for tests and debugging.
func (p *Partition) Classes() [][]Term {
	byRoot := map[termKey][]Term{}
	for k := range p.parent {
		r := p.find(termFromKey(k))
		byRoot[r] = append(byRoot[r], termFromKey(k))
	}
	out := make([][]Term, 0, len(byRoot))
	for _, members := range byRoot {
		out = append(out, members)
	}
	return out
}
