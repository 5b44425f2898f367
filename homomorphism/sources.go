// Package homomorphism implements backtracking conjunctive-query
// evaluation over any combination of fact.ReadableData sources, per
// spec.md §4.3: given a conjunction of atoms and a fact base (or any
// readable source), enumerate every substitution that maps the
// conjunction into the sources.
package homomorphism

import (
	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/fact"
)

// SourceSet routes an atom's predicate to the ReadableData responsible
// for it. A predicate absent from the set has no data and never matches.
type SourceSet map[pie.Predicate]fact.ReadableData

// Sources builds a SourceSet from a slice, keyed by each source's
// published pattern predicate.
func Sources(entries ...fact.ReadableData) SourceSet {
	out := make(SourceSet, len(entries))
	for _, s := range entries {
		out[s.Pattern().Predicate] = s
	}
	return out
}
