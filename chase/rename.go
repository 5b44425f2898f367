package chase

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/spaolacci/murmur3"

	"github.com/datalogplus/pie"
)

// Renamer deterministically names the existential witnesses a trigger's
// firing introduces (spec.md §4.10 step 4, "skolem renamer"), extending
// t.Sub over the rule's existential head variables so the caller can
// ground the chosen head disjunct.
type Renamer interface {
	Rename(in *pie.Interner, rule pie.Rule, sub pie.Substitution) pie.Substitution
}

var freshCounter int64

// FreshRenamer assigns a brand new constant to every existential variable
// on every firing (spec.md §4.10's "fresh" renamer) — simplest, but
// unsafe: the same logical witness gets re-minted on every step, so a
// fresh-renamed chase never converges to a fixpoint on its own and needs
// a checker (restricted/equivalent) to compensate.
type FreshRenamer struct{}

func (FreshRenamer) Rename(in *pie.Interner, rule pie.Rule, sub pie.Substitution) pie.Substitution {
	out := sub
	for _, v := range pie.ExistentialVariables(rule.Head) {
		freshCounter++
		name := fmt.Sprintf("_sk%d", freshCounter)
		out, _ = out.ExtendConsistent(v, in.Constant(name))
	}
	return out
}

// hashSkolemName folds a rule id and a sorted list of (variable, bound
// term) pairs into a stable witness name, the same structural-hash shape
// database.go's chainHash/writeHash use for clause/chain identity.
func hashSkolemName(tag string, ruleID fmt.Stringer, vars []pie.Variable, sub pie.Substitution) string {
	hasher := murmur3.New128()
	hasher.Write([]byte(ruleID.String()))

	type pair struct {
		name string
		term string
	}
	pairs := make([]pair, 0, len(vars))
	for _, v := range vars {
		t, ok := sub.Lookup(v)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{name: v.String(), term: t.String()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	for _, p := range pairs {
		hasher.Write([]byte(p.name))
		hasher.Write([]byte(p.term))
	}

	hi, lo := hasher.Sum128()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], hi)
	binary.LittleEndian.PutUint64(buf[8:16], lo)
	return fmt.Sprintf("%s_%x", tag, buf)
}

// BodySkolemRenamer keys each witness on the rule id and the full body
// substitution (spec.md §4.10, "body-skolem") — a true skolem term in the
// sense that identical rule+substitution pairs always produce the same
// witness, enabling chase convergence, but any body variable that isn't
// part of the frontier still participates in the key, so two triggers
// that agree on the frontier but differ on an irrelevant body binding get
// distinct witnesses.
type BodySkolemRenamer struct{}

func (BodySkolemRenamer) Rename(in *pie.Interner, rule pie.Rule, sub pie.Substitution) pie.Substitution {
	bodyVars := bodyFreeVars(rule)
	out := sub
	for _, v := range pie.ExistentialVariables(rule.Head) {
		name := hashSkolemName("bsk", rule.ID, bodyVars, sub)
		out, _ = out.ExtendConsistent(v, in.Constant(name+"_"+v.String()))
	}
	return out
}

// FrontierSkolemRenamer keys each witness on the rule id and only the
// frontier variables' bindings (spec.md §4.10, "frontier-skolem") — two
// triggers agreeing on the frontier always produce the same witness
// regardless of other body bindings, the convergence property
// BodySkolemRenamer lacks.
type FrontierSkolemRenamer struct{}

func (FrontierSkolemRenamer) Rename(in *pie.Interner, rule pie.Rule, sub pie.Substitution) pie.Substitution {
	frontier := pie.FrontierVariables(rule)
	out := sub
	for _, v := range pie.ExistentialVariables(rule.Head) {
		name := hashSkolemName("fsk", rule.ID, frontier, sub)
		out, _ = out.ExtendConsistent(v, in.Constant(name+"_"+v.String()))
	}
	return out
}

// FrontierByPieceSkolemRenamer refines FrontierSkolemRenamer by keying
// each connected "piece" of existential head variables independently
// (spec.md §4.10, "frontier-by-piece-skolem"): two existential variables
// are in the same piece iff they co-occur in some head atom of some
// disjunct. A rule whose head has two existentials that never appear
// together can then share one piece's witness across triggers that
// disagree on the other piece's frontier-relevant bindings, which the
// single-key FrontierSkolemRenamer cannot express.
type FrontierByPieceSkolemRenamer struct{}

func (FrontierByPieceSkolemRenamer) Rename(in *pie.Interner, rule pie.Rule, sub pie.Substitution) pie.Substitution {
	existentials := pie.ExistentialVariables(rule.Head)
	if len(existentials) == 0 {
		return sub
	}
	part := pie.NewPartition()
	for _, v := range existentials {
		part.Representative(v)
	}
	for _, d := range pie.HeadDisjuncts(rule.Head) {
		atoms, err := pie.HeadConjunctionAtoms(d)
		if err != nil {
			continue
		}
		for _, a := range atoms {
			var inAtom []pie.Variable
			for _, arg := range a.Args {
				if arg.IsVariable() {
					for _, v := range existentials {
						if v.Equal(arg) {
							inAtom = append(inAtom, v)
						}
					}
				}
			}
			for i := 1; i < len(inAtom); i++ {
				_ = part.Union(inAtom[0], inAtom[i])
			}
		}
	}
	frontier := pie.FrontierVariables(rule)
	out := sub
	for _, piece := range part.Classes() {
		name := hashSkolemName("fpsk", rule.ID, frontier, sub)
		for _, pv := range piece {
			for _, v := range existentials {
				if v.Equal(pv) {
					out, _ = out.ExtendConsistent(v, in.Constant(name+"_"+pv.String()))
				}
			}
		}
	}
	return out
}
