package chase

import (
	"context"
	"io"
	"strings"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/diagnostics"
	"github.com/datalogplus/pie/fact"
)

// TreatmentContext carries a step's outcome to the post-step hooks
// (spec.md §4.10's "treatments"). Rules is a pointer so RuleSplitTreatment
// can rewrite the working rule set in place.
type TreatmentContext struct {
	Ctx      context.Context
	Interner *pie.Interner
	Rules    *[]pie.Rule
	Facts    *fact.FactBase
	Step     int
	Result   ApplyResult
}

// Treatment is a post-step hook (spec.md §4.10/§6).
type Treatment interface {
	AfterStep(tc *TreatmentContext) error
}

// RuleSplitTreatment replaces every disjunctive-head rule in *tc.Rules
// with one single-disjunct rule per original disjunct, idempotently (a
// rule already split has one disjunct and is left alone). Runs once, on
// step 0 — disjuncts don't change shape across steps.
type RuleSplitTreatment struct{}

func (RuleSplitTreatment) AfterStep(tc *TreatmentContext) error {
	if tc.Step != 0 || tc.Rules == nil {
		return nil
	}
	out := make([]pie.Rule, 0, len(*tc.Rules))
	for _, r := range *tc.Rules {
		disjuncts := pie.HeadDisjuncts(r.Head)
		if len(disjuncts) <= 1 {
			out = append(out, r)
			continue
		}
		for _, d := range disjuncts {
			split, err := pie.NewRule(r.Body, d)
			if err != nil {
				return err
			}
			out = append(out, split)
		}
	}
	*tc.Rules = out
	return nil
}

// AddCreatedFactsTreatment confirms every atom the step's applier
// reported as created is actually present in Facts — a no-op under the
// normal in-memory applier, but load-bearing when Target was a different
// fact.Writable than tc.Facts (e.g. a federated source the applier wrote
// through), so this step's delta still reaches the fact base the next
// step's computers read from.
type AddCreatedFactsTreatment struct{}

func (AddCreatedFactsTreatment) AfterStep(tc *TreatmentContext) error {
	for _, a := range tc.Result.Created {
		if _, err := tc.Facts.AddAtom(a); err != nil {
			return err
		}
	}
	return nil
}

// PredicateFilterTreatment drops every fact (existing or just created)
// whose predicate is not in Allow, after every step.
type PredicateFilterTreatment struct {
	Allow map[pie.Predicate]bool
}

func (p PredicateFilterTreatment) AfterStep(tc *TreatmentContext) error {
	for _, a := range tc.Facts.AllAtoms() {
		if !p.Allow[a.Predicate] {
			if _, err := tc.Facts.RemoveAtom(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// isSkolemWitness reports whether name was minted by one of the skolem
// renamers (rename.go), identifying it as a "movable" position for the
// core-approximation treatments below.
func isSkolemWitness(name string) bool {
	for _, prefix := range []string{"_sk", "bsk_", "fsk_", "fpsk_"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// coreRedundant reports whether a is subsumed by some other atom of the
// same predicate in scope that agrees on every non-witness position —
// an approximation of categorical core redundancy (true core computation
// is NP-hard in general; a prototyping chase only needs to catch the
// common case of two existential witnesses standing for the same tuple).
func coreRedundant(in *pie.Interner, a pie.Atom, scope []pie.Atom) bool {
	for _, b := range scope {
		if b.Predicate != a.Predicate || b.Equal(a) {
			continue
		}
		match := true
		for i, arg := range a.Args {
			if arg.IsConstant() && isSkolemWitness(in.ConstantName(arg)) {
				continue
			}
			if !arg.Equal(b.Args[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ComputeCoreTreatment approximates global core computation: after every
// step, any newly created atom that's redundant against the *entire*
// current fact base is dropped.
type ComputeCoreTreatment struct{}

func (ComputeCoreTreatment) AfterStep(tc *TreatmentContext) error {
	all := tc.Facts.AllAtoms()
	for _, a := range tc.Result.Created {
		if coreRedundant(tc.Interner, a, all) {
			if _, err := tc.Facts.RemoveAtom(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// LocalCoreTreatment is ComputeCoreTreatment's cheaper sibling: it only
// checks newly created atoms for redundancy against each other, not
// against the whole fact base, catching within-step duplication from a
// disjunctive head materialized by multiple triggers in the same step.
type LocalCoreTreatment struct{}

func (LocalCoreTreatment) AfterStep(tc *TreatmentContext) error {
	for _, a := range tc.Result.Created {
		if coreRedundant(tc.Interner, a, tc.Result.Created) {
			if _, err := tc.Facts.RemoveAtom(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// DebugTreatment renders a per-step summary table through pie/diagnostics.
type DebugTreatment struct {
	Writer io.Writer
}

func (d DebugTreatment) AfterStep(tc *TreatmentContext) error {
	created := make([]string, len(tc.Result.Created))
	for i, a := range tc.Result.Created {
		created[i] = a.String()
	}
	fired := make([]string, 0, len(tc.Result.FiredRuleIDs))
	for id := range tc.Result.FiredRuleIDs {
		fired = append(fired, id.String())
	}
	diagnostics.RenderStep(d.Writer, diagnostics.StepSummary{
		Step:       tc.Step,
		Created:    created,
		FiredRules: fired,
		TotalFacts: tc.Facts.Len(),
	})
	return nil
}
