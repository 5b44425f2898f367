package chase

import (
	"context"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/errs"
	"github.com/datalogplus/pie/eval"
	"github.com/datalogplus/pie/fact"
	"github.com/datalogplus/pie/grd"
	"github.com/datalogplus/pie/homomorphism"
)

// Config wires together one chase run's pluggable strategies and halting
// limits, per spec.md §4.10/§6's chase strategy configuration table.
type Config struct {
	Scheduler Scheduler
	Computer  TriggerComputer
	Checker   TriggerChecker
	Renamer   Renamer
	Applier   Applier

	// ExtraSources augments the fact base being saturated with other
	// readable data (computed predicates, comparisons, a federated
	// store), merged via sourcesOver.
	ExtraSources homomorphism.SourceSet

	// Graph backs GRDScheduler; nil is fine for the other schedulers.
	Graph *grd.Graph

	Lineage    *LineageTracker
	Treatments []Treatment

	MaxSteps int
	MaxAtoms int
	Timeout  time.Duration
	// Interrupt is polled once per step; a true result halts the chase
	// cooperatively (spec.md §5's "cooperative cancellation").
	Interrupt func() bool

	// Diagnostics receives every warning eval.Execute raises while
	// evaluating rule bodies (spec.md §7).
	Diagnostics func(errs.Warning)
}

func (cfg *Config) fill() {
	if cfg.Scheduler == nil {
		cfg.Scheduler = NaiveScheduler{}
	}
	if cfg.Computer == nil {
		cfg.Computer = NaiveComputer{}
	}
	if cfg.Checker == nil {
		cfg.Checker = ObliviousChecker{}
	}
	if cfg.Renamer == nil {
		cfg.Renamer = FreshRenamer{}
	}
	if cfg.Applier == nil {
		cfg.Applier = BreadthFirstApplier{}
	}
}

// StepResult reports one step's outcome.
type StepResult struct {
	Step    int
	Created []pie.Atom
	Halt    errs.HaltReason
}

// RunResult is the final outcome of a (possibly multi-step) chase run.
type RunResult struct {
	Steps []StepResult
	Halt  errs.HaltReason
}

// Run saturates facts under rules until a halting condition fires,
// implementing spec.md §4.10's seven-step lifecycle: schedule, compute
// triggers, check, rename, apply, treatments, halt.
func Run(ctx context.Context, in *pie.Interner, rules []pie.Rule, facts *fact.FactBase, cfg Config) (RunResult, error) {
	cfg.fill()
	deadline := time.Time{}
	if cfg.Timeout > 0 {
		deadline = timeNow().Add(cfg.Timeout)
	}

	workingRules := append([]pie.Rule(nil), rules...)
	var result RunResult
	// The seed facts stand in as the first step's delta: the delta-aware
	// computers (restricted, semi-naive, two-steps) would otherwise see an
	// empty delta on step 0 and never fire against the initial database.
	delta := facts.AllAtoms()
	touchedPredicates := map[pie.Predicate]bool{}
	touchedRules := map[uuid.UUID]bool{}
	seen := NewSeenSet()

steps:
	for step := 0; ; step++ {
		if len(workingRules) == 0 {
			result.Halt = errs.HaltRulesEmpty
			break
		}
		if cfg.MaxSteps > 0 && step >= cfg.MaxSteps {
			result.Halt = errs.HaltStepLimit
			break
		}
		if cfg.MaxAtoms > 0 && facts.Len() >= cfg.MaxAtoms {
			result.Halt = errs.HaltAtomLimit
			break
		}
		if !deadline.IsZero() && timeNow().After(deadline) {
			result.Halt = errs.HaltTimeout
			break
		}
		if cfg.Interrupt != nil && cfg.Interrupt() {
			result.Halt = errs.HaltInterrupted
			break
		}
		select {
		case <-ctx.Done():
			result.Halt = errs.HaltInterrupted
			break steps
		default:
		}

		sources := sourcesOver(workingRules, facts, cfg.ExtraSources)
		env := &eval.Env{Sources: sources, Warnings: cfg.Diagnostics}

		candidates := cfg.Scheduler.Schedule(ScheduleContext{
			Rules:             workingRules,
			Graph:             cfg.Graph,
			Step:              step,
			TouchedPredicates: touchedPredicates,
			TouchedRules:      touchedRules,
		})

		var triggers []Trigger
		for _, r := range candidates {
			cc := ComputeContext{Ctx: ctx, Interner: in, Env: env, Rule: r, Delta: delta, Facts: facts}
			subs, err := cfg.Computer.Compute(cc)
			if err != nil {
				return result, err
			}
			for _, s := range subs {
				triggers = append(triggers, Trigger{Rule: r, Sub: s})
			}
		}

		checkCtx := CheckContext{Ctx: ctx, Interner: in, Sources: sources, Renamer: cfg.Renamer, Seen: seen}
		var firings []FiringTrigger
		for _, t := range triggers {
			needs, err := cfg.Checker.NeedsFiring(checkCtx, t)
			if err != nil {
				return result, err
			}
			if !needs {
				continue
			}
			renamed := cfg.Renamer.Rename(in, t.Rule, t.Sub)
			firings = append(firings, FiringTrigger{Trigger: t, Renamed: renamed})
		}

		ac := ApplyContext{Ctx: ctx, Target: facts, Lineage: cfg.Lineage}
		applyResult, err := cfg.Applier.Apply(ac, firings)
		if err != nil {
			return result, err
		}

		for _, tr := range cfg.Treatments {
			tctx := &TreatmentContext{Ctx: ctx, Interner: in, Rules: &workingRules, Facts: facts, Step: step, Result: applyResult}
			if err := tr.AfterStep(tctx); err != nil {
				return result, err
			}
		}

		result.Steps = append(result.Steps, StepResult{Step: step, Created: applyResult.Created})

		if len(applyResult.Created) == 0 {
			result.Halt = errs.HaltNoNewFacts
			break
		}

		delta = applyResult.Created
		touchedPredicates = map[pie.Predicate]bool{}
		for _, a := range delta {
			touchedPredicates[a.Predicate] = true
		}
		touchedRules = applyResult.FiredRuleIDs
	}
	return result, nil
}

// StratifiedRun builds strata via grd.Stratify and runs a sub-chase per
// stratum to fixpoint/halt, feeding each stratum's saturated fact base
// forward into the next (spec.md §4.10's "stratified chase").
func StratifiedRun(ctx context.Context, in *pie.Interner, graph *grd.Graph, strategy grd.Strategy, facts *fact.FactBase, cfg Config) (RunResult, error) {
	strata, err := grd.Stratify(graph, strategy)
	if err != nil {
		return RunResult{}, err
	}
	var all RunResult
	for _, stratum := range strata {
		stratumCfg := cfg
		stratumCfg.Graph = graph
		res, err := Run(ctx, in, stratum, facts, stratumCfg)
		if err != nil {
			return all, err
		}
		all.Steps = append(all.Steps, res.Steps...)
		all.Halt = res.Halt
		if res.Halt != errs.HaltNoNewFacts && res.Halt != errs.HaltRulesEmpty {
			break
		}
	}
	return all, nil
}

var timeNow = time.Now
