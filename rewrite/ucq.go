package rewrite

import (
	"context"

	"github.com/datalogplus/pie"
	"github.com/datalogplus/pie/unify"
)

// Options configures UCQRewrite.
type Options struct {
	// StepLimit bounds the number of breadth-first rounds; 0 means
	// unlimited (run until the frontier is exhausted), per spec.md §4.7.
	StepLimit int
}

// UCQRewrite implements spec.md §4.7's breadth-first UCQ rewriting:
// expand seed using rules until no new, non-subsumed CQ is produced (or
// the step limit is hit), then drop any CQ subsumed by another to
// restore minimality.
func UCQRewrite(ctx context.Context, in *pie.Interner, rules []pie.Rule, seed CQ, opts Options) ([]CQ, error) {
	output := []CQ{seed}
	frontier := []CQ{seed}
	for step := 0; len(frontier) > 0; step++ {
		if opts.StepLimit > 0 && step >= opts.StepLimit {
			break
		}
		var next []CQ
		for _, q := range frontier {
			select {
			case <-ctx.Done():
				return Minimize(in, output), ctx.Err()
			default:
			}
			for _, r := range rules {
				candidates, err := rewriteAgainstRule(in, r, q)
				if err != nil {
					return nil, err
				}
				for _, cand := range candidates {
					if SubsumedByAny(in, cand, output) {
						continue
					}
					output = append(output, cand)
					next = append(next, cand)
				}
			}
		}
		frontier = next
	}
	return Minimize(in, output), nil
}

func rewriteAgainstRule(in *pie.Interner, r pie.Rule, q CQ) ([]CQ, error) {
	fresh := pie.RenameRule(in, r)
	disjuncts := pie.HeadDisjuncts(fresh.Head)

	var out []CQ
	for _, d := range disjuncts {
		unifiers, err := unify.PieceUnifiers(d, q.Atoms)
		if err != nil {
			return nil, err
		}
		for _, u := range unifiers {
			cand, err := RewriteWithUnifier(fresh, q, u)
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	}

	if len(disjuncts) > 1 {
		disjunctiveUnifiers, err := unify.DisjunctivePieceUnifiers(fresh.Head, q.Atoms)
		if err != nil {
			return nil, err
		}
		for _, du := range disjunctiveUnifiers {
			cand, err := RewriteWithDisjunctiveUnifier(fresh, q, du)
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	}
	return out, nil
}
