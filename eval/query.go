package eval

import (
	"context"

	"github.com/datalogplus/pie"
)

// Answer is one projected result tuple of a query, restricted to its
// answer variables and deduplicated by AnswerSet.
type Answer = pie.Substitution

// AnswerSet evaluates query against env, per spec.md §4.4: prepares the
// body, executes it from the empty substitution, and projects each result
// onto query's answer variables. Duplicates are removed here since
// Execute's disjunction path may repeat results (spec.md §4.4's "set
// semantics deduplication is the caller's responsibility").
func AnswerSet(ctx context.Context, in *pie.Interner, env *Env, query pie.FOQuery) ([]Answer, error) {
	prepared := Prepare(in, query.Body)
	it, err := Execute(ctx, env, prepared, pie.EmptySubstitution())
	if err != nil {
		return nil, err
	}
	defer it.Close()

	seen := map[string]bool{}
	var out []Answer
	for {
		sub, ok := it.Next()
		if !ok {
			break
		}
		projected := pie.RestrictTo(sub, query.AnswerVars)
		key := answerKey(query.AnswerVars, projected)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, projected)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func answerKey(vars []pie.Variable, sub pie.Substitution) string {
	var b []byte
	for _, v := range vars {
		t, _ := sub.Lookup(v)
		b = append(b, []byte(t.String())...)
		b = append(b, '|')
	}
	return string(b)
}
