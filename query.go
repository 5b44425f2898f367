package pie

import "sort"

// FOQuery is {answer_vars, body}, per spec.md §3. answer_vars is ordered
// as written; a wildcard projection uses a deterministic order by
// variable identifier (AnswerVarsWildcard below).
type FOQuery struct {
	AnswerVars []Variable
	Body       Formula
}

// NewFOQuery validates that every answer variable is free in body, per
// spec.md §3's invariant.
func NewFOQuery(answerVars []Variable, body Formula) (FOQuery, error) {
	free := map[int64]bool{}
	for _, v := range body.FreeVars() {
		free[v.id] = true
	}
	for _, v := range answerVars {
		if !free[v.id] {
			return FOQuery{}, errAnswerVarNotFree
		}
	}
	return FOQuery{AnswerVars: append([]Variable(nil), answerVars...), Body: body}, nil
}

// AnswerVarsWildcard returns body's free variables ordered by interned id,
// for queries that project "all free variables" rather than an explicit
// answer list.
func AnswerVarsWildcard(body Formula) []Variable {
	vars := append([]Variable(nil), body.FreeVars()...)
	sort.Slice(vars, func(i, j int) bool { return vars[i].id < vars[j].id })
	return vars
}
