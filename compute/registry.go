package compute

import "github.com/datalogplus/pie"

// Registry binds a namespace prefix to a family of computed functions, per
// the `@computed prefix: uri` directive in spec.md §9.1. One Registry per
// prefix; a parse result may hold several.
type Registry struct {
	Prefix    string
	functions map[string]Function
}

// NewRegistry builds an empty registry for prefix and registers it with in
// so EvaluableFunctionTerm recognizes names under it (spec.md §4.4 step 2).
func NewRegistry(in *pie.Interner, prefix string) *Registry {
	in.RegisterComputedPrefix(prefix)
	return &Registry{Prefix: prefix, functions: map[string]Function{}}
}

// Register adds a function to the registry.
func (r *Registry) Register(f Function) { r.functions[f.Name()] = f }

// Lookup finds a function by its unprefixed name.
func (r *Registry) Lookup(name string) (Function, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// Functions returns every registered function.
func (r *Registry) Functions() []Function {
	out := make([]Function, 0, len(r.functions))
	for _, f := range r.functions {
		out = append(out, f)
	}
	return out
}

// NewBuiltinRegistry registers the built-in library: arithmetic (sum,
// minus, product, divide, average, min, max, power, median), string ops
// (concat, upper, lower, length, contains), dict_get and the conversions
// to_string, to_int and to_float. It has no comparison functions and no
// collection ops.
func NewBuiltinRegistry(in *pie.Interner, prefix string) *Registry {
	r := NewRegistry(in, prefix)
	for _, f := range []Function{
		Sum, Minus, Product, Divide, Average,
		Min, Max, Power, Median,
		Concat, Upper, Lower, Length, Contains, DictGet,
		ToString, ToInt, ToFloat,
	} {
		r.Register(f)
	}
	return r
}
