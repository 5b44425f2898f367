// Package pie implements the core of a prototyping inference engine for
// existential (disjunctive) Datalog rules: interned terms, atoms and
// formulas, substitutions, fact bases, homomorphism search, first-order
// query evaluation, piece unification, UCQ rewriting, the graph of rule
// dependencies, stratification, and the forward-chaining chase.
package pie

import (
	"fmt"
	"sort"
	"strings"
)

// termKind tags the variant a Term holds. Unlike the teacher's two-case
// Term{IsConstant bool, Value int64}, pie's terms distinguish the five
// kinds spec.md §3 names.
type termKind uint8

const (
	kindVariable termKind = iota
	kindConstant
	kindLiteral
	kindLogicalFunction
	kindEvaluableFunction
)

// Datatype enumerates the primitive types a Literal may carry.
type Datatype uint8

const (
	DatatypeInteger Datatype = iota
	DatatypeFloat
	DatatypeString
	DatatypeBoolean
	DatatypeIRI
	DatatypeTuple
	DatatypeSet
	DatatypeDict
)

func (d Datatype) String() string {
	switch d {
	case DatatypeInteger:
		return "integer"
	case DatatypeFloat:
		return "float"
	case DatatypeString:
		return "string"
	case DatatypeBoolean:
		return "boolean"
	case DatatypeIRI:
		return "iri"
	case DatatypeTuple:
		return "tuple"
	case DatatypeSet:
		return "set"
	case DatatypeDict:
		return "dict"
	default:
		return "unknown"
	}
}

// LiteralValue is the payload of a Literal term. Collection-typed literals
// carry their contents and compare structurally, per spec.md §3.
type LiteralValue struct {
	Datatype Datatype
	Scalar   interface{}            // int64, float64, string or bool
	Tuple    []LiteralValue         // DatatypeTuple
	Set      []LiteralValue         // DatatypeSet (order-independent)
	Dict     map[string]LiteralValue // DatatypeDict
}

// canonicalKey returns a deterministic string encoding used purely as an
// interning map key; it is not meant to be parsed back.
func (v LiteralValue) canonicalKey() string {
	var b strings.Builder
	v.writeKey(&b)
	return b.String()
}

func (v LiteralValue) writeKey(b *strings.Builder) {
	fmt.Fprintf(b, "%d:", v.Datatype)
	switch v.Datatype {
	case DatatypeTuple:
		b.WriteByte('(')
		for i, e := range v.Tuple {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeKey(b)
		}
		b.WriteByte(')')
	case DatatypeSet:
		keys := make([]string, len(v.Set))
		for i, e := range v.Set {
			keys[i] = e.canonicalKey()
		}
		sort.Strings(keys)
		b.WriteByte('{')
		b.WriteString(strings.Join(keys, ","))
		b.WriteByte('}')
	case DatatypeDict:
		keys := make([]string, 0, len(v.Dict))
		for k := range v.Dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%s=", k)
			e := v.Dict[k]
			e.writeKey(b)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "%v", v.Scalar)
	}
}

// Equal reports structural equality, per spec.md §3 ("literals of
// collection type compare structurally").
func (v LiteralValue) Equal(o LiteralValue) bool {
	return v.canonicalKey() == o.canonicalKey()
}

func (v LiteralValue) String() string {
	switch v.Datatype {
	case DatatypeString:
		return fmt.Sprintf("%q", v.Scalar)
	case DatatypeTuple, DatatypeSet, DatatypeDict:
		return v.canonicalKey()
	default:
		return fmt.Sprintf("%v", v.Scalar)
	}
}

// Term is a tagged handle into a session's Interner. Equality between two
// Terms interned by the same session is id equality: Term values are
// cheap, comparable, and never need deep comparison except for the
// recursive case of function terms, whose Equal walks arguments.
type Term struct {
	kind termKind
	id   int64
	args []Term // only populated for function terms
}

// Variable is a Term known (by construction) to hold kindVariable. It is a
// distinct name purely for documentation of intent in signatures like
// Existential's Vars; the representation is identical to Term.
type Variable = Term

func (t Term) IsVariable() bool { return t.kind == kindVariable }
func (t Term) IsConstant() bool { return t.kind == kindConstant }
func (t Term) IsLiteral() bool  { return t.kind == kindLiteral }
func (t Term) IsFunction() bool {
	return t.kind == kindLogicalFunction || t.kind == kindEvaluableFunction
}
func (t Term) IsEvaluableFunction() bool { return t.kind == kindEvaluableFunction }

// ID exposes the interned id, mostly useful for deterministic ordering
// (e.g. FOQuery's wildcard projection order, spec.md §3).
func (t Term) ID() int64 { return t.id }

// Args returns a function term's arguments. It is nil for non-function
// terms.
func (t Term) Args() []Term { return t.args }

// IsGround reports whether t contains no variables, recursing into
// function-term arguments.
func (t Term) IsGround() bool {
	if t.kind == kindVariable {
		return false
	}
	for _, a := range t.args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

// FreeVariables returns the free variables of t in first-occurrence
// order, deduplicated.
func (t Term) FreeVariables() []Variable {
	if t.kind == kindVariable {
		return []Variable{t}
	}
	if len(t.args) == 0 {
		return nil
	}
	seen := map[int64]bool{}
	var out []Variable
	for _, a := range t.args {
		for _, v := range a.FreeVariables() {
			if !seen[v.id] {
				seen[v.id] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Equal reports whether two terms are semantically equal. For atomic
// kinds (Variable/Constant/Literal) this is id equality within a session;
// function terms recurse into arguments so terms interned by different
// sessions with matching structure still compare sensibly for tests.
func (t Term) Equal(o Term) bool {
	if t.kind != o.kind || t.id != o.id {
		return false
	}
	if len(t.args) != len(o.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// key is a comparable representation suitable for use as a map key
// (term partitions, substitutions).
type termKey struct {
	kind termKind
	id   int64
}

func (t Term) key() termKey { return termKey{t.kind, t.id} }

func (t Term) String() string {
	switch t.kind {
	case kindVariable:
		return fmt.Sprintf("V%d", t.id)
	case kindConstant:
		return fmt.Sprintf("C%d", t.id)
	case kindLiteral:
		return fmt.Sprintf("L%d", t.id)
	default:
		parts := make([]string, len(t.args))
		for i, a := range t.args {
			parts[i] = a.String()
		}
		kindName := "f"
		if t.kind == kindEvaluableFunction {
			kindName = "ef"
		}
		return fmt.Sprintf("%s%d(%s)", kindName, t.id, strings.Join(parts, ", "))
	}
}
