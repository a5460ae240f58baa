// Package eval implements the embedded expression language hosted by the
// renderer (spec.md §4.3): literals, identifier lookup, function calls,
// indexing, arithmetic/comparison operators, and lambda expressions,
// evaluated against an env.Env scope chain. This is the "host language" the
// core hosts but does not fully specify (spec.md §1 Non-goals) — a compact,
// dependency-free expression interpreter grounded in the same recursive-
// descent style the teacher's own langdef/parser.go grammar parser uses for
// its EBNF-like grammar language, adapted to expression syntax instead of
// grammar syntax.
package eval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aradi/fypp/env"
)

// Value is any value the expression language can produce: nil (None), bool,
// int64, string, *Tuple, *List, *Dict, *Lambda, or a Callable.
type Value = any

// Tuple is an immutable ordered sequence.
type Tuple struct {
	Items []Value
}

// List is a mutable ordered sequence.
type List struct {
	Items []Value
}

// Dict is an insertion-ordered string/int-keyed mapping.
type Dict struct {
	keys []Value
	vals map[string]Value
}

// NewDict creates an empty Dict.
func NewDict() *Dict {
	return &Dict{vals: map[string]Value{}}
}

func dictKey(k Value) string {
	return fmt.Sprintf("%T:%v", k, k)
}

// Set inserts or updates key, preserving first-insertion order.
func (d *Dict) Set(key, value Value) {
	k := dictKey(key)
	if _, ok := d.vals[k]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[k] = value
}

// Get looks up key.
func (d *Dict) Get(key Value) (Value, bool) {
	v, ok := d.vals[dictKey(key)]
	return v, ok
}

// Keys returns keys in insertion order.
func (d *Dict) Keys() []Value {
	return d.keys
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Callable is implemented by anything the expression language can invoke
// with "(args...)" call syntax: host-provided Go functions and macros
// (render.Macro implements this).
type Callable interface {
	Call(args []Value, kwargs map[string]Value) (Value, error)
}

// Func adapts a plain Go function to Callable.
type Func struct {
	Name string
	Fn   func(args []Value, kwargs map[string]Value) (Value, error)
}

func (f *Func) Call(args []Value, kwargs map[string]Value) (Value, error) {
	return f.Fn(args, kwargs)
}

// Lambda is a user-defined "lambda params: expr" closure, capturing a
// reference to its defining environment per the teacher's closure-by-
// reference design note (env/env.go) rather than a snapshot of it.
type Lambda struct {
	Params []string
	Body   Expr
	Env    *env.Env
}

func (l *Lambda) Call(args []Value, kwargs map[string]Value) (Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("lambda does not accept keyword arguments")
	}
	if len(args) != len(l.Params) {
		return nil, fmt.Errorf("lambda expects %d arguments, got %d", len(l.Params), len(args))
	}
	local := l.Env.Child()
	for i, p := range l.Params {
		local.Define(p, args[i])
	}
	return Eval(l.Body, local)
}

// Truthy implements the language's truthiness rules.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case string:
		return x != ""
	case *Tuple:
		return len(x.Items) > 0
	case *List:
		return len(x.Items) > 0
	case *Dict:
		return x.Len() > 0
	default:
		return true
	}
}

// ToString renders v the way it would be substituted into output text.
func ToString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case *Tuple:
		return seqString(x.Items, "(", ")", len(x.Items) == 1)
	case *List:
		return seqString(x.Items, "[", "]", false)
	case *Dict:
		return dictString(x)
	case *Lambda:
		return "<lambda>"
	case Callable:
		return "<callable>"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Repr renders v as a literal the way Python's repr() would for use inside
// container ToString output (strings get quoted).
func Repr(v Value) string {
	if s, ok := v.(string); ok {
		return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
	}
	return ToString(v)
}

func seqString(items []Value, open, close string, trailingComma bool) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = Repr(it)
	}
	s := open + strings.Join(parts, ", ")
	if trailingComma {
		s += ","
	}
	return s + close
}

func dictString(d *Dict) string {
	keys := d.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := d.Get(k)
		parts[i] = Repr(k) + ": " + Repr(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Equal reports value equality for comparisons and dict lookups.
func Equal(a, b Value) bool {
	return dictKey(a) == dictKey(b) || fmt.Sprint(a) == fmt.Sprint(b) && sameKind(a, b)
}

func sameKind(a, b Value) bool {
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

// SortKeys is a helper for builtins that need stable key iteration (e.g.
// when a Dict's keys should be presented sorted rather than insertion
// order).
func SortKeys(keys []Value) []Value {
	out := append([]Value(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return ToString(out[i]) < ToString(out[j]) })
	return out
}
