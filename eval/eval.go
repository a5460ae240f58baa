package eval

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/aradi/fypp/env"
)

// EvalString parses and evaluates src as a single expression against e.
func EvalString(src string, e *env.Env) (Value, error) {
	expr, err := ParseExpr(src)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid expression %q", src)
	}
	return Eval(expr, e)
}

// Eval evaluates a parsed expression tree against scope e.
func Eval(x Expr, e *env.Env) (Value, error) {
	switch n := x.(type) {
	case litNone:
		return nil, nil
	case litBool:
		return n.v, nil
	case litInt:
		return n.v, nil
	case litStr:
		return n.v, nil
	case nameExpr:
		v, ok := e.Get(n.name)
		if !ok {
			return nil, fmt.Errorf("name '%s' is not defined", n.name)
		}
		return v, nil
	case unaryExpr:
		return evalUnary(n, e)
	case binExpr:
		return evalBin(n, e)
	case boolExpr:
		a, err := Eval(n.a, e)
		if err != nil {
			return nil, err
		}
		if n.op == "and" {
			if !Truthy(a) {
				return a, nil
			}
			return Eval(n.b, e)
		}
		if Truthy(a) {
			return a, nil
		}
		return Eval(n.b, e)
	case notExpr:
		v, err := Eval(n.x, e)
		if err != nil {
			return nil, err
		}
		return !Truthy(v), nil
	case condExpr:
		c, err := Eval(n.cond, e)
		if err != nil {
			return nil, err
		}
		if Truthy(c) {
			return Eval(n.then, e)
		}
		return Eval(n.els, e)
	case callExpr:
		return evalCall(n, e)
	case indexExpr:
		return evalIndex(n, e)
	case sliceExpr:
		return evalSlice(n, e)
	case attrExpr:
		return evalAttr(n, e)
	case tupleExpr:
		items, err := evalList(n.items, e)
		if err != nil {
			return nil, err
		}
		return &Tuple{Items: items}, nil
	case listExpr:
		items, err := evalList(n.items, e)
		if err != nil {
			return nil, err
		}
		return &List{Items: items}, nil
	case dictExpr:
		d := NewDict()
		for i := range n.keys {
			k, err := Eval(n.keys[i], e)
			if err != nil {
				return nil, err
			}
			v, err := Eval(n.values[i], e)
			if err != nil {
				return nil, err
			}
			d.Set(k, v)
		}
		return d, nil
	case lambdaExpr:
		return &Lambda{Params: n.params, Body: n.body, Env: e}, nil
	}
	return nil, fmt.Errorf("unhandled expression node %T", x)
}

func evalList(items []Expr, e *env.Env) ([]Value, error) {
	out := make([]Value, len(items))
	for i, it := range items {
		v, err := Eval(it, e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalUnary(n unaryExpr, e *env.Env) (Value, error) {
	v, err := Eval(n.x, e)
	if err != nil {
		return nil, err
	}
	i, ok := v.(int64)
	if !ok {
		return nil, fmt.Errorf("unary '%s' requires a numeric operand", n.op)
	}
	if n.op == "-" {
		return -i, nil
	}
	return i, nil
}

func evalBin(n binExpr, e *env.Env) (Value, error) {
	a, err := Eval(n.a, e)
	if err != nil {
		return nil, err
	}
	b, err := Eval(n.b, e)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "==":
		return Equal(a, b), nil
	case "!=":
		return !Equal(a, b), nil
	case "<", ">", "<=", ">=":
		return compare(n.op, a, b)
	case "in":
		return membership(a, b)
	case "+":
		return add(a, b)
	case "-", "*", "/", "//", "%", "**":
		return arith(n.op, a, b)
	}
	return nil, fmt.Errorf("unsupported operator %q", n.op)
}

func compare(op string, a, b Value) (Value, error) {
	ai, aok := a.(int64)
	bi, bok := b.(int64)
	if aok && bok {
		return intCompare(op, ai, bi), nil
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strCompare(op, as, bs), nil
	}
	return nil, fmt.Errorf("'%s' not supported between %T and %T", op, a, b)
}

func intCompare(op string, a, b int64) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func strCompare(op string, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func membership(item, container Value) (Value, error) {
	switch c := container.(type) {
	case string:
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("'in <str>' requires string left operand")
		}
		return indexOfStr(c, s) >= 0, nil
	case *List:
		return containsSeq(c.Items, item), nil
	case *Tuple:
		return containsSeq(c.Items, item), nil
	case *Dict:
		_, ok := c.Get(item)
		return ok, nil
	}
	return nil, fmt.Errorf("argument of type %T is not iterable", container)
}

func containsSeq(items []Value, item Value) bool {
	for _, v := range items {
		if Equal(v, item) {
			return true
		}
	}
	return false
}

func indexOfStr(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	if needle == "" {
		return 0
	}
	return -1
}

func add(a, b Value) (Value, error) {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as + bs, nil
		}
		return nil, fmt.Errorf("can only concatenate str (not %T) to str", b)
	}
	if al, ok := a.(*List); ok {
		if bl, ok := b.(*List); ok {
			return &List{Items: append(append([]Value{}, al.Items...), bl.Items...)}, nil
		}
	}
	if at, ok := a.(*Tuple); ok {
		if bt, ok := b.(*Tuple); ok {
			return &Tuple{Items: append(append([]Value{}, at.Items...), bt.Items...)}, nil
		}
	}
	return arith("+", a, b)
}

func arith(op string, a, b Value) (Value, error) {
	ai, aok := a.(int64)
	bi, bok := b.(int64)
	if !aok || !bok {
		return nil, fmt.Errorf("unsupported operand type(s) for %s: %T and %T", op, a, b)
	}
	switch op {
	case "+":
		return ai + bi, nil
	case "-":
		return ai - bi, nil
	case "*":
		return ai * bi, nil
	case "/", "//":
		if bi == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return ai / bi, nil
	case "%":
		if bi == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return ai % bi, nil
	case "**":
		var r int64 = 1
		for i := int64(0); i < bi; i++ {
			r *= ai
		}
		return r, nil
	}
	return nil, fmt.Errorf("unsupported operator %q", op)
}

func evalCall(n callExpr, e *env.Env) (Value, error) {
	fnVal, err := Eval(n.fn, e)
	if err != nil {
		return nil, err
	}
	callee, ok := fnVal.(Callable)
	if !ok {
		return nil, fmt.Errorf("value of type %T is not callable", fnVal)
	}
	args, err := evalList(n.args, e)
	if err != nil {
		return nil, err
	}
	var kwargs map[string]Value
	if len(n.kwnames) > 0 {
		kwargs = map[string]Value{}
		for i, name := range n.kwnames {
			v, err := Eval(n.kwvalues[i], e)
			if err != nil {
				return nil, err
			}
			kwargs[name] = v
		}
	}
	return callee.Call(args, kwargs)
}

func evalIndex(n indexExpr, e *env.Env) (Value, error) {
	base, err := Eval(n.base, e)
	if err != nil {
		return nil, err
	}
	idx, err := Eval(n.index, e)
	if err != nil {
		return nil, err
	}
	i, ok := idx.(int64)
	if !ok {
		if d, ok := base.(*Dict); ok {
			v, found := d.Get(idx)
			if !found {
				return nil, fmt.Errorf("key %s not found", Repr(idx))
			}
			return v, nil
		}
		return nil, fmt.Errorf("indices must be integers, not %T", idx)
	}
	switch b := base.(type) {
	case string:
		rs := []rune(b)
		j := normalizeIndex(i, len(rs))
		if j < 0 || j >= len(rs) {
			return nil, fmt.Errorf("string index out of range")
		}
		return string(rs[j]), nil
	case *List:
		j := normalizeIndex(i, len(b.Items))
		if j < 0 || j >= len(b.Items) {
			return nil, fmt.Errorf("list index out of range")
		}
		return b.Items[j], nil
	case *Tuple:
		j := normalizeIndex(i, len(b.Items))
		if j < 0 || j >= len(b.Items) {
			return nil, fmt.Errorf("tuple index out of range")
		}
		return b.Items[j], nil
	case *Dict:
		v, found := d2get(b, i)
		if !found {
			return nil, fmt.Errorf("key %d not found", i)
		}
		return v, nil
	}
	return nil, fmt.Errorf("value of type %T is not subscriptable", base)
}

func d2get(d *Dict, i int64) (Value, bool) {
	return d.Get(i)
}

func normalizeIndex(i int64, n int) int {
	j := int(i)
	if j < 0 {
		j += n
	}
	return j
}

func evalSlice(n sliceExpr, e *env.Env) (Value, error) {
	base, err := Eval(n.base, e)
	if err != nil {
		return nil, err
	}
	length, err := seqLen(base)
	if err != nil {
		return nil, err
	}
	lo, hi := 0, length
	if n.lo != nil {
		v, err := Eval(n.lo, e)
		if err != nil {
			return nil, err
		}
		i, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("slice indices must be integers")
		}
		lo = clampIndex(int(i), length)
	}
	if n.hi != nil {
		v, err := Eval(n.hi, e)
		if err != nil {
			return nil, err
		}
		i, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("slice indices must be integers")
		}
		hi = clampIndex(int(i), length)
	}
	if hi < lo {
		hi = lo
	}
	switch b := base.(type) {
	case string:
		rs := []rune(b)
		return string(rs[lo:hi]), nil
	case *List:
		return &List{Items: append([]Value{}, b.Items[lo:hi]...)}, nil
	case *Tuple:
		return &Tuple{Items: append([]Value{}, b.Items[lo:hi]...)}, nil
	}
	return nil, fmt.Errorf("value of type %T is not sliceable", base)
}

func seqLen(v Value) (int, error) {
	switch b := v.(type) {
	case string:
		return len([]rune(b)), nil
	case *List:
		return len(b.Items), nil
	case *Tuple:
		return len(b.Items), nil
	}
	return 0, fmt.Errorf("object of type %T has no len()", v)
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// evalAttr supports the small set of string methods the original exposes
// (e.g. upper/lower/strip/replace, see stringMethod) by treating them as
// bound-callable lookups; anything else is an error, since the expression
// language has no user-defined objects/classes.
func evalAttr(n attrExpr, e *env.Env) (Value, error) {
	base, err := Eval(n.base, e)
	if err != nil {
		return nil, err
	}
	fn, ok := stringMethod(base, n.name)
	if !ok {
		return nil, fmt.Errorf("'%T' object has no attribute '%s'", base, n.name)
	}
	return fn, nil
}
