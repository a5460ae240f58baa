package eval

import (
	"testing"

	"github.com/aradi/fypp/env"
)

func newTestEnv() *env.Env {
	builtins := env.NewBuiltins()
	RegisterBuiltins(builtins)
	return env.NewGlobal(builtins)
}

func evalOK(t *testing.T, src string, e *env.Env) Value {
	t.Helper()
	v, err := EvalString(src, e)
	if err != nil {
		t.Fatalf("EvalString(%q) error: %s", src, err)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	e := newTestEnv()
	cases := map[string]int64{
		"1 + 2 * 3":  7,
		"(1 + 2) * 3": 9,
		"2 ** 10":    1024,
		"7 // 2":     3,
		"7 % 2":      1,
		"10 - 3 - 2": 5,
		"-5 + 3":     -2,
	}
	for src, want := range cases {
		v := evalOK(t, src, e)
		if v != want {
			t.Errorf("%q = %v, want %d", src, v, want)
		}
	}
}

func TestEvalStringConcat(t *testing.T) {
	e := newTestEnv()
	v := evalOK(t, `"a" + "b" + "c"`, e)
	if v != "abc" {
		t.Errorf("got %v, want abc", v)
	}
}

func TestEvalComparisonsAndBooleans(t *testing.T) {
	e := newTestEnv()
	if v := evalOK(t, "1 < 2", e); v != true {
		t.Errorf("1 < 2 = %v", v)
	}
	if v := evalOK(t, "not (1 == 1)", e); v != false {
		t.Errorf("not (1 == 1) = %v", v)
	}
	if v := evalOK(t, "1 if True else 2", e); v != int64(1) {
		t.Errorf("ternary true branch = %v", v)
	}
	if v := evalOK(t, "1 if False else 2", e); v != int64(2) {
		t.Errorf("ternary false branch = %v", v)
	}
}

func TestEvalNameLookup(t *testing.T) {
	e := newTestEnv()
	e.Define("x", int64(41))
	if v := evalOK(t, "x + 1", e); v != int64(42) {
		t.Errorf("x + 1 = %v, want 42", v)
	}
	if _, err := EvalString("undefined_name", e); err == nil {
		t.Error("expected an error for an undefined name")
	}
}

func TestEvalListTupleDictLiterals(t *testing.T) {
	e := newTestEnv()
	lst := evalOK(t, "[1, 2, 3]", e).(*List)
	if len(lst.Items) != 3 || lst.Items[1] != int64(2) {
		t.Errorf("list literal = %+v", lst)
	}
	tup := evalOK(t, "(1, 2)", e).(*Tuple)
	if len(tup.Items) != 2 {
		t.Errorf("tuple literal = %+v", tup)
	}
	d := evalOK(t, `{"a": 1, "b": 2}`, e).(*Dict)
	if v, ok := d.Get("a"); !ok || v != int64(1) {
		t.Errorf("dict literal missing key a: %v, %v", v, ok)
	}
}

func TestEvalIndexingAndSlicing(t *testing.T) {
	e := newTestEnv()
	e.Define("xs", &List{Items: []Value{int64(10), int64(20), int64(30)}})
	if v := evalOK(t, "xs[0]", e); v != int64(10) {
		t.Errorf("xs[0] = %v", v)
	}
	if v := evalOK(t, "xs[-1]", e); v != int64(30) {
		t.Errorf("xs[-1] = %v", v)
	}
	sliced := evalOK(t, "xs[1:]", e).(*List)
	if len(sliced.Items) != 2 || sliced.Items[0] != int64(20) {
		t.Errorf("xs[1:] = %+v", sliced)
	}
	if v := evalOK(t, `"hello"[1]`, e); v != "e" {
		t.Errorf(`"hello"[1] = %v`, v)
	}
}

func TestEvalMembership(t *testing.T) {
	e := newTestEnv()
	e.Define("xs", &List{Items: []Value{int64(1), int64(2)}})
	if v := evalOK(t, "2 in xs", e); v != true {
		t.Errorf("2 in xs = %v", v)
	}
	if v := evalOK(t, "3 not in xs", e); v != true {
		t.Errorf("3 not in xs = %v", v)
	}
	if v := evalOK(t, `"ell" in "hello"`, e); v != true {
		t.Errorf(`"ell" in "hello" = %v`, v)
	}
}

func TestEvalLambdaAndCall(t *testing.T) {
	e := newTestEnv()
	v, err := EvalString("(lambda a, b: a + b)(3, 4)", e)
	if err != nil {
		t.Fatalf("lambda call error: %s", err)
	}
	if v != int64(7) {
		t.Errorf("lambda call = %v, want 7", v)
	}
}

func TestEvalAttributeStringMethods(t *testing.T) {
	e := newTestEnv()
	if v := evalOK(t, `"  hi  ".strip()`, e); v != "hi" {
		t.Errorf("strip() = %v", v)
	}
	if v := evalOK(t, `"HI".lower()`, e); v != "hi" {
		t.Errorf("lower() = %v", v)
	}
	if v := evalOK(t, `"a,b,c".split(",")`, e); ToString(v) != "['a', 'b', 'c']" {
		t.Errorf("split() repr = %v", ToString(v))
	}
}

func TestEvalBuiltinsLenRangeStr(t *testing.T) {
	e := newTestEnv()
	if v := evalOK(t, `len([1, 2, 3])`, e); v != int64(3) {
		t.Errorf("len() = %v", v)
	}
	rng := evalOK(t, "range(3)", e).(*List)
	if len(rng.Items) != 3 || rng.Items[2] != int64(2) {
		t.Errorf("range(3) = %+v", rng)
	}
	if v := evalOK(t, "str(42)", e); v != "42" {
		t.Errorf("str(42) = %v", v)
	}
	if v := evalOK(t, `int("42")`, e); v != int64(42) {
		t.Errorf(`int("42") = %v`, v)
	}
}

func TestEvalDefinedSetvarGetvar(t *testing.T) {
	e := newTestEnv()
	if v := evalOK(t, `defined("NOPE")`, e); v != false {
		t.Errorf(`defined("NOPE") = %v`, v)
	}
	if _, err := EvalString(`setvar("X", 7)`, e); err != nil {
		t.Fatalf("setvar error: %s", err)
	}
	if v := evalOK(t, `getvar("X", 0)`, e); v != int64(7) {
		t.Errorf(`getvar("X", 0) = %v`, v)
	}
	if v := evalOK(t, `getvar("Y", -1)`, e); v != int64(-1) {
		t.Errorf(`getvar("Y", -1) = %v`, v)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	e := newTestEnv()
	if _, err := EvalString("1 / 0", e); err == nil {
		t.Error("expected a division-by-zero error")
	}
}

func TestEvalZipAndEnumerate(t *testing.T) {
	e := newTestEnv()
	z := evalOK(t, "zip([1, 2], [3, 4])", e).(*List)
	if len(z.Items) != 2 {
		t.Fatalf("zip() = %+v", z)
	}
	pair := z.Items[0].(*Tuple)
	if pair.Items[0] != int64(1) || pair.Items[1] != int64(3) {
		t.Errorf("zip()[0] = %+v", pair)
	}
	en := evalOK(t, `enumerate(["a", "b"])`, e).(*List)
	first := en.Items[0].(*Tuple)
	if first.Items[0] != int64(0) || first.Items[1] != "a" {
		t.Errorf("enumerate()[0] = %+v", first)
	}
}
