package eval

import "testing"

func TestParseExprRejectsTrailingTokens(t *testing.T) {
	if _, err := ParseExpr("1 2"); err == nil {
		t.Error("expected an error for trailing tokens")
	}
}

func TestParseExprRejectsUnterminatedString(t *testing.T) {
	if _, err := ParseExpr(`"unterminated`); err == nil {
		t.Error("expected an error for an unterminated string literal")
	}
}

func TestParseExprStringEscapes(t *testing.T) {
	e := newTestEnv()
	v := evalOK(t, `"a\nb\tc"`, e)
	if v != "a\nb\tc" {
		t.Errorf("escaped string = %q", v)
	}
}

func TestParseExprKeywordArguments(t *testing.T) {
	e := newTestEnv()
	e.Define("f", &Func{Name: "f", Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
		return kwargs["x"], nil
	}})
	v := evalOK(t, "f(x=42)", e)
	if v != int64(42) {
		t.Errorf("keyword call result = %v, want 42", v)
	}
}

func TestParseExprAttributeChain(t *testing.T) {
	e := newTestEnv()
	v := evalOK(t, `"Hello World".lower().split(" ")`, e)
	if ToString(v) != "['hello', 'world']" {
		t.Errorf("chained attribute result = %v", ToString(v))
	}
}

func TestParseExprOperatorPrecedence(t *testing.T) {
	e := newTestEnv()
	if v := evalOK(t, "2 + 3 * 4 == 14", e); v != true {
		t.Errorf("precedence check = %v", v)
	}
	if v := evalOK(t, "2 ** 3 ** 2", e); v != int64(512) {
		t.Errorf("right-assoc power = %v, want 512", v)
	}
}

func TestParseExprNegativeNumberLiteralViaUnary(t *testing.T) {
	e := newTestEnv()
	if v := evalOK(t, "-1 + 5", e); v != int64(4) {
		t.Errorf("-1 + 5 = %v", v)
	}
}
