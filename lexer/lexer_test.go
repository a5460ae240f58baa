package lexer

import (
	"testing"

	"github.com/aradi/fypp/source"
	"github.com/aradi/fypp/token"
)

func tokenize(t *testing.T, text string) []token.Token {
	t.Helper()
	src := source.New("t.f90", []byte(text))
	l := New(DefaultSigils())
	c := NewCursor(src)
	var toks []token.Token
	for {
		tok, err := l.Next(c)
		if err != nil {
			t.Fatalf("Next() error: %s", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestLexPlainText(t *testing.T) {
	toks := tokenize(t, "hello world")
	if len(toks) != 2 || toks[0].Kind != token.Text || toks[0].Tail != "hello world" {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestLexLineDirective(t *testing.T) {
	toks := tokenize(t, "#:if x > 0\nbody\n#:endif\n")
	if toks[0].Kind != token.LineDir || toks[0].Keyword != "if" || toks[0].Tail != "x > 0" {
		t.Fatalf("unexpected first token: %+v", toks[0])
	}
}

func TestLexLineDirectiveStripsSurroundingWhitespaceLine(t *testing.T) {
	toks := tokenize(t, "  #:if x\n  value\n")
	if toks[0].Kind != token.LineDir {
		t.Fatalf("expected a line directive, got %+v", toks[0])
	}
	if toks[0].Span.Start.Pos() != 0 {
		t.Errorf("directive should consume leading indent, got start=%d", toks[0].Span.Start.Pos())
	}
}

func TestLexInlineDirective(t *testing.T) {
	toks := tokenize(t, "a#{if x}#b")
	if toks[0].Kind != token.Text || toks[0].Tail != "a" {
		t.Fatalf("unexpected leading text token: %+v", toks[0])
	}
	if toks[1].Kind != token.InlineDir || toks[1].Keyword != "if" || !toks[1].Inline {
		t.Fatalf("unexpected inline directive token: %+v", toks[1])
	}
}

func TestLexEvalSubstitution(t *testing.T) {
	toks := tokenize(t, "x = ${1 + 1}$")
	found := false
	for _, tok := range toks {
		if tok.Kind == token.ExprSub && tok.Tail == "1 + 1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("did not find ExprSub token in %+v", toks)
	}
}

func TestLexLineEval(t *testing.T) {
	toks := tokenize(t, "$: 1 + 1\n")
	if toks[0].Kind != token.LineEval || toks[0].Tail != "1 + 1" {
		t.Fatalf("unexpected token: %+v", toks[0])
	}
}

func TestLexDirectCall(t *testing.T) {
	toks := tokenize(t, "@:mymacro(1, 2)\n")
	if toks[0].Kind != token.DirectCall || toks[0].Tail != "mymacro(1, 2)" {
		t.Fatalf("unexpected token: %+v", toks[0])
	}
}

func TestLexDirectCallInline(t *testing.T) {
	toks := tokenize(t, "x@{mymacro(1)}@y")
	var call *token.Token
	for i := range toks {
		if toks[i].Kind == token.DirectCall {
			call = &toks[i]
		}
	}
	if call == nil || call.Tail != "mymacro(1)" || !call.Inline {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestLexComment(t *testing.T) {
	toks := tokenize(t, "#! a standalone comment\nafter\n")
	if toks[0].Kind != token.Comment {
		t.Fatalf("expected a comment token, got %+v", toks[0])
	}
	if toks[1].Kind != token.Text || toks[1].Tail != "after\n" {
		t.Fatalf("unexpected token after comment: %+v", toks[1])
	}
}

func TestLexEscapes(t *testing.T) {
	toks := tokenize(t, `#\{not a directive`)
	if toks[0].Kind != token.Text || toks[0].Tail != "#{not a directive" {
		t.Fatalf("escape not unescaped: %+v", toks[0])
	}
}

func TestLexLineContinuation(t *testing.T) {
	toks := tokenize(t, "#:if x &\n    &> 0\nbody\n#:endif\n")
	if toks[0].Kind != token.LineDir || toks[0].Tail != "x > 0" {
		t.Fatalf("continuation not spliced: %+v", toks[0])
	}
}

func TestLexUnclosedInlineDirectiveErrors(t *testing.T) {
	src := source.New("t.f90", []byte("a#{if x"))
	l := New(DefaultSigils())
	c := NewCursor(src)
	if _, err := l.Next(c); err != nil {
		t.Fatalf("first Next() should yield leading text, got error: %s", err)
	}
	if _, err := l.Next(c); err == nil {
		t.Fatal("expected an unclosed-directive error")
	}
}
