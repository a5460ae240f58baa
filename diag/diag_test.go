package diag

import (
	"strings"
	"testing"

	"github.com/aradi/fypp/source"
)

func TestNewNoLocator(t *testing.T) {
	err := New(KindConfig, "bad value %d", 3)
	if err.Error() != "bad value 3" {
		t.Errorf("Error() = %q, want %q", err.Error(), "bad value 3")
	}
	if err.Kind != KindConfig {
		t.Errorf("Kind = %v, want %v", err.Kind, KindConfig)
	}
}

func TestAtWithLocator(t *testing.T) {
	src := source.New("f.f90", []byte("one\ntwo\n"))
	span := source.NewSpan(source.NewPos(src, 4), source.NewPos(src, 7))
	err := At(KindSyntax, span, "unexpected %q", "two")
	want := `unexpected "two" in f.f90 at line 2 col 1`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAtNilLocator(t *testing.T) {
	err := At(KindEval, nil, "boom")
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "boom")
	}
}

func TestWrapPreservesInnerKind(t *testing.T) {
	src := source.New("inc.f90", []byte("x\n"))
	inner := At(KindEval, source.NewPos(src, 0), "bad expr")
	outer := Wrap(inner, source.NewPos(src, 0), "inside included file")
	if outer.Kind != KindEval {
		t.Errorf("Wrap() Kind = %v, want %v", outer.Kind, KindEval)
	}
	if outer.Cause() == nil {
		t.Error("Wrap() did not retain a cause")
	}
}

func TestWrapDefaultsToSemanticForPlainError(t *testing.T) {
	outer := Wrap(errTest("plain failure"), nil, "while rendering macro")
	if outer.Kind != KindSemantic {
		t.Errorf("Kind = %v, want %v", outer.Kind, KindSemantic)
	}
}

func TestChainRendersInnermostFirst(t *testing.T) {
	inner := New(KindEval, "division by zero")
	outer := Wrap(inner, nil, "inside macro foo")
	chain := Chain(outer)
	lines := strings.Split(chain, "\n")
	if len(lines) != 2 {
		t.Fatalf("Chain() produced %d lines, want 2: %q", len(lines), chain)
	}
	if lines[0] != "division by zero" || lines[1] != "inside macro foo" {
		t.Errorf("Chain() = %q", chain)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
