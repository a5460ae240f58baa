package eval

import (
	"testing"

	"github.com/aradi/fypp/env"
)

func TestAssignSingleTarget(t *testing.T) {
	e := newTestEnv()
	if err := Assign([]string{"x"}, int64(5), e); err != nil {
		t.Fatalf("Assign error: %s", err)
	}
	if v, ok := e.Get("x"); !ok || v != int64(5) {
		t.Errorf("x = %v, %v", v, ok)
	}
}

func TestAssignRejectsReservedName(t *testing.T) {
	e := newTestEnv()
	if err := Assign([]string{"__hidden"}, int64(1), e); err == nil {
		t.Error("expected an error assigning to a reserved name")
	}
}

func TestAssignRejectsPredefinedName(t *testing.T) {
	e := newTestEnv()
	if err := Assign([]string{"_LINE_"}, int64(1), e); err == nil {
		t.Error("expected an error assigning to a predefined renderer variable")
	}
	if err := Assign([]string{"defined"}, int64(1), e); err == nil {
		t.Error("expected an error assigning to a reserved builtin name")
	}
}

func TestAssignTupleUnpack(t *testing.T) {
	e := newTestEnv()
	value := &Tuple{Items: []Value{int64(1), int64(2)}}
	if err := Assign([]string{"a", "b"}, value, e); err != nil {
		t.Fatalf("Assign error: %s", err)
	}
	if v, _ := e.Get("a"); v != int64(1) {
		t.Errorf("a = %v", v)
	}
	if v, _ := e.Get("b"); v != int64(2) {
		t.Errorf("b = %v", v)
	}
}

func TestAssignTupleUnpackLengthMismatch(t *testing.T) {
	e := newTestEnv()
	value := &Tuple{Items: []Value{int64(1)}}
	if err := Assign([]string{"a", "b"}, value, e); err == nil {
		t.Error("expected a length-mismatch error")
	}
}

func TestDeclareGlobalAndAssign(t *testing.T) {
	builtins := env.NewBuiltins()
	global := env.NewGlobal(builtins)
	local := global.Child()

	DeclareGlobal([]string{"g"}, local)
	local.Assign("g", int64(9))
	if v, ok := global.Get("g"); !ok || v != int64(9) {
		t.Errorf("global g = %v, %v", v, ok)
	}
}

func TestDeleteMissingNameErrors(t *testing.T) {
	e := newTestEnv()
	if err := Delete([]string{"nope"}, e); err == nil {
		t.Error("expected an error deleting an undefined name")
	}
	e.Define("x", int64(1))
	if err := Delete([]string{"x"}, e); err != nil {
		t.Fatalf("Delete error: %s", err)
	}
	if e.Has("x") {
		t.Error("x should be gone after Delete")
	}
}
