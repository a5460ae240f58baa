// Package env implements the scoped environment chain described in
// spec.md §3/§4.3: built-ins (read-only) → file/global → per-macro-invocation
// local → per-block local, with lookup walking toward the root and
// assignment honoring "global" declarations. Grounded in the teacher's
// "closure captures a reference, not a snapshot" design note: scopes are
// shared, reference-counted via Go's GC, and chained through a parent
// pointer rather than copied.
package env

import (
	"strings"
)

// reservedPrefix marks identifiers reserved for internal use; user code may
// never bind a name starting with it (spec.md §3 invariant).
const reservedPrefix = "__"

// predefinedNames are the renderer-managed location/time variables spec.md
// §4.3 names as dynamically bound but not rebindable by user code.
var predefinedNames = map[string]bool{
	"_LINE_": true, "_FILE_": true, "_THIS_LINE_": true, "_THIS_FILE_": true,
	"_DATE_": true, "_TIME_": true, "_SYSTEM_": true, "_MACHINE_": true,
}

// reservedBuiltinNames are the builtin helper functions spec.md §4.3 names
// as reserved (the name-inspection/set/get/delete predicates); user code
// may not rebind them.
var reservedBuiltinNames = map[string]bool{
	"defined": true, "setvar": true, "getvar": true, "delvar": true,
}

// IsReservedName reports whether name may never be (re)bound by user code:
// double-underscore-leading names, the predefined location/time variables,
// and the reserved builtin helpers (spec.md §3/§4.3; SPEC_FULL.md open
// question decision 3 resolves these predefined names as reserved, not
// merely predefined-and-rebindable).
func IsReservedName(name string) bool {
	return IsReserved(name) || predefinedNames[name] || reservedBuiltinNames[name]
}

// Env is one scope in the chain.
type Env struct {
	parent  *Env
	vars    map[string]any
	globals map[string]bool // names declared "global" in this scope
}

// NewGlobal creates the root (file/global) scope, parented to builtins.
func NewGlobal(builtins *Env) *Env {
	return &Env{parent: builtins, vars: map[string]any{}}
}

// NewBuiltins creates a scope meant to hold read-only builtin bindings.
// It has no parent: lookups that reach it and fail stop there.
func NewBuiltins() *Env {
	return &Env{vars: map[string]any{}}
}

// Child creates a new scope parented to e (a macro-invocation or block
// scope).
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: map[string]any{}}
}

// IsReserved reports whether name is a reserved (double-underscore-leading)
// identifier that user code may not bind.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, reservedPrefix)
}

// DefineBuiltin binds name unconditionally, bypassing the reserved-name
// check; used only to populate the builtins scope itself.
func (e *Env) DefineBuiltin(name string, value any) {
	e.vars[name] = value
}

// Get resolves name by walking the scope chain from e toward the root.
func (e *Env) Get(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name is bound anywhere in the chain.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Define binds name in e directly (used for parameter binding and other
// cases that must not consult "global" declarations; "#:for" loop targets
// go through Assign).
func (e *Env) Define(name string, value any) {
	e.vars[name] = value
}

// DeclareGlobal marks name as global in e: subsequent Assign calls for name
// in e write into the root (file/global) scope instead of e.
func (e *Env) DeclareGlobal(name string) {
	if e.globals == nil {
		e.globals = map[string]bool{}
	}
	e.globals[name] = true
}

// IsGlobal reports whether name was declared global in e.
func (e *Env) IsGlobal(name string) bool {
	return e.globals != nil && e.globals[name]
}

// Assign writes value under name per spec.md §3's assignment rule: into the
// nearest scope that already contains name, or else into e itself, unless
// name is declared global in e, in which case it is written into the
// file/global scope (the root of the chain).
func (e *Env) Assign(name string, value any) {
	if e.IsGlobal(name) {
		e.Root().vars[name] = value
		return
	}

	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = value
			return
		}
	}
	e.vars[name] = value
}

// Delete removes name from the nearest scope in the chain that binds it.
// Returns false if name was not bound anywhere.
func (e *Env) Delete(name string) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			delete(s.vars, name)
			return true
		}
	}
	return false
}

// Root walks to the outermost non-builtins scope (the file/global scope):
// the parent of the builtins scope is nil, so the global scope is the last
// scope before a nil-parent ancestor... Root specifically returns the
// file/global scope, i.e. the scope whose parent has no parent of its own.
func (e *Env) Root() *Env {
	s := e
	for s.parent != nil && s.parent.parent != nil {
		s = s.parent
	}
	if s.parent != nil {
		return s
	}
	return s
}
