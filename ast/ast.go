// Package ast defines the preprocessor's parse tree: the closed set of node
// kinds from spec.md §3 (IF/FOR/DEF/CALL/SET/DEL/GLOBAL/INCLUDE/MUTE/EVAL/
// STOP/ASSERT/COMMENT plus the ROOT and literal TEXT leaves). Concrete typed
// structs are used rather than the teacher's generic linked-list
// tree.Element/NodeElement (github.com/ava12/llx/tree): fypp's block shapes
// are fixed at compile time, one struct per construct, so a closed Node
// interface with type switches is the idiomatic fit — the teacher's generic
// tree exists to host arbitrary user-defined grammars, which this package
// does not need to support.
package ast

import (
	"github.com/aradi/fypp/source"
)

// Node is implemented by every parse tree element.
type Node interface {
	// Span returns the node's source location.
	Span() source.Span
}

// Root is the top-level container for a parsed source or include file.
type Root struct {
	Children []Node
	Loc      source.Span
}

func (n *Root) Span() source.Span { return n.Loc }

// Text is a literal output fragment taken verbatim from a TEXT token.
type Text struct {
	Payload string
	Loc     source.Span
}

func (n *Text) Span() source.Span { return n.Loc }

// Branch is one arm of an If node: either "if"/"elif" (Cond != "") or a
// trailing "else" (Cond == "").
type Branch struct {
	Cond string // expression source text, empty for the else branch
	Body []Node
	Loc  source.Span
}

// If implements IF_NODE: an ordered sequence of condition/body branches.
type If struct {
	Branches []Branch
	Loc      source.Span
}

func (n *If) Span() source.Span { return n.Loc }

// For implements FOR_NODE: "for <targets> in <iterable>".
type For struct {
	Targets  []string // loop variable names, >1 for tuple unpacking
	Iterable string    // expression source text
	Body     []Node
	Loc      source.Span
}

func (n *For) Span() source.Span { return n.Loc }

// ParamSpec describes a macro's formal parameter list.
type ParamSpec struct {
	Required   []string
	Defaulted  []string // parallel to DefaultExprs
	DefaultExprs []string
	Varpos     string // variadic-positional name, "" if none
	Varkw      string // variadic-keyword name, "" if none
}

// Def implements DEF_NODE: binds Name to a Macro value capturing Body.
type Def struct {
	Name    string
	Params  ParamSpec
	Body    []Node
	Inline  bool
	Loc     source.Span
}

func (n *Def) Span() source.Span { return n.Loc }

// ArgSlot is one argument passed to a macro/function call.
// HeaderArgs carry Expr (expression source text, evaluated unless the call
// is Direct, in which case Expr is literal text used as-is). BodyArgs (from
// #:call/#:nextarg or #:block/#:contains) carry Body, a node sequence
// rendered to a string at call time.
type ArgSlot struct {
	Keyword string // "" for positional
	Body    []Node // set for #:call/#:block body argument slots
	Expr    string // set for header / direct-call argument slots
	Loc     source.Span
}

// Call implements CALL_NODE / DIRECT_CALL: an invocation of a macro or
// host-provided callable. Plain in-expression calls ("${m(1)}$") are not
// represented here — they are ordinary function-call expressions handled
// entirely inside the eval package. Call exists only for the two syntactic
// forms with raw-text body/argument slots: #:call/#:block and the "@"
// direct-call shorthand.
type Call struct {
	Callee     string // bare callable name
	HeaderArgs []ArgSlot
	BodyArgs   []ArgSlot
	Inline     bool
	// Direct is true for "@:name(...)"/"@{name(...)}@" shorthand calls,
	// whose HeaderArgs are raw text rather than evaluated expressions.
	Direct bool
	Loc    source.Span
}

func (n *Call) Span() source.Span { return n.Loc }

// Set implements SET_NODE. Expr is "" when the directive binds the target(s)
// to the none sentinel ("#:set x" with no "= expr").
type Set struct {
	Targets []string
	Expr    string
	Loc     source.Span
}

func (n *Set) Span() source.Span { return n.Loc }

// Del implements DEL_NODE.
type Del struct {
	Names []string
	Loc   source.Span
}

func (n *Del) Span() source.Span { return n.Loc }

// Global implements GLOBAL_NODE.
type Global struct {
	Names []string
	Loc   source.Span
}

func (n *Global) Span() source.Span { return n.Loc }

// Include implements INCLUDE_NODE.
type Include struct {
	Path string
	Loc  source.Span
}

func (n *Include) Span() source.Span { return n.Loc }

// Mute implements MUTE_NODE.
type Mute struct {
	Body []Node
	Loc  source.Span
}

func (n *Mute) Span() source.Span { return n.Loc }

// Eval implements EVAL_NODE: both LINE_EVAL ("$:expr") and inline
// expression substitutions ("${expr}$") reduce to this node, distinguished
// by Inline.
type Eval struct {
	Expr   string
	Inline bool
	Loc    source.Span
}

func (n *Eval) Span() source.Span { return n.Loc }

// Stop implements STOP_NODE.
type Stop struct {
	Expr string
	Loc  source.Span
}

func (n *Stop) Span() source.Span { return n.Loc }

// Assert implements ASSERT_NODE.
type Assert struct {
	Expr string
	Loc  source.Span
}

func (n *Assert) Span() source.Span { return n.Loc }

// Comment implements COMMENT_NODE: produces no output but still advances the
// renderer's line-marker bookkeeping.
type Comment struct {
	Loc source.Span
}

func (n *Comment) Span() source.Span { return n.Loc }
