// Package render implements the preprocessor's evaluator-backed renderer
// (spec.md §4.4): walks the ast.Node tree producing output text, threading
// an env.Env scope chain through nested blocks, resolving "#:include"
// against an injectable IncludeResolver with cycle detection, tracking the
// mute region depth, and emitting line-number markers to keep a downstream
// compiler's diagnostics aligned with the original source when directives
// add or remove lines. Grounded on the teacher's node-hook dispatch idiom
// (github.com/ava12/llx/parser, Hooks.Nodes — a per-node-kind callback
// invoked as the tree is walked) generalized from llx's dynamic hook-lookup
// map to a static Go type switch, since fypp's node kinds are fixed.
package render

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/env"
	"github.com/aradi/fypp/eval"
	"github.com/aradi/fypp/parser"
	"github.com/aradi/fypp/source"
)

// Renderer holds the mutable state of a single preprocessing run: the
// output buffer, the active scope chain, the include stack (for cycle
// detection), the mute-region depth, and line-marker bookkeeping.
type Renderer struct {
	cfg      Config
	builtins *env.Env
	global   *env.Env

	out strings.Builder

	muteDepth int

	includeStack []string
	curFile      string
	nextLine     int

	// pendingFlag/forceMarker let renderInclude request the gfortran5
	// entering/returning flag (spec.md §4.4) and force a marker to be
	// emitted on the next output leaf even when the line cursor happens to
	// already agree with the restored position.
	pendingFlag int
	forceMarker bool

	// macroDepth counts nested Macro.Call activations. While it is nonzero,
	// _LINE_/_FILE_ are frozen at whatever they held at the outermost call's
	// invocation site (spec.md §4.4) and setLineVar/bindFileVar instead
	// advance _THIS_LINE_/_THIS_FILE_ to track the macro body's own source
	// position, mirroring the original implementation's call-stack-relative
	// location variables.
	macroDepth int
}

const (
	enteringFile    = 1
	returningToFile = 2
)

// New creates a Renderer configured by cfg. Defines are bound into the
// global scope before rendering begins.
func New(cfg Config) *Renderer {
	builtins := env.NewBuiltins()
	eval.RegisterBuiltins(builtins)
	global := env.NewGlobal(builtins)

	r := &Renderer{cfg: cfg, builtins: builtins, global: global}
	return r
}

// applyDefines evaluates cfg.Defines into the global scope; called once at
// the start of Render so any evaluation error surfaces as part of the
// normal error return rather than a panic from New.
func (r *Renderer) applyDefines() error {
	for name, expr := range r.cfg.Defines {
		var v eval.Value
		if expr != "" {
			var err error
			v, err = eval.EvalString(expr, r.global)
			if err != nil {
				return diag.New(diag.KindConfig, "invalid value for defined name '%s': %s", name, err)
			}
		}
		r.global.Define(name, v)
	}
	return nil
}

// Render preprocesses src's content and returns the resulting text.
func (r *Renderer) Render(src *source.Source) (string, error) {
	r.bindStaticPredefined()
	if err := r.applyDefines(); err != nil {
		return "", err
	}
	r.curFile = src.Name()
	r.nextLine = 1
	r.includeStack = []string{src.Name()}

	root, err := parser.Parse(src, r.cfg.Sigils)
	if err != nil {
		return "", err
	}

	r.bindFileVar(src.Name())
	if err := r.renderNodes(root.Children, r.global); err != nil {
		return "", err
	}
	return r.out.String(), nil
}

func (r *Renderer) bindStaticPredefined() {
	now := time.Now()
	r.global.Define("_DATE_", now.Format("2006-01-02"))
	r.global.Define("_TIME_", now.Format("15:04:05"))
	r.global.Define("_SYSTEM_", runtime.GOOS)
	r.global.Define("_MACHINE_", runtime.GOARCH)
}

// fileVarValue applies the FileVarRoot trimming rule shared by _FILE_ and
// _THIS_FILE_.
func (r *Renderer) fileVarValue(name string) string {
	root := r.cfg.FileVarRoot
	if root != "" && strings.HasPrefix(name, root) {
		return strings.TrimPrefix(name, root)
	}
	return name
}

// bindFileVar is called at file-granularity (Render's start, and include
// entry/exit) rather than per node, since _FILE_/_THIS_FILE_ only change at
// file boundaries outside of a macro call. While a macro call is active,
// _FILE_ stays frozen at the invocation site, so only _THIS_FILE_ is
// updated.
func (r *Renderer) bindFileVar(name string) {
	v := r.fileVarValue(name)
	if r.macroDepth > 0 {
		r.global.Define("_THIS_FILE_", v)
		return
	}
	r.global.Define("_FILE_", v)
	r.global.Define("_THIS_FILE_", v)
}

func (r *Renderer) renderNodes(nodes []ast.Node, e *env.Env) error {
	for _, n := range nodes {
		if err := r.renderNode(n, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(n ast.Node, e *env.Env) error {
	switch node := n.(type) {
	case *ast.Text:
		r.emitLeaf(node.Loc)
		r.write(node.Payload)
		return nil

	case *ast.Comment:
		r.advanceNoOutput(node.Loc)
		return nil

	case *ast.Eval:
		return r.renderEval(node, e)

	case *ast.Call:
		return r.renderCall(node, e)

	case *ast.If:
		return r.renderIf(node, e)

	case *ast.For:
		return r.renderFor(node, e)

	case *ast.Def:
		return r.renderDef(node, e)

	case *ast.Set:
		return r.renderSet(node, e)

	case *ast.Del:
		if err := eval.Delete(node.Names, e); err != nil {
			return diag.At(diag.KindSemantic, node.Loc, "%s", err)
		}
		return nil

	case *ast.Global:
		eval.DeclareGlobal(node.Names, e)
		return nil

	case *ast.Include:
		return r.renderInclude(node, e)

	case *ast.Mute:
		if logger := r.cfg.Logger; logger != nil {
			logger.WithField("depth", r.muteDepth+1).Debug("entering mute region")
		}
		r.muteDepth++
		err := r.renderNodes(node.Body, e)
		r.muteDepth--
		if logger := r.cfg.Logger; logger != nil {
			logger.WithField("depth", r.muteDepth).Debug("leaving mute region")
		}
		return err

	case *ast.Stop:
		return r.renderStopOrAssert(node.Expr, node.Loc, e, diag.KindStop, "")

	case *ast.Assert:
		return r.renderAssert(node, e)

	case *ast.Root:
		return r.renderNodes(node.Children, e)
	}
	return fmt.Errorf("render: unhandled node type %T", n)
}

func (r *Renderer) renderEval(node *ast.Eval, e *env.Env) error {
	r.setLineVar(node.Loc)
	v, err := eval.EvalString(node.Expr, e)
	if err != nil {
		return diag.At(diag.KindEval, node.Loc, "%s", err)
	}
	r.emitLeaf(node.Loc)
	s := eval.ToString(v)
	if node.Inline {
		// An inline "${expr}$" substitution strips exactly one trailing
		// newline from its value before splicing it into the surrounding
		// line, so a multi-line macro body used as an expression doesn't
		// leave a stray blank line behind (original_source/test/
		// test_fypp.py's "macro_trailing_newlines_inline" case). The
		// line-eval "$:" form (Inline == false) keeps the value as-is.
		s = strings.TrimSuffix(s, "\n")
	}
	r.write(s)
	return nil
}

func (r *Renderer) renderSet(node *ast.Set, e *env.Env) error {
	r.setLineVar(node.Loc)
	var v eval.Value
	if node.Expr != "" {
		var err error
		v, err = eval.EvalString(node.Expr, e)
		if err != nil {
			return diag.At(diag.KindEval, node.Loc, "%s", err)
		}
	}
	if err := eval.Assign(node.Targets, v, e); err != nil {
		return diag.At(diag.KindSemantic, node.Loc, "%s", err)
	}
	return nil
}

func (r *Renderer) renderIf(node *ast.If, e *env.Env) error {
	for _, b := range node.Branches {
		if b.Cond == "" {
			return r.renderNodes(b.Body, e)
		}
		r.setLineVar(b.Loc)
		v, err := eval.EvalString(b.Cond, e)
		if err != nil {
			return diag.At(diag.KindEval, b.Loc, "%s", err)
		}
		if eval.Truthy(v) {
			return r.renderNodes(b.Body, e)
		}
	}
	r.advanceNoOutput(node.Loc)
	return nil
}

func (r *Renderer) renderFor(node *ast.For, e *env.Env) error {
	r.setLineVar(node.Loc)
	iterV, err := eval.EvalString(node.Iterable, e)
	if err != nil {
		return diag.At(diag.KindEval, node.Loc, "%s", err)
	}
	items, err := eval.Iterate(iterV)
	if err != nil {
		return diag.At(diag.KindEval, node.Loc, "%s", err)
	}
	for _, item := range items {
		local := e.Child()
		if err := eval.Assign(node.Targets, item, local); err != nil {
			return diag.At(diag.KindSemantic, node.Loc, "%s", err)
		}
		if err := r.renderNodes(node.Body, local); err != nil {
			return err
		}
	}
	if len(items) == 0 {
		r.advanceNoOutput(node.Loc)
	}
	return nil
}

func (r *Renderer) renderDef(node *ast.Def, e *env.Env) error {
	if env.IsReservedName(node.Name) {
		return diag.At(diag.KindSemantic, node.Loc, "cannot define reserved name '%s'", node.Name)
	}
	m := &Macro{Def: node, DefEnv: e, Render: r}
	e.Assign(node.Name, m)
	r.advanceNoOutput(node.Loc)
	return nil
}

func (r *Renderer) renderStopOrAssert(exprText string, loc source.Span, e *env.Env, kind diag.Kind, prefix string) error {
	r.setLineVar(loc)
	v, err := eval.EvalString(exprText, e)
	if err != nil {
		return diag.At(diag.KindEval, loc, "%s", err)
	}
	msg := eval.ToString(v)
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	return diag.At(kind, loc, "%s", msg)
}

func (r *Renderer) renderAssert(node *ast.Assert, e *env.Env) error {
	r.setLineVar(node.Loc)
	v, err := eval.EvalString(node.Expr, e)
	if err != nil {
		return diag.At(diag.KindEval, node.Loc, "%s", err)
	}
	if eval.Truthy(v) {
		return nil
	}
	return diag.At(diag.KindAssert, node.Loc, "assertion failed: %s", node.Expr)
}

// renderBodyToString renders nodes against e into a fresh buffer, used by
// Macro.Call and by #:call/#:block body argument slots, both of which need
// the rendered text as a value rather than as output.
func (r *Renderer) renderBodyToString(nodes []ast.Node, e *env.Env) (string, error) {
	saved := r.out
	r.out = strings.Builder{}
	err := r.renderNodes(nodes, e)
	result := r.out.String()
	r.out = saved
	return result, err
}

func (r *Renderer) write(s string) {
	if r.muteDepth > 0 {
		return
	}
	r.out.WriteString(s)
	r.nextLine += strings.Count(s, "\n")
}

// setLineVar updates the current-position predefined variables, mirroring
// the original implementation's "current position" tracking used by error
// messages and by user code inspecting _LINE_/_FILE_/_THIS_LINE_/_THIS_FILE_
// mid-render. Outside any macro call, _LINE_ and _THIS_LINE_ track the same
// physical position and are kept equal. While a macro body is rendering
// (macroDepth > 0), _LINE_ stays frozen at the invocation site (spec.md
// §4.4) and only _THIS_LINE_/_THIS_FILE_ advance to the macro's own body
// position, so a nested call's "invocation site" is simply whatever _LINE_
// already holds.
func (r *Renderer) setLineVar(loc source.Span) {
	line := int64(loc.Line())
	if r.macroDepth > 0 {
		r.global.Define("_THIS_LINE_", line)
		if name := loc.SourceName(); name != "" {
			r.global.Define("_THIS_FILE_", r.fileVarValue(name))
		}
		return
	}
	r.global.Define("_LINE_", line)
	r.global.Define("_THIS_LINE_", line)
}

func lineMarkerEnabled(r *Renderer) bool {
	return r.cfg.LineNumbering && r.muteDepth == 0
}

// emitLeaf is called immediately before writing an output-producing leaf
// node's text; it updates _LINE_ and, if line numbering is on, emits a
// corrective marker when the node's source position has drifted from the
// renderer's running line counter (spec.md §4.4).
func (r *Renderer) emitLeaf(loc source.Span) {
	r.setLineVar(loc)
	r.maybeEmitMarker(loc)
}

// advanceNoOutput is called for directives that produce no text of their
// own (comments, defs, skipped/empty if-for bodies) so line drift caused by
// their vanished source lines is still tracked for the next real leaf.
func (r *Renderer) advanceNoOutput(loc source.Span) {
	r.setLineVar(loc)
}

func (r *Renderer) maybeEmitMarker(loc source.Span) {
	if !lineMarkerEnabled(r) {
		return
	}
	file := loc.SourceName()
	line := loc.Line()
	drift := line - r.nextLine
	fileChanged := file != "" && file != r.curFile
	force := r.forceMarker
	switch r.cfg.LineNumberingMode {
	case NoContLines:
		if !force && !fileChanged && drift == 0 {
			return
		}
		if !force && !fileChanged && drift == 1 {
			// A single elided line (continuation splice or comment) is
			// tolerated without a marker in this mode.
			r.nextLine = line
			return
		}
	default: // Full
		if !force && !fileChanged && drift == 0 {
			return
		}
	}
	flag := r.pendingFlag
	if flag == 0 && fileChanged {
		flag = enteringFile
	}
	if file != "" {
		r.curFile = file
	}
	r.nextLine = line
	r.forceMarker = false
	r.pendingFlag = 0
	r.out.WriteString(formatMarker(r.cfg.LineMarkerFormat, line, r.curFile, flag))
}

// formatMarker renders one of the three wire formats from spec.md §6.
// flag is 0 (no flag), enteringFile (1), or returningToFile (2); only the
// gfortran5 format ever prints it.
func formatMarker(format LineMarkerFormat, line int, file string, flag int) string {
	q := strconv.Quote(file)
	switch format {
	case Std:
		return fmt.Sprintf("#line %d %s\n", line, q)
	case Gfortran5:
		if flag != 0 {
			return fmt.Sprintf("# %d %s %d\n", line, q, flag)
		}
		return fmt.Sprintf("# %d %s\n", line, q)
	default: // Cpp
		return fmt.Sprintf("# %d %s\n", line, q)
	}
}
