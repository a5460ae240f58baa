// Package diag defines the single diagnostic shape shared by every layer of
// the preprocessing pipeline (lexical, structural, semantic, host-evaluator,
// user-stop, configuration), ported from the teacher's llx.Error/SourcePos
// pattern and extended with a pkg/errors-backed cause chain so nested
// diagnostics (macro body, included file) can be wrapped and rethrown with
// the invocation site attached, innermost frame first.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/aradi/fypp/source"
)

// Kind classifies where in the pipeline a diagnostic originated.
type Kind string

const (
	KindLexical  Kind = "lexical"
	KindSyntax   Kind = "syntax"   // tree-builder / structural
	KindSemantic Kind = "semantic" // renderer
	KindEval     Kind = "eval"     // host expression evaluator
	KindStop     Kind = "stop"     // explicit #:stop
	KindAssert   Kind = "assert"   // explicit #:assert
	KindConfig   Kind = "config"   // invalid configuration, no locator
)

// Locator is implemented by anything carrying optional source position
// information for a diagnostic: source.Span, source.Pos, lexer tokens, AST
// node locations.
type Locator interface {
	SourceName() string
	Line() int
	Col() int
}

// Error is the single diagnostic shape used across the whole pipeline.
type Error struct {
	Kind    Kind
	File    string
	Line    int
	Col     int
	Message string
	cause   error
}

// New creates a diagnostic with no locator (used for configuration errors).
func New(kind Kind, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

// At creates a diagnostic located at pos (may be source.Span, source.Pos, or
// a lexer token; anything implementing Locator).
func At(kind Kind, pos Locator, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	e := &Error{Kind: kind, Message: msg}
	if pos != nil {
		e.File = pos.SourceName()
		e.Line = pos.Line()
		e.Col = pos.Col()
	}
	return e
}

// Error implements the error interface, rendering the locator (if any)
// alongside the message, matching the teacher's llx.Error.Error() rendering.
func (e *Error) Error() string {
	if e.File != "" && e.Line != 0 {
		return fmt.Sprintf("%s in %s at line %d col %d", e.Message, e.File, e.Line, e.Col)
	}
	return e.Message
}

// Cause returns the wrapped lower-level diagnostic, or nil.
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap lets errors.Is/errors.As from both stdlib and pkg/errors walk the
// chain.
func (e *Error) Unwrap() error {
	return e.cause
}

// Wrap attaches ctxPos as an additional stack frame ("inside macro X defined
// at ...", "included from ...") on top of err, producing the innermost-first
// cause chain described in spec.md §7. If err is already a *diag.Error its
// Kind is preserved; otherwise the wrapped error is given KindSemantic since
// only the renderer wraps.
func Wrap(err error, ctxPos Locator, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	kind := KindSemantic
	var inner *Error
	if errors.As(err, &inner) {
		kind = inner.Kind
	}

	e := &Error{Kind: kind, Message: msg, cause: errors.WithStack(err)}
	if ctxPos != nil {
		e.File = ctxPos.SourceName()
		e.Line = ctxPos.Line()
		e.Col = ctxPos.Col()
	}
	return e
}

// Chain renders the full innermost-first frame stack for display, one frame
// per line.
func Chain(err error) string {
	var frames []string
	for err != nil {
		var de *Error
		if errors.As(err, &de) {
			frames = append(frames, de.Error())
			err = de.cause
			continue
		}
		frames = append(frames, err.Error())
		break
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return strings.Join(frames, "\n")
}
