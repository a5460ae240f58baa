// Package token defines the lexical tokens produced by the lexer, ported
// from the teacher's lexer.Token (type/text/position triple), specialized to
// spec.md §3's tagged token kinds instead of a grammar-driven regexp group
// index.
package token

import (
	"github.com/aradi/fypp/source"
)

// Kind identifies the syntactic category of a token.
type Kind int

const (
	// Text is a run of literal output text.
	Text Kind = iota
	// LineDir is a full-line directive ("#:if ...\n").
	LineDir
	// InlineDir is an inline directive ("#{if ...}#").
	InlineDir
	// ExprSub is an inline expression substitution ("${expr}$").
	ExprSub
	// LineEval is a whole-line expression directive ("$:expr\n").
	LineEval
	// DirectCall is the shorthand macro-call sigil ("@:name(args)" or
	// "@{name(args)}@").
	DirectCall
	// Comment is a directive comment ("#! ...\n").
	Comment
	// EOF marks the end of a single source's token stream.
	EOF
)

var kindNames = map[Kind]string{
	Text:       "text",
	LineDir:    "line-directive",
	InlineDir:  "inline-directive",
	ExprSub:    "expr-substitution",
	LineEval:   "line-eval",
	DirectCall: "direct-call",
	Comment:    "comment",
	EOF:        "eof",
}

// String renders a human-readable token kind name.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Token is a single lexeme: its kind, an optional keyword (for directives),
// the raw directive/expression body text ("tail"), and the source span it
// came from.
type Token struct {
	Kind    Kind
	Keyword string // directive keyword ("if", "for", "def", ...), empty otherwise
	Tail    string // directive tail / expression text / macro name+args / literal text
	Inline  bool   // true for inline-form directives, substitutions, direct calls
	Span    source.Span
}

// SourceName implements diag.Locator.
func (t Token) SourceName() string { return t.Span.SourceName() }

// Line implements diag.Locator.
func (t Token) Line() int { return t.Span.Line() }

// Col implements diag.Locator.
func (t Token) Col() int { return t.Span.Col() }
