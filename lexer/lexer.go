// Package lexer carves a source's byte content into the flat token stream
// described by spec.md §4.1: literal text, line-form and inline-form
// directives, expression substitutions, line-eval directives, direct calls,
// and comments. Grounded on the teacher's lexer.Lexer (github.com/ava12/llx)
// in spirit — immutable, stateless w.r.t. its configuration, one Token type
// carrying a captured source.Span — but hand-written rather than
// regexp-group driven, since directive bodies nest free-form expression text
// that a single capturing-group regexp cannot delimit.
package lexer

import (
	"strings"

	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/source"
	"github.com/aradi/fypp/token"
)

// Sigils holds the three one-byte prefixes that introduce directives
// (default '#'), expression substitutions/line-evals ('$'), and direct
// calls ('@'). Fixed for the duration of a single preprocessing run.
type Sigils struct {
	Directive byte
	Eval      byte
	Call      byte
}

// DefaultSigils returns the classic fypp sigil set: '#' for directives,
// '$' for evaluation, '@' for direct calls.
func DefaultSigils() Sigils {
	return Sigils{Directive: '#', Eval: '$', Call: '@'}
}

// lineKeywords are the line/inline directive keywords recognized after the
// directive sigil's ':' or '{'. "endX"/"elif"/"else"/"nextarg"/"contains"
// are continuation/closer keywords handled the same way as openers at the
// lexer level; the tree-builder distinguishes their role.
var lineKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "endif": true,
	"for": true, "endfor": true,
	"def": true, "enddef": true,
	"call": true, "nextarg": true, "endcall": true,
	"block": true, "contains": true, "endblock": true,
	"set": true, "del": true, "global": true,
	"include": true, "mute": true, "endmute": true,
	"stop": true, "assert": true,
}

// Lexer turns one source's content into a token stream. A Lexer instance is
// reusable across sources but not concurrency-safe for a single source
// (position is held per call to Next via the caller-supplied cursor).
type Lexer struct {
	sigils Sigils
}

// New creates a Lexer for the given sigil set.
func New(sigils Sigils) *Lexer {
	return &Lexer{sigils: sigils}
}

// Cursor tracks the scanning position within a single source.
type Cursor struct {
	Src *source.Source
	Pos int
}

// NewCursor creates a cursor positioned at the start of src.
func NewCursor(src *source.Source) *Cursor {
	return &Cursor{Src: src, Pos: 0}
}

func (c *Cursor) content() []byte { return c.Src.Content() }

func (c *Cursor) atLineStart() bool {
	p := c.Pos
	content := c.content()
	for p > 0 {
		b := content[p-1]
		if b == '\n' {
			return true
		}
		if b == ' ' || b == '\t' {
			p--
			continue
		}
		return false
	}
	return true
}

func (c *Cursor) isBlankToEol(from int) bool {
	content := c.content()
	for i := from; i < len(content); i++ {
		b := content[i]
		if b == '\n' {
			return true
		}
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

func (c *Cursor) lineStartPos() int {
	content := c.content()
	p := c.Pos
	for p > 0 && content[p-1] != '\n' {
		p--
	}
	return p
}

// Next fetches the next token starting at c.Pos and advances c.
// Returns a token.EOF token when the source is exhausted.
func (l *Lexer) Next(c *Cursor) (token.Token, error) {
	content := c.content()
	if c.Pos >= len(content) {
		return token.Token{Kind: token.EOF, Span: source.NewSpan(source.NewPos(c.Src, c.Pos), source.NewPos(c.Src, c.Pos))}, nil
	}

	start := c.Pos
	lineStart := c.atLineStart()

	if esc, _ := l.matchEscape(content, c.Pos); esc != "" {
		return l.lexText(c, start)
	}

	b := content[c.Pos]
	switch b {
	case l.sigils.Directive:
		if lineStart && c.Pos+1 < len(content) {
			switch content[c.Pos+1] {
			case ':':
				return l.lexLineForm(c, start, token.LineDir)
			case '!':
				return l.lexComment(c, start)
			}
		}
		if c.Pos+1 < len(content) && content[c.Pos+1] == '{' {
			return l.lexInlineForm(c, start, token.InlineDir, l.sigils.Directive)
		}

	case l.sigils.Eval:
		if lineStart && c.Pos+1 < len(content) && content[c.Pos+1] == ':' {
			return l.lexLineForm(c, start, token.LineEval)
		}
		if c.Pos+1 < len(content) && content[c.Pos+1] == '{' {
			return l.lexInlineForm(c, start, token.ExprSub, l.sigils.Eval)
		}

	case l.sigils.Call:
		if lineStart && c.Pos+1 < len(content) && content[c.Pos+1] == ':' {
			return l.lexLineForm(c, start, token.DirectCall)
		}
		if c.Pos+1 < len(content) && content[c.Pos+1] == '{' {
			return l.lexInlineForm(c, start, token.DirectCall, l.sigils.Call)
		}
	}

	return l.lexText(c, start)
}

// matchEscape reports whether content[pos:] begins with "<sigil>\\<second>"
// where <second> is a character that would otherwise open or close a
// directive/eval/call span ('{', ':', '!', or, preceded by '}', a sigil).
// Returns the two literal bytes to emit and the number of source bytes
// consumed (always 3), or ("", 0) if no escape applies at pos.
func (l *Lexer) matchEscape(content []byte, pos int) (string, int) {
	if pos+2 >= len(content) || content[pos+1] != '\\' {
		return "", 0
	}
	first := content[pos]
	second := content[pos+2]
	isSigil := first == l.sigils.Directive || first == l.sigils.Eval || first == l.sigils.Call
	if isSigil && (second == '{' || second == ':' || second == '!') {
		return string([]byte{first, second}), 3
	}
	// closer escape: "}\<sigil>"
	if first == '}' && (second == l.sigils.Directive || second == l.sigils.Eval || second == l.sigils.Call) {
		return string([]byte{first, second}), 3
	}
	return "", 0
}

// isOpenerAt reports whether content[pos:] begins an (unescaped) directive,
// eval, or direct-call opener: "<sigil>{" anywhere, or "<sigil>:"/"<sigil>!"
// at the start of a line (ignoring leading whitespace).
func (l *Lexer) isOpenerAt(c *Cursor, content []byte, pos int) bool {
	if pos+1 >= len(content) {
		return false
	}
	first, second := content[pos], content[pos+1]
	switch first {
	case l.sigils.Directive:
		if second == '{' {
			return true
		}
		return (second == ':' || second == '!') && c.Pos == pos && c.atLineStart()
	case l.sigils.Eval, l.sigils.Call:
		if second == '{' {
			return true
		}
		return second == ':' && c.Pos == pos && c.atLineStart()
	}
	return false
}

func (l *Lexer) textToken(c *Cursor, start int, lit string) token.Token {
	sp := source.NewSpan(source.NewPos(c.Src, start), source.NewPos(c.Src, c.Pos))
	return token.Token{Kind: token.Text, Tail: lit, Span: sp}
}

// lexText consumes a run of plain text up to the next byte that could begin
// a sigil sequence (real or escaped), unescaping any escape sequences found
// along the way so Tail holds exactly the literal output text. The
// indentation in front of a line-form directive is left to that directive.
func (l *Lexer) lexText(c *Cursor, start int) (token.Token, error) {
	content := c.content()
	var b strings.Builder
	for c.Pos < len(content) {
		if esc, n := l.matchEscape(content, c.Pos); esc != "" {
			b.WriteString(esc)
			c.Pos += n
			continue
		}

		if l.isOpenerAt(c, content, c.Pos) {
			break
		}

		if (content[c.Pos] == ' ' || content[c.Pos] == '\t') && c.atLineStart() {
			j := c.Pos
			for j < len(content) && (content[j] == ' ' || content[j] == '\t') {
				j++
			}
			if j+1 < len(content) && content[j+1] != '{' && l.isOpenerAt(&Cursor{Src: c.Src, Pos: j}, content, j) {
				if c.Pos == start {
					c.Pos = j
					return l.Next(c)
				}
				break
			}
		}

		b.WriteByte(content[c.Pos])
		c.Pos++
	}
	return l.textToken(c, start, b.String()), nil
}

// lexComment consumes a "#! ... \n" comment, including the surrounding
// whitespace/newline when it is the only content on its line, per §4.1 and
// the whitespace-stripping decision recorded in SPEC_FULL.md.
func (l *Lexer) lexComment(c *Cursor, start int) (token.Token, error) {
	content := c.content()
	lineBegin := c.lineStartPos()
	nl := indexByteFrom(content, c.Pos, '\n')
	end := nl
	if end < 0 {
		end = len(content)
	}
	standalone := isBlank(content[lineBegin:start])
	consumeStart := start
	newPos := end
	if standalone {
		consumeStart = lineBegin
		if nl >= 0 {
			newPos = nl + 1
		}
	}
	c.Pos = newPos
	sp := source.NewSpan(source.NewPos(c.Src, consumeStart), source.NewPos(c.Src, newPos))
	return token.Token{Kind: token.Comment, Span: sp}, nil
}

// lexLineForm consumes a full-line directive: "<sigil>:<body>\n", splicing
// "&"-terminated continuations (§4.1) and stripping the whole line when the
// directive is its only content (the decision recorded in SPEC_FULL.md).
func (l *Lexer) lexLineForm(c *Cursor, start int, kind token.Kind) (token.Token, error) {
	content := c.content()
	lineBegin := c.lineStartPos()
	bodyStart := start + 2
	body, newPos, err := l.scanUntilNewline(content, bodyStart)
	if err != nil {
		return token.Token{}, err
	}

	keyword, tail := splitKeyword(kind, body)
	consumeStart := start
	if isBlank(content[lineBegin:start]) {
		consumeStart = lineBegin
	}
	c.Pos = newPos
	sp := source.NewSpan(source.NewPos(c.Src, consumeStart), source.NewPos(c.Src, newPos))
	return token.Token{Kind: kind, Keyword: keyword, Tail: tail, Span: sp}, nil
}

// scanUntilNewline scans the directive body from pos until an unescaped
// newline, splicing "&"-paired continuations across physical lines.
func (l *Lexer) scanUntilNewline(content []byte, pos int) (string, int, error) {
	var b strings.Builder
	for {
		nl := indexByteFrom(content, pos, '\n')
		lineEnd := nl
		if lineEnd < 0 {
			lineEnd = len(content)
		}
		line := content[pos:lineEnd]
		trimmed := strings.TrimRight(string(line), " \t")
		if strings.HasSuffix(trimmed, "&") && nl >= 0 {
			// look for a continuation "&" starting the next line
			nextStart := nl + 1
			j := nextStart
			for j < len(content) && (content[j] == ' ' || content[j] == '\t') {
				j++
			}
			if j < len(content) && content[j] == '&' {
				b.WriteString(trimmed[:len(trimmed)-1])
				pos = j + 1
				continue
			}
		}
		b.WriteString(line)
		if nl < 0 {
			return b.String(), len(content), nil
		}
		return b.String(), nl + 1, nil
	}
}

// lexInlineForm consumes an inline directive/substitution/direct-call body:
// "<sigil>{...}<closeSigil>", stopping at the first unescaped "}<sigil>"
// sequence. When an inline directive ("#{...}#") is the sole content of its
// line, the surrounding whitespace and newline are swallowed per §4.1; a
// lone "${...}$" substitution or "@{...}@" call keeps them.
func (l *Lexer) lexInlineForm(c *Cursor, start int, kind token.Kind, closeSigil byte) (token.Token, error) {
	content := c.content()
	bodyStart := start + 2
	pos := bodyStart
	for {
		idx := indexByteFrom(content, pos, '}')
		if idx < 0 {
			return token.Token{}, diag.At(diag.KindLexical, source.NewSpan(source.NewPos(c.Src, start), source.NewPos(c.Src, start)), "unclosed inline directive")
		}
		if esc, n := l.matchEscape(content, idx); esc != "" {
			pos = idx + n
			continue
		}
		if idx+1 < len(content) && content[idx+1] == closeSigil {
			body := string(content[bodyStart:idx])
			newPos := idx + 2
			keyword, tail := splitKeyword(kind, body)

			lineBegin := c.lineStartPos()
			consumeStart := start
			leadingBlank := isBlank(content[lineBegin:start])
			trailingBlank := c.isBlankToEolAt(content, newPos)
			endPos := newPos
			if leadingBlank && trailingBlank && kind == token.InlineDir {
				consumeStart = lineBegin
				nl := indexByteFrom(content, newPos, '\n')
				if nl >= 0 {
					endPos = nl + 1
				} else {
					endPos = len(content)
				}
			}

			sp := source.NewSpan(source.NewPos(c.Src, consumeStart), source.NewPos(c.Src, endPos))
			return token.Token{Kind: kind, Keyword: keyword, Tail: tail, Inline: true, Span: sp}, nil
		}
		pos = idx + 1
	}
}

func (c *Cursor) isBlankToEolAt(content []byte, from int) bool {
	for i := from; i < len(content); i++ {
		b := content[i]
		if b == '\n' {
			return true
		}
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func indexByteFrom(b []byte, from int, c byte) int {
	if from >= len(b) {
		return -1
	}
	idx := -1
	for i := from; i < len(b); i++ {
		if b[i] == c {
			idx = i
			break
		}
	}
	return idx
}

// splitKeyword extracts the leading identifier keyword from a directive
// body (for LineDir/InlineDir) or leaves the body intact as Tail for
// LineEval/DirectCall/ExprSub tokens, which carry a bare expression or
// macro-call text with no keyword.
func splitKeyword(kind token.Kind, body string) (keyword, tail string) {
	if kind != token.LineDir && kind != token.InlineDir {
		return "", strings.TrimSpace(body)
	}

	trimmed := strings.TrimLeft(body, " \t")
	i := 0
	for i < len(trimmed) {
		ch := trimmed[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' {
			i++
			continue
		}
		break
	}
	kw := trimmed[:i]
	rest := strings.TrimLeft(trimmed[i:], " \t")
	if !lineKeywords[kw] {
		return kw, rest
	}
	return kw, rest
}
