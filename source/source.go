// Package source defines the source file abstraction shared by the lexer,
// parser, renderer, and diagnostics: a byte-content file paired with a
// 1-based line/column index, plus a Pos capture type carried by every token,
// AST node, and diagnostic.
package source

import (
	"bytes"
	"unicode/utf8"
)

// Stdin is the sentinel source name used for stdin or other in-memory input
// that is not backed by a filesystem path.
const Stdin = "<stdin>"

// Source represents a single input file (or in-memory buffer) being
// preprocessed.
type Source struct {
	name          string
	content       []byte
	lineStarts    []int
	prevLineIndex int
}

// New creates a new Source.
// Name may be any string identifying the source (a path or a sentinel such
// as Stdin); it need not be unique and may be empty. Content should be valid
// UTF-8 with lines separated by "\n"; it should not be modified afterwards.
func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content, prevLineIndex: -1}
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	s.lineStarts = make([]int, lineCnt)
	s.lineStarts[0] = 0
	j := 1
	for i := 0; i < len(content) && j < lineCnt; i++ {
		if content[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}
	return s
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// Content returns the source content.
func (s *Source) Content() []byte {
	return s.content
}

// Len returns the content length in bytes.
func (s *Source) Len() int {
	return len(s.content)
}

// LineCount returns the number of lines in the source.
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

// LineCol returns the 1-based line and column of the rune starting at pos.
// Negative positions are treated as 0; positions at or beyond the content
// length are treated as the position right after EOF.
func (s *Source) LineCol(pos int) (line, col int) {
	var lineIndex int
	switch {
	case pos < 0:
		pos = 0
		lineIndex = 0
	case pos >= len(s.content):
		pos = len(s.content)
		lineIndex = len(s.lineStarts) - 1
	default:
		lineIndex = s.findLineIndex(pos)
	}

	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

func (s *Source) findLineIndex(pos int) int {
	if s.prevLineIndex >= 0 && s.lineStarts[s.prevLineIndex] <= pos {
		lineIndex := s.prevLineIndex
		last := len(s.lineStarts) - 1
		for lineIndex <= last && s.lineStarts[lineIndex] <= pos {
			lineIndex++
		}
		lineIndex--
		s.prevLineIndex = lineIndex
		return lineIndex
	}

	leftIndex := 0
	rightIndex := len(s.lineStarts) - 1
	if s.prevLineIndex >= 0 {
		rightIndex = s.prevLineIndex
	}
	index := 0
	for leftIndex < rightIndex {
		index = (leftIndex + rightIndex + 1) >> 1
		lineStart := s.lineStarts[index]
		if lineStart == pos {
			s.prevLineIndex = index
			return index
		}
		if lineStart < pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
			index = rightIndex
		}
	}
	s.prevLineIndex = index
	return index
}

// LineStart returns the byte offset of the start of the given 1-based line.
// Returns content length for a line number beyond the last line.
func (s *Source) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line > len(s.lineStarts) {
		return len(s.content)
	}
	return s.lineStarts[line-1]
}

// LineText returns the content of the given 1-based line, without the
// trailing newline.
func (s *Source) LineText(line int) string {
	start := s.LineStart(line)
	end := s.LineStart(line + 1)
	if end > start && s.content[end-1] == '\n' {
		end--
	}
	if start > len(s.content) {
		start = len(s.content)
	}
	if end > len(s.content) {
		end = len(s.content)
	}
	return string(s.content[start:end])
}

// Pos combines a captured source, byte position, line and column.
// The zero value means "no position information available".
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos returns a Pos for the given source and byte position.
// Returns the zero value if s is nil.
func NewPos(s *Source, pos int) Pos {
	if s == nil {
		return Pos{}
	}
	l, c := s.LineCol(pos)
	return Pos{s, pos, l, c}
}

// Source returns the captured source, or nil.
func (p Pos) Source() *Source {
	return p.src
}

// SourceName returns the captured source name, or "" if none.
func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.Name()
}

// Pos returns the captured byte position, or 0.
func (p Pos) Pos() int {
	return p.pos
}

// Line returns the captured 1-based line number, or 0.
func (p Pos) Line() int {
	return p.line
}

// Col returns the captured 1-based column number, or 0.
func (p Pos) Col() int {
	return p.col
}

// Span is a half-open [Start,End) range within a single source, used for AST
// node and token locations. End is exclusive, as in spec.md's data model.
type Span struct {
	Start, End Pos
}

// NewSpan builds a Span from two positions in the same source.
func NewSpan(start, end Pos) Span {
	return Span{start, end}
}

// SourceName returns the span's source name, or "" if none.
func (s Span) SourceName() string {
	return s.Start.SourceName()
}

// Line returns the span's starting line, used when diagnostics only need a
// single locator (satisfies the llx-style SourcePos pattern).
func (s Span) Line() int {
	return s.Start.Line()
}

// Col returns the span's starting column.
func (s Span) Col() int {
	return s.Start.Col()
}

// NormalizeNls replaces all occurrences of "\r" and "\r\n" with "\n" in
// place, shrinking content as needed.
func NormalizeNls(content *[]byte) {
	const (
		lf = 10
		cr = 13
	)

	wPos, rPos := 0, 0
	crFound := false
	for i, b := range *content {
		switch b {
		case lf:
			if crFound {
				crFound = false
				if rPos != 0 {
					copy((*content)[wPos:], (*content)[rPos:i])
				}
				wPos += i - rPos
				rPos = i + 1
			}
		case cr:
			crFound = true
			(*content)[i] = lf
		default:
			crFound = false
		}
	}

	l := len(*content)
	if rPos != 0 && rPos < l {
		copy((*content)[wPos:], (*content)[rPos:l])
	}
	*content = (*content)[:l-rPos+wPos]
}
