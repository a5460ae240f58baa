package parser

import (
	"strings"
)

// splitTopLevel splits s on sep at nesting depth zero, respecting
// (), [], {} nesting and single/double-quoted strings so that argument and
// parameter lists split correctly even when an argument expression itself
// contains commas or nested calls.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitAndTrim(s string, sep byte) []string {
	raw := splitTopLevel(s, sep)
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := strings.TrimSpace(r)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// nameList parses a whitespace/comma-separated identifier list, as used by
// "#:global" and "#:del".
func nameList(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Fields(s)
}

// splitCallHeader splits "name(arg1, kw=arg2, ...)" (or a bare "name" with
// no parens) into the callee name and its raw, unsplit argument-list text.
func splitCallHeader(s string) (name string, argsText string, hasParens bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '(')
	if i < 0 {
		return s, "", false
	}
	if !strings.HasSuffix(s, ")") {
		return s, "", false
	}
	return strings.TrimSpace(s[:i]), s[i+1 : len(s)-1], true
}

// argSlotText is one comma-split raw argument: either "name=expr" (keyword)
// or a bare "expr" (positional).
type argSlotText struct {
	Keyword string
	Expr    string
}

func parseArgList(argsText string) []argSlotText {
	parts := splitAndTrim(argsText, ',')
	out := make([]argSlotText, 0, len(parts))
	for _, p := range parts {
		if eq := topLevelEquals(p); eq >= 0 {
			out = append(out, argSlotText{Keyword: strings.TrimSpace(p[:eq]), Expr: strings.TrimSpace(p[eq+1:])})
		} else {
			out = append(out, argSlotText{Expr: p})
		}
	}
	return out
}

// topLevelEquals finds the position of a parameter-defaulting/keyword-arg
// "=" at nesting depth zero, ignoring "==", "<=", ">=", "!=".
func topLevelEquals(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i > 0 && strings.ContainsRune("=<>!", rune(s[i-1])) {
				continue
			}
			if i+1 < len(s) && s[i+1] == '=' {
				continue
			}
			return i
		}
	}
	return -1
}

// paramSlotText mirrors argSlotText for "#:def" headers: a required name, a
// "name=default" defaulted parameter, or a "*name"/"**name" variadic marker.
type paramSlotText struct {
	Name     string
	Default  string
	HasDefault bool
	Varpos   bool
	Varkw    bool
}

func parseParamList(s string) []paramSlotText {
	parts := splitAndTrim(s, ',')
	out := make([]paramSlotText, 0, len(parts))
	for _, p := range parts {
		switch {
		case strings.HasPrefix(p, "**"):
			out = append(out, paramSlotText{Name: strings.TrimSpace(p[2:]), Varkw: true})
		case strings.HasPrefix(p, "*"):
			out = append(out, paramSlotText{Name: strings.TrimSpace(p[1:]), Varpos: true})
		default:
			if eq := topLevelEquals(p); eq >= 0 {
				out = append(out, paramSlotText{Name: strings.TrimSpace(p[:eq]), Default: strings.TrimSpace(p[eq+1:]), HasDefault: true})
			} else {
				out = append(out, paramSlotText{Name: p})
			}
		}
	}
	return out
}

// forHeader splits "targets in iterable" into the loop targets and the
// iterable expression text.
func forHeader(s string) (targets []string, iterable string, ok bool) {
	idx := findTopLevelWord(s, "in")
	if idx < 0 {
		return nil, "", false
	}
	targetsText := strings.TrimSpace(s[:idx])
	targetsText = strings.Trim(targetsText, "()")
	iterable = strings.TrimSpace(s[idx+2:])
	targets = splitAndTrim(targetsText, ',')
	return targets, iterable, true
}

// findTopLevelWord finds the start index of word as a standalone token at
// nesting depth zero (used to locate the "in" keyword in a for-header).
func findTopLevelWord(s, word string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], word) {
			before := i == 0 || isWordBoundary(s[i-1])
			after := i+len(word) >= len(s) || isWordBoundary(s[i+len(word)])
			if before && after {
				return i
			}
		}
	}
	return -1
}

func isWordBoundary(c byte) bool {
	return !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'))
}

// setHeader splits "targets = expr" (or a bare "targets" with no
// assignment) for "#:set".
func setHeader(s string) (targets []string, expr string, hasExpr bool) {
	if eq := topLevelEquals(s); eq >= 0 {
		return splitAndTrim(s[:eq], ','), strings.TrimSpace(s[eq+1:]), true
	}
	return splitAndTrim(s, ','), "", false
}

// unquotePath strips a single layer of matching quotes from an #:include
// path argument, as the original accepts either bare or quoted paths.
func unquotePath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
