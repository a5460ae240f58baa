// Package parser assembles the lexer's flat token stream into the ast.Node
// tree described by spec.md §4.2: a stack of open block contexts (if/for/
// def/call/block/mute), each accumulating child nodes until its matching
// closer token arrives. Grounded on the teacher's parser.ParseContext stack-
// of-contexts idiom (github.com/ava12/llx/parser/parser.go) — a linked
// stack of in-progress nonterminals threaded by pointer rather than
// rebuilt — adapted from llx's generic grammar-state stack to this spec's
// fixed, finite set of block shapes.
package parser

import (
	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/lexer"
	"github.com/aradi/fypp/source"
	"github.com/aradi/fypp/token"
)

type ctxKind int

const (
	ctxRoot ctxKind = iota
	ctxIf
	ctxFor
	ctxDef
	ctxCall
	ctxBlock
	ctxMute
)

func (k ctxKind) openKeyword() string {
	switch k {
	case ctxIf:
		return "if"
	case ctxFor:
		return "for"
	case ctxDef:
		return "def"
	case ctxCall:
		return "call"
	case ctxBlock:
		return "block"
	case ctxMute:
		return "mute"
	}
	return "root"
}

// ctx is one open block frame on the builder's stack.
type ctx struct {
	kind   ctxKind
	inline bool
	start  source.Pos
	children []ast.Node

	// if
	branches       []ast.Branch
	curCond        string
	curBranchStart source.Pos

	// for
	targets  []string
	iterable string

	// def
	name   string
	params ast.ParamSpec

	// call / block
	callee        string
	headerArgs    []ast.ArgSlot
	bodyArgs      []ast.ArgSlot
	curArgKeyword string
	curArgStart   source.Pos
}

func (c *ctx) append(n ast.Node) {
	c.children = append(c.children, n)
}

// Parse tokenizes src with a Lexer configured for sig and builds its parse
// tree.
func Parse(src *source.Source, sig lexer.Sigils) (*ast.Root, error) {
	lx := lexer.New(sig)
	cur := lexer.NewCursor(src)

	root := &ctx{kind: ctxRoot, start: source.NewPos(src, 0)}
	stack := []*ctx{root}

	for {
		tok, err := lx.Next(cur)
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF {
			if len(stack) != 1 {
				open := stack[len(stack)-1]
				return nil, diag.At(diag.KindSyntax, tok, "unexpected end of input: unclosed '%s' block", open.kind.openKeyword())
			}
			break
		}

		top := stack[len(stack)-1]
		switch tok.Kind {
		case token.Text:
			top.append(&ast.Text{Payload: tok.Tail, Loc: tok.Span})
		case token.Comment:
			top.append(&ast.Comment{Loc: tok.Span})
		case token.ExprSub:
			top.append(&ast.Eval{Expr: tok.Tail, Inline: true, Loc: tok.Span})
		case token.LineEval:
			top.append(&ast.Eval{Expr: tok.Tail, Inline: false, Loc: tok.Span})
		case token.DirectCall:
			node, err := buildDirectCall(tok)
			if err != nil {
				return nil, err
			}
			top.append(node)
		case token.LineDir, token.InlineDir:
			if err := handleDirective(&stack, tok); err != nil {
				return nil, err
			}
		default:
			return nil, diag.At(diag.KindSyntax, tok, "unexpected token kind %s", tok.Kind)
		}
	}

	return &ast.Root{Children: root.children, Loc: source.NewSpan(root.start, root.start)}, nil
}

func buildDirectCall(tok token.Token) (*ast.Call, error) {
	name, argsText, hasParens := splitCallHeader(tok.Tail)
	var slots []ast.ArgSlot
	if hasParens {
		for _, a := range parseArgList(argsText) {
			slots = append(slots, ast.ArgSlot{Keyword: a.Keyword, Expr: a.Expr, Loc: tok.Span})
		}
	}
	return &ast.Call{Callee: name, HeaderArgs: slots, Inline: tok.Inline, Direct: true, Loc: tok.Span}, nil
}
