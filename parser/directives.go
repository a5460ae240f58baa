package parser

import (
	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/source"
	"github.com/aradi/fypp/token"
)

// handleDirective dispatches one LineDir/InlineDir token by its keyword,
// pushing/popping *stack as block openers and closers are encountered, and
// appending a finished ast.Node to the enclosing frame whenever a construct
// completes.
func handleDirective(stack *[]*ctx, tok token.Token) error {
	top := (*stack)[len(*stack)-1]

	switch tok.Keyword {
	case "if":
		*stack = append(*stack, &ctx{
			kind: ctxIf, inline: tok.Inline, start: tok.Span.Start,
			curCond: tok.Tail, curBranchStart: tok.Span.End,
		})
		return nil

	case "elif":
		if top.kind != ctxIf {
			return errMismatch(tok, "elif", "if")
		}
		closeIfBranch(top, tok.Span.Start)
		top.curCond = tok.Tail
		top.curBranchStart = tok.Span.End
		return nil

	case "else":
		if top.kind != ctxIf {
			return errMismatch(tok, "else", "if")
		}
		closeIfBranch(top, tok.Span.Start)
		top.curCond = ""
		top.curBranchStart = tok.Span.End
		return nil

	case "endif":
		if top.kind != ctxIf {
			return errMismatch(tok, "endif", "if")
		}
		if err := requireFormMatch(tok, top); err != nil {
			return err
		}
		closeIfBranch(top, tok.Span.Start)
		node := &ast.If{Branches: top.branches, Loc: source.NewSpan(top.start, tok.Span.End)}
		return popInto(stack, node)

	case "for":
		targets, iterable, ok := forHeader(tok.Tail)
		if !ok {
			return diag.At(diag.KindSyntax, tok, "malformed 'for' header: %q", tok.Tail)
		}
		*stack = append(*stack, &ctx{
			kind: ctxFor, inline: tok.Inline, start: tok.Span.Start,
			targets: targets, iterable: iterable,
		})
		return nil

	case "endfor":
		if top.kind != ctxFor {
			return errMismatch(tok, "endfor", "for")
		}
		if err := requireFormMatch(tok, top); err != nil {
			return err
		}
		node := &ast.For{Targets: top.targets, Iterable: top.iterable, Body: top.children, Loc: source.NewSpan(top.start, tok.Span.End)}
		return popInto(stack, node)

	case "def":
		name, paramsText, _ := splitCallHeader(tok.Tail)
		*stack = append(*stack, &ctx{
			kind: ctxDef, inline: tok.Inline, start: tok.Span.Start,
			name: name, params: buildParamSpec(paramsText),
		})
		return nil

	case "enddef":
		if top.kind != ctxDef {
			return errMismatch(tok, "enddef", "def")
		}
		if err := requireFormMatch(tok, top); err != nil {
			return err
		}
		node := &ast.Def{Name: top.name, Params: top.params, Body: top.children, Inline: top.inline, Loc: source.NewSpan(top.start, tok.Span.End)}
		return popInto(stack, node)

	case "call", "block":
		kind := ctxCall
		if tok.Keyword == "block" {
			kind = ctxBlock
		}
		name, argsText, hasParens := splitCallHeader(tok.Tail)
		var header []ast.ArgSlot
		if hasParens {
			for _, a := range parseArgList(argsText) {
				header = append(header, ast.ArgSlot{Keyword: a.Keyword, Expr: a.Expr, Loc: tok.Span})
			}
		}
		*stack = append(*stack, &ctx{
			kind: kind, inline: tok.Inline, start: tok.Span.Start,
			callee: name, headerArgs: header, curArgStart: tok.Span.End,
		})
		return nil

	case "nextarg":
		if top.kind != ctxCall {
			return errMismatch(tok, "nextarg", "call")
		}
		closeArgSlot(top, tok.Span.Start)
		top.curArgKeyword = tok.Tail
		top.curArgStart = tok.Span.End
		return nil

	case "contains":
		if top.kind != ctxBlock {
			return errMismatch(tok, "contains", "block")
		}
		closeArgSlot(top, tok.Span.Start)
		top.curArgKeyword = tok.Tail
		top.curArgStart = tok.Span.End
		return nil

	case "endcall":
		if top.kind != ctxCall {
			return errMismatch(tok, "endcall", "call")
		}
		if err := requireFormMatch(tok, top); err != nil {
			return err
		}
		closeArgSlot(top, tok.Span.Start)
		node := &ast.Call{Callee: top.callee, HeaderArgs: top.headerArgs, BodyArgs: top.bodyArgs, Inline: top.inline, Loc: source.NewSpan(top.start, tok.Span.End)}
		return popInto(stack, node)

	case "endblock":
		if top.kind != ctxBlock {
			return errMismatch(tok, "endblock", "block")
		}
		if err := requireFormMatch(tok, top); err != nil {
			return err
		}
		closeArgSlot(top, tok.Span.Start)
		node := &ast.Call{Callee: top.callee, HeaderArgs: top.headerArgs, BodyArgs: top.bodyArgs, Inline: top.inline, Loc: source.NewSpan(top.start, tok.Span.End)}
		return popInto(stack, node)

	case "mute":
		*stack = append(*stack, &ctx{kind: ctxMute, inline: tok.Inline, start: tok.Span.Start})
		return nil

	case "endmute":
		if top.kind != ctxMute {
			return errMismatch(tok, "endmute", "mute")
		}
		if err := requireFormMatch(tok, top); err != nil {
			return err
		}
		node := &ast.Mute{Body: top.children, Loc: source.NewSpan(top.start, tok.Span.End)}
		return popInto(stack, node)

	case "set":
		targets, expr, _ := setHeader(tok.Tail)
		top.append(&ast.Set{Targets: targets, Expr: expr, Loc: tok.Span})
		return nil

	case "del":
		top.append(&ast.Del{Names: nameList(tok.Tail), Loc: tok.Span})
		return nil

	case "global":
		top.append(&ast.Global{Names: nameList(tok.Tail), Loc: tok.Span})
		return nil

	case "include":
		top.append(&ast.Include{Path: unquotePath(tok.Tail), Loc: tok.Span})
		return nil

	case "stop":
		top.append(&ast.Stop{Expr: tok.Tail, Loc: tok.Span})
		return nil

	case "assert":
		top.append(&ast.Assert{Expr: tok.Tail, Loc: tok.Span})
		return nil
	}

	return diag.At(diag.KindSyntax, tok, "unknown directive '%s'", tok.Keyword)
}

func closeIfBranch(top *ctx, end source.Pos) {
	top.branches = append(top.branches, ast.Branch{
		Cond: top.curCond,
		Body: top.children,
		Loc:  source.NewSpan(top.curBranchStart, end),
	})
	top.children = nil
}

func closeArgSlot(top *ctx, end source.Pos) {
	top.bodyArgs = append(top.bodyArgs, ast.ArgSlot{
		Keyword: top.curArgKeyword,
		Body:    top.children,
		Loc:     source.NewSpan(top.curArgStart, end),
	})
	top.children = nil
	top.curArgKeyword = ""
}

func popInto(stack *[]*ctx, node ast.Node) error {
	*stack = (*stack)[:len(*stack)-1]
	parent := (*stack)[len(*stack)-1]
	parent.append(node)
	return nil
}

// requireFormMatch enforces spec.md §3's line/inline form consistency
// invariant: a block opened with a line-form directive must close with a
// line-form directive, and likewise for the inline form.
func requireFormMatch(closer token.Token, top *ctx) error {
	if closer.Inline != top.inline {
		return diag.At(diag.KindSyntax, closer, "closing directive form does not match its opener (line vs. inline)")
	}
	return nil
}

func errMismatch(tok token.Token, got, want string) error {
	return diag.At(diag.KindSyntax, tok, "'%s' without a matching '%s'", got, want)
}

func buildParamSpec(s string) ast.ParamSpec {
	var spec ast.ParamSpec
	for _, p := range parseParamList(s) {
		switch {
		case p.Varkw:
			spec.Varkw = p.Name
		case p.Varpos:
			spec.Varpos = p.Name
		case p.HasDefault:
			spec.Defaulted = append(spec.Defaulted, p.Name)
			spec.DefaultExprs = append(spec.DefaultExprs, p.Default)
		default:
			spec.Required = append(spec.Required, p.Name)
		}
	}
	return spec
}
