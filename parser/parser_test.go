package parser

import (
	"testing"

	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/lexer"
	"github.com/aradi/fypp/source"
)

func mustParse(t *testing.T, text string) *ast.Root {
	t.Helper()
	src := source.New("t.f90", []byte(text))
	root, err := Parse(src, lexer.DefaultSigils())
	if err != nil {
		t.Fatalf("Parse(%q) error: %s", text, err)
	}
	return root
}

func TestParseIfElifElse(t *testing.T) {
	root := mustParse(t, "#:if a\nA\n#:elif b\nB\n#:else\nC\n#:endif\n")
	if len(root.Children) != 1 {
		t.Fatalf("expected one top-level node, got %d", len(root.Children))
	}
	ifNode, ok := root.Children[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", root.Children[0])
	}
	if len(ifNode.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(ifNode.Branches))
	}
	if ifNode.Branches[0].Cond != "a" || ifNode.Branches[1].Cond != "b" || ifNode.Branches[2].Cond != "" {
		t.Errorf("unexpected branch conditions: %+v", ifNode.Branches)
	}
}

func TestParseForLoop(t *testing.T) {
	root := mustParse(t, "#:for i in range(3)\nx\n#:endfor\n")
	forNode, ok := root.Children[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", root.Children[0])
	}
	if len(forNode.Targets) != 1 || forNode.Targets[0] != "i" {
		t.Errorf("unexpected targets: %+v", forNode.Targets)
	}
	if forNode.Iterable != "range(3)" {
		t.Errorf("unexpected iterable: %q", forNode.Iterable)
	}
}

func TestParseForTupleUnpack(t *testing.T) {
	root := mustParse(t, "#:for k, v in items\nx\n#:endfor\n")
	forNode := root.Children[0].(*ast.For)
	if len(forNode.Targets) != 2 || forNode.Targets[0] != "k" || forNode.Targets[1] != "v" {
		t.Errorf("unexpected targets: %+v", forNode.Targets)
	}
}

func TestParseDefWithParams(t *testing.T) {
	root := mustParse(t, "#:def greet(name, greeting='hi')\nbody\n#:enddef\n")
	def := root.Children[0].(*ast.Def)
	if def.Name != "greet" {
		t.Errorf("Name = %q", def.Name)
	}
	if len(def.Params.Required) != 1 || def.Params.Required[0] != "name" {
		t.Errorf("Required = %+v", def.Params.Required)
	}
	if len(def.Params.Defaulted) != 1 || def.Params.Defaulted[0] != "greeting" {
		t.Errorf("Defaulted = %+v", def.Params.Defaulted)
	}
}

func TestParseCallWithBodyArgs(t *testing.T) {
	root := mustParse(t, "#:call wrap(1)\nfirst body\n#:nextarg\nsecond body\n#:endcall\n")
	call := root.Children[0].(*ast.Call)
	if call.Callee != "wrap" {
		t.Errorf("Callee = %q", call.Callee)
	}
	if len(call.HeaderArgs) != 1 {
		t.Fatalf("expected 1 header arg, got %d", len(call.HeaderArgs))
	}
	if len(call.BodyArgs) != 2 {
		t.Fatalf("expected 2 body args, got %d", len(call.BodyArgs))
	}
}

func TestParseBlockWithContains(t *testing.T) {
	root := mustParse(t, "#:block section(title='x')\nbody\n#:contains sub\nnested\n#:endblock\n")
	call := root.Children[0].(*ast.Call)
	if call.Callee != "section" {
		t.Errorf("Callee = %q", call.Callee)
	}
	if len(call.BodyArgs) != 2 || call.BodyArgs[1].Keyword != "sub" {
		t.Errorf("unexpected body args: %+v", call.BodyArgs)
	}
}

func TestParseMute(t *testing.T) {
	root := mustParse(t, "#:mute\nhidden\n#:endmute\n")
	mute := root.Children[0].(*ast.Mute)
	if len(mute.Body) == 0 {
		t.Error("mute body should not be empty")
	}
}

func TestParseSetDelGlobalIncludeStopAssert(t *testing.T) {
	root := mustParse(t, "#:set x = 1\n#:del x\n#:global y\n#:include 'a.fpp'\n#:stop 'bye'\n#:assert 1 == 1\n")
	if _, ok := root.Children[0].(*ast.Set); !ok {
		t.Errorf("child[0] = %T, want *ast.Set", root.Children[0])
	}
	if _, ok := root.Children[1].(*ast.Del); !ok {
		t.Errorf("child[1] = %T, want *ast.Del", root.Children[1])
	}
	if _, ok := root.Children[2].(*ast.Global); !ok {
		t.Errorf("child[2] = %T, want *ast.Global", root.Children[2])
	}
	inc, ok := root.Children[3].(*ast.Include)
	if !ok || inc.Path != "a.fpp" {
		t.Errorf("child[3] = %+v, want include of a.fpp", root.Children[3])
	}
	if _, ok := root.Children[4].(*ast.Stop); !ok {
		t.Errorf("child[4] = %T, want *ast.Stop", root.Children[4])
	}
	if _, ok := root.Children[5].(*ast.Assert); !ok {
		t.Errorf("child[5] = %T, want *ast.Assert", root.Children[5])
	}
}

func TestParseDirectCall(t *testing.T) {
	root := mustParse(t, "@:echo(1, 2)\n")
	call := root.Children[0].(*ast.Call)
	if !call.Direct || call.Callee != "echo" {
		t.Errorf("unexpected direct call node: %+v", call)
	}
	if len(call.HeaderArgs) != 2 {
		t.Errorf("expected 2 header args, got %d", len(call.HeaderArgs))
	}
}

func TestParseUnclosedBlockErrors(t *testing.T) {
	src := source.New("t.f90", []byte("#:if a\nbody\n"))
	if _, err := Parse(src, lexer.DefaultSigils()); err == nil {
		t.Error("expected an error for an unclosed 'if' block")
	}
}

func TestParseMismatchedCloserErrors(t *testing.T) {
	src := source.New("t.f90", []byte("#:if a\nbody\n#:endfor\n"))
	if _, err := Parse(src, lexer.DefaultSigils()); err == nil {
		t.Error("expected an error for a mismatched closer")
	}
}

func TestParseFormMismatchErrors(t *testing.T) {
	src := source.New("t.f90", []byte("#:if a\nbody\n#{endif}#"))
	if _, err := Parse(src, lexer.DefaultSigils()); err == nil {
		t.Error("expected an error when an inline closer ends a line-form opener")
	}
}
