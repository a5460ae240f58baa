package ast

import (
	"testing"

	"github.com/aradi/fypp/source"
)

func TestNodeSpanAccessors(t *testing.T) {
	src := source.New("f.f90", []byte("abcdef"))
	loc := source.NewSpan(source.NewPos(src, 0), source.NewPos(src, 3))

	nodes := []Node{
		&Root{Loc: loc},
		&Text{Payload: "abc", Loc: loc},
		&If{Loc: loc},
		&For{Loc: loc},
		&Def{Loc: loc},
		&Call{Loc: loc},
		&Set{Loc: loc},
		&Del{Loc: loc},
		&Global{Loc: loc},
		&Include{Loc: loc},
		&Mute{Loc: loc},
		&Eval{Loc: loc},
		&Stop{Loc: loc},
		&Assert{Loc: loc},
		&Comment{Loc: loc},
	}
	for _, n := range nodes {
		if n.Span() != loc {
			t.Errorf("%T.Span() = %+v, want %+v", n, n.Span(), loc)
		}
	}
}
