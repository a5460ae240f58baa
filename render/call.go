package render

import (
	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/env"
	"github.com/aradi/fypp/eval"
)

// renderCall handles an ast.Call node: "#:call"/"#:block" (header
// arguments are evaluated expressions unless the call is Direct, body
// arguments are nested node sequences rendered to a string each) and the
// "@:"/"@{...}@" direct-call shorthand (all arguments are raw literal
// text, never evaluated). The resolved callable's return value is
// rendered into the output as text.
func (r *Renderer) renderCall(node *ast.Call, e *env.Env) error {
	r.setLineVar(node.Loc)

	callee, ok := e.Get(node.Callee)
	if !ok {
		return diag.At(diag.KindSemantic, node.Loc, "name '%s' is not defined", node.Callee)
	}
	fn, ok := callee.(eval.Callable)
	if !ok {
		return diag.At(diag.KindSemantic, node.Loc, "'%s' is not callable", node.Callee)
	}

	var args []eval.Value
	kwargs := map[string]eval.Value{}

	for _, slot := range node.HeaderArgs {
		var v eval.Value
		if node.Direct {
			v = slot.Expr
		} else {
			var err error
			v, err = eval.EvalString(slot.Expr, e)
			if err != nil {
				return diag.At(diag.KindEval, node.Loc, "argument to '%s': %s", node.Callee, err)
			}
		}
		if slot.Keyword != "" {
			kwargs[slot.Keyword] = v
		} else {
			args = append(args, v)
		}
	}

	for _, slot := range node.BodyArgs {
		s, err := r.renderBodyToString(slot.Body, e)
		if err != nil {
			return err
		}
		if slot.Keyword != "" {
			kwargs[slot.Keyword] = s
		} else {
			args = append(args, s)
		}
	}

	result, err := fn.Call(args, kwargs)
	if err != nil {
		return diag.Wrap(err, node.Loc, "calling '%s'", node.Callee)
	}

	r.emitLeaf(node.Loc)
	r.write(eval.ToString(result))
	return nil
}
