package render

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/env"
	"github.com/aradi/fypp/eval"
)

// Macro is a user-defined "#:def name(...) ... #:enddef" callable. It
// implements eval.Callable so it can be invoked both from "${name(...)}$"
// expression syntax and from "#:call"/"@:" call nodes. A Macro closes over
// defEnv by reference (not a snapshot) per spec.md §9's closure-semantics
// design note: later mutations to variables visible at the definition site
// are observed by the macro body on its next invocation.
type Macro struct {
	Def     *ast.Def
	DefEnv  *env.Env
	Render  *Renderer
}

// Call renders the macro body against a fresh child scope holding the bound
// parameters. While the body renders, _LINE_/_FILE_ stay frozen at the
// invocation site and _THIS_LINE_/_THIS_FILE_ track the macro's own defining
// position (spec.md §4.4), restored to their prior values on return so a
// caller resumes with its own position intact.
func (m *Macro) Call(args []eval.Value, kwargs map[string]eval.Value) (eval.Value, error) {
	local := m.DefEnv.Child()
	if err := bindParams(m.Def.Name, m.Def.Params, args, kwargs, local); err != nil {
		return nil, err
	}

	r := m.Render
	if logger := r.cfg.Logger; logger != nil {
		logger.WithFields(logrus.Fields{
			"macro": m.Def.Name,
			"depth": r.macroDepth + 1,
			"at":    m.Def.Loc.SourceName(),
			"line":  m.Def.Loc.Line(),
		}).Debug("entering macro call")
	}

	savedThisLine, hadThisLine := r.global.Get("_THIS_LINE_")
	savedThisFile, hadThisFile := r.global.Get("_THIS_FILE_")
	r.macroDepth++
	r.global.Define("_THIS_LINE_", int64(m.Def.Loc.Line()))
	r.global.Define("_THIS_FILE_", r.fileVarValue(m.Def.Loc.SourceName()))

	out, err := r.renderBodyToString(m.Def.Body, local)

	r.macroDepth--
	if hadThisLine {
		r.global.Define("_THIS_LINE_", savedThisLine)
	} else {
		r.global.Delete("_THIS_LINE_")
	}
	if hadThisFile {
		r.global.Define("_THIS_FILE_", savedThisFile)
	} else {
		r.global.Delete("_THIS_FILE_")
	}

	if logger := r.cfg.Logger; logger != nil {
		logger.WithField("macro", m.Def.Name).Debug("leaving macro call")
	}
	return out, err
}

// bindParams binds positional/keyword call arguments into local per the
// macro's formal parameter spec: required names first, then defaulted
// names (falling back to their default expression, evaluated in local so
// defaults may reference earlier parameters), then an optional variadic-
// positional and variadic-keyword catch-all.
func bindParams(name string, spec ast.ParamSpec, args []eval.Value, kwargs map[string]eval.Value, local *env.Env) error {
	named := append(append([]string{}, spec.Required...), spec.Defaulted...)

	i := 0
	for ; i < len(spec.Required); i++ {
		if i >= len(args) {
			if v, ok := kwargs[spec.Required[i]]; ok {
				local.Define(spec.Required[i], v)
				continue
			}
			return fmt.Errorf("macro '%s' missing required argument '%s'", name, spec.Required[i])
		}
		local.Define(spec.Required[i], args[i])
	}

	for j, pname := range spec.Defaulted {
		idx := len(spec.Required) + j
		switch {
		case idx < len(args):
			local.Define(pname, args[idx])
		default:
			if v, ok := kwargs[pname]; ok {
				local.Define(pname, v)
				continue
			}
			v, err := eval.EvalString(spec.DefaultExprs[j], local)
			if err != nil {
				return fmt.Errorf("macro '%s': evaluating default for '%s': %w", name, pname, err)
			}
			local.Define(pname, v)
		}
	}

	extraPos := args[minInt(len(args), len(named)):]
	if spec.Varpos != "" {
		local.Define(spec.Varpos, &eval.Tuple{Items: append([]eval.Value{}, extraPos...)})
	} else if len(extraPos) > 0 {
		return fmt.Errorf("macro '%s' takes at most %d positional arguments, got %d", name, len(named), len(args))
	}

	usedKw := map[string]bool{}
	for _, n := range named {
		usedKw[n] = true
	}
	if spec.Varkw != "" {
		d := eval.NewDict()
		for k, v := range kwargs {
			if !usedKw[k] {
				d.Set(k, v)
			}
		}
		local.Define(spec.Varkw, d)
	} else {
		for k := range kwargs {
			if !usedKw[k] {
				return fmt.Errorf("macro '%s' got an unexpected keyword argument '%s'", name, k)
			}
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
