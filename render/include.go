package render

import (
	"github.com/sirupsen/logrus"

	"github.com/aradi/fypp/ast"
	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/env"
	"github.com/aradi/fypp/parser"
	"github.com/aradi/fypp/source"
)

// renderInclude resolves and renders an "#:include" directive's target
// file in place, pushing it onto the include stack for cycle detection
// (spec.md §5: a file may not recur on the active include stack) and
// restoring the enclosing file/line bookkeeping on return.
func (r *Renderer) renderInclude(node *ast.Include, e *env.Env) error {
	r.setLineVar(node.Loc)

	if r.cfg.Resolve == nil {
		return diag.At(diag.KindConfig, node.Loc, "no include resolver configured, cannot include %q", node.Path)
	}

	name, content, err := r.cfg.Resolve(node.Path, node.Loc.SourceName())
	if err != nil {
		return diag.Wrap(err, node.Loc, "including %q", node.Path)
	}

	if logger := r.cfg.Logger; logger != nil {
		logger.WithFields(logrus.Fields{
			"path": node.Path, "resolved": name, "from": node.Loc.SourceName(),
		}).Debug("resolved include")
	}

	for _, active := range r.includeStack {
		if active == name {
			return diag.At(diag.KindSemantic, node.Loc, "circular include: %q is already on the include stack", name)
		}
	}

	src := source.New(name, content)
	root, err := parser.Parse(src, r.cfg.Sigils)
	if err != nil {
		return err
	}

	savedFile, savedLine := r.curFile, r.nextLine
	r.includeStack = append(r.includeStack, name)
	r.bindFileVar(name)
	r.nextLine = 1
	// r.curFile is left as the including file's name so the first output
	// leaf inside the include naturally sees a file change and emits the
	// "entering new file" marker (flag 1 in gfortran5 format).
	r.pendingFlag = enteringFile

	err = r.renderNodes(root.Children, e)

	switchedIn := r.curFile == name
	r.includeStack = r.includeStack[:len(r.includeStack)-1]
	r.curFile, r.nextLine = savedFile, savedLine
	r.bindFileVar(savedFile)
	if switchedIn {
		// Force a "returning to file" marker on the next output leaf even
		// though the restored line may already agree with the running
		// cursor, since spec.md §4.4 requires a marker on every file
		// switch, not just on line-count drift.
		r.pendingFlag = returningToFile
		r.forceMarker = true
	}
	return err
}
