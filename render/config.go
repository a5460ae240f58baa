package render

import (
	"github.com/sirupsen/logrus"

	"github.com/aradi/fypp/lexer"
)

// LineNumberingMode selects how aggressively line markers are emitted when
// line numbering is enabled (spec.md §4.4).
type LineNumberingMode int

const (
	// Full emits a marker after every directive that could desynchronize
	// the output line count from the input line count, including ones
	// introduced purely by continuation splicing.
	Full LineNumberingMode = iota
	// NoContLines emits no marker for a drift of exactly one line (such as
	// one "&"-spliced continuation line or one removed comment line); any
	// other drift, or a file change, still emits one.
	NoContLines
)

// LineMarkerFormat selects the textual form of an emitted line marker.
type LineMarkerFormat int

const (
	// Std emits the GNU standard preprocessor form: `#line <line> "<file>"`.
	Std LineMarkerFormat = iota
	// Cpp emits GCC cpp's own marker, with no flag field:
	// `# <line> "<file>"`.
	Cpp
	// Gfortran5 emits gfortran's marker variant with an optional trailing
	// flag: `# <line> "<file>"[ <flag>]`, where flag is 1 when entering a
	// new file and 2 when returning to an enclosing one.
	Gfortran5
)

// IncludeResolver resolves an "#:include" path against the current file's
// directory and any configured include directories, returning the file's
// content. Kept as an injectable function (rather than a hardcoded
// os.ReadFile call) so tests can exercise include handling against an
// in-memory fixture set without touching the filesystem.
type IncludeResolver func(path string, fromFile string) (name string, content []byte, err error)

// Config holds the renderer's behavioral knobs. fypp.Config (the public,
// CLI-facing configuration struct) is translated into this shape by the
// driver package.
type Config struct {
	Sigils  lexer.Sigils
	// Defines holds "-D name=expr"-style predefined variables as raw,
	// unevaluated expression source text (an empty expr binds None,
	// matching a bare "-Dname" with no value), evaluated against the
	// global scope in map-iteration order before rendering begins.
	Defines           map[string]string
	LineNumbering     bool
	LineNumberingMode LineNumberingMode
	LineMarkerFormat  LineMarkerFormat
	FileVarRoot       string
	Resolve           IncludeResolver
	Logger            *logrus.Logger
}
