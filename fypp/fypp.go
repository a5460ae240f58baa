// Package fypp is the preprocessor's driver: it wires the lexer, parser,
// evaluator and renderer packages together behind the two entry points
// described in spec.md §6, translating the public, CLI-facing Config into
// the renderer's internal configuration and running the fold stage over
// its output. Grounded on the teacher's top-level llx.go doc-comment
// package, which plays the same "explain the subpackage layout, expose the
// one thing callers need" role for the llx module as this file does here.
package fypp

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/aradi/fypp/fold"
	"github.com/aradi/fypp/lexer"
	"github.com/aradi/fypp/render"
	"github.com/aradi/fypp/source"
)

// LineNumberingMode re-exports render.LineNumberingMode so callers need not
// import the render package directly to build a Config.
type LineNumberingMode = render.LineNumberingMode

const (
	LineNumberingFull        = render.Full
	LineNumberingNoContLines = render.NoContLines
)

// LineMarkerFormat re-exports render.LineMarkerFormat.
type LineMarkerFormat = render.LineMarkerFormat

const (
	LineMarkerStd       = render.Std
	LineMarkerCpp       = render.Cpp
	LineMarkerGfortran5 = render.Gfortran5
)

// FoldingMode re-exports fold.Mode.
type FoldingMode = fold.Mode

const (
	FoldingBrute  = fold.Brute
	FoldingSimple = fold.Simple
	FoldingSmart  = fold.Smart
)

// Config is the library's single external configuration surface (spec.md
// §6).
type Config struct {
	Defines            map[string]string
	Includes           []string
	Modules            []string
	ModuleDirs         []string
	LineNumbering      bool
	LineNumberingMode  LineNumberingMode
	LineMarkerFormat   LineMarkerFormat
	LineLength         int
	FoldingMode        FoldingMode
	NoFolding          bool
	Indentation        string
	FixedFormat        bool
	Encoding           string
	CreateParentFolder bool
	FileVarRoot        string
	Logger             *logrus.Logger

	// DirectiveSigil/EvalSigil/CallSigil override the default '#'/'$'/'@'
	// sigil bytes; zero value means "use the default".
	DirectiveSigil byte
	EvalSigil      byte
	CallSigil      byte
}

func (c *Config) sigils() lexer.Sigils {
	s := lexer.DefaultSigils()
	if c.DirectiveSigil != 0 {
		s.Directive = c.DirectiveSigil
	}
	if c.EvalSigil != 0 {
		s.Eval = c.EvalSigil
	}
	if c.CallSigil != 0 {
		s.Call = c.CallSigil
	}
	return s
}

func (c *Config) indentWidth() int {
	if c.Indentation == "" {
		return 4
	}
	return len(c.Indentation)
}

// ProcessText preprocesses input (named sourceName for diagnostics and
// line markers) according to cfg and returns the resulting text.
func ProcessText(cfg *Config, input []byte, sourceName string) ([]byte, error) {
	rcfg := render.Config{
		Sigils:            cfg.sigils(),
		Defines:           cfg.Defines,
		LineNumbering:     cfg.LineNumbering,
		LineNumberingMode: cfg.LineNumberingMode,
		LineMarkerFormat:  cfg.LineMarkerFormat,
		FileVarRoot:       cfg.FileVarRoot,
		Resolve:           fileResolver(cfg),
		Logger:            cfg.Logger,
	}

	r := render.New(rcfg)
	src := source.New(sourceName, normalizeInput(input))
	out, err := r.Render(src)
	if err != nil {
		return nil, err
	}

	folded := fold.Lines(out, fold.Options{
		Mode:        cfg.FoldingMode,
		LineLength:  effectiveLineLength(cfg),
		Indentation: cfg.indentWidth(),
		FixedFormat: cfg.FixedFormat,
		Disabled:    cfg.NoFolding,
		NoContLines: cfg.LineNumberingMode == LineNumberingNoContLines,
	})
	return []byte(folded), nil
}

func effectiveLineLength(cfg *Config) int {
	if cfg.LineLength > 0 {
		return cfg.LineLength
	}
	return 132
}

func normalizeInput(input []byte) []byte {
	content := append([]byte(nil), input...)
	source.NormalizeNls(&content)
	return content
}

// fileResolver builds an IncludeResolver that searches the including
// file's directory and cfg.Includes, in that order, matching the original
// implementation's include-path precedence. An absolute path is taken as-is
// (spec.md §6) and never joined against those directories.
func fileResolver(cfg *Config) render.IncludeResolver {
	return func(path string, fromFile string) (string, []byte, error) {
		if filepath.IsAbs(path) {
			content, err := os.ReadFile(path)
			return path, content, err
		}

		candidates := []string{}
		if fromFile != "" && fromFile != source.Stdin {
			candidates = append(candidates, filepath.Join(filepath.Dir(fromFile), path))
		}
		for _, dir := range cfg.Includes {
			candidates = append(candidates, filepath.Join(dir, path))
		}
		candidates = append(candidates, path)

		var lastErr error
		for _, c := range candidates {
			content, err := os.ReadFile(c)
			if err == nil {
				return c, content, nil
			}
			lastErr = err
		}
		return "", nil, lastErr
	}
}

// ProcessFile preprocesses the file at inputPath and writes the result to
// outputPath (or to os.Stdout when outputPath is empty).
func ProcessFile(cfg *Config, inputPath, outputPath string) error {
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	out, err := ProcessText(cfg, input, inputPath)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}

	if cfg.CreateParentFolder {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outputPath, out, 0o644)
}
