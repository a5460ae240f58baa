// Command fypp is the command-line front end for the preprocessor library
// (spec.md §6), binding its flag surface to fypp.Config with cobra+pflag and
// running fypp.ProcessFile/fypp.ProcessText over the requested input.
// Grounded on the original implementation's argparse-based option parser
// (original_source/src/fypp/cli.py, get_option_parser/run_fypp) for the flag
// names, defaults, and exit-code split between a user "#:stop"/"#:assert"
// outcome and an ordinary fatal error.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aradi/fypp/diag"
	"github.com/aradi/fypp/fypp"
)

// Exit codes mirror the original's USER_ERROR_EXIT_CODE / ERROR_EXIT_CODE
// split: a "#:stop"/"#:assert" outcome is the user's own program logic
// rejecting its input, distinct from a preprocessor-detected error.
const (
	exitOK        = 0
	exitUserError = 1
	exitFatal     = 2
)

type cliFlags struct {
	configPath        string
	defines           []string
	includes          []string
	lineNumbering     bool
	lineNumberingMode string
	lineMarkerFormat  string
	lineLength        int
	foldingMode       string
	noFolding         bool
	indentation       int
	fixedFormat       bool
	encoding          string
	createParents     bool
	fileVarRoot       string
	verbose           bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var flags cliFlags

	root := &cobra.Command{
		Use:           "fypp [infile] [outfile]",
		Short:         "Python-powered preprocessor for Fortran and other source text",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.Flags()
	fs.StringVar(&flags.configPath, "config", "", "load defaults from a YAML config file (flags still win)")
	fs.StringArrayVarP(&flags.defines, "define", "D", nil, "define VAR, or VAR=EXPR, as a preprocessor variable")
	fs.StringArrayVarP(&flags.includes, "include", "I", nil, "add DIR to the #:include search path")
	fs.BoolVarP(&flags.lineNumbering, "line-numbering", "n", false, "emit line markers so compiler diagnostics map back to the input")
	fs.StringVarP(&flags.lineNumberingMode, "line-numbering-mode", "N", "full", "line numbering mode: full|nocontlines")
	fs.StringVar(&flags.lineMarkerFormat, "line-marker-format", "cpp", "line marker format: cpp|gfortran5|std")
	fs.IntVarP(&flags.lineLength, "line-length", "l", 132, "maximum output line length")
	fs.StringVarP(&flags.foldingMode, "folding-mode", "f", "smart", "line folding mode: smart|simple|brute")
	fs.BoolVarP(&flags.noFolding, "no-folding", "F", false, "suppress line folding")
	fs.IntVar(&flags.indentation, "indentation", 4, "indentation for continuation lines")
	fs.BoolVar(&flags.fixedFormat, "fixed-format", false, "produce fixed-form Fortran output (ignores line-length/folding-mode/indentation)")
	fs.StringVar(&flags.encoding, "encoding", "utf-8", "character encoding for reading/writing files")
	fs.BoolVarP(&flags.createParents, "create-parents", "p", false, "create parent folders of the output file if missing")
	fs.StringVar(&flags.fileVarRoot, "file-var-root", "", "use paths relative to DIR in _FILE_/_THIS_FILE_")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "print debug trace of the rendering pipeline")

	root.RunE = func(cmd *cobra.Command, cmdArgs []string) error {
		cfg, err := buildConfig(&flags)
		if err != nil {
			return err
		}

		infile := "-"
		outfile := "-"
		if len(cmdArgs) > 0 {
			infile = cmdArgs[0]
		}
		if len(cmdArgs) > 1 {
			outfile = cmdArgs[1]
		}

		return process(cfg, infile, outfile, stdout)
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "fypp: "+diag.Chain(err))
		var de *diag.Error
		if errors.As(err, &de) && (de.Kind == diag.KindStop || de.Kind == diag.KindAssert) {
			return exitUserError
		}
		return exitFatal
	}
	return exitOK
}

// buildConfig merges an optional YAML config file (lowest precedence) with
// the parsed flags (always win) into a fypp.Config.
func buildConfig(flags *cliFlags) (*fypp.Config, error) {
	cfg := &fypp.Config{
		Defines:           map[string]string{},
		LineNumberingMode: fypp.LineNumberingFull,
		LineMarkerFormat:  fypp.LineMarkerCpp,
		LineLength:        132,
		FoldingMode:       fypp.FoldingSmart,
		Indentation:       "    ",
		Encoding:          "utf-8",
	}

	if flags.configPath != "" {
		fc, err := loadFileConfig(flags.configPath)
		if err != nil {
			return nil, diag.New(diag.KindConfig, "reading config file: %s", err)
		}
		applyFileConfig(cfg, fc)
	}

	for name, expr := range parseDefines(flags.defines) {
		cfg.Defines[name] = expr
	}
	if len(flags.includes) > 0 {
		cfg.Includes = flags.includes
	}
	if flags.lineNumbering {
		cfg.LineNumbering = true
	}
	mode, err := parseLineNumberingMode(flags.lineNumberingMode)
	if err != nil {
		return nil, err
	}
	cfg.LineNumberingMode = mode

	format, err := parseLineMarkerFormat(flags.lineMarkerFormat)
	if err != nil {
		return nil, err
	}
	cfg.LineMarkerFormat = format

	if flags.lineLength > 0 {
		cfg.LineLength = flags.lineLength
	}
	fm, err := parseFoldingMode(flags.foldingMode)
	if err != nil {
		return nil, err
	}
	cfg.FoldingMode = fm

	if flags.noFolding {
		cfg.NoFolding = true
	}
	if flags.indentation > 0 {
		cfg.Indentation = spaces(flags.indentation)
	}
	if flags.fixedFormat {
		cfg.FixedFormat = true
	}
	if flags.encoding != "" {
		cfg.Encoding = flags.encoding
	}
	if flags.createParents {
		cfg.CreateParentFolder = true
	}
	if flags.fileVarRoot != "" {
		cfg.FileVarRoot = flags.fileVarRoot
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if flags.verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	cfg.Logger = logger

	return cfg, nil
}

func applyFileConfig(cfg *fypp.Config, fc *fileConfig) {
	for name, expr := range fc.Defines {
		cfg.Defines[name] = expr
	}
	if len(fc.Includes) > 0 {
		cfg.Includes = fc.Includes
	}
	cfg.LineNumbering = fc.LineNumbering
	if fc.LineNumberingMode != "" {
		if mode, err := parseLineNumberingMode(fc.LineNumberingMode); err == nil {
			cfg.LineNumberingMode = mode
		}
	}
	if fc.LineMarkerFormat != "" {
		if format, err := parseLineMarkerFormat(fc.LineMarkerFormat); err == nil {
			cfg.LineMarkerFormat = format
		}
	}
	if fc.LineLength > 0 {
		cfg.LineLength = fc.LineLength
	}
	if fc.FoldingMode != "" {
		if fm, err := parseFoldingMode(fc.FoldingMode); err == nil {
			cfg.FoldingMode = fm
		}
	}
	cfg.NoFolding = fc.NoFolding
	if fc.Indentation > 0 {
		cfg.Indentation = spaces(fc.Indentation)
	}
	cfg.FixedFormat = fc.FixedFormat
	if fc.Encoding != "" {
		cfg.Encoding = fc.Encoding
	}
	cfg.CreateParentFolder = fc.CreateParents
	if fc.FileVarRoot != "" {
		cfg.FileVarRoot = fc.FileVarRoot
	}
}

// parseDefines splits each "-D" argument of the form "NAME", "NAME=EXPR"
// into a name/expression pair; a bare NAME binds None, matching the
// original's "set to None if omitted" behavior.
func parseDefines(defs []string) map[string]string {
	out := make(map[string]string, len(defs))
	for _, d := range defs {
		name, expr, hasValue := splitOnce(d, '=')
		if !hasValue {
			out[name] = ""
			continue
		}
		out[name] = expr
	}
	return out
}

func splitOnce(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func parseLineNumberingMode(s string) (fypp.LineNumberingMode, error) {
	switch s {
	case "full", "":
		return fypp.LineNumberingFull, nil
	case "nocontlines":
		return fypp.LineNumberingNoContLines, nil
	default:
		return 0, diag.New(diag.KindConfig, "invalid line-numbering-mode %q", s)
	}
}

func parseLineMarkerFormat(s string) (fypp.LineMarkerFormat, error) {
	switch s {
	case "cpp", "":
		return fypp.LineMarkerCpp, nil
	case "gfortran5":
		return fypp.LineMarkerGfortran5, nil
	case "std":
		return fypp.LineMarkerStd, nil
	default:
		return 0, diag.New(diag.KindConfig, "invalid line-marker-format %q", s)
	}
}

func parseFoldingMode(s string) (fypp.FoldingMode, error) {
	switch s {
	case "smart", "":
		return fypp.FoldingSmart, nil
	case "simple":
		return fypp.FoldingSimple, nil
	case "brute":
		return fypp.FoldingBrute, nil
	default:
		return 0, diag.New(diag.KindConfig, "invalid folding-mode %q", s)
	}
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func process(cfg *fypp.Config, infile, outfile string, stdout io.Writer) error {
	var input []byte
	var err error
	if infile == "-" {
		input, err = io.ReadAll(os.Stdin)
	} else {
		input, err = os.ReadFile(infile)
	}
	if err != nil {
		return diag.New(diag.KindConfig, "reading input: %s", err)
	}

	sourceName := infile
	if infile == "-" {
		sourceName = "<stdin>"
	}

	out, err := fypp.ProcessText(cfg, input, sourceName)
	if err != nil {
		return err
	}

	if outfile == "-" {
		_, err = stdout.Write(out)
		return err
	}

	if cfg.CreateParentFolder {
		if err := mkdirAllFor(outfile); err != nil {
			return diag.New(diag.KindConfig, "creating output directory: %s", err)
		}
	}
	return os.WriteFile(outfile, out, 0o644)
}

func mkdirAllFor(outfile string) error {
	dir := filepath.Dir(outfile)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
