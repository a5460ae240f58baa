package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aradi/fypp/fypp"
)

func TestParseDefinesBareNameBindsEmptyString(t *testing.T) {
	got := parseDefines([]string{"FLAG", "N=6*7"})
	require.Equal(t, map[string]string{"FLAG": "", "N": "6*7"}, got)
}

func TestSplitOnceFindsFirstSeparator(t *testing.T) {
	before, after, found := splitOnce("a=b=c", '=')
	require.True(t, found)
	require.Equal(t, "a", before)
	require.Equal(t, "b=c", after)

	_, _, found = splitOnce("noequals", '=')
	require.False(t, found)
}

func TestParseLineNumberingModeValidAndInvalid(t *testing.T) {
	mode, err := parseLineNumberingMode("nocontlines")
	require.NoError(t, err)
	require.Equal(t, fypp.LineNumberingNoContLines, mode)

	_, err = parseLineNumberingMode("bogus")
	require.Error(t, err)
}

func TestParseLineMarkerFormatValidAndInvalid(t *testing.T) {
	format, err := parseLineMarkerFormat("gfortran5")
	require.NoError(t, err)
	require.Equal(t, fypp.LineMarkerGfortran5, format)

	_, err = parseLineMarkerFormat("bogus")
	require.Error(t, err)
}

func TestParseFoldingModeValidAndInvalid(t *testing.T) {
	mode, err := parseFoldingMode("brute")
	require.NoError(t, err)
	require.Equal(t, fypp.FoldingBrute, mode)

	_, err = parseFoldingMode("bogus")
	require.Error(t, err)
}

func TestSpacesBuildsIndentString(t *testing.T) {
	require.Equal(t, "   ", spaces(3))
	require.Equal(t, "", spaces(0))
}

func TestMkdirAllForCreatesMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "out.f90")
	require.NoError(t, mkdirAllFor(target))
	info, err := os.Stat(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestMkdirAllForNoopOnBareFilename(t *testing.T) {
	require.NoError(t, mkdirAllFor("out.f90"))
}

func TestBuildConfigDefaultsMatchOriginalCli(t *testing.T) {
	cfg, err := buildConfig(&cliFlags{
		lineNumberingMode: "full",
		lineMarkerFormat:  "cpp",
		lineLength:        132,
		foldingMode:       "smart",
		indentation:       4,
		encoding:          "utf-8",
	})
	require.NoError(t, err)
	require.Equal(t, fypp.LineNumberingFull, cfg.LineNumberingMode)
	require.Equal(t, fypp.LineMarkerCpp, cfg.LineMarkerFormat)
	require.Equal(t, 132, cfg.LineLength)
	require.Equal(t, fypp.FoldingSmart, cfg.FoldingMode)
	require.Equal(t, "    ", cfg.Indentation)
	require.False(t, cfg.NoFolding)
	require.False(t, cfg.FixedFormat)
}

func TestBuildConfigFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fypp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("line-length: 200\nfolding-mode: brute\n"), 0o644))

	cfg, err := buildConfig(&cliFlags{
		configPath:        path,
		lineNumberingMode: "full",
		lineMarkerFormat:  "cpp",
		lineLength:        80, // explicit flag value wins over the file's 200
		foldingMode:       "smart",
		indentation:       4,
		encoding:          "utf-8",
	})
	require.NoError(t, err)
	require.Equal(t, 80, cfg.LineLength)
	require.Equal(t, fypp.FoldingSmart, cfg.FoldingMode)
}

func TestBuildConfigRejectsInvalidFoldingMode(t *testing.T) {
	_, err := buildConfig(&cliFlags{
		lineNumberingMode: "full",
		lineMarkerFormat:  "cpp",
		foldingMode:       "bogus",
	})
	require.Error(t, err)
}

func TestRunProcessesInputFileToOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.f90")
	out := filepath.Join(dir, "out.f90")
	require.NoError(t, os.WriteFile(in, []byte("x = ${1 + 1}$\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{in, out}, &stdout, &stderr)
	require.Equal(t, exitOK, code)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "x = 2\n", string(got))
}

func TestRunMapsAssertFailureToUserErrorExitCode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.f90")
	require.NoError(t, os.WriteFile(in, []byte("#:assert False\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{in, "-"}, &stdout, &stderr)
	require.Equal(t, exitUserError, code)
	require.NotEmpty(t, stderr.String())
}

func TestRunMapsConfigErrorToFatalExitCode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.f90")
	require.NoError(t, os.WriteFile(in, []byte("x\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--folding-mode", "bogus", in, "-"}, &stdout, &stderr)
	require.Equal(t, exitFatal, code)
}
