package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/xport/xporttest"
)

// result captures one CLI invocation.
type result struct {
	code   int
	stdout string
	stderr string
}

func execute(args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// writeXPT writes a valid two-row transport file.
func writeXPT(t *testing.T, path string) {
	t.Helper()
	err := xporttest.New("CLASS",
		xporttest.Var{Name: "NAME", Char: true, Length: 8},
		xporttest.Var{Name: "AGE"},
	).
		Row("Alfred", 14).
		Row("Alice", 13).
		WriteFile(path)
	require.NoError(t, err)
}

// writeCorrupt writes a file with a source extension that cannot be read.
func writeCorrupt(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("corrupt!", 64)), 0o644))
}

// mixedDir holds a_good.xpt, b_bad.xpt and c_good.xpt plus a text file.
func mixedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeXPT(t, filepath.Join(dir, "a_good.xpt"))
	writeCorrupt(t, filepath.Join(dir, "b_bad.xpt"))
	writeXPT(t, filepath.Join(dir, "c_good.xpt"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))
	return dir
}

// =============================================================================
// VERSION
// =============================================================================

func TestVersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-v"} {
		got := execute(flag)

		assert.Equal(t, 0, got.code, flag)
		assert.Equal(t, "1.0.0\n", got.stdout, flag)
		assert.Empty(t, got.stderr, flag)
	}
}

func TestVersionCommand(t *testing.T) {
	got := execute("version")

	assert.Equal(t, 0, got.code)
	assert.Contains(t, got.stdout, "Version:    1.0.0\n")
	assert.Contains(t, got.stdout, "Go Version: go")
}

// =============================================================================
// SINGLE FILE COMMANDS
// =============================================================================

func TestToCSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "class.xpt")
	dest := filepath.Join(dir, "class.csv")
	writeXPT(t, src)

	got := execute("to-csv", src, dest)

	require.Equal(t, 0, got.code, got.stderr)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "NAME,AGE\nAlfred,14\nAlice,13\n", string(data))
}

func TestToCommands_InvalidSourceExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "class.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n"), 0o644))

	for _, command := range []string{"to-csv", "to-excel", "to-json", "to-xml", "to-parquet"} {
		dest := filepath.Join(dir, "out.any")

		got := execute(command, src, dest)

		assert.Equal(t, 1, got.code, command)
		assert.Equal(t, "File must be either a sas7bdat file or a xpt file\n", got.stdout, command)
		assert.NoFileExists(t, dest, command)
	}
}

func TestToCommands_InvalidDestinationExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "class.xpt")
	writeXPT(t, src)

	tests := map[string]string{
		"to-csv":     "The export file must be a csv file\n",
		"to-excel":   "The export file must be a xlsx file\n",
		"to-json":    "The export file must be a json file\n",
		"to-xml":     "The export file must be a XML file\n",
		"to-parquet": "The export file must be a parquet file\n",
	}

	for command, message := range tests {
		dest := filepath.Join(dir, "out.txt")

		got := execute(command, src, dest)

		assert.Equal(t, 1, got.code, command)
		assert.Equal(t, message, got.stdout, command)
		assert.NoFileExists(t, dest, command)
	}
}

func TestToJSON_CorruptSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.xpt")
	dest := filepath.Join(dir, "bad.json")
	writeCorrupt(t, src)

	got := execute("to-json", src, dest)

	assert.Equal(t, 1, got.code)
	assert.Contains(t, got.stderr, "Error: failed to convert bad.xpt")
	assert.NoFileExists(t, dest)
}

func TestToCSV_WrongArgumentCount(t *testing.T) {
	got := execute("to-csv", "only-one.xpt")

	assert.Equal(t, 1, got.code)
	assert.Contains(t, got.stderr, "Error: accepts 2 arg(s), received 1")
}

func TestUnknownCommand(t *testing.T) {
	got := execute("to-yaml", "a.xpt", "a.yaml")

	assert.Equal(t, 1, got.code)
	assert.Contains(t, got.stderr, "unknown command")
}

// =============================================================================
// DIRECTORY COMMANDS
// =============================================================================

func TestDirCommand_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	got := execute("dir-to-csv", missing)

	assert.Equal(t, 1, got.code)
	assert.Equal(t, "Directory '"+missing+"' does not exist.\n", got.stdout)
}

func TestDirCommand_FailFast(t *testing.T) {
	dir := mixedDir(t)
	out := t.TempDir()

	got := execute("dir-to-csv", dir, "-o", out)

	assert.Equal(t, 1, got.code)
	assert.Contains(t, got.stderr, "Error: failed to convert b_bad.xpt")
	assert.FileExists(t, filepath.Join(out, "a_good.csv"))
	assert.NoFileExists(t, filepath.Join(out, "b_bad.csv"))
	assert.NoFileExists(t, filepath.Join(out, "c_good.csv"))
}

func TestDirCommand_ContinueOnError(t *testing.T) {
	dir := mixedDir(t)
	out := filepath.Join(t.TempDir(), "new", "out")

	got := execute("dir-to-json", dir, "--output-dir", out, "-c", "-v")

	assert.Equal(t, 0, got.code, got.stderr)
	assert.FileExists(t, filepath.Join(out, "a_good.json"))
	assert.FileExists(t, filepath.Join(out, "c_good.json"))
	assert.NoFileExists(t, filepath.Join(out, "b_bad.json"))
	assert.Contains(t, got.stdout, "Converted a_good.xpt -> a_good.json (2 rows)\n")
	assert.Contains(t, got.stdout, "Failed b_bad.xpt: ")
	assert.Contains(t, got.stdout, "Converted 2 of 3 file(s), 1 failed\n")
}

func TestDirCommand_DefaultsToSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writeXPT(t, filepath.Join(dir, "class.xpt"))

	got := execute("dir-to-xml", dir)

	assert.Equal(t, 0, got.code, got.stderr)
	assert.FileExists(t, filepath.Join(dir, "class.xml"))
	assert.FileExists(t, filepath.Join(dir, "class.xpt"))
}

func TestDirCommand_QuietWithoutVerbose(t *testing.T) {
	dir := t.TempDir()
	writeXPT(t, filepath.Join(dir, "a.xpt"))
	writeXPT(t, filepath.Join(dir, "b.xpt"))
	writeCorrupt(t, filepath.Join(dir, "c.xpt"))

	got := execute("dir-to-csv", dir, "-o", t.TempDir(), "-c")

	assert.Equal(t, 0, got.code)
	assert.Empty(t, got.stdout)
	assert.Empty(t, got.stderr)
}

func TestToCSV_Quiet(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "class.xpt")
	writeXPT(t, src)

	got := execute("to-csv", src, filepath.Join(dir, "class.csv"))

	assert.Equal(t, 0, got.code)
	assert.Empty(t, got.stdout)
	assert.Empty(t, got.stderr)
}

func TestDirCommand_FailOnPartial(t *testing.T) {
	dir := mixedDir(t)

	got := execute("dir-to-parquet", dir, "-o", t.TempDir(), "-c", "--fail-on-partial")

	assert.Equal(t, 2, got.code)
	assert.Contains(t, got.stderr, "Error: "+converter.ErrPartialFailure.Error())
}

func TestDirCommand_Report(t *testing.T) {
	dir := mixedDir(t)
	report := filepath.Join(t.TempDir(), "report.yaml")

	got := execute("dir-to-excel", dir, "-o", t.TempDir(), "--report", report)

	// The batch aborts on b_bad.xpt, the report is still written.
	assert.Equal(t, 1, got.code)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var parsed converter.Report
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, "excel", parsed.Format)
	assert.True(t, parsed.Aborted)
	assert.Equal(t, 3, parsed.Discovered)
	assert.Equal(t, 1, parsed.Succeeded)
	assert.Equal(t, 1, parsed.Failed)
	assert.NotEmpty(t, parsed.RunID)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestConfigFile_SetsDefaultsAndFlagsOverride(t *testing.T) {
	dir := mixedDir(t)
	cfgPath := filepath.Join(t.TempDir(), "converter.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("continue_on_error: true\nexport:\n  csv_delimiter: \";\"\n"), 0o644))

	out := t.TempDir()
	got := execute("--config", cfgPath, "dir-to-csv", dir, "-o", out)

	assert.Equal(t, 0, got.code, got.stderr)
	data, err := os.ReadFile(filepath.Join(out, "a_good.csv"))
	require.NoError(t, err)
	assert.Equal(t, "NAME;AGE\nAlfred;14\nAlice;13\n", string(data))

	out = t.TempDir()
	got = execute("--config", cfgPath, "dir-to-csv", dir, "-o", out, "--continue-on-error=false")

	assert.Equal(t, 1, got.code)
	assert.NoFileExists(t, filepath.Join(out, "c_good.csv"))
}

func TestConfigFile_MissingExplicitFile(t *testing.T) {
	dir := t.TempDir()

	got := execute("--config", filepath.Join(dir, "absent.yaml"), "dir-to-csv", dir)

	assert.Equal(t, 1, got.code)
	assert.Contains(t, got.stderr, "Error: failed to read config file")
}

func TestLogLevelFlag(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "class.xpt")
	writeXPT(t, src)

	got := execute("--log-level", "debug", "to-xml", src, filepath.Join(dir, "class.xml"))

	assert.Equal(t, 0, got.code, got.stderr)
	assert.Contains(t, got.stderr, "reading source")

	got = execute("--log-level", "loud", "to-xml", src, filepath.Join(dir, "class.xml"))
	assert.Equal(t, 1, got.code)
	assert.Contains(t, got.stderr, "failed to parse log level")
}
