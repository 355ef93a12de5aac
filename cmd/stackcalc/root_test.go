package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command and returns what it wrote to stdout and
// stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("STACKCALC_CONFIG", "")
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEvalArgs(t *testing.T) {
	stdout, stderr, err := run(t, "", "3 + 5 * (2 - 8)", "(3 + 5) * 3.75", "3 - 5 + 1")
	require.NoError(t, err)
	assert.Equal(t, "-27\n30\n-1\n", stdout)
	assert.Empty(t, stderr)
}

func TestEvalFormat(t *testing.T) {
	stdout, _, err := run(t, "", "--fmt", "%.3f", "1 / 8")
	require.NoError(t, err)
	assert.Equal(t, "0.125\n", stdout)
}

func TestEvalErrors(t *testing.T) {
	stdout, stderr, err := run(t, "", "1 + 1", "3 / 0", "3 + (5 * 2")
	require.ErrorIs(t, err, errEvalFailed)
	assert.Contains(t, err.Error(), "2 of 3 expressions")
	assert.Equal(t, "2\n", stdout)
	assert.Equal(t,
		"division by zero: 3: division by zero\n"+
			"mismatched parentheses: 5: open parenthesis ( with no close parenthesis\n",
		stderr)
}

func TestEvalStdin(t *testing.T) {
	stdout, _, err := run(t, "3 +\n5 * 2\n")
	require.NoError(t, err)
	assert.Equal(t, "13\n", stdout)
}

func TestEvalLines(t *testing.T) {
	stdout, _, err := run(t, "3 + 5\n\n  2 * 3  \n9 / 3.0\n", "-n")
	require.NoError(t, err)
	assert.Equal(t, "8\n6\n3\n", stdout)
}

func TestEvalInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exprs.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 + 2\n2 * (3 + 4)\n"), 0o600))

	stdout, _, err := run(t, "", "--in", path, "-n", "10 - 4")
	require.NoError(t, err)
	assert.Equal(t, "6\n3\n14\n", stdout)

	_, _, err = run(t, "", "--in", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestEvalBig(t *testing.T) {
	stdout, _, err := run(t, "", "-p", "200", "--fmt", "%.0f", "123456789012345678901234567890 + 1")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567891\n", stdout)
}

func TestEvalTemplate(t *testing.T) {
	stdout, stderr, err := run(t, "",
		"--template", "{{#if ok}}{{expression}} = {{result}}{{else}}{{expression}}: {{kind}}{{/if}}",
		"2 * 3", "3 / 0")
	require.ErrorIs(t, err, errEvalFailed)
	assert.Equal(t, "2 * 3 = 6\n3 / 0: division by zero\n", stdout)
	assert.Empty(t, stderr)
}

func TestEvalMaxDepth(t *testing.T) {
	_, stderr, err := run(t, "", "--max-depth", "2", "(((1)))")
	require.ErrorIs(t, err, errEvalFailed)
	assert.Equal(t, "nesting too deep: 3: parentheses nested deeper than 2\n", stderr)
}

func TestEvalConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackcalc.toml")
	require.NoError(t, os.WriteFile(path, []byte("format = \"%.2f\"\n"), 0o600))

	stdout, _, err := run(t, "", "--config", path, "2 / 3")
	require.NoError(t, err)
	assert.Equal(t, "0.67\n", stdout)

	// Flags override the file.
	stdout, _, err = run(t, "", "--config", path, "--fmt", "%.1f", "2 / 3")
	require.NoError(t, err)
	assert.Equal(t, "0.7\n", stdout)
}

func TestEvalBadConfig(t *testing.T) {
	_, _, err := run(t, "", "--log-level", "loud", "1")
	assert.ErrorContains(t, err, "LOG_LEVEL")
	assert.NotErrorIs(t, err, errEvalFailed)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "stackcalc dev (built unknown)\n", stdout)
}
