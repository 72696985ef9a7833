package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/errors"
)

// run executes the command tree with an empty config file
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "forcegraph.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[render]\nmax_steps = 400\n"), 0o644))

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const relations = "alpha -> beta\nbeta -> gamma\ngamma -> ghost\n"

func TestRenderToFile(t *testing.T) {
	input := writeInput(t, "relations.log", relations)
	output := filepath.Join(t.TempDir(), "out.svg")

	stdout, _, err := run(t, "render", input, "-o", output, "--width", "400", "--height", "300")
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 nodes, 3 edges")
	assert.Contains(t, stdout, output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), `width="400"`)
}

func TestRenderToStdout(t *testing.T) {
	input := writeInput(t, "graph.json", `{
  "nodes": [{"id": "a"}, {"id": "b"}],
  "edges": [{"source": "a", "target": "b"}, {"source": "a", "target": "nowhere"}]
}`)

	stdout, stderr, err := run(t, "render", input, "-f", "ascii", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "+"), stdout)
	assert.Contains(t, stderr, "1 record(s) skipped")
	assert.Contains(t, stderr, "unknown_endpoint")
}

func TestRenderErrors(t *testing.T) {
	input := writeInput(t, "relations.log", relations)

	_, _, err := run(t, "render", input, "-f", "bmp")
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	_, _, err = run(t, "render", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, _, err = run(t, "render")
	assert.Error(t, err)

	_, _, err = run(t, "render", input, "--palette", "neon", "-o", "-")
	assert.Error(t, err)
}

func TestServeNeedsInputToWatch(t *testing.T) {
	_, _, err := run(t, "serve", "--watch")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--watch")
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "network.svg", defaultOutput("data/network.json", "svg"))
	assert.Equal(t, "edges.txt", defaultOutput("edges.csv", "ascii"))
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "forcegraph "+version)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.WithHint(errors.New("boom"), "try again"))
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "hint: try again")
}
