package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rendaw/luxemog/models"
)

const testRules = "(luxemog 0.0.1) [{from: 4, to: 5}]"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestRunner(cfg Config) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	r := NewRunner(cfg)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	r.Stdout = stdout
	r.Stderr = stderr
	return r, stdout, stderr
}

func TestRunToStdout(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	cfg.Sources = []string{writeFile(t, dir, "input.luxem", "[4, {x: 4}, 9]")}
	cfg.Minimize = true

	r, stdout, _ := newTestRunner(cfg)
	require.NoError(t, r.Run())
	assert.Equal(t, "[5,{x:5},9]\n", stdout.String())
}

func TestRunFromStdinReversed(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	cfg.Sources = []string{"-"}
	cfg.Reverse = true
	cfg.Minimize = true

	r, stdout, _ := newTestRunner(cfg)
	r.Stdin = strings.NewReader("5")
	require.NoError(t, r.Run())
	assert.Equal(t, "4\n", stdout.String())
}

func TestRunToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	cfg.Sources = []string{writeFile(t, dir, "input.luxem", "4")}
	cfg.OutPath = filepath.Join(dir, "out.luxem")
	cfg.Minimize = true

	r, stdout, _ := newTestRunner(cfg)
	require.NoError(t, r.Run())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(cfg.OutPath)
	require.NoError(t, err)
	assert.Equal(t, "5\n", string(data))
}

func TestRunGlobSources(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	writeFile(t, sub, "a.luxem", "4")
	writeFile(t, sub, "b.luxem", "[4]")
	cfg.Sources = []string{filepath.Join(sub, "**", "*.luxem")}
	cfg.Minimize = true

	r, stdout, _ := newTestRunner(cfg)
	require.NoError(t, r.Run())
	assert.Equal(t, "5\n[5]\n", stdout.String())
}

func TestRunRejectsFileOutForMultipleSources(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	cfg.Sources = []string{
		writeFile(t, dir, "a.luxem", "4"),
		writeFile(t, dir, "b.luxem", "4"),
	}
	cfg.OutPath = filepath.Join(dir, "out.luxem")

	r, _, _ := newTestRunner(cfg)
	err := r.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")
}

func TestRunDiff(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	source := writeFile(t, dir, "input.luxem", "[4, 9]")
	cfg.Sources = []string{source}
	cfg.ShowDiff = true

	r, stdout, _ := newTestRunner(cfg)
	require.NoError(t, r.Run())
	diff := stdout.String()
	assert.Contains(t, diff, "--- "+source)
	assert.Contains(t, diff, "-\t4,")
	assert.Contains(t, diff, "+\t5,")

	// Diff mode never writes results
	data, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "[4, 9]", string(data))
}

func TestRunErrorsCarryContext(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem",
		"(luxemog 0.0.1) [{from: 9, to: (*error) testing}]")
	source := writeFile(t, dir, "input.luxem", "9")
	cfg.Sources = []string{source}

	r, _, _ := newTestRunner(cfg)
	err := r.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transforming "+source)
	assert.Contains(t, err.Error(), "testing")
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TransformsPath = writeFile(t, dir, "rules.luxem", testRules)
	cfg.Sources = []string{writeFile(t, dir, "input.luxem", "4")}
	cfg.HistoryDSN = filepath.Join(dir, "history.db")
	cfg.Minimize = true

	r, _, _ := newTestRunner(cfg)
	require.NoError(t, r.Run())

	var runs []models.Run
	require.NoError(t, r.history.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, cfg.Sources[0], runs[0].Source)
	assert.Equal(t, 1, runs[0].RuleCount)
	assert.Equal(t, models.RunStatusOK, runs[0].Status)
	assert.NotEmpty(t, runs[0].InputDigest)
	assert.NotEmpty(t, runs[0].OutputDigest)
}
