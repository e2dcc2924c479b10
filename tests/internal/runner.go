package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/textmixer/pkg/api"
)

// Runner provides utilities for running rule tables end to end in integration tests
type Runner struct {
	T *testing.T
}

// NewRunner creates a new runner for integration tests
func NewRunner(t *testing.T) *Runner {
	return &Runner{T: t}
}

// RulesPath returns the absolute path of a rule file shipped under examples/rules
func (r *Runner) RulesPath(name string) string {
	r.T.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "..", "examples", "rules", name))
	require.NoError(r.T, err, "Error getting absolute path")
	return path
}

// Obfuscator builds the library facade for a rule file, optionally overriding the engine
func (r *Runner) Obfuscator(rulesPath, engine string) *api.Obfuscator {
	r.T.Helper()
	obf, err := api.NewObfuscator(api.Options{RulesPath: rulesPath, Engine: engine, Silent: true})
	require.NoError(r.T, err, "Error creating obfuscator for %s", rulesPath)
	return obf
}

// RoundTripFile writes content to a file, obfuscates it to a second file and
// disentangles that into a third. It returns the obfuscated and restored text.
func (r *Runner) RoundTripFile(obf *api.Obfuscator, content string) (string, string) {
	r.T.Helper()

	tmpDir := r.T.TempDir()
	inputFile := filepath.Join(tmpDir, "input.txt")
	hiddenFile := filepath.Join(tmpDir, "hidden", "input.txt")
	restoredFile := filepath.Join(tmpDir, "restored", "input.txt")

	require.NoError(r.T, os.WriteFile(inputFile, []byte(content), 0644))
	require.NoError(r.T, obf.ObfuscateFileToFile(inputFile, hiddenFile))
	require.NoError(r.T, obf.DisentangleFileToFile(hiddenFile, restoredFile))

	hidden, err := os.ReadFile(hiddenFile)
	require.NoError(r.T, err)
	restored, err := os.ReadFile(restoredFile)
	require.NoError(r.T, err)

	r.T.Logf("=== Obfuscated ===\n%s", hidden)
	return string(hidden), string(restored)
}
