package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/textmixer/internal/rulefile"
)

const digitRules = `engine: string
rules:
  - {key: "0", replacement: Ze}
  - {key: "1", replacement: O}
  - {key: "2", replacement: Tw}
  - {key: "3", replacement: Th}
  - {key: "4", replacement: Fo}
  - {key: "5", replacement: Fi}
  - {key: "6", replacement: Si}
  - {key: "7", replacement: Se}
  - {key: "8", replacement: E}
  - {key: "9", replacement: N}
`

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg, log = nil, nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestObfuscateAndDisentangle(t *testing.T) {
	rules := writeFile(t, t.TempDir(), "digits.yaml", digitRules)

	out, err := execute(t, "", "obfuscate", "-r", rules, "854917632")
	require.NoError(t, err)
	assert.Equal(t, "EFiFoNOSeSiThTw\n", out)

	out, err = execute(t, "", "disentangle", "-r", rules, "EFiFoNOSeSiThTw")
	require.NoError(t, err)
	assert.Equal(t, "854917632\n", out)

	out, err = execute(t, "", "restore", "-r", rules, "-s", "OTw")
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)
}

func TestTextInputs(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "digits.yaml", digitRules)
	input := writeFile(t, dir, "input.txt", "123\n45\n")
	output := filepath.Join(dir, "out", "hidden.txt")

	out, err := execute(t, "", "obfuscate", "-r", rules, "-i", input, "-o", output, "--lines")
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "OTwTh\nFoFi\n", string(data))

	out, err = execute(t, "8", "obfuscate", "-r", rules, "-i", "-")
	require.NoError(t, err)
	assert.Equal(t, "E", out)

	out, err = execute(t, "", "disentangle", "-r", rules, "-i", output)
	require.NoError(t, err)
	assert.Equal(t, "123\n45\n", out)
}

func TestTextErrors(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "digits.yaml", digitRules)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "no input", args: []string{"obfuscate", "-r", rules}},
		{name: "argument and file", args: []string{"obfuscate", "-r", rules, "-i", "x.txt", "123"}},
		{name: "missing input file", args: []string{"obfuscate", "-r", rules, "-i", filepath.Join(dir, "none.txt")}},
		{name: "no rule table", args: []string{"obfuscate", "123"}},
		{name: "bad engine", args: []string{"obfuscate", "-r", rules, "-e", "rot13", "123"}},
		{name: "bad log level", args: []string{"obfuscate", "-r", rules, "--log-level", "loud", "123"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, "", tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestEngineFlag(t *testing.T) {
	rules := writeFile(t, t.TempDir(), "map.yaml", "map:\n  \"6\": \"666\"\n  T: t\n  L: \"777\"\n")

	out, err := execute(t, "", "obfuscate", "-r", rules, "XnQ6eyTmK_ca-rLE_6U4")
	require.NoError(t, err)
	assert.Equal(t, "XnQ666eytmK_ca-r777E_666U4\n", out)

	_, err = execute(t, "", "obfuscate", "-r", rules, "-e", "char", "6")
	assert.Error(t, err, "char engine rejects a map table")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "digits.yaml", digitRules)

	out, err := execute(t, "", "validate", "-r", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "Engine: string")
	assert.Contains(t, out, "Rules: 10")
	assert.Contains(t, out, "OK")

	ambiguous := writeFile(t, dir, "ambiguous.yaml", "rules:\n  - {key: a, replacement: b}\n  - {key: b, replacement: c}\n")
	out, err = execute(t, "", "validate", "-r", ambiguous)
	assert.ErrorContains(t, err, "ambiguous")
	assert.Contains(t, out, "Ambiguous:")

	overlapping := writeFile(t, dir, "overlap.yaml", "rules:\n  - {key: \"1\", replacement: O}\n  - {key: \"2\", replacement: One}\n")
	out, err = execute(t, "", "validate", "-r", overlapping)
	require.NoError(t, err)
	assert.Contains(t, out, "Overlap:")

	_, err = execute(t, "", "validate", "-r", overlapping, "--strict")
	assert.ErrorContains(t, err, "overlapping")
}

func TestLookupCommand(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "digits.yaml", digitRules)

	out, err := execute(t, "", "lookup", "-r", rules, "Fo")
	require.NoError(t, err)
	assert.Equal(t, "Found: '4' (replacement: 'Fo')\n", out)

	positional := writeFile(t, dir, "char.yaml",
		"engine: char\nrules:\n  - {key: a, replacement: b, operation: uppercase, indexes: [0, 2]}\n")
	out, err = execute(t, "", "lookup", "-r", positional, "A")
	require.NoError(t, err)
	assert.Equal(t, "Found: 'a' (operated: uppercase at [0 2])\n", out)

	_, err = execute(t, "", "lookup", "-r", rules, "zz")
	assert.ErrorContains(t, err, "not found")
}

func TestRulesGenerate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generated.yaml")

	_, err := execute(t, "", "rules", "generate", "-a", "0123", "-m", "hexa", "-n", "2", "-o", path)
	require.NoError(t, err)

	doc, err := rulefile.Load(path)
	require.NoError(t, err)
	report, err := doc.Validate()
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Empty(t, report.Overlaps)
	assert.Equal(t, 4, report.Rules)

	out, err := execute(t, "", "obfuscate", "-r", path, "3210")
	require.NoError(t, err)
	hidden := strings.TrimSpace(out)
	assert.Len(t, hidden, 8)

	out, err = execute(t, "", "disentangle", "-r", path, hidden)
	require.NoError(t, err)
	assert.Equal(t, "3210\n", out)

	out, err = execute(t, "", "rules", "generate", "-a", "xyz", "-n", "1", "-k", "char")
	require.NoError(t, err)
	assert.Contains(t, out, "engine: char")

	_, err = execute(t, "", "rules", "generate", "-a", "xyz", "-n", "2", "-k", "char")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textmixer.yaml")

	_, err := execute(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "", "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "", "config", "init", path, "--force")
	require.NoError(t, err)

	// The written file is a valid config and can point at a rule table.
	writeFile(t, dir, "digits.yaml", digitRules)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.Replace(string(data), `rules_file: ""`, "rules_file: digits.yaml", 1)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := execute(t, "", "obfuscate", "-c", path, "42")
	require.NoError(t, err)
	assert.Equal(t, "FoTw\n", out)
}

func TestDirCommand(t *testing.T) {
	base := t.TempDir()
	rules := writeFile(t, base, "digits.yaml", digitRules)
	src := filepath.Join(base, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
	writeFile(t, src, "pin.txt", "8549\n")
	writeFile(t, src, "sub/skip.bin", "1")
	hidden := filepath.Join(base, "hidden")
	restored := filepath.Join(base, "restored")

	out, err := execute(t, "", "dir", "-r", rules, src, "-o", hidden, "--skip", "*.bin")
	require.NoError(t, err)
	assert.Equal(t, "Processed: 1, Copied: 0, Skipped: 1\n", out)
	data, err := os.ReadFile(filepath.Join(hidden, "pin.txt"))
	require.NoError(t, err)
	assert.Equal(t, "EFiFoN\n", string(data))

	// A stale file in the target disappears with --clean.
	writeFile(t, hidden, "stale.txt", "x")
	_, err = execute(t, "", "dir", "-r", rules, src, "-o", hidden, "--clean", "--skip", "*.bin")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(hidden, "stale.txt"))

	_, err = execute(t, "", "dir", "-r", rules, hidden, "-o", restored, "--disentangle")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(restored, "pin.txt"))
	require.NoError(t, err)
	assert.Equal(t, "8549\n", string(data))

	_, err = execute(t, "", "dir", "-r", rules, src)
	assert.ErrorContains(t, err, "output directory")

	_, err = execute(t, "", "dir", "-r", rules, filepath.Join(base, "missing"), "-o", hidden)
	assert.ErrorContains(t, err, "not found")

	_, err = execute(t, "", "dir", "-r", rules, src, "-o", ".", "--clean")
	assert.ErrorContains(t, err, "dangerous")

	// --clean must never remove the source tree.
	_, err = execute(t, "", "dir", "-r", rules, src, "-o", src, "--clean")
	assert.ErrorContains(t, err, "must not be inside")
	assert.FileExists(t, filepath.Join(src, "pin.txt"))

	_, err = execute(t, "", "dir", "-r", rules, src, "-o", filepath.Join(src, "sub"), "--clean")
	assert.ErrorContains(t, err, "must not be inside")
	assert.FileExists(t, filepath.Join(src, "sub", "skip.bin"))

	_, err = execute(t, "", "dir", "-r", rules, src, "-o", base, "--clean")
	assert.ErrorContains(t, err, "contains input directory")
	assert.FileExists(t, filepath.Join(src, "pin.txt"))
	assert.FileExists(t, rules)
}
