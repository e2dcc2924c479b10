package rulefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/textmixer/internal/engine"
	"github.com/whit3rabbit/textmixer/internal/rule"
)

const charRules = `
engine: char
rules:
  - key: "a"
    replacement: "b"
    operation: uppercase
    indexes: [0, 2]
  - key: "b"
    replacement: "c"
    operation: uppercase
    indexes: [2]
  - key: "c"
    replacement: "d"
    operation: uppercase
    indexes: [3]
`

const digitRules = `
engine: string
rules:
  - {key: "1", replacement: "O"}
  - {key: "2", replacement: "Tw"}
  - {key: "3", replacement: "Th"}
  - {key: "4", replacement: "Fo"}
  - {key: "5", replacement: "Fi"}
  - {key: "6", replacement: "Si"}
  - {key: "7", replacement: "Se"}
  - {key: "8", replacement: "E"}
  - {key: "9", replacement: "N"}
`

const simpleRules = `
map:
  "6": "666"
  "T": "t"
  "L": "777"
`

func TestParseAndBuild(t *testing.T) {
	testCases := []struct {
		name     string
		doc      string
		kind     engine.Kind
		input    string
		expected string
	}{
		{name: "char", doc: charRules, kind: engine.KindChar, input: "abacd", expected: "AcACd"},
		{name: "string", doc: digitRules, kind: engine.KindString, input: "854917632", expected: "EFiFoNOSeSiThTw"},
		{name: "simple", doc: simpleRules, kind: engine.KindSimple, input: "XnQ6eyTmK_ca-rLE_6U4", expected: "XnQ666eytmK_ca-r777E_666U4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.doc))
			require.NoError(t, err)

			kind, err := f.Kind()
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)

			e, err := f.NewEngine()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, e.Obfuscate(tc.input))
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "empty", doc: "engine: string\n", wantErr: ErrNoRules},
		{name: "mixed", doc: "rules:\n  - {key: a, replacement: b}\nmap:\n  c: d\n", wantErr: ErrMixedForms},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := Parse([]byte("engine: rot13\nmap:\n  a: b\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("rules: [unterminated"))
	assert.Error(t, err)
}

func TestEngineErrors(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "char replacement too long",
			doc:     "engine: char\nrules:\n  - {key: a, replacement: bc}\n",
			wantErr: ErrNotSingleCharacter,
		},
		{
			name:    "multi character key",
			doc:     "rules:\n  - {key: ab, replacement: c}\n",
			wantErr: rule.ErrInvalidKey,
		},
		{
			name:    "bad operation",
			doc:     "rules:\n  - {key: a, replacement: c, operation: reverse, indexes: [0]}\n",
			wantErr: rule.ErrInvalidOperation,
		},
		{
			name:    "duplicate key",
			doc:     "rules:\n  - {key: a, replacement: c}\n  - {key: a, replacement: d}\n",
			wantErr: rule.ErrDuplicateKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.doc))
			require.NoError(t, err)
			_, err = f.NewEngine()
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	f, err := Parse([]byte("engine: simple\nrules:\n  - {key: a, replacement: c, operation: uppercase, indexes: [0]}\n"))
	require.NoError(t, err)
	_, err = f.NewEngine()
	assert.Error(t, err, "simple engine must refuse positional operations")
}

func TestNewEngineFollowsEngineField(t *testing.T) {
	f, err := Parse([]byte(digitRules))
	require.NoError(t, err)
	assert.Equal(t, "string", f.Engine)

	e, err := f.NewEngine()
	require.NoError(t, err)
	assert.IsType(t, &engine.StringEngine{}, e)

	f.Engine = "simple"
	e, err = f.NewEngine()
	require.NoError(t, err)
	assert.IsType(t, &engine.KeyObfuscator{}, e)
	assert.Equal(t, "OTw", e.Obfuscate("12"))

	f.Engine = "rot13"
	_, err = f.NewEngine()
	assert.ErrorContains(t, err, "invalid engine kind")
}

func TestValidateReport(t *testing.T) {
	f, err := Parse([]byte(charRules))
	require.NoError(t, err)

	report, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, engine.KindChar, report.Kind)
	assert.Equal(t, 3, report.Rules)
	assert.False(t, report.Valid())
	assert.Len(t, report.Ambiguities, 2)

	f, err = Parse([]byte(digitRules))
	require.NoError(t, err)
	report, err = f.Validate()
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Empty(t, report.Overlaps)

	f, err = Parse([]byte("rules:\n  - {key: '1', replacement: O}\n  - {key: '2', replacement: One}\n"))
	require.NoError(t, err)
	report, err = f.Validate()
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Len(t, report.Overlaps, 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	table, err := rule.Build(
		rule.Plain('1', "O"),
		rule.New('a', "X", rule.Uppercase, 3, 1),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "rules.yaml")
	require.NoError(t, FromTable(engine.KindString, table).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "operation: uppercase")
	assert.Contains(t, string(data), "indexes: [1, 3]")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Rules, 2)
	assert.Equal(t, Entry{Key: "1", Replacement: "O"}, loaded.Rules[0])
	assert.Equal(t, Entry{Key: "a", Replacement: "X", Operation: "uppercase", Indexes: []int{1, 3}}, loaded.Rules[1])

	e, err := loaded.NewEngine()
	require.NoError(t, err)
	assert.Equal(t, "OA", e.Obfuscate("1a"))
}

func TestFromTableSimple(t *testing.T) {
	table, err := rule.FromMap(map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)

	f := FromTable(engine.KindSimple, table)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, f.Map)
	assert.Empty(t, f.Rules)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
