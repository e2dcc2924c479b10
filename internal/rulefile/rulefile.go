// Package rulefile reads and writes rule tables as YAML documents and builds
// engines from them.
package rulefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/whit3rabbit/textmixer/internal/engine"
	"github.com/whit3rabbit/textmixer/internal/rule"
)

var (
	// ErrNoRules is returned when a document declares neither rules nor a map.
	ErrNoRules = errors.New("rule file contains no rules")
	// ErrMixedForms is returned when a document declares both rules and a map.
	ErrMixedForms = errors.New("rule file must use either 'rules' or 'map', not both")
	// ErrNotSingleCharacter is returned when a char engine rule has a longer replacement.
	ErrNotSingleCharacter = errors.New("char engine replacements must be a single character")
)

// Entry is one rule as written in a rule file.
type Entry struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Replacement string `yaml:"replacement" mapstructure:"replacement"`
	Operation   string `yaml:"operation,omitempty" mapstructure:"operation"`
	Indexes     []int  `yaml:"indexes,omitempty,flow" mapstructure:"indexes"`
}

// File is a rule table document.
type File struct {
	Engine string            `yaml:"engine" mapstructure:"engine"`
	Rules  []Entry           `yaml:"rules,omitempty" mapstructure:"rules"`
	Map    map[string]string `yaml:"map,omitempty" mapstructure:"map"`
}

// Load reads a rule file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rule file %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing rule file %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a rule file and checks its shape. Rules themselves are
// checked when a table is built.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode writes the document as YAML with two-space indentation.
func (f *File) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("error marshalling rule file: %w", err)
	}
	return enc.Close()
}

// Save writes the document to path, creating parent directories.
func (f *File) Save(path string) error {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return err
	}
	data := buf.Bytes()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory for rule file %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing rule file %s: %w", path, err)
	}
	return nil
}

// Kind returns the engine kind. A document with only a map defaults to the
// simple engine, one with rules to the string engine.
func (f *File) Kind() (engine.Kind, error) {
	if f.Engine != "" {
		return engine.ParseKind(f.Engine)
	}
	if len(f.Map) > 0 {
		return engine.KindSimple, nil
	}
	return engine.KindString, nil
}

// Check verifies the document shape: exactly one of rules or map, and a known
// engine kind.
func (f *File) Check() error {
	switch {
	case len(f.Rules) == 0 && len(f.Map) == 0:
		return ErrNoRules
	case len(f.Rules) > 0 && len(f.Map) > 0:
		return ErrMixedForms
	}
	_, err := f.Kind()
	return err
}

// NewEngine builds the engine the document describes.
func (f *File) NewEngine() (engine.Engine, error) {
	if err := f.Check(); err != nil {
		return nil, err
	}
	kind, _ := f.Kind()

	switch kind {
	case engine.KindChar:
		table, err := f.CharTable()
		if err != nil {
			return nil, err
		}
		return engine.NewCharEngine(table), nil
	case engine.KindString:
		table, err := f.StringTable()
		if err != nil {
			return nil, err
		}
		return engine.NewStringEngine(table), nil
	default:
		table, err := f.StringTable()
		if err != nil {
			return nil, err
		}
		if f.hasOperations() {
			return nil, fmt.Errorf("simple engine does not support operations or indexes")
		}
		return engine.NewKeyObfuscator(tableMap(table))
	}
}

// CharTable builds a single-character table.
func (f *File) CharTable() (*rule.Table[rune], error) {
	if len(f.Map) > 0 {
		return nil, fmt.Errorf("char engine requires 'rules', not 'map'")
	}
	rules := make([]rule.Rule[rune], 0, len(f.Rules))
	for i, e := range f.Rules {
		key, op, err := e.parse(i)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(e.Replacement) != 1 {
			return nil, fmt.Errorf("rule %d: %w: '%s'", i, ErrNotSingleCharacter, e.Replacement)
		}
		repl, _ := utf8.DecodeRuneInString(e.Replacement)
		rules = append(rules, rule.New(key, repl, op, e.Indexes...))
	}
	return rule.Build(rules...)
}

// StringTable builds a string table from either form of the document.
func (f *File) StringTable() (*rule.Table[string], error) {
	if len(f.Map) > 0 {
		return rule.FromMap(f.Map)
	}
	rules := make([]rule.Rule[string], 0, len(f.Rules))
	for i, e := range f.Rules {
		key, op, err := e.parse(i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule.New(key, e.Replacement, op, e.Indexes...))
	}
	return rule.Build(rules...)
}

func (f *File) hasOperations() bool {
	for _, e := range f.Rules {
		if len(e.Indexes) > 0 {
			if op, err := rule.ParseOperation(e.Operation); err == nil && op != rule.None {
				return true
			}
		}
	}
	return false
}

func (e Entry) parse(i int) (rune, rule.Operation, error) {
	if utf8.RuneCountInString(e.Key) != 1 {
		return 0, rule.None, fmt.Errorf("rule %d: %w: '%s'", i, rule.ErrInvalidKey, e.Key)
	}
	key, _ := utf8.DecodeRuneInString(e.Key)
	op, err := rule.ParseOperation(e.Operation)
	if err != nil {
		return 0, rule.None, fmt.Errorf("rule %d: %w", i, err)
	}
	return key, op, nil
}

func tableMap(t *rule.Table[string]) map[string]string {
	m := make(map[string]string, t.Len())
	for _, r := range t.Rules() {
		m[string(r.Key())] = r.Replacement()
	}
	return m
}
