// Package api provides the public API for using textmixer as a library.
//
// An Obfuscator wraps one rule table and the engine built from it. Tables come
// from a YAML rule file or are supplied in memory.
//
// Basic usage example:
//
//	obf, err := api.NewObfuscator(api.Options{RulesPath: "rules.yaml"})
//	if err != nil {
//	    log.Fatalf("Failed to create obfuscator: %v", err)
//	}
//
//	hidden := obf.Obfuscate("854917632")
//	fmt.Println(obf.Disentangle(hidden)) // Prints 854917632
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/whit3rabbit/textmixer/internal/config"
	"github.com/whit3rabbit/textmixer/internal/engine"
	"github.com/whit3rabbit/textmixer/internal/rule"
	"github.com/whit3rabbit/textmixer/internal/rulefile"
)

// ErrNoRules is returned when no rule table is given and none is configured.
var ErrNoRules = errors.New("no rule table: set Options.Table, Options.RulesPath or rules_file in the config")

type (
	// Table is an in-memory rule table document, as stored in a rule file.
	Table = rulefile.File
	// Rule is one entry of a Table.
	Rule = rulefile.Entry
	// Report is the outcome of Validate.
	Report = rulefile.Report
)

// Match is a rule found by Lookup.
type Match struct {
	Key         string
	Replacement string
	Operation   string
	Indexes     []int
	// Operated is true when the token matched the rule's operated key rather
	// than its replacement.
	Operated bool
}

// Obfuscator obfuscates and disentangles text with one rule table.
// It is safe for concurrent use.
type Obfuscator struct {
	// Config holds the configuration the obfuscator was built with
	Config *config.Config

	kind        engine.Kind
	engine      engine.Engine
	report      Report
	concurrency int
	log         *zap.Logger

	skipPaths    []string
	keepPaths    []string
	abortOnError bool
}

// Options represents configuration options for creating a new Obfuscator instance.
type Options struct {
	// ConfigPath is the path to a YAML configuration file.
	// If empty, ./textmixer.yaml is used when present, defaults otherwise.
	ConfigPath string

	// RulesPath is a rule file. It takes precedence over rules_file in the config.
	RulesPath string

	// Table is an in-memory rule table. It takes precedence over RulesPath.
	Table *Table

	// Engine overrides the engine kind of the table: char, string or simple.
	Engine string

	// Silent suppresses informational log messages
	Silent bool

	// Concurrency bounds the batch methods. 0 uses the configured value.
	Concurrency int

	// Logger receives debug and info messages. Nil discards them.
	Logger *zap.Logger

	// SkipPaths and KeepPaths add glob patterns to those in the config for
	// directory runs. Skipped entries are left out, kept files copied unchanged.
	SkipPaths []string
	KeepPaths []string

	// ContinueOnError makes directory runs log failing entries and carry on,
	// overriding abort_on_error in the config.
	ContinueOnError bool
}

// NewObfuscator creates a new Obfuscator instance using the provided options.
//
// Returns an error if the configuration or rule table cannot be loaded, or if
// the table cannot be built (duplicate keys, invalid operations). An ambiguous
// table is accepted and logged; use Validate to inspect it.
func NewObfuscator(options Options) (*Obfuscator, error) {
	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if options.Silent {
		cfg.Silent = true
	}

	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Silent {
		log = log.WithOptions(zap.IncreaseLevel(zap.ErrorLevel))
	}
	log = log.With(zap.String("component", "api"))

	doc, source, err := resolveTable(options, cfg)
	if err != nil {
		return nil, err
	}

	kindOverride := lo.CoalesceOrEmpty(options.Engine, cfg.Engine)
	if kindOverride != "" {
		if _, err := engine.ParseKind(kindOverride); err != nil {
			return nil, err
		}
		overridden := *doc
		overridden.Engine = kindOverride
		doc = &overridden
	}

	kind, err := doc.Kind()
	if err != nil {
		return nil, err
	}
	report, err := doc.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to build rule table from %s: %w", source, err)
	}
	eng, err := doc.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s engine from %s: %w", kind, source, err)
	}

	log.Debug("rule table loaded",
		zap.String("source", source),
		zap.String("engine", string(kind)),
		zap.Int("rules", report.Rules))
	if !report.Valid() {
		log.Warn("rule table is ambiguous, disentangle may not restore the input",
			zap.Strings("ambiguities", report.Ambiguities))
	}
	if len(report.Overlaps) > 0 && kind != engine.KindChar {
		log.Info("rule table has overlapping replacements", zap.Strings("overlaps", report.Overlaps))
	}

	concurrency := lo.CoalesceOrEmpty(options.Concurrency, cfg.Concurrency, runtime.NumCPU())

	return &Obfuscator{
		Config:      cfg,
		kind:        kind,
		engine:      eng,
		report:      report,
		concurrency: concurrency,
		log:         log,

		skipPaths:    lo.Union(cfg.SkipPaths, options.SkipPaths),
		keepPaths:    lo.Union(cfg.KeepPaths, options.KeepPaths),
		abortOnError: cfg.AbortOnError && !options.ContinueOnError,
	}, nil
}

func resolveTable(options Options, cfg *config.Config) (*Table, string, error) {
	if options.Table != nil {
		if err := options.Table.Check(); err != nil {
			return nil, "", fmt.Errorf("invalid rule table: %w", err)
		}
		return options.Table, "memory", nil
	}

	path := lo.CoalesceOrEmpty(options.RulesPath, cfg.RulesFile)
	if path == "" {
		return nil, "", ErrNoRules
	}
	doc, err := rulefile.Load(path)
	if err != nil {
		return nil, "", err
	}
	return doc, path, nil
}

// Kind returns the engine kind in use.
func (o *Obfuscator) Kind() string { return string(o.kind) }

// Obfuscate replaces every mapped character of text. It never fails;
// unmapped characters pass through.
func (o *Obfuscator) Obfuscate(text string) string {
	return o.engine.Obfuscate(text)
}

// Disentangle reverses Obfuscate.
func (o *Obfuscator) Disentangle(text string) string {
	return o.engine.Disentangle(text)
}

// Validate reports ambiguities and overlaps of the rule table.
func (o *Obfuscator) Validate() Report {
	return o.report
}

// Lookup returns the rules a token of obfuscated text maps back to: the rule
// whose replacement equals token and, for single characters, the rules whose
// operated key equals it.
func (o *Obfuscator) Lookup(token string) []Match {
	switch e := o.engine.(type) {
	case *engine.CharEngine:
		return lookup(e.Table(), token)
	case *engine.StringEngine:
		return lookup(e.Table(), token)
	case *engine.KeyObfuscator:
		return lookup(e.Table(), token)
	default:
		return nil
	}
}

func lookup[V rule.Value](t *rule.Table[V], token string) []Match {
	var matches []Match
	for _, r := range t.Rules() {
		if string(r.Replacement()) == token {
			matches = append(matches, toMatch(r, false))
		}
	}
	if c, size := utf8.DecodeRuneInString(token); size > 0 && size == len(token) {
		matches = append(matches, lo.Map(t.OperatedAny(c), func(r rule.Rule[V], _ int) Match {
			return toMatch(r, true)
		})...)
	}
	return matches
}

func toMatch[V rule.Value](r rule.Rule[V], operated bool) Match {
	return Match{
		Key:         string(r.Key()),
		Replacement: string(r.Replacement()),
		Operation:   r.Operation().String(),
		Indexes:     r.Indexes(),
		Operated:    operated,
	}
}

// ObfuscateAll obfuscates every text in parallel and returns the results in
// input order. It stops early when ctx is cancelled.
func (o *Obfuscator) ObfuscateAll(ctx context.Context, texts []string) ([]string, error) {
	return o.batch(ctx, "obfuscate", texts, o.engine.Obfuscate)
}

// DisentangleAll is the batch form of Disentangle.
func (o *Obfuscator) DisentangleAll(ctx context.Context, texts []string) ([]string, error) {
	return o.batch(ctx, "disentangle", texts, o.engine.Disentangle)
}

func (o *Obfuscator) batch(ctx context.Context, op string, texts []string, fn func(string) string) ([]string, error) {
	out := make([]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = fn(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s batch: %w", op, err)
	}

	o.log.Debug("batch complete",
		zap.String("operation", op),
		zap.Int("items", len(texts)),
		zap.Int("concurrency", o.concurrency))
	return out, nil
}

// ObfuscateFileToFile obfuscates a file and writes the result to another file.
func (o *Obfuscator) ObfuscateFileToFile(inputPath, outputPath string) error {
	return o.fileToFile(inputPath, outputPath, o.engine.Obfuscate)
}

// DisentangleFileToFile disentangles a file and writes the result to another file.
func (o *Obfuscator) DisentangleFileToFile(inputPath, outputPath string) error {
	return o.fileToFile(inputPath, outputPath, o.engine.Disentangle)
}

func (o *Obfuscator) fileToFile(inputPath, outputPath string, fn func(string) string) error {
	if err := transformFile(inputPath, outputPath, fn); err != nil {
		return err
	}
	o.log.Info("processed file", zap.String("input", inputPath), zap.String("output", outputPath))
	return nil
}

// transformFile reads inputPath, applies fn and writes outputPath.
func transformFile(inputPath, outputPath string, fn func(string) string) error {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file %s: %w", inputPath, err)
	}

	// Create output directory if needed
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	if err := os.WriteFile(outputPath, []byte(fn(string(content))), 0644); err != nil {
		return fmt.Errorf("failed to write to output file %s: %w", outputPath, err)
	}
	return nil
}
