package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/whit3rabbit/textmixer/internal/engine"
	"github.com/whit3rabbit/textmixer/internal/generator"
)

const (
	// DefaultConfigName is looked up in the working directory when no path is given.
	DefaultConfigName = "textmixer.yaml"
	// EnvPrefix prefixes environment overrides, e.g. TEXTMIXER_RULES_FILE.
	EnvPrefix = "TEXTMIXER"
)

// LoggingConfig defines settings for the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// GeneratorConfig defines settings for random rule table generation
type GeneratorConfig struct {
	Mode     string `yaml:"mode" mapstructure:"mode"`
	Length   int    `yaml:"length" mapstructure:"length"`
	Alphabet string `yaml:"alphabet" mapstructure:"alphabet"`
}

// Config holds all configuration settings.
// Struct tags control how Viper maps config file keys and environment variables.
type Config struct {
	Silent    bool   `yaml:"silent" mapstructure:"silent"`         // Suppress informational messages
	DebugMode bool   `yaml:"debug_mode" mapstructure:"debug_mode"` // Enable verbose debug logging
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"` // Rule table document

	// Engine overrides the engine kind declared in the rule file when set.
	Engine string `yaml:"engine,omitempty" mapstructure:"engine"`

	// Concurrency bounds batch processing; 0 means one worker per CPU.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// Directory processing
	AbortOnError bool     `yaml:"abort_on_error" mapstructure:"abort_on_error"`   // Stop on the first failing entry
	SkipPaths    []string `yaml:"skip_paths,omitempty" mapstructure:"skip_paths"` // Glob patterns left out of the output
	KeepPaths    []string `yaml:"keep_paths,omitempty" mapstructure:"keep_paths"` // Glob patterns copied unchanged

	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
}

// Default values for the configuration
var defaults = map[string]interface{}{
	"silent":             false,
	"debug_mode":         false,
	"rules_file":         "",
	"engine":             "",
	"concurrency":        0,
	"abort_on_error":     true,
	"skip_paths":         []string{},
	"keep_paths":         []string{},
	"logging.level":      "info",
	"logging.format":     "console",
	"generator.mode":     string(generator.ModeIdentifier),
	"generator.length":   2,
	"generator.alphabet": "0123456789",
}

// DefaultConfig returns a configuration with default settings.
func DefaultConfig() *Config {
	return &Config{
		AbortOnError: true,
		SkipPaths:    []string{},
		KeepPaths:    []string{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Generator: GeneratorConfig{
			Mode:     string(generator.ModeIdentifier),
			Length:   2,
			Alphabet: "0123456789",
		},
	}
}

// LoadConfig reads configuration from file and environment variables.
// An empty path looks for textmixer.yaml in the working directory and falls
// back to defaults when it is missing; an explicit path must exist.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigName, filepath.Ext(DefaultConfigName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Relative rule paths in a config file are resolved against the file.
	if used := v.ConfigFileUsed(); used != "" && cfg.RulesFile != "" && !filepath.IsAbs(cfg.RulesFile) &&
		v.InConfig("rules_file") {
		cfg.RulesFile = filepath.Join(filepath.Dir(used), cfg.RulesFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if c.Engine != "" {
		if _, err := engine.ParseKind(c.Engine); err != nil {
			return err
		}
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency: %d (must be >= 0)", c.Concurrency)
	}
	for _, pattern := range slices.Concat(c.SkipPaths, c.KeepPaths) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid path pattern '%s': %w", pattern, err)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logging.Format)
	}
	if _, err := generator.ParseMode(c.Generator.Mode); err != nil {
		return err
	}
	return nil
}

// LogLevel is the effective level: debug mode lowers it, silent mode raises it.
func (c *Config) LogLevel() string {
	switch {
	case c.Silent:
		return "error"
	case c.DebugMode:
		return "debug"
	default:
		return c.Logging.Level
	}
}

// SaveConfig saves the default configuration to a file.
func SaveConfig(configPath string) error {
	yamlData, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshalling default config: %w", err)
	}
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory for config file %s: %w", configPath, err)
	}
	if err := os.WriteFile(configPath, yamlData, 0644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	return nil
}
