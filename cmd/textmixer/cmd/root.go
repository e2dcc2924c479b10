// Package cmd implements the command line interface for the application.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/textmixer/internal/config"
	"github.com/whit3rabbit/textmixer/internal/logger"
	"github.com/whit3rabbit/textmixer/pkg/api"
)

var (
	cfgFile string         // Variable to hold the config file path from the flag
	cfg     *config.Config // Loaded configuration, flag overrides applied
	log     *logger.Logger // Logger built from cfg, writes to stderr

	// Flag variables mapped to config fields for override
	silentMode bool   // -> cfg.Silent
	rulesFile  string // -> cfg.RulesFile
	engineKind string // -> cfg.Engine
	logLevel   string // -> cfg.Logging.Level
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "textmixer",
	Short: "Reversible, rule-based text obfuscation.",
	Long: `textmixer disguises literal secrets such as configuration keys by
table-driven character and string substitution, and restores them.

It is not encryption: anyone holding the rule table can reverse it.`,
	// Config is loaded before any subcommand runs.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		cfg = loadedCfg

		// Apply command-line flag overrides *after* loading config file
		applyFlagOverrides(cfg, cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err = logger.New(logger.Config{
			Level:  cfg.LogLevel(),
			Format: cfg.Logging.Format,
			Output: cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("error creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	// Run: Executes if no subcommand is given. Print help.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// applyFlagOverrides applies command-line flag values to the config struct.
// Only overrides if the flag was explicitly set by the user via cmd.Flags().Changed().
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("silent") {
		cfg.Silent = silentMode
	}
	if cmd.Flags().Changed("rules") {
		cfg.RulesFile = rulesFile
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineKind
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
}

// newObfuscator builds the library facade from the loaded configuration.
func newObfuscator() (*api.Obfuscator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	obf, err := api.NewObfuscator(api.Options{
		ConfigPath:  cfgFile,
		RulesPath:   cfg.RulesFile,
		Engine:      cfg.Engine,
		Silent:      cfg.Silent,
		Concurrency: cfg.Concurrency,
		Logger:      log.Logger,

		SkipPaths:       cfg.SkipPaths,
		KeepPaths:       cfg.KeepPaths,
		ContinueOnError: !cfg.AbortOnError,
	})
	if err != nil {
		return nil, err
	}
	return obf, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error. We just need to exit non-zero.
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./textmixer.yaml)")

	// Add flags for common config options
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", "", "Rule table file (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&engineKind, "engine", "e", "", "Engine kind: char, string or simple (overrides the rule file)")
	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "Suppress informational output (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error (overrides config)")
}
