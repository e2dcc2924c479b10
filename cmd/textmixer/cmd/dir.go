package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whit3rabbit/textmixer/pkg/api"
)

var (
	outputDir      string   // Flag variable for output directory
	cleanMode      bool     // Flag variable for cleaning target directory
	disentangleDir bool     // Restore instead of obfuscate
	abortOnError   bool     // -> cfg.AbortOnError
	skipPatterns   []string // appended to cfg.SkipPaths
	keepPatterns   []string // appended to cfg.KeepPaths
)

// dirCmd represents the dir command
var dirCmd = &cobra.Command{
	Use:   "dir <source_directory>",
	Short: "Obfuscates every file in a directory recursively",
	Long: `Recursively obfuscates (or, with --disentangle, restores) every regular file
of the source directory into the target directory, preserving its structure.
Entries matching skip_paths are left out, files matching keep_paths are copied
unchanged and symlinks are not followed.

Example:
  textmixer dir ./secrets -o ./hidden --skip '*.png' --clean
  textmixer dir ./hidden -o ./restored --disentangle`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if outputDir == "" {
			return fmt.Errorf("output directory (-o, --output) is required for directory processing")
		}
		// Check if source directory exists
		sourceDir := args[0]
		info, err := os.Stat(sourceDir)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("source directory '%s' not found", sourceDir)
			}
			return fmt.Errorf("error checking source directory '%s': %w", sourceDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("source path '%s' is not a directory", sourceDir)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true

		if cmd.Flags().Changed("abort-on-error") {
			cfg.AbortOnError = abortOnError
		}
		cfg.SkipPaths = append(cfg.SkipPaths, skipPatterns...)
		cfg.KeepPaths = append(cfg.KeepPaths, keepPatterns...)
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Path checks run before cleaning so a bad -o can never remove the source.
		if err := api.CheckNested(args[0], outputDir); err != nil {
			return err
		}
		if cleanMode {
			if err := api.CheckCleanable(args[0], outputDir); err != nil {
				return err
			}
			if err := cleanTarget(outputDir); err != nil {
				return err
			}
		}

		obf, err := newObfuscator()
		if err != nil {
			return err
		}

		process := obf.ObfuscateDirectory
		if disentangleDir {
			process = obf.DisentangleDirectory
		}
		stats, err := process(cmd.Context(), args[0], outputDir)
		fmt.Fprintf(cmd.OutOrStdout(), "Processed: %d, Copied: %d, Skipped: %d\n",
			stats.Processed, stats.Copied, stats.Skipped)
		return err
	},
}

// cleanTarget removes the target directory, refusing obviously dangerous paths.
func cleanTarget(targetPath string) error {
	if _, err := os.Stat(targetPath); os.IsNotExist(err) {
		log.Debug("target directory does not exist, no cleaning needed", zap.String("path", targetPath))
		return nil
	}

	cleaned := filepath.Clean(targetPath)
	isRoot := cleaned == filepath.VolumeName(cleaned)+`\`
	if runtime.GOOS != "windows" {
		isRoot = cleaned == "/"
	}
	home, _ := os.UserHomeDir()
	if isRoot || cleaned == "." || cleaned == ".." || (home != "" && cleaned == filepath.Clean(home)) {
		return fmt.Errorf("refusing to clean potentially dangerous path: %s", targetPath)
	}

	log.Info("cleaning target directory", zap.String("path", targetPath))
	if err := os.RemoveAll(cleaned); err != nil {
		return fmt.Errorf("failed to clean target directory %s: %w", targetPath, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dirCmd)
	dirCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Target directory (required)")
	dirCmd.Flags().BoolVar(&cleanMode, "clean", false, "Remove the target directory before processing")
	dirCmd.Flags().BoolVarP(&disentangleDir, "disentangle", "d", false, "Restore files instead of obfuscating them")
	dirCmd.Flags().BoolVar(&abortOnError, "abort-on-error", true, "Stop processing on the first error (overrides config)")
	dirCmd.Flags().StringSliceVar(&skipPatterns, "skip", nil, "Glob pattern of paths to leave out (repeatable)")
	dirCmd.Flags().StringSliceVar(&keepPatterns, "keep", nil, "Glob pattern of files to copy unchanged (repeatable)")
}

