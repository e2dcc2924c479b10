package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whit3rabbit/textmixer/internal/config"
)

var forceConfig bool

// configCmd represents the base command for configuration actions
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manages the configuration file",
}

// configInitCmd writes the default configuration
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Writes the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		path := config.DefaultConfigName
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !forceConfig {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveConfig(path); err != nil {
			return err
		}
		log.Info("default configuration written", zap.String("path", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVarP(&forceConfig, "force", "f", false, "Overwrite an existing file")
}
