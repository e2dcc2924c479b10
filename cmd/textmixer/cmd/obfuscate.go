package cmd

import (
	"github.com/spf13/cobra"
)

var obfuscateFlags textFlags

// obfuscateCmd represents the obfuscate command
var obfuscateCmd = &cobra.Command{
	Use:   "obfuscate [text]",
	Short: "Obfuscates text with the configured rule table",
	Long: `Replaces every mapped character of the input according to the rule table
and writes the result to stdout or a file.

Example:
  textmixer obfuscate -r rules.yaml 854917632
  textmixer obfuscate -r rules.yaml -i secrets.txt -o secrets.hidden --lines`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateTextArgs(&obfuscateFlags)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runText(cmd, args, &obfuscateFlags, obfuscateTransform)
	},
}

func init() {
	rootCmd.AddCommand(obfuscateCmd)
	obfuscateFlags.register(obfuscateCmd)
}
