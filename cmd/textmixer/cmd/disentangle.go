package cmd

import (
	"github.com/spf13/cobra"
)

var disentangleFlags textFlags

// disentangleCmd represents the disentangle command
var disentangleCmd = &cobra.Command{
	Use:     "disentangle [text]",
	Aliases: []string{"restore"},
	Short:   "Restores text obfuscated with the same rule table",
	Long: `Reverses obfuscate. The result is exact when the rule table passes
'textmixer validate'; the string and simple engines may also be affected by
overlapping replacements, which validate reports as warnings.

Example:
  textmixer disentangle -r rules.yaml EFiFoNOSeSiThTw`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateTextArgs(&disentangleFlags)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runText(cmd, args, &disentangleFlags, disentangleTransform)
	},
}

func init() {
	rootCmd.AddCommand(disentangleCmd)
	disentangleFlags.register(disentangleCmd)
}
