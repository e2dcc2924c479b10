package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <token>",
	Short: "Looks up the source character for an obfuscated token",
	Long: `Searches the inverse views of the rule table: rules whose replacement
equals the token and, for a single character, rules whose operated key equals it.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return fmt.Errorf("token must not be empty")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]
		cmd.SilenceUsage = true // Prevent usage print on expected errors (like not found)

		obf, err := newObfuscator()
		if err != nil {
			return err
		}

		matches := obf.Lookup(token)
		if len(matches) == 0 {
			return fmt.Errorf("token '%s' not found in the rule table", token)
		}

		out := cmd.OutOrStdout()
		for _, m := range matches {
			if m.Operated {
				fmt.Fprintf(out, "Found: '%s' (operated: %s at %v)\n", m.Key, m.Operation, m.Indexes)
				continue
			}
			fmt.Fprintf(out, "Found: '%s' (replacement: '%s')\n", m.Key, m.Replacement)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
