package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var strictValidate bool // Treat overlaps as errors

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks the rule table for ambiguity",
	Long: `Builds the configured rule table and reports every replacement that
collides with a rule key. Such a table cannot be disentangled reliably and
the command exits non-zero.

Overlapping replacements (one replacement or operated key contained in
another replacement) are reported as warnings; --strict turns them into errors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		obf, err := newObfuscator()
		if err != nil {
			return err
		}

		report := obf.Validate()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Engine: %s\n", report.Kind)
		fmt.Fprintf(out, "Rules: %d\n", report.Rules)
		for _, a := range report.Ambiguities {
			fmt.Fprintf(out, "Ambiguous: %s\n", a)
		}
		for _, o := range report.Overlaps {
			fmt.Fprintf(out, "Overlap: %s\n", o)
		}

		if !report.Valid() {
			return fmt.Errorf("rule table is ambiguous (%d collisions)", len(report.Ambiguities))
		}
		if strictValidate && len(report.Overlaps) > 0 {
			return fmt.Errorf("rule table has %d overlapping replacements", len(report.Overlaps))
		}
		fmt.Fprintln(out, "OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strictValidate, "strict", false, "Fail on overlapping replacements too")
}
