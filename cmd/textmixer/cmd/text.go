package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whit3rabbit/textmixer/pkg/api"
)

// textFlags holds the input/output flags shared by obfuscate and disentangle.
type textFlags struct {
	input  string
	output string
	lines  bool
}

func (f *textFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Read text from a file instead of the argument ('-' for stdin)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVarP(&f.lines, "lines", "l", false, "Process each line independently, in parallel")
}

// transform is one direction of the facade: the single and batch forms.
type transform struct {
	name  string
	one   func(*api.Obfuscator, string) string
	batch func(*api.Obfuscator, context.Context, []string) ([]string, error)
}

var (
	obfuscateTransform = transform{
		name:  "obfuscate",
		one:   (*api.Obfuscator).Obfuscate,
		batch: (*api.Obfuscator).ObfuscateAll,
	}
	disentangleTransform = transform{
		name:  "disentangle",
		one:   (*api.Obfuscator).Disentangle,
		batch: (*api.Obfuscator).DisentangleAll,
	}
)

// validateTextArgs checks that exactly one input source is given.
func validateTextArgs(flags *textFlags) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case flags.input != "" && len(args) > 0:
			return fmt.Errorf("give either a text argument or --input, not both")
		case flags.input == "" && len(args) != 1:
			return fmt.Errorf("requires a text argument or --input")
		}
		return nil
	}
}

func runText(cmd *cobra.Command, args []string, flags *textFlags, t transform) error {
	cmd.SilenceUsage = true

	obf, err := newObfuscator()
	if err != nil {
		return err
	}

	text, fromArg, err := readText(cmd, args, flags.input)
	if err != nil {
		return err
	}

	var result string
	if flags.lines {
		result, err = runLines(cmd.Context(), obf, text, t)
		if err != nil {
			return err
		}
	} else {
		result = t.one(obf, text)
	}

	if flags.output != "" {
		if err := os.MkdirAll(filepath.Dir(flags.output), 0755); err != nil {
			return fmt.Errorf("error creating output directory for %s: %w", flags.output, err)
		}
		if err := os.WriteFile(flags.output, []byte(result), 0644); err != nil {
			return fmt.Errorf("error writing to output file %s: %w", flags.output, err)
		}
		log.Info("output written",
			zap.String("operation", t.name),
			zap.String("engine", obf.Kind()),
			zap.String("output", flags.output))
		return nil
	}

	// A text argument has no trailing newline; add one for the terminal.
	if fromArg {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
	} else {
		_, err = fmt.Fprint(cmd.OutOrStdout(), result)
	}
	return err
}

// runLines processes every line through the batch API and keeps line endings.
func runLines(ctx context.Context, obf *api.Obfuscator, text string, t transform) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	trailing := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	out, err := t.batch(obf, ctx, lines)
	if err != nil {
		return "", err
	}
	log.Debug("lines processed", zap.String("operation", t.name), zap.Int("lines", len(lines)))

	result := strings.Join(out, "\n")
	if trailing {
		result += "\n"
	}
	return result, nil
}

// readText returns the text to process and whether it came from the argument.
func readText(cmd *cobra.Command, args []string, input string) (string, bool, error) {
	switch input {
	case "":
		return args[0], true, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), false, nil
	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return "", false, fmt.Errorf("error reading input file %s: %w", input, err)
		}
		return string(data), false, nil
	}
}
