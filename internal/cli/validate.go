package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrWarnings is returned by validate --strict when the model has warnings.
var ErrWarnings = errors.New("model has warnings")

var strictFlag bool

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Extract and resolve the model without writing it",
	Long: `Validate runs the full extraction and resolution and reports the result:
hard failures (conflicting ATP markers, contradictory subclass lists) fail the
command, missing base classes are printed as warnings. Nothing is written.

Examples:
  specmodel validate
  specmodel validate docs/ --strict
`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strictFlag, "strict", false, "Fail when the model has warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return executeValidate(ctx, rootDir, cfgFile, args, strictFlag, cmd.OutOrStdout())
}

func executeValidate(ctx context.Context, rootDir, configPath string, args []string, strict bool, out io.Writer) error {
	s, err := newSession(rootDir, configPath, nil, false)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.extract(ctx, args)
	if err != nil {
		return err
	}

	printSummary(out, &res.Stats)
	warnings := res.Diagnostics.Warnings()
	printDiagnostics(out, warnings)

	if strict && len(warnings) > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, len(warnings))
	}
	return nil
}
