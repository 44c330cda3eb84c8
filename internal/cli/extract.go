package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/specmodel/internal/config"
	"github.com/mvp-joe/specmodel/internal/export"
	"github.com/mvp-joe/specmodel/internal/watcher"
)

var (
	formatFlags []string
	outFlag     string
	quietFlag   bool
	watchFlag   bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract the model and write it to the output directory",
	Long: `Extract reads every input document, parses class, enumeration and primitive
definitions, resolves the inheritance hierarchy across all documents and writes
the model in the configured formats (json, msgpack, sqlite).

Paths may be files or directories; directories are searched with the include
and ignore patterns of the configuration. Without paths the working directory
is searched.

Examples:
  # Extract everything below the working directory
  specmodel extract

  # Extract two documents into JSON and SQLite
  specmodel extract tps_generic.words.jsonl tps_swc.words.jsonl --format json,sqlite

  # Re-extract whenever an input document changes
  specmodel extract docs/ --watch
`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringSliceVarP(&formatFlags, "format", "f", nil, "Output formats: json, msgpack, sqlite (default from config)")
	extractCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output directory (default from config)")
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	extractCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch input documents and re-extract on change")
}

// extractOptions holds the flags of one extract invocation.
type extractOptions struct {
	rootDir    string
	configPath string
	formats    []string
	outDir     string
	quiet      bool
	watch      bool
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	return executeExtract(ctx, extractOptions{
		rootDir:    rootDir,
		configPath: cfgFile,
		formats:    formatFlags,
		outDir:     outFlag,
		quiet:      quietFlag,
		watch:      watchFlag,
	}, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func executeExtract(ctx context.Context, opts extractOptions, args []string, out, errOut io.Writer) error {
	for _, f := range opts.formats {
		if !config.ValidFormat(f) {
			return fmt.Errorf("%w: %q", config.ErrInvalidFormat, f)
		}
	}

	s, err := newSession(opts.rootDir, opts.configPath, NewCLIProgressReporter(errOut, opts.quiet), opts.watch)
	if err != nil {
		return err
	}
	defer s.close()

	formats := s.cfg.Output.Formats
	if len(opts.formats) > 0 {
		formats = opts.formats
	}
	outDir := s.outputDir()
	if opts.outDir != "" {
		outDir = opts.outDir
	}

	run := func(ctx context.Context, changed []string) error {
		res, err := s.extract(ctx, args)
		if err != nil {
			return err
		}
		if !opts.quiet {
			printDiagnostics(out, res.Diagnostics.Warnings())
		}
		paths, err := export.WriteAll(export.NewSnapshot(res.Document, res.Diagnostics), outDir, s.cfg.Output.Name, formats)
		if err != nil {
			return err
		}
		if !opts.quiet {
			for _, p := range paths {
				fmt.Fprintf(out, "Wrote %s\n", p)
			}
		}
		return nil
	}

	if !opts.watch {
		return run(ctx, nil)
	}

	dirs, match, err := s.watchTargets(args)
	if err != nil {
		return err
	}
	fw, err := watcher.NewFileWatcher(dirs, match, watcher.WithDebounce(s.cfg.Watch.Debounce))
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if !opts.quiet {
		fmt.Fprintln(out, "Watching for changes (Ctrl+C to stop)...")
	}
	return watcher.NewCoordinator(fw, watcher.ReloadFunc(run)).Run(ctx)
}
