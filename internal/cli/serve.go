package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/specmodel/internal/export"
	"github.com/mvp-joe/specmodel/internal/mcp"
	"github.com/mvp-joe/specmodel/internal/model"
	"github.com/mvp-joe/specmodel/internal/watcher"
)

var (
	snapshotFlag   string
	serveWatchFlag bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Serve the model to MCP clients over stdio",
	Long: `Serve starts a Model Context Protocol server on stdio exposing read-only
tools over the model: package and type lookup, root classes, ancestry and
diagnostics.

The model is extracted from the input documents at startup, or loaded from a
previous export with --snapshot. With --watch it is re-extracted whenever an
input document changes; a failed re-extraction keeps the previous model.

Examples:
  specmodel serve docs/ --watch
  specmodel serve --snapshot .specmodel/out/model.json
`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&snapshotFlag, "snapshot", "", "Serve an exported .json or .msgpack model instead of extracting")
	serveCmd.Flags().BoolVarP(&serveWatchFlag, "watch", "w", false, "Re-extract when input documents change")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	store, start, cleanup, err := buildStore(ctx, rootDir, cfgFile, snapshotFlag, args, serveWatchFlag, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcp.NewMCPServer(store, Version)
	if err != nil {
		return err
	}
	if start != nil {
		go func() {
			if err := start(ctx); err != nil {
				log.Errorf("watch stopped: %v", err)
			}
		}()
	}
	return server.Serve(ctx)
}

// buildStore prepares the model store for serve. start, when not nil, runs
// the watch loop; cleanup releases the session.
func buildStore(ctx context.Context, rootDir, configPath, snapshotPath string, args []string, watch bool, errOut io.Writer) (*mcp.ModelStore, func(context.Context) error, func(), error) {
	if snapshotPath != "" {
		snap, err := export.Load(snapshotPath)
		if err != nil {
			return nil, nil, nil, err
		}
		fmt.Fprintf(errOut, "Serving snapshot %s (run %s)\n", snapshotPath, snap.Metadata.RunID)
		return mcp.NewStaticStore(snap.Document(), snap.Diagnostics), nil, func() {}, nil
	}

	s, err := newSession(rootDir, configPath, nil, watch)
	if err != nil {
		return nil, nil, nil, err
	}

	store := mcp.NewModelStore(func(ctx context.Context) (*model.Document, []string, error) {
		res, err := s.extract(ctx, args)
		if err != nil {
			return nil, nil, err
		}
		return res.Document, res.Diagnostics.Warnings(), nil
	})
	if err := store.Reload(ctx, nil); err != nil {
		s.close()
		return nil, nil, nil, err
	}
	fmt.Fprintf(errOut, "Serving model extracted from %s\n", rootDir)

	if !watch {
		return store, nil, s.close, nil
	}

	dirs, match, err := s.watchTargets(args)
	if err != nil {
		s.close()
		return nil, nil, nil, err
	}
	fw, err := watcher.NewFileWatcher(dirs, match, watcher.WithDebounce(s.cfg.Watch.Debounce))
	if err != nil {
		s.close()
		return nil, nil, nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// The coordinator's initial reload rebuilds from cached text buffers.
	start := watcher.NewCoordinator(fw, store).Run
	return store, start, s.close, nil
}
