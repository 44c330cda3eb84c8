package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mvp-joe/specmodel/internal/config"
	"github.com/mvp-joe/specmodel/internal/discovery"
	"github.com/mvp-joe/specmodel/internal/pipeline"
)

// session is the state shared by the commands that extract a model.
type session struct {
	rootDir   string
	cfg       *config.Config
	discovery *discovery.Discovery
	pipeline  *pipeline.Pipeline
	cache     *pipeline.BufferCache
}

// newSession loads the configuration for rootDir (or configPath when set)
// and builds the pipeline. The buffer cache is only kept for long-running
// commands.
func newSession(rootDir, configPath string, progress pipeline.ProgressReporter, withCache bool) (*session, error) {
	var loader config.Loader
	if configPath != "" {
		loader = config.NewFileLoader(configPath)
	} else {
		loader = config.NewLoader(rootDir)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	disc, err := discovery.New(rootDir, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to configure input discovery: %w", err)
	}

	var cache *pipeline.BufferCache
	if withCache {
		if cache, err = pipeline.NewBufferCache(cfg.CacheSize); err != nil {
			return nil, err
		}
	}

	p, err := pipeline.New(pipeline.Options{
		Parser:    cfg.ParserOptions(),
		Resolve:   cfg.ResolveOptions(),
		Tolerance: cfg.Extraction.YTolerance,
		Workers:   cfg.Workers,
		Cache:     cache,
		Progress:  progress,
	})
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &session{rootDir: rootDir, cfg: cfg, discovery: disc, pipeline: p, cache: cache}, nil
}

// extract discovers the inputs named by args and runs the pipeline.
func (s *session) extract(ctx context.Context, args []string) (*pipeline.Result, error) {
	paths, err := s.discovery.Inputs(args)
	if err != nil {
		return nil, err
	}
	log.Debugf("extracting %d documents", len(paths))
	return s.pipeline.Run(ctx, paths)
}

// watchTargets returns the directories to watch for args and a function
// telling whether a changed file is an input.
func (s *session) watchTargets(args []string) ([]string, func(string) bool, error) {
	if len(args) == 0 {
		return []string{s.rootDir}, s.discovery.Matches, nil
	}

	var dirs []string
	explicit := make(map[string]bool)
	var matchers []*discovery.Discovery
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to stat input %s: %w", arg, err)
		}
		if !info.IsDir() {
			explicit[abs] = true
			dirs = append(dirs, filepath.Dir(abs))
			continue
		}
		d, err := discovery.New(abs, s.cfg.Paths.Include, s.cfg.Paths.Ignore)
		if err != nil {
			return nil, nil, err
		}
		matchers = append(matchers, d)
		dirs = append(dirs, abs)
	}

	match := func(path string) bool {
		if explicit[path] {
			return true
		}
		for _, d := range matchers {
			if d.Matches(path) {
				return true
			}
		}
		return false
	}
	return dedupe(dirs), match, nil
}

// outputDir resolves the configured output directory against the root.
func (s *session) outputDir() string {
	if filepath.IsAbs(s.cfg.Output.Dir) {
		return s.cfg.Output.Dir
	}
	return filepath.Join(s.rootDir, s.cfg.Output.Dir)
}

func (s *session) close() {
	s.cache.Close()
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
