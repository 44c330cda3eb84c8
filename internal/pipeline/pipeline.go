// Package pipeline runs extraction end to end: every input document is read,
// reconstructed and parsed as an independent unit, the constructs of all
// documents are pooled in input order, and the pooled model is assembled and
// resolved exactly once.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/specmodel/internal/assemble"
	"github.com/mvp-joe/specmodel/internal/diag"
	"github.com/mvp-joe/specmodel/internal/model"
	"github.com/mvp-joe/specmodel/internal/parser"
	"github.com/mvp-joe/specmodel/internal/resolve"
	"github.com/mvp-joe/specmodel/internal/textsource"
)

var log = commonlog.GetLogger("specmodel.pipeline")

// Options configures a Pipeline.
type Options struct {
	Parser    parser.Options
	Resolve   resolve.Options
	Tolerance float64
	Workers   int          // parallel document units; GOMAXPROCS when zero
	Cache     *BufferCache // optional
	Progress  ProgressReporter

	// Open returns the source for an input path; textsource.Open when nil.
	Open func(path string) (textsource.Source, error)
}

// Result is the output of one run.
type Result struct {
	Document    *model.Document
	Diagnostics *diag.Collector
	Stats       Stats
}

// Pipeline extracts one Document from a set of input documents.
type Pipeline struct {
	opts Options
}

// New validates opts and returns a pipeline.
func New(opts Options) (*Pipeline, error) {
	if _, err := parser.NewDriver(opts.Parser); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Progress == nil {
		opts.Progress = &NoOpProgressReporter{}
	}
	if opts.Open == nil {
		opts.Open = textsource.Open
	}
	return &Pipeline{opts: opts}, nil
}

// Run extracts every path and returns the resolved Document. A document that
// cannot be read or parsed aborts the run, as does a subclass contradiction
// found by the resolver. Missing bases are returned as diagnostics.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	progress := p.opts.Progress
	progress.OnDocumentsStart(len(paths))

	units, err := p.parseAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, u := range units {
		total += len(u)
	}
	progress.OnResolveStart(total)

	asm := assemble.New(p.opts.Parser.PathDelimiter)
	for _, u := range units {
		asm.AddAll(u)
	}
	doc := asm.Document()

	diags, err := resolve.Resolve(doc, p.opts.Resolve)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model: %w", err)
	}

	res := &Result{Document: doc, Diagnostics: diags}
	res.Stats = collectStats(doc)
	res.Stats.Documents = len(paths)
	res.Stats.Discarded = asm.Discarded
	res.Stats.Warnings = diags.Len()
	res.Stats.Duration = time.Since(start)

	log.Infof("extracted %d classes, %d enumerations, %d primitives from %d documents in %s",
		res.Stats.Classes, res.Stats.Enumerations, res.Stats.Primitives, res.Stats.Documents, res.Stats.Duration)
	progress.OnComplete(&res.Stats)
	return res, nil
}

// parseAll parses every document in parallel and returns the constructs of
// each, indexed like paths.
func (p *Pipeline) parseAll(ctx context.Context, paths []string) ([][]model.Type, error) {
	units := make([][]model.Type, len(paths))
	if len(paths) == 0 {
		return units, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(p.opts.Workers, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			types, err := p.parseDocument(gctx, path)
			if err != nil {
				return err
			}
			units[i] = types

			mu.Lock()
			p.opts.Progress.OnDocumentParsed(path, len(types))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// parseDocument reads path and runs a fresh driver over its text.
func (p *Pipeline) parseDocument(ctx context.Context, path string) ([]model.Type, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := p.opts.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	buf, err := p.opts.Cache.Load(ctx, path, src, p.opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	driver, err := parser.NewDriver(p.opts.Parser)
	if err != nil {
		return nil, err
	}
	types, err := driver.Parse(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	log.Debugf("%s: %d lines, %d constructs", src.ID(), buf.Len(), len(types))
	return types, nil
}

func collectStats(doc *model.Document) Stats {
	var s Stats
	for _, t := range doc.Types() {
		switch t.Kind() {
		case model.KindClass:
			s.Classes++
		case model.KindEnumeration:
			s.Enumerations++
		case model.KindPrimitive:
			s.Primitives++
		}
	}
	for _, top := range doc.Packages {
		top.Walk(func(*model.Package) { s.Packages++ })
	}
	s.RootClasses = len(doc.RootClasses)
	return s
}
