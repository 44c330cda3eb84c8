package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/specmodel/internal/parser"
	"github.com/mvp-joe/specmodel/internal/resolve"
	"github.com/mvp-joe/specmodel/internal/textsource"
)

// Test Plan for Pipeline:
// - A parent declared in one document resolves for a child in another
// - Results are pooled in input order regardless of worker scheduling
// - Duplicate types across documents keep the first and accumulate locations
// - Missing bases surface as diagnostics, subclass contradictions as errors
// - Unreadable inputs and parse failures abort the run
// - Progress callbacks see every document
// - The buffer cache serves unchanged files and misses changed ones

func newPipeline(t *testing.T, mutate func(*Options)) *Pipeline {
	t.Helper()
	opts := Options{
		Parser:    parser.DefaultOptions(),
		Resolve:   resolve.Options{RootClass: parser.DefaultRootClass},
		Tolerance: 3,
		Workers:   4,
	}
	if mutate != nil {
		mutate(&opts)
	}
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_ParentAcrossDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc1 := writeDoc(t, dir, "doc1.txt", "Class Parent\nPackage M2::Pkg\n")
	doc2 := writeDoc(t, dir, "doc2.txt", "Class Child\nPackage M2::Pkg\nBase Parent\n")

	res, err := newPipeline(t, nil).Run(context.Background(), []string{doc1, doc2})
	require.NoError(t, err)

	child, ok := res.Document.Class("Child")
	require.True(t, ok)
	assert.Equal(t, "Parent", child.Parent)
	assert.Equal(t, "doc2", child.Locations[0].DocumentID)

	parent, ok := res.Document.GetRootClass("Parent")
	require.True(t, ok)
	assert.Equal(t, []string{"Child"}, parent.Children)
	assert.Zero(t, res.Diagnostics.Len())

	assert.Equal(t, 2, res.Stats.Documents)
	assert.Equal(t, 2, res.Stats.Classes)
	assert.Equal(t, 2, res.Stats.Packages)
	assert.Equal(t, 1, res.Stats.RootClasses)
}

func TestRun_InputOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		paths = append(paths, writeDoc(t, dir, name, "Class Shared\nPackage M2::Pkg\nNote from "+name+"\n"+
			"Class Only"+name[:1]+"\nPackage M2::Pkg\n"))
	}

	res, err := newPipeline(t, func(o *Options) { o.Workers = 3 }).Run(context.Background(), paths)
	require.NoError(t, err)

	pkg, ok := res.Document.GetPackage("M2::Pkg")
	require.True(t, ok)
	var names []string
	for _, ty := range pkg.Types {
		names = append(names, ty.Info().Name)
	}
	assert.Equal(t, []string{"Shared", "Onlya", "Onlyb", "Onlyc", "Onlyd", "Onlye"}, names)

	shared := pkg.Types[0].Info()
	assert.Equal(t, "from a.txt", shared.Note)
	require.Len(t, shared.Locations, 5)
	for i, loc := range shared.Locations {
		assert.Equal(t, string(rune('a'+i)), loc.DocumentID)
	}
	assert.Equal(t, 4, res.Stats.Discarded)
}

func TestRun_Diagnostics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.txt", "Class Foo\nPackage M2::Pkg\nBase ARObject,Identifiable\nNote A foo.\n")

	res, err := newPipeline(t, nil).Run(context.Background(), []string{path})
	require.NoError(t, err)

	foo, ok := res.Document.Class("Foo")
	require.True(t, ok)
	assert.Equal(t, []string{"Identifiable"}, foo.Bases)
	assert.Equal(t, "", foo.Parent)
	assert.Equal(t, []string{"class Identifiable is referenced as a base by Foo but is not defined"}, res.Diagnostics.Warnings())
	assert.Equal(t, 1, res.Stats.Warnings)
}

func TestRun_SubclassContradiction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.txt", "Class C\nPackage M2::Pkg\nSubclasses X\nClass X\nPackage M2::Pkg\n")

	_, err := newPipeline(t, nil).Run(context.Background(), []string{path})
	require.Error(t, err)

	var subErr *resolve.SubclassError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "C", subErr.Class)
	assert.Equal(t, "X", subErr.Subclass)
	assert.ErrorIs(t, err, resolve.ErrSubclassNotDerived)
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeDoc(t, dir, "good.txt", "Class Foo\nPackage M2::Pkg\n")
	bad := writeDoc(t, dir, "bad.txt", "Class <<atpVariation>> <<atpMixed>> Bad\nPackage M2::Pkg\n")
	unknown := writeDoc(t, dir, "spec.pdf", "%PDF")

	p := newPipeline(t, nil)

	_, err := p.Run(context.Background(), []string{good, unknown})
	assert.ErrorIs(t, err, textsource.ErrUnsupportedFormat)

	_, err = p.Run(context.Background(), []string{good, filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)

	_, err = p.Run(context.Background(), []string{good, bad})
	var markerErr *parser.MarkerError
	assert.True(t, errors.As(err, &markerErr))
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()

	res, err := newPipeline(t, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Document.Packages)
}

type recordingProgress struct {
	mu      sync.Mutex
	total   int
	parsed  []string
	types   int
	stats   *Stats
	resolve bool
}

func (r *recordingProgress) OnDocumentsStart(total int) { r.total = total }
func (r *recordingProgress) OnDocumentParsed(path string, types int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsed = append(r.parsed, filepath.Base(path))
}
func (r *recordingProgress) OnResolveStart(types int) { r.resolve, r.types = true, types }
func (r *recordingProgress) OnComplete(stats *Stats)  { r.stats = stats }

func TestRun_Progress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeDoc(t, dir, "a.txt", "Class A\nPackage M2::Pkg\n")
	b := writeDoc(t, dir, "b.txt", "Enumeration E\nPackage M2::Pkg\n")

	rec := &recordingProgress{}
	_, err := newPipeline(t, func(o *Options) { o.Progress = rec }).Run(context.Background(), []string{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, rec.total)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, rec.parsed)
	assert.True(t, rec.resolve)
	assert.Equal(t, 2, rec.types)
	require.NotNil(t, rec.stats)
	assert.Equal(t, 1, rec.stats.Enumerations)
}

type countingSource struct {
	textsource.Source
	mu    *sync.Mutex
	reads *int
}

func (c countingSource) Pages(ctx context.Context) ([]textsource.Page, error) {
	c.mu.Lock()
	*c.reads++
	c.mu.Unlock()
	return c.Source.Pages(ctx)
}

func TestRun_BufferCache(t *testing.T) {
	t.Parallel()

	cache, err := NewBufferCache(8)
	require.NoError(t, err)
	defer cache.Close()

	var mu sync.Mutex
	reads := 0
	p := newPipeline(t, func(o *Options) {
		o.Cache = cache
		o.Open = func(path string) (textsource.Source, error) {
			src, err := textsource.Open(path)
			if err != nil {
				return nil, err
			}
			return countingSource{Source: src, mu: &mu, reads: &reads}, nil
		}
	})

	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.txt", "Class Foo\nPackage M2::Pkg\n")

	_, err = p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	res, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	_, ok := res.Document.Class("Foo")
	assert.True(t, ok)

	writeDoc(t, dir, "doc.txt", "Class Foo\nPackage M2::Pkg\nClass Bar\nPackage M2::Pkg\n")
	res, err = p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
	_, ok = res.Document.Class("Bar")
	assert.True(t, ok)
}

func TestNewBufferCache_Disabled(t *testing.T) {
	t.Parallel()

	cache, err := NewBufferCache(0)
	require.NoError(t, err)
	assert.Nil(t, cache)
	assert.Zero(t, cache.Len())
	cache.Close()
}

func TestNew_InvalidParserOptions(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Parser: parser.Options{}})
	assert.ErrorIs(t, err, parser.ErrInvalidOptions)
}
