package textbuf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/specmodel/internal/textsource"
)

type stubSource struct {
	pages []textsource.Page
	err   error
}

func (s *stubSource) ID() string { return "stub" }

func (s *stubSource) Pages(context.Context) ([]textsource.Page, error) {
	return s.pages, s.err
}

func TestLoad_ConcatenatesPagesWithMarkers(t *testing.T) {
	t.Parallel()

	src := &stubSource{pages: textsource.SplitPlainText("Class Foo\nPackage M2::Pkg\f\fBase A")}
	buf, err := Load(context.Background(), src, 1)
	require.NoError(t, err)

	assert.Equal(t, "stub", buf.DocumentID())
	assert.Equal(t, []string{
		"<<page 1>>", "Class Foo", "Package M2::Pkg",
		"<<page 3>>", "Base A",
	}, buf.Lines())
	assert.Equal(t, 5, buf.Len())
	assert.Equal(t, "Base A", buf.Line(4))
}

func TestLoad_PropagatesSourceError(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), &stubSource{err: errors.New("boom")}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stub")
}

func TestPeek_SkipsMarkersAndNoise(t *testing.T) {
	t.Parallel()

	buf := New("doc", []string{"Class Foo", "<<page 2>>", "AUTOSAR CONFIDENTIAL", "Package M2::Pkg", "Note x"})
	got := buf.Peek(0, 2, func(l string) bool { return strings.Contains(l, "CONFIDENTIAL") })
	assert.Equal(t, []string{"Package M2::Pkg", "Note x"}, got)
	assert.Empty(t, buf.Peek(4, 3, nil))
}
