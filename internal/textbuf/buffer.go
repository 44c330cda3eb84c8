// Package textbuf holds the reconstructed text of a document: the ordered lines
// of all its pages, page markers included, ready for the parse pass.
package textbuf

import (
	"context"
	"fmt"

	"github.com/mvp-joe/specmodel/internal/lines"
	"github.com/mvp-joe/specmodel/internal/textsource"
)

// Buffer is the immutable line sequence of one document.
type Buffer struct {
	docID string
	lines []string
}

// New wraps already reconstructed lines.
func New(docID string, ls []string) *Buffer {
	cp := make([]string, len(ls))
	copy(cp, ls)
	return &Buffer{docID: docID, lines: cp}
}

// Load pulls every page from src and reconstructs its lines.
func Load(ctx context.Context, src textsource.Source, tolerance float64) (*Buffer, error) {
	pages, err := src.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", src.ID(), err)
	}
	b := &Buffer{docID: src.ID()}
	for _, p := range pages {
		b.lines = append(b.lines, lines.Reconstruct(p.Number, p.Words, tolerance)...)
	}
	return b, nil
}

// DocumentID returns the id of the document the buffer was built from.
func (b *Buffer) DocumentID() string { return b.docID }

// Len returns the number of lines.
func (b *Buffer) Len() int { return len(b.lines) }

// Line returns line i.
func (b *Buffer) Line(i int) string { return b.lines[i] }

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}

// Peek returns up to n content lines following index i, skipping page
// markers and any line for which skip reports true.
func (b *Buffer) Peek(i, n int, skip func(string) bool) []string {
	var out []string
	for j := i + 1; j < len(b.lines) && len(out) < n; j++ {
		l := b.lines[j]
		if _, ok := lines.ParseMarker(l); ok {
			continue
		}
		if skip != nil && skip(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}
