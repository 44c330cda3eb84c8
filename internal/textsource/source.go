// Package textsource reads positioned-word streams produced by an external
// document-to-text extractor.
//
// A Source yields, for every page, the words of that page in reading order with
// their horizontal and vertical positions. Nothing else about the extractor is
// assumed: line grouping, spacing repair and page markers are the job of the
// lines package.
package textsource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Word is one positioned word.
type Word struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Page is the ordered word stream of one page.
type Page struct {
	Number int // 1-indexed
	Words  []Word
}

// Source is the text-extraction collaborator.
type Source interface {
	// ID identifies the document in source locations.
	ID() string

	// Pages returns every page of the document in order.
	Pages(ctx context.Context) ([]Page, error)
}

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported input format")

const (
	// WordDumpExt marks JSON Lines word dumps.
	WordDumpExt = ".words.jsonl"
	// PlainTextExt marks pre-rendered text with form-feed page breaks.
	PlainTextExt = ".txt"
)

// Open returns the Source matching path's extension.
func Open(path string) (Source, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, WordDumpExt):
		return NewWordDump(path), nil
	case strings.HasSuffix(lower, PlainTextExt):
		return NewPlainText(path), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// DocumentID derives a document id from a file path.
func DocumentID(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range []string{WordDumpExt, PlainTextExt} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
