package textsource

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// dumpRecord is one line of a word dump.
type dumpRecord struct {
	Page int     `json:"page"`
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type wordDump struct {
	path string
}

// NewWordDump returns a Source reading a JSON Lines word dump: one word object
// per line with page, text, x and y fields, in extractor order.
func NewWordDump(path string) Source {
	return &wordDump{path: path}
}

func (w *wordDump) ID() string { return DocumentID(w.path) }

func (w *wordDump) Pages(ctx context.Context) ([]Page, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word dump: %w", err)
	}
	defer f.Close()

	var pages []Page
	index := make(map[int]int)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rec dumpRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: failed to parse word record: %w", w.path, lineNo, err)
		}
		if rec.Page < 1 {
			return nil, fmt.Errorf("%s:%d: page number must be positive, got %d", w.path, lineNo, rec.Page)
		}
		i, ok := index[rec.Page]
		if !ok {
			i = len(pages)
			index[rec.Page] = i
			pages = append(pages, Page{Number: rec.Page})
		}
		pages[i].Words = append(pages[i].Words, Word{Text: rec.Text, X: rec.X, Y: rec.Y})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word dump: %w", err)
	}
	return pages, nil
}

type plainText struct {
	path string
}

// PlainTextLinePitch is the synthetic vertical distance between two lines of
// plain text. It exceeds any usable line tolerance, so every text line stays
// one reconstructed line.
const PlainTextLinePitch = 100.0

// NewPlainText returns a Source over pre-rendered text. Pages are separated by
// form feeds; every text line becomes a row of words with synthetic positions
// (x = word ordinal, y = line ordinal times PlainTextLinePitch).
func NewPlainText(path string) Source {
	return &plainText{path: path}
}

func (p *plainText) ID() string { return DocumentID(p.path) }

func (p *plainText) Pages(ctx context.Context) ([]Page, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SplitPlainText(string(data)), nil
}

// SplitPlainText converts form-feed separated text into pages of positioned
// words.
func SplitPlainText(text string) []Page {
	var pages []Page
	for i, pageText := range strings.Split(text, "\f") {
		page := Page{Number: i + 1}
		for row, line := range strings.Split(pageText, "\n") {
			for col, word := range strings.Fields(line) {
				page.Words = append(page.Words, Word{Text: word, X: float64(col), Y: float64(row) * PlainTextLinePitch})
			}
		}
		pages = append(pages, page)
	}
	return pages
}
