// Package lines rebuilds text lines from the positioned words of a page.
package lines

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mvp-joe/specmodel/internal/textsource"
)

// DefaultTolerance is the vertical distance within which two words share a line.
const DefaultTolerance = 3.0

const (
	markerPrefix = "<<page "
	markerSuffix = ">>"
)

// Marker returns the page-boundary marker line for page.
func Marker(page int) string {
	return fmt.Sprintf("%s%d%s", markerPrefix, page, markerSuffix)
}

// ParseMarker reports whether line is a page marker and which page it opens.
func ParseMarker(line string) (int, bool) {
	if !strings.HasPrefix(line, markerPrefix) || !strings.HasSuffix(line, markerSuffix) {
		return 0, false
	}
	n, err := strconv.Atoi(line[len(markerPrefix) : len(line)-len(markerSuffix)])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

type row struct {
	y     float64
	words []textsource.Word
}

// Reconstruct groups the words of one page into lines. Words whose vertical
// positions differ by at most tolerance share a line; lines keep the order in
// which they first appear and words within a line are ordered by horizontal
// position and joined by a single space. The first line returned is the page
// marker. A page without words yields no lines.
func Reconstruct(page int, words []textsource.Word, tolerance float64) []string {
	if tolerance < 0 {
		tolerance = 0
	}

	var rows []*row
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		w.Text = text
		var target *row
		for _, r := range rows {
			if math.Abs(r.y-w.Y) <= tolerance {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{y: w.Y}
			rows = append(rows, target)
		}
		target.words = append(target.words, w)
	}
	if len(rows) == 0 {
		return nil
	}

	out := make([]string, 0, len(rows)+1)
	out = append(out, Marker(page))
	for _, r := range rows {
		sort.SliceStable(r.words, func(i, j int) bool { return r.words[i].X < r.words[j].X })
		parts := make([]string, len(r.words))
		for i, w := range r.words {
			parts[i] = strings.Join(strings.Fields(w.Text), " ")
		}
		out = append(out, strings.Join(parts, " "))
	}
	return out
}
