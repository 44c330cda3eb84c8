package textsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for textsource:
// - Open selects the reader by extension and rejects unknown formats
// - DocumentID strips the known extensions
// - Word dumps group words by page in first-seen order
// - Word dumps report malformed records with file and line
// - Plain text splits pages on form feeds with synthetic positions

func TestOpen_SelectsReader(t *testing.T) {
	t.Parallel()

	src, err := Open("/data/AUTOSAR_TPS_Generic.words.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "AUTOSAR_TPS_Generic", src.ID())

	src, err = Open("/data/spec.TXT")
	require.NoError(t, err)
	assert.Equal(t, "spec", src.ID())

	_, err = Open("/data/spec.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWordDump_GroupsByPage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.words.jsonl")
	content := `{"page":1,"text":"Class","x":10,"y":700}
{"page":1,"text":"Foo","x":40,"y":700}

{"page":2,"text":"Package","x":10,"y":700}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	pages, err := NewWordDump(path).Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, []Word{{Text: "Class", X: 10, Y: 700}, {Text: "Foo", X: 40, Y: 700}}, pages[0].Words)
	assert.Equal(t, 2, pages[1].Number)
	assert.Len(t, pages[1].Words, 1)
}

func TestWordDump_MalformedRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.words.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"page\":1,\"text\":\"ok\"}\nnot json\n"), 0644))

	_, err := NewWordDump(path).Pages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.words.jsonl:2")

	zero := filepath.Join(dir, "zero.words.jsonl")
	require.NoError(t, os.WriteFile(zero, []byte("{\"page\":0,\"text\":\"x\"}\n"), 0644))
	_, err = NewWordDump(zero).Pages(context.Background())
	assert.Error(t, err)
}

func TestSplitPlainText(t *testing.T) {
	t.Parallel()

	pages := SplitPlainText("Class Foo\nPackage M2::Pkg\fNote hello")
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, []Word{
		{Text: "Class", X: 0, Y: 0},
		{Text: "Foo", X: 1, Y: 0},
		{Text: "Package", X: 0, Y: PlainTextLinePitch},
		{Text: "M2::Pkg", X: 1, Y: PlainTextLinePitch},
	}, pages[0].Words)
	assert.Equal(t, 2, pages[1].Number)
	assert.Len(t, pages[1].Words, 2)
}
