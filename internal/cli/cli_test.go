package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/specmodel/internal/config"
	"github.com/mvp-joe/specmodel/internal/export"
)

// Test Plan for CLI commands:
// - extract writes every requested format under the output directory
// - extract rejects unknown formats before reading anything
// - extract --watch re-extracts after an input changes
// - validate prints diagnostics and fails only in strict mode
// - serve builds its store from a snapshot or from extraction
// - watch targets cover explicit files and walked directories
// - formatNumber inserts thousand separators

const (
	baseDoc  = "Class Referrable\nPackage M2::Generic\nNote Base of named things.\n"
	childDoc = "Class Identifiable\nPackage M2::Generic\nBase Referrable\n"
	badDoc   = "Class Port\nPackage M2::Generic\nBase Missing\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExecuteExtract(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "docs/generic.txt", baseDoc)
	writeFile(t, root, "docs/ids.txt", childDoc)

	var out, errOut bytes.Buffer
	err := executeExtract(context.Background(), extractOptions{
		rootDir: root,
		formats: []string{"json", "sqlite"},
	}, nil, &out, &errOut)
	require.NoError(t, err)

	outDir := filepath.Join(root, ".specmodel", "out")
	assert.FileExists(t, filepath.Join(outDir, "model.json"))
	assert.FileExists(t, filepath.Join(outDir, "model.db"))
	assert.Contains(t, out.String(), "Wrote "+filepath.Join(outDir, "model.json"))
	assert.Contains(t, errOut.String(), "Extracted 2 types from 2 documents")

	snap, err := export.Load(filepath.Join(outDir, "model.json"))
	require.NoError(t, err)
	assert.Equal(t, []export.TypeRef{{Package: "M2::Generic", Name: "Referrable"}}, snap.RootClasses)
}

func TestExecuteExtract_OutFlagAndQuiet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	doc := writeFile(t, root, "generic.txt", baseDoc)
	outDir := filepath.Join(t.TempDir(), "elsewhere")

	var out, errOut bytes.Buffer
	err := executeExtract(context.Background(), extractOptions{
		rootDir: root,
		formats: []string{"msgpack"},
		outDir:  outDir,
		quiet:   true,
	}, []string{doc}, &out, &errOut)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "model.msgpack"))
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestExecuteExtract_InvalidFormat(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := executeExtract(context.Background(), extractOptions{
		rootDir: t.TempDir(),
		formats: []string{"xml"},
	}, nil, &out, &out)
	assert.ErrorIs(t, err, config.ErrInvalidFormat)
}

func TestExecuteExtract_Watch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	doc := writeFile(t, root, "generic.txt", baseDoc)
	jsonPath := filepath.Join(root, ".specmodel", "out", "model.json")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var out, errOut bytes.Buffer
		done <- executeExtract(ctx, extractOptions{rootDir: root, quiet: true, watch: true}, nil, &out, &errOut)
	}()

	hasClass := func(name string) bool {
		snap, err := export.Load(jsonPath)
		if err != nil {
			return false
		}
		_, ok := snap.Document().Class(name)
		return ok
	}
	require.Eventually(t, func() bool { return hasClass("Referrable") }, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(doc, []byte(baseDoc+childDoc), 0644))
	require.Eventually(t, func() bool { return hasClass("Identifiable") }, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestExecuteValidate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "generic.txt", baseDoc)
	writeFile(t, root, "ports.txt", badDoc)

	var out bytes.Buffer
	require.NoError(t, executeValidate(context.Background(), root, "", nil, false, &out))
	assert.Contains(t, out.String(), "class Missing is referenced as a base by Port but is not defined")
	assert.NoDirExists(t, filepath.Join(root, ".specmodel", "out"))

	out.Reset()
	err := executeValidate(context.Background(), root, "", nil, true, &out)
	assert.ErrorIs(t, err, ErrWarnings)
}

func TestExecuteValidate_ExplicitConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "generic.txt", baseDoc)
	cfgPath := writeFile(t, root, "custom.yml", "parsing:\n  path_delimiter: \"\"\n")

	var out bytes.Buffer
	err := executeValidate(context.Background(), root, cfgPath, nil, false, &out)
	assert.ErrorIs(t, err, config.ErrEmptyDelimiter)

	err = executeValidate(context.Background(), root, filepath.Join(root, "missing.yml"), nil, false, &out)
	assert.Error(t, err)
}

func TestBuildStore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "generic.txt", baseDoc+childDoc)
	var errOut bytes.Buffer

	store, start, cleanup, err := buildStore(context.Background(), root, "", "", nil, false, &errOut)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, start)

	doc, _, err := store.Current()
	require.NoError(t, err)
	child, ok := doc.Class("Identifiable")
	require.True(t, ok)
	assert.Equal(t, "Referrable", child.Parent)

	// Export, then serve the export.
	var out bytes.Buffer
	require.NoError(t, executeExtract(context.Background(), extractOptions{rootDir: root, quiet: true}, nil, &out, &out))
	snapPath := filepath.Join(root, ".specmodel", "out", "model.json")

	static, start, cleanup2, err := buildStore(context.Background(), root, "", snapPath, nil, false, &errOut)
	require.NoError(t, err)
	defer cleanup2()
	assert.Nil(t, start)
	doc, _, err = static.Current()
	require.NoError(t, err)
	_, ok = doc.GetRootClass("Referrable")
	assert.True(t, ok)
	assert.Contains(t, errOut.String(), "Serving snapshot")

	_, _, _, err = buildStore(context.Background(), root, "", filepath.Join(root, "missing.json"), nil, false, &errOut)
	assert.Error(t, err)
}

func TestWatchTargets(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := writeFile(t, root, "a/spec.txt", baseDoc)
	writeFile(t, root, "b/other.txt", childDoc)
	dirB := filepath.Join(root, "b")

	s, err := newSession(root, "", nil, false)
	require.NoError(t, err)
	defer s.close()

	dirs, match, err := s.watchTargets([]string{file, dirB})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a"), dirB}, dirs)
	assert.True(t, match(file))
	assert.False(t, match(filepath.Join(root, "a", "sibling.txt")))
	assert.True(t, match(filepath.Join(dirB, "new.txt")))
	assert.False(t, match(filepath.Join(dirB, "new.md")))

	dirs, match, err = s.watchTargets(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, dirs)
	assert.True(t, match(filepath.Join(root, "a", "sibling.txt")))
	assert.False(t, match(filepath.Join(root, ".specmodel", "out", "model.txt")))

	_, _, err = s.watchTargets([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n))
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "specmodel")
	assert.Contains(t, out.String(), "Snapshot format: "+export.FormatVersion)

	out.Reset()
	shortVersion = true
	defer func() { shortVersion = false }()
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, Version+"\n", out.String())
}
