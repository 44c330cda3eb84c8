package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"github.com/vmihailenco/msgpack/v5"
)

var log = commonlog.GetLogger("specmodel.export")

// Output formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatSQLite  = "sqlite"
)

// ErrUnknownFormat is returned for a format no writer handles.
var ErrUnknownFormat = errors.New("unknown export format")

// Writer persists a snapshot under one directory.
type Writer interface {
	// Format returns the format name.
	Format() string

	// Write saves snap and returns the final file path. The file appears
	// atomically: readers see either the previous export or the new one.
	Write(snap *Snapshot) (string, error)
}

// NewWriter returns the writer for format, writing <dir>/<name>.<ext>.
func NewWriter(format, dir, name string) (Writer, error) {
	base := fileBase{dir: dir, name: name}
	switch format {
	case FormatJSON:
		return &JSONWriter{fileBase: base}, nil
	case FormatMsgpack:
		return &MsgpackWriter{fileBase: base}, nil
	case FormatSQLite:
		return &SQLiteWriter{fileBase: base}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteAll writes snap once per format and returns the written paths in
// format order.
func WriteAll(snap *Snapshot, dir, name string, formats []string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		w, err := NewWriter(format, dir, name)
		if err != nil {
			return paths, err
		}
		path, err := w.Write(snap)
		if err != nil {
			return paths, fmt.Errorf("failed to write %s export: %w", format, err)
		}
		log.Infof("wrote %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}

type fileBase struct {
	dir  string
	name string
}

func (b fileBase) path(ext string) string {
	return filepath.Join(b.dir, b.name+ext)
}

// tempPath returns a path in <dir>/.tmp, creating both directories.
func (b fileBase) tempPath(ext string) (string, error) {
	tempDir := filepath.Join(b.dir, ".tmp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	return filepath.Join(tempDir, b.name+ext), nil
}

// commit moves a finished temp file into place.
func (b fileBase) commit(tempPath, ext string) (string, error) {
	finalPath := b.path(ext)
	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	return finalPath, nil
}

func (b fileBase) writeBytes(data []byte, ext string) (string, error) {
	tempPath, err := b.tempPath(ext)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return b.commit(tempPath, ext)
}

// JSONWriter writes indented JSON.
type JSONWriter struct {
	fileBase
}

func (w *JSONWriter) Format() string { return FormatJSON }

func (w *JSONWriter) Write(snap *Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return w.writeBytes(data, ".json")
}

// MsgpackWriter writes MessagePack.
type MsgpackWriter struct {
	fileBase
}

func (w *MsgpackWriter) Format() string { return FormatMsgpack }

func (w *MsgpackWriter) Write(snap *Snapshot) (string, error) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return w.writeBytes(data, ".msgpack")
}

// Load reads a JSON or MessagePack snapshot, chosen by file extension.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &snap)
	case ".msgpack":
		err = msgpack.Unmarshal(data, &snap)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}
