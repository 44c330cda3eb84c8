package export

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// Relations stored in type_relations.
const (
	RelationBase         = "base"
	RelationChild        = "child"
	RelationSubclass     = "subclass"
	RelationAggregatedBy = "aggregated_by"
)

const createMetaTable = `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const createPackagesTable = `
CREATE TABLE packages (
    path        TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    parent_path TEXT REFERENCES packages(path)
)`

const createTypesTable = `
CREATE TABLE types (
    type_id      INTEGER PRIMARY KEY,
    package_path TEXT NOT NULL REFERENCES packages(path),
    position     INTEGER NOT NULL,
    kind         TEXT NOT NULL,
    name         TEXT NOT NULL,
    note         TEXT NOT NULL DEFAULT '',
    abstract     INTEGER NOT NULL DEFAULT 0,
    atp          TEXT NOT NULL DEFAULT '',
    parent       TEXT NOT NULL DEFAULT '',
    is_root      INTEGER NOT NULL DEFAULT 0
)`

const createTypeRelationsTable = `
CREATE TABLE type_relations (
    type_id  INTEGER NOT NULL REFERENCES types(type_id) ON DELETE CASCADE,
    relation TEXT NOT NULL,
    position INTEGER NOT NULL,
    target   TEXT NOT NULL,
    PRIMARY KEY (type_id, relation, position)
)`

const createTypeLocationsTable = `
CREATE TABLE type_locations (
    type_id          INTEGER NOT NULL REFERENCES types(type_id) ON DELETE CASCADE,
    position         INTEGER NOT NULL,
    document_id      TEXT NOT NULL,
    page             INTEGER NOT NULL,
    standard_name    TEXT NOT NULL DEFAULT '',
    standard_release TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (type_id, position)
)`

const createAttributesTable = `
CREATE TABLE attributes (
    type_id      INTEGER NOT NULL REFERENCES types(type_id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    name         TEXT NOT NULL,
    type_name    TEXT NOT NULL,
    multiplicity TEXT NOT NULL,
    kind         TEXT NOT NULL,
    note         TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (type_id, position)
)`

const createLiteralsTable = `
CREATE TABLE literals (
    literal_id  INTEGER PRIMARY KEY,
    type_id     INTEGER NOT NULL REFERENCES types(type_id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    name        TEXT NOT NULL,
    idx         INTEGER,
    description TEXT NOT NULL DEFAULT ''
)`

const createLiteralTagsTable = `
CREATE TABLE literal_tags (
    literal_id INTEGER NOT NULL REFERENCES literals(literal_id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    PRIMARY KEY (literal_id, position)
)`

const createDiagnosticsTable = `
CREATE TABLE diagnostics (
    position INTEGER PRIMARY KEY,
    message  TEXT NOT NULL
)`

var indexes = []string{
	"CREATE INDEX idx_types_name ON types(name)",
	"CREATE INDEX idx_types_parent ON types(parent)",
	"CREATE INDEX idx_type_relations_target ON type_relations(relation, target)",
	"CREATE INDEX idx_literals_type ON literals(type_id)",
}

// SQLiteWriter writes a SQLite database with one row per package, type,
// attribute, literal and diagnostic.
type SQLiteWriter struct {
	fileBase
}

func (w *SQLiteWriter) Format() string { return FormatSQLite }

func (w *SQLiteWriter) Write(snap *Snapshot) (string, error) {
	tempPath, err := w.tempPath(".db")
	if err != nil {
		return "", err
	}
	for _, suffix := range []string{"", "-journal"} {
		if err := os.Remove(tempPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to clear temp database: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	if err := writeDatabase(db, snap); err != nil {
		db.Close()
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", fmt.Errorf("failed to close database: %w", err)
	}
	return w.commit(tempPath, ".db")
}

func writeDatabase(db *sql.DB, snap *Snapshot) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createSchema(tx); err != nil {
		return err
	}
	if err := writeMeta(tx, snap.Metadata); err != nil {
		return err
	}

	roots := make(map[string]bool, len(snap.RootClasses))
	for _, ref := range snap.RootClasses {
		roots[ref.key()] = true
	}
	for _, pkg := range snap.Packages {
		if err := writePackage(tx, pkg, "", roots); err != nil {
			return err
		}
	}
	if err := writeDiagnostics(tx, snap.Diagnostics); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func createSchema(tx *sql.Tx) error {
	tables := []struct {
		name string
		ddl  string
	}{
		{"meta", createMetaTable},
		{"packages", createPackagesTable},
		{"types", createTypesTable},
		{"type_relations", createTypeRelationsTable},
		{"type_locations", createTypeLocationsTable},
		{"attributes", createAttributesTable},
		{"literals", createLiteralsTable},
		{"literal_tags", createLiteralTagsTable},
		{"diagnostics", createDiagnosticsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}
	return nil
}

func writeMeta(tx *sql.Tx, m Metadata) error {
	insert := sq.Insert("meta").Columns("key", "value").
		Values("version", m.Version).
		Values("run_id", m.RunID).
		Values("generated_at", m.GeneratedAt.Format("2006-01-02T15:04:05.000Z07:00")).
		Values("delimiter", m.Delimiter).
		Values("type_count", strconv.Itoa(m.TypeCount))
	if _, err := insert.RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func writePackage(tx *sql.Tx, pkg *PackageRecord, parentPath string, roots map[string]bool) error {
	var parent any
	if parentPath != "" {
		parent = parentPath
	}
	_, err := sq.Insert("packages").
		Columns("path", "name", "parent_path").
		Values(pkg.Path, pkg.Name, parent).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert package %s: %w", pkg.Path, err)
	}

	for i, t := range pkg.Types {
		if err := writeType(tx, pkg.Path, i, t, roots[TypeRef{Package: pkg.Path, Name: t.Name}.key()]); err != nil {
			return err
		}
	}
	for _, sub := range pkg.Subpackages {
		if err := writePackage(tx, sub, pkg.Path, roots); err != nil {
			return err
		}
	}
	return nil
}

func writeType(tx *sql.Tx, pkgPath string, position int, t *TypeRecord, isRoot bool) error {
	res, err := sq.Insert("types").
		Columns("package_path", "position", "kind", "name", "note", "abstract", "atp", "parent", "is_root").
		Values(pkgPath, position, t.Kind, t.Name, t.Note, boolToInt(t.Abstract), t.ATP, t.Parent, boolToInt(isRoot)).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert type %s: %w", t.Name, err)
	}
	typeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read id of type %s: %w", t.Name, err)
	}

	relations := []struct {
		name    string
		targets []string
	}{
		{RelationBase, t.Bases},
		{RelationChild, t.Children},
		{RelationSubclass, t.Subclasses},
		{RelationAggregatedBy, t.AggregatedBy},
	}
	for _, rel := range relations {
		for i, target := range rel.targets {
			_, err := sq.Insert("type_relations").
				Columns("type_id", "relation", "position", "target").
				Values(typeID, rel.name, i, target).
				RunWith(tx).
				Exec()
			if err != nil {
				return fmt.Errorf("failed to insert %s of %s: %w", rel.name, t.Name, err)
			}
		}
	}

	for i, loc := range t.Locations {
		_, err := sq.Insert("type_locations").
			Columns("type_id", "position", "document_id", "page", "standard_name", "standard_release").
			Values(typeID, i, loc.DocumentID, loc.Page, loc.StandardName, loc.StandardRelease).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert location of %s: %w", t.Name, err)
		}
	}

	for i, a := range t.Attributes {
		_, err := sq.Insert("attributes").
			Columns("type_id", "position", "name", "type_name", "multiplicity", "kind", "note").
			Values(typeID, i, a.Name, a.Type, a.Multiplicity, a.Kind, a.Note).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert attribute %s.%s: %w", t.Name, a.Name, err)
		}
	}

	for i, lit := range t.Literals {
		if err := writeLiteral(tx, typeID, i, lit); err != nil {
			return fmt.Errorf("failed to insert literal %s.%s: %w", t.Name, lit.Name, err)
		}
	}
	return nil
}

func writeLiteral(tx *sql.Tx, typeID int64, position int, lit *LiteralRecord) error {
	var idx any
	if lit.Index != nil {
		idx = *lit.Index
	}
	res, err := sq.Insert("literals").
		Columns("type_id", "position", "name", "idx", "description").
		Values(typeID, position, lit.Name, idx, lit.Description).
		RunWith(tx).
		Exec()
	if err != nil {
		return err
	}
	literalID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, tag := range lit.Tags {
		_, err := sq.Insert("literal_tags").
			Columns("literal_id", "position", "key", "value").
			Values(literalID, i, tag.Key, tag.Value).
			RunWith(tx).
			Exec()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeDiagnostics(tx *sql.Tx, diagnostics []string) error {
	for i, msg := range diagnostics {
		_, err := sq.Insert("diagnostics").
			Columns("position", "message").
			Values(i, msg).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
