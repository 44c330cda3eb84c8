// Package export writes a resolved Document to disk as JSON, MessagePack or a
// SQLite database, and reads the file formats back.
package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/specmodel/internal/diag"
	"github.com/mvp-joe/specmodel/internal/model"
)

// FormatVersion is the current version of the snapshot format.
const FormatVersion = "1.1"

// Snapshot is the serialized form of a Document and its diagnostics.
type Snapshot struct {
	Metadata    Metadata         `json:"metadata" msgpack:"metadata"`
	Packages    []*PackageRecord `json:"packages" msgpack:"packages"`
	RootClasses []TypeRef        `json:"root_classes" msgpack:"root_classes"`
	Diagnostics []string         `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// Metadata identifies one export run.
type Metadata struct {
	Version     string    `json:"version" msgpack:"version"`
	RunID       string    `json:"run_id" msgpack:"run_id"`
	GeneratedAt time.Time `json:"generated_at" msgpack:"generated_at"`
	Delimiter   string    `json:"delimiter" msgpack:"delimiter"`
	TypeCount   int       `json:"type_count" msgpack:"type_count"`
}

// PackageRecord is one node of the package tree.
type PackageRecord struct {
	Name        string           `json:"name" msgpack:"name"`
	Path        string           `json:"path" msgpack:"path"`
	Types       []*TypeRecord    `json:"types,omitempty" msgpack:"types,omitempty"`
	Subpackages []*PackageRecord `json:"subpackages,omitempty" msgpack:"subpackages,omitempty"`
}

// TypeRecord flattens the three type variants; Kind tells which fields apply.
type TypeRecord struct {
	Kind      string                 `json:"kind" msgpack:"kind"`
	Name      string                 `json:"name" msgpack:"name"`
	Package   string                 `json:"package" msgpack:"package"`
	Note      string                 `json:"note,omitempty" msgpack:"note,omitempty"`
	Locations []model.SourceLocation `json:"locations,omitempty" msgpack:"locations,omitempty"`

	Abstract     bool     `json:"abstract,omitempty" msgpack:"abstract,omitempty"`
	ATP          string   `json:"atp,omitempty" msgpack:"atp,omitempty"`
	Bases        []string `json:"bases,omitempty" msgpack:"bases,omitempty"`
	Parent       string   `json:"parent,omitempty" msgpack:"parent,omitempty"`
	Children     []string `json:"children,omitempty" msgpack:"children,omitempty"`
	Subclasses   []string `json:"subclasses,omitempty" msgpack:"subclasses,omitempty"`
	AggregatedBy []string `json:"aggregated_by,omitempty" msgpack:"aggregated_by,omitempty"`

	Attributes []*AttributeRecord `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
	Literals   []*LiteralRecord   `json:"literals,omitempty" msgpack:"literals,omitempty"`
}

// AttributeRecord is one class or primitive attribute.
type AttributeRecord struct {
	Name         string `json:"name" msgpack:"name"`
	Type         string `json:"type" msgpack:"type"`
	Multiplicity string `json:"multiplicity" msgpack:"multiplicity"`
	Kind         string `json:"kind" msgpack:"kind"`
	Note         string `json:"note,omitempty" msgpack:"note,omitempty"`
}

// LiteralRecord is one enumeration literal.
type LiteralRecord struct {
	Name        string      `json:"name" msgpack:"name"`
	Index       *int        `json:"index,omitempty" msgpack:"index,omitempty"`
	Description string      `json:"description,omitempty" msgpack:"description,omitempty"`
	Tags        []model.Tag `json:"tags,omitempty" msgpack:"tags,omitempty"`
}

// TypeRef names a type by its package path and name.
type TypeRef struct {
	Package string `json:"package" msgpack:"package"`
	Name    string `json:"name" msgpack:"name"`
}

func (r TypeRef) key() string { return r.Package + "\x00" + r.Name }

// NewSnapshot converts doc and diags. Each call gets a fresh run id.
func NewSnapshot(doc *model.Document, diags *diag.Collector) *Snapshot {
	snap := &Snapshot{
		Metadata: Metadata{
			Version:     FormatVersion,
			RunID:       uuid.NewString(),
			GeneratedAt: time.Now().UTC(),
			Delimiter:   doc.Delimiter,
		},
		Diagnostics: diags.Warnings(),
	}
	if snap.Metadata.Delimiter == "" {
		snap.Metadata.Delimiter = model.DefaultPathDelimiter
	}
	for _, top := range doc.Packages {
		snap.Packages = append(snap.Packages, packageRecord(top))
	}
	for _, c := range doc.RootClasses {
		snap.RootClasses = append(snap.RootClasses, TypeRef{Package: c.PackagePath, Name: c.Name})
	}
	snap.Metadata.TypeCount = len(doc.Types())
	return snap
}

func packageRecord(p *model.Package) *PackageRecord {
	rec := &PackageRecord{Name: p.Name, Path: p.Path}
	for _, t := range p.Types {
		rec.Types = append(rec.Types, NewTypeRecord(t))
	}
	for _, sub := range p.Subpackages {
		rec.Subpackages = append(rec.Subpackages, packageRecord(sub))
	}
	return rec
}

// NewTypeRecord converts one type.
func NewTypeRecord(t model.Type) *TypeRecord {
	info := t.Info()
	rec := &TypeRecord{
		Kind:      string(t.Kind()),
		Name:      info.Name,
		Package:   info.PackagePath,
		Note:      info.Note,
		Locations: info.Locations,
	}
	switch v := t.(type) {
	case *model.Class:
		rec.Abstract = v.Abstract
		if v.ATP != model.ATPNone {
			rec.ATP = v.ATP.String()
		}
		rec.Bases = v.Bases
		rec.Parent = v.Parent
		rec.Children = v.Children
		rec.Subclasses = v.Subclasses
		rec.AggregatedBy = v.AggregatedBy
		rec.Attributes = attributeRecords(v.Attributes)
	case *model.Primitive:
		rec.Attributes = attributeRecords(v.Attributes)
	case *model.Enumeration:
		for _, lit := range v.Literals {
			rec.Literals = append(rec.Literals, &LiteralRecord{
				Name:        lit.Name,
				Index:       lit.Index,
				Description: lit.Description,
				Tags:        lit.Tags,
			})
		}
	}
	return rec
}

func attributeRecords(attrs model.Attributes) []*AttributeRecord {
	var out []*AttributeRecord
	for _, a := range attrs {
		out = append(out, &AttributeRecord{
			Name:         a.Name,
			Type:         a.TypeName,
			Multiplicity: a.Multiplicity,
			Kind:         string(a.Kind),
			Note:         a.Note,
		})
	}
	return out
}

// Document rebuilds the model from a snapshot. Parent and Children come back
// as they were exported; the snapshot is not re-resolved.
func (s *Snapshot) Document() *model.Document {
	doc := &model.Document{Delimiter: s.Metadata.Delimiter}
	for _, rec := range s.Packages {
		doc.Packages = append(doc.Packages, rec.toPackage())
	}
	for _, ref := range s.RootClasses {
		pkg, ok := doc.GetPackage(ref.Package)
		if !ok {
			continue
		}
		if t, ok := pkg.Type(ref.Name); ok {
			if c, ok := t.(*model.Class); ok {
				doc.RootClasses = append(doc.RootClasses, c)
			}
		}
	}
	return doc
}

func (r *PackageRecord) toPackage() *model.Package {
	p := &model.Package{Name: r.Name, Path: r.Path}
	for _, t := range r.Types {
		p.Types = append(p.Types, t.toType())
	}
	for _, sub := range r.Subpackages {
		p.Subpackages = append(p.Subpackages, sub.toPackage())
	}
	return p
}

func (r *TypeRecord) toType() model.Type {
	info := model.TypeInfo{Name: r.Name, PackagePath: r.Package, Note: r.Note, Locations: r.Locations}
	switch model.TypeKind(r.Kind) {
	case model.KindEnumeration:
		e := &model.Enumeration{TypeInfo: info}
		for _, lit := range r.Literals {
			e.Literals = append(e.Literals, &model.EnumLiteral{
				Name:        lit.Name,
				Index:       lit.Index,
				Description: lit.Description,
				Tags:        lit.Tags,
			})
		}
		return e
	case model.KindPrimitive:
		return &model.Primitive{TypeInfo: info, Attributes: modelAttributes(r.Attributes)}
	default:
		atp, _ := model.ParseATPMarker(r.ATP)
		return &model.Class{
			TypeInfo:     info,
			Abstract:     r.Abstract,
			ATP:          atp,
			Bases:        r.Bases,
			Parent:       r.Parent,
			Children:     r.Children,
			Subclasses:   r.Subclasses,
			AggregatedBy: r.AggregatedBy,
			Attributes:   modelAttributes(r.Attributes),
		}
	}
}

func modelAttributes(recs []*AttributeRecord) model.Attributes {
	var out model.Attributes
	for _, a := range recs {
		out = append(out, &model.Attribute{
			Name:         a.Name,
			TypeName:     a.Type,
			Multiplicity: a.Multiplicity,
			Kind:         model.AttributeKind(a.Kind),
			Note:         a.Note,
		})
	}
	return out
}
