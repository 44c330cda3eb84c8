// Package model defines the object model extracted from specification documents:
// types (classes, enumerations, primitives), the package tree and the document.
package model

import "fmt"

// TypeKind identifies which variant of Type a value is.
type TypeKind string

const (
	KindClass       TypeKind = "class"
	KindEnumeration TypeKind = "enumeration"
	KindPrimitive   TypeKind = "primitive"
)

// SourceLocation records where a construct was declared.
type SourceLocation struct {
	DocumentID      string `json:"document_id" msgpack:"document_id"`
	Page            int    `json:"page" msgpack:"page"` // 1-indexed
	StandardName    string `json:"standard_name,omitempty" msgpack:"standard_name,omitempty"`
	StandardRelease string `json:"standard_release,omitempty" msgpack:"standard_release,omitempty"`
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d", l.DocumentID, l.Page)
}

// Type is a Class, Enumeration or Primitive.
type Type interface {
	Kind() TypeKind
	Info() *TypeInfo
}

// TypeInfo holds the fields every Type variant carries.
type TypeInfo struct {
	Name        string
	PackagePath string
	Note        string
	Locations   []SourceLocation
}

// Info returns the receiver; it lets variants embedding TypeInfo satisfy Type.
func (i *TypeInfo) Info() *TypeInfo { return i }

// AddLocation appends loc unless an identical location is already recorded.
func (i *TypeInfo) AddLocation(loc SourceLocation) {
	for _, existing := range i.Locations {
		if existing == loc {
			return
		}
	}
	i.Locations = append(i.Locations, loc)
}

// ATPMarker is the variability/mixed-content annotation of a class.
type ATPMarker int

const (
	ATPNone ATPMarker = iota
	ATPMixedString
	ATPVariation
	ATPMixed
)

func (m ATPMarker) String() string {
	switch m {
	case ATPMixedString:
		return "atpMixedString"
	case ATPVariation:
		return "atpVariation"
	case ATPMixed:
		return "atpMixed"
	default:
		return "none"
	}
}

// ParseATPMarker maps a marker name (without angle brackets) to its value.
func ParseATPMarker(name string) (ATPMarker, bool) {
	switch name {
	case "atpMixedString":
		return ATPMixedString, true
	case "atpVariation":
		return ATPVariation, true
	case "atpMixed":
		return ATPMixed, true
	}
	return ATPNone, false
}

// AttributeKind tells how an attribute relates to its type.
type AttributeKind string

const (
	KindAttr      AttributeKind = "attr"
	KindAggregate AttributeKind = "aggr"
	KindReference AttributeKind = "ref"
)

// Attribute is one row of a class or primitive attribute table.
type Attribute struct {
	Name         string
	TypeName     string
	Multiplicity string
	Kind         AttributeKind
	Note         string
}

// Attributes is an ordered, name-unique attribute list.
type Attributes []*Attribute

// Get returns the attribute with the given name.
func (a Attributes) Get(name string) (*Attribute, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr, true
		}
	}
	return nil, false
}

// Add appends attr unless an attribute with the same name exists.
func (a *Attributes) Add(attr *Attribute) bool {
	if _, exists := a.Get(attr.Name); exists {
		return false
	}
	*a = append(*a, attr)
	return true
}

// Class is a class construct.
type Class struct {
	TypeInfo
	Abstract     bool
	ATP          ATPMarker
	Bases        []string
	Parent       string   // computed by the resolver, "" for roots
	Children     []string // computed by the resolver
	Subclasses   []string
	AggregatedBy []string
	Attributes   Attributes
}

func (*Class) Kind() TypeKind { return KindClass }

// HasBase reports whether name is among the declared bases.
func (c *Class) HasBase(name string) bool {
	for _, b := range c.Bases {
		if b == name {
			return true
		}
	}
	return false
}

// Tag is one key=value annotation of an enumeration literal.
type Tag struct {
	Key   string `json:"key" msgpack:"key"`
	Value string `json:"value" msgpack:"value"`
}

// EnumLiteral is one literal of an enumeration.
type EnumLiteral struct {
	Name        string
	Index       *int
	Description string
	Tags        []Tag
}

// Tag returns the value of the tag with the given key.
func (l *EnumLiteral) Tag(key string) (string, bool) {
	for _, t := range l.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Enumeration is an enumeration construct.
type Enumeration struct {
	TypeInfo
	Literals []*EnumLiteral
}

func (*Enumeration) Kind() TypeKind { return KindEnumeration }

// Primitive is a primitive type construct.
type Primitive struct {
	TypeInfo
	Attributes Attributes
}

func (*Primitive) Kind() TypeKind { return KindPrimitive }
