package parser

import (
	"strings"
	"unicode"

	"github.com/mvp-joe/specmodel/internal/model"
)

// attributeArtifacts are tokens that land in the type column when page
// furniture or captions are misread as rows.
var attributeArtifacts = map[string]bool{
	"AUTOSAR":       true,
	"Class":         true,
	"Document":      true,
	"Enumeration":   true,
	"Figure":        true,
	"Package":       true,
	"Page":          true,
	"Primitive":     true,
	"Specification": true,
	"Table":         true,
	"of":            true,
}

// attributeTable accumulates rows of an "Attribute Type Mult. Kind Note" table.
type attributeTable struct {
	rows model.Attributes
	// last is the row that wrapped lines attach to; nil after a rejected row.
	last *model.Attribute
}

// feed parses one table line: a new row, or the wrapped remainder of the
// previous row.
func (t *attributeTable) feed(line string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}
	if attr, isRow := parseAttributeRow(tokens); isRow {
		if attr == nil {
			log.Debugf("rejected attribute row %q", line)
			t.last = nil
			return
		}
		if !t.rows.Add(attr) {
			log.Debugf("duplicate attribute %q ignored", attr.Name)
			t.last = nil
			return
		}
		t.last = attr
		return
	}
	if t.last == nil {
		return
	}
	t.wrap(tokens)
}

// wrap attaches a continuation line to the last row: up to two leading
// identifier fragments extend the name and the type, the rest extends the note.
func (t *attributeTable) wrap(tokens []string) {
	attr := t.last
	i := 0
	if !cellsMayWrap(attr.Note, tokens) {
		attr.Note = appendText(attr.Note, strings.Join(tokens, " "))
		return
	}
	if cellFragment(attr.Name, tokens[i], len(tokens)) {
		attr.Name += tokens[i]
		i++
		if i < len(tokens) && cellFragment(attr.TypeName, tokens[i], len(tokens)) {
			attr.TypeName += tokens[i]
			i++
		}
	} else if !startsLower(tokens[i]) && cellFragment(attr.TypeName, tokens[i], len(tokens)) {
		attr.TypeName += tokens[i]
		i++
	}
	attr.Kind = attributeKind(attr.TypeName, string(attr.Kind))
	attr.Note = appendText(attr.Note, strings.Join(tokens[i:], " "))
}

// cellsMayWrap reports whether a continuation line can carry name or type
// fragments. A note that ends a sentence means the line continues the note, and
// so does a capitalised word followed by two lower-case words.
func cellsMayWrap(note string, tokens []string) bool {
	if strings.HasSuffix(note, ".") || strings.HasSuffix(note, ":") || strings.HasSuffix(note, ";") {
		return false
	}
	if len(tokens) >= 3 && !startsLower(tokens[0]) && startsLower(tokens[1]) && startsLower(tokens[2]) {
		return false
	}
	return true
}

// parseAttributeRow recognizes "name type mult kind note...". isRow is false
// when the line does not have the row shape; a row-shaped line that fails
// validation returns isRow true and a nil attribute.
func parseAttributeRow(tokens []string) (attr *model.Attribute, isRow bool) {
	if len(tokens) < 4 || !multiplicityRe.MatchString(tokens[2]) || !isKindToken(tokens[3]) {
		return nil, false
	}
	name, typeName := tokens[0], tokens[1]
	if !validAttributeName(name) || attributeArtifacts[typeName] || !isIdentifier(typeName) {
		return nil, true
	}
	return &model.Attribute{
		Name:         name,
		TypeName:     typeName,
		Multiplicity: tokens[2],
		Kind:         attributeKind(typeName, tokens[3]),
		Note:         strings.Join(tokens[4:], " "),
	}, true
}

// cellFragment applies the continuation rule to a wrapped table cell. Lower-case
// fragments only count on short lines, where they cannot be the start of a
// wrapped note sentence.
func cellFragment(prev, tok string, lineLen int) bool {
	if startsLower(tok) && lineLen > 2 {
		return false
	}
	return fragmentOf(prev, tok)
}

func isKindToken(tok string) bool {
	switch model.AttributeKind(tok) {
	case model.KindAttr, model.KindAggregate, model.KindReference:
		return true
	}
	return false
}

// attributeKind derives the kind from the kind column, overridden to
// KindReference for reference-suffixed types.
func attributeKind(typeName, column string) model.AttributeKind {
	if strings.HasSuffix(typeName, "Ref") {
		return model.KindReference
	}
	switch model.AttributeKind(column) {
	case model.KindAggregate:
		return model.KindAggregate
	case model.KindReference:
		return model.KindReference
	}
	return model.KindAttr
}

func validAttributeName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
