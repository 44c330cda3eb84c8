package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mvp-joe/specmodel/internal/model"
)

// literalStep is what a line does to the literal table.
type literalStep int

const (
	stepSkip literalStep = iota
	stepNew
	stepTags
	stepTagValue
	stepFoldName
	stepDescription
)

// literalTable accumulates rows of a "Literal Description" table.
type literalTable struct {
	opts     *Options
	literals []*model.EnumLiteral
	// pendingTag is set when the last tag token had no value yet.
	pendingTag bool
}

func (t *literalTable) current() *model.EnumLiteral {
	if len(t.literals) == 0 {
		return nil
	}
	return t.literals[len(t.literals)-1]
}

// classifyLiteralLine decides how tokens relate to the open literal:
//
//   - a line led by a tag continues the open literal's tag block
//   - a bare value completes a tag whose value wrapped
//   - after a literal whose tag block is complete, the line starts a new
//     literal, which keeps suffix variants and shared prefixes separate
//   - a bare continuation token, or a fragment following a name-only literal,
//     is folded into the stacked name
//   - a token shaped like a literal name starts an untagged literal
//   - anything else continues the description
func (t *literalTable) classifyLiteralLine(tokens []string) literalStep {
	first := tokens[0]
	cur := t.current()
	switch {
	case isTagToken(first):
		if cur == nil {
			return stepSkip
		}
		return stepTags
	case cur != nil && t.pendingTag && len(tokens) == 1:
		return stepTagValue
	case cur == nil:
		if isIdentifier(first) {
			return stepNew
		}
		return stepSkip
	case len(cur.Tags) > 0:
		if isIdentifier(first) {
			return stepNew
		}
		return stepDescription
	case len(tokens) == 1 && fragmentOf(cur.Name, first):
		return stepFoldName
	case cur.Description == "" && fragmentOf(cur.Name, first):
		return stepFoldName
	case looksLikeLiteralName(first):
		return stepNew
	}
	return stepDescription
}

func (t *literalTable) feed(line string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}
	switch t.classifyLiteralLine(tokens) {
	case stepNew:
		lit := &model.EnumLiteral{Name: tokens[0]}
		t.literals = append(t.literals, lit)
		t.pendingTag = false
		t.absorb(lit, tokens[1:])
	case stepTags, stepDescription:
		t.absorb(t.current(), tokens)
	case stepTagValue:
		lit := t.current()
		lit.Tags[len(lit.Tags)-1].Value = tokens[0]
		t.pendingTag = false
		t.setIndex(lit, lit.Tags[len(lit.Tags)-1])
	case stepFoldName:
		lit := t.current()
		lit.Name += tokens[0]
		t.absorb(lit, tokens[1:])
	}
}

// absorb splits tokens into description words and tags and adds both to lit.
func (t *literalTable) absorb(lit *model.EnumLiteral, tokens []string) {
	rest, tags := splitTags(tokens)
	lit.Description = appendText(lit.Description, strings.Join(rest, " "))
	for _, tag := range tags {
		lit.Tags = append(lit.Tags, tag)
		t.setIndex(lit, tag)
	}
	if len(tags) > 0 {
		t.pendingTag = tags[len(tags)-1].Value == ""
	}
}

func (t *literalTable) setIndex(lit *model.EnumLiteral, tag model.Tag) {
	if !t.opts.isIndexTag(tag.Key) {
		return
	}
	if n, err := strconv.Atoi(tag.Value); err == nil {
		lit.Index = &n
	}
}

// looksLikeLiteralName reports whether tok is shaped like an enumeration
// literal rather than a description word: UPPER_CASE, snake_case, or
// lowerCamelCase with an inner capital or digit.
func looksLikeLiteralName(tok string) bool {
	if !isIdentifier(tok) {
		return false
	}
	if strings.ContainsRune(tok, '_') {
		return true
	}
	upper, lower, inner := 0, 0, false
	for i, r := range tok {
		switch {
		case unicode.IsUpper(r):
			upper++
			if i > 0 {
				inner = true
			}
		case unicode.IsLower(r):
			lower++
		case unicode.IsDigit(r):
			inner = true
		}
	}
	if lower == 0 && upper > 1 {
		return true
	}
	return startsLower(tok) && inner
}
