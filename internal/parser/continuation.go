package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Decision is the outcome of the continuation rule.
type Decision int

const (
	// NewItem starts a new list item with the next token.
	NewItem Decision = iota
	// Concatenate appends the next token to the previous item without a separator.
	Concatenate
)

func (d Decision) String() string {
	if d == Concatenate {
		return "concatenate"
	}
	return "new-item"
}

// fragmentRule is one reason to treat a wrapped token as the tail of the
// previous item.
type fragmentRule struct {
	name    string
	applies func(prev, next string) bool
}

// knownSuffixes are camel-case segments that never start a type name on their own.
var knownSuffixes = map[string]bool{
	"Element":       true,
	"Elements":      true,
	"Prototype":     true,
	"Prototypes":    true,
	"Ref":           true,
	"Refs":          true,
	"Props":         true,
	"Mapping":       true,
	"Mappings":      true,
	"Set":           true,
	"Type":          true,
	"Types":         true,
	"Instance":      true,
	"Specification": true,
	"Spec":          true,
	"Condition":     true,
	"Conditional":   true,
	"Content":       true,
	"Contents":      true,
	"Group":         true,
	"Iref":          true,
	"Blueprint":     true,
	"Def":           true,
	"Value":         true,
	"Values":        true,
	"Behavior":      true,
	"Entity":        true,
}

// knownPrefixes are camel-case segments that never end a type name.
var knownPrefixes = map[string]bool{
	"Abstract": true,
	"Atp":      true,
	"Autosar":  true,
	"Bsw":      true,
	"Can":      true,
	"Com":      true,
	"Diag":     true,
	"Ecu":      true,
	"Hw":       true,
	"Lin":      true,
	"Nm":       true,
	"Rte":      true,
	"Sw":       true,
	"Swc":      true,
}

// fragmentRules is consulted in order; the first rule that applies decides
// Concatenate. No applicable rule means NewItem.
var fragmentRules = []fragmentRule{
	{"lower-case start", func(_, next string) bool { return startsLower(next) }},
	{"domain suffix", func(_, next string) bool { return knownSuffixes[next] }},
	{"short fragment", func(_, next string) bool { return len(next) <= 2 }},
	{"short prefix", func(prev, _ string) bool { return len(prev) <= 2 }},
	{"open joiner", func(prev, _ string) bool { return strings.HasSuffix(prev, "_") || strings.HasSuffix(prev, "-") || strings.HasSuffix(prev, ".") }},
	{"known prefix", func(prev, _ string) bool { return knownPrefixes[lastSegment(prev)] }},
}

// Decide reports whether next, the first token of a continuation line,
// continues previousItem or starts a new item.
func Decide(previousItem, nextToken string) Decision {
	d, _ := explain(previousItem, nextToken)
	return d
}

// explain returns the decision and the name of the rule that produced it.
func explain(prev, next string) (Decision, string) {
	if prev == "" || next == "" {
		return NewItem, ""
	}
	for _, r := range fragmentRules {
		if r.applies(prev, next) {
			return Concatenate, r.name
		}
	}
	return NewItem, ""
}

// deniedFragments look like suffix fragments but are ordinary note words.
var deniedFragments = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "e.g.": true, "each": true, "for": true,
	"from": true, "has": true, "i.e.": true, "if": true, "in": true, "is": true,
	"it": true, "its": true, "may": true, "no": true, "not": true, "of": true,
	"on": true, "only": true, "or": true, "shall": true, "that": true, "the": true,
	"this": true, "to": true, "used": true, "which": true, "will": true, "with": true,
}

// fragmentOf reports whether token may be concatenated onto prev as the tail of
// a wrapped identifier in a table cell.
func fragmentOf(prev, token string) bool {
	if deniedFragments[strings.ToLower(token)] || !isIdentifier(token) {
		return false
	}
	return Decide(prev, token) == Concatenate
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

// lastSegment returns the trailing camel-case segment of s ("ApplicationSw" -> "Sw").
func lastSegment(s string) string {
	for i := len(s); i > 0; {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		if i > 0 && unicode.IsUpper(r) {
			return s[i:]
		}
	}
	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
