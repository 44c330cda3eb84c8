package parser

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/specmodel/internal/model"
)

var (
	classHeaderRe     = regexp.MustCompile(`^Class\s+(.+)$`)
	enumHeaderRe      = regexp.MustCompile(`^Enumeration\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	primitiveHeaderRe = regexp.MustCompile(`^Primitive\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	packageRe         = regexp.MustCompile(`^Package\s+(\S.*)$`)
	noteRe            = regexp.MustCompile(`^Note(?:\s+(.*))?$`)
	baseRe            = regexp.MustCompile(`^Base(?:\s+(.*))?$`)
	subclassesRe      = regexp.MustCompile(`^Subclasses(?:\s+(.*))?$`)
	aggregatedByRe    = regexp.MustCompile(`^Aggregated\s+by(?:\s+(.*))?$`)
	attributeTableRe  = regexp.MustCompile(`^Attribute\s+Type\s+Mult\.?(?:\s+Kind)?(?:\s+Note)?$`)
	literalTableRe    = regexp.MustCompile(`^Literal\s+Description(?:\s+\S+)?$`)
	sectionBreakRe    = regexp.MustCompile(`^(?:\d+(?:\.\d+)+\.?\s+[A-Z]\S*|Table\s+\d+(?:\.\d+)*\s*:)`)
	markerRe          = regexp.MustCompile(`^<<([A-Za-z]+)>>$`)
	multiplicityRe    = regexp.MustCompile(`^(?:\d+|\*)(?:\.\.(?:\d+|\*))?$`)
	tagRe             = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)=(\S*)$`)
)

// isTypeHeader reports whether line has the shape of any type-definition header.
func isTypeHeader(line string) bool {
	if _, ok := parseClassHeader(line); ok {
		return true
	}
	return enumHeaderRe.MatchString(line) || primitiveHeaderRe.MatchString(line)
}

// isSectionHeader reports whether line opens a field or a construct, which ends
// any list or note continuation.
func isSectionHeader(line string) bool {
	switch {
	case packageRe.MatchString(line),
		noteRe.MatchString(line),
		baseRe.MatchString(line),
		subclassesRe.MatchString(line),
		aggregatedByRe.MatchString(line),
		attributeTableRe.MatchString(line),
		literalTableRe.MatchString(line),
		sectionBreakRe.MatchString(line):
		return true
	}
	return isTypeHeader(line)
}

// classHeader is a parsed "Class ..." line.
type classHeader struct {
	name     string
	abstract bool
	markers  []model.ATPMarker
}

// parseClassHeader accepts "Class [<<marker>>...] Name [(abstract)]" with
// markers allowed on either side of the name.
func parseClassHeader(line string) (classHeader, bool) {
	m := classHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return classHeader{}, false
	}
	var h classHeader
	for _, tok := range strings.Fields(m[1]) {
		if mm := markerRe.FindStringSubmatch(tok); mm != nil {
			marker, ok := model.ParseATPMarker(mm[1])
			if !ok {
				return classHeader{}, false
			}
			h.markers = append(h.markers, marker)
			continue
		}
		if tok == "(abstract)" {
			h.abstract = true
			continue
		}
		if h.name != "" || !isIdentifier(tok) {
			return classHeader{}, false
		}
		h.name = tok
	}
	if h.name == "" {
		return classHeader{}, false
	}
	return h, true
}

// splitTags separates key=value tag tokens from the other tokens of a line.
// A leading "Tags:" token is dropped.
func splitTags(tokens []string) (rest []string, tags []model.Tag) {
	for _, tok := range tokens {
		if tok == "Tags:" {
			continue
		}
		if m := tagRe.FindStringSubmatch(tok); m != nil {
			tags = append(tags, model.Tag{Key: m[1], Value: m[2]})
			continue
		}
		rest = append(rest, tok)
	}
	return rest, tags
}

func isTagToken(tok string) bool {
	return tok == "Tags:" || tagRe.MatchString(tok)
}

func appendText(dst, text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return dst
	case dst == "":
		return text
	}
	return dst + " " + text
}
