package parser

import (
	"strings"

	"github.com/mvp-joe/specmodel/internal/model"
)

// state is the position of a parser in its construct.
type state int

const (
	stateIdle state = iota
	stateHeader
	statePackage
	stateNote
	stateBase
	stateSubclasses
	stateAggregatedBy
	stateAttributes
	stateLiterals
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateHeader:
		return "header"
	case statePackage:
		return "package"
	case stateNote:
		return "note"
	case stateBase:
		return "base"
	case stateSubclasses:
		return "subclasses"
	case stateAggregatedBy:
		return "aggregated-by"
	case stateAttributes:
		return "attributes"
	case stateLiterals:
		return "literals"
	}
	return "unknown"
}

// construct holds what the three parsers share: the open type's common fields,
// the current state and the multi-line field accumulators.
type construct struct {
	opts  *Options
	state state
	info  *model.TypeInfo

	// list is the accumulator of the active list field.
	list *[]string
	// listOpen is true when the last list line did not end with a comma.
	listOpen bool
}

func (c *construct) open(info *model.TypeInfo) {
	c.info = info
	c.state = stateHeader
	c.list = nil
	c.listOpen = false
}

func (c *construct) reset() {
	c.info = nil
	c.state = stateIdle
	c.list = nil
	c.listOpen = false
}

// ExpectsMore reports whether a construct is open and may continue past a page
// boundary. Every state after a confirmed header is a field that can wrap, so
// only an idle parser answers false.
func (c *construct) ExpectsMore() bool {
	return c.state != stateIdle
}

// commonField handles the lines every construct understands: package and
// note. It reports whether line was consumed.
func (c *construct) commonField(line string) bool {
	if m := packageRe.FindStringSubmatch(line); m != nil {
		c.info.PackagePath = strings.Join(strings.Fields(m[1]), "")
		c.state = statePackage
		c.list = nil
		return true
	}
	if m := noteRe.FindStringSubmatch(line); m != nil {
		c.info.Note = appendText(c.info.Note, m[1])
		c.state = stateNote
		c.list = nil
		return true
	}
	return false
}

// continueField extends the active package or note field with a continuation
// line. It reports whether line was consumed.
func (c *construct) continueField(line string) bool {
	switch c.state {
	case statePackage:
		delim := c.opts.PathDelimiter
		tok := strings.Join(strings.Fields(line), "")
		if strings.HasSuffix(c.info.PackagePath, delim) || strings.HasPrefix(tok, delim) {
			c.info.PackagePath += tok
			return true
		}
		return false
	case stateNote:
		c.info.Note = appendText(c.info.Note, line)
		return true
	case stateBase, stateSubclasses, stateAggregatedBy:
		if c.list != nil {
			c.appendList(line, true)
			return true
		}
	}
	return false
}

// startList activates a list field and consumes its first line.
func (c *construct) startList(s state, list *[]string, text string) {
	c.state = s
	c.list = list
	c.listOpen = false
	c.appendList(text, false)
}

// appendList adds the comma-separated items of text to the active list. When
// continuation is set and the previous line did not end with a comma, the
// first token is run through Decide against the last item.
func (c *construct) appendList(text string, continuation bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	list := c.list
	first := true
	for _, part := range strings.Split(text, ",") {
		for i, tok := range strings.Fields(part) {
			n := len(*list)
			joinable := n > 0 && ((first && continuation && c.listOpen) || (i > 0))
			if joinable && Decide((*list)[n-1], tok) == Concatenate {
				(*list)[n-1] += tok
			} else {
				*list = append(*list, tok)
			}
			first = false
		}
		first = false
	}
	c.listOpen = !strings.HasSuffix(text, ",")
}

// location returns the location for page within the current document.
func location(doc docContext, page int) model.SourceLocation {
	return model.SourceLocation{
		DocumentID:      doc.id,
		Page:            page,
		StandardName:    doc.standardName,
		StandardRelease: doc.standardRelease,
	}
}

// docContext is the document-level state the driver shares with its parsers.
type docContext struct {
	id              string
	standardName    string
	standardRelease string
}
