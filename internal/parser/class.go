package parser

import (
	"github.com/mvp-joe/specmodel/internal/model"
)

// ClassParser is the state machine for class tables.
type ClassParser struct {
	construct
	doc   docContext
	class *model.Class
	attrs attributeTable
}

// NewClassParser returns an idle class parser.
func NewClassParser(opts *Options) *ClassParser {
	return &ClassParser{construct: construct{opts: opts}}
}

func (p *ClassParser) kind() model.TypeKind { return model.KindClass }

func (p *ClassParser) matchHeader(line string) bool {
	_, ok := parseClassHeader(line)
	return ok
}

func (p *ClassParser) setDocument(doc docContext) { p.doc = doc }

// Feed consumes one line. A class header closes the open class, if any, and
// opens a new one; the closed class is returned. A section break closes the
// open class. Other lines extend the active field.
func (p *ClassParser) Feed(line string, page int) (model.Type, error) {
	if h, ok := parseClassHeader(line); ok {
		done := p.Flush()
		loc := location(p.doc, page)
		if len(h.markers) > 1 {
			return done, &MarkerError{Class: h.name, Markers: h.markers, Location: loc}
		}
		c := &model.Class{
			TypeInfo: model.TypeInfo{Name: h.name, Locations: []model.SourceLocation{loc}},
			Abstract: h.abstract,
		}
		if len(h.markers) == 1 {
			c.ATP = h.markers[0]
		}
		p.class = c
		p.attrs = attributeTable{}
		p.open(&c.TypeInfo)
		return done, nil
	}
	if p.state == stateIdle {
		return nil, nil
	}
	if sectionBreakRe.MatchString(line) || isTypeHeader(line) {
		return p.Flush(), nil
	}
	p.feedField(line)
	return nil, nil
}

func (p *ClassParser) feedField(line string) {
	switch {
	case p.commonField(line):
	case baseRe.MatchString(line):
		p.startList(stateBase, &p.class.Bases, baseRe.FindStringSubmatch(line)[1])
	case subclassesRe.MatchString(line):
		p.startList(stateSubclasses, &p.class.Subclasses, subclassesRe.FindStringSubmatch(line)[1])
	case aggregatedByRe.MatchString(line):
		p.startList(stateAggregatedBy, &p.class.AggregatedBy, aggregatedByRe.FindStringSubmatch(line)[1])
	case attributeTableRe.MatchString(line):
		p.state = stateAttributes
		p.list = nil
	case p.state == stateAttributes:
		p.attrs.feed(line)
	case literalTableRe.MatchString(line):
		// A literal table never belongs to a class; ignore its rows until the
		// next field header.
		p.state = stateHeader
		p.list = nil
	default:
		p.continueField(line)
	}
}

// Flush closes the open class and returns it, or nil when idle.
func (p *ClassParser) Flush() model.Type {
	if p.state == stateIdle || p.class == nil {
		p.reset()
		return nil
	}
	c := p.class
	c.Bases = filterRoot(c.Bases, p.opts.RootClass)
	c.Attributes = p.attrs.rows
	p.class = nil
	p.attrs = attributeTable{}
	p.reset()
	return c
}

// filterRoot drops the universal root class and duplicate names, preserving order.
func filterRoot(names []string, root string) []string {
	if len(names) == 0 {
		return names
	}
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if n == root || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
