package parser

import (
	"github.com/mvp-joe/specmodel/internal/model"
)

// PrimitiveParser is the state machine for primitive type tables.
type PrimitiveParser struct {
	construct
	doc   docContext
	prim  *model.Primitive
	attrs attributeTable
}

// NewPrimitiveParser returns an idle primitive parser.
func NewPrimitiveParser(opts *Options) *PrimitiveParser {
	return &PrimitiveParser{construct: construct{opts: opts}}
}

func (p *PrimitiveParser) kind() model.TypeKind { return model.KindPrimitive }

func (p *PrimitiveParser) matchHeader(line string) bool {
	return primitiveHeaderRe.MatchString(line)
}

func (p *PrimitiveParser) setDocument(doc docContext) { p.doc = doc }

// Feed consumes one line; see ClassParser.Feed.
func (p *PrimitiveParser) Feed(line string, page int) (model.Type, error) {
	if m := primitiveHeaderRe.FindStringSubmatch(line); m != nil {
		done := p.Flush()
		p.prim = &model.Primitive{
			TypeInfo: model.TypeInfo{Name: m[1], Locations: []model.SourceLocation{location(p.doc, page)}},
		}
		p.attrs = attributeTable{}
		p.open(&p.prim.TypeInfo)
		return done, nil
	}
	if p.state == stateIdle {
		return nil, nil
	}
	if sectionBreakRe.MatchString(line) || isTypeHeader(line) {
		return p.Flush(), nil
	}
	switch {
	case p.commonField(line):
	case attributeTableRe.MatchString(line):
		p.state = stateAttributes
	case p.state == stateAttributes:
		p.attrs.feed(line)
	default:
		p.continueField(line)
	}
	return nil, nil
}

// Flush closes the open primitive and returns it, or nil when idle.
func (p *PrimitiveParser) Flush() model.Type {
	if p.state == stateIdle || p.prim == nil {
		p.reset()
		return nil
	}
	prim := p.prim
	prim.Attributes = p.attrs.rows
	p.prim = nil
	p.attrs = attributeTable{}
	p.reset()
	return prim
}
