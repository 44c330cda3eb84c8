package parser

import (
	"github.com/mvp-joe/specmodel/internal/model"
)

// EnumerationParser is the state machine for enumeration tables.
type EnumerationParser struct {
	construct
	doc      docContext
	enum     *model.Enumeration
	literals literalTable
}

// NewEnumerationParser returns an idle enumeration parser.
func NewEnumerationParser(opts *Options) *EnumerationParser {
	return &EnumerationParser{construct: construct{opts: opts}}
}

func (p *EnumerationParser) kind() model.TypeKind { return model.KindEnumeration }

func (p *EnumerationParser) matchHeader(line string) bool {
	return enumHeaderRe.MatchString(line)
}

func (p *EnumerationParser) setDocument(doc docContext) { p.doc = doc }

// Feed consumes one line; see ClassParser.Feed.
func (p *EnumerationParser) Feed(line string, page int) (model.Type, error) {
	if m := enumHeaderRe.FindStringSubmatch(line); m != nil {
		done := p.Flush()
		p.enum = &model.Enumeration{
			TypeInfo: model.TypeInfo{Name: m[1], Locations: []model.SourceLocation{location(p.doc, page)}},
		}
		p.literals = literalTable{opts: p.opts}
		p.open(&p.enum.TypeInfo)
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
	case literalTableRe.MatchString(line):
		p.state = stateLiterals
	case p.state == stateLiterals:
		p.literals.feed(line)
	default:
		p.continueField(line)
	}
	return nil, nil
}

// Flush closes the open enumeration and returns it, or nil when idle.
func (p *EnumerationParser) Flush() model.Type {
	if p.state == stateIdle || p.enum == nil {
		p.reset()
		return nil
	}
	e := p.enum
	e.Literals = p.literals.literals
	p.enum = nil
	p.literals = literalTable{opts: p.opts}
	p.reset()
	return e
}
