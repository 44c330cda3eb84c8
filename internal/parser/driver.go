// Package parser turns the reconstructed text of a specification document into
// class, enumeration and primitive constructs.
//
// Three state machines, one per construct kind, race on the same line stream.
// The Driver owns them: it confirms type headers by looking ahead for a package
// line, keeps at most one parser active, consumes page markers and drops page
// furniture before any parser sees it.
package parser

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/mvp-joe/specmodel/internal/lines"
	"github.com/mvp-joe/specmodel/internal/model"
	"github.com/mvp-joe/specmodel/internal/textbuf"
)

var log = commonlog.GetLogger("specmodel.parser")

// typeParser is the capability shared by the three construct parsers.
type typeParser interface {
	Feed(line string, page int) (model.Type, error)
	ExpectsMore() bool
	Flush() model.Type

	kind() model.TypeKind
	matchHeader(line string) bool
	setDocument(doc docContext)
}

var (
	_ typeParser = (*ClassParser)(nil)
	_ typeParser = (*EnumerationParser)(nil)
	_ typeParser = (*PrimitiveParser)(nil)
)

// Driver runs the forward parse pass over one document.
type Driver struct {
	opts    Options
	parsers []typeParser
}

// NewDriver validates opts and returns a driver.
func NewDriver(opts Options) (*Driver, error) {
	if err := opts.compile(); err != nil {
		return nil, err
	}
	d := &Driver{opts: opts}
	d.parsers = []typeParser{
		NewClassParser(&d.opts),
		NewEnumerationParser(&d.opts),
		NewPrimitiveParser(&d.opts),
	}
	return d, nil
}

// Parse scans buf and returns its completed constructs in source order.
// It fails on constructs that are internally contradictory, such as a class
// with more than one ATP marker.
func (d *Driver) Parse(ctx context.Context, buf *textbuf.Buffer) ([]model.Type, error) {
	doc := d.documentContext(buf)
	for _, p := range d.parsers {
		p.Flush()
		p.setDocument(doc)
	}

	var (
		out    []model.Type
		active typeParser
		page   = 1
	)
	emit := func(t model.Type) {
		if t != nil {
			out = append(out, t)
		}
	}

	for i := 0; i < buf.Len(); i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := buf.Line(i)

		if n, ok := lines.ParseMarker(line); ok {
			page = n
			if active != nil && !active.ExpectsMore() {
				emit(active.Flush())
				active = nil
			}
			continue
		}
		if d.opts.isNoise(line) {
			continue
		}

		if p := d.headerParser(line); p != nil {
			if !d.confirmed(buf, i) {
				log.Debugf("%s:%d: discarding unconfirmed %s header %q", doc.id, page, p.kind(), line)
				continue
			}
			if active != nil && active != p {
				emit(active.Flush())
			}
			done, err := p.Feed(line, page)
			emit(done)
			if err != nil {
				return out, fmt.Errorf("%s: %w", doc.id, err)
			}
			active = p
			continue
		}

		if active == nil {
			continue
		}
		done, err := active.Feed(line, page)
		if err != nil {
			return out, fmt.Errorf("%s: %w", doc.id, err)
		}
		if done != nil {
			emit(done)
			active = nil
		}
	}
	if active != nil {
		emit(active.Flush())
	}
	return out, nil
}

// headerParser returns the first parser, in class, enumeration, primitive
// order, that recognizes line as its header.
func (d *Driver) headerParser(line string) typeParser {
	for _, p := range d.parsers {
		if p.matchHeader(line) {
			return p
		}
	}
	return nil
}

// confirmed reports whether a package line follows the header at index i
// within the lookahead window.
func (d *Driver) confirmed(buf *textbuf.Buffer, i int) bool {
	for _, l := range buf.Peek(i, d.opts.HeaderLookahead, d.opts.isNoise) {
		if packageRe.MatchString(l) {
			return true
		}
		if isTypeHeader(l) {
			return false
		}
	}
	return false
}

// documentContext scans the running headers of buf for the standard name and
// release.
func (d *Driver) documentContext(buf *textbuf.Buffer) docContext {
	doc := docContext{id: buf.DocumentID()}
	for i := 0; i < buf.Len(); i++ {
		if name, release, ok := d.opts.standardOf(buf.Line(i)); ok {
			doc.standardName, doc.standardRelease = name, release
			break
		}
	}
	return doc
}
