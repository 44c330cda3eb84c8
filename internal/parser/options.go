package parser

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mvp-joe/specmodel/internal/model"
)

// DefaultRootClass is the implicit universal base filtered out of base lists.
const DefaultRootClass = "ARObject"

// DefaultIndexTag is the literal tag that carries the numeric index.
const DefaultIndexTag = "atp.EnumerationLiteralIndex"

// DefaultHeaderLookahead is how many content lines may separate a type header
// from the package line that confirms it.
const DefaultHeaderLookahead = 3

// DefaultNoisePatterns match running headers and footers of AUTOSAR documents.
var DefaultNoisePatterns = []string{
	`^Document ID \d+:`,
	`AUTOSAR CONFIDENTIAL`,
	`^\d+ of \d+$`,
	`^Specification of .+$`,
	`^AUTOSAR (?:CP|AP|FO|Classic Platform|Adaptive Platform|Foundation) R\d{2}-\d{2}$`,
}

// DefaultStandardPattern captures the standard name and release from running
// headers such as "AUTOSAR CP R22-11".
const DefaultStandardPattern = `^(?P<name>AUTOSAR (?:CP|AP|FO|Classic Platform|Adaptive Platform|Foundation)) (?P<release>R\d{2}-\d{2})$`

// Options tunes the parsers and the driver.
type Options struct {
	PathDelimiter   string
	RootClass       string
	IndexTagKeys    []string
	HeaderLookahead int
	NoisePatterns   []string
	StandardPattern string

	noise    []*regexp.Regexp
	standard *regexp.Regexp
}

// DefaultOptions returns the options for AUTOSAR template specifications.
func DefaultOptions() Options {
	return Options{
		PathDelimiter:   model.DefaultPathDelimiter,
		RootClass:       DefaultRootClass,
		IndexTagKeys:    []string{DefaultIndexTag},
		HeaderLookahead: DefaultHeaderLookahead,
		NoisePatterns:   append([]string(nil), DefaultNoisePatterns...),
		StandardPattern: DefaultStandardPattern,
	}
}

// ErrInvalidOptions indicates options that cannot drive a parse.
var ErrInvalidOptions = errors.New("invalid parser options")

// compile validates o and prepares its regular expressions.
func (o *Options) compile() error {
	if o.PathDelimiter == "" {
		return fmt.Errorf("%w: path delimiter is required", ErrInvalidOptions)
	}
	if o.HeaderLookahead < 1 {
		return fmt.Errorf("%w: header lookahead must be positive, got %d", ErrInvalidOptions, o.HeaderLookahead)
	}
	o.noise = o.noise[:0]
	for _, p := range o.NoisePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("%w: noise pattern %q: %v", ErrInvalidOptions, p, err)
		}
		o.noise = append(o.noise, re)
	}
	o.standard = nil
	if o.StandardPattern != "" {
		re, err := regexp.Compile(o.StandardPattern)
		if err != nil {
			return fmt.Errorf("%w: standard pattern %q: %v", ErrInvalidOptions, o.StandardPattern, err)
		}
		if re.SubexpIndex("name") < 0 || re.SubexpIndex("release") < 0 {
			return fmt.Errorf("%w: standard pattern needs named groups 'name' and 'release'", ErrInvalidOptions)
		}
		o.standard = re
	}
	return nil
}

func (o *Options) isNoise(line string) bool {
	for _, re := range o.noise {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// standardOf extracts the standard name and release from a running header.
func (o *Options) standardOf(line string) (name, release string, ok bool) {
	if o.standard == nil {
		return "", "", false
	}
	m := o.standard.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[o.standard.SubexpIndex("name")], m[o.standard.SubexpIndex("release")], true
}

func (o *Options) isIndexTag(key string) bool {
	for _, k := range o.IndexTagKeys {
		if k == key {
			return true
		}
	}
	return false
}

// MarkerError reports a class carrying more than one ATP marker.
type MarkerError struct {
	Class    string
	Markers  []model.ATPMarker
	Location model.SourceLocation
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("class %s at %s has %d ATP markers %v, at most one is allowed", e.Class, e.Location, len(e.Markers), e.Markers)
}
