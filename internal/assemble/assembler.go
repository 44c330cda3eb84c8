// Package assemble builds the package tree of a Document from completed
// constructs.
package assemble

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/mvp-joe/specmodel/internal/model"
)

var log = commonlog.GetLogger("specmodel.assemble")

// Assembler inserts types into a lazily created package tree. It is not safe
// for concurrent use; the pipeline feeds it serially after pooling.
type Assembler struct {
	delim    string
	roots    []*model.Package
	packages map[string]*model.Package
	// Discarded counts types dropped as duplicates or for lacking a package.
	Discarded int
}

// New returns an empty assembler splitting package paths on delim.
func New(delim string) *Assembler {
	if delim == "" {
		delim = model.DefaultPathDelimiter
	}
	return &Assembler{
		delim:    delim,
		packages: make(map[string]*model.Package),
	}
}

// Add inserts t into the package named by its path. The first definition of a
// name within a package wins; a later one from another document contributes
// its locations to the survivor.
func (a *Assembler) Add(t model.Type) {
	info := t.Info()
	segments := a.segments(info.PackagePath)
	if len(segments) == 0 {
		log.Warningf("%s %s at %s has no package, discarded", t.Kind(), info.Name, firstLocation(info))
		a.Discarded++
		return
	}
	leaf := a.ensure(segments)
	info.PackagePath = leaf.Path

	if existing, ok := leaf.Type(info.Name); ok {
		a.Discarded++
		kept := existing.Info()
		log.Warningf("duplicate %s %s in %s at %s, keeping definition from %s",
			t.Kind(), info.Name, leaf.Path, firstLocation(info), firstLocation(kept))
		for _, loc := range info.Locations {
			if !sameDocument(kept, loc.DocumentID) {
				kept.AddLocation(loc)
			}
		}
		return
	}
	leaf.Types = append(leaf.Types, t)
}

// AddAll inserts types in order.
func (a *Assembler) AddAll(types []model.Type) {
	for _, t := range types {
		a.Add(t)
	}
}

// Document returns the assembled document: the top-level packages that own
// something and the classes declaring no bases.
func (a *Assembler) Document() *model.Document {
	doc := &model.Document{Delimiter: a.delim}
	for _, root := range a.roots {
		if root.Empty() {
			continue
		}
		doc.Packages = append(doc.Packages, root)
	}
	for _, c := range doc.Classes() {
		if len(c.Bases) == 0 {
			doc.RootClasses = append(doc.RootClasses, c)
		}
	}
	return doc
}

// segments splits path on the delimiter, dropping empty segments left by
// stray delimiters.
func (a *Assembler) segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, a.delim) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ensure returns the package for segments, creating missing nodes.
func (a *Assembler) ensure(segments []string) *model.Package {
	var parent *model.Package
	for i, name := range segments {
		path := strings.Join(segments[:i+1], a.delim)
		pkg, ok := a.packages[path]
		if !ok {
			pkg = &model.Package{Name: name, Path: path}
			a.packages[path] = pkg
			if parent == nil {
				a.roots = append(a.roots, pkg)
			} else {
				parent.Subpackages = append(parent.Subpackages, pkg)
			}
		}
		parent = pkg
	}
	return parent
}

func sameDocument(info *model.TypeInfo, docID string) bool {
	for _, loc := range info.Locations {
		if loc.DocumentID == docID {
			return true
		}
	}
	return false
}

func firstLocation(info *model.TypeInfo) string {
	if len(info.Locations) == 0 {
		return "unknown location"
	}
	return info.Locations[0].String()
}
