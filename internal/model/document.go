package model

import "strings"

// DefaultPathDelimiter separates package path segments.
const DefaultPathDelimiter = "::"

// Package is a node of the package tree.
type Package struct {
	Name        string
	Path        string
	Types       []Type
	Subpackages []*Package
}

// Type returns the type with the given name declared directly in p.
func (p *Package) Type(name string) (Type, bool) {
	for _, t := range p.Types {
		if t.Info().Name == name {
			return t, true
		}
	}
	return nil, false
}

// Subpackage returns the direct child package with the given name.
func (p *Package) Subpackage(name string) (*Package, bool) {
	for _, sub := range p.Subpackages {
		if sub.Name == name {
			return sub, true
		}
	}
	return nil, false
}

// Empty reports whether p owns neither types nor subpackages.
func (p *Package) Empty() bool {
	return len(p.Types) == 0 && len(p.Subpackages) == 0
}

// Walk visits p and all its descendants depth-first in declaration order.
func (p *Package) Walk(fn func(*Package)) {
	fn(p)
	for _, sub := range p.Subpackages {
		sub.Walk(fn)
	}
}

// Document is the assembled model of every input document.
type Document struct {
	Packages    []*Package
	RootClasses []*Class
	Delimiter   string
}

// GetPackage returns a top-level package by name, or any package by its full
// delimited path.
func (d *Document) GetPackage(name string) (*Package, bool) {
	delim := d.delimiter()
	segments := strings.Split(name, delim)
	var current *Package
	for _, top := range d.Packages {
		if top.Name == segments[0] {
			current = top
			break
		}
	}
	if current == nil {
		return nil, false
	}
	for _, seg := range segments[1:] {
		next, ok := current.Subpackage(seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// GetRootClass returns the root class with the given name.
func (d *Document) GetRootClass(name string) (*Class, bool) {
	for _, c := range d.RootClasses {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Types returns every type in package-tree order.
func (d *Document) Types() []Type {
	var out []Type
	for _, top := range d.Packages {
		top.Walk(func(p *Package) {
			out = append(out, p.Types...)
		})
	}
	return out
}

// Classes returns every class in package-tree order.
func (d *Document) Classes() []*Class {
	var out []*Class
	for _, t := range d.Types() {
		if c, ok := t.(*Class); ok {
			out = append(out, c)
		}
	}
	return out
}

// Class returns the first class with the given name anywhere in the tree.
func (d *Document) Class(name string) (*Class, bool) {
	for _, c := range d.Classes() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (d *Document) delimiter() string {
	if d.Delimiter == "" {
		return DefaultPathDelimiter
	}
	return d.Delimiter
}
