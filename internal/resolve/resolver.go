// Package resolve computes the inheritance hierarchy of an assembled Document
// and validates declared subclass relationships against it.
//
// Classes list every ancestor as a base, so the direct parent is not given by
// the source and is derived here: among a class's bases, the one that is not an
// ancestor of another base is the parent. Resolution needs every class of every
// input document and therefore runs once over the pooled Document.
package resolve

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/tliron/commonlog"

	"github.com/mvp-joe/specmodel/internal/diag"
	"github.com/mvp-joe/specmodel/internal/model"
)

var log = commonlog.GetLogger("specmodel.resolve")

// Options tunes resolution.
type Options struct {
	// RootClass is the implicit universal base, ignored wherever it appears.
	RootClass string
}

var (
	ErrSubclassMissing      = errors.New("subclass is not defined")
	ErrSubclassNotDerived   = errors.New("subclass does not list the class as a base")
	ErrSubclassIsBase       = errors.New("subclass is also a base of the class")
	ErrSubclassIsParentBase = errors.New("subclass is a base of the class's parent")
	ErrSubclassIsParent     = errors.New("subclass is the class's parent")
)

// SubclassError reports a declared subclass that contradicts the resolved
// hierarchy. Rule is one of the ErrSubclass sentinels.
type SubclassError struct {
	Class    string
	Subclass string
	Rule     error
}

func (e *SubclassError) Error() string {
	return fmt.Sprintf("class %s declares subclass %s: %v", e.Class, e.Subclass, e.Rule)
}

func (e *SubclassError) Unwrap() error { return e.Rule }

// Resolve sets Parent and Children on every class of doc, refreshes
// doc.RootClasses and validates declared subclasses. Missing bases are
// returned as diagnostics; a subclass contradiction is returned as a
// *SubclassError. Previous results are discarded first, so resolving a
// resolved document changes nothing.
func Resolve(doc *model.Document, opts Options) (*diag.Collector, error) {
	r := &resolver{
		opts:      opts,
		diags:     diag.New(),
		byName:    make(map[string]*model.Class),
		ancestors: make(map[string]map[string]bool),
	}
	classes := doc.Classes()
	for _, c := range classes {
		c.Parent = ""
		c.Children = nil
	}

	if err := r.register(classes); err != nil {
		return r.diags, err
	}
	for _, c := range classes {
		c.Parent = r.parentOf(c)
	}
	r.link(classes)

	doc.RootClasses = nil
	for _, c := range classes {
		if !r.hasDeclaredBase(c) {
			doc.RootClasses = append(doc.RootClasses, c)
		}
	}

	for _, c := range classes {
		// Bases never name the universal root, so its subclass list cannot be
		// checked against them.
		if c.Name == r.opts.RootClass {
			continue
		}
		if err := r.validateSubclasses(c); err != nil {
			return r.diags, err
		}
	}
	return r.diags, nil
}

type resolver struct {
	opts  Options
	diags *diag.Collector

	// g holds one vertex per distinct class name, first declaration wins,
	// with an edge from each class to each of its known bases.
	g         graph.Graph[string, *model.Class]
	adj       map[string]map[string]graph.Edge[string]
	byName    map[string]*model.Class
	ancestors map[string]map[string]bool
}

// register builds the class registry and its base edges, collecting missing
// bases and dropping edges that would close a cycle.
func (r *resolver) register(classes []*model.Class) error {
	r.g = graph.New(func(c *model.Class) string { return c.Name }, graph.Directed(), graph.PreventCycles())
	for _, c := range classes {
		if err := r.g.AddVertex(c); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				log.Debugf("class %s declared again at %s, registry keeps the first declaration", c.Name, location(c))
				continue
			}
			return fmt.Errorf("failed to register class %s: %w", c.Name, err)
		}
		r.byName[c.Name] = c
	}

	for _, c := range classes {
		registered := r.byName[c.Name] == c
		for _, base := range c.Bases {
			if base == r.opts.RootClass {
				continue
			}
			if _, ok := r.byName[base]; !ok {
				before := r.diags.Len()
				r.diags.MissingClass(base, c.Name)
				if r.diags.Len() > before {
					log.Warningf("base class %s of %s is not defined", base, c.Name)
				}
				continue
			}
			if !registered {
				continue
			}
			err := r.g.AddEdge(c.Name, base)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				log.Warningf("base %s of class %s closes an inheritance cycle, ignored", base, c.Name)
			default:
				return fmt.Errorf("failed to link class %s to base %s: %w", c.Name, base, err)
			}
		}
	}

	adj, err := r.g.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("failed to read class graph: %w", err)
	}
	r.adj = adj
	return nil
}

// ancestorsOf returns every transitive base of the registered class name.
func (r *resolver) ancestorsOf(name string) map[string]bool {
	if set, ok := r.ancestors[name]; ok {
		return set
	}
	set := make(map[string]bool)
	r.ancestors[name] = set
	for base := range r.adj[name] {
		set[base] = true
		for a := range r.ancestorsOf(base) {
			set[a] = true
		}
	}
	return set
}

// hasDeclaredBase reports whether c names any base besides the universal root.
func (r *resolver) hasDeclaredBase(c *model.Class) bool {
	for _, base := range c.Bases {
		if base != r.opts.RootClass {
			return true
		}
	}
	return false
}

// candidates returns the known bases of c in declaration order.
func (r *resolver) candidates(c *model.Class) []string {
	registered := r.byName[c.Name] == c
	seen := make(map[string]bool, len(c.Bases))
	var out []string
	for _, base := range c.Bases {
		if base == r.opts.RootClass || base == c.Name || seen[base] {
			continue
		}
		if _, ok := r.byName[base]; !ok {
			continue
		}
		if registered {
			if _, ok := r.adj[c.Name][base]; !ok {
				continue
			}
		}
		seen[base] = true
		out = append(out, base)
	}
	return out
}

// parentOf picks the direct parent of c: a candidate that is an ancestor of
// another candidate is disqualified, and of the survivors the later-declared
// one wins.
func (r *resolver) parentOf(c *model.Class) string {
	cands := r.candidates(c)
	var survivors []string
	for i, b := range cands {
		disqualified := false
		for j, other := range cands {
			if i != j && r.ancestorsOf(other)[b] {
				disqualified = true
				break
			}
		}
		if !disqualified {
			survivors = append(survivors, b)
		}
	}
	if len(survivors) == 0 {
		return ""
	}
	if len(survivors) > 1 {
		log.Debugf("class %s has unrelated bases %v, choosing %s", c.Name, survivors, survivors[len(survivors)-1])
	}
	return survivors[len(survivors)-1]
}

// link fills Children as the inverse of Parent, in registry order.
func (r *resolver) link(classes []*model.Class) {
	for _, c := range classes {
		if c.Parent == "" {
			continue
		}
		parent := r.byName[c.Parent]
		if !contains(parent.Children, c.Name) {
			parent.Children = append(parent.Children, c.Name)
		}
	}
}

func (r *resolver) validateSubclasses(c *model.Class) error {
	for _, s := range c.Subclasses {
		if err := r.checkSubclass(c, s); err != nil {
			return &SubclassError{Class: c.Name, Subclass: s, Rule: err}
		}
	}
	return nil
}

func (r *resolver) checkSubclass(c *model.Class, s string) error {
	sub, ok := r.byName[s]
	switch {
	case !ok:
		return ErrSubclassMissing
	case !sub.HasBase(c.Name):
		return ErrSubclassNotDerived
	case c.HasBase(s):
		return ErrSubclassIsBase
	}
	if c.Parent == "" {
		return nil
	}
	if r.byName[c.Parent].HasBase(s) {
		return ErrSubclassIsParentBase
	}
	if s == c.Parent {
		return ErrSubclassIsParent
	}
	return nil
}

func location(c *model.Class) string {
	if len(c.Locations) == 0 {
		return "unknown location"
	}
	return c.Locations[0].String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
