// Package diag collects the non-fatal findings of a resolution pass.
package diag

import (
	"fmt"
	"strings"
)

// Warning is one collected finding.
type Warning struct {
	// Name is the missing class name; it is also the deduplication key.
	Name string
	// ReferencedBy lists the classes that named Name as a base, in report order.
	ReferencedBy []string
}

func (w Warning) String() string {
	return fmt.Sprintf("class %s is referenced as a base by %s but is not defined",
		w.Name, strings.Join(w.ReferencedBy, ", "))
}

// Collector accumulates warnings ordered by first report and deduplicated by
// missing class name. The zero value is not usable; call New.
type Collector struct {
	order []string
	seen  map[string]*Warning
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{seen: make(map[string]*Warning)}
}

// MissingClass records that referencedBy names an undefined base class. Only the
// first report of a name creates a warning; later reports add referrers.
func (c *Collector) MissingClass(name, referencedBy string) {
	if c == nil {
		return
	}
	if w, ok := c.seen[name]; ok {
		if referencedBy != "" && !contains(w.ReferencedBy, referencedBy) {
			w.ReferencedBy = append(w.ReferencedBy, referencedBy)
		}
		return
	}
	w := &Warning{Name: name}
	if referencedBy != "" {
		w.ReferencedBy = []string{referencedBy}
	}
	c.seen[name] = w
	c.order = append(c.order, name)
}

// Entries returns the collected warnings in report order.
func (c *Collector) Entries() []Warning {
	if c == nil {
		return nil
	}
	out := make([]Warning, 0, len(c.order))
	for _, name := range c.order {
		w := c.seen[name]
		out = append(out, Warning{Name: w.Name, ReferencedBy: append([]string(nil), w.ReferencedBy...)})
	}
	return out
}

// Warnings returns the collected warnings as text, one per missing name.
func (c *Collector) Warnings() []string {
	entries := c.Entries()
	out := make([]string, len(entries))
	for i, w := range entries {
		out[i] = w.String()
	}
	return out
}

// Len returns the number of distinct warnings.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Merge appends the warnings of other, keeping deduplication.
func (c *Collector) Merge(other *Collector) {
	if c == nil || other == nil {
		return
	}
	for _, name := range other.order {
		w := other.seen[name]
		if len(w.ReferencedBy) == 0 {
			c.MissingClass(name, "")
		}
		for _, ref := range w.ReferencedBy {
			c.MissingClass(name, ref)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
