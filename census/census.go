// Package census counts the instances of a GFC document per schema class,
// both directly and inclusive of every subtype.
package census

import (
	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/gfc"
)

// Stats are the aggregate figures of one recount.
type Stats struct {
	Instances int // headers found by the scan
	Mapped    int // distinct classes with at least one direct instance
	Unknown   int // headers whose class is not in the schema
}

// Census is an immutable snapshot of the counts for one document text
// against one hierarchy. A new text or schema produces a new Census.
type Census struct {
	Direct    map[string]int
	Inclusive map[string]int
	// Instances lists the refs of each canonical class in text order.
	Instances map[string][]gfc.InstanceRef
	// Unknown lists the refs whose class did not resolve.
	Unknown []gfc.InstanceRef
	Stats   Stats
}

// Count resolves every ref through h and accumulates direct and inclusive
// counts. Inclusive counts are propagated up the parent chain of each class
// with direct instances; a class seen twice on one chain ends the walk.
func Count(refs []gfc.InstanceRef, h *express.Hierarchy) *Census {
	c := &Census{
		Direct:    make(map[string]int),
		Inclusive: make(map[string]int),
		Instances: make(map[string][]gfc.InstanceRef),
		Stats:     Stats{Instances: len(refs)},
	}

	for _, ref := range refs {
		name, ok := h.Resolve(ref.Class)
		if !ok {
			c.Unknown = append(c.Unknown, ref)
			continue
		}
		c.Direct[name]++
		c.Instances[name] = append(c.Instances[name], ref)
	}
	c.Stats.Unknown = len(c.Unknown)
	c.Stats.Mapped = len(c.Direct)

	for name, n := range c.Direct {
		c.Inclusive[name] += n
		for _, ancestor := range h.Ancestors(name) {
			c.Inclusive[ancestor] += n
		}
	}
	return c
}

// DirectCount returns the number of instances typed exactly as class.
func (c *Census) DirectCount(class string) int {
	return c.Direct[class]
}

// InclusiveCount returns the number of instances of class and its subtypes.
func (c *Census) InclusiveCount(class string) int {
	return c.Inclusive[class]
}

// Empty reports whether the document had no resolvable instances.
func (c *Census) Empty() bool {
	return len(c.Direct) == 0
}
