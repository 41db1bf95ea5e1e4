package census

import (
	"fmt"
	"strings"

	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/gfc"
)

// Node is one class of the rendered hierarchy.
type Node struct {
	Class     string
	Direct    int
	Inclusive int
	Children  []*Node
	Instances []gfc.InstanceRef
}

// Label renders the node as "Name (direct/inclusive)".
func (n *Node) Label() string {
	return fmt.Sprintf("%s (%d/%d)", n.Class, n.Direct, n.Inclusive)
}

// InstanceLabel renders an instance leaf as "#id CLASS".
func InstanceLabel(ref gfc.InstanceRef) string {
	return fmt.Sprintf("#%d %s", ref.Index, ref.Class)
}

// TreeOptions controls Tree.
type TreeOptions struct {
	// HideEmpty drops classes with no instances in their subtree. It only
	// applies when the document has at least one instance, so an empty
	// document still shows the whole schema.
	HideEmpty bool
	// Root restricts the forest to the subtree of one canonical class.
	Root string
}

// Tree renders the census over the class forest of h.
func (c *Census) Tree(h *express.Hierarchy, opts TreeOptions) []*Node {
	prune := opts.HideEmpty && !c.Empty()

	roots := h.Roots()
	if opts.Root != "" {
		roots = []string{opts.Root}
	}

	visited := make(map[string]bool)
	var build func(name string) *Node
	build = func(name string) *Node {
		if visited[name] {
			return nil
		}
		visited[name] = true

		incl := c.Inclusive[name]
		if prune && incl == 0 {
			return nil
		}
		n := &Node{
			Class:     name,
			Direct:    c.Direct[name],
			Inclusive: incl,
			Instances: c.Instances[name],
		}
		for _, child := range h.Children(name) {
			if cn := build(child); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
		return n
	}

	var forest []*Node
	for _, r := range roots {
		if n := build(r); n != nil {
			forest = append(forest, n)
		}
	}
	return forest
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of that node.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
}

// Find returns the node of class in the forest, or nil.
func Find(nodes []*Node, class string) *Node {
	var found *Node
	Walk(nodes, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if strings.EqualFold(n.Class, class) {
			found = n
			return false
		}
		return true
	})
	return found
}
