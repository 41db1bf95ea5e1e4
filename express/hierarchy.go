package express

import (
	"sort"
	"strings"
)

// Hierarchy is a read-only index over a Schema: the children of every
// class and a case-insensitive resolver from any casing to the canonical
// display name. It is built once per schema load and never mutated.
type Hierarchy struct {
	schema   *Schema
	children map[string][]string
	lower    map[string]string
	roots    []string
	names    []string
}

// NewHierarchy indexes s. A nil schema yields an empty hierarchy.
func NewHierarchy(s *Schema) *Hierarchy {
	if s == nil {
		s = &Schema{Classes: map[string]*Class{}}
	}
	h := &Hierarchy{
		schema:   s,
		children: make(map[string][]string, len(s.Classes)),
		lower:    make(map[string]string, len(s.Classes)),
	}

	for name := range s.Classes {
		h.names = append(h.names, name)
	}
	sort.Strings(h.names)

	for _, name := range h.names {
		h.children[name] = nil
		key := strings.ToLower(name)
		if _, taken := h.lower[key]; !taken {
			h.lower[key] = name
		}
	}
	for _, name := range h.names {
		c := s.Classes[name]
		if c.Parent == "" {
			h.roots = append(h.roots, name)
			continue
		}
		h.children[c.Parent] = append(h.children[c.Parent], name)
	}
	return h
}

// Schema returns the indexed schema.
func (h *Hierarchy) Schema() *Schema {
	return h.schema
}

// Names returns every canonical class name, sorted.
func (h *Hierarchy) Names() []string {
	return h.names
}

// Roots returns the classes without a supertype, sorted. A schema may have
// several roots.
func (h *Hierarchy) Roots() []string {
	return h.roots
}

// Children returns the direct subtypes of name, sorted.
func (h *Hierarchy) Children(name string) []string {
	return h.children[name]
}

// HasClass reports whether name is a key of the children index. Parents
// referenced by SUBTYPE OF but never declared are keys too.
func (h *Hierarchy) HasClass(name string) bool {
	_, ok := h.children[name]
	return ok
}

// Class returns the declaration of a canonical name, or nil.
func (h *Hierarchy) Class(name string) *Class {
	return h.schema.Class(name)
}

// Parent returns the supertype of name, or "".
func (h *Hierarchy) Parent(name string) string {
	if c := h.schema.Class(name); c != nil {
		return c.Parent
	}
	return ""
}

// Resolve maps a class name in any casing to its canonical name.
func (h *Hierarchy) Resolve(raw string) (string, bool) {
	name, ok := h.lower[strings.ToLower(strings.TrimSpace(raw))]
	return name, ok
}

// Ancestors returns the supertype chain of name, nearest first. The walk
// stops at the first repeated class so a cyclic schema terminates.
func (h *Hierarchy) Ancestors(name string) []string {
	var chain []string
	seen := map[string]bool{name: true}
	for p := h.Parent(name); p != "" && !seen[p]; p = h.Parent(p) {
		seen[p] = true
		chain = append(chain, p)
	}
	return chain
}

// IsSubtypeOf reports whether name equals ancestor or inherits from it.
func (h *Hierarchy) IsSubtypeOf(name, ancestor string) bool {
	if name == ancestor {
		return true
	}
	for _, a := range h.Ancestors(name) {
		if a == ancestor {
			return true
		}
	}
	return false
}
