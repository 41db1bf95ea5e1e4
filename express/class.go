// Package express reads the entity declarations of an EXPRESS-flavoured
// schema and indexes their single-parent inheritance tree.
package express

import "regexp"

// Class is one ENTITY block of a schema.
type Class struct {
	Name       string   // display casing as declared
	Parent     string   // single supertype, empty for a root
	Attributes []string // raw "name : TYPE" declarations in order, without ';'
}

// IsRoot reports whether the class has no supertype.
func (c *Class) IsRoot() bool {
	return c.Parent == ""
}

var attrNamePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// AttributeNames returns the declared attribute names in order. A
// declaration without a recognisable name is returned trimmed as-is.
func (c *Class) AttributeNames() []string {
	names := make([]string, 0, len(c.Attributes))
	for _, attr := range c.Attributes {
		if m := attrNamePattern.FindStringSubmatch(attr); m != nil {
			names = append(names, m[1])
			continue
		}
		names = append(names, trimSpace(attr))
	}
	return names
}

// Schema is the result of parsing one schema source.
type Schema struct {
	Classes map[string]*Class
	// Malformed lists entities whose block never reached END_ENTITY.
	Malformed []string
}

// Class returns the class with the given canonical name, or nil.
func (s *Schema) Class(name string) *Class {
	if s == nil {
		return nil
	}
	return s.Classes[name]
}

// Len returns the number of classes.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Classes)
}
