package workspace

import (
	"fmt"

	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/gfc"
)

// MissingValue fills property rows that have a name but no parameter.
const MissingValue = "<missing>"

// Property is one row of the property inspector.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Properties pairs schema attribute names with instance parameters
// positionally. An arity mismatch is not an error: surplus parameters get
// an "<extra #n>" name, surplus names get MissingValue.
func Properties(names, params []string) []Property {
	rows := max(len(names), len(params))
	props := make([]Property, rows)
	for i := range rows {
		if i < len(names) {
			props[i].Name = names[i]
		} else {
			props[i].Name = fmt.Sprintf("<extra #%d>", i+1)
		}
		if i < len(params) {
			props[i].Value = params[i]
		} else {
			props[i].Value = MissingValue
		}
	}
	return props
}

// Inspection is the property view of one instance.
type Inspection struct {
	Instance gfc.Instance
	// Class is the canonical schema class, empty when the name is unknown.
	Class      string
	Ancestors  []string
	Properties []Property
}

// Inspect extracts the instance at offset in the document and pairs its
// parameters with the attributes of its class.
func (w *Workspace) Inspect(path string, offset int) (*Inspection, error) {
	doc, err := w.document(path)
	if err != nil {
		return nil, err
	}
	inst, err := gfc.InstanceAt(doc.Text, offset)
	if err != nil {
		return nil, fmt.Errorf("inspect %s at %d: %w", path, offset, err)
	}
	return inspect(doc.Schema.Hierarchy, inst), nil
}

// InspectID inspects the instance whose header is #id.
func (w *Workspace) InspectID(path string, id int) (*Inspection, error) {
	doc, err := w.document(path)
	if err != nil {
		return nil, err
	}
	pos, ok := gfc.FindDefinition(doc.Text, id)
	if !ok {
		return nil, fmt.Errorf("inspect %s: #%d: %w", path, id, gfc.ErrNoInstance)
	}
	inst, err := gfc.InstanceAt(doc.Text, pos)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: #%d: %w", path, id, err)
	}
	return inspect(doc.Schema.Hierarchy, inst), nil
}

func inspect(h *express.Hierarchy, inst gfc.Instance) *Inspection {
	in := &Inspection{Instance: inst}
	var names []string
	if class, ok := h.Resolve(inst.Class); ok {
		in.Class = class
		in.Ancestors = h.Ancestors(class)
		names = h.Class(class).AttributeNames()
	}
	in.Properties = Properties(names, inst.Params)
	return in
}

// ClassInfo returns the schema declaration of a class, resolved case
// insensitively.
func (w *Workspace) ClassInfo(name string) (*express.Class, error) {
	snap := w.Schema()
	if !snap.Loaded() {
		return nil, ErrNoSchema
	}
	canonical, ok := snap.Hierarchy.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	return snap.Hierarchy.Class(canonical), nil
}

// Definition follows the #id reference under the cursor to the offset of
// its instance header.
func (w *Workspace) Definition(path string, offset int) (int, bool) {
	doc := w.GetFile(path)
	if doc == nil {
		return 0, false
	}
	id, ok := gfc.IDAt(doc.Text, offset)
	if !ok {
		return 0, false
	}
	return gfc.FindDefinition(doc.Text, id)
}

// Highlights returns every occurrence of the class of the instance at the
// cursor.
func (w *Workspace) Highlights(path string, offset int) []gfc.Span {
	doc := w.GetFile(path)
	if doc == nil {
		return nil
	}
	inst, err := gfc.InstanceAt(doc.Text, offset)
	if err != nil {
		return nil
	}
	return gfc.Occurrences(doc.Text, inst.Class)
}

// ClassAt resolves the class name under the cursor. Only identifiers
// followed by "(" count, so words inside string values are ignored.
func (w *Workspace) ClassAt(path string, offset int) (string, bool) {
	doc := w.GetFile(path)
	if doc == nil {
		return "", false
	}
	word := classWordAt(doc.Text, offset)
	if word == "" {
		return "", false
	}
	return doc.Schema.Hierarchy.Resolve(word)
}

func classWordAt(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	start := offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	end := offset
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	if start == end || isDigitByte(text[start]) {
		return ""
	}
	next := end
	for next < len(text) && (text[next] == ' ' || text[next] == '\t') {
		next++
	}
	if next == len(text) || text[next] != '(' {
		return ""
	}
	return text[start:end]
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordByte(b byte) bool {
	return b == '_' || isDigitByte(b) || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
