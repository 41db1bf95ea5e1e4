package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/gfcedit/census"
)

// TextEncoder writes tab separated lines, and the class tree indented by
// two spaces per level.
type TextEncoder struct {
	w      io.Writer
	report *Report
	// Instances adds "#id CLASS" leaves below their class in the tree.
	Instances bool
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(r *Report) error {
	e.report = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	r := e.report

	if r.Stats != nil {
		fmt.Fprintf(&sb, "%s: %d instances, %d classes, %d unknown\n",
			r.Path, r.Stats.Instances, r.Stats.Mapped, r.Stats.Unknown)
	}
	for _, c := range r.Counts {
		fmt.Fprintf(&sb, "count\t%s\t%d\t%d\n", c.Class, c.Direct, c.Inclusive)
	}
	e.writeTree(&sb, r.Tree)
	for _, u := range r.Unknown {
		fmt.Fprintf(&sb, "unknown\t%s\t%d", u.Name, u.Count)
		if u.Suggestion != "" {
			fmt.Fprintf(&sb, "\tdid you mean %s?", u.Suggestion)
		}
		sb.WriteString("\n")
	}
	if in := r.Inspection; in != nil {
		fmt.Fprintf(&sb, "#%d %s", in.Instance.Index, in.Instance.Class)
		if in.Class != "" {
			fmt.Fprintf(&sb, "\t%s", strings.Join(append([]string{in.Class}, in.Ancestors...), " < "))
		} else {
			sb.WriteString("\tunknown class")
		}
		sb.WriteString("\n")
		for _, p := range in.Properties {
			fmt.Fprintf(&sb, "  %s\t%s\n", p.Name, p.Value)
		}
	}
	if s := r.Schema; s != nil {
		for _, c := range s.Classes {
			parent := c.Parent
			if parent == "" {
				parent = "-"
			}
			fmt.Fprintf(&sb, "class\t%s\t%s\t%d\n", c.Name, parent, len(c.Attributes))
			for _, a := range c.Attributes {
				fmt.Fprintf(&sb, "  %s\n", a)
			}
		}
		for _, name := range s.Malformed {
			fmt.Fprintf(&sb, "malformed\t%s\n", name)
		}
	}
	if d := r.Definition; d != nil {
		fmt.Fprintf(&sb, "%s:%d:%d\t#%d\toffset %d\n", r.Path, d.Line, d.Column, d.ID, d.Offset)
	}

	return []byte(sb.String()), nil
}

func (e *TextEncoder) writeTree(sb *strings.Builder, nodes []*census.Node) {
	census.Walk(nodes, func(n *census.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(sb, "%s%s\n", indent, n.Label())
		if e.Instances {
			for _, ref := range n.Instances {
				fmt.Fprintf(sb, "%s  %s\n", indent, census.InstanceLabel(ref))
			}
		}
		return true
	})
}
