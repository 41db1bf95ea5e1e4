package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/workspace"
)

type JSONEncoder struct {
	w      io.Writer
	report *Report
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(r *Report) error {
	e.report = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err = io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(BuildJSON(e.report), "", "  ")
}

type jsonReport struct {
	Path       string        `json:"path,omitempty"`
	Stats      *jsonStats    `json:"stats,omitempty"`
	Counts     []ClassCount  `json:"counts,omitempty"`
	Tree       []jsonNode    `json:"tree,omitempty"`
	Unknown    []jsonUnknown `json:"unknown,omitempty"`
	Instance   *jsonInstance `json:"instance,omitempty"`
	Schema     *jsonSchema   `json:"schema,omitempty"`
	Definition *Location     `json:"definition,omitempty"`
}

type jsonStats struct {
	Instances int `json:"instances"`
	Mapped    int `json:"mappedClasses"`
	Unknown   int `json:"unknown"`
}

type jsonNode struct {
	Class     string        `json:"class"`
	Direct    int           `json:"direct"`
	Inclusive int           `json:"inclusive"`
	Instances []jsonInstRef `json:"instances,omitempty"`
	Children  []jsonNode    `json:"children,omitempty"`
}

type jsonInstRef struct {
	ID     int    `json:"id"`
	Class  string `json:"class"`
	Offset int    `json:"offset"`
}

type jsonUnknown struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Suggestion string `json:"suggestion,omitempty"`
}

type jsonInstance struct {
	ID         int                  `json:"id"`
	Class      string               `json:"class"`
	Canonical  string               `json:"canonical,omitempty"`
	Ancestors  []string             `json:"ancestors,omitempty"`
	Start      int                  `json:"start"`
	End        int                  `json:"end"`
	Properties []workspace.Property `json:"properties"`
}

type jsonSchema struct {
	Path      string      `json:"path,omitempty"`
	Classes   []jsonClass `json:"classes"`
	Malformed []string    `json:"malformed,omitempty"`
}

type jsonClass struct {
	Name       string   `json:"name"`
	Parent     string   `json:"parent,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// BuildJSON converts a report to its JSON document shape.
func BuildJSON(r *Report) any {
	data := jsonReport{
		Path:       r.Path,
		Counts:     r.Counts,
		Tree:       buildNodes(r.Tree),
		Definition: r.Definition,
	}
	if r.Stats != nil {
		data.Stats = &jsonStats{Instances: r.Stats.Instances, Mapped: r.Stats.Mapped, Unknown: r.Stats.Unknown}
	}
	for _, u := range r.Unknown {
		data.Unknown = append(data.Unknown, jsonUnknown(u))
	}
	if in := r.Inspection; in != nil {
		data.Instance = &jsonInstance{
			ID:         in.Instance.Index,
			Class:      in.Instance.Class,
			Canonical:  in.Class,
			Ancestors:  in.Ancestors,
			Start:      in.Instance.Start,
			End:        in.Instance.End,
			Properties: in.Properties,
		}
	}
	if s := r.Schema; s != nil {
		data.Schema = &jsonSchema{Path: s.Path, Classes: []jsonClass{}, Malformed: s.Malformed}
		for _, c := range s.Classes {
			data.Schema.Classes = append(data.Schema.Classes, jsonClass{
				Name:       c.Name,
				Parent:     c.Parent,
				Attributes: c.Attributes,
			})
		}
	}
	return data
}

func buildNodes(nodes []*census.Node) []jsonNode {
	var out []jsonNode
	for _, n := range nodes {
		jn := jsonNode{
			Class:     n.Class,
			Direct:    n.Direct,
			Inclusive: n.Inclusive,
			Children:  buildNodes(n.Children),
		}
		for _, ref := range n.Instances {
			jn.Instances = append(jn.Instances, jsonInstRef{ID: ref.Index, Class: ref.Class, Offset: ref.Pos})
		}
		out = append(out, jn)
	}
	return out
}
