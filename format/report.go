package format

import (
	"sort"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/gfc"
	"github.com/dhamidi/gfcedit/workspace"
)

// Report is what a command prints. Encoders render the sections that are
// set and skip the rest.
type Report struct {
	Path       string
	Stats      *census.Stats
	Counts     []ClassCount
	Tree       []*census.Node
	Unknown    []census.UnknownClass
	Inspection *workspace.Inspection
	Schema     *SchemaReport
	Definition *Location
}

type ClassCount struct {
	Class     string `json:"class"`
	Direct    int    `json:"direct"`
	Inclusive int    `json:"inclusive"`
}

type SchemaReport struct {
	Path      string
	Classes   []*express.Class
	Malformed []string
}

// Location is an instance header found in a document. Line and Column
// are one-based.
type Location struct {
	ID     int `json:"id"`
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Counts lists every class with a non-zero inclusive count, by name.
func Counts(c *census.Census) []ClassCount {
	out := make([]ClassCount, 0, len(c.Inclusive))
	for class, incl := range c.Inclusive {
		if incl == 0 {
			continue
		}
		out = append(out, ClassCount{Class: class, Direct: c.Direct[class], Inclusive: incl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}

// DocumentReport summarizes a document: stats, counts and unknown
// classes with suggestions.
func DocumentReport(doc *workspace.Document, minSimilarity float32) *Report {
	stats := doc.Stats()
	return &Report{
		Path:    doc.Path,
		Stats:   &stats,
		Counts:  Counts(doc.Census),
		Unknown: doc.Census.UnknownClasses(doc.Schema.Hierarchy, minSimilarity),
	}
}

// NewSchemaReport lists the classes of a schema by name.
func NewSchemaReport(path string, s *express.Schema) *SchemaReport {
	classes := make([]*express.Class, 0, len(s.Classes))
	for _, c := range s.Classes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return &SchemaReport{Path: path, Classes: classes, Malformed: s.Malformed}
}

// Locate finds the header of instance #id.
func Locate(doc *workspace.Document, id int) (*Location, bool) {
	offset, ok := gfc.FindDefinition(doc.Text, id)
	if !ok {
		return nil, false
	}
	line, char := doc.Lines.Position(offset)
	return &Location{ID: id, Offset: offset, Line: line + 1, Column: char + 1}, true
}
