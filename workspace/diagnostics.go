package workspace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/gfc"
)

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Diagnostic is a problem found in a document, located by byte offsets.
type Diagnostic struct {
	Start    int
	End      int
	Severity Severity
	Message  string
}

// Diagnostics reports instances of unknown classes and instances whose
// parameter list never closes. Suggestions below minSimilarity are
// omitted.
func (d *Document) Diagnostics(minSimilarity float32) []Diagnostic {
	var diags []Diagnostic

	suggestions := make(map[string]string)
	for _, ref := range d.Census.Unknown {
		name := strings.ToUpper(ref.Class)
		suggestion, ok := suggestions[name]
		if !ok {
			suggestion = census.Suggest(d.Schema.Hierarchy, name, minSimilarity)
			suggestions[name] = suggestion
		}
		msg := fmt.Sprintf("unknown class %s", name)
		if suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.ToUpper(suggestion))
		}
		start, end := d.classSpan(ref)
		diags = append(diags, Diagnostic{Start: start, End: end, Severity: SeverityWarning, Message: msg})
	}

	// Each record must close before the next header, so every byte is
	// scanned once however many records are left open.
	for i, ref := range d.Refs {
		limit := len(d.Text)
		if i+1 < len(d.Refs) {
			limit = d.Refs[i+1].Pos
		}
		if _, err := gfc.Extract(d.Text[:limit], ref); errors.Is(err, gfc.ErrUnterminated) {
			_, end := d.classSpan(ref)
			diags = append(diags, Diagnostic{
				Start:    ref.Pos,
				End:      end,
				Severity: SeverityError,
				Message:  fmt.Sprintf("#%d %s: parameter list is not closed", ref.Index, strings.ToUpper(ref.Class)),
			})
		}
	}
	return diags
}

// classSpan locates the class name of a header reported by Scan.
func (d *Document) classSpan(ref gfc.InstanceRef) (int, int) {
	eq := strings.IndexByte(d.Text[ref.Pos:], '=')
	if eq < 0 {
		return ref.Pos, ref.Pos
	}
	from := ref.Pos + eq
	i := strings.Index(d.Text[from:], ref.Class)
	if i < 0 {
		return ref.Pos, ref.Pos
	}
	return from + i, from + i + len(ref.Class)
}
