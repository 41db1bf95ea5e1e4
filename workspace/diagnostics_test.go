package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	w := newTestWorkspace(t)
	doc := w.UpdateFile("a.gfc", []byte(testDoc))

	diags := doc.Diagnostics(0.8)
	require.Len(t, diags, 2)

	assert.Equal(t, Diagnostic{
		Start:    53,
		End:      58,
		Severity: SeverityWarning,
		Message:  "unknown class WALLL (did you mean WALL?)",
	}, diags[0])
	assert.Equal(t, Diagnostic{
		Start:    68,
		End:      75,
		Severity: SeverityError,
		Message:  "#4 WALL: parameter list is not closed",
	}, diags[1])
}

func TestDiagnosticsWithoutSuggestion(t *testing.T) {
	w := newTestWorkspace(t)
	doc := w.UpdateFile("a.gfc", []byte("#1=DOOR();\n"))

	diags := doc.Diagnostics(0.99)
	require.Len(t, diags, 1)
	assert.Equal(t, "unknown class DOOR", diags[0].Message)
	assert.Equal(t, "warning", diags[0].Severity.String())
}

func TestDiagnosticsClean(t *testing.T) {
	w := newTestWorkspace(t)
	doc := w.UpdateFile("a.gfc", []byte("#1=WALL('a',1.0);\n#2 = exteriorwall ();\n"))
	assert.Empty(t, doc.Diagnostics(0.8))
}

func TestDiagnosticsRecordMustCloseBeforeNextHeader(t *testing.T) {
	w := newTestWorkspace(t)
	doc := w.UpdateFile("a.gfc", []byte("#1=WALL('a';\n#2=WALL('b'));\n#3=WALL('c';\n#4=WALL('d');\n"))

	diags := doc.Diagnostics(0.8)
	require.Len(t, diags, 2)
	assert.Equal(t, 0, diags[0].Start)
	assert.Equal(t, "#1 WALL: parameter list is not closed", diags[0].Message)
	assert.Equal(t, "#3 WALL: parameter list is not closed", diags[1].Message)
	for _, d := range diags {
		assert.Equal(t, SeverityError, d.Severity)
	}
}
