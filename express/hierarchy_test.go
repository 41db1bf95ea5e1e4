package express

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHierarchyResolve(t *testing.T) {
	h := NewHierarchy(ParseString(wallSchema))

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"GFCWALL", "GfcWall", true},
		{"gfcwall", "GfcWall", true},
		{"GfcWall", "GfcWall", true},
		{" GFCVECTOR3D ", "GfcVector3D", true},
		{"GFCDOOR", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := h.Resolve(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHierarchyEveryClassHasChildrenKey(t *testing.T) {
	h := NewHierarchy(ParseString(wallSchema))
	for _, name := range h.Names() {
		assert.True(t, h.HasClass(name), name)
	}
	assert.Equal(t, []string{"GfcVector3D", "GfcWall"}, h.Children("GfcRoot"))
	assert.Equal(t, []string{"GfcRoot"}, h.Roots())
}

func TestHierarchyForest(t *testing.T) {
	h := NewHierarchy(ParseString("ENTITY B;\nEND_ENTITY;\nENTITY A;\nEND_ENTITY;\nENTITY C;\nSUBTYPE OF (A);\nEND_ENTITY;\n"))
	assert.Equal(t, []string{"A", "B"}, h.Roots())
	assert.Equal(t, []string{"A"}, h.Ancestors("C"))
	assert.True(t, h.IsSubtypeOf("C", "A"))
	assert.False(t, h.IsSubtypeOf("C", "B"))
}

func TestHierarchyAncestorsStopsOnCycle(t *testing.T) {
	s := &Schema{Classes: map[string]*Class{
		"A": {Name: "A", Parent: "B"},
		"B": {Name: "B", Parent: "C"},
		"C": {Name: "C", Parent: "A"},
	}}
	h := NewHierarchy(s)
	assert.Equal(t, []string{"B", "C"}, h.Ancestors("A"))
	assert.Empty(t, h.Roots())
}

func TestHierarchyCaseCollision(t *testing.T) {
	s := &Schema{Classes: map[string]*Class{
		"wall": {Name: "wall"},
		"Wall": {Name: "Wall"},
	}}
	h := NewHierarchy(s)
	got, ok := h.Resolve("WALL")
	assert.True(t, ok)
	assert.Equal(t, "Wall", got)
}

func TestHierarchyNilSchema(t *testing.T) {
	h := NewHierarchy(nil)
	assert.Empty(t, h.Names())
	_, ok := h.Resolve("x")
	assert.False(t, ok)
}
