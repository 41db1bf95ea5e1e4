package express

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallSchema = `SCHEMA GFC3X;

ENTITY GfcRoot
  ABSTRACT SUPERTYPE OF (ONEOF(GfcWall, GfcVector3D));
  ID : STRING;
END_ENTITY;

ENTITY GfcWall
  SUBTYPE OF (GfcRoot);
  Name : OPTIONAL STRING;
  Height : REAL;
WHERE
  WR1 : Height > 0;
END_ENTITY;

entity GfcVector3D
  subtype of(GfcRoot);
  X : REAL;
  Y : REAL;
  Z : REAL;
end_entity;

END_SCHEMA;
`

func TestParseScenarioA(t *testing.T) {
	s := ParseString("ENTITY Wall; END_ENTITY;\nENTITY ExteriorWall; SUBTYPE OF(Wall); END_ENTITY;\n")

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "", s.Class("Wall").Parent)
	assert.Equal(t, "Wall", s.Class("ExteriorWall").Parent)

	h := NewHierarchy(s)
	assert.Equal(t, []string{"Wall"}, h.Roots())
	assert.Equal(t, []string{"ExteriorWall"}, h.Children("Wall"))
	assert.Empty(t, h.Children("ExteriorWall"))
}

func TestParseEntities(t *testing.T) {
	s, err := Parse(strings.NewReader(wallSchema))
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Empty(t, s.Malformed)

	tests := []struct {
		name   string
		parent string
		attrs  []string
	}{
		{"GfcRoot", "", []string{"ID : STRING"}},
		{"GfcWall", "GfcRoot", []string{"Name : OPTIONAL STRING", "Height : REAL", "WR1 : Height > 0"}},
		{"GfcVector3D", "GfcRoot", []string{"X : REAL", "Y : REAL", "Z : REAL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := s.Class(tt.name)
			require.NotNil(t, c)
			assert.Equal(t, tt.parent, c.Parent)
			assert.Equal(t, tt.attrs, c.Attributes)
		})
	}
}

func TestParseAttributesNamedLikeClauses(t *testing.T) {
	s := ParseString("ENTITY Constraint;\n  Unique : BOOLEAN;\n  Where : STRING;\n  Name : STRING;\nEND_ENTITY;\n")
	require.NotNil(t, s.Class("Constraint"))
	assert.Equal(t, []string{"Unique : BOOLEAN", "Where : STRING", "Name : STRING"}, s.Class("Constraint").Attributes)
	assert.Equal(t, []string{"Unique", "Where", "Name"}, s.Class("Constraint").AttributeNames())
}

func TestParseDropsUnterminatedBlock(t *testing.T) {
	s := ParseString("ENTITY A;\nEND_ENTITY;\nENTITY B;\n  x : REAL;\n")
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Class("B"))
	assert.Equal(t, []string{"B"}, s.Malformed)
}

func TestParseOverwritesDuplicates(t *testing.T) {
	s := ParseString("ENTITY A;\n x : REAL;\nEND_ENTITY;\nENTITY A;\n y : INTEGER;\nEND_ENTITY;\n")
	require.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"y : INTEGER"}, s.Class("A").Attributes)
}

func TestParseIgnoresMultipleSupertypes(t *testing.T) {
	s := ParseString("ENTITY C;\n SUBTYPE OF (A, B);\nEND_ENTITY;\n")
	require.NotNil(t, s.Class("C"))
	assert.Equal(t, "", s.Class("C").Parent)
}

func TestParseKeepsIdentifierCase(t *testing.T) {
	s := ParseString("Entity gfcThing;\nEnd_Entity;\n")
	assert.NotNil(t, s.Class("gfcThing"))
	assert.Nil(t, s.Class("GFCTHING"))
}

func TestParseCRLF(t *testing.T) {
	s := ParseString("ENTITY A;\r\n  n : REAL;\r\nEND_ENTITY;\r\n")
	require.NotNil(t, s.Class("A"))
	assert.Equal(t, []string{"n : REAL"}, s.Class("A").Attributes)
}

func TestAttributeNames(t *testing.T) {
	c := &Class{Attributes: []string{"Name : STRING", "  Height: REAL", "???"}}
	assert.Equal(t, []string{"Name", "Height", "???"}, c.AttributeNames())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GFC3X.exp")
	require.NoError(t, os.WriteFile(path, []byte(wallSchema), 0o644))

	s, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = ParseFile(filepath.Join(dir, "missing.exp"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, filepath.Join(dir, "missing.exp"), loadErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
