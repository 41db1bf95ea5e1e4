package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/workspace"
)

const schemaSrc = "ENTITY Wall;\n  Name : STRING;\nEND_ENTITY;\nENTITY ExteriorWall; SUBTYPE OF (Wall); END_ENTITY;\n"

func testDocument(t *testing.T) (*workspace.Workspace, *workspace.Document) {
	t.Helper()
	w := workspace.New(t.TempDir(), nil)
	w.SetSchema("test.exp", express.ParseString(schemaSrc))
	return w, w.UpdateFile("a.gfc", []byte("#1=WALL('n');\n#2=EXTERIORWALL();\n#3=DOOR();\n"))
}

func TestTextDocumentReport(t *testing.T) {
	_, doc := testDocument(t)

	var buf bytes.Buffer
	require.NoError(t, NewTextEncoder(&buf).Encode(DocumentReport(doc, 0.8)))

	want := "a.gfc: 3 instances, 2 classes, 1 unknown\n" +
		"count\tExteriorWall\t1\t1\n" +
		"count\tWall\t1\t2\n" +
		"unknown\tDOOR\t1\n"
	assert.Equal(t, want, buf.String())
}

func TestTextTree(t *testing.T) {
	_, doc := testDocument(t)

	tests := []struct {
		name      string
		instances bool
		want      string
	}{
		{
			name: "classes",
			want: "Wall (1/2)\n  ExteriorWall (1/1)\n",
		},
		{
			name:      "with instances",
			instances: true,
			want:      "Wall (1/2)\n  #1 WALL\n  ExteriorWall (1/1)\n    #2 EXTERIORWALL\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := NewTextEncoder(&buf)
			enc.Instances = tt.instances
			require.NoError(t, enc.Encode(&Report{Tree: doc.Tree(true)}))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTextInspection(t *testing.T) {
	w, _ := testDocument(t)
	in, err := w.Inspect("a.gfc", 0)
	require.NoError(t, err)

	text, err := (&TextEncoder{report: &Report{Inspection: in}}).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#1 WALL\tWall\n  Name\t'n'\n", string(text))
}

func TestTextSchema(t *testing.T) {
	s := express.ParseString(schemaSrc + "ENTITY Broken;\n")
	text, err := (&TextEncoder{report: &Report{Schema: NewSchemaReport("test.exp", s)}}).MarshalText()
	require.NoError(t, err)

	want := "class\tExteriorWall\tWall\t0\n" +
		"class\tWall\t-\t1\n" +
		"  Name : STRING\n" +
		"malformed\tBroken\n"
	assert.Equal(t, want, string(text))
}

func TestJSONDocumentReport(t *testing.T) {
	_, doc := testDocument(t)
	r := DocumentReport(doc, 0.8)
	r.Tree = doc.Tree(true)

	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(r))

	var got struct {
		Path  string `json:"path"`
		Stats struct {
			Instances int `json:"instances"`
			Mapped    int `json:"mappedClasses"`
			Unknown   int `json:"unknown"`
		} `json:"stats"`
		Counts []ClassCount `json:"counts"`
		Tree   []struct {
			Class     string `json:"class"`
			Inclusive int    `json:"inclusive"`
			Instances []struct {
				ID     int `json:"id"`
				Offset int `json:"offset"`
			} `json:"instances"`
			Children []struct {
				Class string `json:"class"`
			} `json:"children"`
		} `json:"tree"`
		Unknown []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"unknown"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "a.gfc", got.Path)
	assert.Equal(t, 3, got.Stats.Instances)
	assert.Equal(t, 2, got.Stats.Mapped)
	assert.Equal(t, 1, got.Stats.Unknown)
	assert.Equal(t, []ClassCount{{"ExteriorWall", 1, 1}, {"Wall", 1, 2}}, got.Counts)
	require.Len(t, got.Tree, 1)
	assert.Equal(t, "Wall", got.Tree[0].Class)
	assert.Equal(t, 2, got.Tree[0].Inclusive)
	require.Len(t, got.Tree[0].Instances, 1)
	assert.Equal(t, 1, got.Tree[0].Instances[0].ID)
	assert.Equal(t, 0, got.Tree[0].Instances[0].Offset)
	require.Len(t, got.Tree[0].Children, 1)
	assert.Equal(t, "ExteriorWall", got.Tree[0].Children[0].Class)
	require.Len(t, got.Unknown, 1)
	assert.Equal(t, "DOOR", got.Unknown[0].Name)
}

func TestNewEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder("json", &buf)
	require.NoError(t, err)
	assert.IsType(t, &JSONEncoder{}, enc)

	enc, err = NewEncoder("", &buf)
	require.NoError(t, err)
	assert.IsType(t, &TextEncoder{}, enc)

	_, err = NewEncoder("yaml", &buf)
	assert.Error(t, err)
}
