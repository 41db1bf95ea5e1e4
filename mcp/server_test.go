package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/workspace"
)

const schemaSrc = `ENTITY Wall;
  Name : STRING;
  Height : REAL;
END_ENTITY;
ENTITY ExteriorWall;
  SUBTYPE OF (Wall);
END_ENTITY;
ENTITY Slab;
END_ENTITY;
`

const docSrc = "#1=WALL('north',3.0);\n#2=EXTERIORWALL('east',2.0);\n#3=WALLL();\n"

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "site.gfc")
	require.NoError(t, os.WriteFile(path, []byte(docSrc), 0o644))

	ws := workspace.New(dir, nil)
	ws.SetSchema("test.exp", express.ParseString(schemaSrc))
	return NewServer(ws, "test"), path
}

func call(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	result, err := handler(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{
		Arguments: raw,
	}})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &data))
	return result, data
}

func TestCounts(t *testing.T) {
	s, path := newTestServer(t)

	result, data := call(t, s.handleCounts, CountsParams{File: path})
	assert.False(t, result.IsError)
	stats := data["stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["instances"])
	assert.EqualValues(t, 2, stats["mappedClasses"])
	assert.EqualValues(t, 1, stats["unknown"])

	unknown := data["unknown"].([]any)
	require.Len(t, unknown, 1)
	assert.Equal(t, "WALLL", unknown[0].(map[string]any)["name"])
	assert.Equal(t, "Wall", unknown[0].(map[string]any)["suggestion"])

	assert.NotNil(t, s.workspace.GetFile(path))
}

func TestCountsFollowFileEdits(t *testing.T) {
	s, path := newTestServer(t)

	_, data := call(t, s.handleCounts, CountsParams{File: path})
	assert.EqualValues(t, 3, data["stats"].(map[string]any)["instances"])
	first := s.workspace.GetFile(path)

	_, _ = call(t, s.handleCounts, CountsParams{File: path})
	assert.Same(t, first, s.workspace.GetFile(path))

	require.NoError(t, os.WriteFile(path, []byte(docSrc+"#4=SLAB();\n#5=WALL('south',2.5);\n"), 0o644))
	_, data = call(t, s.handleCounts, CountsParams{File: path})
	stats := data["stats"].(map[string]any)
	assert.EqualValues(t, 5, stats["instances"])
	assert.EqualValues(t, 3, stats["mappedClasses"])
	assert.Greater(t, s.workspace.GetFile(path).Version, first.Version)
}

func TestCountsErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args any
	}{
		{"no file", CountsParams{}},
		{"missing file", CountsParams{File: "/does/not/exist.gfc"}},
		{"bad arguments", map[string]any{"file": 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, data := call(t, s.handleCounts, tt.args)
			assert.True(t, result.IsError)
			assert.Equal(t, "gfc_counts", data["operation"])
		})
	}
}

func TestTree(t *testing.T) {
	s, path := newTestServer(t)

	_, data := call(t, s.handleTree, TreeParams{File: path})
	tree := data["tree"].([]any)
	require.Len(t, tree, 1)
	wall := tree[0].(map[string]any)
	assert.Equal(t, "Wall", wall["class"])
	assert.EqualValues(t, 2, wall["inclusive"])
	assert.Nil(t, wall["instances"])

	_, data = call(t, s.handleTree, TreeParams{File: path, All: true})
	assert.Len(t, data["tree"].([]any), 2)

	_, data = call(t, s.handleTree, TreeParams{File: path, Root: "exteriorwall", Instances: true})
	tree = data["tree"].([]any)
	require.Len(t, tree, 1)
	ext := tree[0].(map[string]any)
	assert.Equal(t, "ExteriorWall", ext["class"])
	assert.Len(t, ext["instances"].([]any), 1)

	result, _ := call(t, s.handleTree, TreeParams{File: path, Root: "Door"})
	assert.True(t, result.IsError)
}

func TestInspect(t *testing.T) {
	s, path := newTestServer(t)
	id := 1
	offset := 25

	_, data := call(t, s.handleInspect, InspectParams{File: path, ID: &id})
	inst := data["instance"].(map[string]any)
	assert.EqualValues(t, 1, inst["id"])
	assert.Equal(t, "Wall", inst["canonical"])
	props := inst["properties"].([]any)
	require.Len(t, props, 2)
	assert.Equal(t, map[string]any{"name": "Height", "value": "3.0"}, props[1])

	_, data = call(t, s.handleInspect, InspectParams{File: path, Offset: &offset})
	assert.EqualValues(t, 2, data["instance"].(map[string]any)["id"])

	result, _ := call(t, s.handleInspect, InspectParams{File: path})
	assert.True(t, result.IsError)
}

func TestFind(t *testing.T) {
	s, path := newTestServer(t)

	_, data := call(t, s.handleFind, FindParams{File: path, ID: 2})
	def := data["definition"].(map[string]any)
	assert.EqualValues(t, 22, def["offset"])
	assert.EqualValues(t, 2, def["line"])
	assert.EqualValues(t, 1, def["column"])

	result, _ := call(t, s.handleFind, FindParams{File: path, ID: 9})
	assert.True(t, result.IsError)
}

func TestSchemaClass(t *testing.T) {
	s, _ := newTestServer(t)

	_, data := call(t, s.handleSchemaClass, SchemaClassParams{Class: "EXTERIORWALL"})
	assert.Equal(t, "ExteriorWall", data["name"])
	assert.Equal(t, "Wall", data["parent"])
	assert.Equal(t, []any{"Wall"}, data["ancestors"])

	_, data = call(t, s.handleSchemaClass, SchemaClassParams{Class: "wall"})
	assert.Equal(t, []any{"ExteriorWall"}, data["children"])
	assert.Equal(t, []any{"Name : STRING", "Height : REAL"}, data["attributes"])

	result, _ := call(t, s.handleSchemaClass, SchemaClassParams{Class: "Door"})
	assert.True(t, result.IsError)
}
