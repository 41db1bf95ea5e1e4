// Package mcp exposes the workspace to agents as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/gfc"
	"github.com/dhamidi/gfcedit/workspace"
)

var log = commonlog.GetLogger("gfc.mcp")

type Server struct {
	workspace *workspace.Workspace
	server    *mcp.Server
}

func NewServer(ws *workspace.Workspace, version string) *Server {
	s := &Server{
		workspace: ws,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "gfcedit",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves tools on stdin and stdout until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func fileProperty() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Path of the .gfc data file",
	}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "gfc_counts",
		Description: "Count the instances of a GFC file per schema class, directly and including subtypes, and list unknown classes with suggestions.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": fileProperty(),
			},
			Required: []string{"file"},
		},
	}, s.handleCounts)

	s.server.AddTool(&mcp.Tool{
		Name:        "gfc_tree",
		Description: "Class tree of a GFC file with (direct/inclusive) counts per class.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": fileProperty(),
				"all": {
					Type:        "boolean",
					Description: "Include classes without instances",
				},
				"root": {
					Type:        "string",
					Description: "Only the subtree of this class",
				},
				"instances": {
					Type:        "boolean",
					Description: "List instance ids below their class",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleTree)

	s.server.AddTool(&mcp.Tool{
		Name:        "gfc_inspect",
		Description: "Pair the parameters of one instance with the attributes of its schema class. Give either an offset or an instance id.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": fileProperty(),
				"offset": {
					Type:        "integer",
					Description: "Byte offset on the instance's line",
				},
				"id": {
					Type:        "integer",
					Description: "Instance id, the number after '#'",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleInspect)

	s.server.AddTool(&mcp.Tool{
		Name:        "gfc_find",
		Description: "Locate the line defining instance #id.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": fileProperty(),
				"id": {
					Type:        "integer",
					Description: "Instance id, the number after '#'",
				},
			},
			Required: []string{"file", "id"},
		},
	}, s.handleFind)

	s.server.AddTool(&mcp.Tool{
		Name:        "gfc_schema_class",
		Description: "Schema declaration of a class: supertype chain, subtypes and attributes. Class names match case insensitively.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"class": {
					Type:        "string",
					Description: "Class name",
				},
			},
			Required: []string{"class"},
		},
	}, s.handleSchemaClass)
}

func createJSONResponse(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result so the
// client can see and correct it.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	log.Debugf("%s: %s", operation, err)
	response, marshalErr := createJSONResponse(map[string]any{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

func decodeParams(req *mcp.CallToolRequest, params any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, params); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// document returns the open document for path, scanning it from disk the
// first time.
func (s *Server) document(path string) (*workspace.Document, error) {
	if path == "" {
		return nil, errors.New("file is required")
	}
	// Agents edit files between calls and nothing watches them here.
	// Unchanged text hashes the same and keeps the counted document.
	return s.workspace.ScanFile(path)
}

func (s *Server) threshold() float32 {
	return float32(s.workspace.Config().SuggestThreshold)
}

type CountsParams struct {
	File string `json:"file"`
}

func (s *Server) handleCounts(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params CountsParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("gfc_counts", err)
	}
	doc, err := s.document(params.File)
	if err != nil {
		return createErrorResponse("gfc_counts", err)
	}
	return createJSONResponse(format.BuildJSON(format.DocumentReport(doc, s.threshold())))
}

type TreeParams struct {
	File      string `json:"file"`
	All       bool   `json:"all"`
	Root      string `json:"root"`
	Instances bool   `json:"instances"`
}

func (s *Server) handleTree(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params TreeParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("gfc_tree", err)
	}
	doc, err := s.document(params.File)
	if err != nil {
		return createErrorResponse("gfc_tree", err)
	}

	h := doc.Schema.Hierarchy
	opts := census.TreeOptions{HideEmpty: !params.All && s.workspace.Config().HideEmpty}
	if params.Root != "" {
		root, ok := h.Resolve(params.Root)
		if !ok {
			return createErrorResponse("gfc_tree", fmt.Errorf("unknown class %q", params.Root))
		}
		opts.Root = root
	}
	tree := doc.Census.Tree(h, opts)
	if !params.Instances {
		census.Walk(tree, func(n *census.Node, _ int) bool {
			n.Instances = nil
			return true
		})
	}
	return createJSONResponse(format.BuildJSON(&format.Report{Path: doc.Path, Tree: tree}))
}

type InspectParams struct {
	File   string `json:"file"`
	Offset *int   `json:"offset"`
	ID     *int   `json:"id"`
}

func (s *Server) handleInspect(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InspectParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("gfc_inspect", err)
	}
	doc, err := s.document(params.File)
	if err != nil {
		return createErrorResponse("gfc_inspect", err)
	}

	var in *workspace.Inspection
	switch {
	case params.ID != nil:
		in, err = s.workspace.InspectID(doc.Path, *params.ID)
	case params.Offset != nil:
		in, err = s.workspace.Inspect(doc.Path, *params.Offset)
	default:
		err = errors.New("offset or id is required")
	}
	if err != nil {
		return createErrorResponse("gfc_inspect", err)
	}
	return createJSONResponse(format.BuildJSON(&format.Report{Path: doc.Path, Inspection: in}))
}

type FindParams struct {
	File string `json:"file"`
	ID   int    `json:"id"`
}

func (s *Server) handleFind(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params FindParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("gfc_find", err)
	}
	doc, err := s.document(params.File)
	if err != nil {
		return createErrorResponse("gfc_find", err)
	}
	loc, ok := format.Locate(doc, params.ID)
	if !ok {
		return createErrorResponse("gfc_find", fmt.Errorf("#%d: %w", params.ID, gfc.ErrNoInstance))
	}
	return createJSONResponse(format.BuildJSON(&format.Report{Path: doc.Path, Definition: loc}))
}

type SchemaClassParams struct {
	Class string `json:"class"`
}

type schemaClassResponse struct {
	Name       string   `json:"name"`
	Parent     string   `json:"parent,omitempty"`
	Ancestors  []string `json:"ancestors,omitempty"`
	Children   []string `json:"children,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

func (s *Server) handleSchemaClass(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SchemaClassParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("gfc_schema_class", err)
	}
	c, err := s.workspace.ClassInfo(params.Class)
	if err != nil {
		return createErrorResponse("gfc_schema_class", err)
	}
	h := s.workspace.Schema().Hierarchy
	return createJSONResponse(schemaClassResponse{
		Name:       c.Name,
		Parent:     c.Parent,
		Ancestors:  h.Ancestors(c.Name),
		Children:   h.Children(c.Name),
		Attributes: c.Attributes,
	})
}
