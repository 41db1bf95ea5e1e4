// Package ui serves a browser inspector for the documents of a workspace:
// the class tree with counts, class declarations and instance properties.
package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/gfc"
	"github.com/dhamidi/gfcedit/workspace"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("gfc.ui")

type Server struct {
	workspace  *workspace.Workspace
	staticFS   fs.FS
	templates  *template.Template
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap

	mu      sync.Mutex
	current string
}

func NewServer(ws *workspace.Workspace) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"indent": func(depth int) int {
			return depth * 16
		},
		"instanceLabel": census.InstanceLabel,
		"join":          strings.Join,
		"fileQuery":     fileQuery,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		workspace:  ws,
		staticFS:   staticFS,
		templates:  tmpl,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /open", s.handleOpen)
	s.mux.HandleFunc("GET /c/{className}", s.handleClass)
	s.mux.HandleFunc("GET /i/{pos}", s.handleInstance)
	s.mux.HandleFunc("GET /sidebar", s.handleSidebar)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Open scans path into the workspace and makes it the current document.
func (s *Server) Open(path string) (*workspace.Document, error) {
	doc, err := s.workspace.ScanFile(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = doc.Path
	s.mu.Unlock()
	return doc, nil
}

// document picks the document named by the file query parameter, or the
// current one.
func (s *Server) document(r *http.Request) *workspace.Document {
	path := r.URL.Query().Get("file")
	if path == "" {
		s.mu.Lock()
		path = s.current
		s.mu.Unlock()
	}
	if path != "" {
		return s.workspace.GetFile(path)
	}
	if files := s.workspace.Files(); len(files) > 0 {
		return files[0]
	}
	return nil
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("encode json: %s", err)
	}
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Path = r.FormValue("path")
	}
	if req.Path == "" {
		http.Error(w, "must provide path", http.StatusBadRequest)
		return
	}

	doc, err := s.Open(req.Path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	log.Infof("opened %s", doc.Path)

	if wantsJSON(r) {
		writeJSON(w, format.BuildJSON(format.DocumentReport(doc, s.threshold())))
		return
	}
	http.Redirect(w, r, "/"+string(fileQuery(doc.Path)), http.StatusSeeOther)
}

func fileQuery(path string) template.URL {
	return template.URL("?file=" + url.QueryEscape(path))
}

func (s *Server) threshold() float32 {
	return float32(s.workspace.Config().SuggestThreshold)
}

type treeRow struct {
	Depth     int
	Node      *census.Node
	Instances []gfc.InstanceRef
}

type IndexViewData struct {
	Files    []*workspace.Document
	Document *workspace.Document
	Schema   *workspace.SchemaSnapshot
	Rows     []treeRow
	Unknown  []census.UnknownClass
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc := s.document(r)
	showAll := r.URL.Query().Get("all") != ""

	if wantsJSON(r) {
		if doc == nil {
			http.Error(w, "no document open", http.StatusNotFound)
			return
		}
		report := format.DocumentReport(doc, s.threshold())
		report.Tree = doc.Tree(!showAll && s.workspace.Config().HideEmpty)
		writeJSON(w, format.BuildJSON(report))
		return
	}

	data := IndexViewData{
		Files:    s.workspace.Files(),
		Document: doc,
		Schema:   s.workspace.Schema(),
	}
	if doc != nil {
		census.Walk(doc.Tree(!showAll && s.workspace.Config().HideEmpty), func(n *census.Node, depth int) bool {
			data.Rows = append(data.Rows, treeRow{Depth: depth, Node: n, Instances: n.Instances})
			return true
		})
		data.Unknown = doc.Census.UnknownClasses(doc.Schema.Hierarchy, s.threshold())
	}
	s.render(w, "index.html", data)
}

type ClassViewData struct {
	Document  *workspace.Document
	Class     string
	Parent    string
	Ancestors []string
	Children  []string
	Attrs     []string
	Direct    int
	Inclusive int
	Instances []gfc.InstanceRef
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	snap := s.workspace.Schema()
	name, ok := snap.Hierarchy.Resolve(r.PathValue("className"))
	if !ok {
		http.Error(w, "class not found", http.StatusNotFound)
		return
	}
	h := snap.Hierarchy
	data := ClassViewData{
		Document:  s.document(r),
		Class:     name,
		Parent:    h.Parent(name),
		Ancestors: h.Ancestors(name),
		Children:  h.Children(name),
		Attrs:     h.Class(name).Attributes,
	}
	if doc := data.Document; doc != nil {
		data.Direct = doc.Census.DirectCount(name)
		data.Inclusive = doc.Census.InclusiveCount(name)
		data.Instances = doc.Census.Instances[name]
	}

	if wantsJSON(r) {
		writeJSON(w, struct {
			Class      string            `json:"class"`
			Parent     string            `json:"parent,omitempty"`
			Ancestors  []string          `json:"ancestors,omitempty"`
			Children   []string          `json:"children,omitempty"`
			Attributes []string          `json:"attributes,omitempty"`
			Direct     int               `json:"direct"`
			Inclusive  int               `json:"inclusive"`
			Instances  []gfc.InstanceRef `json:"instances,omitempty"`
		}{data.Class, data.Parent, data.Ancestors, data.Children, data.Attrs, data.Direct, data.Inclusive, data.Instances})
		return
	}
	s.render(w, "class.html", data)
}

type InstanceViewData struct {
	Document   *workspace.Document
	Inspection *workspace.Inspection
}

func (s *Server) handleInstance(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil {
		http.Error(w, "invalid position: "+err.Error(), http.StatusBadRequest)
		return
	}
	doc := s.document(r)
	if doc == nil {
		http.Error(w, "no document open", http.StatusNotFound)
		return
	}
	in, err := s.workspace.Inspect(doc.Path, pos)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, format.BuildJSON(&format.Report{Path: doc.Path, Inspection: in}))
		return
	}
	s.render(w, "instance.html", InstanceViewData{Document: doc, Inspection: in})
}

type sidebarClass struct {
	Name      string
	Inclusive int
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))
	activeClassName := r.URL.Query().Get("active")
	doc := s.document(r)

	const maxResults = 20

	var classes []sidebarClass
	var totalMatches int
	for _, name := range s.workspace.Schema().Hierarchy.Names() {
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		totalMatches++
		if len(classes) < maxResults {
			c := sidebarClass{Name: name}
			if doc != nil {
				c.Inclusive = doc.Census.InclusiveCount(name)
			}
			classes = append(classes, c)
		}
	}

	data := struct {
		Classes         []sidebarClass
		ActiveClassName string
		TotalMatches    int
		HasMore         bool
	}{
		Classes:         classes,
		ActiveClassName: activeClassName,
		TotalMatches:    totalMatches,
		HasMore:         totalMatches > maxResults,
	}
	if wantsJSON(r) {
		writeJSON(w, data)
		return
	}
	s.render(w, "_sidebar.html", data)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
