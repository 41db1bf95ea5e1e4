package workspace

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/config"
)

const lsName = "gfcedit"

type LSPServer struct {
	workspace *Workspace
	debouncer *Debouncer
	watcher   *FileWatcher
	handler   protocol.Handler
	server    *server.Server
	version   string
	// schemaPath overrides configuration and discovery when set.
	schemaPath string
	notify     glsp.NotifyFunc
}

func NewLSPServer(version, schemaPath string) *LSPServer {
	ls := &LSPServer{
		version:    version,
		schemaPath: schemaPath,
	}

	ls.handler = protocol.Handler{
		Initialize:                    ls.initialize,
		Initialized:                   ls.initialized,
		Shutdown:                      ls.shutdown,
		SetTrace:                      ls.setTrace,
		TextDocumentDidOpen:           ls.textDocumentDidOpen,
		TextDocumentDidChange:         ls.textDocumentDidChange,
		TextDocumentDidClose:          ls.textDocumentDidClose,
		TextDocumentDidSave:           ls.textDocumentDidSave,
		TextDocumentHover:             ls.textDocumentHover,
		TextDocumentDefinition:        ls.textDocumentDefinition,
		TextDocumentDocumentSymbol:    ls.textDocumentDocumentSymbol,
		TextDocumentDocumentHighlight: ls.textDocumentDocumentHighlight,
		TextDocumentCompletion:        ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := config.Load(rootDir)
	if err != nil {
		log.Errorf("config: %s", err)
		cfg = config.Default(rootDir)
	}

	ls.workspace = New(rootDir, cfg)
	ls.debouncer = NewDebouncer(cfg.Debounce())
	ls.notify = ctx.Notify
	ls.workspace.OnRecount(ls.publishDiagnostics)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"="},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	path := ls.schemaPath
	if path == "" {
		var err error
		path, err = LocateSchema(ls.workspace.Config(), ls.workspace.RootDir())
		if err != nil {
			log.Warningf("%s", err)
			return nil
		}
	}
	if err := ls.workspace.LoadSchema(path); err != nil {
		return nil
	}

	watcher, err := NewFileWatcher(ls.workspace.Config().Debounce())
	if err != nil {
		log.Warningf("%s", err)
		return nil
	}
	if err := ls.workspace.WatchSchema(watcher); err != nil {
		log.Warningf("%s", err)
		watcher.Stop()
		return nil
	}
	watcher.Start()
	ls.watcher = watcher
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.debouncer != nil {
		ls.debouncer.Stop()
	}
	if ls.watcher != nil {
		return ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.workspace.UpdateFile(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			content := []byte(textChange.Text)
			ls.debouncer.Trigger(path, func() {
				ls.workspace.UpdateFile(path, content)
			})
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.debouncer.Cancel(path)
	ls.workspace.RemoveFile(path)
	ls.sendDiagnostics(params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.debouncer.Flush(path)
	if params.Text != nil {
		ls.workspace.UpdateFile(path, []byte(*params.Text))
	} else if _, err := ls.workspace.ScanFile(path); err != nil {
		log.Warningf("%s", err)
	}
	return nil
}

// flush applies a pending edit before answering a query on the document.
func (ls *LSPServer) flush(uri protocol.DocumentUri) (*Document, string) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, ""
	}
	ls.debouncer.Flush(path)
	return ls.workspace.GetFile(path), path
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, path := ls.flush(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	offset := doc.Lines.Offset(int(params.Position.Line), int(params.Position.Character))

	var value string
	if class, ok := ls.workspace.ClassAt(path, offset); ok {
		value = classMarkdown(doc, class)
	} else if def, ok := ls.workspace.Definition(path, offset); ok {
		if in, err := ls.workspace.Inspect(path, def); err == nil {
			value = inspectionMarkdown(in)
		}
	} else if in, err := ls.workspace.Inspect(path, offset); err == nil {
		value = inspectionMarkdown(in)
	}
	if value == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}, nil
}

func classMarkdown(doc *Document, class string) string {
	h := doc.Schema.Hierarchy
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%d/%d)\n", class, doc.Census.DirectCount(class), doc.Census.InclusiveCount(class))
	if ancestors := h.Ancestors(class); len(ancestors) > 0 {
		fmt.Fprintf(&b, "\nsubtype of %s\n", strings.Join(ancestors, " > "))
	}
	if attrs := h.Class(class).Attributes; len(attrs) > 0 {
		b.WriteString("\n```express\n")
		for _, attr := range attrs {
			b.WriteString(attr)
			b.WriteString(";\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}

func inspectionMarkdown(in *Inspection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**#%d %s**", in.Instance.Index, in.Instance.Class)
	if in.Class == "" {
		b.WriteString(" (unknown class)")
	} else if len(in.Ancestors) > 0 {
		fmt.Fprintf(&b, " %s > %s", in.Class, strings.Join(in.Ancestors, " > "))
	}
	b.WriteString("\n\n| attribute | value |\n|---|---|\n")
	for _, p := range in.Properties {
		fmt.Fprintf(&b, "| %s | `%s` |\n", escapeCell(p.Name), escapeCell(p.Value))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc, path := ls.flush(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	offset := doc.Lines.Offset(int(params.Position.Line), int(params.Position.Character))
	def, ok := ls.workspace.Definition(path, offset)
	if !ok {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: toRange(doc.Lines, def, def),
	}, nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, _ := ls.flush(params.TextDocument.URI)
	if doc == nil || doc.Census.Empty() {
		return nil, nil
	}
	var symbols []protocol.DocumentSymbol
	for _, node := range doc.Tree(ls.workspace.Config().HideEmpty) {
		if sym, ok := nodeSymbol(doc, node); ok {
			symbols = append(symbols, sym)
		}
	}
	return symbols, nil
}

// nodeSymbol converts a census node. Its range spans all instances below
// it; nodes without instances are dropped.
func nodeSymbol(doc *Document, node *census.Node) (protocol.DocumentSymbol, bool) {
	sym, _, _, ok := nodeSymbolSpan(doc, node)
	return sym, ok
}

func nodeSymbolSpan(doc *Document, node *census.Node) (sym protocol.DocumentSymbol, start, end int, ok bool) {
	detail := fmt.Sprintf("(%d/%d)", node.Direct, node.Inclusive)
	sym = protocol.DocumentSymbol{
		Name:   node.Class,
		Detail: &detail,
		Kind:   protocol.SymbolKindClass,
	}
	start, end = -1, -1
	cover := func(s, e int) {
		if start < 0 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}

	for _, child := range node.Children {
		if childSym, s, e, ok := nodeSymbolSpan(doc, child); ok {
			sym.Children = append(sym.Children, childSym)
			cover(s, e)
		}
	}
	for _, ref := range node.Instances {
		_, nameEnd := doc.classSpan(ref)
		lineEnd := strings.IndexByte(doc.Text[ref.Pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(doc.Text)
		} else {
			lineEnd += ref.Pos
		}
		sym.Children = append(sym.Children, protocol.DocumentSymbol{
			Name:           census.InstanceLabel(ref),
			Kind:           protocol.SymbolKindObject,
			Range:          toRange(doc.Lines, ref.Pos, lineEnd),
			SelectionRange: toRange(doc.Lines, ref.Pos, nameEnd),
		})
		cover(ref.Pos, lineEnd)
	}
	if start < 0 {
		return sym, 0, 0, false
	}
	sym.Range = toRange(doc.Lines, start, end)
	sym.SelectionRange = toRange(doc.Lines, start, start)
	return sym, start, end, true
}

func (ls *LSPServer) textDocumentDocumentHighlight(ctx *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	doc, path := ls.flush(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	offset := doc.Lines.Offset(int(params.Position.Line), int(params.Position.Character))
	kind := protocol.DocumentHighlightKindText
	var highlights []protocol.DocumentHighlight
	for _, span := range ls.workspace.Highlights(path, offset) {
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: toRange(doc.Lines, span.Start, span.End),
			Kind:  &kind,
		})
	}
	return highlights, nil
}

var completionPrefix = regexp.MustCompile(`#\s*[0-9]+\s*=\s*([A-Za-z0-9_]*)$`)

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, _ := ls.flush(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	offset := doc.Lines.Offset(int(params.Position.Line), int(params.Position.Character))
	lineStart := doc.Lines.Offset(int(params.Position.Line), 0)
	m := completionPrefix.FindStringSubmatch(doc.Text[lineStart:offset])
	if m == nil {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range ClassCompletions(doc.Schema, m[1]) {
		kind := protocol.CompletionItemKindClass
		detail := c.Detail
		items = append(items, protocol.CompletionItem{
			Label:  c.Label,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

// Completion is a class name offered after "#id=".
type Completion struct {
	Label  string
	Detail string
}

// ClassCompletions lists the upper-cased class names starting with prefix,
// compared case insensitively.
func ClassCompletions(snap *SchemaSnapshot, prefix string) []Completion {
	prefix = strings.ToUpper(prefix)
	var out []Completion
	for _, name := range snap.Hierarchy.Names() {
		label := strings.ToUpper(name)
		if !strings.HasPrefix(label, prefix) {
			continue
		}
		detail := name
		if parent := snap.Hierarchy.Parent(name); parent != "" {
			detail = name + " < " + parent
		}
		out = append(out, Completion{Label: label, Detail: detail})
	}
	return out
}

func (ls *LSPServer) publishDiagnostics(doc *Document) {
	threshold := float32(ls.workspace.Config().SuggestThreshold)
	diags := []protocol.Diagnostic{}
	for _, d := range doc.Diagnostics(threshold) {
		severity := protocol.DiagnosticSeverityWarning
		if d.Severity == SeverityError {
			severity = protocol.DiagnosticSeverityError
		}
		source := lsName
		diags = append(diags, protocol.Diagnostic{
			Range:    toRange(doc.Lines, d.Start, d.End),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	ls.sendDiagnostics(pathToURI(doc.Path), diags)
}

func (ls *LSPServer) sendDiagnostics(uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	if ls.notify == nil {
		return
	}
	ls.notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func toRange(lines *LineIndex, start, end int) protocol.Range {
	sl, sc := lines.Position(start)
	el, ec := lines.Position(end)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(sl), Character: protocol.UInteger(sc)},
		End:   protocol.Position{Line: protocol.UInteger(el), Character: protocol.UInteger(ec)},
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
