// Package workspace holds the schema and the open GFC documents of an
// editing session and recomputes their derived views wholesale on change.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/config"
	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/gfc"
)

var log = commonlog.GetLogger("gfc.workspace")

var (
	ErrNoSchema   = errors.New("no schema loaded")
	ErrNoDocument = errors.New("document not open")
)

// SchemaSnapshot is one loaded schema and its hierarchy index. Snapshots
// are never modified; a reload swaps in a new one.
type SchemaSnapshot struct {
	Path      string
	Schema    *express.Schema
	Hierarchy *express.Hierarchy
	LoadedAt  time.Time
}

// Loaded reports whether the snapshot holds a schema.
func (s *SchemaSnapshot) Loaded() bool {
	return s.Schema != nil
}

var emptySchema = &SchemaSnapshot{Hierarchy: express.NewHierarchy(nil)}

// Document is an immutable view of one data text: the scan, the counts
// against the schema it was counted with, and a line index.
type Document struct {
	Path    string
	Text    string
	Hash    uint64
	Version int
	Refs    []gfc.InstanceRef
	Census  *census.Census
	Lines   *LineIndex
	Schema  *SchemaSnapshot
}

// Stats returns the aggregate counts of the last recount.
func (d *Document) Stats() census.Stats {
	return d.Census.Stats
}

// Tree renders the class tree of the document.
func (d *Document) Tree(hideEmpty bool) []*census.Node {
	return d.Census.Tree(d.Schema.Hierarchy, census.TreeOptions{HideEmpty: hideEmpty})
}

// Workspace is safe for concurrent use. Readers always see a complete
// Document or SchemaSnapshot, never a partial update.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	config  *config.Config
	schema  atomic.Pointer[SchemaSnapshot]
	files   map[string]*Document

	hookMu    sync.RWMutex
	onRecount []func(*Document)
}

// New creates an empty workspace. A nil cfg uses config.Default.
func New(rootDir string, cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default(rootDir)
	}
	w := &Workspace{
		rootDir: rootDir,
		config:  cfg,
		files:   make(map[string]*Document),
	}
	w.schema.Store(emptySchema)
	return w
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Config() *config.Config {
	return w.config
}

// Schema returns the current schema snapshot. It is never nil.
func (w *Workspace) Schema() *SchemaSnapshot {
	return w.schema.Load()
}

// OnRecount registers fn to be called with every document produced by a
// reparse or a schema change. Hooks run outside the workspace lock.
func (w *Workspace) OnRecount(fn func(*Document)) {
	w.hookMu.Lock()
	defer w.hookMu.Unlock()
	w.onRecount = append(w.onRecount, fn)
}

func (w *Workspace) notify(docs ...*Document) {
	w.hookMu.RLock()
	hooks := w.onRecount
	w.hookMu.RUnlock()
	for _, doc := range docs {
		for _, fn := range hooks {
			fn(doc)
		}
	}
}

// LoadSchema parses the schema at path and makes it current. If the file
// cannot be read the previous schema stays in place.
func (w *Workspace) LoadSchema(path string) error {
	s, err := express.ParseFile(path)
	if err != nil {
		log.Errorf("%s", err)
		return err
	}
	w.SetSchema(path, s)
	return nil
}

// SetSchema installs an already parsed schema and recounts every open
// document against it.
func (w *Workspace) SetSchema(path string, s *express.Schema) {
	snap := &SchemaSnapshot{
		Path:      path,
		Schema:    s,
		Hierarchy: express.NewHierarchy(s),
		LoadedAt:  time.Now(),
	}
	for _, name := range s.Malformed {
		log.Warningf("schema %s: entity %s has no END_ENTITY, dropped", path, name)
	}
	log.Infof("loaded schema %s: %d classes", path, s.Len())

	w.mu.Lock()
	w.schema.Store(snap)
	docs := make([]*Document, 0, len(w.files))
	for path, old := range w.files {
		doc := w.countLocked(path, old.Text, old.Hash, old.Version, old.Refs)
		docs = append(docs, doc)
	}
	w.mu.Unlock()

	w.notify(docs...)
}

// UpdateFile replaces the text of a document and recounts it. Identical
// text against the same schema returns the existing document unchanged.
func (w *Workspace) UpdateFile(path string, content []byte) *Document {
	text := string(content)
	hash := xxhash.Sum64String(text)

	w.mu.Lock()
	old := w.files[path]
	if old != nil && old.Hash == hash && old.Text == text && old.Schema == w.schema.Load() {
		w.mu.Unlock()
		return old
	}
	version := 1
	if old != nil {
		version = old.Version + 1
	}
	doc := w.countLocked(path, text, hash, version, gfc.Scan(text))
	w.mu.Unlock()

	log.Debugf("reparsed %s: %d instances, %d classes, %d unknown",
		path, doc.Census.Stats.Instances, doc.Census.Stats.Mapped, doc.Census.Stats.Unknown)
	w.notify(doc)
	return doc
}

func (w *Workspace) countLocked(path, text string, hash uint64, version int, refs []gfc.InstanceRef) *Document {
	snap := w.schema.Load()
	doc := &Document{
		Path:    path,
		Text:    text,
		Hash:    hash,
		Version: version,
		Refs:    refs,
		Census:  census.Count(refs, snap.Hierarchy),
		Lines:   NewLineIndex(text),
		Schema:  snap,
	}
	w.files[path] = doc
	return doc
}

// ScanFile reads path from disk and updates the document.
func (w *Workspace) ScanFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return w.UpdateFile(path, content), nil
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

// GetFile returns the current document for path, or nil.
func (w *Workspace) GetFile(path string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Files returns every open document sorted by path.
func (w *Workspace) Files() []*Document {
	w.mu.RLock()
	docs := make([]*Document, 0, len(w.files))
	for _, doc := range w.files {
		docs = append(docs, doc)
	}
	w.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs
}

func (w *Workspace) document(path string) (*Document, error) {
	doc := w.GetFile(path)
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, path)
	}
	return doc, nil
}
