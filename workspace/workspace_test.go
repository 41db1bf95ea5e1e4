package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/express"
)

func TestUpdateFileCounts(t *testing.T) {
	w := newTestWorkspace(t)
	doc := w.UpdateFile("a.gfc", []byte(testDoc))

	assert.Equal(t, census.Stats{Instances: 4, Mapped: 2, Unknown: 1}, doc.Stats())
	assert.Equal(t, 2, doc.Census.DirectCount("Wall"))
	assert.Equal(t, 3, doc.Census.InclusiveCount("Wall"))
	assert.Equal(t, 3, doc.Census.InclusiveCount("Element"))
	assert.Equal(t, 1, doc.Version)
	assert.Same(t, doc, w.GetFile("a.gfc"))
}

func TestUpdateFileUnchangedTextKeepsDocument(t *testing.T) {
	w := newTestWorkspace(t)
	first := w.UpdateFile("a.gfc", []byte(testDoc))
	second := w.UpdateFile("a.gfc", []byte(testDoc))
	assert.Same(t, first, second)

	third := w.UpdateFile("a.gfc", []byte(testDoc+"#5=ELEMENT();\n"))
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, third.Version)
	assert.Equal(t, 5, third.Stats().Instances)
}

func TestSetSchemaRecountsOpenDocuments(t *testing.T) {
	w := New(t.TempDir(), nil)
	assert.False(t, w.Schema().Loaded())

	doc := w.UpdateFile("a.gfc", []byte(testDoc))
	assert.Equal(t, census.Stats{Instances: 4, Mapped: 0, Unknown: 4}, doc.Stats())

	var mu sync.Mutex
	var recounted []string
	w.OnRecount(func(d *Document) {
		mu.Lock()
		defer mu.Unlock()
		recounted = append(recounted, d.Path)
	})

	w.SetSchema("test.exp", express.ParseString(testSchema))
	doc = w.GetFile("a.gfc")
	assert.Equal(t, census.Stats{Instances: 4, Mapped: 2, Unknown: 1}, doc.Stats())
	assert.Same(t, w.Schema(), doc.Schema)
	assert.Equal(t, []string{"a.gfc"}, recounted)
}

func TestLoadSchemaKeepsPreviousOnError(t *testing.T) {
	w := newTestWorkspace(t)
	before := w.Schema()

	err := w.LoadSchema(filepath.Join(t.TempDir(), "missing.exp"))
	require.Error(t, err)
	var loadErr *express.LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.Same(t, before, w.Schema())
}

func TestLoadSchemaFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GFC3X.exp")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o644))

	w := New(t.TempDir(), nil)
	require.NoError(t, w.LoadSchema(path))
	assert.Equal(t, path, w.Schema().Path)
	assert.Equal(t, 3, w.Schema().Schema.Len())
}

func TestScanFileAndRemove(t *testing.T) {
	w := newTestWorkspace(t)
	path := filepath.Join(t.TempDir(), "a.gfc")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))

	doc, err := w.ScanFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Stats().Instances)
	assert.Len(t, w.Files(), 1)

	w.RemoveFile(path)
	assert.Nil(t, w.GetFile(path))
	assert.Empty(t, w.Files())

	_, err = w.ScanFile(filepath.Join(t.TempDir(), "missing.gfc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilesSortedByPath(t *testing.T) {
	w := newTestWorkspace(t)
	for _, p := range []string{"c.gfc", "a.gfc", "b.gfc"} {
		w.UpdateFile(p, []byte("#1=WALL();"))
	}
	var paths []string
	for _, doc := range w.Files() {
		paths = append(paths, doc.Path)
	}
	assert.Equal(t, []string{"a.gfc", "b.gfc", "c.gfc"}, paths)
}

func TestConcurrentUpdates(t *testing.T) {
	w := newTestWorkspace(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				w.UpdateFile("a.gfc", []byte(testDoc))
				_ = w.GetFile("a.gfc").Stats()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, w.GetFile("a.gfc").Stats().Instances)
}
