package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dhamidi/gfcedit/config"
)

// MaxRootDepth bounds how many parent directories FindProjectRoot visits.
const MaxRootDepth = 12

// RootMarkers identify a project root directory.
var RootMarkers = []string{config.KDLFile, config.TOMLFile, "resource", ".git"}

// FindProjectRoot walks up from start to the first directory containing
// one of RootMarkers.
func FindProjectRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for range MaxRootDepth + 1 {
		for _, marker := range RootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// DiscoverSchema searches root for a schema file. Patterns are tried in
// order; within a pattern the most recently modified file wins.
func DiscoverSchema(root string, patterns []string) (string, error) {
	if len(patterns) == 0 {
		patterns = config.DefaultSchemaPatterns
	}
	fsys := os.DirFS(root)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return "", fmt.Errorf("schema pattern %q: %w", pattern, err)
		}
		if path, ok := newest(fsys, matches); ok {
			return filepath.Join(root, filepath.FromSlash(path)), nil
		}
	}
	return "", fmt.Errorf("%w: nothing matches %v under %s", ErrNoSchema, patterns, root)
}

func newest(fsys fs.FS, paths []string) (string, bool) {
	type candidate struct {
		path string
		mod  time.Time
	}
	var found []candidate
	for _, p := range paths {
		info, err := fs.Stat(fsys, p)
		if err != nil {
			continue
		}
		found = append(found, candidate{p, info.ModTime()})
	}
	if len(found) == 0 {
		return "", false
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].mod.After(found[j].mod) })
	return found[0].path, true
}

// LocateSchema returns the configured schema path, or discovers one from
// the project root above start.
func LocateSchema(cfg *config.Config, start string) (string, error) {
	if path := cfg.SchemaPath(); path != "" {
		return path, nil
	}
	root := cfg.Root
	if found, ok := FindProjectRoot(start); ok {
		root = found
	}
	if root == "" {
		root = start
	}
	return DiscoverSchema(root, cfg.SchemaPatterns)
}
