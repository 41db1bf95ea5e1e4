package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reports changes to individual files. It watches their
// parent directories so that editors replacing a file by rename are seen
// too. Callbacks are debounced per file.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	mu    sync.Mutex
	files map[string]func(path string)
	dirs  map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFileWatcher(delay time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(delay),
		files:     make(map[string]func(string)),
		dirs:      make(map[string]bool),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Watch calls onChange whenever path is written, created or renamed into
// place.
func (fw *FileWatcher) Watch(path string, onChange func(path string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.dirs[dir] {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		fw.dirs[dir] = true
	}
	fw.files[abs] = onChange
	log.Debugf("watching %s", abs)
	return nil
}

func (fw *FileWatcher) Start() {
	fw.wg.Add(1)
	go fw.run()
}

// Stop ends event processing and cancels pending callbacks.
func (fw *FileWatcher) Stop() error {
	fw.cancel()
	err := fw.watcher.Close()
	fw.wg.Wait()
	fw.debouncer.Stop()
	return err
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()
	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("file watcher: %s", err)
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)

	fw.mu.Lock()
	onChange := fw.files[path]
	fw.mu.Unlock()
	if onChange == nil {
		return
	}
	fw.debouncer.Trigger(path, func() { onChange(path) })
}

// WatchSchema reloads the schema whenever its file changes.
func (w *Workspace) WatchSchema(fw *FileWatcher) error {
	path := w.Schema().Path
	if path == "" {
		return ErrNoSchema
	}
	return fw.Watch(path, func(path string) {
		if err := w.LoadSchema(path); err == nil {
			log.Infof("reloaded schema %s", path)
		}
	})
}
