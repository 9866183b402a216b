// Package watcher watches document and bibliography files for changes,
// debouncing rapid bursts (editors typically write several events per
// save) into a single batch.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one debounced file change.
type Event struct {
	Path    string
	Op      fsnotify.Op
	ModTime time.Time
}

// Handler receives a debounced batch of changes.
type Handler func(events []Event)

// Filter reports whether a path is interesting.
type Filter func(path string) bool

// DocumentFilter accepts the file types a document can depend on.
func DocumentFilter(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".yaml", ".yml", ".bib", ".css":
		return true
	}
	return false
}

// FileWatcher wraps fsnotify with filtering and debouncing.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	filter   Filter
	handler  Handler

	mutex   sync.Mutex
	pending []Event
	timer   *time.Timer
}

// New creates a watcher; handler receives batches after debounce of quiet.
func New(debounce time.Duration, filter Filter, handler Handler) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		watcher:  w,
		debounce: debounce,
		filter:   filter,
		handler:  handler,
	}, nil
}

// Add watches a file or directory (non-recursive).
func (fw *FileWatcher) Add(path string) error {
	return fw.watcher.Add(path)
}

// Start processes events until ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			fw.flushNow()
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.filter != nil && !fw.filter(ev.Name) {
				continue
			}
			fw.enqueue(ev)
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient (e.g. a file briefly vanishing
			// during an atomic save); the next event catches up.
		}
	}
}

// Close stops the underlying watcher.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

func (fw *FileWatcher) enqueue(ev fsnotify.Event) {
	modTime := time.Now()
	if info, err := os.Stat(ev.Name); err == nil {
		modTime = info.ModTime()
	}

	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.pending = append(fw.pending, Event{Path: ev.Name, Op: ev.Op, ModTime: modTime})
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.flushNow)
}

func (fw *FileWatcher) flushNow() {
	fw.mutex.Lock()
	batch := fw.pending
	fw.pending = nil
	fw.mutex.Unlock()

	if len(batch) > 0 && fw.handler != nil {
		fw.handler(dedupe(batch))
	}
}

// dedupe keeps the last event per path, preserving first-seen order.
func dedupe(events []Event) []Event {
	last := make(map[string]Event, len(events))
	order := make([]string, 0, len(events))
	for _, ev := range events {
		if _, seen := last[ev.Path]; !seen {
			order = append(order, ev.Path)
		}
		last[ev.Path] = ev
	}
	out := make([]Event, 0, len(order))
	for _, p := range order {
		out = append(out, last[p])
	}
	return out
}
