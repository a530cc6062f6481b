// Package watch re-evaluates source files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"minic/pkg/compiler"
)

// Outcome is one evaluation of a watched file, delivered to the callback
// after its changes settle.
type Outcome struct {
	Path   string
	Env    compiler.Env
	Result int32
	Err    error
}

// Stats counts watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	RunsTriggered int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher monitors a source file, or every source file in a directory, and
// runs each one through the evaluator once its changes settle. Rapid saves
// are debounced so an editor writing in bursts triggers a single run.
type Watcher struct {
	mu          sync.RWMutex
	fsw         *fsnotify.Watcher
	dir         string
	file        string
	logger      *zap.Logger
	onResult    func(Outcome)
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// New prepares a watcher for target, which may be a single file or a
// directory of .c files. The parent directory is what is registered with the
// operating system: watching the file itself would break the first time an
// editor replaced it.
func New(target string, logger *zap.Logger, onResult func(Outcome)) (*Watcher, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		fsw:         fsw,
		logger:      logger,
		onResult:    onResult,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	if info.IsDir() {
		w.dir = filepath.Clean(target)
	} else {
		w.file = filepath.Clean(target)
		w.dir = filepath.Dir(w.file)
	}
	return w, nil
}

// Start registers the directory with the watcher and begins the event loop.
// It is non-blocking and safe to call twice.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fsw.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for it to finish, and releases the
// underlying watcher. Stopping a watcher that never started just releases
// it, and a second Stop is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// The ticker drains events that have settled past the debounce window.
	settle := time.NewTicker(100 * time.Millisecond)
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-settle.C:
			w.processSettled()
		}
	}
}

func (w *Watcher) matches(path string) bool {
	if w.file != "" {
		return filepath.Clean(path) == w.file
	}
	return strings.HasSuffix(path, ".c")
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()

	switch {
	case event.Op&fsnotify.Create != 0:
		w.stats.FilesCreated++
		w.debounceMap[event.Name] = time.Now()
	case event.Op&fsnotify.Write != 0:
		w.stats.FilesModified++
		w.debounceMap[event.Name] = time.Now()
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// A vanished file has nothing left to evaluate.
		w.stats.FilesDeleted++
		delete(w.debounceMap, event.Name)
	}
}

func (w *Watcher) processSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.evaluate(path)
	}
}

func (w *Watcher) evaluate(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		w.logger.Error("reading watched file", zap.String("path", path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.RunsTriggered++
	w.mu.Unlock()

	env, result, err := compiler.Run(string(src))
	w.logger.Debug("evaluated", zap.String("path", path), zap.Error(err))
	w.onResult(Outcome{Path: path, Env: env, Result: result, Err: err})
}

// RunAll evaluates the watched file, or every .c file in the watched
// directory, without waiting for a change. Callers use it for the first run
// right after Start.
func (w *Watcher) RunAll() error {
	if w.file != "" {
		w.evaluate(w.file)
		return nil
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".c") {
			continue
		}
		w.evaluate(filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// Stats returns a snapshot of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
