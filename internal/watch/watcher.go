package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// descriptorFiles are the file names whose changes invalidate a build.
var descriptorFiles = map[string]bool{
	"project.json":   true,
	"project.yaml":   true,
	"project.yml":    true,
	"package.json":   true,
	"component.json": true,
	".pandaignore":   true,
}

// Relevant reports whether a change to path can affect the manifest.
func Relevant(path string) bool {
	return descriptorFiles[filepath.Base(path)]
}

// Config configures a Watcher.
type Config struct {
	// Roots are the directories to watch recursively: the project root and
	// every package root.
	Roots []string

	// Debounce is how long changes are collected before OnChange runs
	Debounce time.Duration

	// OnChange receives the changed descriptor paths, sorted
	OnChange func(ctx context.Context, paths []string) error

	Logger *slog.Logger
}

// Watcher triggers OnChange when descriptor files below its roots change.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// New creates a watcher. Call Run to start it.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := newWatcher(config)
	w.watcher = fsw
	return w, nil
}

func newWatcher(config Config) *Watcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce == 0 {
		config.Debounce = 200 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
	}
}

// Run watches until ctx is done or OnChange fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for _, root := range w.config.Roots {
		w.addRecursive(root)
	}
	w.logger.Debug("watching descriptors", "roots", w.config.Roots, "debounce", w.config.Debounce)

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-ticker.C:
			if err := w.flush(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !Relevant(event.Name) {
		if event.Has(fsnotify.Create) && w.watcher != nil {
			w.addRecursive(event.Name)
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("descriptor changed", "path", event.Name, "op", event.Op.String())
}

// flush hands the collected changes to OnChange.
func (w *Watcher) flush(ctx context.Context) error {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	sort.Strings(paths)
	if w.config.OnChange == nil {
		return nil
	}
	return w.config.OnChange(ctx, paths)
}

// addRecursive watches dir and its subdirectories. Hidden directories are
// skipped, as are nested node_modules below a package root.
func (w *Watcher) addRecursive(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}
