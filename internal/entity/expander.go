package entity

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/go-panda/internal/filesystem"
)

// IgnoreFile is read from the root of every expanded directory.
const IgnoreFile = ".pandaignore"

// Expander lists the files of a directory matching a pattern. Results are
// cached per directory and pattern for the lifetime of the Expander.
type Expander struct {
	fs filesystem.FileSystem

	mu    sync.Mutex
	cache map[string][]string
}

// NewExpander creates an Expander over fs.
func NewExpander(fs filesystem.FileSystem) *Expander {
	return &Expander{
		fs:    fs,
		cache: make(map[string][]string),
	}
}

// Files returns paths relative to dir, slash separated and sorted, of
// every regular file under dir matching pattern that .pandaignore does
// not exclude.
func (e *Expander) Files(dir, pattern string) ([]string, error) {
	dir = filepath.Clean(dir)
	key := dir + "\x00" + pattern

	e.mu.Lock()
	cached, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		return append([]string(nil), cached...), nil
	}

	files, err := e.scan(dir, pattern)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[key] = files
	e.mu.Unlock()

	return append([]string(nil), files...), nil
}

// Len returns the number of cached listings.
func (e *Expander) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

func (e *Expander) scan(dir, pattern string) ([]string, error) {
	ignore, err := e.loadIgnore(dir)
	if err != nil {
		return nil, err
	}

	matches, err := e.fs.Glob(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := e.fs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}

		if ignored(ignore, rel) {
			continue
		}
		files = append(files, rel)
	}

	sort.Strings(files)
	return files, nil
}

func (e *Expander) loadIgnore(dir string) (gitignore.GitIgnore, error) {
	path := filepath.Join(dir, IgnoreFile)
	if !e.fs.Exists(path) {
		return nil, nil
	}

	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}

	return gitignore.New(bytes.NewReader(data), dir, nil), nil
}

// ignored checks rel and each of its parent directories.
func ignored(ignore gitignore.GitIgnore, rel string) bool {
	if ignore == nil {
		return false
	}

	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if m := ignore.Relative(strings.Join(parts[:i], "/"), true); m != nil && m.Ignore() {
			return true
		}
	}
	m := ignore.Relative(rel, false)
	return m != nil && m.Ignore()
}
