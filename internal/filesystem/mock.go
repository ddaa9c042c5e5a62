package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// maxLinkHops bounds symlink resolution, like the kernel's ELOOP limit.
const maxLinkHops = 40

var errTooManyLinks = errors.New("too many levels of symbolic links")

// MockFile is a single entry of the in-memory tree. Symlinks carry their
// target in Target.
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
	Target  string
}

func (f *MockFile) isLink() bool {
	return f.Mode&fs.ModeSymlink != 0
}

// MockFileSystem is an in-memory FileSystem for tests. Paths are cleaned
// absolute paths; symlinks are followed the way the OS follows them.
type MockFileSystem struct {
	mu         sync.RWMutex
	files      map[string]*MockFile
	currentDir string
}

// NewMockFileSystem creates an empty tree with /workspace as working
// directory.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:      make(map[string]*MockFile),
		currentDir: "/workspace",
	}
}

type entryInfo struct {
	name string
	file *MockFile
}

func (i *entryInfo) Name() string       { return i.name }
func (i *entryInfo) Size() int64        { return int64(len(i.file.Content)) }
func (i *entryInfo) Mode() fs.FileMode  { return i.file.Mode }
func (i *entryInfo) ModTime() time.Time { return i.file.ModTime }
func (i *entryInfo) IsDir() bool        { return i.file.IsDir }
func (i *entryInfo) Sys() interface{}   { return nil }

func infoFor(path string, f *MockFile) *entryInfo {
	return &entryInfo{name: filepath.Base(path), file: f}
}

// AddFile adds a regular file, creating missing parent directories.
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = filepath.Clean(path)
	mfs.mkdirs(filepath.Dir(path), 0755)
	mfs.files[path] = &MockFile{Content: content, Mode: 0644, ModTime: time.Now()}
}

// AddDir adds a directory and its missing parents.
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mkdirs(filepath.Clean(path), 0755)
}

// AddSymlink adds a symbolic link at path pointing to target. A relative
// target is read relative to the link's directory.
func (mfs *MockFileSystem) AddSymlink(path, target string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = filepath.Clean(path)
	mfs.mkdirs(filepath.Dir(path), 0755)
	mfs.files[path] = &MockFile{Mode: 0777 | fs.ModeSymlink, ModTime: time.Now(), Target: target}
}

// mkdirs creates every missing directory down to path. Callers hold mu.
func (mfs *MockFileSystem) mkdirs(path string, perm fs.FileMode) {
	for dir := path; dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		if _, ok := mfs.files[dir]; ok {
			return
		}
		mfs.files[dir] = &MockFile{Mode: perm | fs.ModeDir, ModTime: time.Now(), IsDir: true}
	}
}

// resolve rewrites path so that no component is a symlink. The last
// component is left alone unless followLast is set.
func (mfs *MockFileSystem) resolve(path string, followLast bool) (string, error) {
	path = filepath.Clean(path)

	for hops := 0; ; hops++ {
		if hops > maxLinkHops {
			return "", errTooManyLinks
		}

		link, rest, ok := mfs.firstLink(path, followLast)
		if !ok {
			return path, nil
		}

		target := mfs.files[link].Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(link), target)
		}
		path = filepath.Join(target, rest)
	}
}

// firstLink finds the shallowest symlink on path and the remainder below it.
func (mfs *MockFileSystem) firstLink(path string, followLast bool) (string, string, bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	cur := "/"
	for i, part := range parts {
		cur = filepath.Join(cur, part)
		if i == len(parts)-1 && !followLast {
			break
		}
		if f, ok := mfs.files[cur]; ok && f.isLink() {
			return cur, filepath.Join(parts[i+1:]...), true
		}
	}
	return "", "", false
}

// lookup returns the entry at path, following symlinks as requested.
func (mfs *MockFileSystem) lookup(op, path string, followLast bool) (string, *MockFile, error) {
	resolved, err := mfs.resolve(path, followLast)
	if err != nil {
		return "", nil, &fs.PathError{Op: op, Path: path, Err: err}
	}
	f, ok := mfs.files[resolved]
	if !ok {
		return "", nil, &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	return resolved, f, nil
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, f, err := mfs.lookup("open", path, true)
	if err != nil {
		return nil, err
	}
	if f.IsDir {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}
	return f.Content, nil
}

// WriteFile fails unless the parent directory exists, like os.WriteFile.
func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	parent, dir, err := mfs.lookup("open", filepath.Dir(filepath.Clean(path)), true)
	if err != nil {
		return err
	}
	if !dir.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("not a directory")}
	}

	mfs.files[filepath.Join(parent, filepath.Base(path))] = &MockFile{Content: data, Mode: perm, ModTime: time.Now()}
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	resolved, _, err := mfs.lookup("remove", path, false)
	if err != nil {
		return err
	}
	delete(mfs.files, resolved)
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	dir, f, err := mfs.lookup("open", path, true)
	if err != nil {
		return nil, err
	}
	if !f.IsDir {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: errors.New("not a directory")}
	}

	var entries []fs.DirEntry
	for p, child := range mfs.files {
		if p != dir && filepath.Dir(p) == dir {
			entries = append(entries, fs.FileInfoToDirEntry(infoFor(p, child)))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	resolved, err := mfs.resolve(path, true)
	if err != nil {
		return &fs.PathError{Op: "mkdir", Path: path, Err: err}
	}
	for dir := resolved; dir != "/"; dir = filepath.Dir(dir) {
		if f, ok := mfs.files[dir]; ok && !f.IsDir {
			return &fs.PathError{Op: "mkdir", Path: dir, Err: errors.New("not a directory")}
		}
	}
	mfs.mkdirs(resolved, perm)
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, f, err := mfs.lookup("stat", path, true)
	if err != nil {
		return nil, err
	}
	return infoFor(path, f), nil
}

// Lstat reports a symlink itself rather than its target.
func (mfs *MockFileSystem) Lstat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, f, err := mfs.lookup("lstat", path, false)
	if err != nil {
		return nil, err
	}
	return infoFor(path, f), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, err := mfs.Stat(path)
	return err == nil
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	return mfs.currentDir, nil
}

// WalkDir visits root and everything below it in lexical order. Symlinks
// below root are reported but not descended into, as filepath.WalkDir does.
func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	mfs.mu.RLock()
	resolved, _, err := mfs.lookup("lstat", root, true)
	if err != nil {
		mfs.mu.RUnlock()
		return fn(root, nil, err)
	}

	var rels []string
	children := make(map[string]*MockFile)
	for p, f := range mfs.files {
		if rel, ok := below(resolved, p); ok {
			rels = append(rels, rel)
			children[rel] = f
		}
	}
	mfs.mu.RUnlock()
	sort.Strings(rels)

	var skipped []string
	for _, rel := range rels {
		if under(rel, skipped) {
			continue
		}

		path := filepath.Join(root, rel)
		f := children[rel]
		if err := fn(path, fs.FileInfoToDirEntry(infoFor(path, f)), nil); err != nil {
			switch {
			case errors.Is(err, filepath.SkipDir) && f.IsDir:
				skipped = append(skipped, rel)
			case errors.Is(err, filepath.SkipDir), errors.Is(err, filepath.SkipAll):
				return nil
			default:
				return err
			}
		}
	}
	return nil
}

// below returns p relative to root when p is root or inside it.
func below(root, p string) (string, bool) {
	if p == root {
		return ".", true
	}
	prefix := root
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return strings.TrimPrefix(p, prefix), true
}

func under(rel string, skipped []string) bool {
	for _, s := range skipped {
		if s == "." || strings.HasPrefix(rel, s+"/") {
			return true
		}
	}
	return false
}

// Glob matches pattern against the paths below root and returns them
// relative to root. root itself is never read as a pattern.
func (mfs *MockFileSystem) Glob(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolve(root, true)
	if err != nil {
		return nil, &fs.PathError{Op: "glob", Path: root, Err: err}
	}

	var matches []string
	for p := range mfs.files {
		rel, ok := below(resolved, p)
		if !ok || rel == "." {
			continue
		}
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, rel)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// SetCurrentDir sets the current working directory for the mock
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.currentDir = dir
}
