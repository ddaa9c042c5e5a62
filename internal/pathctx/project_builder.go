package pathctx

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-panda/internal/filesystem"
)

// ProjectBuilder helps create test projects
type ProjectBuilder struct {
	fs   *filesystem.MockFileSystem
	root string
}

// NewProjectBuilder creates a project rooted at root with a package.json
// named after the directory.
func NewProjectBuilder(root string) *ProjectBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.AddDir(filepath.Join(root, "node_modules"))
	fs.SetCurrentDir(root)

	pb := &ProjectBuilder{fs: fs, root: root}
	pb.fs.AddFile(filepath.Join(root, "package.json"), packageJSON(filepath.Base(root), "1.0.0", ""))
	return pb
}

// WithManifest writes project.json
func (pb *ProjectBuilder) WithManifest(manifest string) *ProjectBuilder {
	pb.fs.AddFile(filepath.Join(pb.root, "project.json"), []byte(manifest))
	return pb
}

// AddFile adds a file relative to the project root
func (pb *ProjectBuilder) AddFile(rel, content string) *ProjectBuilder {
	pb.fs.AddFile(filepath.Join(pb.root, rel), []byte(content))
	return pb
}

// AddDir adds a directory relative to the project root
func (pb *ProjectBuilder) AddDir(rel string) *ProjectBuilder {
	pb.fs.AddDir(filepath.Join(pb.root, rel))
	return pb
}

// AddSymlink links rel, relative to the project root, to target
func (pb *ProjectBuilder) AddSymlink(rel, target string) *ProjectBuilder {
	pb.fs.AddSymlink(filepath.Join(pb.root, rel), target)
	return pb
}

// AddPackage installs a package under node_modules. An empty manifest
// writes a package.json without a panda key.
func (pb *ProjectBuilder) AddPackage(name, manifest string) *ProjectBuilder {
	dir := filepath.Join(pb.root, "node_modules", name)
	pb.fs.AddFile(filepath.Join(dir, "package.json"), packageJSON(name, "1.0.0", manifest))
	return pb
}

// AddPackageFile adds a file relative to an installed package
func (pb *ProjectBuilder) AddPackageFile(pkg, rel, content string) *ProjectBuilder {
	pb.fs.AddFile(filepath.Join(pb.root, "node_modules", pkg, rel), []byte(content))
	return pb
}

// AddLibrary writes a library descriptor at an absolute path, as used by
// PANDA_PATHS entries and the framework install.
func (pb *ProjectBuilder) AddLibrary(name, path, version string) *ProjectBuilder {
	pb.fs.AddFile(filepath.Join(path, "package.json"), packageJSON(name, version, ""))
	return pb
}

// Build returns the filesystem
func (pb *ProjectBuilder) Build() *filesystem.MockFileSystem {
	return pb.fs
}

// Root returns the project root
func (pb *ProjectBuilder) Root() string {
	return pb.root
}

func packageJSON(name, version, manifest string) []byte {
	doc := map[string]any{"name": name, "version": version}
	if manifest != "" {
		doc["panda"] = json.RawMessage(manifest)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("invalid package manifest for %s: %v", name, err))
	}
	return data
}
