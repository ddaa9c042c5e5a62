package descriptor

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"
)

const (
	// PackageFile is the package descriptor file name
	PackageFile = "package.json"

	// ComponentFile is the component descriptor file name
	ComponentFile = "component.json"

	// FrameworkName is the package name of the framework itself
	FrameworkName = "panda"

	// manifestKey is the package.json key holding a package's manifest
	manifestKey = "panda"
)

// ProjectFiles lists project descriptor names in probing order.
var ProjectFiles = []string{"project.json", "project.yaml", "project.yml"}

// Package represents the subset of package.json the engine reads.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// Path is the file the descriptor was read from
	Path string `json:"-"`

	// PrivateLabel is panda.privateLabel
	PrivateLabel bool `json:"-"`

	// Manifest is the raw panda key, nil when absent
	Manifest json.RawMessage `json:"-"`
}

// HasManifest reports whether the package declares a panda manifest.
func (p *Package) HasManifest() bool {
	return len(p.Manifest) > 0
}

// IsFramework reports whether this is the framework's own descriptor.
func (p *Package) IsFramework() bool {
	return p.Name == FrameworkName
}

// ValidVersion reports whether Version is a semantic version.
func (p *Package) ValidVersion() bool {
	_, ok := CanonicalVersion(p.Version)
	return ok
}

// CanonicalVersion normalizes v to MAJOR.MINOR.PATCH[-PRERELEASE]. The
// leading "v" is optional, missing minor or patch parts become zero and
// build metadata is dropped.
func CanonicalVersion(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	c := semver.Canonical("v" + strings.TrimPrefix(v, "v"))
	if c == "" {
		return "", false
	}
	return strings.TrimPrefix(c, "v"), true
}

// ReadPackage reads <dir>/package.json.
func ReadPackage(fs filesystem.FileSystem, dir string) (*Package, error) {
	path := filepath.Join(dir, PackageFile)
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParsePackage(path, data)
}

// ParsePackage parses package.json content.
func ParsePackage(path string, data []byte) (*Package, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", path)
	}

	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	pkg.Path = path

	if m := gjson.GetBytes(data, manifestKey); m.Exists() && m.IsObject() {
		pkg.Manifest = json.RawMessage(m.Raw)
		pkg.PrivateLabel = gjson.GetBytes(data, manifestKey+".privateLabel").Bool()
	}

	return &pkg, nil
}

// SubManifest parses the panda key of the package as a project manifest.
func (p *Package) SubManifest() (*models.ProjectManifest, error) {
	if !p.HasManifest() {
		return &models.ProjectManifest{}, nil
	}

	pm, err := models.ParseProjectManifest(p.Manifest)
	if err != nil {
		return nil, fmt.Errorf("invalid %s key in %s: %w", manifestKey, p.Path, err)
	}
	return pm, nil
}

// FindProject returns the first project descriptor present in dir.
func FindProject(fs filesystem.FileSystem, dir string) (string, bool) {
	for _, name := range ProjectFiles {
		path := filepath.Join(dir, name)
		if fs.Exists(path) {
			return path, true
		}
	}
	return "", false
}

// ReadProject reads the project descriptor found in dir.
func ReadProject(fs filesystem.FileSystem, dir string) (*models.ProjectManifest, string, error) {
	path, ok := FindProject(fs, dir)
	if !ok {
		return nil, "", fmt.Errorf("no project descriptor (%s) found in %s", strings.Join(ProjectFiles, ", "), dir)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pm *models.ProjectManifest
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		pm, err = models.ParseProjectManifestYAML(data)
	default:
		pm, err = models.ParseProjectManifest(data)
	}
	if err != nil {
		return nil, path, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return pm, path, nil
}

// Component is a parsed component.json.
type Component struct {
	Name      string
	Namespace string
	Config    map[string]any
}

// ReadComponent reads and parses a component descriptor file.
func ReadComponent(fs filesystem.FileSystem, path string) (*Component, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cmp := &Component{Config: config}
	cmp.Name, _ = config["name"].(string)
	cmp.Namespace, _ = config["namespace"].(string)
	return cmp, nil
}
