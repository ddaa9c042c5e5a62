package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gopkg.in/yaml.v3"
)

const buildIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CacheFile is the persisted form of a build. Live manifests are never
// cached because their paths depend on the machine.
type CacheFile struct {
	BuildID      string           `json:"buildId" yaml:"buildId"`
	CreatedAt    time.Time        `json:"createdAt" yaml:"createdAt"`
	CoreServices bool             `json:"coreServices" yaml:"coreServices"`
	Rollup       *models.Manifest `json:"rollup" yaml:"rollup"`
	Shrinkwrap   *models.Manifest `json:"shrinkwrap" yaml:"shrinkwrap"`
}

// Result returns the cached manifests.
func (c *CacheFile) Result() *Result {
	return &Result{Rollup: c.Rollup, Shrinkwrap: c.Shrinkwrap, CoreServices: c.CoreServices}
}

// Cache reads and writes a CacheFile. The format follows the file
// extension: .yaml and .yml are YAML, anything else is JSON.
type Cache struct {
	fs   filesystem.FileSystem
	path string
	now  func() time.Time
}

// NewCache creates a cache stored at path.
func NewCache(fs filesystem.FileSystem, path string) *Cache {
	return &Cache{fs: fs, path: path, now: time.Now}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Exists reports whether a cache file has been written.
func (c *Cache) Exists() bool {
	return c.fs.Exists(c.path)
}

// Save writes res with a fresh build ID.
func (c *Cache) Save(res *Result) (*CacheFile, error) {
	id, err := gonanoid.Generate(buildIDAlphabet, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate build id: %w", err)
	}

	file := &CacheFile{
		BuildID:      id,
		CreatedAt:    c.now().UTC().Truncate(time.Second),
		CoreServices: res.CoreServices,
		Rollup:       res.Rollup,
		Shrinkwrap:   res.Shrinkwrap,
	}

	data, err := c.encode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache: %w", err)
	}

	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := c.fs.WriteFile(c.path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write cache: %w", err)
	}

	return file, nil
}

// Load reads the cache file.
func (c *Cache) Load() (*CacheFile, error) {
	data, err := c.fs.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var file CacheFile
	if c.isYAML() {
		err = yaml.Unmarshal(data, &file)
	} else {
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache %s: %w", c.path, err)
	}

	if file.Rollup == nil || file.Shrinkwrap == nil {
		return nil, fmt.Errorf("cache %s is incomplete", c.path)
	}
	file.Rollup.Stage = models.StageRollup
	file.Shrinkwrap.Stage = models.StageShrinkwrap

	return &file, nil
}

func (c *Cache) encode(file *CacheFile) ([]byte, error) {
	if c.isYAML() {
		return yaml.Marshal(file)
	}
	return json.MarshalIndent(file, "", "  ")
}

func (c *Cache) isYAML() bool {
	switch filepath.Ext(c.path) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
