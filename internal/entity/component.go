package entity

import (
	"path/filepath"

	"github.com/jakoblorz/go-panda/internal/descriptor"
	"github.com/jakoblorz/go-panda/internal/models"
)

// Component is a front-end component described by a component.json.
type Component struct {
	n *normalizer
}

func (d *Component) Kind() models.Kind            { return models.KindComponent }
func (d *Component) Builtins() map[string]Builtin { return map[string]Builtin{} }
func (d *Component) FilePattern() string          { return "**/" + descriptor.ComponentFile }

func (d *Component) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	return d.n.normalize(d, frag, owner)
}

func (d *Component) finish(rec *models.Record, concrete string, _ *models.Record) error {
	if filepath.Base(concrete) != descriptor.ComponentFile {
		return &ConfigurationError{
			Kind:     d.Kind(),
			Fragment: rec.SourcePath,
			Reason:   "path must be a directory or a " + descriptor.ComponentFile,
		}
	}

	cmp, err := descriptor.ReadComponent(d.n.env.FS, concrete)
	if err != nil {
		return &ResolutionError{Kind: d.Kind(), Path: concrete, Err: err}
	}

	// Fields set on the fragment win over the descriptor.
	if rec.Name == "" {
		rec.Name = cmp.Name
	}
	if rec.Namespace == "" {
		rec.Namespace = cmp.Namespace
	}
	rec.Config = mergeConfig(rec.Config, cmp.Config)
	return nil
}

// defaultName falls back to the directory holding the descriptor.
func (d *Component) defaultName(rec *models.Record, _ *models.Record) string {
	return filepath.Base(filepath.Dir(rec.SourcePath))
}
