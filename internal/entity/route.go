package entity

import (
	"path/filepath"

	"github.com/jakoblorz/go-panda/internal/models"
)

// Route is a directory of route handlers. A directory stays a single
// record listing its files.
type Route struct {
	n *normalizer
}

func (d *Route) Kind() models.Kind            { return models.KindRoute }
func (d *Route) Builtins() map[string]Builtin { return map[string]Builtin{} }
func (d *Route) FilePattern() string          { return "**/*.js" }

func (d *Route) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	rec, err := d.n.record(d, frag, owner)
	if err != nil {
		return nil, err
	}

	if !rec.Core {
		concrete, info, err := d.n.probe(d.Kind(), rec.SourcePath)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			rels, err := d.n.files(d.Kind(), concrete, d.FilePattern())
			if err != nil {
				return nil, err
			}
			rec.Files = make([]string, 0, len(rels))
			for _, rel := range rels {
				rec.Files = append(rec.Files, filepath.Join(rec.SourcePath, filepath.FromSlash(rel)))
			}
		} else {
			rec.Files = []string{rec.SourcePath}
		}
	}

	d.n.name(d, rec, owner)
	return []*models.Record{rec}, nil
}

func (d *Route) finish(*models.Record, string, *models.Record) error { return nil }

func (d *Route) defaultName(rec *models.Record, _ *models.Record) string {
	return trimName(rec.SourcePath, ".js")
}
