package entity

import (
	"github.com/jakoblorz/go-panda/internal/models"
)

// Static is a public directory served as is. Its path must exist, but it
// is never expanded into files.
type Static struct {
	n *normalizer
}

func (d *Static) Kind() models.Kind            { return models.KindStatic }
func (d *Static) Builtins() map[string]Builtin { return map[string]Builtin{} }
func (d *Static) FilePattern() string          { return "" }

func (d *Static) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	rec, err := d.n.record(d, frag, owner)
	if err != nil {
		return nil, err
	}

	if !rec.Core {
		if _, _, err := d.n.probe(d.Kind(), rec.SourcePath); err != nil {
			return nil, err
		}
	}

	d.n.name(d, rec, owner)
	return []*models.Record{rec}, nil
}

func (d *Static) finish(*models.Record, string, *models.Record) error { return nil }

func (d *Static) defaultName(rec *models.Record, _ *models.Record) string {
	return trimName(rec.SourcePath)
}
