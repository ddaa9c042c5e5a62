package manifest

import (
	"github.com/jakoblorz/go-panda/internal/models"
)

// Shrinkwrap flattens a rollup into one list per kind. Package contents
// come before the package record itself and carry it as their Origin.
// Records with equal names are all kept.
func Shrinkwrap(rolled *models.Manifest) *models.Manifest {
	out := models.NewManifest(models.StageShrinkwrap)
	flatten(out, rolled, nil)
	return out
}

func flatten(out, m *models.Manifest, origin *models.Record) {
	if m == nil {
		return
	}

	for _, kind := range m.Kinds() {
		out.Ensure(kind)

		for _, rec := range m.Records(kind) {
			if rec.Children != nil {
				flatten(out, rec.Children, provenance(rec))
			}

			flat := rec.WithoutChildren()
			flat.Origin = origin.Clone()
			out.Add(kind, flat)
		}
	}
}

// provenance is the origin attached to records contributed by pkg.
func provenance(pkg *models.Record) *models.Record {
	p := pkg.WithoutChildren()
	p.Origin = nil
	return p
}
