package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/jakoblorz/go-panda/internal/entity"
	"github.com/jakoblorz/go-panda/internal/models"
)

// Result holds the two manifests produced together by a build.
type Result struct {
	Rollup     *models.Manifest
	Shrinkwrap *models.Manifest

	// CoreServices is set when the framework's core services were merged
	CoreServices bool
}

// Build loads the project descriptor, rolls it up and shrinkwraps it.
func (b *Builder) Build() (*Result, error) {
	pm, err := b.Load()
	if err != nil {
		return nil, err
	}

	rolled, err := b.Rollup(pm, nil)
	if err != nil {
		return nil, err
	}

	if b.includeCore {
		if rolled, err = b.withCoreServices(rolled); err != nil {
			return nil, err
		}
	}

	b.logger.Debug("built project manifest", "records", rolled.Len())
	return &Result{
		Rollup:       rolled,
		Shrinkwrap:   Shrinkwrap(rolled),
		CoreServices: b.includeCore,
	}, nil
}

// withCoreServices returns a copy of rolled with the framework's core
// services ahead of the project's own.
func (b *Builder) withCoreServices(rolled *models.Manifest) (*models.Manifest, error) {
	out := models.NewManifest(models.StageRollup)

	for _, name := range entity.CoreServices {
		raw, _ := json.Marshal(name)
		recs, err := b.registry.Normalize(models.KindService, raw, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to add core service %s: %w", name, err)
		}
		out.Add(models.KindService, recs...)
	}

	for _, kind := range rolled.Kinds() {
		out.Ensure(kind)
		for _, rec := range rolled.Records(kind) {
			out.Add(kind, rec.Clone())
		}
	}
	return out, nil
}
