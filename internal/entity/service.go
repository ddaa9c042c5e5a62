package entity

import (
	"maps"

	"github.com/jakoblorz/go-panda/internal/models"
)

var serviceBuiltins = map[string]Builtin{
	"project":   {Name: "project", Base: "{PANDA_PATH}", Path: "base/services/project.service.js"},
	"component": {Name: "component", Base: "{PANDA_PATH}", Path: "base/services/component.service.js"},
}

// CoreServices are merged ahead of the project's services when a build
// includes the framework's own services.
var CoreServices = []string{"project", "component"}

// Service is the definition of long running services.
type Service struct {
	n *normalizer
}

func (d *Service) Kind() models.Kind            { return models.KindService }
func (d *Service) Builtins() map[string]Builtin { return maps.Clone(serviceBuiltins) }
func (d *Service) FilePattern() string          { return "**/*.service.js" }

func (d *Service) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	return d.n.normalize(d, frag, owner)
}

func (d *Service) finish(*models.Record, string, *models.Record) error { return nil }

func (d *Service) defaultName(rec *models.Record, _ *models.Record) string {
	return trimName(rec.SourcePath, ".js", ".service")
}
