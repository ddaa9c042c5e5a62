package entity

import (
	"maps"

	"github.com/jakoblorz/go-panda/internal/models"
)

var appBuiltins = map[string]Builtin{
	"web": {Name: "web", Base: "{PANDA_PATH}", Path: "base/apps/web.app.js"},
	"api": {Name: "api", Base: "{PANDA_PATH}", Path: "base/apps/api.app.js"},
}

// App is the definition of application entry points.
type App struct {
	n *normalizer
}

func (d *App) Kind() models.Kind            { return models.KindApp }
func (d *App) Builtins() map[string]Builtin { return maps.Clone(appBuiltins) }
func (d *App) FilePattern() string          { return "**/*.app.js" }

func (d *App) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	return d.n.normalize(d, frag, owner)
}

func (d *App) finish(*models.Record, string, *models.Record) error { return nil }

func (d *App) defaultName(rec *models.Record, _ *models.Record) string {
	return trimName(rec.SourcePath, ".js", ".app")
}
