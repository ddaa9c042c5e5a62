package entity

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/jakoblorz/go-panda/internal/models"
)

// View is the definition of HTML views. Views owned by a package are
// named "<package>:<relpath>".
type View struct {
	n *normalizer
}

func (d *View) Kind() models.Kind            { return models.KindView }
func (d *View) Builtins() map[string]Builtin { return map[string]Builtin{} }
func (d *View) FilePattern() string          { return "**/*.html" }

func (d *View) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	return d.n.normalize(d, frag, owner)
}

func (d *View) finish(rec *models.Record, concrete string, owner *models.Record) error {
	if rec.RelPath == "" {
		rec.RelPath = filepath.Base(rec.SourcePath)
	}

	view := strings.TrimSuffix(rec.RelPath, ".html")
	if owner != nil {
		view = owner.Package + ":" + view
	}
	rec.View = view

	data, err := d.n.env.FS.ReadFile(concrete)
	if err != nil {
		return &ResolutionError{Kind: d.Kind(), Path: concrete, Err: err}
	}

	var matter map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(data), &matter); err != nil {
		return &ResolutionError{Kind: d.Kind(), Path: concrete, Err: fmt.Errorf("failed to parse front matter: %w", err)}
	}
	rec.Config = mergeConfig(rec.Config, matter)

	return nil
}

func (d *View) defaultName(rec *models.Record, _ *models.Record) string {
	return rec.View
}
