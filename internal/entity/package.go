package entity

import (
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
)

// Package is an installed add-on package. Its sub-manifest is loaded by the
// rollup builder, not here.
type Package struct {
	n *normalizer
}

func (d *Package) Kind() models.Kind            { return models.KindPackage }
func (d *Package) Builtins() map[string]Builtin { return map[string]Builtin{} }
func (d *Package) FilePattern() string          { return "" }

func (d *Package) Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	// A bare package name is not a path.
	if frag.Shape == models.ShapePath && isPackageName(frag.Path) {
		frag.Package, frag.Path = frag.Path, ""
	}

	rec, err := d.n.record(d, frag, owner)
	if err != nil {
		return nil, err
	}

	rec.Package = frag.Package
	if rec.Package == "" {
		if rec.SourcePath == "" {
			return nil, configErr(d.Kind(), frag, "missing package name")
		}
		rec.Package = filepath.Base(rec.SourcePath)
	}

	if rec.SourcePath == "" {
		rec.SourcePath = DefaultPackagePath(rec.Package)
	}

	d.n.name(d, rec, owner)
	return []*models.Record{rec}, nil
}

func (d *Package) finish(*models.Record, string, *models.Record) error { return nil }

func (d *Package) defaultName(rec *models.Record, _ *models.Record) string {
	return rec.Package
}

// DefaultPackagePath is where an installed package is looked up.
func DefaultPackagePath(pkg string) string {
	return filepath.Join("{"+pathctx.PackagesPath+"}", pkg)
}

func isPackageName(s string) bool {
	if strings.HasPrefix(s, "@") {
		return strings.Count(s, "/") == 1 && !strings.Contains(s, "{")
	}
	return !strings.ContainsAny(s, "/{") && !strings.HasPrefix(s, ".")
}
