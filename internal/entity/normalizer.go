package entity

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/jakoblorz/go-panda/internal/templater"
)

// policy is a Definition whose records go through the shared normalizer.
type policy interface {
	Definition

	// finish completes a record that points at a single file.
	finish(rec *models.Record, concrete string, owner *models.Record) error

	// defaultName names a record that has no explicit name.
	defaultName(rec *models.Record, owner *models.Record) string
}

type normalizer struct {
	env Environment
}

// normalize runs the shared steps: builtin merge, path anchoring, probing
// and directory expansion.
func (n *normalizer) normalize(p policy, frag models.Fragment, owner *models.Record) ([]*models.Record, error) {
	rec, err := n.record(p, frag, owner)
	if err != nil {
		return nil, err
	}

	if rec.Core || p.FilePattern() == "" {
		n.name(p, rec, owner)
		return []*models.Record{rec}, nil
	}

	concrete, info, err := n.probe(p.Kind(), rec.SourcePath)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return n.expand(p, rec, concrete, owner)
	}

	if err := p.finish(rec, concrete, owner); err != nil {
		return nil, err
	}
	n.name(p, rec, owner)
	return []*models.Record{rec}, nil
}

// record builds the unprobed record: builtin fields first, user fields on top.
func (n *normalizer) record(def Definition, frag models.Fragment, owner *models.Record) (*models.Record, error) {
	kind := def.Kind()
	rec := &models.Record{Kind: kind}

	if frag.Ref != "" {
		b, ok := def.Builtins()[frag.Ref]
		if !ok {
			return nil, configErr(kind, frag, "unknown %s %q", kind, frag.Ref)
		}
		rec.Name = b.Name
		rec.SourcePath = b.SourcePath()
		rec.Core = true
	}

	if frag.Path != "" || frag.Base != "" {
		rec.SourcePath = anchor(filepath.Join(frag.Base, frag.Path), owner)
		rec.Core = false
	}

	if frag.Name != "" {
		rec.Name = frag.Name
	}
	if frag.Port != 0 {
		rec.Port = frag.Port
	}
	if frag.Namespace != "" {
		rec.Namespace = frag.Namespace
	}
	if frag.Package != "" && kind != models.KindPackage {
		rec.Config = mergeConfig(rec.Config, map[string]any{"package": frag.Package})
	}
	rec.Config = mergeConfig(rec.Config, frag.Options)

	if rec.SourcePath == "" && kind != models.KindPackage {
		return nil, configErr(kind, frag, "neither a known %s name nor a path", kind)
	}

	return rec, nil
}

func (n *normalizer) name(p policy, rec *models.Record, owner *models.Record) {
	if rec.Name == "" {
		rec.Name = p.defaultName(rec, owner)
	}
}

// probe interpolates a symbolic path with the current context and checks
// what it points at.
func (n *normalizer) probe(kind models.Kind, symbolic string) (string, fs.FileInfo, error) {
	concrete := templater.Interpolate(symbolic, n.env.Symbols, nil)
	if !templater.IsConcrete(concrete) {
		return "", nil, &ResolutionError{
			Kind: kind,
			Path: symbolic,
			Err:  fmt.Errorf("unbound symbols: %s", strings.Join(templater.Unresolved(concrete), ", ")),
		}
	}

	info, err := n.env.FS.Lstat(concrete)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, &ConfigurationError{
			Kind:     kind,
			Fragment: symbolic,
			Reason:   fmt.Sprintf("path %s does not exist", concrete),
		}
	}
	if err != nil {
		return "", nil, &ResolutionError{Kind: kind, Path: concrete, Err: err}
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		if info, err = n.env.FS.Stat(concrete); err != nil {
			return "", nil, &ResolutionError{Kind: kind, Path: concrete, Err: err}
		}
	}

	return concrete, info, nil
}

// expand produces one record per matching file below dir, in path order.
func (n *normalizer) expand(p policy, dirRec *models.Record, dir string, owner *models.Record) ([]*models.Record, error) {
	rels, err := n.files(p.Kind(), dir, p.FilePattern())
	if err != nil {
		return nil, err
	}

	out := make([]*models.Record, 0, len(rels))
	for _, rel := range rels {
		rec := dirRec.Clone()
		rec.Name = ""
		rec.SourcePath = filepath.Join(dirRec.SourcePath, filepath.FromSlash(rel))
		rec.RelPath = rel

		if err := p.finish(rec, filepath.Join(dir, filepath.FromSlash(rel)), owner); err != nil {
			return nil, err
		}
		n.name(p, rec, owner)
		out = append(out, rec)
	}

	n.env.Logger.Debug("expanded directory", "kind", p.Kind(), "path", dirRec.SourcePath, "records", len(out))
	return out, nil
}

func (n *normalizer) files(kind models.Kind, dir, pattern string) ([]string, error) {
	rels, err := n.env.Expander.Files(dir, pattern)
	if err != nil {
		return nil, &ResolutionError{Kind: kind, Path: dir, Err: err}
	}
	return rels, nil
}

// anchor makes a path absolute or symbolic. Relative paths belong to the
// project, or to the owning package when there is one.
func anchor(p string, owner *models.Record) string {
	if owner != nil {
		p = templater.ExpandPackagePath(p, owner.Package)
	}

	if strings.HasPrefix(p, "{") || filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	if owner != nil {
		return filepath.Join(owner.SourcePath, p)
	}
	return filepath.Join("{"+pathctx.ProjectPath+"}", p)
}

// trimName strips directories and the given suffixes, in order.
func trimName(p string, suffixes ...string) string {
	name := filepath.Base(p)
	for _, s := range suffixes {
		name = strings.TrimSuffix(name, s)
	}
	return name
}

func mergeConfig(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
