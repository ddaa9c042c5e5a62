package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-panda/internal/descriptor"
	"github.com/jakoblorz/go-panda/internal/entity"
	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/jakoblorz/go-panda/internal/templater"
)

// Builder produces rollup and shrinkwrap manifests for a project. A Builder
// holds no per-rollup state, so independent rollups may run concurrently.
type Builder struct {
	fs          filesystem.FileSystem
	ctx         *pathctx.Context
	logger      *slog.Logger
	expander    *entity.Expander
	registry    *entity.Registry
	includeCore bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithCoreServices merges the framework's core services into Build.
func WithCoreServices(enabled bool) Option {
	return func(b *Builder) {
		b.includeCore = enabled
	}
}

// WithExpander shares a directory listing cache between builders.
func WithExpander(e *entity.Expander) Option {
	return func(b *Builder) {
		b.expander = e
	}
}

// NewBuilder creates a Builder probing fs with the roots of ctx.
func NewBuilder(fs filesystem.FileSystem, ctx *pathctx.Context, options ...Option) *Builder {
	b := &Builder{fs: fs, ctx: ctx}
	for _, option := range options {
		option(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.expander == nil {
		b.expander = entity.NewExpander(fs)
	}

	b.registry = entity.NewRegistry(entity.Environment{
		FS:       fs,
		Symbols:  ctx,
		Expander: b.expander,
		Logger:   b.logger,
	})
	return b
}

// Context returns the path context the builder probes with.
func (b *Builder) Context() *pathctx.Context {
	return b.ctx
}

// Registry returns the entity definitions used by the builder.
func (b *Builder) Registry() *entity.Registry {
	return b.registry
}

// Load reads the project descriptor at PROJECT_PATH.
func (b *Builder) Load() (*models.ProjectManifest, error) {
	root, ok := b.ctx.Lookup(pathctx.ProjectPath)
	if !ok {
		return nil, &pathctx.LocationError{Current: b.ctx.Location(), Expected: []pathctx.Location{pathctx.LocationProject}}
	}

	pm, path, err := descriptor.ReadProject(b.fs, root)
	if err != nil {
		return nil, err
	}

	if len(pm.Ignored) > 0 {
		b.logger.Debug("ignoring unknown manifest keys", "file", path, "keys", pm.Ignored)
	}
	return pm, nil
}

// link is one package on the import chain of a rollup.
type link struct {
	name string
	path string
}

// Rollup normalizes every fragment of pm and recursively rolls up the
// manifests of the packages it declares. owner is the package pm belongs
// to, nil for the project.
func (b *Builder) Rollup(pm *models.ProjectManifest, owner *models.Record) (*models.Manifest, error) {
	var chain []link
	if owner != nil {
		chain = append(chain, link{name: owner.Package, path: b.concrete(owner.SourcePath)})
	}
	return b.rollup(pm, owner, chain)
}

func (b *Builder) rollup(pm *models.ProjectManifest, owner *models.Record, chain []link) (*models.Manifest, error) {
	out := models.NewManifest(models.StageRollup)

	for _, entry := range pm.Entries {
		out.Ensure(entry.Kind)

		for _, raw := range entry.Fragments {
			recs, err := b.registry.Normalize(entry.Kind, raw, owner)
			if err != nil {
				return nil, err
			}

			if entry.Kind == models.KindPackage {
				for _, rec := range recs {
					if err := b.importPackage(rec, chain); err != nil {
						return nil, err
					}
				}
			}

			out.Add(entry.Kind, recs...)
		}
	}

	return out, nil
}

// importPackage loads the package's own manifest into rec.Children.
func (b *Builder) importPackage(rec *models.Record, chain []link) error {
	dir := b.concrete(rec.SourcePath)
	if !templater.IsConcrete(dir) {
		return &ResolutionError{
			Kind: models.KindPackage,
			Path: rec.SourcePath,
			Err:  fmt.Errorf("unbound symbols: %s", strings.Join(templater.Unresolved(dir), ", ")),
		}
	}
	dir = filepath.Clean(dir)

	for i, l := range chain {
		if l.name == rec.Package || l.path == dir {
			names := make([]string, 0, len(chain)-i+1)
			for _, c := range chain[i:] {
				names = append(names, c.name)
			}
			return &CycleError{Chain: append(names, rec.Package)}
		}
	}

	pkg, err := descriptor.ReadPackage(b.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return &ConfigurationError{
			Kind:     models.KindPackage,
			Fragment: rec.Package,
			Reason:   fmt.Sprintf("package is not installed at %s", dir),
		}
	}
	if err != nil {
		return &ResolutionError{Kind: models.KindPackage, Path: dir, Err: err}
	}

	if !pkg.HasManifest() {
		b.logger.Debug("package declares no manifest", "package", rec.Package)
		return nil
	}

	sub, err := pkg.SubManifest()
	if err != nil {
		return &ConfigurationError{Kind: models.KindPackage, Fragment: rec.Package, Reason: err.Error()}
	}

	next := append(append([]link(nil), chain...), link{name: rec.Package, path: dir})
	children, err := b.rollup(sub, rec, next)
	if err != nil {
		return fmt.Errorf("failed to roll up package %s: %w", rec.Package, err)
	}

	rec.Children = children
	b.logger.Debug("rolled up package", "package", rec.Package, "records", children.Len())
	return nil
}

func (b *Builder) concrete(symbolic string) string {
	return templater.Interpolate(symbolic, b.ctx, nil)
}
