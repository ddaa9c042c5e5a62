package pathctx

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jakoblorz/go-panda/internal/descriptor"
	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/naming"
)

// Root symbols bound by the context.
const (
	PandaPath           = "PANDA_PATH"
	PandaVersion        = "PANDA_VERSION"
	ProjectPath         = "PROJECT_PATH"
	ProjectName         = "PROJECT_NAME"
	ProjectVersion      = "PROJECT_VERSION"
	PackagePath         = "PACKAGE_PATH"
	PackageName         = "PACKAGE_NAME"
	PackageVersion      = "PACKAGE_VERSION"
	PackagesPath        = "PACKAGES_PATH"
	PrivateLabelPath    = "PRIVATE_LABEL_PATH"
	PrivateLabelVersion = "PRIVATE_LABEL_VERSION"
)

// Undefined is returned by Get for roots that are not bound.
const Undefined = "undefined"

// Library is a framework or toolkit root registered through PANDA_PATHS.
type Library struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
}

// Options configures Resolve.
type Options struct {
	// Cwd defaults to the filesystem's working directory
	Cwd string

	// EnvPaths is the raw PANDA_PATHS value
	EnvPaths string

	FrameworkPath    string
	FrameworkVersion string

	Logger *slog.Logger
}

// Context is the resolved set of root bindings and location flags for a
// working directory. It is never modified after Resolve returns.
type Context struct {
	cwd       string
	location  Location
	roots     map[string]string
	libFlags  map[string]bool
	libraries []Library
	label     string
	labelInfo *descriptor.Package
}

type resolver struct {
	fs     filesystem.FileSystem
	logger *slog.Logger
	ctx    *Context
}

// Resolve probes the filesystem and builds a Context. It never fails: a
// missing or unreadable descriptor leaves the matching roots unset.
func Resolve(fs filesystem.FileSystem, opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cwd := opts.Cwd
	if cwd == "" {
		wd, err := fs.Getwd()
		if err != nil {
			logger.Debug("failed to get working directory", "error", err)
		}
		cwd = wd
	}
	if cwd != "" {
		cwd = filepath.Clean(cwd)
	}

	r := &resolver{
		fs:     fs,
		logger: logger,
		ctx: &Context{
			cwd:      cwd,
			location: LocationNone,
			roots:    make(map[string]string),
			libFlags: make(map[string]bool),
		},
	}

	r.bindFramework(opts.FrameworkPath, opts.FrameworkVersion)
	r.registerEnvPaths(opts.EnvPaths)
	r.probe()

	logger.Debug("resolved path context", "cwd", cwd, "location", r.ctx.location)
	return r.ctx
}

func (r *resolver) bind(sym, value string) {
	if value != "" {
		r.ctx.roots[sym] = value
	}
}

// bindVersion binds the canonical form of a semantic version. Anything
// else stays unbound, so paths using the symbol fail to resolve.
func (r *resolver) bindVersion(sym, version string) {
	if version == "" {
		return
	}
	canonical, ok := descriptor.CanonicalVersion(version)
	if !ok {
		r.logger.Warn("ignoring version that is not a semantic version", "symbol", sym, "version", version)
		return
	}
	r.bind(sym, canonical)
}

func (r *resolver) bindFramework(path, version string) {
	if path == "" {
		return
	}
	path = filepath.Clean(path)
	r.bind(PandaPath, path)

	if version == "" || version == "0.0.0" {
		if pkg, err := descriptor.ReadPackage(r.fs, path); err == nil && pkg.Version != "" {
			version = pkg.Version
		}
	}
	r.bindVersion(PandaVersion, version)
}

// registerEnvPaths reads the semicolon delimited name=path list. The
// first entry becomes the private label.
func (r *resolver) registerEnvPaths(raw string) {
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, path, ok := strings.Cut(entry, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			r.logger.Debug("skipping malformed PANDA_PATHS entry", "entry", entry)
			continue
		}
		path = filepath.Clean(path)

		pkg := r.registerLibrary(name, path)
		if r.ctx.label == "" {
			r.ctx.label = name
			r.ctx.labelInfo = pkg
			r.bind(PrivateLabelPath, path)
			if pkg != nil {
				r.bindVersion(PrivateLabelVersion, pkg.Version)
			}
		}
	}
}

func (r *resolver) registerLibrary(name, path string) *descriptor.Package {
	pkg, err := descriptor.ReadPackage(r.fs, path)
	if err != nil {
		r.logger.Debug("failed to read library descriptor", "library", name, "path", path, "error", err)
		pkg = nil
	}

	lib := Library{Name: name, Path: path}
	if pkg != nil {
		lib.Version = pkg.Version
	}
	r.ctx.libraries = append(r.ctx.libraries, lib)

	env := naming.Env(name)
	r.bind(env+"_PATH", path)
	r.bindVersion(env+"_VERSION", lib.Version)
	r.ctx.libFlags[naming.LocationFlag(name)] = r.ctx.cwd == path

	devName := name + "-dev"
	devPath := filepath.Join(path, "node_modules", devName)
	if !strings.HasSuffix(name, "-dev") && r.fs.Exists(devPath) {
		r.registerLibrary(devName, devPath)
	}

	return pkg
}

// probe checks for a project descriptor first, then a package descriptor.
func (r *resolver) probe() {
	cwd := r.ctx.cwd
	if cwd == "" {
		return
	}

	if path, ok := descriptor.FindProject(r.fs, cwd); ok {
		r.ctx.location = LocationProject
		r.bind(ProjectPath, cwd)
		r.bind(PackagesPath, filepath.Join(cwd, "node_modules"))

		pkg, err := descriptor.ReadPackage(r.fs, cwd)
		if err != nil {
			r.logger.Debug("project has no readable package descriptor", "project", path, "error", err)
			return
		}
		r.bind(ProjectName, pkg.Name)
		r.bindVersion(ProjectVersion, pkg.Version)
		return
	}

	if !r.fs.Exists(filepath.Join(cwd, descriptor.PackageFile)) {
		return
	}

	pkg, err := descriptor.ReadPackage(r.fs, cwd)
	if err != nil {
		r.logger.Debug("failed to read package descriptor", "path", cwd, "error", err)
		return
	}

	switch {
	case pkg.IsFramework():
		r.ctx.location = LocationFramework
		r.bind(PandaPath, cwd)
		r.bindVersion(PandaVersion, pkg.Version)
	case pkg.HasManifest() && pkg.PrivateLabel:
		r.ctx.location = LocationPrivateLabel
	case pkg.HasManifest():
		r.ctx.location = LocationPackage
		r.bind(PackageName, pkg.Name)
		r.bindVersion(PackageVersion, pkg.Version)
		r.bind(PackagePath, cwd)
		r.bind(PackagesPath, filepath.Join(cwd, "node_modules"))
	}
}

// Cwd returns the directory the context was resolved for.
func (c *Context) Cwd() string {
	return c.cwd
}

// Location returns the primary location of the working directory.
func (c *Context) Location() Location {
	return c.location
}

// Lookup returns the value bound to sym.
func (c *Context) Lookup(sym string) (string, bool) {
	v, ok := c.roots[sym]
	return v, ok
}

// Get returns the value bound to sym, or Undefined.
func (c *Context) Get(sym string) string {
	if v, ok := c.roots[sym]; ok {
		return v
	}
	return Undefined
}

// Roots returns a copy of every bound root.
func (c *Context) Roots() map[string]string {
	out := make(map[string]string, len(c.roots))
	for k, v := range c.roots {
		out[k] = v
	}
	return out
}

// Symbols returns bound root names in sorted order.
func (c *Context) Symbols() []string {
	names := make([]string, 0, len(c.roots))
	for k := range c.roots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Flags returns every location flag. Primary flags are derived from
// Location, so exactly one of them is set unless the location is none.
func (c *Context) Flags() map[string]bool {
	flags := make(map[string]bool, len(c.libFlags)+len(primaryLocations))
	for k, v := range c.libFlags {
		flags[k] = v
	}
	for _, loc := range primaryLocations {
		flags[loc.Flag()] = c.location == loc
	}
	return flags
}

// Libraries returns the roots registered through PANDA_PATHS in order.
func (c *Context) Libraries() []Library {
	return append([]Library(nil), c.libraries...)
}

// Label returns the private label name, the first PANDA_PATHS entry.
func (c *Context) Label() string {
	return c.label
}

// LabelInfo returns the private label's descriptor, or nil.
func (c *Context) LabelInfo() *descriptor.Package {
	return c.labelInfo
}

// WithRoot returns a copy of the context with sym bound to value. An empty
// value unbinds sym.
func (c *Context) WithRoot(sym, value string) *Context {
	out := *c
	out.roots = c.Roots()
	if value == "" {
		delete(out.roots, sym)
	} else {
		out.roots[sym] = value
	}
	out.libFlags = make(map[string]bool, len(c.libFlags))
	for k, v := range c.libFlags {
		out.libFlags[k] = v
	}
	out.libraries = c.Libraries()
	return &out
}
