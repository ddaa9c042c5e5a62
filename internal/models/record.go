package models

// Record is a single normalized entity flowing through rollup, shrinkwrap
// and live resolution.
type Record struct {
	// Kind is the entity kind
	Kind Kind `json:"kind" yaml:"kind"`

	// Name is the logical identifier within the kind
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// SourcePath is the templated, possibly still symbolic, path
	SourcePath string `json:"path" yaml:"path"`

	// ResolvedPath is the concrete path. It is only set by the live pass.
	ResolvedPath string `json:"resolvedPath,omitempty" yaml:"resolvedPath,omitempty"`

	// Core marks framework builtins
	Core bool `json:"core,omitempty" yaml:"core,omitempty"`

	// Package is the package name (Package kind only)
	Package string `json:"package,omitempty" yaml:"package,omitempty"`

	// RelPath is the path relative to the directory it was expanded from
	RelPath string `json:"relpath,omitempty" yaml:"relpath,omitempty"`

	// View is the logical view name (View kind only)
	View string `json:"view,omitempty" yaml:"view,omitempty"`

	Port      int    `json:"port,omitempty" yaml:"port,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Files is the symbolic file list of a route directory
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`

	// ResolvedFiles mirrors Files after the live pass
	ResolvedFiles []string `json:"resolvedFiles,omitempty" yaml:"resolvedFiles,omitempty"`

	// Config holds kind-specific metadata
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`

	// Origin is the package that contributed this record, without its
	// children. Nil for project-local records.
	Origin *Record `json:"origin,omitempty" yaml:"origin,omitempty"`

	// Children is the nested rollup of a package's own manifest. Only
	// present in the rollup stage.
	Children *Manifest `json:"import,omitempty" yaml:"import,omitempty"`
}

// OriginName returns the contributing package name, or "" for local records.
func (r *Record) OriginName() string {
	if r.Origin == nil {
		return ""
	}
	return r.Origin.Package
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	c := *r
	if r.Files != nil {
		c.Files = append([]string(nil), r.Files...)
	}
	if r.ResolvedFiles != nil {
		c.ResolvedFiles = append([]string(nil), r.ResolvedFiles...)
	}
	if r.Config != nil {
		c.Config = cloneMap(r.Config)
	}
	c.Origin = r.Origin.Clone()
	if r.Children != nil {
		c.Children = r.Children.Clone()
	}
	return &c
}

// WithoutChildren returns a deep copy with the nested import removed.
func (r *Record) WithoutChildren() *Record {
	c := r.Clone()
	c.Children = nil
	return c
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
