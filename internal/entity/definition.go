// Package entity holds the per-kind policies that turn raw manifest
// fragments into normalized records.
package entity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/templater"
)

// Builtin is a well-known entity shipped with the framework.
type Builtin struct {
	Name string
	Base string
	Path string
}

// SourcePath joins Base and Path.
func (b Builtin) SourcePath() string {
	return filepath.Join(b.Base, b.Path)
}

// Definition is the normalization policy of one entity kind.
type Definition interface {
	Kind() models.Kind

	// Builtins returns the short names this kind understands.
	Builtins() map[string]Builtin

	// FilePattern is the glob used to expand directories, "" for kinds
	// that never expand.
	FilePattern() string

	// Normalize turns a fragment into one or more records. owner is the
	// package record declaring the fragment, nil for the project.
	Normalize(frag models.Fragment, owner *models.Record) ([]*models.Record, error)
}

// Environment is what definitions need to probe paths.
type Environment struct {
	FS filesystem.FileSystem

	// Symbols interpolates paths before they are probed
	Symbols templater.SymbolTable

	// Expander defaults to a fresh one over FS
	Expander *Expander

	Logger *slog.Logger
}

// Registry holds one definition per kind.
type Registry struct {
	defs map[models.Kind]Definition
}

// NewRegistry creates the definitions of every kind over env.
func NewRegistry(env Environment) *Registry {
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	if env.Expander == nil {
		env.Expander = NewExpander(env.FS)
	}

	n := &normalizer{env: env}
	return &Registry{
		defs: map[models.Kind]Definition{
			models.KindApp:       &App{n: n},
			models.KindService:   &Service{n: n},
			models.KindRoute:     &Route{n: n},
			models.KindStatic:    &Static{n: n},
			models.KindView:      &View{n: n},
			models.KindComponent: &Component{n: n},
			models.KindPackage:   &Package{n: n},
		},
	}
}

// Definition returns the definition of kind.
func (r *Registry) Definition(kind models.Kind) (Definition, error) {
	def, ok := r.defs[kind]
	if !ok {
		return nil, fmt.Errorf("no definition for kind %s", kind)
	}
	return def, nil
}

// Normalize decodes raw and normalizes it with the definition of kind.
func (r *Registry) Normalize(kind models.Kind, raw json.RawMessage, owner *models.Record) ([]*models.Record, error) {
	def, err := r.Definition(kind)
	if err != nil {
		return nil, err
	}

	builtins := def.Builtins()
	frag, err := models.DecodeFragment(raw, string(kind), func(s string) bool {
		_, ok := builtins[s]
		return ok
	})
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Fragment: frag.Raw, Reason: err.Error()}
	}

	return def.Normalize(frag, owner)
}
