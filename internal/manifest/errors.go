package manifest

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-panda/internal/entity"
	"github.com/jakoblorz/go-panda/internal/models"
)

type (
	// ConfigurationError reports a structurally invalid fragment or an
	// unknown short name.
	ConfigurationError = entity.ConfigurationError

	// ResolutionError reports a failed filesystem probe.
	ResolutionError = entity.ResolutionError
)

// MissingRootError reports a path that still holds a placeholder after
// live resolution.
type MissingRootError struct {
	Symbol string
	Kind   models.Kind
	Name   string
	Path   string
}

func (e *MissingRootError) Error() string {
	return fmt.Sprintf("missing root %s for %s %q (path %s): set the %s binding before starting", e.Symbol, e.Kind, e.Name, e.Path, e.Symbol)
}

// CycleError reports a package that imports itself, directly or through
// other packages. Chain lists the package names from the outermost import
// to the repeated one.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "package import cycle: " + strings.Join(e.Chain, " -> ")
}
