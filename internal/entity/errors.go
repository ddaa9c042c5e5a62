package entity

import (
	"fmt"

	"github.com/jakoblorz/go-panda/internal/models"
)

// ConfigurationError reports a fragment that cannot be turned into a record.
type ConfigurationError struct {
	Kind     models.Kind
	Fragment string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Kind, e.Fragment, e.Reason)
}

// ResolutionError reports a failed filesystem probe or expansion.
type ResolutionError struct {
	Kind models.Kind
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s at %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func configErr(kind models.Kind, frag models.Fragment, format string, args ...any) error {
	return &ConfigurationError{Kind: kind, Fragment: frag.Raw, Reason: fmt.Sprintf(format, args...)}
}
