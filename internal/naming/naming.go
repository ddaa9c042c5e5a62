// Package naming converts library and entity names between the casing
// conventions used for root bindings and location flags.
package naming

import (
	"strings"

	"github.com/Masterminds/sprig/v3"
)

var (
	snakecase = sprig.TxtFuncMap()["snakecase"].(func(string) string)
	camelcase = sprig.TxtFuncMap()["camelcase"].(func(string) string)
	kebabcase = sprig.TxtFuncMap()["kebabcase"].(func(string) string)
)

// Env converts a name to an environment style identifier.
// e.g., "panda-dev" -> "PANDA_DEV".
func Env(name string) string {
	return strings.ToUpper(snakecase(name))
}

// Pascal converts a name to PascalCase.
// e.g., "panda-dev" -> "PandaDev".
func Pascal(name string) string {
	return camelcase(snakecase(name))
}

// Slug converts a name to kebab-case.
func Slug(name string) string {
	return kebabcase(name)
}

// LocationFlag returns the flag name marking the working directory as
// inside the named library, e.g. "panda-dev" -> "inPandaDev".
func LocationFlag(name string) string {
	return "in" + Pascal(name)
}
