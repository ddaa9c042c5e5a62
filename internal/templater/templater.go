// Package templater expands {SYMBOL} placeholders in path templates.
//
// Unknown symbols are left in place so a partially resolved template can be
// interpolated again later, once more roots are known. Interpolating a
// concrete string is a no-op.
package templater

import (
	"regexp"
	"sort"
	"strings"
)

// maxPasses bounds repeated substitution when values contain placeholders.
const maxPasses = 8

// PackagePathSymbol is rewritten relative to PACKAGES_PATH by ExpandPackagePath.
const PackagePathSymbol = "PACKAGE_PATH"

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// SymbolTable resolves placeholder names.
type SymbolTable interface {
	Lookup(sym string) (string, bool)
}

// Symbols is a map backed SymbolTable.
type Symbols map[string]string

// Lookup implements SymbolTable.
func (s Symbols) Lookup(sym string) (string, bool) {
	v, ok := s[sym]
	return v, ok
}

// Interpolate substitutes every placeholder found in symbols, then in extra.
// Unknown placeholders stay literal. symbols may be nil.
func Interpolate(tpl string, symbols SymbolTable, extra map[string]string) string {
	out := tpl
	for i := 0; i < maxPasses && strings.Contains(out, "{"); i++ {
		next := placeholder.ReplaceAllStringFunc(out, func(m string) string {
			sym := m[1 : len(m)-1]
			if symbols != nil {
				if v, ok := symbols.Lookup(sym); ok {
					return v
				}
			}
			if v, ok := extra[sym]; ok {
				return v
			}
			return m
		})
		if next == out {
			break
		}
		out = next
	}
	return out
}

// ExpandPackagePath rewrites {PACKAGE_PATH} to {PACKAGES_PATH}/<pkg>. The
// package name comes from the caller because the context only knows the
// package the process was started in.
func ExpandPackagePath(tpl, pkg string) string {
	if pkg == "" {
		return tpl
	}
	return strings.ReplaceAll(tpl, "{"+PackagePathSymbol+"}", "{PACKAGES_PATH}/"+pkg)
}

// Unresolved returns the distinct placeholder names left in s, sorted.
func Unresolved(s string) []string {
	matches := placeholder.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

// IsConcrete reports whether s contains no placeholders.
func IsConcrete(s string) bool {
	return !placeholder.MatchString(s)
}

// Chain looks symbols up in each table in turn.
type Chain []SymbolTable

// Lookup implements SymbolTable.
func (c Chain) Lookup(sym string) (string, bool) {
	for _, t := range c {
		if t == nil {
			continue
		}
		if v, ok := t.Lookup(sym); ok {
			return v, true
		}
	}
	return "", false
}
