package models

import "fmt"

// Kind is the type of entity a manifest can declare.
type Kind string

const (
	KindApp       Kind = "app"
	KindService   Kind = "service"
	KindRoute     Kind = "route"
	KindStatic    Kind = "static"
	KindView      Kind = "view"
	KindComponent Kind = "component"
	KindPackage   Kind = "package"
)

// Kinds lists every entity kind in canonical order.
var Kinds = []Kind{KindApp, KindService, KindRoute, KindStatic, KindView, KindComponent, KindPackage}

// IsValid checks if the kind is one of the known kinds
func (k Kind) IsValid() bool {
	switch k {
	case KindApp, KindService, KindRoute, KindStatic, KindView, KindComponent, KindPackage:
		return true
	default:
		return false
	}
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Plural returns the manifest key used for lists of this kind.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// keyAliases maps authored manifest keys onto kinds. The *Dir keys name a
// single directory to expand rather than a list.
var keyAliases = map[string]Kind{
	"apps":          KindApp,
	"services":      KindService,
	"routes":        KindRoute,
	"routesDir":     KindRoute,
	"statics":       KindStatic,
	"static":        KindStatic,
	"publicDir":     KindStatic,
	"views":         KindView,
	"viewsDir":      KindView,
	"components":    KindComponent,
	"componentsDir": KindComponent,
	"packages":      KindPackage,
}

// KindForKey maps a manifest key to its kind.
func KindForKey(key string) (Kind, bool) {
	k, ok := keyAliases[key]
	return k, ok
}

// ParseKind parses either the singular or plural form of a kind.
func ParseKind(s string) (Kind, error) {
	if k := Kind(s); k.IsValid() {
		return k, nil
	}
	if k, ok := KindForKey(s); ok {
		return k, nil
	}
	return "", fmt.Errorf("invalid kind: %s (must be one of app, service, route, static, view, component, package)", s)
}
