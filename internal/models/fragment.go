package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FragmentShape tells how a raw manifest fragment was written.
type FragmentShape int

const (
	// ShapeShortName is a bare string naming a builtin entity
	ShapeShortName FragmentShape = iota
	// ShapePath is a bare string holding a path
	ShapePath
	// ShapeInline is an object with explicit fields
	ShapeInline
)

func (s FragmentShape) String() string {
	switch s {
	case ShapeShortName:
		return "short-name"
	case ShapePath:
		return "path"
	case ShapeInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Fragment is a raw manifest entry decoded into one of its three shapes.
type Fragment struct {
	Shape FragmentShape

	// Ref is the builtin short name, either a bare string or the value of
	// the kind's singular key ({"app": "web"}).
	Ref string

	Path      string
	Base      string
	Name      string
	Package   string
	Port      int
	Namespace string

	// Options keeps every other inline key.
	Options map[string]any

	// Raw is the fragment as authored, for error messages.
	Raw string
}

var knownFragmentKeys = map[string]bool{
	"path": true, "base": true, "name": true, "package": true,
	"port": true, "namespace": true,
}

// DecodeFragment decodes raw into a Fragment. refKey is the singular kind
// key that carries a short-name reference in inline objects; isBuiltin
// decides whether a bare string is a short name or a path.
func DecodeFragment(raw json.RawMessage, refKey string, isBuiltin func(string) bool) (Fragment, error) {
	trimmed := bytes.TrimSpace(raw)
	frag := Fragment{Raw: string(trimmed)}

	if len(trimmed) == 0 {
		return frag, fmt.Errorf("empty fragment")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return frag, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return frag, fmt.Errorf("empty fragment")
		}
		if isBuiltin != nil && isBuiltin(s) {
			frag.Shape = ShapeShortName
			frag.Ref = s
		} else {
			frag.Shape = ShapePath
			frag.Path = s
		}
		return frag, nil

	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return frag, err
		}
		frag.Shape = ShapeInline
		return frag, frag.fillInline(obj, refKey)

	default:
		return frag, fmt.Errorf("fragment must be a string or an object")
	}
}

func (f *Fragment) fillInline(obj map[string]any, refKey string) error {
	var err error
	if f.Path, err = stringField(obj, "path"); err != nil {
		return err
	}
	if f.Base, err = stringField(obj, "base"); err != nil {
		return err
	}
	if f.Name, err = stringField(obj, "name"); err != nil {
		return err
	}
	if f.Package, err = stringField(obj, "package"); err != nil {
		return err
	}
	if f.Namespace, err = stringField(obj, "namespace"); err != nil {
		return err
	}

	if v, ok := obj["port"]; ok {
		switch p := v.(type) {
		case float64:
			f.Port = int(p)
		default:
			return fmt.Errorf("port must be a number")
		}
	}

	if refKey != "" && !knownFragmentKeys[refKey] {
		if f.Ref, err = stringField(obj, refKey); err != nil {
			return err
		}
	}

	for k, v := range obj {
		if knownFragmentKeys[k] || k == refKey {
			continue
		}
		if f.Options == nil {
			f.Options = make(map[string]any)
		}
		f.Options[k] = v
	}
	return nil
}

func stringField(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}
