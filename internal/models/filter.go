package models

import "fmt"

// OriginFilter selects records by where they were declared
type OriginFilter string

const (
	// OriginAll selects every record
	OriginAll OriginFilter = "all"

	// OriginLocal selects records declared by the project itself
	OriginLocal OriginFilter = "local"

	// OriginPackages selects records contributed by packages
	OriginPackages OriginFilter = "packages"
)

// IsValid checks if the filter is valid
func (f OriginFilter) IsValid() bool {
	switch f {
	case OriginAll, OriginLocal, OriginPackages:
		return true
	default:
		return false
	}
}

// String returns the string representation of OriginFilter
func (f OriginFilter) String() string {
	return string(f)
}

// ParseOriginFilter parses a string into an OriginFilter
func ParseOriginFilter(s string) (OriginFilter, error) {
	f := OriginFilter(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid origin filter: %s (must be all, local, or packages)", s)
	}
	return f, nil
}

// Matches checks if a record passes this filter
func (f OriginFilter) Matches(r *Record) bool {
	switch f {
	case OriginLocal:
		return r.Origin == nil
	case OriginPackages:
		return r.Origin != nil
	default:
		return true
	}
}

// Filter returns a copy of m restricted to kinds (all when empty) and to
// records matching origin.
func (m *Manifest) Filter(kinds []Kind, origin OriginFilter) *Manifest {
	keep := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	out := NewManifest(m.Stage)
	for _, kind := range m.order {
		if len(keep) > 0 && !keep[kind] {
			continue
		}
		out.Ensure(kind)
		for _, r := range m.records[kind] {
			if origin.Matches(r) {
				out.records[kind] = append(out.records[kind], r.Clone())
			}
		}
	}
	return out
}
