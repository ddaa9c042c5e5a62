package pathctx

import (
	"fmt"
	"strings"
)

// Location is the primary kind of directory the context was resolved in.
type Location string

const (
	LocationNone         Location = "none"
	LocationFramework    Location = "framework"
	LocationProject      Location = "project"
	LocationPackage      Location = "package"
	LocationPrivateLabel Location = "private-label"
)

var primaryLocations = []Location{LocationFramework, LocationProject, LocationPackage, LocationPrivateLabel}

// Flag returns the location flag name, e.g. "inProject".
func (l Location) Flag() string {
	switch l {
	case LocationFramework:
		return "inPanda"
	case LocationProject:
		return "inProject"
	case LocationPackage:
		return "inPackage"
	case LocationPrivateLabel:
		return "inPrivateLabel"
	default:
		return ""
	}
}

func (l Location) String() string {
	return string(l)
}

// noun is used in user-facing location messages.
func (l Location) noun() string {
	switch l {
	case LocationFramework:
		return "panda"
	case LocationPrivateLabel:
		return "private label"
	default:
		return string(l)
	}
}

// LocationError reports a failed location test.
type LocationError struct {
	Current   Location
	Expected  []Location
	Forbidden bool
}

func (e *LocationError) Error() string {
	if len(e.Expected) == 1 {
		if e.Forbidden {
			return fmt.Sprintf("You cannot be in a %s directory when performing this action", e.Expected[0].noun())
		}
		return fmt.Sprintf("You need to be in a %s directory when performing this action", e.Expected[0].noun())
	}

	names := make([]string, len(e.Expected))
	for i, l := range e.Expected {
		names[i] = l.noun()
	}
	if e.Forbidden {
		return fmt.Sprintf("You cannot be in any of these directories when performing this action: %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("You did not meet any of the required conditions regarding location (%s)", strings.Join(names, ", "))
}

// Require succeeds when the context is in any of locs.
func (c *Context) Require(locs ...Location) error {
	for _, l := range locs {
		if c.location == l {
			return nil
		}
	}
	return &LocationError{Current: c.location, Expected: locs}
}

// Forbid fails when the context is in any of locs.
func (c *Context) Forbid(locs ...Location) error {
	for _, l := range locs {
		if c.location == l {
			return &LocationError{Current: c.location, Expected: []Location{l}, Forbidden: true}
		}
	}
	return nil
}
