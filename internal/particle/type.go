package particle

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a particle type name is not in the catalog.
var ErrUnknownType = errors.New("particle: unknown particle type")

// Type is a particle species. The string value is the canonical name used in
// config files, exports and stats.
type Type string

const (
	Photon     Type = "photon"
	Electron   Type = "electron"
	Quark      Type = "quark"
	Boson      Type = "boson"
	DarkMatter Type = "darkmatter"
	Neutrino   Type = "neutrino"
)

// Types lists every species in canonical order.
var Types = []Type{Photon, Electron, Quark, Boson, DarkMatter, Neutrino}

func (t Type) String() string { return string(t) }

// Valid reports whether t belongs to the catalog.
func (t Type) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// Parse converts a name into a Type, rejecting names outside the catalog.
func Parse(name string) (Type, error) {
	t := Type(name)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}
