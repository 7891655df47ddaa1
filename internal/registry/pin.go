package registry

import "github.com/Masterminds/semver/v3"

// PinKind describes an entry's version pin.
type PinKind int

const (
	// PinNone means the default branch is used.
	PinNone PinKind = iota
	// PinSemver is a semantic version tag, with or without a leading v.
	PinSemver
	// PinRef is any other branch, tag, or commit.
	PinRef
)

func (k PinKind) String() string {
	switch k {
	case PinSemver:
		return "semver"
	case PinRef:
		return "ref"
	default:
		return "none"
	}
}

// Pin classifies the entry's version pin.
func (e Entry) Pin() PinKind {
	if e.Version == "" {
		return PinNone
	}
	if _, err := semver.StrictNewVersion(trimV(e.Version)); err == nil {
		return PinSemver
	}
	return PinRef
}

func trimV(s string) string {
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') {
		return s[1:]
	}
	return s
}
