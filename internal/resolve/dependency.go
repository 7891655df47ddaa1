// Package resolve scans source files for dependency declarations, classifies
// each one, and materializes what it refers to into the library cache.
package resolve

import (
	"regexp"
	"strings"
)

// Kind identifies what a declaration refers to.
type Kind int

const (
	// Builtin is a namespace shipped with the compiler.
	Builtin Kind = iota
	// Library is a registry library cloned into the cache.
	Library
	// Local is a file or directory copied into the cache.
	Local
	// RemoteArchive is an archive URL extracted into the cache.
	RemoteArchive
)

func (k Kind) String() string {
	switch k {
	case Builtin:
		return "builtin"
	case Library:
		return "library"
	case Local:
		return "local"
	case RemoteArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// LocalPrefix marks a local file or directory dependency.
const LocalPrefix = "local:"

// Builtins are the namespaces resolved by name alone.
var Builtins = []string{"std", "math", "io"}

// IsBuiltin reports whether name is a builtin namespace.
func IsBuiltin(name string) bool {
	for _, b := range Builtins {
		if b == name {
			return true
		}
	}
	return false
}

// Dependency is a classified declaration.
type Dependency struct {
	Kind Kind
	// Name is the builtin or library name, the local path as written
	// (without the prefix), or the archive URL.
	Name string
	// Line is the 1-based declaration line.
	Line int
	// Path is where the dependency was materialized. Empty for builtins.
	Path string
}

func (d Dependency) String() string {
	return d.Kind.String() + " " + d.Name
}

// Declaration is a single token found between angle brackets.
type Declaration struct {
	Token string
	Line  int
}

// declSeparator splits "<a> <b>" after the outer brackets are removed.
var declSeparator = regexp.MustCompile(`>\s*<`)

// Scan returns the declarations in source, in order. A line is a
// declaration line when its trimmed content starts with '<' and ends with
// '>'. Several declarations may share a line: "<std> <math>".
func Scan(source string) []Declaration {
	var decls []Declaration
	for i, raw := range strings.Split(source, "\n") {
		line := i + 1
		text := strings.TrimSpace(raw)
		if len(text) < 2 || text[0] != '<' || text[len(text)-1] != '>' {
			continue
		}
		for _, token := range declSeparator.Split(text[1:len(text)-1], -1) {
			decls = append(decls, Declaration{Token: strings.TrimSpace(token), Line: line})
		}
	}
	return decls
}
