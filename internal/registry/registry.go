// Package registry maps library names to their source URLs and optional
// version pins.
//
// A Snapshot is immutable once built. Building one from a manifest is pure;
// fetching the manifest over the network is a separate step (see Loader).
package registry

import (
	"bufio"
	"path/filepath"
	"sort"
	"strings"
)

// Separator splits a manifest line into name and URL.
const Separator = " > "

// DefaultFallbackBase is the host prefix of the built-in fallback libraries.
const DefaultFallbackBase = "https://github.com/Velvet-Lang/"

// fallbackNames are the libraries known without network access.
var fallbackNames = []string{
	"crich-cli",
	"silk-gui",
	"crux-lib",
	"nestdb-lib",
	"aegis-lib",
}

// Entry is a single registry entry.
type Entry struct {
	Name    string
	Version string // optional ref, tag, or branch pin
	URL     string
}

// Snapshot is a name-keyed set of entries.
type Snapshot struct {
	entries map[string]Entry
}

// NewSnapshot builds a snapshot from entries. Later entries win on name collision.
func NewSnapshot(entries ...Entry) *Snapshot {
	s := &Snapshot{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		s.entries[e.Name] = e
	}
	return s
}

// DefaultFallback returns the built-in fallback entries.
func DefaultFallback() []Entry {
	entries := make([]Entry, 0, len(fallbackNames))
	for _, name := range fallbackNames {
		entries = append(entries, Entry{
			Name: name,
			URL:  DefaultFallbackBase + name + ".git",
		})
	}
	return entries
}

// ValidName reports whether name can be used as a cache directory: a
// single path element other than "." and "..".
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// ParseManifest parses manifest text of the form `name[@version] > url`,
// one entry per line. Lines that do not split into exactly two parts on
// Separator, and lines whose name is not a ValidName, are ignored. The last
// entry for a name wins.
func ParseManifest(text string) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), Separator)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		url := strings.TrimSpace(parts[1])
		var version string
		if i := strings.Index(name, "@"); i >= 0 {
			version = strings.TrimSpace(name[i+1:])
			name = strings.TrimSpace(name[:i])
		}
		if !ValidName(name) || url == "" {
			continue
		}

		entries = append(entries, Entry{Name: name, Version: version, URL: url})
	}
	return entries
}

// Merge overlays remote entries on fallback entries. Remote wins on collision.
func Merge(fallback, remote []Entry) *Snapshot {
	all := make([]Entry, 0, len(fallback)+len(remote))
	all = append(all, fallback...)
	all = append(all, remote...)
	return NewSnapshot(all...)
}

// Lookup returns the entry for name.
func (s *Snapshot) Lookup(name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.entries[name]
	return e, ok
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Names returns all entry names, sorted.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns all entries sorted by name.
func (s *Snapshot) Entries() []Entry {
	names := s.Names()
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, s.entries[name])
	}
	return entries
}

// URLs returns the name to URL map.
func (s *Snapshot) URLs() map[string]string {
	m := make(map[string]string, s.Len())
	for _, e := range s.Entries() {
		m[e.Name] = e.URL
	}
	return m
}

// Versions returns the name to version map for pinned entries only.
func (s *Snapshot) Versions() map[string]string {
	m := make(map[string]string)
	for _, e := range s.Entries() {
		if e.Version != "" {
			m[e.Name] = e.Version
		}
	}
	return m
}
