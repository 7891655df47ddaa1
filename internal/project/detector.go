// Package project locates the weave project directory.
package project

import (
	"os"
	"path/filepath"
)

// Marker is a file or directory whose presence identifies a project root.
type Marker struct {
	// Name is the file or directory name to look for.
	Name string
	// IsDir indicates whether this is a directory marker.
	IsDir bool
}

// DefaultMarkers are checked in order in each candidate directory.
var DefaultMarkers = []Marker{
	{Name: "weave.yaml", IsDir: false},
	{Name: "weave-library", IsDir: true},
	{Name: "main.vel", IsDir: false},
}

// Info describes a detected project directory.
type Info struct {
	// Path is the absolute path to the project directory.
	Path string
	// Markers are the markers found in Path.
	Markers []string
}

// Detector finds project directories.
type Detector struct {
	// Markers are the project markers to check.
	Markers []Marker
}

// NewDetector creates a new Detector with default markers.
func NewDetector() *Detector {
	return &Detector{
		Markers: DefaultMarkers,
	}
}

// Detect reports the markers present in dir, or nil if there are none.
func (d *Detector) Detect(dir string) (*Info, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}

	var found []string
	for _, marker := range d.Markers {
		if checkMarker(absPath, marker) {
			found = append(found, marker.Name)
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &Info{Path: absPath, Markers: found}, nil
}

// Find walks up from start to the nearest directory holding a marker. The
// walk stops before the home and root directories. When nothing is found
// the absolute form of start is returned.
func (d *Detector) Find(start string) (string, error) {
	absStart, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for dir := absStart; !IsHomeDirectory(dir) && !IsRootDirectory(dir); dir = filepath.Dir(dir) {
		info, err := d.Detect(dir)
		if err != nil {
			return "", err
		}
		if info != nil {
			return info.Path, nil
		}
	}
	return absStart, nil
}

func checkMarker(dir string, marker Marker) bool {
	info, err := os.Stat(filepath.Join(dir, marker.Name))
	if err != nil {
		return false
	}
	return info.IsDir() == marker.IsDir
}

// IsHomeDirectory returns true if the directory is the user's home directory.
func IsHomeDirectory(dir string) bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absHome, err := filepath.Abs(home)
	if err != nil {
		return false
	}
	return absDir == absHome
}

// IsRootDirectory returns true if the directory is the filesystem root.
func IsRootDirectory(dir string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return filepath.Dir(absDir) == absDir
}
