package version

import (
	"strings"
	"testing"
)

func TestNewInfo(t *testing.T) {
	info := NewInfo("1.0.0", "abc123", "2024-01-01")

	if info.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", info.Version, "1.0.0")
	}
	if info.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", info.Commit, "abc123")
	}
	if info.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", info.Date, "2024-01-01")
	}
	if info.GoVer == "" {
		t.Error("GoVer should not be empty")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("OS and Arch should not be empty")
	}
}

func TestInfoString(t *testing.T) {
	info := NewInfo("1.0.0", "abc123", "2024-01-01")

	if s := info.String(); s != "weave 1.0.0 (commit: abc123, built: 2024-01-01)" {
		t.Errorf("String() = %q, unexpected format", s)
	}
}

func TestInfoFullString(t *testing.T) {
	info := NewInfo("1.0.0", "abc123", "2024-01-01")
	s := info.FullString()

	for _, want := range []string{"weave 1.0.0", "abc123", "2024-01-01", info.GoVer} {
		if !strings.Contains(s, want) {
			t.Errorf("FullString() missing %q:\n%s", want, s)
		}
	}
}

func TestCurrent_Ldflags(t *testing.T) {
	old := Version
	Version = "2.3.4"
	defer func() { Version = old }()

	if got := Current().Version; got != "2.3.4" {
		t.Errorf("Current().Version = %q, want 2.3.4", got)
	}
}

func TestCurrent_Dev(t *testing.T) {
	if Current().Version == "" {
		t.Error("Current().Version should never be empty")
	}
}
