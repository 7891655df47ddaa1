package registry

import (
	"reflect"
	"testing"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Entry
	}{
		{
			name: "plain entry",
			text: "crux-lib > https://example.com/crux.git\n",
			want: []Entry{{Name: "crux-lib", URL: "https://example.com/crux.git"}},
		},
		{
			name: "version pin",
			text: "silk-gui@v1.2.0 > https://example.com/silk.git",
			want: []Entry{{Name: "silk-gui", Version: "v1.2.0", URL: "https://example.com/silk.git"}},
		},
		{
			name: "garbage lines ignored",
			text: "# registry\n\nnot an entry\na > b > c\nok > https://x/ok.git\n",
			want: []Entry{{Name: "ok", URL: "https://x/ok.git"}},
		},
		{
			name: "separator needs spaces",
			text: "a>https://x/a.git\n",
			want: nil,
		},
		{
			name: "empty name ignored",
			text: " > https://x/a.git\n",
			want: nil,
		},
		{
			name: "path names ignored",
			text: "../x > https://x/x.git\nnested/lib > https://x/n.git\n.. > https://x/d.git\nok > https://x/ok.git\n",
			want: []Entry{{Name: "ok", URL: "https://x/ok.git"}},
		},
		{
			name: "crlf line endings",
			text: "a > https://x/a.git\r\nb > https://x/b.git\r\n",
			want: []Entry{
				{Name: "a", URL: "https://x/a.git"},
				{Name: "b", URL: "https://x/b.git"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseManifest(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseManifest() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"crux-lib", true},
		{"json-1.0", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../x", false},
		{"a/b", false},
		{`a\b`, false},
		{"/abs", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseManifest_LastWins(t *testing.T) {
	s := NewSnapshot(ParseManifest("a > https://x/one.git\na@main > https://x/two.git\n")...)

	e, ok := s.Lookup("a")
	if !ok {
		t.Fatal("Lookup(a) not found")
	}
	if e.URL != "https://x/two.git" || e.Version != "main" {
		t.Errorf("Lookup(a) = %+v, want the later entry", e)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestMerge_RemoteOverridesFallback(t *testing.T) {
	fallback := []Entry{
		{Name: "crux-lib", URL: "https://fallback/crux.git"},
		{Name: "aegis-lib", URL: "https://fallback/aegis.git"},
	}
	remote := []Entry{
		{Name: "crux-lib", Version: "v2.0.0", URL: "https://remote/crux.git"},
		{Name: "new-lib", URL: "https://remote/new.git"},
	}

	s := Merge(fallback, remote)

	wantURLs := map[string]string{
		"aegis-lib": "https://fallback/aegis.git",
		"crux-lib":  "https://remote/crux.git",
		"new-lib":   "https://remote/new.git",
	}
	if got := s.URLs(); !reflect.DeepEqual(got, wantURLs) {
		t.Errorf("URLs() = %v, want %v", got, wantURLs)
	}
	wantVersions := map[string]string{"crux-lib": "v2.0.0"}
	if got := s.Versions(); !reflect.DeepEqual(got, wantVersions) {
		t.Errorf("Versions() = %v, want %v", got, wantVersions)
	}
}

func TestDefaultFallback(t *testing.T) {
	entries := DefaultFallback()
	if len(entries) != 5 {
		t.Fatalf("DefaultFallback() returned %d entries, want 5", len(entries))
	}
	for _, e := range entries {
		want := DefaultFallbackBase + e.Name + ".git"
		if e.URL != want {
			t.Errorf("%s URL = %q, want %q", e.Name, e.URL, want)
		}
		if e.Version != "" {
			t.Errorf("%s Version = %q, want no pin", e.Name, e.Version)
		}
	}
}

func TestSnapshot_Names(t *testing.T) {
	s := NewSnapshot(Entry{Name: "b"}, Entry{Name: "a"}, Entry{Name: "c"})
	want := []string{"a", "b", "c"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestSnapshot_Nil(t *testing.T) {
	var s *Snapshot
	if _, ok := s.Lookup("x"); ok {
		t.Error("Lookup on nil snapshot should miss")
	}
	if s.Len() != 0 {
		t.Error("Len on nil snapshot should be 0")
	}
}

func TestEntry_Pin(t *testing.T) {
	tests := []struct {
		version string
		want    PinKind
	}{
		{"", PinNone},
		{"v1.2.0", PinSemver},
		{"1.2.0", PinSemver},
		{"1.2.0-rc.1", PinSemver},
		{"main", PinRef},
		{"abc1234", PinRef},
		{"v1.2", PinRef},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := (Entry{Version: tt.version}).Pin(); got != tt.want {
				t.Errorf("Pin() = %v, want %v", got, tt.want)
			}
		})
	}
}
