package resolve

import (
	"reflect"
	"testing"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []Declaration
	}{
		{
			name:   "single declaration",
			source: "<std>\n~x=5;",
			want:   []Declaration{{Token: "std", Line: 1}},
		},
		{
			name:   "two on one line",
			source: "<std> <math>\n~x=5;",
			want:   []Declaration{{Token: "std", Line: 1}, {Token: "math", Line: 1}},
		},
		{
			name:   "adjacent without space",
			source: "<std><io>",
			want:   []Declaration{{Token: "std", Line: 1}, {Token: "io", Line: 1}},
		},
		{
			name:   "inner whitespace trimmed",
			source: "  < crux-lib >  ",
			want:   []Declaration{{Token: "crux-lib", Line: 1}},
		},
		{
			name:   "empty declaration",
			source: "~x=1;\n<>",
			want:   []Declaration{{Token: "", Line: 2}},
		},
		{
			name:   "non-declaration lines ignored",
			source: "// <std> in a comment\nx < y > z\n<\n\n<math>\r\n",
			want:   []Declaration{{Token: "math", Line: 5}},
		},
		{
			name:   "no declarations",
			source: "~x=5;\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Builtin, "builtin"},
		{Library, "library"},
		{Local, "local"},
		{RemoteArchive, "archive"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"std", "math", "io"} {
		if !IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false", name)
		}
	}
	for _, name := range []string{"", "Std", "crux-lib"} {
		if IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = true", name)
		}
	}
}
