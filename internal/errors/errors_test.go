package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWeaveError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *WeaveError
		expected string
	}{
		{
			name:     "simple message",
			err:      New(ErrConfig, "bad config"),
			expected: "bad config",
		},
		{
			name: "with cause",
			err: &WeaveError{
				Kind:    ErrConfig,
				Message: "config error",
				Cause:   errors.New("parse error"),
			},
			expected: "config error: parse error",
		},
		{
			name:     "with file and line",
			err:      New(ErrUnknownDependency, "unknown dependency 'x'").At("main.vel", 3),
			expected: "main.vel:3: unknown dependency 'x'",
		},
		{
			name:     "with line only",
			err:      New(ErrEmptyDeclaration, "empty dependency declaration").At("", 7),
			expected: "line 7: empty dependency declaration",
		},
		{
			name:     "with file only",
			err:      ReadFailure("missing.vel", errors.New("no such file")),
			expected: "missing.vel: failed to read source file: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWeaveError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrMaterializationFailed, "wrapped error")

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoWrap := New(ErrConfig, "no cause")
	if !errors.Is(errors.Unwrap(errNoWrap), ErrConfig) {
		t.Errorf("Unwrap() should return Kind when no cause")
	}
}

func TestWeaveError_Is(t *testing.T) {
	err := UnknownDependency("main.vel", 1, "nope")

	if !errors.Is(err, ErrUnknownDependency) {
		t.Error("errors.Is should return true for matching Kind")
	}
	if errors.Is(err, ErrEmptyDeclaration) {
		t.Error("errors.Is should return false for non-matching Kind")
	}

	wrapped := fmt.Errorf("check failed: %w", err)
	if !errors.Is(wrapped, ErrUnknownDependency) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestWeaveError_Format(t *testing.T) {
	err := MaterializationFailed("crux-lib", errors.New("clone refused"))
	formatted := err.Format()

	for _, want := range []string{
		"Error: failed to materialize library crux-lib: clone refused",
		"library: crux-lib",
		"Suggestion:",
		"weave-library/crux-lib",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q in:\n%s", want, formatted)
		}
	}
}

func TestWeaveError_WithDetails(t *testing.T) {
	err := New(ErrConfig, "config error")
	err.WithDetails("file", "weave.yaml").WithDetails("field", "cache.dir")

	if err.Details["file"] != "weave.yaml" {
		t.Error("WithDetails should set key")
	}
	if err.Details["field"] != "cache.dir" {
		t.Error("WithDetails should allow chaining")
	}
}

func TestAs(t *testing.T) {
	base := EmptyDeclaration("a.vel", 2)
	wrapped := fmt.Errorf("outer: %w", base)

	we, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should find the WeaveError")
	}
	if we.Line != 2 || we.File != "a.vel" {
		t.Errorf("As() position = %s:%d, want a.vel:2", we.File, we.Line)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("As() should return false for plain errors")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(UpdateSkipped("x")); got != ErrUpdateSkipped {
		t.Errorf("KindOf() = %v, want %v", got, ErrUpdateSkipped)
	}
	if got := KindOf(errors.New("plain")); got != nil {
		t.Errorf("KindOf(plain) = %v, want nil", got)
	}
}

func TestResolutionConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *WeaveError
		kind error
		want string
	}{
		{"empty", EmptyDeclaration("m.vel", 4), ErrEmptyDeclaration, "m.vel:4"},
		{"unknown", UnknownDependency("m.vel", 1, "unknown"), ErrUnknownDependency, "'unknown'"},
		{"materialize", MaterializationFailed("silk-gui", errors.New("boom")), ErrMaterializationFailed, "silk-gui"},
		{"read", ReadFailure("m.vel", errors.New("denied")), ErrReadFailure, "denied"},
		{"local", LocalCopyFailed("foo.vel", errors.New("gone")), ErrLocalCopyFailed, "foo.vel"},
		{"archive", ArchiveFailed("https://x/y.zip", errors.New("404")), ErrArchiveFailed, "https://x/y.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Error() = %q, want to contain %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestIsNonFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"registry fetch", RegistryFetchFailure("https://x", errors.New("offline")), true},
		{"skipped", UpdateSkipped("lib"), true},
		{"conflict", StashReapplyConflict("lib", nil), true},
		{"unknown", UnknownDependency("f", 1, "t"), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNonFatal(tt.err); got != tt.want {
				t.Errorf("IsNonFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigValidationError(t *testing.T) {
	err := ConfigValidationError("log.level", "unknown level", []string{"debug", "info"})

	if !errors.Is(err, ErrConfig) {
		t.Error("ConfigValidationError should return ErrConfig")
	}
	if !strings.Contains(err.Suggestion, "debug, info") {
		t.Errorf("Suggestion = %q, want valid options", err.Suggestion)
	}
}
