// Package errors provides error types for weave.
// This file contains dependency resolution errors.
package errors

import "fmt"

// EmptyDeclaration creates an error for a `<>` declaration.
func EmptyDeclaration(file string, line int) *WeaveError {
	return &WeaveError{
		Kind:       ErrEmptyDeclaration,
		Message:    "empty dependency declaration",
		File:       file,
		Line:       line,
		Suggestion: "Put a dependency name between the angle brackets, e.g. <std>, or remove the line.",
	}
}

// UnknownDependency creates an error for a token that matched no rule.
func UnknownDependency(file string, line int, token string) *WeaveError {
	return &WeaveError{
		Kind:    ErrUnknownDependency,
		Message: fmt.Sprintf("unknown dependency '%s'", token),
		File:    file,
		Line:    line,
		Details: map[string]string{
			"token": token,
		},
		Suggestion: `A dependency must be one of:
  <std> <math> <io>              builtin namespaces
  <name>                         a library listed by 'weave libs'
  <local:path/to/file>           a local file or directory
  <https://host/pkg.tar.gz>      a remote archive (.tar.gz, .tgz, .zip)`,
	}
}

// MaterializationFailed creates an error for a failed clone or checkout.
func MaterializationFailed(name string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrMaterializationFailed,
		Message: fmt.Sprintf("failed to materialize library %s", name),
		Cause:   cause,
		Details: map[string]string{
			"library": name,
		},
		Suggestion: `Check that the library URL is reachable and the pinned version exists:
  weave libs
If a partial clone was left behind, remove weave-library/` + name + ` and retry.`,
	}
}

// ReadFailure creates an error for an unreadable source file.
func ReadFailure(path string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrReadFailure,
		Message: "failed to read source file",
		File:    path,
		Cause:   cause,
	}
}

// LocalCopyFailed creates an error for a local: dependency that could not be copied.
func LocalCopyFailed(path string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrLocalCopyFailed,
		Message: fmt.Sprintf("failed to copy local dependency %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: "Relative local: paths are resolved against the directory of the source file.",
	}
}

// ArchiveFailed creates an error for a remote archive that could not be fetched or extracted.
func ArchiveFailed(url string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrArchiveFailed,
		Message: fmt.Sprintf("failed to fetch archive %s", url),
		Cause:   cause,
		Details: map[string]string{
			"url": url,
		},
	}
}
