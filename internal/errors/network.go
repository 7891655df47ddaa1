// Package errors provides error types for weave.
// This file contains registry and network errors.
package errors

import "fmt"

// RegistryFetchFailure creates an error for a failed manifest fetch.
// Callers log it and continue with the fallback registry.
func RegistryFetchFailure(url string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrRegistryFetchFailure,
		Message: "could not fetch library registry",
		Cause:   cause,
		Details: map[string]string{
			"url": url,
		},
		Suggestion: "Only the built-in fallback libraries are available. Check your network connection or set registry.offline in weave.yaml.",
	}
}

// HTTPStatus creates an error for a non-200 response.
func HTTPStatus(url string, status int) *WeaveError {
	return &WeaveError{
		Kind:    ErrNetwork,
		Message: fmt.Sprintf("GET %s returned status %d", url, status),
		Details: map[string]string{
			"url":    url,
			"status": fmt.Sprintf("%d", status),
		},
	}
}

// IsNonFatal returns true for errors that are reported but never abort a command.
func IsNonFatal(err error) bool {
	switch KindOf(err) {
	case ErrRegistryFetchFailure, ErrUpdateSkipped, ErrStashReapplyConflict:
		return true
	default:
		return false
	}
}
