// Package errors provides error types with actionable suggestions for weave.
// Errors carry a sentinel kind so callers can branch with errors.Is, plus
// optional source position for resolution failures.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel kinds for use with errors.Is().
var (
	// ErrEmptyDeclaration indicates a `<>` declaration with no token.
	ErrEmptyDeclaration = errors.New("empty declaration")
	// ErrUnknownDependency indicates a token no rule could classify.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrMaterializationFailed indicates a library clone or checkout failed.
	ErrMaterializationFailed = errors.New("materialization failed")
	// ErrReadFailure indicates a source file could not be read.
	ErrReadFailure = errors.New("read failure")
	// ErrRegistryFetchFailure indicates the remote manifest could not be fetched.
	// It is never fatal.
	ErrRegistryFetchFailure = errors.New("registry fetch failure")
	// ErrLocalCopyFailed indicates a local: dependency could not be copied.
	ErrLocalCopyFailed = errors.New("local copy failed")
	// ErrArchiveFailed indicates a remote archive could not be fetched or extracted.
	ErrArchiveFailed = errors.New("archive failed")
	// ErrUpdateSkipped indicates a cache entry is not a repository.
	ErrUpdateSkipped = errors.New("update skipped")
	// ErrStashReapplyConflict indicates stashed local edits conflicted after a pull.
	ErrStashReapplyConflict = errors.New("stash reapply conflict")
	// ErrUpdateFailed indicates a stash or pull step failed.
	ErrUpdateFailed = errors.New("update failed")
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrLocked indicates another weave process holds the cache lock.
	ErrLocked = errors.New("cache locked")
	// ErrNetwork indicates a network-related error.
	ErrNetwork = errors.New("network error")
)

// WeaveError is the base error type for weave errors.
type WeaveError struct {
	// Kind is the category of error (e.g., ErrUnknownDependency).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g., token, url).
	Details map[string]string
	// File is the source file the error refers to, if any.
	File string
	// Line is the 1-based line in File, or 0 when unknown.
	Line int
}

// Error implements the error interface.
func (e *WeaveError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Line)
		}
		sb.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *WeaveError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether the error's kind matches the target.
func (e *WeaveError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with details and suggestion.
func (e *WeaveError) Format() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, e.Details[k]))
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *WeaveError) WithDetails(key, value string) *WeaveError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause of the error.
func (e *WeaveError) WithCause(cause error) *WeaveError {
	e.Cause = cause
	return e
}

// At sets the source position of the error.
func (e *WeaveError) At(file string, line int) *WeaveError {
	e.File = file
	e.Line = line
	return e
}

// New creates a new WeaveError with the given kind and message.
func New(kind error, message string) *WeaveError {
	return &WeaveError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind error, message string) *WeaveError {
	return &WeaveError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// WithSuggestion creates a new error with a suggestion.
func WithSuggestion(kind error, message, suggestion string) *WeaveError {
	return &WeaveError{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}
}

// As returns err as a *WeaveError if any error in its chain is one.
func As(err error) (*WeaveError, bool) {
	var we *WeaveError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// KindOf returns the sentinel kind of err, or nil when err is not a WeaveError.
func KindOf(err error) error {
	if we, ok := As(err); ok {
		return we.Kind
	}
	return nil
}
