// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory classifies a BuildError for reporting and exit-code mapping.
type ErrorCategory string

const (
	// User-facing content and input errors
	CategoryParse      ErrorCategory = "parse"
	CategoryValidation ErrorCategory = "validation"
	CategoryShortcode  ErrorCategory = "shortcode"
	CategoryConfig     ErrorCategory = "config"

	// Whole-build errors
	CategoryConflict ErrorCategory = "conflict"
	CategoryGuard    ErrorCategory = "guard"

	// Infrastructure errors
	CategoryIO       ErrorCategory = "io"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how an error affects the build.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the whole build
	SeverityError   ErrorSeverity = "error"   // Fails the affected file only
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// BuildError is a structured error with a category, severity, and context.
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for a BuildError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := e.Message
	if path, ok := e.Context["path"]; ok {
		msg = fmt.Sprintf("%s: %v", msg, path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, msg, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, msg)
}

// Unwrap implements error unwrapping.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds a context field to the error.
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory reports whether err is a BuildError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	be, ok := AsBuildError(err)
	return ok && be.Category == category
}

// AsBuildError unwraps err to a *BuildError if one is in its chain.
func AsBuildError(err error) (*BuildError, bool) {
	for err != nil {
		if be, ok := err.(*BuildError); ok {
			return be, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// FatalForBuild reports whether the error must abort the whole build rather
// than skip a single file. Conflicts and guard violations always abort.
func FatalForBuild(err error) bool {
	be, ok := AsBuildError(err)
	if !ok {
		return true
	}
	switch be.Category {
	case CategoryConflict, CategoryGuard, CategoryIO, CategoryConfig, CategoryInternal:
		return true
	}
	return be.Severity == SeverityFatal
}
