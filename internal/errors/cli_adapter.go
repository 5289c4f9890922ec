package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the command-line entry points.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	be, ok := AsBuildError(err)
	if !ok {
		return 1
	}
	switch be.Category {
	case CategoryValidation, CategoryParse, CategoryShortcode:
		return 2 // Invalid content
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryConflict:
		return 9 // Route or data conflict
	case CategoryGuard:
		return 13 // Safety guard refused a destructive operation
	case CategoryIO:
		return 11 // Filesystem error
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-facing display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	be, ok := AsBuildError(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return be.Error()
	}
	switch be.Category {
	case CategoryConfig, CategoryValidation, CategoryGuard:
		return be.Message
	default:
		return fmt.Sprintf("%s: %s", be.Category, be.Message)
	}
}

// HandleError processes an error and exits the program with the mapped code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logger.Error("command failed", "error", err)
	}
	fmt.Fprintf(os.Stderr, "%s\n", a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	be, ok := AsBuildError(err)
	if !ok {
		return true
	}
	return be.Category == CategoryInternal || be.Severity == SeverityFatal
}
