// Package errors defines the sentinel errors shared across ravel and small
// helpers for wrapping them with context.
package errors

import "fmt"

// Common error types.
var (
	// Project file errors.
	ErrEmptyProjectPath  = fmt.Errorf("project file path cannot be empty")
	ErrProjectNotFound   = fmt.Errorf("project file not found")
	ErrProjectParse      = fmt.Errorf("failed to parse project file")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrVersionConstraint = fmt.Errorf("project requires a newer ravel version")
	ErrUndefinedVariable = fmt.Errorf("undefined variable")

	// Script errors.
	ErrScriptNotFound = fmt.Errorf("script not found")
	ErrScriptFailed   = fmt.Errorf("script failed")

	// Download errors.
	ErrGroupNotFound      = fmt.Errorf("download group not found")
	ErrDownloadFailed     = fmt.Errorf("download failed")
	ErrIntegrityMismatch  = fmt.Errorf("integrity mismatch")
	ErrIntegrityMalformed = fmt.Errorf("malformed integrity string")
	ErrBatchAborted       = fmt.Errorf("download batch aborted")
	ErrInvalidPath        = fmt.Errorf("invalid path")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
