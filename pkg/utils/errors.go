package utils

import (
	"errors"
	"fmt"
)

// Process exit codes
const (
	ExitFailure     = 1
	ExitConfig      = 2
	ExitBrowser     = 3
	ExitInterrupted = 130
)

// CustomError represents an error that terminates the run with a specific exit code
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewConfigError reports an unusable configuration or input file
func NewConfigError(detail string, err error) *CustomError {
	return &CustomError{
		Code:    ExitConfig,
		Message: "Configuration error",
		Detail:  detail,
		Err:     err,
	}
}

// NewValidationError reports invalid flag or config values
func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    ExitConfig,
		Message: "Validation failed",
		Detail:  detail,
	}
}

// NewBrowserError reports that the remote browser could not be reached
func NewBrowserError(detail string, err error) *CustomError {
	return &CustomError{
		Code:    ExitBrowser,
		Message: "Browser connection failed",
		Detail:  detail,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitFailure
}
