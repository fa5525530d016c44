package cli

import (
	"errors"

	"github.com/roach88/scorebook/internal/config"
	"github.com/roach88/scorebook/internal/input"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Input path not found
	ErrCodeNoFiles      = "E003" // No event files matched
	ErrCodeConfig       = "E004" // Configuration error
	ErrCodeSink         = "E005" // Output sink error
	ErrCodeFileFailures = "E006" // One or more input files failed
	ErrCodeDeterminism  = "E007" // Fingerprints differ
	ErrCodeParse        = "E008" // Play string did not parse
	ErrCodeTestFailed   = "E009" // Scenario failures
)

// commandError reports a command-level failure (exit code 2) through the
// formatter and returns the matching ExitError.
func commandError(f *OutputFormatter, code, message string, err error) error {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	_ = f.Error(code, message, details)
	return WrapExitError(ExitCommandError, message, err)
}

// inputErrorCode picks the response code for a discovery or configuration
// error.
func inputErrorCode(err error) string {
	switch {
	case errors.Is(err, input.ErrInputNotFound):
		return ErrCodeNotFound
	case errors.Is(err, input.ErrNoInputFiles):
		return ErrCodeNoFiles
	case config.IsConfigError(err):
		return ErrCodeConfig
	default:
		return ErrCodeGeneric
	}
}
