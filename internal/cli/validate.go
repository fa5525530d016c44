package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebook/internal/config"
)

// ValidationError is one configuration problem with its source position.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Config *config.Config    `json:"config,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.cue>",
		Short: "Validate a configuration file",
		Long: `Check a CUE configuration file against the built-in schema.

Unknown fields, wrong types and out-of-range values are reported with
their line and column. The output destination is checked as well, so a
postgres output without a DSN is reported here rather than at parse time.

Exit codes:
  0 - Configuration valid
  1 - Configuration invalid
  2 - Command error (file not readable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil {
		err = cfg.Output.Validate()
	}

	if err != nil {
		var ce *config.ConfigError
		if !errors.As(err, &ce) {
			return commandError(formatter, ErrCodeGeneric, "failed to load configuration", err)
		}
		if ce.Code == config.ErrCodeRead {
			return commandError(formatter, ErrCodeNotFound, ce.Message, nil)
		}
		return outputValidationErrors(formatter, []ValidationError{toValidationError(ce)})
	}

	formatter.VerboseLog("Loaded %s", path)
	return outputValidateSuccess(formatter, cfg)
}

func toValidationError(ce *config.ConfigError) ValidationError {
	v := ValidationError{Code: ce.Code, Message: ce.Message}
	if ce.Pos.IsValid() {
		v.File = ce.Pos.Filename()
		v.Line = ce.Pos.Line()
		v.Column = ce.Pos.Column()
	}
	return v
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, cfg config.Config) error {
	if formatter.Format == "json" {
		return formatter.Report("", ValidationResult{Valid: true, Config: &cfg}, nil)
	}

	fmt.Fprintln(formatter.Writer, "✓ Configuration valid")
	if formatter.Verbose {
		fmt.Fprintf(formatter.Writer, "  workers: %d, cache_size: %d, strict: %v\n", cfg.Workers, cfg.CacheSize, cfg.Strict)
		fmt.Fprintf(formatter.Writer, "  output: %s\n", cfg.Output.Format)
	}
	return nil
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}
		failure := &CLIError{
			Code:    errs[0].Code,
			Message: errs[0].Message,
		}
		if err := formatter.Report("", result, failure); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d, column %d\n", err.Line, err.Column)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
