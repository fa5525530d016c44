package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebook/internal/orchestrator"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	PipelineOptions
}

// CheckResult is the outcome of a check run.
type CheckResult struct {
	RunID       string               `json:"run_id"`
	Fingerprint string               `json:"fingerprint"`
	Summary     orchestrator.Summary `json:"summary"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newCheckCommand(&CheckOptions{RootOptions: rootOpts})
}

func newCheckCommand(opts *CheckOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <input>",
		Short: "Parse event files and report issues without writing tables",
		Long: `Run the full parse and report per-file games, events and issues.

Nothing is written. Use this to find malformed records, unrecognized
play tokens and inconsistent game states before loading a season.

Exit codes:
  0 - All files parsed
  1 - One or more files failed
  2 - Command error

Examples:
  scorebook check ./events
  scorebook check ./events --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	opts.register(cmd, true)

	return cmd
}

func runCheck(opts *CheckOptions, inputPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, "invalid configuration", err)
	}

	files, err := discover(inputPath, cfg)
	if err != nil {
		return commandError(formatter, inputErrorCode(err), "no input", err)
	}
	formatter.VerboseLog("Found %d event file(s) in %s", len(files), inputPath)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := opts.newOrchestrator(cfg, cfg.Workers, logger).Run(ctx, files)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, "check aborted", err.Error())
		return WrapExitError(ExitFailure, "check aborted", err)
	}

	fingerprint, err := res.Fingerprint()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to fingerprint tables", err)
	}

	result := CheckResult{
		RunID:       res.RunID,
		Fingerprint: fingerprint,
		Summary:     res.Summary,
	}

	exitErr, failure := failureOutcome(result.Summary)
	if opts.Format == "json" {
		if err := formatter.Report(result.RunID, result, failure); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "Run %s\n", result.RunID)
		writeSummaryText(w, result.Summary)
		fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	}

	if exitErr != nil {
		return exitErr
	}
	return nil
}
