package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebook/internal/config"
	"github.com/roach88/scorebook/internal/orchestrator"
	"github.com/roach88/scorebook/internal/store"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	PipelineOptions
	Out    string
	Output string
	DSN    string
	Verify bool
}

// ParseResult is the outcome of a parse run.
type ParseResult struct {
	RunID       string               `json:"run_id"`
	Fingerprint string               `json:"fingerprint"`
	Output      string               `json:"output"`
	Destination string               `json:"destination,omitempty"`
	Verified    *bool                `json:"verified,omitempty"`
	Summary     orchestrator.Summary `json:"summary"`
}

// verifier is implemented by the database sinks.
type verifier interface {
	VerifyRun(ctx context.Context, runID string) (store.Verification, error)
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return newParseCommand(&ParseOptions{RootOptions: rootOpts})
}

func newParseCommand(opts *ParseOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <input>",
		Short: "Parse event files and write the tables",
		Long: `Parse event files and write the assembled tables to a sink.

<input> is an event file or a directory searched for event files.
Gzip and zstd compressed files are read transparently.

Exit codes:
  0 - All files parsed
  1 - One or more files failed
  2 - Command error (bad flags, configuration, no input files, etc.)

Examples:
  scorebook parse ./events --out season.db
  scorebook parse ./events --output jsonl --out ./tables
  scorebook parse ./events --output postgres --dsn postgres://localhost/retro
  scorebook parse 2024NYA.EVA --workers 4 --verify --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	opts.register(cmd, true)
	cmd.Flags().StringVar(&opts.Out, "out", "", "output path: SQLite file or JSONL directory")
	cmd.Flags().StringVar(&opts.Output, "output", "", "output format (sqlite|postgres|jsonl)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "Postgres connection string (default $"+config.DSNEnv+")")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute the stored fingerprint after writing")

	return cmd
}

func runParse(opts *ParseOptions, inputPath string, cmd *cobra.Command) error {
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
	applyOutputFlags(&cfg.Output, opts)
	if err := cfg.Output.Validate(); err != nil {
		return commandError(formatter, ErrCodeConfig, "invalid output", err)
	}

	files, err := discover(inputPath, cfg)
	if err != nil {
		return commandError(formatter, inputErrorCode(err), "no input", err)
	}
	formatter.VerboseLog("Found %d event file(s) in %s", len(files), inputPath)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := store.NewSink(ctx, cfg.Output)
	if err != nil {
		return commandError(formatter, ErrCodeSink, "failed to open output", err)
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			logger.Error("error closing output", "error", closeErr)
		}
	}()

	res, err := opts.newOrchestrator(cfg, cfg.Workers, logger).Run(ctx, files)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, "parse aborted", err.Error())
		return WrapExitError(ExitFailure, "parse aborted", err)
	}

	if err := sink.Write(ctx, res); err != nil {
		_ = formatter.Error(ErrCodeSink, "failed to write tables", err.Error())
		return WrapExitError(ExitFailure, "failed to write tables", err)
	}
	logger.Info("tables written", "run", res.RunID, "output", cfg.Output.Format, "games", res.Summary.Totals.Games)

	fingerprint, err := res.Fingerprint()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to fingerprint tables", err)
	}

	result := ParseResult{
		RunID:       res.RunID,
		Fingerprint: fingerprint,
		Output:      cfg.Output.Format,
		Destination: cfg.Output.Path,
		Summary:     res.Summary,
	}

	if opts.Verify {
		v, ok := sink.(verifier)
		if !ok {
			return commandError(formatter, ErrCodeSink, "--verify needs a database output", nil)
		}
		check, err := v.VerifyRun(ctx, res.RunID)
		if err != nil {
			_ = formatter.Error(ErrCodeSink, "failed to verify run", err.Error())
			return WrapExitError(ExitFailure, "failed to verify run", err)
		}
		verified := check.OK()
		result.Verified = &verified
	}

	exitErr, failure := parseOutcome(result)
	if opts.Format == "json" {
		if err := formatter.Report(result.RunID, result, failure); err != nil {
			return err
		}
	} else {
		writeParseText(formatter.Writer, result)
	}

	if exitErr != nil {
		return exitErr
	}
	return nil
}

// applyOutputFlags overrides the configured output with command-line flags.
func applyOutputFlags(out *config.Output, opts *ParseOptions) {
	if opts.Output != "" {
		out.Format = opts.Output
	}
	if opts.Out != "" {
		out.Path = opts.Out
	}
	if opts.DSN != "" {
		out.DSN = opts.DSN
	}
	out.ResolveDSN()
}

// parseOutcome maps verification and file failures to an exit error and
// the matching response error.
func parseOutcome(result ParseResult) (*ExitError, *CLIError) {
	if result.Verified != nil && !*result.Verified {
		msg := fmt.Sprintf("stored tables do not match run %s", result.RunID)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", ErrCodeDeterminism, msg)),
			&CLIError{Code: ErrCodeDeterminism, Message: msg}
	}
	return failureOutcome(result.Summary)
}

// failureOutcome reports failed files as exit code 1.
func failureOutcome(s orchestrator.Summary) (*ExitError, *CLIError) {
	if s.Failures == 0 {
		return nil, nil
	}
	msg := fmt.Sprintf("%d file(s) failed", s.Failures)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", ErrCodeFileFailures, msg)),
		&CLIError{Code: ErrCodeFileFailures, Message: msg}
}

func writeParseText(w io.Writer, result ParseResult) {
	fmt.Fprintf(w, "Run %s\n", result.RunID)
	writeSummaryText(w, result.Summary)
	dest := result.Destination
	if dest == "" {
		dest = "(dsn)"
	}
	fmt.Fprintf(w, "Output: %s %s\n", result.Output, dest)
	fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	if result.Verified != nil {
		if *result.Verified {
			fmt.Fprintln(w, "✓ Stored tables verified")
		} else {
			fmt.Fprintln(w, "✗ Stored tables do not match the run fingerprint")
		}
	}
}

// writeSummaryText prints per-file outcomes and run totals.
func writeSummaryText(w io.Writer, s orchestrator.Summary) {
	for _, f := range s.Files {
		if f.Failed() {
			fmt.Fprintf(w, "✗ %s: %s\n", f.Path, f.Err)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %d game(s), %d event(s)", f.Path, f.Games, f.Events)
		if n := f.IssueTotal(); n > 0 {
			fmt.Fprintf(w, ", %d issue(s)", n)
		}
		if f.Duplicates > 0 {
			fmt.Fprintf(w, ", %d duplicate(s) skipped", f.Duplicates)
		}
		fmt.Fprintln(w)
	}

	t := s.Totals
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d parsed, %d failed\n", t.Files, s.Failures)
	fmt.Fprintf(w, "Games: %d  Events: %d", t.Games, t.Events)
	if t.Duplicates > 0 {
		fmt.Fprintf(w, "  Duplicates skipped: %d", t.Duplicates)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Issues: %d malformed, %d unrecognized, %d inconsistent, %d parse errors, %d orphaned\n",
		t.Malformed, t.Unrecognized, t.Inconsistent, t.ParseErrors, t.Orphans)
	if s.Cache != nil {
		fmt.Fprintf(w, "Play cache: %d hits, %d misses, %d coalesced\n", s.Cache.Hits, s.Cache.Misses, s.Cache.Coalesced)
	}
}

// cmdContext returns the command context, or Background when the command
// was executed without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
