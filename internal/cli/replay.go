package cli

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	PipelineOptions
	WorkerCounts []int
}

// ReplayRunResult holds the outcome of one replay.
type ReplayRunResult struct {
	RunID       string `json:"run_id"`
	Workers     int    `json:"workers"`
	Fingerprint string `json:"fingerprint"`
	Games       int    `json:"games"`
	Events      int    `json:"events"`
	Failures    int    `json:"failures"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs          []ReplayRunResult `json:"runs"`
	Deterministic bool              `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <input>",
		Short: "Parse input at several worker counts and verify determinism",
		Long: `Parse the same input once per worker count and compare the table
fingerprints. Every run uses its own play cache, so cache hits and
coalescing cannot hide a difference.

Exit codes:
  0 - All runs produced identical tables
  1 - Fingerprints differ
  2 - Command error (input not found, bad configuration, etc.)

Examples:
  scorebook replay ./events
  scorebook replay ./events --workers 1,2,8
  scorebook replay ./events --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	opts.register(cmd, false)
	cmd.Flags().IntSliceVar(&opts.WorkerCounts, "workers", nil, "worker counts to compare (default 1 and GOMAXPROCS)")

	return cmd
}

func runReplay(opts *ReplayOptions, inputPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	counts := opts.WorkerCounts
	if len(counts) == 0 {
		counts = []int{1, runtime.GOMAXPROCS(0)}
	}
	for _, n := range counts {
		if n < 1 {
			return commandError(formatter, ErrCodeConfig, fmt.Sprintf("worker count must be at least 1, got %d", n), nil)
		}
	}

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, "invalid configuration", err)
	}

	files, err := discover(inputPath, cfg)
	if err != nil {
		return commandError(formatter, inputErrorCode(err), "no input", err)
	}
	formatter.VerboseLog("Replaying %d event file(s) with worker counts %v", len(files), counts)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runs := make([]ReplayRunResult, len(counts))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range counts {
		g.Go(func() error {
			res, err := opts.newOrchestrator(cfg, n, logger).Run(gctx, files)
			if err != nil {
				return fmt.Errorf("replay with %d worker(s): %w", n, err)
			}
			fingerprint, err := res.Fingerprint()
			if err != nil {
				return fmt.Errorf("replay with %d worker(s): %w", n, err)
			}
			runs[i] = ReplayRunResult{
				RunID:       res.RunID,
				Workers:     n,
				Fingerprint: fingerprint,
				Games:       res.Summary.Totals.Games,
				Events:      res.Summary.Totals.Events,
				Failures:    res.Summary.Failures,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = formatter.Error(ErrCodeGeneric, "replay aborted", err.Error())
		return WrapExitError(ExitFailure, "replay aborted", err)
	}

	result := ReplayResult{Runs: runs, Deterministic: true}
	for _, r := range runs[1:] {
		if r.Fingerprint != runs[0].Fingerprint {
			result.Deterministic = false
		}
	}

	if opts.Format == "json" {
		var failure *CLIError
		if !result.Deterministic {
			failure = &CLIError{Code: ErrCodeDeterminism, Message: "determinism verification failed"}
		}
		if err := formatter.Report("", result, failure); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%s: determinism verification failed", ErrCodeDeterminism))
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", len(result.Runs))
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if run.Fingerprint != result.Runs[0].Fingerprint {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Workers: %d\n", status, run.Workers)
		if formatter.Verbose {
			fmt.Fprintf(w, "  Run: %s\n", run.RunID)
			fmt.Fprintf(w, "  Fingerprint: %s\n", run.Fingerprint)
		}
		fmt.Fprintf(w, "  Games: %d, events: %d, failed files: %d\n", run.Games, run.Events, run.Failures)
	}
	fmt.Fprintln(w)

	if result.Deterministic {
		fmt.Fprintln(w, "✓ All runs produced identical tables")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
