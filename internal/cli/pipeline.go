package cli

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebook/internal/config"
	"github.com/roach88/scorebook/internal/input"
	"github.com/roach88/scorebook/internal/lookup"
	"github.com/roach88/scorebook/internal/orchestrator"
	"github.com/roach88/scorebook/internal/play"
)

// PipelineOptions holds the flags shared by commands that run the parser.
type PipelineOptions struct {
	Config   string
	Workers  int
	Strict   bool
	FailFast bool

	// RunID allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunID orchestrator.RunIDGenerator
}

func (p *PipelineOptions) register(cmd *cobra.Command, withWorkers bool) {
	cmd.Flags().StringVar(&p.Config, "config", "", "path to a CUE configuration file")
	cmd.Flags().BoolVar(&p.Strict, "strict", false, "discard any file that reports an issue")
	cmd.Flags().BoolVar(&p.FailFast, "fail-fast", false, "stop at the first failed file")
	if withWorkers {
		cmd.Flags().IntVar(&p.Workers, "workers", 0, "number of files parsed in parallel (default GOMAXPROCS)")
	}
}

// loadConfig reads the configuration file and applies flag overrides.
func (p *PipelineOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(p.Config)
	if err != nil {
		return config.Config{}, err
	}

	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed && f.Value.Type() == "int" {
		cfg.Workers = p.Workers
		if cfg.Workers == 0 {
			cfg.Workers = runtime.GOMAXPROCS(0)
		}
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = p.Strict
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// discover lists the event files under root, play-by-play accounts before
// deduced ones.
func discover(root string, cfg config.Config) ([]input.File, error) {
	files, err := input.DiscoverAccounts(root, cfg.Input.Patterns, cfg.Input.DeducedPatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering input: %w", err)
	}
	return files, nil
}

// newOrchestrator wires a parser cache and identifier registry sized from
// the configuration.
func (p *PipelineOptions) newOrchestrator(cfg config.Config, workers int, logger *slog.Logger) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithWorkers(workers),
		orchestrator.WithParser(play.NewParser(play.WithCacheSize(cfg.CacheSize))),
		orchestrator.WithRegistry(lookup.NewRegistry(cfg.CacheSize)),
		orchestrator.WithStrict(cfg.Strict),
		orchestrator.WithFailFast(p.FailFast),
		orchestrator.WithLogger(logger),
	}
	if p.RunID != nil {
		opts = append(opts, orchestrator.WithRunID(p.RunID))
	}
	return orchestrator.New(opts...)
}
