// Package orchestrator runs the parsing pipeline over many files at once.
//
// Each file is read fully, split into games and replayed sequentially by one
// worker; files are spread over a fixed pool of workers. A file that fails
// contributes no rows and is reported in the summary. Games of the
// remaining files are merged with play-by-play files before deduced ones,
// then in input order, and sorted, so the result does not depend on the
// number of workers or on scheduling. A game whose id was already merged
// is skipped and counted as a duplicate.
package orchestrator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/scorebook/internal/dataset"
	"github.com/roach88/scorebook/internal/game"
	"github.com/roach88/scorebook/internal/input"
	"github.com/roach88/scorebook/internal/lookup"
	"github.com/roach88/scorebook/internal/play"
	"github.com/roach88/scorebook/internal/record"
)

// ErrNoInputFiles is returned by Run when given no files.
var ErrNoInputFiles = input.ErrNoInputFiles

// ErrStrict marks a file rejected because strict mode saw an issue in it.
var ErrStrict = errors.New("file has issues")

// statser is implemented by resolvers that report cache activity.
type statser interface {
	Stats() lookup.Stats
}

// Orchestrator runs the pipeline. It is safe to call Run repeatedly; the
// parser cache is shared between runs.
type Orchestrator struct {
	workers  int
	parser   game.Resolver
	runIDs   RunIDGenerator
	failFast bool
	strict   bool
	registry *lookup.Registry
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the number of files processed at once. Values below 1
// select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// WithParser sets the play resolver shared by all workers. It must be safe
// for concurrent use.
func WithParser(p game.Resolver) Option {
	return func(o *Orchestrator) {
		o.parser = p
	}
}

// WithRunID sets the run ID generator.
func WithRunID(gen RunIDGenerator) Option {
	return func(o *Orchestrator) {
		o.runIDs = gen
	}
}

// WithFailFast stops the run at the first failed file.
func WithFailFast(failFast bool) Option {
	return func(o *Orchestrator) {
		o.failFast = failFast
	}
}

// WithStrict fails any file in which a game recorded an issue.
func WithStrict(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// WithRegistry canonicalizes identifiers through reg.
func WithRegistry(reg *lookup.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = reg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// New creates an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runIDs: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.parser == nil {
		o.parser = play.NewParser()
	}
	return o
}

// Workers returns the size of the worker pool.
func (o *Orchestrator) Workers() int {
	return o.workers
}

type fileResult struct {
	games   []*game.Game
	summary FileSummary
}

// Run processes files and returns the merged tables. Per-file failures are
// reported in the summary; Run itself fails only for an empty file list,
// a cancelled ctx, or the first failed file under WithFailFast.
func (o *Orchestrator) Run(ctx context.Context, files []input.File) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrNoInputFiles
	}
	files = slices.Clone(files)
	slices.SortStableFunc(files, func(a, b input.File) int {
		return cmp.Compare(a.Account, b.Account)
	})
	runID := o.runIDs.Generate()
	logger := o.logger.With("run", runID)
	logger.Info("run started", "files", len(files), "workers", o.workers)
	started := time.Now()

	machineOpts := []game.Option{game.WithLogger(logger)}
	if o.registry != nil {
		machineOpts = append(machineOpts, game.WithRegistry(o.registry))
	}
	machine := game.NewMachine(o.parser, machineOpts...)

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, f := range files {
		g.Go(func() error {
			res := o.processFile(gctx, machine, f, logger)
			results[i] = res
			if res.summary.Failed() && o.failFast {
				return fmt.Errorf("%s: %s", f.Path, res.summary.Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tables := &dataset.Tables{}
	summaries := make([]FileSummary, len(files))
	mergedFrom := make(map[string]string)
	for i, res := range results {
		fs := res.summary
		for _, g := range res.games {
			if first, dup := mergedFrom[g.ID]; dup {
				fs.Duplicates++
				logger.Warn("duplicate game skipped", "game", g.ID, "file", fs.Path, "first", first)
				continue
			}
			mergedFrom[g.ID] = fs.Path
			fs.addGame(g)
			tables.AppendGame(g)
		}
		summaries[i] = fs
	}
	tables.Sort()

	summary := summarize(summaries)
	if s, ok := o.parser.(statser); ok {
		stats := s.Stats()
		summary.Cache = &stats
	}
	logger.Info("run finished",
		"games", summary.Totals.Games,
		"events", summary.Totals.Events,
		"failures", summary.Failures,
		"elapsed", time.Since(started))

	return &Result{RunID: runID, Tables: tables, Summary: summary}, nil
}

// processFile replays every game of one file. Any error or panic discards
// the file's rows.
func (o *Orchestrator) processFile(ctx context.Context, m *game.Machine, f input.File, logger *slog.Logger) (res fileResult) {
	account := f.Account.String()
	res.summary = FileSummary{Path: f.Path, Account: account}
	logger = logger.With("file", f.Path)

	defer func() {
		if r := recover(); r != nil {
			res.games = nil
			res.summary = FileSummary{Path: f.Path, Account: account, Err: fmt.Sprintf("panic: %v", r)}
			logger.Error("file failed", "error", res.summary.Err)
		}
	}()

	games, err := o.replayFile(ctx, m, f, &res.summary, logger)
	if err != nil {
		res.summary = FileSummary{Path: f.Path, Account: account, Err: err.Error()}
		logger.Error("file failed", "error", err)
		return res
	}
	res.games = games
	logger.Debug("file done", "games", len(games))
	return res
}

func (o *Orchestrator) replayFile(ctx context.Context, m *game.Machine, f input.File, fs *FileSummary, logger *slog.Logger) ([]*game.Game, error) {
	data, err := f.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var games []*game.Game
	for gr, err := range game.Split(record.ReadBytes(data)) {
		if err != nil {
			if errors.Is(err, game.ErrOrphanRecords) {
				fs.Orphans += len(gr.Records) + len(gr.Malformed)
				logger.Warn("records outside any game", "error", err)
				continue
			}
			return nil, &input.FileIOError{Path: f.Path, Op: "scan", Err: err}
		}
		g, err := m.Replay(ctx, gr)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", gr.ID, err)
		}
		if o.strict && len(g.Issues) > 0 {
			return nil, fmt.Errorf("game %s: %w: %s", g.ID, ErrStrict, g.Issues[0])
		}
		games = append(games, g)
	}
	if o.strict && fs.Orphans > 0 {
		return nil, fmt.Errorf("%w: %d records outside any game", ErrStrict, fs.Orphans)
	}
	return games, nil
}
