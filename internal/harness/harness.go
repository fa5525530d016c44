package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/scorebook/internal/input"
	"github.com/roach88/scorebook/internal/orchestrator"
	"github.com/roach88/scorebook/internal/store"
	"github.com/roach88/scorebook/internal/testutil"
)

// inlineFile is the name the scenario's inline records are written under.
const inlineFile = "scenario.EVN"

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Write inline records to a temporary event file
// 2. Replay every event file with a fixed run ID
// 3. Write the tables to the store
// 4. Check play expectations and assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "scorebook-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	files, err := scenarioFiles(dir, scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	o := orchestrator.New(
		orchestrator.WithWorkers(1),
		orchestrator.WithRunID(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		orchestrator.WithStrict(scenario.Strict),
		orchestrator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)
	res, err := o.Run(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("failed to replay scenario: %w", err)
	}
	if err := st.Write(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to store tables: %w", err)
	}

	result := NewResult()
	result.RunID = res.RunID
	result.Summary = res.Summary
	result.Games = res.Tables.Games
	for _, row := range res.Tables.Events {
		result.AddEventTrace(row)
	}

	checkPlays(scenario.Plays, result)

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// scenarioFiles lists the event files to replay, inline records first.
// Files named like deduced accounts are read as deduced.
func scenarioFiles(dir string, scenario *Scenario) ([]input.File, error) {
	var files []input.File
	if scenario.Records != "" {
		path := filepath.Join(dir, inlineFile)
		if err := os.WriteFile(path, []byte(scenario.Records), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write inline records: %w", err)
		}
		files = append(files, input.File{Path: path, Size: int64(len(scenario.Records))})
	}
	for _, p := range scenario.Files {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("event file %s: %w", p, err)
		}
		f := input.File{Path: p, Size: info.Size()}
		if input.Matches(filepath.Base(p), input.DeducedPatterns) {
			f.Account = input.Deduced
		}
		files = append(files, f)
	}
	return files, nil
}

// checkPlays validates each play step against the trace.
func checkPlays(steps []PlayStep, result *Result) {
	for i, step := range steps {
		var matches []TraceEvent
		for _, event := range result.Trace {
			if event.Seq == step.Seq && (step.Game == "" || event.GameID == step.Game) {
				matches = append(matches, event)
			}
		}

		switch len(matches) {
		case 0:
			result.AddError(fmt.Sprintf("plays[%d]: no play with seq %d", i, step.Seq))
			continue
		case 1:
		default:
			result.AddError(fmt.Sprintf("plays[%d]: seq %d matches %d games, set game", i, step.Seq, len(matches)))
			continue
		}

		event := matches[0]
		for _, key := range sortedKeys(step.Expect) {
			want := step.Expect[key]
			got, ok := event.Fields[key]
			if !ok {
				result.AddError(fmt.Sprintf("plays[%d]: unknown column %q", i, key))
				continue
			}
			if !stateValuesEqual(want, got) {
				result.AddError(fmt.Sprintf("plays[%d] (%s #%d %s): %s = %v, expected %v",
					i, event.GameID, event.Seq, event.Play, key, got, want))
			}
		}
	}
}
