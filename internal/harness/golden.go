package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/scorebook/internal/canonical"
)

// snapshotColumns are the event columns recorded in golden snapshots.
var snapshotColumns = []string{
	"batter",
	"end_first",
	"end_second",
	"end_third",
	"half",
	"home_score",
	"inning",
	"kind",
	"outs_recorded",
	"play",
	"rbi",
	"runs_scored",
	"visitor_score",
}

// TraceSnapshot captures the games and plays of a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	RunID        string
	Result       *Result
}

// Canonical implements canonical.Canonicaler.
func (s *TraceSnapshot) Canonical() map[string]any {
	games := make([]any, len(s.Result.Games))
	for i, g := range s.Result.Games {
		games[i] = g.Canonical()
	}

	trace := make([]any, len(s.Result.Trace))
	for i, event := range s.Result.Trace {
		m := map[string]any{
			"game_id": event.GameID,
			"seq":     event.Seq,
		}
		for _, col := range snapshotColumns {
			m[col] = event.Fields[col]
		}
		trace[i] = m
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"games":         games,
		"trace":         trace,
	}
	if s.RunID != "" {
		out["run_id"] = s.RunID
	}
	return out
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := &TraceSnapshot{
		ScenarioName: scenario.Name,
		RunID:        result.RunID,
		Result:       result,
	}
	return assertSnapshot(t, scenario.Name, snapshot)
}

// AssertGolden compares an existing result against a golden file.
// The snapshot omits the run ID so results from any run compare equal.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := &TraceSnapshot{
		ScenarioName: scenarioName,
		Result:       result,
	}
	return assertSnapshot(t, scenarioName, snapshot)
}

// Snapshot renders the golden form of a result. An empty runID leaves the
// run ID out.
func Snapshot(scenarioName, runID string, result *Result) ([]byte, error) {
	return canonical.Marshal(&TraceSnapshot{
		ScenarioName: scenarioName,
		RunID:        runID,
		Result:       result,
	})
}

func assertSnapshot(t *testing.T, name string, snapshot *TraceSnapshot) error {
	t.Helper()

	data, err := Snapshot(snapshot.ScenarioName, snapshot.RunID, snapshot.Result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
