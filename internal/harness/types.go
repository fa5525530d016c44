package harness

import (
	"github.com/roach88/scorebook/internal/dataset"
	"github.com/roach88/scorebook/internal/orchestrator"
)

// TraceEvent is one replayed play in the order the events table holds it.
type TraceEvent struct {
	GameID string `json:"game_id"`
	Seq    int    `json:"seq"`
	Batter string `json:"batter"`
	Play   string `json:"play"`
	Kind   string `json:"kind"`

	// Fields holds every column of the event row, keyed like the events
	// table. Used for subset matching.
	Fields map[string]any `json:"-"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every play expectation and assertion matched.
	Pass bool `json:"pass"`

	// RunID is the run identifier the scenario was replayed under.
	RunID string `json:"run_id"`

	// Trace contains every replayed play, sorted by game and sequence.
	Trace []TraceEvent `json:"trace"`

	// Games contains the games table.
	Games []dataset.GameRow `json:"games"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Summary is the run report, used by issue_count assertions.
	Summary orchestrator.Summary `json:"summary"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEventTrace adds an event row to the trace.
func (r *Result) AddEventTrace(row dataset.EventRow) {
	r.Trace = append(r.Trace, TraceEvent{
		GameID: row.GameID,
		Seq:    row.Seq,
		Batter: row.Batter,
		Play:   row.Play,
		Kind:   row.Kind,
		Fields: row.Canonical(),
	})
}

// IssueCount returns the run total for one issue name as used by
// issue_count assertions. ok is false for an unknown name.
func (r *Result) IssueCount(name string) (n int, ok bool) {
	t := r.Summary.Totals
	switch name {
	case IssueOrphans:
		return t.Orphans, true
	case IssueMalformed:
		return t.Malformed, true
	case IssueUnrecognized:
		return t.Unrecognized, true
	case IssueInconsistent:
		return t.Inconsistent, true
	case IssueParseErrors:
		return t.ParseErrors, true
	case IssueDuplicates:
		return t.Duplicates, true
	case IssueFailures:
		return r.Summary.Failures, true
	}
	return 0, false
}

// Issue names accepted by issue_count assertions. They match the keys of
// the run summary totals.
const (
	IssueOrphans      = "orphans"
	IssueMalformed    = "malformed"
	IssueUnrecognized = "unrecognized"
	IssueInconsistent = "inconsistent"
	IssueParseErrors  = "parse_errors"
	IssueDuplicates   = "duplicates"
	IssueFailures     = "failures"
)

var issueNames = []string{
	IssueOrphans,
	IssueMalformed,
	IssueUnrecognized,
	IssueInconsistent,
	IssueParseErrors,
	IssueDuplicates,
	IssueFailures,
}
