package orchestrator

import (
	"github.com/roach88/scorebook/internal/dataset"
	"github.com/roach88/scorebook/internal/game"
	"github.com/roach88/scorebook/internal/lookup"
)

// FileSummary reports what one input file produced. A failed file has Err
// set and contributes no rows.
type FileSummary struct {
	Path         string `json:"path"`
	Account      string `json:"account"`
	Games        int    `json:"games"`
	Events       int    `json:"events"`
	Orphans      int    `json:"orphans"`
	Malformed    int    `json:"malformed"`
	Unrecognized int    `json:"unrecognized"`
	Inconsistent int    `json:"inconsistent"`
	ParseErrors  int    `json:"parse_errors"`
	// Duplicates counts games skipped because an earlier file already
	// held their id. They are not issues.
	Duplicates int    `json:"duplicates"`
	Err        string `json:"error,omitempty"`
}

// Failed reports whether the file was discarded.
func (f FileSummary) Failed() bool {
	return f.Err != ""
}

// IssueTotal is the number of recoverable problems found in the file.
func (f FileSummary) IssueTotal() int {
	return f.Orphans + f.Malformed + f.Unrecognized + f.Inconsistent + f.ParseErrors
}

func (f *FileSummary) addGame(g *game.Game) {
	f.Games++
	f.Events += len(g.Events)
	f.Malformed += g.IssueCount(game.IssueMalformedRecord)
	f.Unrecognized += g.IssueCount(game.IssueUnrecognizedToken) + g.IssueCount(game.IssueUnknownRecord)
	f.Inconsistent += g.IssueCount(game.IssueStateInconsistency)
	f.ParseErrors += g.IssueCount(game.IssueParseError)
}

// Totals sums the file summaries of successful files.
type Totals struct {
	Files        int `json:"files"`
	Games        int `json:"games"`
	Events       int `json:"events"`
	Orphans      int `json:"orphans"`
	Malformed    int `json:"malformed"`
	Unrecognized int `json:"unrecognized"`
	Inconsistent int `json:"inconsistent"`
	ParseErrors  int `json:"parse_errors"`
	Duplicates   int `json:"duplicates"`
}

// Summary is the per-run report.
type Summary struct {
	Files    []FileSummary `json:"files"`
	Failures int           `json:"failures"`
	Totals   Totals        `json:"totals"`
	// Cache reports play parser cache activity when the parser exposes it.
	Cache *lookup.Stats `json:"cache,omitempty"`
}

func summarize(files []FileSummary) Summary {
	s := Summary{Files: files}
	for _, f := range files {
		if f.Failed() {
			s.Failures++
			continue
		}
		s.Totals.Files++
		s.Totals.Games += f.Games
		s.Totals.Events += f.Events
		s.Totals.Orphans += f.Orphans
		s.Totals.Malformed += f.Malformed
		s.Totals.Unrecognized += f.Unrecognized
		s.Totals.Inconsistent += f.Inconsistent
		s.Totals.ParseErrors += f.ParseErrors
		s.Totals.Duplicates += f.Duplicates
	}
	return s
}

// Result is the output of one run.
type Result struct {
	RunID   string          `json:"run_id"`
	Tables  *dataset.Tables `json:"-"`
	Summary Summary         `json:"summary"`
}

// Fingerprint hashes the result tables.
func (r *Result) Fingerprint() (string, error) {
	return r.Tables.Fingerprint()
}
