package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/scorebook/internal/dataset"
	"github.com/roach88/scorebook/internal/orchestrator"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is a stored ingest_runs row.
type RunRecord struct {
	RunID       string
	Fingerprint string
	Games       int
	Events      int
	Failures    int
	Summary     orchestrator.Summary
}

// ReadRun returns the record of one run.
func (t *tableDB) ReadRun(ctx context.Context, runID string) (RunRecord, error) {
	var (
		rec     RunRecord
		summary string
	)
	err := t.db.QueryRowContext(ctx, t.rebind(`
		SELECT run_id, fingerprint, games, events, failures, summary
		FROM ingest_runs
		WHERE run_id = ?
	`), runID).Scan(&rec.RunID, &rec.Fingerprint, &rec.Games, &rec.Events, &rec.Failures, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run: %w", err)
	}
	rec.Summary, err = unmarshalSummary(summary)
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run: %w", err)
	}
	return rec, nil
}

// ReadGames returns every stored game ordered by game id.
//
// Returns an empty slice (not nil) if no games are stored.
func (t *tableDB) ReadGames(ctx context.Context) ([]dataset.GameRow, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT game_id, date, site, visiting_team, home_team, home_bats_first,
		       visitor_score, home_score, events, issues
		FROM games
		ORDER BY game_id`+t.binary+` ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []dataset.GameRow{}
	for rows.Next() {
		var g dataset.GameRow
		if err := rows.Scan(&g.GameID, &g.Date, &g.Site, &g.VisitingTeam, &g.HomeTeam, &g.HomeBatsFirst,
			&g.VisitorScore, &g.HomeScore, &g.Events, &g.Issues); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// ReadEvents returns the events of one game ordered by sequence.
//
// Returns an empty slice (not nil) if the game has no events.
func (t *tableDB) ReadEvents(ctx context.Context, gameID string) ([]dataset.EventRow, error) {
	cols := layouts[dataset.TableEvents].names()
	rows, err := t.db.QueryContext(ctx, t.rebind(fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE game_id = ?
		ORDER BY seq ASC
	`, strings.Join(cols, ", "))), gameID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []dataset.EventRow{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (dataset.EventRow, error) {
	var e dataset.EventRow
	err := rows.Scan(
		&e.GameID, &e.Seq, &e.Inning, &e.Half, &e.BattingSide,
		&e.Batter, &e.Pitcher, &e.ResponsiblePitcher, &e.Count, &e.Pitches,
		&e.PitchCount, &e.Play, &e.Kind, &e.PlateAppearance, &e.Hit,
		&e.FieldingSequence, &e.Modifiers, &e.Contact, &e.Location,
		&e.OutsBefore, &e.OutsRecorded, &e.RunsScored, &e.RBI,
		&e.StartFirst, &e.StartSecond, &e.StartThird,
		&e.EndFirst, &e.EndSecond, &e.EndThird,
		&e.VisitorScore, &e.HomeScore, &e.StateInconsistent,
		&e.ParseError, &e.Unrecognized,
	)
	if err != nil {
		return dataset.EventRow{}, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

// CountRows returns the number of stored rows per table.
func (t *tableDB) CountRows(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(dataset.TableNames))
	for _, name := range dataset.TableNames {
		var n int
		if err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

// Query runs a read-only query. Placeholders are written as ? and rewritten
// for the backend.
func (t *tableDB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.db.QueryContext(ctx, t.rebind(query), args...)
}
