package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/scorebook/internal/dataset"
	"github.com/roach88/scorebook/internal/orchestrator"
)

// tableDB holds the SQL shared by the SQLite and Postgres sinks.
type tableDB struct {
	db          *sql.DB
	placeholder func(n int) string
	// binary is appended to text key columns in ORDER BY so both databases
	// compare them bytewise.
	binary string
}

// Write stores every table of res and its run record in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - rows already present are
// silently kept.
func (t *tableDB) Write(ctx context.Context, res *orchestrator.Result) error {
	fingerprint, err := res.Tables.Fingerprint()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	summary, err := marshalSummary(res.Summary)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, name := range dataset.TableNames {
		if err := t.writeTable(ctx, tx, res.Tables, name); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, t.rebind(`
		INSERT INTO ingest_runs (run_id, fingerprint, games, events, failures, summary)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO NOTHING
	`),
		res.RunID,
		fingerprint,
		res.Summary.Totals.Games,
		res.Summary.Totals.Events,
		res.Summary.Failures,
		summary,
	)
	if err != nil {
		return fmt.Errorf("write run: insert run record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func (t *tableDB) writeTable(ctx context.Context, tx *sql.Tx, tables *dataset.Tables, name string) error {
	rows, err := tables.Rows(name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	layout := layouts[name]
	cols := layout.names()

	stmt, err := tx.PrepareContext(ctx, insertStatement(name, cols, t.placeholder))
	if err != nil {
		return fmt.Errorf("prepare %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i, row := range rows {
		values := row.Canonical()
		for j, c := range cols {
			args[j] = values[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", name, i, err)
		}
	}
	return nil
}

func insertStatement(table string, cols []string, placeholder func(int) string) string {
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// rebind rewrites ? placeholders for the target database.
func (t *tableDB) rebind(query string) string {
	if t.placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(t.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
