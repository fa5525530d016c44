package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/scorebook/internal/canonical"
	"github.com/roach88/scorebook/internal/dataset"
)

// Verification is the outcome of recomputing a run's fingerprint from the
// stored rows.
type Verification struct {
	RunID    string
	Expected string
	Actual   string
}

// OK reports whether the stored rows hash to the run's fingerprint.
func (v Verification) OK() bool {
	return v.Expected == v.Actual
}

// Fingerprint hashes every stored row the same way dataset.Tables does, so
// a database written by one run over a fixed input has the fingerprint of
// that run's tables.
func (t *tableDB) Fingerprint(ctx context.Context) (string, error) {
	doc := make(map[string]any, len(dataset.TableNames))
	for _, name := range dataset.TableNames {
		rows, err := t.readTable(ctx, name)
		if err != nil {
			return "", fmt.Errorf("fingerprint: %w", err)
		}
		doc[name] = rows
	}
	return canonical.Hash(canonical.DomainTables, doc)
}

// VerifyRun compares the stored fingerprint of runID with one recomputed
// from the rows. Rows written by other runs over different input make the
// check fail.
func (t *tableDB) VerifyRun(ctx context.Context, runID string) (Verification, error) {
	rec, err := t.ReadRun(ctx, runID)
	if err != nil {
		return Verification{}, err
	}
	actual, err := t.Fingerprint(ctx)
	if err != nil {
		return Verification{}, err
	}
	return Verification{RunID: runID, Expected: rec.Fingerprint, Actual: actual}, nil
}

// readTable returns a table's rows as canonical maps in key order.
func (t *tableDB) readTable(ctx context.Context, name string) ([]any, error) {
	layout := layouts[name]
	order := make([]string, len(layout.orderBy))
	for i, c := range layout.orderBy {
		order[i] = c
		if c == "game_id" {
			order[i] += t.binary
		}
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(layout.names(), ", "), name, strings.Join(order, ", "))

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		row, err := scanGeneric(rows, layout.columns)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	return out, nil
}

func scanGeneric(rows *sql.Rows, cols []column) (map[string]any, error) {
	dest := make([]any, len(cols))
	for i, c := range cols {
		switch c.kind {
		case colText:
			dest[i] = new(string)
		case colInt:
			dest[i] = new(int)
		case colBool:
			dest[i] = new(bool)
		case colNullInt:
			dest[i] = new(sql.NullInt64)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(cols))
	for i, c := range cols {
		switch v := dest[i].(type) {
		case *string:
			row[c.name] = *v
		case *int:
			row[c.name] = *v
		case *bool:
			row[c.name] = *v
		case *sql.NullInt64:
			var p *int
			if v.Valid {
				n := int(v.Int64)
				p = &n
			}
			row[c.name] = p
		}
	}
	return row, nil
}
