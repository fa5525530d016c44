package store

import (
	"context"
	"fmt"

	"github.com/roach88/scorebook/internal/config"
	"github.com/roach88/scorebook/internal/orchestrator"
)

// Sink receives the result of a run.
type Sink interface {
	Write(ctx context.Context, res *orchestrator.Result) error
	Close() error
}

var (
	_ Sink = (*Store)(nil)
	_ Sink = (*PostgresStore)(nil)
	_ Sink = (*JSONLSink)(nil)
)

// NewSink opens the sink selected by out.Format.
func NewSink(ctx context.Context, out config.Output) (Sink, error) {
	if err := out.Validate(); err != nil {
		return nil, err
	}
	var (
		sink Sink
		err  error
	)
	switch out.Format {
	case config.FormatSQLite:
		sink, err = Open(out.Path)
	case config.FormatPostgres:
		sink, err = OpenPostgres(ctx, out.DSN)
	case config.FormatJSONL:
		sink, err = NewJSONLSink(out.Path)
	default:
		return nil, fmt.Errorf("unknown output format %q", out.Format)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}
