package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/scorebook/internal/canonical"
	"github.com/roach88/scorebook/internal/dataset"
	"github.com/roach88/scorebook/internal/orchestrator"
)

// SummaryFile is the name of the run summary written by the JSONL sink.
const SummaryFile = "summary.json"

// JSONLSink writes one <table>.jsonl file per table plus summary.json into
// a directory. Each write replaces the previous files.
type JSONLSink struct {
	dir string
}

// NewJSONLSink creates dir if needed and returns a sink writing into it.
func NewJSONLSink(dir string) (*JSONLSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &JSONLSink{dir: dir}, nil
}

type runFile struct {
	RunID       string               `json:"run_id"`
	Fingerprint string               `json:"fingerprint"`
	Summary     orchestrator.Summary `json:"summary"`
}

// Write replaces every table file and the summary.
func (s *JSONLSink) Write(ctx context.Context, res *orchestrator.Result) error {
	for _, name := range dataset.TableNames {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := res.Tables.Rows(name)
		if err != nil {
			return err
		}
		if err := s.writeTable(name, rows); err != nil {
			return err
		}
	}

	fingerprint, err := res.Tables.Fingerprint()
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	data, err := json.MarshalIndent(runFile{RunID: res.RunID, Fingerprint: fingerprint, Summary: res.Summary}, "", "  ")
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.dir, SummaryFile), func(w *bufio.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

func (s *JSONLSink) writeTable(name string, rows []canonical.Canonicaler) error {
	return writeFileAtomic(filepath.Join(s.dir, name+".jsonl"), func(w *bufio.Writer) error {
		for i, row := range rows {
			data, err := canonical.Marshal(row)
			if err != nil {
				return fmt.Errorf("%s row %d: %w", name, i, err)
			}
			w.Write(data)
			w.WriteByte('\n')
		}
		return nil
	})
}

// Close is a no-op; files are closed after each write.
func (s *JSONLSink) Close() error {
	return nil
}

// writeFileAtomic writes through a temporary file renamed over path.
func writeFileAtomic(path string, fill func(*bufio.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
