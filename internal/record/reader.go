package record

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"
)

// DefaultMaxLineBytes bounds a single input line.
const DefaultMaxLineBytes = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type readConfig struct {
	maxLineBytes int
	stopOnError  bool
}

// ReadOption configures Read and ReadBytes.
type ReadOption func(*readConfig)

// WithMaxLineBytes sets the longest accepted line. Longer lines end the
// sequence with bufio.ErrTooLong.
func WithMaxLineBytes(n int) ReadOption {
	return func(c *readConfig) {
		if n > 0 {
			c.maxLineBytes = n
		}
	}
}

// WithStopOnError ends the sequence after the first malformed line instead
// of continuing with the next one.
func WithStopOnError(stop bool) ReadOption {
	return func(c *readConfig) {
		c.stopOnError = stop
	}
}

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{maxLineBytes: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Read returns the records of r in file order.
//
// A malformed line yields a zero Record carrying only its line number,
// paired with a *MalformedRecordError; iteration then continues unless
// WithStopOnError(true) was given. An I/O error from r is yielded once and
// ends the sequence.
//
// The sequence consumes r, so it can be ranged over only once. Use
// ReadBytes for a restartable sequence.
func Read(r io.Reader, opts ...ReadOption) iter.Seq2[Record, error] {
	cfg := newReadConfig(opts)
	return func(yield func(Record, error) bool) {
		scanRecords(r, cfg, yield)
	}
}

// ReadBytes returns a restartable sequence over data: every range starts
// again at the first byte.
func ReadBytes(data []byte, opts ...ReadOption) iter.Seq2[Record, error] {
	cfg := newReadConfig(opts)
	return func(yield func(Record, error) bool) {
		scanRecords(bytes.NewReader(data), cfg, yield)
	}
}

func scanRecords(r io.Reader, cfg readConfig, yield func(Record, error) bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), cfg.maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if lineNo == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		rec, err := ParseLine(string(line), lineNo)
		if err != nil {
			if !yield(Record{Line: lineNo}, err) || cfg.stopOnError {
				return
			}
			continue
		}
		if !yield(rec, nil) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		yield(Record{Line: lineNo + 1}, err)
	}
}

// ParseLine tokenizes a single line. lineNo is recorded on the result and on
// any error.
//
// Quotes inside an unquoted field are kept as text, as in
// `info,umphome,o"neij901`. A field that opens a quote and never closes it
// is malformed.
func ParseLine(line string, lineNo int) (Record, error) {
	if unterminatedQuote(line) {
		return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Err: errUnterminatedQuote}
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	fields, err := cr.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Err: err}
	}
	// A quoted field containing a raw newline cannot occur on one line; a
	// second record means the line held an unterminated construct.
	if _, extra := cr.Read(); extra != io.EOF {
		return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Err: errors.New("unexpected trailing data")}
	}

	rec := Record{Tag: strings.TrimSpace(fields[0]), Line: lineNo}
	if len(fields) > 1 {
		rec.Fields = fields[1:]
	}
	return rec, nil
}

var errUnterminatedQuote = errors.New("unterminated quoted field")

// unterminatedQuote reports whether a field of line starts with a quote
// that is never closed. A doubled quote inside a quoted field is an escaped
// quote, not a close.
func unterminatedQuote(line string) bool {
	i := 0
	for i <= len(line) {
		if i < len(line) && line[i] == '"' {
			i++
			closed := false
			for i < len(line) {
				if line[i] == '"' {
					if i+1 < len(line) && line[i+1] == '"' {
						i += 2
						continue
					}
					closed = true
					i++
					break
				}
				i++
			}
			if !closed {
				return true
			}
		}
		next := strings.IndexByte(line[i:], ',')
		if next < 0 {
			return false
		}
		i += next + 1
	}
	return false
}

// Collect drains seq, returning the good records and the errors separately.
func Collect(seq iter.Seq2[Record, error]) ([]Record, []error) {
	var (
		records []Record
		errs    []error
	)
	for rec, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}
