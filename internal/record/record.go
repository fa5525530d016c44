// Package record tokenizes game-log text into tagged records.
//
// Every non-blank input line becomes one Record: the first comma-separated
// field is the tag (id, info, start, sub, play, com, data, ...), the rest are
// its fields. Quoting follows CSV rules and is resolved per line, so a broken
// line never swallows the lines after it. The reader attaches no meaning to
// tags; unknown tags pass through untouched.
package record

import (
	"errors"
	"fmt"
)

// Record is one tokenized input line.
type Record struct {
	Tag    string
	Fields []string
	Line   int
}

// Field returns the i-th field after the tag, or "" when the record is short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Len returns the number of fields after the tag.
func (r Record) Len() int {
	return len(r.Fields)
}

// String renders the record back into comma-separated form. Fields are not
// re-quoted; it is meant for diagnostics.
func (r Record) String() string {
	s := r.Tag
	for _, f := range r.Fields {
		s += "," + f
	}
	return s
}

// MalformedRecordError reports a line that cannot be tokenized at all, such
// as one with an unterminated quote. It is fatal to that line only.
type MalformedRecordError struct {
	Line int
	Text string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is (or wraps) a MalformedRecordError.
func IsMalformed(err error) bool {
	var me *MalformedRecordError
	return errors.As(err, &me)
}
