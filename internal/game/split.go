package game

import (
	"errors"
	"fmt"
	"iter"

	"github.com/roach88/scorebook/internal/record"
)

// ErrOrphanRecords reports records that appear before the first id record.
// Split yields it alongside the orphaned records and keeps going.
var ErrOrphanRecords = errors.New("records before first game id")

// ErrMissingID is returned by Replay for a record list that does not start
// with an id record.
var ErrMissingID = errors.New("game records do not start with an id record")

// GameRecords is the slice of a file belonging to one game.
type GameRecords struct {
	ID      string
	Records []record.Record
	// Malformed holds lines that could not be split into fields.
	Malformed []*record.MalformedRecordError
}

// Split groups a record stream into games. Each id record starts a new
// game. Malformed lines stay with the game they appear in. Any other error
// from the stream is yielded and ends the sequence.
func Split(records iter.Seq2[record.Record, error]) iter.Seq2[GameRecords, error] {
	return func(yield func(GameRecords, error) bool) {
		var (
			cur     GameRecords
			started bool
		)
		flush := func() bool {
			if !started {
				if len(cur.Records) == 0 && len(cur.Malformed) == 0 {
					return true
				}
				line := 0
				if len(cur.Records) > 0 {
					line = cur.Records[0].Line
				} else {
					line = cur.Malformed[0].Line
				}
				n := len(cur.Records) + len(cur.Malformed)
				return yield(cur, fmt.Errorf("%w: %d records starting at line %d", ErrOrphanRecords, n, line))
			}
			return yield(cur, nil)
		}

		for rec, err := range records {
			if err != nil {
				var me *record.MalformedRecordError
				if errors.As(err, &me) {
					cur.Malformed = append(cur.Malformed, me)
					continue
				}
				yield(GameRecords{}, err)
				return
			}
			if rec.Tag == "id" {
				if !flush() {
					return
				}
				cur = GameRecords{ID: rec.Field(0)}
				started = true
			}
			cur.Records = append(cur.Records, rec)
		}
		flush()
	}
}
