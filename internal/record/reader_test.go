package record

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGame = `id,BOS201904090
version,2
info,visteam,TOR
info,hometeam,BOS
start,brocb001,"Brock Holt",0,1,4

play,1,0,brocb001,12,CBX,"63/G"
com,"He said ""wow"""
`

func TestReadTokenizesInOrder(t *testing.T) {
	records, errs := Collect(Read(strings.NewReader(sampleGame)))
	require.Empty(t, errs)
	require.Len(t, records, 7)

	assert.Equal(t, "id", records[0].Tag)
	assert.Equal(t, []string{"BOS201904090"}, records[0].Fields)
	assert.Equal(t, 1, records[0].Line)

	start := records[4]
	assert.Equal(t, "start", start.Tag)
	assert.Equal(t, "Brock Holt", start.Field(1))
	assert.Equal(t, 5, start.Line)

	play := records[5]
	assert.Equal(t, "play", play.Tag)
	assert.Equal(t, "63/G", play.Field(5))
	assert.Equal(t, 7, play.Line, "blank lines still count toward line numbers")

	assert.Equal(t, `He said "wow"`, records[6].Field(0))
}

func TestReadUnknownTagsPassThrough(t *testing.T) {
	records, errs := Collect(Read(strings.NewReader("zzz,1,2\nplay,1,0,x,??,,NP\n")))
	require.Empty(t, errs)
	require.Len(t, records, 2)
	assert.Equal(t, "zzz", records[0].Tag)
	assert.Equal(t, []string{"1", "2"}, records[0].Fields)
}

func TestReadMalformedLineIsIsolated(t *testing.T) {
	input := "id,NYA201904010\ncom,\"unterminated\nplay,1,0,x,00,,K\n"

	var (
		got  []Record
		errs []error
	)
	for rec, err := range Read(strings.NewReader(input)) {
		if err != nil {
			errs = append(errs, err)
			assert.Equal(t, 2, rec.Line)
			continue
		}
		got = append(got, rec)
	}

	require.Len(t, errs, 1)
	assert.True(t, IsMalformed(errs[0]))
	var me *MalformedRecordError
	require.ErrorAs(t, errs[0], &me)
	assert.Equal(t, 2, me.Line)
	assert.Contains(t, me.Text, "unterminated")

	require.Len(t, got, 2)
	assert.Equal(t, "play", got[1].Tag)
	assert.Equal(t, 3, got[1].Line)
}

func TestParseLineQuotes(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		fields []string
		bad    bool
	}{
		{name: "quote inside bare comment", line: `com,He was hit by a "pitch"`, fields: []string{`He was hit by a "pitch"`}},
		{name: "quote inside player id", line: `info,umphome,o"neij901`, fields: []string{"umphome", `o"neij901`}},
		{name: "escaped quotes", line: `com,"He said ""wow"""`, fields: []string{`He said "wow"`}},
		{name: "quoted field then more", line: `start,brocb001,"Brock Holt",0,1,4`, fields: []string{"brocb001", "Brock Holt", "0", "1", "4"}},
		{name: "empty trailing field", line: `info,umpfirst,`, fields: []string{"umpfirst", ""}},
		{name: "unterminated quote", line: `com,"unterminated`, bad: true},
		{name: "unterminated after escape", line: `com,"ends with escape""`, bad: true},
		{name: "unterminated middle field", line: `start,x,"Half Open,0,1,4`, bad: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseLine(tt.line, 9)
			if tt.bad {
				require.Error(t, err)
				assert.True(t, IsMalformed(err))
				var me *MalformedRecordError
				require.ErrorAs(t, err, &me)
				assert.Equal(t, 9, me.Line)
				assert.Equal(t, tt.line, me.Text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.fields, rec.Fields)
			assert.Equal(t, 9, rec.Line)
		})
	}
}

func TestReadKeepsBareQuotes(t *testing.T) {
	input := "id,NYA201904010\ninfo,umphome,o\"neij901\ncom,He was hit by a \"pitch\"\n"
	records, errs := Collect(Read(strings.NewReader(input)))
	require.Empty(t, errs)
	require.Len(t, records, 3)
	assert.Equal(t, `o"neij901`, records[1].Field(1))
	assert.Equal(t, `He was hit by a "pitch"`, records[2].Field(0))
}

func TestReadStopOnError(t *testing.T) {
	input := "com,\"bad\nplay,1,0,x,00,,K\n"
	records, errs := Collect(Read(strings.NewReader(input), WithStopOnError(true)))
	assert.Len(t, errs, 1)
	assert.Empty(t, records)
}

func TestReadStripsBOMAndCarriageReturns(t *testing.T) {
	input := "\xEF\xBB\xBFid,ANA202007240\r\ninfo,site,ANA01\r\n"
	records, errs := Collect(Read(strings.NewReader(input)))
	require.Empty(t, errs)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0].Tag)
	assert.Equal(t, "ANA01", records[1].Field(1))
}

func TestReadBytesIsRestartable(t *testing.T) {
	seq := ReadBytes([]byte(sampleGame))

	first, _ := Collect(seq)
	second, _ := Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, second, 7)
}

func TestReadEarlyBreak(t *testing.T) {
	count := 0
	for range ReadBytes([]byte(sampleGame)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestReadLineTooLong(t *testing.T) {
	input := "id,X\ncom," + strings.Repeat("a", 200) + "\n"
	_, errs := Collect(Read(strings.NewReader(input), WithMaxLineBytes(64)))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], bufio.ErrTooLong)
}

func TestRecordFieldOutOfRange(t *testing.T) {
	rec := Record{Tag: "info", Fields: []string{"visteam"}}
	assert.Equal(t, "visteam", rec.Field(0))
	assert.Equal(t, "", rec.Field(1))
	assert.Equal(t, "", rec.Field(-1))
	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, "info,visteam", rec.String())
}
