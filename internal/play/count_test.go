package play

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	c := ParseCount("32")
	assert.True(t, c.Known())
	assert.Equal(t, 3, c.Balls)
	assert.Equal(t, 2, c.Strikes)
	assert.Equal(t, "32", c.String())

	c = ParseCount("??")
	assert.False(t, c.Known())
	assert.Equal(t, "??", c.String())

	c = ParseCount("")
	assert.False(t, c.BallsKnown)
	assert.False(t, c.StrikesKnown)
}

func TestCount_OldPitcherResponsibleForWalk(t *testing.T) {
	tests := []struct {
		count string
		want  bool
	}{
		{"00", false},
		{"10", false},
		{"20", true},
		{"21", true},
		{"22", false},
		{"30", true},
		{"32", true},
		{"??", false},
	}
	for _, tc := range tests {
		t.Run(tc.count, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseCount(tc.count).OldPitcherResponsibleForWalk())
		})
	}
}

func TestParsePitches(t *testing.T) {
	ps := ParsePitches("BC*B1FX")
	assert.Equal(t, 5, ps.Pitches)
	assert.Equal(t, 2, ps.Balls)
	assert.Equal(t, 2, ps.Strikes)
	assert.Equal(t, 1, ps.InPlay)
	assert.Equal(t, 1, ps.Pickoffs)

	assert.Equal(t, PitchSummary{}, ParsePitches(""))
}
