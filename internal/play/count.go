package play

import "strings"

// Count is the ball-strike count when the play happened. Either part may
// be unknown ("??" in older files).
type Count struct {
	Balls       int
	Strikes     int
	BallsKnown  bool
	StrikesKnown bool
}

// ParseCount parses a two-digit count field such as "32".
func ParseCount(s string) Count {
	var c Count
	if len(s) > 0 && s[0] >= '0' && s[0] <= '3' {
		c.Balls, c.BallsKnown = int(s[0]-'0'), true
	}
	if len(s) > 1 && s[1] >= '0' && s[1] <= '2' {
		c.Strikes, c.StrikesKnown = int(s[1]-'0'), true
	}
	return c
}

// Known reports whether both balls and strikes are known.
func (c Count) Known() bool {
	return c.BallsKnown && c.StrikesKnown
}

// OldPitcherResponsibleForWalk reports whether a walk issued after a
// mid-count pitching change is charged to the pitcher who left. That is the
// case when the count was 2-0, 2-1, 3-0, 3-1 or 3-2 at the change. Without
// count data the new pitcher is charged.
func (c Count) OldPitcherResponsibleForWalk() bool {
	if !c.Known() {
		return false
	}
	return c.Balls == 3 || (c.Balls == 2 && c.Strikes <= 1)
}

// OldBatterResponsibleForStrikeout reports whether a strikeout after a
// mid-count pinch hitter is charged to the batter who left: two strikes at
// the change.
func (c Count) OldBatterResponsibleForStrikeout() bool {
	return c.StrikesKnown && c.Strikes == 2
}

func (c Count) String() string {
	b, s := "?", "?"
	if c.BallsKnown {
		b = string(rune('0' + c.Balls))
	}
	if c.StrikesKnown {
		s = string(rune('0' + c.Strikes))
	}
	return b + s
}

// PitchSummary tallies a pitch sequence string.
type PitchSummary struct {
	Pitches int
	Balls   int
	Strikes int
	InPlay  int
	// Pickoffs counts throws to a base ("1", "2", "3").
	Pickoffs int
}

const (
	ballPitches   = "BHIPV"
	strikePitches = "CFKLMOQRST"
	inPlayPitches = "XY"
	// no-pitch markers are ignored: "N" no pitch, "." play not involving
	// the batter, "*" blocked, ">" runners going, "+" pickoff by catcher.
	unknownPitches = "U"
)

// ParsePitches counts the pitches in a sequence like "BC*BFX".
func ParsePitches(seq string) PitchSummary {
	var ps PitchSummary
	for _, r := range seq {
		switch {
		case strings.ContainsRune(ballPitches, r):
			ps.Pitches++
			ps.Balls++
		case strings.ContainsRune(strikePitches, r):
			ps.Pitches++
			ps.Strikes++
		case strings.ContainsRune(inPlayPitches, r):
			ps.Pitches++
			ps.InPlay++
		case strings.ContainsRune(unknownPitches, r):
			ps.Pitches++
		case r == '1' || r == '2' || r == '3':
			ps.Pickoffs++
		}
	}
	return ps
}
