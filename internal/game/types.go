package game

import (
	"fmt"

	"github.com/roach88/scorebook/internal/play"
)

// Side is a team's role in the game as encoded in the files: 0 visiting,
// 1 home.
type Side uint8

const (
	Visitor Side = iota
	Home
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "visitor"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	return 1 - s
}

// ParseSide parses "0" or "1".
func ParseSide(v string) (Side, error) {
	switch v {
	case "0":
		return Visitor, nil
	case "1":
		return Home, nil
	}
	return Visitor, fmt.Errorf("invalid side %q", v)
}

// Half is the half of an inning. Top is whichever team bats first, which
// is the visitors except in games played with the home team batting first.
type Half uint8

const (
	Top Half = iota
	Bottom
)

func (h Half) String() string {
	if h == Bottom {
		return "bottom"
	}
	return "top"
}

// UnknownPlayer stands in for a runner the state did not know about.
const UnknownPlayer = "?"

// Runner is a player on base.
type Runner struct {
	Player string
	// ChargedTo is the pitcher responsible if this runner scores. Empty for
	// placed runners, who are nobody's responsibility.
	ChargedTo      string
	ReachedOnError bool
	// Placed runners start extra innings on second.
	Placed bool
}

// BaseOutState is the situation between plays.
type BaseOutState struct {
	Inning    int
	Half      Half
	Batting   Side
	Outs      int
	Occupants [3]*Runner
}

// At returns the runner on base b, or nil.
func (s *BaseOutState) At(b play.Base) *Runner {
	if !b.IsOccupiable() {
		return nil
	}
	return s.Occupants[b-1]
}

func (s *BaseOutState) set(b play.Base, r *Runner) {
	s.Occupants[b-1] = r
}

// Snapshot returns the player on each of first, second and third, "" for
// an empty base.
func (s *BaseOutState) Snapshot() [3]string {
	var out [3]string
	for i, r := range s.Occupants {
		if r != nil {
			out[i] = r.Player
		}
	}
	return out
}

// Empty reports whether no base is occupied.
func (s *BaseOutState) Empty() bool {
	return s.Occupants == [3]*Runner{}
}

func (s *BaseOutState) clearBases() {
	s.Occupants = [3]*Runner{}
}

// LineupSlot is one player's tenure in a batting order spot (or, for a
// pitcher who does not bat, at a fielding position). A substitution closes
// the slot it replaces instead of removing it.
type LineupSlot struct {
	Player           string
	Name             string
	Team             string
	Side             Side
	BattingOrder     int // 0 when not in the batting order
	FieldingPosition play.Position
	Starter          bool
	// ValidFromEvent is the first event the slot applies to.
	ValidFromEvent int
	// ValidToEvent is the last event the slot applies to. Only meaningful
	// once Ended is set.
	ValidToEvent int
	Ended        bool
}

// Substitution records a player entering the game or changing position.
type Substitution struct {
	PlayerIn     string
	Name         string
	PlayerOut    string
	Team         string
	Side         Side
	BattingOrder int
	NewPosition  play.Position
	// EventIndex is the sequence number of the next play.
	EventIndex int
}

// Run is one run scored.
type Run struct {
	Runner string
	From   play.Base
	// ResponsiblePitcher is charged with the run.
	ResponsiblePitcher string
	// InheritedBy is the pitcher on the mound when the run scored, when a
	// reliever inherited the runner.
	InheritedBy  string
	Earned       bool
	TeamUnearned bool
	RBI          bool
	BattedIn     string
}

// FieldingCredit attributes a putout, assist, error or fielder's choice to
// the player at the position.
type FieldingCredit struct {
	Position play.Position
	Player   string
	Kind     play.CreditKind
}

// RunnerMove is one runner's part in a play as it was applied to the
// bases. To is where the runner ended up or was retired; HasTo is false for
// an out that names no base.
type RunnerMove struct {
	Runner  string
	From    play.Base
	To      play.Base
	HasTo   bool
	Out     bool
	Implied bool
}

// Event is one applied play record.
type Event struct {
	GameID   string
	Sequence int
	Line     int

	Inning      int
	Half        Half
	BattingSide Side
	Batter      string
	Pitcher     string
	// ResponsiblePitcher is charged with the batter's outcome when it
	// differs from Pitcher (a walk after a mid-count change).
	ResponsiblePitcher string

	Count   play.Count
	Pitches string
	Raw     string

	// Descriptor is the parsed play, or a placeholder with KindOther when
	// the play could not be parsed.
	Descriptor *play.Descriptor
	ParseError string

	OutsBefore   int
	OutsRecorded int
	RunsScored   int
	RBI          int
	Runs         []Run
	Credits      []FieldingCredit
	// Moves lists every runner the play moved or retired, third base
	// first and the batter last.
	Moves      []RunnerMove
	StartBases [3]string
	EndBases   [3]string
	// ScoreAfter is the visiting and home score after the play.
	ScoreAfter [2]int

	StateInconsistent bool
	Issues            []Issue
	Comments          []string
}

// IssueKind classifies recoverable problems.
type IssueKind string

const (
	IssueMalformedRecord    IssueKind = "malformed_record"
	IssueUnrecognizedToken  IssueKind = "unrecognized_token"
	IssueStateInconsistency IssueKind = "state_inconsistency"
	IssueParseError         IssueKind = "parse_error"
	IssueUnknownRecord      IssueKind = "unknown_record"
)

// Issue is a recoverable problem found while replaying a game.
type Issue struct {
	Kind     IssueKind
	Line     int
	Sequence int
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s (line %d, event %d): %s", i.Kind, i.Line, i.Sequence, i.Message)
}

// InfoEntry is one info record. Keys can repeat.
type InfoEntry struct {
	Key   string
	Value string
}

// EarnedRuns is a "data,er" record: the official earned runs for a pitcher.
type EarnedRuns struct {
	Pitcher string
	Runs    int
}

// Adjustment is a badj, padj, ladj, radj or presadj record.
type Adjustment struct {
	Kind       string
	Player     string
	Side       Side
	Value      string
	EventIndex int
}

// Game is one replayed game.
type Game struct {
	ID           string
	Date         string
	Site         string
	HomeTeam     string
	VisitingTeam string
	// HomeBatsFirst is set by "info,htbf,true".
	HomeBatsFirst bool

	Info          []InfoEntry
	Lineups       []LineupSlot
	Substitutions []Substitution
	Events        []Event
	Comments      []string
	EarnedRuns    []EarnedRuns
	Adjustments   []Adjustment
	Issues        []Issue

	// Score is the final visiting and home score.
	Score [2]int
	// Line is the line of the id record.
	Line int
}

// InfoValue returns the last value recorded for key.
func (g *Game) InfoValue(key string) (string, bool) {
	for i := len(g.Info) - 1; i >= 0; i-- {
		if g.Info[i].Key == key {
			return g.Info[i].Value, true
		}
	}
	return "", false
}

// Team returns the team code for side.
func (g *Game) Team(s Side) string {
	if s == Home {
		return g.HomeTeam
	}
	return g.VisitingTeam
}

// IssueCount counts issues of kind across the game.
func (g *Game) IssueCount(kind IssueKind) int {
	n := 0
	for _, is := range g.Issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}
