package play

import (
	"fmt"
	"strconv"
)

// Position is a fielding position. 1-9 are the defensive positions; the
// pseudo-positions 10-12 only appear in lineup records.
type Position uint8

const (
	PositionUnknown Position = iota
	Pitcher
	Catcher
	FirstBaseman
	SecondBaseman
	ThirdBaseman
	Shortstop
	LeftFielder
	CenterFielder
	RightFielder
	DesignatedHitter
	PinchHitter
	PinchRunner
)

var positionNames = [...]string{
	PositionUnknown:  "unknown",
	Pitcher:          "pitcher",
	Catcher:          "catcher",
	FirstBaseman:     "first_base",
	SecondBaseman:    "second_base",
	ThirdBaseman:     "third_base",
	Shortstop:        "shortstop",
	LeftFielder:      "left_field",
	CenterFielder:    "center_field",
	RightFielder:     "right_field",
	DesignatedHitter: "designated_hitter",
	PinchHitter:      "pinch_hitter",
	PinchRunner:      "pinch_runner",
}

// String returns the numeric code ("6"), or "0" for an unknown fielder.
func (p Position) String() string {
	return strconv.Itoa(int(p))
}

// Name returns a descriptive name such as "shortstop".
func (p Position) Name() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return fmt.Sprintf("position(%d)", uint8(p))
}

// IsFielder reports whether p is one of the nine defensive positions.
func (p Position) IsFielder() bool {
	return p >= Pitcher && p <= RightFielder
}

// ParsePosition parses a lineup-record position code "0".."12".
func ParsePosition(s string) (Position, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > int(PinchRunner) {
		return PositionUnknown, fmt.Errorf("invalid fielding position %q", s)
	}
	return Position(n), nil
}

// positionFromDigit maps '0'..'9'. '0' is the unknown fielder.
func positionFromDigit(c byte) (Position, bool) {
	if c < '0' || c > '9' {
		return PositionUnknown, false
	}
	return Position(c - '0'), true
}

// positionsFromDigits converts every digit in s, ignoring anything else.
func positionsFromDigits(s string) []Position {
	var out []Position
	for i := 0; i < len(s); i++ {
		if p, ok := positionFromDigit(s[i]); ok {
			out = append(out, p)
		}
	}
	return out
}

// Base identifies a runner by the base they start from, or a destination.
// The order Batter < First < Second < Third < Home is the order runners
// travel.
type Base uint8

const (
	Batter Base = iota
	First
	Second
	Third
	Home
)

// String returns the notation letter: B, 1, 2, 3 or H.
func (b Base) String() string {
	switch b {
	case Batter:
		return "B"
	case First:
		return "1"
	case Second:
		return "2"
	case Third:
		return "3"
	case Home:
		return "H"
	default:
		return fmt.Sprintf("base(%d)", uint8(b))
	}
}

// Name returns a descriptive name such as "second".
func (b Base) Name() string {
	switch b {
	case Batter:
		return "batter"
	case First:
		return "first"
	case Second:
		return "second"
	case Third:
		return "third"
	case Home:
		return "home"
	default:
		return b.String()
	}
}

// IsOccupiable reports whether a runner can stand on b between plays.
func (b Base) IsOccupiable() bool {
	return b >= First && b <= Third
}

// Previous returns the base a runner comes from when attempting to reach b.
// Stealing second is a runner from first.
func (b Base) Previous() Base {
	if b == Batter {
		return Batter
	}
	return b - 1
}

func baseFromChar(c byte) (Base, bool) {
	switch c {
	case 'B':
		return Batter, true
	case '1':
		return First, true
	case '2':
		return Second, true
	case '3':
		return Third, true
	case 'H':
		return Home, true
	}
	return Batter, false
}

// ParseBase parses B, 1, 2, 3 or H.
func ParseBase(s string) (Base, error) {
	if len(s) == 1 {
		if b, ok := baseFromChar(s[0]); ok {
			return b, nil
		}
	}
	return Batter, fmt.Errorf("invalid base %q", s)
}

// EventKind is the primary outcome of a play.
type EventKind uint8

const (
	KindOther EventKind = iota
	KindOut
	KindSingle
	KindDouble
	KindGroundRuleDouble
	KindTriple
	KindHomeRun
	KindWalk
	KindIntentionalWalk
	KindStrikeout
	KindHitByPitch
	KindInterference
	KindError
	KindFieldersChoice
	KindStolenBase
	KindCaughtStealing
	KindPickoff
	KindPickoffCaughtStealing
	KindWildPitch
	KindPassedBall
	KindBalk
	KindDefensiveIndifference
	KindOtherAdvance
	KindNoPlay
	KindErrorOnFoul
)

var kindNames = [...]string{
	KindOther:                 "other",
	KindOut:                   "out",
	KindSingle:                "single",
	KindDouble:                "double",
	KindGroundRuleDouble:      "ground_rule_double",
	KindTriple:                "triple",
	KindHomeRun:               "home_run",
	KindWalk:                  "walk",
	KindIntentionalWalk:       "intentional_walk",
	KindStrikeout:             "strikeout",
	KindHitByPitch:            "hit_by_pitch",
	KindInterference:          "interference",
	KindError:                 "error",
	KindFieldersChoice:        "fielders_choice",
	KindStolenBase:            "stolen_base",
	KindCaughtStealing:        "caught_stealing",
	KindPickoff:               "pickoff",
	KindPickoffCaughtStealing: "pickoff_caught_stealing",
	KindWildPitch:             "wild_pitch",
	KindPassedBall:            "passed_ball",
	KindBalk:                  "balk",
	KindDefensiveIndifference: "defensive_indifference",
	KindOtherAdvance:          "other_advance",
	KindNoPlay:                "no_play",
	KindErrorOnFoul:           "error_on_foul",
}

func (k EventKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsHit reports whether k is a base hit.
func (k EventKind) IsHit() bool {
	switch k {
	case KindSingle, KindDouble, KindGroundRuleDouble, KindTriple, KindHomeRun:
		return true
	}
	return false
}

// AwardsFirst reports whether k sends the batter to first without a batted
// ball, forcing runners ahead of him.
func (k EventKind) AwardsFirst() bool {
	switch k {
	case KindWalk, KindIntentionalWalk, KindHitByPitch, KindInterference:
		return true
	}
	return false
}

// CreditKind is the type of a fielding credit.
type CreditKind uint8

const (
	CreditPutout CreditKind = iota
	CreditAssist
	CreditError
	CreditFieldersChoice
)

func (k CreditKind) String() string {
	switch k {
	case CreditPutout:
		return "putout"
	case CreditAssist:
		return "assist"
	case CreditError:
		return "error"
	case CreditFieldersChoice:
		return "fielders_choice"
	default:
		return fmt.Sprintf("credit(%d)", uint8(k))
	}
}

// Credit attributes a fielding play to a position.
type Credit struct {
	Position Position
	Kind     CreditKind
}

func (c Credit) String() string {
	return c.Kind.String() + ":" + c.Position.String()
}

// creditsFromTouches credits a sequence of touches: the last fielder records
// the putout, every earlier fielder an assist.
func creditsFromTouches(touches []Position) []Credit {
	credits := make([]Credit, len(touches))
	for i, p := range touches {
		credits[i] = Credit{Position: p, Kind: CreditAssist}
	}
	if n := len(credits); n > 0 {
		credits[n-1].Kind = CreditPutout
	}
	return credits
}

func hasCredit(credits []Credit, kind CreditKind) bool {
	for _, c := range credits {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// filterCredits returns the positions holding credits of the given kind.
func filterCredits(credits []Credit, kind CreditKind) []Position {
	var out []Position
	for _, c := range credits {
		if c.Kind == kind {
			out = append(out, c.Position)
		}
	}
	return out
}
