package play

import (
	"fmt"
	"regexp"
	"strings"
)

// ModifierCode identifies a play modifier.
type ModifierCode uint8

const (
	ModUnrecognized ModifierCode = iota
	ModContact
	ModAppealPlay
	ModBuntGroundedIntoDoublePlay
	ModBatterInterference
	ModBootlegged
	ModBuntPoppedIntoDoublePlay
	ModRunnerHitByBattedBall
	ModCalledThirdStrike
	ModCourtesyBatter
	ModCourtesyFielder
	ModCourtesyRunner
	ModDoublePlay
	ModError
	ModFlyBallDoublePlay
	ModFanInterference
	ModFoul
	ModForceOut
	ModGroundedIntoDoublePlay
	ModGroundedIntoTriplePlay
	ModInfieldFly
	ModInterference
	ModInsideTheParkHomeRun
	ModLinedIntoDoublePlay
	ModLinedIntoTriplePlay
	ModManagerReview
	ModNoDoublePlay
	ModObstruction
	ModRunnerPassed
	ModRelay
	ModRunnerInterference
	ModSwingingThirdStrike
	ModSacrificeFly
	ModSacrificeHit
	ModThrow
	ModTriplePlay
	ModUmpireInterference
	ModUmpireReview
	ModUnknownDoublePlay
)

var modifierCodes = map[string]ModifierCode{
	"AP":   ModAppealPlay,
	"BGDP": ModBuntGroundedIntoDoublePlay,
	"BINT": ModBatterInterference,
	"BOOT": ModBootlegged,
	"BPDP": ModBuntPoppedIntoDoublePlay,
	"BR":   ModRunnerHitByBattedBall,
	"C":    ModCalledThirdStrike,
	"COUB": ModCourtesyBatter,
	"COUF": ModCourtesyFielder,
	"COUR": ModCourtesyRunner,
	"DP":   ModDoublePlay,
	"E":    ModError,
	"FDP":  ModFlyBallDoublePlay,
	"FINT": ModFanInterference,
	"FL":   ModFoul,
	"FO":   ModForceOut,
	"GDP":  ModGroundedIntoDoublePlay,
	"GTP":  ModGroundedIntoTriplePlay,
	"IF":   ModInfieldFly,
	"INT":  ModInterference,
	"IPHR": ModInsideTheParkHomeRun,
	"LDP":  ModLinedIntoDoublePlay,
	"LTP":  ModLinedIntoTriplePlay,
	"MREV": ModManagerReview,
	"NDP":  ModNoDoublePlay,
	"OBS":  ModObstruction,
	"PASS": ModRunnerPassed,
	"R":    ModRelay,
	"RINT": ModRunnerInterference,
	"S":    ModSwingingThirdStrike,
	"SF":   ModSacrificeFly,
	"SH":   ModSacrificeHit,
	"TH":   ModThrow,
	"TH)":  ModThrow,
	"THH":  ModThrow,
	"TP":   ModTriplePlay,
	"UINT": ModUmpireInterference,
	"UREV": ModUmpireReview,
	"U":    ModUnknownDoublePlay,
}

var modifierNames = map[ModifierCode]string{
	ModUnrecognized: "unrecognized",
	ModContact:      "contact",
}

func init() {
	for tok, code := range modifierCodes {
		if _, ok := modifierNames[code]; !ok || len(tok) < len(modifierNames[code]) {
			modifierNames[code] = tok
		}
	}
}

// String returns the canonical notation token, e.g. "GDP".
func (c ModifierCode) String() string {
	if s, ok := modifierNames[c]; ok {
		return s
	}
	return fmt.Sprintf("modifier(%d)", uint8(c))
}

// impliedOuts is the number of outs a multi-out designation asserts.
func (c ModifierCode) impliedOuts() int {
	switch c {
	case ModBuntGroundedIntoDoublePlay, ModBuntPoppedIntoDoublePlay, ModFlyBallDoublePlay,
		ModGroundedIntoDoublePlay, ModLinedIntoDoublePlay, ModDoublePlay:
		return 2
	case ModGroundedIntoTriplePlay, ModLinedIntoTriplePlay, ModTriplePlay:
		return 3
	}
	return 0
}

// ContactType is the trajectory of a batted ball.
type ContactType uint8

const (
	ContactUnknown ContactType = iota
	ContactBunt
	ContactPopUpBunt
	ContactGroundBallBunt
	ContactFoulBunt
	ContactLineDriveBunt
	ContactFly
	ContactGroundBall
	ContactLineDrive
	ContactPopFly
)

var contactTokens = map[string]ContactType{
	"B":  ContactBunt,
	"BP": ContactPopUpBunt,
	"BG": ContactGroundBallBunt,
	"BF": ContactFoulBunt,
	"BL": ContactLineDriveBunt,
	"F":  ContactFly,
	"G":  ContactGroundBall,
	"L":  ContactLineDrive,
	"P":  ContactPopFly,
}

func (c ContactType) String() string {
	switch c {
	case ContactBunt:
		return "bunt"
	case ContactPopUpBunt:
		return "pop_up_bunt"
	case ContactGroundBallBunt:
		return "ground_ball_bunt"
	case ContactFoulBunt:
		return "foul_bunt"
	case ContactLineDriveBunt:
		return "line_drive_bunt"
	case ContactFly:
		return "fly"
	case ContactGroundBall:
		return "ground_ball"
	case ContactLineDrive:
		return "line_drive"
	case ContactPopFly:
		return "pop_fly"
	default:
		return "unknown"
	}
}

// Location is a hit location such as "78XD". Zero-valued fields are unknown.
type Location struct {
	// Zone is the general area in fielder digits: "7", "78", "25".
	Zone     string
	Depth    string // S, D or XD
	Angle    string // F, M, L, R; L on 2 and 8 means left of center
	Strength string // + or -
}

func (l Location) String() string {
	return l.Zone + l.Angle + l.Depth + l.Strength
}

// IsZero reports whether no location was given.
func (l Location) IsZero() bool {
	return l == Location{}
}

var validZones = map[string]bool{
	"1": true, "13": true, "15": true,
	"2": true, "23": true, "25": true,
	"3": true, "34": true,
	"4": true, "46": true,
	"5": true, "56": true,
	"6": true,
	"7": true, "78": true,
	"8": true, "89": true,
	"9": true,
}

var (
	modifierDividerRE = regexp.MustCompile(`[+\-0-9]`)
	zoneRE            = regexp.MustCompile(`[0-9]+`)
	angleRE           = regexp.MustCompile(`[FMLR]`)
	depthRE           = regexp.MustCompile(`D|S|XD`)
	strengthRE        = regexp.MustCompile(`[+\-]`)
)

func parseLocation(s string) (Location, bool) {
	zone := zoneRE.FindString(s)
	if !validZones[zone] {
		return Location{}, false
	}
	return Location{
		Zone:     zone,
		Angle:    angleRE.FindString(s),
		Depth:    depthRE.FindString(s),
		Strength: strengthRE.FindString(s),
	}, true
}

// Modifier is one "/"-separated token after the event part. Raw holds the
// token as written so the modifier list can be reproduced exactly.
type Modifier struct {
	Code ModifierCode
	Raw  string

	// ModContact only; either may be unknown but not both.
	Contact  ContactType
	Location Location

	// ModError: the fielder charged.
	Position Position
	// ModRelay: fielders relaying without an out.
	Fielders []Position
	// ModThrow: target base when given.
	Base    Base
	HasBase bool
}

// splitAt divides s at the first match of re. The matched character starts
// the second half.
func splitAt(s string, re *regexp.Regexp) (string, string) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, ""
	}
	return s[:loc[0]], s[loc[0]:]
}

func parseModifiers(s string) []Modifier {
	var mods []Modifier
	for _, tok := range strings.Split(s, "/") {
		if tok == "" {
			continue
		}
		mods = append(mods, parseModifier(tok))
	}
	return mods
}

func parseModifier(tok string) Modifier {
	first, last := splitAt(tok, modifierDividerRE)
	ct, hasContact := contactTokens[first]
	loc, hasLoc := parseLocation(last)
	if (hasContact && (last == "" || hasLoc)) || (first == "" && hasLoc) {
		return Modifier{Code: ModContact, Raw: tok, Contact: ct, Location: loc}
	}

	code, ok := modifierCodes[first]
	if !ok {
		return Modifier{Code: ModUnrecognized, Raw: tok}
	}
	m := Modifier{Code: code, Raw: tok}
	switch code {
	case ModError:
		ps := positionsFromDigits(last)
		if len(ps) == 0 {
			return Modifier{Code: ModUnrecognized, Raw: tok}
		}
		m.Position = ps[0]
	case ModRelay:
		m.Fielders = positionsFromDigits(last)
	case ModThrow:
		if first == "THH" {
			m.Base, m.HasBase = Home, true
		} else if b, ok := baseFromChar(firstByte(last)); ok && len(last) == 1 {
			m.Base, m.HasBase = b, true
		}
	}
	return m
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

// ModifierString joins modifiers back into their "/"-separated form.
func ModifierString(mods []Modifier) string {
	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = m.Raw
	}
	return strings.Join(parts, "/")
}
