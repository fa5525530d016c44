package play

import (
	"regexp"
	"strings"
)

// AdvanceFlag marks annotations attached to a single advance.
type AdvanceFlag uint16

const (
	// FlagUnearned: (UR), the run is unearned.
	FlagUnearned AdvanceFlag = 1 << iota
	// FlagTeamUnearned: (TUR), unearned to the team but earned to the pitcher.
	FlagTeamUnearned
	// FlagNoRBI: (NR) or (NORBI).
	FlagNoRBI
	// FlagRBI: (RBI), an explicit RBI.
	FlagRBI
	FlagWildPitch
	FlagPassedBall
	FlagInterference
	FlagThrow
)

func (f AdvanceFlag) Has(flag AdvanceFlag) bool { return f&flag != 0 }

// Advance is the movement of one runner. From is the base the runner
// started on (Batter for the batter); To is where the runner ended up or,
// when Out is set, where they were retired.
type Advance struct {
	From    Base
	To      Base
	Out     bool
	Implied bool // derived from the event rather than written as an advance
	Credits []Credit
	Flags   AdvanceFlag
	Raw     string

	// Annotations that were kept verbatim.
	Unrecognized []string
}

// Scores reports whether the advance is a run.
func (a Advance) Scores() bool {
	return a.To == Home && !a.Out
}

func (a Advance) hasError() bool {
	return hasCredit(a.Credits, CreditError)
}

var (
	advanceRE     = regexp.MustCompile(`^([B123])?(?:-([123H])|X([123H]))(.*)$`)
	creditRE      = regexp.MustCompile(`^([0-9]*)(?:E([0-9]))?$`)
	throwBaseRE   = regexp.MustCompile(`^TH([123H])?$`)
	interferingRE = regexp.MustCompile(`^INT[0-9]?$`)
)

// parseAdvances parses the ";"-separated advance part. Advances with no
// origin are read as the batter when batterMoves is set.
func parseAdvances(s string, batterMoves bool) ([]Advance, []Warning) {
	var (
		advances []Advance
		warnings []Warning
	)
	for _, tok := range strings.Split(s, ";") {
		if tok == "" {
			continue
		}
		m := advanceRE.FindStringSubmatch(tok)
		if m == nil {
			warnings = append(warnings, unrecognized(tok, "advance"))
			continue
		}
		var a Advance
		a.Raw = tok
		switch {
		case m[1] != "":
			a.From, _ = baseFromChar(m[1][0])
		case batterMoves:
			a.From = Batter
		default:
			warnings = append(warnings, unrecognized(tok, "advance origin"))
			continue
		}
		x := m[3] != ""
		dest := m[2]
		if x {
			dest = m[3]
		}
		a.To, _ = baseFromChar(dest[0])
		if a.To < a.From {
			warnings = append(warnings, Warning{
				Code:    ErrCodeBackwardAdvance,
				Token:   tok,
				Message: "runner cannot move backward from " + a.From.Name() + " to " + a.To.Name(),
			})
			continue
		}
		for _, p := range splitParams(m[4]) {
			if !a.applyParam(p) {
				a.Unrecognized = append(a.Unrecognized, p)
				warnings = append(warnings, unrecognized(p, "advance annotation"))
			}
		}
		if x {
			a.Out = !(a.hasError() && !hasCredit(a.Credits, CreditPutout))
		}
		advances = append(advances, a)
	}
	return advances, warnings
}

// splitParams splits "(26)(UR)" into "26", "UR". Text outside parentheses
// comes back with its opening bracket stripped when present.
func splitParams(s string) []string {
	var out []string
	for _, piece := range strings.Split(s, ")") {
		if piece == "" {
			continue
		}
		out = append(out, strings.TrimPrefix(piece, "("))
	}
	return out
}

// applyParam records one parenthesized annotation. Annotations can chain
// several parts with "/" as in "E6/TH".
func (a *Advance) applyParam(p string) bool {
	if p == "" {
		a.Credits = append(a.Credits, Credit{Position: PositionUnknown, Kind: CreditPutout})
		return true
	}
	ok := true
	for _, part := range strings.Split(p, "/") {
		if !a.applyParamPart(part) {
			ok = false
		}
	}
	return ok
}

func (a *Advance) applyParamPart(p string) bool {
	switch p {
	case "UR":
		a.Flags |= FlagUnearned
		return true
	case "TUR":
		a.Flags |= FlagTeamUnearned
		return true
	case "NR", "NORBI":
		a.Flags |= FlagNoRBI
		return true
	case "RBI":
		a.Flags |= FlagRBI
		return true
	case "WP":
		a.Flags |= FlagWildPitch
		return true
	case "PB":
		a.Flags |= FlagPassedBall
		return true
	}
	if throwBaseRE.MatchString(p) {
		a.Flags |= FlagThrow
		return true
	}
	if interferingRE.MatchString(p) {
		a.Flags |= FlagInterference
		return true
	}
	m := creditRE.FindStringSubmatch(p)
	if m == nil || (m[1] == "" && m[2] == "") {
		return false
	}
	touches := positionsFromDigits(m[1])
	if m[2] != "" {
		for _, t := range touches {
			a.Credits = append(a.Credits, Credit{Position: t, Kind: CreditAssist})
		}
		e, _ := positionFromDigit(m[2][0])
		a.Credits = append(a.Credits, Credit{Position: e, Kind: CreditError})
		return true
	}
	a.Credits = append(a.Credits, creditsFromTouches(touches)...)
	return true
}
