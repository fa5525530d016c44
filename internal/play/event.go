package play

import (
	"regexp"
	"strings"
)

// Component is one outcome in the event part. "K+SB2" has two: the
// strikeout and the stolen base.
type Component struct {
	Kind EventKind
	Raw  string

	// PlateAppearance is set when the component ends the batter's turn.
	PlateAppearance bool

	// Fielders lists fielding positions in the order they handled the
	// ball. For hits it is where the ball was hit.
	Fielders []Position
	Credits  []Credit

	// RunnersOut lists runners marked as retired inside a fielding
	// sequence, "(1)" in "64(1)3".
	RunnersOut []Base

	// Base is the base named by a baserunning play: the target of a
	// steal, the base a pickoff throw went to.
	Base    Base
	HasBase bool

	Flags AdvanceFlag

	groups []outGroup
}

// outGroup is one "assists, putout, (runner)" unit of a fielding sequence.
type outGroup struct {
	runner    Base
	hasRunner bool
	credits   []Credit
}

var (
	multiPlayRE  = regexp.MustCompile(`[+;]`)
	firstDigitRE = regexp.MustCompile(`[0-9]`)
	baseCharRE   = regexp.MustCompile(`[123H]`)
	outRE        = regexp.MustCompile(`^([0-9]*)([0-9])(?:\(([B123])\))?(?:([0-9]*)([0-9])(?:\(([B123])\))?)?(?:([0-9]*)([0-9])(?:\(([B123])\))?)?$`)
	errorPlayRE  = regexp.MustCompile(`^([0-9]*)E([0-9])$`)
	runnerInfoRE = regexp.MustCompile(`^([123H])(?:\(([0-9]*)(E[0-9])?\)?)?(\(T?UR\))?$`)
	allDigitsRE  = regexp.MustCompile(`^[0-9]+$`)
)

var (
	battedOutTypes = map[string]EventKind{
		"":   KindOut,
		"K":  KindStrikeout,
		"FC": KindFieldersChoice,
		"E":  KindError,
	}
	hitTypes = map[string]EventKind{
		"S":   KindSingle,
		"D":   KindDouble,
		"DGR": KindGroundRuleDouble,
		"T":   KindTriple,
		"H":   KindHomeRun,
		"HR":  KindHomeRun,
	}
	awardTypes = map[string]EventKind{
		"C":  KindInterference,
		"HP": KindHitByPitch,
		"W":  KindWalk,
		"I":  KindIntentionalWalk,
		"IW": KindIntentionalWalk,
	}
	baserunningTypes = map[string]EventKind{
		"PO":   KindPickoff,
		"POCS": KindPickoffCaughtStealing,
		"SB":   KindStolenBase,
		"CS":   KindCaughtStealing,
		"DI":   KindDefensiveIndifference,
		"BK":   KindBalk,
		"OA":   KindOtherAdvance,
		"WP":   KindWildPitch,
		"PB":   KindPassedBall,
	}
)

// parseComponents splits the event part into components. Everything after
// the first "+" or ";" is a play that cannot involve the batter.
func parseComponents(s string) ([]Component, []Warning) {
	var (
		out      []Component
		warnings []Warning
	)
	extra := false
	for s != "" {
		head, rest := splitAt(s, multiPlayRE)
		if head != "" {
			c, ok := parseComponent(head, extra)
			if !ok {
				warnings = append(warnings, unrecognized(head, "event"))
			}
			out = append(out, c)
		}
		extra = true
		if rest == "" {
			break
		}
		s = rest[1:]
	}
	return out, warnings
}

func parseComponent(s string, extra bool) (Component, bool) {
	first, last := splitAt(s, firstDigitRE)
	if !extra {
		if c, ok := parsePlateAppearance(s, first, last); ok {
			return c, true
		}
	}
	if c, ok := parseBaserunning(s); ok {
		return c, true
	}
	if c, ok := parseNoPlay(s, first, last); ok {
		return c, true
	}
	if extra {
		// A second batter outcome; Parse rejects the play.
		if c, ok := parsePlateAppearance(s, first, last); ok {
			return c, true
		}
	}
	return Component{Kind: KindOther, Raw: s}, false
}

func parsePlateAppearance(s, first, last string) (Component, bool) {
	c := Component{Raw: s, PlateAppearance: true}
	if kind, ok := battedOutTypes[first]; ok {
		c.Kind = kind
		switch kind {
		case KindStrikeout:
			if last == "" {
				c.Credits = []Credit{{Position: Catcher, Kind: CreditPutout}}
				c.groups = []outGroup{{credits: c.Credits}}
				return c, true
			}
			return c, c.parseFielding(last)
		case KindFieldersChoice:
			p := PositionUnknown
			if last != "" {
				ps := positionsFromDigits(last[:1])
				p = ps[0]
			}
			c.Fielders = []Position{p}
			c.Credits = []Credit{{Position: p, Kind: CreditFieldersChoice}}
			return c, true
		case KindError:
			return c, c.parseFielding(first + last)
		default:
			if !c.parseFielding(last) {
				return c, false
			}
			if hasCredit(c.Credits, CreditError) {
				c.Kind = KindError
			}
			return c, true
		}
	}
	if kind, ok := hitTypes[first]; ok {
		if last != "" && !allDigitsRE.MatchString(last) {
			return c, false
		}
		c.Kind = kind
		c.Fielders = positionsFromDigits(last)
		return c, true
	}
	if kind, ok := awardTypes[first]; ok && last == "" {
		c.Kind = kind
		return c, true
	}
	return c, false
}

// parseFielding reads a fielding sequence: "63", "64(1)3", "8(B)84(2)",
// "E6" or "6E3".
func (c *Component) parseFielding(s string) bool {
	if s == "" {
		return false
	}
	if allDigitsRE.MatchString(s) {
		c.Fielders = positionsFromDigits(s)
		c.Credits = creditsFromTouches(c.Fielders)
		c.groups = []outGroup{{credits: c.Credits}}
		return true
	}
	if m := outRE.FindStringSubmatch(s); m != nil {
		for g := 0; g < 3; g++ {
			assists, putout, runner := m[1+3*g], m[2+3*g], m[3+3*g]
			if putout == "" {
				continue
			}
			touches := positionsFromDigits(assists + putout)
			grp := outGroup{credits: creditsFromTouches(touches)}
			if runner != "" {
				grp.runner, _ = baseFromChar(runner[0])
				grp.hasRunner = true
				c.RunnersOut = append(c.RunnersOut, grp.runner)
			}
			c.Fielders = append(c.Fielders, touches...)
			c.Credits = append(c.Credits, grp.credits...)
			c.groups = append(c.groups, grp)
		}
		return true
	}
	if m := errorPlayRE.FindStringSubmatch(s); m != nil {
		c.Fielders = positionsFromDigits(m[1] + m[2])
		for _, p := range positionsFromDigits(m[1]) {
			c.Credits = append(c.Credits, Credit{Position: p, Kind: CreditAssist})
		}
		e, _ := positionFromDigit(m[2][0])
		c.Credits = append(c.Credits, Credit{Position: e, Kind: CreditError})
		return true
	}
	return false
}

func parseBaserunning(s string) (Component, bool) {
	c := Component{Raw: s}
	if strings.HasPrefix(s, "E") {
		m := errorPlayRE.FindStringSubmatch(s)
		if m == nil {
			return c, false
		}
		c.Kind = KindError
		c.parseFielding(s)
		return c, true
	}
	first, last := splitAt(s, baseCharRE)
	kind, ok := baserunningTypes[first]
	if !ok {
		return c, false
	}
	c.Kind = kind
	if last == "" {
		return c, true
	}
	m := runnerInfoRE.FindStringSubmatch(last)
	if m == nil {
		return c, false
	}
	c.Base, _ = baseFromChar(m[1][0])
	c.HasBase = true
	touches := positionsFromDigits(m[2])
	c.Fielders = touches
	if m[3] != "" {
		for _, p := range touches {
			c.Credits = append(c.Credits, Credit{Position: p, Kind: CreditAssist})
		}
		e, _ := positionFromDigit(m[3][1])
		c.Credits = append(c.Credits, Credit{Position: e, Kind: CreditError})
	} else {
		c.Credits = creditsFromTouches(touches)
	}
	switch m[4] {
	case "(UR)":
		c.Flags |= FlagUnearned
	case "(TUR)":
		c.Flags |= FlagTeamUnearned
	}
	return c, true
}

func parseNoPlay(s, first, last string) (Component, bool) {
	c := Component{Raw: s}
	switch {
	case first == "NP" && last == "":
		c.Kind = KindNoPlay
		return c, true
	case first == "FLE" && last != "":
		c.Kind = KindErrorOnFoul
		c.Fielders = positionsFromDigits(last[:1])
		c.Credits = []Credit{{Position: c.Fielders[0], Kind: CreditError}}
		return c, true
	}
	return c, false
}

func (c *Component) hasError() bool {
	return hasCredit(c.Credits, CreditError)
}

func (c *Component) isStealAttempt() bool {
	switch c.Kind {
	case KindStolenBase, KindCaughtStealing, KindPickoffCaughtStealing:
		return true
	}
	return false
}

// impliedAdvance is the movement the component implies without an explicit
// advance: the batter reaching on a hit, a runner reaching on a steal.
func (c *Component) impliedAdvance(runnersOut []Base) (Advance, bool) {
	if c.PlateAppearance {
		to := First
		switch c.Kind {
		case KindSingle, KindWalk, KindIntentionalWalk, KindHitByPitch, KindInterference:
		case KindDouble, KindGroundRuleDouble:
			to = Second
		case KindTriple:
			to = Third
		case KindHomeRun:
			to = Home
		default:
			if containsBase(runnersOut, Batter) {
				return Advance{}, false
			}
			putouts := len(filterCredits(c.Credits, CreditPutout))
			if c.Kind != KindFieldersChoice && !c.hasError() && putouts > len(runnersOut) {
				return Advance{}, false
			}
		}
		return Advance{From: Batter, To: to, Implied: true, Raw: "B-" + to.String()}, true
	}
	if !c.HasBase {
		return Advance{}, false
	}
	if c.Kind == KindStolenBase || (c.isStealAttempt() && c.hasError()) {
		from := c.Base.Previous()
		return Advance{From: from, To: c.Base, Implied: true, Flags: c.Flags, Raw: from.String() + "-" + c.Base.String()}, true
	}
	return Advance{}, false
}

// impliedOuts lists runners the component retires without an explicit
// advance.
func (c *Component) impliedOuts() []Base {
	if c.PlateAppearance {
		outs := append([]Base(nil), c.RunnersOut...)
		if _, moves := c.impliedAdvance(c.RunnersOut); moves || containsBase(outs, Batter) {
			return outs
		}
		switch c.Kind {
		case KindOut, KindStrikeout:
			return append([]Base{Batter}, outs...)
		}
		return outs
	}
	if c.hasError() || !c.HasBase {
		return nil
	}
	switch c.Kind {
	case KindCaughtStealing, KindPickoffCaughtStealing:
		return []Base{c.Base.Previous()}
	case KindPickoff:
		return []Base{c.Base}
	}
	return nil
}

func containsBase(bs []Base, b Base) bool {
	for _, x := range bs {
		if x == b {
			return true
		}
	}
	return false
}
