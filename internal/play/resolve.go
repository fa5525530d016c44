package play

import "sort"

// resolve fills Moves, Outs, Runs, RBI and Credits from the literal parts.
func (d *Descriptor) resolve() {
	var explicit []Advance
	explicitRunners := map[Base]bool{}
	for _, a := range d.Advances {
		if a.From == a.To && !a.Out {
			continue
		}
		if explicitRunners[a.From] {
			d.Warnings = append(d.Warnings, Warning{
				Code:    ErrCodeConflict,
				Token:   a.Raw,
				Message: "second advance for the runner from " + a.From.Name(),
			})
			continue
		}
		explicitRunners[a.From] = true
		explicit = append(explicit, a)
	}

	safe := map[Base]bool{}
	for _, a := range explicit {
		if !a.Out {
			safe[a.From] = true
		}
	}

	var (
		outs    []Base
		implied []Advance
	)
	addOut := func(b Base) {
		if !containsBase(outs, b) {
			outs = append(outs, b)
		}
	}
	for i := range d.Components {
		c := &d.Components[i]
		for _, b := range c.impliedOuts() {
			if !safe[b] {
				addOut(b)
			}
		}
		if a, ok := c.impliedAdvance(c.RunnersOut); ok {
			implied = append(implied, a)
		}
	}
	for _, a := range explicit {
		if a.Out {
			addOut(a.From)
		}
	}

	moves := append([]Advance(nil), explicit...)
	for _, a := range implied {
		if explicitRunners[a.From] || containsBase(outs, a.From) {
			continue
		}
		if _, dup := findMove(moves, a.From); dup {
			continue
		}
		moves = append(moves, a)
	}

	want := 0
	for _, m := range d.Modifiers {
		if n := m.Code.impliedOuts(); n > want {
			want = n
		}
	}
	if want > len(outs) {
		switch {
		case containsBase(outs, Batter) || safe[Batter]:
			d.Warnings = append(d.Warnings, Warning{
				Code:    ErrCodeConflict,
				Token:   d.Raw,
				Message: "multiple-out designation exceeds the outs recorded",
			})
		default:
			addOut(Batter)
			moves = removeMove(moves, Batter)
		}
	}

	sort.Slice(outs, func(i, j int) bool { return outs[i] < outs[j] })
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].From > moves[j].From })
	d.Outs = outs
	d.Moves = moves

	for _, m := range moves {
		if m.Scores() && !containsBase(outs, m.From) {
			d.Runs = append(d.Runs, m.From)
		}
	}
	d.RBI = d.rbi()
	d.Credits = d.collectCredits(explicit)
}

func findMove(moves []Advance, from Base) (Advance, bool) {
	for _, m := range moves {
		if m.From == from {
			return m, true
		}
	}
	return Advance{}, false
}

func removeMove(moves []Advance, from Base) []Advance {
	out := moves[:0]
	for _, m := range moves {
		if m.From != from {
			out = append(out, m)
		}
	}
	return out
}

// RBIEligible reports whether runs on this play are RBIs unless marked
// otherwise: a batted-ball or award outcome that is not a ground ball double
// play.
func (d *Descriptor) RBIEligible() bool {
	if d.HasModifier(ModGroundedIntoDoublePlay) || d.HasModifier(ModBuntGroundedIntoDoublePlay) {
		return false
	}
	for _, c := range d.Components {
		if c.PlateAppearance && c.Kind != KindStrikeout {
			return true
		}
	}
	return false
}

// rbi decides, per run, whether the batter is credited. Runs on a batted
// ball default to RBIs; runs on strikeouts, baserunning plays and ground
// ball double plays only count when marked (RBI).
func (d *Descriptor) rbi() []Base {
	eligible := d.RBIEligible()
	roe := d.ReachedOnError()

	var out []Base
	for _, runner := range d.Runs {
		m, _ := d.Move(runner)
		credited := false
		if eligible {
			credited = !m.Flags.Has(FlagNoRBI) &&
				!m.hasError() &&
				(runner == Third || !roe)
		} else {
			credited = m.Flags.Has(FlagRBI)
		}
		if credited {
			out = append(out, runner)
		}
	}
	return out
}

// collectCredits gathers fielding credits. When an advance and the event
// part both retire the same runner with different fielders, the advance
// wins and the event part's group for that runner is dropped.
func (d *Descriptor) collectCredits(explicit []Advance) []Credit {
	overridden := map[Base]bool{}
	for _, a := range explicit {
		if !a.Out {
			continue
		}
		po := filterCredits(a.Credits, CreditPutout)
		if len(po) == 0 {
			continue
		}
		for _, c := range d.Components {
			for _, g := range c.groups {
				if !g.hasRunner || g.runner != a.From {
					continue
				}
				gpo := filterCredits(g.credits, CreditPutout)
				if len(gpo) > 0 && gpo[0] != po[0] {
					overridden[a.From] = true
					d.Warnings = append(d.Warnings, Warning{
						Code:    ErrCodeConflict,
						Token:   a.Raw,
						Message: "advance credits a different putout than the event for the runner from " + a.From.Name(),
					})
				}
			}
		}
	}

	var credits []Credit
	for _, c := range d.Components {
		if len(c.groups) == 0 || len(overridden) == 0 {
			credits = append(credits, c.Credits...)
			continue
		}
		for _, g := range c.groups {
			if g.hasRunner && overridden[g.runner] {
				continue
			}
			credits = append(credits, g.credits...)
		}
	}
	for _, m := range d.Modifiers {
		if m.Code == ModError {
			credits = append(credits, Credit{Position: m.Position, Kind: CreditError})
		}
	}
	for _, a := range explicit {
		credits = append(credits, a.Credits...)
	}
	return credits
}
