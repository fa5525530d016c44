package play

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *Descriptor {
	t.Helper()
	d, err := Parse(raw)
	require.NoError(t, err, "parse %q", raw)
	return d
}

func moveOf(t *testing.T, d *Descriptor, from Base) Advance {
	t.Helper()
	m, ok := d.Move(from)
	require.True(t, ok, "no move for runner from %s in %q", from, d.Raw)
	return m
}

func TestParse_BattedOutCreditsInTouchOrder(t *testing.T) {
	d := mustParse(t, "63/G")

	assert.Equal(t, KindOut, d.Kind)
	assert.Equal(t, []Position{Shortstop, FirstBaseman}, d.FieldingSequence)
	assert.Equal(t, []Credit{
		{Position: Shortstop, Kind: CreditAssist},
		{Position: FirstBaseman, Kind: CreditPutout},
	}, d.Credits)
	assert.Equal(t, []Base{Batter}, d.Outs)
	assert.Empty(t, d.Moves)
	assert.Equal(t, ContactGroundBall, d.Contact)
	assert.Empty(t, d.Warnings)
}

func TestParse_UnrecognizedModifierIsKept(t *testing.T) {
	clean := mustParse(t, "63/G")
	d := mustParse(t, "63/G/ZZZ")

	require.Len(t, d.Modifiers, 2)
	assert.Equal(t, ModUnrecognized, d.Modifiers[1].Code)
	assert.Equal(t, "ZZZ", d.Modifiers[1].Raw)
	assert.Equal(t, []string{"ZZZ"}, d.UnrecognizedTokens())

	assert.Equal(t, clean.Kind, d.Kind)
	assert.Equal(t, clean.Outs, d.Outs)
	assert.Equal(t, clean.Credits, d.Credits)
	assert.Equal(t, clean.Contact, d.Contact)
}

func TestParse_SingleWithAdvances(t *testing.T) {
	d := mustParse(t, "S9.2-3;1-2")

	assert.Equal(t, KindSingle, d.Kind)
	assert.Equal(t, []Position{RightFielder}, d.FieldingSequence)
	require.Len(t, d.Advances, 2)
	require.Len(t, d.Moves, 3)
	assert.Equal(t, Third, moveOf(t, d, Second).To)
	assert.Equal(t, Second, moveOf(t, d, First).To)

	batter := moveOf(t, d, Batter)
	assert.Equal(t, First, batter.To)
	assert.True(t, batter.Implied)
	assert.Empty(t, d.Outs)
	assert.Empty(t, d.Runs)
}

func TestParse_HomeRunRunsAndRBI(t *testing.T) {
	d := mustParse(t, "HR/F7.3-H;2-H;1-H")

	assert.Equal(t, KindHomeRun, d.Kind)
	assert.Equal(t, []Base{Third, Second, First, Batter}, d.Runs)
	assert.Equal(t, d.Runs, d.RBI)
}

func TestParse_RBIRules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		runs []Base
		rbi  []Base
	}{
		{"single scores runner", "S7.2-H", []Base{Second}, []Base{Second}},
		{"explicit no rbi", "S7.3-H(NR);2-H", []Base{Third, Second}, []Base{Second}},
		{"ground ball double play", "64(1)3/GDP.3-H", []Base{Third}, nil},
		{"wild pitch without rbi", "WP.3-H", []Base{Third}, nil},
		{"explicit rbi on strikeout", "K+WP.3-H(RBI)", []Base{Third}, []Base{Third}},
		{"error lets runner from third drive in", "E6.3-H", []Base{Third}, []Base{Third}},
		{"error lets runner from second score", "E6.2-H", []Base{Second}, nil},
		{"advance on error", "S8.2-H(E8)", []Base{Second}, nil},
		{"sacrifice fly", "8/SF.3-H", []Base{Third}, []Base{Third}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := mustParse(t, tc.raw)
			assert.Equal(t, tc.runs, d.Runs)
			assert.Equal(t, tc.rbi, d.RBI)
		})
	}
}

func TestParse_Strikeouts(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		d := mustParse(t, "K")
		assert.Equal(t, KindStrikeout, d.Kind)
		assert.Equal(t, []Base{Batter}, d.Outs)
		assert.Equal(t, []Credit{{Position: Catcher, Kind: CreditPutout}}, d.Credits)
	})

	t.Run("with stolen base", func(t *testing.T) {
		d := mustParse(t, "K+SB2")
		require.Len(t, d.Components, 2)
		assert.Equal(t, KindStrikeout, d.Kind)
		assert.Equal(t, []Base{Batter}, d.Outs)
		assert.Equal(t, Second, moveOf(t, d, First).To)
	})

	t.Run("dropped third strike", func(t *testing.T) {
		d := mustParse(t, "K+WP.B-1")
		assert.Empty(t, d.Outs)
		assert.Equal(t, First, moveOf(t, d, Batter).To)
	})

	t.Run("thrown out at first", func(t *testing.T) {
		d := mustParse(t, "K23")
		assert.Equal(t, []Base{Batter}, d.Outs)
		assert.Equal(t, []Position{Catcher, FirstBaseman}, d.FieldingSequence)
	})
}

func TestParse_MultipleOuts(t *testing.T) {
	t.Run("ground ball double play", func(t *testing.T) {
		d := mustParse(t, "64(1)3/GDP")
		assert.Equal(t, []Base{Batter, First}, d.Outs)
		assert.Equal(t, []Position{Shortstop, SecondBaseman, FirstBaseman}, d.FieldingSequence)
		assert.Len(t, filterCredits(d.Credits, CreditPutout), 2)
		assert.Empty(t, d.Moves)
	})

	t.Run("lined into double play", func(t *testing.T) {
		d := mustParse(t, "8(B)84(2)/LDP")
		assert.Equal(t, []Base{Batter, Second}, d.Outs)
	})

	t.Run("designation adds the batter", func(t *testing.T) {
		d := mustParse(t, "4(1)/FO/DP")
		assert.Equal(t, []Base{Batter, First}, d.Outs)
		_, moved := d.Move(Batter)
		assert.False(t, moved)
	})

	t.Run("force out leaves batter on first", func(t *testing.T) {
		d := mustParse(t, "54(1)/FO")
		assert.Equal(t, []Base{First}, d.Outs)
		assert.Equal(t, First, moveOf(t, d, Batter).To)
	})

	t.Run("triple play", func(t *testing.T) {
		d := mustParse(t, "1(B)16(2)63(1)/LTP")
		assert.Equal(t, []Base{Batter, First, Second}, d.Outs)
	})
}

func TestParse_BaserunningPlays(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    EventKind
		outs    []Base
		moves   map[Base]Base
		credits []Credit
	}{
		{
			name:  "stolen base",
			raw:   "SB2",
			kind:  KindStolenBase,
			moves: map[Base]Base{First: Second},
		},
		{
			name:    "caught stealing",
			raw:     "CS2(26)",
			kind:    KindCaughtStealing,
			outs:    []Base{First},
			credits: []Credit{{Catcher, CreditAssist}, {Shortstop, CreditPutout}},
		},
		{
			name:    "caught stealing home",
			raw:     "CSH(12)",
			kind:    KindCaughtStealing,
			outs:    []Base{Third},
			credits: []Credit{{Pitcher, CreditAssist}, {Catcher, CreditPutout}},
		},
		{
			name:    "caught stealing with error",
			raw:     "CS2(2E4).1-3",
			kind:    KindCaughtStealing,
			moves:   map[Base]Base{First: Third},
			credits: []Credit{{Catcher, CreditAssist}, {SecondBaseman, CreditError}},
		},
		{
			name:    "pickoff",
			raw:     "PO2(26)",
			kind:    KindPickoff,
			outs:    []Base{Second},
			credits: []Credit{{Catcher, CreditAssist}, {Shortstop, CreditPutout}},
		},
		{
			name:    "pickoff error",
			raw:     "PO1(E1)",
			kind:    KindPickoff,
			credits: []Credit{{Pitcher, CreditError}},
		},
		{
			name:    "pickoff caught stealing",
			raw:     "POCS2(1361)",
			kind:    KindPickoffCaughtStealing,
			outs:    []Base{First},
			credits: []Credit{{Pitcher, CreditAssist}, {FirstBaseman, CreditAssist}, {Shortstop, CreditAssist}, {Pitcher, CreditPutout}},
		},
		{
			name:  "wild pitch",
			raw:   "WP.2-3",
			kind:  KindWildPitch,
			moves: map[Base]Base{Second: Third},
		},
		{
			name:  "balk",
			raw:   "BK.3-H;1-2",
			kind:  KindBalk,
			moves: map[Base]Base{Third: Home, First: Second},
		},
		{
			name:  "defensive indifference",
			raw:   "DI.1-2",
			kind:  KindDefensiveIndifference,
			moves: map[Base]Base{First: Second},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := mustParse(t, tc.raw)
			assert.Equal(t, tc.kind, d.Kind)
			assert.False(t, d.IsPlateAppearance())
			assert.Equal(t, tc.outs, d.Outs)
			require.Len(t, d.Moves, len(tc.moves))
			for from, to := range tc.moves {
				assert.Equal(t, to, moveOf(t, d, from).To)
			}
			assert.Equal(t, tc.credits, d.Credits)
		})
	}
}

func TestParse_ReachedOnError(t *testing.T) {
	d := mustParse(t, "E6")
	assert.Equal(t, KindError, d.Kind)
	assert.True(t, d.ReachedOnError())
	assert.Equal(t, First, moveOf(t, d, Batter).To)
	assert.Equal(t, []Credit{{Position: Shortstop, Kind: CreditError}}, d.Credits)
	assert.Empty(t, d.Outs)

	d = mustParse(t, "6E3")
	assert.Equal(t, KindError, d.Kind)
	assert.Equal(t, []Credit{{Shortstop, CreditAssist}, {FirstBaseman, CreditError}}, d.Credits)
}

func TestParse_AwardsAndFieldersChoice(t *testing.T) {
	tests := []struct {
		raw  string
		kind EventKind
	}{
		{"W", KindWalk},
		{"IW", KindIntentionalWalk},
		{"I", KindIntentionalWalk},
		{"HP", KindHitByPitch},
		{"C/E2", KindInterference},
		{"FC5", KindFieldersChoice},
		{"D7/L", KindDouble},
		{"DGR/9", KindGroundRuleDouble},
		{"T9", KindTriple},
		{"H", KindHomeRun},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			d := mustParse(t, tc.raw)
			assert.Equal(t, tc.kind, d.Kind)
			assert.True(t, d.IsPlateAppearance())
			_, moved := d.Move(Batter)
			assert.True(t, moved)
			assert.Empty(t, d.Outs)
		})
	}
}

func TestParse_ImpliedBatterDestination(t *testing.T) {
	tests := map[string]Base{
		"S8":  First,
		"D8":  Second,
		"T8":  Third,
		"HR9": Home,
		"W":   First,
	}
	for raw, want := range tests {
		d := mustParse(t, raw)
		assert.Equal(t, want, moveOf(t, d, Batter).To, raw)
	}
}

func TestParse_AdvanceWithoutOriginIsBatter(t *testing.T) {
	d := mustParse(t, "S8.-2")
	require.Len(t, d.Moves, 1)
	m := d.Moves[0]
	assert.Equal(t, Batter, m.From)
	assert.Equal(t, Second, m.To)
	assert.False(t, m.Implied)

	d = mustParse(t, "SB2.-3")
	assert.Equal(t, []string{"-3"}, d.UnrecognizedTokens())
}

func TestParse_BackwardAdvanceRejected(t *testing.T) {
	d := mustParse(t, "S8.2-1")

	assert.Empty(t, d.Advances)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, ErrCodeBackwardAdvance, d.Warnings[0].Code)
	assert.Equal(t, "2-1", d.Warnings[0].Token)
	for _, m := range d.Moves {
		assert.LessOrEqual(t, m.From, m.To)
	}
}

func TestParse_RedundantAdvanceDropped(t *testing.T) {
	d := mustParse(t, "S8.1-1")
	require.Len(t, d.Moves, 1)
	assert.Equal(t, Batter, d.Moves[0].From)

	d = mustParse(t, "K.3X3(25)")
	assert.Equal(t, []Base{Batter, Third}, d.Outs)
}

func TestParse_AdvanceAnnotations(t *testing.T) {
	d := mustParse(t, "S8.3-H(UR)(NR);2XH(82);1-3(E8/TH)")

	home := moveOf(t, d, Third)
	assert.True(t, home.Flags.Has(FlagUnearned))
	assert.True(t, home.Flags.Has(FlagNoRBI))

	out := moveOf(t, d, Second)
	assert.True(t, out.Out)
	assert.Equal(t, []Credit{{CenterFielder, CreditAssist}, {Catcher, CreditPutout}}, out.Credits)

	third := moveOf(t, d, First)
	assert.False(t, third.Out)
	assert.True(t, third.Flags.Has(FlagThrow))
	assert.Equal(t, []Credit{{CenterFielder, CreditError}}, third.Credits)

	assert.Equal(t, []Base{Second}, d.Outs)
	assert.Equal(t, []Base{Third}, d.Runs)
	assert.Empty(t, d.RBI)
}

func TestParse_OutOnErrorIsSafe(t *testing.T) {
	d := mustParse(t, "S9.1X3(5E5)")
	m := moveOf(t, d, First)
	assert.False(t, m.Out)
	assert.Equal(t, Third, m.To)
	assert.Empty(t, d.Outs)
}

func TestParse_ConflictingPutoutPrefersAdvance(t *testing.T) {
	d := mustParse(t, "64(1)3/GDP.1X2(46)")

	require.NotEmpty(t, d.Warnings)
	assert.Equal(t, ErrCodeConflict, d.Warnings[0].Code)
	assert.Equal(t, []Base{Batter, First}, d.Outs)
	assert.Equal(t, []Credit{
		{FirstBaseman, CreditPutout},
		{SecondBaseman, CreditAssist},
		{Shortstop, CreditPutout},
	}, d.Credits)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"empty", "", ErrCodeEmpty},
		{"only annotation characters", "#! ", ErrCodeEmpty},
		{"two batter outcomes", "S8+W", ErrCodeMultiplePlateAppearances},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Parse(tc.raw)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.True(t, IsParseError(err))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.code, pe.Code)
			assert.Equal(t, tc.raw, pe.Input)
		})
	}
}

func TestParse_UnknownEventDegrades(t *testing.T) {
	d := mustParse(t, "ZZ9/G")
	assert.Equal(t, KindOther, d.Kind)
	assert.Equal(t, []string{"ZZ9"}, d.UnrecognizedTokens())
	assert.Equal(t, ContactGroundBall, d.Contact)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "63/G", Normalize("63!/G#"))
	assert.Equal(t, "06", Normalize("?6"))
	assert.Equal(t, "0/F", Normalize("99/F"))

	d := mustParse(t, "99")
	assert.Equal(t, []Position{PositionUnknown}, d.FieldingSequence)
}

func TestParse_NoPlayAndFoulError(t *testing.T) {
	d := mustParse(t, "NP")
	assert.Equal(t, KindNoPlay, d.Kind)
	assert.Empty(t, d.Moves)
	assert.Empty(t, d.Outs)

	d = mustParse(t, "FLE5")
	assert.Equal(t, KindErrorOnFoul, d.Kind)
	assert.Equal(t, []Credit{{ThirdBaseman, CreditError}}, d.Credits)
}

func TestModifiers(t *testing.T) {
	t.Run("round trip keeps order and duplicates", func(t *testing.T) {
		d := mustParse(t, "S8/L/L/78XD/ZZZ/E4")
		assert.Equal(t, "L/L/78XD/ZZZ/E4", ModifierString(d.Modifiers))
	})

	t.Run("contact and location", func(t *testing.T) {
		d := mustParse(t, "S8/L9L+")
		assert.Equal(t, ContactLineDrive, d.Contact)
		assert.Equal(t, Location{Zone: "9", Angle: "L", Strength: "+"}, d.Location)

		d = mustParse(t, "8/78XD")
		assert.Equal(t, ContactUnknown, d.Contact)
		assert.Equal(t, Location{Zone: "78", Depth: "XD"}, d.Location)
	})

	t.Run("coded modifiers", func(t *testing.T) {
		d := mustParse(t, "S8/E4/R34/THH/SF")
		require.Len(t, d.Modifiers, 4)
		assert.Equal(t, ModError, d.Modifiers[0].Code)
		assert.Equal(t, SecondBaseman, d.Modifiers[0].Position)
		assert.Equal(t, ModRelay, d.Modifiers[1].Code)
		assert.Equal(t, []Position{ThirdBaseman, SecondBaseman}, d.Modifiers[1].Fielders)
		assert.Equal(t, ModThrow, d.Modifiers[2].Code)
		assert.True(t, d.Modifiers[2].HasBase)
		assert.Equal(t, Home, d.Modifiers[2].Base)
		assert.Equal(t, ModSacrificeFly, d.Modifiers[3].Code)
		assert.Contains(t, d.Credits, Credit{SecondBaseman, CreditError})
	})

	t.Run("codes render as notation", func(t *testing.T) {
		assert.Equal(t, "GDP", ModGroundedIntoDoublePlay.String())
		assert.Equal(t, "TH", ModThrow.String())
	})
}

func TestParser_Memoizes(t *testing.T) {
	p := NewParser(WithCacheSize(16))

	d1, err := p.Parse("63/G")
	require.NoError(t, err)
	d2, err := p.Parse("63/G")
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	_, err = p.Parse("")
	require.Error(t, err)
	assert.Equal(t, 1, p.Stats().Size)
}

func TestParser_KeysByNormalizedText(t *testing.T) {
	p := NewParser(WithCacheSize(16))

	marked, err := p.Parse("S8#")
	require.NoError(t, err)
	plain, err := p.Parse("S8")
	require.NoError(t, err)
	_, err = p.Parse("S8!")
	require.NoError(t, err)

	assert.Same(t, marked, plain)
	assert.Equal(t, "S8", plain.Raw)
	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, 1, stats.Size)
}
