package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebook/internal/game"
	"github.com/roach88/scorebook/internal/play"
	"github.com/roach88/scorebook/internal/record"
)

const sample = `id,AAA202404010
info,visteam,VIS
info,hometeam,HOM
info,date,2024/04/01
com,"pregame note"
start,v1,"Vis One",0,1,6
start,vp,"Vis Pitcher",0,0,1
start,h1,"Home One",1,1,6
start,h3,"Home Three",1,2,3
start,hp,"Home Pitcher",1,0,1
play,1,0,v1,11,BCX,S8/L
play,1,0,v1,00,X,HR/F7
com,"long drive"
play,1,0,v1,00,X,63/G
play,1,0,v1,00,X,K
play,1,0,v1,00,X,K
sub,vr,"Vis Reliever",0,0,1
play,1,1,h1,00,X,K
id,BBB202404010
info,visteam,VIS
info,hometeam,HOM
start,v1,"Vis One",0,1,6
start,h1,"Home One",1,1,6
play,1,0,v1,00,X,W
`

func replayAll(t *testing.T, text string) []*game.Game {
	t.Helper()
	m := game.NewMachine(play.NewParser())
	var games []*game.Game
	for gr, err := range game.Split(record.ReadBytes([]byte(text))) {
		require.NoError(t, err)
		g, err := m.Replay(context.Background(), gr)
		require.NoError(t, err)
		games = append(games, g)
	}
	return games
}

func TestAppendGame(t *testing.T) {
	games := replayAll(t, sample)
	require.Len(t, games, 2)

	var tb Tables
	tb.AppendGame(games[0])

	assert.Equal(t, map[string]int{
		TableGames:         1,
		TableEvents:        6,
		TableLineups:       6,
		TableSubstitutions: 1,
		TableCredits:       5,
		TableRuns:          2,
		TableComments:      2,
		TableInfo:          3,
		TableAdvances:      7,
		TableEarnedRuns:    0,
		TableAdjustments:   0,
	}, tb.Counts())

	g := tb.Games[0]
	assert.Equal(t, "AAA202404010", g.GameID)
	assert.Equal(t, 2, g.VisitorScore)
	assert.Equal(t, 0, g.HomeScore)

	hr := tb.Events[1]
	assert.Equal(t, 2, hr.Seq)
	assert.Equal(t, "home_run", hr.Kind)
	assert.True(t, hr.Hit)
	assert.True(t, hr.PlateAppearance)
	assert.Equal(t, "v1", hr.StartFirst)
	assert.Equal(t, "", hr.EndFirst)
	assert.Equal(t, 2, hr.RunsScored)
	assert.Equal(t, 2, hr.RBI)
	assert.Equal(t, "fly", hr.Contact)
	assert.Equal(t, "7", hr.Location)
	assert.Equal(t, "F7", hr.Modifiers)

	single := tb.Events[0]
	assert.Equal(t, "11", single.Count)
	assert.Equal(t, 3, single.PitchCount)
	assert.Equal(t, "line_drive", single.Contact)

	out := tb.Events[2]
	assert.Equal(t, "63", out.FieldingSequence)
	assert.Equal(t, []FieldingCreditRow{
		{GameID: "AAA202404010", Seq: 3, Ordinal: 0, Position: 6, Player: "h1", Kind: "assist"},
		{GameID: "AAA202404010", Seq: 3, Ordinal: 1, Position: 3, Player: "h3", Kind: "putout"},
	}, tb.Credits[:2])

	assert.Equal(t, CommentRow{GameID: "AAA202404010", Seq: 0, Ordinal: 0, Text: "pregame note"}, tb.Comments[0])
	assert.Equal(t, CommentRow{GameID: "AAA202404010", Seq: 2, Ordinal: 0, Text: "long drive"}, tb.Comments[1])

	var pitcher, reliever LineupRow
	for _, l := range tb.Lineups {
		switch l.Player {
		case "vp":
			pitcher = l
		case "vr":
			reliever = l
		}
	}
	require.NotNil(t, pitcher.ValidTo)
	assert.Equal(t, 5, *pitcher.ValidTo)
	assert.Nil(t, reliever.ValidTo)
	assert.Equal(t, 6, reliever.ValidFrom)

	last := tb.Events[5]
	assert.Equal(t, "bottom", last.Half)
	assert.Equal(t, "vr", last.Pitcher)
}

func TestAppendGameExportsEveryRecord(t *testing.T) {
	games := replayAll(t, `id,CCC202404010
info,visteam,VIS
info,hometeam,HOM
start,v1,"Vis One",0,1,6
start,v2,"Vis Two",0,2,4
start,vp,"Vis Pitcher",0,0,1
start,h1,"Home One",1,1,6
start,h3,"Home Three",1,2,3
start,h4,"Home Four",1,3,4
start,hp,"Home Pitcher",1,0,1
badj,v2,R
play,1,0,v1,00,X,S8
play,1,0,v2,00,X,64(1)3/GDP
ladj,0,3
play,1,0,v1,00,X,K
data,er,hp,0
data,er,vp,2
`)
	require.Len(t, games, 1)

	var tb Tables
	tb.AppendGame(games[0])

	assert.Equal(t, []AdvanceRow{
		{GameID: "CCC202404010", Seq: 1, Ordinal: 0, Runner: "v1", FromBase: "B", ToBase: "1", Implied: true},
		{GameID: "CCC202404010", Seq: 2, Ordinal: 0, Runner: "v1", FromBase: "1", Out: true},
		{GameID: "CCC202404010", Seq: 2, Ordinal: 1, Runner: "v2", FromBase: "B", Out: true},
		{GameID: "CCC202404010", Seq: 3, Ordinal: 0, Runner: "v1", FromBase: "B", Out: true},
	}, tb.Advances)

	assert.Equal(t, []EarnedRunRow{
		{GameID: "CCC202404010", Ordinal: 0, Pitcher: "hp", EarnedRuns: 0},
		{GameID: "CCC202404010", Ordinal: 1, Pitcher: "vp", EarnedRuns: 2},
	}, tb.EarnedRuns)

	require.Len(t, tb.Adjustments, 2)
	assert.Equal(t, AdjustmentRow{GameID: "CCC202404010", Ordinal: 0, Kind: "badj", Player: "v2", Value: "R", EventIndex: 1}, tb.Adjustments[0])
	assert.Equal(t, "ladj", tb.Adjustments[1].Kind)
	assert.Equal(t, "3", tb.Adjustments[1].Value)
	assert.Equal(t, 3, tb.Adjustments[1].EventIndex)

	for _, name := range []string{TableAdvances, TableEarnedRuns, TableAdjustments} {
		rows, err := tb.Rows(name)
		require.NoError(t, err)
		assert.NotEmpty(t, rows, name)
	}
}

func TestSortIsIndependentOfMergeOrder(t *testing.T) {
	games := replayAll(t, sample)

	var a, b, partA, partB Tables
	partA.AppendGame(games[0])
	partB.AppendGame(games[1])

	a.Merge(&partA)
	a.Merge(&partB)
	b.Merge(&partB)
	b.Merge(&partA)
	a.Sort()
	b.Sort()

	assert.Equal(t, a, b)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	games := replayAll(t, sample)

	var tb Tables
	tb.AppendGame(games[0])
	before, err := tb.Fingerprint()
	require.NoError(t, err)

	tb.Events[0].Batter = "someone"
	after, err := tb.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	gf, err := GameFingerprint(games[0])
	require.NoError(t, err)
	assert.NotEqual(t, before, gf)
}

func TestRowsUnknownTable(t *testing.T) {
	var tb Tables
	_, err := tb.Rows("nope")
	assert.Error(t, err)

	for _, name := range TableNames {
		rows, err := tb.Rows(name)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}
}

func TestMergeNil(t *testing.T) {
	var tb Tables
	tb.Merge(nil)
	assert.Equal(t, Tables{}, tb)
}
