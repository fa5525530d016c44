package dataset

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/scorebook/internal/canonical"
	"github.com/roach88/scorebook/internal/game"
)

// Tables holds one row slice per entity.
type Tables struct {
	Games         []GameRow
	Events        []EventRow
	Lineups       []LineupRow
	Substitutions []SubstitutionRow
	Credits       []FieldingCreditRow
	Runs          []RunRow
	Comments      []CommentRow
	Info          []InfoRow
	Advances      []AdvanceRow
	EarnedRuns    []EarnedRunRow
	Adjustments   []AdjustmentRow
}

// AppendGame flattens g onto the tables in state machine order.
func (t *Tables) AppendGame(g *game.Game) {
	t.Games = append(t.Games, GameRow{
		GameID:        g.ID,
		Date:          g.Date,
		Site:          g.Site,
		VisitingTeam:  g.VisitingTeam,
		HomeTeam:      g.HomeTeam,
		HomeBatsFirst: g.HomeBatsFirst,
		VisitorScore:  g.Score[game.Visitor],
		HomeScore:     g.Score[game.Home],
		Events:        len(g.Events),
		Issues:        len(g.Issues),
	})

	for i, e := range g.Info {
		t.Info = append(t.Info, InfoRow{GameID: g.ID, Ordinal: i, Key: e.Key, Value: e.Value})
	}
	for i, c := range g.Comments {
		t.Comments = append(t.Comments, CommentRow{GameID: g.ID, Seq: 0, Ordinal: i, Text: c})
	}

	for i := range g.Events {
		ev := &g.Events[i]
		t.Events = append(t.Events, eventRow(ev))
		for j, c := range ev.Credits {
			t.Credits = append(t.Credits, FieldingCreditRow{
				GameID:   g.ID,
				Seq:      ev.Sequence,
				Ordinal:  j,
				Position: int(c.Position),
				Player:   c.Player,
				Kind:     c.Kind.String(),
			})
		}
		for j, r := range ev.Runs {
			t.Runs = append(t.Runs, RunRow{
				GameID:             g.ID,
				Seq:                ev.Sequence,
				Ordinal:            j,
				Runner:             r.Runner,
				FromBase:           r.From.String(),
				ResponsiblePitcher: r.ResponsiblePitcher,
				InheritedBy:        r.InheritedBy,
				Earned:             r.Earned,
				TeamUnearned:       r.TeamUnearned,
				RBI:                r.RBI,
				BattedIn:           r.BattedIn,
			})
		}
		for j, c := range ev.Comments {
			t.Comments = append(t.Comments, CommentRow{GameID: g.ID, Seq: ev.Sequence, Ordinal: j, Text: c})
		}
		for j, m := range ev.Moves {
			t.Advances = append(t.Advances, advanceRow(ev, j, m))
		}
	}

	for i, er := range g.EarnedRuns {
		t.EarnedRuns = append(t.EarnedRuns, EarnedRunRow{GameID: g.ID, Ordinal: i, Pitcher: er.Pitcher, EarnedRuns: er.Runs})
	}
	for i, a := range g.Adjustments {
		t.Adjustments = append(t.Adjustments, AdjustmentRow{
			GameID:     g.ID,
			Ordinal:    i,
			Kind:       a.Kind,
			Player:     a.Player,
			Side:       int(a.Side),
			Value:      a.Value,
			EventIndex: a.EventIndex,
		})
	}

	for i, s := range g.Lineups {
		row := LineupRow{
			GameID:           g.ID,
			Ordinal:          i,
			Player:           s.Player,
			Name:             s.Name,
			Team:             s.Team,
			Side:             int(s.Side),
			BattingOrder:     s.BattingOrder,
			FieldingPosition: int(s.FieldingPosition),
			Starter:          s.Starter,
			ValidFrom:        s.ValidFromEvent,
		}
		if s.Ended {
			to := s.ValidToEvent
			row.ValidTo = &to
		}
		t.Lineups = append(t.Lineups, row)
	}
	for i, s := range g.Substitutions {
		t.Substitutions = append(t.Substitutions, SubstitutionRow{
			GameID:       g.ID,
			Ordinal:      i,
			EventIndex:   s.EventIndex,
			PlayerIn:     s.PlayerIn,
			PlayerOut:    s.PlayerOut,
			Team:         s.Team,
			Side:         int(s.Side),
			BattingOrder: s.BattingOrder,
			NewPosition:  int(s.NewPosition),
		})
	}
}

// Merge appends other's rows to t.
func (t *Tables) Merge(other *Tables) {
	if other == nil {
		return
	}
	t.Games = append(t.Games, other.Games...)
	t.Events = append(t.Events, other.Events...)
	t.Lineups = append(t.Lineups, other.Lineups...)
	t.Substitutions = append(t.Substitutions, other.Substitutions...)
	t.Credits = append(t.Credits, other.Credits...)
	t.Runs = append(t.Runs, other.Runs...)
	t.Comments = append(t.Comments, other.Comments...)
	t.Info = append(t.Info, other.Info...)
	t.Advances = append(t.Advances, other.Advances...)
	t.EarnedRuns = append(t.EarnedRuns, other.EarnedRuns...)
	t.Adjustments = append(t.Adjustments, other.Adjustments...)
}

// Sort orders every table by game id, then sequence, then ordinal. The sort
// is stable so rows with equal keys keep their insertion order.
func (t *Tables) Sort() {
	slices.SortStableFunc(t.Games, func(a, b GameRow) int {
		return cmp.Compare(a.GameID, b.GameID)
	})
	slices.SortStableFunc(t.Events, func(a, b EventRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Seq, b.Seq))
	})
	slices.SortStableFunc(t.Lineups, func(a, b LineupRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Substitutions, func(a, b SubstitutionRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Credits, func(a, b FieldingCreditRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Seq, b.Seq), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Runs, func(a, b RunRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Seq, b.Seq), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Comments, func(a, b CommentRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Seq, b.Seq), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Info, func(a, b InfoRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Advances, func(a, b AdvanceRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Seq, b.Seq), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.EarnedRuns, func(a, b EarnedRunRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.SortStableFunc(t.Adjustments, func(a, b AdjustmentRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.Ordinal, b.Ordinal))
	})
}

// Counts returns the row count of every table.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		TableGames:         len(t.Games),
		TableEvents:        len(t.Events),
		TableLineups:       len(t.Lineups),
		TableSubstitutions: len(t.Substitutions),
		TableCredits:       len(t.Credits),
		TableRuns:          len(t.Runs),
		TableComments:      len(t.Comments),
		TableInfo:          len(t.Info),
		TableAdvances:      len(t.Advances),
		TableEarnedRuns:    len(t.EarnedRuns),
		TableAdjustments:   len(t.Adjustments),
	}
}

// Rows returns the rows of the named table in their canonical form.
func (t *Tables) Rows(name string) ([]canonical.Canonicaler, error) {
	switch name {
	case TableGames:
		return rowsOf(t.Games), nil
	case TableEvents:
		return rowsOf(t.Events), nil
	case TableLineups:
		return rowsOf(t.Lineups), nil
	case TableSubstitutions:
		return rowsOf(t.Substitutions), nil
	case TableCredits:
		return rowsOf(t.Credits), nil
	case TableRuns:
		return rowsOf(t.Runs), nil
	case TableComments:
		return rowsOf(t.Comments), nil
	case TableInfo:
		return rowsOf(t.Info), nil
	case TableAdvances:
		return rowsOf(t.Advances), nil
	case TableEarnedRuns:
		return rowsOf(t.EarnedRuns), nil
	case TableAdjustments:
		return rowsOf(t.Adjustments), nil
	}
	return nil, fmt.Errorf("unknown table %q", name)
}

func rowsOf[R canonical.Canonicaler](rows []R) []canonical.Canonicaler {
	out := make([]canonical.Canonicaler, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// Fingerprint hashes the canonical JSON of every table. Two runs over the
// same input produce the same fingerprint; call Sort first.
func (t *Tables) Fingerprint() (string, error) {
	doc, err := t.document()
	if err != nil {
		return "", err
	}
	return canonical.Hash(canonical.DomainTables, doc)
}

// GameFingerprint hashes the rows of one game.
func GameFingerprint(g *game.Game) (string, error) {
	var t Tables
	t.AppendGame(g)
	doc, err := t.document()
	if err != nil {
		return "", err
	}
	return canonical.Hash(canonical.DomainGame, doc)
}

func (t *Tables) document() (map[string]any, error) {
	doc := make(map[string]any, len(TableNames))
	for _, name := range TableNames {
		rows, err := t.Rows(name)
		if err != nil {
			return nil, err
		}
		arr := make([]any, len(rows))
		for i, r := range rows {
			arr[i] = r
		}
		doc[name] = arr
	}
	return doc, nil
}
