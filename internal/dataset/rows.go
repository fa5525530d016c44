// Package dataset flattens replayed games into per-entity tables.
//
// Tables are append-only while games are added; AppendGame writes rows in
// the order the state machine produced them. Sort puts the tables into their
// export order, keyed by game id and event sequence, so the output does not
// depend on how work was scheduled.
package dataset

import (
	"strings"

	"github.com/roach88/scorebook/internal/game"
	"github.com/roach88/scorebook/internal/play"
)

// Table names, also used as file and SQL table names.
const (
	TableGames         = "games"
	TableEvents        = "events"
	TableLineups       = "lineups"
	TableSubstitutions = "substitutions"
	TableCredits       = "fielding_credits"
	TableRuns          = "runs"
	TableComments      = "comments"
	TableInfo          = "info"
	TableAdvances      = "advances"
	TableEarnedRuns    = "earned_runs"
	TableAdjustments   = "adjustments"
)

// TableNames lists every table in export order.
var TableNames = []string{
	TableGames,
	TableEvents,
	TableLineups,
	TableSubstitutions,
	TableCredits,
	TableRuns,
	TableComments,
	TableInfo,
	TableAdvances,
	TableEarnedRuns,
	TableAdjustments,
}

// GameRow is one game.
type GameRow struct {
	GameID        string `json:"game_id"`
	Date          string `json:"date"`
	Site          string `json:"site"`
	VisitingTeam  string `json:"visiting_team"`
	HomeTeam      string `json:"home_team"`
	HomeBatsFirst bool   `json:"home_bats_first"`
	VisitorScore  int    `json:"visitor_score"`
	HomeScore     int    `json:"home_score"`
	Events        int    `json:"events"`
	Issues        int    `json:"issues"`
}

func (r GameRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":         r.GameID,
		"date":            r.Date,
		"site":            r.Site,
		"visiting_team":   r.VisitingTeam,
		"home_team":       r.HomeTeam,
		"home_bats_first": r.HomeBatsFirst,
		"visitor_score":   r.VisitorScore,
		"home_score":      r.HomeScore,
		"events":          r.Events,
		"issues":          r.Issues,
	}
}

// EventRow is one play with its derived fields.
type EventRow struct {
	GameID             string `json:"game_id"`
	Seq                int    `json:"seq"`
	Inning             int    `json:"inning"`
	Half               string `json:"half"`
	BattingSide        int    `json:"batting_side"`
	Batter             string `json:"batter"`
	Pitcher            string `json:"pitcher"`
	ResponsiblePitcher string `json:"responsible_pitcher"`
	Count              string `json:"count"`
	Pitches            string `json:"pitches"`
	PitchCount         int    `json:"pitch_count"`
	Play               string `json:"play"`
	Kind               string `json:"kind"`
	PlateAppearance    bool   `json:"plate_appearance"`
	Hit                bool   `json:"hit"`
	FieldingSequence   string `json:"fielding_sequence"`
	Modifiers          string `json:"modifiers"`
	Contact            string `json:"contact"`
	Location           string `json:"location"`
	OutsBefore         int    `json:"outs_before"`
	OutsRecorded       int    `json:"outs_recorded"`
	RunsScored         int    `json:"runs_scored"`
	RBI                int    `json:"rbi"`
	StartFirst         string `json:"start_first"`
	StartSecond        string `json:"start_second"`
	StartThird         string `json:"start_third"`
	EndFirst           string `json:"end_first"`
	EndSecond          string `json:"end_second"`
	EndThird           string `json:"end_third"`
	VisitorScore       int    `json:"visitor_score"`
	HomeScore          int    `json:"home_score"`
	StateInconsistent  bool   `json:"state_inconsistent"`
	ParseError         string `json:"parse_error"`
	Unrecognized       string `json:"unrecognized"`
}

func (r EventRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":             r.GameID,
		"seq":                 r.Seq,
		"inning":              r.Inning,
		"half":                r.Half,
		"batting_side":        r.BattingSide,
		"batter":              r.Batter,
		"pitcher":             r.Pitcher,
		"responsible_pitcher": r.ResponsiblePitcher,
		"count":               r.Count,
		"pitches":             r.Pitches,
		"pitch_count":         r.PitchCount,
		"play":                r.Play,
		"kind":                r.Kind,
		"plate_appearance":    r.PlateAppearance,
		"hit":                 r.Hit,
		"fielding_sequence":   r.FieldingSequence,
		"modifiers":           r.Modifiers,
		"contact":             r.Contact,
		"location":            r.Location,
		"outs_before":         r.OutsBefore,
		"outs_recorded":       r.OutsRecorded,
		"runs_scored":         r.RunsScored,
		"rbi":                 r.RBI,
		"start_first":         r.StartFirst,
		"start_second":        r.StartSecond,
		"start_third":         r.StartThird,
		"end_first":           r.EndFirst,
		"end_second":          r.EndSecond,
		"end_third":           r.EndThird,
		"visitor_score":       r.VisitorScore,
		"home_score":          r.HomeScore,
		"state_inconsistent":  r.StateInconsistent,
		"parse_error":         r.ParseError,
		"unrecognized":        r.Unrecognized,
	}
}

// LineupRow is one lineup slot tenure. ValidTo is nil while the slot was
// still active at the end of the game.
type LineupRow struct {
	GameID           string `json:"game_id"`
	Ordinal          int    `json:"ordinal"`
	Player           string `json:"player"`
	Name             string `json:"name"`
	Team             string `json:"team"`
	Side             int    `json:"side"`
	BattingOrder     int    `json:"batting_order"`
	FieldingPosition int    `json:"fielding_position"`
	Starter          bool   `json:"starter"`
	ValidFrom        int    `json:"valid_from"`
	ValidTo          *int   `json:"valid_to"`
}

func (r LineupRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":           r.GameID,
		"ordinal":           r.Ordinal,
		"player":            r.Player,
		"name":              r.Name,
		"team":              r.Team,
		"side":              r.Side,
		"batting_order":     r.BattingOrder,
		"fielding_position": r.FieldingPosition,
		"starter":           r.Starter,
		"valid_from":        r.ValidFrom,
		"valid_to":          r.ValidTo,
	}
}

// SubstitutionRow is one substitution.
type SubstitutionRow struct {
	GameID       string `json:"game_id"`
	Ordinal      int    `json:"ordinal"`
	EventIndex   int    `json:"event_index"`
	PlayerIn     string `json:"player_in"`
	PlayerOut    string `json:"player_out"`
	Team         string `json:"team"`
	Side         int    `json:"side"`
	BattingOrder int    `json:"batting_order"`
	NewPosition  int    `json:"new_position"`
}

func (r SubstitutionRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":       r.GameID,
		"ordinal":       r.Ordinal,
		"event_index":   r.EventIndex,
		"player_in":     r.PlayerIn,
		"player_out":    r.PlayerOut,
		"team":          r.Team,
		"side":          r.Side,
		"batting_order": r.BattingOrder,
		"new_position":  r.NewPosition,
	}
}

// FieldingCreditRow is one putout, assist, error or fielder's choice.
type FieldingCreditRow struct {
	GameID   string `json:"game_id"`
	Seq      int    `json:"seq"`
	Ordinal  int    `json:"ordinal"`
	Position int    `json:"position"`
	Player   string `json:"player"`
	Kind     string `json:"kind"`
}

func (r FieldingCreditRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":  r.GameID,
		"seq":      r.Seq,
		"ordinal":  r.Ordinal,
		"position": r.Position,
		"player":   r.Player,
		"kind":     r.Kind,
	}
}

// RunRow is one run with its pitcher attribution.
type RunRow struct {
	GameID             string `json:"game_id"`
	Seq                int    `json:"seq"`
	Ordinal            int    `json:"ordinal"`
	Runner             string `json:"runner"`
	FromBase           string `json:"from_base"`
	ResponsiblePitcher string `json:"responsible_pitcher"`
	InheritedBy        string `json:"inherited_by"`
	Earned             bool   `json:"earned"`
	TeamUnearned       bool   `json:"team_unearned"`
	RBI                bool   `json:"rbi"`
	BattedIn           string `json:"batted_in"`
}

func (r RunRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":             r.GameID,
		"seq":                 r.Seq,
		"ordinal":             r.Ordinal,
		"runner":              r.Runner,
		"from_base":           r.FromBase,
		"responsible_pitcher": r.ResponsiblePitcher,
		"inherited_by":        r.InheritedBy,
		"earned":              r.Earned,
		"team_unearned":       r.TeamUnearned,
		"rbi":                 r.RBI,
		"batted_in":           r.BattedIn,
	}
}

// CommentRow is a comment record. Seq 0 marks comments before the first
// play.
type CommentRow struct {
	GameID  string `json:"game_id"`
	Seq     int    `json:"seq"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

func (r CommentRow) Canonical() map[string]any {
	return map[string]any{
		"game_id": r.GameID,
		"seq":     r.Seq,
		"ordinal": r.Ordinal,
		"text":    r.Text,
	}
}

// InfoRow is one info record.
type InfoRow struct {
	GameID  string `json:"game_id"`
	Ordinal int    `json:"ordinal"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

func (r InfoRow) Canonical() map[string]any {
	return map[string]any{
		"game_id": r.GameID,
		"ordinal": r.Ordinal,
		"key":     r.Key,
		"value":   r.Value,
	}
}

// AdvanceRow is one runner moved or retired by a play. ToBase is empty for
// an out that names no base.
type AdvanceRow struct {
	GameID   string `json:"game_id"`
	Seq      int    `json:"seq"`
	Ordinal  int    `json:"ordinal"`
	Runner   string `json:"runner"`
	FromBase string `json:"from_base"`
	ToBase   string `json:"to_base"`
	Out      bool   `json:"out"`
	Implied  bool   `json:"implied"`
}

func (r AdvanceRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":   r.GameID,
		"seq":       r.Seq,
		"ordinal":   r.Ordinal,
		"runner":    r.Runner,
		"from_base": r.FromBase,
		"to_base":   r.ToBase,
		"out":       r.Out,
		"implied":   r.Implied,
	}
}

// EarnedRunRow is a pitcher's official earned runs from a data,er record.
type EarnedRunRow struct {
	GameID     string `json:"game_id"`
	Ordinal    int    `json:"ordinal"`
	Pitcher    string `json:"pitcher"`
	EarnedRuns int    `json:"earned_runs"`
}

func (r EarnedRunRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":     r.GameID,
		"ordinal":     r.Ordinal,
		"pitcher":     r.Pitcher,
		"earned_runs": r.EarnedRuns,
	}
}

// AdjustmentRow is a badj, padj, ladj, radj or presadj record. EventIndex
// is the sequence number of the play it precedes.
type AdjustmentRow struct {
	GameID     string `json:"game_id"`
	Ordinal    int    `json:"ordinal"`
	Kind       string `json:"kind"`
	Player     string `json:"player"`
	Side       int    `json:"side"`
	Value      string `json:"value"`
	EventIndex int    `json:"event_index"`
}

func (r AdjustmentRow) Canonical() map[string]any {
	return map[string]any{
		"game_id":     r.GameID,
		"ordinal":     r.Ordinal,
		"kind":        r.Kind,
		"player":      r.Player,
		"side":        r.Side,
		"value":       r.Value,
		"event_index": r.EventIndex,
	}
}

func advanceRow(ev *game.Event, ordinal int, m game.RunnerMove) AdvanceRow {
	row := AdvanceRow{
		GameID:   ev.GameID,
		Seq:      ev.Sequence,
		Ordinal:  ordinal,
		Runner:   m.Runner,
		FromBase: m.From.String(),
		Out:      m.Out,
		Implied:  m.Implied,
	}
	if m.HasTo {
		row.ToBase = m.To.String()
	}
	return row
}

func eventRow(ev *game.Event) EventRow {
	d := ev.Descriptor
	row := EventRow{
		GameID:             ev.GameID,
		Seq:                ev.Sequence,
		Inning:             ev.Inning,
		Half:               ev.Half.String(),
		BattingSide:        int(ev.BattingSide),
		Batter:             ev.Batter,
		Pitcher:            ev.Pitcher,
		ResponsiblePitcher: ev.ResponsiblePitcher,
		Count:              ev.Count.String(),
		Pitches:            ev.Pitches,
		PitchCount:         play.ParsePitches(ev.Pitches).Pitches,
		Play:               ev.Raw,
		OutsBefore:         ev.OutsBefore,
		OutsRecorded:       ev.OutsRecorded,
		RunsScored:         ev.RunsScored,
		RBI:                ev.RBI,
		StartFirst:         ev.StartBases[0],
		StartSecond:        ev.StartBases[1],
		StartThird:         ev.StartBases[2],
		EndFirst:           ev.EndBases[0],
		EndSecond:          ev.EndBases[1],
		EndThird:           ev.EndBases[2],
		VisitorScore:       ev.ScoreAfter[game.Visitor],
		HomeScore:          ev.ScoreAfter[game.Home],
		StateInconsistent:  ev.StateInconsistent,
		ParseError:         ev.ParseError,
	}
	if d == nil {
		return row
	}
	row.Kind = d.Kind.String()
	row.PlateAppearance = d.IsPlateAppearance()
	row.Hit = d.Kind.IsHit()
	var seq strings.Builder
	for _, p := range d.FieldingSequence {
		seq.WriteString(p.String())
	}
	row.FieldingSequence = seq.String()
	row.Modifiers = play.ModifierString(d.Modifiers)
	if d.Contact != play.ContactUnknown {
		row.Contact = d.Contact.String()
	}
	row.Location = d.Location.String()
	row.Unrecognized = strings.Join(d.UnrecognizedTokens(), "|")
	return row
}
