package store

import (
	"github.com/roach88/scorebook/internal/dataset"
)

type columnKind int

const (
	colText columnKind = iota
	colInt
	colBool
	colNullInt
)

type column struct {
	name string
	kind columnKind
}

type tableLayout struct {
	columns []column
	// orderBy lists the key columns; game_id is compared bytewise.
	orderBy []string
}

func (l tableLayout) names() []string {
	out := make([]string, len(l.columns))
	for i, c := range l.columns {
		out[i] = c.name
	}
	return out
}

func text(name string) column    { return column{name, colText} }
func integer(name string) column { return column{name, colInt} }
func boolean(name string) column { return column{name, colBool} }

// layouts mirrors the Canonical() keys of the dataset row types.
var layouts = map[string]tableLayout{
	dataset.TableGames: {
		columns: []column{
			text("game_id"), text("date"), text("site"), text("visiting_team"), text("home_team"),
			boolean("home_bats_first"), integer("visitor_score"), integer("home_score"),
			integer("events"), integer("issues"),
		},
		orderBy: []string{"game_id"},
	},
	dataset.TableEvents: {
		columns: []column{
			text("game_id"), integer("seq"), integer("inning"), text("half"), integer("batting_side"),
			text("batter"), text("pitcher"), text("responsible_pitcher"), text("count"), text("pitches"),
			integer("pitch_count"), text("play"), text("kind"), boolean("plate_appearance"), boolean("hit"),
			text("fielding_sequence"), text("modifiers"), text("contact"), text("location"),
			integer("outs_before"), integer("outs_recorded"), integer("runs_scored"), integer("rbi"),
			text("start_first"), text("start_second"), text("start_third"),
			text("end_first"), text("end_second"), text("end_third"),
			integer("visitor_score"), integer("home_score"), boolean("state_inconsistent"),
			text("parse_error"), text("unrecognized"),
		},
		orderBy: []string{"game_id", "seq"},
	},
	dataset.TableLineups: {
		columns: []column{
			text("game_id"), integer("ordinal"), text("player"), text("name"), text("team"),
			integer("side"), integer("batting_order"), integer("fielding_position"), boolean("starter"),
			integer("valid_from"), {"valid_to", colNullInt},
		},
		orderBy: []string{"game_id", "ordinal"},
	},
	dataset.TableSubstitutions: {
		columns: []column{
			text("game_id"), integer("ordinal"), integer("event_index"), text("player_in"), text("player_out"),
			text("team"), integer("side"), integer("batting_order"), integer("new_position"),
		},
		orderBy: []string{"game_id", "ordinal"},
	},
	dataset.TableCredits: {
		columns: []column{
			text("game_id"), integer("seq"), integer("ordinal"), integer("position"), text("player"), text("kind"),
		},
		orderBy: []string{"game_id", "seq", "ordinal"},
	},
	dataset.TableRuns: {
		columns: []column{
			text("game_id"), integer("seq"), integer("ordinal"), text("runner"), text("from_base"),
			text("responsible_pitcher"), text("inherited_by"), boolean("earned"), boolean("team_unearned"),
			boolean("rbi"), text("batted_in"),
		},
		orderBy: []string{"game_id", "seq", "ordinal"},
	},
	dataset.TableComments: {
		columns: []column{
			text("game_id"), integer("seq"), integer("ordinal"), text("text"),
		},
		orderBy: []string{"game_id", "seq", "ordinal"},
	},
	dataset.TableInfo: {
		columns: []column{
			text("game_id"), integer("ordinal"), text("key"), text("value"),
		},
		orderBy: []string{"game_id", "ordinal"},
	},
	dataset.TableAdvances: {
		columns: []column{
			text("game_id"), integer("seq"), integer("ordinal"), text("runner"), text("from_base"),
			text("to_base"), boolean("out"), boolean("implied"),
		},
		orderBy: []string{"game_id", "seq", "ordinal"},
	},
	dataset.TableEarnedRuns: {
		columns: []column{
			text("game_id"), integer("ordinal"), text("pitcher"), integer("earned_runs"),
		},
		orderBy: []string{"game_id", "ordinal"},
	},
	dataset.TableAdjustments: {
		columns: []column{
			text("game_id"), integer("ordinal"), text("kind"), text("player"), integer("side"),
			text("value"), integer("event_index"),
		},
		orderBy: []string{"game_id", "ordinal"},
	},
}
