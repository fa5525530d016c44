package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/scorebook/internal/lookup"
	"github.com/roach88/scorebook/internal/play"
	"github.com/roach88/scorebook/internal/record"
)

// Resolver turns a play string into a descriptor. *play.Parser is the
// usual implementation.
type Resolver interface {
	Parse(raw string) (*play.Descriptor, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(raw string) (*play.Descriptor, error)

// Parse calls f(raw).
func (f ResolverFunc) Parse(raw string) (*play.Descriptor, error) {
	return f(raw)
}

// Machine replays games. It holds no per-game state and can replay games
// from several goroutines at once as long as the Resolver is safe for
// concurrent use.
type Machine struct {
	parser   Resolver
	logger   *slog.Logger
	registry *lookup.Registry
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for per-play diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithRegistry canonicalizes player ids and team codes through reg. Without
// a registry identifiers are kept exactly as written.
func WithRegistry(reg *lookup.Registry) Option {
	return func(m *Machine) {
		m.registry = reg
	}
}

// NewMachine creates a Machine. A nil parser parses every play from
// scratch with play.Parse.
func NewMachine(parser Resolver, opts ...Option) *Machine {
	m := &Machine{parser: parser, logger: slog.Default()}
	if m.parser == nil {
		m.parser = ResolverFunc(play.Parse)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Replay applies a game's records in order and returns the resulting Game.
// State problems are recorded on the Game; an error is returned only when
// ctx is done or the records do not start with an id.
func (m *Machine) Replay(ctx context.Context, gr GameRecords) (*Game, error) {
	if len(gr.Records) == 0 || gr.Records[0].Tag != "id" {
		return nil, ErrMissingID
	}
	r := newReplay(m, gr.Records[0])
	for _, me := range gr.Malformed {
		r.issue(IssueMalformedRecord, me.Line, 0, me.Error())
	}
	for _, rec := range gr.Records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.apply(rec)
	}
	r.finish()
	return r.game, nil
}

// pitchingChange remembers a pitcher who left in the middle of a plate
// appearance.
type pitchingChange struct {
	batter   string
	previous string
	count    play.Count
}

type lastPlay struct {
	valid  bool
	batter string
	side   Side
	count  play.Count
	ended  bool
}

type placement struct {
	base   play.Base
	runner *Runner
}

// replay is the state of one game in progress.
type replay struct {
	m     *Machine
	game  *Game
	clock *Clock
	state BaseOutState
	score [2]int

	begun    bool
	halfDone bool

	slots   [2]map[int]int
	defense [2]map[play.Position]string

	pending *pitchingChange
	last    lastPlay
	placed  []placement
}

func newReplay(m *Machine, id record.Record) *replay {
	r := &replay{
		m:     m,
		game:  &Game{ID: id.Field(0), Line: id.Line},
		clock: NewClock(),
	}
	for s := range r.slots {
		r.slots[s] = map[int]int{}
		r.defense[s] = map[play.Position]string{}
	}
	return r
}

func (r *replay) apply(rec record.Record) {
	switch rec.Tag {
	case "version":
	case "id":
		r.issue(IssueUnknownRecord, rec.Line, r.clock.Current(), "second id record inside game")
	case "info":
		r.info(rec)
	case "start", "sub":
		r.appearance(rec, rec.Tag == "start")
	case "play":
		r.play(rec)
	case "com":
		r.comment(rec.Field(0))
	case "data":
		r.data(rec)
	case "badj", "padj":
		r.adjust(rec.Tag, rec.Field(0), Visitor, rec.Field(1))
	case "ladj":
		side, err := ParseSide(rec.Field(0))
		if err != nil {
			r.malformed(rec, err)
			return
		}
		r.adjust(rec.Tag, "", side, rec.Field(1))
	case "radj":
		r.placeRunner(rec)
	case "presadj":
		r.responsibility(rec)
	default:
		r.issue(IssueUnknownRecord, rec.Line, r.clock.Current(), fmt.Sprintf("unknown record type %q", rec.Tag))
	}
}

func (r *replay) info(rec record.Record) {
	key, value := rec.Field(0), rec.Field(1)
	r.game.Info = append(r.game.Info, InfoEntry{Key: key, Value: value})
	switch key {
	case "visteam":
		r.game.VisitingTeam = r.team(value)
	case "hometeam":
		r.game.HomeTeam = r.team(value)
	case "date":
		r.game.Date = value
	case "site":
		r.game.Site = value
	case "htbf":
		r.game.HomeBatsFirst = value == "true"
	}
}

func (r *replay) appearance(rec record.Record, starter bool) {
	if rec.Len() < 5 {
		r.malformed(rec, fmt.Errorf("%s record needs 5 fields, got %d", rec.Tag, rec.Len()))
		return
	}
	player, name := r.player(rec.Field(0)), rec.Field(1)
	side, err := ParseSide(rec.Field(2))
	if err != nil {
		r.malformed(rec, err)
		return
	}
	order, err := strconv.Atoi(strings.TrimSpace(rec.Field(3)))
	if err != nil || order < 0 || order > 9 {
		r.malformed(rec, fmt.Errorf("invalid batting order %q", rec.Field(3)))
		return
	}
	pos, err := play.ParsePosition(strings.TrimSpace(rec.Field(4)))
	if err != nil {
		r.malformed(rec, err)
		return
	}

	next := r.clock.Current() + 1
	var out string
	if idx, ok := r.slots[side][order]; ok {
		prev := &r.game.Lineups[idx]
		out = prev.Player
		prev.ValidToEvent = r.clock.Current()
		prev.Ended = true
	} else if !starter {
		out = r.defense[side][pos]
	}

	if pos == play.PinchRunner && out != "" {
		for _, runner := range r.state.Occupants {
			if runner != nil && runner.Player == out {
				runner.Player = player
			}
		}
	}

	if pos.IsFielder() || pos == play.DesignatedHitter {
		for p, who := range r.defense[side] {
			if who == player && p != pos {
				delete(r.defense[side], p)
			}
		}
		prev := r.defense[side][pos]
		r.defense[side][pos] = player
		if pos == play.Pitcher && !starter && prev != "" && prev != player {
			r.pitcherLeft(side, prev)
		}
	}

	team := r.game.Team(side)
	r.slots[side][order] = len(r.game.Lineups)
	r.game.Lineups = append(r.game.Lineups, LineupSlot{
		Player:           player,
		Name:             name,
		Team:             team,
		Side:             side,
		BattingOrder:     order,
		FieldingPosition: pos,
		Starter:          starter,
		ValidFromEvent:   next,
	})
	if starter {
		return
	}
	r.game.Substitutions = append(r.game.Substitutions, Substitution{
		PlayerIn:     player,
		Name:         name,
		PlayerOut:    out,
		Team:         team,
		Side:         side,
		BattingOrder: order,
		NewPosition:  pos,
		EventIndex:   next,
	})
}

// pitcherLeft notes a pitching change in the middle of a plate appearance
// so a following walk can be charged to the pitcher who left.
func (r *replay) pitcherLeft(fielding Side, previous string) {
	l := r.last
	if !l.valid || l.ended || l.side != fielding.Other() {
		return
	}
	if !l.count.BallsKnown && !l.count.StrikesKnown {
		return
	}
	if r.pending != nil && r.pending.batter == l.batter {
		return
	}
	r.pending = &pitchingChange{batter: l.batter, previous: previous, count: l.count}
}

func (r *replay) halfFor(side Side) Half {
	if (side == Home) == r.game.HomeBatsFirst {
		return Top
	}
	return Bottom
}

func (r *replay) play(rec record.Record) {
	if rec.Len() < 6 {
		r.malformed(rec, fmt.Errorf("play record needs 6 fields, got %d", rec.Len()))
		return
	}
	inning, err := strconv.Atoi(rec.Field(0))
	if err != nil || inning < 1 {
		r.malformed(rec, fmt.Errorf("invalid inning %q", rec.Field(0)))
		return
	}
	side, err := ParseSide(rec.Field(1))
	if err != nil {
		r.malformed(rec, err)
		return
	}

	ev := Event{
		GameID:      r.game.ID,
		Sequence:    r.clock.Next(),
		Line:        rec.Line,
		Inning:      inning,
		Half:        r.halfFor(side),
		BattingSide: side,
		Batter:      r.player(rec.Field(2)),
		Pitcher:     r.defense[side.Other()][play.Pitcher],
		Count:       play.ParseCount(rec.Field(3)),
		Pitches:     rec.Field(4),
		Raw:         rec.Field(5),
	}

	d, perr := r.m.parser.Parse(ev.Raw)
	noPlay := perr == nil && d.Kind == play.KindNoPlay

	switch {
	case !r.begun:
		r.startHalf(inning, ev.Half, side)
		r.begun = true
	case inning != r.state.Inning || side != r.state.Batting:
		if !r.halfDone {
			r.flag(&ev, fmt.Sprintf("half-inning changed with %d outs", r.state.Outs))
		}
		r.startHalf(inning, ev.Half, side)
	case r.halfDone && !noPlay:
		r.flag(&ev, "play after the third out")
		r.halfDone = false
	}

	ev.OutsBefore = r.state.Outs
	ev.StartBases = r.state.Snapshot()

	if perr != nil {
		ev.Descriptor = &play.Descriptor{Raw: ev.Raw, Kind: play.KindOther}
		ev.ParseError = perr.Error()
		r.eventIssue(&ev, IssueParseError, perr.Error())
	} else {
		ev.Descriptor = d
		r.warnings(&ev, d)
		if !noPlay {
			r.applyPlay(&ev, d)
		}
	}

	ev.EndBases = r.state.Snapshot()
	ev.ScoreAfter = r.score
	if r.state.Outs >= 3 {
		r.state.clearBases()
		r.state.Outs = 0
		r.halfDone = true
	}

	ended := perr == nil && d.IsPlateAppearance()
	r.last = lastPlay{valid: true, batter: ev.Batter, side: side, count: ev.Count, ended: ended}
	if ended {
		r.pending = nil
	}
	r.game.Events = append(r.game.Events, ev)
}

func (r *replay) startHalf(inning int, half Half, side Side) {
	r.state = BaseOutState{Inning: inning, Half: half, Batting: side}
	r.halfDone = false
	r.pending = nil
	for _, p := range r.placed {
		r.state.set(p.base, p.runner)
	}
	r.placed = nil
}

func (r *replay) warnings(ev *Event, d *play.Descriptor) {
	for _, w := range d.Warnings {
		switch w.Code {
		case play.ErrCodeUnrecognized, play.ErrCodeBackwardAdvance:
			r.eventIssue(ev, IssueUnrecognizedToken, w.String())
		default:
			r.flag(ev, w.String())
		}
	}
}

// applyPlay moves runners, records outs and runs. Runners are handled from
// third base down so a runner's destination is vacated before the runner
// behind arrives; the batter goes last.
func (r *replay) applyPlay(ev *Event, d *play.Descriptor) {
	moves := make(map[play.Base]play.Advance, len(d.Moves))
	for _, mv := range d.Moves {
		moves[mv.From] = mv
	}
	forced := r.forcedMoves(d, moves)

	outs := 0
	for _, b := range []play.Base{play.Third, play.Second, play.First} {
		mv, moved := moves[b]
		out := d.IsOut(b)
		if !out && !moved {
			continue
		}
		runner := r.state.At(b)
		if runner == nil {
			r.flag(ev, "runner moves from empty "+b.Name()+" base")
			runner = &Runner{Player: UnknownPlayer}
		} else {
			r.state.set(b, nil)
		}
		if out {
			outs++
			ev.Moves = append(ev.Moves, retired(runner.Player, b, mv, moved))
			continue
		}
		ev.Moves = append(ev.Moves, RunnerMove{Runner: runner.Player, From: b, To: mv.To, HasTo: true, Implied: mv.Implied})
		r.arrive(ev, d, runner, mv, forced[b])
	}

	bm, batterMoved := moves[play.Batter]
	if d.IsOut(play.Batter) {
		outs++
		ev.Moves = append(ev.Moves, retired(ev.Batter, play.Batter, bm, batterMoved))
	} else if batterMoved {
		runner := r.batterRunner(ev, d)
		ev.Moves = append(ev.Moves, RunnerMove{Runner: runner.Player, From: play.Batter, To: bm.To, HasTo: true, Implied: bm.Implied})
		r.arrive(ev, d, runner, bm, false)
	}

	r.state.Outs += outs
	if r.state.Outs > 3 {
		r.flag(ev, fmt.Sprintf("%d outs in the half-inning", r.state.Outs))
		outs -= r.state.Outs - 3
		r.state.Outs = 3
	}
	ev.OutsRecorded = outs

	fielding := ev.BattingSide.Other()
	for _, c := range d.Credits {
		ev.Credits = append(ev.Credits, FieldingCredit{
			Position: c.Position,
			Player:   r.defense[fielding][c.Position],
			Kind:     c.Kind,
		})
	}
	ev.RunsScored = len(ev.Runs)
	for _, run := range ev.Runs {
		if run.RBI {
			ev.RBI++
		}
	}
}

func retired(player string, from play.Base, mv play.Advance, moved bool) RunnerMove {
	m := RunnerMove{Runner: player, From: from, Out: true}
	if moved {
		m.To, m.HasTo, m.Implied = mv.To, true, mv.Implied
	}
	return m
}

// forcedMoves adds the runner movement a play forces without spelling it
// out: everyone scores on a home run, and runners forced by a walk or hit
// batsman move up one base.
func (r *replay) forcedMoves(d *play.Descriptor, moves map[play.Base]play.Advance) map[play.Base]bool {
	forced := map[play.Base]bool{}
	bm, ok := moves[play.Batter]
	if !ok || d.IsOut(play.Batter) {
		return forced
	}
	switch {
	case d.Kind == play.KindHomeRun && bm.To == play.Home:
		for _, b := range []play.Base{play.First, play.Second, play.Third} {
			if _, has := moves[b]; has || d.IsOut(b) || r.state.At(b) == nil {
				continue
			}
			moves[b] = play.Advance{From: b, To: play.Home, Implied: true}
			forced[b] = true
		}
	case d.Kind.AwardsFirst() && bm.To == play.First:
		for b := play.First; b <= play.Third; b++ {
			if r.state.At(b) == nil {
				break
			}
			if _, has := moves[b]; has || d.IsOut(b) {
				break
			}
			moves[b] = play.Advance{From: b, To: b + 1, Implied: true}
			forced[b] = true
		}
	}
	return forced
}

func (r *replay) batterRunner(ev *Event, d *play.Descriptor) *Runner {
	charged := ev.Pitcher
	walk := d.Kind == play.KindWalk || d.Kind == play.KindIntentionalWalk
	if p := r.pending; walk && p != nil && p.batter == ev.Batter && p.count.OldPitcherResponsibleForWalk() {
		charged = p.previous
		ev.ResponsiblePitcher = charged
	}
	return &Runner{
		Player:         ev.Batter,
		ChargedTo:      charged,
		ReachedOnError: d.ReachedOnError() || d.Kind == play.KindInterference,
	}
}

func (r *replay) arrive(ev *Event, d *play.Descriptor, runner *Runner, mv play.Advance, forced bool) {
	if mv.To == play.Home {
		r.scoreRun(ev, d, runner, mv, forced)
		return
	}
	if occ := r.state.At(mv.To); occ != nil {
		r.flag(ev, "runner moves onto occupied "+mv.To.Name()+" base")
	}
	r.state.set(mv.To, runner)
}

func (r *replay) scoreRun(ev *Event, d *play.Descriptor, runner *Runner, mv play.Advance, forced bool) {
	earned := !(runner.ReachedOnError || runner.Placed || mv.Flags.Has(play.FlagUnearned))
	run := Run{
		Runner:             runner.Player,
		From:               mv.From,
		ResponsiblePitcher: runner.ChargedTo,
		Earned:             earned,
		TeamUnearned:       !earned || mv.Flags.Has(play.FlagTeamUnearned),
	}
	if runner.ChargedTo != "" && runner.ChargedTo != ev.Pitcher {
		run.InheritedBy = ev.Pitcher
	}
	if forced {
		run.RBI = d.RBIEligible()
	} else {
		for _, b := range d.RBI {
			if b == mv.From {
				run.RBI = true
			}
		}
	}
	if run.RBI {
		run.BattedIn = ev.Batter
	}
	r.score[ev.BattingSide]++
	ev.Runs = append(ev.Runs, run)
}

func (r *replay) player(raw string) string {
	if r.m.registry == nil {
		return raw
	}
	ref, err := r.m.registry.Player(raw)
	if err != nil {
		return raw
	}
	return ref.ID
}

func (r *replay) team(raw string) string {
	if r.m.registry == nil {
		return raw
	}
	ref, err := r.m.registry.Team(raw)
	if err != nil {
		return raw
	}
	return ref.Code
}

func (r *replay) comment(text string) {
	if n := len(r.game.Events); n > 0 {
		ev := &r.game.Events[n-1]
		ev.Comments = append(ev.Comments, text)
		return
	}
	r.game.Comments = append(r.game.Comments, text)
}

func (r *replay) data(rec record.Record) {
	if rec.Field(0) != "er" {
		r.issue(IssueUnknownRecord, rec.Line, r.clock.Current(), fmt.Sprintf("unknown data type %q", rec.Field(0)))
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(rec.Field(2)))
	if err != nil {
		r.malformed(rec, fmt.Errorf("invalid earned run count %q", rec.Field(2)))
		return
	}
	r.game.EarnedRuns = append(r.game.EarnedRuns, EarnedRuns{Pitcher: rec.Field(1), Runs: n})
}

func (r *replay) adjust(kind, player string, side Side, value string) {
	r.game.Adjustments = append(r.game.Adjustments, Adjustment{
		Kind:       kind,
		Player:     player,
		Side:       side,
		Value:      value,
		EventIndex: r.clock.Current() + 1,
	})
}

// placeRunner handles "radj": a runner placed on base to start an extra
// inning. The record precedes the half it applies to, so the runner is held
// until that half begins.
func (r *replay) placeRunner(rec record.Record) {
	base, err := play.ParseBase(rec.Field(1))
	if err != nil || !base.IsOccupiable() {
		r.malformed(rec, fmt.Errorf("invalid base %q", rec.Field(1)))
		return
	}
	r.adjust(rec.Tag, rec.Field(0), r.state.Batting, rec.Field(1))
	runner := &Runner{Player: r.player(rec.Field(0)), Placed: true}
	if r.halfDone || !r.begun {
		r.placed = append(r.placed, placement{base: base, runner: runner})
		return
	}
	if r.state.At(base) != nil {
		r.issue(IssueStateInconsistency, rec.Line, r.clock.Current(), "runner placed on occupied "+base.Name()+" base")
	}
	r.state.set(base, runner)
}

// responsibility handles "presadj": reassigns the pitcher charged with a
// runner.
func (r *replay) responsibility(rec record.Record) {
	base, err := play.ParseBase(rec.Field(1))
	if err != nil || !base.IsOccupiable() {
		r.malformed(rec, fmt.Errorf("invalid base %q", rec.Field(1)))
		return
	}
	r.adjust(rec.Tag, rec.Field(0), r.state.Batting, rec.Field(1))
	runner := r.state.At(base)
	if runner == nil {
		r.issue(IssueStateInconsistency, rec.Line, r.clock.Current(), "no runner on "+base.Name()+" base to reassign")
		return
	}
	runner.ChargedTo = r.player(rec.Field(0))
}

func (r *replay) finish() {
	r.game.Score = r.score
	sort.SliceStable(r.game.Issues, func(i, j int) bool {
		return r.game.Issues[i].Line < r.game.Issues[j].Line
	})
}

func (r *replay) issue(kind IssueKind, line, seq int, msg string) {
	r.game.Issues = append(r.game.Issues, Issue{Kind: kind, Line: line, Sequence: seq, Message: msg})
	r.m.logger.Debug("game issue",
		"game", r.game.ID,
		"kind", string(kind),
		"line", line,
		"event", seq,
		"message", msg)
}

func (r *replay) malformed(rec record.Record, err error) {
	r.issue(IssueMalformedRecord, rec.Line, r.clock.Current(), err.Error())
}

func (r *replay) eventIssue(ev *Event, kind IssueKind, msg string) {
	is := Issue{Kind: kind, Line: ev.Line, Sequence: ev.Sequence, Message: msg}
	ev.Issues = append(ev.Issues, is)
	r.issue(kind, ev.Line, ev.Sequence, msg)
}

// flag marks ev as inconsistent with the state it was applied to.
func (r *replay) flag(ev *Event, msg string) {
	ev.StateInconsistent = true
	r.eventIssue(ev, IssueStateInconsistency, msg)
}
