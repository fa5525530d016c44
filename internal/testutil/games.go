package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GameBuilder assembles event-file text for one game.
//
// Both teams start nine batters, v1..v9 and h1..h9. Batters 1 through 8
// field positions 2 through 9 and batter 9 is the designated hitter. The
// pitchers vp and hp do not bat.
type GameBuilder struct {
	id    string
	lines []string
	plays []string
}

// NewGame starts a game between vis and home.
func NewGame(id, vis, home string) *GameBuilder {
	g := &GameBuilder{id: id}
	g.lines = append(g.lines,
		"id,"+id,
		"version,2",
		"info,visteam,"+vis,
		"info,hometeam,"+home,
	)
	for side, prefix := range []string{"v", "h"} {
		for i := 1; i <= 9; i++ {
			pos := i + 1
			if i == 9 {
				pos = 10
			}
			g.lines = append(g.lines, fmt.Sprintf("start,%s%d,\"%s %d\",%d,%d,%d", prefix, i, strings.ToUpper(prefix), i, side, i, pos))
		}
		g.lines = append(g.lines, fmt.Sprintf("start,%sp,\"%s Pitcher\",%d,0,1", prefix, strings.ToUpper(prefix), side))
	}
	return g
}

// Info adds an info record.
func (g *GameBuilder) Info(key, value string) *GameBuilder {
	g.lines = append(g.lines, "info,"+key+","+value)
	return g
}

// Play adds a play record.
func (g *GameBuilder) Play(inning, side int, batter, count, pitches, event string) *GameBuilder {
	g.plays = append(g.plays, fmt.Sprintf("play,%d,%d,%s,%s,%s,%s", inning, side, batter, count, pitches, event))
	return g
}

// Raw adds a record verbatim after the plays written so far.
func (g *GameBuilder) Raw(line string) *GameBuilder {
	g.plays = append(g.plays, line)
	return g
}

// String renders the game with a trailing newline.
func (g *GameBuilder) String() string {
	all := append(append([]string{}, g.lines...), g.plays...)
	return strings.Join(all, "\n") + "\n"
}

// WriteEventFile writes content to dir/name and returns the path.
func WriteEventFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
