// Package play parses play-description strings into typed descriptors.
//
// A play string has up to three parts:
//
//	<event>[/<modifier>...][.<advance>;<advance>...]
//
// The event part names what happened (a fielding sequence like "643", a hit
// like "S8", a strikeout, a stolen base, ...) and may join several
// components with "+" or ";" ("K+SB2"). Modifiers describe trajectory, hit
// location and special designations ("G", "78XD", "GDP", "SF"). Advances
// describe runner movement ("2-3", "1XH(92)").
//
// Parsing is purely textual: Parse never looks at game state. Alongside the
// literal structure it resolves everything the string alone determines:
// which runners are out, where every runner ends up (including moves implied
// by the event, like the batter reaching second on a double), runs, RBI and
// fielding credits. The game package applies that resolution to the bases.
//
// Unknown tokens degrade one token at a time. An unrecognized modifier or
// advance annotation is kept verbatim and reported as a Warning; the rest of
// the descriptor is unaffected.
package play
