// Package game replays the records of one game through a base-out state
// machine.
//
// Split groups a record stream into games at each "id" record. A Machine
// then walks a game's records in order: lineup and substitution records
// maintain who is batting and fielding, play records are parsed and
// applied to the bases, and comments, adjustments and earned-run data are
// attached along the way. The result is a Game holding every Event with
// its derived fields (outs and runs on the play, the responsible pitcher
// for each run, base occupancy before and after).
//
// Historical files contain plays that contradict the state they are
// applied to. The Machine never stops for these: it applies the play as
// best it can, marks the Event StateInconsistent and records an Issue.
package game
