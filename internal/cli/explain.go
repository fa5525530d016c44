package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebook/internal/play"
)

// ExplainResult describes one parsed play string.
type ExplainResult struct {
	Play             string   `json:"play"`
	Normalized       string   `json:"normalized"`
	Kind             string   `json:"kind"`
	PlateAppearance  bool     `json:"plate_appearance"`
	Hit              bool     `json:"hit"`
	FieldingSequence []string `json:"fielding_sequence,omitempty"`
	Modifiers        string   `json:"modifiers,omitempty"`
	Contact          string   `json:"contact,omitempty"`
	Location         string   `json:"location,omitempty"`
	Moves            []string `json:"moves"`
	Outs             []string `json:"outs"`
	Runs             []string `json:"runs"`
	RBI              []string `json:"rbi"`
	Credits          []string `json:"credits,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <play>",
		Short: "Show how a single play string is interpreted",
		Long: `Parse one play string and print the event kind, runner moves, outs,
runs, RBI and fielding credits it produces.

Quote the play so the shell leaves "/" "(" and "#" alone.

Examples:
  scorebook explain 'S8.1-3;B-2(E8)'
  scorebook explain '64(1)3/GDP' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, raw string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	d, err := play.Parse(raw)
	if err != nil {
		_ = formatter.Error(ErrCodeParse, "play did not parse", err.Error())
		return WrapExitError(ExitFailure, fmt.Sprintf("%s: play did not parse", ErrCodeParse), err)
	}

	result := explain(raw, d)
	if opts.Format == "json" {
		return formatter.Report("", result, nil)
	}

	writeExplainText(formatter.Writer, result)
	return nil
}

func explain(raw string, d *play.Descriptor) ExplainResult {
	result := ExplainResult{
		Play:            raw,
		Normalized:      d.Raw,
		Kind:            d.Kind.String(),
		PlateAppearance: d.IsPlateAppearance(),
		Hit:             d.Kind.IsHit(),
		Modifiers:       play.ModifierString(d.Modifiers),
		Moves:           make([]string, 0, len(d.Moves)),
		Outs:            baseStrings(d.Outs),
		Runs:            baseStrings(d.Runs),
		RBI:             baseStrings(d.RBI),
	}
	for _, p := range d.FieldingSequence {
		result.FieldingSequence = append(result.FieldingSequence, p.String())
	}
	if d.Contact != play.ContactUnknown {
		result.Contact = d.Contact.String()
	}
	if !d.Location.IsZero() {
		result.Location = d.Location.String()
	}
	for _, m := range d.Moves {
		result.Moves = append(result.Moves, moveString(m))
	}
	for _, c := range d.Credits {
		result.Credits = append(result.Credits, c.String())
	}
	for _, w := range d.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	return result
}

// moveString renders a runner move in advance notation, "1-3" or "BX2".
func moveString(a play.Advance) string {
	sep := "-"
	if a.Out {
		sep = "X"
	}
	s := a.From.String() + sep + a.To.String()
	if a.Implied {
		s += " (implied)"
	}
	return s
}

func baseStrings(bases []play.Base) []string {
	out := make([]string, len(bases))
	for i, b := range bases {
		out[i] = b.String()
	}
	return out
}

func writeExplainText(w io.Writer, r ExplainResult) {
	fmt.Fprintf(w, "Play: %s\n", r.Play)
	if r.Normalized != r.Play {
		fmt.Fprintf(w, "Normalized: %s\n", r.Normalized)
	}
	fmt.Fprintf(w, "Kind: %s", r.Kind)
	if r.Hit {
		fmt.Fprint(w, " (hit)")
	}
	if r.PlateAppearance {
		fmt.Fprint(w, " (plate appearance)")
	}
	fmt.Fprintln(w)
	if len(r.FieldingSequence) > 0 {
		fmt.Fprintf(w, "Fielders: %s\n", strings.Join(r.FieldingSequence, " "))
	}
	if r.Modifiers != "" {
		fmt.Fprintf(w, "Modifiers: %s\n", r.Modifiers)
	}
	if r.Contact != "" || r.Location != "" {
		fmt.Fprintf(w, "Batted ball: %s %s\n", r.Contact, r.Location)
	}
	fmt.Fprintf(w, "Moves: %s\n", joinOrNone(r.Moves))
	fmt.Fprintf(w, "Outs: %s\n", joinOrNone(r.Outs))
	fmt.Fprintf(w, "Runs: %s\n", joinOrNone(r.Runs))
	fmt.Fprintf(w, "RBI: %s\n", joinOrNone(r.RBI))
	if len(r.Credits) > 0 {
		fmt.Fprintf(w, "Credits: %s\n", strings.Join(r.Credits, " "))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, " ")
}
