package play

import (
	"regexp"
	"strings"

	"github.com/roach88/scorebook/internal/lookup"
)

// Descriptor is the parsed form of one play string.
type Descriptor struct {
	// Raw is the play string after normalization.
	Raw string

	Kind       EventKind
	Components []Component
	// FieldingSequence is the touch order of the primary component.
	FieldingSequence []Position

	Modifiers []Modifier
	Contact   ContactType
	Location  Location

	// Advances are the explicit advances in the order written.
	Advances []Advance

	// Moves is every runner movement after resolution, explicit and
	// implied, one per runner.
	Moves []Advance
	// Outs lists retired runners by starting base.
	Outs []Base
	// Runs lists runners who scored, by starting base.
	Runs []Base
	// RBI lists runners whose run is credited to the batter.
	RBI []Base

	// Credits is every putout, assist, error and fielder's choice the
	// play names.
	Credits []Credit

	Warnings []Warning
}

// Primary returns the component that ends the plate appearance, or the
// first component when none does.
func (d *Descriptor) Primary() *Component {
	for i := range d.Components {
		if d.Components[i].PlateAppearance {
			return &d.Components[i]
		}
	}
	if len(d.Components) > 0 {
		return &d.Components[0]
	}
	return nil
}

// IsPlateAppearance reports whether the play ends the batter's turn.
func (d *Descriptor) IsPlateAppearance() bool {
	p := d.Primary()
	return p != nil && p.PlateAppearance
}

// HasModifier reports whether any modifier carries code.
func (d *Descriptor) HasModifier(code ModifierCode) bool {
	for _, m := range d.Modifiers {
		if m.Code == code {
			return true
		}
	}
	return false
}

// Move returns the resolved movement of the runner starting at from.
func (d *Descriptor) Move(from Base) (Advance, bool) {
	for _, m := range d.Moves {
		if m.From == from {
			return m, true
		}
	}
	return Advance{}, false
}

// IsOut reports whether the runner starting at from is retired.
func (d *Descriptor) IsOut(from Base) bool {
	return containsBase(d.Outs, from)
}

// ReachedOnError reports whether the batter reached because of an error.
func (d *Descriptor) ReachedOnError() bool {
	p := d.Primary()
	return p != nil && p.PlateAppearance && p.Kind == KindError
}

// UnrecognizedTokens returns the raw tokens that matched no known form.
func (d *Descriptor) UnrecognizedTokens() []string {
	var out []string
	for _, w := range d.Warnings {
		if w.Code == ErrCodeUnrecognized {
			out = append(out, w.Token)
		}
	}
	return out
}

var (
	stripRE          = regexp.MustCompile(`[#! ]`)
	unknownFielderRE = regexp.MustCompile(`999*|\?`)
)

// Normalize removes annotation characters and replaces unknown fielder
// markers with "0".
func Normalize(raw string) string {
	s := stripRE.ReplaceAllString(raw, "")
	return unknownFielderRE.ReplaceAllString(s, "0")
}

// Parse parses a single play string.
func Parse(raw string) (*Descriptor, error) {
	s := Normalize(raw)
	if s == "" {
		return nil, &ParseError{Code: ErrCodeEmpty, Input: raw, Message: "empty play"}
	}

	d := &Descriptor{Raw: s}
	main, advances, _ := strings.Cut(s, ".")
	event, mods, _ := strings.Cut(main, "/")

	d.Components, d.Warnings = parseComponents(event)
	pas := 0
	for _, c := range d.Components {
		if c.PlateAppearance {
			pas++
		}
	}
	if pas > 1 {
		return nil, &ParseError{
			Code:    ErrCodeMultiplePlateAppearances,
			Input:   raw,
			Token:   event,
			Message: "more than one batter outcome",
		}
	}

	d.Modifiers = parseModifiers(mods)
	for _, m := range d.Modifiers {
		switch m.Code {
		case ModUnrecognized:
			d.Warnings = append(d.Warnings, unrecognized(m.Raw, "modifier"))
		case ModContact:
			if d.Contact == ContactUnknown {
				d.Contact = m.Contact
			}
			if d.Location.IsZero() {
				d.Location = m.Location
			}
		}
	}

	if p := d.Primary(); p != nil {
		d.Kind = p.Kind
		d.FieldingSequence = p.Fielders
	}

	var ws []Warning
	d.Advances, ws = parseAdvances(advances, d.IsPlateAppearance())
	d.Warnings = append(d.Warnings, ws...)

	d.resolve()
	return d, nil
}

// Parser memoizes Parse. Play strings repeat heavily across a season, so a
// shared Parser avoids most parsing work. A Parser is safe for concurrent
// use.
type Parser struct {
	cache *lookup.Cache[*Descriptor]
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithCache replaces the default cache.
func WithCache(c *lookup.Cache[*Descriptor]) ParserOption {
	return func(p *Parser) {
		p.cache = c
	}
}

// WithCacheSize sets the capacity of the default cache.
func WithCacheSize(n int) ParserOption {
	return func(p *Parser) {
		p.cache = lookup.New[*Descriptor](n)
	}
}

// NewParser creates a Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = lookup.New[*Descriptor](lookup.DefaultCapacity)
	}
	return p
}

// Parse returns the descriptor for raw. Entries are keyed by the normalized
// text, so "S8#" and "S8" share one. Descriptors are shared between callers
// and must not be modified.
func (p *Parser) Parse(raw string) (*Descriptor, error) {
	return p.cache.Get(Normalize(raw), func() (*Descriptor, error) {
		return Parse(raw)
	})
}

// Stats reports cache statistics.
func (p *Parser) Stats() lookup.Stats {
	return p.cache.Stats()
}
