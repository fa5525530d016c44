package lookup

import (
	"errors"
	"strings"

	"github.com/roach88/scorebook/internal/canonical"
)

// ErrEmptyIdentifier is returned when an identifier is blank after cleanup.
var ErrEmptyIdentifier = errors.New("empty identifier")

// PlayerRef is the canonical form of a player identifier.
type PlayerRef struct {
	ID string
}

// TeamRef is the canonical form of a team code.
type TeamRef struct {
	Code string
}

// Registry resolves raw identifiers from input files to canonical refs.
// Player IDs are lower-case, team codes upper-case, both NFC normalized and
// trimmed.
type Registry struct {
	players *Cache[PlayerRef]
	teams   *Cache[TeamRef]
}

// NewRegistry creates a registry whose caches each hold capacity entries.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		players: New[PlayerRef](capacity),
		teams:   New[TeamRef](capacity),
	}
}

// Player resolves a player identifier.
func (r *Registry) Player(raw string) (PlayerRef, error) {
	return r.players.Get(raw, func() (PlayerRef, error) {
		id := strings.ToLower(strings.TrimSpace(canonical.Normalize(raw)))
		if id == "" {
			return PlayerRef{}, ErrEmptyIdentifier
		}
		return PlayerRef{ID: id}, nil
	})
}

// Team resolves a team code.
func (r *Registry) Team(raw string) (TeamRef, error) {
	return r.teams.Get(raw, func() (TeamRef, error) {
		code := strings.ToUpper(strings.TrimSpace(canonical.Normalize(raw)))
		if code == "" {
			return TeamRef{}, ErrEmptyIdentifier
		}
		return TeamRef{Code: code}, nil
	})
}

// PlayerStats reports activity of the player cache.
func (r *Registry) PlayerStats() Stats {
	return r.players.Stats()
}

// TeamStats reports activity of the team cache.
func (r *Registry) TeamStats() Stats {
	return r.teams.Stats()
}
