// Package tracker rebuilds the state of one battle from the decoded
// message stream. A Battle is not safe for concurrent use; hosts that run
// many battles keep one Battle per room and serialize access to it.
package tracker

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/energizer-project/showtrack/internal/dex"
)

// DefaultGeneration is assumed until a |gen| message arrives.
const DefaultGeneration = 9

// Battle is the state of one battle as seen by the observer.
type Battle struct {
	GameType   dex.GameType   `json:"game_type"`
	Generation int            `json:"generation"`
	Tier       string         `json:"tier,omitempty"`
	Rated      bool           `json:"rated,omitempty"`
	Rules      []string       `json:"rules,omitempty"`
	Turn       int            `json:"turn"`
	Field      dex.FieldState `json:"field"`

	Sides [dex.MaxSeats]*Side `json:"sides"`
	// Perspective is the observer's seat, nil for spectators until a
	// request arrives.
	Perspective *dex.Seat `json:"perspective,omitempty"`

	Ended  bool   `json:"ended"`
	Winner string `json:"winner,omitempty"`
	Tie    bool   `json:"tie,omitempty"`
	// IgnoredAfterEnd counts messages dropped because the battle was
	// already over.
	IgnoredAfterEnd int `json:"ignored_after_end,omitempty"`

	logger zerolog.Logger
}

// New creates an empty battle.
func New() *Battle {
	return &Battle{
		Generation: DefaultGeneration,
		logger:     log.With().Str("component", "tracker").Logger(),
	}
}

// WithLogger replaces the battle's logger, typically to add a room field.
func (b *Battle) WithLogger(l zerolog.Logger) *Battle {
	b.logger = l
	return b
}

// SetPerspective records the observer's seat.
func (b *Battle) SetPerspective(seat dex.Seat) {
	b.Perspective = &seat
}

// Side returns the side in a seat, nil if it has not been seen.
func (b *Battle) Side(seat dex.Seat) *Side {
	if int(seat) >= len(b.Sides) {
		return nil
	}
	return b.Sides[seat]
}

// Me returns the observer's side.
func (b *Battle) Me() *Side {
	if b.Perspective == nil {
		return nil
	}
	return b.Side(*b.Perspective)
}

// Opponent returns the side across from the observer.
func (b *Battle) Opponent() *Side {
	if b.Perspective == nil {
		return nil
	}
	return b.Side(b.Perspective.Opponent())
}

// SideList returns the known sides in seat order.
func (b *Battle) SideList() []*Side {
	var out []*Side
	for _, s := range b.Sides {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// AllActive lists every Pokémon on the field.
func (b *Battle) AllActive() []*Pokemon {
	var out []*Pokemon
	for _, s := range b.SideList() {
		out = append(out, s.ActivePokemon()...)
	}
	return out
}

// IsActive reports whether the battle has started and not finished.
func (b *Battle) IsActive() bool {
	return b.Turn > 0 && !b.Ended
}

// IsWaitingToStart reports whether turn 1 has not been announced yet.
func (b *Battle) IsWaitingToStart() bool {
	return b.Turn == 0 && !b.Ended
}

// ensureSide returns the side in a seat, creating it on first sight.
func (b *Battle) ensureSide(seat dex.Seat, name string) *Side {
	if int(seat) >= len(b.Sides) {
		return nil
	}
	s := b.Sides[seat]
	if s == nil {
		s = newSide(seat, name, b.GameType.ActiveSlots())
		b.Sides[seat] = s
		b.logger.Debug().Str("seat", seat.String()).Str("name", name).Msg("side created")
	} else if name != "" {
		s.Name = name
	}
	return s
}

// SetGameType changes the variant and resizes every side's board.
func (b *Battle) SetGameType(gt dex.GameType) {
	b.GameType = gt
	for _, s := range b.SideList() {
		s.resize(gt.ActiveSlots())
	}
}

// Snapshot returns a deep copy that shares nothing with b.
func (b *Battle) Snapshot() *Battle {
	c := *b
	c.Rules = append([]string(nil), b.Rules...)
	for i, s := range b.Sides {
		if s != nil {
			c.Sides[i] = s.clone()
		}
	}
	if b.Perspective != nil {
		seat := *b.Perspective
		c.Perspective = &seat
	}
	return &c
}
