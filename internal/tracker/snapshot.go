package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/protocol"
)

// ErrUnknownSeat is returned when a request names a side id that is not
// a seat.
var ErrUnknownSeat = errors.New("unknown seat")

// ApplySnapshot merges the observer's own team from a decision request.
// The request is authoritative for the observer's side: entries are
// created when missing and revealable fields are overwritten. The first
// snapshot also fixes the observer's seat. A nil request or one without a
// side is a no-op.
func (b *Battle) ApplySnapshot(req *protocol.BattleRequest) error {
	if req == nil || req.Side == nil {
		return nil
	}
	if b.Ended {
		b.IgnoredAfterEnd++
		return nil
	}

	seat, ok := req.Side.Seat()
	if !ok {
		return fmt.Errorf("failed to apply request snapshot: %w: %q", ErrUnknownSeat, req.Side.ID)
	}
	if b.Perspective == nil {
		b.SetPerspective(seat)
		b.logger.Debug().Str("seat", seat.String()).Msg("perspective set from request")
	}

	s := b.ensureSide(seat, req.Side.Name)
	for _, sp := range req.Side.Pokemon {
		details, err := protocol.ParseDetails(sp.Details)
		if err != nil {
			b.logger.Warn().Err(err).Str("ident", sp.Ident).Msg("skipping request entry with bad details")
			continue
		}
		name := identName(sp.Ident, details.Species)

		idx := s.resolveOrCreate(name, details)
		p := s.Pokemon[idx]
		p.setDetails(details)
		syncFromRequest(p, sp)

		if sp.Active && !p.Fainted {
			if _, placed := s.slotOf(idx); !placed {
				for slot, cur := range s.Active {
					if cur == emptySlot {
						s.setActive(slot, idx)
						break
					}
				}
			}
		} else if !sp.Active {
			p.Active = false
		}
	}
	return nil
}

// syncFromRequest overwrites the fields a request reveals.
func syncFromRequest(p *Pokemon, sp protocol.SidePokemon) {
	p.KnownMoves = append([]string(nil), sp.Moves...)

	switch {
	case sp.Ability != "":
		p.Ability = sp.Ability
	case sp.BaseAbility != "":
		p.Ability = sp.BaseAbility
	}

	if sp.Item != "" {
		p.recordItem(sp.Item)
	} else if p.Item != "" {
		p.ItemConsumed = true
	}

	stats := sp.Stats
	p.Stats = &stats

	if sp.TeraType != "" {
		if t, ok := dex.ParseType(sp.TeraType); ok {
			p.TeraType = &t
		}
	}
	if sp.Terastallized != "" {
		p.Terastallized = true
	}

	hs, err := protocol.ParseHPStatus(sp.Condition)
	if err != nil {
		return
	}
	p.HP = dex.MergeHP(p.HP, hs.HP)
	switch st, ok := hs.Status(); {
	case hs.Fainted():
		p.Fainted = true
		p.Status = dex.StatusNone
	case ok:
		p.Status = st
		p.Fainted = false
	default:
		p.Status = dex.StatusNone
		p.Fainted = hs.HP.IsZero()
	}
}

// identName returns the name part of "p1: Pikachu".
func identName(ident, fallback string) string {
	if _, name, ok := strings.Cut(ident, ": "); ok && name != "" {
		return name
	}
	return fallback
}
