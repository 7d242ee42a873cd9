package tracker

import (
	"github.com/energizer-project/showtrack/internal/dex"
)

// emptySlot marks an active slot with nobody in it.
const emptySlot = -1

// Side is one participant's view of the battle.
type Side struct {
	Seat     dex.Seat `json:"seat"`
	Name     string   `json:"name"`
	TeamSize int      `json:"team_size,omitempty"`
	// Pokemon is append-only; entries are never removed, only fainted.
	Pokemon []*Pokemon `json:"pokemon"`
	// Active holds roster indexes, one per board position.
	Active     []int              `json:"active"`
	Conditions dex.SideConditions `json:"conditions"`
}

func newSide(seat dex.Seat, name string, slots int) *Side {
	s := &Side{
		Seat:       seat,
		Name:       name,
		Conditions: make(dex.SideConditions),
	}
	s.resize(slots)
	return s
}

// resize changes the number of board positions, keeping the existing
// pointers that still fit.
func (s *Side) resize(slots int) {
	if slots < 1 {
		slots = 1
	}
	active := make([]int, slots)
	for i := range active {
		active[i] = emptySlot
		if i < len(s.Active) {
			active[i] = s.Active[i]
		}
	}
	for _, idx := range s.Active[min(slots, len(s.Active)):] {
		if idx != emptySlot {
			s.Pokemon[idx].Active = false
		}
	}
	s.Active = active
}

// Find resolves a subject name: nickname first, then species.
func (s *Side) Find(name string) (int, bool) {
	for i, p := range s.Pokemon {
		if p.Ident == name {
			return i, true
		}
	}
	for i, p := range s.Pokemon {
		if p.Species == name {
			return i, true
		}
	}
	return 0, false
}

func (s *Side) find(name string) *Pokemon {
	if i, ok := s.Find(name); ok {
		return s.Pokemon[i]
	}
	return nil
}

// At returns the Pokémon in a board position, nil when empty.
func (s *Side) At(slot int) *Pokemon {
	if slot < 0 || slot >= len(s.Active) || s.Active[slot] == emptySlot {
		return nil
	}
	return s.Pokemon[s.Active[slot]]
}

// slotOf returns the board position holding a roster index.
func (s *Side) slotOf(idx int) (int, bool) {
	for slot, cur := range s.Active {
		if cur == idx {
			return slot, true
		}
	}
	return 0, false
}

// setActive puts a roster entry into a board position, switching out the
// previous occupant. Fainted entries are refused.
func (s *Side) setActive(slot, idx int) bool {
	if slot < 0 || slot >= len(s.Active) {
		return false
	}
	incoming := s.Pokemon[idx]
	if incoming.Fainted {
		return false
	}
	if prev := s.Active[slot]; prev == idx {
		incoming.switchIn()
		return true
	} else if prev != emptySlot {
		s.Pokemon[prev].switchOut()
	}
	if other, ok := s.slotOf(idx); ok {
		s.Active[other] = emptySlot
	}
	s.Active[slot] = idx
	incoming.switchIn()
	return true
}

// clearSlotOf empties whichever position points at a roster index.
func (s *Side) clearSlotOf(idx int) {
	if slot, ok := s.slotOf(idx); ok {
		s.Active[slot] = emptySlot
	}
}

// ActivePokemon lists the Pokémon on the field, in board order.
func (s *Side) ActivePokemon() []*Pokemon {
	var out []*Pokemon
	for _, idx := range s.Active {
		if idx != emptySlot {
			out = append(out, s.Pokemon[idx])
		}
	}
	return out
}

// Bench lists the living Pokémon that are not on the field.
func (s *Side) Bench() []*Pokemon {
	var out []*Pokemon
	for i, p := range s.Pokemon {
		if _, active := s.slotOf(i); !active && p.IsAlive() {
			out = append(out, p)
		}
	}
	return out
}

func (s *Side) AliveCount() int {
	n := 0
	for _, p := range s.Pokemon {
		if p.IsAlive() {
			n++
		}
	}
	return n
}

func (s *Side) FaintedCount() int {
	n := 0
	for _, p := range s.Pokemon {
		if p.Fainted {
			n++
		}
	}
	return n
}

// AllFainted reports whether every known Pokémon has fainted.
func (s *Side) AllFainted() bool {
	return len(s.Pokemon) > 0 && s.FaintedCount() == len(s.Pokemon)
}

func (s *Side) HasHazards() bool { return s.Conditions.HasHazards() }

func (s *Side) HasScreens() bool { return s.Conditions.HasScreens() }

func (s *Side) clone() *Side {
	c := *s
	c.Pokemon = make([]*Pokemon, len(s.Pokemon))
	for i, p := range s.Pokemon {
		c.Pokemon[i] = p.clone()
	}
	c.Active = append([]int(nil), s.Active...)
	c.Conditions = s.Conditions.Clone()
	return &c
}
