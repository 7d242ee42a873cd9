package tracker

import (
	"sort"

	json "github.com/goccy/go-json"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/protocol"
)

// Pokemon is one roster entry. Identity fields come from the details
// string; everything else is what the observer has seen happen to it.
type Pokemon struct {
	// Ident is the name the server uses in subject references.
	Ident    string     `json:"ident"`
	Nickname string     `json:"nickname,omitempty"`
	Species  string     `json:"species"`
	Level    int        `json:"level"`
	Gender   dex.Gender `json:"gender"`
	Shiny    bool       `json:"shiny,omitempty"`

	HP      dex.HP         `json:"hp"`
	Status  dex.Status     `json:"status"`
	Fainted bool           `json:"fainted"`
	Active  bool           `json:"active"`
	Boosts  dex.StatStages `json:"boosts"`

	Volatiles VolatileSet `json:"volatiles"`

	BaseTypes     []dex.Type `json:"base_types,omitempty"`
	CurrentTypes  []dex.Type `json:"current_types,omitempty"`
	TeraType      *dex.Type  `json:"tera_type,omitempty"`
	Terastallized bool       `json:"terastallized,omitempty"`

	KnownMoves   []string               `json:"known_moves"`
	Ability      string                 `json:"ability,omitempty"`
	Item         string                 `json:"item,omitempty"`
	ItemConsumed bool                   `json:"item_consumed,omitempty"`
	Stats        *protocol.PokemonStats `json:"stats,omitempty"`

	Transformed string `json:"transformed,omitempty"`
	MegaEvolved bool   `json:"mega_evolved,omitempty"`
	Dynamaxed   bool   `json:"dynamaxed,omitempty"`
	LastMove    string `json:"last_move,omitempty"`
}

func newPokemon(name string, details protocol.Details) *Pokemon {
	p := &Pokemon{
		Ident:     name,
		HP:        dex.PercentHP{Value: 100},
		Volatiles: make(VolatileSet),
	}
	if name == "" {
		p.Ident = details.Species
	}
	p.setDetails(details)
	return p
}

// Name returns the display name.
func (p *Pokemon) Name() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Species
}

func (p *Pokemon) setDetails(d protocol.Details) {
	p.Species = d.Species
	p.Level = d.Level
	p.Gender = d.Gender
	p.Shiny = d.Shiny
	if p.Ident != d.Species {
		p.Nickname = p.Ident
	} else {
		p.Nickname = ""
	}
	if d.TeraType != "" {
		if t, ok := dex.ParseType(d.TeraType); ok {
			p.TeraType = &t
		}
	}
}

// IsAlive reports whether the Pokémon can still battle.
func (p *Pokemon) IsAlive() bool {
	return !p.Fainted && !p.HP.IsZero()
}

// CanSwitchTo reports whether the Pokémon is a legal switch target.
func (p *Pokemon) CanSwitchTo() bool {
	return p.IsAlive() && !p.Active
}

// HPPercent returns the remaining HP in [0, 100].
func (p *Pokemon) HPPercent() float64 {
	return p.HP.Percent()
}

func (p *Pokemon) HasVolatile(v dex.Volatile) bool {
	_, ok := p.Volatiles[v.Key()]
	return ok
}

// Types returns the current typing, falling back to the base typing.
func (p *Pokemon) Types() []dex.Type {
	if len(p.CurrentTypes) > 0 {
		return p.CurrentTypes
	}
	return p.BaseTypes
}

// SetBaseTypes records the species typing, normally from a dex lookup
// done by the caller.
func (p *Pokemon) SetBaseTypes(types ...dex.Type) {
	p.BaseTypes = append([]dex.Type(nil), types...)
	if !p.Terastallized {
		p.CurrentTypes = append([]dex.Type(nil), types...)
	}
}

func (p *Pokemon) addType(t dex.Type) {
	current := p.Types()
	for _, have := range current {
		if have == t {
			return
		}
	}
	p.CurrentTypes = append(append([]dex.Type(nil), current...), t)
}

// recordMove appends a move to the revealed set once.
func (p *Pokemon) recordMove(move string) {
	p.LastMove = move
	id := dex.ToID(move)
	for _, known := range p.KnownMoves {
		if dex.ToID(known) == id {
			return
		}
	}
	p.KnownMoves = append(p.KnownMoves, move)
}

func (p *Pokemon) recordItem(item string) {
	p.Item = item
	p.ItemConsumed = false
}

func (p *Pokemon) consumeItem(item string) {
	if item != "" {
		p.Item = item
	}
	p.ItemConsumed = true
}

// applyHPStatus folds a condition snapshot into the entry. A fnt code
// marks the entry fainted and clears its status; an empty code leaves
// the status alone.
func (p *Pokemon) applyHPStatus(hs *protocol.HPStatus) {
	if hs == nil {
		return
	}
	if hs.HP != nil {
		p.HP = dex.MergeHP(p.HP, hs.HP)
	}
	if hs.Fainted() {
		p.Fainted = true
		p.Status = dex.StatusNone
		return
	}
	if st, ok := hs.Status(); ok {
		p.Status = st
	}
}

// zeroHP forces HP to zero while keeping its representation.
func (p *Pokemon) zeroHP() {
	switch hp := p.HP.(type) {
	case dex.ExactHP:
		p.HP = dex.ExactHP{Current: 0, Max: hp.Max}
	default:
		p.HP = dex.PercentHP{Value: 0}
	}
}

// switchOut resets the combat-scoped state.
func (p *Pokemon) switchOut() {
	p.Active = false
	p.Boosts.Clear()
	p.Volatiles = make(VolatileSet)
	p.Dynamaxed = false
	p.Terastallized = false
	p.Transformed = ""
	p.CurrentTypes = append([]dex.Type(nil), p.BaseTypes...)
}

func (p *Pokemon) switchIn() {
	p.Active = true
}

func (p *Pokemon) clone() *Pokemon {
	c := *p
	c.Volatiles = p.Volatiles.clone()
	c.BaseTypes = append([]dex.Type(nil), p.BaseTypes...)
	c.CurrentTypes = append([]dex.Type(nil), p.CurrentTypes...)
	c.KnownMoves = append([]string(nil), p.KnownMoves...)
	if p.TeraType != nil {
		t := *p.TeraType
		c.TeraType = &t
	}
	if p.Stats != nil {
		s := *p.Stats
		c.Stats = &s
	}
	return &c
}

// VolatileSet is the set of volatile conditions on a Pokémon, keyed by
// Volatile.Key with the announced form as the value.
type VolatileSet map[dex.Volatile]dex.Volatile

func (vs VolatileSet) add(v dex.Volatile)    { vs[v.Key()] = v }
func (vs VolatileSet) remove(v dex.Volatile) { delete(vs, v.Key()) }

func (vs VolatileSet) clone() VolatileSet {
	out := make(VolatileSet, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Names lists the conditions alphabetically.
func (vs VolatileSet) Names() []string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.String())
	}
	sort.Strings(names)
	return names
}

// MarshalJSON serializes the set as a sorted list of names.
func (vs VolatileSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(vs.Names())
}
