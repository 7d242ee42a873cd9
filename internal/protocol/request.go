package protocol

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/energizer-project/showtrack/internal/dex"
)

// BattleRequest is the decision request carried by |request|.
type BattleRequest struct {
	RqID        *uint64         `json:"rqid,omitempty"`
	Active      []ActivePokemon `json:"active,omitempty"`
	Side        *RequestSide    `json:"side,omitempty"`
	ForceSwitch []bool          `json:"forceSwitch,omitempty"`
	TeamPreview bool            `json:"teamPreview,omitempty"`
	Wait        bool            `json:"wait,omitempty"`
	NoCancel    bool            `json:"noCancel,omitempty"`
}

// ActivePokemon lists what one active slot may do this turn.
type ActivePokemon struct {
	Moves           []MoveSlot   `json:"moves"`
	Trapped         bool         `json:"trapped,omitempty"`
	MaybeTrapped    bool         `json:"maybeTrapped,omitempty"`
	CanMegaEvo      bool         `json:"canMegaEvo,omitempty"`
	CanUltraBurst   bool         `json:"canUltraBurst,omitempty"`
	CanZMove        []*ZMoveInfo `json:"canZMove,omitempty"`
	CanDynamax      bool         `json:"canDynamax,omitempty"`
	CanGigantamax   string       `json:"canGigantamax,omitempty"`
	CanTerastallize string       `json:"canTerastallize,omitempty"`
	MaxMoves        *MaxMoves    `json:"maxMoves,omitempty"`
}

type MoveSlot struct {
	Name     string `json:"move"`
	ID       string `json:"id"`
	PP       int    `json:"pp"`
	MaxPP    int    `json:"maxpp"`
	Target   string `json:"target,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type ZMoveInfo struct {
	Name   string `json:"move"`
	Target string `json:"target"`
}

type MaxMoves struct {
	MaxMoves []MaxMoveSlot `json:"maxMoves"`
}

type MaxMoveSlot struct {
	Name   string `json:"move"`
	Target string `json:"target"`
}

// RequestSide is the observer's own team with full information.
type RequestSide struct {
	Name    string        `json:"name"`
	ID      string        `json:"id"`
	Pokemon []SidePokemon `json:"pokemon"`
}

// Seat resolves the side id.
func (s RequestSide) Seat() (dex.Seat, bool) {
	return dex.ParseSeat(s.ID)
}

// SidePokemon is one team member in a request.
type SidePokemon struct {
	Ident         string       `json:"ident"`
	Details       string       `json:"details"`
	Condition     string       `json:"condition"`
	Active        bool         `json:"active"`
	Stats         PokemonStats `json:"stats"`
	Moves         []string     `json:"moves"`
	BaseAbility   string       `json:"baseAbility,omitempty"`
	Ability       string       `json:"ability,omitempty"`
	Item          string       `json:"item"`
	Pokeball      string       `json:"pokeball,omitempty"`
	TeraType      string       `json:"teraType,omitempty"`
	Terastallized string       `json:"terastallized,omitempty"`
}

type PokemonStats struct {
	Atk int `json:"atk"`
	Def int `json:"def"`
	SpA int `json:"spa"`
	SpD int `json:"spd"`
	Spe int `json:"spe"`
}

// ParseBattleRequest decodes a request payload. An empty payload yields
// nil without error.
func ParseBattleRequest(raw []byte) (*BattleRequest, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var req BattleRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to parse battle request: %w: %v", ErrInvalidJSON, err)
	}
	return &req, nil
}

// Parse decodes the message payload.
func (r Request) Parse() (*BattleRequest, error) {
	return ParseBattleRequest(r.Payload)
}

// NeedsDecision reports whether the observer must send a choice.
func (r *BattleRequest) NeedsDecision() bool {
	return !r.Wait && (r.TeamPreview || r.ForceSwitch != nil || r.Active != nil)
}

// IsForceSwitch reports whether any slot must switch.
func (r *BattleRequest) IsForceSwitch() bool {
	for _, fs := range r.ForceSwitch {
		if fs {
			return true
		}
	}
	return false
}

// AvailableSwitches returns the benched, healthy team members.
func (r *BattleRequest) AvailableSwitches() []SidePokemon {
	if r.Side == nil {
		return nil
	}
	var out []SidePokemon
	for _, p := range r.Side.Pokemon {
		if !p.Active && !p.IsFainted() {
			out = append(out, p)
		}
	}
	return out
}

// AvailableMoves returns the slot indexes (0-based) of usable moves.
func (a ActivePokemon) AvailableMoves() []int {
	var out []int
	for i, m := range a.Moves {
		if !m.Disabled && m.PP > 0 {
			out = append(out, i)
		}
	}
	return out
}

func (a ActivePokemon) CanSwitch() bool {
	return !a.Trapped && !a.MaybeTrapped
}

func (p SidePokemon) IsFainted() bool {
	return p.Condition == "0 fnt" || strings.HasSuffix(p.Condition, " fnt")
}

// HP returns the exact hit points from the condition string.
func (p SidePokemon) HP() (current, max int, ok bool) {
	hs, err := ParseHPStatus(p.Condition)
	if err != nil {
		return 0, 0, false
	}
	exact, isExact := hs.HP.(dex.ExactHP)
	if !isExact {
		return 0, 0, false
	}
	return exact.Current, exact.Max, true
}

// HPPercent returns remaining HP as a whole percentage, 0 when unknown.
func (p SidePokemon) HPPercent() int {
	cur, max, ok := p.HP()
	if !ok || max <= 0 {
		return 0
	}
	return cur * 100 / max
}

// Status returns the raw status code, "" when healthy.
func (p SidePokemon) Status() string {
	fields := strings.Fields(p.Condition)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Species returns the species from the details string.
func (p SidePokemon) Species() string {
	species, _, _ := strings.Cut(p.Details, ",")
	return species
}
