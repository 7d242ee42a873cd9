// Package query answers type matchup questions over a defender's typing.
// Every function is pure; callers pass the current types of a tracked
// Pokémon, usually from tracker.Pokemon.Types.
package query

import (
	"fmt"
	"strings"

	"github.com/energizer-project/showtrack/internal/dex"
)

// IsWeakToAny reports whether any attacking type hits the defender for more
// than neutral damage.
func IsWeakToAny(defender, attacking []dex.Type) bool {
	for _, t := range attacking {
		if dex.EffectivenessAgainst(t, defender) > 1 {
			return true
		}
	}
	return false
}

// ResistsAll reports whether every attacking type is resisted or blocked.
// An empty attacking list is never resisted.
func ResistsAll(defender, attacking []dex.Type) bool {
	if len(attacking) == 0 {
		return false
	}
	for _, t := range attacking {
		if dex.EffectivenessAgainst(t, defender) >= 1 {
			return false
		}
	}
	return true
}

// IsImmuneTo reports whether the attacking type deals no damage.
func IsImmuneTo(defender []dex.Type, attacking dex.Type) bool {
	return dex.EffectivenessAgainst(attacking, defender) == 0
}

// Weaknesses lists the types that are super effective, in chart order.
func Weaknesses(defender []dex.Type) []dex.Type {
	return filter(defender, func(m float64) bool { return m > 1 })
}

// Resistances lists the types that deal reduced but nonzero damage.
func Resistances(defender []dex.Type) []dex.Type {
	return filter(defender, func(m float64) bool { return m > 0 && m < 1 })
}

// Immunities lists the types that deal no damage.
func Immunities(defender []dex.Type) []dex.Type {
	return filter(defender, func(m float64) bool { return m == 0 })
}

func filter(defender []dex.Type, keep func(float64) bool) []dex.Type {
	var out []dex.Type
	for _, t := range dex.AllTypes() {
		if keep(dex.EffectivenessAgainst(t, defender)) {
			out = append(out, t)
		}
	}
	return out
}

// Matchup is the full defensive profile of a typing.
type Matchup struct {
	Defender    []dex.Type `json:"defender"`
	Weaknesses  []dex.Type `json:"weaknesses"`
	Resistances []dex.Type `json:"resistances"`
	Immunities  []dex.Type `json:"immunities"`
}

// Profile computes every list for one defender.
func Profile(defender []dex.Type) Matchup {
	return Matchup{
		Defender:    append([]dex.Type(nil), defender...),
		Weaknesses:  Weaknesses(defender),
		Resistances: Resistances(defender),
		Immunities:  Immunities(defender),
	}
}

// ParseTypes parses a comma or slash separated list such as "Fire,Water"
// or "Water/Ground".
func ParseTypes(s string) ([]dex.Type, error) {
	var out []dex.Type
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, ok := dex.ParseType(part)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}
