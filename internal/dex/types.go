// Package dex defines the closed domain vocabulary of a battle: elemental
// types and their effectiveness chart, statuses, volatile conditions, stat
// stages, weather, terrain, side conditions and seats.
package dex

import (
	"fmt"
	"strings"
)

// Type is one of the 18 elemental types.
type Type uint8

const (
	Normal Type = iota
	Fire
	Water
	Electric
	Grass
	Ice
	Fighting
	Poison
	Ground
	Flying
	Psychic
	Bug
	Rock
	Ghost
	Dragon
	Dark
	Steel
	Fairy

	typeCount
)

// NumTypes is the number of elemental types.
const NumTypes = int(typeCount)

var typeNames = [typeCount]string{
	Normal:   "Normal",
	Fire:     "Fire",
	Water:    "Water",
	Electric: "Electric",
	Grass:    "Grass",
	Ice:      "Ice",
	Fighting: "Fighting",
	Poison:   "Poison",
	Ground:   "Ground",
	Flying:   "Flying",
	Psychic:  "Psychic",
	Bug:      "Bug",
	Rock:     "Rock",
	Ghost:    "Ghost",
	Dragon:   "Dragon",
	Dark:     "Dark",
	Steel:    "Steel",
	Fairy:    "Fairy",
}

// typeChart[attacker][defender] is the damage multiplier of a single-type
// matchup.
var typeChart = [typeCount][typeCount]float64{
	//            Nor Fir Wat Ele Gra Ice Fig Poi Gro Fly Psy Bug Roc Gho Dra Dar Ste Fai
	Normal:   {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, .5, 0, 1, 1, .5, 1},
	Fire:     {1, .5, .5, 1, 2, 2, 1, 1, 1, 1, 1, 2, .5, 1, .5, 1, 2, 1},
	Water:    {1, 2, .5, 1, .5, 1, 1, 1, 2, 1, 1, 1, 2, 1, .5, 1, 1, 1},
	Electric: {1, 1, 2, .5, .5, 1, 1, 1, 0, 2, 1, 1, 1, 1, .5, 1, 1, 1},
	Grass:    {1, .5, 2, 1, .5, 1, 1, .5, 2, .5, 1, .5, 2, 1, .5, 1, .5, 1},
	Ice:      {1, .5, .5, 1, 2, .5, 1, 1, 2, 2, 1, 1, 1, 1, 2, 1, .5, 1},
	Fighting: {2, 1, 1, 1, 1, 2, 1, .5, 1, .5, .5, .5, 2, 0, 1, 2, 2, .5},
	Poison:   {1, 1, 1, 1, 2, 1, 1, .5, .5, 1, 1, 1, .5, .5, 1, 1, 0, 2},
	Ground:   {1, 2, 1, 2, .5, 1, 1, 2, 1, 0, 1, .5, 2, 1, 1, 1, 2, 1},
	Flying:   {1, 1, 1, .5, 2, 1, 2, 1, 1, 1, 1, 2, .5, 1, 1, 1, .5, 1},
	Psychic:  {1, 1, 1, 1, 1, 1, 2, 2, 1, 1, .5, 1, 1, 1, 1, 0, .5, 1},
	Bug:      {1, .5, 1, 1, 2, 1, .5, .5, 1, .5, 2, 1, 1, .5, 1, 2, .5, .5},
	Rock:     {1, 2, 1, 1, 1, 2, .5, 1, .5, 2, 1, 2, 1, 1, 1, 1, .5, 1},
	Ghost:    {0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 1, 2, 1, .5, 1, 1},
	Dragon:   {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, .5, 0},
	Dark:     {1, 1, 1, 1, 1, 1, .5, 1, 1, 1, 2, 1, 1, 2, 1, .5, 1, .5},
	Steel:    {1, .5, .5, .5, 1, 2, 1, 1, 1, 1, 1, 1, 2, 1, 1, 1, .5, 2},
	Fairy:    {1, .5, 1, 1, 1, 1, 2, .5, 1, 1, 1, 1, 1, 1, 2, 2, .5, 1},
}

// AllTypes returns every type in chart order.
func AllTypes() []Type {
	out := make([]Type, 0, typeCount)
	for t := Type(0); t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

// String returns the display name of the type.
func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// MarshalJSON serializes the type as its display name.
func (t Type) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts a type name in any case.
func (t *Type) UnmarshalJSON(data []byte) error {
	parsed, ok := ParseType(strings.Trim(string(data), `"`))
	if !ok {
		return fmt.Errorf("unknown type %s", data)
	}
	*t = parsed
	return nil
}

// ParseType resolves a type name case-insensitively.
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	for t := Type(0); t < typeCount; t++ {
		if strings.EqualFold(typeNames[t], s) {
			return t, true
		}
	}
	return 0, false
}

// Effectiveness returns the multiplier of an attacking type against a
// single defending type.
func Effectiveness(attacker, defender Type) float64 {
	if attacker >= typeCount || defender >= typeCount {
		return 1
	}
	return typeChart[attacker][defender]
}

// EffectivenessAgainst returns the multiplier of an attacking type against
// a multi-typed defender: the product across all defending types.
func EffectivenessAgainst(attacker Type, defenders []Type) float64 {
	mult := 1.0
	for _, d := range defenders {
		mult *= Effectiveness(attacker, d)
	}
	return mult
}
