package dex

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Seat identifies a battle participant, P1 through P4.
type Seat uint8

const (
	P1 Seat = iota
	P2
	P3
	P4
)

// MaxSeats is the number of seats a battle can have.
const MaxSeats = 4

// ParseSeat resolves "p1".."p4" (case-insensitive).
func ParseSeat(s string) (Seat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p1":
		return P1, true
	case "p2":
		return P2, true
	case "p3":
		return P3, true
	case "p4":
		return P4, true
	}
	return 0, false
}

// Index returns the zero-based position of the seat.
func (s Seat) Index() int { return int(s) }

// Opponent returns the seat facing this one: P1 and P2 face each other,
// as do P3 and P4.
func (s Seat) Opponent() Seat {
	switch s {
	case P1:
		return P2
	case P2:
		return P1
	case P3:
		return P4
	default:
		return P3
	}
}

func (s Seat) String() string {
	switch s {
	case P1:
		return "p1"
	case P2:
		return "p2"
	case P3:
		return "p3"
	case P4:
		return "p4"
	}
	return "p?"
}

// MarshalJSON serializes the seat as "p1".."p4".
func (s Seat) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// SlotIndex converts a board position letter to an active-slot index.
// Anything other than b or c maps to slot 0.
func SlotIndex(letter byte) int {
	switch letter {
	case 'b':
		return 1
	case 'c':
		return 2
	}
	return 0
}

// SlotLetter is the inverse of SlotIndex.
func SlotLetter(index int) string {
	switch index {
	case 1:
		return "b"
	case 2:
		return "c"
	}
	return "a"
}

// GameType is the battle variant.
type GameType uint8

const (
	GameTypeUnknown GameType = iota
	Singles
	Doubles
	Triples
	Multi
	FreeForAll
)

var gameTypeNames = map[GameType]string{
	GameTypeUnknown: "unknown",
	Singles:         "singles",
	Doubles:         "doubles",
	Triples:         "triples",
	Multi:           "multi",
	FreeForAll:      "freeforall",
}

// ParseGameType resolves a |gametype| value.
func ParseGameType(s string) (GameType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "singles":
		return Singles, true
	case "doubles":
		return Doubles, true
	case "triples":
		return Triples, true
	case "multi":
		return Multi, true
	case "freeforall":
		return FreeForAll, true
	}
	return GameTypeUnknown, false
}

// ActiveSlots is the number of Pokémon each side has on the field at once.
func (g GameType) ActiveSlots() int {
	switch g {
	case Doubles, Multi:
		return 2
	case Triples:
		return 3
	}
	return 1
}

func (g GameType) String() string { return gameTypeNames[g] }

// MarshalJSON serializes the game type name.
func (g GameType) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}
