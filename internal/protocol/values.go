package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/energizer-project/showtrack/internal/dex"
)

// PokemonRef is a subject reference such as "p1a: Pikachu".
type PokemonRef struct {
	Seat dex.Seat `json:"seat"`
	// Slot is the board position letter, empty when the reference names
	// a Pokémon that is not on the field.
	Slot string `json:"slot,omitempty"`
	Name string `json:"name"`
}

// ParsePokemonRef splits a subject on the first ": ". The name may itself
// contain colons.
func ParsePokemonRef(s string) (PokemonRef, error) {
	if s == "" {
		return PokemonRef{}, fmt.Errorf("%w: pokemon", ErrMissingField)
	}

	position, name, found := strings.Cut(s, ": ")
	if !found {
		position = strings.TrimSuffix(s, ":")
		name = ""
	}
	if len(position) < 2 {
		return PokemonRef{}, fmt.Errorf("%w: pokemon %q", ErrInvalidFormat, s)
	}

	seat, ok := dex.ParseSeat(position[:2])
	if !ok {
		return PokemonRef{}, fmt.Errorf("%w: seat in %q", ErrInvalidFormat, s)
	}

	ref := PokemonRef{Seat: seat, Name: name}
	switch rest := position[2:]; len(rest) {
	case 0:
	case 1:
		// Boards are at most three wide.
		if rest[0] < 'a' || rest[0] > 'c' {
			return PokemonRef{}, fmt.Errorf("%w: slot in %q", ErrInvalidFormat, s)
		}
		ref.Slot = rest
	default:
		return PokemonRef{}, fmt.Errorf("%w: position %q", ErrInvalidFormat, position)
	}
	return ref, nil
}

// SlotIndex returns the active-slot index implied by the position letter.
func (r PokemonRef) SlotIndex() int {
	if r.Slot == "" {
		return 0
	}
	return dex.SlotIndex(r.Slot[0])
}

func (r PokemonRef) String() string {
	if r.Name == "" {
		return r.Seat.String() + r.Slot
	}
	return r.Seat.String() + r.Slot + ": " + r.Name
}

// optionalRef parses a reference that the verb allows to be absent.
func optionalRef(s string) (*PokemonRef, error) {
	if s == "" {
		return nil, nil
	}
	ref, err := ParsePokemonRef(s)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// SideRef names a side, "p1: Alice".
type SideRef struct {
	Seat dex.Seat `json:"seat"`
	Name string   `json:"name"`
}

// ParseSideRef parses the side argument of -sidestart/-sideend.
func ParseSideRef(s string) (SideRef, error) {
	if s == "" {
		return SideRef{}, fmt.Errorf("%w: side", ErrMissingField)
	}
	seatPart, name, _ := strings.Cut(s, ": ")
	if len(seatPart) < 2 {
		return SideRef{}, fmt.Errorf("%w: side %q", ErrInvalidFormat, s)
	}
	seat, ok := dex.ParseSeat(seatPart[:2])
	if !ok {
		return SideRef{}, fmt.Errorf("%w: side %q", ErrInvalidFormat, s)
	}
	return SideRef{Seat: seat, Name: name}, nil
}

// Details is the comma separated identity field: "Pikachu, L50, F, shiny".
type Details struct {
	Species  string     `json:"species"`
	Level    int        `json:"level"`
	Gender   dex.Gender `json:"gender"`
	Shiny    bool       `json:"shiny"`
	TeraType string     `json:"tera_type,omitempty"`
}

// DefaultLevel applies when details carry no L<level> token.
const DefaultLevel = 100

// ParseDetails parses a details string. Modifier tokens may appear in any
// order; unknown tokens are ignored.
func ParseDetails(s string) (Details, error) {
	if strings.TrimSpace(s) == "" {
		return Details{}, fmt.Errorf("%w: details", ErrMissingField)
	}

	tokens := strings.Split(s, ", ")
	d := Details{Species: strings.TrimSpace(tokens[0]), Level: DefaultLevel}
	for _, tok := range tokens[1:] {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "M":
			d.Gender = dex.Male
		case tok == "F":
			d.Gender = dex.Female
		case tok == "shiny":
			d.Shiny = true
		case strings.HasPrefix(tok, "tera:"):
			d.TeraType = strings.TrimPrefix(tok, "tera:")
		case len(tok) > 1 && tok[0] == 'L':
			level, err := strconv.Atoi(tok[1:])
			if err != nil {
				return Details{}, fmt.Errorf("%w: level %q", ErrInvalidFormat, tok)
			}
			d.Level = level
		}
	}
	return d, nil
}

func (d Details) String() string {
	parts := []string{d.Species}
	if d.Level != DefaultLevel {
		parts = append(parts, "L"+strconv.Itoa(d.Level))
	}
	if g := d.Gender.String(); g != "" {
		parts = append(parts, g)
	}
	if d.Shiny {
		parts = append(parts, "shiny")
	}
	if d.TeraType != "" {
		parts = append(parts, "tera:"+d.TeraType)
	}
	return strings.Join(parts, ", ")
}

// HPStatus is a condition field, "CUR[/MAX] [STATUS]".
type HPStatus struct {
	HP dex.HP `json:"hp"`
	// Code is the raw status suffix: a status code, "fnt", or empty.
	Code string `json:"code,omitempty"`
}

// ParseHPStatus parses a condition field. Without "/MAX" the value is a
// percentage.
func ParseHPStatus(s string) (HPStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HPStatus{}, fmt.Errorf("%w: hp", ErrMissingField)
	}

	value, code, _ := strings.Cut(s, " ")
	out := HPStatus{Code: strings.TrimSpace(code)}

	if cur, max, ok := strings.Cut(value, "/"); ok {
		c, err := strconv.Atoi(cur)
		if err != nil {
			return HPStatus{}, fmt.Errorf("%w: hp %q", ErrInvalidFormat, s)
		}
		m, err := strconv.Atoi(max)
		if err != nil {
			return HPStatus{}, fmt.Errorf("%w: max hp %q", ErrInvalidFormat, s)
		}
		out.HP = dex.ExactHP{Current: c, Max: m}
		return out, nil
	}

	pct, err := strconv.Atoi(value)
	if err != nil {
		return HPStatus{}, fmt.Errorf("%w: hp %q", ErrInvalidFormat, s)
	}
	out.HP = dex.PercentHP{Value: pct}
	return out, nil
}

// optionalHPStatus parses a condition field the verb allows to be absent.
func optionalHPStatus(s string) (*HPStatus, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	hp, err := ParseHPStatus(s)
	if err != nil {
		return nil, err
	}
	return &hp, nil
}

// Fainted reports whether the condition carries the fainted marker.
func (h HPStatus) Fainted() bool {
	return h.Code == dex.FaintedCode
}

// Status returns the non-volatile status in the condition, if any.
func (h HPStatus) Status() (dex.Status, bool) {
	return dex.ParseStatus(h.Code)
}

func (h HPStatus) String() string {
	if h.HP == nil {
		return ""
	}
	if h.Code == "" {
		return h.HP.String()
	}
	return h.HP.String() + " " + h.Code
}

// User is a username with its room rank symbol and away status split off.
type User struct {
	Rank   string `json:"rank,omitempty"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// ParseUser splits " Alice", "@Moderator" or "+Bob@!away".
func ParseUser(s string) User {
	var u User
	if s == "" {
		return u
	}
	first := []rune(s)[0]
	if !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		u.Rank = string(first)
		s = s[len(string(first)):]
	}
	u.Name, u.Status, _ = strings.Cut(s, "@")
	return u
}

// ID returns the normalized user id.
func (u User) ID() string {
	return dex.ToID(u.Name)
}

func (u User) String() string {
	return strings.TrimSpace(u.Rank) + u.Name
}
