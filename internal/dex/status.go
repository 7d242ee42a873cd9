package dex

// Status is a non-volatile status condition. The zero value means healthy.
type Status uint8

const (
	StatusNone Status = iota
	Burn
	Freeze
	Paralysis
	Poisoned
	Toxic
	Sleep
)

// FaintedCode is the condition suffix the server uses for a fainted
// Pokémon. It is not a status.
const FaintedCode = "fnt"

var statusCodes = map[Status]string{
	StatusNone: "",
	Burn:       "brn",
	Freeze:     "frz",
	Paralysis:  "par",
	Poisoned:   "psn",
	Toxic:      "tox",
	Sleep:      "slp",
}

// ParseStatus resolves a protocol status code such as "par". It reports
// false for "fnt" and for anything unknown.
func ParseStatus(code string) (Status, bool) {
	switch code {
	case "brn":
		return Burn, true
	case "frz":
		return Freeze, true
	case "par":
		return Paralysis, true
	case "psn":
		return Poisoned, true
	case "tox":
		return Toxic, true
	case "slp":
		return Sleep, true
	}
	return StatusNone, false
}

// String returns the protocol code ("" for healthy).
func (s Status) String() string {
	return statusCodes[s]
}

// MarshalJSON serializes the status code, or null when healthy.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusNone {
		return []byte("null"), nil
	}
	return []byte(`"` + s.String() + `"`), nil
}

// Gender of a Pokémon as announced in its details.
type Gender uint8

const (
	Genderless Gender = iota
	Male
	Female
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "M"
	case Female:
		return "F"
	}
	return ""
}

// MarshalJSON serializes the gender letter, or null when genderless.
func (g Gender) MarshalJSON() ([]byte, error) {
	if g == Genderless {
		return []byte("null"), nil
	}
	return []byte(`"` + g.String() + `"`), nil
}
