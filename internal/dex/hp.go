package dex

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// HP is a Pokémon's hit points as the observer knows them. It is either
// ExactHP (own team, or any value announced with a maximum) or PercentHP
// (an opponent whose maximum is never revealed).
type HP interface {
	// Percent returns the remaining HP in [0, 100].
	Percent() float64
	// IsZero reports whether no HP remains.
	IsZero() bool
	String() string

	isHP()
}

// ExactHP is an absolute point count with a known maximum.
type ExactHP struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// PercentHP is a bare percentage; the maximum is unknown.
type PercentHP struct {
	Value int `json:"percent"`
}

func (ExactHP) isHP()   {}
func (PercentHP) isHP() {}

func (h ExactHP) Percent() float64 {
	if h.Max <= 0 {
		return 0
	}
	return float64(h.Current) * 100 / float64(h.Max)
}

func (h ExactHP) IsZero() bool { return h.Current <= 0 }

func (h ExactHP) String() string { return fmt.Sprintf("%d/%d", h.Current, h.Max) }

// MarshalJSON tags the value so the two representations stay distinct.
func (h ExactHP) MarshalJSON() ([]byte, error) {
	type plain ExactHP
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{"exact", plain(h)})
}

func (h PercentHP) Percent() float64 { return float64(h.Value) }

func (h PercentHP) IsZero() bool { return h.Value <= 0 }

func (h PercentHP) String() string { return fmt.Sprintf("%d%%", h.Value) }

// MarshalJSON tags the value so the two representations stay distinct.
func (h PercentHP) MarshalJSON() ([]byte, error) {
	type plain PercentHP
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{"percent", plain(h)})
}

// MergeHP folds a newly announced value into the known one. An exact value
// always replaces; a percentage arriving for a Pokémon whose maximum is
// already known is converted to points so the maximum is never lost.
func MergeHP(known, incoming HP) HP {
	pct, isPct := incoming.(PercentHP)
	exact, hadExact := known.(ExactHP)
	if isPct && hadExact && exact.Max > 0 {
		cur := (pct.Value*exact.Max + 50) / 100
		if pct.Value > 0 && cur == 0 {
			cur = 1
		}
		return ExactHP{Current: cur, Max: exact.Max}
	}
	return incoming
}
