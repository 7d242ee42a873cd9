package dex

import (
	"fmt"
	"strings"
)

// Stat identifies one of the seven boostable stats.
type Stat uint8

const (
	Atk Stat = iota
	Def
	SpA
	SpD
	Spe
	Accuracy
	Evasion

	statCount
)

// Stage bounds.
const (
	MinStage = -6
	MaxStage = 6
)

var statNames = [statCount]string{
	Atk:      "atk",
	Def:      "def",
	SpA:      "spa",
	SpD:      "spd",
	Spe:      "spe",
	Accuracy: "accuracy",
	Evasion:  "evasion",
}

// AllStats returns the seven boostable stats in protocol order.
func AllStats() []Stat {
	return []Stat{Atk, Def, SpA, SpD, Spe, Accuracy, Evasion}
}

func (s Stat) String() string {
	if s < statCount {
		return statNames[s]
	}
	return fmt.Sprintf("Stat(%d)", uint8(s))
}

// MarshalJSON serializes the stat as its protocol id.
func (s Stat) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ParseStat resolves a protocol stat id. Long names used by older
// generations ("attack", "spatk") are accepted too.
func ParseStat(s string) (Stat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atk", "attack":
		return Atk, true
	case "def", "defense":
		return Def, true
	case "spa", "spatk", "specialattack", "spc":
		return SpA, true
	case "spd", "spdef", "specialdefense":
		return SpD, true
	case "spe", "speed":
		return Spe, true
	case "accuracy", "acc":
		return Accuracy, true
	case "evasion", "eva":
		return Evasion, true
	}
	return 0, false
}

// StatStages holds the seven stage deltas of one Pokémon, each in
// [MinStage, MaxStage].
type StatStages struct {
	Atk      int `json:"atk"`
	Def      int `json:"def"`
	SpA      int `json:"spa"`
	SpD      int `json:"spd"`
	Spe      int `json:"spe"`
	Accuracy int `json:"accuracy"`
	Evasion  int `json:"evasion"`
}

func (s *StatStages) field(stat Stat) *int {
	switch stat {
	case Atk:
		return &s.Atk
	case Def:
		return &s.Def
	case SpA:
		return &s.SpA
	case SpD:
		return &s.SpD
	case Spe:
		return &s.Spe
	case Accuracy:
		return &s.Accuracy
	case Evasion:
		return &s.Evasion
	}
	return nil
}

// Get returns the current stage of a stat.
func (s StatStages) Get(stat Stat) int {
	if p := s.field(stat); p != nil {
		return *p
	}
	return 0
}

// Boost adds amount to a stage, clamping to the legal range, and returns
// the change that was actually applied.
func (s *StatStages) Boost(stat Stat, amount int) int {
	p := s.field(stat)
	if p == nil {
		return 0
	}
	before := *p
	*p = clampStage(before + amount)
	return *p - before
}

// Unboost lowers a stage by amount and returns the applied (negative or
// zero) change.
func (s *StatStages) Unboost(stat Stat, amount int) int {
	return s.Boost(stat, -amount)
}

// Set forces a stage to a value, clamped.
func (s *StatStages) Set(stat Stat, value int) {
	if p := s.field(stat); p != nil {
		*p = clampStage(value)
	}
}

// Clear resets every stage to zero.
func (s *StatStages) Clear() {
	*s = StatStages{}
}

// ClearPositive resets only the raised stages.
func (s *StatStages) ClearPositive() {
	for _, stat := range AllStats() {
		if p := s.field(stat); *p > 0 {
			*p = 0
		}
	}
}

// ClearNegative resets only the lowered stages.
func (s *StatStages) ClearNegative() {
	for _, stat := range AllStats() {
		if p := s.field(stat); *p < 0 {
			*p = 0
		}
	}
}

// Invert negates every stage.
func (s *StatStages) Invert() {
	for _, stat := range AllStats() {
		p := s.field(stat)
		*p = clampStage(-*p)
	}
}

// SwapWith exchanges the named stages between s and other.
func (s *StatStages) SwapWith(other *StatStages, stats []Stat) {
	for _, stat := range stats {
		a, b := s.field(stat), other.field(stat)
		if a == nil || b == nil {
			continue
		}
		*a, *b = *b, *a
	}
}

// IsZero reports whether no stage is modified.
func (s StatStages) IsZero() bool {
	return s == StatStages{}
}

// Multiplier returns the damage-formula multiplier for the stat's stage.
// Accuracy and evasion use the 3-based table, the others the 2-based one.
func (s StatStages) Multiplier(stat Stat) float64 {
	stage := float64(s.Get(stat))
	base := 2.0
	if stat == Accuracy || stat == Evasion {
		base = 3.0
	}
	if stage >= 0 {
		return (base + stage) / base
	}
	return base / (base - stage)
}

// Changed lists the non-zero stages in protocol order, e.g. "atk+2".
func (s StatStages) Changed() []string {
	var out []string
	for _, stat := range AllStats() {
		if v := s.Get(stat); v != 0 {
			out = append(out, fmt.Sprintf("%s%+d", stat, v))
		}
	}
	return out
}

func clampStage(v int) int {
	if v > MaxStage {
		return MaxStage
	}
	if v < MinStage {
		return MinStage
	}
	return v
}
