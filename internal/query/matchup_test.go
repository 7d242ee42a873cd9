package query

import (
	"testing"

	"github.com/energizer-project/showtrack/internal/dex"
)

func sameTypes(got, want []dex.Type) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[dex.Type]bool, len(got))
	for _, t := range got {
		seen[t] = true
	}
	for _, t := range want {
		if !seen[t] {
			return false
		}
	}
	return true
}

func TestWeaknesses(t *testing.T) {
	tests := []struct {
		name     string
		defender []dex.Type
		want     []dex.Type
	}{
		{"steel", []dex.Type{dex.Steel}, []dex.Type{dex.Fire, dex.Fighting, dex.Ground}},
		{"water ground", []dex.Type{dex.Water, dex.Ground}, []dex.Type{dex.Grass}},
		{"normal", []dex.Type{dex.Normal}, []dex.Type{dex.Fighting}},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (Go 1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			if got := Weaknesses(tt.defender); !sameTypes(got, tt.want) {
				t.Errorf("Weaknesses(%v) = %v, want %v", tt.defender, got, tt.want)
			}
		})
	}
}

func TestImmunities(t *testing.T) {
	got := Immunities([]dex.Type{dex.Ghost})
	if !sameTypes(got, []dex.Type{dex.Normal, dex.Fighting}) {
		t.Errorf("ghost immunities = %v", got)
	}
	if !IsImmuneTo([]dex.Type{dex.Flying, dex.Steel}, dex.Ground) {
		t.Error("flying/steel should be immune to ground")
	}
	if IsImmuneTo([]dex.Type{dex.Water}, dex.Electric) {
		t.Error("water is not immune to electric")
	}
}

func TestResistances(t *testing.T) {
	got := Resistances([]dex.Type{dex.Fire})
	want := []dex.Type{dex.Fire, dex.Grass, dex.Ice, dex.Bug, dex.Steel, dex.Fairy}
	if !sameTypes(got, want) {
		t.Errorf("fire resistances = %v, want %v", got, want)
	}
	for _, r := range Resistances([]dex.Type{dex.Ghost}) {
		if r == dex.Normal {
			t.Error("immunities must not be listed as resistances")
		}
	}
}

func TestIsWeakToAny(t *testing.T) {
	water := []dex.Type{dex.Water}
	if !IsWeakToAny(water, []dex.Type{dex.Fire, dex.Electric}) {
		t.Error("water is weak to electric")
	}
	if IsWeakToAny(water, []dex.Type{dex.Fire, dex.Water}) {
		t.Error("water is not weak to fire or water")
	}
	if IsWeakToAny(water, nil) {
		t.Error("no attackers means no weakness")
	}
}

func TestResistsAll(t *testing.T) {
	steel := []dex.Type{dex.Steel}
	if !ResistsAll(steel, []dex.Type{dex.Normal, dex.Poison}) {
		t.Error("steel resists normal and is immune to poison")
	}
	if ResistsAll(steel, []dex.Type{dex.Normal, dex.Fire}) {
		t.Error("steel does not resist fire")
	}
	if ResistsAll(steel, nil) {
		t.Error("empty attacking list must report false")
	}
}

func TestProfileAndParseTypes(t *testing.T) {
	types, err := ParseTypes("water/Ground")
	if err != nil {
		t.Fatal(err)
	}
	p := Profile(types)
	if !sameTypes(p.Weaknesses, []dex.Type{dex.Grass}) || !sameTypes(p.Immunities, []dex.Type{dex.Electric}) {
		t.Errorf("profile = %+v", p)
	}

	if _, err := ParseTypes("Fire,Shadow"); err == nil {
		t.Error("expected an error for an unknown type")
	}
	if got, _ := ParseTypes(" Fire , Water "); len(got) != 2 {
		t.Errorf("ParseTypes with spaces = %v", got)
	}
}
