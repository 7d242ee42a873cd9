package dex

import (
	"slices"
	"testing"
)

func TestTypeChartValues(t *testing.T) {
	allowed := map[float64]bool{0: true, 0.5: true, 1: true, 2: true}
	for _, att := range AllTypes() {
		for _, def := range AllTypes() {
			if m := Effectiveness(att, def); !allowed[m] {
				t.Errorf("%s vs %s = %v, not a legal single-type multiplier", att, def, m)
			}
		}
	}
}

func TestDualTypeIsProduct(t *testing.T) {
	legal := map[float64]bool{0: true, 0.25: true, 0.5: true, 1: true, 2: true, 4: true}
	for _, att := range AllTypes() {
		for _, d1 := range AllTypes() {
			for _, d2 := range AllTypes() {
				got := EffectivenessAgainst(att, []Type{d1, d2})
				want := Effectiveness(att, d1) * Effectiveness(att, d2)
				if got != want {
					t.Fatalf("%s vs %s/%s = %v, want %v", att, d1, d2, got, want)
				}
				if d1 != d2 && !legal[got] {
					t.Fatalf("%s vs %s/%s = %v, not a legal multiplier", att, d1, d2, got)
				}
			}
		}
	}
}

func TestKnownMatchups(t *testing.T) {
	cases := []struct {
		att  Type
		def  []Type
		want float64
	}{
		{Electric, []Type{Water, Flying}, 4},
		{Ground, []Type{Flying, Steel}, 0},
		{Fire, []Type{Grass, Steel}, 4},
		{Fighting, []Type{Ghost}, 0},
		{Water, []Type{Water, Dragon}, 0.25},
		{Normal, nil, 1},
	}
	for _, c := range cases {
		if got := EffectivenessAgainst(c.att, c.def); got != c.want {
			t.Errorf("%s vs %v = %v, want %v", c.att, c.def, got, c.want)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"fire", "FIRE", " Fire "} {
		if got, ok := ParseType(name); !ok || got != Fire {
			t.Errorf("ParseType(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParseType("Stellar"); ok {
		t.Error("Stellar should not parse as an elemental type")
	}
}

func TestBoostClampsAndReportsApplied(t *testing.T) {
	var s StatStages
	if got := s.Boost(Atk, 5); got != 5 {
		t.Fatalf("first boost applied %d, want 5", got)
	}
	if got := s.Boost(Atk, 3); got != 1 {
		t.Fatalf("boost from +5 by 3 applied %d, want 1", got)
	}
	if got := s.Boost(Atk, 2); got != 0 || s.Atk != MaxStage {
		t.Fatalf("boost at +6 applied %d (stage %d), want 0 at +6", got, s.Atk)
	}

	s.Set(Def, -6)
	if got := s.Unboost(Def, 1); got != 0 || s.Def != MinStage {
		t.Fatalf("unboost at -6 applied %d (stage %d), want 0 at -6", got, s.Def)
	}
	if got := s.Unboost(Spe, 2); got != -2 {
		t.Fatalf("unboost applied %d, want -2", got)
	}
}

func TestStageOperations(t *testing.T) {
	s := StatStages{Atk: 2, Def: -1, Spe: 6, Evasion: -3}

	inv := s
	inv.Invert()
	if inv.Atk != -2 || inv.Def != 1 || inv.Spe != -6 || inv.Evasion != 3 {
		t.Errorf("invert = %+v", inv)
	}

	pos := s
	pos.ClearPositive()
	if pos.Atk != 0 || pos.Spe != 0 || pos.Def != -1 || pos.Evasion != -3 {
		t.Errorf("clear positive = %+v", pos)
	}

	neg := s
	neg.ClearNegative()
	if neg.Def != 0 || neg.Evasion != 0 || neg.Atk != 2 {
		t.Errorf("clear negative = %+v", neg)
	}

	other := StatStages{Atk: -4, SpA: 3}
	a := s
	a.SwapWith(&other, []Stat{Atk, SpA})
	if a.Atk != -4 || a.SpA != 3 || other.Atk != 2 || other.SpA != 0 {
		t.Errorf("swap: a=%+v other=%+v", a, other)
	}
	if a.Def != -1 {
		t.Errorf("swap touched an unnamed stage: %+v", a)
	}

	s.Set(SpD, 12)
	if s.SpD != MaxStage {
		t.Errorf("set should clamp, got %d", s.SpD)
	}
	s.Clear()
	if !s.IsZero() {
		t.Errorf("clear left %+v", s)
	}
}

func TestStageMultiplier(t *testing.T) {
	cases := []struct {
		stat  Stat
		stage int
		want  float64
	}{
		{Atk, 0, 1},
		{Atk, 2, 2},
		{Atk, -2, 0.5},
		{Spe, 6, 4},
		{Accuracy, 3, 2},
		{Evasion, -3, 0.5},
	}
	for _, c := range cases {
		var s StatStages
		s.Set(c.stat, c.stage)
		if got := s.Multiplier(c.stat); got != c.want {
			t.Errorf("%s at %d = %v, want %v", c.stat, c.stage, got, c.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("par"); !ok || s != Paralysis {
		t.Errorf("par = %v, %v", s, ok)
	}
	if _, ok := ParseStatus(FaintedCode); ok {
		t.Error("fnt must not parse as a status")
	}
}

func TestVolatileAliases(t *testing.T) {
	cases := map[string]VolatileKind{
		"move: Mean Look":  Trapped,
		"Snap Trap":        PartialTrap,
		"confusion":        Confusion,
		"Outrage":          Thrash,
		"Petal Dance":      Thrash,
		"lockedmove":       Thrash,
		"King's Shield":    Protect,
		"ability: Flash Fire": FlashFire,
		"perish3":          PerishSong,
		"Follow Me":        CenterOfAttention,
		"Syrup Bomb":       SyrupBomb,
		"Solar Beam":       Charging,
		"Sky Drop":         SkyDrop,
	}
	for in, want := range cases {
		if got := ParseVolatile(in); got.Kind != want {
			t.Errorf("ParseVolatile(%q) = %v, want %v", in, got, volatileNames[want])
		}
	}
}

func TestVolatileOtherKeepsText(t *testing.T) {
	v := ParseVolatile("Quark Drive")
	if !v.IsOther() || v.String() != "Quark Drive" {
		t.Fatalf("got %+v", v)
	}
	if ParseVolatile("Quark Drive") != v {
		t.Fatal("identical unknown text should compare equal")
	}

	prefixed, bare := ParseVolatile("move: Glaive Rush"), ParseVolatile("glaive rush")
	if prefixed.Key() != bare.Key() {
		t.Fatalf("keys differ: %+v vs %+v", prefixed.Key(), bare.Key())
	}
	if prefixed.String() != "Glaive Rush" || bare.String() != "glaive rush" {
		t.Errorf("display text = %q, %q", prefixed.String(), bare.String())
	}
}

func TestParseWeather(t *testing.T) {
	cases := map[string]Weather{
		"SunnyDay":       Sun,
		"RainDance":      Rain,
		"Sandstorm":      Sand,
		"Snow":           Snow,
		"DesolateLand":   HarshSun,
		"PrimordialSea":  HeavyRain,
		"Delta Stream":   StrongWinds,
		"none":           WeatherNone,
		"":               WeatherNone,
	}
	for in, want := range cases {
		got, ok := ParseWeather(in)
		if !ok || got != want {
			t.Errorf("ParseWeather(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseWeather("Shadow Sky"); ok {
		t.Error("unknown weather should not parse")
	}
	if !StrongWinds.IsPrimal() || Rain.IsPrimal() {
		t.Error("primal classification wrong")
	}
}

func TestFieldStartEnd(t *testing.T) {
	var f FieldState
	if !f.ApplyFieldStart("move: Electric Terrain") || f.Terrain != ElectricTerrain {
		t.Fatalf("terrain start: %+v", f)
	}
	if !f.ApplyFieldStart("move: Trick Room") || !f.TrickRoom {
		t.Fatalf("trick room start: %+v", f)
	}
	if f.ApplyFieldStart("move: Something Else") {
		t.Fatal("unknown field condition should not be applied")
	}
	f.ApplyFieldEnd("move: Grassy Terrain")
	if f.Terrain != ElectricTerrain {
		t.Fatal("ending an inactive terrain must not clear the active one")
	}
	f.ApplyFieldEnd("Electric Terrain")
	f.ApplyFieldEnd("move: Trick Room")
	if f.Terrain != TerrainNone || f.TrickRoom {
		t.Fatalf("field end: %+v", f)
	}
}

func TestSideConditionLayers(t *testing.T) {
	sc := SideConditions{}
	spikes := ParseSideCondition("move: Spikes")
	for i := 0; i < 3; i++ {
		if !sc.Add(spikes) {
			t.Fatalf("layer %d refused", i+1)
		}
	}
	if sc.Add(spikes) {
		t.Fatal("fourth spikes layer should be refused")
	}
	if sc.Layers(spikes) != 3 {
		t.Fatalf("layers = %d, want 3", sc.Layers(spikes))
	}

	rocks := SC(StealthRock)
	sc.Add(rocks)
	if sc.Add(rocks) {
		t.Fatal("stealth rock has a single layer")
	}
	if !sc.HasHazards() || sc.HasScreens() {
		t.Fatal("hazard/screen detection wrong")
	}
	sc.Add(ParseSideCondition("Reflect"))
	if !sc.HasScreens() {
		t.Fatal("reflect is a screen")
	}
	if !sc.Remove(spikes) || sc.Has(spikes) {
		t.Fatal("remove failed")
	}

	odd := ParseSideCondition("G-Max Wildfire")
	if odd.Kind != SideConditionOther || odd.String() != "G-Max Wildfire" {
		t.Fatalf("unknown condition = %+v", odd)
	}
	sc.Add(ParseSideCondition("move: G-Max Wildfire"))
	if names := sc.Names(); !slices.Contains(names, "G-Max Wildfire") {
		t.Errorf("names = %v", names)
	}
	if !sc.Remove(odd) || sc.Has(ParseSideCondition("gmaxwildfire")) {
		t.Error("unknown condition should be removable by its plain name")
	}
}

func TestSeats(t *testing.T) {
	s, ok := ParseSeat("P3")
	if !ok || s != P3 || s.Index() != 2 || s.Opponent() != P4 {
		t.Fatalf("seat p3 = %v %v", s, ok)
	}
	if P2.Opponent() != P1 {
		t.Fatal("p2 should face p1")
	}
	if SlotIndex('b') != 1 || SlotIndex('z') != 0 || SlotLetter(2) != "c" {
		t.Fatal("slot mapping wrong")
	}
}

func TestGameTypeSlots(t *testing.T) {
	want := map[GameType]int{Singles: 1, Doubles: 2, Triples: 3, Multi: 2, FreeForAll: 1, GameTypeUnknown: 1}
	for g, n := range want {
		if g.ActiveSlots() != n {
			t.Errorf("%s slots = %d, want %d", g, g.ActiveSlots(), n)
		}
	}
}

func TestToID(t *testing.T) {
	cases := map[string]string{
		"Flabébé":       "flabebe",
		"Mr. Mime":      "mrmime",
		"Farfetch’d":    "farfetchd",
		"Porygon-Z":     "porygonz",
		"  Tapu Koko ":  "tapukoko",
	}
	for in, want := range cases {
		if got := ToID(in); got != want {
			t.Errorf("ToID(%q) = %q, want %q", in, got, want)
		}
	}
}
