package dex

import json "github.com/goccy/go-json"

// Weather is the active weather. The zero value means clear skies.
type Weather uint8

const (
	WeatherNone Weather = iota
	Sun
	Rain
	Sand
	Hail
	Snow
	HarshSun
	HeavyRain
	StrongWinds
)

var weatherNames = map[Weather]string{
	WeatherNone: "",
	Sun:         "Sun",
	Rain:        "Rain",
	Sand:        "Sand",
	Hail:        "Hail",
	Snow:        "Snow",
	HarshSun:    "HarshSun",
	HeavyRain:   "HeavyRain",
	StrongWinds: "StrongWinds",
}

var weatherAliases = map[string]Weather{
	"sunnyday": Sun, "sun": Sun, "harshsunlight": Sun,
	"raindance": Rain, "rain": Rain,
	"sandstorm": Sand, "sand": Sand,
	"hail": Hail,
	"snow": Snow, "snowscape": Snow,
	"desolateland": HarshSun, "harshsun": HarshSun, "extremelyharshsunlight": HarshSun,
	"primordialsea": HeavyRain, "heavyrain": HeavyRain,
	"deltastream": StrongWinds, "strongwinds": StrongWinds, "mysteriousaircurrent": StrongWinds,
}

// ParseWeather resolves a weather name. "none" and "" resolve to
// WeatherNone with ok true; unknown names report ok false.
func ParseWeather(s string) (Weather, bool) {
	key := normalizeEffect(s)
	if key == "" || key == "none" {
		return WeatherNone, true
	}
	w, ok := weatherAliases[key]
	return w, ok
}

func (w Weather) String() string { return weatherNames[w] }

// IsPrimal reports whether the weather can only be replaced by another
// primal weather.
func (w Weather) IsPrimal() bool {
	return w == HarshSun || w == HeavyRain || w == StrongWinds
}

// MarshalJSON serializes the weather name, or null when clear.
func (w Weather) MarshalJSON() ([]byte, error) {
	if w == WeatherNone {
		return []byte("null"), nil
	}
	return json.Marshal(w.String())
}

// Terrain is the active terrain. The zero value means none.
type Terrain uint8

const (
	TerrainNone Terrain = iota
	ElectricTerrain
	GrassyTerrain
	MistyTerrain
	PsychicTerrain
)

var terrainNames = map[Terrain]string{
	TerrainNone:     "",
	ElectricTerrain: "Electric",
	GrassyTerrain:   "Grassy",
	MistyTerrain:    "Misty",
	PsychicTerrain:  "Psychic",
}

// ParseTerrain accepts "Electric Terrain", "move: Electric Terrain" or
// just "electric".
func ParseTerrain(s string) (Terrain, bool) {
	switch normalizeEffect(s) {
	case "electricterrain", "electric":
		return ElectricTerrain, true
	case "grassyterrain", "grassy":
		return GrassyTerrain, true
	case "mistyterrain", "misty":
		return MistyTerrain, true
	case "psychicterrain", "psychic":
		return PsychicTerrain, true
	}
	return TerrainNone, false
}

func (t Terrain) String() string { return terrainNames[t] }

// MarshalJSON serializes the terrain name, or null when none.
func (t Terrain) MarshalJSON() ([]byte, error) {
	if t == TerrainNone {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// FieldState holds the conditions that affect the whole field.
type FieldState struct {
	Weather    Weather `json:"weather"`
	Terrain    Terrain `json:"terrain"`
	TrickRoom  bool    `json:"trick_room"`
	MagicRoom  bool    `json:"magic_room"`
	WonderRoom bool    `json:"wonder_room"`
	Gravity    bool    `json:"gravity"`
	MudSport   bool    `json:"mud_sport"`
	WaterSport bool    `json:"water_sport"`
	IonDeluge  bool    `json:"ion_deluge"`
	FairyLock  bool    `json:"fairy_lock"`
}

func (f *FieldState) toggle(key string) *bool {
	switch key {
	case "trickroom":
		return &f.TrickRoom
	case "magicroom":
		return &f.MagicRoom
	case "wonderroom":
		return &f.WonderRoom
	case "gravity":
		return &f.Gravity
	case "mudsport":
		return &f.MudSport
	case "watersport":
		return &f.WaterSport
	case "iondeluge":
		return &f.IonDeluge
	case "fairylock":
		return &f.FairyLock
	}
	return nil
}

// ApplyFieldStart applies a -fieldstart condition. It reports whether the
// condition was recognised.
func (f *FieldState) ApplyFieldStart(condition string) bool {
	if t, ok := ParseTerrain(condition); ok {
		f.Terrain = t
		return true
	}
	if p := f.toggle(normalizeEffect(condition)); p != nil {
		*p = true
		return true
	}
	if w, ok := ParseWeather(condition); ok && w != WeatherNone {
		f.Weather = w
		return true
	}
	return false
}

// ApplyFieldEnd applies a -fieldend condition. Ending a terrain clears it
// only if it is the active one.
func (f *FieldState) ApplyFieldEnd(condition string) bool {
	if t, ok := ParseTerrain(condition); ok {
		if f.Terrain == t {
			f.Terrain = TerrainNone
		}
		return true
	}
	if p := f.toggle(normalizeEffect(condition)); p != nil {
		*p = false
		return true
	}
	if w, ok := ParseWeather(condition); ok && w != WeatherNone {
		if f.Weather == w {
			f.Weather = WeatherNone
		}
		return true
	}
	return false
}

// Rooms lists the active room and field toggles by name.
func (f FieldState) Rooms() []string {
	var out []string
	for _, item := range []struct {
		name string
		on   bool
	}{
		{"Trick Room", f.TrickRoom},
		{"Magic Room", f.MagicRoom},
		{"Wonder Room", f.WonderRoom},
		{"Gravity", f.Gravity},
		{"Mud Sport", f.MudSport},
		{"Water Sport", f.WaterSport},
		{"Ion Deluge", f.IonDeluge},
		{"Fairy Lock", f.FairyLock},
	} {
		if item.on {
			out = append(out, item.name)
		}
	}
	return out
}
