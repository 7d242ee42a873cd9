package dex

import (
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// SideConditionKind enumerates the side conditions with known layering
// rules.
type SideConditionKind uint8

const (
	SideConditionOther SideConditionKind = iota
	Reflect
	LightScreen
	AuroraVeil
	Spikes
	ToxicSpikes
	StealthRock
	StickyWeb
	Tailwind
	Safeguard
	Mist
	LuckyChant
	WideGuard
	QuickGuard
	MatBlock
	CraftyShield
	GMaxSteelsurge
)

var sideConditionNames = map[SideConditionKind]string{
	SideConditionOther: "Other",
	Reflect:            "Reflect",
	LightScreen:        "Light Screen",
	AuroraVeil:         "Aurora Veil",
	Spikes:             "Spikes",
	ToxicSpikes:        "Toxic Spikes",
	StealthRock:        "Stealth Rock",
	StickyWeb:          "Sticky Web",
	Tailwind:           "Tailwind",
	Safeguard:          "Safeguard",
	Mist:               "Mist",
	LuckyChant:         "Lucky Chant",
	WideGuard:          "Wide Guard",
	QuickGuard:         "Quick Guard",
	MatBlock:           "Mat Block",
	CraftyShield:       "Crafty Shield",
	GMaxSteelsurge:     "G-Max Steelsurge",
}

var sideConditionAliases = map[string]SideConditionKind{
	"reflect":        Reflect,
	"lightscreen":    LightScreen,
	"auroraveil":     AuroraVeil,
	"spikes":         Spikes,
	"toxicspikes":    ToxicSpikes,
	"stealthrock":    StealthRock,
	"stickyweb":      StickyWeb,
	"tailwind":       Tailwind,
	"safeguard":      Safeguard,
	"mist":           Mist,
	"luckychant":     LuckyChant,
	"wideguard":      WideGuard,
	"quickguard":     QuickGuard,
	"matblock":       MatBlock,
	"craftyshield":   CraftyShield,
	"gmaxsteelsurge": GMaxSteelsurge,
}

// SideCondition is a condition on one side of the field. Unrecognised
// conditions are identified by their normalized name in ID and keep the
// text they were announced with in Raw.
type SideCondition struct {
	Kind SideConditionKind
	ID   string
	Raw  string
}

// ParseSideCondition normalizes a condition name such as
// "move: Stealth Rock".
func ParseSideCondition(s string) SideCondition {
	id := normalizeEffect(s)
	if kind, ok := sideConditionAliases[id]; ok {
		return SideCondition{Kind: kind}
	}
	return SideCondition{Kind: SideConditionOther, ID: id, Raw: stripEffectPrefix(strings.TrimSpace(s))}
}

// Key drops the display text, leaving what identifies the condition.
func (c SideCondition) Key() SideCondition {
	return SideCondition{Kind: c.Kind, ID: c.ID}
}

// SC is shorthand for a known side condition.
func SC(kind SideConditionKind) SideCondition {
	return SideCondition{Kind: kind}
}

func (c SideCondition) String() string {
	if c.Kind == SideConditionOther {
		if c.Raw == "" {
			return c.ID
		}
		return c.Raw
	}
	return sideConditionNames[c.Kind]
}

// MaxLayers is the number of times the condition can stack.
func (c SideCondition) MaxLayers() int {
	switch c.Kind {
	case Spikes:
		return 3
	case ToxicSpikes:
		return 2
	}
	return 1
}

// IsScreen reports whether the condition reduces incoming damage.
func (c SideCondition) IsScreen() bool {
	return c.Kind == Reflect || c.Kind == LightScreen || c.Kind == AuroraVeil
}

// IsHazard reports whether the condition damages or hinders switch-ins.
func (c SideCondition) IsHazard() bool {
	switch c.Kind {
	case Spikes, ToxicSpikes, StealthRock, StickyWeb, GMaxSteelsurge:
		return true
	}
	return false
}

// SideConditions maps each active condition, by Key, to its layer count.
type SideConditions map[SideCondition]sideLayers

type sideLayers struct {
	cond   SideCondition
	layers int
}

// Add puts down one layer. It returns true if a layer was added and false
// when the condition is already at its maximum.
func (sc SideConditions) Add(c SideCondition) bool {
	key := c.Key()
	cur, ok := sc[key]
	if !ok {
		sc[key] = sideLayers{cond: c, layers: 1}
		return true
	}
	if cur.layers >= c.MaxLayers() {
		return false
	}
	cur.layers++
	sc[key] = cur
	return true
}

// Remove clears every layer of the condition and reports whether it was
// present.
func (sc SideConditions) Remove(c SideCondition) bool {
	key := c.Key()
	if _, ok := sc[key]; !ok {
		return false
	}
	delete(sc, key)
	return true
}

// Layers returns the layer count, zero if absent.
func (sc SideConditions) Layers(c SideCondition) int {
	return sc[c.Key()].layers
}

// Has reports whether the condition is active.
func (sc SideConditions) Has(c SideCondition) bool {
	return sc.Layers(c) > 0
}

// HasHazards reports whether any entry hazard is set.
func (sc SideConditions) HasHazards() bool {
	for c := range sc {
		if c.IsHazard() {
			return true
		}
	}
	return false
}

// HasScreens reports whether any damage-reducing screen is up.
func (sc SideConditions) HasScreens() bool {
	for c := range sc {
		if c.IsScreen() {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (sc SideConditions) Clone() SideConditions {
	out := make(SideConditions, len(sc))
	for k, v := range sc {
		out[k] = v
	}
	return out
}

// MarshalJSON serializes the conditions as a name -> layers object.
func (sc SideConditions) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(sc))
	for _, v := range sc {
		out[v.cond.String()] = v.layers
	}
	return json.Marshal(out)
}

// Names lists the active conditions sorted by name, with layer counts
// for stackable ones.
func (sc SideConditions) Names() []string {
	out := make([]string, 0, len(sc))
	for _, v := range sc {
		name := v.cond.String()
		if v.cond.MaxLayers() > 1 {
			name = name + "×" + strconv.Itoa(v.layers)
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
