package dex

import (
	"strings"

	json "github.com/goccy/go-json"
)

// VolatileKind enumerates the volatile conditions the tracker understands.
type VolatileKind uint8

const (
	VolatileOther VolatileKind = iota
	Trapped
	PartialTrap
	Confusion
	Taunt
	Encore
	Disable
	Torment
	Attract
	FocusEnergy
	LaserFocus
	LeechSeed
	Curse
	PerishSong
	Nightmare
	Protect
	Endure
	Substitute
	Fly
	Bounce
	Dig
	Dive
	ShadowForce
	PhantomForce
	SkyDrop
	Flinch
	Yawn
	Recharging
	Charging
	Bide
	Uproar
	Thrash
	Rollout
	MagnetRise
	Telekinesis
	SmackDown
	Ingrain
	AquaRing
	FlashFire
	SlowStart
	Truant
	Unburden
	GastroAcid
	Imprison
	Minimize
	DefenseCurl
	Transformed
	Roost
	Stockpile
	HelpingHand
	PowerTrick
	Autotomize
	MagicCoat
	Snatch
	DestinyBond
	Grudge
	Rage
	FocusPunch
	MudSport
	WaterSport
	Electrify
	CenterOfAttention
	Dynamaxed
	Octolock
	TarShot
	NoRetreat
	Terastallized
	SaltCure
	SyrupBomb
	TypeChange

	volatileKindCount
)

var volatileNames = [volatileKindCount]string{
	VolatileOther:     "Other",
	Trapped:           "Trapped",
	PartialTrap:       "PartialTrap",
	Confusion:         "Confusion",
	Taunt:             "Taunt",
	Encore:            "Encore",
	Disable:           "Disable",
	Torment:           "Torment",
	Attract:           "Attract",
	FocusEnergy:       "FocusEnergy",
	LaserFocus:        "LaserFocus",
	LeechSeed:         "LeechSeed",
	Curse:             "Curse",
	PerishSong:        "PerishSong",
	Nightmare:         "Nightmare",
	Protect:           "Protect",
	Endure:            "Endure",
	Substitute:        "Substitute",
	Fly:               "Fly",
	Bounce:            "Bounce",
	Dig:               "Dig",
	Dive:              "Dive",
	ShadowForce:       "ShadowForce",
	PhantomForce:      "PhantomForce",
	SkyDrop:           "SkyDrop",
	Flinch:            "Flinch",
	Yawn:              "Yawn",
	Recharging:        "Recharging",
	Charging:          "Charging",
	Bide:              "Bide",
	Uproar:            "Uproar",
	Thrash:            "Thrash",
	Rollout:           "Rollout",
	MagnetRise:        "MagnetRise",
	Telekinesis:       "Telekinesis",
	SmackDown:         "SmackDown",
	Ingrain:           "Ingrain",
	AquaRing:          "AquaRing",
	FlashFire:         "FlashFire",
	SlowStart:         "SlowStart",
	Truant:            "Truant",
	Unburden:          "Unburden",
	GastroAcid:        "GastroAcid",
	Imprison:          "Imprison",
	Minimize:          "Minimize",
	DefenseCurl:       "DefenseCurl",
	Transformed:       "Transformed",
	Roost:             "Roost",
	Stockpile:         "Stockpile",
	HelpingHand:       "HelpingHand",
	PowerTrick:        "PowerTrick",
	Autotomize:        "Autotomize",
	MagicCoat:         "MagicCoat",
	Snatch:            "Snatch",
	DestinyBond:       "DestinyBond",
	Grudge:            "Grudge",
	Rage:              "Rage",
	FocusPunch:        "FocusPunch",
	MudSport:          "MudSport",
	WaterSport:        "WaterSport",
	Electrify:         "Electrify",
	CenterOfAttention: "CenterOfAttention",
	Dynamaxed:         "Dynamaxed",
	Octolock:          "Octolock",
	TarShot:           "TarShot",
	NoRetreat:         "NoRetreat",
	Terastallized:     "Terastallized",
	SaltCure:          "SaltCure",
	SyrupBomb:         "SyrupBomb",
	TypeChange:        "TypeChange",
}

// volatileAliases maps normalized effect names to their kind. Several
// protocol names collapse onto one kind (every protracted attack is Thrash).
var volatileAliases = map[string]VolatileKind{
	"trapped": Trapped, "meanlook": Trapped, "spiderweb": Trapped, "block": Trapped,

	"partialtrap": PartialTrap, "bind": PartialTrap, "wrap": PartialTrap,
	"firespin": PartialTrap, "clamp": PartialTrap, "whirlpool": PartialTrap,
	"sandtomb": PartialTrap, "magmastorm": PartialTrap, "infestation": PartialTrap,
	"snaptrap": PartialTrap, "thundercage": PartialTrap,

	"confusion": Confusion, "confused": Confusion,
	"taunt":     Taunt,
	"encore":    Encore,
	"disable":   Disable, "disabled": Disable,
	"torment": Torment,
	"attract": Attract, "infatuation": Attract,

	"focusenergy": FocusEnergy,
	"laserfocus":  LaserFocus,
	"leechseed":   LeechSeed,
	"curse":       Curse,
	"perishsong":  PerishSong, "perish3": PerishSong, "perish2": PerishSong, "perish1": PerishSong, "perish0": PerishSong,
	"nightmare": Nightmare,

	"protect": Protect, "detect": Protect, "kingsshield": Protect, "spikyshield": Protect,
	"banefulbunker": Protect, "obstruct": Protect, "silktrap": Protect, "burningbulwark": Protect,
	"endure":     Endure,
	"substitute": Substitute,

	"fly": Fly, "bounce": Bounce, "skydrop": SkyDrop,
	"dig":          Dig,
	"dive":         Dive,
	"shadowforce":  ShadowForce,
	"phantomforce": PhantomForce,

	"flinch":       Flinch,
	"yawn":         Yawn,
	"mustrecharge": Recharging, "recharging": Recharging, "recharge": Recharging,
	"twoturnmove": Charging, "charging": Charging, "solarbeam": Charging, "solarblade": Charging,
	"razorwind": Charging, "skullbash": Charging, "skyattack": Charging, "freezeshock": Charging,
	"iceburn": Charging, "geomancy": Charging, "meteorbeam": Charging, "electroshot": Charging,

	"bide":       Bide,
	"uproar":     Uproar,
	"lockedmove": Thrash, "thrash": Thrash, "outrage": Thrash, "petaldance": Thrash, "ragingfury": Thrash,
	"rollout": Rollout, "iceball": Rollout,

	"magnetrise":  MagnetRise,
	"telekinesis": Telekinesis,
	"smackdown":   SmackDown,
	"ingrain":     Ingrain,
	"aquaring":    AquaRing,
	"flashfire":   FlashFire,
	"slowstart":   SlowStart,
	"truant":      Truant,
	"unburden":    Unburden,
	"gastroacid":  GastroAcid,
	"imprison":    Imprison,
	"minimize":    Minimize,
	"defensecurl": DefenseCurl,

	"transform": Transformed, "transformed": Transformed,
	"roost":     Roost,
	"stockpile": Stockpile, "stockpile1": Stockpile, "stockpile2": Stockpile, "stockpile3": Stockpile,
	"helpinghand": HelpingHand,
	"powertrick":  PowerTrick,
	"autotomize":  Autotomize,
	"magiccoat":   MagicCoat,
	"snatch":      Snatch,
	"destinybond": DestinyBond,
	"grudge":      Grudge,
	"rage":        Rage,
	"focuspunch":  FocusPunch,
	"mudsport":    MudSport,
	"watersport":  WaterSport,
	"electrify":   Electrify,

	"followme": CenterOfAttention, "ragepowder": CenterOfAttention,
	"centerofattention": CenterOfAttention, "spotlight": CenterOfAttention,

	"dynamax": Dynamaxed, "dynamaxed": Dynamaxed,
	"octolock":      Octolock,
	"tarshot":       TarShot,
	"noretreat":     NoRetreat,
	"terastallized": Terastallized, "tera": Terastallized,
	"saltcure": SaltCure,
	"syrupy":   SyrupBomb, "syrupbomb": SyrupBomb,
	"typechange": TypeChange,
}

// Volatile is a volatile condition. Known conditions carry only their
// kind. Anything the alias table does not recognise is VolatileOther,
// identified by its normalized name in ID, with the announced text kept in
// Raw for display.
type Volatile struct {
	Kind VolatileKind
	ID   string
	Raw  string
}

// ParseVolatile normalizes a free-text effect name into a Volatile.
func ParseVolatile(s string) Volatile {
	id := normalizeEffect(s)
	if kind, ok := volatileAliases[id]; ok {
		return Volatile{Kind: kind}
	}
	return Volatile{Kind: VolatileOther, ID: id, Raw: stripEffectPrefix(strings.TrimSpace(s))}
}

// Key drops the display text. Two mentions of the same condition have
// equal keys whatever their prefix or case.
func (v Volatile) Key() Volatile {
	return Volatile{Kind: v.Kind, ID: v.ID}
}

// V is shorthand for a known volatile.
func V(kind VolatileKind) Volatile {
	return Volatile{Kind: kind}
}

// IsOther reports whether the condition is unrecognised.
func (v Volatile) IsOther() bool {
	return v.Kind == VolatileOther
}

func (v Volatile) String() string {
	if v.Kind == VolatileOther {
		if v.Raw == "" {
			return v.ID
		}
		return v.Raw
	}
	if v.Kind < volatileKindCount {
		return volatileNames[v.Kind]
	}
	return "Unknown"
}

// MarshalJSON serializes the volatile as its display name or raw text.
func (v Volatile) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}
