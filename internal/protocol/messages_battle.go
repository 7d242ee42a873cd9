package protocol

import (
	json "github.com/goccy/go-json"

	"github.com/energizer-project/showtrack/internal/dex"
)

// Battle initialization

// Player announces who sits in a seat. Rating is 0 when not shown.
type Player struct {
	Seat     dex.Seat `json:"seat"`
	Username string   `json:"username"`
	Avatar   string   `json:"avatar,omitempty"`
	Rating   int      `json:"rating,omitempty"`
}

type TeamSize struct {
	Seat dex.Seat `json:"seat"`
	Size int      `json:"size"`
}

type GameType struct {
	GameType dex.GameType `json:"game_type"`
}

type Gen struct {
	Generation int `json:"generation"`
}

type Tier struct {
	Name string `json:"name"`
}

type Rated struct {
	Message string `json:"message,omitempty"`
}

type Rule struct {
	Text string `json:"text"`
}

type ClearPoke struct{}

// Poke is one team-preview entry.
type Poke struct {
	Seat    dex.Seat `json:"seat"`
	Details Details  `json:"details"`
	HasItem bool     `json:"has_item"`
}

// TeamPreview opens team preview; Count is how many Pokémon will be
// brought, 0 when unspecified.
type TeamPreview struct {
	Count int `json:"count,omitempty"`
}

type Start struct{}

// Battle progress

// Request carries the JSON decision request. The payload is kept opaque;
// ParseBattleRequest interprets it.
type Request struct {
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Inactive struct {
	Message string `json:"message"`
}

type InactiveOff Inactive

type Upkeep struct{}

type Turn struct {
	Number int `json:"number"`
}

type Win struct {
	User string `json:"user"`
}

type Tie struct{}

type BattleTimestamp struct {
	Time int64 `json:"time"`
}

// Split precedes a private line for Seat and its public counterpart.
type Split struct {
	Seat dex.Seat `json:"seat"`
}

type Debug struct {
	Text string `json:"text"`
}

type SentChoice struct {
	Choice string `json:"choice"`
}

// Major actions

// Move reports a move being used.
type Move struct {
	Source PokemonRef  `json:"source"`
	Move   string      `json:"move"`
	Target *PokemonRef `json:"target,omitempty"`
	Miss   bool        `json:"miss,omitempty"`
	Still  bool        `json:"still,omitempty"`
	Anim   string      `json:"anim,omitempty"`
	From   string      `json:"from,omitempty"`
}

// Switch reports a Pokémon entering the field by its trainer's choice.
type Switch struct {
	Pokemon PokemonRef `json:"pokemon"`
	Details Details    `json:"details"`
	HP      *HPStatus  `json:"hp,omitempty"`
}

// Drag is a forced switch (Roar, Whirlwind, Red Card...).
type Drag Switch

// DetailsChange is a permanent forme change.
type DetailsChange Switch

// Replace reveals the Pokémon that was hidden behind Illusion.
type Replace Switch

// FormeChange is a temporary forme change.
type FormeChange struct {
	Pokemon PokemonRef `json:"pokemon"`
	Species string     `json:"species"`
	HP      *HPStatus  `json:"hp,omitempty"`
}

// Swap moves a Pokémon to another active position.
type Swap struct {
	Pokemon  PokemonRef `json:"pokemon"`
	Position int        `json:"position"`
}

type Cant struct {
	Pokemon PokemonRef `json:"pokemon"`
	Reason  string     `json:"reason"`
	Move    string     `json:"move,omitempty"`
}

type Faint struct {
	Pokemon PokemonRef `json:"pokemon"`
}

// Minor actions

type Fail struct {
	Pokemon PokemonRef `json:"pokemon"`
	Action  string     `json:"action,omitempty"`
}

type Block struct {
	Pokemon  PokemonRef `json:"pokemon"`
	Effect   string     `json:"effect"`
	Move     string     `json:"move,omitempty"`
	Attacker string     `json:"attacker,omitempty"`
}

type NoTarget struct {
	Pokemon *PokemonRef `json:"pokemon,omitempty"`
}

type Miss struct {
	Source PokemonRef  `json:"source"`
	Target *PokemonRef `json:"target,omitempty"`
}

// Damage carries the new condition after damage. HP is nil when the
// server omitted it.
type Damage struct {
	Pokemon PokemonRef `json:"pokemon"`
	HP      *HPStatus  `json:"hp,omitempty"`
	From    string     `json:"from,omitempty"`
}

type Heal Damage

type SetHP Damage

type Status struct {
	Pokemon PokemonRef `json:"pokemon"`
	Status  dex.Status `json:"status"`
}

type CureStatus Status

// CureTeam cures every Pokémon on the subject's side.
type CureTeam struct {
	Pokemon PokemonRef `json:"pokemon"`
}

type Boost struct {
	Pokemon PokemonRef `json:"pokemon"`
	Stat    dex.Stat   `json:"stat"`
	Amount  int        `json:"amount"`
}

type Unboost Boost

type SetBoost Boost

// SwapBoost exchanges Stats between two Pokémon; an empty list means all.
type SwapBoost struct {
	Source PokemonRef `json:"source"`
	Target PokemonRef `json:"target"`
	Stats  []dex.Stat `json:"stats,omitempty"`
}

type InvertBoost struct {
	Pokemon PokemonRef `json:"pokemon"`
}

type ClearBoost InvertBoost

type ClearNegativeBoost InvertBoost

type ClearAllBoost struct{}

type ClearPositiveBoost struct {
	Target PokemonRef  `json:"target"`
	Source *PokemonRef `json:"source,omitempty"`
	Effect string      `json:"effect,omitempty"`
}

// CopyBoost copies Source's stages onto Target.
type CopyBoost struct {
	Source PokemonRef `json:"source"`
	Target PokemonRef `json:"target"`
}

// Weather announces weather. Upkeep is set on the end-of-turn repeat.
type Weather struct {
	Name   string `json:"name"`
	Upkeep bool   `json:"upkeep,omitempty"`
	From   string `json:"from,omitempty"`
}

// Weather resolves the announced weather name.
func (w Weather) Weather() (dex.Weather, bool) {
	return dex.ParseWeather(w.Name)
}

type FieldStart struct {
	Condition string `json:"condition"`
}

type FieldEnd FieldStart

type SideStart struct {
	Side      SideRef `json:"side"`
	Condition string  `json:"condition"`
}

type SideEnd SideStart

type SwapSideConditions struct{}

// EffectStart is |-start|: a volatile condition beginning. Args holds the
// remaining fields (the new type for typechange, tags such as [silent]).
type EffectStart struct {
	Pokemon PokemonRef `json:"pokemon"`
	Effect  string     `json:"effect"`
	Args    []string   `json:"args,omitempty"`
}

// Volatile normalizes the effect name.
func (e EffectStart) Volatile() dex.Volatile { return dex.ParseVolatile(e.Effect) }

type EffectEnd EffectStart

// Volatile normalizes the effect name.
func (e EffectEnd) Volatile() dex.Volatile { return dex.ParseVolatile(e.Effect) }

type Crit struct {
	Pokemon PokemonRef `json:"pokemon"`
}

type SuperEffective Crit

type Resisted Crit

type Immune Crit

type Item struct {
	Pokemon PokemonRef `json:"pokemon"`
	Item    string     `json:"item"`
	From    string     `json:"from,omitempty"`
}

type EndItem struct {
	Pokemon PokemonRef `json:"pokemon"`
	Item    string     `json:"item"`
	From    string     `json:"from,omitempty"`
	Eat     bool       `json:"eat,omitempty"`
}

type Ability struct {
	Pokemon PokemonRef `json:"pokemon"`
	Ability string     `json:"ability"`
	From    string     `json:"from,omitempty"`
}

// EndAbility suppresses the subject's ability.
type EndAbility struct {
	Pokemon PokemonRef `json:"pokemon"`
}

// Transform reports Pokemon transforming into Into.
type Transform struct {
	Pokemon PokemonRef `json:"pokemon"`
	Into    string     `json:"into"`
}

// Species returns the species name of the transformation target.
func (t Transform) Species() string {
	if ref, err := ParsePokemonRef(t.Into); err == nil && ref.Name != "" {
		return ref.Name
	}
	return t.Into
}

type Mega struct {
	Pokemon   PokemonRef `json:"pokemon"`
	Megastone string     `json:"megastone,omitempty"`
}

type Primal struct {
	Pokemon PokemonRef `json:"pokemon"`
}

// Burst is Ultra Burst.
type Burst struct {
	Pokemon PokemonRef `json:"pokemon"`
	Species string     `json:"species"`
	Item    string     `json:"item,omitempty"`
}

type ZPower struct {
	Pokemon PokemonRef `json:"pokemon"`
}

type ZBroken ZPower

type Terastallize struct {
	Pokemon  PokemonRef `json:"pokemon"`
	TeraType string     `json:"tera_type"`
}

// Activate is a miscellaneous effect activation.
type Activate struct {
	Pokemon *PokemonRef `json:"pokemon,omitempty"`
	Effect  string      `json:"effect"`
	Args    []string    `json:"args,omitempty"`
}

type Hint struct {
	Text string `json:"text"`
}

type Center struct{}

// NarrativeMessage is |-message|: free text shown in the battle log.
type NarrativeMessage struct {
	Text string `json:"text"`
}

type Combine struct{}

type Waiting struct {
	Source PokemonRef `json:"source"`
	Target PokemonRef `json:"target"`
}

type Prepare struct {
	Attacker PokemonRef  `json:"attacker"`
	Move     string      `json:"move"`
	Defender *PokemonRef `json:"defender,omitempty"`
}

type MustRecharge struct {
	Pokemon PokemonRef `json:"pokemon"`
}

type Nothing struct{}

type HitCount struct {
	Pokemon PokemonRef `json:"pokemon"`
	Count   int        `json:"count"`
}

type SingleMove struct {
	Pokemon PokemonRef `json:"pokemon"`
	Move    string     `json:"move"`
}

type SingleTurn SingleMove

func (Player) Verb() Verb             { return VerbPlayer }
func (TeamSize) Verb() Verb           { return VerbTeamSize }
func (GameType) Verb() Verb           { return VerbGameType }
func (Gen) Verb() Verb                { return VerbGen }
func (Tier) Verb() Verb               { return VerbTier }
func (Rated) Verb() Verb              { return VerbRated }
func (Rule) Verb() Verb               { return VerbRule }
func (ClearPoke) Verb() Verb          { return VerbClearPoke }
func (Poke) Verb() Verb               { return VerbPoke }
func (TeamPreview) Verb() Verb        { return VerbTeamPreview }
func (Start) Verb() Verb              { return VerbStart }
func (Request) Verb() Verb            { return VerbRequest }
func (Inactive) Verb() Verb           { return VerbInactive }
func (InactiveOff) Verb() Verb        { return VerbInactiveOff }
func (Upkeep) Verb() Verb             { return VerbUpkeep }
func (Turn) Verb() Verb               { return VerbTurn }
func (Win) Verb() Verb                { return VerbWin }
func (Tie) Verb() Verb                { return VerbTie }
func (BattleTimestamp) Verb() Verb    { return VerbBattleTimestamp }
func (Split) Verb() Verb              { return VerbSplit }
func (Debug) Verb() Verb              { return VerbDebug }
func (SentChoice) Verb() Verb         { return VerbSentChoice }
func (Move) Verb() Verb               { return VerbMove }
func (Switch) Verb() Verb             { return VerbSwitch }
func (Drag) Verb() Verb               { return VerbDrag }
func (DetailsChange) Verb() Verb      { return VerbDetailsChange }
func (Replace) Verb() Verb            { return VerbReplace }
func (FormeChange) Verb() Verb        { return VerbFormeChange }
func (Swap) Verb() Verb               { return VerbSwap }
func (Cant) Verb() Verb               { return VerbCant }
func (Faint) Verb() Verb              { return VerbFaint }
func (Fail) Verb() Verb               { return VerbFail }
func (Block) Verb() Verb              { return VerbBlock }
func (NoTarget) Verb() Verb           { return VerbNoTarget }
func (Miss) Verb() Verb               { return VerbMiss }
func (Damage) Verb() Verb             { return VerbDamage }
func (Heal) Verb() Verb               { return VerbHeal }
func (SetHP) Verb() Verb              { return VerbSetHP }
func (Status) Verb() Verb             { return VerbStatus }
func (CureStatus) Verb() Verb         { return VerbCureStatus }
func (CureTeam) Verb() Verb           { return VerbCureTeam }
func (Boost) Verb() Verb              { return VerbBoost }
func (Unboost) Verb() Verb            { return VerbUnboost }
func (SetBoost) Verb() Verb           { return VerbSetBoost }
func (SwapBoost) Verb() Verb          { return VerbSwapBoost }
func (InvertBoost) Verb() Verb        { return VerbInvertBoost }
func (ClearBoost) Verb() Verb         { return VerbClearBoost }
func (ClearNegativeBoost) Verb() Verb { return VerbClearNegativeBoost }
func (ClearAllBoost) Verb() Verb      { return VerbClearAllBoost }
func (ClearPositiveBoost) Verb() Verb { return VerbClearPositiveBoost }
func (CopyBoost) Verb() Verb          { return VerbCopyBoost }
func (Weather) Verb() Verb            { return VerbWeather }
func (FieldStart) Verb() Verb         { return VerbFieldStart }
func (FieldEnd) Verb() Verb           { return VerbFieldEnd }
func (SideStart) Verb() Verb          { return VerbSideStart }
func (SideEnd) Verb() Verb            { return VerbSideEnd }
func (SwapSideConditions) Verb() Verb { return VerbSwapSideConditions }
func (EffectStart) Verb() Verb        { return VerbEffectStart }
func (EffectEnd) Verb() Verb          { return VerbEffectEnd }
func (Crit) Verb() Verb               { return VerbCrit }
func (SuperEffective) Verb() Verb     { return VerbSuperEffective }
func (Resisted) Verb() Verb           { return VerbResisted }
func (Immune) Verb() Verb             { return VerbImmune }
func (Item) Verb() Verb               { return VerbItem }
func (EndItem) Verb() Verb            { return VerbEndItem }
func (Ability) Verb() Verb            { return VerbAbility }
func (EndAbility) Verb() Verb         { return VerbEndAbility }
func (Transform) Verb() Verb          { return VerbTransform }
func (Mega) Verb() Verb               { return VerbMega }
func (Primal) Verb() Verb             { return VerbPrimal }
func (Burst) Verb() Verb              { return VerbBurst }
func (ZPower) Verb() Verb             { return VerbZPower }
func (ZBroken) Verb() Verb            { return VerbZBroken }
func (Terastallize) Verb() Verb       { return VerbTerastallize }
func (Activate) Verb() Verb           { return VerbActivate }
func (Hint) Verb() Verb               { return VerbHint }
func (Center) Verb() Verb             { return VerbCenter }
func (NarrativeMessage) Verb() Verb   { return VerbMessage }
func (Combine) Verb() Verb            { return VerbCombine }
func (Waiting) Verb() Verb            { return VerbWaiting }
func (Prepare) Verb() Verb            { return VerbPrepare }
func (MustRecharge) Verb() Verb       { return VerbMustRecharge }
func (Nothing) Verb() Verb            { return VerbNothing }
func (HitCount) Verb() Verb           { return VerbHitCount }
func (SingleMove) Verb() Verb         { return VerbSingleMove }
func (SingleTurn) Verb() Verb         { return VerbSingleTurn }
