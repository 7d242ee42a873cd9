// Package protocol decodes the pipe-delimited Showdown server protocol
// into typed messages.
//
// A frame is UTF-8 text that may start with ">ROOMID" and continues with
// lines of the form |VERB|FIELD|FIELD... Verbs prefixed with "-" are minor
// in-battle effects; all other verbs are major structural messages.
package protocol

// Verb is the closed set of protocol verbs the decoder understands.
type Verb uint8

const (
	VerbUnknown Verb = iota

	// Global and room messages
	VerbChallstr
	VerbUpdateUser
	VerbNameTaken
	VerbPopup
	VerbPM
	VerbUserCount
	VerbFormats
	VerbUpdateSearch
	VerbUpdateChallenges
	VerbQueryResponse
	VerbInit
	VerbDeinit
	VerbTitle
	VerbUsers
	VerbJoin
	VerbLeave
	VerbName
	VerbChat
	VerbChatTimestamped
	VerbTimestamp
	VerbBattle
	VerbNotify
	VerbHTML
	VerbUHTML
	VerbUHTMLChange
	VerbRawHTML
	VerbError
	VerbBigError

	// Battle initialization
	VerbPlayer
	VerbTeamSize
	VerbGameType
	VerbGen
	VerbTier
	VerbRated
	VerbRule
	VerbClearPoke
	VerbPoke
	VerbTeamPreview
	VerbStart

	// Battle progress
	VerbRequest
	VerbInactive
	VerbInactiveOff
	VerbUpkeep
	VerbTurn
	VerbWin
	VerbTie
	VerbBattleTimestamp
	VerbSplit
	VerbDebug
	VerbSentChoice

	// Major actions
	VerbMove
	VerbSwitch
	VerbDrag
	VerbDetailsChange
	VerbReplace
	VerbSwap
	VerbCant
	VerbFaint

	// Minor actions
	VerbFail
	VerbBlock
	VerbNoTarget
	VerbMiss
	VerbDamage
	VerbHeal
	VerbSetHP
	VerbStatus
	VerbCureStatus
	VerbCureTeam
	VerbBoost
	VerbUnboost
	VerbSetBoost
	VerbSwapBoost
	VerbInvertBoost
	VerbClearBoost
	VerbClearAllBoost
	VerbClearPositiveBoost
	VerbClearNegativeBoost
	VerbCopyBoost
	VerbWeather
	VerbFieldStart
	VerbFieldEnd
	VerbSideStart
	VerbSideEnd
	VerbSwapSideConditions
	VerbEffectStart
	VerbEffectEnd
	VerbCrit
	VerbSuperEffective
	VerbResisted
	VerbImmune
	VerbItem
	VerbEndItem
	VerbAbility
	VerbEndAbility
	VerbTransform
	VerbMega
	VerbPrimal
	VerbBurst
	VerbZPower
	VerbZBroken
	VerbTerastallize
	VerbFormeChange
	VerbActivate
	VerbHint
	VerbCenter
	VerbMessage
	VerbCombine
	VerbWaiting
	VerbPrepare
	VerbMustRecharge
	VerbNothing
	VerbHitCount
	VerbSingleMove
	VerbSingleTurn

	// VerbRaw marks a line the decoder passed through untouched.
	VerbRaw

	verbCount
)

// verbWire is the canonical wire spelling of every verb.
var verbWire = [verbCount]string{
	VerbUnknown: "",

	VerbChallstr:         "challstr",
	VerbUpdateUser:       "updateuser",
	VerbNameTaken:        "nametaken",
	VerbPopup:            "popup",
	VerbPM:               "pm",
	VerbUserCount:        "usercount",
	VerbFormats:          "formats",
	VerbUpdateSearch:     "updatesearch",
	VerbUpdateChallenges: "updatechallenges",
	VerbQueryResponse:    "queryresponse",
	VerbInit:             "init",
	VerbDeinit:           "deinit",
	VerbTitle:            "title",
	VerbUsers:            "users",
	VerbJoin:             "join",
	VerbLeave:            "leave",
	VerbName:             "name",
	VerbChat:             "chat",
	VerbChatTimestamped:  "c:",
	VerbTimestamp:        ":",
	VerbBattle:           "battle",
	VerbNotify:           "notify",
	VerbHTML:             "html",
	VerbUHTML:            "uhtml",
	VerbUHTMLChange:      "uhtmlchange",
	VerbRawHTML:          "raw",
	VerbError:            "error",
	VerbBigError:         "bigerror",

	VerbPlayer:      "player",
	VerbTeamSize:    "teamsize",
	VerbGameType:    "gametype",
	VerbGen:         "gen",
	VerbTier:        "tier",
	VerbRated:       "rated",
	VerbRule:        "rule",
	VerbClearPoke:   "clearpoke",
	VerbPoke:        "poke",
	VerbTeamPreview: "teampreview",
	VerbStart:       "start",

	VerbRequest:         "request",
	VerbInactive:        "inactive",
	VerbInactiveOff:     "inactiveoff",
	VerbUpkeep:          "upkeep",
	VerbTurn:            "turn",
	VerbWin:             "win",
	VerbTie:             "tie",
	VerbBattleTimestamp: "t:",
	VerbSplit:           "split",
	VerbDebug:           "debug",
	VerbSentChoice:      "sentchoice",

	VerbMove:          "move",
	VerbSwitch:        "switch",
	VerbDrag:          "drag",
	VerbDetailsChange: "detailschange",
	VerbReplace:       "replace",
	VerbSwap:          "swap",
	VerbCant:          "cant",
	VerbFaint:         "faint",

	VerbFail:               "-fail",
	VerbBlock:              "-block",
	VerbNoTarget:           "-notarget",
	VerbMiss:               "-miss",
	VerbDamage:             "-damage",
	VerbHeal:               "-heal",
	VerbSetHP:              "-sethp",
	VerbStatus:             "-status",
	VerbCureStatus:         "-curestatus",
	VerbCureTeam:           "-cureteam",
	VerbBoost:              "-boost",
	VerbUnboost:            "-unboost",
	VerbSetBoost:           "-setboost",
	VerbSwapBoost:          "-swapboost",
	VerbInvertBoost:        "-invertboost",
	VerbClearBoost:         "-clearboost",
	VerbClearAllBoost:      "-clearallboost",
	VerbClearPositiveBoost: "-clearpositiveboost",
	VerbClearNegativeBoost: "-clearnegativeboost",
	VerbCopyBoost:          "-copyboost",
	VerbWeather:            "-weather",
	VerbFieldStart:         "-fieldstart",
	VerbFieldEnd:           "-fieldend",
	VerbSideStart:          "-sidestart",
	VerbSideEnd:            "-sideend",
	VerbSwapSideConditions: "-swapsideconditions",
	VerbEffectStart:        "-start",
	VerbEffectEnd:          "-end",
	VerbCrit:               "-crit",
	VerbSuperEffective:     "-supereffective",
	VerbResisted:           "-resisted",
	VerbImmune:             "-immune",
	VerbItem:               "-item",
	VerbEndItem:            "-enditem",
	VerbAbility:            "-ability",
	VerbEndAbility:         "-endability",
	VerbTransform:          "-transform",
	VerbMega:               "-mega",
	VerbPrimal:             "-primal",
	VerbBurst:              "-burst",
	VerbZPower:             "-zpower",
	VerbZBroken:            "-zbroken",
	VerbTerastallize:       "-terastallize",
	VerbFormeChange:        "-formechange",
	VerbActivate:           "-activate",
	VerbHint:               "-hint",
	VerbCenter:             "-center",
	VerbMessage:            "-message",
	VerbCombine:            "-combine",
	VerbWaiting:            "-waiting",
	VerbPrepare:            "-prepare",
	VerbMustRecharge:       "-mustrecharge",
	VerbNothing:            "-nothing",
	VerbHitCount:           "-hitcount",
	VerbSingleMove:         "-singlemove",
	VerbSingleTurn:         "-singleturn",

	VerbRaw: "",
}

// verbAliases are alternative wire spellings.
var verbAliases = map[string]Verb{
	"j": VerbJoin, "J": VerbJoin,
	"l": VerbLeave, "L": VerbLeave,
	"n": VerbName, "N": VerbName,
	"c": VerbChat,
	"b": VerbBattle,
}

var verbByWire = buildVerbIndex()

func buildVerbIndex() map[string]Verb {
	index := make(map[string]Verb, len(verbWire)+len(verbAliases))
	for v, wire := range verbWire {
		if wire != "" {
			index[wire] = Verb(v)
		}
	}
	for wire, v := range verbAliases {
		index[wire] = v
	}
	return index
}

// LookupVerb resolves a wire verb. Minor verbs are also accepted without
// their leading "-" when that spelling is not itself a major verb, as some
// log exporters strip it.
func LookupVerb(wire string) (Verb, bool) {
	if v, ok := verbByWire[wire]; ok {
		return v, true
	}
	if wire == "" || wire[0] == '-' {
		return VerbUnknown, false
	}
	v, ok := verbByWire["-"+wire]
	return v, ok
}

// AllVerbs returns every decodable verb, excluding VerbUnknown and VerbRaw.
func AllVerbs() []Verb {
	out := make([]Verb, 0, verbCount)
	for v := VerbUnknown + 1; v < VerbRaw; v++ {
		out = append(out, v)
	}
	return out
}

// String returns the canonical wire spelling.
func (v Verb) String() string {
	switch {
	case v == VerbRaw:
		return "raw-line"
	case v < verbCount && verbWire[v] != "":
		return verbWire[v]
	}
	return "unknown"
}

// IsMinor reports whether the verb is a minor in-battle effect.
func (v Verb) IsMinor() bool {
	s := v.String()
	return len(s) > 1 && s[0] == '-'
}
