package protocol

// lineParsers maps every verb to its field extractor. The array is sized
// by verbCount so a new verb shows up as a nil entry, which
// TestEveryVerbHasParser rejects.
var lineParsers = [verbCount]lineParser{
	VerbChallstr:         parseChallstr,
	VerbUpdateUser:       parseUpdateUser,
	VerbNameTaken:        parseNameTaken,
	VerbPopup:            parsePopup,
	VerbPM:               parsePM,
	VerbUserCount:        parseUserCount,
	VerbFormats:          parseFormats,
	VerbUpdateSearch:     parseUpdateSearch,
	VerbUpdateChallenges: parseUpdateChallenges,
	VerbQueryResponse:    parseQueryResponse,
	VerbInit:             parseInit,
	VerbDeinit:           parseDeinit,
	VerbTitle:            parseTitle,
	VerbUsers:            parseUsers,
	VerbJoin:             parseJoin,
	VerbLeave:            parseLeave,
	VerbName:             parseName,
	VerbChat:             parseChat,
	VerbChatTimestamped:  parseChatTimestamped,
	VerbTimestamp:        parseTimestamp,
	VerbBattle:           parseBattle,
	VerbNotify:           parseNotify,
	VerbHTML:             parseHTML,
	VerbUHTML:            parseUHTML,
	VerbUHTMLChange:      parseUHTMLChange,
	VerbRawHTML:          parseRawHTML,
	VerbError:            parseError,
	VerbBigError:         parseBigError,

	VerbPlayer:      parsePlayer,
	VerbTeamSize:    parseTeamSize,
	VerbGameType:    parseGameType,
	VerbGen:         parseGen,
	VerbTier:        parseTier,
	VerbRated:       parseRated,
	VerbRule:        parseRule,
	VerbClearPoke:   parseClearPoke,
	VerbPoke:        parsePoke,
	VerbTeamPreview: parseTeamPreview,
	VerbStart:       parseStart,

	VerbRequest:         parseRequest,
	VerbInactive:        parseInactive,
	VerbInactiveOff:     parseInactiveOff,
	VerbUpkeep:          parseUpkeep,
	VerbTurn:            parseTurn,
	VerbWin:             parseWin,
	VerbTie:             parseTie,
	VerbBattleTimestamp: parseBattleTimestamp,
	VerbSplit:           parseSplit,
	VerbDebug:           parseDebug,
	VerbSentChoice:      parseSentChoice,

	VerbMove:          parseMove,
	VerbSwitch:        parseSwitch,
	VerbDrag:          parseDrag,
	VerbDetailsChange: parseDetailsChange,
	VerbReplace:       parseReplace,
	VerbSwap:          parseSwap,
	VerbCant:          parseCant,
	VerbFaint:         parseFaint,

	VerbFail:               parseFail,
	VerbBlock:              parseBlock,
	VerbNoTarget:           parseNoTarget,
	VerbMiss:               parseMiss,
	VerbDamage:             parseDamage,
	VerbHeal:               parseHeal,
	VerbSetHP:              parseSetHP,
	VerbStatus:             parseStatus,
	VerbCureStatus:         parseCureStatus,
	VerbCureTeam:           parseCureTeam,
	VerbBoost:              parseBoost,
	VerbUnboost:            parseUnboost,
	VerbSetBoost:           parseSetBoost,
	VerbSwapBoost:          parseSwapBoost,
	VerbInvertBoost:        parseInvertBoost,
	VerbClearBoost:         parseClearBoost,
	VerbClearAllBoost:      parseClearAllBoost,
	VerbClearPositiveBoost: parseClearPositiveBoost,
	VerbClearNegativeBoost: parseClearNegativeBoost,
	VerbCopyBoost:          parseCopyBoost,
	VerbWeather:            parseWeather,
	VerbFieldStart:         parseFieldStart,
	VerbFieldEnd:           parseFieldEnd,
	VerbSideStart:          parseSideStart,
	VerbSideEnd:            parseSideEnd,
	VerbSwapSideConditions: parseSwapSideConditions,
	VerbEffectStart:        parseEffectStart,
	VerbEffectEnd:          parseEffectEnd,
	VerbCrit:               parseCrit,
	VerbSuperEffective:     parseSuperEffective,
	VerbResisted:           parseResisted,
	VerbImmune:             parseImmune,
	VerbItem:               parseItem,
	VerbEndItem:            parseEndItem,
	VerbAbility:            parseAbility,
	VerbEndAbility:         parseEndAbility,
	VerbTransform:          parseTransform,
	VerbMega:               parseMega,
	VerbPrimal:             parsePrimal,
	VerbBurst:              parseBurst,
	VerbZPower:             parseZPower,
	VerbZBroken:            parseZBroken,
	VerbTerastallize:       parseTerastallize,
	VerbFormeChange:        parseFormeChange,
	VerbActivate:           parseActivate,
	VerbHint:               parseHint,
	VerbCenter:             parseCenter,
	VerbMessage:            parseNarrativeMessage,
	VerbCombine:            parseCombine,
	VerbWaiting:            parseWaiting,
	VerbPrepare:            parsePrepare,
	VerbMustRecharge:       parseMustRecharge,
	VerbNothing:            parseNothing,
	VerbHitCount:           parseHitCount,
	VerbSingleMove:         parseSingleMove,
	VerbSingleTurn:         parseSingleTurn,
}
