package protocol

import (
	"fmt"
	"strings"

	"github.com/energizer-project/showtrack/internal/dex"
)

// |-fail|POKEMON|ACTION
func parseFail(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Fail{Pokemon: ref, Action: f.plain(1)}, nil
}

// |-block|POKEMON|EFFECT|MOVE|ATTACKER
func parseBlock(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Block{Pokemon: ref, Effect: f.get(1), Move: f.plain(2), Attacker: f.plain(3)}, nil
}

func parseNoTarget(f fields) (Message, error) {
	ref, err := optionalRef(f.plain(0))
	if err != nil {
		return nil, err
	}
	return NoTarget{Pokemon: ref}, nil
}

// |-miss|SOURCE|TARGET
func parseMiss(f fields) (Message, error) {
	source, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	target, err := optionalRef(f.plain(1))
	if err != nil {
		return nil, err
	}
	return Miss{Source: source, Target: target}, nil
}

// damageFields parses POKEMON|HP STATUS with an optional [from] tag.
func damageFields(f fields) (Damage, error) {
	ref, err := f.ref(0)
	if err != nil {
		return Damage{}, err
	}
	hp, err := optionalHPStatus(f.plain(1))
	if err != nil {
		return Damage{}, err
	}
	from, _ := f.tag(1, "from")
	return Damage{Pokemon: ref, HP: hp, From: from}, nil
}

func parseDamage(f fields) (Message, error) {
	d, err := damageFields(f)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func parseHeal(f fields) (Message, error) {
	d, err := damageFields(f)
	if err != nil {
		return nil, err
	}
	return Heal(d), nil
}

func parseSetHP(f fields) (Message, error) {
	d, err := damageFields(f)
	if err != nil {
		return nil, err
	}
	return SetHP(d), nil
}

func statusFields(f fields) (Status, error) {
	ref, err := f.ref(0)
	if err != nil {
		return Status{}, err
	}
	code, err := f.require(1, "status")
	if err != nil {
		return Status{}, err
	}
	status, ok := dex.ParseStatus(strings.TrimSpace(code))
	if !ok {
		return Status{}, fmt.Errorf("%w: status %q", ErrInvalidFormat, code)
	}
	return Status{Pokemon: ref, Status: status}, nil
}

func parseStatus(f fields) (Message, error) {
	s, err := statusFields(f)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parseCureStatus(f fields) (Message, error) {
	s, err := statusFields(f)
	if err != nil {
		return nil, err
	}
	return CureStatus(s), nil
}

func parseCureTeam(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return CureTeam{Pokemon: ref}, nil
}

// boostFields parses POKEMON|STAT|AMOUNT.
func boostFields(f fields) (Boost, error) {
	ref, err := f.ref(0)
	if err != nil {
		return Boost{}, err
	}
	name, err := f.require(1, "stat")
	if err != nil {
		return Boost{}, err
	}
	stat, ok := dex.ParseStat(name)
	if !ok {
		return Boost{}, fmt.Errorf("%w: stat %q", ErrInvalidFormat, name)
	}
	amount, err := f.number(2, "amount")
	if err != nil {
		return Boost{}, err
	}
	return Boost{Pokemon: ref, Stat: stat, Amount: amount}, nil
}

func parseBoost(f fields) (Message, error) {
	b, err := boostFields(f)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func parseUnboost(f fields) (Message, error) {
	b, err := boostFields(f)
	if err != nil {
		return nil, err
	}
	return Unboost(b), nil
}

func parseSetBoost(f fields) (Message, error) {
	b, err := boostFields(f)
	if err != nil {
		return nil, err
	}
	return SetBoost(b), nil
}

// |-swapboost|SOURCE|TARGET|STATS
func parseSwapBoost(f fields) (Message, error) {
	source, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	target, err := f.ref(1)
	if err != nil {
		return nil, err
	}
	msg := SwapBoost{Source: source, Target: target}
	for _, name := range strings.Split(f.plain(2), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		stat, ok := dex.ParseStat(name)
		if !ok {
			return nil, fmt.Errorf("%w: stat %q", ErrInvalidFormat, name)
		}
		msg.Stats = append(msg.Stats, stat)
	}
	return msg, nil
}

func parseInvertBoost(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return InvertBoost{Pokemon: ref}, nil
}

func parseClearBoost(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return ClearBoost{Pokemon: ref}, nil
}

func parseClearNegativeBoost(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return ClearNegativeBoost{Pokemon: ref}, nil
}

func parseClearAllBoost(fields) (Message, error) { return ClearAllBoost{}, nil }

// |-clearpositiveboost|TARGET|POKEMON|EFFECT
func parseClearPositiveBoost(f fields) (Message, error) {
	target, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	source, err := optionalRef(f.plain(1))
	if err != nil {
		return nil, err
	}
	return ClearPositiveBoost{Target: target, Source: source, Effect: f.plain(2)}, nil
}

// |-copyboost|SOURCE|TARGET
func parseCopyBoost(f fields) (Message, error) {
	source, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	target, err := f.ref(1)
	if err != nil {
		return nil, err
	}
	return CopyBoost{Source: source, Target: target}, nil
}

// |-weather|WEATHER plus [upkeep] and [from] tags. A missing weather is
// treated as "none".
func parseWeather(f fields) (Message, error) {
	name := f.plain(0)
	if name == "" {
		name = "none"
	}
	msg := Weather{Name: name}
	_, msg.Upkeep = f.tag(1, "upkeep")
	msg.From, _ = f.tag(1, "from")
	return msg, nil
}

func parseFieldStart(f fields) (Message, error) {
	cond, err := f.require(0, "condition")
	if err != nil {
		return nil, err
	}
	return FieldStart{Condition: cond}, nil
}

func parseFieldEnd(f fields) (Message, error) {
	cond, err := f.require(0, "condition")
	if err != nil {
		return nil, err
	}
	return FieldEnd{Condition: cond}, nil
}

// |-sidestart|SIDE|CONDITION
func sideFields(f fields) (SideStart, error) {
	s, err := f.require(0, "side")
	if err != nil {
		return SideStart{}, err
	}
	side, err := ParseSideRef(s)
	if err != nil {
		return SideStart{}, err
	}
	cond, err := f.require(1, "condition")
	if err != nil {
		return SideStart{}, err
	}
	return SideStart{Side: side, Condition: cond}, nil
}

func parseSideStart(f fields) (Message, error) {
	s, err := sideFields(f)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parseSideEnd(f fields) (Message, error) {
	s, err := sideFields(f)
	if err != nil {
		return nil, err
	}
	return SideEnd(s), nil
}

func parseSwapSideConditions(fields) (Message, error) { return SwapSideConditions{}, nil }

// |-start|POKEMON|EFFECT|ARGS...
func effectFields(f fields) (EffectStart, error) {
	ref, err := f.ref(0)
	if err != nil {
		return EffectStart{}, err
	}
	effect, err := f.require(1, "effect")
	if err != nil {
		return EffectStart{}, err
	}
	var args []string
	if len(f) > 2 {
		args = append(args, f[2:]...)
	}
	return EffectStart{Pokemon: ref, Effect: effect, Args: args}, nil
}

func parseEffectStart(f fields) (Message, error) {
	e, err := effectFields(f)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func parseEffectEnd(f fields) (Message, error) {
	e, err := effectFields(f)
	if err != nil {
		return nil, err
	}
	return EffectEnd(e), nil
}

func parseCrit(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Crit{Pokemon: ref}, nil
}

func parseSuperEffective(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return SuperEffective{Pokemon: ref}, nil
}

func parseResisted(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Resisted{Pokemon: ref}, nil
}

func parseImmune(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Immune{Pokemon: ref}, nil
}

// |-item|POKEMON|ITEM|[from]EFFECT
func parseItem(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	item, err := f.require(1, "item")
	if err != nil {
		return nil, err
	}
	from, _ := f.tag(2, "from")
	return Item{Pokemon: ref, Item: item, From: from}, nil
}

// |-enditem|POKEMON|ITEM|[from]EFFECT|[eat]
func parseEndItem(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	item, err := f.require(1, "item")
	if err != nil {
		return nil, err
	}
	msg := EndItem{Pokemon: ref, Item: item}
	msg.From, _ = f.tag(2, "from")
	_, msg.Eat = f.tag(2, "eat")
	return msg, nil
}

// |-ability|POKEMON|ABILITY|[from]EFFECT
func parseAbility(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	ability, err := f.require(1, "ability")
	if err != nil {
		return nil, err
	}
	from, _ := f.tag(2, "from")
	return Ability{Pokemon: ref, Ability: ability, From: from}, nil
}

func parseEndAbility(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return EndAbility{Pokemon: ref}, nil
}

// |-transform|POKEMON|SPECIES
func parseTransform(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	into, err := f.require(1, "species")
	if err != nil {
		return nil, err
	}
	return Transform{Pokemon: ref, Into: into}, nil
}

// |-mega|POKEMON|MEGASTONE (older servers send SPECIES|MEGASTONE)
func parseMega(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	stone := f.plain(1)
	if s := f.plain(2); s != "" {
		stone = s
	}
	return Mega{Pokemon: ref, Megastone: stone}, nil
}

func parsePrimal(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Primal{Pokemon: ref}, nil
}

// |-burst|POKEMON|SPECIES|ITEM
func parseBurst(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Burst{Pokemon: ref, Species: f.get(1), Item: f.plain(2)}, nil
}

func parseZPower(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return ZPower{Pokemon: ref}, nil
}

func parseZBroken(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return ZBroken{Pokemon: ref}, nil
}

// |-activate|POKEMON|EFFECT|ARGS...
// The subject is empty for field-wide activations.
func parseActivate(f fields) (Message, error) {
	ref, err := optionalRef(f.get(0))
	if err != nil {
		return nil, err
	}
	msg := Activate{Pokemon: ref, Effect: f.get(1)}
	if len(f) > 2 {
		msg.Args = append(msg.Args, f[2:]...)
	}
	return msg, nil
}

func parseHint(f fields) (Message, error) {
	return Hint{Text: f.rest(0)}, nil
}

func parseCenter(fields) (Message, error) { return Center{}, nil }

func parseNarrativeMessage(f fields) (Message, error) {
	return NarrativeMessage{Text: f.rest(0)}, nil
}

func parseCombine(fields) (Message, error) { return Combine{}, nil }

// |-waiting|SOURCE|TARGET
func parseWaiting(f fields) (Message, error) {
	source, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	target, err := f.ref(1)
	if err != nil {
		return nil, err
	}
	return Waiting{Source: source, Target: target}, nil
}

// |-prepare|ATTACKER|MOVE|DEFENDER
func parsePrepare(f fields) (Message, error) {
	attacker, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	move, err := f.require(1, "move")
	if err != nil {
		return nil, err
	}
	defender, err := optionalRef(f.plain(2))
	if err != nil {
		return nil, err
	}
	return Prepare{Attacker: attacker, Move: move, Defender: defender}, nil
}

func parseMustRecharge(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return MustRecharge{Pokemon: ref}, nil
}

func parseNothing(fields) (Message, error) { return Nothing{}, nil }

// |-hitcount|POKEMON|NUM
func parseHitCount(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	n, err := f.number(1, "hit count")
	if err != nil {
		return nil, err
	}
	return HitCount{Pokemon: ref, Count: n}, nil
}

func parseSingleMove(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	move, err := f.require(1, "move")
	if err != nil {
		return nil, err
	}
	return SingleMove{Pokemon: ref, Move: move}, nil
}

func parseSingleTurn(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	move, err := f.require(1, "move")
	if err != nil {
		return nil, err
	}
	return SingleTurn{Pokemon: ref, Move: move}, nil
}
