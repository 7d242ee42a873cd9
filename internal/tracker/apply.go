package tracker

import (
	"strings"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/protocol"
)

// ApplyFrame applies every decoded message of a frame in order.
func (b *Battle) ApplyFrame(frame *protocol.Frame) {
	for _, msg := range frame.Messages {
		b.Apply(msg)
	}
}

// Apply folds one message into the battle. Messages that name a side or
// Pokémon the tracker has not seen, and that do not carry enough detail
// to create it, are ignored. Once the battle has ended every message is
// ignored and counted in IgnoredAfterEnd.
func (b *Battle) Apply(msg protocol.Message) {
	if b.Ended {
		b.IgnoredAfterEnd++
		b.logger.Debug().Str("verb", msg.Verb().String()).Msg("message after battle end ignored")
		return
	}

	switch m := msg.(type) {
	// Initialization
	case protocol.Player:
		b.ensureSide(m.Seat, m.Username)
	case protocol.TeamSize:
		if s := b.ensureSide(m.Seat, ""); s != nil {
			s.TeamSize = m.Size
		}
	case protocol.GameType:
		b.SetGameType(m.GameType)
	case protocol.Gen:
		b.Generation = m.Generation
	case protocol.Tier:
		b.Tier = m.Name
	case protocol.Rated:
		b.Rated = true
	case protocol.Rule:
		b.Rules = append(b.Rules, m.Text)
	case protocol.Poke:
		b.applyPoke(m)

	// Progress
	case protocol.Turn:
		if m.Number >= b.Turn {
			b.Turn = m.Number
		}
	case protocol.Win:
		b.Ended = true
		b.Winner = m.User
		b.logger.Info().Str("winner", m.User).Int("turn", b.Turn).Msg("battle ended")
	case protocol.Tie:
		b.Ended = true
		b.Tie = true
		b.logger.Info().Int("turn", b.Turn).Msg("battle ended in a tie")

	// Major actions
	case protocol.Switch:
		b.applySwitch(m.Pokemon, m.Details, m.HP)
	case protocol.Drag:
		b.applySwitch(m.Pokemon, m.Details, m.HP)
	case protocol.Replace:
		b.applyReplace(m)
	case protocol.DetailsChange:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.setDetails(m.Details)
			p.applyHPStatus(m.HP)
		}
	case protocol.FormeChange:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Species = m.Species
			p.applyHPStatus(m.HP)
		}
	case protocol.Swap:
		b.applySwap(m)
	case protocol.Faint:
		b.applyFaint(m.Pokemon)
	case protocol.Move:
		if p := b.pokemon(m.Source); p != nil && m.From == "" {
			p.recordMove(m.Move)
		}

	// HP and status
	case protocol.Damage:
		b.applyHP(m.Pokemon, m.HP)
	case protocol.Heal:
		if p := b.applyHP(m.Pokemon, m.HP); p != nil && p.Fainted && m.HP != nil && !m.HP.HP.IsZero() {
			// Revival Blessing brings a fainted Pokémon back.
			p.Fainted = false
		}
	case protocol.SetHP:
		b.applyHP(m.Pokemon, m.HP)
	case protocol.Status:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Status = m.Status
		}
	case protocol.CureStatus:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Status = dex.StatusNone
		}
	case protocol.CureTeam:
		if s := b.Side(m.Pokemon.Seat); s != nil {
			for _, p := range s.Pokemon {
				p.Status = dex.StatusNone
			}
		}

	// Stat stages
	case protocol.Boost:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Boosts.Boost(m.Stat, m.Amount)
		}
	case protocol.Unboost:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Boosts.Unboost(m.Stat, m.Amount)
		}
	case protocol.SetBoost:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Boosts.Set(m.Stat, m.Amount)
		}
	case protocol.ClearBoost:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Boosts.Clear()
		}
	case protocol.ClearAllBoost:
		for _, p := range b.AllActive() {
			p.Boosts.Clear()
		}
	case protocol.ClearPositiveBoost:
		if p := b.pokemon(m.Target); p != nil {
			p.Boosts.ClearPositive()
		}
	case protocol.ClearNegativeBoost:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Boosts.ClearNegative()
		}
	case protocol.InvertBoost:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Boosts.Invert()
		}
	case protocol.CopyBoost:
		src, dst := b.pokemon(m.Source), b.pokemon(m.Target)
		if src != nil && dst != nil {
			dst.Boosts = src.Boosts
		}
	case protocol.SwapBoost:
		src, dst := b.pokemon(m.Source), b.pokemon(m.Target)
		if src != nil && dst != nil {
			stats := m.Stats
			if len(stats) == 0 {
				stats = dex.AllStats()
			}
			src.Boosts.SwapWith(&dst.Boosts, stats)
		}

	// Volatiles
	case protocol.EffectStart:
		b.applyEffectStart(m)
	case protocol.EffectEnd:
		if p := b.pokemon(m.Pokemon); p != nil {
			v := m.Volatile()
			p.Volatiles.remove(v)
			if v.Kind == dex.Dynamaxed {
				p.Dynamaxed = false
			}
		}

	// Field
	case protocol.Weather:
		b.applyWeather(m)
	case protocol.FieldStart:
		if !b.Field.ApplyFieldStart(m.Condition) {
			b.logger.Debug().Str("condition", m.Condition).Msg("unrecognised field condition")
		}
	case protocol.FieldEnd:
		if !b.Field.ApplyFieldEnd(m.Condition) {
			b.logger.Debug().Str("condition", m.Condition).Msg("unrecognised field condition")
		}
	case protocol.SideStart:
		if s := b.ensureSide(m.Side.Seat, ""); s != nil {
			cond := dex.ParseSideCondition(m.Condition)
			if !s.Conditions.Add(cond) {
				b.logger.Debug().Str("side", s.Seat.String()).Str("condition", cond.String()).Msg("side condition already at max layers")
			}
		}
	case protocol.SideEnd:
		if s := b.Side(m.Side.Seat); s != nil {
			s.Conditions.Remove(dex.ParseSideCondition(m.Condition))
		}
	case protocol.SwapSideConditions:
		if p1, p2 := b.Side(dex.P1), b.Side(dex.P2); p1 != nil && p2 != nil {
			p1.Conditions, p2.Conditions = p2.Conditions, p1.Conditions
		}

	// Revealed knowledge
	case protocol.Item:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.recordItem(m.Item)
		}
	case protocol.EndItem:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.consumeItem(m.Item)
		}
	case protocol.Ability:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Ability = m.Ability
		}
	case protocol.EndAbility:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Volatiles.add(dex.V(dex.GastroAcid))
		}

	// Transformations
	case protocol.Transform:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.Transformed = m.Species()
			p.Volatiles.add(dex.V(dex.Transformed))
		}
	case protocol.Mega:
		if p := b.pokemon(m.Pokemon); p != nil {
			p.MegaEvolved = true
			if m.Megastone != "" && p.Item == "" {
				p.Item = m.Megastone
			}
		}
	case protocol.Burst:
		if p := b.pokemon(m.Pokemon); p != nil && m.Species != "" {
			p.Species = m.Species
		}
	case protocol.Terastallize:
		b.applyTerastallize(m)

	case protocol.Raw:
		b.logger.Trace().Str("line", m.Line).Msg("raw line")

	default:
		// Cosmetic and room-level messages carry no battle state.
	}
}

// pokemon resolves a subject reference, nil when unknown.
func (b *Battle) pokemon(ref protocol.PokemonRef) *Pokemon {
	s := b.Side(ref.Seat)
	if s == nil {
		return nil
	}
	if ref.Name == "" {
		return s.At(ref.SlotIndex())
	}
	return s.find(ref.Name)
}

// resolveOrCreate finds the roster entry a switch names or appends a new
// one. A team preview placeholder matched by species takes the nickname.
func (s *Side) resolveOrCreate(name string, details protocol.Details) int {
	for i, p := range s.Pokemon {
		if p.Ident == name {
			return i
		}
	}
	for i, p := range s.Pokemon {
		if p.Species == details.Species && p.Ident == p.Species {
			p.Ident = name
			return i
		}
	}
	s.Pokemon = append(s.Pokemon, newPokemon(name, details))
	return len(s.Pokemon) - 1
}

func (b *Battle) applySwitch(ref protocol.PokemonRef, details protocol.Details, hp *protocol.HPStatus) {
	s := b.ensureSide(ref.Seat, "")
	if s == nil {
		return
	}

	idx := s.resolveOrCreate(ref.Name, details)
	p := s.Pokemon[idx]
	p.setDetails(details)
	p.applyHPStatus(hp)

	slot := ref.SlotIndex()
	if slot >= len(s.Active) && b.GameType == dex.GameTypeUnknown {
		s.resize(slot + 1)
	}
	if !s.setActive(slot, idx) {
		b.logger.Warn().
			Str("pokemon", ref.String()).
			Bool("fainted", p.Fainted).
			Int("slot", slot).
			Msg("switch could not be placed on the board")
	}
}

// applyReplace handles an Illusion reveal: the revealed Pokémon takes
// over the position and the combat state of the disguise.
func (b *Battle) applyReplace(m protocol.Replace) {
	s := b.Side(m.Pokemon.Seat)
	if s == nil {
		return
	}
	slot := m.Pokemon.SlotIndex()
	disguise := s.At(slot)

	idx := s.resolveOrCreate(m.Pokemon.Name, m.Details)
	revealed := s.Pokemon[idx]
	revealed.setDetails(m.Details)
	revealed.applyHPStatus(m.HP)

	if disguise == nil || disguise == revealed || slot >= len(s.Active) {
		if slot < len(s.Active) {
			s.setActive(slot, idx)
		}
		return
	}
	revealed.Boosts = disguise.Boosts
	revealed.Volatiles = disguise.Volatiles.clone()
	disguise.switchOut()
	s.Active[slot] = idx
	revealed.switchIn()
}

func (b *Battle) applySwap(m protocol.Swap) {
	s := b.Side(m.Pokemon.Seat)
	if s == nil || m.Position < 0 || m.Position >= len(s.Active) {
		return
	}
	idx, ok := s.Find(m.Pokemon.Name)
	if !ok {
		return
	}
	from, ok := s.slotOf(idx)
	if !ok {
		return
	}
	s.Active[from], s.Active[m.Position] = s.Active[m.Position], s.Active[from]
}

func (b *Battle) applyFaint(ref protocol.PokemonRef) {
	s := b.Side(ref.Seat)
	if s == nil {
		return
	}
	idx, ok := s.Find(ref.Name)
	if ref.Name == "" && ref.Slot != "" {
		if slot := ref.SlotIndex(); slot < len(s.Active) && s.Active[slot] != emptySlot {
			idx, ok = s.Active[slot], true
		}
	}
	if !ok {
		return
	}
	p := s.Pokemon[idx]
	p.Fainted = true
	p.zeroHP()
	p.Active = false
	s.clearSlotOf(idx)
}

func (b *Battle) applyHP(ref protocol.PokemonRef, hp *protocol.HPStatus) *Pokemon {
	p := b.pokemon(ref)
	if p != nil {
		p.applyHPStatus(hp)
	}
	return p
}

func (b *Battle) applyEffectStart(m protocol.EffectStart) {
	p := b.pokemon(m.Pokemon)
	if p == nil {
		return
	}

	v := m.Volatile()
	switch {
	case v.Kind == dex.TypeChange:
		if types := parseTypeList(firstArg(m.Args)); len(types) > 0 {
			p.CurrentTypes = types
		}
	case v.Kind == dex.Dynamaxed:
		p.Dynamaxed = true
	case v.IsOther() && dex.ToID(m.Effect) == "typeadd":
		if t, ok := dex.ParseType(firstArg(m.Args)); ok {
			p.addType(t)
		}
		return
	}
	p.Volatiles.add(v)
}

func (b *Battle) applyWeather(m protocol.Weather) {
	if m.Upkeep {
		return
	}
	w, ok := m.Weather()
	if !ok {
		b.logger.Debug().Str("weather", m.Name).Msg("unrecognised weather ignored")
		return
	}
	b.Field.Weather = w
}

func (b *Battle) applyTerastallize(m protocol.Terastallize) {
	p := b.pokemon(m.Pokemon)
	if p == nil {
		return
	}
	p.Terastallized = true
	if t, ok := dex.ParseType(m.TeraType); ok {
		p.TeraType = &t
		p.CurrentTypes = []dex.Type{t}
	}
}

// applyPoke adds a team preview entry unless the species is already on
// the roster.
func (b *Battle) applyPoke(m protocol.Poke) {
	s := b.ensureSide(m.Seat, "")
	if s == nil {
		return
	}
	for _, p := range s.Pokemon {
		if p.Species == m.Details.Species {
			return
		}
	}
	s.Pokemon = append(s.Pokemon, newPokemon(m.Details.Species, m.Details))
}

// firstArg returns the first untagged argument.
func firstArg(args []string) string {
	for _, a := range args {
		if a != "" && !strings.HasPrefix(a, "[") {
			return a
		}
	}
	return ""
}

// parseTypeList parses "Fire/Water".
func parseTypeList(s string) []dex.Type {
	var out []dex.Type
	for _, part := range strings.Split(s, "/") {
		if t, ok := dex.ParseType(strings.TrimSpace(part)); ok {
			out = append(out, t)
		}
	}
	return out
}
