package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/energizer-project/showtrack/internal/dex"
)

func seatField(f fields, i int) (dex.Seat, error) {
	s, err := f.require(i, "seat")
	if err != nil {
		return 0, err
	}
	seat, ok := dex.ParseSeat(s)
	if !ok {
		return 0, fmt.Errorf("%w: seat %q", ErrInvalidFormat, s)
	}
	return seat, nil
}

// |player|PLAYER|USERNAME|AVATAR|RATING
func parsePlayer(f fields) (Message, error) {
	seat, err := seatField(f, 0)
	if err != nil {
		return nil, err
	}
	msg := Player{Seat: seat, Username: f.get(1), Avatar: f.get(2)}
	if r := f.get(3); r != "" {
		if rating, err := strconv.Atoi(r); err == nil {
			msg.Rating = rating
		}
	}
	return msg, nil
}

func parseTeamSize(f fields) (Message, error) {
	seat, err := seatField(f, 0)
	if err != nil {
		return nil, err
	}
	size, err := f.number(1, "team size")
	if err != nil {
		return nil, err
	}
	return TeamSize{Seat: seat, Size: size}, nil
}

func parseGameType(f fields) (Message, error) {
	s, err := f.require(0, "game type")
	if err != nil {
		return nil, err
	}
	gt, ok := dex.ParseGameType(s)
	if !ok {
		return nil, fmt.Errorf("%w: game type %q", ErrInvalidFormat, s)
	}
	return GameType{GameType: gt}, nil
}

func parseGen(f fields) (Message, error) {
	n, err := f.number(0, "generation")
	if err != nil {
		return nil, err
	}
	return Gen{Generation: n}, nil
}

func parseTier(f fields) (Message, error) {
	return Tier{Name: f.get(0)}, nil
}

func parseRated(f fields) (Message, error) {
	return Rated{Message: f.rest(0)}, nil
}

func parseRule(f fields) (Message, error) {
	return Rule{Text: f.rest(0)}, nil
}

func parseClearPoke(fields) (Message, error) { return ClearPoke{}, nil }

// |poke|PLAYER|DETAILS|ITEM
func parsePoke(f fields) (Message, error) {
	seat, err := seatField(f, 0)
	if err != nil {
		return nil, err
	}
	details, err := ParseDetails(f.get(1))
	if err != nil {
		return nil, err
	}
	return Poke{Seat: seat, Details: details, HasItem: f.get(2) == "item"}, nil
}

func parseTeamPreview(f fields) (Message, error) {
	msg := TeamPreview{}
	if s := f.get(0); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: team preview count %q", ErrInvalidFormat, s)
		}
		msg.Count = n
	}
	return msg, nil
}

func parseStart(fields) (Message, error) { return Start{}, nil }

// |request|REQUEST
// An empty payload is allowed and means "no request".
func parseRequest(f fields) (Message, error) {
	payload, err := jsonPayload(f.rest(0))
	if err != nil {
		return nil, err
	}
	return Request{Payload: payload}, nil
}

func parseInactive(f fields) (Message, error) {
	return Inactive{Message: f.rest(0)}, nil
}

func parseInactiveOff(f fields) (Message, error) {
	return InactiveOff{Message: f.rest(0)}, nil
}

func parseUpkeep(fields) (Message, error) { return Upkeep{}, nil }

func parseTurn(f fields) (Message, error) {
	n, err := f.number(0, "turn")
	if err != nil {
		return nil, err
	}
	return Turn{Number: n}, nil
}

func parseWin(f fields) (Message, error) {
	return Win{User: f.get(0)}, nil
}

func parseTie(fields) (Message, error) { return Tie{}, nil }

func parseBattleTimestamp(f fields) (Message, error) {
	ts, err := timestampField(f, 0)
	if err != nil {
		return nil, err
	}
	return BattleTimestamp{Time: ts}, nil
}

func parseSplit(f fields) (Message, error) {
	seat, err := seatField(f, 0)
	if err != nil {
		return nil, err
	}
	return Split{Seat: seat}, nil
}

func parseDebug(f fields) (Message, error) {
	return Debug{Text: f.rest(0)}, nil
}

func parseSentChoice(f fields) (Message, error) {
	return SentChoice{Choice: f.rest(0)}, nil
}

// |move|POKEMON|MOVE|TARGET plus [miss], [still], [anim] X, [from] X tags
func parseMove(f fields) (Message, error) {
	source, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	move, err := f.require(1, "move")
	if err != nil {
		return nil, err
	}
	target, err := optionalRef(f.plain(2))
	if err != nil {
		return nil, err
	}

	msg := Move{Source: source, Move: move, Target: target}
	_, msg.Miss = f.tag(2, "miss")
	_, msg.Still = f.tag(2, "still")
	msg.Anim, _ = f.tag(2, "anim")
	msg.From, _ = f.tag(2, "from")
	return msg, nil
}

// switchFields parses the shared POKEMON|DETAILS|HP STATUS layout.
func switchFields(f fields) (Switch, error) {
	ref, err := f.ref(0)
	if err != nil {
		return Switch{}, err
	}
	details, err := ParseDetails(f.get(1))
	if err != nil {
		return Switch{}, err
	}
	hp, err := optionalHPStatus(f.plain(2))
	if err != nil {
		return Switch{}, err
	}
	return Switch{Pokemon: ref, Details: details, HP: hp}, nil
}

func parseSwitch(f fields) (Message, error) {
	s, err := switchFields(f)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parseDrag(f fields) (Message, error) {
	s, err := switchFields(f)
	if err != nil {
		return nil, err
	}
	return Drag(s), nil
}

func parseDetailsChange(f fields) (Message, error) {
	s, err := switchFields(f)
	if err != nil {
		return nil, err
	}
	return DetailsChange(s), nil
}

func parseReplace(f fields) (Message, error) {
	s, err := switchFields(f)
	if err != nil {
		return nil, err
	}
	return Replace(s), nil
}

// |-formechange|POKEMON|SPECIES|HP STATUS
func parseFormeChange(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	species, err := f.require(1, "species")
	if err != nil {
		return nil, err
	}
	hp, err := optionalHPStatus(f.plain(2))
	if err != nil {
		return nil, err
	}
	return FormeChange{Pokemon: ref, Species: species, HP: hp}, nil
}

// |swap|POKEMON|POSITION
func parseSwap(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	pos, err := f.number(1, "position")
	if err != nil {
		return nil, err
	}
	return Swap{Pokemon: ref, Position: pos}, nil
}

// |cant|POKEMON|REASON|MOVE
func parseCant(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Cant{Pokemon: ref, Reason: f.get(1), Move: f.plain(2)}, nil
}

func parseFaint(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Faint{Pokemon: ref}, nil
}

// |-terastallize|POKEMON|TYPE
func parseTerastallize(f fields) (Message, error) {
	ref, err := f.ref(0)
	if err != nil {
		return nil, err
	}
	return Terastallize{Pokemon: ref, TeraType: strings.TrimSpace(f.get(1))}, nil
}
