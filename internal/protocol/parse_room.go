package protocol

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// |challstr|CHALLSTR
// The challenge string itself contains "|".
func parseChallstr(f fields) (Message, error) {
	value := f.rest(0)
	if value == "" {
		return nil, fmt.Errorf("%w: challstr", ErrMissingField)
	}
	return Challstr{Value: value}, nil
}

// |updateuser|USER|NAMED|AVATAR|SETTINGS
func parseUpdateUser(f fields) (Message, error) {
	user, err := f.require(0, "user")
	if err != nil {
		return nil, err
	}
	msg := UpdateUser{
		User:   ParseUser(user),
		Named:  f.get(1) == "1",
		Avatar: f.get(2),
	}
	if settings := f.rest(3); settings != "" {
		payload, err := jsonPayload(settings)
		if err != nil {
			return nil, err
		}
		msg.Settings = payload
	}
	return msg, nil
}

func parseNameTaken(f fields) (Message, error) {
	return NameTaken{Username: f.get(0), Message: f.rest(1)}, nil
}

func parsePopup(f fields) (Message, error) {
	return Popup{Text: f.rest(0)}, nil
}

// |pm|SENDER|RECEIVER|MESSAGE
func parsePM(f fields) (Message, error) {
	from, err := f.require(0, "sender")
	if err != nil {
		return nil, err
	}
	to, err := f.require(1, "receiver")
	if err != nil {
		return nil, err
	}
	return PM{From: ParseUser(from), To: ParseUser(to), Text: f.rest(2)}, nil
}

func parseUserCount(f fields) (Message, error) {
	n, err := f.number(0, "usercount")
	if err != nil {
		return nil, err
	}
	return UserCount{Count: n}, nil
}

// |formats|,COLUMN|SECTION|FORMAT,FLAGS|FORMAT,FLAGS|,COLUMN|...
// Empty fields separate sections too.
func parseFormats(f fields) (Message, error) {
	var (
		sections []FormatSection
		current  *FormatSection
	)
	flush := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for _, part := range f {
		if part == "" {
			flush()
			continue
		}
		if col, ok := strings.CutPrefix(part, ","); ok {
			flush()
			if n, err := strconv.Atoi(col); err == nil {
				current = &FormatSection{Column: n}
			}
			continue
		}
		if current == nil {
			continue
		}
		if current.Name == "" {
			current.Name = part
			continue
		}
		current.Formats = append(current.Formats, parseFormatEntry(part))
	}
	flush()

	return Formats{Sections: sections}, nil
}

// Format entries end in ",HEX" display flags.
func parseFormatEntry(entry string) Format {
	name, hex, found := cutLast(entry, ",")
	if !found {
		return Format{Name: entry}
	}
	flags, err := strconv.ParseUint(hex, 16, 8)
	if err != nil {
		flags = 0
	}
	return Format{
		Name:           name,
		RandomTeam:     flags&1 != 0,
		SearchShow:     flags&2 != 0,
		ChallengeShow:  flags&4 != 0,
		TournamentShow: flags&8 != 0,
		Level50:        flags&16 != 0,
		BestOf:         flags&64 != 0,
		TeraPreview:    flags&128 != 0,
	}
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func parseUpdateSearch(f fields) (Message, error) {
	payload, err := jsonPayload(f.rest(0))
	if err != nil {
		return nil, err
	}
	return UpdateSearch{Payload: payload}, nil
}

func parseUpdateChallenges(f fields) (Message, error) {
	payload, err := jsonPayload(f.rest(0))
	if err != nil {
		return nil, err
	}
	return UpdateChallenges{Payload: payload}, nil
}

// |queryresponse|QUERYTYPE|JSON
func parseQueryResponse(f fields) (Message, error) {
	queryType, err := f.require(0, "query type")
	if err != nil {
		return nil, err
	}
	payload, err := jsonPayload(f.rest(1))
	if err != nil {
		return nil, err
	}
	return QueryResponse{QueryType: queryType, Payload: payload}, nil
}

func parseInit(f fields) (Message, error) {
	switch kind := RoomType(f.get(0)); kind {
	case RoomChat, RoomBattle:
		return Init{RoomType: kind}, nil
	default:
		return nil, fmt.Errorf("%w: room type %q", ErrInvalidFormat, f.get(0))
	}
}

func parseDeinit(fields) (Message, error) { return Deinit{}, nil }

func parseTitle(f fields) (Message, error) {
	return Title{Text: f.rest(0)}, nil
}

// |users|COUNT,USER1,USER2...
func parseUsers(f fields) (Message, error) {
	list, err := f.require(0, "users")
	if err != nil {
		return nil, err
	}
	entries := strings.Split(list, ",")
	users := make([]User, 0, len(entries))
	for _, entry := range entries[1:] {
		if entry == "" {
			continue
		}
		users = append(users, ParseUser(entry))
	}
	return Users{Users: users}, nil
}

func parseJoin(f fields) (Message, error) {
	return Join{User: ParseUser(f.get(0))}, nil
}

func parseLeave(f fields) (Message, error) {
	return Leave{User: ParseUser(f.get(0))}, nil
}

// |n|USER|OLDID
func parseName(f fields) (Message, error) {
	return Name{User: ParseUser(f.get(0)), OldID: f.get(1)}, nil
}

// |c|USER|MESSAGE
func parseChat(f fields) (Message, error) {
	user, err := f.require(0, "user")
	if err != nil {
		return nil, err
	}
	return Chat{User: ParseUser(user), Text: f.rest(1)}, nil
}

// |c:|TIMESTAMP|USER|MESSAGE
func parseChatTimestamped(f fields) (Message, error) {
	ts, err := timestampField(f, 0)
	if err != nil {
		return nil, err
	}
	user, err := f.require(1, "user")
	if err != nil {
		return nil, err
	}
	return ChatTimestamped{Timestamp: ts, User: ParseUser(user), Text: f.rest(2)}, nil
}

func parseTimestamp(f fields) (Message, error) {
	ts, err := timestampField(f, 0)
	if err != nil {
		return nil, err
	}
	return Timestamp{Time: ts}, nil
}

func timestampField(f fields, i int) (int64, error) {
	s, err := f.require(i, "timestamp")
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: timestamp %q", ErrInvalidFormat, s)
	}
	return ts, nil
}

// |b|ROOMID|USER1|USER2
func parseBattle(f fields) (Message, error) {
	room, err := f.require(0, "room id")
	if err != nil {
		return nil, err
	}
	return Battle{RoomID: room, User1: ParseUser(f.get(1)), User2: ParseUser(f.get(2))}, nil
}

// |notify|TITLE|MESSAGE|HIGHLIGHTTOKEN
func parseNotify(f fields) (Message, error) {
	return Notify{Title: f.get(0), Text: f.get(1), Highlight: f.get(2)}, nil
}

func parseHTML(f fields) (Message, error) {
	return HTML{Content: f.rest(0)}, nil
}

// |uhtml|NAME|HTML
func parseUHTML(f fields) (Message, error) {
	name, err := f.require(0, "uhtml name")
	if err != nil {
		return nil, err
	}
	return UHTML{Name: name, Content: f.rest(1)}, nil
}

func parseUHTMLChange(f fields) (Message, error) {
	name, err := f.require(0, "uhtml name")
	if err != nil {
		return nil, err
	}
	return UHTMLChange{Name: name, Content: f.rest(1)}, nil
}

func parseRawHTML(f fields) (Message, error) {
	return RawHTML{Content: f.rest(0)}, nil
}

func parseError(f fields) (Message, error) {
	return Error{Text: f.rest(0)}, nil
}

func parseBigError(f fields) (Message, error) {
	return BigError{Text: f.rest(0)}, nil
}

// jsonPayload validates an embedded JSON value. Empty input yields nil.
func jsonPayload(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !json.Valid([]byte(s)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(s), nil
}
