package protocol

import json "github.com/goccy/go-json"

// Message is one decoded protocol line. Every concrete message is a value
// type named after its verb; switch on the concrete type to consume it.
type Message interface {
	Verb() Verb
}

// Raw is a line the decoder does not interpret: an unrecognised verb or
// plain room text that does not start with "|".
type Raw struct {
	Line string `json:"line"`
}

func (Raw) Verb() Verb { return VerbRaw }

// Challstr carries the challenge string used to log in.
type Challstr struct {
	Value string `json:"value"`
}

// UpdateUser reports the connection's current identity.
type UpdateUser struct {
	User     User            `json:"user"`
	Named    bool            `json:"named"`
	Avatar   string          `json:"avatar"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type NameTaken struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type Popup struct {
	Text string `json:"text"`
}

// PM is a private message.
type PM struct {
	From User   `json:"from"`
	To   User   `json:"to"`
	Text string `json:"text"`
}

type UserCount struct {
	Count int `json:"count"`
}

// Formats lists the ladder formats, grouped in sections.
type Formats struct {
	Sections []FormatSection `json:"sections"`
}

// FormatSection is one column group of formats.
type FormatSection struct {
	Column  int      `json:"column"`
	Name    string   `json:"name"`
	Formats []Format `json:"formats"`
}

// Format is one entry of |formats| with its display flags decoded.
type Format struct {
	Name           string `json:"name"`
	RandomTeam     bool   `json:"random_team"`
	SearchShow     bool   `json:"search_show"`
	ChallengeShow  bool   `json:"challenge_show"`
	TournamentShow bool   `json:"tournament_show"`
	Level50        bool   `json:"level_50"`
	BestOf         bool   `json:"best_of"`
	TeraPreview    bool   `json:"tera_preview"`
}

// UpdateSearch carries the JSON search state.
type UpdateSearch struct {
	Payload json.RawMessage `json:"payload"`
}

// UpdateChallenges carries the JSON challenge state.
type UpdateChallenges UpdateSearch

// QueryResponse answers a /query command.
type QueryResponse struct {
	QueryType string          `json:"query_type"`
	Payload   json.RawMessage `json:"payload"`
}

// RoomType is the kind of room announced by |init|.
type RoomType string

const (
	RoomChat   RoomType = "chat"
	RoomBattle RoomType = "battle"
)

type Init struct {
	RoomType RoomType `json:"room_type"`
}

type Deinit struct{}

type Title struct {
	Text string `json:"text"`
}

// Users is the room roster sent on join; the leading count is dropped.
type Users struct {
	Users []User `json:"users"`
}

type Join struct {
	User User `json:"user"`
}

type Leave Join

// Name reports a user renaming from OldID.
type Name struct {
	User  User   `json:"user"`
	OldID string `json:"old_id"`
}

type Chat struct {
	User User   `json:"user"`
	Text string `json:"text"`
}

// ChatTimestamped is a chat line with a unix timestamp.
type ChatTimestamped struct {
	Timestamp int64  `json:"timestamp"`
	User      User   `json:"user"`
	Text      string `json:"text"`
}

type Timestamp struct {
	Time int64 `json:"time"`
}

// Battle announces a battle starting in a room.
type Battle struct {
	RoomID string `json:"room_id"`
	User1  User   `json:"user1"`
	User2  User   `json:"user2"`
}

type Notify struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	Highlight string `json:"highlight,omitempty"`
}

type HTML struct {
	Content string `json:"content"`
}

// UHTML is named HTML that later uhtmlchange lines can replace.
type UHTML struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type UHTMLChange UHTML

type RawHTML HTML

type Error struct {
	Text string `json:"text"`
}

type BigError Error

func (Challstr) Verb() Verb         { return VerbChallstr }
func (UpdateUser) Verb() Verb       { return VerbUpdateUser }
func (NameTaken) Verb() Verb        { return VerbNameTaken }
func (Popup) Verb() Verb            { return VerbPopup }
func (PM) Verb() Verb               { return VerbPM }
func (UserCount) Verb() Verb        { return VerbUserCount }
func (Formats) Verb() Verb          { return VerbFormats }
func (UpdateSearch) Verb() Verb     { return VerbUpdateSearch }
func (UpdateChallenges) Verb() Verb { return VerbUpdateChallenges }
func (QueryResponse) Verb() Verb    { return VerbQueryResponse }
func (Init) Verb() Verb             { return VerbInit }
func (Deinit) Verb() Verb           { return VerbDeinit }
func (Title) Verb() Verb            { return VerbTitle }
func (Users) Verb() Verb            { return VerbUsers }
func (Join) Verb() Verb             { return VerbJoin }
func (Leave) Verb() Verb            { return VerbLeave }
func (Name) Verb() Verb             { return VerbName }
func (Chat) Verb() Verb             { return VerbChat }
func (ChatTimestamped) Verb() Verb  { return VerbChatTimestamped }
func (Timestamp) Verb() Verb        { return VerbTimestamp }
func (Battle) Verb() Verb           { return VerbBattle }
func (Notify) Verb() Verb           { return VerbNotify }
func (HTML) Verb() Verb             { return VerbHTML }
func (UHTML) Verb() Verb            { return VerbUHTML }
func (UHTMLChange) Verb() Verb      { return VerbUHTMLChange }
func (RawHTML) Verb() Verb          { return VerbRawHTML }
func (Error) Verb() Verb            { return VerbError }
func (BigError) Verb() Verb         { return VerbBigError }
