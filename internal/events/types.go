// Package events defines the event types and payloads passed between
// showtrack components.
package events

import (
	"time"

	"github.com/energizer-project/showtrack/internal/tracker"
)

// EventType represents the type of event emitted through the EventBus.
type EventType string

const (
	// Battle lifecycle
	EventBattleStarted EventType = "battle_started"
	EventTurn          EventType = "battle_turn"
	EventBattleEnded   EventType = "battle_ended"
	EventRoomClosed    EventType = "room_closed"

	// Wire
	EventFrame       EventType = "frame_received"
	EventDecodeError EventType = "decode_error"

	// Transport
	EventConnection EventType = "connection_state"

	// System
	EventHeartbeat     EventType = "heartbeat"
	EventConfigChanged EventType = "config_changed"
	EventShutdown      EventType = "shutdown"
)

// ConnectionState is the state of the server connection.
type ConnectionState int

const (
	ConnectionIdle ConnectionState = iota
	ConnectionDialing
	ConnectionOpen
	ConnectionLost
	ConnectionClosed
)

var connectionStateStrings = map[ConnectionState]string{
	ConnectionIdle:    "idle",
	ConnectionDialing: "dialing",
	ConnectionOpen:    "open",
	ConnectionLost:    "lost",
	ConnectionClosed:  "closed",
}

// String returns the string representation of ConnectionState.
func (s ConnectionState) String() string {
	if str, ok := connectionStateStrings[s]; ok {
		return str
	}
	return "idle"
}

// MarshalJSON serializes ConnectionState as a JSON string (e.g. "open").
func (s ConnectionState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Event represents a single event in the system.
type Event struct {
	Type    EventType
	Source  string
	Payload interface{}
}

// BattleStartedPayload is emitted on the first |start| of a room.
type BattleStartedPayload struct {
	Room     string   `json:"room"`
	Tier     string   `json:"tier,omitempty"`
	GameType string   `json:"game_type"`
	Players  []string `json:"players"`
}

// TurnPayload is emitted when a room reaches a new turn.
type TurnPayload struct {
	Room string `json:"room"`
	Turn int    `json:"turn"`
}

// BattleEndedPayload carries the final state of a finished battle.
type BattleEndedPayload struct {
	Room     string          `json:"room"`
	Winner   string          `json:"winner,omitempty"`
	Tie      bool            `json:"tie,omitempty"`
	Turns    int             `json:"turns"`
	EndedAt  time.Time       `json:"ended_at"`
	Snapshot *tracker.Battle `json:"-"`
}

// RoomClosedPayload is emitted when a room is deinitialized or forgotten.
type RoomClosedPayload struct {
	Room string `json:"room"`
}

// FramePayload is a raw frame as received, split into its lines.
type FramePayload struct {
	Room  string   `json:"room"`
	Lines []string `json:"lines"`
}

// DecodeErrorPayload describes one line that failed to decode.
type DecodeErrorPayload struct {
	Room  string `json:"room"`
	Line  int    `json:"line"`
	Verb  string `json:"verb"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

// ConnectionPayload reports a transport state change.
type ConnectionPayload struct {
	State ConnectionState `json:"state"`
	URL   string          `json:"url"`
	Error string          `json:"error,omitempty"`
}

// ConfigChangedPayload is emitted when configuration changes occur.
type ConfigChangedPayload struct {
	Section string
}

// HeartbeatPayload is the periodic status summary.
type HeartbeatPayload struct {
	TrackedRooms int             `json:"tracked_rooms"`
	LiveBattles  int             `json:"live_battles"`
	Connection   ConnectionState `json:"connection"`
	MemoryMB     uint64          `json:"memory_mb"`
	Goroutines   int             `json:"goroutines"`
	Timestamp    time.Time       `json:"timestamp"`
}
