// Package session keeps one battle tracker per room and feeds it the
// frames read from the server.
package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/protocol"
	"github.com/energizer-project/showtrack/internal/tracker"
	"github.com/energizer-project/showtrack/internal/util"
)

// battleRoomPrefix marks rooms that are known to be battles before their
// |init| line is seen.
const battleRoomPrefix = "battle-"

// RoomSummary is the listing entry for one tracked room.
type RoomSummary struct {
	Room      string    `json:"room"`
	Tier      string    `json:"tier,omitempty"`
	Players   []string  `json:"players"`
	Turn      int       `json:"turn"`
	Ended     bool      `json:"ended"`
	Winner    string    `json:"winner,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type room struct {
	battle    *tracker.Battle
	started   bool
	updatedAt time.Time
}

// Manager routes decoded frames to per-room trackers. Trackers are only
// touched under the manager lock, so readers may call Snapshot from any
// goroutine while frames are being applied.
type Manager struct {
	mu      sync.RWMutex
	rooms   map[string]*room
	decoder *protocol.Decoder
	bus     *events.EventBus
	now     func() time.Time
	logger  zerolog.Logger
}

// NewManager creates a manager. bus may be nil when nobody listens.
func NewManager(bus *events.EventBus) *Manager {
	return &Manager{
		rooms:   make(map[string]*room),
		decoder: protocol.NewDecoder(),
		bus:     bus,
		now:     time.Now,
		logger:  util.ComponentLogger("session"),
	}
}

// HandleFrame decodes one raw frame and applies it to its room's tracker.
// Frames for rooms that are not battles are decoded and reported but not
// tracked. The decoded frame is returned for callers that want the
// messages themselves.
func (m *Manager) HandleFrame(ctx context.Context, raw string) *protocol.Frame {
	frame := m.decoder.DecodeFrame(raw)
	roomID := frame.RoomID

	var pending []events.Event
	for _, de := range frame.Errors {
		pending = append(pending, events.Event{
			Type:   events.EventDecodeError,
			Source: "session",
			Payload: events.DecodeErrorPayload{
				Room:  roomID,
				Line:  de.Line,
				Verb:  de.Verb.String(),
				Text:  de.Text,
				Error: de.Err.Error(),
			},
		})
	}

	if isBattleFrame(roomID, frame) {
		pending = append(pending, m.applyFrame(roomID, frame)...)
		if m.bus != nil {
			payload := events.FramePayload{Room: roomID, Lines: frameLines(raw)}
			if err := m.bus.EmitSync(ctx, events.Event{Type: events.EventFrame, Source: "session", Payload: payload}); err != nil {
				m.logger.Warn().Err(err).Str("room", roomID).Msg("frame handler failed")
			}
		}
	}

	if m.bus != nil {
		for _, e := range pending {
			m.bus.Emit(ctx, e)
		}
	}
	return frame
}

// applyFrame runs every message through the room's tracker and returns the
// lifecycle events the frame produced.
func (m *Manager) applyFrame(roomID string, frame *protocol.Frame) []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.rooms[roomID]
	if r == nil {
		r = &room{
			battle: tracker.New().WithLogger(m.logger.With().Str("room", roomID).Logger()),
		}
		m.rooms[roomID] = r
		m.logger.Info().Str("room", roomID).Msg("tracking battle")
	}
	r.updatedAt = m.now()

	var out []events.Event
	closed := false
	for _, msg := range frame.Messages {
		b := r.battle
		wasEnded, turn := b.Ended, b.Turn

		switch v := msg.(type) {
		case protocol.Request:
			req, err := v.Parse()
			if err != nil {
				m.logger.Warn().Err(err).Str("room", roomID).Msg("bad request payload")
				continue
			}
			if err := b.ApplySnapshot(req); err != nil {
				m.logger.Warn().Err(err).Str("room", roomID).Msg("request snapshot rejected")
			}
			continue
		case protocol.Deinit:
			closed = true
			continue
		case protocol.Start:
			if !r.started {
				r.started = true
				out = append(out, events.Event{Type: events.EventBattleStarted, Source: "session", Payload: startedPayload(roomID, b)})
			}
		}

		b.Apply(msg)

		if b.Turn > turn {
			out = append(out, events.Event{Type: events.EventTurn, Source: "session", Payload: events.TurnPayload{Room: roomID, Turn: b.Turn}})
		}
		if b.Ended && !wasEnded {
			out = append(out, events.Event{
				Type:   events.EventBattleEnded,
				Source: "session",
				Payload: events.BattleEndedPayload{
					Room:     roomID,
					Winner:   b.Winner,
					Tie:      b.Tie,
					Turns:    b.Turn,
					EndedAt:  m.now(),
					Snapshot: b.Snapshot(),
				},
			})
		}
	}

	if closed {
		delete(m.rooms, roomID)
		m.logger.Info().Str("room", roomID).Msg("room closed")
		out = append(out, events.Event{Type: events.EventRoomClosed, Source: "session", Payload: events.RoomClosedPayload{Room: roomID}})
	}
	return out
}

func startedPayload(roomID string, b *tracker.Battle) events.BattleStartedPayload {
	p := events.BattleStartedPayload{Room: roomID, Tier: b.Tier, GameType: b.GameType.String()}
	for _, s := range b.SideList() {
		p.Players = append(p.Players, s.Name)
	}
	return p
}

// isBattleFrame reports whether a frame belongs to a battle room.
func isBattleFrame(roomID string, frame *protocol.Frame) bool {
	if strings.HasPrefix(roomID, battleRoomPrefix) {
		return true
	}
	for _, msg := range frame.Messages {
		if in, ok := msg.(protocol.Init); ok && in.RoomType == protocol.RoomBattle {
			return true
		}
	}
	return false
}

// frameLines returns the non-empty lines of a frame without its room line.
func frameLines(raw string) []string {
	var out []string
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || (i == 0 && strings.HasPrefix(line, ">")) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Snapshot returns a deep copy of a room's battle.
func (m *Manager) Snapshot(roomID string) (*tracker.Battle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, false
	}
	return r.battle.Snapshot(), true
}

// Rooms lists the tracked rooms, most recently updated first.
func (m *Manager) Rooms() []RoomSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RoomSummary, 0, len(m.rooms))
	for id, r := range m.rooms {
		s := RoomSummary{
			Room:      id,
			Tier:      r.battle.Tier,
			Turn:      r.battle.Turn,
			Ended:     r.battle.Ended,
			Winner:    r.battle.Winner,
			UpdatedAt: r.updatedAt,
		}
		for _, side := range r.battle.SideList() {
			s.Players = append(s.Players, side.Name)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Room < out[j].Room
	})
	return out
}

// Counts returns the number of tracked rooms and how many of them are
// battles still in progress.
func (m *Manager) Counts() (tracked, live int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		tracked++
		if !r.battle.Ended {
			live++
		}
	}
	return tracked, live
}

// SetPerspective fixes the observer's seat in a room, for spectators who
// want Me and Opponent answered before any request arrives.
func (m *Manager) SetPerspective(roomID string, seat dex.Seat) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if ok {
		r.battle.SetPerspective(seat)
	}
	return ok
}

// Forget drops a room's tracker.
func (m *Manager) Forget(ctx context.Context, roomID string) bool {
	m.mu.Lock()
	_, ok := m.rooms[roomID]
	delete(m.rooms, roomID)
	m.mu.Unlock()

	if ok && m.bus != nil {
		m.bus.Emit(ctx, events.Event{Type: events.EventRoomClosed, Source: "session", Payload: events.RoomClosedPayload{Room: roomID}})
	}
	return ok
}

// PruneEnded forgets finished battles last updated before cutoff and
// returns how many were dropped.
func (m *Manager) PruneEnded(ctx context.Context, cutoff time.Time) int {
	m.mu.RLock()
	var stale []string
	for id, r := range m.rooms {
		if r.battle.Ended && r.updatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.Forget(ctx, id)
	}
	return len(stale)
}
