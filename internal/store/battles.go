package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/tracker"
	"github.com/energizer-project/showtrack/internal/util"
)

// ErrNotFound is returned when a room has no stored result.
var ErrNotFound = errors.New("battle not found")

// Result is the stored outcome of one battle.
type Result struct {
	Room     string          `json:"room"`
	Tier     string          `json:"tier,omitempty"`
	Gen      int             `json:"gen"`
	GameType string          `json:"game_type"`
	Players  []string        `json:"players"`
	Turns    int             `json:"turns"`
	Winner   string          `json:"winner,omitempty"`
	Tie      bool            `json:"tie,omitempty"`
	EndedAt  time.Time       `json:"ended_at"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}

// BattleStore archives finished battles and the raw lines of every battle
// room.
type BattleStore struct {
	db     *Database
	logger zerolog.Logger
}

// NewBattleStore opens the database at dbPath and brings its schema up to
// date.
func NewBattleStore(dbPath string) (*BattleStore, error) {
	database, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	s := &BattleStore{db: database, logger: util.ComponentLogger("store")}
	if err := database.Migrate(context.Background(), battleSchema); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate battle database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *BattleStore) Close() error {
	return s.db.Close()
}

// RecordResult stores the outcome of a finished battle, replacing any
// earlier row for the room.
func (s *BattleStore) RecordResult(ctx context.Context, room string, snap *tracker.Battle, endedAt time.Time) error {
	if snap == nil {
		return fmt.Errorf("failed to record %s: no snapshot", room)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", room, err)
	}

	var players []string
	for _, side := range snap.SideList() {
		players = append(players, side.Name)
	}

	_, err = s.db.Exec(ctx, `
		INSERT OR REPLACE INTO battles
			(room_id, format, gen, game_type, players, turns, winner, tie, ended_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room, snap.Tier, snap.Generation, snap.GameType.String(), strings.Join(players, ","),
		snap.Turn, snap.Winner, boolToInt(snap.Tie), endedAt.UnixMilli(), string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to record result for %s: %w", room, err)
	}

	s.logger.Info().Str("room", room).Str("winner", snap.Winner).Int("turns", snap.Turn).Msg("battle recorded")
	return nil
}

// AppendLog adds lines to a room's log after the ones already stored.
func (s *BattleStore) AppendLog(ctx context.Context, room string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq), -1) + 1 FROM battle_log WHERE room_id = ?", room,
		).Scan(&next); err != nil {
			return fmt.Errorf("failed to read log position for %s: %w", room, err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO battle_log (room_id, seq, line) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare log insert: %w", err)
		}
		defer stmt.Close()

		for i, line := range lines {
			if _, err := stmt.ExecContext(ctx, room, next+i, line); err != nil {
				return fmt.Errorf("failed to append log for %s: %w", room, err)
			}
		}
		return nil
	})
}

// Log returns a room's stored lines in order.
func (s *BattleStore) Log(ctx context.Context, room string) ([]string, error) {
	rows, err := s.db.Query(ctx, "SELECT line FROM battle_log WHERE room_id = ? ORDER BY seq", room)
	if err != nil {
		return nil, fmt.Errorf("failed to read log for %s: %w", room, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const resultColumns = "room_id, format, gen, game_type, players, turns, winner, tie, ended_at, snapshot"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row scanner) (*Result, error) {
	var (
		r        Result
		players  string
		tie      int
		endedAt  int64
		snapshot string
	)
	if err := row.Scan(&r.Room, &r.Tier, &r.Gen, &r.GameType, &players, &r.Turns, &r.Winner, &tie, &endedAt, &snapshot); err != nil {
		return nil, err
	}
	if players != "" {
		r.Players = strings.Split(players, ",")
	}
	r.Tie = tie != 0
	r.EndedAt = time.UnixMilli(endedAt).UTC()
	if snapshot != "" {
		r.Snapshot = json.RawMessage(snapshot)
	}
	return &r, nil
}

// Result returns the stored outcome of one room.
func (s *BattleStore) Result(ctx context.Context, room string) (*Result, error) {
	r, err := scanResult(s.db.QueryRow(ctx, "SELECT "+resultColumns+" FROM battles WHERE room_id = ?", room))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, room)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result for %s: %w", room, err)
	}
	return r, nil
}

// RecentResults returns the latest outcomes, newest first, without their
// snapshots.
func (s *BattleStore) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, "SELECT "+resultColumns+" FROM battles ORDER BY ended_at DESC, room_id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		r.Snapshot = nil
		out = append(out, *r)
	}
	return out, rows.Err()
}

// PruneBefore deletes results that ended before cutoff together with
// their logs, and returns how many results were removed.
func (s *BattleStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var removed int64
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		ms := cutoff.UnixMilli()
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM battle_log WHERE room_id IN (SELECT room_id FROM battles WHERE ended_at < ?)", ms,
		); err != nil {
			return fmt.Errorf("failed to prune logs: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM battles WHERE ended_at < ?", ms)
		if err != nil {
			return fmt.Errorf("failed to prune results: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("archive pruned")
	}
	return int(removed), nil
}

// Subscribe archives finished battles and, when keepLog is set, every
// battle frame.
func (s *BattleStore) Subscribe(bus *events.EventBus, keepLog bool) {
	bus.Subscribe(events.EventBattleEnded, "store", func(ctx context.Context, e events.Event) error {
		p, ok := e.Payload.(events.BattleEndedPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", e.Payload)
		}
		return s.RecordResult(ctx, p.Room, p.Snapshot, p.EndedAt)
	})
	if keepLog {
		bus.Subscribe(events.EventFrame, "store", func(ctx context.Context, e events.Event) error {
			p, ok := e.Payload.(events.FramePayload)
			if !ok {
				return fmt.Errorf("unexpected payload %T", e.Payload)
			}
			return s.AppendLog(ctx, p.Room, p.Lines)
		})
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
