package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/protocol"
	"github.com/energizer-project/showtrack/internal/tracker"
)

func openStore(t *testing.T) *BattleStore {
	t.Helper()
	s, err := NewBattleStore(filepath.Join(t.TempDir(), "db", "showtrack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func finishedBattle(t *testing.T, winner string) *tracker.Battle {
	t.Helper()
	b := tracker.New()
	frame := protocol.NewDecoder().DecodeFrame(strings.Join([]string{
		"|player|p1|Alice|",
		"|player|p2|Bob|",
		"|gametype|singles",
		"|tier|[Gen 9] OU",
		"|switch|p1a: Pikachu|Pikachu, L50|100/100",
		"|turn|4",
		"|win|" + winner,
	}, "\n"))
	if err := frame.Err(); err != nil {
		t.Fatal(err)
	}
	b.ApplyFrame(frame)
	return b
}

func TestRecordAndReadResult(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	ended := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.RecordResult(ctx, "battle-gen9ou-1", finishedBattle(t, "Alice"), ended); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	r, err := s.Result(ctx, "battle-gen9ou-1")
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if r.Winner != "Alice" || r.Turns != 4 || r.Tier != "[Gen 9] OU" || r.GameType != "singles" {
		t.Errorf("result = %+v", r)
	}
	if len(r.Players) != 2 || r.Players[1] != "Bob" {
		t.Errorf("players = %v", r.Players)
	}
	if !r.EndedAt.Equal(ended) {
		t.Errorf("ended at = %v", r.EndedAt)
	}
	if !strings.Contains(string(r.Snapshot), `"Pikachu"`) {
		t.Errorf("snapshot = %s", r.Snapshot)
	}

	if _, err := s.Result(ctx, "battle-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing room err = %v", err)
	}
}

func TestRecentResultsNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, room := range []string{"battle-a", "battle-b", "battle-c"} {
		if err := s.RecordResult(ctx, room, finishedBattle(t, "Alice"), base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentResults(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Room != "battle-c" || got[1].Room != "battle-b" {
		t.Errorf("results = %+v", got)
	}
	if got[0].Snapshot != nil {
		t.Error("listings should not carry snapshots")
	}
}

func TestAppendLogKeepsOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.AppendLog(ctx, "battle-x", []string{"|init|battle", "|turn|1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLog(ctx, "battle-x", []string{"|turn|2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLog(ctx, "battle-y", []string{"|turn|9"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLog(ctx, "battle-x", nil); err != nil {
		t.Fatal(err)
	}

	lines, err := s.Log(ctx, "battle-x")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(lines, ";") != "|init|battle;|turn|1;|turn|2" {
		t.Errorf("lines = %v", lines)
	}
}

func TestSubscribeArchivesEvents(t *testing.T) {
	s := openStore(t)
	bus := events.NewEventBus()
	s.Subscribe(bus, true)
	ctx := context.Background()

	if err := bus.EmitSync(ctx, events.Event{Type: events.EventFrame, Payload: events.FramePayload{Room: "battle-z", Lines: []string{"|turn|1"}}}); err != nil {
		t.Fatal(err)
	}
	err := bus.EmitSync(ctx, events.Event{Type: events.EventBattleEnded, Payload: events.BattleEndedPayload{
		Room:     "battle-z",
		Winner:   "Bob",
		EndedAt:  time.Now(),
		Snapshot: finishedBattle(t, "Bob"),
	}})
	if err != nil {
		t.Fatal(err)
	}
	bus.Stop()

	if r, err := s.Result(ctx, "battle-z"); err != nil || r.Winner != "Bob" {
		t.Errorf("result = %+v, %v", r, err)
	}
	if lines, _ := s.Log(ctx, "battle-z"); len(lines) != 1 {
		t.Errorf("lines = %v", lines)
	}
}

func TestPruneBefore(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := s.RecordResult(ctx, "battle-old", finishedBattle(t, "Alice"), old); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLog(ctx, "battle-old", []string{"|win|Alice"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordResult(ctx, "battle-new", finishedBattle(t, "Bob"), recent); err != nil {
		t.Fatal(err)
	}

	removed, err := s.PruneBefore(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d", removed)
	}
	if _, err := s.Result(ctx, "battle-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old result err = %v", err)
	}
	if lines, _ := s.Log(ctx, "battle-old"); len(lines) != 0 {
		t.Errorf("old log kept: %v", lines)
	}
	if _, err := s.Result(ctx, "battle-new"); err != nil {
		t.Errorf("recent result: %v", err)
	}
}
