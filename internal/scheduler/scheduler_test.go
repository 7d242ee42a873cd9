package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
)

type fakeRooms struct {
	cutoff time.Time
	pruned int
}

func (f *fakeRooms) PruneEnded(_ context.Context, cutoff time.Time) int {
	f.cutoff = cutoff
	return f.pruned
}

func (f *fakeRooms) Counts() (int, int) { return 3, 1 }

type fakeArchive struct {
	cutoff time.Time
	calls  int
}

func (f *fakeArchive) PruneBefore(_ context.Context, cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	f.calls++
	return 2, nil
}

type fixedConn struct{}

func (fixedConn) State() events.ConnectionState { return events.ConnectionOpen }

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler(rooms Rooms, archive Archive) *Scheduler {
	s := NewScheduler(config.DefaultConfig(), events.NewEventBus(), rooms, archive, fixedConn{})
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestPruneRoomsUsesTTL(t *testing.T) {
	rooms := &fakeRooms{pruned: 1}
	s := newTestScheduler(rooms, nil)
	s.pruneRooms(context.Background())
	if want := fixedNow.Add(-endedRoomTTL); !rooms.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", rooms.cutoff, want)
	}
}

func TestCleanArchiveUsesRetention(t *testing.T) {
	archive := &fakeArchive{}
	s := newTestScheduler(&fakeRooms{}, archive)
	s.cleanArchive(context.Background())
	if want := fixedNow.AddDate(0, 0, -30); !archive.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", archive.cutoff, want)
	}

	storage := s.cfg.GetStorage()
	storage.RetentionDays = 0
	s.cfg.SetStorage(storage)
	s.cleanArchive(context.Background())
	if archive.calls != 1 {
		t.Errorf("retention 0 should keep everything, calls = %d", archive.calls)
	}
}

func TestNextRunAt(t *testing.T) {
	cases := []struct {
		hhmm string
		want time.Time
	}{
		{"13:30", time.Date(2024, 6, 1, 13, 30, 0, 0, time.UTC)},
		{"04:00", time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC)},
		{"12:00", time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)},
		{"", time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC)},
		{"bogus", time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := nextRunAt(fixedNow, tc.hhmm); !got.Equal(tc.want) {
			t.Errorf("nextRunAt(%q) = %v, want %v", tc.hhmm, got, tc.want)
		}
	}
}

func TestDiskAlertLevel(t *testing.T) {
	cases := map[float64]string{50: "", 80: "info", 91: "warning", 96: "error", 100: "critical"}
	for used, want := range cases {
		if got := diskAlertLevel(used); got != want {
			t.Errorf("diskAlertLevel(%v) = %q, want %q", used, got, want)
		}
	}
}

func TestHeartbeat(t *testing.T) {
	s := newTestScheduler(&fakeRooms{}, nil)
	got := make(chan events.HeartbeatPayload, 1)
	s.eventBus.Subscribe(events.EventHeartbeat, "test", func(_ context.Context, e events.Event) error {
		got <- e.Payload.(events.HeartbeatPayload)
		return nil
	})
	defer s.eventBus.Stop()

	s.heartbeat(context.Background())
	select {
	case p := <-got:
		if p.TrackedRooms != 3 || p.LiveBattles != 1 || p.Connection != events.ConnectionOpen || !p.Timestamp.Equal(fixedNow) {
			t.Errorf("heartbeat = %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat not emitted")
	}
}
