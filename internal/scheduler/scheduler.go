// Package scheduler runs the periodic housekeeping tasks: forgetting
// finished rooms, pruning the archive, checking disk space and publishing
// a heartbeat.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/util"
)

const (
	roomPruneInterval = time.Minute
	// endedRoomTTL is how long a finished battle stays queryable in memory.
	endedRoomTTL      = 15 * time.Minute
	diskCheckInterval = 10 * time.Minute
	heartbeatInterval = time.Minute
)

// Rooms is the session registry as seen by the scheduler.
type Rooms interface {
	PruneEnded(ctx context.Context, cutoff time.Time) int
	Counts() (tracked, live int)
}

// Archive is the result store as seen by the scheduler.
type Archive interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Connection reports the transport state.
type Connection interface {
	State() events.ConnectionState
}

// Scheduler manages periodic background tasks. Archive and Connection
// may be nil.
type Scheduler struct {
	cfg      *config.Config
	eventBus *events.EventBus
	rooms    Rooms
	archive  Archive
	conn     Connection
	now      func() time.Time
	logger   zerolog.Logger
}

// NewScheduler creates a new task scheduler.
func NewScheduler(cfg *config.Config, eventBus *events.EventBus, rooms Rooms, archive Archive, conn Connection) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		eventBus: eventBus,
		rooms:    rooms,
		archive:  archive,
		conn:     conn,
		now:      time.Now,
		logger:   util.ComponentLogger("scheduler"),
	}
}

// Start runs every task until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	tasks := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context)
	}{
		{"prune_rooms", roomPruneInterval, s.pruneRooms},
		{"disk_utilization", diskCheckInterval, s.checkDiskUtilization},
		{"heartbeat", heartbeatInterval, s.heartbeat},
	}

	for _, task := range tasks {
		task := task // per-iteration copy (Go 1.22 loop semantics)
		go func() {
			ticker := time.NewTicker(task.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					task.fn(ctx)
				}
			}
		}()
	}

	if s.archive != nil && s.cfg.GetStorage().RetentionDays > 0 {
		go s.runArchiveCleanerLoop(ctx)
	}

	s.logger.Info().Int("tasks", len(tasks)).Msg("scheduler started")
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) pruneRooms(ctx context.Context) {
	if n := s.rooms.PruneEnded(ctx, s.now().Add(-endedRoomTTL)); n > 0 {
		s.logger.Debug().Int("forgotten", n).Msg("finished rooms pruned")
	}
}

// runArchiveCleanerLoop prunes the archive once a day at the configured time.
func (s *Scheduler) runArchiveCleanerLoop(ctx context.Context) {
	for {
		nextRun := nextRunAt(s.now(), s.cfg.GetStorage().CleanupTime)
		s.logger.Info().Time("next_run", nextRun).Msg("archive cleaner scheduled")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(nextRun)):
			s.cleanArchive(ctx)
		}
	}
}

func (s *Scheduler) cleanArchive(ctx context.Context) {
	days := s.cfg.GetStorage().RetentionDays
	if s.archive == nil || days <= 0 {
		return
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	removed, err := s.archive.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Warn().Err(err).Msg("archive cleaner failed")
		return
	}
	s.logger.Info().Int("removed", removed).Int("retention_days", days).Msg("archive cleaner completed")
}

// nextRunAt returns the next occurrence of "HH:MM" after now. An empty or
// malformed time means 04:00.
func nextRunAt(now time.Time, hhmm string) time.Time {
	hour, minute := 4, 0
	if t, err := time.Parse("15:04", hhmm); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// checkDiskUtilization warns when the filesystem holding the database
// fills up.
func (s *Scheduler) checkDiskUtilization(context.Context) {
	storage := s.cfg.GetStorage()
	if !storage.Enabled {
		return
	}
	usage, err := util.GetDiskUsage(filepath.Dir(storage.Path))
	if err != nil {
		s.logger.Warn().Err(err).Msg("disk utilization check failed")
		return
	}

	level := diskAlertLevel(usage.UsedPercent)
	if level == "" {
		s.logger.Debug().Float64("used_percent", usage.UsedPercent).Msg("disk utilization")
		return
	}
	s.logger.Warn().
		Str("level", level).
		Str("path", usage.Path).
		Msg(fmt.Sprintf("Disk usage at %.1f%% (%d GB free of %d GB total)", usage.UsedPercent, usage.Free, usage.Total))
}

// diskAlertLevel maps usage to the 80/90/95/100 percent thresholds.
func diskAlertLevel(usedPercent float64) string {
	switch {
	case usedPercent >= 100:
		return "critical"
	case usedPercent >= 95:
		return "error"
	case usedPercent >= 90:
		return "warning"
	case usedPercent >= 80:
		return "info"
	}
	return ""
}

func (s *Scheduler) heartbeat(ctx context.Context) {
	s.eventBus.Emit(ctx, events.Event{
		Type:    events.EventHeartbeat,
		Source:  "scheduler",
		Payload: s.buildHeartbeat(),
	})
}

func (s *Scheduler) buildHeartbeat() events.HeartbeatPayload {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	tracked, live := s.rooms.Counts()
	p := events.HeartbeatPayload{
		TrackedRooms: tracked,
		LiveBattles:  live,
		MemoryMB:     mem.Alloc / (1024 * 1024),
		Goroutines:   runtime.NumGoroutine(),
		Timestamp:    s.now().UTC(),
	}
	if s.conn != nil {
		p.Connection = s.conn.State()
	}
	return p
}
