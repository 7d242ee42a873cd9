package api

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/util"
)

const (
	defaultLogCount = 100
	maxLogCount     = 1000
)

func (s *Server) handleGetCPUUsage(c *gin.Context) {
	usage, err := util.GetCPUUsage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cpu_percent": usage})
}

func (s *Server) handleGetMemoryUsage(c *gin.Context) {
	mem, err := util.GetMemoryUsage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mem)
}

// handleGetProcess returns resource usage of this process.
func (s *Server) handleGetProcess(c *gin.Context) {
	stats, err := util.GetProcessStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// handleGetLogEntries tails today's log file. Query parameters: count
// (default 100, max 1000), level (minimum level), room and component
// (exact field matches).
func (s *Server) handleGetLogEntries(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(defaultLogCount)))
	if err != nil || count < 1 {
		count = defaultLogCount
	}
	count = min(count, maxLogCount)

	filter := logFilter{
		room:      c.Query("room"),
		component: c.Query("component"),
		minLevel:  zerolog.TraceLevel,
	}
	if lvl := c.Query("level"); lvl != "" {
		parsed, err := zerolog.ParseLevel(lvl)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid level %q", lvl)})
			return
		}
		filter.minLevel = parsed
	}

	path, err := latestLogFile(s.cfg.GetLogging().Directory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries := []logEntry{}
	if path != "" {
		if entries, err = tailLog(path, filter, count); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"file":    filepath.Base(path),
		"entries": entries,
		"count":   len(entries),
	})
}

type logEntry struct {
	Time      string                 `json:"time,omitempty"`
	Level     string                 `json:"level,omitempty"`
	Component string                 `json:"component,omitempty"`
	Room      string                 `json:"room,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

type logFilter struct {
	room      string
	component string
	minLevel  zerolog.Level
}

// match reports whether an entry passes the filter. Lines that are not
// JSON have no level or fields and only pass an empty filter.
func (f logFilter) match(e logEntry) bool {
	if f.room != "" && e.Room != f.room {
		return false
	}
	if f.component != "" && e.Component != f.component {
		return false
	}
	if f.minLevel > zerolog.TraceLevel {
		lvl, err := zerolog.ParseLevel(e.Level)
		if err != nil || e.Level == "" || lvl < f.minLevel {
			return false
		}
	}
	return true
}

// latestLogFile returns the newest showtrack_*.log in dir, "" if none.
// File names embed the date, so name order is age order.
func latestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "showtrack_*.log"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

// tailLog keeps the last count matching entries of a zerolog JSON file.
func tailLog(path string, filter logFilter, count int) ([]logEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	ring := make([]logEntry, 0, count)
	next := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry := parseLogLine(line)
		if !filter.match(entry) {
			continue
		}
		if len(ring) < count {
			ring = append(ring, entry)
			continue
		}
		ring[next] = entry
		next = (next + 1) % count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	// Rotate so the oldest entry comes first.
	return append(ring[next:], ring[:next]...), nil
}

// parseLogLine splits a zerolog JSON line into its well-known fields and
// the rest.
func parseLogLine(line string) logEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return logEntry{Message: line}
	}

	take := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		delete(raw, key)
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	entry := logEntry{
		Time:      take(zerolog.TimestampFieldName),
		Level:     take(zerolog.LevelFieldName),
		Message:   take(zerolog.MessageFieldName),
		Component: take("component"),
		Room:      take("room"),
	}
	delete(raw, "app")
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}
