package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/protocol"
	"github.com/energizer-project/showtrack/internal/query"
	"github.com/energizer-project/showtrack/internal/store"
	"github.com/energizer-project/showtrack/internal/tracker"
)

const (
	defaultResultLimit = 20
	maxResultLimit     = 200
)

func (s *Server) handleListBattles(c *gin.Context) {
	rooms := s.sessions.Rooms()
	c.JSON(http.StatusOK, gin.H{
		"battles": rooms,
		"total":   len(rooms),
	})
}

// snapshot loads the room named in the path or writes a 404.
func (s *Server) snapshot(c *gin.Context) (*tracker.Battle, bool) {
	snap, ok := s.sessions.Snapshot(c.Param("room"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "battle not found", "room": c.Param("room")})
		return nil, false
	}
	return snap, true
}

func (s *Server) handleGetBattle(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleGetSide(c *gin.Context) {
	seat, ok := dex.ParseSeat(c.Param("seat"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat"})
		return
	}
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	side := snap.Side(seat)
	if side == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "side not seen yet", "seat": seat})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"side":           side,
		"alive":          side.AliveCount(),
		"fainted":        side.FaintedCount(),
		"has_hazards":    side.HasHazards(),
		"has_screens":    side.HasScreens(),
		"is_perspective": snap.Perspective != nil && *snap.Perspective == seat,
	})
}

type attackerResult struct {
	Type       dex.Type `json:"type"`
	Multiplier float64  `json:"multiplier"`
}

// handleMatchup evaluates attacking types against a defender. The defender
// is either a board position such as "p2a" or an explicit type list.
func (s *Server) handleMatchup(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}

	defenderParam := c.Query("defender")
	if defenderParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "defender is required"})
		return
	}

	var (
		defender []dex.Type
		name     string
	)
	if ref, err := protocol.ParsePokemonRef(defenderParam); err == nil {
		side := snap.Side(ref.Seat)
		var p *tracker.Pokemon
		if side != nil {
			p = side.At(ref.SlotIndex())
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active pokemon at position", "defender": defenderParam})
			return
		}
		defender = p.Types()
		name = p.Name()
	} else {
		types, err := query.ParseTypes(defenderParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defender = types
	}
	if len(defender) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "defender types are unknown"})
		return
	}

	attackers, err := query.ParseTypes(c.Query("attacker"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := make([]attackerResult, 0, len(attackers))
	for _, t := range attackers {
		results = append(results, attackerResult{Type: t, Multiplier: dex.EffectivenessAgainst(t, defender)})
	}

	c.JSON(http.StatusOK, gin.H{
		"defender":    name,
		"profile":     query.Profile(defender),
		"attackers":   results,
		"weak_to_any": query.IsWeakToAny(defender, attackers),
		"resists_all": query.ResistsAll(defender, attackers),
	})
}

// handleTypeEffectiveness looks up one attacking type against one or two
// defending types, "Water,Ground" or "Water/Ground".
func (s *Server) handleTypeEffectiveness(c *gin.Context) {
	attacker, ok := dex.ParseType(c.Param("attacker"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown attacking type"})
		return
	}
	defender, err := query.ParseTypes(c.Param("defender"))
	if err != nil || len(defender) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown defending type"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attacker":   attacker,
		"defender":   defender,
		"multiplier": dex.EffectivenessAgainst(attacker, defender),
	})
}

// requireStore writes a 503 when the archive is disabled.
func (s *Server) requireStore(c *gin.Context) bool {
	if s.results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage is disabled"})
		return false
	}
	return true
}

func (s *Server) handleGetLog(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	room := c.Param("room")
	lines, err := s.results.Log(c.Request.Context(), room)
	if err != nil {
		s.logger.Error().Err(err).Str("room", room).Msg("failed to read battle log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read battle log"})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no log archived", "room": room})
		return
	}

	if c.Query("format") == "text" {
		body := make([]byte, 0, len(lines)*32)
		for _, line := range lines {
			body = append(body, line...)
			body = append(body, '\n')
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "lines": lines, "count": len(lines)})
}

func (s *Server) handleRecentResults(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultResultLimit)))
	if err != nil || limit < 1 {
		limit = defaultResultLimit
	}
	if limit > maxResultLimit {
		limit = maxResultLimit
	}

	results, err := s.results.RecentResults(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

func (s *Server) handleGetResult(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	room := c.Param("room")
	result, err := s.results.Result(c.Request.Context(), room)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found", "room": room})
	case err != nil:
		s.logger.Error().Err(err).Str("room", room).Msg("failed to read result")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read result"})
	default:
		c.JSON(http.StatusOK, result)
	}
}
