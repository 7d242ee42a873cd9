package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
)

// handleGetConfig returns the current configuration. Certificate paths are
// reported but key material never leaves the host.
func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"server":  s.cfg.GetServer(),
		"api":     s.cfg.GetAPI(),
		"mqtt":    s.cfg.GetMQTT(),
		"storage": s.cfg.GetStorage(),
		"logging": s.cfg.GetLogging(),
	})
}

type setRoomsRequest struct {
	Rooms []string `json:"rooms" binding:"required"`
}

// handleSetRooms replaces the list of rooms joined on connect.
func (s *Server) handleSetRooms(c *gin.Context) {
	var req setRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	server := s.cfg.GetServer()
	server.Rooms = req.Rooms

	candidate := config.DefaultConfig()
	candidate.Server = server
	var problems []string
	for _, e := range config.Validate(candidate).Errors {
		if strings.HasPrefix(e.Field, "server.") {
			problems = append(problems, e.Error())
		}
	}
	if len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rooms", "details": problems})
		return
	}

	s.cfg.SetServer(server)
	if err := s.cfg.Save(); err != nil {
		s.logger.Error().Err(err).Msg("failed to save config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
		return
	}

	s.eventBus.Emit(c.Request.Context(), events.Event{
		Type:    events.EventConfigChanged,
		Source:  "api",
		Payload: events.ConfigChangedPayload{Section: "server"},
	})

	s.logger.Info().Strs("rooms", server.Rooms).Msg("API: rooms updated")
	c.JSON(http.StatusOK, gin.H{
		"status": "updated",
		"rooms":  server.Rooms,
	})
}
