package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/energizer-project/showtrack/internal/util"
)

// Version is reported by the ping endpoint.
const Version = "0.3.0"

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "showtrack",
		"version": Version,
	})
}

// handleGetSystem returns host information and the number of tracked rooms.
func (s *Server) handleGetSystem(c *gin.Context) {
	sysInfo := util.GetSystemInfo()
	c.JSON(http.StatusOK, gin.H{
		"system":        sysInfo,
		"tracked_rooms": len(s.sessions.Rooms()),
		"storage":       s.results != nil,
	})
}
