package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/session"
	"github.com/energizer-project/showtrack/internal/store"
	"github.com/energizer-project/showtrack/internal/util"
)

// ResultStore is the archive the API reads finished battles from.
type ResultStore interface {
	Result(ctx context.Context, room string) (*store.Result, error)
	RecentResults(ctx context.Context, limit int) ([]store.Result, error)
	Log(ctx context.Context, room string) ([]string, error)
}

// Server is the read-only query API over the live trackers and the
// battle archive.
type Server struct {
	cfg      *config.Config
	eventBus *events.EventBus
	sessions *session.Manager
	results  ResultStore
	logger   zerolog.Logger

	httpServer *http.Server
	router     *gin.Engine
}

// NewServer creates a new API server. results may be nil when storage is
// disabled.
func NewServer(cfg *config.Config, eventBus *events.EventBus, sessions *session.Manager, results ResultStore) *Server {
	if cfg.GetLogging().Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		eventBus: eventBus,
		sessions: sessions,
		results:  results,
		logger:   util.ComponentLogger("api"),
	}
	s.router = s.buildRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.GetAPI().Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	lc := listenConfig()
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("API server error: %w", err)
	}

	s.logger.Info().Str("addr", addr).Msg("REST API server starting")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("API shutdown")
		}
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

// buildRouter creates the Gin router with all routes and middleware.
func (s *Server) buildRouter() *gin.Engine {
	apiCfg := s.cfg.GetAPI()
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.logger))
	router.Use(SecurityHeaders())

	allowedOrigins := apiCfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	rateLimiter := NewRateLimiter(apiCfg.RateLimitRPS)
	router.Use(rateLimiter.Middleware())

	public := router.Group("/api/public")
	{
		public.GET("/ping", s.handlePing)
		public.GET("/system", s.handleGetSystem)
	}

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/battles", s.handleListBattles)
		apiGroup.GET("/battles/:room", s.handleGetBattle)
		apiGroup.GET("/battles/:room/sides/:seat", s.handleGetSide)
		apiGroup.GET("/battles/:room/matchup", s.handleMatchup)
		apiGroup.GET("/battles/:room/log", s.handleGetLog)
		apiGroup.GET("/results", s.handleRecentResults)
		apiGroup.GET("/results/:room", s.handleGetResult)
		apiGroup.GET("/types/:attacker/:defender", s.handleTypeEffectiveness)
	}

	monitor := router.Group("/api/monitor")
	{
		monitor.GET("/cpu", s.handleGetCPUUsage)
		monitor.GET("/memory", s.handleGetMemoryUsage)
		monitor.GET("/process", s.handleGetProcess)
		monitor.GET("/logs", s.handleGetLogEntries)
	}

	configure := router.Group("/api/config")
	{
		configure.GET("", s.handleGetConfig)
		configure.POST("/rooms", s.handleSetRooms)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "showtrack API is running"})
	})

	return router
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
