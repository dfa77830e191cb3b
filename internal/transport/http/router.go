package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iamasit07/4-in-a-row/engine/internal/transport/http/middleware"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Moves            MoveService
	Issuer           *auth.TokenIssuer
	Clients          auth.Clients
	OpenRegistration bool
	SecureCookies    bool
	AllowedOrigins   []string
	// Optional.
	Standings StandingsStore
	Checks    map[string]HealthCheck
	WebSocket gin.HandlerFunc
	Logger    *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.ErrorHandler(logger))

	moveHandler := NewMoveHandler(cfg.Moves)
	tokenHandler := NewTokenHandler(cfg.Issuer, cfg.Clients, cfg.OpenRegistration, cfg.SecureCookies)
	healthHandler := NewHealthHandler(cfg.Checks)

	router.GET("/healthz", healthHandler.GetHealth)

	api := router.Group("/api")
	{
		api.GET("/profiles", moveHandler.ListProfiles)
		api.POST("/token", tokenHandler.Issue)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.Issuer))
	{
		protected.POST("/move", moveHandler.ChooseMove)
		if cfg.Standings != nil {
			protected.GET("/standings", NewStandingsHandler(cfg.Standings).GetStandings)
		}
	}

	// auth handled inside the WebSocket handler itself
	if cfg.WebSocket != nil {
		router.GET("/ws", cfg.WebSocket)
	}

	return router
}
