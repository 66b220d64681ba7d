package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/handler"
	"github.com/stemsi/anonq-bot/internal/middleware"
	"github.com/stemsi/anonq-bot/internal/response"
	"github.com/stemsi/anonq-bot/internal/service"
)

// Handlers groups all HTTP handler instances for route setup.
type Handlers struct {
	Ops *handler.OpsHandler
	WS  *handler.WSHandler
}

// SetupRouter configures the ops HTTP surface. limiter may be nil.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	router.GET("/healthz", handlers.Ops.Health)

	// Everything below needs an ops token, so it only exists when signing is configured.
	if authService == nil || !authService.Enabled() {
		return router
	}

	// ─── Ops API ───────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireOpsJWT(authService))
	{
		api.GET("/stats", handlers.Ops.Stats)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireOpsJWT(authService))
	{
		wsGroup.GET("/events", handlers.WS.EventStream)
	}

	return router
}
