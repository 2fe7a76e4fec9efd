// Package server assembles the HTTP router from the configured services.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/workexp/workexp-api/handlers"
	"github.com/workexp/workexp-api/internal/config"
	experiencehandler "github.com/workexp/workexp-api/internal/experience/handler"
	experienceservice "github.com/workexp/workexp-api/internal/experience/service"
	"github.com/workexp/workexp-api/internal/export"
	exporthandler "github.com/workexp/workexp-api/internal/export/handler"
	projecthandler "github.com/workexp/workexp-api/internal/project/handler"
	projectservice "github.com/workexp/workexp-api/internal/project/service"
	"github.com/workexp/workexp-api/pkg/logger"
	"github.com/workexp/workexp-api/pkg/metrics"
	"github.com/workexp/workexp-api/pkg/middleware"
)

// Deps are the services the router mounts. Optional parts are nil when
// their backing store is not configured.
type Deps struct {
	Config      *config.Config
	Experiences experienceservice.Service
	Projects    projectservice.Service

	// Auth mounts /auth/* and /api/me. Nil when JWT_SECRET is unset.
	Auth     *handlers.AuthHandler
	Verifier middleware.Verifier
	Denylist middleware.Denylist

	// Redis backs the shared rate limiter when RATE_LIMIT_USE_REDIS is set.
	Redis    *redis.Client
	Exporter *export.Exporter
	Health   handlers.HealthDeps
	Metrics  http.Handler
}

// NewRouter builds the gin engine. Middleware order: request id, access log,
// recovery, request metrics, CORS. Token identification and rate limiting
// apply to /api and /auth.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(middleware.RequestID(), logger.GinMiddleware(), gin.Recovery(), metrics.GinMiddleware(), middleware.CORS(cfg.CORS.Whitelist))

	if d.Metrics == nil {
		d.Metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(d.Metrics))
	handlers.RegisterSwagger(r)
	handlers.RegisterHealth(r, d.Health)

	// identify first so the limiter keys signed-in clients by subject
	var apiMW []gin.HandlerFunc
	if d.Verifier != nil {
		apiMW = append(apiMW, middleware.IdentifyMiddleware(d.Verifier, d.Denylist))
	}
	apiMW = append(apiMW, rateLimit(cfg.RateLimit, d.Redis)...)
	api := r.Group("", apiMW...)

	var authMW gin.HandlerFunc
	if d.Verifier != nil {
		authMW = middleware.AuthMiddleware(d.Verifier, d.Denylist)
	}
	var writeMW []gin.HandlerFunc
	if cfg.JWT.AuthRequired {
		if authMW == nil {
			// no verifier: every write is rejected as unauthenticated
			authMW = middleware.AuthMiddleware(middleware.AnyVerifier(), d.Denylist)
		}
		writeMW = append(writeMW, authMW)
	}

	if d.Auth != nil {
		d.Auth.Register(api)
		if authMW != nil {
			api.GET("/api/me", authMW, d.Auth.Me)
		}
	} else {
		logger.Warn("auth routes not registered: JWT_SECRET is not set")
	}

	experiencehandler.RegisterExperienceRoutes(api, d.Experiences, writeMW...)
	projecthandler.RegisterProjectRoutes(api, d.Projects, writeMW...)
	if d.Exporter != nil {
		exporthandler.RegisterExportRoutes(api, d.Exporter, writeMW...)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return r
}

func rateLimit(cfg config.RateLimitConfig, client *redis.Client) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	if cfg.UseRedis && client != nil {
		return []gin.HandlerFunc{middleware.RedisRateLimitMiddleware(client, cfg.Max, cfg.Window)}
	}
	return []gin.HandlerFunc{middleware.RateLimitMiddleware(cfg.Max, cfg.Window)}
}
