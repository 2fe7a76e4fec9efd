package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DB states reported by /health.
const (
	DBConnected    = "connected"
	DBDisconnected = "disconnected"
	DBMemory       = "memory"
)

// Check tests one dependency; nil means healthy.
type Check func(ctx context.Context) error

// HealthDeps describes what /health and /ready check. A nil DB check means
// the service runs on in-memory storage.
type HealthDeps struct {
	DB      Check
	Checks  map[string]Check
	Started time.Time
	Timeout time.Duration
}

// RegisterHealth mounts /health (liveness with database state) and /ready.
func RegisterHealth(r gin.IRouter, deps HealthDeps) {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "db": dbState(c.Request.Context(), deps)})
	})

	// readiness: 200 only when every configured dependency answers
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		out := map[string]bool{}
		if deps.DB != nil {
			out["mongodb"] = dbState(c.Request.Context(), deps) == DBConnected
			ready = ready && out["mongodb"]
		}
		for name, check := range deps.Checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), deps.Timeout)
			out[name] = check(ctx) == nil
			cancel()
			ready = ready && out[name]
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": out, "uptime": time.Since(deps.Started).Round(time.Second).String()})
	})
}

func dbState(ctx context.Context, deps HealthDeps) string {
	if deps.DB == nil {
		return DBMemory
	}
	ctx, cancel := context.WithTimeout(ctx, deps.Timeout)
	defer cancel()
	if err := deps.DB(ctx); err != nil {
		return DBDisconnected
	}
	return DBConnected
}
