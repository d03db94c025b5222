package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether one dependency is usable. Required checks failing
// turn /ready into 503; optional ones are only reported.
type Check struct {
	Name     string
	Required bool
	Probe    func(ctx context.Context) bool
}

// RegisterHealth mounts /health (liveness) and /ready (dependency readiness).
func RegisterHealth(r gin.IRouter, started time.Time, checks ...Check) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(checks))
		for _, ch := range checks {
			ok := ch.Probe(ctx)
			deps[ch.Name] = ok
			if !ok && ch.Required {
				ready = false
			}
		}
		body := gin.H{"deps": deps, "uptime": time.Since(started).Round(time.Second).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})
}
