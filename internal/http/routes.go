package http

import (
	"os"
	"strconv"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/http/handlers"
	"github.com/t9fiction/Solana-Task-Manager/internal/http/middleware"
	"github.com/t9fiction/Solana-Task-Manager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the REST surface, probes, metrics and the event
// stream on the given engine.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub) {
	// read limits from env, with safe defaults
	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	// Ledger writes are slower and costlier than reads, so mutations get
	// their own per-wallet budget.
	writeRateLimit := 20
	if v := os.Getenv("WRITE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			writeRateLimit = n
		}
	}
	writeRateWindow := time.Minute
	if v := os.Getenv("WRITE_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			writeRateWindow = time.Duration(n) * time.Second
		}
	}

	r.Use(middleware.RequestID())

	// Health checks and metrics (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	auth := v1.Group("/auth")
	auth.Use(middleware.RedisRateLimit(authRateLimit, authRateWindow))
	auth.POST("/challenge", h.AuthChallenge)
	auth.POST("/verify", h.AuthVerify)

	// Per-wallet write limiter
	writeRL := middleware.WalletRateLimit(writeRateLimit, writeRateWindow)

	// Tasks
	v1.GET("/tasks", h.ListTasks)
	v1.GET("/tasks/:address", h.GetTask)
	v1.POST("/tasks", middleware.JWT(), writeRL, h.CreateTask)
	v1.PUT("/tasks/:address", middleware.JWT(), writeRL, h.UpdateTask)
	v1.PATCH("/tasks/:address/complete", middleware.JWT(), writeRL, h.CompleteTask)
	v1.DELETE("/tasks/:address", middleware.JWT(), writeRL, h.DeleteTask)

	// WebSocket event stream
	r.GET("/ws", h.WS(hub))
}
