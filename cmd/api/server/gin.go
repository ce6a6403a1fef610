package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-api/cmd/api/di"
	ginrouter "users-api/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, addr string, l *zap.Logger) *http.Server {
	if c.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(c.GinHandler, c.RateLimiter, c.HealthChecks, c.Config.Logger.ServiceName, l)

	l.Info("Gin REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
