package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"users-api/api"
	"users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	grpcmiddleware "users-api/internal/adapter/grpc/middleware"
)

// healthTimeout bounds each dependency check on /health
const healthTimeout = 2 * time.Second

// Pinger is a dependency whose liveness /health reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// checks maps a dependency name to its liveness probe.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	checks map[string]Pinger,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	router.GET("/health", health(checks, serviceName))

	router.GET("/swagger/*any", swagger())

	users := router.Group(handler.UsersPath)
	users.Use(middleware.RateLimiter(rateLimiter))
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.OPTIONS("", userHandler.Options)
		users.GET("/:id", userHandler.GetUser)
		users.HEAD("/:id", userHandler.HeadUser)
		users.PUT("/:id", userHandler.ReplaceUser)
		users.PATCH("/:id", userHandler.PatchUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}

// swagger serves the embedded OpenAPI document and the Swagger UI around it
func swagger() gin.HandlerFunc {
	ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", api.SwaggerJSON)
			return
		}
		ui(c)
	}
}

func health(checks map[string]Pinger, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		deps := make(map[string]string, len(checks))

		for name, p := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			err := p.Ping(ctx)
			cancel()

			if err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":       state,
			"service":      serviceName,
			"dependencies": deps,
		})
	}
}
