package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"users-api/internal/adapter/gin/handler"
	grpcmiddleware "users-api/internal/adapter/grpc/middleware"
	"users-api/internal/adapter/repository/memory"
	"users-api/internal/usecase/user"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
	mr     *miniredis.Miniredis
	client *redis.Client
	log    *zap.Logger
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.log = zaptest.NewLogger(s.T())
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})

	limiter := grpcmiddleware.NewRateLimiter(s.client, grpcmiddleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstCapacity:     3,
		Enabled:           true,
	}, s.log)

	h := handler.NewUserHandler(user.New(memory.NewUserRepository(), s.log), s.log)
	s.router = SetupRouter(h, limiter, map[string]Pinger{
		"redis": pingFunc(func(ctx context.Context) error { return s.client.Ping(ctx).Err() }),
	}, "users-api", s.log)
}

func (s *RouterSuite) TearDownTest() {
	_ = s.client.Close()
}

func (s *RouterSuite) serve(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealth() {
	w := s.serve(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("healthy", body["status"])
	s.Equal("users-api", body["service"])
	s.Equal(map[string]any{"redis": "ok"}, body["dependencies"])
}

func (s *RouterSuite) TestHealth_Unhealthy() {
	s.mr.Close()

	w := s.serve(http.MethodGet, "/health", "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "unhealthy")
}

func (s *RouterSuite) TestSwaggerDoc() {
	w := s.serve(http.MethodGet, "/swagger/doc.json", "")
	s.Equal(http.StatusOK, w.Code)

	var doc map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &doc))
	s.Equal("2.0", doc["swagger"])
	s.Contains(doc["paths"], "/api/users/{id}")
}

func (s *RouterSuite) TestUserRoutes() {
	w := s.serve(http.MethodPost, "/api/users", `{"login":"ivan","lastName":"Petrov"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	location := w.Header().Get("Location")
	s.True(strings.HasPrefix(location, "/api/users/"))
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	w = s.serve(http.MethodGet, location, "")
	s.Equal(http.StatusOK, w.Code)

	w = s.serve(http.MethodOptions, "/api/users", "")
	s.Equal("GET, POST, OPTIONS", w.Header().Get("Allow"))
}

func (s *RouterSuite) TestRateLimited() {
	for i := 0; i < 3; i++ {
		s.Equal(http.StatusOK, s.serve(http.MethodGet, "/api/users", "").Code)
	}
	s.Equal(http.StatusTooManyRequests, s.serve(http.MethodGet, "/api/users", "").Code)

	// Health is not rate limited
	s.Equal(http.StatusOK, s.serve(http.MethodGet, "/health", "").Code)
}

func (s *RouterSuite) TestRateLimiterFailsOpen() {
	s.mr.Close()
	for i := 0; i < 5; i++ {
		s.Equal(http.StatusOK, s.serve(http.MethodGet, "/api/users", "").Code)
	}
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

