package server

import (
	"go.uber.org/zap"
	grpc "google.golang.org/grpc"

	grpcadapter "users-api/internal/adapter/grpc"
	"users-api/internal/adapter/grpc/middleware"
	"users-api/pkg/logger"
)

// SetupGRPC creates the admin gRPC server with health and reflection
func SetupGRPC(admin *grpcadapter.AdminServer, rateLimiter *middleware.RateLimiter, l *zap.Logger) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{logger.RequestIDInterceptor(l)}
	if rateLimiter != nil {
		interceptors = append(interceptors, rateLimiter.UnaryInterceptor())
	}

	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	admin.Register(grpcServer)

	return grpcServer
}
