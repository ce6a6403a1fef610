package grpc

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name the users service reports under in the health service
const ServiceName = "users.v1.Users"

// AdminServer exposes health checking and reflection on the gRPC port
type AdminServer struct {
	health *health.Server
	log    *zap.Logger
}

// NewAdminServer creates an admin server that starts out NOT_SERVING
func NewAdminServer(log *zap.Logger) *AdminServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &AdminServer{health: h, log: log}
}

// Register attaches the health and reflection services to s
func (a *AdminServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, a.health)
	reflection.Register(s)
}

// SetServing flips the users service and the overall server status
func (a *AdminServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	a.health.SetServingStatus(ServiceName, status)
	a.health.SetServingStatus("", status)
	a.log.Info("grpc health status changed", zap.String("service", ServiceName), zap.Stringer("status", status))
}

// Shutdown marks every service NOT_SERVING and ignores later updates
func (a *AdminServer) Shutdown() {
	a.health.Shutdown()
	a.log.Info("grpc health service shut down")
}
