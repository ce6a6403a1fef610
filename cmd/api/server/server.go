package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"golang.org/x/sync/errgroup"

	"users-api/cmd/api/di"
	"users-api/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config    *config.Config
	Logger    *zap.Logger
	Container *di.Container
	GRPC      *grpc.Server
	Gin       *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config:    cfg,
		Logger:    l,
		Container: c,
		GRPC:      SetupGRPC(c.Admin, c.RateLimiter, l),
		Gin:       SetupGinServer(c, httpAddress(cfg), l),
	}
}

// Start starts both the gRPC admin server and the REST API server.
// It returns when either server stops.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC address: %w", err)
	}
	httpLis, err := lc.Listen(ctx, "tcp", httpAddress(s.Config))
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to listen on HTTP address: %w", err)
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil {
			return fmt.Errorf("failed to start gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.Logger.Info("REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start REST API: %w", err)
		}
		return nil
	})

	s.Container.Admin.SetServing(true)
	return g.Wait()
}

// Shutdown flips health to NOT_SERVING, then drains the REST and gRPC servers
func (s *Server) Shutdown(ctx context.Context) error {
	s.Container.Admin.Shutdown()

	var errs []error
	if s.Gin != nil {
		s.Logger.Info("shutting down REST API...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("grpc shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

// grpcAddress returns the gRPC server address
func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
