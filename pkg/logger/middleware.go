package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDMetadataKey is the gRPC metadata key clients may use to pass a request ID
const RequestIDMetadataKey = "x-request-id"

// RequestIDInterceptor is a gRPC interceptor that adds a request ID to the context,
// reusing the caller's x-request-id metadata when present
func RequestIDInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDMetadataKey); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx = WithRequestID(ctx, requestID)
		resp, err := handler(ctx, req)

		l := WithContext(ctx, log).With(zap.String("method", info.FullMethod))
		if err != nil {
			l.Warn("grpc request failed", zap.Error(err))
		} else {
			l.Debug("grpc request")
		}
		return resp, err
	}
}
