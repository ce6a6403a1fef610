package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals stop both listeners and trigger a graceful shutdown.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// WithSignal derives a context that is canceled on the first shutdown signal.
// The returned stop function restores default signal handling.
func WithSignal(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
