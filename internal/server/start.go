package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully
// within SHUTDOWN_TIMEOUT.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Cfg.GetShutdownTimeout())
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
