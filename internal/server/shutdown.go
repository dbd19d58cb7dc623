package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context cancelled on an interrupt or terminate signal.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Shutdown stops accepting requests, waits for in-flight ones, shuts the
// modules down in reverse boot order and closes the event bus.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down server")
	errs := []error{s.E.Shutdown(ctx)}
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.bus.Close())
	return errors.Join(errs...)
}
