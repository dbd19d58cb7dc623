package deploy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/audit"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/handlers"
	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/staticfiles"
)

// StaticCollector is the part of staticfiles.Collector the hook uses.
type StaticCollector interface {
	Collect(ctx context.Context) (staticfiles.Stats, error)
}

// Handler runs deployment tasks synchronously inside the request.
type Handler struct {
	migrations domain.MigrationRunner
	static     StaticCollector
	events     pubsub.Publisher
}

// NewHandler creates a new Handler.
func NewHandler(migrations domain.MigrationRunner, static StaticCollector, events pubsub.Publisher) *Handler {
	return &Handler{migrations: migrations, static: static, events: events}
}

// Migrate applies every pending migration and answers with the latest
// history row. Failures are returned unhandled; nothing is retried or rolled
// back. The run ignores client cancellation so a dropped connection cannot
// stop a migration half-way.
func (h *Handler) Migrate(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	log := middleware.FromContext(ctx)
	start := time.Now()
	log.Info("Deployment migrate started")

	applied, err := h.migrations.Migrate(ctx)
	if err != nil {
		return err
	}

	latest, err := h.migrations.Latest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		// Not a 404: an empty history after a run means nothing is registered.
		return fmt.Errorf("migration history is empty after migrating: %v", err)
	}
	if err != nil {
		return err
	}

	log.Info("Deployment migrate finished",
		"applied", len(applied),
		"app", latest.App,
		"name", latest.Name,
		"duration", time.Since(start),
	)
	audit.Emit(ctx, h.events, audit.MigrationsAppliedEvent, "", audit.MigrationsApplied{
		Applied: len(applied),
		App:     latest.App,
		Name:    latest.Name,
	})
	return c.JSON(http.StatusOK, handlers.NewMigrationResponse(latest))
}

// CollectStatic gathers static assets into STATIC_ROOT.
func (h *Handler) CollectStatic(c echo.Context) error {
	ctx := c.Request().Context()
	log := middleware.FromContext(ctx)
	start := time.Now()
	log.Info("Deployment collectstatic started")

	stats, err := h.static.Collect(ctx)
	if err != nil {
		return err
	}

	log.Info("Deployment collectstatic finished",
		"copied", stats.Copied,
		"unmodified", stats.Unmodified,
		"duration", time.Since(start),
	)
	audit.Emit(ctx, h.events, audit.StaticCollectedEvent, "", audit.StaticCollected{
		Copied:     stats.Copied,
		Unmodified: stats.Unmodified,
	})
	return c.NoContent(http.StatusOK)
}
