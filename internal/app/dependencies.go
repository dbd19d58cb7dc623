package app

import (
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/registry"
	"github.com/nfrund/quay/internal/rendering"
	"github.com/nfrund/quay/internal/staticfiles"
)

// Dependencies holds the core services that are required by the application's modules.
// This struct is passed from the main application entrypoint to wire up the modules.
type Dependencies struct {
	Users     domain.UserRepository
	Migrator  domain.MigrationRunner
	Collector *staticfiles.Collector
	Renderer  rendering.Renderer
	Events    pubsub.Publisher
}

// Provide publishes the dependencies in the registry under the core keys.
func (d Dependencies) Provide(reg *registry.Registry) {
	registry.Set(reg, registry.UserRepositoryKey, d.Users)
	registry.Set(reg, registry.MigrationRunnerKey, d.Migrator)
	registry.Set(reg, registry.StaticCollectorKey, d.Collector)
	registry.Set(reg, registry.RendererKey, d.Renderer)
	registry.Set(reg, registry.EventPublisherKey, d.Events)
}
