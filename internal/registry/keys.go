package registry

import (
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/rendering"
	"github.com/nfrund/quay/internal/staticfiles"
)

// Keys of the core services every module may depend on. They are set by the
// server before any module boots.
var (
	UserRepositoryKey  = Key[domain.UserRepository]("core.users")
	MigrationRunnerKey = Key[domain.MigrationRunner]("core.migrations")
	StaticCollectorKey = Key[*staticfiles.Collector]("core.staticfiles")
	RendererKey        = Key[rendering.Renderer]("core.renderer")
	EventPublisherKey  = Key[pubsub.Publisher]("core.events")
)
