package deploy

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/module"
	"github.com/nfrund/quay/internal/registry"
)

// DeployModule exposes the hooks a continuous deployment system calls after
// rolling out a new build.
type DeployModule struct {
	module.BaseModule
}

// New creates a new instance of the DeployModule.
func New() *DeployModule {
	return &DeployModule{}
}

// Name returns the unique name for the module.
func (m *DeployModule) Name() string {
	return "deploy"
}

// Boot registers both hooks behind the shared-secret check.
func (m *DeployModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	cfg := reg.Config()
	h := NewHandler(
		registry.MustGet(reg, registry.MigrationRunnerKey),
		registry.MustGet(reg, registry.StaticCollectorKey),
		registry.MustGet(reg, registry.EventPublisherKey),
	)

	if cfg.GetDeployToken() == "" {
		slog.WarnContext(ctx, "SINGLE_CD_AUTHORIZATION_TOKEN is empty, deployment hooks will reject every call")
	}
	slog.InfoContext(ctx, "Booting DeployModule: Setting up routes...",
		"migrate_path", cfg.GetDeployMigratePath(),
		"collectstatic_path", cfg.GetDeployCollectStaticPath(),
	)

	token := middleware.DeployToken(cfg.GetDeployToken)
	g.POST(cfg.GetDeployMigratePath(), h.Migrate, token)
	g.Match([]string{"GET", "POST"}, cfg.GetDeployCollectStaticPath(), h.CollectStatic, token)
	return nil
}
