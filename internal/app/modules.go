package app

import (
	"github.com/nfrund/quay/internal/module"
	"github.com/nfrund/quay/internal/modules/accounts"
	"github.com/nfrund/quay/internal/modules/deploy"
	"github.com/nfrund/quay/internal/modules/users"
)

// NewModules creates and returns the list of all active modules for the application.
// This is the single source of truth for which features are enabled.
func NewModules() []module.Module {
	return []module.Module{
		accounts.New(),
		users.New(),
		deploy.New(),
	}
}
