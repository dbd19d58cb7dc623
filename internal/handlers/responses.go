package handlers

import "github.com/nfrund/quay/internal/domain"

// MigrationResponse identifies the most recently applied migration.
type MigrationResponse struct {
	App  string `json:"app"`
	Name string `json:"name"`
}

// NewMigrationResponse creates a MigrationResponse from a history record.
func NewMigrationResponse(rec *domain.MigrationRecord) MigrationResponse {
	return MigrationResponse{App: rec.App, Name: rec.Name}
}
