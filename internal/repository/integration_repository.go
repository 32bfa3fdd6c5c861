package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/calendario/calendario-api/internal/models"
)

// IntegrationRepository persists third-party calendar connections.
type IntegrationRepository struct {
	db *sqlx.DB
}

// NewIntegrationRepository constructs the repository.
func NewIntegrationRepository(db *sqlx.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// Upsert stores or refreshes a user's connection for one provider.
func (r *IntegrationRepository) Upsert(ctx context.Context, integration *models.Integration) error {
	if integration.ID == "" {
		integration.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if integration.CreatedAt.IsZero() {
		integration.CreatedAt = now
	}
	integration.UpdatedAt = now

	const query = `INSERT INTO integrations (id, user_id, app_type, access_token, refresh_token, expiry_date, created_at, updated_at)
VALUES (:id, :user_id, :app_type, :access_token, :refresh_token, :expiry_date, :created_at, :updated_at)
ON CONFLICT (user_id, app_type)
DO UPDATE SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token,
              expiry_date = EXCLUDED.expiry_date, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, integration); err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	return nil
}

// FindByUserAndType returns a user's connection for one provider.
func (r *IntegrationRepository) FindByUserAndType(ctx context.Context, userID string, appType models.IntegrationAppType) (*models.Integration, error) {
	const query = `SELECT id, user_id, app_type, access_token, refresh_token, expiry_date, created_at, updated_at
FROM integrations WHERE user_id = $1 AND app_type = $2 LIMIT 1`
	var integration models.Integration
	if err := r.db.GetContext(ctx, &integration, query, userID, appType); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find integration: %w", err)
	}
	return &integration, nil
}

// Exists reports whether the user has connected the provider.
func (r *IntegrationRepository) Exists(ctx context.Context, userID string, appType models.IntegrationAppType) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM integrations WHERE user_id = $1 AND app_type = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, appType); err != nil {
		return false, fmt.Errorf("check integration exists: %w", err)
	}
	return exists, nil
}

// UpdateTokens stores a refreshed access token and expiry.
func (r *IntegrationRepository) UpdateTokens(ctx context.Context, id, accessToken string, expiry *time.Time) error {
	const query = `UPDATE integrations SET access_token = $2, expiry_date = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, accessToken, expiry, time.Now().UTC()); err != nil {
		return fmt.Errorf("update integration tokens: %w", err)
	}
	return nil
}
