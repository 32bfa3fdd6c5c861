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

// AvailabilityRepository persists weekly availability templates and their
// per-weekday rows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// GetByUserID loads a user's template with its day rows attached. Returns
// sql.ErrNoRows when the user has no template yet.
func (r *AvailabilityRepository) GetByUserID(ctx context.Context, userID string) (*models.Availability, error) {
	const query = `SELECT id, user_id, time_gap, created_at, updated_at FROM availabilities WHERE user_id = $1 LIMIT 1`
	var av models.Availability
	if err := r.db.GetContext(ctx, &av, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find availability by user: %w", err)
	}

	days, err := r.listDays(ctx, av.ID)
	if err != nil {
		return nil, err
	}
	av.Days = days
	return &av, nil
}

// Create inserts a template together with its day rows in one transaction.
func (r *AvailabilityRepository) Create(ctx context.Context, av *models.Availability) error {
	if av.ID == "" {
		av.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if av.CreatedAt.IsZero() {
		av.CreatedAt = now
	}
	av.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create availability tx: %w", err)
	}

	const insertTemplate = `INSERT INTO availabilities (id, user_id, time_gap, created_at, updated_at)
VALUES (:id, :user_id, :time_gap, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertTemplate, av); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create availability: %w", err)
	}

	if err := insertDays(ctx, tx, av.ID, av.Days); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create availability tx: %w", err)
	}
	return nil
}

// ReplaceDays updates the template's time gap and swaps all day rows for the
// provided set within one transaction.
func (r *AvailabilityRepository) ReplaceDays(ctx context.Context, availabilityID string, timeGap int, days []models.DayAvailability) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace days tx: %w", err)
	}

	const updateTemplate = `UPDATE availabilities SET time_gap = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateTemplate, availabilityID, timeGap, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update availability: %w", err)
	}

	const deleteDays = `DELETE FROM day_availabilities WHERE availability_id = $1`
	if _, err := tx.ExecContext(ctx, deleteDays, availabilityID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete day availabilities: %w", err)
	}

	if err := insertDays(ctx, tx, availabilityID, days); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace days tx: %w", err)
	}
	return nil
}

// GetByEventID loads the template owned by the host of the given event.
func (r *AvailabilityRepository) GetByEventID(ctx context.Context, eventID string) (*models.Availability, error) {
	const query = `SELECT a.id, a.user_id, a.time_gap, a.created_at, a.updated_at
FROM availabilities a
JOIN events e ON e.user_id = a.user_id
WHERE e.id = $1 LIMIT 1`
	var av models.Availability
	if err := r.db.GetContext(ctx, &av, query, eventID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find availability by event: %w", err)
	}

	days, err := r.listDays(ctx, av.ID)
	if err != nil {
		return nil, err
	}
	av.Days = days
	return &av, nil
}

func (r *AvailabilityRepository) listDays(ctx context.Context, availabilityID string) ([]models.DayAvailability, error) {
	const query = `SELECT id, availability_id, day, start_time, end_time, is_available
FROM day_availabilities WHERE availability_id = $1`
	var days []models.DayAvailability
	if err := r.db.SelectContext(ctx, &days, query, availabilityID); err != nil {
		return nil, fmt.Errorf("list day availabilities: %w", err)
	}
	return days, nil
}

func insertDays(ctx context.Context, tx *sqlx.Tx, availabilityID string, days []models.DayAvailability) error {
	const query = `INSERT INTO day_availabilities (id, availability_id, day, start_time, end_time, is_available)
VALUES (:id, :availability_id, :day, :start_time, :end_time, :is_available)`
	for i := range days {
		if days[i].ID == "" {
			days[i].ID = uuid.NewString()
		}
		days[i].AvailabilityID = availabilityID
		if _, err := tx.NamedExecContext(ctx, query, days[i]); err != nil {
			return fmt.Errorf("insert day availability: %w", err)
		}
	}
	return nil
}
