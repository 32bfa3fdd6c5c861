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

// EventRepository persists bookable event types.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `e.id, e.user_id, e.title, e.description, e.slug, e.duration, e.location_type, e.is_private, e.created_at, e.updated_at`

// Create inserts a new event type.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, user_id, title, description, slug, duration, location_type, is_private, created_at, updated_at)
VALUES (:id, :user_id, :title, :description, :slug, :duration, :location_type, :is_private, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// FindByID returns an event by identifier.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events e WHERE e.id = $1 LIMIT 1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return &event, nil
}

// FindByUsernameAndSlug resolves an event from its host's username and the
// event slug, the pair that forms a public booking link.
func (r *EventRepository) FindByUsernameAndSlug(ctx context.Context, username, slug string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events e
JOIN users u ON u.id = e.user_id
WHERE u.username = $1 AND e.slug = $2 LIMIT 1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, username, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by username and slug: %w", err)
	}
	return &event, nil
}

// ListByUser returns all event types owned by a user with booked-meeting counts.
func (r *EventRepository) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(m.id) AS meeting_count
FROM events e
LEFT JOIN meetings m ON m.event_id = e.id
WHERE e.user_id = $1
GROUP BY e.id
ORDER BY e.created_at DESC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, fmt.Errorf("list events by user: %w", err)
	}
	return events, nil
}

// ListPublicByUsername returns the host's non-private event types for the
// public booking page.
func (r *EventRepository) ListPublicByUsername(ctx context.Context, username string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events e
JOIN users u ON u.id = e.user_id
WHERE u.username = $1 AND e.is_private = FALSE
ORDER BY e.created_at DESC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, username); err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	return events, nil
}

// TogglePrivacy flips the is_private flag and returns the new value.
func (r *EventRepository) TogglePrivacy(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE events SET is_private = NOT is_private, updated_at = $2 WHERE id = $1 RETURNING is_private`
	var isPrivate bool
	if err := r.db.GetContext(ctx, &isPrivate, query, id, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return false, err
		}
		return false, fmt.Errorf("toggle event privacy: %w", err)
	}
	return isPrivate, nil
}

// Update rewrites the mutable fields of an event type.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, description = :description, duration = :duration,
location_type = :location_type, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// SlugExists reports whether the user already has an event with the slug.
func (r *EventRepository) SlugExists(ctx context.Context, userID, slug string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM events WHERE user_id = $1 AND slug = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, slug); err != nil {
		return false, fmt.Errorf("check event slug exists: %w", err)
	}
	return exists, nil
}

// Delete removes an event type.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM events WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
