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

// MeetingRepository persists booked meetings.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs the repository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `m.id, m.event_id, m.user_id, m.guest_name, m.guest_email, m.additional_info, m.phone_number, m.location,
m.start_time, m.end_time, m.meet_link, m.calendar_event_id, m.calendar_app_type, m.status, m.created_at, m.updated_at`

// Create inserts a booked meeting.
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = now
	}
	meeting.UpdatedAt = now

	const query = `INSERT INTO meetings (id, event_id, user_id, guest_name, guest_email, additional_info, phone_number, location,
start_time, end_time, meet_link, calendar_event_id, calendar_app_type, status, created_at, updated_at)
VALUES (:id, :event_id, :user_id, :guest_name, :guest_email, :additional_info, :phone_number, :location,
:start_time, :end_time, :meet_link, :calendar_event_id, :calendar_app_type, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meeting); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

// FindByID returns a meeting by identifier.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s, e.title AS event_title FROM meetings m
JOIN events e ON e.id = m.event_id
WHERE m.id = $1 LIMIT 1`, meetingColumns)
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find meeting by id: %w", err)
	}
	return &meeting, nil
}

// ListByUser returns the host's meetings narrowed by filter.
func (r *MeetingRepository) ListByUser(ctx context.Context, userID string, filter models.MeetingFilter, now time.Time) ([]models.Meeting, error) {
	base := fmt.Sprintf(`SELECT %s, e.title AS event_title FROM meetings m
JOIN events e ON e.id = m.event_id
WHERE m.user_id = $1`, meetingColumns)

	var condition string
	args := []interface{}{userID}
	switch filter {
	case models.MeetingFilterUpcoming:
		condition = " AND m.status = $2 AND m.start_time > $3"
		args = append(args, models.MeetingScheduled, now)
	case models.MeetingFilterPast:
		condition = " AND m.status = $2 AND m.start_time <= $3"
		args = append(args, models.MeetingScheduled, now)
	case models.MeetingFilterCancelled:
		condition = " AND m.status = $2"
		args = append(args, models.MeetingCancelled)
	}

	query := base + condition + " ORDER BY m.start_time ASC"
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, args...); err != nil {
		return nil, fmt.Errorf("list meetings by user: %w", err)
	}
	return meetings, nil
}

// ListBlocking returns the host's scheduled meetings overlapping the window.
// Cancelled meetings never block slots.
func (r *MeetingRepository) ListBlocking(ctx context.Context, userID string, from, to time.Time) ([]models.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings m
WHERE m.user_id = $1 AND m.status = $2 AND m.start_time < $4 AND m.end_time > $3
ORDER BY m.start_time ASC`, meetingColumns)
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, userID, models.MeetingScheduled, from, to); err != nil {
		return nil, fmt.Errorf("list blocking meetings: %w", err)
	}
	return meetings, nil
}

// Cancel marks a meeting cancelled.
func (r *MeetingRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE meetings SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.MeetingCancelled, time.Now().UTC()); err != nil {
		return fmt.Errorf("cancel meeting: %w", err)
	}
	return nil
}
