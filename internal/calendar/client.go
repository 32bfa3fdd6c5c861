// Package calendar integrates booked meetings with external calendar
// providers. Bookings on events that request a conferencing location are
// mirrored to the host's calendar and removed again on cancellation.
package calendar

import (
	"context"
	"time"
)

// EventDetails describes the calendar entry to create for a booking.
type EventDetails struct {
	Title         string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
	HostEmail     string
	AttendeeEmail string
}

// CreatedEvent is the provider's record of a created entry.
type CreatedEvent struct {
	EventID string
	JoinURL string
}

// Client abstracts a calendar provider on behalf of one connected user.
type Client interface {
	CreateEvent(ctx context.Context, details EventDetails) (*CreatedEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
