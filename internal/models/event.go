package models

import "time"

// EventLocationType enumerates where a booked meeting takes place.
type EventLocationType string

const (
	LocationGoogleMeet EventLocationType = "GOOGLE_MEET_AND_CALENDAR"
	LocationInPerson   EventLocationType = "MEET_IN_PERSON"
)

// Valid reports whether the location type is supported.
func (l EventLocationType) Valid() bool {
	switch l {
	case LocationGoogleMeet, LocationInPerson:
		return true
	default:
		return false
	}
}

// Event is a bookable event type owned by a user.
type Event struct {
	ID           string            `db:"id" json:"id"`
	UserID       string            `db:"user_id" json:"userId"`
	Title        string            `db:"title" json:"title"`
	Description  *string           `db:"description" json:"description,omitempty"`
	Slug         string            `db:"slug" json:"slug"`
	Duration     int               `db:"duration" json:"duration"`
	LocationType EventLocationType `db:"location_type" json:"locationType"`
	IsPrivate    bool              `db:"is_private" json:"isPrivate"`
	CreatedAt    time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updatedAt"`

	// MeetingCount is populated on owner-facing listings only.
	MeetingCount int `db:"meeting_count" json:"meetingCount,omitempty"`
}
