package models

import "time"

// MeetingStatus enumerates the lifecycle of a booked meeting.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "SCHEDULED"
	MeetingCancelled MeetingStatus = "CANCELLED"
)

// MeetingFilter selects which meetings an owner wants listed.
type MeetingFilter string

const (
	MeetingFilterUpcoming  MeetingFilter = "UPCOMING"
	MeetingFilterPast      MeetingFilter = "PAST"
	MeetingFilterCancelled MeetingFilter = "CANCELLED"
)

// Meeting is a guest booking against an event.
type Meeting struct {
	ID              string        `db:"id" json:"id"`
	UserID          string        `db:"user_id" json:"userId"`
	EventID         string        `db:"event_id" json:"eventId"`
	GuestName       string        `db:"guest_name" json:"guestName"`
	GuestEmail      string        `db:"guest_email" json:"guestEmail"`
	AdditionalInfo  *string       `db:"additional_info" json:"additionalInfo,omitempty"`
	PhoneNumber     *string       `db:"phone_number" json:"phoneNumber,omitempty"`
	Location        *string       `db:"location" json:"location,omitempty"`
	StartTime       time.Time     `db:"start_time" json:"startTime"`
	EndTime         time.Time     `db:"end_time" json:"endTime"`
	MeetLink        string        `db:"meet_link" json:"meetLink"`
	CalendarEventID string        `db:"calendar_event_id" json:"calendarEventId"`
	CalendarAppType string        `db:"calendar_app_type" json:"calendarAppType"`
	Status          MeetingStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`

	// EventTitle is populated on owner-facing listings via a join.
	EventTitle string `db:"event_title" json:"eventTitle,omitempty"`
}
