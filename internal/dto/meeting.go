package dto

import "time"

// CreateMeetingRequest is the guest booking payload.
type CreateMeetingRequest struct {
	EventID        string    `json:"eventId" validate:"required,uuid"`
	GuestName      string    `json:"guestName" validate:"required,min=2,max=100"`
	GuestEmail     string    `json:"guestEmail" validate:"required,email"`
	AdditionalInfo *string   `json:"additionalInfo,omitempty" validate:"omitempty,max=1000"`
	PhoneNumber    *string   `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	Location       *string   `json:"location,omitempty" validate:"omitempty,max=255"`
	StartTime      time.Time `json:"startTime" validate:"required"`
	EndTime        time.Time `json:"endTime" validate:"required"`
}

// MeetingResponse is the API projection of a booked meeting.
type MeetingResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"eventId"`
	EventTitle     string    `json:"eventTitle,omitempty"`
	GuestName      string    `json:"guestName"`
	GuestEmail     string    `json:"guestEmail"`
	AdditionalInfo *string   `json:"additionalInfo,omitempty"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	MeetLink       string    `json:"meetLink,omitempty"`
	Status         string    `json:"status"`
}
