package dto

// CreateEventRequest describes the payload for creating an event type.
type CreateEventRequest struct {
	Title        string  `json:"title" validate:"required,min=2,max=150"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Duration     int     `json:"duration" validate:"required,min=5,max=480"`
	LocationType string  `json:"locationType" validate:"required,oneof=GOOGLE_MEET_AND_CALENDAR MEET_IN_PERSON"`
}

// UpdateEventRequest describes the payload for editing an event type. The
// slug never changes so existing booking links keep working.
type UpdateEventRequest struct {
	Title        string  `json:"title" validate:"required,min=2,max=150"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Duration     int     `json:"duration" validate:"required,min=5,max=480"`
	LocationType string  `json:"locationType" validate:"required,oneof=GOOGLE_MEET_AND_CALENDAR MEET_IN_PERSON"`
}

// EventResponse is the API projection of an event type.
type EventResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Slug         string  `json:"slug"`
	Duration     int     `json:"duration"`
	LocationType string  `json:"locationType"`
	IsPrivate    bool    `json:"isPrivate"`
	MeetingCount int     `json:"meetingCount"`
}

// PublicEventListResponse is the guest view of a host's booking page.
type PublicEventListResponse struct {
	User   UserResponse    `json:"user"`
	Events []EventResponse `json:"events"`
}
