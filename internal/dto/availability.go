package dto

// DayAvailabilityItem is one weekday row of an owner's weekly template.
type DayAvailabilityItem struct {
	Day         string `json:"day" validate:"required,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	StartTime   string `json:"startTime" validate:"required,len=5"`
	EndTime     string `json:"endTime" validate:"required,len=5"`
	IsAvailable bool   `json:"isAvailable"`
}

// OwnerAvailabilityResponse is the owner view of the weekly template,
// always seven days in Sunday-first order.
type OwnerAvailabilityResponse struct {
	TimeGap int                   `json:"timeGap"`
	Days    []DayAvailabilityItem `json:"days"`
}

// UpdateAvailabilityRequest replaces the whole weekly template in one call.
type UpdateAvailabilityRequest struct {
	TimeGap int                   `json:"timeGap" validate:"required,min=1"`
	Days    []DayAvailabilityItem `json:"days" validate:"required,min=1,max=7,dive"`
}

// DateSlots pairs one concrete date with its open start times.
type DateSlots struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// PublicDayAvailability is the guest view of one weekday: the next
// bookable dates falling on it and the open slots per date.
type PublicDayAvailability struct {
	Day         string      `json:"day"`
	IsAvailable bool        `json:"isAvailable"`
	Dates       []DateSlots `json:"dates"`
}
