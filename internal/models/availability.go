package models

import "time"

// Weekday enumerates days of the week, Sunday first, matching time.Weekday ordinals.
type Weekday string

const (
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

// Weekdays lists all days in declaration order (Sunday through Saturday).
var Weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// TimeWeekday converts to the standard library weekday.
func (w Weekday) TimeWeekday() time.Weekday {
	for i, d := range Weekdays {
		if d == w {
			return time.Weekday(i)
		}
	}
	return time.Sunday
}

// WeekdayOf converts a standard library weekday to its enum value.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekdays[int(d)%7]
}

// Valid reports whether the value is one of the seven enumerated days.
func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// Availability is a user's weekly booking template. Each user owns exactly one.
type Availability struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	TimeGap   int       `db:"time_gap" json:"timeGap"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Days []DayAvailability `db:"-" json:"days"`
}

// DayAvailability is one weekday's window within an availability template.
// Start and end are wall-clock times without a date component.
type DayAvailability struct {
	ID             string  `db:"id" json:"id"`
	AvailabilityID string  `db:"availability_id" json:"-"`
	Day            Weekday `db:"day" json:"day"`
	StartTime      string  `db:"start_time" json:"startTime"`
	EndTime        string  `db:"end_time" json:"endTime"`
	IsAvailable    bool    `db:"is_available" json:"isAvailable"`
}
