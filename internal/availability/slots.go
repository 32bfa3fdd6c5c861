package availability

import "time"

// DefaultTimeGap is the fallback spacing between slot candidates, in minutes.
const DefaultTimeGap = 30

// Busy is a blocking interval, typically an already-booked meeting.
type Busy struct {
	Start time.Time
	End   time.Time
}

// GenerateSlots returns the bookable start times of durationMin-minute meetings
// on date within the [windowStart, windowEnd] wall-clock window, stepping by
// gapMin minutes. Candidates that overlap a busy interval on the same date are
// dropped, as are candidates already in the past when date is today.
//
// The window end is a loop bound, not an end-of-meeting cap: a slot may start
// exactly at windowEnd even though the meeting then runs past the window.
// An inverted window (end before start) yields no slots rather than an error.
func GenerateSlots(date CalendarDate, windowStart, windowEnd TimeOfDay, durationMin, gapMin int, busy []Busy, now time.Time) []TimeOfDay {
	if gapMin <= 0 {
		gapMin = DefaultTimeGap
	}

	loc := now.Location()
	slotStart := date.At(windowStart, loc)
	slotEnd := date.At(windowEnd, loc)

	isToday := DateOf(now) == date
	if isToday && now.After(slotEnd) {
		return nil
	}

	var sameDay []Busy
	for _, b := range busy {
		if DateOf(b.Start.In(loc)) == date {
			sameDay = append(sameDay, b)
		}
	}

	duration := time.Duration(durationMin) * time.Minute
	gap := time.Duration(gapMin) * time.Minute

	var slots []TimeOfDay
	for t := slotStart; !t.After(slotEnd); t = t.Add(gap) {
		if isToday && t.Before(now) {
			continue
		}
		if overlapsAny(t, t.Add(duration), sameDay) {
			continue
		}
		slots = append(slots, TimeOfDayFrom(t))
	}
	return slots
}

// overlapsAny reports whether [start, end) intersects any busy interval.
// Half-open semantics: back-to-back bookings at exact boundaries are allowed.
func overlapsAny(start, end time.Time, busy []Busy) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
