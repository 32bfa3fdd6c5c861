package availability

import "time"

// NextOccurrences returns the next count calendar dates falling on target,
// starting from now's date. Today counts as an occurrence when the weekday
// matches, except that a non-nil todayProbe reporting no open slots discards
// today and continues the search from next week, so guests are never shown a
// day whose bookable window has already passed.
func NextOccurrences(target time.Weekday, now time.Time, count int, todayProbe func(CalendarDate) bool) []CalendarDate {
	if count <= 0 {
		return nil
	}

	today := DateOf(now)
	base := (int(target) - int(now.Weekday()) + 7) % 7

	dates := make([]CalendarDate, 0, count)
	for offset := 0; len(dates) < count; offset++ {
		days := base + 7*offset
		date := today.AddDays(days)
		if offset == 0 && days == 0 && todayProbe != nil && !todayProbe(date) {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}
