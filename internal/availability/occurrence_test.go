package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrencesReturnsFourMatchingDates(t *testing.T) {
	// 2026-03-02 is a Monday.
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	dates := NextOccurrences(time.Wednesday, now, 4, nil)

	require.Len(t, dates, 4)
	assert.Equal(t, "2026-03-04", dates[0].String())
	assert.Equal(t, "2026-03-11", dates[1].String())
	assert.Equal(t, "2026-03-18", dates[2].String())
	assert.Equal(t, "2026-03-25", dates[3].String())
	for _, d := range dates {
		assert.Equal(t, time.Wednesday, d.Weekday())
	}
}

func TestNextOccurrencesTodayCountsWhenProbeOpen(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	probed := 0
	dates := NextOccurrences(time.Monday, now, 4, func(d CalendarDate) bool {
		probed++
		return true
	})

	require.Len(t, dates, 4)
	assert.Equal(t, 1, probed)
	assert.Equal(t, "2026-03-02", dates[0].String())
	assert.Equal(t, "2026-03-23", dates[3].String())
}

func TestNextOccurrencesSkipsDeadToday(t *testing.T) {
	now := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)

	dates := NextOccurrences(time.Monday, now, 4, func(d CalendarDate) bool {
		return false
	})

	require.Len(t, dates, 4)
	assert.Equal(t, "2026-03-09", dates[0].String())
	assert.Equal(t, "2026-03-30", dates[3].String())
}

func TestNextOccurrencesProbeNotUsedForOtherDays(t *testing.T) {
	now := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)

	dates := NextOccurrences(time.Friday, now, 4, func(d CalendarDate) bool {
		t.Fatal("probe must only run when today is the target weekday")
		return false
	})

	require.Len(t, dates, 4)
	assert.Equal(t, "2026-03-06", dates[0].String())
}

func TestNextOccurrencesStrictlyIncreasing(t *testing.T) {
	now := time.Date(2026, time.July, 31, 9, 0, 0, 0, time.UTC)

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		dates := NextOccurrences(wd, now, 4, nil)
		require.Len(t, dates, 4)
		for i := 1; i < len(dates); i++ {
			prev := dates[i-1].At(TimeOfDay{}, time.UTC)
			cur := dates[i].At(TimeOfDay{}, time.UTC)
			assert.True(t, cur.After(prev))
			assert.Equal(t, wd, dates[i].Weekday())
		}
	}
}

func TestNextOccurrencesCrossesMonthBoundary(t *testing.T) {
	// 2026-01-29 is a Thursday; occurrences roll into February.
	now := time.Date(2026, time.January, 29, 9, 0, 0, 0, time.UTC)

	dates := NextOccurrences(time.Thursday, now, 4, nil)

	require.Len(t, dates, 4)
	assert.Equal(t, "2026-01-29", dates[0].String())
	assert.Equal(t, "2026-02-05", dates[1].String())
	assert.Equal(t, "2026-02-19", dates[3].String())
}
