package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func slotStrings(slots []TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

func TestGenerateSlotsFullDay(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}

	slots := GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "17:00"), 30, 30, nil, now)

	// Inclusive loop bound: 09:00 through 17:00 is 17 candidates.
	require.Len(t, slots, 17)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "09:30", slots[1].String())
	assert.Equal(t, "16:30", slots[15].String())
	assert.Equal(t, "17:00", slots[16].String())
}

func TestGenerateSlotsExcludesOverlappingMeeting(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}
	busy := []Busy{{
		Start: time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 9, 12, 30, 0, 0, time.UTC),
	}}

	slots := slotStrings(GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "17:00"), 30, 30, busy, now))

	require.Len(t, slots, 16)
	assert.NotContains(t, slots, "12:00")
	assert.Contains(t, slots, "11:30")
	assert.Contains(t, slots, "12:30")
}

func TestGenerateSlotsBackToBackAllowed(t *testing.T) {
	// Half-open overlap: a 60-minute slot ending exactly when a meeting
	// starts, or starting exactly when it ends, is not a conflict.
	now := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}
	busy := []Busy{{
		Start: time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 9, 11, 0, 0, 0, time.UTC),
	}}

	slots := slotStrings(GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "12:00"), 60, 30, busy, now))

	assert.Contains(t, slots, "09:00")
	assert.NotContains(t, slots, "09:30")
	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "10:30")
	assert.Contains(t, slots, "11:00")
}

func TestGenerateSlotsIgnoresMeetingsOnOtherDates(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}
	busy := []Busy{{
		Start: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 10, 12, 30, 0, 0, time.UTC),
	}}

	slots := slotStrings(GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "17:00"), 30, 30, busy, now))

	assert.Contains(t, slots, "12:00")
	assert.Len(t, slots, 17)
}

func TestGenerateSlotsTodaySkipsPastTimes(t *testing.T) {
	now := time.Date(2026, time.March, 9, 12, 10, 0, 0, time.UTC)
	date := DateOf(now)

	slots := slotStrings(GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "17:00"), 30, 30, nil, now))

	require.NotEmpty(t, slots)
	assert.Equal(t, "12:30", slots[0])
	assert.NotContains(t, slots, "12:00")
}

func TestGenerateSlotsTodayWindowOver(t *testing.T) {
	now := time.Date(2026, time.March, 9, 17, 30, 0, 0, time.UTC)
	date := DateOf(now)

	slots := GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "17:00"), 30, 30, nil, now)

	assert.Empty(t, slots)
}

func TestGenerateSlotsInvertedWindow(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}

	slots := GenerateSlots(date, mustTime(t, "17:00"), mustTime(t, "09:00"), 30, 30, nil, now)

	assert.Empty(t, slots)
}

func TestGenerateSlotsZeroGapFallsBackToDefault(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}

	slots := GenerateSlots(date, mustTime(t, "09:00"), mustTime(t, "10:00"), 30, 0, nil, now)

	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, slotStrings(slots))
}

func TestGenerateSlotsSlotsStayWithinWindow(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	date := CalendarDate{Year: 2026, Month: time.March, Day: 9}
	start := mustTime(t, "10:15")
	end := mustTime(t, "14:45")

	slots := GenerateSlots(date, start, end, 45, 20, nil, now)

	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.MinuteOfDay(), start.MinuteOfDay())
		assert.LessOrEqual(t, s.MinuteOfDay(), end.MinuteOfDay())
	}
}
