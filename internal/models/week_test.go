package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStartFloorsToSunday(t *testing.T) {
	// 2024-06-02 is a Sunday.
	for day := 2; day <= 8; day++ {
		d := time.Date(2024, time.June, day, 15, 30, 0, 0, time.UTC)
		assert.Equal(t, "2024-06-02", WeekStart(d), "June %d", day)
	}
	assert.Equal(t, "2024-06-09", WeekStart(time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC)))
}

func TestWeekStartCrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, "2023-12-31", WeekStart(time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02-25", WeekStart(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWeekStartUsesCalendarFields(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*3600)
	// Saturday evening locally, already Sunday in UTC.
	d := time.Date(2024, time.June, 8, 20, 0, 0, 0, loc)
	assert.Equal(t, "2024-06-02", WeekStart(d))
}

func TestNormalizeWeek(t *testing.T) {
	now := time.Date(2024, time.June, 5, 9, 0, 0, 0, time.UTC)

	week, err := NormalizeWeek("", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", week)

	week, err = NormalizeWeek("2024-06-08", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", week)

	week, err = NormalizeWeek("2024-06-04T23:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", week)

	_, err = NormalizeWeek("06/04/2024", now)
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, d)
	assert.Equal(t, 0, d.Index())
	assert.Equal(t, 6, Sunday.Index())

	_, err = ParseWeekday("Funday")
	assert.Error(t, err)
	assert.False(t, Weekday("monday").Valid())
}

func TestTeacherAvailability(t *testing.T) {
	teacher := Teacher{AvailableDays: []string{"Monday", "wednesday"}}
	assert.True(t, teacher.AvailableOn(Wednesday))
	assert.False(t, teacher.AvailableOn(Friday))
	assert.True(t, Teacher{}.AvailableOn(Sunday))
}

func TestTeacherWorkingSpan(t *testing.T) {
	assert.Equal(t, 8*time.Hour, Teacher{WorkingHoursStart: "09:00", WorkingHoursEnd: "17:00"}.WorkingSpan())
	assert.Equal(t, time.Duration(0), Teacher{WorkingHoursStart: "17:00", WorkingHoursEnd: "09:00"}.WorkingSpan())
	assert.Equal(t, time.Duration(0), Teacher{}.WorkingSpan())
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, Monday, WeekdayOf(time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, Wednesday, WeekdayOf(time.Date(2024, time.June, 5, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, Saturday, WeekdayOf(time.Date(2024, time.June, 8, 0, 0, 0, 0, time.UTC)))
}
