package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSameDay(t *testing.T) {
	morning := time.Date(2026, 8, 10, 0, 1, 0, 0, time.UTC)
	night := time.Date(2026, 8, 10, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 8, 11, 0, 1, 0, 0, time.UTC)

	assert.True(t, IsSameDay(morning, night))
	assert.False(t, IsSameDay(night, nextDay))
}

func TestIsConsecutiveDay(t *testing.T) {
	d1 := time.Date(2026, 8, 10, 15, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 11, 3, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, 8, 12, 3, 0, 0, 0, time.UTC)

	assert.True(t, IsConsecutiveDay(d1, d2))
	assert.False(t, IsConsecutiveDay(d1, d3))
	assert.False(t, IsConsecutiveDay(d2, d1))
}

func TestDaysBetween(t *testing.T) {
	d1 := time.Date(2026, 8, 10, 23, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 13, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(d1, d2))
	assert.Equal(t, 3, DaysBetween(d2, d1))
	assert.Equal(t, 0, DaysBetween(d1, d1))
}

func TestStartOfDayAndEndOfDay(t *testing.T) {
	d := time.Date(2026, 8, 10, 14, 30, 45, 0, time.UTC)

	start := StartOfDay(d)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, 10, start.Day())

	end := EndOfDay(d)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 10, end.Day())
}

func TestStartOfMonthAndEndOfMonth(t *testing.T) {
	d := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, StartOfMonth(d).Day())
	assert.Equal(t, 28, EndOfMonth(d).Day(), "February 2026 has 28 days")
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-08-10")
	assert.NoError(t, err)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.August, parsed.Month())
	assert.Equal(t, 10, parsed.Day())

	_, err = ParseDate("10/08/2026")
	assert.Error(t, err)
}

func TestSetAppLocation(t *testing.T) {
	defer SetAppLocation(nil)

	loc := time.FixedZone("UTC-6", -6*60*60)
	SetAppLocation(loc)
	assert.Equal(t, loc, AppZone())

	// 02:00 UTC is still the previous day at UTC-6
	utcNight := time.Date(2026, 8, 11, 2, 0, 0, 0, time.UTC)
	local := ToAppZone(utcNight)
	assert.Equal(t, 10, local.Day())

	SetAppLocation(nil)
	assert.Equal(t, time.UTC, AppZone())
}

func TestSetAppZone(t *testing.T) {
	defer SetAppLocation(nil)

	SetAppZone("UTC+5", 5)
	midnightUTC := time.Date(2026, 8, 10, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, 11, ToAppZone(midnightUTC).Day())

	SetAppZone("UTC", 0)
	assert.Equal(t, time.UTC, AppZone())
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(Now()))
	assert.Equal(t, 1, DaysSince(Now().AddDate(0, 0, -1)))
	assert.Equal(t, 3, DaysSince(Now().AddDate(0, 0, -3)))
}

func TestFormatRelative_CountsCalendarDays(t *testing.T) {
	assert.Equal(t, "hace 3 días", FormatRelative(Now().AddDate(0, 0, -3)))
}
