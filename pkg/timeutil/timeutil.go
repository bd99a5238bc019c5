// Package timeutil provides calendar-day utilities for FinZen.
// All streak and challenge logic compares calendar days in one fixed
// application timezone, configured once at startup (UTC by default).
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// appZone is the timezone used for every day-boundary comparison.
// Set once via SetAppZone before any request is served.
var appZone = time.UTC

// SetAppZone sets the application timezone from a fixed UTC offset in hours.
// A zero offset keeps UTC.
func SetAppZone(name string, offsetHours int) {
	if offsetHours == 0 {
		appZone = time.UTC
		return
	}
	appZone = time.FixedZone(name, offsetHours*60*60)
}

// SetAppLocation sets the application timezone to an already loaded
// location. Nil resets to UTC.
func SetAppLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	appZone = loc
}

// AppZone returns the current application timezone.
func AppZone() *time.Location {
	return appZone
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(appZone)
}

// ToAppZone converts a time to the application timezone.
func ToAppZone(t time.Time) time.Time {
	return t.In(appZone)
}

// Date creates a time in the application timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, appZone)
}

// StartOfDay returns the start of the day (00:00:00) in the application timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToAppZone(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, appZone)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the application timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToAppZone(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, appZone)
}

// StartOfMonth returns the start of the month in the application timezone.
func StartOfMonth(t time.Time) time.Time {
	local := ToAppZone(t)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, appZone)
}

// EndOfMonth returns the end of the month in the application timezone.
func EndOfMonth(t time.Time) time.Time {
	start := StartOfMonth(t)
	return EndOfDay(start.AddDate(0, 1, -1))
}

// IsToday checks if the given time is today in the application timezone.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// IsYesterday checks if the given time is yesterday in the application timezone.
func IsYesterday(t time.Time) bool {
	return IsSameDay(t, Now().AddDate(0, 0, -1))
}

// DaysSince calculates the number of whole days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	return int(now.Sub(then).Hours() / 24)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatSpanishDate is the Spanish date format (DD/MM/YYYY).
	FormatSpanishDate = "02/01/2006"
)

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in the application timezone.
func FormatDateStr(t time.Time) string {
	return ToAppZone(t).Format(FormatDate)
}

// FormatSpanish formats a time in Spanish format (DD/MM/YYYY).
func FormatSpanish(t time.Time) string {
	return ToAppZone(t).Format(FormatSpanishDate)
}

// ParseDate parses a date string (YYYY-MM-DD) in the application timezone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, appZone)
}

// FormatRelative returns a human-readable relative time string in Spanish.
func FormatRelative(t time.Time) string {
	d := Now().Sub(ToAppZone(t))
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return "justo ahora"
	case d < time.Hour:
		return fmt.Sprintf("hace %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("hace %d h", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := DaysSince(t)
		if days <= 1 {
			return "ayer"
		}
		return fmt.Sprintf("hace %d días", days)
	default:
		return FormatSpanish(t)
	}
}

// Streak-related utilities.

// IsSameDay checks if two times fall on the same calendar day in the application timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToAppZone(t1), ToAppZone(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// IsConsecutiveDay checks if t2 is the day after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	next := ToAppZone(t1).AddDate(0, 0, 1)
	return IsSameDay(next, t2)
}

// DaysBetween calculates the absolute number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	days := int(a2.Sub(a1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
