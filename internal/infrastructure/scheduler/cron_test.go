package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCronExpression_Valid(t *testing.T) {
	ce, err := ParseCronExpression("0 3 * * *")
	assert.NoError(t, err)
	assert.Equal(t, "0 3 * * *", ce.String())
}

func TestParseCronExpression_InvalidFieldCount(t *testing.T) {
	_, err := ParseCronExpression("0 3 * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("0 3 * * * *")
	assert.Error(t, err)
}

func TestParseCronExpression_ValueOutOfRange(t *testing.T) {
	_, err := ParseCronExpression("60 * * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("* 24 * * *")
	assert.Error(t, err)
}

func TestCronExpression_Next_DailyAtThree(t *testing.T) {
	ce, err := ParseCronExpression("0 3 * * *")
	assert.NoError(t, err)

	after := time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, time.Date(2026, 8, 11, 3, 0, 0, 0, time.UTC), next)

	// Just before 03:00 the same day still matches
	after = time.Date(2026, 8, 10, 2, 59, 0, 0, time.UTC)
	next = ce.Next(after)
	assert.Equal(t, time.Date(2026, 8, 10, 3, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_Next_EveryFiveMinutes(t *testing.T) {
	ce, err := ParseCronExpression("*/5 * * * *")
	assert.NoError(t, err)

	after := time.Date(2026, 8, 10, 14, 31, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, time.Date(2026, 8, 10, 14, 35, 0, 0, time.UTC), next)
}

func TestCronExpression_Next_Weekday(t *testing.T) {
	// Every Sunday at midnight; 2026-08-10 is a Monday
	ce, err := ParseCronExpression("0 0 * * 0")
	assert.NoError(t, err)

	after := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, 16, next.Day())
}

func TestCronExpression_Next_List(t *testing.T) {
	ce, err := ParseCronExpression("0,30 * * * *")
	assert.NoError(t, err)

	after := time.Date(2026, 8, 10, 14, 10, 0, 0, time.UTC)
	assert.Equal(t, 30, ce.Next(after).Minute())

	after = time.Date(2026, 8, 10, 14, 45, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, 0, next.Minute())
	assert.Equal(t, 15, next.Hour())
}

func TestCronExpression_Next_Range(t *testing.T) {
	ce, err := ParseCronExpression("0 9-17 * * *")
	assert.NoError(t, err)

	after := time.Date(2026, 8, 10, 18, 0, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 11, next.Day())
}

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(15 * time.Minute)

	after := time.Date(2026, 8, 10, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, after.Add(15*time.Minute), s.Next(after))
}
