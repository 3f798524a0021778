package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2026, 3, 9, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 8, DaysBetween(start, end))
}

func TestMonthsBetween(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		days int
		want int
	}{
		{0, 0},
		{30, 0}, // just under one mean month
		{31, 1},
		{61, 2},
		{183, 6},
		{365, 11}, // 365 / 30.44 rounds down
	}
	for _, tc := range cases {
		end := base.AddDate(0, 0, tc.days)
		assert.Equal(t, tc.want, MonthsBetween(base, end), "%d days", tc.days)
	}
}

func TestMonthsBetweenNeverNegative(t *testing.T) {
	later := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, MonthsBetween(later, earlier))
}

func TestFormatDateBR(t *testing.T) {
	assert.Equal(t, "05/03/2026", FormatDateBR(time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)))
}

func TestParseHour(t *testing.T) {
	hour, err := ParseHour("09:00")
	assert.NoError(t, err)
	assert.Equal(t, 9, hour)

	hour, err = ParseHour("18:30")
	assert.NoError(t, err)
	assert.Equal(t, 18, hour)

	_, err = ParseHour("25:00")
	assert.Error(t, err)

	_, err = ParseHour("manhã")
	assert.Error(t, err)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "11999999999", DigitsOnly("(11) 99999-9999"))
	assert.Equal(t, "5511999999999", DigitsOnly("+55 11 99999-9999"))
	assert.Equal(t, "", DigitsOnly("sem número"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("(11) 99999-9999"))
	assert.True(t, ValidatePhone("+5511999999999"))
	assert.False(t, ValidatePhone("abc"))
	assert.False(t, ValidatePhone("0"))
}
