// utils/dates.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// MonthsBetween approximates whole months elapsed using the mean month length.
func MonthsBetween(start, end time.Time) int {
	days := DaysBetween(start, end)
	if days <= 0 {
		return 0
	}
	return int(float64(days) / 30.44)
}

// FormatDateBR renders a date the Brazilian way (dd/mm/yyyy).
func FormatDateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

// ParseHour extracts the hour from an "HH:MM" setting value.
func ParseHour(sendTime string) (int, error) {
	parts := strings.SplitN(sendTime, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid send time %q", sendTime)
	}
	return hour, nil
}
