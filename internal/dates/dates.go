// Package dates holds the UTC calendar-day helpers shared by the model and
// layout code. Every date handled here is a UTC midnight.
package dates

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Day is the length of one calendar day.
const Day = 24 * time.Hour

var layouts = []string{
	"2006-1-2",
	"2006-01-02",
	time.RFC3339,
	"2006-1-2T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
}

// Parse accepts YYYY-MM-DD or YYYY/MM/DD (single-digit month and day allowed)
// and returns the UTC midnight of that date. Empty or unparsable input yields
// ok == false.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.ReplaceAll(s, "/", "-")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Midnight(t), true
		}
	}
	return time.Time{}, false
}

// Midnight truncates t to 00:00 UTC of its UTC calendar day.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Offset is the whole number of days from base to t, floored.
func Offset(base, t time.Time) int {
	return int(math.Floor(float64(t.Sub(base)) / float64(Day)))
}

// InclusiveDaySpan counts the days from a to b with both ends included, so a
// single-day range spans 1.
func InclusiveDaySpan(a, b time.Time) int {
	return Offset(Midnight(a), Midnight(b)) + 1
}

// Format renders YYYY-MM-DD.
func Format(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatMonthDay renders M/D without zero padding.
func FormatMonthDay(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%d/%d", int(u.Month()), u.Day())
}
