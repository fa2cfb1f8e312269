package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for week identities.
const DateLayout = "2006-01-02"

// WeekStart floors t to the Sunday that begins its week and formats it as a
// calendar date. Only the calendar fields of t are used.
func WeekStart(t time.Time) string {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday())).Format(DateLayout)
}

// ParseDate parses a calendar date; a full RFC 3339 timestamp is accepted and
// its date part kept.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
}

// NormalizeWeek maps any date in a week to that week's start. An empty
// reference means the week containing now.
func NormalizeWeek(raw string, now time.Time) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return WeekStart(now), nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return WeekStart(t), nil
}
