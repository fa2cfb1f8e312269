package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day name as stored and displayed: Monday through Sunday.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts a day name in any case.
func ParseWeekday(raw string) (Weekday, error) {
	trimmed := strings.TrimSpace(raw)
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), trimmed) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

// Valid reports whether d is one of the seven canonical names.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Index is the display position of d, Monday = 0, or -1 when invalid.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

func (d Weekday) String() string { return string(d) }

// WeekdayOf names the weekday of t in its own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[(int(t.Weekday())+6)%7]
}
