package roster

import (
	"fmt"
	"strings"

	"github.com/noah-isme/branch-roster-api/internal/models"
)

// SearchType selects which column SearchGrid matches against.
type SearchType string

const (
	SearchBranch  SearchType = "branch"
	SearchDay     SearchType = "day"
	SearchTeacher SearchType = "teacher"
)

// ParseSearchType accepts the three search columns; empty means branch.
func ParseSearchType(raw string) (SearchType, error) {
	switch st := SearchType(strings.ToLower(strings.TrimSpace(raw))); st {
	case "":
		return SearchBranch, nil
	case SearchBranch, SearchDay, SearchTeacher:
		return st, nil
	default:
		return "", fmt.Errorf("unknown search type %q", raw)
	}
}

// GridRow is one scheduled branch and the teacher holding it that week.
type GridRow struct {
	ScheduleID   string          `json:"schedule_id"`
	Branch       models.Branch   `json:"branch"`
	Teacher      *models.Teacher `json:"teacher,omitempty"`
	AssignmentID string          `json:"assignment_id,omitempty"`
}

// GridDay holds a weekday's rows in schedule order.
type GridDay struct {
	Day  models.Weekday `json:"day"`
	Rows []GridRow      `json:"rows"`
}

// Grid is the week view, one entry per weekday Monday first.
type Grid struct {
	WeekStartDate string    `json:"week_start_date"`
	Days          []GridDay `json:"days"`
}

// Day returns the rows for day.
func (g Grid) Day(day models.Weekday) []GridRow {
	for _, d := range g.Days {
		if d.Day == day {
			return d.Rows
		}
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// SearchGrid keeps the days that have scheduled branches and match query on
// the chosen column. A kept day retains all of its rows; day order is
// preserved.
func SearchGrid(g Grid, searchType SearchType, query string) Grid {
	query = strings.TrimSpace(query)
	out := Grid{WeekStartDate: g.WeekStartDate, Days: make([]GridDay, 0, len(g.Days))}
	for _, d := range g.Days {
		if len(d.Rows) == 0 {
			continue
		}
		if query == "" || dayMatches(d, searchType, query) {
			out.Days = append(out.Days, d)
		}
	}
	return out
}

func dayMatches(d GridDay, searchType SearchType, query string) bool {
	switch searchType {
	case SearchDay:
		return containsFold(string(d.Day), query)
	case SearchTeacher:
		for _, r := range d.Rows {
			if r.Teacher != nil && containsFold(r.Teacher.Name, query) {
				return true
			}
		}
	default:
		for _, r := range d.Rows {
			if containsFold(r.Branch.Name, query) {
				return true
			}
		}
	}
	return false
}
