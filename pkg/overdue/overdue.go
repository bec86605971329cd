// Package overdue resolves partial "MM/DD" due tokens against a reference
// date and counts elapsed overdue days. Due tokens carry no year, so the
// year is inferred: a candidate more than 180 days in the reference's past
// is assumed to mean next year (and, for open tasks, more than 180 days in
// the future means last year). The fixed threshold can misresolve dates
// legitimately near a year boundary; callers accept that.
package overdue

import (
	"strconv"
	"strings"
	"time"
)

const wraparoundDays = 180

// DaysLate returns how many whole days past its due date a task was
// completed. firstSeen anchors the year of the partial due token. Returns 0
// when on time, early, or when the token cannot be resolved.
func DaysLate(due string, firstSeen, completedAt time.Time) int {
	month, day, ok := splitDue(due)
	if !ok {
		return 0
	}
	dueAt, ok := makeDate(firstSeen.Year(), month, day)
	if !ok {
		return 0
	}
	if daysBetween(dueAt, firstSeen) > wraparoundDays {
		dueAt = dueAt.AddDate(1, 0, 0)
	}
	return max(0, daysBetween(dueAt, completedAt))
}

// DaysLateNow returns how many whole days overdue a still-open task is
// relative to now. The year rolls forward or backward so that the resolved
// due date lands within half a year of now.
func DaysLateNow(due string, now time.Time) int {
	month, day, ok := splitDue(due)
	if !ok {
		return 0
	}
	dueAt, ok := makeDate(now.Year(), month, day)
	if !ok {
		return 0
	}
	if daysBetween(dueAt, now) > wraparoundDays {
		dueAt = dueAt.AddDate(1, 0, 0)
	} else if daysBetween(now, dueAt) > wraparoundDays {
		dueAt = dueAt.AddDate(-1, 0, 0)
	}
	return max(0, daysBetween(dueAt, now))
}

// splitDue parses a normalized "MM/DD" token.
func splitDue(due string) (month, day int, ok bool) {
	parts := strings.Split(due, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return month, day, true
}

// makeDate builds a UTC midnight date, rejecting combinations that
// time.Date would silently normalize (e.g. 2/30).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

func daysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
