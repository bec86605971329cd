package overdue

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysLateOnTime(t *testing.T) {
	firstSeen := date(2025, time.November, 1)
	completed := date(2025, time.November, 20)

	if got := DaysLate("11/26", firstSeen, completed); got != 0 {
		t.Errorf("Expected 0 days late for early completion, got %d", got)
	}
	if got := DaysLate("11/20", firstSeen, completed); got != 0 {
		t.Errorf("Expected 0 days late for on-time completion, got %d", got)
	}
}

func TestDaysLateLate(t *testing.T) {
	firstSeen := date(2025, time.November, 1)
	completed := date(2025, time.November, 30)

	if got := DaysLate("11/26", firstSeen, completed); got != 4 {
		t.Errorf("Expected 4 days late, got %d", got)
	}
}

func TestDaysLateYearWraparound(t *testing.T) {
	// A January due token seen in November means next January, not last.
	firstSeen := date(2025, time.November, 20)
	completed := date(2026, time.January, 10)

	if got := DaysLate("01/05", firstSeen, completed); got != 5 {
		t.Errorf("Expected 5 days late across the year boundary, got %d", got)
	}
}

func TestDaysLateInvalidDue(t *testing.T) {
	firstSeen := date(2025, time.November, 1)
	completed := date(2025, time.December, 1)

	for _, due := range []string{"", "1126", "13/40", "2/30", "notadate", "11/26/25"} {
		if got := DaysLate(due, firstSeen, completed); got != 0 {
			t.Errorf("Expected 0 for unresolvable due %q, got %d", due, got)
		}
	}
}

func TestDaysLateNow(t *testing.T) {
	now := date(2025, time.December, 10)

	if got := DaysLateNow("11/26", now); got != 14 {
		t.Errorf("Expected 14 days overdue, got %d", got)
	}
	if got := DaysLateNow("12/31", now); got != 0 {
		t.Errorf("Expected 0 for a future due date, got %d", got)
	}
}

func TestDaysLateNowBackwardWraparound(t *testing.T) {
	// A December due token evaluated in January refers to last December.
	now := date(2026, time.January, 5)

	if got := DaysLateNow("12/20", now); got != 16 {
		t.Errorf("Expected 16 days overdue across the year boundary, got %d", got)
	}
}

func TestDaysLateNowForwardWraparound(t *testing.T) {
	// A January due token evaluated in December means next January.
	now := date(2025, time.December, 20)

	if got := DaysLateNow("01/05", now); got != 0 {
		t.Errorf("Expected 0 for a due date rolled into next year, got %d", got)
	}
}
