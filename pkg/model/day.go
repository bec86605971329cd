package model

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dayLayout = "2006-01-02"

// Day is a calendar date without a time component. Mail dates, first-seen
// and last-seen markers are all whole days; comparing anything finer would
// be meaningless for the snapshot walk.
type Day struct {
	time.Time
}

// ParseDay parses a "YYYY-MM-DD" string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("failed to parse day %q: %w", s, err)
	}
	return Day{Time: t}, nil
}

// DayOf truncates a timestamp to its calendar date.
func DayOf(t time.Time) Day {
	return Day{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dayLayout)
}

// DaysUntil returns the whole-day distance to other (negative if other is
// earlier).
func (d Day) DaysUntil(other Day) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Day.
func (d *Day) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Day.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Day.
func (d *Day) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDay(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Day.
func (d Day) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
