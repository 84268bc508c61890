package types

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const dayLayout = "2006-01-02"

// Day is a calendar day in the event's local date, formatted as YYYY-MM-DD.
// It is the grouping and duplicate-detection key alongside project and task.
type Day string

// DayOf returns the Day of t in t's own location
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// ParseDay parses a YYYY-MM-DD string into a Day
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", goerr.Wrap(err, "invalid day format", goerr.V("day", s))
	}
	return Day(s), nil
}

// Validate checks if the Day is well-formed
func (d Day) Validate() error {
	_, err := ParseDay(string(d))
	return err
}

// Time returns the midnight of the day in the given location
func (d Day) Time(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, string(d), loc)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid day", goerr.V("day", string(d)))
	}
	return t, nil
}

// String returns the string representation of Day
func (d Day) String() string {
	return string(d)
}
