package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// AttendanceStatus is the user's RSVP state on a calendar event
type AttendanceStatus string

const (
	AttendanceAccepted  AttendanceStatus = "accepted"
	AttendanceDeclined  AttendanceStatus = "declined"
	AttendanceTentative AttendanceStatus = "tentative"
)

// CalendarEvent is one event fetched from the calendar source. Immutable once
// fetched; the engine never writes back to the calendar.
type CalendarEvent struct {
	ID          types.EventID
	UserID      types.UserID
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	// Label is the calendar-label tag extracted by the source (color label
	// or explicit tag), used for explicit mapping matches. May be empty.
	Label string

	// RecurringEventID is the base event ID for recurring series, used for
	// permanent recurring mappings. Empty for one-off events.
	RecurringEventID string

	Attendance AttendanceStatus
	AllDay     bool
}

// Validate checks if the CalendarEvent is well-formed
func (x *CalendarEvent) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid event ID")
	}
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if x.End.Before(x.Start) {
		return goerr.New("event end must not be before start",
			goerr.V("id", x.ID), goerr.V("start", x.Start), goerr.V("end", x.End))
	}
	return nil
}

// Duration returns the event length
func (x *CalendarEvent) Duration() time.Duration {
	return x.End.Sub(x.Start)
}

// Day returns the calendar day of the event start, in the event's location
func (x *CalendarEvent) Day() types.Day {
	return types.DayOf(x.Start)
}

// IsMultiDay reports whether the event spans more than one calendar day
func (x *CalendarEvent) IsMultiDay() bool {
	return types.DayOf(x.Start) != types.DayOf(x.End)
}
