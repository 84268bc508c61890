package googlecal

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/utils/logging"
)

const (
	defaultCalendarID = "primary"
	maxResults        = 2500

	// All-day events count as a standard working day
	allDayStartHour = 9
	allDayEndHour   = 17
)

// TokenProvider yields a calendar-scoped OAuth token source for a user
type TokenProvider interface {
	TokenSource(ctx context.Context, userID types.UserID) (oauth2.TokenSource, error)
}

// Client fetches events from Google Calendar. It implements
// interfaces.CalendarSource.
type Client struct {
	tokens      TokenProvider
	calendarID  string
	colorLabels map[string]string
	newService  func(ctx context.Context, ts oauth2.TokenSource) (*calendar.Service, error)
}

var _ interfaces.CalendarSource = &Client{}

// Option is a functional option for Client
type Option func(*Client)

// WithCalendarID overrides the calendar to fetch from
func WithCalendarID(calendarID string) Option {
	return func(c *Client) {
		c.calendarID = calendarID
	}
}

// WithColorLabels sets the colorId-to-label table used to tag events. Labels
// come only from event colors; free-text summaries are never treated as
// labels to avoid false positives.
func WithColorLabels(colorLabels map[string]string) Option {
	return func(c *Client) {
		c.colorLabels = colorLabels
	}
}

// WithServiceFactory overrides calendar service construction (tests)
func WithServiceFactory(f func(ctx context.Context, ts oauth2.TokenSource) (*calendar.Service, error)) Option {
	return func(c *Client) {
		c.newService = f
	}
}

// New creates a Google Calendar source client
func New(tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		calendarID: defaultCalendarID,
		newService: func(ctx context.Context, ts oauth2.TokenSource) (*calendar.Service, error) {
			return calendar.NewService(ctx, option.WithTokenSource(ts))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEvents retrieves the user's events within [from, to). Recurring series
// are expanded into single instances so each occurrence is grouped on its own
// day.
func (c *Client) FetchEvents(ctx context.Context, userID types.UserID, from, to time.Time) ([]*model.CalendarEvent, error) {
	ts, err := c.tokens.TokenSource(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve calendar token", goerr.V("user_id", userID))
	}

	svc, err := c.newService(ctx, ts)
	if err != nil {
		return nil, goerr.Wrap(types.ErrSourceUnavailable, "failed to build calendar service",
			goerr.V("cause", err.Error()))
	}

	var events []*model.CalendarEvent
	pageToken := ""
	for {
		call := svc.Events.List(c.calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(maxResults).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, goerr.Wrap(types.ErrSourceUnavailable, "failed to list calendar events",
				goerr.V("user_id", userID), goerr.V("cause", err.Error()))
		}

		for _, item := range resp.Items {
			ev := c.convertEvent(userID, item)
			if ev == nil {
				continue
			}
			events = append(events, ev)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	logging.From(ctx).Debug("fetched calendar events",
		"user_id", userID, "count", len(events))

	return events, nil
}

// convertEvent maps one raw calendar event onto the engine's model. Cancelled
// events and events without usable time information return nil.
func (c *Client) convertEvent(userID types.UserID, item *calendar.Event) *model.CalendarEvent {
	if item.Status == "cancelled" || item.Id == "" {
		return nil
	}

	start, end, allDay, ok := eventTimes(item)
	if !ok {
		return nil
	}

	recurringID := item.RecurringEventId
	if recurringID == "" && len(item.Recurrence) > 0 {
		recurringID = item.Id
	}

	return &model.CalendarEvent{
		ID:               types.EventID(item.Id),
		UserID:           userID,
		Summary:          item.Summary,
		Description:      item.Description,
		Location:         item.Location,
		Start:            start,
		End:              end,
		Label:            c.colorLabels[item.ColorId],
		RecurringEventID: recurringID,
		Attendance:       attendanceOf(item),
		AllDay:           allDay,
	}
}

// eventTimes resolves start/end. All-day events are normalized to a 09:00 to
// 17:00 working window on their start date.
func eventTimes(item *calendar.Event) (start, end time.Time, allDay, ok bool) {
	if item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, false
	}

	if item.Start.DateTime != "" && item.End.DateTime != "" {
		s, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return time.Time{}, time.Time{}, false, false
		}
		e, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return time.Time{}, time.Time{}, false, false
		}
		return s, e, false, true
	}

	if item.Start.Date != "" && item.End.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", item.Start.Date, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, false, false
		}
		s := day.Add(allDayStartHour * time.Hour)
		e := day.Add(allDayEndHour * time.Hour)
		return s, e, true, true
	}

	return time.Time{}, time.Time{}, false, false
}

// attendanceOf reads the authorized user's RSVP from the attendee list. The
// calendar API marks the calendar owner with Self, so no extra identity
// lookup is needed. Events without a self attendee (self-created, no invites)
// count as accepted.
func attendanceOf(item *calendar.Event) model.AttendanceStatus {
	for _, attendee := range item.Attendees {
		if !attendee.Self {
			continue
		}
		switch strings.ToLower(attendee.ResponseStatus) {
		case "declined":
			return model.AttendanceDeclined
		case "tentative":
			return model.AttendanceTentative
		default:
			return model.AttendanceAccepted
		}
	}
	return model.AttendanceAccepted
}
