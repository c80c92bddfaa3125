package port

import (
	"context"
	"time"
)

// CalendarEvent is the provider-neutral shape of a calendar event.
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Recurrence  []string // RRULE lines, empty for one-off events
}

// CalendarInfo identifies one calendar in the user's calendar list.
type CalendarInfo struct {
	ID      string
	Summary string
}

// CalendarProvider abstracts the external calendar backend. Every call
// operates on behalf of a user via their OAuth access token.
type CalendarProvider interface {
	// ListCalendars returns the user's calendar list.
	ListCalendars(ctx context.Context, token string) ([]CalendarInfo, error)

	// CreateCalendar creates a secondary calendar and returns its id.
	CreateCalendar(ctx context.Context, token, summary, timeZone string) (string, error)

	// UpdateCalendarSummary renames a calendar.
	UpdateCalendarSummary(ctx context.Context, token, calendarID, summary string) error

	// DeleteCalendar permanently removes a secondary calendar.
	DeleteCalendar(ctx context.Context, token, calendarID string) error

	// InsertEvent creates an event and returns its id.
	InsertEvent(ctx context.Context, token, calendarID string, ev CalendarEvent) (string, error)

	// PatchEvent updates an existing event in place.
	PatchEvent(ctx context.Context, token, calendarID, eventID string, ev CalendarEvent) error

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, token, calendarID, eventID string) error
}
