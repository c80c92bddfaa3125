package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mycampus/assistant/internal/port"
)

const baseURL = "https://www.googleapis.com/calendar/v3"

// GoogleProvider implements port.CalendarProvider against the Google
// Calendar REST API. Calls authenticate with the user's OAuth access token,
// passed per call because each request acts on a different user's calendar.
type GoogleProvider struct {
	httpClient *http.Client
}

// NewGoogleProvider creates a Google Calendar provider.
func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListCalendars returns the user's calendar list.
func (g *GoogleProvider) ListCalendars(ctx context.Context, token string) ([]port.CalendarInfo, error) {
	respBody, err := g.do(ctx, token, http.MethodGet, baseURL+"/users/me/calendarList", nil)
	if err != nil {
		return nil, fmt.Errorf("calendar: list calendars: %w", err)
	}

	var list struct {
		Items []struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
		} `json:"items"`
	}
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("calendar: decode calendar list: %w", err)
	}

	infos := make([]port.CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		infos = append(infos, port.CalendarInfo{ID: item.ID, Summary: item.Summary})
	}
	return infos, nil
}

// CreateCalendar creates a secondary calendar and returns its id.
func (g *GoogleProvider) CreateCalendar(ctx context.Context, token, summary, timeZone string) (string, error) {
	payload := map[string]string{"summary": summary, "timeZone": timeZone}
	respBody, err := g.do(ctx, token, http.MethodPost, baseURL+"/calendars", payload)
	if err != nil {
		return "", fmt.Errorf("calendar: create calendar: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("calendar: decode created calendar: %w", err)
	}
	return created.ID, nil
}

// UpdateCalendarSummary renames a calendar.
func (g *GoogleProvider) UpdateCalendarSummary(ctx context.Context, token, calendarID, summary string) error {
	payload := map[string]string{"summary": summary}
	_, err := g.do(ctx, token, http.MethodPatch, baseURL+"/calendars/"+calendarID, payload)
	if err != nil {
		return fmt.Errorf("calendar: update calendar: %w", err)
	}
	return nil
}

// DeleteCalendar permanently removes a secondary calendar.
func (g *GoogleProvider) DeleteCalendar(ctx context.Context, token, calendarID string) error {
	_, err := g.do(ctx, token, http.MethodDelete, baseURL+"/calendars/"+calendarID, nil)
	if err != nil {
		return fmt.Errorf("calendar: delete calendar: %w", err)
	}
	return nil
}

// InsertEvent creates an event and returns its id.
func (g *GoogleProvider) InsertEvent(ctx context.Context, token, calendarID string, ev port.CalendarEvent) (string, error) {
	url := fmt.Sprintf("%s/calendars/%s/events", baseURL, calendarID)
	respBody, err := g.do(ctx, token, http.MethodPost, url, eventBody(ev))
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("calendar: decode created event: %w", err)
	}
	return created.ID, nil
}

// PatchEvent updates an existing event in place.
func (g *GoogleProvider) PatchEvent(ctx context.Context, token, calendarID, eventID string, ev port.CalendarEvent) error {
	url := fmt.Sprintf("%s/calendars/%s/events/%s", baseURL, calendarID, eventID)
	_, err := g.do(ctx, token, http.MethodPatch, url, eventBody(ev))
	if err != nil {
		return fmt.Errorf("calendar: patch event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (g *GoogleProvider) DeleteEvent(ctx context.Context, token, calendarID, eventID string) error {
	url := fmt.Sprintf("%s/calendars/%s/events/%s", baseURL, calendarID, eventID)
	_, err := g.do(ctx, token, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("calendar: delete event: %w", err)
	}
	return nil
}

// eventBody converts a provider-neutral event into the Google wire shape.
func eventBody(ev port.CalendarEvent) map[string]any {
	body := map[string]any{
		"summary":     ev.Summary,
		"description": ev.Description,
		"start": map[string]string{
			"dateTime": ev.Start.Format(time.RFC3339),
			"timeZone": ev.TimeZone,
		},
		"end": map[string]string{
			"dateTime": ev.End.Format(time.RFC3339),
			"timeZone": ev.TimeZone,
		},
	}
	if len(ev.Recurrence) > 0 {
		body["recurrence"] = ev.Recurrence
	}
	return body
}

func (g *GoogleProvider) do(ctx context.Context, token, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("google calendar API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
