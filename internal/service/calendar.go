package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/port"
)

const (
	calendarTimeZone    = "Asia/Jakarta"
	defaultCalendarName = "My Campus"
)

// hariToRRule maps Indonesian day names to RRULE BYDAY codes.
var hariToRRule = map[string]string{
	"Senin":  "MO",
	"Selasa": "TU",
	"Rabu":   "WE",
	"Kamis":  "TH",
	"Jumat":  "FR",
	"Sabtu":  "SA",
	"Minggu": "SU",
}

// hariIndex gives each day its position in the week, Senin first.
var hariIndex = map[string]int{
	"Senin": 0, "Selasa": 1, "Rabu": 2, "Kamis": 3, "Jumat": 4, "Sabtu": 5, "Minggu": 6,
}

// CalendarService mirrors the user's todos and class schedule into Google
// Calendar. Every operation is best-effort: calendar failures are logged and
// never fail the primary mutation, and users without a Google token are
// skipped entirely.
type CalendarService struct {
	provider port.CalendarProvider
	store    *store.PostgresStore
	location *time.Location
}

// NewCalendarService creates a calendar synchronizer.
func NewCalendarService(provider port.CalendarProvider, store *store.PostgresStore) *CalendarService {
	loc, err := time.LoadLocation(calendarTimeZone)
	if err != nil {
		loc = time.FixedZone("WIB", 7*3600)
	}
	return &CalendarService{provider: provider, store: store, location: loc}
}

func baseName(user *domain.User) string {
	if user.CalendarName != "" {
		return user.CalendarName
	}
	return defaultCalendarName
}

// EnsureTodoCalendar returns the id of the user's dedicated reminder
// calendar, reusing an existing one by name or creating it.
func (s *CalendarService) EnsureTodoCalendar(ctx context.Context, user *domain.User) (string, error) {
	if user.TodoCalendarID != "" {
		return user.TodoCalendarID, nil
	}

	summary := fmt.Sprintf("%s - Reminder", baseName(user))

	calendars, err := s.provider.ListCalendars(ctx, user.AccessToken)
	if err != nil {
		return "", fmt.Errorf("list calendars: %w", err)
	}
	var calendarID string
	for _, cal := range calendars {
		if cal.Summary == summary {
			calendarID = cal.ID
			break
		}
	}

	if calendarID == "" {
		calendarID, err = s.provider.CreateCalendar(ctx, user.AccessToken, summary, calendarTimeZone)
		if err != nil {
			return "", fmt.Errorf("create reminder calendar: %w", err)
		}
	}

	if err := s.store.SetUserTodoCalendar(ctx, user.ID, calendarID); err != nil {
		return "", fmt.Errorf("save reminder calendar id: %w", err)
	}
	user.TodoCalendarID = calendarID
	return calendarID, nil
}

// todoEvent builds the one-hour reminder event for a todo deadline.
func (s *CalendarService) todoEvent(todo *domain.Todo) port.CalendarEvent {
	start := todo.Tenggat.In(s.location)
	return port.CalendarEvent{
		Summary:     todo.Nama,
		Description: todo.Deskripsi,
		Start:       start,
		End:         start.Add(time.Hour),
		TimeZone:    calendarTimeZone,
	}
}

// SyncTodoCreated creates a reminder event for a new todo with a deadline.
func (s *CalendarService) SyncTodoCreated(ctx context.Context, user *domain.User, todo *domain.Todo) {
	if user.AccessToken == "" || todo.Tenggat == nil {
		return
	}

	calendarID, err := s.EnsureTodoCalendar(ctx, user)
	if err != nil {
		slog.Error("todo calendar unavailable", "user_id", user.ID, "error", err)
		return
	}

	eventID, err := s.provider.InsertEvent(ctx, user.AccessToken, calendarID, s.todoEvent(todo))
	if err != nil {
		slog.Error("todo event create failed", "todo_id", todo.ID, "error", err)
		return
	}

	if err := s.store.SetTodoEvent(ctx, todo.ID, eventID); err != nil {
		slog.Error("todo event id save failed", "todo_id", todo.ID, "error", err)
		return
	}
	todo.GoogleEventID = eventID
}

// SyncTodoUpdated patches the reminder event after a todo changes. Removing
// the deadline deletes the event to keep the calendar accurate.
func (s *CalendarService) SyncTodoUpdated(ctx context.Context, user *domain.User, todo *domain.Todo) {
	if user.AccessToken == "" {
		return
	}

	if todo.GoogleEventID == "" {
		s.SyncTodoCreated(ctx, user, todo)
		return
	}

	calendarID, err := s.EnsureTodoCalendar(ctx, user)
	if err != nil {
		slog.Error("todo calendar unavailable", "user_id", user.ID, "error", err)
		return
	}

	if todo.Tenggat == nil {
		if err := s.provider.DeleteEvent(ctx, user.AccessToken, calendarID, todo.GoogleEventID); err != nil {
			slog.Error("todo event delete failed", "todo_id", todo.ID, "error", err)
		}
		if err := s.store.SetTodoEvent(ctx, todo.ID, ""); err != nil {
			slog.Error("todo event id clear failed", "todo_id", todo.ID, "error", err)
		}
		todo.GoogleEventID = ""
		return
	}

	if err := s.provider.PatchEvent(ctx, user.AccessToken, calendarID, todo.GoogleEventID, s.todoEvent(todo)); err != nil {
		slog.Error("todo event update failed", "todo_id", todo.ID, "error", err)
	}
}

// SyncTodoDeleted removes the reminder event of a deleted todo.
func (s *CalendarService) SyncTodoDeleted(ctx context.Context, user *domain.User, todo *domain.Todo) {
	if user.AccessToken == "" || todo.GoogleEventID == "" || user.TodoCalendarID == "" {
		return
	}
	if err := s.provider.DeleteEvent(ctx, user.AccessToken, user.TodoCalendarID, todo.GoogleEventID); err != nil {
		slog.Error("todo event delete failed", "todo_id", todo.ID, "error", err)
	}
}

// EnsureSemesterCalendar returns the semester's dedicated calendar id,
// creating the calendar when missing.
func (s *CalendarService) EnsureSemesterCalendar(ctx context.Context, user *domain.User, semester *domain.Semester) (string, error) {
	if semester.GoogleCalendarID != "" {
		return semester.GoogleCalendarID, nil
	}

	summary := fmt.Sprintf("%s - %s %s", baseName(user), semester.Tipe, semester.TahunAjaran)
	calendarID, err := s.provider.CreateCalendar(ctx, user.AccessToken, summary, calendarTimeZone)
	if err != nil {
		return "", fmt.Errorf("create semester calendar: %w", err)
	}

	if err := s.store.SetSemesterCalendar(ctx, semester.ID, calendarID); err != nil {
		return "", fmt.Errorf("save semester calendar id: %w", err)
	}
	semester.GoogleCalendarID = calendarID
	return calendarID, nil
}

// firstOccurrence returns the first date on or after start that falls on the
// given Indonesian day name.
func firstOccurrence(start time.Time, hari string) (time.Time, bool) {
	target, ok := hariIndex[hari]
	if !ok {
		return time.Time{}, false
	}
	// time.Weekday counts Sunday=0; shift so Senin=0 like hariIndex.
	current := (int(start.Weekday()) + 6) % 7
	daysAhead := target - current
	if daysAhead < 0 {
		daysAhead += 7
	}
	return start.AddDate(0, 0, daysAhead), true
}

// classEvent builds the weekly recurring event for one class, bounded by the
// semester's end date.
func (s *CalendarService) classEvent(semester *domain.Semester, item *domain.ScheduleItem) (port.CalendarEvent, bool) {
	rruleDay, ok := hariToRRule[item.Hari]
	if !ok {
		return port.CalendarEvent{}, false
	}

	first, ok := firstOccurrence(semester.TanggalMulai, item.Hari)
	if !ok {
		return port.CalendarEvent{}, false
	}

	start := time.Date(first.Year(), first.Month(), first.Day(),
		item.JamMulai.Hour(), item.JamMulai.Minute(), item.JamMulai.Second(), 0, s.location)
	end := time.Date(first.Year(), first.Month(), first.Day(),
		item.JamSelesai.Hour(), item.JamSelesai.Minute(), item.JamSelesai.Second(), 0, s.location)

	until := semester.TanggalSelesai.Format("20060102")

	return port.CalendarEvent{
		Summary:     item.Nama,
		Description: fmt.Sprintf("SKS: %d", item.SKS),
		Start:       start,
		End:         end,
		TimeZone:    calendarTimeZone,
		Recurrence:  []string{fmt.Sprintf("RRULE:FREQ=WEEKLY;BYDAY=%s;UNTIL=%sT235959Z", rruleDay, until)},
	}, true
}

// SyncScheduleCreated creates the recurring event for a new class item.
func (s *CalendarService) SyncScheduleCreated(ctx context.Context, user *domain.User, semester *domain.Semester, item *domain.ScheduleItem) {
	if user.AccessToken == "" || semester == nil {
		return
	}

	calendarID, err := s.EnsureSemesterCalendar(ctx, user, semester)
	if err != nil {
		slog.Error("semester calendar unavailable", "semester_id", semester.ID, "error", err)
		return
	}

	event, ok := s.classEvent(semester, item)
	if !ok {
		slog.Error("invalid class day", "jadwal_id", item.ID, "hari", item.Hari)
		return
	}

	eventID, err := s.provider.InsertEvent(ctx, user.AccessToken, calendarID, event)
	if err != nil {
		slog.Error("class event create failed", "jadwal_id", item.ID, "error", err)
		return
	}

	if err := s.store.SetScheduleEvent(ctx, item.ID, eventID); err != nil {
		slog.Error("class event id save failed", "jadwal_id", item.ID, "error", err)
		return
	}
	item.GoogleEventID = eventID
}

// SyncScheduleUpdated patches the recurring event after a class item changes.
func (s *CalendarService) SyncScheduleUpdated(ctx context.Context, user *domain.User, semester *domain.Semester, item *domain.ScheduleItem) {
	if user.AccessToken == "" || semester == nil {
		return
	}

	if item.GoogleEventID == "" {
		s.SyncScheduleCreated(ctx, user, semester, item)
		return
	}
	if semester.GoogleCalendarID == "" {
		return
	}

	event, ok := s.classEvent(semester, item)
	if !ok {
		slog.Error("invalid class day", "jadwal_id", item.ID, "hari", item.Hari)
		return
	}

	if err := s.provider.PatchEvent(ctx, user.AccessToken, semester.GoogleCalendarID, item.GoogleEventID, event); err != nil {
		slog.Error("class event update failed", "jadwal_id", item.ID, "error", err)
	}
}

// SyncScheduleDeleted removes the recurring event of a deleted class item.
func (s *CalendarService) SyncScheduleDeleted(ctx context.Context, user *domain.User, semester *domain.Semester, item *domain.ScheduleItem) {
	if user.AccessToken == "" || item.GoogleEventID == "" || semester == nil || semester.GoogleCalendarID == "" {
		return
	}
	if err := s.provider.DeleteEvent(ctx, user.AccessToken, semester.GoogleCalendarID, item.GoogleEventID); err != nil {
		slog.Error("class event delete failed", "jadwal_id", item.ID, "error", err)
	}
}

// SyncSemesterUpdated renames the semester calendar and re-patches every
// class event so date changes propagate.
func (s *CalendarService) SyncSemesterUpdated(ctx context.Context, user *domain.User, semester *domain.Semester) {
	if user.AccessToken == "" {
		return
	}

	if semester.GoogleCalendarID == "" {
		if _, err := s.EnsureSemesterCalendar(ctx, user, semester); err != nil {
			slog.Error("semester calendar create failed", "semester_id", semester.ID, "error", err)
		}
	} else {
		summary := fmt.Sprintf("%s - %s %s", baseName(user), semester.Tipe, semester.TahunAjaran)
		if err := s.provider.UpdateCalendarSummary(ctx, user.AccessToken, semester.GoogleCalendarID, summary); err != nil {
			slog.Error("semester calendar rename failed", "semester_id", semester.ID, "error", err)
		}
	}

	items, err := s.store.ListScheduleBySemester(ctx, semester.ID)
	if err != nil {
		slog.Error("list semester schedule failed", "semester_id", semester.ID, "error", err)
		return
	}
	for i := range items {
		s.SyncScheduleUpdated(ctx, user, semester, &items[i])
	}
}

// SyncSemesterDeleted removes the semester's dedicated calendar.
func (s *CalendarService) SyncSemesterDeleted(ctx context.Context, user *domain.User, semester *domain.Semester) {
	if user.AccessToken == "" || semester.GoogleCalendarID == "" {
		return
	}
	if err := s.provider.DeleteCalendar(ctx, user.AccessToken, semester.GoogleCalendarID); err != nil {
		slog.Error("semester calendar delete failed", "semester_id", semester.ID, "error", err)
	}
}

// ResyncAll re-synchronizes the user's reminder calendar and every semester.
// Used after a calendar name change or as a manual trigger.
func (s *CalendarService) ResyncAll(ctx context.Context, user *domain.User) int {
	if user.AccessToken == "" {
		return 0
	}

	synced := 0

	calendarID, err := s.EnsureTodoCalendar(ctx, user)
	if err != nil {
		slog.Error("todo calendar unavailable", "user_id", user.ID, "error", err)
	} else {
		summary := fmt.Sprintf("%s - Reminder", baseName(user))
		if err := s.provider.UpdateCalendarSummary(ctx, user.AccessToken, calendarID, summary); err != nil {
			slog.Error("reminder calendar rename failed", "user_id", user.ID, "error", err)
		}

		todos, err := s.store.ListTodosByUser(ctx, user.ID)
		if err != nil {
			slog.Error("list todos failed", "user_id", user.ID, "error", err)
		} else {
			for i := range todos {
				todo := &todos[i]
				if todo.Tenggat == nil || todo.GoogleEventID != "" {
					continue
				}
				s.SyncTodoCreated(ctx, user, todo)
				if todo.GoogleEventID != "" {
					synced++
				}
			}
		}
	}

	semesters, err := s.store.ListSemestersByUser(ctx, user.ID)
	if err != nil {
		slog.Error("list semesters failed", "user_id", user.ID, "error", err)
		return synced
	}
	for i := range semesters {
		s.SyncSemesterUpdated(ctx, user, &semesters[i])
	}

	return synced
}
