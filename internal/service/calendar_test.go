package service

import (
	"testing"
	"time"

	"github.com/mycampus/assistant/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstOccurrence(t *testing.T) {
	// 2025-09-03 is a Wednesday (Rabu).
	start := date(2025, time.September, 3)

	tests := []struct {
		hari string
		want time.Time
	}{
		{"Rabu", date(2025, time.September, 3)},   // same day
		{"Kamis", date(2025, time.September, 4)},  // next day
		{"Senin", date(2025, time.September, 8)},  // wraps into next week
		{"Minggu", date(2025, time.September, 7)}, // end of week
	}

	for _, tt := range tests {
		got, ok := firstOccurrence(start, tt.hari)
		if !ok {
			t.Errorf("firstOccurrence(%s) not ok", tt.hari)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("firstOccurrence(%s) = %s, want %s", tt.hari, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestFirstOccurrenceInvalidDay(t *testing.T) {
	if _, ok := firstOccurrence(date(2025, time.September, 3), "Montag"); ok {
		t.Error("firstOccurrence accepted an unknown day name")
	}
}

func TestClassEventRecurrence(t *testing.T) {
	svc := NewCalendarService(nil, nil)

	semester := &domain.Semester{
		ID:             1,
		TanggalMulai:   date(2025, time.September, 3),
		TanggalSelesai: date(2025, time.December, 31),
	}
	item := &domain.ScheduleItem{
		ID:         3,
		Hari:       "Senin",
		Nama:       "Algoritma",
		JamMulai:   time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC),
		JamSelesai: time.Date(0, 1, 1, 9, 40, 0, 0, time.UTC),
		SKS:        3,
	}

	event, ok := svc.classEvent(semester, item)
	if !ok {
		t.Fatal("classEvent not ok")
	}

	if event.Summary != "Algoritma" {
		t.Errorf("summary = %q", event.Summary)
	}
	if event.Description != "SKS: 3" {
		t.Errorf("description = %q", event.Description)
	}
	if len(event.Recurrence) != 1 {
		t.Fatalf("recurrence lines = %d, want 1", len(event.Recurrence))
	}
	want := "RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20251231T235959Z"
	if event.Recurrence[0] != want {
		t.Errorf("recurrence = %q, want %q", event.Recurrence[0], want)
	}

	// First Senin on or after Wed 2025-09-03 is 2025-09-08.
	if event.Start.Year() != 2025 || event.Start.Month() != time.September || event.Start.Day() != 8 {
		t.Errorf("start date = %s, want 2025-09-08", event.Start.Format("2006-01-02"))
	}
	if event.Start.Hour() != 8 || event.Start.Minute() != 0 {
		t.Errorf("start clock = %s, want 08:00", event.Start.Format("15:04"))
	}
	if event.End.Hour() != 9 || event.End.Minute() != 40 {
		t.Errorf("end clock = %s, want 09:40", event.End.Format("15:04"))
	}
	if event.TimeZone != calendarTimeZone {
		t.Errorf("timezone = %q, want %q", event.TimeZone, calendarTimeZone)
	}
}

func TestClassEventInvalidDay(t *testing.T) {
	svc := NewCalendarService(nil, nil)

	semester := &domain.Semester{TanggalMulai: date(2025, time.September, 3), TanggalSelesai: date(2025, time.December, 31)}
	if _, ok := svc.classEvent(semester, &domain.ScheduleItem{Hari: "Funday"}); ok {
		t.Error("classEvent accepted an unknown day name")
	}
}

func TestTodoEventSpansOneHour(t *testing.T) {
	svc := NewCalendarService(nil, nil)

	due := time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)
	todo := &domain.Todo{Nama: "Submit report", Deskripsi: "Final", Tenggat: &due}

	event := svc.todoEvent(todo)
	if event.Summary != "Submit report" || event.Description != "Final" {
		t.Errorf("event = %+v", event)
	}
	if got := event.End.Sub(event.Start); got != time.Hour {
		t.Errorf("duration = %s, want 1h", got)
	}
}
