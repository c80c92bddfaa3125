package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Semester is an academic period. Each semester gets its own Google
// Calendar holding the recurring class events that fall inside it.
type Semester struct {
	ID               int64     `json:"id_semester"   db:"id_semester"`
	UserID           int64     `json:"id_user"       db:"id_user"`
	Tipe             string    `json:"tipe"          db:"tipe"` // Ganjil / Genap
	TahunAjaran      string    `json:"tahun_ajaran"  db:"tahun_ajaran"`
	TanggalMulai     time.Time `json:"tanggal_mulai"   db:"tanggal_mulai"`
	TanggalSelesai   time.Time `json:"tanggal_selesai" db:"tanggal_selesai"`
	GoogleCalendarID string    `json:"-"             db:"google_calendar_id"`
	CreatedAt        time.Time `json:"created_at"    db:"created_at"`
}

// ScheduleItem is one weekly class slot (jadwal matkul).
type ScheduleItem struct {
	ID            int64     `json:"id_jadwal"   db:"id_jadwal"`
	UserID        int64     `json:"id_user"     db:"id_user"`
	SemesterID    *int64    `json:"id_semester" db:"id_semester"`
	Hari          string    `json:"hari"        db:"hari"`
	Nama          string    `json:"nama"        db:"nama"`
	JamMulai      time.Time `json:"jam_mulai"   db:"jam_mulai"`
	JamSelesai    time.Time `json:"jam_selesai" db:"jam_selesai"`
	SKS           int       `json:"sks"         db:"sks"`
	GoogleEventID string    `json:"-"           db:"google_event_id"`
	CreatedAt     time.Time `json:"created_at"  db:"created_at"`
}

// EmbeddingOwner implements Embeddable.
func (j *ScheduleItem) EmbeddingOwner() *int64 { return &j.UserID }

// EmbeddingKind implements Embeddable.
func (j *ScheduleItem) EmbeddingKind() string { return SourceSchedule }

// EmbeddingSourceID implements Embeddable.
func (j *ScheduleItem) EmbeddingSourceID() string { return strconv.FormatInt(j.ID, 10) }

// EmbeddingText implements Embeddable.
func (j *ScheduleItem) EmbeddingText() string {
	return fmt.Sprintf("Jadwal Mata Kuliah: %s. Hari: %s. Mulai: %s. Selesai: %s. SKS: %d.",
		j.Nama, j.Hari, j.JamMulai.Format("15:04:05"), j.JamSelesai.Format("15:04:05"), j.SKS)
}
