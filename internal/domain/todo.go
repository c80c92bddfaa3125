package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Todo is a task with an optional deadline. Todos with a deadline are
// mirrored into the user's reminder calendar.
type Todo struct {
	ID            int64      `json:"id_todo"    db:"id_todo"`
	UserID        int64      `json:"id_user"    db:"id_user"`
	Nama          string     `json:"nama"       db:"nama"`
	Tipe          string     `json:"tipe"       db:"tipe"`
	Tenggat       *time.Time `json:"tenggat"    db:"tenggat"`
	Deskripsi     string     `json:"deskripsi"  db:"deskripsi"`
	GoogleEventID string     `json:"-"          db:"google_event_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// EmbeddingOwner implements Embeddable.
func (t *Todo) EmbeddingOwner() *int64 { return &t.UserID }

// EmbeddingKind implements Embeddable.
func (t *Todo) EmbeddingKind() string { return SourceTodo }

// EmbeddingSourceID implements Embeddable.
func (t *Todo) EmbeddingSourceID() string { return strconv.FormatInt(t.ID, 10) }

// EmbeddingText implements Embeddable. The deadline renders as
// "2006-01-02 15:04:05", or empty when the todo has none.
func (t *Todo) EmbeddingText() string {
	due := ""
	if t.Tenggat != nil {
		due = t.Tenggat.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("Todo: %s. Type: %s. Due: %s. Description: %s.",
		t.Nama, t.Tipe, due, t.Deskripsi)
}
