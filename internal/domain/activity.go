package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Activity is a club (UKM) membership: which organization and which role.
type Activity struct {
	ID        int64     `json:"id_ukm"     db:"id_ukm"`
	UserID    int64     `json:"id_user"    db:"id_user"`
	Nama      string    `json:"nama"       db:"nama"`
	Jabatan   string    `json:"jabatan"    db:"jabatan"`
	Deskripsi string    `json:"deskripsi"  db:"deskripsi"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EmbeddingOwner implements Embeddable.
func (a *Activity) EmbeddingOwner() *int64 { return &a.UserID }

// EmbeddingKind implements Embeddable.
func (a *Activity) EmbeddingKind() string { return SourceActivity }

// EmbeddingSourceID implements Embeddable.
func (a *Activity) EmbeddingSourceID() string { return strconv.FormatInt(a.ID, 10) }

// EmbeddingText implements Embeddable.
func (a *Activity) EmbeddingText() string {
	return fmt.Sprintf("UKM: %s. Jabatan: %s. Description: %s.",
		a.Nama, a.Jabatan, a.Deskripsi)
}
