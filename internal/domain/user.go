package domain

import (
	"fmt"
	"strconv"
	"time"
)

// User represents a student profile.
type User struct {
	ID             int64     `json:"id_user"     db:"id_user"`
	Nama           string    `json:"nama"        db:"nama"`
	Email          string    `json:"email"       db:"email"`
	Telepon        string    `json:"telepon"     db:"telepon"`
	Bio            string    `json:"bio"         db:"bio"`
	Lokasi         string    `json:"lokasi"      db:"lokasi"`
	Provider       string    `json:"provider"    db:"provider"`
	ProviderID     string    `json:"provider_id" db:"provider_id"`
	AccessToken    string    `json:"-"           db:"access_token"` // never serialized to JSON
	RefreshToken   string    `json:"-"           db:"refresh_token"`
	CalendarName   string    `json:"calendar_name"    db:"calendar_name"`
	TodoCalendarID string    `json:"todo_calendar_id" db:"todo_calendar_id"`
	CreatedAt      time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"  db:"updated_at"`
}

// EmbeddingOwner implements Embeddable.
func (u *User) EmbeddingOwner() *int64 { return &u.ID }

// EmbeddingKind implements Embeddable.
func (u *User) EmbeddingKind() string { return SourceUser }

// EmbeddingSourceID implements Embeddable.
func (u *User) EmbeddingSourceID() string { return strconv.FormatInt(u.ID, 10) }

// EmbeddingText implements Embeddable.
func (u *User) EmbeddingText() string {
	return fmt.Sprintf("Nama: %s. Email: %s. Telepon: %s. Bio: %s. Lokasi: %s.",
		u.Nama, u.Email, u.Telepon, u.Bio, u.Lokasi)
}

// TokenPair holds the OAuth2 tokens returned after code exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
