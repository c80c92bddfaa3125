package domain

import "time"

// Source type tags stored on embedding rows. These are wire values shared
// with the search index — changing one orphans every row written under it.
const (
	SourceUser     = "user"
	SourceTodo     = "todo"
	SourceSchedule = "jadwal"
	SourceActivity = "ukm"
)

// EmbeddingRecord is one entry in the pgvector search index: the canonical
// text of a domain entity plus its embedding vector, keyed by
// (source_type, source_id) with at most one row per key.
type EmbeddingRecord struct {
	ID         int64     `json:"id_embedding" db:"id_embedding"`
	UserID     *int64    `json:"id_user"      db:"id_user"`
	SourceType string    `json:"source_type"  db:"source_type"`
	SourceID   string    `json:"source_id"    db:"source_id"`
	Text       string    `json:"text_original" db:"text_original"`
	Vector     []float32 `json:"-"            db:"embedding"`
	CreatedAt  time.Time `json:"created_at"   db:"created_at"`
}

// Embeddable is implemented by every entity that is mirrored into the
// search index. The synchronizer only needs these four facts; the templates
// behind EmbeddingText must be deterministic so that re-running them on
// unchanged data produces byte-identical text.
type Embeddable interface {
	// EmbeddingOwner returns the owning user's id, or nil for unowned rows.
	EmbeddingOwner() *int64

	// EmbeddingKind returns the source type tag (SourceUser, SourceTodo, ...).
	EmbeddingKind() string

	// EmbeddingSourceID returns the entity's primary key as a string.
	EmbeddingSourceID() string

	// EmbeddingText renders the canonical text that gets embedded.
	EmbeddingText() string
}
