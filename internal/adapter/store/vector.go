package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/port"
)

// VectorStore handles the embedding index backed by pgvector. One row per
// source record, keyed by (source_type, source_id).
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store over an existing Postgres connection.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

const embeddingColumns = `id_embedding, id_user, source_type, source_id, text_original, created_at`

// UpsertByKey inserts or replaces the embedding row for a source record.
// The unique constraint on (source_type, source_id) guarantees at most one
// row per source regardless of how many times it is re-synced.
func (v *VectorStore) UpsertByKey(ctx context.Context, ownerID *int64, sourceType, sourceID, text string, vector []float32) (*domain.EmbeddingRecord, error) {
	if len(vector) != v.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vector), v.dimension)
	}

	query := `
		INSERT INTO rags_embeddings (id_user, source_type, source_id, text_original, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (source_type, source_id) DO UPDATE SET
			id_user = EXCLUDED.id_user,
			text_original = EXCLUDED.text_original,
			embedding = EXCLUDED.embedding
		RETURNING ` + embeddingColumns

	var rec domain.EmbeddingRecord
	err := v.store.db.QueryRowContext(ctx, query,
		ownerID, sourceType, sourceID, text, vectorToString(vector)).
		Scan(&rec.ID, &rec.UserID, &rec.SourceType, &rec.SourceID, &rec.Text, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert embedding %s/%s: %w", sourceType, sourceID, err)
	}
	rec.Vector = vector
	return &rec, nil
}

// DeleteByKey removes the embedding row for a source record, if present.
func (v *VectorStore) DeleteByKey(ctx context.Context, sourceType, sourceID string) error {
	_, err := v.store.db.ExecContext(ctx,
		`DELETE FROM rags_embeddings WHERE source_type = $1 AND source_id = $2`,
		sourceType, sourceID)
	if err != nil {
		return fmt.Errorf("delete embedding %s/%s: %w", sourceType, sourceID, err)
	}
	return nil
}

// DeleteAllByOwner removes every embedding row belonging to a user. Called
// when the user account is deleted.
func (v *VectorStore) DeleteAllByOwner(ctx context.Context, ownerID int64) error {
	_, err := v.store.db.ExecContext(ctx,
		`DELETE FROM rags_embeddings WHERE id_user = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("delete embeddings for user %d: %w", ownerID, err)
	}
	return nil
}

// NearestNeighbors returns the k rows closest to the query vector by cosine
// distance, matching the metric of the HNSW index. When ownerID is set, the
// search is restricted to that user's rows plus rows without an owner.
// Ties on distance break by insertion order.
func (v *VectorStore) NearestNeighbors(ctx context.Context, vector []float32, k int, ownerID *int64) ([]domain.EmbeddingRecord, error) {
	if len(vector) != v.dimension {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(vector), v.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + embeddingColumns + `, embedding <=> $1::vector AS distance
		FROM rags_embeddings`
	args := []any{vectorToString(vector)}
	if ownerID != nil {
		query += ` WHERE id_user = $2 OR id_user IS NULL`
		args = append(args, *ownerID)
	}
	query += fmt.Sprintf(` ORDER BY distance, id_embedding LIMIT $%d`, len(args)+1)
	args = append(args, k)

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var distance float64
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SourceType, &rec.SourceID,
			&rec.Text, &rec.CreatedAt, &distance); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByKey fetches the embedding row for a source record.
func (v *VectorStore) GetByKey(ctx context.Context, sourceType, sourceID string) (*domain.EmbeddingRecord, error) {
	query := `SELECT ` + embeddingColumns + ` FROM rags_embeddings
	          WHERE source_type = $1 AND source_id = $2`

	var rec domain.EmbeddingRecord
	err := v.store.db.QueryRowContext(ctx, query, sourceType, sourceID).
		Scan(&rec.ID, &rec.UserID, &rec.SourceType, &rec.SourceID, &rec.Text, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("embedding %s/%s: %w", sourceType, sourceID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", err)
	}
	return &rec, nil
}

// vectorToString renders a vector in pgvector's text format: [x,y,z].
func vectorToString(vector []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, val := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%g", val)
	}
	sb.WriteByte(']')
	return sb.String()
}
