package service

import (
	"context"
	"log/slog"

	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/port"
)

// VectorIndex is the slice of the vector store the synchronizer needs.
type VectorIndex interface {
	UpsertByKey(ctx context.Context, ownerID *int64, sourceType, sourceID, text string, vector []float32) (*domain.EmbeddingRecord, error)
	DeleteByKey(ctx context.Context, sourceType, sourceID string) error
	DeleteAllByOwner(ctx context.Context, ownerID int64) error
}

// SyncService keeps the embedding index in step with the primary records.
//
// Synchronization is best-effort: a failed embed or index write is logged
// and swallowed so it never blocks the mutation that triggered it. A stale
// index row self-heals on the next successful sync because rows are upserted
// by (source_type, source_id).
type SyncService struct {
	embedder port.EmbeddingProvider
	index    VectorIndex
}

// NewSyncService creates a new embedding synchronizer.
func NewSyncService(embedder port.EmbeddingProvider, index VectorIndex) *SyncService {
	return &SyncService{embedder: embedder, index: index}
}

// Sync re-embeds a source record and upserts its index row.
func (s *SyncService) Sync(ctx context.Context, src domain.Embeddable) {
	kind := src.EmbeddingKind()
	sourceID := src.EmbeddingSourceID()

	vector, err := s.embedder.Embed(ctx, src.EmbeddingText())
	if err != nil {
		slog.Error("embedding sync failed", "source_type", kind, "source_id", sourceID, "error", err)
		return
	}

	if _, err := s.index.UpsertByKey(ctx, src.EmbeddingOwner(), kind, sourceID, src.EmbeddingText(), vector); err != nil {
		slog.Error("embedding upsert failed", "source_type", kind, "source_id", sourceID, "error", err)
		return
	}

	slog.Info("embedding synced", "source_type", kind, "source_id", sourceID)
}

// Remove deletes the index row for a source record.
func (s *SyncService) Remove(ctx context.Context, kind, sourceID string) {
	if err := s.index.DeleteByKey(ctx, kind, sourceID); err != nil {
		slog.Error("embedding delete failed", "source_type", kind, "source_id", sourceID, "error", err)
	}
}

// RemoveOwner deletes every index row belonging to a user.
func (s *SyncService) RemoveOwner(ctx context.Context, ownerID int64) {
	if err := s.index.DeleteAllByOwner(ctx, ownerID); err != nil {
		slog.Error("embedding owner cleanup failed", "id_user", ownerID, "error", err)
	}
}
