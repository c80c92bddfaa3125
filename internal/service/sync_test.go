package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mycampus/assistant/internal/domain"
)

type fakeIndex struct {
	upserts   []string // "sourceType/sourceID"
	lastOwner *int64
	lastText  string
	lastVec   []float32
	deletes   []string
	ownerWipe []int64
	err       error
}

func (f *fakeIndex) UpsertByKey(ctx context.Context, ownerID *int64, sourceType, sourceID, text string, vector []float32) (*domain.EmbeddingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserts = append(f.upserts, sourceType+"/"+sourceID)
	f.lastOwner = ownerID
	f.lastText = text
	f.lastVec = vector
	return &domain.EmbeddingRecord{SourceType: sourceType, SourceID: sourceID, Text: text}, nil
}

func (f *fakeIndex) DeleteByKey(ctx context.Context, sourceType, sourceID string) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, sourceType+"/"+sourceID)
	return nil
}

func (f *fakeIndex) DeleteAllByOwner(ctx context.Context, ownerID int64) error {
	if f.err != nil {
		return f.err
	}
	f.ownerWipe = append(f.ownerWipe, ownerID)
	return nil
}

func TestSyncUpsertsByKey(t *testing.T) {
	index := &fakeIndex{}
	svc := NewSyncService(&fakeEmbedder{vec: []float32{0.5, 0.6}}, index)

	todo := &domain.Todo{ID: 42, UserID: 7, Nama: "Submit report", Tipe: "tugas"}
	svc.Sync(context.Background(), todo)

	if len(index.upserts) != 1 || index.upserts[0] != "todo/42" {
		t.Fatalf("upserts = %v, want [todo/42]", index.upserts)
	}
	if index.lastOwner == nil || *index.lastOwner != 7 {
		t.Errorf("owner not propagated")
	}
	if index.lastText != todo.EmbeddingText() {
		t.Errorf("stored text = %q, want canonical template", index.lastText)
	}
	if len(index.lastVec) != 2 {
		t.Errorf("vector not propagated")
	}
}

func TestSyncSwallowsEmbedFailure(t *testing.T) {
	index := &fakeIndex{}
	svc := NewSyncService(&fakeEmbedder{err: errors.New("unreachable")}, index)

	// Must not panic and must not write a row.
	svc.Sync(context.Background(), &domain.Todo{ID: 1, UserID: 7})

	if len(index.upserts) != 0 {
		t.Errorf("upsert happened despite embed failure")
	}
}

func TestSyncSwallowsIndexFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("db down")}
	svc := NewSyncService(&fakeEmbedder{vec: []float32{0.1}}, index)

	svc.Sync(context.Background(), &domain.Todo{ID: 1, UserID: 7})
	// Nothing to assert beyond "did not panic": failures are logged only.
}

func TestRemoveDeletesByKey(t *testing.T) {
	index := &fakeIndex{}
	svc := NewSyncService(&fakeEmbedder{vec: []float32{0.1}}, index)

	svc.Remove(context.Background(), domain.SourceActivity, "5")

	if len(index.deletes) != 1 || index.deletes[0] != "ukm/5" {
		t.Errorf("deletes = %v, want [ukm/5]", index.deletes)
	}
}

func TestRemoveOwnerWipesUserRows(t *testing.T) {
	index := &fakeIndex{}
	svc := NewSyncService(&fakeEmbedder{vec: []float32{0.1}}, index)

	svc.RemoveOwner(context.Background(), 7)

	if len(index.ownerWipe) != 1 || index.ownerWipe[0] != 7 {
		t.Errorf("ownerWipe = %v, want [7]", index.ownerWipe)
	}
}
