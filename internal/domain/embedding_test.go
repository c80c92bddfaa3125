package domain

import (
	"testing"
	"time"
)

func TestUserEmbeddingText(t *testing.T) {
	u := &User{
		ID:      7,
		Nama:    "Budi Santoso",
		Email:   "budi@kampus.ac.id",
		Telepon: "0812345678",
		Bio:     "Mahasiswa Informatika",
		Lokasi:  "Bandung",
	}

	want := "Nama: Budi Santoso. Email: budi@kampus.ac.id. Telepon: 0812345678. Bio: Mahasiswa Informatika. Lokasi: Bandung."
	if got := u.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
	if u.EmbeddingKind() != SourceUser {
		t.Errorf("EmbeddingKind() = %q, want %q", u.EmbeddingKind(), SourceUser)
	}
	if u.EmbeddingSourceID() != "7" {
		t.Errorf("EmbeddingSourceID() = %q, want %q", u.EmbeddingSourceID(), "7")
	}
}

func TestTodoEmbeddingTextWithDeadline(t *testing.T) {
	due := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	todo := &Todo{
		ID:      42,
		UserID:  7,
		Nama:    "Submit report",
		Tipe:    "tugas",
		Tenggat: &due,
	}

	want := "Todo: Submit report. Type: tugas. Due: 2025-12-31 23:59:00. Description: ."
	if got := todo.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

func TestTodoEmbeddingTextWithoutDeadline(t *testing.T) {
	todo := &Todo{ID: 1, Nama: "Beli buku", Tipe: "pribadi", Deskripsi: "Toko Gramedia"}

	want := "Todo: Beli buku. Type: pribadi. Due: . Description: Toko Gramedia."
	if got := todo.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

func TestScheduleItemEmbeddingText(t *testing.T) {
	item := &ScheduleItem{
		ID:         3,
		UserID:     7,
		Hari:       "Senin",
		Nama:       "Algoritma",
		JamMulai:   time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC),
		JamSelesai: time.Date(0, 1, 1, 9, 40, 0, 0, time.UTC),
		SKS:        3,
	}

	want := "Jadwal Mata Kuliah: Algoritma. Hari: Senin. Mulai: 08:00:00. Selesai: 09:40:00. SKS: 3."
	if got := item.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
	if item.EmbeddingKind() != SourceSchedule {
		t.Errorf("EmbeddingKind() = %q, want %q", item.EmbeddingKind(), SourceSchedule)
	}
}

func TestActivityEmbeddingText(t *testing.T) {
	a := &Activity{ID: 5, UserID: 7, Nama: "Basket", Jabatan: "Anggota", Deskripsi: "Latihan mingguan"}

	want := "UKM: Basket. Jabatan: Anggota. Description: Latihan mingguan."
	if got := a.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

// Re-rendering the template on unchanged data must produce byte-identical
// text, otherwise idempotent re-syncs would churn the index.
func TestEmbeddingTextDeterministic(t *testing.T) {
	due := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sources := []Embeddable{
		&User{ID: 1, Nama: "A", Email: "a@b.c"},
		&Todo{ID: 2, UserID: 1, Nama: "T", Tenggat: &due},
		&ScheduleItem{ID: 3, UserID: 1, Nama: "M", Hari: "Rabu"},
		&Activity{ID: 4, UserID: 1, Nama: "U"},
	}

	for _, src := range sources {
		first := src.EmbeddingText()
		for i := 0; i < 3; i++ {
			if again := src.EmbeddingText(); again != first {
				t.Errorf("%s/%s: text changed between renders", src.EmbeddingKind(), src.EmbeddingSourceID())
			}
		}
	}
}
