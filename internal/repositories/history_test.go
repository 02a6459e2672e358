package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenHistoryDB(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	return db
}

func sampleEntry() *models.HistoryEntry {
	return &models.HistoryEntry{
		Name:            "Morning Lift",
		URL:             "https://open.spotify.com/playlist/abc123",
		Mode:            "uplift",
		MoodText:        "groggy and slow",
		GoalText:        "ready for the day",
		Stages:          5,
		TracksRequested: 30,
		TracksAdded:     25,
		Note:            "",
	}
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)

		first, err := repo.Create(ctx, sampleEntry())
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		if first.ID == "" {
			t.Error("entry ID should be set after creation")
		}
		if first.Seq != 1 {
			t.Errorf("expected seq 1, got %d", first.Seq)
		}
		if first.CreatedAt.IsZero() {
			t.Error("entry timestamp should be set after creation")
		}

		second, err := repo.Create(ctx, sampleEntry())
		if err != nil {
			t.Fatalf("failed to create second entry: %v", err)
		}
		if second.Seq != 2 {
			t.Errorf("expected seq 2, got %d", second.Seq)
		}
	})

	t.Run("Create rejects invalid entries", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		entry := sampleEntry()
		entry.Name = ""

		if _, err := repo.Create(ctx, entry); err == nil {
			t.Fatal("expected a validation error")
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected nothing persisted, got %d entries", len(entries))
		}
	})

	t.Run("Create persists track links with the entry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		entry := sampleEntry()
		entry.TracksAdded = 0
		entry.Links = []models.TrackLink{
			{Name: "Weightless", Artist: "Marconi Union", URL: "https://open.spotify.com/track/t1"},
			{Name: "Horizon Variations", Artist: "Max Richter", URL: "https://open.spotify.com/track/t2"},
		}

		created, err := repo.Create(ctx, entry)
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		retrieved, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if len(retrieved.Links) != 2 {
			t.Fatalf("expected 2 links, got %d", len(retrieved.Links))
		}
		if retrieved.Links[0].Name != "Weightless" || retrieved.Links[1].Name != "Horizon Variations" {
			t.Errorf("links out of order: %v", retrieved.Links)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		created, err := repo.Create(ctx, sampleEntry())
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		retrieved, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}

		if retrieved.ID != created.ID {
			t.Errorf("expected ID %s, got %s", created.ID, retrieved.ID)
		}
		if retrieved.Name != "Morning Lift" {
			t.Errorf("expected name Morning Lift, got %s", retrieved.Name)
		}
		if retrieved.Mode != "uplift" {
			t.Errorf("expected mode uplift, got %s", retrieved.Mode)
		}
		if retrieved.MoodText != "groggy and slow" || retrieved.GoalText != "ready for the day" {
			t.Errorf("mood text mismatch: %q / %q", retrieved.MoodText, retrieved.GoalText)
		}
		if retrieved.TracksAdded != 25 {
			t.Errorf("expected 25 tracks added, got %d", retrieved.TracksAdded)
		}
	})

	t.Run("Get returns not found for unknown IDs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)

		_, err := repo.Get(ctx, "no-such-id")
		if !errors.Is(err, shared.ErrHistoryNotFound) {
			t.Errorf("expected ErrHistoryNotFound, got %v", err)
		}
	})

	t.Run("GetBySeq resolves the handle shown in lists", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		if _, err := repo.Create(ctx, sampleEntry()); err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		second := sampleEntry()
		second.Name = "Deep Focus Arc"
		if _, err := repo.Create(ctx, second); err != nil {
			t.Fatalf("failed to create second entry: %v", err)
		}

		retrieved, err := repo.GetBySeq(ctx, 2)
		if err != nil {
			t.Fatalf("failed to get entry by seq: %v", err)
		}
		if retrieved.Name != "Deep Focus Arc" {
			t.Errorf("expected the second entry, got %s", retrieved.Name)
		}

		if _, err := repo.GetBySeq(ctx, 99); !errors.Is(err, shared.ErrHistoryNotFound) {
			t.Errorf("expected ErrHistoryNotFound, got %v", err)
		}
	})

	t.Run("List returns newest first", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		for i := 0; i < 3; i++ {
			if _, err := repo.Create(ctx, sampleEntry()); err != nil {
				t.Fatalf("failed to create entry: %v", err)
			}
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		if entries[0].Seq != 3 || entries[2].Seq != 1 {
			t.Errorf("expected descending order, got %d..%d", entries[0].Seq, entries[2].Seq)
		}

		limited, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list limited entries: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 entries with limit, got %d", len(limited))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		created, err := repo.Create(ctx, sampleEntry())
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		if _, err := repo.Create(ctx, sampleEntry()); err != nil {
			t.Fatalf("failed to create second entry: %v", err)
		}

		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}

		if _, err := repo.Get(ctx, created.ID); !errors.Is(err, shared.ErrHistoryNotFound) {
			t.Errorf("expected deleted entry hidden, got %v", err)
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected 1 remaining entry, got %d", len(entries))
		}

		if err := repo.Delete(ctx, created.ID); !errors.Is(err, shared.ErrHistoryNotFound) {
			t.Errorf("expected repeat delete to miss, got %v", err)
		}
	})

	t.Run("Clear soft-deletes everything", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		for i := 0; i < 3; i++ {
			if _, err := repo.Create(ctx, sampleEntry()); err != nil {
				t.Fatalf("failed to create entry: %v", err)
			}
		}

		cleared, err := repo.Clear(ctx)
		if err != nil {
			t.Fatalf("failed to clear history: %v", err)
		}
		if cleared != 3 {
			t.Errorf("expected 3 cleared, got %d", cleared)
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty history, got %d entries", len(entries))
		}

		again, err := repo.Clear(ctx)
		if err != nil {
			t.Fatalf("failed to clear empty history: %v", err)
		}
		if again != 0 {
			t.Errorf("expected nothing left to clear, got %d", again)
		}
	})

	t.Run("Sequence numbers survive deletes", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		created, err := repo.Create(ctx, sampleEntry())
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}

		next, err := repo.Create(ctx, sampleEntry())
		if err != nil {
			t.Fatalf("failed to create entry after delete: %v", err)
		}
		if next.Seq != 2 {
			t.Errorf("expected seq 2 after a deleted #1, got %d", next.Seq)
		}
	})
}
