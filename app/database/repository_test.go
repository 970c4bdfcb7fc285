package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
}

func TestProviderRepository_UpsertAndGet(t *testing.T) {
	repo := NewProviderRepository(newTestDB(t))

	provider, err := repo.GetProvider("missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if provider != nil {
		t.Errorf("Expected nil provider for unknown name, got %+v", provider)
	}

	if err := repo.UpsertProvider("berlin", "meetup"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.UpsertProvider("berlin", "eventbrite"); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	provider, err = repo.GetProvider("berlin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if provider == nil {
		t.Fatal("Expected provider to exist")
	}
	if provider.Type != "eventbrite" {
		t.Errorf("Expected type to be updated to eventbrite, got %s", provider.Type)
	}
	if provider.LastCollectedAt != nil || provider.NextCollectAt != nil {
		t.Error("Expected collection timestamps to be unset")
	}

	count, err := repo.GetProviderCount()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 provider, got %d", count)
	}
}

func TestProviderRepository_UpdateCollectionStatus(t *testing.T) {
	repo := NewProviderRepository(newTestDB(t))

	collected := time.UnixMilli(1_700_000_000_000)
	status := CollectionStatus{
		Status:        StatusPartial,
		Error:         "page 2: status 500",
		EventCount:    4,
		PageCount:     1,
		CollectedAt:   collected,
		NextCollectAt: collected.Add(time.Hour),
	}

	if err := repo.UpdateCollectionStatus("unknown", status); err == nil {
		t.Error("Expected error when updating unknown provider")
	}

	if err := repo.UpsertProvider("berlin", "meetup"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.UpdateCollectionStatus("berlin", status); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	provider, err := repo.GetProvider("berlin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if provider.LastStatus != StatusPartial {
		t.Errorf("Expected status %s, got %s", StatusPartial, provider.LastStatus)
	}
	if provider.LastError != status.Error {
		t.Errorf("Expected error %q, got %q", status.Error, provider.LastError)
	}
	if provider.EventCount != 4 || provider.PageCount != 1 {
		t.Errorf("Unexpected counts: events=%d pages=%d", provider.EventCount, provider.PageCount)
	}
	if provider.LastCollectedAt == nil || !provider.LastCollectedAt.Equal(collected) {
		t.Errorf("Expected last collected at %v, got %v", collected, provider.LastCollectedAt)
	}
	if provider.NextCollectAt == nil || !provider.NextCollectAt.Equal(collected.Add(time.Hour)) {
		t.Errorf("Expected next collect at %v, got %v", collected.Add(time.Hour), provider.NextCollectAt)
	}
}

func TestEventRepository_ReplaceEvents(t *testing.T) {
	db := newTestDB(t)
	providers := NewProviderRepository(db)
	events := NewEventRepository(db)

	if err := providers.UpsertProvider("berlin", "meetup"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	first := []Event{
		{Title: "Old", Date: 1000, City: "Berlin", ContentHash: "a"},
	}
	if err := events.ReplaceEvents("berlin", first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	second := []Event{
		{Title: "B", Date: 3000, City: "Berlin", Link: "https://b", ContentHash: "b", Free: true},
		{Title: "A", Date: 2000, City: "Potsdam", Link: "https://a", ContentHash: "c"},
	}
	if err := events.ReplaceEvents("berlin", second); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	count, err := events.GetEventCount("berlin")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 events after replace, got %d", count)
	}

	stored, err := events.GetEvents("berlin", time.UnixMilli(0), 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(stored))
	}
	// Collection order is preserved, not date order.
	if stored[0].Title != "B" || stored[1].Title != "A" {
		t.Errorf("Expected order [B A], got [%s %s]", stored[0].Title, stored[1].Title)
	}
	if !stored[0].Free || stored[1].Free {
		t.Error("Free flag not persisted")
	}

	upcoming, err := events.GetEvents("berlin", time.UnixMilli(2500), 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "B" {
		t.Errorf("Expected only B after cutoff, got %+v", upcoming)
	}

	limited, err := events.GetEvents("berlin", time.UnixMilli(0), 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit of 1, got %d", len(limited))
	}
}
