package database

import (
	"database/sql"
	"fmt"
	"time"
)

type providerRepository struct {
	db *DB
}

var _ ProviderRepository = (*providerRepository)(nil)

func NewProviderRepository(db *DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) GetProvider(name string) (*Provider, error) {
	var (
		provider              Provider
		lastCollected, nextAt sql.NullInt64
		createdAt, updatedAt  int64
	)

	err := r.db.QueryRow(`
		SELECT name, type, last_collected_at, next_collect_at, last_status, last_error,
		       event_count, page_count, created_at, updated_at
		FROM providers
		WHERE name = ?
	`, name).Scan(
		&provider.Name, &provider.Type, &lastCollected, &nextAt, &provider.LastStatus, &provider.LastError,
		&provider.EventCount, &provider.PageCount, &createdAt, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	provider.LastCollectedAt = fromNullMillis(lastCollected)
	provider.NextCollectAt = fromNullMillis(nextAt)
	provider.CreatedAt = time.UnixMilli(createdAt)
	provider.UpdatedAt = time.UnixMilli(updatedAt)

	return &provider, nil
}

func (r *providerRepository) GetProviderCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM providers").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get provider count: %w", err)
	}
	return count, nil
}

func (r *providerRepository) UpsertProvider(name, providerType string) error {
	now := time.Now().UTC().UnixMilli()

	_, err := r.db.Exec(`
		INSERT INTO providers (name, type, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			type = excluded.type,
			updated_at = excluded.updated_at
	`, name, providerType, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert provider: %w", err)
	}

	return nil
}

func (r *providerRepository) UpdateCollectionStatus(name string, status CollectionStatus) error {
	result, err := r.db.Exec(`
		UPDATE providers
		SET last_collected_at = ?, next_collect_at = ?, last_status = ?, last_error = ?,
		    event_count = ?, page_count = ?, updated_at = ?
		WHERE name = ?
	`, status.CollectedAt.UnixMilli(), status.NextCollectAt.UnixMilli(), status.Status, status.Error,
		status.EventCount, status.PageCount, time.Now().UTC().UnixMilli(), name)

	if err != nil {
		return fmt.Errorf("failed to update collection status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("provider '%s' not found", name)
	}

	return nil
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}
