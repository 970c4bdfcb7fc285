package database

import (
	"fmt"
	"time"
)

type eventRepository struct {
	db *DB
}

var _ EventRepository = (*eventRepository)(nil)

func NewEventRepository(db *DB) EventRepository {
	return &eventRepository{db: db}
}

// GetEvents returns the provider's stored events starting after the given
// instant, in collection order. A limit of zero or less returns all of them.
func (r *eventRepository) GetEvents(providerName string, after time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`
		SELECT id, provider_name, position, title, date, city, link, description,
		       free, content_hash, created_at
		FROM events
		WHERE provider_name = ?
		  AND date > ?
		ORDER BY position
		LIMIT ?
	`, providerName, after.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev        Event
			createdAt int64
		)
		err := rows.Scan(
			&ev.ID, &ev.ProviderName, &ev.Position, &ev.Title, &ev.Date, &ev.City, &ev.Link, &ev.Description,
			&ev.Free, &ev.ContentHash, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		ev.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func (r *eventRepository) GetEventCount(providerName string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM events WHERE provider_name = ?", providerName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

// ReplaceEvents swaps the provider's stored snapshot for events in one
// transaction.
func (r *eventRepository) ReplaceEvents(providerName string, events []Event) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE provider_name = ?", providerName); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (
			provider_name, position, title, date, city, link, description,
			free, content_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().UnixMilli()
	for i, ev := range events {
		_, err := stmt.Exec(providerName, i, ev.Title, ev.Date, ev.City, ev.Link, ev.Description,
			ev.Free, ev.ContentHash, now)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}

	return nil
}
