package database

import (
	"time"
)

type ProviderRepository interface {
	GetProvider(name string) (*Provider, error)
	GetProviderCount() (int, error)

	UpsertProvider(name, providerType string) error
	UpdateCollectionStatus(name string, status CollectionStatus) error
}

type EventRepository interface {
	GetEvents(providerName string, after time.Time, limit int) ([]Event, error)
	GetEventCount(providerName string) (int, error)

	ReplaceEvents(providerName string, events []Event) error
}
