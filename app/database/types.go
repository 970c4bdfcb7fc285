package database

import (
	"time"
)

type Provider struct {
	Name            string // Configuration identifier derived from filename
	Type            string // eventbrite | meetup
	LastCollectedAt *time.Time
	NextCollectAt   *time.Time
	LastStatus      string // success, partial, failed
	LastError       string
	EventCount      int
	PageCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Event struct {
	ID           int64
	ProviderName string
	Position     int
	Title        string
	Date         int64 // epoch milliseconds
	City         string
	Link         string
	Description  string
	Free         bool
	ContentHash  string
	CreatedAt    time.Time
}

type CollectionStatus struct {
	Status        string
	Error         string
	EventCount    int
	PageCount     int
	CollectedAt   time.Time
	NextCollectAt time.Time
}

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)
