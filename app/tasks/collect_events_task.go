package tasks

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/event"
	"github.com/lysyi3m/event-comb/app/provider"
)

type ProviderFactory func(config *event.Config, userAgent string) (event.Provider, error)

type CollectEventsTask struct {
	Task
	Config       *event.Config
	providerRepo database.ProviderRepository
	eventRepo    database.EventRepository
	recorder     CollectionRecorder
	newProvider  ProviderFactory
	userAgent    string
	keyword      string
}

func NewCollectEventsTask(providerName string, config *event.Config, providerRepo database.ProviderRepository,
	eventRepo database.EventRepository, recorder CollectionRecorder, userAgent, keyword string) *CollectEventsTask {
	return &CollectEventsTask{
		Task:         NewTask(TaskTypeCollectEvents, providerName),
		Config:       config,
		providerRepo: providerRepo,
		eventRepo:    eventRepo,
		recorder:     recorder,
		newProvider:  provider.NewFromConfig,
		userAgent:    userAgent,
		keyword:      keyword,
	}
}

func (t *CollectEventsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled {
		slog.Debug("Provider disabled, skipping", "provider", t.ProviderName)
		return nil
	}

	// The sync task for this provider may still be queued behind us.
	if err := t.providerRepo.UpsertProvider(t.ProviderName, t.Config.Type); err != nil {
		return fmt.Errorf("failed to register provider: %w", err)
	}

	p, err := t.newProvider(t.Config, t.userAgent)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	pipeline := event.NewPipeline(p, event.NewFilterer(t.Config.Exclude, t.Config.Filters),
		event.WithLogger(slog.Default()),
		event.WithRecorder(t.recorder),
		event.WithConcurrency(t.Config.Settings.Concurrency),
		event.WithMaxPages(t.Config.Settings.MaxPages))

	result := pipeline.Run(ctx, cmp.Or(t.Config.Query, t.keyword))
	status := collectionStatus(result)

	// A run cut short by its deadline keeps the previous snapshot.
	interrupted := ctx.Err() != nil
	if status != database.StatusFailed && !interrupted {
		if err := t.eventRepo.ReplaceEvents(t.ProviderName, toStoredEvents(result.Events)); err != nil {
			return fmt.Errorf("failed to store events: %w", err)
		}
	}

	finishedAt := time.Now().UTC()
	collection := database.CollectionStatus{
		Status:        status,
		EventCount:    len(result.Events),
		PageCount:     result.Pages,
		CollectedAt:   finishedAt,
		NextCollectAt: finishedAt.Add(time.Duration(t.Config.Settings.RefreshInterval) * time.Second),
	}
	if result.Err != nil {
		collection.Error = result.Err.Error()
	}

	if err := t.providerRepo.UpdateCollectionStatus(t.ProviderName, collection); err != nil {
		return fmt.Errorf("failed to update collection status: %w", err)
	}

	t.recorder.ObserveCollection(t.ProviderName, status, result.Duration, finishedAt)

	slog.Info("Task completed",
		"type", "CollectEvents",
		"provider", t.ProviderName,
		"status", status,
		"duration", t.Elapsed(),
		"events", len(result.Events),
		"pages", result.Pages)

	if interrupted {
		return fmt.Errorf("collection interrupted: %w", ctx.Err())
	}

	// Missing credentials will not fix themselves on retry.
	var cfgErr *event.ConfigError
	if status == database.StatusFailed && !errors.As(result.Err, &cfgErr) {
		return fmt.Errorf("collection failed: %w", result.Err)
	}

	return nil
}

// collectionStatus classifies a run: partial runs fetched at least one page
// before failing, failed runs fetched none.
func collectionStatus(result *event.Result) string {
	switch {
	case result.Err == nil:
		return database.StatusSuccess
	case result.Pages > 0:
		return database.StatusPartial
	default:
		return database.StatusFailed
	}
}

func toStoredEvents(events []event.Event) []database.Event {
	stored := make([]database.Event, len(events))
	for i, ev := range events {
		stored[i] = database.Event{
			Title:       ev.Title,
			Date:        ev.Date,
			City:        ev.City,
			Link:        ev.Link,
			Description: ev.Description,
			Free:        ev.Free,
			ContentHash: event.ContentHash(ev),
		}
	}
	return stored
}
