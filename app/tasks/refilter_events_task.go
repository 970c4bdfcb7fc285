package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/event"
)

// RefilterEventsTask applies the current keyword filters of a provider to
// its stored snapshot without contacting the provider.
type RefilterEventsTask struct {
	Task
	Config    *event.Config
	eventRepo database.EventRepository
}

func NewRefilterEventsTask(providerName string, config *event.Config, eventRepo database.EventRepository) *RefilterEventsTask {
	return &RefilterEventsTask{
		Task:      NewTask(TaskTypeRefilterEvents, providerName),
		Config:    config,
		eventRepo: eventRepo,
	}
}

func (t *RefilterEventsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stored, err := t.eventRepo.GetEvents(t.ProviderName, time.UnixMilli(0), 0)
	if err != nil {
		return fmt.Errorf("failed to get stored events: %w", err)
	}

	filterer := event.NewFilterer(nil, t.Config.Filters)

	kept := make([]database.Event, 0, len(stored))
	for _, s := range stored {
		ev := event.Event{
			Title:       s.Title,
			Date:        s.Date,
			City:        s.City,
			Link:        s.Link,
			Description: s.Description,
			Free:        s.Free,
		}
		if ok, reason := filterer.Match(ev); !ok {
			slog.Debug("Stored event filtered", "provider", t.ProviderName, "title", s.Title, "reason", reason)
			continue
		}
		kept = append(kept, s)
	}

	if len(kept) != len(stored) {
		if err := t.eventRepo.ReplaceEvents(t.ProviderName, kept); err != nil {
			return fmt.Errorf("failed to store refiltered events: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", "RefilterEvents",
		"provider", t.ProviderName,
		"duration", t.Elapsed(),
		"kept", len(kept),
		"removed", len(stored)-len(kept))

	return nil
}
