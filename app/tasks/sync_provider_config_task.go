package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/event"
)

type SyncProviderConfigTask struct {
	Task
	Config       *event.Config
	providerRepo database.ProviderRepository
}

func NewSyncProviderConfigTask(providerName string, config *event.Config, providerRepo database.ProviderRepository) *SyncProviderConfigTask {
	return &SyncProviderConfigTask{
		Task:         NewTask(TaskTypeSyncProviderConfig, providerName),
		Config:       config,
		providerRepo: providerRepo,
	}
}

func (t *SyncProviderConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.providerRepo.UpsertProvider(t.Config.Name, t.Config.Type); err != nil {
		return fmt.Errorf("failed to sync provider config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncProviderConfig",
		"provider", t.ProviderName,
		"duration", t.Elapsed())

	return nil
}
