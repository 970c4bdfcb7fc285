package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/event-comb/app/cfg"
	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/event"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	providerRepo database.ProviderRepository
	eventRepo    database.EventRepository
	configCache  *event.ConfigCache
	recorder     CollectionRecorder
	userAgent    string
	keyword      string
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(configCache *event.ConfigCache, providerRepo database.ProviderRepository,
	eventRepo database.EventRepository, recorder CollectionRecorder) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		providerRepo: providerRepo,
		eventRepo:    eventRepo,
		configCache:  configCache,
		recorder:     recorder,
		userAgent:    cfg.UserAgent,
		keyword:      cfg.Keyword,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// NewCollectTask builds a collection task wired to the scheduler's stores.
func (s *Scheduler) NewCollectTask(config *event.Config) *CollectEventsTask {
	return NewCollectEventsTask(config.Name, config, s.providerRepo, s.eventRepo, s.recorder, s.userAgent, s.keyword)
}

func (s *Scheduler) enqueueStartupTasks() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No provider configurations found")
		return
	}

	slog.Debug("Processing provider configurations", "count", len(configs))

	for _, config := range configs {
		syncTask := NewSyncProviderConfigTask(config.Name, config, s.providerRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncProviderConfigTask", "provider", config.Name, "error", err)
			continue
		}

		if !config.Settings.Enabled {
			slog.Debug("Provider disabled, skipping CollectEventsTask", "provider", config.Name)
			continue
		}

		if err := s.EnqueueTask(s.NewCollectTask(config)); err != nil {
			slog.Warn("Failed to enqueue CollectEventsTask", "provider", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled provider configurations found")
		return
	}

	slog.Debug("Processing enabled provider configurations for task scheduling", "count", len(configs))

	now := time.Now().UTC()
	for _, config := range configs {
		provider, err := s.providerRepo.GetProvider(config.Name)
		if err != nil {
			slog.Warn("Failed to get provider from database, skipping", "provider", config.Name, "error", err)
			continue
		}
		if provider == nil {
			slog.Warn("Provider not found in database, skipping", "provider", config.Name)
			continue
		}

		if !isDue(provider, now) {
			slog.Debug("Provider not due for collection yet", "provider", config.Name, "next_collect_at", provider.NextCollectAt)
			continue
		}

		if err := s.EnqueueTask(s.NewCollectTask(config)); err != nil {
			slog.Warn("Failed to enqueue CollectEventsTask", "provider", config.Name, "error", err)
		}
	}
}

func isDue(provider *database.Provider, now time.Time) bool {
	return provider.NextCollectAt == nil || !provider.NextCollectAt.After(now)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	meta := task.Meta()
	meta.begin()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", append(meta.logAttrs(), "worker_id", workerID, "error", err)...)

	if !meta.retryable() {
		slog.Error("Task failed after maximum attempts", append(meta.logAttrs(), "max_attempts", meta.MaxAttempts, "last_error", err)...)
		return
	}

	delay := retryDelay(meta.Attempts)
	slog.Warn("Task retry scheduled", append(meta.logAttrs(), "delay", delay.String())...)

	go func() {
		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", meta.logAttrs()...)
			return
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", append(meta.logAttrs(), "error", retryErr)...)
		}
	}()
}

// retryDelay is the wait after the given failed attempt: one second after
// the first, doubling up to 30 seconds.
func retryDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt-1)) * time.Second
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
