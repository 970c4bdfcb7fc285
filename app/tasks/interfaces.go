package tasks

import (
	"time"

	"github.com/lysyi3m/event-comb/app/event"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to run background collection.
//
//	scheduler := NewScheduler(configCache, providerRepo, eventRepo, recorder)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewCollectEventsTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	NewCollectTask(config *event.Config) *CollectEventsTask
}

// CollectionRecorder receives pipeline measurements plus the outcome of
// each stored collection.
type CollectionRecorder interface {
	event.Recorder
	ObserveCollection(provider, status string, duration time.Duration, finishedAt time.Time)
}
