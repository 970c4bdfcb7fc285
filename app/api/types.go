package api

import (
	"net/http"

	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/event"
	"github.com/lysyi3m/event-comb/app/tasks"
)

type RendererInterface interface {
	Run(provider database.Provider, events []database.Event) (string, error)
}

var (
	_ RendererInterface = (*event.Generator)(nil)
	_ RendererInterface = (*event.Calendar)(nil)
)

type Handler struct {
	providerRepo   database.ProviderRepository
	eventRepo      database.EventRepository
	generator      RendererInterface
	calendar       RendererInterface
	configCache    *event.ConfigCache
	scheduler      tasks.TaskSchedulerInterface
	metricsHandler http.Handler
}
