package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/event"
	"github.com/lysyi3m/event-comb/app/tasks"
)

func NewHandler(configCache *event.ConfigCache, providerRepo database.ProviderRepository,
	eventRepo database.EventRepository, scheduler tasks.TaskSchedulerInterface,
	metricsHandler http.Handler) *Handler {
	return &Handler{
		providerRepo:   providerRepo,
		eventRepo:      eventRepo,
		generator:      event.NewGenerator(),
		calendar:       event.NewCalendar(),
		configCache:    configCache,
		scheduler:      scheduler,
		metricsHandler: metricsHandler,
	}
}

func (h *Handler) GetEvents(c *gin.Context) {
	provider, events, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	out := make([]event.Event, len(events))
	for i, ev := range events {
		out[i] = event.Event{
			Title:       ev.Title,
			Date:        ev.Date,
			City:        ev.City,
			Link:        ev.Link,
			Description: ev.Description,
			Free:        ev.Free,
		}
	}

	h.snapshotHeaders(c, provider, len(events))
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetFeed(c *gin.Context) {
	h.render(c, h.generator, "application/xml; charset=utf-8")
}

func (h *Handler) GetCalendar(c *gin.Context) {
	h.render(c, h.calendar, "text/calendar; charset=utf-8")
}

func (h *Handler) render(c *gin.Context, renderer RendererInterface, contentType string) {
	provider, events, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	body, err := renderer.Run(*provider, events)
	if err != nil {
		slog.Error("Rendering error", "provider", provider.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	h.snapshotHeaders(c, provider, len(events))
	c.Header("Content-Type", contentType)
	c.String(http.StatusOK, body)
}

// loadSnapshot returns the stored provider and its events that have not
// started yet. It writes the error response itself when ok is false.
func (h *Handler) loadSnapshot(c *gin.Context) (*database.Provider, []database.Event, bool) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return nil, nil, false
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Provider configuration not found", "provider", name, "error", err)
		c.Status(http.StatusNotFound)
		return nil, nil, false
	}

	provider, err := h.providerRepo.GetProvider(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_provider", "provider", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return nil, nil, false
	}

	if provider == nil {
		slog.Error("Provider not found in database", "provider", name)
		c.Status(http.StatusNotFound)
		return nil, nil, false
	}

	events, err := h.eventRepo.GetEvents(name, time.Now(), 0)
	if err != nil {
		slog.Error("Database error", "operation", "get_events", "provider", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return nil, nil, false
	}

	return provider, events, true
}

func (h *Handler) snapshotHeaders(c *gin.Context, provider *database.Provider, count int) {
	c.Header("X-Provider-Events", strconv.Itoa(count))
	c.Header("X-Provider-Name", provider.Name)
	if provider.LastCollectedAt != nil {
		c.Header("X-Last-Collected", provider.LastCollectedAt.Format(time.RFC3339))
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if providerCount, err := h.providerRepo.GetProviderCount(); err == nil {
		health["providers"] = providerCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetMetrics(c *gin.Context) {
	h.metricsHandler.ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) APIListProviders(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	providers := make([]map[string]interface{}, 0, len(configs))

	for _, config := range configs {
		info := map[string]interface{}{
			"name":             config.Name,
			"type":             config.Type,
			"enabled":          config.Settings.Enabled,
			"refresh_interval": (time.Duration(config.Settings.RefreshInterval) * time.Second).String(),
			"filters":          len(config.Filters),
		}

		if provider, err := h.providerRepo.GetProvider(config.Name); err == nil && provider != nil {
			info["last_status"] = provider.LastStatus
			info["last_collected_at"] = provider.LastCollectedAt
			info["next_collect_at"] = provider.NextCollectAt
		}

		if eventCount, err := h.eventRepo.GetEventCount(config.Name); err == nil {
			info["event_count"] = eventCount
		}

		providers = append(providers, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"providers": providers,
		"total":     len(providers),
	})
}

func (h *Handler) APIGetProviderDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing provider name parameter"})
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Provider configuration not found", "provider", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider configuration not found"})
		return
	}

	provider, err := h.providerRepo.GetProvider(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_provider", "provider", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if provider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":             name,
		"type":             config.Type,
		"country":          config.Country,
		"category":         config.Category,
		"query":            config.Query,
		"exclude":          config.Exclude,
		"enabled":          config.Settings.Enabled,
		"refresh_interval": (time.Duration(config.Settings.RefreshInterval) * time.Second).String(),
		"timeout":          (time.Duration(config.Settings.Timeout) * time.Second).String(),
		"max_pages":        config.Settings.MaxPages,
		"concurrency":      config.Settings.Concurrency,
		"filters":          config.Filters,
	}

	details["database"] = map[string]interface{}{
		"name":              provider.Name,
		"last_collected_at": provider.LastCollectedAt,
		"next_collect_at":   provider.NextCollectAt,
		"last_status":       provider.LastStatus,
		"last_error":        provider.LastError,
		"event_count":       provider.EventCount,
		"page_count":        provider.PageCount,
		"created_at":        provider.CreatedAt,
		"updated_at":        provider.UpdatedAt,
	}

	c.JSON(http.StatusOK, details)
}

// APICollectProvider reloads the provider configuration and queues a fresh
// collection.
func (h *Handler) APICollectProvider(c *gin.Context) {
	h.reload(c, func(config *event.Config) tasks.TaskInterface {
		return h.scheduler.NewCollectTask(config)
	})
}

// APIReloadProvider reloads the provider configuration and reapplies its
// filters to the stored events.
func (h *Handler) APIReloadProvider(c *gin.Context) {
	h.reload(c, func(config *event.Config) tasks.TaskInterface {
		return tasks.NewRefilterEventsTask(config.Name, config, h.eventRepo)
	})
}

func (h *Handler) reload(c *gin.Context, followUp func(config *event.Config) tasks.TaskInterface) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing provider name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Provider configuration not found", "provider", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider configuration not found"})
		return
	}

	config, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "provider", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	queued := []tasks.TaskInterface{
		tasks.NewSyncProviderConfigTask(name, config, h.providerRepo),
		followUp(config),
	}

	taskInfo := make([]gin.H, 0, len(queued))
	for _, task := range queued {
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing task", "provider", name, "type", string(task.Meta().Type), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue task",
				"details": err.Error(),
			})
			return
		}
		taskInfo = append(taskInfo, gin.H{"id": task.Meta().ID, "type": task.Meta().Type})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"provider": gin.H{
			"name":    name,
			"type":    config.Type,
			"enabled": config.Settings.Enabled,
		},
		"tasks": taskInfo,
	})
}
