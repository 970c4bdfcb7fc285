package event

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	TypeEventbrite = "eventbrite"
	TypeMeetup     = "meetup"
)

const defaultConcurrency = 10

var providerTypes = map[string]bool{
	TypeEventbrite: true,
	TypeMeetup:     true,
}

type ConfigCache struct {
	providersDir string
	cache        map[string]*Config
	mu           sync.RWMutex
}

func NewConfigCache(providersDir string) *ConfigCache {
	return &ConfigCache{
		providersDir: providersDir,
		cache:        make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.providersDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.providersDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "provider", name, "type", config.Type, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(name string) (*Config, error) {
	configFile := cc.getConfigFilePath(name)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = name

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(name string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("provider config with name '%s' not found", name)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Tokens are usually supplied as ${VAR} references.
	expanded := os.ExpandEnv(string(data))

	// Concurrency 0 is meaningful (unbounded), so its default is applied
	// only when the key is absent.
	config := Config{Settings: ConfigSettings{Concurrency: defaultConcurrency}}
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 3600
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Name == "" {
		return fmt.Errorf("provider name is required")
	}

	if !providerTypes[config.Type] {
		return fmt.Errorf("unknown provider type: %q", config.Type)
	}

	nonNegativeFields := map[string]int{
		"refresh interval": config.Settings.RefreshInterval,
		"timeout":          config.Settings.Timeout,
		"max pages":        config.Settings.MaxPages,
		"concurrency":      config.Settings.Concurrency,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, filter := range config.Filters {
		if !filterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(name string) string {
	return filepath.Join(cc.providersDir, name+".yml")
}
