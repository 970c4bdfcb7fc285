package event

import (
	"fmt"
)

// ConfigError reports a credential or parameter a provider cannot run without.
type ConfigError struct {
	Provider string
	Field    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.Provider, e.Field)
}

// ProviderRequestError wraps a failed page or venue request.
type ProviderRequestError struct {
	Provider   string
	Op         string // "search" or "venue"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *ProviderRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderRequestError) Unwrap() error {
	return e.Err
}
