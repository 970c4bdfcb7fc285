package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/lysyi3m/event-comb/app/event"
)

// NewFromConfig builds the provider strategy named by config.Type.
func NewFromConfig(config *event.Config, userAgent string) (event.Provider, error) {
	timeout := time.Duration(config.Settings.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	switch config.Type {
	case event.TypeEventbrite:
		return NewEventbrite(config, bearerClient(config.Token, timeout), userAgent), nil
	case event.TypeMeetup:
		return NewMeetup(config, NewHTTPClient(timeout), userAgent), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", config.Type)
	}
}

// bearerClient authenticates every request with a static OAuth token.
func bearerClient(token string, timeout time.Duration) *http.Client {
	base := NewHTTPClient(timeout)
	if token == "" {
		return base
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client.Timeout = timeout
	return client
}
