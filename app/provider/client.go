package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lysyi3m/event-comb/app/event"
)

const (
	defaultAttempts   = 3
	defaultBackoff    = 500 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
	maxResponseSize   = 10 << 20
)

// apiClient performs GET requests against a JSON API and hands back the
// parsed document. Rate limiting, server errors and transport failures are
// retried; other non-2xx responses fail immediately.
type apiClient struct {
	provider  string
	baseURL   string
	client    *http.Client
	userAgent string
	attempts  int
	backoff   time.Duration
}

func newAPIClient(provider, baseURL string, client *http.Client, userAgent string) *apiClient {
	return &apiClient{
		provider:  provider,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
		userAgent: userAgent,
		attempts:  defaultAttempts,
		backoff:   defaultBackoff,
	}
}

func (c *apiClient) get(ctx context.Context, op, path string, query url.Values) (gjson.Result, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var (
		body   []byte
		status int
	)
	err := Retry(ctx, c.attempts, c.backoff, defaultMaxBackoff, func() error {
		status = 0
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			err = redactURLError(err)
			if ctx.Err() != nil {
				return permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if resp.StatusCode/100 != 2 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(b)))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return err
			}
			return permanent(err)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	})

	if err != nil {
		if status/100 == 2 {
			status = 0
		}
		return gjson.Result{}, &event.ProviderRequestError{Provider: c.provider, Op: op, StatusCode: status, Err: err}
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &event.ProviderRequestError{Provider: c.provider, Op: op, StatusCode: status, Err: fmt.Errorf("invalid JSON response")}
	}

	return gjson.ParseBytes(body), nil
}

// Query parameters that carry credentials.
var secretParams = []string{"key", "token", "access_token"}

// redactURLError masks credentials in the URL that net/http embeds in
// transport errors.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	urlErr.URL = redactURL(urlErr.URL)
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := u.Query()
	redacted := false
	for _, name := range secretParams {
		if query.Has(name) {
			query.Set(name, "REDACTED")
			redacted = true
		}
	}
	if !redacted {
		return raw
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// stringField returns a pointer to the value when it is a JSON string and
// nil for anything else.
func stringField(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.Str
	return &s
}

func firstSegment(s *string) *string {
	if s == nil {
		return nil
	}
	before, _, _ := strings.Cut(*s, ",")
	return &before
}
