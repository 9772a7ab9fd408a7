// Package api provides a client for the Domainr status API
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	domainrEndpoint = "https://api.domainr.com/v2/status"
	rapidAPIHost    = "domainr.p.rapidapi.com"

	// One retry ladder per Status call: a 429 response is retried with
	// a doubling backoff, at most maxAttempts requests in total.
	maxAttempts    = 3
	initialBackoff = 5 * time.Second
)

// APITypeRapid selects RapidAPI header authentication; any other type
// falls back to the classic client_id query parameter.
const APITypeRapid = "rapidapi"

// Client wraps the Domainr v2 status endpoint and automatically
// injects the credential into every call in the shape the configured
// API type expects. Calls are paced by a shared rate limiter so
// concurrent workers spread their request budget.
type Client struct {
	apiType  string
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	backoff  time.Duration
}

// NewClient creates a new Domainr API client. ratePerSec bounds the
// outbound request rate across all callers; zero or negative disables
// pacing.
func NewClient(apiType string, timeout time.Duration, ratePerSec int) *Client {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &Client{
		apiType:  apiType,
		endpoint: domainrEndpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		backoff:  initialBackoff,
	}
}

// SetEndpoint overrides the API endpoint. Intended for tests.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// SetBackoff overrides the initial 429 backoff. Intended for tests.
func (c *Client) SetBackoff(d time.Duration) {
	c.backoff = d
}

type statusEntry struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Status []statusEntry `json:"status"`
}

// Status queries the registration status of a domain and returns the
// status tokens from the response. A 429 answer is retried after a
// backoff, doubling up to maxAttempts requests; the context bounds the
// total wait.
func (c *Client) Status(ctx context.Context, domainName, key string) ([]string, error) {
	backoff := c.backoff

	for attempt := 1; ; attempt++ {
		tokens, retryable, err := c.query(ctx, domainName, key)
		if err == nil {
			return tokens, nil
		}
		if !retryable || attempt >= maxAttempts {
			return nil, err
		}

		log.Warn().
			Str("domain", domainName).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Rate limit hit, retrying after delay")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

// query performs a single status request. retryable is true only for a
// 429 response.
func (c *Client) query(ctx context.Context, domainName, key string) (tokens []string, retryable bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build status request: %w", err)
	}

	params := url.Values{"domain": {domainName}}
	if c.apiType == APITypeRapid {
		req.Header.Set("X-RapidAPI-Key", key)
		req.Header.Set("X-RapidAPI-Host", rapidAPIHost)
	} else {
		params.Set("client_id", key)
	}
	req.URL.RawQuery = params.Encode()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("status request: rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("status request: unexpected status %d", resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decode status response: %w", err)
	}

	tokens = make([]string, 0, len(body.Status))
	for _, s := range body.Status {
		tokens = append(tokens, s.Status)
	}

	log.Debug().
		Str("domain", domainName).
		Strs("status", tokens).
		Dur("duration", time.Since(start)).
		Msg("Domainr status response")

	return tokens, false, nil
}
