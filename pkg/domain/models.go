// Package domain contains domain-related models and logic
package domain

import (
	"strings"
	"time"
)

// LookupResult is the outcome of a single availability check.
// A non-nil Err marks the explicit failure variant; Available carries
// no meaning in that case.
type LookupResult struct {
	Domain    string
	Available bool
	Err       error
}

// Snapshot maps a domain name to its availability as recorded by a
// previous run. A missing key means the domain was not previously known
// to be available.
type Snapshot map[string]bool

// Report aggregates the outcome of one batch run. It is immutable once
// returned and serializes directly into the results artifact.
type Report struct {
	RunID          string   `json:"run_id"`
	Available      []string `json:"available"`
	Unavailable    []string `json:"unavailable"`
	Errors         []string `json:"errors"`
	NewlyAvailable []string `json:"newly_available"`
	Summary        string   `json:"summary"`

	Elapsed time.Duration `json:"-"`
}

// Config represents the configuration file structure
type Config struct {
	ThreadCount      int    `json:"thread_count"`
	CheckTimeout     int    `json:"check_timeout"`
	DomainrAPIType   string `json:"domainr_api_type"`
	DomainrAPIKeys   string `json:"domainr_api_keys"`
	DomainrRateLimit int    `json:"domainr_rate_limit"`

	EnableEmail bool   `json:"enable_email"`
	SMTPHost    string `json:"smtp_host"`
	SMTPPort    int    `json:"smtp_port"`
	SMTPUser    string `json:"smtp_user"`
	SMTPPass    string `json:"smtp_pass"`
	EmailTo     string `json:"email_to"`

	EnableWebhook bool   `json:"enable_webhook"`
	WebhookURL    string `json:"webhook_url"`

	OutputDir string `json:"output_dir"`
	LogDir    string `json:"log_dir"`
}

// Timeout returns the per-check timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.CheckTimeout) * time.Second
}

// Keys splits the comma-separated credential list, dropping blank
// entries so an empty setting yields an empty pool.
func (c *Config) Keys() []string {
	var keys []string
	for _, k := range strings.Split(c.DomainrAPIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
