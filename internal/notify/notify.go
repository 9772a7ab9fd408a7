// Package notify delivers email and webhook alerts for newly available domains
package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gomail "gopkg.in/gomail.v2"

	"github.com/williamzujkowski/domainchecker/pkg/domain"
)

// Dispatcher fires the configured notification channels. The engine
// decides when to invoke it; delivery failures are logged and never
// propagate into the batch report.
type Dispatcher struct {
	cfg  *domain.Config
	http *http.Client
}

// NewDispatcher creates a dispatcher for the configured channels.
func NewDispatcher(cfg *domain.Config) *Dispatcher {
	return &Dispatcher{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout()},
	}
}

// Dispatch sends the enabled notifications for a non-empty set of
// newly available domains.
func (d *Dispatcher) Dispatch(newlyAvailable []string, summary, runID string) {
	if d.cfg.EnableEmail {
		d.sendEmail(newlyAvailable, summary)
	}
	if d.cfg.EnableWebhook && d.cfg.WebhookURL != "" {
		d.sendWebhook(newlyAvailable, summary, runID)
	}
}

func (d *Dispatcher) sendEmail(newlyAvailable []string, summary string) {
	body := "New available domains:\n" + strings.Join(newlyAvailable, "\n") + "\n\n" + summary

	m := gomail.NewMessage()
	m.SetHeader("From", d.cfg.SMTPUser)
	m.SetHeader("To", d.cfg.EmailTo)
	m.SetHeader("Subject", "Domain Availability Alert")
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(d.cfg.SMTPHost, d.cfg.SMTPPort, d.cfg.SMTPUser, d.cfg.SMTPPass)
	dialer.SSL = d.cfg.SMTPPort == 465

	if err := dialer.DialAndSend(m); err != nil {
		log.Error().Err(err).Msg("Error sending email")
		return
	}
	log.Info().Str("to", d.cfg.EmailTo).Msg("Email notification sent")
}

type webhookPayload struct {
	Event   string   `json:"event"`
	RunID   string   `json:"run_id"`
	Domains []string `json:"domains"`
	Summary string   `json:"summary"`
	SentAt  string   `json:"sent_at"`
}

func (d *Dispatcher) sendWebhook(newlyAvailable []string, summary, runID string) {
	payload := webhookPayload{
		Event:   "domain_available",
		RunID:   runID,
		Domains: newlyAvailable,
		Summary: summary,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error encoding webhook payload")
		return
	}

	resp, err := d.http.Post(d.cfg.WebhookURL, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Msg("Error sending webhook")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		log.Info().Msg("Webhook notification sent")
	} else {
		log.Warn().Int("status", resp.StatusCode).Msg("Webhook responded with non-OK status")
	}
}
