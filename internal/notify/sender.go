// Package notify sends operator emails through a Resend-compatible HTTP API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Config holds the email transport settings.
type Config struct {
	APIKey string
	// Domain is the sending domain; the from address is derived from it.
	Domain string
	// AdminEmail always receives a copy. UserEmail, when set, is the
	// primary recipient with the admin in CC.
	AdminEmail string
	UserEmail  string
	// Endpoint overrides the API URL, used by tests.
	Endpoint string
	Timeout  time.Duration
}

// Sender delivers notification emails.
type Sender struct {
	config Config
	client *http.Client
}

// NewSender creates an email sender.
func NewSender(config Config) *Sender {
	if config.Endpoint == "" {
		config.Endpoint = defaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Sender{
		config: config,
		client: &http.Client{},
	}
}

// Configured reports whether the transport has everything required to send.
func (s *Sender) Configured() bool {
	return s.config.APIKey != "" && s.config.AdminEmail != "" && s.config.Domain != ""
}

type emailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendTeardownNotice sends the warning email announcing the upcoming
// automatic teardown at the given local wall-clock time.
func (s *Sender) SendTeardownNotice(ctx context.Context, teardownTime, timezone string) error {
	localTime := fmt.Sprintf("%s %s", teardownTime, TimezoneAbbr(timezone))

	body := fmt.Sprintf(`<div style="font-family:monospace;padding:20px">
<h1>Scheduled Teardown Reminder</h1>
<p>Your infrastructure will be torn down automatically at <strong>%s</strong>.</p>
<ul>
<li>Server and containers will be stopped</li>
<li>The control plane stays active for re-deployment</li>
<li>All data and state are preserved</li>
</ul>
<p>To prevent the teardown, delay or disable the schedule in the control plane at
<a href="https://control.%s">control.%s</a>.</p>
<p style="color:#666;font-size:12px">This is an automated reminder. This mailbox is not monitored;
for support contact %s.</p>
</div>`, localTime, s.config.Domain, s.config.Domain, s.config.AdminEmail)

	payload := emailPayload{
		From:    fmt.Sprintf("stackctl <noreply@%s>", s.config.Domain),
		To:      []string{s.config.AdminEmail},
		Subject: fmt.Sprintf("Scheduled teardown at %s", localTime),
		HTML:    body,
	}
	if s.config.UserEmail != "" {
		payload.To = []string{s.config.UserEmail}
		payload.CC = []string{s.config.AdminEmail}
	}

	return s.send(ctx, payload)
}

func (s *Sender) send(ctx context.Context, payload emailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxTimeout, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send email: HTTP %d: %s", resp.StatusCode, detail)
	}

	return nil
}

// TimezoneAbbr maps the timezones operators actually configure to a short
// label for email copy; anything else falls back to UTC.
func TimezoneAbbr(timezone string) string {
	switch timezone {
	case "Europe/Zurich":
		return "CET"
	case "America/New_York":
		return "EST"
	case "America/Los_Angeles":
		return "PST"
	default:
		return "UTC"
	}
}
