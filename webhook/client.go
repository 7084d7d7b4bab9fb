// Package webhook sends focus sessions recorded by `active-window watch` to a
// custom HTTP endpoint, so they can feed other services or automations.
//
// Example usage:
//
//	client, err := webhook.NewClient("https://example.com/webhook")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client.SetHeader("Authorization", "Bearer "+token)
//
//	err = client.SubmitSessions(tracker.Drain(), nil)
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/internal/tracker"
)

// Configuration constants
const (
	defaultRequestTimeout = 30 * time.Second
	maxRetries            = 3
	payloadSource         = "active-window"
	payloadVersion        = "1.0.0"
)

var baseRetryDelay = 1 * time.Second

type Session = tracker.Session

// Payload is the JSON document posted to the webhook endpoint.
type Payload struct {
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Current   *Session               `json:"current,omitempty"`
	Sessions  []Session              `json:"sessions"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Client provides methods for sending focus sessions to a webhook endpoint.
type Client struct {
	webhookURL    string
	httpClient    *http.Client
	CustomHeaders map[string]string
}

// NewClient creates a new webhook client.
// The webhookURL should be a valid HTTP or HTTPS URL.
//
// If webhookURL is empty, it will attempt to read from WEBHOOK_URL
// environment variable.
func NewClient(webhookURL string) (*Client, error) {
	if webhookURL == "" {
		webhookURL = os.Getenv("WEBHOOK_URL")
	}

	if webhookURL == "" {
		return nil, fmt.Errorf("webhook URL not provided\n\nSet via:\n  1. WEBHOOK_URL environment variable\n  2. [webhook] url in config.toml\n\nExample: https://example.com/active-window/webhook")
	}

	if !strings.HasPrefix(webhookURL, "http://") && !strings.HasPrefix(webhookURL, "https://") {
		return nil, fmt.Errorf("invalid webhook URL: must start with http:// or https://\n\nProvided: %s", webhookURL)
	}

	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		CustomHeaders: make(map[string]string),
	}, nil
}

// Close is a no-op, kept so both sinks share the same shape.
func (c *Client) Close() error {
	return nil
}

func (c *Client) debugLog(format string, args ...interface{}) {
	logging.Debugf("[WEBHOOK] "+format, args...)
}

// SubmitSessions posts the completed sessions and, if non-nil, the ongoing
// one. Invalid sessions are skipped. Nothing is sent when there is nothing
// valid to report.
func (c *Client) SubmitSessions(sessions []Session, current *Session) error {
	valid := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		if err := validateSession(session); err != nil {
			logging.Warningf("[WEBHOOK] Skipping invalid session for %s: %v", session.Name, err)
			continue
		}
		valid = append(valid, session)
	}

	if len(valid) == 0 && current == nil {
		c.debugLog("No sessions to submit")
		return nil
	}

	now := time.Now()
	payload := Payload{
		Timestamp: now,
		Source:    payloadSource,
		Version:   payloadVersion,
		Current:   current,
		Sessions:  valid,
		Metadata: map[string]interface{}{
			"session_count": len(valid),
			"submitted":     now.Format(time.RFC3339),
		},
	}

	if err := c.sendPayload(payload); err != nil {
		return err
	}
	logging.Successf("[WEBHOOK] Sent %d sessions", len(valid))
	return nil
}

// sendPayload sends the payload with retry logic.
func (c *Client) sendPayload(payload Payload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	c.debugLog("Payload: %s", string(jsonData))

	var lastErr error
	retryDelay := baseRetryDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			c.debugLog("Retry attempt %d/%d after %v", attempt, maxRetries, retryDelay)
			time.Sleep(retryDelay)
			retryDelay *= 2 // Exponential backoff
		}

		req, err := http.NewRequest(http.MethodPost, c.webhookURL, bytes.NewReader(jsonData))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", payloadSource+"/"+payloadVersion)
		for key, value := range c.CustomHeaders {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		c.debugLog("Response status: %d, body: %s", resp.StatusCode, string(body))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		// Client errors - don't retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("webhook endpoint returned error %d: %s\n\nTroubleshooting:\n  1. Verify webhook URL is correct\n  2. Check authentication headers if required\n  3. Verify endpoint accepts JSON payloads", resp.StatusCode, string(body))
		}

		lastErr = fmt.Errorf("webhook endpoint returned error %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("failed after %d attempts: %w\n\nTroubleshooting:\n  1. Check network connectivity\n  2. Verify webhook endpoint is accessible\n  3. Check endpoint logs for errors", maxRetries, lastErr)
}

func validateSession(session Session) error {
	if session.Name == "" {
		return fmt.Errorf("name is required")
	}
	if session.Start.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if session.End.IsZero() {
		return fmt.Errorf("end_time is required")
	}
	if session.End.Before(session.Start) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if session.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	return nil
}

// SetHeader sets a custom HTTP header to be included in all webhook requests.
func (c *Client) SetHeader(key, value string) {
	c.CustomHeaders[key] = value
}

// SetTimeout sets the HTTP request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}
