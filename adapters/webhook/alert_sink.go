package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"creditwatch/domain/core"
	"creditwatch/domain/drift"
	"creditwatch/internal"
	"creditwatch/ports"
)

const defaultTimeout = 10 * time.Second

// AlertSink delivers alert events as JSON POSTs to a configured webhook
// (Slack, PagerDuty, or any HTTP receiver). An empty URL disables delivery:
// alerts are logged and skipped, never fatal.
type AlertSink struct {
	url    string
	client *http.Client
	logger *internal.Logger
}

// NewAlertSink creates a webhook alert sink
func NewAlertSink(url string, logger *internal.Logger) ports.AlertSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AlertSink{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// payload is the wire shape sent to the webhook
type payload struct {
	Timestamp core.Timestamp         `json:"timestamp"`
	AlertType string                 `json:"alert_type"`
	Severity  string                 `json:"severity"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Publish posts the alert to the webhook
func (s *AlertSink) Publish(ctx context.Context, alert drift.Alert) error {
	if s.url == "" {
		s.logger.Info("no alert webhook configured, skipping alert: %s", alert.Title)
		return nil
	}

	body := payload{
		Timestamp: core.Now(),
		AlertType: alert.Type,
		Severity:  alert.Severity,
		Title:     alert.Title,
		Message:   alert.Message,
		Source:    alert.Source,
		Data:      alert.Data,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respRaw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook http %d: %s", resp.StatusCode, string(respRaw))
	}

	s.logger.Info("alert sent: %s (%s)", alert.Title, alert.Severity)
	return nil
}
