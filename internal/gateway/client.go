// Package gateway talks to the alert platform HTTP API: authentication,
// vocabulary lookups, and alert submission, plus the notification service
// trigger that starts downstream delivery.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meteoalerta/meteo-alert-service/internal/observability"
	"github.com/meteoalerta/meteo-alert-service/internal/report"
)

// Client is an authenticated client for the alert platform. Call Login
// before any other method; the bearer token is kept for the client's
// lifetime.
type Client struct {
	baseURL    string
	notifyURL  string
	email      string
	password   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a platform client. notifyURL may be empty, in which case
// StartProcessing is a no-op.
func NewClient(baseURL, notifyURL, email, password string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		notifyURL: strings.TrimRight(notifyURL, "/"),
		email:     email,
		password:  password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Login authenticates and stores the bearer token for subsequent calls.
func (c *Client) Login(ctx context.Context) error {
	payload := map[string]string{"email": c.email, "password": c.password}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("login", resp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if loginResp.Token == "" {
		return fmt.Errorf("login response carried no token")
	}

	c.token = loginResp.Token
	c.logger.Info("gateway login succeeded")
	return nil
}

// Events fetches the event vocabulary.
func (c *Client) Events(ctx context.Context) ([]report.Event, error) {
	start := time.Now()
	var events []report.Event
	if err := c.getJSON(ctx, "/events", &events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	c.metrics.VocabularyFetchDuration.WithLabelValues("events").Observe(time.Since(start).Seconds())
	return events, nil
}

// Cities fetches the city vocabulary.
func (c *Client) Cities(ctx context.Context) ([]report.City, error) {
	start := time.Now()
	var cities []report.City
	if err := c.getJSON(ctx, "/cities", &cities); err != nil {
		return nil, fmt.Errorf("fetch cities: %w", err)
	}
	c.metrics.VocabularyFetchDuration.WithLabelValues("cities").Observe(time.Since(start).Seconds())
	return cities, nil
}

// SubmitAlerts posts the run's export records as one batch. An empty batch
// is skipped without a request.
func (c *Client) SubmitAlerts(ctx context.Context, records []report.ExportRecord) error {
	if len(records) == 0 {
		c.logger.Info("no export records, skipping alert submission")
		return nil
	}

	payload := struct {
		Alerts []report.ExportRecord `json:"alerts"`
	}{Alerts: records}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode alert batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/alerts/batch", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create batch request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit alerts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("submit alerts", resp)
	}

	c.logger.Info("alert batch submitted", "records", len(records))
	return nil
}

// StartProcessing asks the notification service to begin delivering the
// alerts just submitted. No-op when the client has no notify URL.
func (c *Client) StartProcessing(ctx context.Context) error {
	if c.notifyURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.notifyURL+"/alerts/start", nil)
	if err != nil {
		return fmt.Errorf("create start request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("start alert processing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("start alert processing", resp)
	}

	c.logger.Info("alert processing started", "url", c.notifyURL)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("gateway API error: %s: status %d: %s", op, resp.StatusCode, body)
}
