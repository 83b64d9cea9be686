package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"candy-bianca-backend/internal/status"
)

const (
	// DefaultTimeout is applied to every request unless the caller overrides it.
	DefaultTimeout = 10 * time.Second

	statusKey     = "statusLavatrice"
	statisticsKey = "statusCounters"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrMissingStatus is returned when the read endpoint lacks statusLavatrice.
	ErrMissingStatus = errors.New("response has no statusLavatrice object")
)

// Client talks to the washer's local HTTP endpoints.
type Client struct {
	host    string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for host (an address without scheme).
func NewClient(host string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:    host,
		baseURL: "http://" + host,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NewClientWithURL creates a client against a full base URL; used by tests.
func NewClientWithURL(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	c := NewClient("", timeout, logger)
	c.baseURL = baseURL
	c.host = baseURL
	return c
}

// Host returns the address this client talks to.
func (c *Client) Host() string {
	return c.host
}

// FetchStatus reads the current status. Usage counters are merged in under
// status.StatisticsKey when the statistics endpoint answers; a failing
// statistics request does not fail the poll.
func (c *Client) FetchStatus(ctx context.Context) (status.Raw, error) {
	body, err := c.getJSON(ctx, "/http-read.json?encrypted=2")
	if err != nil {
		return nil, err
	}

	raw, ok := body[statusKey].(map[string]any)
	if !ok {
		return nil, ErrMissingStatus
	}
	st := status.Raw(raw)

	stats, err := c.getJSON(ctx, "/http-getStatistics.json?encrypted=2")
	if err != nil {
		c.logger.Debug("Statistics request failed",
			zap.String("host", c.host),
			zap.Error(err))
		return st, nil
	}
	counters, ok := stats[statisticsKey].(map[string]any)
	if !ok {
		c.logger.Debug("Unexpected statistics response",
			zap.String("host", c.host),
			zap.Any("response", stats))
		return st, nil
	}
	st[status.StatisticsKey] = counters
	return st, nil
}

// Probe checks that the host answers like a washer.
func (c *Client) Probe(ctx context.Context) error {
	body, err := c.getJSON(ctx, "/http-read.json?encrypted=2")
	if err != nil {
		return err
	}
	if _, ok := body[statusKey]; !ok {
		return ErrMissingStatus
	}
	return nil
}

// Write sends an encoded command. The body of the reply is ignored.
func (c *Client) Write(ctx context.Context, params string) error {
	url := c.baseURL + "/http-write.json?encrypted=0&" + params
	c.logger.Debug("Sending command", zap.String("host", c.host), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The firmware does not always send a JSON content type, so the body is
	// decoded regardless of headers.
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var out map[string]any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out, nil
}
