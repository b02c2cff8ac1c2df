// Package mapper talks to the remote mapping service that decides which
// profile value goes into which discovered field. The service owns the
// reasoning; this client owns the wire shape and nothing else — no retries,
// no fallbacks. A mapping failure surfaces to the caller, who may still
// serve cached mappings.
package mapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hiremate/formfill/field"
)

// Assignment is the service's answer for one field, keyed by the field's
// descriptor key.
type Assignment struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Request is the mapping payload. Profile is opaque user-profile JSON;
// JobDescription is the extracted posting text, which gives the service
// context for custom questions.
type Request struct {
	Fields         []field.Descriptor `json:"fields"`
	Profile        json.RawMessage    `json:"profile"`
	JobDescription string             `json:"job_description,omitempty"`
}

type response struct {
	Assignments map[string]Assignment `json:"assignments"`
	Error       string                `json:"error,omitempty"`
}

// Config tunes a Client.
type Config struct {
	// BaseURL of the mapping service, without trailing slash.
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// Timeout bounds one mapping call. Default: 60s — the service runs
	// inference and is legitimately slow.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client calls the mapping service.
type Client struct {
	cfg Config
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("mapper: base URL required")
	}
	cfg.defaults()
	return &Client{cfg: cfg}, nil
}

// Map posts the discovered fields and profile and returns the service's
// assignments, keyed like Descriptor.Key.
func (c *Client) Map(ctx context.Context, req Request) (map[string]Assignment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mapper: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/map-fields", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mapper: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mapper: call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("mapper: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapper: service returned %d: %s", resp.StatusCode, truncate(data, 200))
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("mapper: decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("mapper: service error: %s", out.Error)
	}

	c.cfg.Logger.Info("mapper: fields mapped",
		"sent", len(req.Fields), "assigned", len(out.Assignments),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return out.Assignments, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
