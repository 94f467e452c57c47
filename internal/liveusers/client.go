// Package liveusers proxies the realtime backend's live user count.
package liveusers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Snapshot is the realtime backend's view of connected users.
type Snapshot struct {
	LiveUsers int            `json:"liveUsers"`
	ByAgent   map[string]int `json:"byAgent"`
}

var ErrNotConfigured = errors.New("live users backend is not configured")

// Client calls GET {baseURL}/api/live-users. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	if c == nil || c.baseURL == "" {
		return Snapshot{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/live-users", nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Snapshot{}, fmt.Errorf("Backend returned %d", resp.StatusCode)
	}

	var out Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Snapshot{}, fmt.Errorf("decode live users: %w", err)
	}
	if out.ByAgent == nil {
		out.ByAgent = map[string]int{}
	}
	return out, nil
}
