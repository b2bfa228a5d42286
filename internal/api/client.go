// Package api is the thin HTTP client the terminal viewers use to talk to
// a running atcmapd instance.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tkoksal/atcmap/internal/server"
)

// Client talks to the atcmapd HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Snapshot fetches the snapshot metadata.
func (c *Client) Snapshot(ctx context.Context) (server.SnapshotMeta, error) {
	var meta server.SnapshotMeta
	err := c.get(ctx, "/api/v1/snapshot", &meta)
	return meta, err
}

// Stations fetches the station listing with counts.
func (c *Client) Stations(ctx context.Context) ([]server.StationView, error) {
	var views []server.StationView
	err := c.get(ctx, "/api/v1/stations", &views)
	return views, err
}

// Station fetches one station with its coverage geometry.
func (c *Client) Station(ctx context.Context, callsign string) (server.StationView, error) {
	var view server.StationView
	err := c.get(ctx, "/api/v1/stations/"+callsign, &view)
	return view, err
}

// Refresh asks the daemon for an immediate refresh cycle.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/refresh", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("refresh: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
