package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Default endpoints for the public npm registry.
const (
	DefaultBaseURL      = "https://registry.npmjs.org"
	DefaultDownloadsURL = "https://api.npmjs.org/downloads"
	DefaultTimeout      = 15 * time.Second
)

// ErrNotFound flags a package name the registry does not know.
var ErrNotFound = errors.New("package not found")

// Client talks to an npm-compatible registry. Every request is single-shot
// with a bounded timeout; callers decide how failures degrade.
type Client struct {
	baseURL      string
	downloadsURL string
	httpClient   *http.Client
}

// NewClient creates a registry client. Empty baseURL selects the public npm
// registry; empty downloadsURL disables the weekly-downloads fallback lookup.
func NewClient(baseURL, downloadsURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      baseURL,
		downloadsURL: downloadsURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the packument for a package name.
func (c *Client) Fetch(ctx context.Context, name string) (*Packument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from registry: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %s for %s", resp.Status, name)
	}

	var doc Packument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode packument for %s: %w", name, err)
	}

	return &doc, nil
}

// WeeklyDownloads resolves the weekly download count for a package. The
// packument's own downloads field wins when present; otherwise the downloads
// endpoint is queried. Any failure degrades to zero, never to an error.
func (c *Client) WeeklyDownloads(ctx context.Context, name string, doc *Packument) int64 {
	if doc != nil && doc.Downloads != nil {
		return *doc.Downloads
	}
	if c.downloadsURL == "" {
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.downloadsURL+"/point/last-week/"+name, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var point struct {
		Downloads int64 `json:"downloads"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&point); err != nil {
		return 0
	}
	if point.Downloads < 0 {
		return 0
	}

	return point.Downloads
}

// Ping checks that the registry answers at all. Used as a boot-time
// reachability probe, not as part of any per-package fetch.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("registry returned %s", resp.Status)
	}
	return nil
}
