// Package advisories queries the OSV index for known vulnerability
// identifiers affecting npm packages.
package advisories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/osv-scanner/pkg/models"
)

// DefaultBaseURL is the public OSV API endpoint.
const DefaultBaseURL = "https://api.osv.dev"

// Client talks to an OSV-compatible vulnerability index.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an OSV client. Empty baseURL selects the public index.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type queryRequest struct {
	Package queryPackage `json:"package"`
}

type queryPackage struct {
	Name      string           `json:"name"`
	Ecosystem models.Ecosystem `json:"ecosystem"`
}

type queryResponse struct {
	Vulns []models.Vulnerability `json:"vulns"`
}

// AdvisoryIDs returns the OSV identifiers of all advisories recorded against
// the named npm package, across every version. The result may be empty; it is
// never nil on success.
func (c *Client) AdvisoryIDs(ctx context.Context, name string) ([]string, error) {
	payload := queryRequest{
		Package: queryPackage{
			Name:      name,
			Ecosystem: models.EcosystemNPM,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal osv query for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build osv query for %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query osv for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osv returned %s for %s", resp.Status, name)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode osv response for %s: %w", name, err)
	}

	ids := make([]string, 0, len(parsed.Vulns))
	for _, vuln := range parsed.Vulns {
		ids = append(ids, vuln.ID)
	}

	return ids, nil
}
