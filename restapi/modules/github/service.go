package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const githubAPI = "https://api.github.com"

// ErrManifestNotFound flags a repository (or ref) without a package.json,
// including repositories that do not exist at all.
var ErrManifestNotFound = errors.New("package.json not found in repository")

// ParseRepoURL resolves a repository reference into owner and name. Accepted
// forms: https://github.com/owner/repo (optional .git suffix and deeper
// path), git@github.com:owner/repo.git, and the owner/repo shorthand.
func ParseRepoURL(raw string) (Repo, error) {
	ref := strings.TrimSuffix(strings.TrimSpace(raw), "/")

	switch {
	case strings.HasPrefix(ref, "git@github.com:"):
		ref = strings.TrimPrefix(ref, "git@github.com:")
	case strings.HasPrefix(ref, "https://github.com/"):
		ref = strings.TrimPrefix(ref, "https://github.com/")
	case strings.HasPrefix(ref, "http://github.com/"):
		ref = strings.TrimPrefix(ref, "http://github.com/")
	case strings.HasPrefix(ref, "github.com/"):
		ref = strings.TrimPrefix(ref, "github.com/")
	case strings.Contains(ref, "://") || strings.Contains(ref, "@"):
		return Repo{}, fmt.Errorf("unsupported repository reference %q", raw)
	}

	parts := strings.Split(ref, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, fmt.Errorf("repository reference %q is not owner/repo", raw)
	}

	return Repo{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}, nil
}

// Service fetches manifests through the GitHub contents API.
type Service struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// NewService creates a manifest fetcher. An empty apiURL selects the public
// GitHub API; an empty token falls back to the GITHUB_TOKEN and GH_TOKEN
// environment variables (unauthenticated requests work but are rate-limited
// harder).
func NewService(apiURL, token string, timeout time.Duration) *Service {
	if apiURL == "" {
		apiURL = githubAPI
	}
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		apiURL:     apiURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchManifest retrieves the repository's package.json, optionally at a
// specific ref, as raw bytes.
func (s *Service) FetchManifest(ctx context.Context, repo Repo, ref string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/contents/package.json", s.apiURL, repo.Owner, repo.Name)
	if ref != "" {
		reqURL += "?ref=" + url.QueryEscape(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build manifest request for %s: %w", repo.Label(), err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3.raw")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest for %s: %w", repo.Label(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", repo.Label(), ErrManifestNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api error for %s: %s", repo.Label(), resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read manifest for %s: %w", repo.Label(), err)
	}

	return data, nil
}
