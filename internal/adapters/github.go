package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/types"
)

const (
	acceptHeader = "application/vnd.github.v3+json"
	userAgent    = "year-in-code/1.0"

	// Most-recently-updated first, owned repos only, one page of 100.
	reposQuery = "sort=updated&per_page=100&type=owner"
)

// GitHubClient fetches public user and repository data from the GitHub REST
// API. All calls are read-only; responses may be cached by callers for a
// short window as a performance hint, never a correctness requirement.
type GitHubClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGitHubClient creates a client against baseURL. token may be empty; when
// set it is sent as a bearer credential to raise the rate-limit ceiling.
func NewGitHubClient(baseURL, token string) *GitHubClient {
	return &GitHubClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// FetchUser returns the public profile for username.
func (g *GitHubClient) FetchUser(ctx context.Context, username string) (*types.UserProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.NewValidation("username cannot be empty")
	}

	body, err := g.get(ctx, fmt.Sprintf("%s/users/%s", g.baseURL, username), username)
	if err != nil {
		return nil, err
	}

	var user types.UserProfile
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apperrors.NewUpstream("failed to decode GitHub user response", err)
	}
	return &user, nil
}

// FetchRepositories returns up to 100 repositories owned by username,
// most-recently-updated first.
func (g *GitHubClient) FetchRepositories(ctx context.Context, username string) ([]types.Repository, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.NewValidation("username cannot be empty")
	}

	url := fmt.Sprintf("%s/users/%s/repos?%s", g.baseURL, username, reposQuery)
	body, err := g.get(ctx, url, username)
	if err != nil {
		return nil, err
	}

	var repos []types.Repository
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, apperrors.NewUpstream("failed to decode GitHub repository response", err)
	}
	return repos, nil
}

func (g *GitHubClient) get(ctx context.Context, url, username string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewTransport("failed to build GitHub request", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransport("GitHub request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, apperrors.NewTransport("failed to read GitHub response", err)
		}
		return body, nil
	case http.StatusNotFound:
		return nil, apperrors.NewNotFound(username)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return nil, apperrors.NewRateLimited()
	default:
		return nil, apperrors.NewUpstream(fmt.Sprintf("GitHub API error: %s", resp.Status), nil)
	}
}
