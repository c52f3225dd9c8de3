package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitgraph/year-in-code/internal/apperrors"
)

const userBody = `{
	"login": "octocat",
	"name": "The Octocat",
	"avatar_url": "https://avatars.example/octocat.png",
	"bio": "Just a cat.",
	"public_repos": 8,
	"followers": 4200,
	"html_url": "https://github.com/octocat",
	"some_future_field": true
}`

const reposBody = `[
	{
		"name": "hello-world",
		"description": "My first repository",
		"language": "Go",
		"topics": ["demo", "starter"],
		"stargazers_count": 12,
		"updated_at": "2025-03-14T09:00:00Z",
		"html_url": "https://github.com/octocat/hello-world",
		"fork": false
	},
	{
		"name": "octo-site",
		"description": null,
		"language": null,
		"topics": [],
		"stargazers_count": 0,
		"updated_at": "2025-01-02T00:00:00Z",
		"html_url": "https://github.com/octocat/octo-site"
	}
]`

func TestFetchUser(t *testing.T) {
	var gotPath, gotAccept, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userBody))
	}))
	defer upstream.Close()

	client := NewGitHubClient(upstream.URL, "secret-token")
	user, err := client.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, "/users/octocat", gotPath)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "The Octocat", user.Name)
	assert.Equal(t, 8, user.PublicRepos)
	assert.Equal(t, 4200, user.Followers)
}

func TestFetchUser_NoTokenNoAuthHeader(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(userBody))
	}))
	defer upstream.Close()

	client := NewGitHubClient(upstream.URL, "")
	_, err := client.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestFetchRepositories(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reposBody))
	}))
	defer upstream.Close()

	client := NewGitHubClient(upstream.URL, "")
	repos, err := client.FetchRepositories(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, "sort=updated&per_page=100&type=owner", gotQuery)

	require.Len(t, repos, 2)
	assert.Equal(t, "hello-world", repos[0].Name)
	require.NotNil(t, repos[0].Description)
	assert.Equal(t, "My first repository", *repos[0].Description)
	require.NotNil(t, repos[0].Language)
	assert.Equal(t, "Go", *repos[0].Language)
	assert.Equal(t, []string{"demo", "starter"}, repos[0].Topics)
	assert.Equal(t, 12, repos[0].StargazersCount)

	assert.Nil(t, repos[1].Description)
	assert.Nil(t, repos[1].Language)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   apperrors.Kind
		msgContain string
	}{
		{name: "not found", status: http.StatusNotFound, wantKind: apperrors.KindNotFound, msgContain: "not found"},
		{name: "forbidden maps to rate limit", status: http.StatusForbidden, wantKind: apperrors.KindRateLimited, msgContain: "GITHUB_TOKEN"},
		{name: "too many requests maps to rate limit", status: http.StatusTooManyRequests, wantKind: apperrors.KindRateLimited, msgContain: "rate limit"},
		{name: "server error maps to upstream with status text", status: http.StatusBadGateway, wantKind: apperrors.KindUpstream, msgContain: "502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer upstream.Close()

			client := NewGitHubClient(upstream.URL, "")
			_, err := client.FetchUser(context.Background(), "someone")
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, tt.wantKind), "kind = %s", apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.msgContain)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // closed before use

	client := NewGitHubClient(upstream.URL, "")
	_, err := client.FetchUser(context.Background(), "octocat")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransport))
}

func TestEmptyUsernameRejected(t *testing.T) {
	client := NewGitHubClient("https://api.github.com", "")

	_, err := client.FetchUser(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = client.FetchRepositories(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
