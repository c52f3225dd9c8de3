package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/types"
)

func strPtr(s string) *string { return &s }

func repo(name, updatedAt string) types.Repository {
	return types.Repository{Name: name, UpdatedAt: updatedAt}
}

func TestFilterAndSummarize_YearFilter(t *testing.T) {
	tests := []struct {
		name      string
		repos     []types.Repository
		year      int
		wantNames []string
	}{
		{
			name: "keeps only repos updated in the target year",
			repos: []types.Repository{
				repo("current", "2025-06-01T10:00:00Z"),
				repo("old", "2024-12-31T23:59:59Z"),
				repo("also-current", "2025-01-01T00:00:00Z"),
			},
			year:      2025,
			wantNames: []string{"current", "also-current"},
		},
		{
			name: "preserves input order",
			repos: []types.Repository{
				repo("b", "2025-03-01T00:00:00Z"),
				repo("a", "2025-02-01T00:00:00Z"),
				repo("c", "2025-01-01T00:00:00Z"),
			},
			year:      2025,
			wantNames: []string{"b", "a", "c"},
		},
		{
			name: "different target year keeps different repos",
			repos: []types.Repository{
				repo("current", "2025-06-01T10:00:00Z"),
				repo("old", "2024-12-31T23:59:59Z"),
			},
			year:      2024,
			wantNames: []string{"old"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries, err := FilterAndSummarize(tt.repos, tt.year)
			require.NoError(t, err)

			names := make([]string, 0, len(summaries))
			for _, s := range summaries {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestFilterAndSummarize_NoActivity(t *testing.T) {
	repos := []types.Repository{
		repo("old-1", "2023-06-01T10:00:00Z"),
		repo("old-2", "2024-11-20T10:00:00Z"),
	}

	summaries, err := FilterAndSummarize(repos, 2025)
	require.Error(t, err)
	assert.Nil(t, summaries)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoActivity))
	assert.Contains(t, err.Error(), "no activity")
}

func TestFilterAndSummarize_CapsListLength(t *testing.T) {
	repos := make([]types.Repository, 0, MaxRepos+25)
	for i := 0; i < MaxRepos+25; i++ {
		repos = append(repos, repo(fmt.Sprintf("repo-%03d", i), "2025-05-01T00:00:00Z"))
	}

	summaries, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)
	require.Len(t, summaries, MaxRepos)

	// First N in input order survive.
	assert.Equal(t, "repo-000", summaries[0].Name)
	assert.Equal(t, fmt.Sprintf("repo-%03d", MaxRepos-1), summaries[MaxRepos-1].Name)
}

func TestFilterAndSummarize_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", DescriptionLimit+100)
	short := "a small tool"

	repos := []types.Repository{
		{Name: "long-desc", UpdatedAt: "2025-01-15T00:00:00Z", Description: &long},
		{Name: "short-desc", UpdatedAt: "2025-01-15T00:00:00Z", Description: &short},
		{Name: "no-desc", UpdatedAt: "2025-01-15T00:00:00Z"},
	}

	summaries, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	require.NotNil(t, summaries[0].Description)
	assert.Len(t, *summaries[0].Description, DescriptionLimit)

	require.NotNil(t, summaries[1].Description)
	assert.Equal(t, short, *summaries[1].Description)

	assert.Nil(t, summaries[2].Description)
}

func TestFilterAndSummarize_TruncatesTopics(t *testing.T) {
	repos := []types.Repository{
		{
			Name:      "many-topics",
			UpdatedAt: "2025-01-15T00:00:00Z",
			Topics:    []string{"go", "cli", "devtools", "github", "recap", "extra", "more"},
		},
		{
			Name:      "no-topics",
			UpdatedAt: "2025-01-15T00:00:00Z",
		},
	}

	summaries, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "cli", "devtools", "github", "recap"}, summaries[0].Topics)
	assert.Empty(t, summaries[1].Topics)
}

func TestFilterAndSummarize_PassesThroughLanguageAndTimestamp(t *testing.T) {
	repos := []types.Repository{
		{
			Name:      "svc",
			UpdatedAt: "2025-08-09T12:34:56Z",
			Language:  strPtr("Go"),
		},
	}

	summaries, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	require.NotNil(t, summaries[0].Language)
	assert.Equal(t, "Go", *summaries[0].Language)
	assert.Equal(t, "2025-08-09T12:34:56Z", summaries[0].UpdatedAt)
}

func TestFilterAndSummarize_Deterministic(t *testing.T) {
	repos := []types.Repository{
		repo("one", "2025-02-01T00:00:00Z"),
		repo("two", "2025-01-01T00:00:00Z"),
	}

	first, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)
	second, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFilterAndSummarize_OctocatScenario(t *testing.T) {
	// Eight public repos, exactly two updated in 2025.
	repos := []types.Repository{
		repo("hello-world", "2025-03-14T09:00:00Z"),
		repo("spoon-knife", "2024-07-01T00:00:00Z"),
		repo("octo-site", "2025-01-02T00:00:00Z"),
		repo("boysenberry", "2023-05-05T00:00:00Z"),
		repo("test-repo1", "2022-01-01T00:00:00Z"),
		repo("linguist", "2024-11-11T00:00:00Z"),
		repo("git-consortium", "2021-09-09T00:00:00Z"),
		repo("octo-army", "2020-02-02T00:00:00Z"),
	}

	summaries, err := FilterAndSummarize(repos, 2025)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "hello-world", summaries[0].Name)
	assert.Equal(t, "octo-site", summaries[1].Name)
}
