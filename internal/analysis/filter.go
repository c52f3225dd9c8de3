package analysis

import (
	"strconv"

	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/types"
)

// Caps bounding the payload sent to the model.
const (
	MaxRepos         = 50
	DescriptionLimit = 200
	TopicLimit       = 5
)

// FilterAndSummarize keeps repositories last updated in targetYear and
// projects them to token-budget-limited summaries. Pure: same input, same
// output; input order (most-recently-updated first) is preserved.
//
// An empty result after filtering is terminal for the run and reported as a
// no-activity failure, never retried.
func FilterAndSummarize(repos []types.Repository, targetYear int) ([]types.RepositorySummary, error) {
	prefix := strconv.Itoa(targetYear)

	kept := make([]types.Repository, 0, len(repos))
	for _, r := range repos {
		if len(r.UpdatedAt) >= len(prefix) && r.UpdatedAt[:len(prefix)] == prefix {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		return nil, apperrors.NewNoActivity(targetYear)
	}

	if len(kept) > MaxRepos {
		kept = kept[:MaxRepos]
	}

	summaries := make([]types.RepositorySummary, 0, len(kept))
	for _, r := range kept {
		summaries = append(summaries, summarize(r))
	}
	return summaries, nil
}

func summarize(r types.Repository) types.RepositorySummary {
	s := types.RepositorySummary{
		Name:      r.Name,
		Language:  r.Language,
		UpdatedAt: r.UpdatedAt,
	}

	if r.Description != nil {
		d := *r.Description
		if len(d) > DescriptionLimit {
			d = d[:DescriptionLimit]
		}
		s.Description = &d
	}

	topics := r.Topics
	if len(topics) > TopicLimit {
		topics = topics[:TopicLimit]
	}
	// Copy so summaries never alias the caller's slice.
	s.Topics = append([]string(nil), topics...)

	return s
}
