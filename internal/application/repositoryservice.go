package application

import (
	"context"
	"sort"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// DefaultTopRepositories is the length of RepositoryAggregate.TopRepositories
// when the service is built with a non-positive limit.
const DefaultTopRepositories = 10

// RepositoryService lists and reduces the public repositories of an account.
type RepositoryService struct {
	provider *GitHubClientProvider
	topN     int
}

// NewRepositoryService creates a RepositoryService keeping topN repositories
// in the aggregate's TopRepositories.
func NewRepositoryService(provider *GitHubClientProvider, topN int) *RepositoryService {
	if topN <= 0 {
		topN = DefaultTopRepositories
	}
	return &RepositoryService{provider: provider, topN: topN}
}

// Fetch lists every repository of username and reduces the list.
func (s *RepositoryService) Fetch(ctx context.Context, username string) (*model.RepositoryAggregate, error) {
	repos, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}

	agg := BuildRepositoryAggregate(repos, s.topN)
	return &agg, nil
}

// List returns the full repository list of username in API order.
func (s *RepositoryService) List(ctx context.Context, username string) ([]model.RepositorySummary, error) {
	client, err := s.provider.current()
	if err != nil {
		return nil, err
	}

	return client.ListUserRepositories(ctx, username)
}

// BuildRepositoryAggregate sums stars, forks and watchers, counts primary
// languages, and selects the topN repositories by star count. The sort is
// stable, so repositories with equal stars keep their API order.
func BuildRepositoryAggregate(repos []model.RepositorySummary, topN int) model.RepositoryAggregate {
	agg := model.RepositoryAggregate{
		TotalRepos:   len(repos),
		Languages:    map[string]int{},
		Repositories: repos,
	}
	if agg.Repositories == nil {
		agg.Repositories = []model.RepositorySummary{}
	}

	for _, r := range repos {
		agg.TotalStars += r.Stars
		agg.TotalForks += r.Forks
		agg.TotalWatchers += r.Watchers
		if r.Language != "" {
			agg.Languages[r.Language]++
		}
	}

	sorted := make([]model.RepositorySummary, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Stars > sorted[j].Stars
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	agg.TopRepositories = sorted

	return agg
}
