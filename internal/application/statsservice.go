package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// StatsService is the single entry point for the dashboard: it combines the
// profile, repository and language fetchers into one view and exposes the
// contribution fetcher alongside it.
type StatsService struct {
	profiles      *ProfileService
	repos         *RepositoryService
	languages     *LanguageService
	contributions *ContributionService
	now           func() time.Time
}

// NewStatsService creates a StatsService from the four fetchers.
func NewStatsService(
	profiles *ProfileService,
	repos *RepositoryService,
	languages *LanguageService,
	contributions *ContributionService,
) *StatsService {
	return &StatsService{
		profiles:      profiles,
		repos:         repos,
		languages:     languages,
		contributions: contributions,
		now:           time.Now,
	}
}

// FetchCombined fetches the profile and the repository list concurrently,
// then aggregates languages from that same list. The first failure cancels
// the remaining work and is returned; no partial view is ever produced.
func (s *StatsService) FetchCombined(ctx context.Context, username string) (*model.CombinedUserView, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var (
		profile   *model.UserProfile
		repoAgg   model.RepositoryAggregate
		languages *model.LanguageAggregate
	)

	g.Go(func() error {
		p, err := s.profiles.Fetch(gCtx, username)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		repos, err := s.repos.List(gCtx, username)
		if err != nil {
			return err
		}
		repoAgg = BuildRepositoryAggregate(repos, s.repos.topN)

		langs, err := s.languages.AggregateRepositories(gCtx, repos)
		if err != nil {
			return err
		}
		languages = langs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.CombinedUserView{
		Profile:      *profile,
		Repositories: repoAgg,
		Languages:    *languages,
		FetchedAt:    s.now(),
	}, nil
}

// FetchProfile returns the profile of username.
func (s *StatsService) FetchProfile(ctx context.Context, username string) (*model.UserProfile, error) {
	return s.profiles.Fetch(ctx, username)
}

// FetchRepositories returns the repository aggregate of username.
func (s *StatsService) FetchRepositories(ctx context.Context, username string) (*model.RepositoryAggregate, error) {
	return s.repos.Fetch(ctx, username)
}

// FetchLanguages returns the language aggregate of username.
func (s *StatsService) FetchLanguages(ctx context.Context, username string) (*model.LanguageAggregate, error) {
	return s.languages.Fetch(ctx, username)
}

// FetchContributions returns the contribution statistics of username.
func (s *StatsService) FetchContributions(ctx context.Context, username string) (*model.ContributionStats, error) {
	return s.contributions.Fetch(ctx, username)
}
