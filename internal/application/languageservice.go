package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// DefaultLanguageConcurrency bounds the per-repository language requests in
// flight when the service is built with a non-positive limit.
const DefaultLanguageConcurrency = 10

// LanguageService builds the byte-weighted language distribution of an account
// by fetching the language breakdown of every non-empty repository.
type LanguageService struct {
	provider    *GitHubClientProvider
	repos       *RepositoryService
	concurrency int
	logger      *slog.Logger
}

// NewLanguageService creates a LanguageService. repos is used by Fetch to list
// repositories; concurrency bounds the language requests in flight.
func NewLanguageService(provider *GitHubClientProvider, repos *RepositoryService, concurrency int, logger *slog.Logger) *LanguageService {
	if concurrency <= 0 {
		concurrency = DefaultLanguageConcurrency
	}
	return &LanguageService{
		provider:    provider,
		repos:       repos,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Fetch lists the repositories of username and aggregates their languages.
func (s *LanguageService) Fetch(ctx context.Context, username string) (*model.LanguageAggregate, error) {
	repos, err := s.repos.List(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.AggregateRepositories(ctx, repos)
}

// repoLanguages is the outcome of one per-repository language request.
type repoLanguages struct {
	repo  string
	bytes map[string]int64
	err   error
}

// AggregateRepositories fetches the languages of every repository with a
// non-zero size and merges them. A repository whose request fails is logged
// and counted in FailedRepos; the aggregate still succeeds. Only cancellation
// of ctx fails the call.
func (s *LanguageService) AggregateRepositories(ctx context.Context, repos []model.RepositorySummary) (*model.LanguageAggregate, error) {
	client, err := s.provider.current()
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[repoLanguages]().WithMaxGoroutines(s.concurrency)
	for _, repo := range repos {
		if repo.Size <= 0 {
			continue
		}
		p.Go(func() repoLanguages {
			if err := ctx.Err(); err != nil {
				return repoLanguages{repo: repo.Name, err: err}
			}
			langs, err := client.FetchRepositoryLanguages(ctx, repo)
			return repoLanguages{repo: repo.Name, bytes: langs, err: err}
		})
	}
	results := p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregating languages: %w", err)
	}

	breakdowns := make([]map[string]int64, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			s.logger.Warn("skipping repository languages", "repo", r.repo, "error", r.err)
			continue
		}
		breakdowns = append(breakdowns, r.bytes)
	}

	agg := MergeLanguages(breakdowns)
	agg.FailedRepos = failed
	return &agg, nil
}

// MergeLanguages sums per-repository language bytes into an aggregate.
// Percentages are rounded to two decimals; ranking is by bytes descending with
// ties broken by name. The merge is commutative: input order never changes
// the result. Languages with zero bytes are dropped.
func MergeLanguages(breakdowns []map[string]int64) model.LanguageAggregate {
	agg := model.EmptyLanguageAggregate()

	var total int64
	for _, langs := range breakdowns {
		for name, n := range langs {
			if n <= 0 {
				continue
			}
			agg.Bytes[name] += n
			agg.RepoCounts[name]++
			total += n
		}
	}
	if total == 0 {
		return model.EmptyLanguageAggregate()
	}

	for name, n := range agg.Bytes {
		pct := roundPercent(float64(n) / float64(total) * 100)
		agg.Percentages[name] = pct
		agg.Ranked = append(agg.Ranked, model.LanguageShare{
			Name:       name,
			Bytes:      n,
			Percentage: pct,
			Repos:      agg.RepoCounts[name],
		})
	}

	sort.Slice(agg.Ranked, func(i, j int) bool {
		if agg.Ranked[i].Bytes != agg.Ranked[j].Bytes {
			return agg.Ranked[i].Bytes > agg.Ranked[j].Bytes
		}
		return agg.Ranked[i].Name < agg.Ranked[j].Name
	})

	agg.TotalLanguages = len(agg.Ranked)
	agg.Top = agg.Ranked[:min(model.TopLanguagesLimit, len(agg.Ranked))]

	return agg
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
