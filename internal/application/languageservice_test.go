package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

func newLanguageService(client *mockGitHubClient, concurrency int) *application.LanguageService {
	provider := application.NewGitHubClientProvider(client)
	repos := application.NewRepositoryService(provider, 10)
	return application.NewLanguageService(provider, repos, concurrency, discardLogger())
}

func TestMergeLanguages_PercentagesSumToHundred(t *testing.T) {
	agg := application.MergeLanguages([]map[string]int64{
		{"Go": 333, "Shell": 333},
		{"Rust": 334, "Go": 1},
		{"C": 7, "Makefile": 13},
	})

	var sum float64
	for _, pct := range agg.Percentages {
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 0.1)
	assert.Equal(t, 5, agg.TotalLanguages)
}

func TestMergeLanguages_RankingAndRepoCounts(t *testing.T) {
	agg := application.MergeLanguages([]map[string]int64{
		{"Go": 600, "Shell": 100},
		{"Go": 200, "TypeScript": 100},
	})

	require.Len(t, agg.Ranked, 3)
	assert.Equal(t, "Go", agg.Ranked[0].Name)
	assert.Equal(t, int64(800), agg.Ranked[0].Bytes)
	assert.Equal(t, 2, agg.Ranked[0].Repos)
	assert.InDelta(t, 80.0, agg.Ranked[0].Percentage, 0.001)

	// Equal bytes rank by name.
	assert.Equal(t, "Shell", agg.Ranked[1].Name)
	assert.Equal(t, "TypeScript", agg.Ranked[2].Name)
	assert.InDelta(t, 10.0, agg.Percentages["Shell"], 0.001)
	assert.Equal(t, 1, agg.RepoCounts["TypeScript"])
}

func TestMergeLanguages_RoundsToTwoDecimals(t *testing.T) {
	agg := application.MergeLanguages([]map[string]int64{{"A": 1, "B": 2}})

	assert.Equal(t, 33.33, agg.Percentages["A"])
	assert.Equal(t, 66.67, agg.Percentages["B"])
}

func TestMergeLanguages_TopIsLimited(t *testing.T) {
	langs := map[string]int64{}
	for i := range 15 {
		langs[fmt.Sprintf("lang-%02d", i)] = int64(100 + i)
	}

	agg := application.MergeLanguages([]map[string]int64{langs})

	assert.Len(t, agg.Ranked, 15)
	require.Len(t, agg.Top, model.TopLanguagesLimit)
	assert.Equal(t, "lang-14", agg.Top[0].Name)
	assert.Equal(t, agg.Ranked[:model.TopLanguagesLimit], agg.Top)
}

func TestMergeLanguages_DropsZeroBytes(t *testing.T) {
	agg := application.MergeLanguages([]map[string]int64{{"Go": 100, "Empty": 0}})

	assert.NotContains(t, agg.Bytes, "Empty")
	assert.NotContains(t, agg.Percentages, "Empty")
	assert.Equal(t, 1, agg.TotalLanguages)
}

func TestMergeLanguages_Empty(t *testing.T) {
	for _, input := range [][]map[string]int64{nil, {}, {{}}, {{"Go": 0}}} {
		agg := application.MergeLanguages(input)

		assert.Equal(t, 0, agg.TotalLanguages)
		assert.NotNil(t, agg.Bytes)
		assert.Empty(t, agg.Bytes)
		assert.NotNil(t, agg.Percentages)
		assert.NotNil(t, agg.Ranked)
		assert.NotNil(t, agg.Top)
	}
}

func TestMergeLanguages_OrderIndependent(t *testing.T) {
	a := map[string]int64{"Go": 10, "C": 5}
	b := map[string]int64{"Rust": 5, "Go": 3}
	c := map[string]int64{"Zig": 1}

	want := application.MergeLanguages([]map[string]int64{a, b, c})
	got := application.MergeLanguages([]map[string]int64{c, a, b})

	assert.Equal(t, want, got)
}

func TestAggregateRepositories_SkipsEmptyRepositories(t *testing.T) {
	client := &mockGitHubClient{
		fetchLangs: func(_ context.Context, r model.RepositorySummary) (map[string]int64, error) {
			assert.NotEqual(t, "empty", r.Name, "size-zero repositories must not be queried")
			return map[string]int64{"Go": 100}, nil
		},
	}
	svc := newLanguageService(client, 4)

	agg, err := svc.AggregateRepositories(context.Background(), []model.RepositorySummary{
		repo("one", 0, 10), repo("empty", 0, 0), repo("two", 0, 20),
	})

	require.NoError(t, err)
	assert.Equal(t, int32(2), client.langCalls.Load())
	assert.Equal(t, int64(200), agg.Bytes["Go"])
	assert.Equal(t, 2, agg.RepoCounts["Go"])
}

func TestAggregateRepositories_PartialFailure(t *testing.T) {
	client := &mockGitHubClient{
		fetchLangs: func(_ context.Context, r model.RepositorySummary) (map[string]int64, error) {
			if r.Name == "broken" {
				return nil, &driven.UpstreamError{StatusCode: 500, Message: "Server Error"}
			}
			return map[string]int64{"Go": 50, "Shell": 50}, nil
		},
	}
	svc := newLanguageService(client, 2)

	agg, err := svc.AggregateRepositories(context.Background(), []model.RepositorySummary{
		repo("ok-1", 0, 1), repo("broken", 0, 1), repo("ok-2", 0, 1),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, agg.FailedRepos)
	assert.Equal(t, int64(100), agg.Bytes["Go"])
	assert.InDelta(t, 50.0, agg.Percentages["Go"], 0.001)
}

func TestAggregateRepositories_NoRepositories(t *testing.T) {
	client := &mockGitHubClient{}
	svc := newLanguageService(client, 2)

	agg, err := svc.AggregateRepositories(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, agg.TotalLanguages)
	assert.Empty(t, agg.Percentages)
	assert.Equal(t, int32(0), client.langCalls.Load())
}

func TestAggregateRepositories_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	client := &mockGitHubClient{
		fetchLangs: func(_ context.Context, _ model.RepositorySummary) (map[string]int64, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return map[string]int64{"Go": 1}, nil
		},
	}
	svc := newLanguageService(client, 3)

	repos := make([]model.RepositorySummary, 0, 20)
	for i := range 20 {
		repos = append(repos, repo(fmt.Sprintf("r%d", i), 0, 1))
	}

	agg, err := svc.AggregateRepositories(context.Background(), repos)

	require.NoError(t, err)
	assert.Equal(t, int64(20), agg.Bytes["Go"])
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestAggregateRepositories_CancelledContextFails(t *testing.T) {
	client := &mockGitHubClient{
		fetchLangs: func(ctx context.Context, _ model.RepositorySummary) (map[string]int64, error) {
			return nil, ctx.Err()
		},
	}
	svc := newLanguageService(client, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg, err := svc.AggregateRepositories(ctx, []model.RepositorySummary{repo("a", 0, 1)})

	assert.Nil(t, agg)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLanguageService_FetchListsRepositories(t *testing.T) {
	client := &mockGitHubClient{
		listRepos: func(_ context.Context, _ string) ([]model.RepositorySummary, error) {
			return []model.RepositorySummary{repo("a", 0, 1)}, nil
		},
		fetchLangs: func(_ context.Context, _ model.RepositorySummary) (map[string]int64, error) {
			return map[string]int64{"Go": 42}, nil
		},
	}
	svc := newLanguageService(client, 2)

	agg, err := svc.Fetch(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Equal(t, int32(1), client.repoCalls.Load())
	assert.Equal(t, 100.0, agg.Percentages["Go"])
}
