package application_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// mockGitHubClient is a hand-written driven.GitHubClient. Unset funcs return
// zero values. Call counters are safe for concurrent use.
type mockGitHubClient struct {
	fetchUser     func(ctx context.Context, username string) (*model.UserProfile, error)
	listRepos     func(ctx context.Context, username string) ([]model.RepositorySummary, error)
	fetchLangs    func(ctx context.Context, repo model.RepositorySummary) (map[string]int64, error)
	fetchCalendar func(ctx context.Context, username string) (*model.ContributionCalendar, error)

	userCalls     atomic.Int32
	repoCalls     atomic.Int32
	langCalls     atomic.Int32
	calendarCalls atomic.Int32
}

var _ driven.GitHubClient = (*mockGitHubClient)(nil)

func (m *mockGitHubClient) FetchUser(ctx context.Context, username string) (*model.UserProfile, error) {
	m.userCalls.Add(1)
	if m.fetchUser == nil {
		return &model.UserProfile{Login: username, Name: username}, nil
	}
	return m.fetchUser(ctx, username)
}

func (m *mockGitHubClient) ListUserRepositories(ctx context.Context, username string) ([]model.RepositorySummary, error) {
	m.repoCalls.Add(1)
	if m.listRepos == nil {
		return []model.RepositorySummary{}, nil
	}
	return m.listRepos(ctx, username)
}

func (m *mockGitHubClient) FetchRepositoryLanguages(ctx context.Context, repo model.RepositorySummary) (map[string]int64, error) {
	m.langCalls.Add(1)
	if m.fetchLangs == nil {
		return map[string]int64{}, nil
	}
	return m.fetchLangs(ctx, repo)
}

func (m *mockGitHubClient) FetchContributionCalendar(ctx context.Context, username string) (*model.ContributionCalendar, error) {
	m.calendarCalls.Add(1)
	if m.fetchCalendar == nil {
		return &model.ContributionCalendar{}, nil
	}
	return m.fetchCalendar(ctx, username)
}

// discardLogger returns a logger that drops all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func repo(name string, stars, size int) model.RepositorySummary {
	return model.RepositorySummary{
		Name:     name,
		FullName: "octocat/" + name,
		Owner:    "octocat",
		Stars:    stars,
		Size:     size,
	}
}
