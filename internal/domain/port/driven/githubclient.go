package driven

import (
	"context"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// GitHubClient defines the driven port for the read-only GitHub API surfaces
// the dashboard consumes. Every method returns ErrUserNotFound (wrapped) for a
// missing account where upstream can tell, and *UpstreamError otherwise.
type GitHubClient interface {
	// FetchUser returns the public profile of username.
	FetchUser(ctx context.Context, username string) (*model.UserProfile, error)

	// ListUserRepositories returns every public repository of username in
	// upstream order (most recently updated first). Pages are fetched
	// sequentially; any failing page fails the whole listing.
	ListUserRepositories(ctx context.Context, username string) ([]model.RepositorySummary, error)

	// FetchRepositoryLanguages returns the byte count per language for repo.
	FetchRepositoryLanguages(ctx context.Context, repo model.RepositorySummary) (map[string]int64, error)

	// FetchContributionCalendar returns the trailing-year contribution calendar
	// and the number of repositories contributed to.
	FetchContributionCalendar(ctx context.Context, username string) (*model.ContributionCalendar, error)
}
