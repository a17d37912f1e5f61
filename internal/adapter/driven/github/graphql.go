package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// contributionQuery requests the trailing-year contribution calendar and the
// number of repositories the user contributed to.
type contributionQuery struct {
	User *struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
				Weeks              []struct {
					ContributionDays []struct {
						ContributionCount int
						Date              string
					}
				}
			}
		}
		RepositoriesContributedTo struct {
			TotalCount int
		} `graphql:"repositoriesContributedTo(first: 100, contributionTypes: [COMMIT, ISSUE, PULL_REQUEST, REPOSITORY])"`
	} `graphql:"user(login: $username)"`
}

// FetchContributionCalendar runs the contribution calendar GraphQL query for
// username and returns its weekly buckets as reported.
// A null user maps to driven.ErrUserNotFound, whether it comes alone or with
// GitHub's "Could not resolve to a User" error. Any other GraphQL or transport
// error becomes a *driven.UpstreamError.
func (c *Client) FetchContributionCalendar(ctx context.Context, username string) (*model.ContributionCalendar, error) {
	var q contributionQuery
	vars := map[string]any{
		"username": githubv4.String(username),
	}

	if err := c.graphql.Query(ctx, &q, vars); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("querying contributions for %q: %w", username, ctxErr)
		}
		if q.User == nil && isUnresolvedUser(err) {
			return nil, fmt.Errorf("querying contributions for %q: %w", username, driven.ErrUserNotFound)
		}
		return nil, fmt.Errorf("querying contributions for %q: %w", username, graphqlError(err))
	}

	if q.User == nil {
		return nil, fmt.Errorf("querying contributions for %q: %w", username, driven.ErrUserNotFound)
	}

	cal := q.User.ContributionsCollection.ContributionCalendar
	out := &model.ContributionCalendar{
		TotalContributions:        cal.TotalContributions,
		RepositoriesContributedTo: q.User.RepositoriesContributedTo.TotalCount,
		Weeks:                     make([]model.ContributionWeek, 0, len(cal.Weeks)),
	}
	for _, week := range cal.Weeks {
		days := make([]model.ContributionDay, 0, len(week.ContributionDays))
		for _, day := range week.ContributionDays {
			days = append(days, model.ContributionDay{
				Date:  day.Date,
				Count: day.ContributionCount,
			})
		}
		out.Weeks = append(out.Weeks, model.ContributionWeek{Days: days})
	}

	slog.Debug("github graphql contributions",
		"username", username,
		"weeks", len(out.Weeks),
		"total", out.TotalContributions,
	)

	return out, nil
}

// graphqlError wraps a githubv4 failure. The githubv4 error string is the
// first GraphQL error message, which becomes the upstream message verbatim.
func graphqlError(err error) error {
	return &driven.UpstreamError{Err: err, Message: err.Error()}
}

// unresolvedUserMessage starts the NOT_FOUND error GitHub returns for an
// unknown login. githubv4 exposes only the message, not the error type.
const unresolvedUserMessage = "Could not resolve to a User"

func isUnresolvedUser(err error) bool {
	return strings.Contains(err.Error(), unresolvedUserMessage)
}
