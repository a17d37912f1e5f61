// Package github implements the GitHubClient port using go-github for the REST
// API and githubv4 for the GraphQL contribution calendar.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// reposPerPage is the page size requested from the repository listing endpoint.
const reposPerPage = 100

// Client implements the driven.GitHubClient port.
type Client struct {
	gh      *gh.Client
	graphql *githubv4.Client
}

// ClientOptions tunes the transport stack built by NewClient.
type ClientOptions struct {
	// APIBaseURL overrides https://api.github.com/ (GitHub Enterprise, local fakes).
	APIBaseURL string
	// Timeout bounds every upstream request. Zero means 30 seconds.
	Timeout time.Duration
	// HTTPCache keeps recent responses so repeat lookups revalidate with
	// If-None-Match instead of downloading the body again. Every lookup
	// still reaches upstream.
	HTTPCache bool
}

// NewClient creates a GitHub API client authenticated with token (may be empty
// for unauthenticated access) on the following transport stack:
//  1. httpcache over a bounded LRU, revalidating every request (optional)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (REST, PAT auth) and githubv4 (GraphQL, oauth2 bearer auth)
func NewClient(token string, opts ClientOptions) (*Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var base http.RoundTripper = http.DefaultTransport
	if opts.HTTPCache {
		cached, err := newRevalidatingCache(base, cacheEntries)
		if err != nil {
			return nil, err
		}
		base = cached
	}
	rateLimitClient := github_ratelimit.NewClient(base)
	rateLimitClient.Timeout = timeout

	restClient := gh.NewClient(rateLimitClient)
	if token != "" {
		restClient = restClient.WithAuthToken(token)
	}

	graphqlURL := "https://api.github.com/graphql"
	if opts.APIBaseURL != "" {
		u, err := parseBaseURL(opts.APIBaseURL)
		if err != nil {
			return nil, err
		}
		restClient.BaseURL = u
		graphqlURL = graphqlEndpoint(u)
	}

	return &Client{
		gh:      restClient,
		graphql: githubv4.NewEnterpriseClient(graphqlURL, bearerClient(rateLimitClient, token)),
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
// The GraphQL endpoint is derived from baseURL so the same server can answer it.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	restClient := gh.NewClient(httpClient)
	if token != "" {
		restClient = restClient.WithAuthToken(token)
	}
	restClient.BaseURL = u

	return &Client{
		gh:      restClient,
		graphql: githubv4.NewEnterpriseClient(graphqlEndpoint(u), bearerClient(httpClient, token)),
	}, nil
}

// FetchUser retrieves the public profile of username.
func (c *Client) FetchUser(ctx context.Context, username string) (*model.UserProfile, error) {
	user, resp, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetching user %q: %w", username, driven.ErrUserNotFound)
		}
		return nil, fmt.Errorf("fetching user %q: %w", username, upstreamError(resp, err))
	}

	logRateLimit(resp, "users/"+username, 0, 1)

	return mapUser(user), nil
}

// ListUserRepositories pages through /users/{username}/repos sorted by last
// update. A page that is empty or shorter than reposPerPage ends the listing,
// as does a Link header without a next relation. Pages are strictly sequential.
func (c *Client) ListUserRepositories(ctx context.Context, username string) ([]model.RepositorySummary, error) {
	opts := &gh.RepositoryListByUserOptions{
		Sort: "updated",
		ListOptions: gh.ListOptions{
			PerPage: reposPerPage,
			Page:    1,
		},
	}

	all := []model.RepositorySummary{}

	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("listing repositories for %q: %w", username, driven.ErrUserNotFound)
			}
			return nil, fmt.Errorf("listing repositories for %q (page %d): %w", username, opts.Page, upstreamError(resp, err))
		}

		logRateLimit(resp, "users/"+username+"/repos", opts.Page, len(repos))

		if len(repos) == 0 {
			break
		}

		for _, r := range repos {
			all = append(all, mapRepository(r))
		}

		if len(repos) < reposPerPage || isLastLinkedPage(resp) {
			break
		}
		opts.Page++
	}

	return all, nil
}

// FetchRepositoryLanguages returns bytes per language for repo. It follows the
// languages_url GitHub reported for the repository and falls back to
// /repos/{owner}/{name}/languages when that URL is absent.
func (c *Client) FetchRepositoryLanguages(ctx context.Context, repo model.RepositorySummary) (map[string]int64, error) {
	if repo.LanguagesURL == "" {
		owner, name, err := splitRepo(repo.FullName)
		if err != nil {
			return nil, err
		}

		langs, resp, err := c.gh.Repositories.ListLanguages(ctx, owner, name)
		if err != nil {
			return nil, fmt.Errorf("listing languages for %s: %w", repo.FullName, upstreamError(resp, err))
		}
		logRateLimit(resp, repo.FullName+"/languages", 0, len(langs))

		out := make(map[string]int64, len(langs))
		for lang, n := range langs {
			out[lang] = int64(n)
		}
		return out, nil
	}

	req, err := c.gh.NewRequest(http.MethodGet, repo.LanguagesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating languages request for %s: %w", repo.Name, err)
	}

	langs := map[string]int64{}
	resp, err := c.gh.Do(ctx, req, &langs)
	if err != nil {
		return nil, fmt.Errorf("listing languages for %s: %w", repo.Name, upstreamError(resp, err))
	}
	logRateLimit(resp, repo.Name+"/languages", 0, len(langs))

	return langs, nil
}

// mapUser converts a go-github User to a domain UserProfile.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapUser(u *gh.User) *model.UserProfile {
	return &model.UserProfile{
		Login:       u.GetLogin(),
		Name:        model.DisplayName(u.GetName(), u.GetLogin()),
		AvatarURL:   u.GetAvatarURL(),
		Bio:         u.GetBio(),
		Company:     u.GetCompany(),
		Location:    u.GetLocation(),
		Email:       u.GetEmail(),
		Blog:        u.GetBlog(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		PublicRepos: u.GetPublicRepos(),
		CreatedAt:   u.GetCreatedAt().Time,
		UpdatedAt:   u.GetUpdatedAt().Time,
	}
}

// mapRepository converts a go-github Repository to a domain RepositorySummary.
func mapRepository(r *gh.Repository) model.RepositorySummary {
	return model.RepositorySummary{
		Name:         r.GetName(),
		FullName:     r.GetFullName(),
		Owner:        r.GetOwner().GetLogin(),
		Description:  r.GetDescription(),
		Stars:        r.GetStargazersCount(),
		Forks:        r.GetForksCount(),
		Watchers:     r.GetWatchersCount(),
		Language:     r.GetLanguage(),
		URL:          r.GetHTMLURL(),
		Size:         r.GetSize(),
		LanguagesURL: r.GetLanguagesURL(),
		CreatedAt:    r.GetCreatedAt().Time,
		UpdatedAt:    r.GetUpdatedAt().Time,
	}
}

// isLastLinkedPage reports whether upstream sent pagination links and none of
// them points at a next page. Without a Link header the page-size rule decides.
func isLastLinkedPage(resp *gh.Response) bool {
	if resp == nil || resp.Response == nil || resp.Header.Get("Link") == "" {
		return false
	}
	return resp.NextPage == 0
}

// upstreamError converts a go-github failure into a *driven.UpstreamError,
// keeping the HTTP status and upstream message when available.
func upstreamError(resp *gh.Response, err error) error {
	ue := &driven.UpstreamError{Err: err}
	if resp != nil && resp.Response != nil {
		ue.StatusCode = resp.StatusCode
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		ue.Message = errResp.Message
		if ue.StatusCode == 0 && errResp.Response != nil {
			ue.StatusCode = errResp.Response.StatusCode
		}
	}
	if ue.Message == "" && ue.StatusCode != 0 {
		ue.Message = http.StatusText(ue.StatusCode)
	}

	return ue
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

// parseBaseURL parses a REST base URL, adding the trailing slash go-github requires.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	return u, nil
}

// graphqlEndpoint derives the GraphQL URL from a REST base URL:
// "https://ghe.example.com/api/v3/" becomes "https://ghe.example.com/api/graphql"
// and "http://127.0.0.1:1234/" becomes "http://127.0.0.1:1234/graphql".
func graphqlEndpoint(base *url.URL) string {
	u := *base
	p := strings.TrimSuffix(u.Path, "/")
	p = strings.TrimSuffix(p, "/v3")
	u.Path = p + "/graphql"
	return u.String()
}

// bearerClient wraps httpClient's transport with a static oauth2 token source.
// An empty token returns httpClient unchanged.
func bearerClient(httpClient *http.Client, token string) *http.Client {
	if token == "" {
		return httpClient
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: httpClient.Transport},
		Timeout:   httpClient.Timeout,
	}
}
