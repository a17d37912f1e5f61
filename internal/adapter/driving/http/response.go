package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UserResponse is the JSON representation of a GitHub profile.
type UserResponse struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Blog        string `json:"blog"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RepositoryResponse is the JSON representation of one repository.
type RepositoryResponse struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Watchers    int    `json:"watchers"`
	Language    string `json:"language"`
	URL         string `json:"url"`
	Size        int    `json:"size"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RepositoriesResponse is the JSON representation of a repository aggregate.
type RepositoriesResponse struct {
	TotalRepos      int                  `json:"total_repos"`
	TotalStars      int                  `json:"total_stars"`
	TotalForks      int                  `json:"total_forks"`
	TotalWatchers   int                  `json:"total_watchers"`
	Languages       map[string]int       `json:"languages"`
	TopRepositories []RepositoryResponse `json:"top_repositories"`
	Repositories    []RepositoryResponse `json:"repositories"`
}

// LanguageShareResponse is one ranked language.
type LanguageShareResponse struct {
	Name       string  `json:"name"`
	Bytes      int64   `json:"bytes"`
	Percentage float64 `json:"percentage"`
	Repos      int     `json:"repos"`
}

// LanguagesResponse is the JSON representation of a language aggregate.
type LanguagesResponse struct {
	TotalLanguages int                     `json:"total_languages"`
	Bytes          map[string]int64        `json:"bytes"`
	RepoCounts     map[string]int          `json:"repo_counts"`
	Percentages    map[string]float64      `json:"percentages"`
	Ranked         []LanguageShareResponse `json:"ranked"`
	Top            []LanguageShareResponse `json:"top"`
	FailedRepos    int                     `json:"failed_repos"`
}

// ContributionDayResponse is one calendar day.
type ContributionDayResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ContributionsResponse is the JSON representation of contribution statistics.
type ContributionsResponse struct {
	TotalContributions        int                       `json:"total_contributions"`
	Days                      []ContributionDayResponse `json:"days"`
	Monthly                   map[string]int            `json:"monthly"`
	RepositoriesContributedTo int                       `json:"repositories_contributed_to"`
	CurrentStreak             int                       `json:"current_streak"`
	LongestStreak             int                       `json:"longest_streak"`
}

// OverviewResponse is the combined profile, repository and language view.
type OverviewResponse struct {
	Profile      UserResponse         `json:"profile"`
	Repositories RepositoriesResponse `json:"repositories"`
	Languages    LanguagesResponse    `json:"languages"`
	FetchedAt    string               `json:"fetched_at"`
}

// LookupResponse is the JSON representation of one lookup audit entry.
type LookupResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Kind       string `json:"kind"`
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
	LookedUpAt string `json:"looked_up_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status       string `json:"status"`
	Time         string `json:"time"`
	GitHubClient bool   `json:"github_client"`
}

// SetTokenRequest is the JSON body for the GitHub token settings endpoint.
type SetTokenRequest struct {
	Token string `json:"token" validate:"required,max=255,printascii"`
}

// formatTime renders t as RFC 3339 in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(p model.UserProfile) UserResponse {
	return UserResponse{
		Login:       p.Login,
		Name:        p.Name,
		AvatarURL:   p.AvatarURL,
		Bio:         p.Bio,
		Company:     p.Company,
		Location:    p.Location,
		Email:       p.Email,
		Blog:        p.Blog,
		Followers:   p.Followers,
		Following:   p.Following,
		PublicRepos: p.PublicRepos,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toRepositoryResponses(repos []model.RepositorySummary) []RepositoryResponse {
	out := make([]RepositoryResponse, 0, len(repos))
	for _, r := range repos {
		out = append(out, RepositoryResponse{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Watchers:    r.Watchers,
			Language:    r.Language,
			URL:         r.URL,
			Size:        r.Size,
			CreatedAt:   formatTime(r.CreatedAt),
			UpdatedAt:   formatTime(r.UpdatedAt),
		})
	}
	return out
}

func toRepositoriesResponse(a model.RepositoryAggregate) RepositoriesResponse {
	languages := a.Languages
	if languages == nil {
		languages = map[string]int{}
	}
	return RepositoriesResponse{
		TotalRepos:      a.TotalRepos,
		TotalStars:      a.TotalStars,
		TotalForks:      a.TotalForks,
		TotalWatchers:   a.TotalWatchers,
		Languages:       languages,
		TopRepositories: toRepositoryResponses(a.TopRepositories),
		Repositories:    toRepositoryResponses(a.Repositories),
	}
}

func toLanguageShareResponses(shares []model.LanguageShare) []LanguageShareResponse {
	out := make([]LanguageShareResponse, 0, len(shares))
	for _, s := range shares {
		out = append(out, LanguageShareResponse(s))
	}
	return out
}

func toLanguagesResponse(a model.LanguageAggregate) LanguagesResponse {
	if a.Bytes == nil {
		empty := model.EmptyLanguageAggregate()
		empty.FailedRepos = a.FailedRepos
		a = empty
	}
	return LanguagesResponse{
		TotalLanguages: a.TotalLanguages,
		Bytes:          a.Bytes,
		RepoCounts:     a.RepoCounts,
		Percentages:    a.Percentages,
		Ranked:         toLanguageShareResponses(a.Ranked),
		Top:            toLanguageShareResponses(a.Top),
		FailedRepos:    a.FailedRepos,
	}
}

func toContributionsResponse(s model.ContributionStats) ContributionsResponse {
	days := make([]ContributionDayResponse, 0, len(s.Days))
	for _, d := range s.Days {
		days = append(days, ContributionDayResponse(d))
	}
	monthly := s.Monthly
	if monthly == nil {
		monthly = map[string]int{}
	}
	return ContributionsResponse{
		TotalContributions:        s.TotalContributions,
		Days:                      days,
		Monthly:                   monthly,
		RepositoriesContributedTo: s.RepositoriesContributedTo,
		CurrentStreak:             s.CurrentStreak,
		LongestStreak:             s.LongestStreak,
	}
}

func toOverviewResponse(v model.CombinedUserView) OverviewResponse {
	return OverviewResponse{
		Profile:      toUserResponse(v.Profile),
		Repositories: toRepositoriesResponse(v.Repositories),
		Languages:    toLanguagesResponse(v.Languages),
		FetchedAt:    formatTime(v.FetchedAt),
	}
}

func toLookupResponse(l model.Lookup) LookupResponse {
	return LookupResponse{
		ID:         l.ID,
		Username:   l.Username,
		Kind:       string(l.Kind),
		Outcome:    string(l.Outcome),
		DurationMS: l.Duration.Milliseconds(),
		LookedUpAt: formatTime(l.LookedUpAt),
	}
}
