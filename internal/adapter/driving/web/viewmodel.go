package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	vm "github.com/ericfisherdev/shadowstats/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

const (
	// dashboardLanguages caps the language bars shown on the page.
	dashboardLanguages = 8
	// dashboardRepos caps the repository rows shown on the page.
	dashboardRepos = 6
)

// toProfileViewModel converts a domain UserProfile to a ProfileViewModel.
func toProfileViewModel(p model.UserProfile) *vm.ProfileViewModel {
	joined := ""
	if !p.CreatedAt.IsZero() {
		joined = p.CreatedAt.UTC().Format("Jan 2, 2006")
	}

	return &vm.ProfileViewModel{
		Login:      p.Login,
		Name:       model.DisplayName(p.Name, p.Login),
		AvatarURL:  p.AvatarURL,
		BioHTML:    RenderMarkdown(p.Bio),
		Company:    p.Company,
		Location:   p.Location,
		Blog:       p.Blog,
		BlogURL:    blogURL(p.Blog),
		ProfileURL: "https://github.com/" + p.Login,
		JoinedOn:   joined,
	}
}

// toLanguageViewModels converts the ranked languages into bars. Width is
// relative to the largest language so the leader fills the bar.
func toLanguageViewModels(a model.LanguageAggregate) []vm.LanguageViewModel {
	shares := a.Ranked
	if len(shares) > dashboardLanguages {
		shares = shares[:dashboardLanguages]
	}

	vms := make([]vm.LanguageViewModel, 0, len(shares))
	for _, s := range shares {
		width := 0.0
		if lead := shares[0].Percentage; lead > 0 {
			width = s.Percentage / lead * 100
		}
		vms = append(vms, vm.LanguageViewModel{
			Name:       s.Name,
			Percentage: fmt.Sprintf("%.1f%%", s.Percentage),
			Width:      width,
			Repos:      s.Repos,
		})
	}
	return vms
}

// toRepoViewModels converts the top repositories into list rows.
func toRepoViewModels(repos []model.RepositorySummary, now time.Time) []vm.RepoViewModel {
	if len(repos) > dashboardRepos {
		repos = repos[:dashboardRepos]
	}

	vms := make([]vm.RepoViewModel, 0, len(repos))
	for _, r := range repos {
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = humanize.RelTime(r.UpdatedAt, now, "ago", "from now")
		}
		vms = append(vms, vm.RepoViewModel{
			Name:            r.Name,
			URL:             r.URL,
			DescriptionHTML: RenderMarkdown(r.Description),
			Language:        r.Language,
			Stars:           r.Stars,
			Forks:           r.Forks,
			UpdatedAgo:      updated,
		})
	}
	return vms
}

// toContributionsViewModel converts contribution statistics. Months are
// listed oldest first; err, when set, replaces the figures with a notice.
func toContributionsViewModel(s *model.ContributionStats, err error) *vm.ContributionsViewModel {
	if err != nil || s == nil {
		return &vm.ContributionsViewModel{
			Months:      []vm.MonthViewModel{},
			Unavailable: "Contribution history is unavailable right now.",
		}
	}

	months := make([]vm.MonthViewModel, 0, len(s.Monthly))
	busiest := 0
	seen := make(map[string]bool, len(s.Monthly))
	for _, d := range s.Days {
		key := d.Month()
		if seen[key] {
			continue
		}
		seen[key] = true

		count := s.Monthly[key]
		busiest = max(busiest, count)
		label := key
		if t, perr := time.Parse("2006-01", key); perr == nil {
			label = t.Format("Jan 2006")
		}
		months = append(months, vm.MonthViewModel{Label: label, Count: count})
	}
	for i := range months {
		if busiest > 0 {
			months[i].Width = float64(months[i].Count) / float64(busiest) * 100
		}
	}

	return &vm.ContributionsViewModel{
		Total:         s.TotalContributions,
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		ContributedTo: s.RepositoriesContributedTo,
		Months:        months,
	}
}

// toDashboardViewModel fills the result sections of d from a combined view.
func toDashboardViewModel(d vm.DashboardViewModel, view *model.CombinedUserView, contribs *model.ContributionStats, contribErr error) vm.DashboardViewModel {
	d.Profile = toProfileViewModel(view.Profile)
	d.Stats = vm.StatsViewModel{
		Followers:   view.Profile.Followers,
		Following:   view.Profile.Following,
		PublicRepos: view.Profile.PublicRepos,
		TotalStars:  view.Repositories.TotalStars,
		TotalForks:  view.Repositories.TotalForks,
	}
	d.Languages = toLanguageViewModels(view.Languages)
	d.TopRepos = toRepoViewModels(view.Repositories.TopRepositories, view.FetchedAt)
	d.Contributions = toContributionsViewModel(contribs, contribErr)

	if n := view.Languages.FailedRepos; n > 0 {
		d.PartialData = fmt.Sprintf("Language data is missing for %d %s.", n, pluralRepos(n))
	}
	return d
}

// blogURL adds a scheme to bare blog hosts such as "example.com".
func blogURL(blog string) string {
	switch {
	case blog == "":
		return ""
	case strings.HasPrefix(blog, "http://"), strings.HasPrefix(blog, "https://"):
		return blog
	default:
		return "https://" + blog
	}
}

func pluralRepos(n int) string {
	if n == 1 {
		return "repository"
	}
	return "repositories"
}
