package application

import (
	"context"
	"sort"
	"time"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// dateLayout is the calendar day format used by the GitHub GraphQL API.
const dateLayout = "2006-01-02"

// ContributionService fetches the contribution calendar of an account and
// derives monthly totals and streaks from it.
type ContributionService struct {
	provider *GitHubClientProvider
	now      func() time.Time
}

// NewContributionService creates a ContributionService. now supplies the
// reference time for the current streak; nil means time.Now.
func NewContributionService(provider *GitHubClientProvider, now func() time.Time) *ContributionService {
	if now == nil {
		now = time.Now
	}
	return &ContributionService{provider: provider, now: now}
}

// Fetch returns the contribution statistics for username.
func (s *ContributionService) Fetch(ctx context.Context, username string) (*model.ContributionStats, error) {
	client, err := s.provider.current()
	if err != nil {
		return nil, err
	}

	cal, err := client.FetchContributionCalendar(ctx, username)
	if err != nil {
		return nil, err
	}

	days := FlattenCalendar(cal.Weeks)
	current, longest := ComputeStreaks(days, s.now())

	return &model.ContributionStats{
		TotalContributions:        cal.TotalContributions,
		Days:                      days,
		Monthly:                   BucketByMonth(days),
		RepositoriesContributedTo: cal.RepositoriesContributedTo,
		CurrentStreak:             current,
		LongestStreak:             longest,
	}, nil
}

// FlattenCalendar concatenates the days of every week in order.
func FlattenCalendar(weeks []model.ContributionWeek) []model.ContributionDay {
	days := make([]model.ContributionDay, 0, len(weeks)*7)
	for _, w := range weeks {
		days = append(days, w.Days...)
	}
	return days
}

// BucketByMonth sums contribution counts per YYYY-MM month.
func BucketByMonth(days []model.ContributionDay) map[string]int {
	monthly := make(map[string]int)
	for _, d := range days {
		monthly[d.Month()] += d.Count
	}
	return monthly
}

// ComputeStreaks returns the current and longest runs of consecutive calendar
// days with at least one contribution. A gap in the dates breaks a run just as
// a zero-count day does. The current streak is the run ending on the most
// recent day, and only counts when that day is not older than yesterday in UTC.
// Days with unparseable dates are ignored.
func ComputeStreaks(days []model.ContributionDay, now time.Time) (current, longest int) {
	dated := make([]time.Time, 0, len(days))
	counts := make(map[time.Time]int, len(days))
	for _, d := range days {
		t, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue
		}
		if _, seen := counts[t]; !seen {
			dated = append(dated, t)
		}
		counts[t] += d.Count
	}
	if len(dated) == 0 {
		return 0, 0
	}

	sort.Slice(dated, func(i, j int) bool { return dated[i].After(dated[j]) })

	run := 0
	var prev time.Time
	for i, t := range dated {
		switch {
		case counts[t] <= 0:
			run = 0
		case run > 0 && prev.Sub(t) == 24*time.Hour:
			run++
		default:
			run = 1
		}
		prev = t

		longest = max(longest, run)
		if run == i+1 {
			current = run
		}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	if today.Sub(dated[0]) > 24*time.Hour {
		current = 0
	}

	return current, longest
}
