package model

// ContributionDay is the contribution count for one calendar day.
// Date is formatted YYYY-MM-DD as returned by the GitHub GraphQL API.
type ContributionDay struct {
	Date  string
	Count int
}

// Month returns the YYYY-MM prefix of the day's date.
func (d ContributionDay) Month() string {
	if len(d.Date) < 7 {
		return d.Date
	}
	return d.Date[:7]
}

// ContributionWeek is one week column of the contribution calendar.
type ContributionWeek struct {
	Days []ContributionDay
}

// ContributionCalendar is the raw contribution calendar for the trailing year
// in the week-by-week shape GitHub reports it.
type ContributionCalendar struct {
	TotalContributions        int
	Weeks                     []ContributionWeek
	RepositoriesContributedTo int
}

// ContributionStats is the contribution calendar plus the values derived from it.
type ContributionStats struct {
	TotalContributions        int
	Days                      []ContributionDay // Chronological.
	Monthly                   map[string]int    // YYYY-MM -> summed count.
	RepositoriesContributedTo int
	CurrentStreak             int
	LongestStreak             int
}
