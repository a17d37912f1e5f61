// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	Query       string // username as typed in the search form
	Error       string // lookup failure shown above the results
	Flash       string // settings form outcome
	CSRFToken   string
	ClientReady bool

	Profile       *ProfileViewModel
	Stats         StatsViewModel
	Languages     []LanguageViewModel
	TopRepos      []RepoViewModel
	Contributions *ContributionsViewModel
	PartialData   string // set when some language lookups failed
}

// HasResults reports whether a profile was loaded.
func (d DashboardViewModel) HasResults() bool {
	return d.Profile != nil
}

// ProfileViewModel holds presentation-ready profile data.
type ProfileViewModel struct {
	Login      string
	Name       string
	AvatarURL  string
	BioHTML    string // sanitized markdown
	Company    string
	Location   string
	Blog       string
	BlogURL    string // Blog with a scheme, empty when Blog is
	ProfileURL string
	JoinedOn   string // "Jan 2, 2006"
}

// StatsViewModel holds the headline counters.
type StatsViewModel struct {
	Followers   int
	Following   int
	PublicRepos int
	TotalStars  int
	TotalForks  int
}

// LanguageViewModel is one bar in the language breakdown.
type LanguageViewModel struct {
	Name       string
	Percentage string // formatted with one decimal
	Width      float64
	Repos      int
}

// RepoViewModel is one row of the top repositories list.
type RepoViewModel struct {
	Name            string
	URL             string
	DescriptionHTML string // sanitized markdown
	Language        string
	Stars           int
	Forks           int
	UpdatedAgo      string
}

// ContributionsViewModel summarises the contribution calendar.
type ContributionsViewModel struct {
	Total         int
	CurrentStreak int
	LongestStreak int
	ContributedTo int
	Months        []MonthViewModel
	Unavailable   string // set when the calendar could not be loaded
}

// MonthViewModel is one month of contribution activity.
type MonthViewModel struct {
	Label string // "Jan 2006"
	Count int
	Width float64 // share of the busiest month, 0..100
}
