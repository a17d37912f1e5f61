package model

// LanguageShare is one language's slice of an account's code, ranked by bytes.
type LanguageShare struct {
	Name       string
	Bytes      int64
	Percentage float64 // Share of total bytes, rounded to 2 decimals.
	Repos      int     // Number of repositories that report this language.
}

// LanguageAggregate is the byte-weighted language distribution across all of
// an account's non-empty repositories. A language with zero total bytes never
// appears in any field.
type LanguageAggregate struct {
	TotalLanguages int
	Bytes          map[string]int64
	RepoCounts     map[string]int
	Percentages    map[string]float64
	Ranked         []LanguageShare // Descending by bytes.
	Top            []LanguageShare // First TopLanguagesLimit entries of Ranked.

	// FailedRepos counts repositories whose language breakdown could not be
	// fetched. The aggregate omits their bytes.
	FailedRepos int
}

// TopLanguagesLimit is the length of LanguageAggregate.Top.
const TopLanguagesLimit = 10

// EmptyLanguageAggregate returns an aggregate with initialized, empty maps.
func EmptyLanguageAggregate() LanguageAggregate {
	return LanguageAggregate{
		Bytes:       map[string]int64{},
		RepoCounts:  map[string]int{},
		Percentages: map[string]float64{},
		Ranked:      []LanguageShare{},
		Top:         []LanguageShare{},
	}
}
