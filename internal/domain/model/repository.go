package model

import "time"

// RepositorySummary is one public repository owned by the looked-up account.
// Name is unique within one account.
type RepositorySummary struct {
	Name         string
	FullName     string
	Owner        string
	Description  string
	Stars        int
	Forks        int
	Watchers     int
	Language     string // Empty when GitHub reports no primary language.
	URL          string
	Size         int // Kilobytes as reported by GitHub; zero means an empty repository.
	LanguagesURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RepositoryAggregate is the reduction of an account's full repository list.
type RepositoryAggregate struct {
	TotalRepos    int
	TotalStars    int
	TotalForks    int
	TotalWatchers int

	// Languages maps a primary language to the number of repositories using it.
	Languages map[string]int

	// TopRepositories is sorted by star count descending; ties keep API order.
	TopRepositories []RepositorySummary

	// Repositories is the untrimmed list in API order (last updated first).
	Repositories []RepositorySummary
}
