package model

import "time"

// CombinedUserView is the merged result of one overview fetch. A new view is
// built on every fetch; nothing is merged into a previous one.
type CombinedUserView struct {
	Profile      UserProfile
	Repositories RepositoryAggregate
	Languages    LanguageAggregate
	FetchedAt    time.Time
}
