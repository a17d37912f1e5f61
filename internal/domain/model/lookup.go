package model

import "time"

// LookupKind identifies which data category a lookup requested.
type LookupKind string

const (
	LookupKindUser          LookupKind = "user"
	LookupKindRepos         LookupKind = "repos"
	LookupKindLanguages     LookupKind = "languages"
	LookupKindContributions LookupKind = "contributions"
	LookupKindOverview      LookupKind = "overview"
)

// ParseLookupKind returns the kind named by s and whether it is one of the
// four per-category kinds served by the proxy API.
func ParseLookupKind(s string) (LookupKind, bool) {
	switch k := LookupKind(s); k {
	case LookupKindUser, LookupKindRepos, LookupKindLanguages, LookupKindContributions:
		return k, true
	default:
		return "", false
	}
}

// LookupOutcome classifies how a lookup ended.
type LookupOutcome string

const (
	LookupOutcomeOK       LookupOutcome = "ok"
	LookupOutcomeNotFound LookupOutcome = "not_found"
	LookupOutcomeError    LookupOutcome = "error"
)

// Lookup is an audit entry for one username lookup. It never carries GitHub
// response data, only what was asked for and how it went.
type Lookup struct {
	ID         int64
	Username   string
	Kind       LookupKind
	Outcome    LookupOutcome
	Duration   time.Duration
	LookedUpAt time.Time
}
