package model

import "time"

// UserProfile holds the public profile fields of one GitHub account.
type UserProfile struct {
	Login       string
	Name        string // Falls back to Login when the account has no display name.
	AvatarURL   string
	Bio         string
	Company     string
	Location    string
	Email       string
	Blog        string
	Followers   int
	Following   int
	PublicRepos int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName returns name if set, otherwise login.
func DisplayName(name, login string) string {
	if name != "" {
		return name
	}
	return login
}

// MaxLoginLength is the longest username GitHub accepts.
const MaxLoginLength = 39

// IsValidLogin reports whether s has the shape of a GitHub username:
// 1 to 39 ASCII letters, digits or single hyphens, not starting or ending
// with a hyphen.
func IsValidLogin(s string) bool {
	if s == "" || len(s) > MaxLoginLength {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' && s[i-1] != '-':
		default:
			return false
		}
	}
	return true
}
