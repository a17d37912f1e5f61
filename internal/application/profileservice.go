package application

import (
	"context"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// ProfileService fetches the public profile of a GitHub account.
type ProfileService struct {
	provider *GitHubClientProvider
}

// NewProfileService creates a ProfileService that resolves its client from provider.
func NewProfileService(provider *GitHubClientProvider) *ProfileService {
	return &ProfileService{provider: provider}
}

// Fetch returns the profile for username. A missing account surfaces as
// driven.ErrUserNotFound; any other upstream failure as *driven.UpstreamError.
// There are no retries.
func (s *ProfileService) Fetch(ctx context.Context, username string) (*model.UserProfile, error) {
	client, err := s.provider.current()
	if err != nil {
		return nil, err
	}

	return client.FetchUser(ctx, username)
}
