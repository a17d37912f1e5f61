package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// ClientFactory builds a GitHub client authenticated with token.
type ClientFactory func(token string) (driven.GitHubClient, error)

// CredentialService stores the GitHub token and swaps the live client when it
// changes. The token never leaves this service except inside a new client.
type CredentialService struct {
	store    driven.CredentialStore
	provider *GitHubClientProvider
	factory  ClientFactory
	envToken string // token from the environment, used when nothing is stored
	logger   *slog.Logger
}

// NewCredentialService creates a CredentialService. envToken may be empty.
func NewCredentialService(store driven.CredentialStore, provider *GitHubClientProvider, factory ClientFactory, envToken string, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		store:    store,
		provider: provider,
		factory:  factory,
		envToken: envToken,
		logger:   logger,
	}
}

// SetGitHubToken persists token and replaces the active client with one using it.
// The client is built first so a token that cannot produce a client is never stored.
func (s *CredentialService) SetGitHubToken(ctx context.Context, token string) error {
	client, err := s.factory(token)
	if err != nil {
		return fmt.Errorf("build github client: %w", err)
	}

	if err := s.store.Set(ctx, driven.CredentialServiceGitHub, token); err != nil {
		return fmt.Errorf("store github token: %w", err)
	}

	s.provider.Replace(client)
	s.logger.Info("github token updated")

	return nil
}

// ClearGitHubToken deletes the stored token and replaces the active client with
// one built from the environment token, or an anonymous one when that is empty.
func (s *CredentialService) ClearGitHubToken(ctx context.Context) error {
	client, err := s.factory(s.envToken)
	if err != nil {
		return fmt.Errorf("build github client: %w", err)
	}

	if err := s.store.Delete(ctx, driven.CredentialServiceGitHub); err != nil {
		return fmt.Errorf("delete github token: %w", err)
	}

	s.provider.Replace(client)
	s.logger.Info("stored github token removed", "env_token", s.envToken != "")

	return nil
}

// ResolveGitHubToken returns the stored token if one exists, otherwise the
// environment token. A store without an encryption key is treated as empty.
func (s *CredentialService) ResolveGitHubToken(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, driven.CredentialServiceGitHub)
	if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		return s.envToken, nil
	}
	if err != nil {
		return "", fmt.Errorf("load github token: %w", err)
	}
	if token == "" {
		return s.envToken, nil
	}

	s.logger.Info("using stored github token")
	return token, nil
}
