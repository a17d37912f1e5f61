package application

import (
	"errors"
	"sync"

	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// ErrNoGitHubClient is returned by services when the provider holds no client.
var ErrNoGitHubClient = errors.New("github client not configured")

// GitHubClientProvider enables runtime hot-swap of the GitHub client.
// It holds a mutex-protected reference to the current driven.GitHubClient,
// allowing a token saved through the settings API to take effect without
// restarting the application. Each client carries its own credential.
type GitHubClientProvider struct {
	mu     sync.RWMutex
	client driven.GitHubClient
}

// NewGitHubClientProvider creates a new provider with the given initial client.
// client may be nil; services then fail with ErrNoGitHubClient until Replace is called.
func NewGitHubClientProvider(client driven.GitHubClient) *GitHubClientProvider {
	return &GitHubClientProvider{client: client}
}

// Get returns the current GitHub client. Callers should check for nil
// if the provider was created without an initial client.
func (p *GitHubClientProvider) Get() driven.GitHubClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// Replace swaps the current client. Requests already holding the previous
// client finish with it; the next caller of Get receives the new one.
func (p *GitHubClientProvider) Replace(client driven.GitHubClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
}

// HasClient returns true if a non-nil client is currently held.
func (p *GitHubClientProvider) HasClient() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}

// current returns the held client or ErrNoGitHubClient.
func (p *GitHubClientProvider) current() (driven.GitHubClient, error) {
	c := p.Get()
	if c == nil {
		return nil, ErrNoGitHubClient
	}
	return c, nil
}
