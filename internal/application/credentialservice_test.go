package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

type mockCredentialStore struct {
	values    map[string]string
	setErr    error
	getErr    error
	deleteErr error
}

func (m *mockCredentialStore) Set(_ context.Context, service, plaintext string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[service] = plaintext
	return nil
}

func (m *mockCredentialStore) Get(_ context.Context, service string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[service], nil
}

func (m *mockCredentialStore) Delete(_ context.Context, service string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, service)
	return nil
}

func TestCredentialService_SetGitHubTokenSwapsClient(t *testing.T) {
	original := &mockGitHubClient{}
	built := &mockGitHubClient{}
	provider := application.NewGitHubClientProvider(original)
	store := &mockCredentialStore{}

	var gotToken string
	svc := application.NewCredentialService(store, provider, func(token string) (driven.GitHubClient, error) {
		gotToken = token
		return built, nil
	}, "", discardLogger())

	err := svc.SetGitHubToken(context.Background(), "ghp_new")

	require.NoError(t, err)
	assert.Equal(t, "ghp_new", gotToken)
	assert.Equal(t, "ghp_new", store.values[driven.CredentialServiceGitHub])
	assert.Same(t, built, provider.Get())
}

func TestCredentialService_StoreFailureKeepsClient(t *testing.T) {
	original := &mockGitHubClient{}
	provider := application.NewGitHubClientProvider(original)
	store := &mockCredentialStore{setErr: driven.ErrEncryptionKeyNotSet}

	svc := application.NewCredentialService(store, provider, func(string) (driven.GitHubClient, error) {
		return &mockGitHubClient{}, nil
	}, "", discardLogger())

	err := svc.SetGitHubToken(context.Background(), "ghp_new")

	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
	assert.Same(t, original, provider.Get())
}

func TestCredentialService_FactoryFailureStoresNothing(t *testing.T) {
	store := &mockCredentialStore{}
	svc := application.NewCredentialService(store, application.NewGitHubClientProvider(nil), func(string) (driven.GitHubClient, error) {
		return nil, errors.New("bad base url")
	}, "", discardLogger())

	err := svc.SetGitHubToken(context.Background(), "ghp_new")

	require.Error(t, err)
	assert.Empty(t, store.values)
}

func TestCredentialService_ResolveGitHubToken(t *testing.T) {
	tests := []struct {
		name     string
		store    *mockCredentialStore
		fallback string
		want     string
		wantErr  bool
	}{
		{
			name:     "stored token wins",
			store:    &mockCredentialStore{values: map[string]string{driven.CredentialServiceGitHub: "ghp_stored"}},
			fallback: "ghp_env",
			want:     "ghp_stored",
		},
		{
			name:     "nothing stored",
			store:    &mockCredentialStore{},
			fallback: "ghp_env",
			want:     "ghp_env",
		},
		{
			name:     "no encryption key",
			store:    &mockCredentialStore{getErr: driven.ErrEncryptionKeyNotSet},
			fallback: "ghp_env",
			want:     "ghp_env",
		},
		{
			name:    "store failure",
			store:   &mockCredentialStore{getErr: errors.New("disk I/O error")},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := application.NewCredentialService(tc.store, application.NewGitHubClientProvider(nil), nil, tc.fallback, discardLogger())

			got, err := svc.ResolveGitHubToken(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCredentialService_ClearGitHubTokenFallsBackToEnv(t *testing.T) {
	original := &mockGitHubClient{}
	built := &mockGitHubClient{}
	provider := application.NewGitHubClientProvider(original)
	store := &mockCredentialStore{values: map[string]string{driven.CredentialServiceGitHub: "ghp_stored"}}

	var gotToken string
	svc := application.NewCredentialService(store, provider, func(token string) (driven.GitHubClient, error) {
		gotToken = token
		return built, nil
	}, "ghp_env", discardLogger())

	require.NoError(t, svc.ClearGitHubToken(context.Background()))

	assert.Equal(t, "ghp_env", gotToken)
	assert.NotContains(t, store.values, driven.CredentialServiceGitHub)
	assert.Same(t, built, provider.Get())

	token, err := svc.ResolveGitHubToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_env", token)
}

func TestCredentialService_ClearGitHubTokenWithoutEnvIsAnonymous(t *testing.T) {
	provider := application.NewGitHubClientProvider(&mockGitHubClient{})
	store := &mockCredentialStore{values: map[string]string{driven.CredentialServiceGitHub: "ghp_stored"}}

	tokens := []string{}
	svc := application.NewCredentialService(store, provider, func(token string) (driven.GitHubClient, error) {
		tokens = append(tokens, token)
		return &mockGitHubClient{}, nil
	}, "", discardLogger())

	require.NoError(t, svc.ClearGitHubToken(context.Background()))
	assert.Equal(t, []string{""}, tokens)
}

func TestCredentialService_ClearGitHubTokenDeleteFailureKeepsClient(t *testing.T) {
	original := &mockGitHubClient{}
	provider := application.NewGitHubClientProvider(original)
	store := &mockCredentialStore{deleteErr: errors.New("database is locked")}

	svc := application.NewCredentialService(store, provider, func(string) (driven.GitHubClient, error) {
		return &mockGitHubClient{}, nil
	}, "ghp_env", discardLogger())

	err := svc.ClearGitHubToken(context.Background())

	require.Error(t, err)
	assert.Same(t, original, provider.Get())
}
