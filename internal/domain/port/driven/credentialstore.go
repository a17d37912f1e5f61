package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// SHADOWSTATS_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set SHADOWSTATS_SECRET_KEY")

// CredentialServiceGitHub names the GitHub token entry in the credential store.
const CredentialServiceGitHub = "github"

// CredentialStore defines the driven port for encrypted credential persistence.
// The adapter is responsible for encryption; this interface works on plaintext.
type CredentialStore interface {
	// Set stores or replaces the credential for service.
	Set(ctx context.Context, service, plaintext string) error

	// Get returns the plaintext credential for service, or ("", nil) if none is stored.
	Get(ctx context.Context, service string) (string, error)

	// Delete removes the credential for service. Deleting a missing entry is not an error.
	Delete(ctx context.Context, service string) error
}
