package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

func newTestCredentialRepo(t *testing.T, db *DB, key []byte) *CredentialRepo {
	t.Helper()
	repo, err := NewCredentialRepo(db, key)
	require.NoError(t, err)
	return repo
}

func TestCredentialRepo_SetAndGet(t *testing.T) {
	repo := newTestCredentialRepo(t, setupTestDB(t), testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.CredentialServiceGitHub, "ghp_abc123"))

	val, err := repo.Get(ctx, driven.CredentialServiceGitHub)
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc123", val)
}

func TestCredentialRepo_StoresCiphertext(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestCredentialRepo(t, db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.CredentialServiceGitHub, "ghp_secret"))
	require.NoError(t, repo.Set(ctx, "other", "ghp_secret"))

	rows, err := db.Reader.QueryContext(ctx, `SELECT value FROM credentials ORDER BY service`)
	require.NoError(t, err)
	defer rows.Close()

	var stored []string
	for rows.Next() {
		var v string
		require.NoError(t, rows.Scan(&v))
		assert.NotContains(t, v, "ghp_secret")
		stored = append(stored, v)
	}
	require.NoError(t, rows.Err())
	require.Len(t, stored, 2)
	assert.NotEqual(t, stored[0], stored[1], "each value should get a fresh nonce")
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	repo := newTestCredentialRepo(t, setupTestDB(t), testKey)

	val, err := repo.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_UpsertOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestCredentialRepo(t, db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.CredentialServiceGitHub, "old-value"))
	require.NoError(t, repo.Set(ctx, driven.CredentialServiceGitHub, "new-value"))

	val, err := repo.Get(ctx, driven.CredentialServiceGitHub)
	require.NoError(t, err)
	assert.Equal(t, "new-value", val)

	var n int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestCredentialRepo_Delete(t *testing.T) {
	repo := newTestCredentialRepo(t, setupTestDB(t), testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.CredentialServiceGitHub, "ghp_abc"))
	require.NoError(t, repo.Delete(ctx, driven.CredentialServiceGitHub))

	val, err := repo.Get(ctx, driven.CredentialServiceGitHub)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_DeleteNonexistent(t *testing.T) {
	repo := newTestCredentialRepo(t, setupTestDB(t), testKey)

	assert.NoError(t, repo.Delete(context.Background(), "nonexistent"))
}

func TestCredentialRepo_NoKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, newTestCredentialRepo(t, db, testKey).Set(ctx, driven.CredentialServiceGitHub, "ghp_abc"))

	repo := newTestCredentialRepo(t, db, nil)

	assert.ErrorIs(t, repo.Set(ctx, driven.CredentialServiceGitHub, "ghp_abc"), driven.ErrEncryptionKeyNotSet)
	_, err := repo.Get(ctx, driven.CredentialServiceGitHub)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	require.NoError(t, repo.Delete(ctx, driven.CredentialServiceGitHub))
	val, err := newTestCredentialRepo(t, db, testKey).Get(ctx, driven.CredentialServiceGitHub)
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestCredentialRepo_BadKeyLength(t *testing.T) {
	_, err := NewCredentialRepo(setupTestDB(t), []byte("short"))
	assert.Error(t, err)
}

func TestCredentialRepo_WrongKeyFailsDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, newTestCredentialRepo(t, db, testKey).Set(ctx, driven.CredentialServiceGitHub, "ghp_abc"))

	other := newTestCredentialRepo(t, db, []byte("fedcba9876543210fedcba9876543210"))
	_, err := other.Get(ctx, driven.CredentialServiceGitHub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt github credential")
}
