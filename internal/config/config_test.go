package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every SHADOWSTATS_ env var that Load() reads.
var allConfigKeys = []string{
	"SHADOWSTATS_GITHUB_TOKEN",
	"SHADOWSTATS_GITHUB_API_URL",
	"SHADOWSTATS_HTTP_TIMEOUT",
	"SHADOWSTATS_HTTP_CACHE",
	"SHADOWSTATS_LANGUAGE_CONCURRENCY",
	"SHADOWSTATS_TOP_REPOS",
	"SHADOWSTATS_LISTEN_ADDR",
	"SHADOWSTATS_ALLOWED_ORIGINS",
	"SHADOWSTATS_DB_PATH",
	"SHADOWSTATS_SECRET_KEY",
	"SHADOWSTATS_LOG_LEVEL",
	"SHADOWSTATS_LOG_FORMAT",
}

// isolateConfigEnv saves and unsets all SHADOWSTATS_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.GitHubToken)
	assert.False(t, cfg.HasGitHubToken())
	assert.Equal(t, "", cfg.GitHubAPIURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.HTTPCache)
	assert.Equal(t, 10, cfg.LanguageConcurrency)
	assert.Equal(t, 10, cfg.TopRepos)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "shadowstats.db", cfg.DBPath)
	assert.Nil(t, cfg.SecretKey)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SHADOWSTATS_GITHUB_TOKEN", " ghp_test123 ")
	t.Setenv("SHADOWSTATS_GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	t.Setenv("SHADOWSTATS_HTTP_TIMEOUT", "5s")
	t.Setenv("SHADOWSTATS_HTTP_CACHE", "false")
	t.Setenv("SHADOWSTATS_LANGUAGE_CONCURRENCY", "4")
	t.Setenv("SHADOWSTATS_TOP_REPOS", "5")
	t.Setenv("SHADOWSTATS_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("SHADOWSTATS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SHADOWSTATS_DB_PATH", "/tmp/test.db")
	t.Setenv("SHADOWSTATS_LOG_LEVEL", "debug")
	t.Setenv("SHADOWSTATS_LOG_FORMAT", "JSON")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.True(t, cfg.HasGitHubToken())
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.GitHubAPIURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.HTTPCache)
	assert.Equal(t, 4, cfg.LanguageConcurrency)
	assert.Equal(t, 5, cfg.TopRepos)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "SHADOWSTATS_GITHUB_API_URL", value: "not a url"},
		{key: "SHADOWSTATS_HTTP_TIMEOUT", value: "not-a-duration"},
		{key: "SHADOWSTATS_HTTP_TIMEOUT", value: "-1s"},
		{key: "SHADOWSTATS_HTTP_CACHE", value: "maybe"},
		{key: "SHADOWSTATS_LANGUAGE_CONCURRENCY", value: "0"},
		{key: "SHADOWSTATS_LANGUAGE_CONCURRENCY", value: "65"},
		{key: "SHADOWSTATS_LANGUAGE_CONCURRENCY", value: "ten"},
		{key: "SHADOWSTATS_TOP_REPOS", value: "101"},
		{key: "SHADOWSTATS_LOG_LEVEL", value: "verbose"},
		{key: "SHADOWSTATS_LOG_FORMAT", value: "xml"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tc.key, tc.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoad_SecretKey_Hex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("SHADOWSTATS_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	require.Len(t, cfg.SecretKey, 32)
	assert.Equal(t, byte(0x01), cfg.SecretKey[0])
	assert.Equal(t, byte(0x20), cfg.SecretKey[31])
}

func TestLoad_SecretKey_Base64(t *testing.T) {
	isolateConfigEnv(t)
	raw := []byte("0123456789abcdef0123456789abcdef")
	t.Setenv("SHADOWSTATS_SECRET_KEY", base64.StdEncoding.EncodeToString(raw))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, raw, cfg.SecretKey)
}

func TestLoad_SecretKey_Raw(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SHADOWSTATS_SECRET_KEY", "an-exactly-thirty-two-byte-key!!")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []byte("an-exactly-thirty-two-byte-key!!"), cfg.SecretKey)
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SHADOWSTATS_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHADOWSTATS_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 chars but not valid hex
	t.Setenv("SHADOWSTATS_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHADOWSTATS_SECRET_KEY")
}
