// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// secretKeyLength is the AES-256 key size required for credential encryption.
const secretKeyLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	GitHubAPIURL string // empty means api.github.com
	HTTPTimeout  time.Duration
	HTTPCache    bool

	LanguageConcurrency int
	TopRepos            int

	ListenAddr     string
	AllowedOrigins []string
	DBPath         string

	// SecretKey encrypts stored credentials. Nil disables token storage.
	SecretKey []byte

	LogLevel  slog.Level
	LogFormat string // "text" or "json"
}

// HasGitHubToken reports whether a token was supplied through the environment.
// Without one the client still works against the anonymous rate limit.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional:
//
//	SHADOWSTATS_GITHUB_TOKEN          GitHub token (a token stored via settings wins)
//	SHADOWSTATS_GITHUB_API_URL        REST base URL for GitHub Enterprise
//	SHADOWSTATS_HTTP_TIMEOUT          upstream request timeout (30s)
//	SHADOWSTATS_HTTP_CACHE            conditional request cache (true)
//	SHADOWSTATS_LANGUAGE_CONCURRENCY  parallel language requests, 1..64 (10)
//	SHADOWSTATS_TOP_REPOS             repositories in the top list, 1..100 (10)
//	SHADOWSTATS_LISTEN_ADDR           (127.0.0.1:8080)
//	SHADOWSTATS_ALLOWED_ORIGINS       comma-separated CORS origins (*)
//	SHADOWSTATS_DB_PATH               (shadowstats.db)
//	SHADOWSTATS_SECRET_KEY            32 bytes as hex, base64 or raw text
//	SHADOWSTATS_LOG_LEVEL             debug|info|warn|error (info)
//	SHADOWSTATS_LOG_FORMAT            text|json (text)
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:         strings.TrimSpace(os.Getenv("SHADOWSTATS_GITHUB_TOKEN")),
		HTTPTimeout:         30 * time.Second,
		HTTPCache:           true,
		LanguageConcurrency: 10,
		TopRepos:            10,
		ListenAddr:          "127.0.0.1:8080",
		AllowedOrigins:      []string{"*"},
		DBPath:              "shadowstats.db",
		LogLevel:            slog.LevelInfo,
		LogFormat:           "text",
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_GITHUB_API_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("SHADOWSTATS_GITHUB_API_URL must be an absolute URL, got %q", v)
		}
		cfg.GitHubAPIURL = v
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SHADOWSTATS_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("SHADOWSTATS_HTTP_TIMEOUT must be positive, got %s", parsed)
		}
		cfg.HTTPTimeout = parsed
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_HTTP_CACHE"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SHADOWSTATS_HTTP_CACHE has invalid boolean %q: %w", v, err)
		}
		cfg.HTTPCache = parsed
	}

	var err error
	if cfg.LanguageConcurrency, err = intInRange("SHADOWSTATS_LANGUAGE_CONCURRENCY", cfg.LanguageConcurrency, 1, 64); err != nil {
		return nil, err
	}
	if cfg.TopRepos, err = intInRange("SHADOWSTATS_TOP_REPOS", cfg.TopRepos, 1, 100); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_SECRET_KEY"); ok && v != "" {
		key, err := parseSecretKey(v)
		if err != nil {
			return nil, fmt.Errorf("SHADOWSTATS_SECRET_KEY: %w", err)
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("SHADOWSTATS_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("SHADOWSTATS_LOG_FORMAT"); ok && v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return nil, fmt.Errorf("SHADOWSTATS_LOG_FORMAT must be text or json, got %q", v)
		}
		cfg.LogFormat = v
	}

	return cfg, nil
}

// intInRange reads key as an integer in [lo, hi], returning def when unset.
func intInRange(key string, def, lo, hi int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", key, lo, hi, n)
	}
	return n, nil
}

// parseSecretKey accepts a 32-byte key encoded as 64 hex characters, as
// standard base64, or as 32 raw characters.
func parseSecretKey(v string) ([]byte, error) {
	if len(v) == secretKeyLength*2 {
		if key, err := hex.DecodeString(v); err == nil {
			return key, nil
		}
	}
	if key, err := base64.StdEncoding.DecodeString(v); err == nil && len(key) == secretKeyLength {
		return key, nil
	}
	if len(v) == secretKeyLength {
		return []byte(v), nil
	}
	return nil, fmt.Errorf("must decode to %d bytes (hex, base64 or raw)", secretKeyLength)
}
