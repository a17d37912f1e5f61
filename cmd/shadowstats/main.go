package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/shadowstats/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/shadowstats/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/config"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

const usage = `usage: shadowstats [serve]
       shadowstats lookup -user USERNAME [-kind overview|user|repos|languages|contributions]
       shadowstats watch`

func main() {
	// A missing .env file is fine; the environment alone is enough.
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// app holds the wired services shared by every mode.
type app struct {
	cfg         *config.Config
	db          *sqliteadapter.DB
	provider    *application.GitHubClientProvider
	stats       *application.StatsService
	lookups     *application.LookupRecorder
	credentials *application.CredentialService
	logger      *slog.Logger
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	mode := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode, args = args[0], args[1:]
	}
	if mode != "serve" && mode != "lookup" && mode != "watch" {
		return fmt.Errorf("unknown mode %q\n%s", mode, usage)
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	switch mode {
	case "lookup":
		return runLookup(ctx, a, args, stdout)
	case "watch":
		return runWatch(ctx, a, stdin, stdout)
	default:
		return runServe(ctx, a)
	}
}

// wire opens the database and builds the adapters and services.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	// Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("database ready", "path", cfg.DBPath)

	credentialStore, err := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	lookupStore := sqliteadapter.NewLookupRepo(db)

	clientOpts := githubadapter.ClientOptions{
		APIBaseURL: cfg.GitHubAPIURL,
		Timeout:    cfg.HTTPTimeout,
		HTTPCache:  cfg.HTTPCache,
	}
	factory := func(token string) (driven.GitHubClient, error) {
		c, err := githubadapter.NewClient(token, clientOpts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// Provider starts empty; the resolved token fills it below and the
	// settings endpoints hot-swap it later.
	provider := application.NewGitHubClientProvider(nil)
	credentials := application.NewCredentialService(credentialStore, provider, factory, cfg.GitHubToken, logger)

	// Stored credentials take priority over env vars.
	token, err := credentials.ResolveGitHubToken(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	client, err := factory(token)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	provider.Replace(client)
	if token == "" {
		logger.Warn("no github token configured, REST lookups use the anonymous rate limit and contributions will fail")
	}

	repos := application.NewRepositoryService(provider, cfg.TopRepos)
	stats := application.NewStatsService(
		application.NewProfileService(provider),
		repos,
		application.NewLanguageService(provider, repos, cfg.LanguageConcurrency, logger),
		application.NewContributionService(provider, nil),
	)

	return &app{
		cfg:         cfg,
		db:          db,
		provider:    provider,
		stats:       stats,
		lookups:     application.NewLookupRecorder(lookupStore, logger),
		credentials: credentials,
		logger:      logger,
	}, nil
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
