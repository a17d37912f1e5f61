// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// cacheControl is sent with every successful proxy response.
const cacheControl = "public, s-maxage=300, stale-while-revalidate=600"

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	stats       *application.StatsService
	lookups     *application.LookupRecorder
	credentials *application.CredentialService
	provider    *application.GitHubClientProvider
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. credentials may
// be nil, which disables the token settings endpoint.
func NewHandler(
	stats *application.StatsService,
	lookups *application.LookupRecorder,
	credentials *application.CredentialService,
	provider *application.GitHubClientProvider,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		stats:       stats,
		lookups:     lookups,
		credentials: credentials,
		provider:    provider,
		logger:      logger,
	}
}

// RegisterRoutes adds the API routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/github/{kind}/{username}", h.GitHubLookup)
	mux.HandleFunc("GET /api/github/{kind}", h.MissingUsername)
	mux.HandleFunc("/api/github/", h.GitHubFallback)
	mux.HandleFunc("GET /api/v1/users/{username}/overview", h.Overview)
	mux.HandleFunc("GET /api/v1/lookups", h.ListLookups)
	mux.HandleFunc("PUT /api/v1/settings/github-token", h.SetGitHubToken)
	mux.HandleFunc("DELETE /api/v1/settings/github-token", h.ClearGitHubToken)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler serving the API and any extra routes,
// wrapped with request ID, real IP, CORS, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger, allowedOrigins []string, extra ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	for _, register := range extra {
		register(mux)
	}

	// Recovery innermost so panics are caught before logging.
	var wrapped http.Handler = recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = corsMiddleware(allowedOrigins)(wrapped)
	wrapped = chimw.RealIP(wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// lookupParams are the path parameters of the proxy endpoint.
type lookupParams struct {
	Kind     string `json:"kind" validate:"required,oneof=user repos languages contributions"`
	Username string `json:"username" validate:"required,github_login"`
}

// GitHubLookup serves /api/github/{kind}/{username}, returning one data
// category for the account.
func (h *Handler) GitHubLookup(w http.ResponseWriter, r *http.Request) {
	params := lookupParams{Kind: r.PathValue("kind"), Username: r.PathValue("username")}
	if params.Username == "" {
		h.MissingUsername(w, r)
		return
	}
	if err := validateStruct(params); err != nil {
		if firstInvalidField(params) == "kind" {
			writeError(w, http.StatusBadRequest, "Invalid API endpoint")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}
	kind, _ := model.ParseLookupKind(params.Kind)

	payload, err := h.Lookup(r.Context(), kind, params.Username)
	if err != nil {
		h.writeFetchError(w, kind, params.Username, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, payload)
}

// Lookup fetches one data category, or the overview, for username and
// returns the response body. Every call is recorded in the lookup log.
func (h *Handler) Lookup(ctx context.Context, kind model.LookupKind, username string) (any, error) {
	start := time.Now()
	payload, err := h.fetchKind(ctx, kind, username)
	h.lookups.Record(ctx, username, kind, start, err)
	return payload, err
}

// fetchKind runs the fetcher for kind and converts its result to a response DTO.
func (h *Handler) fetchKind(ctx context.Context, kind model.LookupKind, username string) (any, error) {
	switch kind {
	case model.LookupKindOverview:
		v, err := h.stats.FetchCombined(ctx, username)
		if err != nil {
			return nil, err
		}
		return toOverviewResponse(*v), nil
	case model.LookupKindUser:
		p, err := h.stats.FetchProfile(ctx, username)
		if err != nil {
			return nil, err
		}
		return toUserResponse(*p), nil
	case model.LookupKindRepos:
		a, err := h.stats.FetchRepositories(ctx, username)
		if err != nil {
			return nil, err
		}
		return toRepositoriesResponse(*a), nil
	case model.LookupKindLanguages:
		a, err := h.stats.FetchLanguages(ctx, username)
		if err != nil {
			return nil, err
		}
		return toLanguagesResponse(*a), nil
	case model.LookupKindContributions:
		s, err := h.stats.FetchContributions(ctx, username)
		if err != nil {
			return nil, err
		}
		return toContributionsResponse(*s), nil
	default:
		return nil, errors.New("unsupported lookup kind " + string(kind))
	}
}

// MissingUsername answers /api/github/{kind} without a username.
func (h *Handler) MissingUsername(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("kind") == "" {
		writeError(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	writeError(w, http.StatusBadRequest, "Username is required")
}

// GitHubFallback answers every other request under /api/github/: non-GET
// methods, the bare prefix and paths with extra segments.
func (h *Handler) GitHubFallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/github/"), "/")
	switch {
	case rest == "":
		writeError(w, http.StatusBadRequest, "Missing parameters")
	case !strings.Contains(rest, "/"):
		writeError(w, http.StatusBadRequest, "Username is required")
	default:
		writeError(w, http.StatusBadRequest, "Invalid API endpoint")
	}
}

// Overview returns the combined profile, repository and language view.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if !model.IsValidLogin(username) {
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}

	payload, err := h.Lookup(r.Context(), model.LookupKindOverview, username)
	if err != nil {
		h.writeFetchError(w, model.LookupKindOverview, username, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, payload)
}

// writeFetchError maps a fetch failure to 404 for a missing account and 500
// with the upstream message for anything else.
func (h *Handler) writeFetchError(w http.ResponseWriter, kind model.LookupKind, username string, err error) {
	if errors.Is(err, driven.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	h.logger.Error("failed to fetch github data", "kind", kind, "username", username, "error", err)

	message := err.Error()
	var ue *driven.UpstreamError
	if errors.As(err, &ue) && ue.Message != "" {
		message = ue.Message
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Failed to fetch data",
		Message: message,
	})
}

// ListLookups returns the most recent lookups, newest first.
func (h *Handler) ListLookups(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	lookups, err := h.lookups.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list lookups", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]LookupResponse, 0, len(lookups))
	for _, l := range lookups {
		resp = append(resp, toLookupResponse(l))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetGitHubToken stores a new GitHub token and swaps the live client.
func (h *Handler) SetGitHubToken(w http.ResponseWriter, r *http.Request) {
	if h.credentials == nil {
		writeError(w, http.StatusServiceUnavailable, "credential storage is not configured")
		return
	}

	req, err := decodeJSON[SetTokenRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.credentials.SetGitHubToken(r.Context(), req.Token); err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			writeError(w, http.StatusServiceUnavailable, driven.ErrEncryptionKeyNotSet.Error())
			return
		}
		h.logger.Error("failed to set github token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearGitHubToken removes the stored token; lookups fall back to the
// environment token, or to anonymous access when none was configured.
func (h *Handler) ClearGitHubToken(w http.ResponseWriter, r *http.Request) {
	if h.credentials == nil {
		writeError(w, http.StatusServiceUnavailable, "credential storage is not configured")
		return
	}

	if err := h.credentials.ClearGitHubToken(r.Context()); err != nil {
		h.logger.Error("failed to clear github token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Time:         time.Now().UTC().Format(time.RFC3339),
		GitHubClient: h.provider.HasClient(),
	})
}
