// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/shadowstats/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/shadowstats/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/shadowstats/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// maxTokenLength bounds the token accepted by the settings form.
const maxTokenLength = 255

// Flash messages carried across the settings redirect.
var settingsFlash = map[string]string{
	"saved":       "GitHub token saved.",
	"invalid":     "The token was empty or malformed.",
	"unavailable": "Token storage is not configured. Set SHADOWSTATS_SECRET_KEY.",
	"failed":      "The token could not be saved.",
	"cleared":     "Stored GitHub token removed.",
	"not_cleared": "The stored token could not be removed.",
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	stats       *application.StatsService
	lookups     *application.LookupRecorder
	credentials *application.CredentialService
	provider    *application.GitHubClientProvider
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. credentials may
// be nil, in which case the settings form reports storage as unavailable.
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

// Dashboard renders the main dashboard page. With ?user= it loads the combined
// view and the contribution calendar for that account.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d := vm.DashboardViewModel{
		Query:       strings.TrimSpace(r.URL.Query().Get("user")),
		CSRFToken:   csrfToken(w, r),
		ClientReady: h.provider.HasClient(),
		Flash:       settingsFlash[r.URL.Query().Get("settings")],
	}

	status := http.StatusOK
	switch {
	case d.Query == "":
	case !model.IsValidLogin(d.Query):
		status = http.StatusBadRequest
		d.Error = "Invalid username."
	default:
		status, d = h.loadDashboard(r.Context(), d)
	}

	h.render(w, r, status, d)
}

// loadDashboard fetches the combined view and contributions concurrently.
// A contribution failure only hides that panel.
func (h *Handler) loadDashboard(ctx context.Context, d vm.DashboardViewModel) (int, vm.DashboardViewModel) {
	var (
		view       *model.CombinedUserView
		contribs   *model.ContributionStats
		contribErr error
	)

	start := time.Now()
	var g errgroup.Group
	g.Go(func() error {
		var err error
		view, err = h.stats.FetchCombined(ctx, d.Query)
		return err
	})
	g.Go(func() error {
		contribs, contribErr = h.stats.FetchContributions(ctx, d.Query)
		return nil
	})
	err := g.Wait()
	h.lookups.Record(ctx, d.Query, model.LookupKindOverview, start, err)

	switch {
	case errors.Is(err, driven.ErrUserNotFound):
		d.Error = "User not found."
		return http.StatusNotFound, d
	case err != nil:
		h.logger.Error("failed to load dashboard", "username", d.Query, "error", err)
		d.Error = "Failed to fetch data from GitHub. Try again shortly."
		return http.StatusBadGateway, d
	}

	if contribErr != nil && !errors.Is(contribErr, context.Canceled) {
		h.logger.Warn("contributions unavailable", "username", d.Query, "error", contribErr)
	}

	return http.StatusOK, toDashboardViewModel(d, view, contribs, contribErr)
}

// SaveToken handles the settings form, storing the token and hot-swapping the
// GitHub client, then redirects back to the dashboard.
func (h *Handler) SaveToken(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	outcome := h.saveToken(r)
	http.Redirect(w, r, "/?settings="+outcome, http.StatusSeeOther)
}

func (h *Handler) saveToken(r *http.Request) string {
	if h.credentials == nil {
		return "unavailable"
	}

	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" || len(token) > maxTokenLength || strings.ContainsAny(token, " \t\r\n") {
		return "invalid"
	}

	if err := h.credentials.SetGitHubToken(r.Context(), token); err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			return "unavailable"
		}
		h.logger.Error("failed to save github token", "error", err)
		return "failed"
	}
	return "saved"
}

// ClearToken handles the remove-token form. Lookups fall back to the token
// from the environment, or to anonymous access.
func (h *Handler) ClearToken(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	outcome := "cleared"
	if h.credentials == nil {
		outcome = "unavailable"
	} else if err := h.credentials.ClearGitHubToken(r.Context()); err != nil {
		h.logger.Error("failed to clear github token", "error", err)
		outcome = "not_cleared"
	}
	http.Redirect(w, r, "/?settings="+outcome, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, d vm.DashboardViewModel) {
	title := "shadowstats"
	if d.Profile != nil {
		title = d.Profile.Login + " · shadowstats"
	}
	layout := templates.Layout(title, pages.Dashboard(d))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
	}
}
