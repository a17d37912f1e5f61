package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// DefaultLookupListLimit and MaxLookupListLimit bound Recent.
const (
	DefaultLookupListLimit = 50
	MaxLookupListLimit     = 500
)

// LookupRecorder writes one audit entry per username lookup. Store failures
// are logged and never reach the caller of Record.
type LookupRecorder struct {
	store  driven.LookupStore
	logger *slog.Logger
	now    func() time.Time
}

// NewLookupRecorder creates a LookupRecorder. store may be nil, in which case
// Record is a no-op and Recent returns an empty list.
func NewLookupRecorder(store driven.LookupStore, logger *slog.Logger) *LookupRecorder {
	return &LookupRecorder{store: store, logger: logger, now: time.Now}
}

// Record stores the outcome of a lookup of username that started at start and
// ended with err.
func (r *LookupRecorder) Record(ctx context.Context, username string, kind model.LookupKind, start time.Time, err error) {
	if r.store == nil {
		return
	}

	end := r.now()
	entry := model.Lookup{
		Username:   username,
		Kind:       kind,
		Outcome:    ClassifyOutcome(err),
		Duration:   end.Sub(start),
		LookedUpAt: end,
	}

	// The lookup may have been cancelled by the client; the audit entry is
	// still written.
	if _, storeErr := r.store.Record(context.WithoutCancel(ctx), entry); storeErr != nil {
		r.logger.Error("failed to record lookup", "username", username, "kind", kind, "error", storeErr)
	}
}

// Recent returns up to limit of the most recent lookups, newest first.
// limit is clamped to [1, MaxLookupListLimit]; zero selects the default.
func (r *LookupRecorder) Recent(ctx context.Context, limit int) ([]model.Lookup, error) {
	if r.store == nil {
		return []model.Lookup{}, nil
	}

	switch {
	case limit <= 0:
		limit = DefaultLookupListLimit
	case limit > MaxLookupListLimit:
		limit = MaxLookupListLimit
	}

	return r.store.ListRecent(ctx, limit)
}

// ClassifyOutcome maps a lookup error to its audit outcome.
func ClassifyOutcome(err error) model.LookupOutcome {
	switch {
	case err == nil:
		return model.LookupOutcomeOK
	case errors.Is(err, driven.ErrUserNotFound):
		return model.LookupOutcomeNotFound
	default:
		return model.LookupOutcomeError
	}
}
