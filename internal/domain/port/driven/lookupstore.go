package driven

import (
	"context"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// LookupStore defines the driven port for the lookup audit log.
type LookupStore interface {
	// Record appends a lookup entry and returns it with its assigned ID.
	Record(ctx context.Context, lookup model.Lookup) (model.Lookup, error)

	// ListRecent returns at most limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Lookup, error)
}
