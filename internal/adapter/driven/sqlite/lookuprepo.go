package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LookupStore = (*LookupRepo)(nil)

// LookupRepo is the SQLite implementation of the LookupStore port interface.
type LookupRepo struct {
	db *DB
}

// NewLookupRepo creates a new LookupRepo backed by the given DB.
func NewLookupRepo(db *DB) *LookupRepo {
	return &LookupRepo{db: db}
}

// Record inserts l and returns it with its assigned ID.
func (r *LookupRepo) Record(ctx context.Context, l model.Lookup) (model.Lookup, error) {
	const query = `INSERT INTO lookups (username, kind, outcome, duration_ms, looked_up_at) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.Writer.ExecContext(ctx, query,
		l.Username,
		string(l.Kind),
		string(l.Outcome),
		l.Duration.Milliseconds(),
		formatTime(l.LookedUpAt),
	)
	if err != nil {
		return model.Lookup{}, fmt.Errorf("record lookup %q: %w", l.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Lookup{}, fmt.Errorf("record lookup %q: last insert id: %w", l.Username, err)
	}
	l.ID = id

	return l, nil
}

// ListRecent returns up to limit lookups, newest first.
func (r *LookupRepo) ListRecent(ctx context.Context, limit int) ([]model.Lookup, error) {
	const query = `SELECT id, username, kind, outcome, duration_ms, looked_up_at
		FROM lookups ORDER BY looked_up_at DESC, id DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list lookups: %w", err)
	}
	defer rows.Close()

	lookups := []model.Lookup{}
	for rows.Next() {
		var (
			l          model.Lookup
			kind       string
			outcome    string
			durationMS int64
			lookedUpAt string
		)
		if err := rows.Scan(&l.ID, &l.Username, &kind, &outcome, &durationMS, &lookedUpAt); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}

		l.Kind = model.LookupKind(kind)
		l.Outcome = model.LookupOutcome(outcome)
		l.Duration = time.Duration(durationMS) * time.Millisecond
		l.LookedUpAt, err = parseTime(lookedUpAt)
		if err != nil {
			return nil, fmt.Errorf("parse looked_up_at for lookup %d: %w", l.ID, err)
		}

		lookups = append(lookups, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookups: %w", err)
	}

	return lookups, nil
}
