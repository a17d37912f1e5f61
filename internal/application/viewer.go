package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// ViewState is a snapshot of what a Viewer currently shows.
type ViewState struct {
	Username         string
	Loading          bool
	View             *model.CombinedUserView
	Contributions    *model.ContributionStats
	Err              error // Combined view failure; View is nil when set.
	ContributionsErr error
}

// Viewer holds the dashboard state for one interactive session. Starting a
// load for a new username cancels the previous one, and a result is only
// stored while its load is still the latest.
type Viewer struct {
	stats    *StatsService
	onChange func(ViewState)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  ViewState
}

// NewViewer creates a Viewer. onChange, if non-nil, is called with every new
// state: once when a load starts and once when the latest load finishes.
func NewViewer(stats *StatsService, onChange func(ViewState)) *Viewer {
	if onChange == nil {
		onChange = func(ViewState) {}
	}
	return &Viewer{stats: stats, onChange: onChange}
}

// State returns the current snapshot.
func (v *Viewer) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load starts fetching username in the background, superseding any load in
// flight. The returned channel is closed when this load's goroutine exits,
// whether it stored its result or was superseded.
func (v *Viewer) Load(ctx context.Context, username string) <-chan struct{} {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	loadCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state = ViewState{Username: username, Loading: true}
	st := v.state
	v.mu.Unlock()

	v.onChange(st)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		next := v.fetch(loadCtx, username)

		v.mu.Lock()
		if gen != v.gen {
			v.mu.Unlock()
			return
		}
		v.state = next
		v.cancel = nil
		v.mu.Unlock()

		v.onChange(next)
	}()

	return done
}

// Refresh discards the held view and fetches the current username again.
// With no username loaded yet it does nothing and returns a closed channel.
func (v *Viewer) Refresh(ctx context.Context) <-chan struct{} {
	username := v.State().Username
	if username == "" {
		done := make(chan struct{})
		close(done)
		return done
	}
	return v.Load(ctx, username)
}

// fetch runs the combined view and the contribution fetch side by side.
// A contribution failure does not discard the combined view.
func (v *Viewer) fetch(ctx context.Context, username string) ViewState {
	next := ViewState{Username: username}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		next.Contributions, next.ContributionsErr = v.stats.FetchContributions(ctx, username)
	}()

	next.View, next.Err = v.stats.FetchCombined(ctx, username)
	wg.Wait()

	return next
}
