package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestViewer_LoadStoresResult(t *testing.T) {
	var mu sync.Mutex
	var states []application.ViewState
	viewer := application.NewViewer(newStatsService(fixtureClient()), func(s application.ViewState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	waitDone(t, viewer.Load(context.Background(), "octocat"))

	st := viewer.State()
	assert.Equal(t, "octocat", st.Username)
	assert.False(t, st.Loading)
	require.NoError(t, st.Err)
	require.NotNil(t, st.View)
	assert.Equal(t, 10, st.View.Repositories.TotalStars)
	assert.NotNil(t, st.Contributions)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
}

func TestViewer_NewLoadSupersedesOld(t *testing.T) {
	slowStarted := make(chan struct{})
	client := fixtureClient()
	client.fetchUser = func(ctx context.Context, username string) (*model.UserProfile, error) {
		if username == "slow" {
			close(slowStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &model.UserProfile{Login: username, Name: username}, nil
	}
	viewer := application.NewViewer(newStatsService(client), nil)

	slowDone := viewer.Load(context.Background(), "slow")
	<-slowStarted
	fastDone := viewer.Load(context.Background(), "fast")

	waitDone(t, fastDone)
	waitDone(t, slowDone)

	st := viewer.State()
	assert.Equal(t, "fast", st.Username)
	require.NoError(t, st.Err)
	require.NotNil(t, st.View)
	assert.Equal(t, "fast", st.View.Profile.Login)
}

func TestViewer_RefreshReloadsCurrentUser(t *testing.T) {
	client := fixtureClient()
	viewer := application.NewViewer(newStatsService(client), nil)

	waitDone(t, viewer.Load(context.Background(), "octocat"))
	waitDone(t, viewer.Refresh(context.Background()))

	assert.Equal(t, int32(2), client.userCalls.Load())
	assert.Equal(t, "octocat", viewer.State().Username)
	assert.NotNil(t, viewer.State().View)
}

func TestViewer_RefreshWithoutUserIsNoop(t *testing.T) {
	client := fixtureClient()
	viewer := application.NewViewer(newStatsService(client), nil)

	waitDone(t, viewer.Refresh(context.Background()))

	assert.Equal(t, int32(0), client.userCalls.Load())
	assert.Empty(t, viewer.State().Username)
}
