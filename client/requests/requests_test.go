package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"devmatch/client/mocks"
	"devmatch/client/store"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navSpy struct {
	mu    sync.Mutex
	calls int
}

func (n *navSpy) ToLogin() {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

func request(id, from string) models.Request {
	return models.Request{
		ID:     id,
		From:   models.Identity{ID: from, FirstName: from},
		Status: models.StatusPending,
	}
}

func inboxIDs(c *Controller) []string {
	out := []string{}
	for _, r := range c.Pending() {
		out = append(out, r.ID)
	}
	return out
}

func newController(t *testing.T) (*Controller, *mocks.MockAPI, *navSpy) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockAPI(ctrl)
	nav := &navSpy{}
	var log logger.Logger
	c, err := NewController(client, store.New(), nav, log)
	require.NoError(t, err)
	return c, client, nav
}

func TestAcceptRemovesEntryAndConnects(t *testing.T) {
	c, client, _ := newController(t)
	ctx := context.Background()

	client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r1", "A")}, nil)
	client.EXPECT().SubmitResolution(gomock.Any(), "r1", models.StatusAccepted).Return(nil)

	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.Resolve(ctx, "r1", models.StatusAccepted))

	assert.Empty(t, c.Pending())
	conns := c.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "A", conns[0].ID)
}

func TestResolveRemovesExactlyThatID(t *testing.T) {
	for _, decision := range []models.Decision{models.StatusAccepted, models.StatusRejected} {
		t.Run(string(decision), func(t *testing.T) {
			c, client, _ := newController(t)
			ctx := context.Background()

			client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{
				request("r1", "A"), request("r2", "B"), request("r3", "C"),
			}, nil)
			client.EXPECT().SubmitResolution(gomock.Any(), "r2", decision).Return(nil)

			require.NoError(t, c.Refresh(ctx))
			require.NoError(t, c.Resolve(ctx, "r2", decision))
			assert.Equal(t, []string{"r1", "r3"}, inboxIDs(c))

			if decision == models.StatusRejected {
				assert.Empty(t, c.Connections())
			}
		})
	}
}

func TestFailedResolutionKeepsEntry(t *testing.T) {
	c, client, nav := newController(t)
	ctx := context.Background()

	client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r1", "A")}, nil)
	client.EXPECT().SubmitResolution(gomock.Any(), "r1", models.StatusAccepted).
		Return(apperrors.TransportFailure("POST /request/review", nil))

	require.NoError(t, c.Refresh(ctx))
	err := c.Resolve(ctx, "r1", models.StatusAccepted)
	assert.True(t, apperrors.IsTransportFailure(err))
	assert.Equal(t, []string{"r1"}, inboxIDs(c))
	assert.Empty(t, c.Connections())
	assert.Zero(t, nav.calls)
}

func TestRefreshLastWriteWins(t *testing.T) {
	c, client, _ := newController(t)
	ctx := context.Background()

	gomock.InOrder(
		client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r2", "B"), request("r1", "A")}, nil),
		client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r3", "C")}, nil),
	)

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, []string{"r2", "r1"}, inboxIDs(c), "server order is kept")
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, []string{"r3"}, inboxIDs(c))
}

func TestUnauthorizedRefreshIsNotAnEmptyInbox(t *testing.T) {
	c, client, nav := newController(t)

	client.EXPECT().FetchPendingRequests(gomock.Any()).Return(nil, apperrors.Unauthorized("session expired"))

	err := c.Refresh(context.Background())
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, 1, nav.calls)
}

func TestSameIDResolvesOnce(t *testing.T) {
	c, client, _ := newController(t)
	ctx := context.Background()

	client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r1", "A")}, nil)
	require.NoError(t, c.Refresh(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().SubmitResolution(gomock.Any(), "r1", models.StatusAccepted).
		DoAndReturn(func(context.Context, string, models.Decision) error {
			close(entered)
			<-release
			return nil
		}).Times(1)

	errs := make(chan error, 2)
	go func() { errs <- c.Resolve(ctx, "r1", models.StatusAccepted) }()
	<-entered
	go func() { errs <- c.Resolve(ctx, "r1", models.StatusAccepted) }()
	// Give the second call time to join the in-flight one.
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("resolve did not finish")
		}
	}
	assert.Empty(t, c.Pending())
	assert.Len(t, c.Connections(), 1)
}

func TestDifferentIDsResolveConcurrently(t *testing.T) {
	c, client, _ := newController(t)
	ctx := context.Background()

	client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r1", "A"), request("r2", "B")}, nil)
	require.NoError(t, c.Refresh(ctx))

	var wg sync.WaitGroup
	wg.Add(2)
	barrier := func(context.Context, string, models.Decision) error {
		wg.Done()
		wg.Wait()
		return nil
	}
	client.EXPECT().SubmitResolution(gomock.Any(), "r1", models.StatusAccepted).DoAndReturn(barrier)
	client.EXPECT().SubmitResolution(gomock.Any(), "r2", models.StatusRejected).DoAndReturn(barrier)

	errs := make(chan error, 2)
	go func() { errs <- c.Resolve(ctx, "r1", models.StatusAccepted) }()
	go func() { errs <- c.Resolve(ctx, "r2", models.StatusRejected) }()
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("resolves were serialized")
		}
	}
	assert.Empty(t, c.Pending())
	require.Len(t, c.Connections(), 1)
	assert.Equal(t, "A", c.Connections()[0].ID)
}

func TestConflictingDecisionsOnSameIDBothReachServer(t *testing.T) {
	c, client, _ := newController(t)
	ctx := context.Background()

	client.EXPECT().FetchPendingRequests(gomock.Any()).Return([]models.Request{request("r1", "A")}, nil)
	require.NoError(t, c.Refresh(ctx))

	var (
		mu   sync.Mutex
		sent []models.Decision
	)
	record := func(d models.Decision) {
		mu.Lock()
		sent = append(sent, d)
		mu.Unlock()
	}
	entered := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().SubmitResolution(gomock.Any(), "r1", models.StatusAccepted).
		DoAndReturn(func(context.Context, string, models.Decision) error {
			record(models.StatusAccepted)
			close(entered)
			<-release
			return nil
		})
	client.EXPECT().SubmitResolution(gomock.Any(), "r1", models.StatusRejected).
		DoAndReturn(func(context.Context, string, models.Decision) error {
			record(models.StatusRejected)
			return apperrors.TransportFailure("POST /request/review/rejected/r1", apperrors.ErrRequestAlreadyResolved)
		})

	accepted := make(chan error, 1)
	rejected := make(chan error, 1)
	go func() { accepted <- c.Resolve(ctx, "r1", models.StatusAccepted) }()
	<-entered
	go func() { rejected <- c.Resolve(ctx, "r1", models.StatusRejected) }()

	select {
	case err := <-rejected:
		t.Fatalf("reject finished while accept was in flight: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	for _, ch := range []chan error{accepted, rejected} {
		select {
		case err := <-ch:
			if ch == accepted {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeFailedPrecondition))
			}
		case <-time.After(2 * time.Second):
			t.Fatal("resolve did not finish")
		}
	}

	mu.Lock()
	assert.Equal(t, []models.Decision{models.StatusAccepted, models.StatusRejected}, sent)
	mu.Unlock()
	assert.Empty(t, c.Pending())
	assert.Len(t, c.Connections(), 1)
}

func TestResultsAfterResetAreNotInstalled(t *testing.T) {
	c, client, _ := newController(t)
	ctx := context.Background()

	client.EXPECT().FetchPendingRequests(gomock.Any()).
		DoAndReturn(func(context.Context) ([]models.Request, error) {
			c.Reset()
			return []models.Request{request("r1", "A")}, nil
		})
	err := c.Refresh(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSessionReset)
	assert.Empty(t, c.Pending())

	client.EXPECT().FetchConnections(gomock.Any()).
		DoAndReturn(func(context.Context) ([]models.Identity, error) {
			c.Reset()
			return []models.Identity{{ID: "A"}}, nil
		})
	err = c.RefreshConnections(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSessionReset)
	assert.Empty(t, c.Connections())

	client.EXPECT().SubmitResolution(gomock.Any(), "r2", models.StatusAccepted).
		DoAndReturn(func(context.Context, string, models.Decision) error {
			c.Reset()
			return nil
		})
	err = c.Resolve(ctx, "r2", models.StatusAccepted)
	assert.ErrorIs(t, err, apperrors.ErrSessionReset)
	assert.Empty(t, c.Connections())
}

func TestInvalidDecision(t *testing.T) {
	c, _, _ := newController(t)
	err := c.Resolve(context.Background(), "r1", models.StatusPending)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDecision)
}

func TestRefreshConnections(t *testing.T) {
	c, client, _ := newController(t)

	client.EXPECT().FetchConnections(gomock.Any()).Return([]models.Identity{{ID: "A"}, {ID: "B"}}, nil)
	require.NoError(t, c.RefreshConnections(context.Background()))
	assert.Len(t, c.Connections(), 2)

	c.Reset()
	assert.Empty(t, c.Connections())
}
