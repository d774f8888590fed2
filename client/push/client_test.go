package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeRoomIsOrderIndependent(t *testing.T) {
	a := Scope{SelfID: "alice", TargetID: "bob"}
	b := Scope{SelfID: "bob", TargetID: "alice"}
	assert.Equal(t, a.Room(), b.Room())
	assert.Equal(t, models.ConversationID("alice", "bob"), a.Room())
}

func TestScopeMatches(t *testing.T) {
	s := Scope{SelfID: "alice", TargetID: "bob"}
	assert.True(t, s.Matches("alice", "bob"))
	assert.True(t, s.Matches("bob", "alice"))
	assert.False(t, s.Matches("bob", "carol"))
	assert.False(t, s.Matches("carol", "alice"))
}

func TestDialRejectedHandshakeIsUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stale", r.URL.Query().Get("token"))
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	var log logger.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := Dial(ctx, ts.URL, "stale", log)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestDialUnreachableIsTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	var log logger.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := Dial(ctx, addr, "t", log)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransportFailure(err))
	assert.False(t, apperrors.IsUnauthorized(err))
}

func TestDialCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var log logger.Logger
	_, err := Dial(ctx, "http://127.0.0.1:1", "t", log)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransportFailure(err))
}
