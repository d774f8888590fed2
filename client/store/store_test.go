package store

import (
	"sync"
	"testing"

	"devmatch/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(in []models.Identity) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		out = append(out, i.ID)
	}
	return out
}

func TestWritersClaimOnce(t *testing.T) {
	s := New()

	_, err := s.QueueWriter()
	require.NoError(t, err)
	_, err = s.QueueWriter()
	assert.ErrorIs(t, err, ErrWriterClaimed)

	_, err = s.InboxWriter()
	require.NoError(t, err)
	_, err = s.InboxWriter()
	assert.ErrorIs(t, err, ErrWriterClaimed)

	_, err = s.SessionWriter()
	require.NoError(t, err)
	_, err = s.SessionWriter()
	assert.ErrorIs(t, err, ErrWriterClaimed)
}

func TestQueueLoadedVersusEmpty(t *testing.T) {
	s := New()
	q, _ := s.QueueWriter()

	assert.False(t, s.Snapshot().QueueLoaded)

	q.Install(nil)
	snap := s.Snapshot()
	assert.True(t, snap.QueueLoaded)
	_, ok := snap.Head()
	assert.False(t, ok)

	q.Reset()
	assert.False(t, q.Loaded())
}

func TestQueueInstallDedupes(t *testing.T) {
	s := New()
	q, _ := s.QueueWriter()

	q.Install([]models.Identity{{ID: "x"}, {ID: "y"}, {ID: "x"}, {ID: ""}})
	assert.Equal(t, []string{"x", "y"}, ids(s.Snapshot().Queue))

	q.Drop("x")
	head, ok := s.Snapshot().Head()
	require.True(t, ok)
	assert.Equal(t, "y", head.ID)
}

func TestInboxRemoveExactlyOne(t *testing.T) {
	s := New()
	in, _ := s.InboxWriter()

	in.Install([]models.Request{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}})
	assert.True(t, in.Remove("r2"))
	assert.False(t, in.Remove("r2"))

	var got []string
	for _, r := range s.Snapshot().Inbox {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"r1", "r3"}, got)
}

func TestConnectionsAreASet(t *testing.T) {
	s := New()
	in, _ := s.InboxWriter()

	in.InstallConnections([]models.Identity{{ID: "a"}})
	in.AddConnection(models.Identity{ID: "a"})
	in.AddConnection(models.Identity{ID: "b"})

	snap := s.Snapshot()
	assert.Equal(t, []string{"a", "b"}, ids(snap.Connections))
	assert.True(t, snap.IsConnected("b"))
	assert.False(t, snap.IsConnected("c"))
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := New()
	q, _ := s.QueueWriter()
	q.Install([]models.Identity{{ID: "x"}})

	snap := s.Snapshot()
	snap.Queue[0].ID = "mutated"
	assert.Equal(t, "x", s.Snapshot().Queue[0].ID)
}

func TestSubscribeSeesEveryMutation(t *testing.T) {
	s := New()
	sess, _ := s.SessionWriter()

	var mu sync.Mutex
	var versions []uint64
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	sess.SetSelf(models.Identity{ID: "me"})
	sess.Clear()
	unsubscribe()
	sess.SetSelf(models.Identity{ID: "again"})

	assert.Equal(t, []uint64{1, 2}, versions)
	require.NotNil(t, s.Snapshot().Self)
	assert.Equal(t, "again", s.Snapshot().Self.ID)
}
