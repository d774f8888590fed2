// Package store holds the client's relationship state: the candidate
// queue, the pending inbox and the connection set, plus the signed-in
// identity. Readers take snapshots or subscribe; each part has exactly one
// writer handle.
package store

import (
	"sync"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
)

// ErrWriterClaimed is returned when a writer handle is requested twice.
var ErrWriterClaimed = apperrors.FailedPrecondition("store writer already claimed")

// Snapshot is an immutable copy of the store. Version increases with every
// mutation, so subscribers can drop out-of-order deliveries.
type Snapshot struct {
	Version     uint64
	Self        *models.Identity
	Queue       []models.Identity
	QueueLoaded bool
	Inbox       []models.Request
	InboxLoaded bool
	Connections []models.Identity
}

// Head is the candidate currently shown, if any.
func (s Snapshot) Head() (models.Identity, bool) {
	if len(s.Queue) == 0 {
		return models.Identity{}, false
	}
	return s.Queue[0], true
}

// IsConnected reports whether userID is in the connection set.
func (s Snapshot) IsConnected(userID string) bool {
	for _, c := range s.Connections {
		if c.ID == userID {
			return true
		}
	}
	return false
}

type writerKind int

const (
	queueWriter writerKind = iota
	inboxWriter
	sessionWriter
)

type Store struct {
	mu          sync.RWMutex
	version     uint64
	self        *models.Identity
	queue       []models.Identity
	queueLoaded bool
	inbox       []models.Request
	inboxLoaded bool
	connections []models.Identity
	claimed     map[writerKind]bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func New() *Store {
	return &Store{
		claimed: map[writerKind]bool{},
		subs:    map[int]func(Snapshot){},
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe calls fn with a snapshot after every mutation. fn runs on the
// mutating goroutine.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) QueueWriter() (*QueueWriter, error) {
	if err := s.claim(queueWriter); err != nil {
		return nil, err
	}
	return &QueueWriter{s: s}, nil
}

func (s *Store) InboxWriter() (*InboxWriter, error) {
	if err := s.claim(inboxWriter); err != nil {
		return nil, err
	}
	return &InboxWriter{s: s}, nil
}

func (s *Store) SessionWriter() (*SessionWriter, error) {
	if err := s.claim(sessionWriter); err != nil {
		return nil, err
	}
	return &SessionWriter{s: s}, nil
}

func (s *Store) claim(kind writerKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[kind] {
		return ErrWriterClaimed
	}
	s.claimed[kind] = true
	return nil
}

// mutate applies fn under the write lock and notifies subscribers.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:     s.version,
		Queue:       append([]models.Identity(nil), s.queue...),
		QueueLoaded: s.queueLoaded,
		Inbox:       append([]models.Request(nil), s.inbox...),
		InboxLoaded: s.inboxLoaded,
		Connections: append([]models.Identity(nil), s.connections...),
	}
	if s.self != nil {
		self := *s.self
		snap.Self = &self
	}
	return snap
}

// uniqueIdentities keeps the first occurrence of every id.
func uniqueIdentities(in []models.Identity) []models.Identity {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Identity, 0, len(in))
	for _, id := range in {
		if _, dup := seen[id.ID]; dup || id.ID == "" {
			continue
		}
		seen[id.ID] = struct{}{}
		out = append(out, id)
	}
	return out
}
