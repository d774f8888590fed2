package store

import "devmatch/models"

// QueueWriter is the candidate queue's only mutator.
type QueueWriter struct{ s *Store }

// Install replaces the queue. An empty list still marks the queue loaded.
func (w *QueueWriter) Install(candidates []models.Identity) {
	w.s.mutate(func() {
		w.s.queue = uniqueIdentities(candidates)
		w.s.queueLoaded = true
	})
}

// Drop removes one candidate, keeping the rest in order.
func (w *QueueWriter) Drop(candidateID string) {
	w.s.mutate(func() {
		kept := w.s.queue[:0:0]
		for _, c := range w.s.queue {
			if c.ID != candidateID {
				kept = append(kept, c)
			}
		}
		w.s.queue = kept
	})
}

func (w *QueueWriter) Loaded() bool {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	return w.s.queueLoaded
}

// Reset returns the queue to not-yet-loaded.
func (w *QueueWriter) Reset() {
	w.s.mutate(func() {
		w.s.queue = nil
		w.s.queueLoaded = false
	})
}

// InboxWriter owns the pending inbox and the connection set.
type InboxWriter struct{ s *Store }

func (w *InboxWriter) Install(requests []models.Request) {
	w.s.mutate(func() {
		w.s.inbox = append([]models.Request(nil), requests...)
		w.s.inboxLoaded = true
	})
}

// Find returns the inbox entry with id.
func (w *InboxWriter) Find(requestID string) (models.Request, bool) {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	for _, r := range w.s.inbox {
		if r.ID == requestID {
			return r, true
		}
	}
	return models.Request{}, false
}

// Remove deletes exactly the entry with requestID and reports whether it
// was present.
func (w *InboxWriter) Remove(requestID string) bool {
	removed := false
	w.s.mutate(func() {
		kept := make([]models.Request, 0, len(w.s.inbox))
		for _, r := range w.s.inbox {
			if r.ID == requestID {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		w.s.inbox = kept
	})
	return removed
}

func (w *InboxWriter) InstallConnections(conns []models.Identity) {
	w.s.mutate(func() {
		w.s.connections = uniqueIdentities(conns)
	})
}

// AddConnection adds identity unless it is already connected.
func (w *InboxWriter) AddConnection(identity models.Identity) {
	w.s.mutate(func() {
		w.s.connections = uniqueIdentities(append(w.s.connections, identity))
	})
}

func (w *InboxWriter) Reset() {
	w.s.mutate(func() {
		w.s.inbox = nil
		w.s.inboxLoaded = false
		w.s.connections = nil
	})
}

// SessionWriter owns the signed-in identity.
type SessionWriter struct{ s *Store }

func (w *SessionWriter) SetSelf(self models.Identity) {
	w.s.mutate(func() {
		w.s.self = &self
	})
}

func (w *SessionWriter) Clear() {
	w.s.mutate(func() {
		w.s.self = nil
	})
}
