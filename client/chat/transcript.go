package chat

import (
	"devmatch/models"
)

// Delivery tracks what the client knows about one transcript entry.
type Delivery int

const (
	// DeliveryConfirmed entries came from history or from the other party,
	// or are local sends the server has echoed back.
	DeliveryConfirmed Delivery = iota
	// DeliveryPending is a local send emitted but not yet echoed.
	DeliveryPending
	// DeliveryFailed is a local send that could not be emitted or that the
	// server refused. It stays in the transcript and can be retried.
	DeliveryFailed
)

func (d Delivery) String() string {
	switch d {
	case DeliveryPending:
		return "pending"
	case DeliveryFailed:
		return "failed"
	default:
		return "confirmed"
	}
}

// Entry is one transcript line. Seq is the local insertion position.
type Entry struct {
	models.Message
	Seq      uint64
	Local    bool
	Delivery Delivery
}

// transcript is owned by the controller's actor goroutine.
type transcript struct {
	entries []Entry
	ids     map[string]int
	seq     uint64
	// outbox holds positions of pending local sends, oldest first.
	outbox []int
}

func newTranscript() *transcript {
	return &transcript{ids: map[string]int{}}
}

// add appends m unless its id is already present.
func (t *transcript) add(m models.Message, local bool, d Delivery) (int, bool) {
	if m.ID != "" {
		if _, dup := t.ids[m.ID]; dup {
			return 0, false
		}
	}
	t.seq++
	pos := len(t.entries)
	t.entries = append(t.entries, Entry{Message: m, Seq: t.seq, Local: local, Delivery: d})
	if m.ID != "" {
		t.ids[m.ID] = pos
	}
	return pos, true
}

func (t *transcript) find(id string) (int, bool) {
	pos, ok := t.ids[id]
	return pos, ok
}

func (t *transcript) markPending(pos int) {
	t.entries[pos].Delivery = DeliveryPending
	t.outbox = append(t.outbox, pos)
}

// settle resolves a pending send. With a body, only the oldest pending
// send carrying that body is settled; an echo of a message sent from
// another session matches nothing. Without a body the oldest pending send
// is settled, which is how refusals arrive.
func (t *transcript) settle(body string, d Delivery) bool {
	idx := -1
	for i, pos := range t.outbox {
		if body == "" || t.entries[pos].Body == body {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	pos := t.outbox[idx]
	t.outbox = append(t.outbox[:idx], t.outbox[idx+1:]...)
	t.entries[pos].Delivery = d
	return true
}

func (t *transcript) snapshot() []Entry {
	return append([]Entry(nil), t.entries...)
}
