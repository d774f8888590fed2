// Package chat keeps one conversation's transcript in sync with the
// server: history on open, live pushes while open, optimistic local sends.
//
// All transcript mutations run on a single actor goroutine per Controller.
// Push events and caller operations are queued onto it, so they never
// interleave.
package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"devmatch/client/api"
	"devmatch/client/push"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrClosed       = apperrors.FailedPrecondition("conversation is closed")
	ErrNotReady     = apperrors.FailedPrecondition("conversation is not open")
	ErrSuperseded   = apperrors.FailedPrecondition("conversation was switched before its history loaded")
	ErrNoTarget     = apperrors.InvalidArg("conversation target is required")
	ErrNotRetryable = apperrors.InvalidArg("message is not a failed local send")
)

// LocalIDPrefix marks temporary ids of optimistic sends.
const LocalIDPrefix = "local-"

// Navigator is the login boundary.
type Navigator interface {
	ToLogin()
}

type State int

const (
	StateUninitialized State = iota
	StateLoadingHistory
	StateReady
	StateSending
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoadingHistory:
		return "loading"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Snapshot is a read-only copy of the controller's state.
type Snapshot struct {
	State        State
	TargetID     string
	Participants models.Participants
	Entries      []Entry
	// Err is the last history, join or delivery failure.
	Err error
}

type conversation struct {
	state        State
	gen          uint64
	target       string
	scope        *push.Scope
	participants models.Participants
	transcript   *transcript
	err          error
}

type Option func(*Controller)

// WithClock replaces time.Now for local timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs replaces the temporary id generator.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

type Controller struct {
	api     api.API
	channel push.Channel
	selfID  string
	nav     Navigator
	log     logger.Logger
	now     func() time.Time
	newID   func() string

	ops         chan func(*conversation)
	quit        chan struct{}
	closeOnce   sync.Once
	unsubscribe func()

	published atomic.Pointer[Snapshot]
	subMu     sync.Mutex
	subs      map[int]func(Snapshot)
	nextSub   int
}

// NewController starts a controller for selfID and subscribes it to
// channel. Close must be called on every exit path.
func NewController(client api.API, channel push.Channel, selfID string, nav Navigator, log logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:     client,
		channel: channel,
		selfID:  selfID,
		nav:     nav,
		log:     log.With("component", "chat", "self", selfID),
		now:     time.Now,
		newID:   uuid.NewString,
		ops:     make(chan func(*conversation), 64),
		quit:    make(chan struct{}),
		subs:    map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.published.Store(&Snapshot{State: StateUninitialized})

	go c.run(&conversation{state: StateUninitialized, transcript: newTranscript()})
	c.unsubscribe = channel.Subscribe(c.onPush)
	return c
}

func (c *Controller) Snapshot() Snapshot {
	return *c.published.Load()
}

// Subscribe calls fn after every state change, on the actor goroutine.
// fn must not call back into the controller synchronously.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// Open switches the controller to the conversation with targetID: the
// previous scope is left, history is loaded and installed, and the new
// scope is joined. A failed load or join leaves the controller in
// StateFailed with an empty transcript. An Open overtaken by a later Open returns
// ErrSuperseded and changes nothing.
func (c *Controller) Open(ctx context.Context, targetID string) error {
	if targetID == "" {
		return ErrNoTarget
	}

	var gen uint64
	err := c.do(func(conv *conversation) error {
		if conv.state == StateClosed {
			return ErrClosed
		}
		c.leave(conv)
		conv.gen++
		gen = conv.gen
		conv.target = targetID
		conv.state = StateLoadingHistory
		conv.participants = models.Participants{}
		conv.transcript = newTranscript()
		conv.err = nil
		return nil
	})
	if err != nil {
		return err
	}

	history, fetchErr := c.api.FetchConversation(ctx, targetID)

	return c.do(func(conv *conversation) error {
		if conv.state == StateClosed {
			return ErrClosed
		}
		if conv.gen != gen {
			c.log.Debug("💤 Dropping stale history", "target", targetID)
			return ErrSuperseded
		}
		if fetchErr != nil {
			conv.state = StateFailed
			conv.err = fetchErr
			return c.fail("load history", fetchErr)
		}

		scope := push.Scope{SelfID: c.selfID, TargetID: targetID}
		if err := c.channel.Join(scope); err != nil {
			conv.state = StateFailed
			conv.err = err
			return c.fail("join conversation", err)
		}
		conv.scope = &scope

		if history != nil {
			for _, m := range history.Messages {
				conv.transcript.add(m, false, DeliveryConfirmed)
			}
			conv.participants = history.Participants
		}
		conv.state = StateReady
		c.log.Info("💬 Conversation open", "target", targetID, "messages", len(conv.transcript.entries))
		return nil
	})
}

// Send appends body to the transcript immediately and emits it. A blank
// body is ignored. If the emit fails the entry stays, marked
// DeliveryFailed, and the error is returned; Retry re-emits it.
func (c *Controller) Send(ctx context.Context, body string) error {
	text := strings.TrimSpace(body)
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.do(func(conv *conversation) error {
		if err := usable(conv); err != nil {
			return err
		}
		msg := models.Message{
			ID:         LocalIDPrefix + c.newID(),
			FromUserID: c.selfID,
			ToUserID:   conv.target,
			Body:       text,
			CreatedAt:  c.now(),
		}
		pos, _ := conv.transcript.add(msg, true, DeliveryPending)

		conv.state = StateSending
		c.publish(conv)
		err := c.emit(conv, pos)
		conv.state = StateReady
		return err
	})
}

// Retry re-emits a local message whose delivery failed.
func (c *Controller) Retry(ctx context.Context, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.do(func(conv *conversation) error {
		if err := usable(conv); err != nil {
			return err
		}
		pos, ok := conv.transcript.find(messageID)
		if !ok {
			return ErrNotRetryable
		}
		entry := conv.transcript.entries[pos]
		if !entry.Local || entry.Delivery != DeliveryFailed {
			return ErrNotRetryable
		}
		return c.emit(conv, pos)
	})
}

// Close leaves the scope, stops receiving and releases the transcript. It
// is safe to call more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.unsubscribe()
		_ = c.do(func(conv *conversation) error {
			c.leave(conv)
			conv.gen++
			conv.state = StateClosed
			conv.participants = models.Participants{}
			conv.transcript = newTranscript()
			conv.err = nil
			return nil
		})
		close(c.quit)
	})
	return nil
}

func (c *Controller) run(conv *conversation) {
	for {
		select {
		case op := <-c.ops:
			op(conv)
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the actor goroutine and waits for it.
func (c *Controller) do(fn func(*conversation) error) error {
	res := make(chan error, 1)
	op := func(conv *conversation) {
		err := fn(conv)
		c.publish(conv)
		res <- err
	}

	select {
	case c.ops <- op:
	case <-c.quit:
		return ErrClosed
	}
	select {
	case err := <-res:
		return err
	case <-c.quit:
		select {
		case err := <-res:
			return err
		default:
			return ErrClosed
		}
	}
}

// onPush runs on the push channel's reader goroutine.
func (c *Controller) onPush(ev push.Event) {
	op := func(conv *conversation) {
		if c.receive(conv, ev) {
			c.publish(conv)
		}
	}
	select {
	case c.ops <- op:
	case <-c.quit:
	}
}

// receive applies one push event and reports whether anything changed.
func (c *Controller) receive(conv *conversation, ev push.Event) bool {
	if conv.scope == nil || (conv.state != StateReady && conv.state != StateSending) {
		return false
	}

	switch {
	case ev.Message != nil:
		m := ev.Message
		if !conv.scope.Matches(m.CurrentUserID, m.ToUserID) {
			return false
		}
		if m.CurrentUserID == c.selfID {
			// Our own send coming back: already in the transcript.
			return conv.transcript.settle(strings.TrimSpace(m.Message), DeliveryConfirmed)
		}
		_, added := conv.transcript.add(m.ToMessage(c.now()), false, DeliveryConfirmed)
		return added
	case ev.SendError != nil:
		if ev.SendError.ToUserID != conv.target {
			return false
		}
		conv.err = apperrors.TransportFailure(ev.SendError.Message, nil)
		conv.transcript.settle("", DeliveryFailed)
		return true
	}
	return false
}

func (c *Controller) emit(conv *conversation, pos int) error {
	entry := conv.transcript.entries[pos]
	err := c.channel.Send(models.PushMessage{
		Message:       entry.Body,
		CurrentUserID: c.selfID,
		ToUserID:      conv.target,
	})
	if err != nil {
		conv.transcript.entries[pos].Delivery = DeliveryFailed
		conv.err = err
		c.log.Warn("❌ Message not sent", "target", conv.target, "messageId", entry.ID, "err", err)
		if apperrors.IsTransportFailure(err) {
			return err
		}
		return apperrors.TransportFailure("send message", err)
	}
	conv.transcript.markPending(pos)
	return nil
}

func (c *Controller) leave(conv *conversation) {
	if conv.scope == nil {
		return
	}
	if err := c.channel.Leave(*conv.scope); err != nil {
		c.log.Warn("⚠️ Could not leave conversation", "target", conv.scope.TargetID, "err", err)
	}
	conv.scope = nil
}

func (c *Controller) fail(op string, err error) error {
	if apperrors.IsUnauthorized(err) {
		c.log.Warn("🔒 Session rejected", "op", op)
		if c.nav != nil {
			c.nav.ToLogin()
		}
		return err
	}
	c.log.Warn("❌ Chat call failed", "op", op, "err", err)
	return err
}

func (c *Controller) publish(conv *conversation) {
	snap := &Snapshot{
		State:        conv.state,
		TargetID:     conv.target,
		Participants: conv.participants,
		Entries:      conv.transcript.snapshot(),
		Err:          conv.err,
	}
	c.published.Store(snap)

	c.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()
	for _, fn := range subs {
		fn(*snap)
	}
}

func usable(conv *conversation) error {
	switch conv.state {
	case StateReady, StateSending:
		if conv.scope == nil {
			return ErrNotReady
		}
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}
}
