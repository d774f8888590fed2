// Package feed serves match candidates one at a time and records the
// user's decision on each.
package feed

import (
	"context"
	"sync"

	"devmatch/client/api"
	"devmatch/client/store"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"
)

// ErrDecisionInFlight rejects a decision while another is still running.
var ErrDecisionInFlight = apperrors.FailedPrecondition("a decision is already in progress")

// Navigator is the login boundary.
type Navigator interface {
	ToLogin()
}

type State int

const (
	StateUnloaded State = iota
	StateEmpty
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

type Controller struct {
	api   api.API
	queue *store.QueueWriter
	view  *store.Store
	nav   Navigator
	batch int
	log   logger.Logger

	loadMu   sync.Mutex
	decideMu sync.Mutex

	decidedMu sync.Mutex
	decided   map[string]struct{}

	// epoch advances on Reset. Results of calls started under an older
	// epoch are not installed.
	epochMu sync.Mutex
	epoch   uint64
}

// NewController claims the store's queue writer.
func NewController(client api.API, s *store.Store, nav Navigator, batch int, log logger.Logger) (*Controller, error) {
	queue, err := s.QueueWriter()
	if err != nil {
		return nil, err
	}
	return &Controller{
		api:     client,
		queue:   queue,
		view:    s,
		nav:     nav,
		batch:   batch,
		log:     log,
		decided: map[string]struct{}{},
	}, nil
}

func (c *Controller) State() State {
	snap := c.view.Snapshot()
	switch {
	case !snap.QueueLoaded:
		return StateUnloaded
	case len(snap.Queue) == 0:
		return StateEmpty
	default:
		return StateReady
	}
}

// Head is the candidate to show.
func (c *Controller) Head() (models.Identity, bool) {
	return c.view.Snapshot().Head()
}

// Load fetches the queue unless one, possibly empty, is already installed.
func (c *Controller) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.queue.Loaded() {
		return nil
	}
	epoch := c.currentEpoch()
	candidates, err := c.api.FetchFeed(ctx, c.batch)
	if err != nil {
		return c.fail("load feed", err)
	}
	if !c.commit(epoch, func() { c.queue.Install(c.undecided(candidates)) }) {
		return apperrors.ErrSessionReset
	}
	c.log.Debug("🃏 Feed loaded", "candidates", len(candidates))
	return nil
}

// Decide submits outcome for candidateID and then refetches the queue.
// Only one decision runs at a time; a concurrent call gets
// ErrDecisionInFlight. A failed submit leaves the queue untouched.
func (c *Controller) Decide(ctx context.Context, candidateID string, outcome models.Outcome) error {
	if !outcome.Valid() {
		return apperrors.ErrInvalidOutcome
	}
	if !c.decideMu.TryLock() {
		return ErrDecisionInFlight
	}
	defer c.decideMu.Unlock()

	epoch := c.currentEpoch()
	if err := c.api.SubmitDecision(ctx, candidateID, outcome); err != nil {
		return c.fail("submit decision", err)
	}
	c.log.Info("✅ Decision sent", "candidateId", candidateID, "outcome", outcome)
	if !c.commit(epoch, func() { c.markDecided(candidateID) }) {
		return apperrors.ErrSessionReset
	}

	candidates, err := c.api.FetchFeed(ctx, c.batch)
	if err != nil {
		// The decision is recorded server-side; keep the rest of the
		// queue and drop only the decided head.
		if !c.commit(epoch, func() { c.queue.Drop(candidateID) }) {
			return apperrors.ErrSessionReset
		}
		if apperrors.IsUnauthorized(err) {
			return c.fail("refresh feed", err)
		}
		c.log.Warn("⚠️ Feed refresh failed after decision", "candidateId", candidateID, "err", err)
		return nil
	}
	if !c.commit(epoch, func() { c.queue.Install(c.undecided(candidates)) }) {
		return apperrors.ErrSessionReset
	}
	return nil
}

// Reset forgets the queue and every decision made this session. Calls
// still running keep their server effect but leave the store alone.
func (c *Controller) Reset() {
	c.epochMu.Lock()
	defer c.epochMu.Unlock()
	c.epoch++
	c.decidedMu.Lock()
	c.decided = map[string]struct{}{}
	c.decidedMu.Unlock()
	c.queue.Reset()
}

func (c *Controller) currentEpoch() uint64 {
	c.epochMu.Lock()
	defer c.epochMu.Unlock()
	return c.epoch
}

// commit runs install unless Reset ran since epoch was read.
func (c *Controller) commit(epoch uint64, install func()) bool {
	c.epochMu.Lock()
	defer c.epochMu.Unlock()
	if c.epoch != epoch {
		return false
	}
	install()
	return true
}

func (c *Controller) fail(op string, err error) error {
	if apperrors.IsUnauthorized(err) {
		c.log.Warn("🔒 Session rejected", "op", op)
		if c.nav != nil {
			c.nav.ToLogin()
		}
		return err
	}
	c.log.Warn("❌ Feed call failed", "op", op, "err", err)
	return err
}

func (c *Controller) markDecided(id string) {
	c.decidedMu.Lock()
	c.decided[id] = struct{}{}
	c.decidedMu.Unlock()
}

// undecided drops candidates already decided this session, in case the
// server has not caught up yet.
func (c *Controller) undecided(in []models.Identity) []models.Identity {
	c.decidedMu.Lock()
	defer c.decidedMu.Unlock()
	out := make([]models.Identity, 0, len(in))
	for _, cand := range in {
		if _, done := c.decided[cand.ID]; !done {
			out = append(out, cand)
		}
	}
	return out
}
