// Package requests manages the inbound pending requests and the
// connections they turn into.
package requests

import (
	"context"
	"sync"

	"devmatch/client/api"
	"devmatch/client/store"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Navigator is the login boundary.
type Navigator interface {
	ToLogin()
}

type Controller struct {
	api   api.API
	inbox *store.InboxWriter
	view  *store.Store
	nav   Navigator
	log   logger.Logger

	resolving singleflight.Group
	perID     keyedMutex

	// epoch advances on Reset. Results of calls started under an older
	// epoch are not installed.
	epochMu sync.Mutex
	epoch   uint64
}

// NewController claims the store's inbox writer.
func NewController(client api.API, s *store.Store, nav Navigator, log logger.Logger) (*Controller, error) {
	inbox, err := s.InboxWriter()
	if err != nil {
		return nil, err
	}
	return &Controller{api: client, inbox: inbox, view: s, nav: nav, log: log}, nil
}

// Pending returns the inbox in server order.
func (c *Controller) Pending() []models.Request {
	return c.view.Snapshot().Inbox
}

func (c *Controller) Connections() []models.Identity {
	return c.view.Snapshot().Connections
}

// Refresh replaces the inbox with the server's pending set.
func (c *Controller) Refresh(ctx context.Context) error {
	epoch := c.currentEpoch()
	pending, err := c.api.FetchPendingRequests(ctx)
	if err != nil {
		return c.fail("refresh inbox", err)
	}
	if !c.commit(epoch, func() { c.inbox.Install(pending) }) {
		return apperrors.ErrSessionReset
	}
	c.log.Debug("📥 Inbox refreshed", "pending", len(pending))
	return nil
}

// RefreshConnections replaces the connection set with the server's.
func (c *Controller) RefreshConnections(ctx context.Context) error {
	epoch := c.currentEpoch()
	conns, err := c.api.FetchConnections(ctx)
	if err != nil {
		return c.fail("refresh connections", err)
	}
	if !c.commit(epoch, func() { c.inbox.InstallConnections(conns) }) {
		return apperrors.ErrSessionReset
	}
	return nil
}

// Resolve accepts or rejects requestID. The entry leaves the inbox only
// after the server acknowledges; on accept its sender becomes a
// connection. Identical concurrent calls share one server call. Calls for
// the same id with different decisions run one after the other, each
// reaching the server.
func (c *Controller) Resolve(ctx context.Context, requestID string, decision models.Decision) error {
	if !models.ValidDecision(decision) {
		return apperrors.ErrInvalidDecision
	}

	_, err, _ := c.resolving.Do(requestID+"/"+string(decision), func() (interface{}, error) {
		unlock := c.perID.lock(requestID)
		defer unlock()

		epoch := c.currentEpoch()
		req, known := c.inbox.Find(requestID)
		if err := c.api.SubmitResolution(ctx, requestID, decision); err != nil {
			return nil, err
		}
		committed := c.commit(epoch, func() {
			c.inbox.Remove(requestID)
			if decision == models.StatusAccepted && known {
				c.inbox.AddConnection(req.From)
			}
		})
		c.log.Info("✅ Request resolved", "requestId", requestID, "decision", decision)
		if !committed {
			return nil, apperrors.ErrSessionReset
		}
		return nil, nil
	})
	if err != nil {
		return c.fail("resolve request", err)
	}
	return nil
}

// Reset clears the inbox and connections. Calls still running keep
// their server effect but leave the store alone.
func (c *Controller) Reset() {
	c.epochMu.Lock()
	defer c.epochMu.Unlock()
	c.epoch++
	c.inbox.Reset()
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
	c.log.Warn("❌ Request call failed", "op", op, "err", err)
	return err
}

// keyedMutex hands out one lock per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*refMutex{}
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
