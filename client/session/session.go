// Package session signs the user in and out and bootstraps the client
// state after login.
package session

import (
	"context"
	"io"
	"sync"

	"devmatch/client/api"
	"devmatch/client/store"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Navigator is the login boundary shared by every controller. ToLogin
// marks the session as needing a new login and notifies the listener.
type Navigator struct {
	mu       sync.Mutex
	required bool
	onLogin  func()
}

// OnLogin sets the function called whenever a login is required.
func (n *Navigator) OnLogin(fn func()) {
	n.mu.Lock()
	n.onLogin = fn
	n.mu.Unlock()
}

func (n *Navigator) ToLogin() {
	n.mu.Lock()
	n.required = true
	fn := n.onLogin
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (n *Navigator) LoginRequired() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.required
}

func (n *Navigator) clear() {
	n.mu.Lock()
	n.required = false
	n.mu.Unlock()
}

// FeedLoader is the part of the feed controller a session drives.
type FeedLoader interface {
	Load(ctx context.Context) error
	Reset()
}

// RequestSync is the part of the requests controller a session drives.
type RequestSync interface {
	Refresh(ctx context.Context) error
	RefreshConnections(ctx context.Context) error
	Reset()
}

type Manager struct {
	api      api.API
	self     *store.SessionWriter
	feed     FeedLoader
	requests RequestSync
	nav      *Navigator
	log      logger.Logger

	mu   sync.Mutex
	chat io.Closer
}

// NewManager claims the store's session writer.
func NewManager(client api.API, s *store.Store, feed FeedLoader, requests RequestSync, nav *Navigator, log logger.Logger) (*Manager, error) {
	self, err := s.SessionWriter()
	if err != nil {
		return nil, err
	}
	return &Manager{api: client, self: self, feed: feed, requests: requests, nav: nav, log: log}, nil
}

// Login authenticates and installs the returned identity.
func (m *Manager) Login(ctx context.Context, email, password string) (models.Identity, error) {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, err
	}
	m.nav.clear()
	m.self.SetSelf(resp.User)
	m.log.Info("✅ Logged in", "userId", resp.User.ID)
	return resp.User, nil
}

// Bootstrap loads the profile, feed, inbox and connections in parallel.
// The first failure cancels the rest.
func (m *Manager) Bootstrap(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		me, err := m.api.ViewProfile(ctx)
		if err != nil {
			if apperrors.IsUnauthorized(err) {
				m.nav.ToLogin()
			}
			return err
		}
		m.self.SetSelf(me)
		return nil
	})
	g.Go(func() error { return m.feed.Load(ctx) })
	g.Go(func() error { return m.requests.Refresh(ctx) })
	g.Go(func() error { return m.requests.RefreshConnections(ctx) })
	return g.Wait()
}

// Attach registers the active conversation so Logout can close it. Any
// previously attached conversation is closed.
func (m *Manager) Attach(chat io.Closer) {
	m.mu.Lock()
	prev := m.chat
	m.chat = chat
	m.mu.Unlock()
	if prev != nil && prev != chat {
		_ = prev.Close()
	}
}

// Logout closes the active conversation, ends the server session and
// clears every piece of client state. Local state is cleared even if the
// server call fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	chat := m.chat
	m.chat = nil
	m.mu.Unlock()
	if chat != nil {
		_ = chat.Close()
	}

	err := m.api.Logout(ctx)
	m.feed.Reset()
	m.requests.Reset()
	m.self.Clear()
	if err != nil {
		m.log.Warn("⚠️ Logout call failed", "err", err)
		return err
	}
	m.log.Info("👋 Logged out")
	return nil
}
