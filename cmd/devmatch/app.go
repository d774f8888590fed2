package main

import (
	"context"
	"sync"

	"devmatch/client/api"
	"devmatch/client/chat"
	"devmatch/client/feed"
	"devmatch/client/push"
	"devmatch/client/requests"
	"devmatch/client/session"
	"devmatch/client/store"
	"devmatch/config"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"
)

var errNotLoggedIn = apperrors.Unauthorized("not logged in")

// app owns the client controllers. Every method may block and is meant to
// run inside a tea.Cmd, never from Update.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	api      *api.Client
	store    *store.Store
	nav      *session.Navigator
	feed     *feed.Controller
	requests *requests.Controller
	session  *session.Manager

	// changes is signalled, without blocking, whenever the store, the
	// active conversation or the login boundary changes.
	changes chan struct{}

	mu      sync.Mutex
	channel *push.Client
	chat    *chat.Controller
}

func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	client := api.NewClient(cfg.Client.APIURL, log)
	s := store.New()
	nav := &session.Navigator{}

	feedCtl, err := feed.NewController(client, s, nav, cfg.Feed.BatchSize, log)
	if err != nil {
		return nil, err
	}
	reqCtl, err := requests.NewController(client, s, nav, log)
	if err != nil {
		return nil, err
	}
	manager, err := session.NewManager(client, s, feedCtl, reqCtl, nav, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		api:      client,
		store:    s,
		nav:      nav,
		feed:     feedCtl,
		requests: reqCtl,
		session:  manager,
		changes:  make(chan struct{}, 1),
	}
	s.Subscribe(func(store.Snapshot) { a.notify() })
	nav.OnLogin(a.notify)
	return a, nil
}

func (a *app) notify() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

// login signs in and opens the push channel with the new token.
func (a *app) login(ctx context.Context, email, password string) (models.Identity, error) {
	me, err := a.session.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, err
	}
	channel, err := push.Dial(ctx, a.cfg.Client.APIURL, a.api.Token(), a.log)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			a.nav.ToLogin()
		}
		return models.Identity{}, err
	}

	a.mu.Lock()
	prev := a.channel
	a.channel = channel
	a.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return me, nil
}

func (a *app) bootstrap(ctx context.Context) error {
	return a.session.Bootstrap(ctx)
}

// pushDone is closed when the current push channel drops.
func (a *app) pushDone() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.channel == nil {
		return nil
	}
	return a.channel.Done()
}

// openChat replaces the active conversation with one scoped to targetID.
func (a *app) openChat(ctx context.Context, targetID string) error {
	self := a.store.Snapshot().Self
	a.mu.Lock()
	channel := a.channel
	a.mu.Unlock()
	if self == nil || channel == nil {
		return errNotLoggedIn
	}

	c := chat.NewController(a.api, channel, self.ID, a.nav, a.log)
	c.Subscribe(func(chat.Snapshot) { a.notify() })

	a.mu.Lock()
	a.chat = c
	a.mu.Unlock()
	a.session.Attach(c)

	return c.Open(ctx, targetID)
}

func (a *app) activeChat() *chat.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chat
}

func (a *app) closeChat() {
	a.mu.Lock()
	a.chat = nil
	a.mu.Unlock()
	a.session.Attach(nil)
	a.notify()
}

// logout ends the session and drops the push channel. Local state is
// cleared even when the server call fails.
func (a *app) logout(ctx context.Context) error {
	err := a.session.Logout(ctx)

	a.mu.Lock()
	channel := a.channel
	a.channel = nil
	a.chat = nil
	a.mu.Unlock()
	if channel != nil {
		_ = channel.Close()
	}
	a.notify()
	return err
}

func (a *app) shutdown() {
	a.session.Attach(nil)
	a.mu.Lock()
	channel := a.channel
	a.channel = nil
	a.mu.Unlock()
	if channel != nil {
		_ = channel.Close()
	}
}
