package main

import (
	"context"
	"testing"
	"time"

	"devmatch/client/chat"
	"devmatch/config"
	"devmatch/models"
	"devmatch/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (model, *app) {
	t.Helper()
	cfg := &config.Config{
		Feed:   config.Feed{BatchSize: 10},
		Client: config.Client{APIURL: "http://127.0.0.1:1"},
	}
	a, err := newApp(cfg, logger.Logger{})
	require.NoError(t, err)
	t.Cleanup(a.shutdown)
	return newModel(context.Background(), a, "", ""), a
}

func press(t *testing.T, m model, key string) model {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func TestTabKeysSwitchScreens(t *testing.T) {
	m, _ := newTestModel(t)
	m.screen = screenFeed

	m = press(t, m, "2")
	assert.Equal(t, screenRequests, m.screen)
	m = press(t, m, "3")
	assert.Equal(t, screenConnections, m.screen)
	m = press(t, m, "1")
	assert.Equal(t, screenFeed, m.screen)
}

func TestEnterOnEmailMovesToPassword(t *testing.T) {
	m, _ := newTestModel(t)
	m.email.SetValue("a@example.com")

	m = press(t, m, "enter")
	assert.False(t, m.busy)
	assert.True(t, m.password.Focused())
	assert.False(t, m.email.Focused())
}

func TestLoginRequiredReturnsToLogin(t *testing.T) {
	m, a := newTestModel(t)
	m.screen = screenRequests
	a.nav.ToLogin()

	next, _ := m.Update(changedMsg{})
	m = next.(model)
	assert.Equal(t, screenLogin, m.screen)
	assert.Contains(t, m.status, "session expired")
	assert.True(t, m.email.Focused())
}

func TestChangeNotificationsCoalesce(t *testing.T) {
	_, a := newTestModel(t)
	a.notify()
	a.notify()
	a.notify()

	assert.Len(t, a.changes, 1)
}

func TestOpenChatRequiresLogin(t *testing.T) {
	_, a := newTestModel(t)
	err := a.openChat(context.Background(), "bob")
	require.Error(t, err)
	assert.Nil(t, a.activeChat())
}

func TestTranscriptShowsDelivery(t *testing.T) {
	m, _ := newTestModel(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m.chatSnap = chat.Snapshot{
		State:        chat.StateReady,
		TargetID:     "bob",
		Participants: models.Participants{Target: models.Identity{ID: "bob", FirstName: "Bob"}},
		Entries: []chat.Entry{
			{Message: models.Message{ID: "m1", FromUserID: "bob", Body: "hi", CreatedAt: at}},
			{Message: models.Message{ID: "local-1", FromUserID: "alice", Body: "hey", CreatedAt: at}, Local: true, Delivery: chat.DeliveryPending},
			{Message: models.Message{ID: "local-2", FromUserID: "alice", Body: "there?", CreatedAt: at}, Local: true, Delivery: chat.DeliveryFailed},
		},
	}

	out := m.renderEntries()
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "hi")
	assert.Contains(t, out, "(sending)")
	assert.Contains(t, out, "ctrl+r to retry")

	id, ok := lastFailed(m.chatSnap.Entries)
	assert.True(t, ok)
	assert.Equal(t, "local-2", id)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(3, 0))
	assert.Equal(t, 0, clamp(-1, 4))
	assert.Equal(t, 3, clamp(7, 4))
	assert.Equal(t, 2, clamp(2, 4))
}
