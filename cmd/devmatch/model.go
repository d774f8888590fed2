package main

import (
	"context"
	"fmt"
	"strings"

	"devmatch/client/chat"
	"devmatch/client/store"
	"devmatch/models"
	apperrors "devmatch/pkg/errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenLogin screen = iota
	screenFeed
	screenRequests
	screenConnections
	screenChat
)

type (
	changedMsg    struct{}
	pushClosedMsg struct{}
	loginDoneMsg  struct {
		me  models.Identity
		err error
	}
	bootstrapDoneMsg struct{ err error }
	chatOpenedMsg    struct{ err error }
	loggedOutMsg     struct{ err error }
	actionDoneMsg    struct {
		status string
		err    error
	}
)

type model struct {
	ctx context.Context
	app *app

	width, height int
	screen        screen
	busy          bool
	status        string
	errText       string

	email    textinput.Model
	password textinput.Model
	compose  textinput.Model
	history  viewport.Model
	spinner  spinner.Model
	theme    uiTheme

	snap      store.Snapshot
	chatSnap  chat.Snapshot
	reqCursor int
	conCursor int
	autoLogin bool
}

func newModel(ctx context.Context, a *app, email, password string) model {
	emailInput := textinput.New()
	emailInput.Prompt = "email    "
	emailInput.Placeholder = "you@example.com"
	emailInput.SetValue(email)
	emailInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Prompt = "password "
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'
	passwordInput.SetValue(password)

	compose := textinput.New()
	compose.Prompt = "❯ "
	compose.CharLimit = 2000
	compose.Placeholder = "Write a message"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	history := viewport.New(0, 0)
	history.MouseWheelEnabled = true

	return model{
		ctx:       ctx,
		app:       a,
		screen:    screenLogin,
		email:     emailInput,
		password:  passwordInput,
		compose:   compose,
		history:   history,
		spinner:   sp,
		theme:     newTheme(),
		autoLogin: email != "" && password != "",
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink, waitForChange(m.app.changes)}
	if m.autoLogin {
		cmds = append(cmds, m.loginCmd(m.email.Value(), m.password.Value()))
	}
	return tea.Batch(cmds...)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func waitForPushClose(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return pushClosedMsg{}
	}
}

func (m model) loginCmd(email, password string) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		me, err := a.login(ctx, email, password)
		return loginDoneMsg{me: me, err: err}
	}
}

func (m model) bootstrapCmd() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return bootstrapDoneMsg{err: a.bootstrap(ctx)}
	}
}

func (m model) decideCmd(candidate models.Identity, outcome models.Outcome) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		err := a.feed.Decide(ctx, candidate.ID, outcome)
		return actionDoneMsg{status: fmt.Sprintf("%s: %s", outcome, displayName(candidate)), err: err}
	}
}

func (m model) resolveCmd(req models.Request, decision models.Decision) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		err := a.requests.Resolve(ctx, req.ID, decision)
		return actionDoneMsg{status: fmt.Sprintf("%s request from %s", decision, displayName(req.From)), err: err}
	}
}

func (m model) refreshCmd() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		err := a.requests.Refresh(ctx)
		if err == nil {
			err = a.requests.RefreshConnections(ctx)
		}
		return actionDoneMsg{status: "requests refreshed", err: err}
	}
}

func (m model) openChatCmd(target models.Identity) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return chatOpenedMsg{err: a.openChat(ctx, target.ID)}
	}
}

func (m model) sendCmd(c *chat.Controller, body string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: c.Send(ctx, body)}
	}
}

func (m model) retryCmd(c *chat.Controller, id string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{status: "retrying", err: c.Retry(ctx, id)}
	}
}

func (m model) logoutCmd() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return loggedOutMsg{err: a.logout(ctx)}
	}
}

func (m model) closeChatCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		a.closeChat()
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.renderHistory()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case changedMsg:
		m.refresh()
		cmds = append(cmds, waitForChange(m.app.changes))
	case pushClosedMsg:
		if m.screen != screenLogin {
			m.errText = "push channel disconnected; log in again to reconnect"
		}
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = errorText(msg.err)
			break
		}
		m.errText = ""
		m.status = "logged in as " + displayName(msg.me)
		m.screen = screenFeed
		m.busy = true
		cmds = append(cmds, m.bootstrapCmd(), waitForPushClose(m.app.pushDone()))
	case bootstrapDoneMsg:
		m.busy = false
		m.setErr(msg.err)
	case chatOpenedMsg:
		m.busy = false
		m.setErr(msg.err)
		m.refresh()
	case loggedOutMsg:
		m.busy = false
		m.toLogin("logged out")
		m.setErr(msg.err)
	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = errorText(msg.err)
		} else {
			m.errText = ""
			if msg.status != "" {
				m.status = msg.status
			}
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd, handled := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	cmds = append(cmds, m.updateInputs(msg))
	return m, tea.Batch(cmds...)
}

// handleKey reports handled=true when the key must not reach a text input.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if m.screen == screenLogin {
		switch key {
		case "tab", "shift+tab", "up", "down":
			m.toggleLoginFocus()
			return nil, true
		case "enter":
			if m.busy {
				return nil, true
			}
			if m.email.Focused() && m.password.Value() == "" {
				m.toggleLoginFocus()
				return nil, true
			}
			m.busy = true
			m.errText = ""
			return m.loginCmd(strings.TrimSpace(m.email.Value()), m.password.Value()), true
		}
		return nil, false
	}

	if key == "ctrl+l" {
		m.busy = true
		return m.logoutCmd(), true
	}

	if m.screen == screenChat {
		return m.handleChatKey(key)
	}

	switch key {
	case "1":
		m.screen = screenFeed
		return nil, true
	case "2":
		m.screen = screenRequests
		return nil, true
	case "3":
		m.screen = screenConnections
		return nil, true
	case "q":
		return tea.Quit, true
	}

	switch m.screen {
	case screenFeed:
		head, ok := m.snap.Head()
		if !ok || m.busy {
			return nil, true
		}
		switch key {
		case "i":
			m.busy = true
			return m.decideCmd(head, models.OutcomeInterested), true
		case "x":
			m.busy = true
			return m.decideCmd(head, models.OutcomeIgnored), true
		}
	case screenRequests:
		switch key {
		case "j", "down":
			m.reqCursor = clamp(m.reqCursor+1, len(m.snap.Inbox))
		case "k", "up":
			m.reqCursor = clamp(m.reqCursor-1, len(m.snap.Inbox))
		case "R":
			m.busy = true
			return m.refreshCmd(), true
		case "a", "r":
			if len(m.snap.Inbox) == 0 {
				return nil, true
			}
			decision := models.StatusAccepted
			if key == "r" {
				decision = models.StatusRejected
			}
			return m.resolveCmd(m.snap.Inbox[m.reqCursor], decision), true
		}
	case screenConnections:
		switch key {
		case "j", "down":
			m.conCursor = clamp(m.conCursor+1, len(m.snap.Connections))
		case "k", "up":
			m.conCursor = clamp(m.conCursor-1, len(m.snap.Connections))
		case "enter":
			if len(m.snap.Connections) == 0 {
				return nil, true
			}
			m.screen = screenChat
			m.busy = true
			m.errText = ""
			m.chatSnap = chat.Snapshot{}
			m.compose.SetValue("")
			m.compose.Focus()
			return m.openChatCmd(m.snap.Connections[m.conCursor]), true
		}
	}
	return nil, true
}

func (m *model) handleChatKey(key string) (tea.Cmd, bool) {
	c := m.app.activeChat()
	switch key {
	case "esc":
		m.screen = screenConnections
		m.compose.Blur()
		m.chatSnap = chat.Snapshot{}
		return m.closeChatCmd(), true
	case "enter":
		body := m.compose.Value()
		if c == nil || strings.TrimSpace(body) == "" {
			return nil, true
		}
		m.compose.SetValue("")
		return m.sendCmd(c, body), true
	case "ctrl+r":
		id, ok := lastFailed(m.chatSnap.Entries)
		if c == nil || !ok {
			return nil, true
		}
		return m.retryCmd(c, id), true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(tea.KeyMsg{Type: keyTypeFor(key)})
		return cmd, true
	}
	return nil, false
}

func keyTypeFor(key string) tea.KeyType {
	if key == "pgup" {
		return tea.KeyPgUp
	}
	return tea.KeyPgDown
}

func (m *model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		var c1, c2 tea.Cmd
		m.email, c1 = m.email.Update(msg)
		m.password, c2 = m.password.Update(msg)
		cmd = tea.Batch(c1, c2)
	case screenChat:
		m.compose, cmd = m.compose.Update(msg)
	}
	return cmd
}

func (m *model) toggleLoginFocus() {
	if m.email.Focused() {
		m.email.Blur()
		m.password.Focus()
		return
	}
	m.password.Blur()
	m.email.Focus()
}

// refresh pulls the latest snapshots and follows the login boundary.
func (m *model) refresh() {
	m.snap = m.app.store.Snapshot()
	m.reqCursor = clamp(m.reqCursor, len(m.snap.Inbox))
	m.conCursor = clamp(m.conCursor, len(m.snap.Connections))
	if c := m.app.activeChat(); c != nil && m.screen == screenChat {
		m.chatSnap = c.Snapshot()
		m.renderHistory()
	}
	if m.screen != screenLogin && m.app.nav.LoginRequired() {
		m.toLogin("session expired, log in again")
	}
}

func (m *model) toLogin(status string) {
	m.screen = screenLogin
	m.status = status
	m.busy = false
	m.compose.Blur()
	m.chatSnap = chat.Snapshot{}
	m.password.SetValue("")
	m.password.Blur()
	m.email.Focus()
}

func (m *model) setErr(err error) {
	if err == nil {
		m.errText = ""
		return
	}
	m.errText = errorText(err)
}

func (m *model) resize() {
	m.history.Width = maxInt(20, m.width-6)
	m.history.Height = maxInt(3, m.height-10)
	m.compose.Width = maxInt(10, m.width-10)
}

func (m *model) renderHistory() {
	atBottom := m.history.AtBottom()
	m.history.SetContent(m.renderEntries())
	if atBottom {
		m.history.GotoBottom()
	}
}

func errorText(err error) string {
	switch {
	case apperrors.IsUnauthorized(err):
		return "not authorised: " + err.Error()
	case apperrors.IsTransportFailure(err):
		return "network: " + err.Error()
	default:
		return err.Error()
	}
}

// lastFailed returns the id of the newest entry whose delivery failed.
func lastFailed(entries []chat.Entry) (string, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Delivery == chat.DeliveryFailed {
			return entries[i].ID, true
		}
	}
	return "", false
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func displayName(id models.Identity) string {
	name := strings.TrimSpace(id.FirstName + " " + id.LastName)
	if name == "" {
		return id.ID
	}
	return name
}
