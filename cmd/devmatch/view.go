package main

import (
	"fmt"
	"strings"

	"devmatch/client/chat"

	"github.com/charmbracelet/lipgloss"
)

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	helpText    lipgloss.Style
	selected    lipgloss.Style
	self        lipgloss.Style
	other       lipgloss.Style
	pending     lipgloss.Style
	failed      lipgloss.Style
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		root: lipgloss.NewStyle().Foreground(text).Padding(0, 1),
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#120924")).
			Background(mint).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		panelTitle:  lipgloss.NewStyle().Foreground(pink).Bold(true),
		footer:      lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		selected:    lipgloss.NewStyle().Foreground(mint).Bold(true),
		self:        lipgloss.NewStyle().Foreground(mint).Bold(true),
		other:       lipgloss.NewStyle().Foreground(blue).Bold(true),
		pending:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		failed:      lipgloss.NewStyle().Foreground(pink),
	}
}

func (m model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.renderLogin()
	case screenFeed:
		body = m.renderFeed()
	case screenRequests:
		body = m.renderRequests()
	case screenConnections:
		body = m.renderConnections()
	case screenChat:
		body = m.renderChat()
	}
	out := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatus(), m.renderFooter())
	return m.theme.root.Render(out)
}

func (m model) renderHeader() string {
	if m.screen == screenLogin {
		return m.theme.header.Render(m.theme.panelTitle.Render("devmatch"))
	}
	tabs := []struct {
		id    screen
		label string
	}{
		{screenFeed, "1 Feed"},
		{screenRequests, fmt.Sprintf("2 Requests (%d)", len(m.snap.Inbox))},
		{screenConnections, fmt.Sprintf("3 Connections (%d)", len(m.snap.Connections))},
	}
	segments := make([]string, 0, len(tabs)+1)
	for _, tab := range tabs {
		style := m.theme.tabInactive
		if tab.id == m.screen || (tab.id == screenConnections && m.screen == screenChat) {
			style = m.theme.tabActive
		}
		segments = append(segments, style.Render(tab.label))
	}
	if m.snap.Self != nil {
		segments = append(segments, m.theme.helpText.Render("  "+displayName(*m.snap.Self)))
	}
	return m.theme.header.Render(lipgloss.JoinHorizontal(lipgloss.Left, segments...))
}

func (m model) renderLogin() string {
	return m.panel("Log in", m.email.View()+"\n"+m.password.View())
}

func (m model) renderFeed() string {
	if !m.snap.QueueLoaded {
		return m.panel("Feed", m.spinner.View()+" loading candidates")
	}
	head, ok := m.snap.Head()
	if !ok {
		return m.panel("Feed", m.theme.helpText.Render("No new candidates right now."))
	}
	var b strings.Builder
	b.WriteString(m.theme.selected.Render(displayName(head)))
	if head.Age > 0 {
		fmt.Fprintf(&b, ", %d", head.Age)
	}
	if head.Gender != "" {
		b.WriteString(" · " + head.Gender)
	}
	if head.About != "" {
		b.WriteString("\n\n" + head.About)
	}
	if len(head.Skills) > 0 {
		b.WriteString("\n\n" + m.theme.helpText.Render("skills: "+strings.Join(head.Skills, ", ")))
	}
	fmt.Fprintf(&b, "\n\n%s", m.theme.helpText.Render(fmt.Sprintf("%d more in queue", len(m.snap.Queue)-1)))
	return m.panel("Feed", b.String())
}

func (m model) renderRequests() string {
	if !m.snap.InboxLoaded {
		return m.panel("Requests", m.spinner.View()+" loading requests")
	}
	if len(m.snap.Inbox) == 0 {
		return m.panel("Requests", m.theme.helpText.Render("No pending requests."))
	}
	lines := make([]string, 0, len(m.snap.Inbox))
	for i, req := range m.snap.Inbox {
		line := displayName(req.From)
		if req.From.About != "" {
			line += m.theme.helpText.Render("  " + req.From.About)
		}
		lines = append(lines, m.cursorLine(i == m.reqCursor, line))
	}
	return m.panel("Requests", strings.Join(lines, "\n"))
}

func (m model) renderConnections() string {
	if len(m.snap.Connections) == 0 {
		return m.panel("Connections", m.theme.helpText.Render("No connections yet."))
	}
	lines := make([]string, 0, len(m.snap.Connections))
	for i, c := range m.snap.Connections {
		lines = append(lines, m.cursorLine(i == m.conCursor, displayName(c)))
	}
	return m.panel("Connections", strings.Join(lines, "\n"))
}

func (m model) renderChat() string {
	title := "Chat"
	if name := displayName(m.chatSnap.Participants.Target); name != "" {
		title = "Chat with " + name
	}
	switch m.chatSnap.State {
	case chat.StateUninitialized, chat.StateLoadingHistory:
		return m.panel(title, m.spinner.View()+" loading history")
	case chat.StateFailed:
		return m.panel(title, m.theme.errorStatus.Render("could not load this conversation"))
	}
	return m.panel(title, m.history.View()+"\n"+m.compose.View())
}

// renderEntries formats the transcript for the history viewport.
func (m model) renderEntries() string {
	snap := m.chatSnap
	if len(snap.Entries) == 0 {
		return m.theme.helpText.Render("Say hello.")
	}
	target := displayName(snap.Participants.Target)
	if target == "" {
		target = snap.TargetID
	}
	lines := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		who := m.theme.other.Render(target)
		if e.FromUserID != snap.TargetID {
			who = m.theme.self.Render("you")
		}
		line := fmt.Sprintf("%s %s: %s", m.theme.helpText.Render(e.CreatedAt.Local().Format("15:04")), who, e.Body)
		switch e.Delivery {
		case chat.DeliveryPending:
			line += " " + m.theme.pending.Render("(sending)")
		case chat.DeliveryFailed:
			line += " " + m.theme.failed.Render("(failed, ctrl+r to retry)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m model) renderStatus() string {
	var parts []string
	if m.busy {
		parts = append(parts, m.spinner.View())
	}
	if m.status != "" {
		parts = append(parts, m.theme.status.Render(m.status))
	}
	if m.errText != "" {
		parts = append(parts, m.theme.errorStatus.Render(m.errText))
	}
	return strings.Join(parts, " ")
}

func (m model) renderFooter() string {
	var help string
	switch m.screen {
	case screenLogin:
		help = "tab switch field · enter log in · ctrl+c quit"
	case screenFeed:
		help = "i interested · x ignore · 1/2/3 tabs · ctrl+l logout · q quit"
	case screenRequests:
		help = "j/k move · a accept · r reject · R refresh · ctrl+l logout"
	case screenConnections:
		help = "j/k move · enter chat · ctrl+l logout"
	case screenChat:
		help = "enter send · ctrl+r retry failed · pgup/pgdown scroll · esc back"
	}
	return m.theme.footer.Render(help)
}

func (m model) panel(title, body string) string {
	return m.theme.panel.
		Width(maxInt(30, m.width-4)).
		Render(m.theme.panelTitle.Render(title) + "\n\n" + body)
}

func (m model) cursorLine(selected bool, line string) string {
	if selected {
		return m.theme.selected.Render("› ") + line
	}
	return "  " + line
}
