// Package tui implements the interactive chat front end. It consumes only
// the outward surface of the engine and session store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"insight/internal/chat"
	"insight/internal/engine"
	"insight/internal/events"
	"insight/internal/pubsub"
	"insight/internal/session"
)

type turnUpdateMsg struct {
	update engine.Update
	ok     bool
}

type turnStartedMsg struct {
	updates <-chan engine.Update
	cancel  context.CancelFunc
	err     error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	engine   *engine.Engine
	sessions *session.Store

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	transcript  []chat.Message
	provisional string
	busy        bool
	cancel      context.CancelFunc
	updates     <-chan engine.Update
	status      string
	err         error
}

// NewModel creates the chat model bound to the given engine and store.
func NewModel(eng *engine.Engine, sessions *session.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		engine:   eng,
		sessions: sessions,
		input:    ti,
		spin:     sp,
	}
	m.reloadTranscript()
	return m
}

// Run starts the interactive chat program. When a hub is given, its events
// are forwarded into the program so the screen reflects session changes made
// outside the key handlers.
func Run(eng *engine.Engine, sessions *session.Store, hub *pubsub.Hub) error {
	p := tea.NewProgram(NewModel(eng, sessions), tea.WithAltScreen())

	if hub != nil {
		bridge := NewBridge(hub, p)
		bridge.Start(context.Background())
		defer bridge.Stop()
	}

	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport(true)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case "esc":
			if m.busy && m.cancel != nil {
				m.cancel()
				m.status = "cancelled"
			}

		case "enter":
			if !m.busy && strings.TrimSpace(m.input.Value()) != "" {
				text := m.input.Value()
				m.input.Reset()
				return m, tea.Batch(m.startTurn(text), m.spin.Tick)
			}

		case "ctrl+n":
			if !m.busy {
				if _, err := m.sessions.Create(context.Background()); err != nil {
					m.err = err
				} else {
					m.reloadTranscript()
					m.refreshViewport(true)
				}
			}

		case "ctrl+j", "ctrl+k":
			if !m.busy {
				m.cycleSession(msg.String() == "ctrl+j")
			}

		case "ctrl+d":
			if !m.busy {
				if id := m.sessions.ActiveID(); id != "" {
					if err := m.sessions.Delete(context.Background(), id); err != nil {
						m.err = err
					}
					m.reloadTranscript()
					m.refreshViewport(true)
				}
			}
		}

	case turnStartedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, engine.ErrSessionBusy) {
				m.status = "still thinking..."
			} else {
				m.err = msg.err
			}
			return m, nil
		}
		m.busy = true
		m.err = nil
		m.status = ""
		m.provisional = ""
		m.updates = msg.updates
		m.cancel = msg.cancel
		m.reloadTranscript()
		m.refreshViewport(true)
		return m, tea.Batch(m.waitForUpdate(), m.spin.Tick)

	case turnUpdateMsg:
		if !msg.ok {
			// Channel closed: turn ended or was abandoned.
			m.busy = false
			m.cancel = nil
			m.updates = nil
			m.provisional = ""
			m.reloadTranscript()
			m.refreshViewport(true)
			return m, nil
		}
		switch msg.update.Kind {
		case engine.UpdateContent:
			m.provisional = msg.update.Content
		case engine.UpdateCompleted, engine.UpdateFailed:
			m.provisional = ""
			m.transcript = msg.update.Messages
		}
		m.refreshViewport(true)
		return m, m.waitForUpdate()

	case SessionEventMsg:
		// A session changed underneath the screen (commit retitled it,
		// another surface created or deleted one). Re-read the store.
		m.reloadTranscript()
		m.refreshViewport(false)

	case ChatEventMsg:
		switch msg.Event.Payload.Type {
		case events.ChatEventTurnStarted:
			m.status = ""
		case events.ChatEventTurnFailed:
			m.status = msg.Event.Payload.Error
		}

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// startTurn kicks off a turn against the active session.
func (m Model) startTurn(text string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		updates, err := eng.SendTurn(ctx, text)
		if err != nil {
			cancel()
			return turnStartedMsg{err: err}
		}
		return turnStartedMsg{updates: updates, cancel: cancel}
	}
}

// waitForUpdate reads the next engine update.
func (m Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		u, ok := <-updates
		return turnUpdateMsg{update: u, ok: ok}
	}
}

func (m *Model) cycleSession(forward bool) {
	sessions := m.sessions.List()
	if len(sessions) < 2 {
		return
	}
	active := m.sessions.ActiveID()
	idx := 0
	for i, s := range sessions {
		if s.ID == active {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(sessions)
	} else {
		idx = (idx - 1 + len(sessions)) % len(sessions)
	}
	m.sessions.SwitchActive(sessions[idx].ID)
	m.reloadTranscript()
	m.refreshViewport(true)
}

func (m *Model) reloadTranscript() {
	if active := m.sessions.Active(); active != nil {
		m.transcript = active.Messages
	} else {
		m.transcript = nil
	}
}

func (m *Model) layout() {
	chatWidth := m.width - sidebarWidth - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	vpHeight := m.height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = chatWidth - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-2),
	)
	if err == nil {
		m.renderer = renderer
	}
}

func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	var b strings.Builder
	for _, msg := range m.transcript {
		if msg.Role == chat.RoleUser {
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		} else {
			b.WriteString(assistantLabelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		}
		b.WriteString("\n\n")
	}
	if m.provisional != "" {
		b.WriteString(assistantLabelStyle.Render("Assistant"))
		b.WriteString("\n")
		// Rendered plain while streaming; markdown is applied on commit.
		b.WriteString(m.provisional)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	sidebar := m.renderSidebar()
	chatPane := m.renderChatPane()

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chatPane)
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Sessions"))
	b.WriteString("\n")

	active := m.sessions.ActiveID()
	for _, s := range m.sessions.List() {
		title := truncateTitle(s.Title)
		if s.ID == active {
			b.WriteString(activeSessionStyle.Render("> " + title))
		} else {
			b.WriteString(sessionItemStyle.Render("  " + title))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("^N new  ^J/^K switch\n^D delete  esc cancel"))
	return sidebarStyle.Height(m.height - 1).Render(b.String())
}

// truncateTitle fits a session title to the sidebar, cutting on rune
// boundaries so multi-byte titles are never split mid-character.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > sidebarWidth-4 {
		return string(runes[:sidebarWidth-4])
	}
	return title
}

func (m Model) renderChatPane() string {
	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render(m.err.Error())
	case m.busy:
		status = statusStyle.Render(fmt.Sprintf("%s thinking... (esc to cancel)", m.spin.View()))
	case m.status != "":
		status = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		status,
		m.input.View(),
	)
}
