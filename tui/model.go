package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/markdown"
)

var _ tea.Model = Model{}

// turn is one settled prompt/response exchange kept for display.
type turn struct {
	prompt  string
	state   rulecraft.SessionState
	clarify string
}

// Model is the Bubble Tea model for the rulecraft TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	generate GenerateFunc
	theme    rulecraft.Theme
	styles   Styles

	history []rulecraft.ChatMessage
	turns   []turn

	// Current turn, rebuilt event by event through the reducer.
	prompt  string
	state   rulecraft.SessionState
	clarify string

	running bool
	cancel  context.CancelFunc
	eventCh chan rulecraft.Event
	doneCh  chan error
	err     error
	ready   bool
}

// New creates a new TUI Model with the given generate function and theme.
func New(generate GenerateFunc, theme rulecraft.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe the rule you want..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:    ti,
		generate: generate,
		theme:    theme,
		styles:   NewStyles(theme),
		state:    rulecraft.NewSessionState(),
	}
}

// Running returns whether a generation turn is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// State returns the current turn's reduced session state.
func (m Model) State() rulecraft.SessionState { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case GenerateDoneMsg:
		m = m.settleTurn(msg.Err)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Pass remaining messages to sub-components. The viewport always
	// receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusH := 1
	gapH := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusH - gapH
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	// When idle, pass keys to both input (for typing) and viewport (for
	// scrolling). Only non-character keys go to the viewport to avoid
	// conflicts with typing.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.prompt = text
	m.state = rulecraft.NewSessionState()
	m.clarify = ""
	m.history = append(m.history, rulecraft.ChatMessage{Role: rulecraft.RoleUser, Content: text})

	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan rulecraft.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	req := rulecraft.GenerateRequest{Messages: m.history}
	return m, tea.Batch(
		startGenerate(m.generate, ctx, req, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

// processEvent folds a streaming event into the current turn's state.
func (m Model) processEvent(evt rulecraft.Event) Model {
	if c, ok := evt.(rulecraft.EventClarify); ok {
		m.clarify = c.Message
	}
	m.state = rulecraft.Reduce(m.state, evt)
	return m
}

// settleTurn finishes the in-flight turn and archives it for display.
func (m Model) settleTurn(err error) Model {
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	if err != nil && !errors.Is(err, context.Canceled) {
		m.err = err
	}

	if m.prompt == "" {
		return m
	}

	// Keep the conversation going: the generated content is the
	// assistant's reply for the next request.
	if reply := assistantReply(m.state, m.clarify); reply != "" {
		m.history = append(m.history, rulecraft.ChatMessage{Role: rulecraft.RoleAssistant, Content: reply})
	}

	m.turns = append(m.turns, turn{prompt: m.prompt, state: m.state, clarify: m.clarify})
	m.prompt = ""
	m.state = rulecraft.NewSessionState()
	m.clarify = ""
	return m
}

func assistantReply(s rulecraft.SessionState, clarify string) string {
	if clarify != "" {
		return clarify
	}
	var parts []string
	if s.RuleContent != "" {
		parts = append(parts, s.RuleContent)
	}
	if s.FollowUpContent != "" {
		parts = append(parts, s.FollowUpContent)
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderContent() string {
	var b strings.Builder
	for _, t := range m.turns {
		m.renderTurn(&b, t)
	}
	if m.prompt != "" {
		m.renderTurn(&b, turn{prompt: m.prompt, state: m.state, clarify: m.clarify})
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTurn(b *strings.Builder, t turn) {
	width := m.Viewport.Width
	if width <= 0 {
		width = 80
	}

	b.WriteString(m.styles.Prompt.Render("> " + t.prompt))
	b.WriteString("\n\n")

	if t.clarify != "" {
		b.WriteString(m.styles.Accent.Render(t.clarify))
		b.WriteString("\n\n")
		return
	}
	if t.state.RuleContent != "" {
		b.WriteString(markdown.Render(t.state.RuleContent, width, m.theme))
		b.WriteString("\n\n")
	}
	if t.state.FollowUpContent != "" {
		b.WriteString(m.styles.FollowUp.Render(t.state.FollowUpContent))
		b.WriteString("\n\n")
	}
	if t.state.Phase == rulecraft.SessionCompleted && t.state.Metadata != nil && t.state.Metadata.FileName != "" {
		b.WriteString(m.styles.Success.Render("Save as: " + t.state.Metadata.FileName))
		b.WriteString("\n\n")
	}
	if t.state.Err != "" {
		b.WriteString(m.styles.Error.Render("Error: " + t.state.Err))
		b.WriteString("\n\n")
	}
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		if m.state.IsStreamingFollowUp {
			return m.styles.Muted.Render("Writing follow-up...")
		}
		return m.styles.Muted.Render("Generating rule...")
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}

// startGenerate runs the generation turn in a goroutine and signals
// completion.
func startGenerate(generate GenerateFunc, ctx context.Context, req rulecraft.GenerateRequest, eventCh chan<- rulecraft.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := generate(ctx, req, func(e rulecraft.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the
// channel closes it reads the error from doneCh and returns
// GenerateDoneMsg.
func listenForEvent(ch <-chan rulecraft.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return GenerateDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
