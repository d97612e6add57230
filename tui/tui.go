// Package tui provides a Bubble Tea chat interface for generating
// cursor rules.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// GenerateFunc runs one generation turn. The onEvent callback is called
// for each streaming event. The function blocks until the turn
// completes or the context is cancelled.
type GenerateFunc func(ctx context.Context, req rulecraft.GenerateRequest, onEvent func(rulecraft.Event)) error

// Run creates and runs the Bubble Tea program. It blocks until the
// program exits. When the context is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a streaming event for delivery to the model.
type StreamEventMsg struct {
	Event rulecraft.Event
}

// GenerateDoneMsg signals that the generation turn has completed.
type GenerateDoneMsg struct {
	Err error
}
