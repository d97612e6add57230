package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Prompt   lipgloss.Style
	Rule     lipgloss.Style
	FollowUp lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t rulecraft.Theme) Styles {
	return Styles{
		Prompt:   lipgloss.NewStyle().Bold(true),
		Rule:     lipgloss.NewStyle().Foreground(ansiColor(t.Rule)),
		FollowUp: lipgloss.NewStyle().Foreground(ansiColor(t.FollowUp)),
		Error:    lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:  lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:    lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
