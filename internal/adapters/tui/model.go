package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikey/email-classifier/internal/core"
)

// Model is the terminal UI state. The submission slot follows the same
// sequence rules as the web sessions.
type Model struct {
	ctx     context.Context
	service Service

	State core.SubmissionState
	Text  []rune
	Path  []rune
	Width int
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, service Service) Model {
	return Model{
		ctx:     ctx,
		service: service,
		State:   core.NewSubmissionState(),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// buffer returns the input of the active tab
func (m Model) buffer() []rune {
	if m.State.Mode == core.ModeFile {
		return m.Path
	}
	return m.Text
}

func (m Model) setBuffer(b []rune) Model {
	if m.State.Mode == core.ModeFile {
		m.Path = b
	} else {
		m.Text = b
	}
	return m
}
