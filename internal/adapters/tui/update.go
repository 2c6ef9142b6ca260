package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikey/email-classifier/internal/core"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		return m, nil
	case ClassifiedMsg:
		return m.handleClassified(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab:
		next := core.ModeFile
		if m.State.Mode == core.ModeFile {
			next = core.ModeText
		}
		m.State = m.State.SwitchMode(next)
		return m, nil
	case tea.KeyCtrlS:
		return m.submit()
	case tea.KeyCtrlU:
		return m.setBuffer(nil), nil
	case tea.KeyBackspace:
		if b := m.buffer(); len(b) > 0 {
			m = m.setBuffer(b[:len(b)-1])
		}
		return m, nil
	case tea.KeyEnter:
		if m.State.Mode == core.ModeText {
			m.Text = append(m.Text, '\n')
		}
		return m, nil
	case tea.KeySpace:
		return m.setBuffer(append(m.buffer(), ' ')), nil
	case tea.KeyRunes:
		return m.setBuffer(append(m.buffer(), msg.Runes...)), nil
	}
	return m, nil
}

// submit starts a classification unless one is already loading
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.State.Loading {
		return m, nil
	}

	if m.State.Mode == core.ModeFile {
		var seq uint64
		m.State, seq = m.State.Begin()
		return m, classifyFile(m.ctx, m.service, seq, string(m.Path))
	}

	text := string(m.Text)
	if err := core.ValidateText(text); err != nil {
		m.State = m.State.Reject(core.FailureFromError(err))
		return m, nil
	}

	var seq uint64
	m.State, seq = m.State.Begin()
	return m, classifyText(m.ctx, m.service, seq, text)
}

// handleClassified applies a classification outcome; superseded ones are dropped
func (m Model) handleClassified(msg ClassifiedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State, _ = m.State.Fail(msg.Seq, core.FailureFromError(msg.Err))
		return m, nil
	}
	m.State, _ = m.State.Resolve(msg.Seq, msg.Result)
	return m, nil
}
