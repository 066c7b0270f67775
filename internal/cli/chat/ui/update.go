package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model (Bubbletea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		// A renderer failure keeps the previous layout.
		_ = m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.state.AwaitingReply {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case turnSettledMsg:
		m.refresh()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		return m.dismiss(), nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		return m.submit()
	}

	// The input is disabled while a reply is outstanding.
	if m.state.AwaitingReply {
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.ctrl.UpdatePendingInput(value)
		m.state = m.ctrl.State()
	}
	return m, cmd
}

// submit starts a turn for the current input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state.AwaitingReply {
		return m, nil
	}

	command, text := ParseInput(m.input.Value())
	if command != "" {
		return m.handleInlineCommand(command)
	}

	turn, ok := m.ctrl.Begin(text)
	if !ok {
		return m, nil
	}

	m.showHelp = false
	m.input.Reset()
	m.input.Blur()
	m.refresh()
	return m, tea.Batch(resolveTurnCmd(m.ctrl, turn), m.spinner.Tick)
}

// dismiss closes the help overlay, or else the error banner.
func (m Model) dismiss() Model {
	if m.showHelp {
		m.showHelp = false
	} else if m.state.LastError != "" {
		m.ctrl.DismissError()
	}
	m.refresh()
	return m
}

// handleInlineCommand runs a command returned by ParseInput.
func (m Model) handleInlineCommand(command string) (tea.Model, tea.Cmd) {
	m.input.Reset()
	m.ctrl.UpdatePendingInput("")

	switch command {
	case CommandHelp:
		m.showHelp = true
		m.refresh()
		return m, nil

	case CommandDismiss:
		m.showHelp = false
		return m.dismiss(), nil

	default:
		m.quitting = true
		return m, tea.Quit
	}
}
