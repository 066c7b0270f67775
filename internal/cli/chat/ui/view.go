package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulse-chat/pulse/internal/constants"
	"github.com/pulse-chat/pulse/internal/conversation"
)

var (
	// Styles.
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	typingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// chromeHeight is the number of lines View draws around the viewport:
// title, subtitle, rule, status, input, hint and disclaimer.
const chromeHeight = 6 + inputHeight

// View renders the UI (Bubbletea interface).
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.opts.Subtitle))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")

	b.WriteString(m.renderHint())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.opts.Disclaimer))

	return b.String()
}

// renderStatus renders the typing indicator or the error banner.
func (m Model) renderStatus() string {
	switch {
	case m.state.AwaitingReply:
		return fmt.Sprintf("%s %s", m.spinner.View(), typingStyle.Render("Assistant is typing..."))
	case m.state.LastError != "":
		return errorStyle.Render("✗ "+m.state.LastError) + hintStyle.Render("  [esc to dismiss]")
	}
	return ""
}

// renderHint renders the key help, with send only offered when it would
// do something.
func (m Model) renderHint() string {
	var hints []string
	if !m.state.AwaitingReply && strings.TrimSpace(m.input.Value()) != "" {
		hints = append(hints, "enter send")
	}
	hints = append(hints, "alt+enter newline", "/help", "ctrl+c quit")
	return hintStyle.Render("[" + strings.Join(hints, " · ") + "]")
}

// renderTranscript renders every message, oldest first.
func (m Model) renderTranscript() string {
	var b strings.Builder

	for _, msg := range m.state.Transcript {
		stamp := hintStyle.Render(msg.CreatedAt.Local().Format(constants.TimeFormat))

		switch msg.Author {
		case conversation.AuthorUser:
			b.WriteString(promptStyle.Render("You") + " " + stamp + "\n")
			b.WriteString(lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(msg.Content))
			b.WriteString("\n\n")

		case conversation.AuthorAssistant:
			b.WriteString(assistantStyle.Render("Assistant") + " " + stamp + "\n")
			rendered, err := m.renderer.Render(msg.Content)
			if err != nil {
				b.WriteString(msg.Content) // Fallback to plain text
				b.WriteString("\n")
			} else {
				b.WriteString(strings.Trim(rendered, "\n"))
				b.WriteString("\n\n")
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderHelp renders the help overlay. It is never part of the transcript.
func (m Model) renderHelp() string {
	helpText := `## Chat commands

- /help      - Show this help message
- /dismiss   - Dismiss the error banner
- /exit      - Exit the chat

Any other text is sent as a message; start with // to send a literal /help.

**Keyboard shortcuts:**
- Enter              - Send message
- Alt+Enter, Ctrl+J  - Insert a newline
- Esc                - Close help or dismiss the error banner
- PgUp/PgDown        - Scroll the conversation
- Ctrl+C, Ctrl+D     - Exit`

	rendered, err := m.renderer.Render(helpText)
	if err != nil {
		return helpText
	}
	return rendered
}
