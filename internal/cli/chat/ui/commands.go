package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulse-chat/pulse/internal/conversation"
)

// resolveTurnCmd waits for the webhook on a bubbletea goroutine.
func resolveTurnCmd(ctrl Controller, turn conversation.Turn) tea.Cmd {
	return func() tea.Msg {
		ctrl.Resolve(context.Background(), turn)
		return turnSettledMsg{}
	}
}
