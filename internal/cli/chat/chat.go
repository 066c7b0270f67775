// Package chat provides the interactive chat command.
package chat

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pulse-chat/pulse/internal/cli/chat/ui"
	"github.com/pulse-chat/pulse/internal/cli/helpers"
	"github.com/pulse-chat/pulse/internal/config"
)

// NewChatCmd creates the chat command.
func NewChatCmd(g *helpers.Globals) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the health assistant",
		Long: `Open the chat widget in the terminal. Every session starts a new
conversation with the assistant greeting; nothing is kept after exit.

Enter sends the message, Alt+Enter or Ctrl+J inserts a newline.
Type /help inside the chat for commands.

When stdin or stdout is not a terminal, or with --plain, a line-mode
chat is used instead.

Examples:
  pulse chat
  pulse chat --webhook https://n8n.example.com/webhook/abc/chat
  pulse chat --plain`,
		Args: cobra.NoArgs,
	}
	overrides := config.BindWebhookFlags(cmd.Flags())
	cmd.Flags().BoolVar(&plain, "plain", false, "Use the line-mode chat instead of the full-screen widget")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// The widget owns the terminal, so logs only go to --log-file.
		env, err := helpers.Bootstrap(g, overrides, io.Discard)
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		client, err := env.NewClient()
		if err != nil {
			return err
		}
		ctrl := env.NewController(client)

		opts := ui.Options{
			Title:       env.Config.Assistant.Title,
			Subtitle:    env.Config.Assistant.Subtitle,
			Placeholder: env.Config.Assistant.Placeholder,
			Disclaimer:  env.Config.Assistant.Disclaimer,
		}

		if plain || !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          plainPrompt,
				InterruptPrompt: "^C",
				EOFPrompt:       "/exit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			p, err := newPlainChat(ctrl, rl, cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			return p.run(cmd.Context())
		}

		model, err := ui.NewModel(ctrl, opts)
		if err != nil {
			return fmt.Errorf("failed to create UI model: %w", err)
		}

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("interactive session failed: %w", err)
		}
		return nil
	}

	return cmd
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
