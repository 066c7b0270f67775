// Package serve provides the browser widget server command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pulse-chat/pulse/internal/cli/helpers"
	"github.com/pulse-chat/pulse/internal/config"
	"github.com/pulse-chat/pulse/internal/constants"
	"github.com/pulse-chat/pulse/internal/conversation"
	"github.com/pulse-chat/pulse/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd(g *helpers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat widget to browsers",
		Long: `Serve the chat widget as a web page. Each browser tab mounts its
own conversation; conversations are kept in memory and unmounted after
server.idle_timeout without a connected tab.

Examples:
  pulse serve
  pulse serve --port 8080 --webhook https://n8n.example.com/webhook/abc/chat
  pulse serve --host 0.0.0.0`,
		Args: cobra.NoArgs,
	}
	overrides := config.BindServerFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := helpers.Bootstrap(g, overrides, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		client, err := env.NewClient()
		if err != nil {
			return err
		}

		srv, err := server.New(server.Options{
			Addr: env.Config.Server.Addr(),
			Controllers: func() *conversation.Controller {
				return env.NewController(client)
			},
			Page: server.Page{
				Title:       env.Config.Assistant.Title,
				Subtitle:    env.Config.Assistant.Subtitle,
				Placeholder: env.Config.Assistant.Placeholder,
				Disclaimer:  env.Config.Assistant.Disclaimer,
			},
			IdleTimeout: env.Config.Server.IdleTimeout,
			Logger:      env.Logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create widget server: %w", err)
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Chat widget at http://%s (Ctrl+C to stop)\n", srv.Addr())
		env.Logger.Info().
			Str("webhook", client.Endpoint()).
			Dur("idle_timeout", env.Config.Server.IdleTimeout).
			Msg("Widget server configured")

		return srv.Run(ctx, constants.DefaultShutdownTimeout)
	}

	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
