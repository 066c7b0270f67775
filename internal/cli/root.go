package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pulse-chat/pulse/internal/cli/ask"
	"github.com/pulse-chat/pulse/internal/cli/chat"
	"github.com/pulse-chat/pulse/internal/cli/config"
	"github.com/pulse-chat/pulse/internal/cli/helpers"
	"github.com/pulse-chat/pulse/internal/cli/serve"
	"github.com/pulse-chat/pulse/pkg/version"
)

// NewRootCmd builds the pulse command tree.
func NewRootCmd() *cobra.Command {
	g := &helpers.Globals{}

	root := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - a chat widget for a webhook-backed health assistant",
		Long: `Talk to a hypertension health assistant served by a chat webhook.

The assistant itself lives behind a webhook (for example an n8n chat
trigger). Pulse is the widget around it:
- chat:  full-screen terminal widget, or line mode with --plain
- ask:   one question, one answer, for scripts
- serve: the same widget in the browser

Configure the webhook once with 'pulse config init --webhook URL', or
set PULSE_WEBHOOK_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	helpers.AddGlobalFlags(root, g)

	root.AddCommand(chat.NewChatCmd(g))
	root.AddCommand(ask.NewAskCmd(g))
	root.AddCommand(serve.NewServeCmd(g))
	root.AddCommand(config.NewConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("Pulse version %s\nGit commit: %s\nBuild date: %s\nGo version: %s",
		v.Version, v.GitCommit, v.BuildDate, v.GoVersion)
}

func newVersionCmd() *cobra.Command {
	var format string
	supported := []helpers.OutputFormat{helpers.FormatText, helpers.FormatJSON, helpers.FormatYAML}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, supported); err != nil {
				return err
			}
			f, err := helpers.NewFormatter(helpers.OutputFormat(format))
			if err != nil {
				return err
			}
			return f.Format(versionInfo{
				Version:   version.Version,
				GitCommit: version.GitCommit,
				BuildDate: version.BuildDate,
				GoVersion: version.GoVersion,
			}, cmd.OutOrStdout())
		},
	}
	helpers.AddFormatFlag(cmd, &format, helpers.FormatText, supported)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
