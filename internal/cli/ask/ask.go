// Package ask provides the one-shot ask command.
package ask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pulse-chat/pulse/internal/cli/helpers"
	"github.com/pulse-chat/pulse/internal/config"
	"github.com/pulse-chat/pulse/internal/conversation"
	"github.com/pulse-chat/pulse/internal/safe"
)

// ErrTurnFailed is returned when the webhook could not be reached.
var ErrTurnFailed = errors.New("assistant unavailable")

var supportedFormats = []helpers.OutputFormat{helpers.FormatText, helpers.FormatJSON}

// Result is what `pulse ask -o json` prints.
type Result struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// NewAskCmd creates the ask command.
func NewAskCmd(g *helpers.Globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask the health assistant one question",
		Long: `Send one message to the assistant webhook and print the reply.

The question is read from the arguments, or from stdin when no arguments
are given or the only argument is "-". The command exits non-zero when
the webhook could not be reached.

Examples:
  pulse ask "What is a normal blood pressure?"
  echo "Is 140/90 high?" | pulse ask
  pulse ask -o json "How much salt per day?"`,
	}
	overrides := config.BindWebhookFlags(cmd.Flags())
	helpers.AddFormatFlag(cmd, &format, helpers.FormatText, supportedFormats)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := helpers.ValidateFormat(format, supportedFormats); err != nil {
			return err
		}

		question, err := readQuestion(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		env, err := helpers.Bootstrap(g, overrides, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		client, err := env.NewClient()
		if err != nil {
			return err
		}

		return run(cmd.Context(), env.NewController(client), question, helpers.OutputFormat(format), cmd.OutOrStdout())
	}

	return cmd
}

// readQuestion joins args, or reads stdin when there are none.
func readQuestion(args []string, stdin io.Reader) (string, error) {
	var question string
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", fmt.Errorf("no question given (pass it as arguments or pipe it to stdin)")
		}
		data, err := safe.ReadAll(stdin, safe.DefaultMaxFileSize)
		if err != nil {
			return "", fmt.Errorf("failed to read question from stdin: %w", err)
		}
		question = string(data)
	} else {
		question = strings.Join(args, " ")
	}

	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must not be blank")
	}
	return question, nil
}

// run executes exactly one turn and prints its outcome.
func run(ctx context.Context, ctrl *conversation.Controller, question string, format helpers.OutputFormat, out io.Writer) error {
	turn, ok := ctrl.Begin(question)
	if !ok {
		return fmt.Errorf("question must not be blank")
	}
	replied := ctrl.Resolve(ctx, turn)

	state := ctrl.State()
	result := Result{
		Question: turn.Text,
		Reply:    state.Last().Content,
		OK:       replied,
		Error:    state.LastError,
	}

	if format == helpers.FormatJSON {
		formatter, err := helpers.NewFormatter(format)
		if err != nil {
			return err
		}
		if err := formatter.Format(result, out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, renderReply(result.Reply, out))
	}

	if !replied {
		return fmt.Errorf("%w: %s", ErrTurnFailed, state.LastError)
	}
	return nil
}

// renderReply renders markdown when writing to a terminal.
func renderReply(reply string, out io.Writer) string {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return reply
	}

	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if os.Getenv("NO_COLOR") != "" {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return reply
	}
	rendered, err := renderer.Render(reply)
	if err != nil {
		return reply
	}
	return strings.TrimRight(rendered, "\n")
}
