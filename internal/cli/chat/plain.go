package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/chzyer/readline"

	"github.com/pulse-chat/pulse/internal/cli/chat/ui"
	"github.com/pulse-chat/pulse/internal/constants"
	"github.com/pulse-chat/pulse/internal/conversation"
)

const (
	plainPrompt        = "you> "
	continuationPrompt = "...> "
)

// lineReader is the part of *readline.Instance the plain REPL uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// plainChat is the line-mode widget for dumb terminals and pipes.
type plainChat struct {
	ctrl     ui.Controller
	in       lineReader
	out      io.Writer
	opts     ui.Options
	renderer *glamour.TermRenderer

	// printed counts transcript entries already written to out.
	printed int
}

func newPlainChat(ctrl ui.Controller, in lineReader, out io.Writer, opts ui.Options) (*plainChat, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("notty"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &plainChat{ctrl: ctrl, in: in, out: out, opts: opts, renderer: renderer}, nil
}

// run reads lines until /exit or EOF. A line ending in a backslash
// continues on the next line.
func (p *plainChat) run(ctx context.Context) error {
	p.printHeader()
	p.printNew()

	var buf strings.Builder
	for {
		line, err := p.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C: drop the partial message.
			buf.Reset()
			p.ctrl.UpdatePendingInput("")
			p.in.SetPrompt(plainPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		if strings.HasSuffix(line, `\`) {
			buf.WriteString(strings.TrimSuffix(line, `\`))
			buf.WriteString("\n")
			p.ctrl.UpdatePendingInput(buf.String())
			p.in.SetPrompt(continuationPrompt)
			continue
		}
		buf.WriteString(line)
		text := buf.String()
		buf.Reset()
		p.in.SetPrompt(plainPrompt)

		command, text := ui.ParseInput(text)
		if command != "" {
			if quit := p.command(command); quit {
				return nil
			}
			continue
		}

		p.ctrl.UpdatePendingInput(text)
		p.submit(ctx, text)
	}
}

// submit runs one turn, echoing the user message before the reply arrives.
func (p *plainChat) submit(ctx context.Context, text string) {
	turn, ok := p.ctrl.Begin(text)
	if !ok {
		return
	}
	p.printNew()
	fmt.Fprintln(p.out, "Assistant is typing...")

	p.ctrl.Resolve(ctx, turn)
	p.printNew()

	if banner := p.ctrl.State().LastError; banner != "" {
		fmt.Fprintf(p.out, "! %s (type /dismiss to hide)\n", banner)
	}
}

// command handles an inline command and reports whether to quit.
func (p *plainChat) command(cmd string) bool {
	p.ctrl.UpdatePendingInput("")

	switch cmd {
	case ui.CommandExit, ui.CommandQuit:
		return true
	case ui.CommandDismiss:
		p.ctrl.DismissError()
		fmt.Fprintln(p.out, "Error dismissed.")
	case ui.CommandHelp:
		fmt.Fprint(p.out, plainHelp)
	}
	return false
}

const plainHelp = `Commands:
  /help      Show this help message
  /dismiss   Dismiss the error banner
  /exit      Exit the chat
Start a message with // to send a leading / literally.
End a line with \ to continue the message on the next line.
Ctrl+C discards the current message, Ctrl+D exits.
`

func (p *plainChat) printHeader() {
	fmt.Fprintln(p.out, p.opts.Title)
	if p.opts.Subtitle != "" {
		fmt.Fprintln(p.out, p.opts.Subtitle)
	}
	if p.opts.Disclaimer != "" {
		fmt.Fprintln(p.out, p.opts.Disclaimer)
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 40))
}

// printNew writes transcript entries that have not been printed yet.
func (p *plainChat) printNew() {
	transcript := p.ctrl.State().Transcript
	for _, msg := range transcript[p.printed:] {
		stamp := msg.CreatedAt.Local().Format(constants.TimeFormat)
		switch msg.Author {
		case conversation.AuthorUser:
			fmt.Fprintf(p.out, "[%s] You: %s\n", stamp, msg.Content)
		case conversation.AuthorAssistant:
			fmt.Fprintf(p.out, "[%s] Assistant:\n%s\n", stamp, p.render(msg.Content))
		}
	}
	p.printed = len(transcript)
}

func (p *plainChat) render(content string) string {
	rendered, err := p.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
