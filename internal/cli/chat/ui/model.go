// Package ui implements the terminal chat widget on top of a conversation
// controller.
package ui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pulse-chat/pulse/internal/conversation"
)

// Controller is the part of *conversation.Controller the widget drives.
type Controller interface {
	State() conversation.State
	Begin(text string) (conversation.Turn, bool)
	Resolve(ctx context.Context, turn conversation.Turn) bool
	DismissError()
	UpdatePendingInput(text string)
}

// Options holds the static texts shown around the transcript.
type Options struct {
	Title       string
	Subtitle    string
	Placeholder string
	Disclaimer  string
	// NoColor forces the plain markdown style. NO_COLOR in the environment
	// has the same effect.
	NoColor bool
}

const (
	defaultWidth  = 80
	defaultHeight = 24
	inputHeight   = 3
)

// Model is the Bubbletea model for the chat widget.
type Model struct {
	ctrl Controller
	opts Options

	// Last snapshot read from the controller.
	state conversation.State

	input    textarea.Model
	spinner  spinner.Model
	viewport viewport.Model

	renderer *glamour.TermRenderer
	width    int
	height   int

	showHelp bool
	quitting bool
}

// NewModel creates the widget for ctrl.
func NewModel(ctrl Controller, opts Options) (Model, error) {
	if os.Getenv("NO_COLOR") != "" {
		opts.NoColor = true
	}

	ta := textarea.New()
	ta.Placeholder = opts.Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	// Enter submits; newlines need alt+enter or ctrl+j.
	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "insert newline"),
	)
	ta.SetHeight(inputHeight)
	ta.Focus()

	s := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctrl:     ctrl,
		opts:     opts,
		state:    ctrl.State(),
		input:    ta,
		spinner:  s,
		viewport: viewport.New(defaultWidth, defaultHeight),
	}
	if err := m.resize(defaultWidth, defaultHeight); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init initializes the model (Bubbletea interface).
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// newRenderer creates a markdown renderer wrapped at width.
func newRenderer(width int, noColor bool) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if noColor {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// resize lays the widget out for a width x height terminal.
func (m *Model) resize(width, height int) error {
	if width != m.width || m.renderer == nil {
		renderer, err := newRenderer(max(width-4, 20), m.opts.NoColor)
		if err != nil {
			return err
		}
		m.renderer = renderer
	}
	m.width = width
	m.height = height

	m.input.SetWidth(width)
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 3)
	m.refresh()
	return nil
}

// refresh re-reads the controller and re-renders the transcript, keeping the
// newest message in view.
func (m *Model) refresh() {
	m.state = m.ctrl.State()
	if m.showHelp {
		m.viewport.SetContent(m.renderHelp())
		m.viewport.GotoTop()
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
