package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-chat/pulse/internal/conversation"
	"github.com/pulse-chat/pulse/internal/testutil"
)

func testOptions() Options {
	return Options{
		Title:       "Hypertension Health Assistant",
		Subtitle:    "AI-powered blood pressure management support",
		Placeholder: "Ask about blood pressure...",
		Disclaimer:  "For educational purposes only",
		NoColor:     true,
	}
}

func newTestModel(t *testing.T, sender conversation.Sender) (Model, *conversation.Controller) {
	t.Helper()
	ctrl := conversation.New(sender, conversation.WithTexts(conversation.Texts{Greeting: "Hello! How can I help?"}))
	m, err := NewModel(ctrl, testOptions())
	require.NoError(t, err)
	return m, ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func pressKey(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: key})
}

// collect runs cmd, expanding batches, and returns the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func settledMsg(t *testing.T, msgs []tea.Msg) turnSettledMsg {
	t.Helper()
	for _, msg := range msgs {
		if settled, ok := msg.(turnSettledMsg); ok {
			return settled
		}
	}
	t.Fatalf("no turnSettledMsg in %v", msgs)
	return turnSettledMsg{}
}

func TestModel_InitialView(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("unused"))

	view := m.View()
	assert.Contains(t, view, "Hypertension Health Assistant")
	assert.Contains(t, view, "AI-powered blood pressure management support")
	assert.Contains(t, view, "Hello! How can I help?")
	assert.Contains(t, view, "For educational purposes only")

	greeting := ctrl.State().Transcript[0]
	assert.Contains(t, view, greeting.CreatedAt.Local().Format("15:04"))
	assert.NotContains(t, view, "enter send", "send is not offered for blank input")
}

func TestModel_TypingUpdatesPendingInput(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("unused"))

	m = typeText(t, m, "What is")
	assert.Equal(t, "What is", ctrl.State().PendingInput)
	assert.Contains(t, m.View(), "enter send")
}

func TestModel_EnterSubmitsAndShowsReply(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("A normal reading is **120/80 mmHg**."))

	m = typeText(t, m, "What is a normal blood pressure?")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)

	state := ctrl.State()
	require.Len(t, state.Transcript, 2)
	assert.Equal(t, "What is a normal blood pressure?", state.Last().Content)
	assert.True(t, state.AwaitingReply)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Assistant is typing...")

	settled := settledMsg(t, collect(cmd))
	assert.Empty(t, ctrl.State().LastError)

	m, _ = update(t, m, settled)
	view := m.View()
	assert.Contains(t, view, "120/80 mmHg")
	assert.NotContains(t, view, "Assistant is typing...")
	assert.True(t, m.input.Focused())
	assert.Len(t, ctrl.State().Transcript, 3)
}

func TestModel_BlankEnterIsNoop(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("unused"))
	before := ctrl.State()

	m = typeText(t, m, "   ")
	_, cmd := pressKey(t, m, tea.KeyEnter)

	assert.Nil(t, cmd)
	after := ctrl.State()
	assert.Equal(t, before.Transcript, after.Transcript)
	assert.False(t, after.AwaitingReply)
}

func TestModel_InputDisabledWhileAwaiting(t *testing.T) {
	sender := testutil.NewStubSender()
	m, ctrl := newTestModel(t, sender)

	m = typeText(t, m, "first")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m = typeText(t, m, "second")
	assert.Empty(t, m.input.Value())
	assert.Empty(t, ctrl.State().PendingInput)

	_, cmd = pressKey(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Len(t, ctrl.State().Transcript, 2)

	sender.Reply("done")
}

func TestModel_NewlineKeysDoNotSubmit(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("unused"))

	m = typeText(t, m, "line one")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	m, _ = pressKey(t, m, tea.KeyCtrlJ)
	m = typeText(t, m, "line two")

	assert.Len(t, ctrl.State().Transcript, 1)
	assert.Equal(t, "line one\n\nline two", m.input.Value())
	assert.Equal(t, "line one\n\nline two", ctrl.State().PendingInput)
}

func TestModel_PasteDoesNotSubmit(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("unused"))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("140/90\n135/85"), Paste: true})

	assert.Len(t, ctrl.State().Transcript, 1)
	assert.False(t, ctrl.State().AwaitingReply)
	assert.Equal(t, "140/90\n135/85", m.input.Value())
}

func TestModel_FailureShowsBannerAndEscDismisses(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewFailingSender(errors.New("connection refused")))

	m = typeText(t, m, "hello")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	settled := settledMsg(t, collect(cmd))
	assert.Equal(t, conversation.DefaultTexts().ErrorBanner, ctrl.State().LastError)

	m, _ = update(t, m, settled)
	banner := conversation.DefaultTexts().ErrorBanner
	assert.Contains(t, m.View(), banner)
	assert.Contains(t, m.View(), "esc to dismiss")

	m, _ = pressKey(t, m, tea.KeyEsc)
	assert.Empty(t, ctrl.State().LastError)
	assert.NotContains(t, m.View(), banner)
	assert.Len(t, ctrl.State().Transcript, 3)
}

func TestModel_HelpOverlay(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewReplyingSender("unused"))

	m = typeText(t, m, "/help")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)

	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Chat commands")
	assert.Len(t, ctrl.State().Transcript, 1, "help is never part of the transcript")
	assert.Empty(t, m.input.Value())

	m, _ = pressKey(t, m, tea.KeyEsc)
	assert.False(t, m.showHelp)
	assert.NotContains(t, m.View(), "Chat commands")
}

func TestModel_SlashQuestionIsSent(t *testing.T) {
	for _, tc := range []struct{ typed, sent string }{
		{"/mmHg vs kPa?", "/mmHg vs kPa?"},
		{"/systolic", "/systolic"},
		{"//help", "/help"},
	} {
		sender := testutil.NewReplyingSender("answer")
		m, ctrl := newTestModel(t, sender)

		m = typeText(t, m, tc.typed)
		m, cmd := pressKey(t, m, tea.KeyEnter)
		require.NotNil(t, cmd, tc.typed)
		assert.False(t, m.showHelp)

		_, _ = update(t, m, settledMsg(t, collect(cmd)))
		assert.Equal(t, []string{tc.sent}, sender.Received())
		assert.Len(t, ctrl.State().Transcript, 3)
	}
}

func TestModel_DismissCommand(t *testing.T) {
	m, ctrl := newTestModel(t, testutil.NewFailingSender(errors.New("boom")))

	m = typeText(t, m, "hello")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	m, _ = update(t, m, settledMsg(t, collect(cmd)))
	require.NotEmpty(t, ctrl.State().LastError)

	m = typeText(t, m, "/dismiss")
	_, _ = pressKey(t, m, tea.KeyEnter)
	assert.Empty(t, ctrl.State().LastError)
}

func TestModel_Quit(t *testing.T) {
	for _, keys := range []string{"/exit", "/quit"} {
		m, _ := newTestModel(t, testutil.NewReplyingSender("unused"))
		m = typeText(t, m, keys)
		m, cmd := pressKey(t, m, tea.KeyEnter)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, "Goodbye!\n", m.View())
	}

	m, _ := newTestModel(t, testutil.NewReplyingSender("unused"))
	_, cmd := pressKey(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowResize(t *testing.T) {
	m, _ := newTestModel(t, testutil.NewReplyingSender("unused"))

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40-chromeHeight, m.viewport.Height)
	assert.Contains(t, m.View(), strings.Repeat("─", 120))
}
