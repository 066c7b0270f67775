package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-chat/pulse/internal/cli/chat/ui"
	"github.com/pulse-chat/pulse/internal/conversation"
	"github.com/pulse-chat/pulse/internal/testutil"
)

// scriptedReader replays lines, then reports EOF.
type scriptedReader struct {
	lines   []any // string or error
	prompts []string
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	next := r.lines[0]
	r.lines = r.lines[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (r *scriptedReader) SetPrompt(prompt string) { r.prompts = append(r.prompts, prompt) }
func (r *scriptedReader) Close() error            { return nil }

func runPlain(t *testing.T, sender conversation.Sender, lines ...any) (string, *conversation.Controller, *scriptedReader) {
	t.Helper()
	ctrl := conversation.New(sender, conversation.WithTexts(conversation.Texts{Greeting: "Hello from the assistant"}))
	reader := &scriptedReader{lines: lines}
	var out bytes.Buffer

	p, err := newPlainChat(ctrl, reader, &out, ui.Options{
		Title:      "Hypertension Health Assistant",
		Disclaimer: "For educational purposes only",
	})
	require.NoError(t, err)
	require.NoError(t, p.run(context.Background()))
	return out.String(), ctrl, reader
}

func TestPlainChat_Turn(t *testing.T) {
	out, ctrl, _ := runPlain(t, testutil.NewReplyingSender("120/80 mmHg"), "What is a normal blood pressure?")

	assert.Contains(t, out, "Hypertension Health Assistant")
	assert.Contains(t, out, "For educational purposes only")
	assert.Contains(t, out, "Hello from the assistant")
	assert.Contains(t, out, "You: What is a normal blood pressure?")
	assert.Contains(t, out, "Assistant is typing...")
	assert.Contains(t, out, "120/80 mmHg")

	assert.Less(t, strings.Index(out, "You: What is"), strings.Index(out, "120/80 mmHg"))
	assert.Len(t, ctrl.State().Transcript, 3)
}

func TestPlainChat_BlankLinesIgnored(t *testing.T) {
	sender := testutil.NewReplyingSender("unused")
	_, ctrl, _ := runPlain(t, sender, "", "   ")

	assert.Len(t, ctrl.State().Transcript, 1)
	assert.Empty(t, sender.Received())
}

func TestPlainChat_FailureAndDismiss(t *testing.T) {
	out, ctrl, _ := runPlain(t, testutil.NewFailingSender(errors.New("refused")), "hello", "/dismiss")

	texts := conversation.DefaultTexts()
	assert.Contains(t, out, texts.ErrorBanner)
	assert.Contains(t, out, "type /dismiss to hide")
	assert.Contains(t, out, "Error dismissed.")
	assert.Empty(t, ctrl.State().LastError)
	assert.Equal(t, texts.Apology, ctrl.State().Last().Content)
}

func TestPlainChat_ContinuationLines(t *testing.T) {
	sender := testutil.NewReplyingSender("noted")
	_, _, reader := runPlain(t, sender, `morning 140/90\`, "evening 135/85")

	assert.Equal(t, []string{"morning 140/90\nevening 135/85"}, sender.Received())
	assert.Equal(t, []string{continuationPrompt, plainPrompt}, reader.prompts)
}

func TestPlainChat_InterruptDropsPartialMessage(t *testing.T) {
	sender := testutil.NewReplyingSender("ok")
	_, ctrl, _ := runPlain(t, sender, `draft\`, readline.ErrInterrupt, "real question")

	assert.Equal(t, []string{"real question"}, sender.Received())
	assert.Empty(t, ctrl.State().PendingInput)
}

func TestPlainChat_Commands(t *testing.T) {
	sender := testutil.NewReplyingSender("unused")
	out, ctrl, _ := runPlain(t, sender, "/help", " /EXIT ", "never read")

	assert.Contains(t, out, "Commands:")
	assert.Len(t, ctrl.State().Transcript, 1, "commands are not messages")
	assert.Empty(t, sender.Received())
}

func TestPlainChat_SlashQuestionsAreSent(t *testing.T) {
	sender := testutil.NewReplyingSender("about 1 mmHg = 0.133 kPa")
	_, ctrl, _ := runPlain(t, sender, "/mmHg vs kPa?", "//help")

	assert.Equal(t, []string{"/mmHg vs kPa?", "/help"}, sender.Received())
	assert.Len(t, ctrl.State().Transcript, 5)
}

func TestPlainChat_ReadError(t *testing.T) {
	ctrl := conversation.New(nil)
	reader := &scriptedReader{lines: []any{errors.New("tty gone")}}
	p, err := newPlainChat(ctrl, reader, io.Discard, ui.Options{})
	require.NoError(t, err)

	err = p.run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty gone")
}
