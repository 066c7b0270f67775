// Package conversation implements the message-exchange state machine that
// sits between a chat view and the assistant webhook.
//
// A Controller is Idle until a non-blank message is submitted, then Sending
// until the webhook call settles, then Idle again. Only one turn can be
// outstanding. Delivery failures never escape the Controller: they become
// LastError plus an apology entry in the transcript.
package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulse-chat/pulse/internal/constants"
)

// Sender delivers one user message and returns the assistant reply.
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// Texts are the fixed assistant strings used by the Controller.
type Texts struct {
	// Greeting seeds every new transcript.
	Greeting string
	// Apology is appended to the transcript when delivery fails.
	Apology string
	// ErrorBanner becomes LastError when delivery fails.
	ErrorBanner string
}

// DefaultTexts returns the hypertension assistant strings.
func DefaultTexts() Texts {
	return Texts{
		Greeting:    constants.DefaultGreeting,
		Apology:     constants.DefaultApology,
		ErrorBanner: constants.DefaultErrorBanner,
	}
}

// Turn identifies one accepted submission awaiting its reply.
type Turn struct {
	id   uint64
	Text string
}

// Controller owns one conversation. It is safe for concurrent use; all
// mutations go through its methods.
type Controller struct {
	sender Sender
	texts  Texts
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	turns     uint64
	pending   uint64 // outstanding turn id, zero when idle
	resolving bool

	notifyMu sync.Mutex
	subsMu   sync.RWMutex
	subs     []subscriber
	nextSub  uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithTexts overrides the assistant strings. Empty fields keep their defaults.
func WithTexts(t Texts) Option {
	return func(c *Controller) {
		if t.Greeting != "" {
			c.texts.Greeting = t.Greeting
		}
		if t.Apology != "" {
			c.texts.Apology = t.Apology
		}
		if t.ErrorBanner != "" {
			c.texts.ErrorBanner = t.ErrorBanner
		}
	}
}

// WithLogger sets the logger used for turn diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With().Str("component", "conversation").Logger()
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Controller whose transcript holds only the greeting.
func New(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender: sender,
		texts:  DefaultTexts(),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state.Transcript = []Message{c.newMessage(AuthorAssistant, c.texts.Greeting)}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Submit runs a whole turn for text and blocks until the reply or the
// failure has been recorded. It returns false, changing nothing, when text
// is blank or another turn is outstanding.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	turn, ok := c.Begin(text)
	if !ok {
		return false
	}
	c.Resolve(ctx, turn)
	return true
}

// Begin performs the synchronous half of a submission: it appends the user
// message, clears the pending input and the error, and marks the reply as
// awaited. Callers must pass the returned Turn to Resolve.
func (c *Controller) Begin(text string) (Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, false
	}

	c.mu.Lock()
	if c.state.AwaitingReply {
		c.mu.Unlock()
		c.logger.Debug().Msg("Submit ignored, reply outstanding")
		return Turn{}, false
	}

	c.state.Transcript = append(c.state.Transcript, c.newMessage(AuthorUser, text))
	c.state.PendingInput = ""
	c.state.LastError = ""
	c.state.AwaitingReply = true

	c.turns++
	c.pending = c.turns
	turn := Turn{id: c.pending, Text: text}

	c.logger.Debug().
		Uint64("turn", turn.id).
		Int("length", len(text)).
		Msg("Turn started")

	c.publishLocked(EventSubmitted)
	return turn, true
}

// Resolve delivers turn to the Sender and records the outcome. It reports
// whether a reply was received. Cancellation of ctx is ignored: a started
// turn always runs until the Sender returns. Resolving a turn that is not
// outstanding, or is already being resolved, does nothing.
func (c *Controller) Resolve(ctx context.Context, turn Turn) bool {
	c.mu.Lock()
	if turn.id == 0 || turn.id != c.pending || c.resolving {
		c.mu.Unlock()
		return false
	}
	c.resolving = true
	c.mu.Unlock()

	start := c.now()
	reply, err := c.send(context.WithoutCancel(ctx), turn.Text)

	c.mu.Lock()
	c.pending = 0
	c.resolving = false
	c.state.AwaitingReply = false

	if err != nil {
		c.state.LastError = c.texts.ErrorBanner
		c.state.Transcript = append(c.state.Transcript, c.newMessage(AuthorAssistant, c.texts.Apology))
		c.logger.Warn().
			Err(err).
			Uint64("turn", turn.id).
			Msg("Reply delivery failed")
		c.publishLocked(EventFailed)
		return false
	}

	c.state.Transcript = append(c.state.Transcript, c.newMessage(AuthorAssistant, reply))
	c.logger.Debug().
		Uint64("turn", turn.id).
		Dur("elapsed", c.now().Sub(start)).
		Msg("Reply received")
	c.publishLocked(EventReplied)
	return true
}

// send calls the Sender, turning a panic into an ordinary failure so the
// Controller always returns to Idle.
func (c *Controller) send(ctx context.Context, text string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	if c.sender == nil {
		return "", errNoSender
	}
	return c.sender.Send(ctx, text)
}

// DismissError clears LastError.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.state.LastError = ""
	c.publishLocked(EventErrorDismissed)
}

// UpdatePendingInput replaces the unsent input text.
func (c *Controller) UpdatePendingInput(text string) {
	c.mu.Lock()
	c.state.PendingInput = text
	c.publishLocked(EventInputChanged)
}

// newMessage must be called with c.mu held or before c is shared.
func (c *Controller) newMessage(author Author, content string) Message {
	return Message{
		ID:        newMessageID(),
		Author:    author,
		Content:   content,
		CreatedAt: c.now(),
	}
}
