package testutil

import (
	"context"
	"sync"
)

// StubSender is a scripted webhook stand-in. Every Send blocks until the
// test calls Reply or Fail, unless an immediate outcome was preset.
type StubSender struct {
	mu        sync.Mutex
	received  []string
	outcomes  chan stubOutcome
	immediate *stubOutcome
	started   chan string
}

type stubOutcome struct {
	reply string
	err   error
}

// NewStubSender returns a StubSender that blocks on every Send.
func NewStubSender() *StubSender {
	return &StubSender{
		outcomes: make(chan stubOutcome, 16),
		started:  make(chan string, 16),
	}
}

// NewReplyingSender returns a StubSender that answers every Send with reply.
func NewReplyingSender(reply string) *StubSender {
	s := NewStubSender()
	s.immediate = &stubOutcome{reply: reply}
	return s
}

// NewFailingSender returns a StubSender that fails every Send with err.
func NewFailingSender(err error) *StubSender {
	s := NewStubSender()
	s.immediate = &stubOutcome{err: err}
	return s
}

// Send implements conversation.Sender.
func (s *StubSender) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	s.received = append(s.received, message)
	immediate := s.immediate
	s.mu.Unlock()

	select {
	case s.started <- message:
	default:
	}

	if immediate != nil {
		return immediate.reply, immediate.err
	}
	out := <-s.outcomes
	return out.reply, out.err
}

// Started receives each message as Send begins.
func (s *StubSender) Started() <-chan string {
	return s.started
}

// Reply releases one blocked Send with reply.
func (s *StubSender) Reply(reply string) {
	s.outcomes <- stubOutcome{reply: reply}
}

// Fail releases one blocked Send with err.
func (s *StubSender) Fail(err error) {
	s.outcomes <- stubOutcome{err: err}
}

// Received returns every message passed to Send so far.
func (s *StubSender) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.received))
	copy(out, s.received)
	return out
}
