package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Author identifies who wrote a transcript entry.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is one transcript entry. Messages are never modified once appended.
type Message struct {
	// ID is a UUIDv7, so lexical order follows creation order.
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is a snapshot of everything a view needs to render a conversation.
type State struct {
	Transcript    []Message `json:"transcript"`
	PendingInput  string    `json:"pendingInput"`
	AwaitingReply bool      `json:"awaitingReply"`
	LastError     string    `json:"lastError"`
}

// Last returns the newest transcript entry.
func (s State) Last() Message {
	return s.Transcript[len(s.Transcript)-1]
}

func (s State) clone() State {
	out := s
	out.Transcript = make([]Message, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	return out
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
