package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulse-chat/pulse/internal/conversation"
)

// Session is one mounted browser conversation.
type Session struct {
	ID         string
	Controller *conversation.Controller

	mu         sync.Mutex
	lastActive time.Time
	watchers   int
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) attach(now time.Time) {
	s.mu.Lock()
	s.watchers++
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) detach(now time.Time) {
	s.mu.Lock()
	s.watchers--
	s.lastActive = now
	s.mu.Unlock()
}

// idleSince reports whether nobody has used or watched the session since cutoff.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers == 0 && s.lastActive.Before(cutoff)
}

// ControllerFactory builds the controller for a newly mounted conversation.
type ControllerFactory func() *conversation.Controller

// Store holds the mounted conversations keyed by id.
type Store struct {
	newController ControllerFactory
	logger        zerolog.Logger
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty Store.
func NewStore(factory ControllerFactory, logger zerolog.Logger) *Store {
	return &Store{
		newController: factory,
		logger:        logger.With().Str("component", "sessions").Logger(),
		now:           time.Now,
		sessions:      make(map[string]*Session),
	}
}

// Create mounts a new conversation.
func (s *Store) Create() *Session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	sess := &Session{
		ID:         id.String(),
		Controller: s.newController(),
		lastActive: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug().Str("conversation", sess.ID).Msg("Conversation mounted")
	return sess
}

// Get returns the conversation with id and marks it active.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

// Delete unmounts a conversation. A reply still in flight is recorded on the
// detached controller and then dropped with it.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.logger.Debug().Str("conversation", id).Msg("Conversation unmounted")
	}
	return ok
}

// Len returns the number of mounted conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep unmounts conversations with no live watcher that have been idle for
// at least idle. It returns the removed ids.
func (s *Store) Sweep(idle time.Duration) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var removed []string
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		s.logger.Info().Int("count", len(removed)).Msg("Unmounted idle conversations")
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done. A non-positive
// idle disables sweeping.
func (s *Store) RunSweeper(ctx context.Context, idle, interval time.Duration) {
	if idle <= 0 || interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(idle)
		}
	}
}
