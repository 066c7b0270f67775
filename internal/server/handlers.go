package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pulse-chat/pulse/internal/conversation"
)

const maxRequestBytes = 64 << 10

type textRequest struct {
	Text string `json:"text"`
}

type conversationResponse struct {
	ID    string             `json:"id"`
	State conversation.State `json:"state"`
}

type sessionKey struct{}

// withSession resolves {id} into a Session or answers 404.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.store.Get(chi.URLParam(r, "id"))
		if !ok {
			respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func respondBadBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	respondError(w, http.StatusBadRequest, "invalid request body")
}

func sessionFrom(r *http.Request) *Session {
	return r.Context().Value(sessionKey{}).(*Session)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, _ *http.Request) {
	sess := s.store.Create()
	respondJSON(w, http.StatusCreated, conversationResponse{
		ID:    sess.ID,
		State: sess.Controller.State(),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFrom(r).Controller.State())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit starts a turn and resolves it in the background; the reply
// reaches the browser over the events socket.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusUnprocessableEntity, "message text is blank")
		return
	}

	sess := sessionFrom(r)
	turn, ok := sess.Controller.Begin(req.Text)
	if !ok {
		respondError(w, http.StatusConflict, "a reply is still outstanding")
		return
	}

	ctrl := sess.Controller
	s.turns.Go(func() {
		ctrl.Resolve(context.Background(), turn)
	})

	respondJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}
	sessionFrom(r).Controller.UpdatePendingInput(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Controller.DismissError()
	w.WriteHeader(http.StatusNoContent)
}
