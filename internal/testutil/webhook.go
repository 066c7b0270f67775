package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// WebhookRequest is the decoded body of one request to a WebhookServer.
type WebhookRequest struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// WebhookServer is a fake assistant webhook backed by httptest.
type WebhookServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []WebhookRequest
	status   int
	body     string
}

// NewWebhookServer starts a webhook that answers every POST with status
// and body. It is closed when the test ends.
func NewWebhookServer(t *testing.T, status int, body string) *WebhookServer {
	t.Helper()

	ws := &WebhookServer{status: status, body: body}
	ws.Server = httptest.NewServer(http.HandlerFunc(ws.handle))
	t.Cleanup(ws.Close)
	return ws
}

// Respond changes the status and body returned for later requests.
func (ws *WebhookServer) Respond(status int, body string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.status = status
	ws.body = body
}

// Requests returns the requests received so far.
func (ws *WebhookServer) Requests() []WebhookRequest {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := make([]WebhookRequest, len(ws.requests))
	copy(out, ws.requests)
	return out
}

func (ws *WebhookServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req WebhookRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	ws.mu.Lock()
	ws.requests = append(ws.requests, req)
	status, body := ws.status, ws.body
	ws.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
