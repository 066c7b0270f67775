package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulse-chat/pulse/internal/conversation"
)

// EventSnapshot is the kind of the first frame on every events socket.
const EventSnapshot conversation.EventKind = "snapshot"

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	eventBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleEvents streams controller events. The first frame is a snapshot;
// every later frame is one Event in mutation order. A watcher that falls
// eventBuffer events behind is disconnected and expected to reconnect.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Str("conversation", sess.ID).Msg("Websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	sess.attach(s.store.now())
	defer func() { sess.detach(s.store.now()) }()

	events := make(chan conversation.Event, eventBuffer)
	lagged := make(chan struct{})
	var lagOnce sync.Once

	snapshot, cancel := sess.Controller.Watch(func(ev conversation.Event) {
		select {
		case events <- ev:
		default:
			lagOnce.Do(func() { close(lagged) })
		}
	})
	defer cancel()

	gone := make(chan struct{})
	go s.readPump(conn, sess.ID, gone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeEvent(conn, conversation.Event{Kind: EventSnapshot, State: snapshot}); err != nil {
		return
	}

	for {
		select {
		case ev := <-events:
			if err := writeEvent(conn, ev); err != nil {
				s.logger.Debug().Err(err).Str("conversation", sess.ID).Msg("Websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-lagged:
			s.logger.Warn().Str("conversation", sess.ID).Msg("Websocket watcher fell behind, closing")
			writeClose(conn, websocket.CloseTryAgainLater, "lagging")
			return
		case <-s.closing:
			writeClose(conn, websocket.CloseGoingAway, "server shutting down")
			return
		case <-gone:
			return
		}
	}
}

// readPump discards inbound frames and keeps the read deadline fresh via
// pongs. It closes gone when the peer disconnects.
func (s *Server) readPump(conn *websocket.Conn, id string, gone chan<- struct{}) {
	defer close(gone)

	conn.SetReadLimit(maxRequestBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Str("conversation", id).Msg("Websocket closed unexpectedly")
			}
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev conversation.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func writeClose(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
