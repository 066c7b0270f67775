package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// requestLog logs one line per request once it has been served.
func requestLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			switch {
			case status != 0:
			case websocket.IsWebSocketUpgrade(r):
				status = http.StatusSwitchingProtocols
			default:
				status = http.StatusOK
			}

			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Warn()
			}
			event = event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start))

			if id := middleware.GetReqID(r.Context()); id != "" {
				event.Str("request_id", id)
			}
			if ua := r.Header.Get("User-Agent"); ua != "" {
				event.Str("user_agent", ua)
			}

			event.Msg("Request")
		})
	}
}
