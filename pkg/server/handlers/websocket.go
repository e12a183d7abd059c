package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with default settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (can be restricted in production)
		return true
	},
}

// writeWait bounds how long a single event write may take before the
// connection is considered dead.
const writeWait = 10 * time.Second

// Watch handles GET /stack/watch: it upgrades the connection and streams
// one JSON event per stack mutation until the client hangs up.
func (h *Handlers) Watch(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeError(w, ErrWatchDisabled)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}
	defer conn.Close()

	ch, cancel := h.events.Subscribe()
	defer cancel()

	// Read pump: we expect no client messages, only a close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// ErrWatchDisabled is returned when the watch stream has no broadcaster
// behind it.
var ErrWatchDisabled = &watchDisabledError{}

type watchDisabledError struct{}

func (*watchDisabledError) Error() string { return "watch stream is not enabled" }
