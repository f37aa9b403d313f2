package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Shweta-Mathanker/womanSafetyDTI/broker"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the HTTP connection and streams marker change events to it
// until the peer disconnects. The connection's close is the unsubscribe
// signal; the hub may also end the stream itself by dropping a subscriber
// that stops reading.
func ServeWS(h *broker.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "err", err)
			return
		}
		sub := h.Subscribe()

		// Reader goroutine: its only job is detecting the peer going away.
		go func() {
			defer func() {
				sub.Close()
				_ = conn.Close()
			}()
			conn.SetReadLimit(512)
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		// Writer loop (same goroutine). Ends when the hub closes the
		// subscriber channel or a write fails.
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			sub.Close()
			_ = conn.Close()
		}()
		for {
			select {
			case payload, ok := <-sub.Events():
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
