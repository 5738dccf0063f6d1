package httpserver

import (
	"context"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 30 * time.Second
	pongDeadline  = 60 * time.Second
)

// streamWriter pumps a subscription into a WebSocket connection. Only run
// writes to the connection; readLoop only reads from it.
type streamWriter struct {
	connection *websocket.Conn
	sub        *broadcast.Subscription
	clock      clockwork.Clock
	readDone   chan struct{}
}

func newStreamWriter(connection *websocket.Conn, sub *broadcast.Subscription, clock clockwork.Clock) *streamWriter {
	sw := &streamWriter{
		connection: connection,
		sub:        sub,
		clock:      clock,
		readDone:   make(chan struct{}),
	}
	sw.configurePongHandler()
	go sw.readLoop()
	return sw
}

// run blocks until the client goes away, the subscription ends or ctx is
// cancelled, then closes the connection. It returns a short reason for logs.
func (sw *streamWriter) run(ctx context.Context, sent func()) string {
	ticker := sw.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer func() {
		_ = sw.connection.Close()
		<-sw.readDone
	}()

	for {
		select {
		case <-ctx.Done():
			sw.sendClose(websocket.CloseGoingAway, "server shutting down")
			return "context done"
		case <-sw.readDone:
			return "client closed"
		case <-sw.sub.Done():
			sw.sendClose(websocket.CloseGoingAway, "update stream ended")
			return "evicted"
		case <-ticker.Chan():
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return "ping failed"
			}
		case msg := <-sw.sub.Messages():
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.TextMessage, []byte(msg.Data)); err != nil {
				return "write failed"
			}
			sent()
		}
	}
}

// readLoop discards client frames so that pong and close control frames get
// processed. It exits on the first read error.
func (sw *streamWriter) readLoop() {
	defer close(sw.readDone)
	for {
		if _, _, err := sw.connection.ReadMessage(); err != nil {
			return
		}
	}
}

func (sw *streamWriter) sendClose(code int, reason string) {
	closeMsg := websocket.FormatCloseMessage(code, reason)
	sw.updateWriteDeadline()
	_ = sw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
}

func (sw *streamWriter) configurePongHandler() {
	sw.updateReadDeadline()
	sw.connection.SetPongHandler(func(string) error {
		sw.updateReadDeadline()
		return nil
	})
}

// Socket deadlines are wall-clock instants, so they use time.Now rather than
// the injected clock.
func (sw *streamWriter) updateWriteDeadline() {
	_ = sw.connection.SetWriteDeadline(time.Now().Add(writeDeadline))
}

func (sw *streamWriter) updateReadDeadline() {
	_ = sw.connection.SetReadDeadline(time.Now().Add(pongDeadline))
}
