package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	transportSSE       = "sse"
	transportWebSocket = "websocket"

	sseKeepAliveInterval = 15 * time.Second
	sseKeepAlive         = ": ping\n\n"
)

func (s *Server) registerUpdateRoutes() {
	s.echo.GET("/image/updates", s.handleUpdates)
	s.echo.GET("/image/updates/ws", s.handleUpdatesWebSocket)
}

// handleUpdates streams every broadcast frame to the client as a server-sent
// event until the client disconnects or the broadcaster evicts it.
func (s *Server) handleUpdates(c echo.Context) error {
	ctx := c.Request().Context()
	streamID := uuid.NewString()

	sub := s.updates.Subscribe()
	defer s.updates.Unsubscribe(sub)

	s.streamOpened(transportSSE)
	defer s.streamClosed(transportSSE)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	slog.DebugContext(ctx, "Update stream opened", "stream_id", streamID, "transport", transportSSE)

	keepAlive := s.clock.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "Update stream closed by client", "stream_id", streamID)
			return nil
		case <-sub.Done():
			slog.InfoContext(ctx, "Update stream evicted", "stream_id", streamID)
			return nil
		case <-keepAlive.Chan():
			if _, err := io.WriteString(res, sseKeepAlive); err != nil {
				return nil
			}
			res.Flush()
		case msg := <-sub.Messages():
			if err := broadcast.WriteEvent(res, msg); err != nil {
				slog.DebugContext(ctx, "Update stream write failed", "stream_id", streamID, "error", err)
				return nil
			}
			res.Flush()
			s.streamSent(transportSSE)
		}
	}
}

// handleUpdatesWebSocket is the WebSocket rendition of handleUpdates. Each
// broadcast payload becomes one text message.
func (s *Server) handleUpdatesWebSocket(c echo.Context) error {
	ctx := c.Request().Context()
	streamID := uuid.NewString()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		slog.DebugContext(ctx, "WebSocket upgrade failed", "error", err)
		return nil
	}

	sub := s.updates.Subscribe()
	defer s.updates.Unsubscribe(sub)

	s.streamOpened(transportWebSocket)
	defer s.streamClosed(transportWebSocket)

	slog.DebugContext(ctx, "Update stream opened", "stream_id", streamID, "transport", transportWebSocket)

	w := newStreamWriter(conn, sub, s.clock)
	reason := w.run(ctx, func() { s.streamSent(transportWebSocket) })

	slog.DebugContext(ctx, "Update stream closed", "stream_id", streamID, "reason", reason)
	return nil
}
