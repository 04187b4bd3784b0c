package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/justestif/go-mood-music/internal/conversation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxInboundSize = 4 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Events handles GET /api/sessions/{id}/events. The stream opens with a
// snapshot, then carries every emitted event. Clients may send
// {"type":"message","text":...} frames to submit utterances.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("session", cs.ID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	l := cs.Hub.Subscribe()
	defer cs.Hub.Unsubscribe(l)

	go h.readFrames(context.WithoutCancel(r.Context()), conn, cs, l)

	snap := cs.Session.Snapshot()
	if err := writeFrame(conn, Event{Type: EventSnapshot, Snapshot: &snap}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-l.C:
			if err := writeFrame(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-l.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
			return
		}
	}
}

func (h *Handlers) readFrames(ctx context.Context, conn *websocket.Conn, cs *ChatSession, l *Listener) {
	defer cs.Hub.Unsubscribe(l)

	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in inboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("session", cs.ID).Msg("websocket read ended")
			}
			return
		}
		if in.Type != "message" {
			l.offer(Event{Type: EventError, Error: "unsupported frame type"})
			continue
		}

		go func(text string) {
			err := cs.Session.Submit(ctx, text)
			if err != nil && !errors.Is(err, conversation.ErrSuperseded) {
				l.offer(Event{Type: EventError, Error: err.Error()})
			}
		}(in.Text)
	}
}

func writeFrame(conn *websocket.Conn, ev Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
