package http

import (
	"context"
	"net/http"
	"time"

	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = pongTimeout * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamMessage is pushed to websocket clients on every filtered view change.
type StreamMessage struct {
	Notes []models.Note `json:"notes"`
}

// Stream handles GET /api/notes/ws. The connection receives the filtered
// view immediately and after every change. Clients may send SearchRequest
// messages to change the query.
func (h *NoteHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.Log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := h.Controller.WatchFilteredNotes()
	defer sub.Close()

	go h.readQueries(ctx, cancel, ws)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case notes, ok := <-sub.C():
			if !ok {
				return
			}
			if notes == nil {
				notes = []models.Note{}
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteJSON(StreamMessage{Notes: notes}); err != nil {
				h.Log.Info("websocket write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// readQueries applies incoming search queries until the client goes away,
// then cancels the stream.
func (h *NoteHandler) readQueries(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn) {
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		var req SearchRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Log.Info("websocket read failed", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
		h.Controller.SetSearchQuery(req.Query)
	}
}

// WatchNote handles GET /api/notes/{id}/ws. The connection receives the note
// every time it changes; nothing is sent while it does not exist. Incoming
// messages are ignored.
func (h *NoteHandler) WatchNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates := h.Controller.GetNoteByID(ctx, id)
	go h.discardReads(cancel, ws)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case n, ok := <-updates:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteJSON(n); err != nil {
				h.Log.Info("websocket write failed", zap.Int64("id", id), zap.Error(err))
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// discardReads keeps control frames flowing until the client goes away.
func (h *NoteHandler) discardReads(cancel context.CancelFunc, ws *websocket.Conn) {
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := ws.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Log.Info("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
	}
}
