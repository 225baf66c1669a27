package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/msto63/robogrid/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client message types
const (
	MessagePing    = "ping"
	MessageRun     = "run"
	MessageStop    = "stop"
	MessageResume  = "resume"
	MessageRestart = "restart"
	MessageReset   = "reset"
	MessageRerun   = "rerun"
	MessageState   = "state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket handles GET /api/v1/ws. The first message is a snapshot of the
// current run; engine events follow in order.
func (h *Handler) WebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return err
	}

	conn := h.hub.Register(func(seq uint64, last *engine.Outcome) []byte {
		return encodeEvent(EventSnapshot, seq, h.stateWith(last))
	})
	h.logger.Info("websocket connected", "id", conn.ID, "remote", c.RealIP())

	ws.SetReadLimit(maxMessageSize)

	go h.writePump(ws, conn)
	go h.readPump(ws, conn)

	return nil
}

func (h *Handler) readPump(ws *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		ws.Close()
		h.logger.Info("websocket disconnected", "id", conn.ID)
	}()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "id", conn.ID, "error", err)
			}
			return
		}
		h.handleMessage(conn, data)
	}
}

func (h *Handler) writePump(ws *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("websocket write failed", "id", conn.ID, "error", err)
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleMessage(conn *Connection, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.hub.sendTo(conn, EventError, ErrorPayload{Code: "invalid_payload", Message: "invalid JSON message"})
		return
	}

	switch msg.Type {
	case MessagePing:
		h.hub.sendTo(conn, EventPong, nil)
	case MessageState:
		h.hub.sendTo(conn, EventSnapshot, h.state())
	case MessageRun:
		h.engine.Start(msg.Program)
	case MessageStop:
		h.engine.Stop()
	case MessageResume:
		h.engine.Resume()
	case MessageRestart:
		h.engine.Restart()
	case MessageReset:
		h.engine.Reset()
	case MessageRerun:
		h.engine.Rerun()
	default:
		h.hub.sendTo(conn, EventError, ErrorPayload{Code: "unknown_type", Message: "unknown message type: " + msg.Type})
		return
	}
	h.logger.Debug("websocket command", "id", conn.ID, "type", msg.Type)
}
