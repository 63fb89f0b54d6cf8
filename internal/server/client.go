package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client wraps one player connection. send is owned by the hub's dispatch
// goroutine: only it enqueues and closes.
type client struct {
	id     string
	name   string
	ws     *websocket.Conn
	send   chan []byte
	logger *zap.Logger
}

func newClient(ws *websocket.Conn, id, name string, buffer int, logger *zap.Logger) *client {
	return &client{
		id:     id,
		name:   name,
		ws:     ws,
		send:   make(chan []byte, buffer),
		logger: logger.With(zap.String("player_id", id)),
	}
}

// enqueue never blocks; a client that cannot keep up loses messages.
func (c *client) enqueue(msg ServerMessage) {
	if c.send == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("send buffer full, dropping message", zap.String("type", msg.Type))
	}
}

func (c *client) close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump receives the send channel as an argument so it never reads the
// field the dispatch goroutine clears on close.
func (c *client) writePump(send <-chan []byte, writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes requests and hands them to the hub until the connection
// fails, then asks the hub to remove the player.
func (c *client) readPump(h *Hub, maxMessageSize int64, pongTimeout time.Duration) {
	defer func() {
		h.submit(request{kind: requestLeave, playerID: c.id})
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.submit(request{kind: requestInvalid, playerID: c.id, reason: "malformed message"})
			continue
		}
		req := request{
			playerID:  c.id,
			claimedID: msg.PlayerID,
			handIndex: msg.HandIndex,
			targetID:  msg.TargetID,
		}
		switch msg.Type {
		case MessagePlayCard:
			req.kind = requestPlayCard
		case MessageEndTurn:
			req.kind = requestEndTurn
		case MessageView:
			req.kind = requestView
		default:
			req.kind = requestInvalid
			req.reason = "unknown message type " + msg.Type
		}
		h.submit(req)
	}
}
