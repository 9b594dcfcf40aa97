package relay

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/drawbridge-io/drawbridge/internal/auth"
	"github.com/drawbridge-io/drawbridge/internal/geometry"
	"github.com/drawbridge-io/drawbridge/internal/protocol"
	"github.com/drawbridge-io/drawbridge/internal/ratelimit"
	"github.com/drawbridge-io/drawbridge/internal/store"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 1024 * 1024
	messagesPerSecond = 100
	messageBurst      = 200
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	hub         *Hub
	store       *store.Store
	conn        *websocket.Conn
	send        chan []byte
	rateLimiter *ratelimit.Limiter
	sessionID   string
	userID      string
}

// ServeWs upgrades an HTTP request to a socket connection. The token in the
// ?token= query parameter must verify before the client is admitted; an
// invalid one gets a close frame and nothing else.
func ServeWs(hub *Hub, st *store.Store, verifier auth.Verifier, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		log.Printf("Rejected connection from %s: %v", conn.RemoteAddr(), err)
		deadline := time.Now().Add(writeWait)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"), deadline)
		conn.Close()
		return
	}

	client := &Client{
		hub:         hub,
		store:       st,
		conn:        conn,
		send:        make(chan []byte, 512),
		rateLimiter: ratelimit.NewLimiter(messagesPerSecond, messageBurst),
		sessionID:   uuid.NewString(),
		userID:      userID,
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	rateLimitWarnings := 0

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if !c.rateLimiter.Allow() {
			rateLimitWarnings++
			if rateLimitWarnings%100 == 1 {
				log.Printf("Rate limit exceeded for client %s (warning #%d)", c.sessionID, rateLimitWarnings)
			}
			if rateLimitWarnings > 1000 {
				log.Printf("Disconnecting client %s for excessive rate limit violations", c.sessionID)
				return
			}
			continue
		}

		m, err := protocol.Parse(data)
		if err != nil {
			log.Printf("Invalid message from client %s: %v", c.sessionID, err)
			continue
		}

		c.dispatch(m)
	}
}

func (c *Client) dispatch(m protocol.Message) {
	switch m.Type {
	case protocol.TypeJoin:
		c.hub.JoinRoom(c, m.Payload.RoomID)
	case protocol.TypeLeave:
		c.hub.LeaveRoom(c, m.Payload.RoomID)
	case protocol.TypeChat:
		c.handleChat(m)
	}
}

// handleChat persists durable events and relays everything to the room.
// Previews (isDrawing, or update with isUpdating) skip the store. A failed
// write aborts the relay of that one message so peers never see an event
// the log lost; the connection stays up.
func (c *Client) handleChat(m protocol.Message) {
	roomID := m.Payload.RoomID

	if !m.IsDrawing {
		switch {
		case m.Payload.Type == protocol.EventErase:
			// An erase carries at minimum the shape id, not necessarily a
			// full typed shape.
			shapeID, ok := shapeIDOf(m.Payload.Message)
			if !ok {
				log.Printf("Dropping erase without shape id from client %s in room %s", c.sessionID, roomID)
				return
			}
			if err := c.store.EraseByShape(roomID, shapeID); err != nil {
				c.logStoreErr("erase", roomID, shapeID, err)
				return
			}
			m.Payload.UserID = c.userID
			c.relay(m, roomID)
			return
		}

		shape, err := geometry.Unmarshal([]byte(m.Payload.Message))
		if err != nil {
			log.Printf("Undecodable shape from client %s in room %s: %v", c.sessionID, roomID, err)
			return
		}

		switch {
		case m.Payload.Type == protocol.EventUpdate && m.IsUpdating:
			// Mid-gesture update: relay only, the final update persists it.
		case m.Payload.Type == protocol.EventUpdate:
			if err := c.store.UpdateByShape(roomID, shape.ShapeID(), m.Payload.Message); err != nil {
				c.logStoreErr("update", roomID, shape.ShapeID(), err)
				return
			}
		default:
			if shape.ShapeID() == "" {
				log.Printf("Dropping create without shape id from client %s in room %s", c.sessionID, roomID)
				return
			}
			if _, err := c.store.Append(roomID, shape.ShapeID(), c.userID, m.Payload.Message); err != nil {
				c.logStoreErr("create", roomID, shape.ShapeID(), err)
				return
			}
		}
	}

	m.Payload.UserID = c.userID
	c.relay(m, roomID)
}

func (c *Client) relay(m protocol.Message, roomID string) {
	data, err := m.Encode()
	if err != nil {
		log.Printf("Encode error: %v", err)
		return
	}
	c.hub.Broadcast(roomID, data, c)
}

// shapeIDOf pulls just the id out of a serialized shape payload.
func shapeIDOf(message string) (string, bool) {
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(message), &ref); err != nil || ref.ID == "" {
		return "", false
	}
	return ref.ID, true
}

func (c *Client) logStoreErr(op, roomID, shapeID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("Stale %s for shape %s in room %s (already gone)", op, shapeID, roomID)
		return
	}
	log.Printf("Store %s failed for shape %s in room %s: %v", op, shapeID, roomID, err)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
