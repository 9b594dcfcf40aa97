// Package protocol defines the JSON messages exchanged between canvas
// clients and the room relay.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType is the top-level discriminator of a socket message.
type MessageType string

const (
	TypeJoin  MessageType = "join"
	TypeLeave MessageType = "leave"
	TypeChat  MessageType = "chat"
)

// EventKind distinguishes what a chat message does to the event log. The
// zero value (field absent on the wire) means create.
type EventKind string

const (
	EventCreate EventKind = ""
	EventUpdate EventKind = "update"
	EventErase  EventKind = "erase"
)

// Payload carries the room-scoped body of a message. For chat messages,
// Message holds the serialized shape (for erase, at minimum its id). UserID
// is set by the relay on outbound broadcasts, never trusted inbound.
type Payload struct {
	RoomID  string    `json:"roomId"`
	Message string    `json:"message,omitempty"`
	UserID  string    `json:"userId,omitempty"`
	Type    EventKind `json:"type,omitempty"`
}

// Message is the socket envelope. IsDrawing marks an ephemeral preview that
// must never be persisted; IsUpdating marks an in-progress reshape, which is
// likewise broadcast-only.
type Message struct {
	Type       MessageType `json:"type"`
	Payload    Payload     `json:"payload"`
	IsDrawing  bool        `json:"isDrawing,omitempty"`
	IsUpdating bool        `json:"isUpdating,omitempty"`
}

// Parse decodes and validates an inbound message. Malformed JSON, an unknown
// type, or missing required fields are errors; the relay drops such messages
// without closing the connection.
func Parse(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("malformed message: %w", err)
	}
	switch m.Type {
	case TypeJoin, TypeLeave:
		if m.Payload.RoomID == "" {
			return Message{}, fmt.Errorf("%s message missing roomId", m.Type)
		}
	case TypeChat:
		if m.Payload.RoomID == "" {
			return Message{}, fmt.Errorf("chat message missing roomId")
		}
		if m.Payload.Message == "" {
			return Message{}, fmt.Errorf("chat message missing message body")
		}
		switch m.Payload.Type {
		case EventCreate, EventUpdate, EventErase:
		default:
			return Message{}, fmt.Errorf("unknown event kind %q", m.Payload.Type)
		}
	default:
		return Message{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	return m, nil
}

// Encode serializes a message for the wire.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Chat builds a chat message for a serialized shape.
func Chat(roomID, message string) Message {
	return Message{
		Type:    TypeChat,
		Payload: Payload{RoomID: roomID, Message: message},
	}
}

// Join builds a join message for a room.
func Join(roomID string) Message {
	return Message{Type: TypeJoin, Payload: Payload{RoomID: roomID}}
}

// Leave builds a leave message for a room.
func Leave(roomID string) Message {
	return Message{Type: TypeLeave, Payload: Payload{RoomID: roomID}}
}
