// Package relay fans whiteboard events out between the clients of a room
// and persists the durable ones.
package relay

import (
	"log"
	"sync"
)

// Hub tracks connected clients, their room memberships, and broadcasts
// messages to rooms.
type Hub struct {
	// All connected clients
	clients map[*Client]bool

	// Room members by room id
	rooms map[string]map[*Client]bool

	// Outbound messages to fan out
	broadcast chan *envelope

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	mu sync.RWMutex
}

// envelope is one message addressed to a room, excluding its sender.
type envelope struct {
	roomID string
	data   []byte
	sender *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *envelope),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()

			log.Printf("Client %s connected (total: %d)", client.sessionID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.dropFromAllRoomsLocked(client)
				close(client.send)
				log.Printf("Client %s disconnected (remaining: %d)", client.sessionID, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			if members, ok := h.rooms[message.roomID]; ok {
				for client := range members {
					if client == message.sender {
						continue
					}
					select {
					case client.send <- message.data:
					default:
						// Slow consumer: drop it rather than stall the room.
						delete(h.clients, client)
						h.dropFromAllRoomsLocked(client)
						close(client.send)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// dropFromAllRoomsLocked removes a client from every room it joined and
// deletes rooms that become empty. Caller holds h.mu.
func (h *Hub) dropFromAllRoomsLocked(client *Client) {
	for roomID, members := range h.rooms {
		if _, ok := members[client]; !ok {
			continue
		}
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
			log.Printf("Room %s closed (empty)", roomID)
		}
	}
}

// JoinRoom adds a client to a room, creating the room on first join.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	count := len(h.rooms[roomID])
	h.mu.Unlock()

	log.Printf("Client %s joined room %s (members: %d)", client.sessionID, roomID, count)
}

// LeaveRoom removes a client from a room. The last member leaving deletes
// the room.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	if members, ok := h.rooms[roomID]; ok {
		if _, ok := members[client]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
				log.Printf("Room %s closed (empty)", roomID)
			} else {
				log.Printf("Client %s left room %s (remaining: %d)", client.sessionID, roomID, len(members))
			}
		}
	}
	h.mu.Unlock()
}

// Broadcast queues a message for every member of the room except sender.
func (h *Hub) Broadcast(roomID string, data []byte, sender *Client) {
	h.broadcast <- &envelope{roomID: roomID, data: data, sender: sender}
}

// InRoom reports whether the client is currently a member of the room.
func (h *Hub) InRoom(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	return members[client]
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetRoomCount returns the number of rooms with at least one member.
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetActiveRooms returns member counts keyed by room id.
func (h *Hub) GetActiveRooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make(map[string]int, len(h.rooms))
	for id, members := range h.rooms {
		rooms[id] = len(members)
	}
	return rooms
}
