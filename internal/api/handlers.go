// Package api serves the HTTP surface of the relay: room history for
// joining clients, room inspection, PDF export, and operational endpoints.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/drawbridge-io/drawbridge/internal/export"
	"github.com/drawbridge-io/drawbridge/internal/history"
	"github.com/drawbridge-io/drawbridge/internal/relay"
	"github.com/drawbridge-io/drawbridge/internal/store"
)

type API struct {
	hub   *relay.Hub
	store *store.Store
}

func New(hub *relay.Hub, st *store.Store) *API {
	return &API{
		hub:   hub,
		store: st,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.GetRoomCount(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.store != nil {
		dbStats, err := a.store.Stats()
		if err == nil {
			stats["total_rooms"] = dbStats["room_count"]
			stats["total_events"] = dbStats["event_count"]
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

// ChatsHandler serves GET /chats/{roomId}: the room's event log in creation
// order, as a bare array. A room nobody drew in yet is an empty array, not
// an error.
func (a *API) ChatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/chats/")
	roomID := strings.TrimSuffix(path, "/")
	if roomID == "" {
		errorResponse(w, http.StatusBadRequest, "Room ID is required")
		return
	}

	events, err := a.store.ListOrdered(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if events == nil {
		events = []store.Event{}
	}

	jsonResponse(w, http.StatusOK, events)
}

// Room handlers

type RoomResponse struct {
	ID          string `json:"id"`
	ActiveUsers int    `json:"active_users"`
	EventCount  int    `json:"event_count"`
}

func (a *API) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	activeRooms := a.hub.GetActiveRooms()

	response := make([]RoomResponse, 0, len(activeRooms))
	for id, members := range activeRooms {
		count, err := a.store.CountEvents(id)
		if err != nil {
			errorResponse(w, http.StatusInternalServerError, "Failed to list rooms")
			return
		}
		response = append(response, RoomResponse{
			ID:          id,
			ActiveUsers: members,
			EventCount:  count,
		})
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"rooms": response,
	})
}

func (a *API) GetRoomHandler(w http.ResponseWriter, r *http.Request, roomID string) {
	count, err := a.store.CountEvents(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to get room")
		return
	}
	activeRooms := a.hub.GetActiveRooms()

	jsonResponse(w, http.StatusOK, RoomResponse{
		ID:          roomID,
		ActiveUsers: activeRooms[roomID],
		EventCount:  count,
	})
}

func (a *API) ClearRoomHandler(w http.ResponseWriter, r *http.Request, roomID string) {
	if err := a.store.ClearRoom(roomID); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to clear room")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Room cleared"})
}

// ExportRoomHandler renders the room's current shapes into a PDF download.
func (a *API) ExportRoomHandler(w http.ResponseWriter, r *http.Request, roomID string) {
	events, err := a.store.ListOrdered(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to load room")
		return
	}

	records := make([]history.Record, len(events))
	for i, e := range events {
		records[i] = history.Record{ID: e.ID, RoomID: e.RoomID, UserID: e.UserID, Message: e.Message}
	}
	shapes := history.Rebuild(records)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", roomID+".pdf"))
	if err := export.PDF(w, roomID, shapes); err != nil {
		log.Printf("Export failed for room %s: %v", roomID, err)
	}
}

func (a *API) RoomsRouter(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/rooms")

	// /api/rooms or /api/rooms/
	if path == "" || path == "/" {
		if r.Method != http.MethodGet {
			errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		a.ListRoomsHandler(w, r)
		return
	}

	path = strings.TrimPrefix(path, "/")

	// /api/rooms/{id}/export.pdf
	if roomID, ok := strings.CutSuffix(path, "/export.pdf"); ok {
		if r.Method != http.MethodGet {
			errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		a.ExportRoomHandler(w, r, roomID)
		return
	}

	// /api/rooms/{id}
	roomID := strings.TrimSuffix(path, "/")
	if roomID == "" {
		errorResponse(w, http.StatusBadRequest, "Room ID is required")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.GetRoomHandler(w, r, roomID)
	case http.MethodDelete:
		a.ClearRoomHandler(w, r, roomID)
	default:
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// WithCORS wraps a handler with the permissive CORS policy the browser
// client needs.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
