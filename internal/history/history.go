// Package history loads a room's persisted event log over HTTP and rebuilds
// it into the shape list a joining client starts from.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/drawbridge-io/drawbridge/internal/geometry"
)

const fetchTimeout = 10 * time.Second

// Record mirrors one entry of the GET /chats/{roomId} response.
type Record struct {
	ID      int64  `json:"id"`
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Fetcher retrieves room histories from a relay server.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher creates a fetcher against the server's HTTP base URL, e.g.
// "http://localhost:8080".
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

// Load fetches and rebuilds the history of one room. Any failure, network
// or decode, yields an empty board rather than an error: a client that
// cannot load history still joins the room.
func (f *Fetcher) Load(ctx context.Context, roomID string) []geometry.Shape {
	records, err := f.fetch(ctx, roomID)
	if err != nil {
		log.Printf("history load for room %s failed, starting empty: %v", roomID, err)
		return nil
	}
	return Rebuild(records)
}

func (f *Fetcher) fetch(ctx context.Context, roomID string) ([]Record, error) {
	u := f.baseURL + "/chats/" + url.PathEscape(roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request returned %s", resp.Status)
	}
	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return records, nil
}

// Rebuild replays an ordered event log into shapes. The server stores the
// log already consolidated (updates rewritten in place, erased rows gone),
// so replay is a straight decode of each entry. Undecodable entries are
// skipped, not fatal: one bad row must not blank the whole board.
func Rebuild(records []Record) []geometry.Shape {
	shapes := make([]geometry.Shape, 0, len(records))
	for _, r := range records {
		s, err := geometry.Unmarshal([]byte(r.Message))
		if err != nil {
			log.Printf("skipping history entry %d: %v", r.ID, err)
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes
}
