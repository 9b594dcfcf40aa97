// Package store persists the append-only room event log.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an update or erase addresses a shape id with
// no stored event in that room.
var ErrNotFound = errors.New("event not found")

// Store is the durable event log. Events are kept in creation order per
// room; replaying a room's log reconstructs its canvas.
type Store struct {
	db *sql.DB
}

// Event is one persisted row of a room's log. Message holds the serialized
// shape exactly as it arrived on the wire.
type Event struct {
	ID        int64     `json:"id"`
	RoomID    string    `json:"roomId"`
	ShapeID   string    `json:"-"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"-"`
}

// New opens (creating if needed) the event log at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Event log initialized at %s", dbPath)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle without running migrations.
// Used by tests that inject a mock driver.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT NOT NULL,
		shape_id TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chats_room_id ON chats(room_id);
	CREATE INDEX IF NOT EXISTS idx_chats_room_shape ON chats(room_id, shape_id);
	`

	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle so other services (session tokens) can
// share the same database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Append adds a new event to a room's log and returns its row id.
func (s *Store) Append(roomID, shapeID, userID, message string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO chats (room_id, shape_id, user_id, message) VALUES (?, ?, ?, ?)",
		roomID, shapeID, userID, message,
	)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return res.LastInsertId()
}

// UpdateByShape replaces the stored message of the event addressing shapeID
// in the room. Returns ErrNotFound when no such event exists.
func (s *Store) UpdateByShape(roomID, shapeID, message string) error {
	res, err := s.db.Exec(
		"UPDATE chats SET message = ? WHERE room_id = ? AND shape_id = ?",
		message, roomID, shapeID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EraseByShape deletes the event addressing shapeID in the room. Returns
// ErrNotFound when no such event exists.
func (s *Store) EraseByShape(roomID, shapeID string) error {
	res, err := s.db.Exec(
		"DELETE FROM chats WHERE room_id = ? AND shape_id = ?",
		roomID, shapeID,
	)
	if err != nil {
		return fmt.Errorf("erase event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOrdered returns a room's events in creation order.
func (s *Store) ListOrdered(roomID string) ([]Event, error) {
	rows, err := s.db.Query(
		"SELECT id, room_id, shape_id, user_id, message, created_at FROM chats WHERE room_id = ? ORDER BY id ASC",
		roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RoomID, &e.ShapeID, &e.UserID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of stored events in a room.
func (s *Store) CountEvents(roomID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM chats WHERE room_id = ?",
		roomID,
	).Scan(&count)
	return count, err
}

// ClearRoom deletes a room's entire log. Clearing a room with no events is
// not an error.
func (s *Store) ClearRoom(roomID string) error {
	if _, err := s.db.Exec("DELETE FROM chats WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("clear room: %w", err)
	}
	return nil
}

// Stats returns aggregate counters for the stats endpoint.
func (s *Store) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var roomCount int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT room_id) FROM chats").Scan(&roomCount); err != nil {
		return nil, err
	}
	stats["room_count"] = roomCount

	var eventCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&eventCount); err != nil {
		return nil, err
	}
	stats["event_count"] = eventCount

	return stats, nil
}
