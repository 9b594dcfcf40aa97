package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "drawbridge-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestAppendAndListOrdered(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	messages := []struct {
		shapeID string
		message string
	}{
		{"s1", `{"id":"s1","type":"rect","x":1,"y":1,"width":2,"height":2}`},
		{"s2", `{"id":"s2","type":"line","startX":0,"startY":0,"endX":5,"endY":5}`},
		{"s3", `{"id":"s3","type":"text","text":"hi","x":0,"y":0}`},
	}
	for _, m := range messages {
		if _, err := s.Append("r1", m.shapeID, "u1", m.message); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	events, err := s.ListOrdered("r1")
	if err != nil {
		t.Fatalf("ListOrdered: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.ShapeID != messages[i].shapeID {
			t.Errorf("event %d shape id = %s, want %s (order must be creation order)", i, e.ShapeID, messages[i].shapeID)
		}
		if e.UserID != "u1" {
			t.Errorf("event %d user id = %s", i, e.UserID)
		}
	}

	// Other rooms are unaffected.
	other, err := s.ListOrdered("r2")
	if err != nil {
		t.Fatalf("ListOrdered: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected empty log for r2, got %d events", len(other))
	}
}

func TestUpdateByShape(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := s.Append("r1", "s1", "u1", `{"id":"s1","type":"rect","x":1,"y":1,"width":2,"height":2}`); err != nil {
		t.Fatalf("Append: %v", err)
	}

	updated := `{"id":"s1","type":"rect","x":9,"y":9,"width":4,"height":4}`
	if err := s.UpdateByShape("r1", "s1", updated); err != nil {
		t.Fatalf("UpdateByShape: %v", err)
	}

	events, _ := s.ListOrdered("r1")
	if len(events) != 1 || events[0].Message != updated {
		t.Errorf("update not applied: %+v", events)
	}

	err := s.UpdateByShape("r1", "missing", updated)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	// Wrong room is also not found.
	err = s.UpdateByShape("r2", "s1", updated)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong room, got %v", err)
	}
}

func TestEraseByShape(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	s.Append("r1", "a", "u1", `{"id":"a","type":"rect"}`)
	s.Append("r1", "b", "u1", `{"id":"b","type":"rect"}`)

	if err := s.EraseByShape("r1", "a"); err != nil {
		t.Fatalf("EraseByShape: %v", err)
	}

	events, _ := s.ListOrdered("r1")
	if len(events) != 1 || events[0].ShapeID != "b" {
		t.Errorf("expected only b to remain, got %+v", events)
	}

	if err := s.EraseByShape("r1", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second erase should be ErrNotFound, got %v", err)
	}
}

func TestCountAndStats(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for i := 0; i < 4; i++ {
		s.Append("r1", string(rune('a'+i)), "u1", `{"type":"rect"}`)
	}
	s.Append("r2", "z", "u2", `{"type":"rect"}`)

	count, err := s.CountEvents("r1")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["room_count"].(int) != 2 {
		t.Errorf("room_count = %v, want 2", stats["room_count"])
	}
	if stats["event_count"].(int) != 5 {
		t.Errorf("event_count = %v, want 5", stats["event_count"])
	}
}
