package board

import (
	"testing"

	"github.com/drawbridge-io/drawbridge/internal/geometry"
)

func TestRegistryOrderAndTopmost(t *testing.T) {
	r := NewRegistry()
	r.Append(geometry.Rect{ID: "a", X: 0, Y: 0, Width: 100, Height: 100})
	r.Append(geometry.Rect{ID: "b", X: 50, Y: 50, Width: 100, Height: 100})

	s, i, ok := r.TopmostAt(geometry.Pt(75, 75))
	if !ok {
		t.Fatal("expected a hit in the overlap region")
	}
	if s.ShapeID() != "b" || i != 1 {
		t.Fatalf("topmost = %q at %d, want b at 1", s.ShapeID(), i)
	}

	s, _, ok = r.TopmostAt(geometry.Pt(10, 10))
	if !ok || s.ShapeID() != "a" {
		t.Fatalf("expected a outside the overlap, got %v %v", s, ok)
	}

	if _, _, ok := r.TopmostAt(geometry.Pt(500, 500)); ok {
		t.Fatal("hit reported in empty space")
	}
}

func TestRegistryReplaceByID(t *testing.T) {
	r := NewRegistry()
	r.Append(geometry.Rect{ID: "a", Width: 10, Height: 10})
	r.Append(geometry.Circle{ID: "b", EndX: 5, EndY: 5})

	if !r.ReplaceByID(geometry.Rect{ID: "a", X: 99, Width: 10, Height: 10}) {
		t.Fatal("replace of known id failed")
	}
	got := r.At(0).(geometry.Rect)
	if got.X != 99 {
		t.Fatalf("X = %v after replace, want 99", got.X)
	}

	// An update for an id this client never saw must not append.
	if r.ReplaceByID(geometry.Rect{ID: "ghost"}) {
		t.Fatal("replace of unknown id reported success")
	}
	if r.Len() != 2 {
		t.Fatalf("len = %d after unknown-id replace, want 2", r.Len())
	}
}

func TestRegistryRemoveByID(t *testing.T) {
	r := NewRegistry()
	r.Append(geometry.Rect{ID: "a"})
	r.Append(geometry.Rect{ID: "b"})
	r.Append(geometry.Rect{ID: "c"})

	if !r.RemoveByID("b") {
		t.Fatal("remove of known id failed")
	}
	if r.RemoveByID("b") {
		t.Fatal("second remove reported success")
	}
	if r.Len() != 2 || r.At(0).ShapeID() != "a" || r.At(1).ShapeID() != "c" {
		t.Fatalf("unexpected registry contents after remove: %v", r.Shapes())
	}
}

func TestRegistryShapesIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Append(geometry.Rect{ID: "a"})
	shapes := r.Shapes()
	shapes[0] = geometry.Rect{ID: "tampered"}
	if r.At(0).ShapeID() != "a" {
		t.Fatal("mutating the snapshot changed the registry")
	}
}
