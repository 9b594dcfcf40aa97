// Package board holds the client-side canvas state: the ordered shape
// registry and the pointer/keyboard interaction machine that drives it.
package board

import "github.com/drawbridge-io/drawbridge/internal/geometry"

// Registry is the ordered, mutable collection of shapes one client session
// renders. It is fully derived state: discarded on disconnect and rebuilt by
// replaying the room's event log plus live events. It is owned by a single
// Editor and must not be shared.
type Registry struct {
	shapes []geometry.Shape
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append adds a shape on top of the stack.
func (r *Registry) Append(s geometry.Shape) {
	r.shapes = append(r.shapes, s)
}

// Len returns the number of shapes.
func (r *Registry) Len() int {
	return len(r.shapes)
}

// Shapes returns the shapes bottom-first. The slice is a copy; the shape
// values are safe to hold.
func (r *Registry) Shapes() []geometry.Shape {
	out := make([]geometry.Shape, len(r.shapes))
	copy(out, r.shapes)
	return out
}

// At returns the shape at index i.
func (r *Registry) At(i int) geometry.Shape {
	return r.shapes[i]
}

// SetAt replaces the shape at index i.
func (r *Registry) SetAt(i int, s geometry.Shape) {
	r.shapes[i] = s
}

// TopmostAt scans topmost-first and returns the first shape hit by the world
// point, with its index.
func (r *Registry) TopmostAt(p geometry.Point) (geometry.Shape, int, bool) {
	for i := len(r.shapes) - 1; i >= 0; i-- {
		if geometry.HitTest(r.shapes[i], p) {
			return r.shapes[i], i, true
		}
	}
	return nil, -1, false
}

// IndexOf returns the index of the shape with the given id, or -1.
func (r *Registry) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range r.shapes {
		if s.ShapeID() == id {
			return i
		}
	}
	return -1
}

// ReplaceByID swaps the shape carrying the same id. Returns false when no
// shape with that id exists; unknown updates are dropped, not appended.
func (r *Registry) ReplaceByID(s geometry.Shape) bool {
	i := r.IndexOf(s.ShapeID())
	if i < 0 {
		return false
	}
	r.shapes[i] = s
	return true
}

// RemoveByID deletes the shape with the given id, preserving order.
func (r *Registry) RemoveByID(id string) bool {
	i := r.IndexOf(id)
	if i < 0 {
		return false
	}
	r.shapes = append(r.shapes[:i], r.shapes[i+1:]...)
	return true
}

// RemoveAt deletes the shape at index i, preserving order.
func (r *Registry) RemoveAt(i int) {
	r.shapes = append(r.shapes[:i], r.shapes[i+1:]...)
}

// Reset replaces the whole registry, used when replaying a room's history.
func (r *Registry) Reset(shapes []geometry.Shape) {
	r.shapes = append([]geometry.Shape{}, shapes...)
}
