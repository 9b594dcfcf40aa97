// Package view maps device coordinates to the logical drawing plane under
// pan and zoom.
package view

import "github.com/drawbridge-io/drawbridge/internal/geometry"

// MinZoom is the zoom floor; zooming out stops here.
const MinZoom = 0.1

// zoomStep is the multiplicative change applied per wheel notch.
const zoomStep = 0.1

// Transform holds the current pan/zoom state of a canvas.
type Transform struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64

	panning    bool
	panStartX  float64
	panStartY  float64
	panOffsetX float64
	panOffsetY float64
}

// NewTransform returns an identity transform.
func NewTransform() *Transform {
	return &Transform{Zoom: 1}
}

// ScreenToWorld converts a device-space point to world coordinates.
func (t *Transform) ScreenToWorld(sx, sy float64) geometry.Point {
	return geometry.Point{
		X: (sx - t.OffsetX) / t.Zoom,
		Y: (sy - t.OffsetY) / t.Zoom,
	}
}

// Wheel applies one wheel notch: zoom in when deltaY is negative, out when
// positive, by 10% either way. The offsets are recomputed so the canvas
// center stays fixed; this is intentionally not pointer-anchored zoom.
func (t *Transform) Wheel(deltaY, canvasWidth, canvasHeight float64) {
	scale := 1 + zoomStep
	if deltaY >= 0 {
		scale = 1 - zoomStep
	}
	newZoom := t.Zoom * scale
	if newZoom < MinZoom {
		newZoom = MinZoom
	}

	centerX := canvasWidth / 2
	centerY := canvasHeight / 2
	t.OffsetX = centerX - (centerX-t.OffsetX)*(newZoom/t.Zoom)
	t.OffsetY = centerY - (centerY-t.OffsetY)*(newZoom/t.Zoom)
	t.Zoom = newZoom
}

// StartPan snapshots the current offsets at the drag origin.
func (t *Transform) StartPan(sx, sy float64) {
	t.panning = true
	t.panStartX, t.panStartY = sx, sy
	t.panOffsetX, t.panOffsetY = t.OffsetX, t.OffsetY
}

// Pan moves the viewport by the drag delta from the snapshot. It does
// nothing unless a pan is in progress.
func (t *Transform) Pan(sx, sy float64) {
	if !t.panning {
		return
	}
	t.OffsetX = t.panOffsetX + (sx - t.panStartX)
	t.OffsetY = t.panOffsetY + (sy - t.panStartY)
}

// EndPan finishes the drag gesture.
func (t *Transform) EndPan() {
	t.panning = false
}

// Panning reports whether a pan drag is in progress.
func (t *Transform) Panning() bool {
	return t.panning
}
