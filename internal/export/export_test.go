package export

import (
	"bytes"
	"testing"

	"github.com/drawbridge-io/drawbridge/internal/geometry"
)

func renderPDF(t *testing.T, shapes []geometry.Shape) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := PDF(&buf, "room-1", shapes); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	return buf.Bytes()
}

func TestPDFEveryShapeKind(t *testing.T) {
	shapes := []geometry.Shape{
		geometry.Rect{ID: "r", X: 0, Y: 0, Width: 100, Height: 50},
		geometry.Circle{ID: "c", StartX: 120, StartY: 0, EndX: 180, EndY: 60},
		geometry.Diamond{ID: "d", StartX: 200, StartY: 0, EndX: 260, EndY: 60},
		geometry.Line{ID: "l", StartX: 0, StartY: 100, EndX: 100, EndY: 150},
		geometry.Line{ID: "lb", StartX: 0, StartY: 160, EndX: 100, EndY: 160, BendX: 50, BendY: 200, HasBend: true},
		geometry.Arrow{ID: "a", FromX: 120, FromY: 100, ToX: 220, ToY: 150},
		geometry.FreePencil{
			ID:    "f",
			LastX: []float64{0, 10}, LastY: []float64{220, 225},
			CurrX: []float64{10, 20}, CurrY: []float64{225, 222},
		},
		geometry.Text{ID: "t", Text: "hello\nworld", X: 150, Y: 220, FontSize: 20},
	}

	out := renderPDF(t, shapes)
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:8])
	}
	if len(out) < 1000 {
		t.Fatalf("suspiciously small document: %d bytes", len(out))
	}
}

func TestPDFEmptyBoard(t *testing.T) {
	out := renderPDF(t, nil)
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("empty board did not produce a valid document")
	}
}

func TestPDFDegenerateShapes(t *testing.T) {
	// Zero-extent geometry must not blow up the projection.
	shapes := []geometry.Shape{
		geometry.Rect{ID: "r", X: 5, Y: 5, Width: 0, Height: 0},
		geometry.Line{ID: "l", StartX: 5, StartY: 5, EndX: 5, EndY: 5},
	}
	out := renderPDF(t, shapes)
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("degenerate shapes did not produce a valid document")
	}
}

func TestPDFRaggedStroke(t *testing.T) {
	// A stroke whose coordinate arrays disagree in length must render the
	// segments it has instead of indexing past the shorter arrays.
	shapes := []geometry.Shape{
		geometry.FreePencil{
			ID:    "f",
			CurrX: []float64{10, 20}, CurrY: []float64{5, 8},
			LastX: []float64{0}, LastY: []float64{0},
		},
	}
	out := renderPDF(t, shapes)
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("ragged stroke did not produce a valid document")
	}
}

func TestFitProjectionContainsBounds(t *testing.T) {
	shapes := []geometry.Shape{
		geometry.Rect{ID: "r", X: -500, Y: -300, Width: 2000, Height: 1400},
	}
	pr := fitProjection(shapes, 297, 210)

	for _, corner := range [][2]float64{{-500, -300}, {1500, 1100}} {
		x, y := pr.point(corner[0], corner[1])
		if x < pageMargin-0.01 || x > 297-pageMargin+0.01 ||
			y < pageMargin-0.01 || y > 210-pageMargin+0.01 {
			t.Fatalf("corner %v projected outside the page: (%v, %v)", corner, x, y)
		}
	}
}
