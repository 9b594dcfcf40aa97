// Package export renders a room's shapes into a vector PDF.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/drawbridge-io/drawbridge/internal/geometry"
)

const (
	pageMargin   = 15.0 // mm
	headerHeight = 10.0 // mm
	arrowheadLen = 3.0  // mm, fixed size regardless of zoom
)

// PDF writes a single-page A4 landscape rendering of the shapes. The world
// extent of the board is fit to the page; an empty board still produces a
// valid document with just the header.
func PDF(w io.Writer, roomID string, shapes []geometry.Shape) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(pageMargin, pageMargin-4, fmt.Sprintf("Room %s", roomID))
	pdf.SetLineWidth(0.3)
	pdf.SetDrawColor(0, 0, 0)

	pageW, pageH := pdf.GetPageSize()
	project := fitProjection(shapes, pageW, pageH)

	for _, s := range shapes {
		drawShape(pdf, s, project)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// projection maps world coordinates onto the page.
type projection struct {
	scale   float64
	offsetX float64
	offsetY float64
}

func (p projection) point(x, y float64) (float64, float64) {
	return p.offsetX + x*p.scale, p.offsetY + y*p.scale
}

// fitProjection computes the uniform scale placing the union of all shape
// bounds inside the page margins.
func fitProjection(shapes []geometry.Shape, pageW, pageH float64) projection {
	if len(shapes) == 0 {
		return projection{scale: 1, offsetX: pageMargin, offsetY: pageMargin + headerHeight}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range shapes {
		b := geometry.BoundingBox(s)
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.X+b.Width)
		maxY = math.Max(maxY, b.Y+b.Height)
	}

	availW := pageW - 2*pageMargin
	availH := pageH - 2*pageMargin - headerHeight
	worldW := maxX - minX
	worldH := maxY - minY

	scale := 1.0
	if worldW > 0 || worldH > 0 {
		scale = math.Min(safeRatio(availW, worldW), safeRatio(availH, worldH))
	}
	return projection{
		scale:   scale,
		offsetX: pageMargin - minX*scale,
		offsetY: pageMargin + headerHeight - minY*scale,
	}
}

func safeRatio(avail, world float64) float64 {
	if world <= 0 {
		return 1
	}
	return avail / world
}

func drawShape(pdf *gofpdf.Fpdf, s geometry.Shape, pr projection) {
	switch s := s.(type) {
	case geometry.Rect:
		b := geometry.BoundingBox(s)
		x, y := pr.point(b.X, b.Y)
		pdf.Rect(x, y, b.Width*pr.scale, b.Height*pr.scale, "D")
	case geometry.Circle:
		b := geometry.BoundingBox(s)
		cx, cy := pr.point(b.X+b.Width/2, b.Y+b.Height/2)
		pdf.Ellipse(cx, cy, b.Width/2*pr.scale, b.Height/2*pr.scale, 0, "D")
	case geometry.Diamond:
		b := geometry.BoundingBox(s)
		left, midY := pr.point(b.X, b.Y+b.Height/2)
		midX, top := pr.point(b.X+b.Width/2, b.Y)
		right, _ := pr.point(b.X+b.Width, b.Y)
		_, bottom := pr.point(b.X, b.Y+b.Height)
		pdf.Polygon([]gofpdf.PointType{
			{X: midX, Y: top},
			{X: right, Y: midY},
			{X: midX, Y: bottom},
			{X: left, Y: midY},
		}, "D")
	case geometry.Line:
		drawCurve(pdf, pr, s.StartX, s.StartY, s.EndX, s.EndY, s.BendX, s.BendY, s.HasBend)
	case geometry.Arrow:
		tipX, tipY := drawCurve(pdf, pr, s.FromX, s.FromY, s.ToX, s.ToY, s.BendX, s.BendY, s.HasBend)
		drawArrowhead(pdf, pr, s, tipX, tipY)
	case geometry.FreePencil:
		for i := 0; i < strokeSegments(s); i++ {
			x1, y1 := pr.point(s.LastX[i], s.LastY[i])
			x2, y2 := pr.point(s.CurrX[i], s.CurrY[i])
			pdf.Line(x1, y1, x2, y2)
		}
	case geometry.Text:
		drawText(pdf, pr, s)
	}
}

// strokeSegments is the number of complete segments across the stroke's
// four coordinate arrays.
func strokeSegments(s geometry.FreePencil) int {
	n := len(s.CurrX)
	for _, arr := range [][]float64{s.CurrY, s.LastX, s.LastY} {
		if len(arr) < n {
			n = len(arr)
		}
	}
	return n
}

// drawCurve renders a straight or bent two-leg curve and returns the page
// coordinates of its far endpoint.
func drawCurve(pdf *gofpdf.Fpdf, pr projection, x1, y1, x2, y2, bx, by float64, bent bool) (float64, float64) {
	sx, sy := pr.point(x1, y1)
	ex, ey := pr.point(x2, y2)
	if bent {
		mx, my := pr.point(bx, by)
		pdf.Line(sx, sy, mx, my)
		pdf.Line(mx, my, ex, ey)
	} else {
		pdf.Line(sx, sy, ex, ey)
	}
	return ex, ey
}

// drawArrowhead adds the two barbs at the arrow tip, angled off the
// incoming leg.
func drawArrowhead(pdf *gofpdf.Fpdf, pr projection, a geometry.Arrow, tipX, tipY float64) {
	fromX, fromY := a.FromX, a.FromY
	if a.HasBend {
		fromX, fromY = a.BendX, a.BendY
	}
	px, py := pr.point(fromX, fromY)
	angle := math.Atan2(tipY-py, tipX-px)
	for _, da := range []float64{math.Pi / 6, -math.Pi / 6} {
		bx := tipX - arrowheadLen*math.Cos(angle+da)
		by := tipY - arrowheadLen*math.Sin(angle+da)
		pdf.Line(tipX, tipY, bx, by)
	}
}

func drawText(pdf *gofpdf.Fpdf, pr projection, t geometry.Text) {
	size := t.FontSize
	if size == 0 {
		size = geometry.DefaultFontSize
	}
	// World units map to mm through the projection; gofpdf wants points.
	ptSize := size * pr.scale * 72 / 25.4
	if ptSize < 1 {
		ptSize = 1
	}
	pdf.SetFont("Helvetica", "", ptSize)
	lineStep := size * pr.scale
	x, y := pr.point(t.X, t.Y)
	for i, line := range strings.Split(t.Text, "\n") {
		pdf.Text(x, y+float64(i+1)*lineStep, line)
	}
}
