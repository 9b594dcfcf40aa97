package geometry

import "math"

// HitThreshold is the world-space distance within which a point counts as
// touching a line or arrow. It is deliberately not scaled by zoom: hit
// testing feels tighter at high zoom and looser at low zoom.
const HitThreshold = 5

// HandleKey names a selection handle.
type HandleKey string

const (
	HandleTopLeft     HandleKey = "top-left"
	HandleTopRight    HandleKey = "top-right"
	HandleBottomLeft  HandleKey = "bottom-left"
	HandleBottomRight HandleKey = "bottom-right"

	HandleStart HandleKey = "start"
	HandleEnd   HandleKey = "end"
	HandleFrom  HandleKey = "from"
	HandleTo    HandleKey = "to"
	HandleBend  HandleKey = "bend"
)

// Handle is a draggable control point of a selected shape.
type Handle struct {
	Key  HandleKey
	X, Y float64
}

// BoundingBox returns the normalized axis-aligned bounding box of a shape.
// For lines and arrows the box spans start, end and the bend point if one
// exists. For freehand strokes it spans every recorded coordinate. For text
// the width comes from the measured font metrics and the height is the font
// size, with the baseline at Y.
func BoundingBox(s Shape) Box {
	switch s := s.(type) {
	case Rect:
		return boxOf(
			[]float64{s.X, s.X + s.Width},
			[]float64{s.Y, s.Y + s.Height},
		)
	case Circle:
		return boxOf([]float64{s.StartX, s.EndX}, []float64{s.StartY, s.EndY})
	case Diamond:
		return boxOf([]float64{s.StartX, s.EndX}, []float64{s.StartY, s.EndY})
	case Line:
		xs := []float64{s.StartX, s.EndX}
		ys := []float64{s.StartY, s.EndY}
		if s.HasBend {
			xs = append(xs, s.BendX)
			ys = append(ys, s.BendY)
		}
		return boxOf(xs, ys)
	case Arrow:
		xs := []float64{s.FromX, s.ToX}
		ys := []float64{s.FromY, s.ToY}
		if s.HasBend {
			xs = append(xs, s.BendX)
			ys = append(ys, s.BendY)
		}
		return boxOf(xs, ys)
	case FreePencil:
		if len(s.CurrX) == 0 && len(s.LastX) == 0 {
			return Box{}
		}
		xs := append(append([]float64{}, s.CurrX...), s.LastX...)
		ys := append(append([]float64{}, s.CurrY...), s.LastY...)
		return boxOf(xs, ys)
	case Text:
		size := s.fontSize()
		return Box{
			X:      s.X,
			Y:      s.Y - size,
			Width:  MeasureText(s.Text, size),
			Height: size,
		}
	}
	return Box{}
}

// HitTest reports whether the point touches the shape. Lines and arrows use a
// distance-to-segment test against each leg (two legs when bent); everything
// else uses bounding-box containment.
func HitTest(s Shape, p Point) bool {
	switch s := s.(type) {
	case Line:
		if s.HasBend {
			return distanceToSegment(p, Pt(s.StartX, s.StartY), Pt(s.BendX, s.BendY)) < HitThreshold ||
				distanceToSegment(p, Pt(s.BendX, s.BendY), Pt(s.EndX, s.EndY)) < HitThreshold
		}
		return distanceToSegment(p, Pt(s.StartX, s.StartY), Pt(s.EndX, s.EndY)) < HitThreshold
	case Arrow:
		if s.HasBend {
			return distanceToSegment(p, Pt(s.FromX, s.FromY), Pt(s.BendX, s.BendY)) < HitThreshold ||
				distanceToSegment(p, Pt(s.BendX, s.BendY), Pt(s.ToX, s.ToY)) < HitThreshold
		}
		return distanceToSegment(p, Pt(s.FromX, s.FromY), Pt(s.ToX, s.ToY)) < HitThreshold
	default:
		return BoundingBox(s).Contains(p)
	}
}

// SelectionHandles returns the shape's handles in a stable order. Rectangular
// shapes expose the four bounding-box corners. Lines and arrows expose their
// two endpoints plus a bend handle, which defaults to the segment midpoint
// until an explicit bend exists.
func SelectionHandles(s Shape) []Handle {
	switch s := s.(type) {
	case Line:
		h := []Handle{
			{Key: HandleStart, X: s.StartX, Y: s.StartY},
			{Key: HandleEnd, X: s.EndX, Y: s.EndY},
		}
		if s.HasBend {
			h = append(h, Handle{Key: HandleBend, X: s.BendX, Y: s.BendY})
		} else {
			h = append(h, Handle{Key: HandleBend, X: (s.StartX + s.EndX) / 2, Y: (s.StartY + s.EndY) / 2})
		}
		return h
	case Arrow:
		h := []Handle{
			{Key: HandleFrom, X: s.FromX, Y: s.FromY},
			{Key: HandleTo, X: s.ToX, Y: s.ToY},
		}
		if s.HasBend {
			h = append(h, Handle{Key: HandleBend, X: s.BendX, Y: s.BendY})
		} else {
			h = append(h, Handle{Key: HandleBend, X: (s.FromX + s.ToX) / 2, Y: (s.FromY + s.ToY) / 2})
		}
		return h
	default:
		b := BoundingBox(s)
		return []Handle{
			{Key: HandleTopLeft, X: b.X, Y: b.Y},
			{Key: HandleTopRight, X: b.X + b.Width, Y: b.Y},
			{Key: HandleBottomLeft, X: b.X, Y: b.Y + b.Height},
			{Key: HandleBottomRight, X: b.X + b.Width, Y: b.Y + b.Height},
		}
	}
}

// Resize returns the shape reshaped by dragging the given handle to p.
// Unknown handle keys for a shape leave it unchanged.
func Resize(s Shape, handle HandleKey, p Point) Shape {
	switch s := s.(type) {
	case Rect:
		b := BoundingBox(s)
		right := b.X + b.Width
		bottom := b.Y + b.Height
		switch handle {
		case HandleTopLeft:
			s.X, s.Y = p.X, p.Y
			s.Width, s.Height = right-p.X, bottom-p.Y
		case HandleTopRight:
			s.X, s.Y = b.X, p.Y
			s.Width, s.Height = p.X-b.X, bottom-p.Y
		case HandleBottomLeft:
			s.X, s.Y = p.X, b.Y
			s.Width, s.Height = right-p.X, p.Y-b.Y
		case HandleBottomRight:
			s.X, s.Y = b.X, b.Y
			s.Width, s.Height = p.X-b.X, p.Y-b.Y
		}
		return s
	case Circle:
		s.StartX, s.StartY, s.EndX, s.EndY = resizeCorners(handle, p, s.StartX, s.StartY, s.EndX, s.EndY)
		return s
	case Diamond:
		s.StartX, s.StartY, s.EndX, s.EndY = resizeCorners(handle, p, s.StartX, s.StartY, s.EndX, s.EndY)
		return s
	case Line:
		switch handle {
		case HandleStart:
			s.StartX, s.StartY = p.X, p.Y
		case HandleEnd:
			s.EndX, s.EndY = p.X, p.Y
		case HandleBend:
			s.BendX, s.BendY = p.X, p.Y
			s.HasBend = true
		}
		return s
	case Arrow:
		switch handle {
		case HandleFrom:
			s.FromX, s.FromY = p.X, p.Y
		case HandleTo:
			s.ToX, s.ToY = p.X, p.Y
		case HandleBend:
			s.BendX, s.BendY = p.X, p.Y
			s.HasBend = true
		}
		return s
	case FreePencil:
		return resizeFreePencil(s, handle, p)
	case Text:
		return resizeText(s, handle, p)
	}
	return s
}

// resizeCorners applies a corner drag to a shape stored as two corner points.
func resizeCorners(handle HandleKey, p Point, startX, startY, endX, endY float64) (float64, float64, float64, float64) {
	switch handle {
	case HandleTopLeft:
		startX, startY = p.X, p.Y
	case HandleTopRight:
		startY, endX = p.Y, p.X
	case HandleBottomLeft:
		startX, endY = p.X, p.Y
	case HandleBottomRight:
		endX, endY = p.X, p.Y
	}
	return startX, startY, endX, endY
}

// resizeFreePencil rescales every recorded point about the stroke's current
// bounding box, with independent X and Y scale factors derived from the
// dragged corner. Degenerate extents keep a scale of 1 on that axis.
func resizeFreePencil(s FreePencil, handle HandleKey, p Point) FreePencil {
	b := BoundingBox(s)
	newLeft, newTop := b.X, b.Y
	newRight, newBottom := b.X+b.Width, b.Y+b.Height
	switch handle {
	case HandleTopLeft:
		newLeft, newTop = p.X, p.Y
	case HandleTopRight:
		newRight, newTop = p.X, p.Y
	case HandleBottomLeft:
		newLeft, newBottom = p.X, p.Y
	case HandleBottomRight:
		newRight, newBottom = p.X, p.Y
	default:
		return s
	}
	scaleX, scaleY := 1.0, 1.0
	if b.Width != 0 {
		scaleX = (newRight - newLeft) / b.Width
	}
	if b.Height != 0 {
		scaleY = (newBottom - newTop) / b.Height
	}
	mapX := func(xs []float64) []float64 {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = newLeft + (x-b.X)*scaleX
		}
		return out
	}
	mapY := func(ys []float64) []float64 {
		out := make([]float64, len(ys))
		for i, y := range ys {
			out[i] = newTop + (y-b.Y)*scaleY
		}
		return out
	}
	s.CurrX, s.CurrY = mapX(s.CurrX), mapY(s.CurrY)
	s.LastX, s.LastY = mapX(s.LastX), mapY(s.LastY)
	return s
}

// resizeText derives a new font size from the vertical delta between the
// dragged handle and the text baseline, clamped to MinFontSize. Left-side
// handles also move the anchor; bottom-side handles move the baseline.
func resizeText(s Text, handle HandleKey, p Point) Text {
	size := s.fontSize()
	bottom := s.Y
	top := bottom - size
	switch handle {
	case HandleTopLeft:
		s.FontSize = math.Max(bottom-p.Y, MinFontSize)
		s.X = p.X
	case HandleTopRight:
		s.FontSize = math.Max(bottom-p.Y, MinFontSize)
	case HandleBottomLeft:
		s.FontSize = math.Max(p.Y-top, MinFontSize)
		s.X = p.X
		s.Y = p.Y
	case HandleBottomRight:
		s.FontSize = math.Max(p.Y-top, MinFontSize)
		s.Y = p.Y
	}
	return s
}

// Translate returns the shape shifted by (dx, dy). Lines and arrows that have
// no bend yet record a synthetic bend offset so that later reshaping through
// the bend handle stays consistent after the move; this makes translate
// asymmetric for unbent curves (the synthesized bend joins the bounding box).
func Translate(s Shape, dx, dy float64) Shape {
	switch s := s.(type) {
	case Rect:
		s.X += dx
		s.Y += dy
		return s
	case Circle:
		s.StartX += dx
		s.StartY += dy
		s.EndX += dx
		s.EndY += dy
		return s
	case Diamond:
		s.StartX += dx
		s.StartY += dy
		s.EndX += dx
		s.EndY += dy
		return s
	case Line:
		s.StartX += dx
		s.StartY += dy
		s.EndX += dx
		s.EndY += dy
		if s.HasBend {
			s.BendX += dx
			s.BendY += dy
		} else {
			s.BendX, s.BendY = dx, dy
			s.HasBend = true
		}
		return s
	case Arrow:
		s.FromX += dx
		s.FromY += dy
		s.ToX += dx
		s.ToY += dy
		if s.HasBend {
			s.BendX += dx
			s.BendY += dy
		} else {
			s.BendX, s.BendY = dx, dy
			s.HasBend = true
		}
		return s
	case FreePencil:
		shift := func(vs []float64, d float64) []float64 {
			out := make([]float64, len(vs))
			for i, v := range vs {
				out[i] = v + d
			}
			return out
		}
		s.CurrX = shift(s.CurrX, dx)
		s.CurrY = shift(s.CurrY, dy)
		s.LastX = shift(s.LastX, dx)
		s.LastY = shift(s.LastY, dy)
		return s
	case Text:
		s.X += dx
		s.Y += dy
		return s
	}
	return s
}
