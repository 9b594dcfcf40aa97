package geometry

import (
	"encoding/json"
	"fmt"
)

// wireShape is the JSON envelope for every shape variant. Numeric fields are
// pointers so that explicit zeros survive the round trip while absent fields
// stay absent.
type wireShape struct {
	ID   string `json:"id,omitempty"`
	Type Kind   `json:"type"`

	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	StartX *float64 `json:"startX,omitempty"`
	StartY *float64 `json:"startY,omitempty"`
	EndX   *float64 `json:"endX,omitempty"`
	EndY   *float64 `json:"endY,omitempty"`

	FromX *float64 `json:"fromX,omitempty"`
	FromY *float64 `json:"fromY,omitempty"`
	ToX   *float64 `json:"toX,omitempty"`
	ToY   *float64 `json:"toY,omitempty"`

	BendX *float64 `json:"bendX,omitempty"`
	BendY *float64 `json:"bendY,omitempty"`

	CurrX []float64 `json:"currX,omitempty"`
	CurrY []float64 `json:"currY,omitempty"`
	LastX []float64 `json:"lastX,omitempty"`
	LastY []float64 `json:"lastY,omitempty"`

	Text     *string  `json:"text,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
}

func fptr(v float64) *float64 { return &v }

func fval(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Marshal serializes a shape into its wire JSON form.
func Marshal(s Shape) ([]byte, error) {
	w := wireShape{ID: s.ShapeID(), Type: s.Kind()}
	switch s := s.(type) {
	case Rect:
		w.X, w.Y = fptr(s.X), fptr(s.Y)
		w.Width, w.Height = fptr(s.Width), fptr(s.Height)
	case Circle:
		w.StartX, w.StartY = fptr(s.StartX), fptr(s.StartY)
		w.EndX, w.EndY = fptr(s.EndX), fptr(s.EndY)
	case Diamond:
		w.StartX, w.StartY = fptr(s.StartX), fptr(s.StartY)
		w.EndX, w.EndY = fptr(s.EndX), fptr(s.EndY)
	case Line:
		w.StartX, w.StartY = fptr(s.StartX), fptr(s.StartY)
		w.EndX, w.EndY = fptr(s.EndX), fptr(s.EndY)
		if s.HasBend {
			w.BendX, w.BendY = fptr(s.BendX), fptr(s.BendY)
		}
	case Arrow:
		w.FromX, w.FromY = fptr(s.FromX), fptr(s.FromY)
		w.ToX, w.ToY = fptr(s.ToX), fptr(s.ToY)
		if s.HasBend {
			w.BendX, w.BendY = fptr(s.BendX), fptr(s.BendY)
		}
	case FreePencil:
		w.CurrX, w.CurrY = s.CurrX, s.CurrY
		w.LastX, w.LastY = s.LastX, s.LastY
	case Text:
		text := s.Text
		w.Text = &text
		w.X, w.Y = fptr(s.X), fptr(s.Y)
		if s.FontSize > 0 {
			w.FontSize = fptr(s.FontSize)
		}
	}
	return json.Marshal(w)
}

// Unmarshal decodes a wire JSON shape. Absent numeric fields decode as zero;
// an unknown type tag is an error.
func Unmarshal(data []byte) (Shape, error) {
	var w wireShape
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode shape: %w", err)
	}
	switch w.Type {
	case KindRect:
		return Rect{
			ID: w.ID,
			X:  fval(w.X), Y: fval(w.Y),
			Width: fval(w.Width), Height: fval(w.Height),
		}, nil
	case KindCircle:
		return Circle{
			ID:     w.ID,
			StartX: fval(w.StartX), StartY: fval(w.StartY),
			EndX: fval(w.EndX), EndY: fval(w.EndY),
		}, nil
	case KindDiamond:
		return Diamond{
			ID:     w.ID,
			StartX: fval(w.StartX), StartY: fval(w.StartY),
			EndX: fval(w.EndX), EndY: fval(w.EndY),
		}, nil
	case KindLine:
		s := Line{
			ID:     w.ID,
			StartX: fval(w.StartX), StartY: fval(w.StartY),
			EndX: fval(w.EndX), EndY: fval(w.EndY),
		}
		if w.BendX != nil && w.BendY != nil {
			s.BendX, s.BendY = *w.BendX, *w.BendY
			s.HasBend = true
		}
		return s, nil
	case KindArrow:
		s := Arrow{
			ID:    w.ID,
			FromX: fval(w.FromX), FromY: fval(w.FromY),
			ToX: fval(w.ToX), ToY: fval(w.ToY),
		}
		if w.BendX != nil && w.BendY != nil {
			s.BendX, s.BendY = *w.BendX, *w.BendY
			s.HasBend = true
		}
		return s, nil
	case KindFreePencil:
		// The four arrays index each other; a stroke that arrives ragged or
		// empty would panic every consumer that walks its segments.
		n := len(w.CurrX)
		if n == 0 || len(w.CurrY) != n || len(w.LastX) != n || len(w.LastY) != n {
			return nil, fmt.Errorf("freePencil coordinate arrays inconsistent: %d/%d/%d/%d",
				len(w.CurrX), len(w.CurrY), len(w.LastX), len(w.LastY))
		}
		return FreePencil{
			ID:    w.ID,
			CurrX: w.CurrX, CurrY: w.CurrY,
			LastX: w.LastX, LastY: w.LastY,
		}, nil
	case KindText:
		var text string
		if w.Text != nil {
			text = *w.Text
		}
		return Text{
			ID:   w.ID,
			Text: text,
			X:    fval(w.X), Y: fval(w.Y),
			FontSize: fval(w.FontSize),
		}, nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", w.Type)
	}
}
