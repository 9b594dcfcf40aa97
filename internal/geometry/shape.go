// Package geometry implements the shape model shared by the canvas editor and
// the relay: a closed set of typed shapes plus the pure operations on them
// (bounding boxes, hit tests, selection handles, resize and translate).
//
// All operations are side-effect free: they take shape values and return new
// shape values. Coordinates are world-space float64 throughout.
package geometry

// Kind identifies a shape variant on the wire.
type Kind string

const (
	KindRect       Kind = "rect"
	KindCircle     Kind = "circle"
	KindDiamond    Kind = "diamond"
	KindLine       Kind = "line"
	KindArrow      Kind = "arrow"
	KindFreePencil Kind = "freePencil"
	KindText       Kind = "text"
)

// DefaultFontSize is used for text shapes that never had an explicit size.
const DefaultFontSize = 20

// MinFontSize is the floor applied when resizing text.
const MinFontSize = 10

// Shape is the closed union of drawable shapes. Only the types in this
// package implement it, so a type switch over all variants is exhaustive.
//
// A persisted shape carries a stable id assigned at creation; ephemeral
// previews have an empty id.
type Shape interface {
	Kind() Kind
	ShapeID() string
	// WithID returns a copy of the shape carrying the given id.
	WithID(id string) Shape

	sealed()
}

// Rect is an axis-aligned rectangle anchored at (X, Y). Width and Height may
// be negative while drawing right-to-left or bottom-to-top.
type Rect struct {
	ID     string
	X, Y   float64
	Width  float64
	Height float64
}

// Circle is an ellipse given by the two corners of its bounding rectangle.
type Circle struct {
	ID             string
	StartX, StartY float64
	EndX, EndY     float64
}

// Diamond is a rhombus inscribed in the rectangle spanned by its two corners.
type Diamond struct {
	ID             string
	StartX, StartY float64
	EndX, EndY     float64
}

// Line is a segment from start to end, optionally bent through a control
// point into a quadratic curve.
type Line struct {
	ID             string
	StartX, StartY float64
	EndX, EndY     float64
	BendX, BendY   float64
	HasBend        bool
}

// Arrow is a directed segment with an arrowhead at the destination,
// optionally bent like Line.
type Arrow struct {
	ID           string
	FromX, FromY float64
	ToX, ToY     float64
	BendX, BendY float64
	HasBend      bool
}

// FreePencil is a freehand stroke recorded segment by segment: segment i runs
// from (LastX[i], LastY[i]) to (CurrX[i], CurrY[i]). Keeping individual
// segments rather than a polyline lets replay redraw the stroke exactly as it
// was captured.
type FreePencil struct {
	ID           string
	CurrX, CurrY []float64
	LastX, LastY []float64
}

// Text is a text block whose (X, Y) is the baseline origin of the first line.
type Text struct {
	ID       string
	Text     string
	X, Y     float64
	FontSize float64
}

func (s Rect) Kind() Kind       { return KindRect }
func (s Circle) Kind() Kind     { return KindCircle }
func (s Diamond) Kind() Kind    { return KindDiamond }
func (s Line) Kind() Kind       { return KindLine }
func (s Arrow) Kind() Kind      { return KindArrow }
func (s FreePencil) Kind() Kind { return KindFreePencil }
func (s Text) Kind() Kind       { return KindText }

func (s Rect) ShapeID() string       { return s.ID }
func (s Circle) ShapeID() string     { return s.ID }
func (s Diamond) ShapeID() string    { return s.ID }
func (s Line) ShapeID() string       { return s.ID }
func (s Arrow) ShapeID() string      { return s.ID }
func (s FreePencil) ShapeID() string { return s.ID }
func (s Text) ShapeID() string       { return s.ID }

func (s Rect) WithID(id string) Shape       { s.ID = id; return s }
func (s Circle) WithID(id string) Shape     { s.ID = id; return s }
func (s Diamond) WithID(id string) Shape    { s.ID = id; return s }
func (s Line) WithID(id string) Shape       { s.ID = id; return s }
func (s Arrow) WithID(id string) Shape      { s.ID = id; return s }
func (s FreePencil) WithID(id string) Shape { s.ID = id; return s }
func (s Text) WithID(id string) Shape       { s.ID = id; return s }

func (Rect) sealed()       {}
func (Circle) sealed()     {}
func (Diamond) sealed()    {}
func (Line) sealed()       {}
func (Arrow) sealed()      {}
func (FreePencil) sealed() {}
func (Text) sealed()       {}

// fontSize returns the effective font size of a text shape.
func (s Text) fontSize() float64 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}
