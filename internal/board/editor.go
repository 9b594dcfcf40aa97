package board

import (
	"encoding/json"
	"log"
	"math"
	"sync"

	"github.com/drawbridge-io/drawbridge/internal/geometry"
	"github.com/drawbridge-io/drawbridge/internal/idgen"
	"github.com/drawbridge-io/drawbridge/internal/protocol"
	"github.com/drawbridge-io/drawbridge/internal/view"
	"github.com/google/uuid"
)

// Tool selects the editor's pointer behavior. Drawing tools create shapes;
// pan, selection and eraser are behavioral only and never persisted.
type Tool string

const (
	ToolSelection  Tool = "selection"
	ToolPan        Tool = "pan"
	ToolEraser     Tool = "eraser"
	ToolText       Tool = "text"
	ToolRect       Tool = "rect"
	ToolCircle     Tool = "circle"
	ToolDiamond    Tool = "diamond"
	ToolLine       Tool = "line"
	ToolArrow      Tool = "arrow"
	ToolFreePencil Tool = "freePencil"
)

// State is the editor's interaction state.
type State int

const (
	StateIdle State = iota
	StateDrawingShape
	StatePanning
	StateTextEditing
	StateDraggingSelection
	StateResizingSelection
)

// handleGrabRadius is the world-space pick radius for curve endpoint and
// bend handles.
const handleGrabRadius = 5

// handlePickSize is the side of the pick box centered on a corner handle.
const handlePickSize = 8

// Sender delivers outbound protocol messages to the relay. Sends are
// fire-and-forget: a failed send is logged and not retried.
type Sender interface {
	Send(m protocol.Message) error
}

// Editor is the per-client interaction state machine. It owns a Registry and
// a view transform, turns device-space pointer and key input into shape
// operations, and emits the resulting events.
//
// All methods are safe to call from the input loop and the socket receive
// goroutine; internally a mutex serializes them.
type Editor struct {
	mu sync.Mutex

	roomID   string
	sender   Sender
	registry *Registry
	viewport *view.Transform
	newID    func() string

	tool  Tool
	state State

	// draw anchor and text caret origin, world space
	startX, startY float64

	pencil   *geometry.FreePencil
	preview  geometry.Shape // in-progress local or remote shape, never persisted
	textBuf  string
	cursorOn bool
	blink    *blinkTask
	closed   bool

	activeIdx    int // -1 when nothing selected
	dragging     bool
	resizing     bool
	resizeHandle geometry.HandleKey
	dragOffsetX  float64
	dragOffsetY  float64

	listenerSeq int
	listeners   map[int]func()
}

// NewEditor creates an editor for one room connection.
func NewEditor(roomID string, sender Sender) *Editor {
	return &Editor{
		roomID:    roomID,
		sender:    sender,
		registry:  NewRegistry(),
		viewport:  view.NewTransform(),
		newID:     defaultNewID,
		tool:      ToolSelection,
		activeIdx: -1,
		listeners: make(map[int]func()),
	}
}

func defaultNewID() string {
	id, err := idgen.NewShapeID()
	if err != nil {
		return uuid.NewString()
	}
	return id
}

// Viewport returns the editor's view transform.
func (e *Editor) Viewport() *view.Transform {
	return e.viewport
}

// Registry returns the editor's shape registry.
func (e *Editor) Registry() *Registry {
	return e.registry
}

// SelectedTool returns the active tool.
func (e *Editor) SelectedTool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// CurrentState returns the interaction state.
func (e *Editor) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ActiveShape returns the currently selected shape, if any.
func (e *Editor) ActiveShape() (geometry.Shape, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeIdx < 0 || e.activeIdx >= e.registry.Len() {
		return nil, false
	}
	return e.registry.At(e.activeIdx), true
}

// Preview returns the in-progress ephemeral shape, if any.
func (e *Editor) Preview() (geometry.Shape, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.preview == nil {
		return nil, false
	}
	return e.preview, true
}

// TextBuffer returns the buffered text while editing.
func (e *Editor) TextBuffer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.textBuf
}

// OnRedraw registers a redraw listener, returning its subscription. The
// listener runs outside the editor lock, after every visible state change.
func (e *Editor) OnRedraw(fn func()) *Subscription {
	e.mu.Lock()
	id := e.listenerSeq
	e.listenerSeq++
	e.listeners[id] = fn
	e.mu.Unlock()
	return &Subscription{release: func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}}
}

func (e *Editor) notifyRedraw() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *Editor) send(m protocol.Message) {
	if e.sender == nil {
		return
	}
	if err := e.sender.Send(m); err != nil {
		log.Printf("send failed (dropped): %v", err)
	}
}

// sendShape serializes a shape into a chat message. Preview flags mark
// ephemeral events the relay must not persist.
func (e *Editor) sendShape(s geometry.Shape, kind protocol.EventKind, drawing, updating bool) {
	data, err := geometry.Marshal(s)
	if err != nil {
		log.Printf("marshal shape: %v", err)
		return
	}
	e.send(protocol.Message{
		Type: protocol.TypeChat,
		Payload: protocol.Payload{
			RoomID:  e.roomID,
			Message: string(data),
			Type:    kind,
		},
		IsDrawing:  drawing,
		IsUpdating: updating,
	})
}

// SetTool switches tools. Leaving text editing with buffered text commits it
// as a persisted text shape first.
func (e *Editor) SetTool(t Tool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	var committed geometry.Shape
	if t != ToolText && e.state == StateTextEditing {
		committed = e.commitTextLocked()
	}
	e.tool = t
	e.mu.Unlock()

	if committed != nil {
		e.sendShape(committed, protocol.EventCreate, false, false)
	}
	e.notifyRedraw()
}

// commitTextLocked finalizes the text buffer into a persisted shape and
// leaves text editing. Returns nil when the buffer was empty.
func (e *Editor) commitTextLocked() geometry.Shape {
	e.stopBlinkLocked()
	buf := e.textBuf
	e.textBuf = ""
	e.cursorOn = false
	e.state = StateIdle
	if buf == "" {
		return nil
	}
	s := geometry.Text{
		ID:       e.newID(),
		Text:     buf,
		X:        e.startX,
		Y:        e.startY,
		FontSize: geometry.DefaultFontSize,
	}
	e.registry.Append(s)
	return s
}

func (e *Editor) stopBlinkLocked() {
	if e.blink != nil {
		e.blink.Cancel()
		e.blink = nil
	}
}

func (e *Editor) startBlinkLocked() {
	e.stopBlinkLocked()
	e.blink = startBlink(blinkInterval, e.blinkTick)
}

// blinkTick toggles the caret. Checked against editor state under the lock
// so a tick racing Cancel or Close never acts on a torn-down editor.
func (e *Editor) blinkTick() {
	e.mu.Lock()
	if e.closed || e.state != StateTextEditing {
		e.mu.Unlock()
		return
	}
	e.cursorOn = !e.cursorOn
	e.mu.Unlock()
	e.notifyRedraw()
}

// Click handles a mouse click in device coordinates.
func (e *Editor) Click(sx, sy float64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	var committed geometry.Shape
	var erased geometry.Shape

	switch e.tool {
	case ToolText:
		if e.state == StateTextEditing {
			committed = e.commitTextLocked()
			e.tool = ToolSelection
		} else {
			p := e.viewport.ScreenToWorld(sx, sy)
			e.startX, e.startY = p.X, p.Y
			e.textBuf = ""
			e.cursorOn = true
			e.state = StateTextEditing
			e.startBlinkLocked()
		}
	case ToolEraser:
		p := e.viewport.ScreenToWorld(sx, sy)
		if s, i, ok := e.registry.TopmostAt(p); ok {
			e.registry.RemoveAt(i)
			if e.activeIdx == i {
				e.activeIdx = -1
			} else if e.activeIdx > i {
				e.activeIdx--
			}
			erased = s
		}
	}
	e.mu.Unlock()

	if committed != nil {
		e.sendShape(committed, protocol.EventCreate, false, false)
	}
	if erased != nil {
		e.sendShape(erased, protocol.EventErase, false, false)
	}
	e.notifyRedraw()
}

// MouseDown handles the start of a pointer press. Text and eraser act on
// Click, not on the press.
func (e *Editor) MouseDown(sx, sy float64) {
	e.mu.Lock()
	if e.closed || e.tool == ToolText || e.tool == ToolEraser {
		e.mu.Unlock()
		return
	}

	if e.tool == ToolPan {
		e.viewport.StartPan(sx, sy)
		e.state = StatePanning
		e.mu.Unlock()
		return
	}

	p := e.viewport.ScreenToWorld(sx, sy)

	if e.tool == ToolSelection {
		e.selectionDownLocked(p)
		e.mu.Unlock()
		e.notifyRedraw()
		return
	}

	// Drawing tools anchor here; the shape materializes on mouse up.
	e.startX, e.startY = p.X, p.Y
	e.state = StateDrawingShape
	if e.tool == ToolFreePencil {
		e.pencil = &geometry.FreePencil{
			CurrX: []float64{p.X}, CurrY: []float64{p.Y},
			LastX: []float64{p.X}, LastY: []float64{p.Y},
		}
	}
	e.mu.Unlock()
}

// selectionDownLocked resolves what a selection-tool press grabs: a resize
// handle of the active shape first, then the active shape's body for
// dragging, then a fresh topmost hit, and finally empty space clearing the
// selection.
func (e *Editor) selectionDownLocked(p geometry.Point) {
	if e.activeIdx >= 0 && e.activeIdx < e.registry.Len() {
		active := e.registry.At(e.activeIdx)
		if key, ok := grabHandle(active, p); ok {
			e.resizing = true
			e.resizeHandle = key
			e.state = StateResizingSelection
			return
		}
		if geometry.HitTest(active, p) {
			ref := dragRef(active)
			e.dragging = true
			e.dragOffsetX = p.X - ref.X
			e.dragOffsetY = p.Y - ref.Y
			e.state = StateDraggingSelection
			return
		}
	}

	if s, i, ok := e.registry.TopmostAt(p); ok {
		e.activeIdx = i
		ref := dragRef(s)
		e.dragOffsetX = p.X - ref.X
		e.dragOffsetY = p.Y - ref.Y
		return
	}
	e.activeIdx = -1
}

// grabHandle tests the press against a shape's handles. Curve handles use a
// circular pick radius; corner handles use a box centered on the handle.
func grabHandle(s geometry.Shape, p geometry.Point) (geometry.HandleKey, bool) {
	handles := geometry.SelectionHandles(s)
	curve := false
	switch s.(type) {
	case geometry.Line, geometry.Arrow:
		curve = true
	}
	for _, h := range handles {
		if curve {
			dx, dy := p.X-h.X, p.Y-h.Y
			if dx*dx+dy*dy <= handleGrabRadius*handleGrabRadius {
				return h.Key, true
			}
		} else {
			half := float64(handlePickSize) / 2
			if math.Abs(p.X-h.X) <= half && math.Abs(p.Y-h.Y) <= half {
				return h.Key, true
			}
		}
	}
	return "", false
}

// dragRef is the reference point drag deltas are measured from: the first
// endpoint handle for curves, the bounding-box origin for everything else.
func dragRef(s geometry.Shape) geometry.Point {
	switch s.(type) {
	case geometry.Line, geometry.Arrow:
		h := geometry.SelectionHandles(s)[0]
		return geometry.Pt(h.X, h.Y)
	default:
		b := geometry.BoundingBox(s)
		return geometry.Pt(b.X, b.Y)
	}
}

// MouseMove handles pointer motion.
func (e *Editor) MouseMove(sx, sy float64) {
	e.mu.Lock()
	if e.closed || e.tool == ToolText {
		e.mu.Unlock()
		return
	}

	if e.tool == ToolPan {
		if e.state != StatePanning {
			e.mu.Unlock()
			return
		}
		e.viewport.Pan(sx, sy)
		e.mu.Unlock()
		e.notifyRedraw()
		return
	}

	p := e.viewport.ScreenToWorld(sx, sy)

	if e.tool == ToolSelection {
		var moved geometry.Shape
		switch {
		case e.dragging && e.activeIdx >= 0:
			active := e.registry.At(e.activeIdx)
			ref := dragRef(active)
			dx := p.X - ref.X - e.dragOffsetX
			dy := p.Y - ref.Y - e.dragOffsetY
			moved = geometry.Translate(active, dx, dy)
			e.registry.SetAt(e.activeIdx, moved)
		case e.resizing && e.activeIdx >= 0:
			active := e.registry.At(e.activeIdx)
			moved = geometry.Resize(active, e.resizeHandle, p)
			e.registry.SetAt(e.activeIdx, moved)
		}
		e.mu.Unlock()
		if moved != nil {
			e.sendShape(moved, protocol.EventUpdate, false, true)
			e.notifyRedraw()
		}
		return
	}

	if e.state != StateDrawingShape {
		e.mu.Unlock()
		return
	}

	if e.tool == ToolFreePencil && e.pencil != nil {
		e.pencil.LastX = append(e.pencil.LastX, e.startX)
		e.pencil.LastY = append(e.pencil.LastY, e.startY)
		e.pencil.CurrX = append(e.pencil.CurrX, p.X)
		e.pencil.CurrY = append(e.pencil.CurrY, p.Y)
		e.startX, e.startY = p.X, p.Y
		e.preview = *e.pencil
	} else {
		e.preview = e.candidateLocked(p)
	}
	candidate := e.preview
	e.mu.Unlock()

	if candidate != nil {
		e.sendShape(candidate, protocol.EventCreate, true, false)
	}
	e.notifyRedraw()
}

// candidateLocked builds the in-progress shape between the anchor and the
// current pointer.
func (e *Editor) candidateLocked(p geometry.Point) geometry.Shape {
	switch e.tool {
	case ToolRect:
		return geometry.Rect{X: e.startX, Y: e.startY, Width: p.X - e.startX, Height: p.Y - e.startY}
	case ToolCircle:
		return geometry.Circle{StartX: e.startX, StartY: e.startY, EndX: p.X, EndY: p.Y}
	case ToolDiamond:
		return geometry.Diamond{StartX: e.startX, StartY: e.startY, EndX: p.X, EndY: p.Y}
	case ToolLine:
		return geometry.Line{StartX: e.startX, StartY: e.startY, EndX: p.X, EndY: p.Y}
	case ToolArrow:
		return geometry.Arrow{FromX: e.startX, FromY: e.startY, ToX: p.X, ToY: p.Y}
	}
	return nil
}

// MouseUp handles the end of a pointer press.
func (e *Editor) MouseUp(sx, sy float64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	if e.tool == ToolPan {
		e.viewport.EndPan()
		e.state = StateIdle
		e.mu.Unlock()
		return
	}

	if e.tool == ToolSelection {
		var updated geometry.Shape
		if (e.dragging || e.resizing) && e.activeIdx >= 0 && e.activeIdx < e.registry.Len() {
			updated = e.registry.At(e.activeIdx)
		}
		e.dragging = false
		e.resizing = false
		e.resizeHandle = ""
		e.state = StateIdle
		e.mu.Unlock()
		if updated != nil && updated.ShapeID() != "" {
			e.sendShape(updated, protocol.EventUpdate, false, false)
		}
		return
	}

	if e.state != StateDrawingShape {
		e.mu.Unlock()
		return
	}

	p := e.viewport.ScreenToWorld(sx, sy)
	var created geometry.Shape
	if e.tool == ToolFreePencil {
		if e.pencil != nil {
			created = e.pencil.WithID(e.newID())
			e.pencil = nil
		}
	} else if c := e.candidateLocked(p); c != nil {
		created = c.WithID(e.newID())
	}
	if created != nil {
		e.registry.Append(created)
	}
	e.preview = nil
	e.state = StateIdle
	e.mu.Unlock()

	if created != nil {
		e.sendShape(created, protocol.EventCreate, false, false)
	}
	e.notifyRedraw()
}

// KeyDown handles a keystroke while text editing. Backspace trims one rune,
// Enter inserts a newline, single printable runes append. Every keystroke
// also broadcasts a non-persisted typing preview.
func (e *Editor) KeyDown(key string) {
	e.mu.Lock()
	if e.closed || e.state != StateTextEditing {
		e.mu.Unlock()
		return
	}
	switch key {
	case "Backspace":
		if r := []rune(e.textBuf); len(r) > 0 {
			e.textBuf = string(r[:len(r)-1])
		}
	case "Enter":
		e.textBuf += "\n"
	default:
		if r := []rune(key); len(r) == 1 {
			e.textBuf += key
		} else {
			e.mu.Unlock()
			return
		}
	}
	preview := geometry.Text{
		Text:     e.textBuf,
		X:        e.startX,
		Y:        e.startY,
		FontSize: geometry.DefaultFontSize,
	}
	e.mu.Unlock()

	e.sendShape(preview, protocol.EventCreate, true, false)
	e.notifyRedraw()
}

// Wheel applies a zoom notch for a canvas of the given device size.
func (e *Editor) Wheel(deltaY, canvasWidth, canvasHeight float64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.viewport.Wheel(deltaY, canvasWidth, canvasHeight)
	e.mu.Unlock()
	e.notifyRedraw()
}

// LoadHistory replaces the registry with shapes reconstructed from the
// room's event log.
func (e *Editor) LoadHistory(shapes []geometry.Shape) {
	e.mu.Lock()
	e.registry.Reset(shapes)
	e.activeIdx = -1
	e.mu.Unlock()
	e.notifyRedraw()
}

// ApplyRemote applies a relay event received from a peer: previews replace
// the ephemeral overlay, creates append, updates replace by id, erases
// remove by id. Undecodable payloads are dropped.
func (e *Editor) ApplyRemote(m protocol.Message) {
	if m.Type != protocol.TypeChat {
		return
	}

	// An erase carries at minimum the shape id, not necessarily a full
	// typed shape.
	if !m.IsDrawing && m.Payload.Type == protocol.EventErase {
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(m.Payload.Message), &ref); err != nil || ref.ID == "" {
			log.Printf("drop remote erase without shape id")
			return
		}
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		if i := e.registry.IndexOf(ref.ID); i >= 0 {
			e.registry.RemoveAt(i)
			if e.activeIdx == i {
				e.activeIdx = -1
			} else if e.activeIdx > i {
				e.activeIdx--
			}
		}
		e.mu.Unlock()
		e.notifyRedraw()
		return
	}

	s, err := geometry.Unmarshal([]byte(m.Payload.Message))
	if err != nil {
		log.Printf("drop remote event: %v", err)
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	switch {
	case m.IsDrawing:
		e.preview = s
	case m.Payload.Type == protocol.EventUpdate:
		e.registry.ReplaceByID(s)
	default:
		e.registry.Append(s)
		e.preview = nil
	}
	e.mu.Unlock()
	e.notifyRedraw()
}

// Close tears the editor down: the caret task is cancelled and all further
// input is ignored. Idempotent.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopBlinkLocked()
	e.listeners = make(map[int]func())
	e.mu.Unlock()
}
