package geometry

import (
	"strings"
	"testing"
)

func TestUnmarshalRect(t *testing.T) {
	data := []byte(`{"id":"s1","type":"rect","x":10,"y":10,"width":50,"height":30}`)
	s, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	r, ok := s.(Rect)
	if !ok {
		t.Fatalf("expected Rect, got %T", s)
	}
	if r.ID != "s1" || r.X != 10 || r.Y != 10 || r.Width != 50 || r.Height != 30 {
		t.Errorf("decoded rect = %+v", r)
	}
}

func TestMarshalOmitsEmptyID(t *testing.T) {
	data, err := Marshal(Rect{X: 1, Y: 2, Width: 3, Height: 4})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("ephemeral shape should not serialize an id: %s", data)
	}

	data, err = Marshal(Rect{ID: "abc", X: 1, Y: 2, Width: 3, Height: 4})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"id":"abc"`) {
		t.Errorf("persisted shape must carry its id: %s", data)
	}
}

func TestMarshalPreservesZeroCoordinates(t *testing.T) {
	data, err := Marshal(Rect{ID: "z", X: 0, Y: 0, Width: 0, Height: 0})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, field := range []string{`"x":0`, `"y":0`, `"width":0`, `"height":0`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("missing %s in %s", field, data)
		}
	}
}

func TestLineBendRoundTrip(t *testing.T) {
	bent := Line{ID: "l1", StartX: 1, StartY: 2, EndX: 3, EndY: 4, BendX: 5, BendY: 6, HasBend: true}
	data, err := Marshal(bent)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.(Line) != bent {
		t.Errorf("round trip = %+v, want %+v", got, bent)
	}

	straight := Line{ID: "l2", StartX: 1, StartY: 2, EndX: 3, EndY: 4}
	data, _ = Marshal(straight)
	if strings.Contains(string(data), "bendX") {
		t.Errorf("unbent line should not serialize a bend: %s", data)
	}
	got, err = Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.(Line).HasBend {
		t.Error("decoded straight line should have no bend")
	}
}

func TestFreePencilRoundTrip(t *testing.T) {
	s := FreePencil{
		ID:    "fp",
		CurrX: []float64{1, 2}, CurrY: []float64{3, 4},
		LastX: []float64{0, 1}, LastY: []float64{2, 3},
	}
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	fp := got.(FreePencil)
	if fp.ID != "fp" || len(fp.CurrX) != 2 || fp.LastY[1] != 3 {
		t.Errorf("round trip = %+v", fp)
	}
}

func TestUnmarshalArrowAndText(t *testing.T) {
	a, err := Unmarshal([]byte(`{"type":"arrow","fromX":0,"fromY":0,"toX":9,"toY":9,"bendX":4,"bendY":5}`))
	if err != nil {
		t.Fatalf("Unmarshal arrow: %v", err)
	}
	arrow := a.(Arrow)
	if !arrow.HasBend || arrow.BendX != 4 || arrow.ToX != 9 {
		t.Errorf("decoded arrow = %+v", arrow)
	}

	txt, err := Unmarshal([]byte(`{"id":"t1","type":"text","text":"hi\nthere","x":10,"y":20,"fontSize":24}`))
	if err != nil {
		t.Fatalf("Unmarshal text: %v", err)
	}
	tx := txt.(Text)
	if tx.Text != "hi\nthere" || tx.FontSize != 24 {
		t.Errorf("decoded text = %+v", tx)
	}
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"type":"hexagon"}`)); err == nil {
		t.Error("expected error for unknown shape type")
	}
	if _, err := Unmarshal([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestUnmarshalRejectsRaggedFreePencil(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no arrays", `{"type":"freePencil","id":"f"}`},
		{"missing lastX/lastY", `{"type":"freePencil","currX":[1,2],"currY":[3,4]}`},
		{"unequal currX/currY", `{"type":"freePencil","currX":[1,2],"currY":[3],"lastX":[1,2],"lastY":[3,4]}`},
		{"short lastX", `{"type":"freePencil","currX":[1,2],"currY":[3,4],"lastX":[1],"lastY":[3,4]}`},
		{"empty arrays", `{"type":"freePencil","currX":[],"currY":[],"lastX":[],"lastY":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Unmarshal([]byte(tc.data))
			if err == nil {
				t.Fatalf("expected error, got %#v", s)
			}
		})
	}

	// A decoded stroke is always safe to walk.
	s, err := Unmarshal([]byte(`{"type":"freePencil","currX":[1],"currY":[2],"lastX":[3],"lastY":[4]}`))
	if err != nil {
		t.Fatalf("consistent stroke rejected: %v", err)
	}
	if b := BoundingBox(s); b.Width != 2 || b.Height != 2 {
		t.Errorf("bounding box = %+v", b)
	}
}
