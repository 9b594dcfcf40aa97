package protocol

import "testing"

func TestParseValidMessages(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Message
	}{
		{
			"join",
			`{"type":"join","payload":{"roomId":"r1"}}`,
			Message{Type: TypeJoin, Payload: Payload{RoomID: "r1"}},
		},
		{
			"leave",
			`{"type":"leave","payload":{"roomId":"r1"}}`,
			Message{Type: TypeLeave, Payload: Payload{RoomID: "r1"}},
		},
		{
			"chat create",
			`{"type":"chat","payload":{"roomId":"r1","message":"{\"type\":\"rect\"}"}}`,
			Message{Type: TypeChat, Payload: Payload{RoomID: "r1", Message: `{"type":"rect"}`}},
		},
		{
			"chat erase",
			`{"type":"chat","payload":{"roomId":"r1","message":"{\"id\":\"s1\"}","type":"erase"}}`,
			Message{Type: TypeChat, Payload: Payload{RoomID: "r1", Message: `{"id":"s1"}`, Type: EventErase}},
		},
		{
			"ephemeral preview",
			`{"type":"chat","isDrawing":true,"payload":{"roomId":"r1","message":"x"}}`,
			Message{Type: TypeChat, IsDrawing: true, Payload: Payload{RoomID: "r1", Message: "x"}},
		},
		{
			"in-progress update",
			`{"type":"chat","isUpdating":true,"payload":{"roomId":"r1","message":"x","type":"update"}}`,
			Message{Type: TypeChat, IsUpdating: true, Payload: Payload{RoomID: "r1", Message: "x", Type: EventUpdate}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{nope`},
		{"unknown type", `{"type":"shout","payload":{"roomId":"r1"}}`},
		{"join without room", `{"type":"join","payload":{}}`},
		{"chat without room", `{"type":"chat","payload":{"message":"x"}}`},
		{"chat without body", `{"type":"chat","payload":{"roomId":"r1"}}`},
		{"unknown event kind", `{"type":"chat","payload":{"roomId":"r1","message":"x","type":"explode"}}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.data)
			}
		})
	}
}

func TestEncodeOmitsFlags(t *testing.T) {
	data, err := Chat("r1", "body").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse round trip: %v", err)
	}
	if got.IsDrawing || got.IsUpdating {
		t.Errorf("flags should default to false: %+v", got)
	}
	if got.Payload.RoomID != "r1" || got.Payload.Message != "body" {
		t.Errorf("round trip = %+v", got)
	}
}
