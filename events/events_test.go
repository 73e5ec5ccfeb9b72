package events

import (
	"encoding/json"
	"testing"
)

func TestElementEventYield(t *testing.T) {
	e := ElementEvent{
		Action:       "move",
		ElementID:    12,
		ElementType:  "asset",
		Path:         "/archive/site",
		VersionCount: 5,
		ModifiedBy:   42,
		Timestamp:    "2026-08-31T12:00:00Z",
		Success:      true,
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(e.Yield(), &decoded); err != nil {
		t.Fatalf("yielded bytes are not valid JSON: %v", err)
	}
	if decoded["action"] != "move" {
		t.Errorf("expected action move, got %v", decoded["action"])
	}
	if decoded["path"] != "/archive/site" {
		t.Errorf("expected path /archive/site, got %v", decoded["path"])
	}
	if e.EventAction() != "move" {
		t.Errorf("expected EventAction move, got %q", e.EventAction())
	}
	if !e.IsSuccessful() {
		t.Errorf("expected success flag carried through")
	}
}

func TestNullPublisher(t *testing.T) {
	var p Publisher = NullPublisher{}
	p.Publish(ElementEvent{Action: "create"})
	if p.Reconnect() {
		t.Errorf("null publisher never requests reconnection")
	}
}
