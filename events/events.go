package events

import "encoding/json"

// Event defines a type that can yield itself as JSON bytes.
type Event interface {
	Yield() []byte
	EventAction() string
	IsSuccessful() bool
}

// ElementEvent describes a change to an element in the tree. Consumers such
// as search indexers and cache invalidators subscribe to these.
type ElementEvent struct {
	Action       string `json:"action"`
	ElementID    int64  `json:"element_id"`
	ElementType  string `json:"element_type"`
	Path         string `json:"path"`
	VersionCount int64  `json:"version_count"`
	ModifiedBy   int64  `json:"modified_by"`
	Timestamp    string `json:"timestamp"`
	Success      bool   `json:"success"`
}

// Yield satisfies the Event interface.
func (e ElementEvent) Yield() []byte {
	b, _ := json.Marshal(e)
	return b
}

// EventAction satisfies the Event interface.
func (e ElementEvent) EventAction() string {
	return e.Action
}

// IsSuccessful satisfies the Event interface.
func (e ElementEvent) IsSuccessful() bool {
	return e.Success
}
