package events

// Publisher is an interface for async events.
type Publisher interface {
	Publish(e Event)
	Reconnect() bool
}

// NullPublisher conforms to the Publisher interface and discards all events.
type NullPublisher struct{}

// Publish drops the event.
func (p NullPublisher) Publish(e Event) {}

// Reconnect never requests reconnection.
func (p NullPublisher) Reconnect() bool {
	return false
}
