package model

// EventType enumerates broadcast event kinds pushed to live clients.
type EventType string

const (
	EventOrderCompleted  EventType = "order_completed"
	EventOrderExpired    EventType = "order_expired"
	EventMessageReceived EventType = "message_received"
)

// Event is an incremental update delivered to the owning user's live
// connections. Events are not queued: a reconnecting client re-fetches
// current state via snapshot reads.
type Event struct {
	Type    EventType
	UserID  int64
	OrderID string
	Payload any
}
