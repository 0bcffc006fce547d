package dto

// EventData is the data field of a live SSE event; the event name carries the
// type.
type EventData struct {
	OrderID string `json:"order_id"`
	Payload any    `json:"payload"`
}
