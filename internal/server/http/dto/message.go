package dto

import "time"

// MessageResponse represents a delivered SMS in API responses and live events.
type MessageResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Text       string    `json:"text"`
	Code       *string   `json:"code,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}
