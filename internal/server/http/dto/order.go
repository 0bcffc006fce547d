package dto

import "time"

// CreateOrderRequest describes the order creation payload.
type CreateOrderRequest struct {
	CountryID string `json:"country_id" binding:"required"`
	ServiceID string `json:"service_id" binding:"required"`
}

// OrderResponse represents an order in API responses and live events.
type OrderResponse struct {
	ID          string     `json:"id"`
	PhoneNumber string     `json:"phone_number"`
	CountryID   string     `json:"country_id"`
	ServiceID   string     `json:"service_id"`
	Price       int64      `json:"price"`
	Status      string     `json:"status"`
	Refunded    bool       `json:"refunded"`
	CreatedAt   time.Time  `json:"created_at"`
	Deadline    time.Time  `json:"deadline"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
