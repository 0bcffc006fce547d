package model

import "time"

// Message is an SMS relayed by a provider for an order. Immutable after creation.
type Message struct {
	ID         string
	OrderID    string
	Text       string
	Code       *string
	ReceivedAt time.Time
}

// InboundSMS is a provider webhook payload after adapter-specific parsing.
type InboundSMS struct {
	ExternalOrderID string
	PhoneNumber     string
	Text            string
	ReceivedAt      time.Time
}
