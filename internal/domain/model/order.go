package model

import "time"

// OrderStatus describes the lease lifecycle.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusExpired   OrderStatus = "expired"
)

// Order describes a leased phone number with a bounded validity window.
// The price is charged on creation and credited back if the order expires.
// Provider names the webhook source expected to deliver SMS for the number;
// empty means any authenticated provider may complete the order.
type Order struct {
	ID          string
	UserID      int64
	PhoneNumber string
	CountryID   string
	ServiceID   string
	Price       int64
	Status      OrderStatus
	Refunded    bool
	ExternalID  string
	Provider    string
	CreatedAt   time.Time
	Deadline    time.Time
	CompletedAt *time.Time
}

// NumberAssignment is what the numbering pool hands out for a lease: the
// phone number, the pool's own id for the assignment, and the provider that
// will deliver inbound SMS for it (may be empty when the pool does not pin
// deliveries to one provider).
type NumberAssignment struct {
	PhoneNumber string
	ExternalID  string
	Provider    string
}

// Active reports whether the order still awaits a terminal transition.
func (o *Order) Active() bool {
	return o.Status == OrderStatusActive
}
