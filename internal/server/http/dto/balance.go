package dto

import "time"

// BalanceResponse represents the current balance in minor currency units.
type BalanceResponse struct {
	Amount int64 `json:"amount"`
}

// LedgerEntryResponse describes one balance mutation.
type LedgerEntryResponse struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
