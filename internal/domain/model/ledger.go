package model

import "time"

// LedgerEntry records a single balance mutation. Amount is signed: debits are
// negative, credits positive. Every entry references the order that caused it.
type LedgerEntry struct {
	ID        int64
	UserID    int64
	OrderID   string
	Amount    int64
	CreatedAt time.Time
}
