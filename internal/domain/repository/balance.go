package repository

import (
	"context"

	"github.com/smslease/smslease/internal/domain/model"
)

// BalanceRepository manages user balances. Amounts are integer minor currency
// units. Every mutation records a ledger entry referencing the causal order
// within the same transaction.
type BalanceRepository interface {
	Amount(ctx context.Context, userID int64) (int64, error)
	TryDebit(ctx context.Context, userID int64, amount int64, orderID string) error
	Credit(ctx context.Context, userID int64, amount int64, orderID string) error
	Entries(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}
